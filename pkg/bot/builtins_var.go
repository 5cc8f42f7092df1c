package bot

import (
	"fmt"
	"math"

	"github.com/zurustar/inkbot/pkg/variable"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerVariableBuiltins registers var().
func (b *Bot) registerVariableBuiltins(bs builtinSet) {
	// var(name, type, default[, min[, max[, value]]])
	//
	// The arguments are positional. Bounds apply to NUMBER and are ignored
	// for the other types; an omitted bound leaves that side open.
	bs.add("var", func(m *vm.VM, a args) (any, error) {
		if err := a.count(3, 6); err != nil {
			return nil, err
		}
		name, err := a.str(0)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, argErrorf(a.fn, "variable name must not be empty")
		}
		typeName, err := a.str(1)
		if err != nil {
			return nil, err
		}
		t, err := variable.ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", name, err)
		}

		d := variable.Decl{Name: name, Type: t, Default: a.list[2]}
		lo, err := a.numOr(3, math.Inf(-1))
		if err != nil {
			return nil, err
		}
		hi, err := a.numOr(4, math.Inf(1))
		if err != nil {
			return nil, err
		}
		if t == variable.Number {
			d.Min, d.Max = lo, hi
		}
		if a.len() == 6 {
			d.Value = a.list[5]
		}

		v, err := b.vars.Declare(d)
		if err != nil {
			return nil, err
		}
		bindEnv(m, variable.Env{name: v.Value})
		return v.Value, nil
	})
}
