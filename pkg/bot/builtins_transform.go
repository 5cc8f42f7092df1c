package bot

import (
	"fmt"
	"strings"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerTransformBuiltins registers the transform stack calls.
func (b *Bot) registerTransformBuiltins(bs builtinSet) {
	t := b.canvas.Transforms

	bs.add("push", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		t.Push()
		return nil, nil
	})

	bs.add("pop", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		if err := t.Pop(); err != nil {
			return nil, fmt.Errorf("pop: %w", err)
		}
		return nil, nil
	})

	bs.add("translate", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 2); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 2)
		if err != nil {
			return nil, err
		}
		t.Translate(v[0], v[1])
		return nil, nil
	})

	// rotate(degrees)
	bs.add("rotate", func(m *vm.VM, a args) (any, error) {
		if err := a.count(1, 1); err != nil {
			return nil, err
		}
		deg, err := a.num(0)
		if err != nil {
			return nil, err
		}
		t.Rotate(deg)
		return nil, nil
	})

	// scale(x[, y]) は y を省略すると等倍率
	bs.add("scale", func(m *vm.VM, a args) (any, error) {
		if err := a.count(1, 2); err != nil {
			return nil, err
		}
		x, err := a.num(0)
		if err != nil {
			return nil, err
		}
		y, err := a.numOr(1, x)
		if err != nil {
			return nil, err
		}
		t.Scale(x, y)
		return nil, nil
	})

	// skew(x[, y]) in degrees
	bs.add("skew", func(m *vm.VM, a args) (any, error) {
		if err := a.count(1, 2); err != nil {
			return nil, err
		}
		x, err := a.num(0)
		if err != nil {
			return nil, err
		}
		y, err := a.numOr(1, 0)
		if err != nil {
			return nil, err
		}
		t.Skew(x, y)
		return nil, nil
	})

	bs.add("reset", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		t.Reset()
		return nil, nil
	})

	// transform(CENTER|CORNER) / transform()
	bs.add("transform", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(name) {
			case "center":
				b.canvas.Settings.TransformMode = graphics.Center
			case "corner":
				b.canvas.Settings.TransformMode = graphics.Corner
			default:
				return nil, argErrorf(a.fn, "unknown transform mode %q (want CENTER or CORNER)", name)
			}
			t.Mode = b.canvas.Settings.TransformMode
		}
		if t.Mode == graphics.Center {
			return constants["CENTER"], nil
		}
		return constants["CORNER"], nil
	})
}
