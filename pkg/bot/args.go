package bot

import (
	"math"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// args wraps the arguments of one builtin call.
type args struct {
	fn   string
	list []any
}

func (a args) len() int {
	return len(a.list)
}

// count checks the number of arguments is within [lo, hi].
func (a args) count(lo, hi int) error {
	n := len(a.list)
	if n >= lo && n <= hi {
		return nil
	}
	if lo == hi {
		return argErrorf(a.fn, "takes %d arguments, got %d", lo, n)
	}
	return argErrorf(a.fn, "takes %d to %d arguments, got %d", lo, hi, n)
}

// counts checks the number of arguments is one of the allowed counts.
func (a args) counts(allowed ...int) error {
	for _, n := range allowed {
		if len(a.list) == n {
			return nil
		}
	}
	return argErrorf(a.fn, "takes %v arguments, got %d", allowed, len(a.list))
}

func (a args) num(i int) (float64, error) {
	if i >= len(a.list) {
		return 0, argErrorf(a.fn, "missing argument %d", i+1)
	}
	n, ok := vm.ToNumber(a.list[i])
	if !ok || math.IsNaN(n) {
		return 0, argErrorf(a.fn, "argument %d must be a number, got %s", i+1, vm.TypeName(a.list[i]))
	}
	return n, nil
}

func (a args) numOr(i int, def float64) (float64, error) {
	if i >= len(a.list) {
		return def, nil
	}
	return a.num(i)
}

// nums reads the arguments from..from+n-1 as numbers.
func (a args) nums(from, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := a.num(from + i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a args) integer(i int) (int, error) {
	n, err := a.num(i)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, argErrorf(a.fn, "argument %d must be an integer, got %v", i+1, n)
	}
	return int(n), nil
}

func (a args) str(i int) (string, error) {
	if i >= len(a.list) {
		return "", argErrorf(a.fn, "missing argument %d", i+1)
	}
	s, ok := a.list[i].(string)
	if !ok {
		return "", argErrorf(a.fn, "argument %d must be a string, got %s", i+1, vm.TypeName(a.list[i]))
	}
	return s, nil
}

func (a args) boolOr(i int, def bool) bool {
	if i >= len(a.list) {
		return def
	}
	return vm.ToBool(a.list[i])
}

func (a args) path(i int) (*graphics.Path, error) {
	if i >= len(a.list) {
		return nil, argErrorf(a.fn, "missing argument %d", i+1)
	}
	p, ok := a.list[i].(*graphics.Path)
	if !ok || p == nil {
		return nil, argErrorf(a.fn, "argument %d must be a path, got %s", i+1, vm.TypeName(a.list[i]))
	}
	return p, nil
}
