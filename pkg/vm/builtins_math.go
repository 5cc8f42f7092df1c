package vm

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// numberArg returns args[i] as a number.
func numberArg(name string, args []any, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s: missing argument %d", name, i+1)
	}
	n, ok := ToNumber(args[i])
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number, got %s", name, i+1, TypeName(args[i]))
	}
	return n, nil
}

// arity checks the argument count is within [min, max].
func arity(name string, args []any, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return fmt.Errorf("%s takes %d arguments, got %d", name, min, len(args))
		}
		return fmt.Errorf("%s takes %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

// unary wraps a one-argument math function.
func unary(name string, f func(float64) float64) BuiltinFunc {
	return func(v *VM, args []any) (any, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

// numbersOf flattens min/max arguments: either the numbers themselves or one array.
func numbersOf(name string, args []any) ([]float64, error) {
	if len(args) == 1 {
		if arr, ok := args[0].([]any); ok {
			args = arr
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s requires at least 1 number", name)
	}
	nums := make([]float64, len(args))
	for i := range args {
		n, err := numberArg(name, args, i)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}

// registerMathBuiltins registers math and random built-in functions.
func (vm *VM) registerMathBuiltins() {
	vm.SetGlobal("PI", math.Pi)

	vm.RegisterBuiltin("sin", unary("sin", math.Sin))
	vm.RegisterBuiltin("cos", unary("cos", math.Cos))
	vm.RegisterBuiltin("tan", unary("tan", math.Tan))
	vm.RegisterBuiltin("sqrt", unary("sqrt", math.Sqrt))
	vm.RegisterBuiltin("abs", unary("abs", math.Abs))
	vm.RegisterBuiltin("floor", unary("floor", math.Floor))
	vm.RegisterBuiltin("ceil", unary("ceil", math.Ceil))
	vm.RegisterBuiltin("round", unary("round", math.Round))
	vm.RegisterBuiltin("radians", unary("radians", func(x float64) float64 { return x * math.Pi / 180 }))
	vm.RegisterBuiltin("degrees", unary("degrees", func(x float64) float64 { return x * 180 / math.Pi }))

	vm.RegisterBuiltin("atan2", func(v *VM, args []any) (any, error) {
		if err := arity("atan2", args, 2, 2); err != nil {
			return nil, err
		}
		y, err := numberArg("atan2", args, 0)
		if err != nil {
			return nil, err
		}
		x, err := numberArg("atan2", args, 1)
		if err != nil {
			return nil, err
		}
		return math.Atan2(y, x), nil
	})

	vm.RegisterBuiltin("pow", func(v *VM, args []any) (any, error) {
		if err := arity("pow", args, 2, 2); err != nil {
			return nil, err
		}
		x, err := numberArg("pow", args, 0)
		if err != nil {
			return nil, err
		}
		y, err := numberArg("pow", args, 1)
		if err != nil {
			return nil, err
		}
		return math.Pow(x, y), nil
	})

	vm.RegisterBuiltin("min", func(v *VM, args []any) (any, error) {
		nums, err := numbersOf("min", args)
		if err != nil {
			return nil, err
		}
		m := nums[0]
		for _, n := range nums[1:] {
			m = min(m, n)
		}
		return m, nil
	})

	vm.RegisterBuiltin("max", func(v *VM, args []any) (any, error) {
		nums, err := numbersOf("max", args)
		if err != nil {
			return nil, err
		}
		m := nums[0]
		for _, n := range nums[1:] {
			m = max(m, n)
		}
		return m, nil
	})

	// random() は [0,1)、random(b) は [0,b)、random(a, b) は [a,b)
	vm.RegisterBuiltin("random", func(v *VM, args []any) (any, error) {
		if err := arity("random", args, 0, 2); err != nil {
			return nil, err
		}
		lo, hi := 0.0, 1.0
		var err error
		switch len(args) {
		case 1:
			if hi, err = numberArg("random", args, 0); err != nil {
				return nil, err
			}
		case 2:
			if lo, err = numberArg("random", args, 0); err != nil {
				return nil, err
			}
			if hi, err = numberArg("random", args, 1); err != nil {
				return nil, err
			}
		}
		return lo + v.rng.Float64()*(hi-lo), nil
	})

	// randint(a, b) は a 以上 b 以下の整数
	vm.RegisterBuiltin("randint", func(v *VM, args []any) (any, error) {
		if err := arity("randint", args, 2, 2); err != nil {
			return nil, err
		}
		a, err := numberArg("randint", args, 0)
		if err != nil {
			return nil, err
		}
		b, err := numberArg("randint", args, 1)
		if err != nil {
			return nil, err
		}
		fa, fb := math.Ceil(min(a, b)), math.Floor(max(a, b))
		if !inInt64(fa) || !inInt64(fb) {
			return nil, fmt.Errorf("randint: bounds %v and %v out of range", a, b)
		}
		lo, hi := int64(fa), int64(fb)
		if hi < lo {
			return nil, fmt.Errorf("randint: no integer between %v and %v", a, b)
		}
		// 差は uint64 で数える（int64 では溢れる）
		span := uint64(hi) - uint64(lo)
		var r uint64
		if span == math.MaxUint64 {
			r = v.rng.Uint64()
		} else {
			r = v.rng.Uint64N(span + 1)
		}
		return float64(lo + int64(r)), nil
	})

	vm.RegisterBuiltin("seed", func(v *VM, args []any) (any, error) {
		if err := arity("seed", args, 1, 1); err != nil {
			return nil, err
		}
		s, err := numberArg("seed", args, 0)
		if err != nil {
			return nil, err
		}
		v.Seed(uint64(int64(s)))
		return nil, nil
	})
}

// inInt64 reports whether f converts to int64 without overflow.
func inInt64(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}

// Seed makes random, randint and choice deterministic.
func (vm *VM) Seed(seed uint64) {
	vm.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle permutes n elements with the VM's random source.
func (vm *VM) Shuffle(n int, swap func(i, j int)) {
	vm.rng.Shuffle(n, swap)
}
