package vm

import (
	"fmt"
	"math"
)

// registerArrayBuiltins registers array built-in functions.
func (vm *VM) registerArrayBuiltins() {
	// choice(arr) は配列の要素を一つ選ぶ
	vm.RegisterBuiltin("choice", func(v *VM, args []any) (any, error) {
		if err := arity("choice", args, 1, 1); err != nil {
			return nil, err
		}
		arr, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("choice: argument must be an array, got %s", TypeName(args[0]))
		}
		if len(arr) == 0 {
			return nil, fmt.Errorf("choice: empty array")
		}
		return arr[v.rng.IntN(len(arr))], nil
	})

	// append(arr, v...) は新しい配列を返す
	vm.RegisterBuiltin("append", func(v *VM, args []any) (any, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("append requires an array")
		}
		arr, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("append: first argument must be an array, got %s", TypeName(args[0]))
		}
		return concatArrays(arr, args[1:]), nil
	})

	// range(stop), range(start, stop), range(start, stop, step)
	vm.RegisterBuiltin("range", func(v *VM, args []any) (any, error) {
		if err := arity("range", args, 1, 3); err != nil {
			return nil, err
		}
		nums := make([]float64, len(args))
		for i := range args {
			n, err := numberArg("range", args, i)
			if err != nil {
				return nil, err
			}
			nums[i] = n
		}
		start, stop, step := 0.0, nums[0], 1.0
		if len(nums) >= 2 {
			start, stop = nums[0], nums[1]
		}
		if len(nums) == 3 {
			step = nums[2]
		}
		if step == 0 {
			return nil, fmt.Errorf("range: step must not be zero")
		}
		count := math.Ceil((stop - start) / step)
		if count <= 0 {
			return []any{}, nil
		}
		if count > 1e7 {
			return nil, fmt.Errorf("range: too many elements (%.0f)", count)
		}
		out := make([]any, int(count))
		for i := range out {
			out[i] = start + float64(i)*step
		}
		return out, nil
	})
}
