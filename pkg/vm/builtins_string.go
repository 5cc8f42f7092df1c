package vm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// registerStringBuiltins registers string conversion built-in functions.
func (vm *VM) registerStringBuiltins() {
	vm.RegisterBuiltin("str", func(v *VM, args []any) (any, error) {
		if err := arity("str", args, 1, 1); err != nil {
			return nil, err
		}
		return ToString(args[0]), nil
	})

	// num("3.5") は 3.5、数値に読めない文字列はエラー
	vm.RegisterBuiltin("num", func(v *VM, args []any) (any, error) {
		if err := arity("num", args, 1, 1); err != nil {
			return nil, err
		}
		switch val := args[0].(type) {
		case float64:
			return val, nil
		case bool:
			if val {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return nil, fmt.Errorf("num: %q is not a number", val)
			}
			return n, nil
		}
		return nil, fmt.Errorf("num: cannot convert a %s", TypeName(args[0]))
	})

	// len は文字列なら文字数、配列なら要素数
	vm.RegisterBuiltin("len", func(v *VM, args []any) (any, error) {
		if err := arity("len", args, 1, 1); err != nil {
			return nil, err
		}
		switch val := args[0].(type) {
		case string:
			return float64(utf8.RuneCountInString(val)), nil
		case []any:
			return float64(len(val)), nil
		}
		return nil, fmt.Errorf("len: a %s has no length", TypeName(args[0]))
	})
}
