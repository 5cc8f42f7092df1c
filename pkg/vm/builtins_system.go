package vm

import (
	"fmt"
	"strings"
)

// registerSystemBuiltins registers output built-in functions.
func (vm *VM) registerSystemBuiltins() {
	// print は引数を空白区切りで出力する
	vm.RegisterBuiltin("print", func(v *VM, args []any) (any, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = ToString(a)
		}
		if _, err := fmt.Fprintln(v.out, strings.Join(parts, " ")); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// registerDefaultBuiltins registers the language's standard library.
// Hosts add drawing builtins on top with RegisterBuiltin.
func (vm *VM) registerDefaultBuiltins() {
	vm.registerMathBuiltins()
	vm.registerStringBuiltins()
	vm.registerArrayBuiltins()
	vm.registerSystemBuiltins()
}
