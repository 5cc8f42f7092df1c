package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/zurustar/inkbot/pkg/opcode"
)

// breakSignal and continueSignal are propagated out of blocks to the
// enclosing loop.
type breakSignal struct{}
type continueSignal struct{}

// returnMarker carries a return value out to the calling function.
type returnMarker struct {
	value any
}

// Execute executes a single OpCode and returns its value.
// Runtime errors are annotated with the line of the innermost opcode.
func (vm *VM) Execute(op opcode.OpCode) (any, error) {
	if op.Line > 0 {
		vm.line = op.Line
	}

	result, err := vm.execute(op)
	if err != nil {
		return nil, vm.annotate(err, op.Line)
	}
	return result, nil
}

func (vm *VM) execute(op opcode.OpCode) (any, error) {
	switch op.Cmd {
	case opcode.Assign:
		return vm.executeAssign(op)
	case opcode.ArrayAssign:
		return vm.executeArrayAssign(op)
	case opcode.Call:
		return vm.executeCall(op)
	case opcode.BinaryOp:
		return vm.executeBinaryOp(op)
	case opcode.UnaryOp:
		return vm.executeUnaryOp(op)
	case opcode.ArrayAccess:
		return vm.executeArrayAccess(op)
	case opcode.ArrayLiteral:
		return vm.executeArrayLiteral(op)
	case opcode.If:
		return vm.executeIf(op)
	case opcode.For:
		return vm.executeFor(op)
	case opcode.While:
		return vm.executeWhile(op)
	case opcode.Break:
		return breakSignal{}, nil
	case opcode.Continue:
		return continueSignal{}, nil
	case opcode.Return:
		return vm.executeReturn(op)
	case opcode.DefineFunction:
		return vm.executeDefineFunction(op)
	default:
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown opcode: %s", op.Cmd))
	}
}

// annotate fills in the source position of a runtime error.
func (vm *VM) annotate(err error, line int) error {
	var re *RuntimeError
	if !errors.As(err, &re) {
		re = &RuntimeError{Type: ErrorBuiltin, Message: err.Error(), Line: -1, Err: err}
		err = re
	}
	if re.Line < 0 && line > 0 {
		re.Line = line
		re.Function = vm.currentFunction()
	}
	return err
}

// evaluateValue resolves an argument to a runtime value.
func (vm *VM) evaluateValue(value any) (any, error) {
	switch v := value.(type) {
	case opcode.Variable:
		val, ok := vm.localScope.Get(string(v))
		if !ok {
			return nil, NewUndefinedVariableError(string(v))
		}
		return val, nil
	case opcode.OpCode:
		return vm.Execute(v)
	default:
		return normalize(v), nil
	}
}

// executeBlock executes opcodes in order.
// Control-flow markers stop the block and are handed to the caller.
func (vm *VM) executeBlock(ops []opcode.OpCode) (any, error) {
	for _, op := range ops {
		if err := vm.ctx.Err(); err != nil {
			return nil, vm.annotate(NewCancelledError(err), op.Line)
		}

		result, err := vm.Execute(op)
		if err != nil {
			return nil, err
		}

		switch result.(type) {
		case breakSignal, continueSignal, returnMarker:
			return result, nil
		}
	}
	return nil, nil
}

// blockArg returns the []OpCode stored at args[i], or nil.
func blockArg(args []any, i int) []opcode.OpCode {
	if i >= len(args) {
		return nil
	}
	block, _ := args[i].([]opcode.OpCode)
	return block
}

func argCount(op opcode.OpCode, n int) error {
	if len(op.Args) < n {
		return NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("%s requires %d arguments, got %d", op.Cmd, n, len(op.Args)))
	}
	return nil
}

// executeAssign assigns a value to a variable.
// Args: [Variable(name), value]
func (vm *VM) executeAssign(op opcode.OpCode) (any, error) {
	if err := argCount(op, 2); err != nil {
		return nil, err
	}
	name, ok := op.Args[0].(opcode.Variable)
	if !ok {
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("invalid assignment target: %v", op.Args[0]))
	}

	value, err := vm.evaluateValue(op.Args[1])
	if err != nil {
		return nil, err
	}
	vm.localScope.Set(string(name), value)
	return nil, nil
}

// executeArrayAssign assigns a value to an array element.
// Args: [Variable(arrayName), index, value]
func (vm *VM) executeArrayAssign(op opcode.OpCode) (any, error) {
	if err := argCount(op, 3); err != nil {
		return nil, err
	}
	name, ok := op.Args[0].(opcode.Variable)
	if !ok {
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("invalid array target: %v", op.Args[0]))
	}

	indexValue, err := vm.evaluateValue(op.Args[1])
	if err != nil {
		return nil, err
	}
	value, err := vm.evaluateValue(op.Args[2])
	if err != nil {
		return nil, err
	}

	var arr []any
	if current, exists := vm.localScope.Get(string(name)); exists {
		arr, ok = current.([]any)
		if !ok {
			return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("%s is a %s, not an array", name, TypeName(current)))
		}
	}

	index, err := elementIndex(indexValue, len(arr))
	if err != nil {
		return nil, err
	}
	vm.localScope.Set(string(name), setElement(arr, index, value))
	return nil, nil
}

// executeCall calls a user-defined or built-in function.
// User functions shadow builtins of the same name.
// Args: [functionName string, arg1, arg2, ...]
func (vm *VM) executeCall(op opcode.OpCode) (any, error) {
	if err := argCount(op, 1); err != nil {
		return nil, err
	}
	name, ok := op.Args[0].(string)
	if !ok {
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("invalid function name: %v", op.Args[0]))
	}

	args := make([]any, len(op.Args)-1)
	for i, arg := range op.Args[1:] {
		v, err := vm.evaluateValue(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if fn, ok := vm.functions[name]; ok {
		return vm.callUserFunction(fn, args)
	}

	builtin, ok := vm.builtins[name]
	if !ok {
		return nil, NewUndefinedFunctionError(name)
	}

	result, err := builtin(vm, args)
	if err != nil {
		var re *RuntimeError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, NewBuiltinError(name, err)
	}
	return normalize(result), nil
}

// callUserFunction runs fn in a new local scope whose parent is the global scope.
func (vm *VM) callUserFunction(fn *FunctionDef, args []any) (any, error) {
	if len(args) != len(fn.Parameters) {
		return nil, NewRuntimeError(ErrorInvalidOperation,
			fmt.Sprintf("%s() takes %d arguments, got %d", fn.Name, len(fn.Parameters), len(args)))
	}

	scope := NewScope(vm.globalScope)
	for i, param := range fn.Parameters {
		scope.SetLocal(param, args[i])
	}

	if err := vm.PushStackFrame(fn.Name, scope); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := vm.PopStackFrame(); err != nil {
			vm.log.Error("Failed to pop stack frame", "function", fn.Name, "error", err)
		}
	}()

	result, err := vm.executeBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	if ret, ok := result.(returnMarker); ok {
		return ret.value, nil
	}
	return nil, nil
}

// executeDefineFunction registers a user-defined function.
// Args: [functionName string, parameters []string, bodyBlock []OpCode]
func (vm *VM) executeDefineFunction(op opcode.OpCode) (any, error) {
	if err := argCount(op, 3); err != nil {
		return nil, err
	}
	name, ok := op.Args[0].(string)
	if !ok {
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("invalid function name: %v", op.Args[0]))
	}
	params, _ := op.Args[1].([]string)

	vm.functions[name] = &FunctionDef{
		Name:       name,
		Parameters: params,
		Body:       blockArg(op.Args, 2),
	}
	return nil, nil
}

// executeReturn leaves the current function.
// Args: [] or [value]
func (vm *VM) executeReturn(op opcode.OpCode) (any, error) {
	if len(op.Args) == 0 {
		return returnMarker{}, nil
	}
	value, err := vm.evaluateValue(op.Args[0])
	if err != nil {
		return nil, err
	}
	return returnMarker{value: value}, nil
}

// executeIf executes conditional branching.
// Args: [condition, thenBlock, elseBlock]
func (vm *VM) executeIf(op opcode.OpCode) (any, error) {
	if err := argCount(op, 2); err != nil {
		return nil, err
	}
	cond, err := vm.evaluateValue(op.Args[0])
	if err != nil {
		return nil, err
	}
	if ToBool(cond) {
		return vm.executeBlock(blockArg(op.Args, 1))
	}
	return vm.executeBlock(blockArg(op.Args, 2))
}

// executeFor executes a for loop.
// Args: [initBlock, condition, postBlock, bodyBlock]
func (vm *VM) executeFor(op opcode.OpCode) (any, error) {
	if err := argCount(op, 4); err != nil {
		return nil, err
	}
	if _, err := vm.executeBlock(blockArg(op.Args, 0)); err != nil {
		return nil, err
	}
	post := blockArg(op.Args, 2)
	body := blockArg(op.Args, 3)

	for {
		if err := vm.ctx.Err(); err != nil {
			return nil, NewCancelledError(err)
		}
		if op.Args[1] != nil {
			cond, err := vm.evaluateValue(op.Args[1])
			if err != nil {
				return nil, err
			}
			if !ToBool(cond) {
				return nil, nil
			}
		}

		result, err := vm.executeBlock(body)
		if err != nil {
			return nil, err
		}
		switch result.(type) {
		case breakSignal:
			return nil, nil
		case returnMarker:
			return result, nil
		}

		if _, err := vm.executeBlock(post); err != nil {
			return nil, err
		}
	}
}

// executeWhile executes a while loop.
// Args: [condition, bodyBlock]
func (vm *VM) executeWhile(op opcode.OpCode) (any, error) {
	if err := argCount(op, 2); err != nil {
		return nil, err
	}
	body := blockArg(op.Args, 1)

	for {
		if err := vm.ctx.Err(); err != nil {
			return nil, NewCancelledError(err)
		}
		cond, err := vm.evaluateValue(op.Args[0])
		if err != nil {
			return nil, err
		}
		if !ToBool(cond) {
			return nil, nil
		}

		result, err := vm.executeBlock(body)
		if err != nil {
			return nil, err
		}
		switch result.(type) {
		case breakSignal:
			return nil, nil
		case returnMarker:
			return result, nil
		}
	}
}

// executeBinaryOp performs a binary operation.
// && and || short-circuit.
// Args: [operator string, leftOperand, rightOperand]
func (vm *VM) executeBinaryOp(op opcode.OpCode) (any, error) {
	if err := argCount(op, 3); err != nil {
		return nil, err
	}
	operator, ok := op.Args[0].(string)
	if !ok {
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("invalid operator: %v", op.Args[0]))
	}

	left, err := vm.evaluateValue(op.Args[1])
	if err != nil {
		return nil, err
	}

	switch operator {
	case "&&":
		if !ToBool(left) {
			return false, nil
		}
		right, err := vm.evaluateValue(op.Args[2])
		if err != nil {
			return nil, err
		}
		return ToBool(right), nil
	case "||":
		if ToBool(left) {
			return true, nil
		}
		right, err := vm.evaluateValue(op.Args[2])
		if err != nil {
			return nil, err
		}
		return ToBool(right), nil
	}

	right, err := vm.evaluateValue(op.Args[2])
	if err != nil {
		return nil, err
	}

	switch operator {
	case "+", "-", "*", "/", "%":
		return vm.executeArithmeticOp(operator, left, right)
	case "==", "!=", "<", "<=", ">", ">=":
		return executeComparisonOp(operator, left, right)
	default:
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown binary operator: %s", operator))
	}
}

func invalidOperands(operator string, left, right any) error {
	return NewRuntimeError(ErrorInvalidOperation,
		fmt.Sprintf("invalid operands for %s: %s and %s", operator, TypeName(left), TypeName(right)))
}

// executeArithmeticOp performs arithmetic.
// + concatenates when either side is a string, and joins two arrays.
// Division or modulo by zero logs a warning and yields 0.
func (vm *VM) executeArithmeticOp(operator string, left, right any) (any, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)

	if operator == "+" && !(lok && rok) {
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return ToString(left) + ToString(right), nil
		}
		la, laok := left.([]any)
		ra, raok := right.([]any)
		if laok && raok {
			return concatArrays(la, ra), nil
		}
		return nil, invalidOperands(operator, left, right)
	}
	if !lok || !rok {
		return nil, invalidOperands(operator, left, right)
	}

	switch operator {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			vm.log.Warn("Runtime warning", "error", NewDivisionByZeroError(), "line", vm.line, "function", vm.currentFunction())
			return 0.0, nil
		}
		return l / r, nil
	case "%":
		if r == 0 {
			vm.log.Warn("Runtime warning", "error", NewDivisionByZeroError(), "line", vm.line, "function", vm.currentFunction())
			return 0.0, nil
		}
		return math.Mod(l, r), nil
	}
	return nil, invalidOperands(operator, left, right)
}

// executeComparisonOp compares numbers, or strings lexically.
// == and != accept any pair of values.
func executeComparisonOp(operator string, left, right any) (any, error) {
	switch operator {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	}

	var cmp int
	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		if !ok {
			return nil, invalidOperands(operator, left, right)
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
		if math.IsNaN(l) || math.IsNaN(r) {
			return false, nil
		}
	case string:
		r, ok := right.(string)
		if !ok {
			return nil, invalidOperands(operator, left, right)
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	default:
		return nil, invalidOperands(operator, left, right)
	}

	switch operator {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

// executeUnaryOp performs a unary operation.
// Args: [operator string, operand]
func (vm *VM) executeUnaryOp(op opcode.OpCode) (any, error) {
	if err := argCount(op, 2); err != nil {
		return nil, err
	}
	operator, _ := op.Args[0].(string)
	operand, err := vm.evaluateValue(op.Args[1])
	if err != nil {
		return nil, err
	}

	switch operator {
	case "-":
		n, ok := operand.(float64)
		if !ok {
			return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("cannot negate a %s", TypeName(operand)))
		}
		return -n, nil
	case "!":
		return !ToBool(operand), nil
	default:
		return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown unary operator: %s", operator))
	}
}

// executeArrayAccess reads an array element or a string character.
// Args: [array, index]
func (vm *VM) executeArrayAccess(op opcode.OpCode) (any, error) {
	if err := argCount(op, 2); err != nil {
		return nil, err
	}
	container, err := vm.evaluateValue(op.Args[0])
	if err != nil {
		return nil, err
	}
	index, err := vm.evaluateValue(op.Args[1])
	if err != nil {
		return nil, err
	}
	return getElement(container, index)
}

// executeArrayLiteral builds a new array from its evaluated elements.
// Args: [element1, element2, ...]
func (vm *VM) executeArrayLiteral(op opcode.OpCode) (any, error) {
	arr := make([]any, len(op.Args))
	for i, el := range op.Args {
		v, err := vm.evaluateValue(el)
		if err != nil {
			return nil, err
		}
		arr[i] = v
	}
	return arr, nil
}
