// Package vm provides the tree-walking virtual machine for sketch OpCodes.
// It implements:
// - OpCode execution with global and local scopes
// - User-defined functions with a bounded call stack
// - A host-populated builtin registry
// - Cancellation through context.Context at statement boundaries
package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/zurustar/inkbot/pkg/compiler"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/opcode"
)

// MaxStackDepth is the maximum call stack depth before stack overflow.
const MaxStackDepth = 1000

// VM represents the virtual machine that executes OpCode instructions.
// A VM is used from a single goroutine.
type VM struct {
	opcodes []opcode.OpCode

	// Scope management
	globalScope *Scope
	localScope  *Scope
	callStack   []*StackFrame

	// User-defined functions
	functions map[string]*FunctionDef

	// Built-in functions
	builtins map[string]BuiltinFunc

	// 現在の行 (実行時エラー用)
	line int

	rng *rand.Rand
	out io.Writer // print の出力先

	ctx context.Context
	log *slog.Logger
}

// FunctionDef represents a user-defined function.
type FunctionDef struct {
	Name       string
	Parameters []string
	Body       []opcode.OpCode
}

// StackFrame represents a call stack frame for function calls.
type StackFrame struct {
	FunctionName string
	LocalScope   *Scope
	CallLine     int
}

// BuiltinFunc is the signature for built-in functions.
// Built-in functions receive the VM instance and evaluated arguments.
type BuiltinFunc func(vm *VM, args []any) (any, error)

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithLogger sets the logger for the VM.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithOutput sets where print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) {
		vm.out = w
	}
}

// WithSeed makes the random builtins deterministic.
func WithSeed(seed uint64) Option {
	return func(vm *VM) {
		vm.Seed(seed)
	}
}

// WithBuiltins registers a set of builtins at construction.
func WithBuiltins(builtins map[string]BuiltinFunc) Option {
	return func(vm *VM) {
		for name, fn := range builtins {
			vm.builtins[name] = fn
		}
	}
}

// New creates a new VM for the given top-level opcodes.
func New(opcodes []opcode.OpCode, opts ...Option) *VM {
	vm := &VM{
		opcodes:     opcodes,
		globalScope: NewScope(nil),
		functions:   make(map[string]*FunctionDef),
		builtins:    make(map[string]BuiltinFunc),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		out:         os.Stdout,
		ctx:         context.Background(),
		log:         logger.GetLogger(),
	}
	vm.localScope = vm.globalScope
	vm.registerDefaultBuiltins()

	for _, opt := range opts {
		opt(vm)
	}

	vm.hoistFunctions()
	return vm
}

// NewFromProgram creates a VM for a compiled program.
func NewFromProgram(prog *compiler.Program, opts ...Option) *VM {
	return New(prog.Opcodes, opts...)
}

// hoistFunctions registers every top-level function before execution,
// so a call may precede its declaration.
func (vm *VM) hoistFunctions() {
	for _, op := range vm.opcodes {
		if op.Cmd != opcode.DefineFunction {
			continue
		}
		if _, err := vm.executeDefineFunction(op); err != nil {
			vm.log.Warn("Invalid function definition", "line", op.Line, "error", err)
		}
	}
}

// RegisterBuiltin registers a built-in function.
func (vm *VM) RegisterBuiltin(name string, fn BuiltinFunc) {
	vm.builtins[name] = fn
}

// HasBuiltin reports whether a builtin with the name is registered.
func (vm *VM) HasBuiltin(name string) bool {
	_, ok := vm.builtins[name]
	return ok
}

// HasFunction reports whether the script defines a function with the name.
func (vm *VM) HasFunction(name string) bool {
	_, ok := vm.functions[name]
	return ok
}

// Functions returns the names of the user-defined functions, sorted.
func (vm *VM) Functions() []string {
	names := make([]string, 0, len(vm.functions))
	for name := range vm.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetGlobal sets a global variable.
func (vm *VM) SetGlobal(name string, value any) {
	vm.globalScope.SetLocal(name, normalize(value))
}

// Global returns a global variable.
func (vm *VM) Global(name string) (any, bool) {
	return vm.globalScope.GetLocal(name)
}

// GlobalScope returns the global scope.
func (vm *VM) GlobalScope() *Scope {
	return vm.globalScope
}

// CurrentScope returns the scope that variable lookups currently start from.
func (vm *VM) CurrentScope() *Scope {
	return vm.localScope
}

// Context returns the context of the running execution.
// Builtins that block should honor it.
func (vm *VM) Context() context.Context {
	return vm.ctx
}

// Logger returns the VM logger.
func (vm *VM) Logger() *slog.Logger {
	return vm.log
}

// Line returns the source line of the opcode being executed.
func (vm *VM) Line() int {
	return vm.line
}

// Run executes the top-level code.
// A top-level return ends the run without error.
func (vm *VM) Run(ctx context.Context) error {
	restore := vm.enter(ctx)
	defer restore()

	vm.log.Debug("VM run started", "opcodes", len(vm.opcodes), "functions", len(vm.functions))
	_, err := vm.executeBlock(vm.opcodes)
	if err != nil {
		return err
	}
	vm.log.Debug("VM run finished")
	return nil
}

// Call invokes a user-defined function and returns its result.
func (vm *VM) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := vm.functions[name]
	if !ok {
		return nil, NewUndefinedFunctionError(name)
	}

	restore := vm.enter(ctx)
	defer restore()

	normalized := make([]any, len(args))
	for i, a := range args {
		normalized[i] = normalize(a)
	}
	return vm.callUserFunction(fn, normalized)
}

// enter installs ctx for the duration of a Run or Call.
func (vm *VM) enter(ctx context.Context) func() {
	if ctx == nil {
		ctx = context.Background()
	}
	prev := vm.ctx
	vm.ctx = ctx
	return func() {
		vm.ctx = prev
	}
}

// PushStackFrame pushes a new stack frame for a function call.
func (vm *VM) PushStackFrame(functionName string, localScope *Scope) error {
	if len(vm.callStack) >= MaxStackDepth {
		return NewStackOverflowError(len(vm.callStack) + 1)
	}

	vm.callStack = append(vm.callStack, &StackFrame{
		FunctionName: functionName,
		LocalScope:   localScope,
		CallLine:     vm.line,
	})
	vm.localScope = localScope
	return nil
}

// PopStackFrame pops the current stack frame after a function returns.
func (vm *VM) PopStackFrame() (*StackFrame, error) {
	if len(vm.callStack) == 0 {
		return nil, fmt.Errorf("cannot pop from empty call stack")
	}

	frame := vm.callStack[len(vm.callStack)-1]
	vm.callStack = vm.callStack[:len(vm.callStack)-1]

	if len(vm.callStack) > 0 {
		vm.localScope = vm.callStack[len(vm.callStack)-1].LocalScope
	} else {
		vm.localScope = vm.globalScope
	}
	vm.line = frame.CallLine
	return frame, nil
}

// StackDepth returns the current call stack depth.
func (vm *VM) StackDepth() int {
	return len(vm.callStack)
}

// currentFunction returns the name of the innermost user function, or "".
func (vm *VM) currentFunction() string {
	if len(vm.callStack) == 0 {
		return ""
	}
	return vm.callStack[len(vm.callStack)-1].FunctionName
}
