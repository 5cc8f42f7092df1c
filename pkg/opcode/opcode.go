// Package opcode defines the instruction set shared by the compiler and the VM.
// The compiler generates OpCode trees, and the VM executes them.
package opcode

// Cmd represents an OpCode command type.
type Cmd string

// OpCode command types for all supported operations.
const (
	// Assign assigns a value to a variable.
	// Args: [Variable(name), value]
	Assign Cmd = "Assign"

	// ArrayAssign assigns a value to an array element.
	// Args: [Variable(arrayName), index, value]
	ArrayAssign Cmd = "ArrayAssign"

	// Call invokes a builtin or user function.
	// Args: [functionName string, arg1, arg2, ...]
	Call Cmd = "Call"

	// BinaryOp performs a binary operation (+, -, *, /, %, ==, !=, <, <=, >, >=, &&, ||).
	// Args: [operator string, leftOperand, rightOperand]
	BinaryOp Cmd = "BinaryOp"

	// UnaryOp performs a unary operation (-, !).
	// Args: [operator string, operand]
	UnaryOp Cmd = "UnaryOp"

	// ArrayAccess reads an array element by index.
	// Args: [array, index]
	ArrayAccess Cmd = "ArrayAccess"

	// ArrayLiteral builds a new array.
	// Args: [element1, element2, ...]
	ArrayLiteral Cmd = "ArrayLiteral"

	// If executes conditional branching.
	// Args: [condition, thenBlock []OpCode, elseBlock []OpCode]
	If Cmd = "If"

	// For executes a for loop. A nil condition loops until break.
	// Args: [initBlock []OpCode, condition, postBlock []OpCode, bodyBlock []OpCode]
	For Cmd = "For"

	// While executes a while loop.
	// Args: [condition, bodyBlock []OpCode]
	While Cmd = "While"

	// Break breaks out of the current loop.
	// Args: []
	Break Cmd = "Break"

	// Continue continues to the next iteration of the current loop.
	// Args: []
	Continue Cmd = "Continue"

	// Return leaves the current function.
	// Args: [] or [value]
	Return Cmd = "Return"

	// DefineFunction defines a user-defined function.
	// Args: [functionName string, parameters []string, bodyBlock []OpCode]
	DefineFunction Cmd = "DefineFunction"
)

// OpCode represents a single instruction for the VM.
// Args can contain:
// - literal values (float64, string, bool)
// - Variable references
// - nested OpCode values for expressions
// - []OpCode for blocks
type OpCode struct {
	Cmd  Cmd
	Args []any
	Line int
}

// Variable represents a variable reference in OpCode arguments.
// It distinguishes a name to resolve from a literal string value.
type Variable string
