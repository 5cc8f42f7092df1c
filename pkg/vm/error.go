package vm

import (
	"fmt"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	// 実行を止めるエラー
	ErrorStackOverflow    ErrorType = "STACK_OVERFLOW"
	ErrorUndefinedFunc    ErrorType = "UNDEFINED_FUNCTION"
	ErrorUndefinedVar     ErrorType = "UNDEFINED_VARIABLE"
	ErrorIndexOutOfRange  ErrorType = "INDEX_OUT_OF_RANGE"
	ErrorInvalidOperation ErrorType = "INVALID_OPERATION"
	ErrorBuiltin          ErrorType = "BUILTIN"
	ErrorCancelled        ErrorType = "CANCELLED"

	// ログに残して続行するエラー
	ErrorDivisionByZero ErrorType = "DIVISION_BY_ZERO"
)

// RuntimeError represents a runtime error in the VM.
type RuntimeError struct {
	Type     ErrorType
	Message  string
	Line     int    // Line number if available, -1 otherwise
	Function string // enclosing user function, empty at top level
	Err      error  // underlying error, e.g. a builtin's argument error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	where := ""
	if e.Function != "" {
		where = " in " + e.Function + "()"
	}
	if e.Line >= 0 {
		return fmt.Sprintf("[%s] %s at line %d%s", e.Type, e.Message, e.Line, where)
	}
	return fmt.Sprintf("[%s] %s%s", e.Type, e.Message, where)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error stops the running script.
// Division by zero is logged and evaluates to 0.
func (e *RuntimeError) IsFatal() bool {
	return e.Type != ErrorDivisionByZero
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    -1,
	}
}

// NewRuntimeErrorWithLine creates a new RuntimeError with line information.
func NewRuntimeErrorWithLine(errType ErrorType, message string, line int) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    line,
	}
}

// NewDivisionByZeroError creates a division by zero error.
func NewDivisionByZeroError() *RuntimeError {
	return NewRuntimeError(ErrorDivisionByZero, "division by zero")
}

// NewIndexOutOfRangeError creates an index out of range error.
func NewIndexOutOfRangeError(index int, length int) *RuntimeError {
	return NewRuntimeError(ErrorIndexOutOfRange, fmt.Sprintf("index %d out of range (length %d)", index, length))
}

// NewUndefinedVariableError creates an undefined variable error.
func NewUndefinedVariableError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedVar, fmt.Sprintf("undefined variable: %s", name))
}

// NewUndefinedFunctionError creates an undefined function error.
func NewUndefinedFunctionError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedFunc, fmt.Sprintf("undefined function: %s", name))
}

// NewStackOverflowError creates a stack overflow error.
func NewStackOverflowError(depth int) *RuntimeError {
	return NewRuntimeError(ErrorStackOverflow, fmt.Sprintf("stack overflow: depth %d exceeds maximum %d", depth, MaxStackDepth))
}

// NewBuiltinError wraps an error returned by a builtin function.
func NewBuiltinError(name string, err error) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorBuiltin,
		Message: fmt.Sprintf("%s: %v", name, err),
		Line:    -1,
		Err:     err,
	}
}

// NewCancelledError reports that the context ended execution.
func NewCancelledError(err error) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorCancelled,
		Message: "execution cancelled",
		Line:    -1,
		Err:     err,
	}
}
