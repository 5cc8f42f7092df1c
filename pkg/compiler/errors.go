package compiler

import (
	"fmt"
	"strings"
)

// CompileError is a compilation error with its source location.
type CompileError struct {
	// Phase is "lexer", "parser" or "compiler".
	Phase string

	Message string

	// Line and Column are 1-indexed.
	Line   int
	Column int

	// Context holds the source lines around the error with a caret under
	// the column. It may be empty.
	Context string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

func newError(phase, message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   phase,
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// GenerateErrorContext generates source code context around an error location:
// two lines before and after the error line, and a caret under the column.
//
// Example output:
//
//	  2 | x = 5;
//	  3 | y = 10;
//	> 4 | z = ;
//	          ^
//	  5 | rect(x, y, z, z);
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))

	var buf strings.Builder

	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimRight(lines[i], "\r")

		if lineNum == line {
			fmt.Fprintf(&buf, "> %*d | %s\n", lineNumWidth, lineNum, lineContent)
			// "> " + 行番号 + " | " の分だけずらす
			pointerIndent := 2 + lineNumWidth + 3
			if column > 0 {
				pointerIndent += column - 1
			}
			buf.WriteString(strings.Repeat(" ", pointerIndent) + "^\n")
		} else {
			fmt.Fprintf(&buf, "  %*d | %s\n", lineNumWidth, lineNum, lineContent)
		}
	}

	return buf.String()
}
