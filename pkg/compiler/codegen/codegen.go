// Package codegen lowers the parser's AST into opcode trees for the VM.
package codegen

import (
	"fmt"

	"github.com/zurustar/inkbot/pkg/compiler/lexer"
	"github.com/zurustar/inkbot/pkg/compiler/parser"
	"github.com/zurustar/inkbot/pkg/opcode"
)

// Error is a code generation error at a source position.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// compound assignment operators and the binary operator they expand to
var compoundOps = map[string]string{
	"+=": "+",
	"-=": "-",
	"*=": "*",
	"/=": "/",
}

// Generator converts AST to OpCode sequences.
type Generator struct {
	errors    []*Error
	functions []string
}

// New creates a new code generator.
func New() *Generator {
	return &Generator{}
}

// Errors returns the generator errors.
func (g *Generator) Errors() []*Error {
	return g.errors
}

// Functions returns the names of the top-level functions in declaration order.
func (g *Generator) Functions() []string {
	return g.functions
}

// Generate converts a program AST to OpCode sequences.
func (g *Generator) Generate(program *parser.Program) []opcode.OpCode {
	var opcodes []opcode.OpCode

	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*parser.FunctionStatement); ok {
			g.functions = append(g.functions, fn.Name)
		}
		opcodes = append(opcodes, g.generateStatement(stmt)...)
	}

	return opcodes
}

func (g *Generator) errorf(tok lexer.Token, format string, args ...any) {
	g.errors = append(g.errors, &Error{Message: fmt.Sprintf(format, args...), Line: tok.Line, Column: tok.Column})
}

// generateStatement converts a statement to OpCodes.
func (g *Generator) generateStatement(stmt parser.Statement) []opcode.OpCode {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *parser.AssignStatement:
		return g.generateAssignStatement(s)
	case *parser.ExpressionStatement:
		return g.generateExpressionStatement(s)
	case *parser.IfStatement:
		return g.generateIfStatement(s)
	case *parser.ForStatement:
		return g.generateForStatement(s)
	case *parser.WhileStatement:
		return g.generateWhileStatement(s)
	case *parser.BreakStatement:
		return []opcode.OpCode{{Cmd: opcode.Break, Line: s.Token.Line}}
	case *parser.ContinueStatement:
		return []opcode.OpCode{{Cmd: opcode.Continue, Line: s.Token.Line}}
	case *parser.ReturnStatement:
		return g.generateReturnStatement(s)
	case *parser.FunctionStatement:
		return g.generateFunctionStatement(s)
	case *parser.BlockStatement:
		return g.generateBlockStatement(s)
	default:
		g.errors = append(g.errors, &Error{Message: fmt.Sprintf("unknown statement type: %T", stmt)})
		return nil
	}
}

// generateAssignStatement converts an assignment to OpCode.
// x += e is expanded to x = x + e.
func (g *Generator) generateAssignStatement(stmt *parser.AssignStatement) []opcode.OpCode {
	line := stmt.Token.Line
	value := g.generateExpression(stmt.Value)
	if op, ok := compoundOps[stmt.Operator]; ok {
		current := g.generateExpression(stmt.Name)
		value = opcode.OpCode{Cmd: opcode.BinaryOp, Args: []any{op, current, value}, Line: line}
	} else if stmt.Operator != "=" {
		g.errorf(stmt.Token, "unknown assignment operator %q", stmt.Operator)
		return nil
	}

	switch target := stmt.Name.(type) {
	case *parser.Identifier:
		return []opcode.OpCode{{
			Cmd:  opcode.Assign,
			Args: []any{opcode.Variable(target.Value), value},
			Line: line,
		}}
	case *parser.IndexExpression:
		array, ok := target.Left.(*parser.Identifier)
		if !ok {
			g.errorf(target.Token, "cannot assign to element of %s", target.Left.String())
			return nil
		}
		index := g.generateExpression(target.Index)
		return []opcode.OpCode{{
			Cmd:  opcode.ArrayAssign,
			Args: []any{opcode.Variable(array.Value), index, value},
			Line: line,
		}}
	default:
		g.errorf(stmt.Token, "invalid assignment target: %T", stmt.Name)
		return nil
	}
}

// generateExpressionStatement converts an expression statement to OpCode.
// A bare literal or variable has no effect and produces nothing.
func (g *Generator) generateExpressionStatement(stmt *parser.ExpressionStatement) []opcode.OpCode {
	expr := g.generateExpression(stmt.Expression)
	if code, ok := expr.(opcode.OpCode); ok {
		return []opcode.OpCode{code}
	}
	return nil
}

// generateExpression converts an expression to a literal value, a Variable,
// or a nested OpCode.
func (g *Generator) generateExpression(expr parser.Expression) any {
	switch e := expr.(type) {
	case *parser.Identifier:
		return opcode.Variable(e.Value)
	case *parser.NumberLiteral:
		return e.Value
	case *parser.StringLiteral:
		return e.Value
	case *parser.BooleanLiteral:
		return e.Value
	case *parser.ArrayLiteral:
		elements := make([]any, len(e.Elements))
		for i, el := range e.Elements {
			elements[i] = g.generateExpression(el)
		}
		return opcode.OpCode{Cmd: opcode.ArrayLiteral, Args: elements, Line: e.Token.Line}
	case *parser.IndexExpression:
		array := g.generateExpression(e.Left)
		index := g.generateExpression(e.Index)
		return opcode.OpCode{Cmd: opcode.ArrayAccess, Args: []any{array, index}, Line: e.Token.Line}
	case *parser.PrefixExpression:
		right := g.generateExpression(e.Right)
		return opcode.OpCode{Cmd: opcode.UnaryOp, Args: []any{e.Operator, right}, Line: e.Token.Line}
	case *parser.InfixExpression:
		left := g.generateExpression(e.Left)
		right := g.generateExpression(e.Right)
		return opcode.OpCode{Cmd: opcode.BinaryOp, Args: []any{e.Operator, left, right}, Line: e.Token.Line}
	case *parser.CallExpression:
		name, ok := e.Function.(*parser.Identifier)
		if !ok {
			g.errorf(e.Token, "cannot call %s", e.Function.String())
			return nil
		}
		args := make([]any, 0, len(e.Arguments)+1)
		args = append(args, name.Value)
		for _, arg := range e.Arguments {
			args = append(args, g.generateExpression(arg))
		}
		return opcode.OpCode{Cmd: opcode.Call, Args: args, Line: name.Token.Line}
	default:
		g.errors = append(g.errors, &Error{Message: fmt.Sprintf("unknown expression type: %T", expr)})
		return nil
	}
}

// generateIfStatement converts an if statement to OpCode.
func (g *Generator) generateIfStatement(stmt *parser.IfStatement) []opcode.OpCode {
	condition := g.generateExpression(stmt.Condition)
	consequence := g.generateBlockStatement(stmt.Consequence)

	var alternative []opcode.OpCode
	if stmt.Alternative != nil {
		alternative = g.generateBlockStatement(stmt.Alternative)
	}

	return []opcode.OpCode{{
		Cmd:  opcode.If,
		Args: []any{condition, consequence, alternative},
		Line: stmt.Token.Line,
	}}
}

// generateForStatement converts a for loop to OpCode.
func (g *Generator) generateForStatement(stmt *parser.ForStatement) []opcode.OpCode {
	init := g.generateStatement(stmt.Init)
	var condition any
	if stmt.Condition != nil {
		condition = g.generateExpression(stmt.Condition)
	}
	post := g.generateStatement(stmt.Post)
	body := g.generateBlockStatement(stmt.Body)

	return []opcode.OpCode{{
		Cmd:  opcode.For,
		Args: []any{init, condition, post, body},
		Line: stmt.Token.Line,
	}}
}

// generateWhileStatement converts a while loop to OpCode.
func (g *Generator) generateWhileStatement(stmt *parser.WhileStatement) []opcode.OpCode {
	condition := g.generateExpression(stmt.Condition)
	body := g.generateBlockStatement(stmt.Body)

	return []opcode.OpCode{{
		Cmd:  opcode.While,
		Args: []any{condition, body},
		Line: stmt.Token.Line,
	}}
}

// generateReturnStatement converts a return statement to OpCode.
func (g *Generator) generateReturnStatement(stmt *parser.ReturnStatement) []opcode.OpCode {
	if stmt.Value != nil {
		value := g.generateExpression(stmt.Value)
		return []opcode.OpCode{{Cmd: opcode.Return, Args: []any{value}, Line: stmt.Token.Line}}
	}
	return []opcode.OpCode{{Cmd: opcode.Return, Line: stmt.Token.Line}}
}

// generateFunctionStatement converts a function definition to OpCode.
func (g *Generator) generateFunctionStatement(stmt *parser.FunctionStatement) []opcode.OpCode {
	seen := make(map[string]bool, len(stmt.Parameters))
	for _, p := range stmt.Parameters {
		if seen[p] {
			g.errorf(stmt.Token, "function %s: duplicate parameter %s", stmt.Name, p)
		}
		seen[p] = true
	}

	params := append([]string(nil), stmt.Parameters...)
	body := g.generateBlockStatement(stmt.Body)

	return []opcode.OpCode{{
		Cmd:  opcode.DefineFunction,
		Args: []any{stmt.Name, params, body},
		Line: stmt.Token.Line,
	}}
}

// generateBlockStatement converts a block statement to OpCodes.
func (g *Generator) generateBlockStatement(stmt *parser.BlockStatement) []opcode.OpCode {
	var opcodes []opcode.OpCode

	for _, s := range stmt.Statements {
		opcodes = append(opcodes, g.generateStatement(s)...)
	}

	return opcodes
}
