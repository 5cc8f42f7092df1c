package parser

import (
	"fmt"
	"strconv"

	"github.com/zurustar/inkbot/pkg/compiler/lexer"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // myFunction(X)
	INDEX       // array[index]
)

var precedences = map[lexer.TokenType]int{
	lexer.TOKEN_OR:       OR,
	lexer.TOKEN_AND:      AND,
	lexer.TOKEN_EQ:       EQUALS,
	lexer.TOKEN_NEQ:      EQUALS,
	lexer.TOKEN_LT:       LESSGREATER,
	lexer.TOKEN_LTE:      LESSGREATER,
	lexer.TOKEN_GT:       LESSGREATER,
	lexer.TOKEN_GTE:      LESSGREATER,
	lexer.TOKEN_PLUS:     SUM,
	lexer.TOKEN_MINUS:    SUM,
	lexer.TOKEN_ASTERISK: PRODUCT,
	lexer.TOKEN_SLASH:    PRODUCT,
	lexer.TOKEN_PERCENT:  PRODUCT,
	lexer.TOKEN_LPAREN:   CALL,
	lexer.TOKEN_LBRACKET: INDEX,
}

// ParserError is a syntax error at a source position.
type ParserError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Parser parses sketch source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []*ParserError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.TOKEN_IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.TOKEN_INT, p.parseNumberLiteral)
	p.registerPrefix(lexer.TOKEN_FLOAT, p.parseNumberLiteral)
	p.registerPrefix(lexer.TOKEN_STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TOKEN_TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.TOKEN_FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.TOKEN_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.TOKEN_MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TOKEN_LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.TOKEN_LBRACKET, p.parseArrayLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, t := range []lexer.TokenType{
		lexer.TOKEN_PLUS, lexer.TOKEN_MINUS, lexer.TOKEN_ASTERISK, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT,
		lexer.TOKEN_EQ, lexer.TOKEN_NEQ, lexer.TOKEN_LT, lexer.TOKEN_LTE, lexer.TOKEN_GT, lexer.TOKEN_GTE,
		lexer.TOKEN_AND, lexer.TOKEN_OR,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(lexer.TOKEN_LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.TOKEN_LBRACKET, p.parseIndexExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parser errors.
func (p *Parser) Errors() []*ParserError {
	return p.errors
}

// ParseProgram parses the entire program.
func (p *Parser) ParseProgram() *Program {
	program := &Program{Statements: []Statement{}}

	for !p.curTokenIs(lexer.TOKEN_EOF) {
		// Skip semicolons (statement terminators)
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.TOKEN_FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.TOKEN_IF:
		return p.parseIfStatement()
	case lexer.TOKEN_FOR:
		return p.parseForStatement()
	case lexer.TOKEN_WHILE:
		return p.parseWhileStatement()
	case lexer.TOKEN_BREAK:
		return &BreakStatement{Token: p.curToken}
	case lexer.TOKEN_CONTINUE:
		return &ContinueStatement{Token: p.curToken}
	case lexer.TOKEN_RETURN:
		return p.parseReturnStatement()
	case lexer.TOKEN_LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	default:
		return p.parseSimpleStatement(true)
	}
}

// parseSimpleStatement parses an expression statement or an assignment.
// When allowFunc is set, "name(a, b) {" is read as a function declaration.
func (p *Parser) parseSimpleStatement(allowFunc bool) Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if allowFunc && p.peekTokenIs(lexer.TOKEN_LBRACE) {
		if call, ok := expr.(*CallExpression); ok {
			return p.functionFromCall(tok, call)
		}
	}

	if p.peekToken.Type.IsAssign() {
		switch expr.(type) {
		case *Identifier, *IndexExpression:
		default:
			p.addError(fmt.Sprintf("cannot assign to %s", expr.String()), p.peekToken.Line, p.peekToken.Column)
			return nil
		}
		p.nextToken()
		stmt := &AssignStatement{Token: p.curToken, Name: expr, Operator: p.curToken.Literal}
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
		return stmt
	}

	return &ExpressionStatement{Token: tok, Expression: expr}
}

// functionFromCall turns "name(a, b)" followed by a block into a declaration.
func (p *Parser) functionFromCall(tok lexer.Token, call *CallExpression) Statement {
	name, ok := call.Function.(*Identifier)
	if !ok {
		p.addError(fmt.Sprintf("invalid function name %s", call.Function.String()), tok.Line, tok.Column)
		return nil
	}
	fn := &FunctionStatement{Token: tok, Name: name.Value}
	for _, arg := range call.Arguments {
		param, ok := arg.(*Identifier)
		if !ok {
			p.addError(fmt.Sprintf("function %s: parameter must be a name, got %s", name.Value, arg.String()), tok.Line, tok.Column)
			return nil
		}
		fn.Parameters = append(fn.Parameters, param.Value)
	}
	p.nextToken()
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseFunctionDeclaration() Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	fn := &FunctionStatement{Token: tok, Name: p.curToken.Literal}

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	if !p.peekTokenIs(lexer.TOKEN_RPAREN) {
		for {
			if !p.expectPeek(lexer.TOKEN_IDENT) {
				return nil
			}
			fn.Parameters = append(fn.Parameters, p.curToken.Literal)
			if !p.peekTokenIs(lexer.TOKEN_COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(lexer.TOKEN_SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &NumberLiteral{Token: p.curToken}
	literal := p.curToken.Literal

	// 0x/0X は16進数
	if len(literal) > 2 && literal[0] == '0' && (literal[1] == 'x' || literal[1] == 'X') {
		value, err := strconv.ParseInt(literal[2:], 16, 64)
		if err != nil {
			p.addError(fmt.Sprintf("could not parse %q as integer", literal), p.curToken.Line, p.curToken.Column)
			return nil
		}
		lit.Value = float64(value)
		return lit
	}

	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		p.addError(fmt.Sprintf("could not parse %q as number", literal), p.curToken.Line, p.curToken.Column)
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TOKEN_TRUE)}
}

func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(lexer.TOKEN_RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

func (p *Parser) parsePrefixExpression() Expression {
	expression := &PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expression := &InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	exp := &CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(lexer.TOKEN_RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	exp := &IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_RBRACKET) {
		return nil
	}

	return exp
}

func (p *Parser) parseExpressionList(end lexer.TokenType) ([]Expression, bool) {
	list := []Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(lexer.TOKEN_COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}

	stmt.Consequence = p.parseBlockStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_ELSE) {
		p.nextToken()

		// else if はネストした if として扱う
		if p.peekTokenIs(lexer.TOKEN_IF) {
			p.nextToken()
			tok := p.curToken
			nested := p.parseIfStatement()
			if nested == nil {
				return nil
			}
			stmt.Alternative = &BlockStatement{Token: tok, Statements: []Statement{nested}}
		} else if p.expectPeek(lexer.TOKEN_LBRACE) {
			stmt.Alternative = p.parseBlockStatement()
			if stmt.Alternative == nil {
				return nil
			}
		} else {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseForStatement() Statement {
	stmt := &ForStatement{Token: p.curToken}

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}

	// init
	if p.peekTokenIs(lexer.TOKEN_SEMICOLON) {
		p.nextToken()
	} else {
		p.nextToken()
		stmt.Init = p.parseSimpleStatement(false)
		if stmt.Init == nil || !p.expectPeek(lexer.TOKEN_SEMICOLON) {
			return nil
		}
	}

	// condition
	if p.peekTokenIs(lexer.TOKEN_SEMICOLON) {
		p.nextToken()
	} else {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil || !p.expectPeek(lexer.TOKEN_SEMICOLON) {
			return nil
		}
	}

	// post
	if p.peekTokenIs(lexer.TOKEN_RPAREN) {
		p.nextToken()
	} else {
		p.nextToken()
		stmt.Post = p.parseSimpleStatement(false)
		if stmt.Post == nil || !p.expectPeek(lexer.TOKEN_RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}

	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}

	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.TOKEN_SEMICOLON) || p.peekTokenIs(lexer.TOKEN_RBRACE) || p.peekTokenIs(lexer.TOKEN_EOF) {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseBlockStatement parses { ... }. curToken must be the opening brace;
// on return it is the closing brace.
func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken, Statements: []Statement{}}

	p.nextToken()

	for !p.curTokenIs(lexer.TOKEN_RBRACE) {
		if p.curTokenIs(lexer.TOKEN_EOF) {
			p.addError(fmt.Sprintf("unterminated block opened at line %d", block.Token.Line), p.curToken.Line, p.curToken.Column)
			return nil
		}
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	// Skip comments
	for p.peekToken.Type == lexer.TOKEN_COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) addError(msg string, line, column int) {
	p.errors = append(p.errors, &ParserError{Message: msg, Line: line, Column: column})
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, describe(p.peekToken))
	p.addError(msg, p.peekToken.Line, p.peekToken.Column)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	if tok.Type == lexer.TOKEN_ILLEGAL {
		p.addError(fmt.Sprintf("illegal token %q", tok.Literal), tok.Line, tok.Column)
		return
	}
	p.addError(fmt.Sprintf("unexpected %s", describe(tok)), tok.Line, tok.Column)
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TOKEN_EOF:
		return "end of input"
	case lexer.TOKEN_IDENT, lexer.TOKEN_INT, lexer.TOKEN_FLOAT, lexer.TOKEN_STRING:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Type.String())
	}
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
