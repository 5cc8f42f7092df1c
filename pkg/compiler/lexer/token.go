// Package lexer provides lexical analysis for sketch scripts.
package lexer

// TokenType represents the type of a token.
type TokenType int

// Token types
const (
	// Special tokens
	TOKEN_ILLEGAL TokenType = iota
	TOKEN_EOF
	TOKEN_COMMENT

	// Literals
	TOKEN_IDENT  // identifier
	TOKEN_INT    // integer literal
	TOKEN_FLOAT  // floating point literal
	TOKEN_STRING // string literal

	// Operators
	TOKEN_PLUS         // +
	TOKEN_MINUS        // -
	TOKEN_ASTERISK     // *
	TOKEN_SLASH        // /
	TOKEN_PERCENT      // %
	TOKEN_ASSIGN       // =
	TOKEN_PLUS_ASSIGN  // +=
	TOKEN_MINUS_ASSIGN // -=
	TOKEN_MUL_ASSIGN   // *=
	TOKEN_DIV_ASSIGN   // /=
	TOKEN_EQ           // ==
	TOKEN_NEQ          // !=
	TOKEN_LT           // <
	TOKEN_GT           // >
	TOKEN_LTE          // <=
	TOKEN_GTE          // >=
	TOKEN_AND          // &&
	TOKEN_OR           // ||
	TOKEN_NOT          // !

	// Delimiters
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;

	// Keywords
	TOKEN_IF       // if
	TOKEN_ELSE     // else
	TOKEN_FOR      // for
	TOKEN_WHILE    // while
	TOKEN_BREAK    // break
	TOKEN_CONTINUE // continue
	TOKEN_RETURN   // return
	TOKEN_TRUE     // true
	TOKEN_FALSE    // false
	TOKEN_FUNCTION // function
)

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// tokenTypeNames maps TokenType to its string representation.
var tokenTypeNames = map[TokenType]string{
	// Special tokens
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_EOF:     "EOF",
	TOKEN_COMMENT: "COMMENT",

	// Literals
	TOKEN_IDENT:  "IDENT",
	TOKEN_INT:    "INT",
	TOKEN_FLOAT:  "FLOAT",
	TOKEN_STRING: "STRING",

	// Operators
	TOKEN_PLUS:         "+",
	TOKEN_MINUS:        "-",
	TOKEN_ASTERISK:     "*",
	TOKEN_SLASH:        "/",
	TOKEN_PERCENT:      "%",
	TOKEN_ASSIGN:       "=",
	TOKEN_PLUS_ASSIGN:  "+=",
	TOKEN_MINUS_ASSIGN: "-=",
	TOKEN_MUL_ASSIGN:   "*=",
	TOKEN_DIV_ASSIGN:   "/=",
	TOKEN_EQ:           "==",
	TOKEN_NEQ:          "!=",
	TOKEN_LT:           "<",
	TOKEN_GT:           ">",
	TOKEN_LTE:          "<=",
	TOKEN_GTE:          ">=",
	TOKEN_AND:          "&&",
	TOKEN_OR:           "||",
	TOKEN_NOT:          "!",

	// Delimiters
	TOKEN_LPAREN:    "(",
	TOKEN_RPAREN:    ")",
	TOKEN_LBRACE:    "{",
	TOKEN_RBRACE:    "}",
	TOKEN_LBRACKET:  "[",
	TOKEN_RBRACKET:  "]",
	TOKEN_COMMA:     ",",
	TOKEN_SEMICOLON: ";",

	// Keywords
	TOKEN_IF:       "if",
	TOKEN_ELSE:     "else",
	TOKEN_FOR:      "for",
	TOKEN_WHILE:    "while",
	TOKEN_BREAK:    "break",
	TOKEN_CONTINUE: "continue",
	TOKEN_RETURN:   "return",
	TOKEN_TRUE:     "true",
	TOKEN_FALSE:    "false",
	TOKEN_FUNCTION: "function",
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword returns true if the token type is a keyword.
func (t TokenType) IsKeyword() bool {
	return t >= TOKEN_IF && t <= TOKEN_FUNCTION
}

// IsOperator returns true if the token type is an operator.
func (t TokenType) IsOperator() bool {
	return t >= TOKEN_PLUS && t <= TOKEN_NOT
}

// IsAssign returns true for = and the compound assignment operators.
func (t TokenType) IsAssign() bool {
	return t >= TOKEN_ASSIGN && t <= TOKEN_DIV_ASSIGN
}

// IsLiteral returns true if the token type is a literal.
func (t TokenType) IsLiteral() bool {
	return t >= TOKEN_IDENT && t <= TOKEN_STRING
}

var keywords = map[string]TokenType{
	"if":       TOKEN_IF,
	"else":     TOKEN_ELSE,
	"for":      TOKEN_FOR,
	"while":    TOKEN_WHILE,
	"break":    TOKEN_BREAK,
	"continue": TOKEN_CONTINUE,
	"return":   TOKEN_RETURN,
	"true":     TOKEN_TRUE,
	"false":    TOKEN_FALSE,
	"function": TOKEN_FUNCTION,
}

// LookupIdent checks if the given identifier is a keyword.
// Keywords are case-sensitive; "If" is an ordinary identifier.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}
