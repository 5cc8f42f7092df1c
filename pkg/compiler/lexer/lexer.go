package lexer

import "strings"

// Lexer tokenizes sketch source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.pairOr('=', TOKEN_EQ, TOKEN_ASSIGN)
	case '+':
		tok = l.pairOr('=', TOKEN_PLUS_ASSIGN, TOKEN_PLUS)
	case '-':
		tok = l.pairOr('=', TOKEN_MINUS_ASSIGN, TOKEN_MINUS)
	case '*':
		tok = l.pairOr('=', TOKEN_MUL_ASSIGN, TOKEN_ASTERISK)
	case '/':
		if l.peekChar() == '/' {
			tok.Type = TOKEN_COMMENT
			tok.Literal = l.readComment()
			return tok
		} else if l.peekChar() == '*' {
			tok.Type = TOKEN_COMMENT
			lit, ok := l.readMultiLineComment()
			tok.Literal = lit
			if !ok {
				tok.Type = TOKEN_ILLEGAL
				tok.Literal = "unterminated comment"
			}
			return tok
		}
		tok = l.pairOr('=', TOKEN_DIV_ASSIGN, TOKEN_SLASH)
	case '%':
		tok = l.newToken(TOKEN_PERCENT, l.ch)
	case '!':
		tok = l.pairOr('=', TOKEN_NEQ, TOKEN_NOT)
	case '<':
		tok = l.pairOr('=', TOKEN_LTE, TOKEN_LT)
	case '>':
		tok = l.pairOr('=', TOKEN_GTE, TOKEN_GT)
	case '&':
		tok = l.pairOr('&', TOKEN_AND, TOKEN_ILLEGAL)
	case '|':
		tok = l.pairOr('|', TOKEN_OR, TOKEN_ILLEGAL)
	case '(':
		tok = l.newToken(TOKEN_LPAREN, l.ch)
	case ')':
		tok = l.newToken(TOKEN_RPAREN, l.ch)
	case '{':
		tok = l.newToken(TOKEN_LBRACE, l.ch)
	case '}':
		tok = l.newToken(TOKEN_RBRACE, l.ch)
	case '[':
		tok = l.newToken(TOKEN_LBRACKET, l.ch)
	case ']':
		tok = l.newToken(TOKEN_RBRACKET, l.ch)
	case ',':
		tok = l.newToken(TOKEN_COMMA, l.ch)
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, l.ch)
	case '"', '\'':
		lit, ok := l.readString(l.ch)
		tok.Type = TOKEN_STRING
		tok.Literal = lit
		if !ok {
			tok.Type = TOKEN_ILLEGAL
			tok.Literal = "unterminated string"
			return tok
		}
	case 0:
		tok.Literal = ""
		tok.Type = TOKEN_EOF
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			return l.readNumber(tok.Line, tok.Column)
		}
		tok = l.newToken(TOKEN_ILLEGAL, l.ch)
	}

	l.readChar()
	return tok
}

// pairOr returns the two-character token when the next char is second,
// otherwise the single-character token.
func (l *Lexer) pairOr(second byte, pair, single TokenType) Token {
	if l.peekChar() == second {
		line, column := l.line, l.column
		ch := l.ch
		l.readChar()
		return Token{Type: pair, Literal: string(ch) + string(l.ch), Line: line, Column: column}
	}
	return l.newToken(single, l.ch)
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer, float, or hexadecimal).
func (l *Lexer) readNumber(line, column int) Token {
	position := l.position
	isFloat := false

	// Check for hexadecimal (0x or 0X)
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // consume '0'
		l.readChar() // consume 'x' or 'X'

		for isHexDigit(l.ch) {
			l.readChar()
		}

		literal := l.input[position:l.position]
		return Token{Type: TOKEN_INT, Literal: literal, Line: line, Column: column}
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// 指数表記 (1e3, 2.5E-2)
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && l.readPosition+1 < len(l.input) && isDigit(l.input[l.readPosition+1])) {
			isFloat = true
			l.readChar() // consume 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	literal := l.input[position:l.position]
	if isFloat {
		return Token{Type: TOKEN_FLOAT, Literal: literal, Line: line, Column: column}
	}
	return Token{Type: TOKEN_INT, Literal: literal, Line: line, Column: column}
}

// readString reads a string literal delimited by quote and resolves escapes.
// The second result is false when the input ends before the closing quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), false
		case quote:
			return sb.String(), true
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 0:
				return sb.String(), false
			default:
				// \" \' \\ はそのまま
				sb.WriteByte(l.ch)
			}
		default:
			sb.WriteByte(l.ch)
		}
	}
}

// readComment reads a single-line comment.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readMultiLineComment reads a multi-line comment /* ... */
func (l *Lexer) readMultiLineComment() (string, bool) {
	position := l.position
	l.readChar() // consume /
	l.readChar() // consume *

	for {
		if l.ch == 0 {
			return l.input[position:l.position], false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			return l.input[position:l.position], true
		}
		l.readChar()
	}
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// isLetter checks if a character is a letter.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if a character is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// Source returns the source code as a string.
func (l *Lexer) Source() string {
	return l.input
}

// Tokenize returns every token up to and including EOF, comments excluded.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TOKEN_COMMENT {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			return tokens
		}
	}
}
