package fxmanifest

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType describes the kind of token.
type TokenType int

const (
	tokEOF TokenType = iota
	tokIdent
	tokString
	tokNumber
	tokTrue
	tokFalse
	tokNil
	tokKeyword
	tokAssign
	tokComma
	tokSemicolon
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokOther
)

var tokenNames = map[TokenType]string{
	tokEOF:       "end of file",
	tokIdent:     "identifier",
	tokString:    "string",
	tokNumber:    "number",
	tokTrue:      "true",
	tokFalse:     "false",
	tokNil:       "nil",
	tokKeyword:   "keyword",
	tokAssign:    "'='",
	tokComma:     "','",
	tokSemicolon: "';'",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBrace:    "'{'",
	tokRBrace:    "'}'",
	tokOther:     "symbol",
}

func (t TokenType) String() string {
	return tokenNames[t]
}

// Lua keywords that can't start a declarative statement
var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true, "end": true,
	"for": true, "function": true, "goto": true, "if": true, "in": true, "local": true,
	"not": true, "or": true, "repeat": true, "return": true, "then": true, "until": true,
	"while": true,
}

// Token represents a single lexical token.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

func (t Token) describe() string {
	switch t.Type {
	case tokEOF:
		return t.Type.String()
	case tokString:
		return fmt.Sprintf("string %q", t.Value)
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

// lexer converts manifest source into tokens.
type lexer struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
}

func newLexer(file, src string) *lexer {
	return &lexer{
		file: file,
		src:  []rune(src),
		line: 1,
		col:  1,
	}
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) error {
	return syntaxErrorf(l.file, line, col, format, args...)
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

// lex tokenizes the entire input. The last token is always tokEOF.
func (l *lexer) lex() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
		if tok.Type == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (Token, error) {
	err := l.skipSpaceAndComments()
	if err != nil {
		return Token{}, err
	}

	line, col := l.line, l.col
	if l.eof() {
		return Token{Type: tokEOF, Line: line, Column: col}, nil
	}

	r := l.peek(0)
	switch {
	case r == '_' || unicode.IsLetter(r):
		return l.lexIdent(line, col), nil
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		return l.lexNumber(line, col), nil
	case r == '"' || r == '\'':
		return l.lexQuoted(line, col)
	case r == '[' && (l.peek(1) == '[' || l.peek(1) == '='):
		level, ok := l.longBracketLevel()
		if ok {
			value, err := l.lexLongBracket(level, line, col)
			if err != nil {
				return Token{}, err
			}
			return Token{Type: tokString, Value: value, Line: line, Column: col}, nil
		}
	}

	l.advance()
	tok := Token{Value: string(r), Line: line, Column: col}
	switch r {
	case '=':
		if l.peek(0) == '=' {
			l.advance()
			tok.Value = "=="
			tok.Type = tokOther
		} else {
			tok.Type = tokAssign
		}
	case ',':
		tok.Type = tokComma
	case ';':
		tok.Type = tokSemicolon
	case '(':
		tok.Type = tokLParen
	case ')':
		tok.Type = tokRParen
	case '{':
		tok.Type = tokLBrace
	case '}':
		tok.Type = tokRBrace
	default:
		tok.Type = tokOther
	}

	return tok, nil
}

func (l *lexer) skipSpaceAndComments() error {
	for !l.eof() {
		r := l.peek(0)
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}

		if r == '-' && l.peek(1) == '-' {
			line, col := l.line, l.col
			l.advance()
			l.advance()

			if l.peek(0) == '[' {
				level, ok := l.longBracketLevel()
				if ok {
					_, err := l.lexLongBracket(level, line, col)
					if err != nil {
						return l.errorf(line, col, "unfinished long comment")
					}
					continue
				}
			}

			for !l.eof() && l.peek(0) != '\n' {
				l.advance()
			}
			continue
		}

		return nil
	}

	return nil
}

func (l *lexer) lexIdent(line, col int) Token {
	start := l.pos
	for !l.eof() {
		r := l.peek(0)
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}

	value := string(l.src[start:l.pos])
	tok := Token{Type: tokIdent, Value: value, Line: line, Column: col}
	switch {
	case value == "true":
		tok.Type = tokTrue
	case value == "false":
		tok.Type = tokFalse
	case value == "nil":
		tok.Type = tokNil
	case keywords[value]:
		tok.Type = tokKeyword
	}

	return tok
}

func (l *lexer) lexNumber(line, col int) Token {
	start := l.pos
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()
	}

	for !l.eof() {
		r := l.peek(0)
		if r == '.' || r == '_' || unicode.IsDigit(r) || unicode.IsLetter(r) {
			l.advance()
			continue
		}

		// exponent sign, e.g. 1e-3
		if (r == '-' || r == '+') && l.pos > start && strings.ContainsRune("eEpP", l.src[l.pos-1]) {
			l.advance()
			continue
		}
		break
	}

	return Token{Type: tokNumber, Value: string(l.src[start:l.pos]), Line: line, Column: col}
}

func (l *lexer) lexQuoted(line, col int) (Token, error) {
	quote := l.advance()
	var sb strings.Builder

	for {
		if l.eof() || l.peek(0) == '\n' {
			return Token{}, l.errorf(line, col, "unfinished string")
		}

		r := l.advance()
		if r == quote {
			break
		}

		if r != '\\' {
			sb.WriteRune(r)
			continue
		}

		if l.eof() {
			return Token{}, l.errorf(line, col, "unfinished string")
		}

		escLine, escCol := l.line, l.col
		esc := l.advance()
		switch esc {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case 'r':
			sb.WriteRune('\r')
		case 'a':
			sb.WriteRune('\a')
		case 'b':
			sb.WriteRune('\b')
		case 'f':
			sb.WriteRune('\f')
		case 'v':
			sb.WriteRune('\v')
		case '\\', '"', '\'', '\n':
			sb.WriteRune(esc)
		case 'z':
			for !l.eof() && unicode.IsSpace(l.peek(0)) {
				l.advance()
			}
		case 'x':
			code, ok := l.hexDigits(2, 2)
			if !ok {
				return Token{}, l.errorf(escLine, escCol, "hexadecimal digit expected")
			}
			sb.WriteByte(byte(code))
		case 'u':
			if l.peek(0) != '{' {
				return Token{}, l.errorf(escLine, escCol, "missing '{' in \\u{xxxx}")
			}
			l.advance()
			code, ok := l.hexDigits(1, 8)
			if !ok || l.peek(0) != '}' {
				return Token{}, l.errorf(escLine, escCol, "invalid \\u{xxxx} escape")
			}
			l.advance()
			if code > unicode.MaxRune {
				return Token{}, l.errorf(escLine, escCol, "UTF-8 value too large")
			}
			sb.WriteRune(rune(code))
		default:
			if unicode.IsDigit(esc) {
				code := int(esc - '0')
				for i := 0; i < 2 && unicode.IsDigit(l.peek(0)); i++ {
					code = code*10 + int(l.advance()-'0')
				}
				if code > 255 {
					return Token{}, l.errorf(escLine, escCol, "decimal escape too large")
				}
				sb.WriteByte(byte(code))
				continue
			}

			return Token{}, l.errorf(escLine, escCol, "invalid escape sequence '\\%c'", esc)
		}
	}

	return Token{Type: tokString, Value: sb.String(), Line: line, Column: col}, nil
}

// hexDigits consumes between min and max hexadecimal digits
func (l *lexer) hexDigits(min, max int) (int64, bool) {
	var code int64
	count := 0
	for count < max {
		digit := hexValue(l.peek(0))
		if digit < 0 {
			break
		}
		code = code*16 + int64(digit)
		l.advance()
		count++
	}

	return code, count >= min
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

// longBracketLevel checks for [[ or [==[ at the current position without consuming anything.
func (l *lexer) longBracketLevel() (int, bool) {
	if l.peek(0) != '[' {
		return 0, false
	}

	level := 0
	for l.peek(1+level) == '=' {
		level++
	}

	return level, l.peek(1+level) == '['
}

func (l *lexer) lexLongBracket(level, line, col int) (string, error) {
	// opening bracket
	for i := 0; i < level+2; i++ {
		l.advance()
	}

	// a newline directly after the opening bracket is skipped
	if l.peek(0) == '\r' {
		l.advance()
	}
	if l.peek(0) == '\n' {
		l.advance()
	}

	start := l.pos
	for !l.eof() {
		if l.peek(0) == ']' {
			end := l.pos
			matched := true
			for i := 1; i <= level; i++ {
				if l.peek(i) != '=' {
					matched = false
					break
				}
			}

			if matched && l.peek(level+1) == ']' {
				for i := 0; i < level+2; i++ {
					l.advance()
				}
				return string(l.src[start:end]), nil
			}
		}

		l.advance()
	}

	return "", l.errorf(line, col, "unfinished long string")
}
