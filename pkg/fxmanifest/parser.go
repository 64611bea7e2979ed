package fxmanifest

// Value is a literal right-hand side of a statement. Tables are flattened into Items.
type Value struct {
	Scalar  string
	Items   []string
	IsTable bool
}

// Strings returns the values forwarded for this literal: the scalar itself or every table item.
func (v Value) Strings() []string {
	if v.IsTable {
		return v.Items
	}
	return []string{v.Scalar}
}

// Statement is a single declarative statement, e.g. `ui_page 'web/dist/index.html'`
type Statement struct {
	Key    string
	Value  Value
	Extra  []Value
	Line   int
	Column int
}

type parser struct {
	file   string
	tokens []Token
	pos    int
}

// Parse parses a manifest script into its declarative statements. Only these forms are accepted:
//
//	key 'value'         key { 'a', 'b' }        key 'a' 'b'
//	key('value')        key({ 'a', 'b' })       key = 'value'
//
// with strings, numbers or booleans as values. Anything else is a *SyntaxError.
func Parse(file, src string) ([]Statement, error) {
	tokens, err := newLexer(file, src).lex()
	if err != nil {
		return nil, err
	}

	p := &parser{file: file, tokens: tokens}
	return p.parseChunk()
}

func (p *parser) current() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	return syntaxErrorf(p.file, tok.Line, tok.Column, format, args...)
}

func (p *parser) parseChunk() ([]Statement, error) {
	var stmts []Statement

	for {
		tok := p.current()
		switch tok.Type {
		case tokEOF:
			return stmts, nil
		case tokSemicolon:
			p.next()
			continue
		case tokIdent:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case tokKeyword:
			return nil, p.errorf(tok, "unsupported statement %q: only declarative statements are allowed", tok.Value)
		default:
			return nil, p.errorf(tok, "unexpected %s, expected a directive name", tok.describe())
		}
	}
}

func (p *parser) parseStatement() (Statement, error) {
	name := p.next()
	stmt := Statement{Key: name.Value, Line: name.Line, Column: name.Column}

	if p.current().Type == tokAssign {
		p.next()
		value, err := p.parseLiteral()
		if err != nil {
			return stmt, err
		}
		stmt.Value = value
		return stmt, p.expectStatementEnd()
	}

	value, ok, err := p.parseCallArgs()
	if err != nil {
		return stmt, err
	}
	if !ok {
		return stmt, p.errorf(p.current(), "unexpected %s after %s, expected a value", p.current().describe(), stmt.Key)
	}
	stmt.Value = value

	// chained calls like `data_file 'DLC_ITYP_REQUEST' 'stream/props.ytyp'`
	for {
		extra, ok, err := p.parseCallArgs()
		if err != nil {
			return stmt, err
		}
		if !ok {
			break
		}
		stmt.Extra = append(stmt.Extra, extra)
	}

	return stmt, p.expectStatementEnd()
}

// parseCallArgs handles the argument part of a call: a string, a table or a parenthesized literal.
func (p *parser) parseCallArgs() (Value, bool, error) {
	tok := p.current()
	switch tok.Type {
	case tokString:
		p.next()
		return Value{Scalar: tok.Value}, true, nil
	case tokLBrace:
		value, err := p.parseTable()
		return value, true, err
	case tokLParen:
		p.next()
		if p.current().Type == tokRParen {
			return Value{}, true, p.errorf(p.current(), "missing value in call")
		}

		value, err := p.parseLiteral()
		if err != nil {
			return value, true, err
		}

		if p.current().Type != tokRParen {
			return value, true, p.errorf(p.current(), "unexpected %s, expected ')'", p.current().describe())
		}
		p.next()
		return value, true, nil
	}

	return Value{}, false, nil
}

func (p *parser) expectStatementEnd() error {
	tok := p.current()
	switch tok.Type {
	case tokEOF, tokSemicolon, tokIdent, tokKeyword:
		// Lua has no statement terminator; the next statement simply starts here
		return nil
	}

	return p.errorf(tok, "unexpected %s: only literal values are allowed", tok.describe())
}

func (p *parser) parseScalar() (string, error) {
	tok := p.next()
	switch tok.Type {
	case tokString, tokNumber:
		return tok.Value, nil
	case tokTrue, tokFalse:
		return tok.Value, nil
	case tokNil:
		return "", p.errorf(tok, "nil is not a valid value")
	case tokLBrace:
		return "", p.errorf(tok, "nested tables are not supported")
	case tokOther:
		if tok.Value == "-" && p.current().Type == tokNumber {
			return "-" + p.next().Value, nil
		}
	}

	return "", p.errorf(tok, "unexpected %s, expected a literal value", tok.describe())
}

func (p *parser) parseLiteral() (Value, error) {
	if p.current().Type == tokLBrace {
		return p.parseTable()
	}

	scalar, err := p.parseScalar()
	return Value{Scalar: scalar}, err
}

func (p *parser) parseTable() (Value, error) {
	open := p.next()
	value := Value{IsTable: true, Items: []string{}}

	for {
		tok := p.current()
		switch tok.Type {
		case tokRBrace:
			p.next()
			return value, nil
		case tokEOF:
			return value, p.errorf(open, "unclosed table")
		}

		if tok.Type == tokIdent || (tok.Type == tokOther && tok.Value == "[") {
			return value, p.errorf(tok, "keyed table fields are not supported")
		}

		item, err := p.parseScalar()
		if err != nil {
			return value, err
		}
		value.Items = append(value.Items, item)

		switch p.current().Type {
		case tokComma, tokSemicolon:
			p.next()
		case tokRBrace:
		default:
			return value, p.errorf(p.current(), "unexpected %s in table, expected ',' or '}'", p.current().describe())
		}
	}
}
