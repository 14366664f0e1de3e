package parser

import (
	"strconv"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
	"github.com/tarn-lang/tarn/internal/lexer"
)

// parseExpr climbs operator precedence starting from minBP. Operators whose
// left binding power is below minBP are left for the caller.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	lhs := p.parseApplication()
	if lhs == nil {
		return nil
	}

	for lexer.IsBinaryOp(p.cur().Type) {
		lbp := bindingPowers[p.cur().Type]
		if lbp < minBP {
			break
		}

		op := p.cur().Literal
		p.next()

		rhs := p.parseExpr(lbp + 1)
		if rhs == nil {
			return nil
		}

		lhs = ast.NewBinary(op, lhs, rhs)
	}

	return lhs
}

// parseApplication parses an atom followed by zero or more juxtaposed
// argument atoms. Each argument is attempted speculatively: a failed attempt
// rewinds and simply ends the application chain.
func (p *Parser) parseApplication() ast.Expr {
	fn := p.parseAtom()
	if fn == nil {
		return nil
	}

	for canStartAtom(p.cur().Type) {
		m := p.mark()
		arg := p.parseAtom()
		if arg == nil {
			p.restore(m)
			break
		}
		fn = ast.NewApply(fn, arg)
	}

	return fn
}

func canStartAtom(tt lexer.TokenType) bool {
	switch tt {
	case lexer.UNIT, lexer.TRUE, lexer.FALSE, lexer.INT, lexer.FLOAT, lexer.STRING,
		lexer.IDENT, lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE,
		lexer.IF, lexer.LET, lexer.CASE, lexer.BACKSLASH:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.cur()

	switch tok.Type {
	case lexer.UNIT:
		p.next()
		return ast.NewUnit(tok.Span)

	case lexer.TRUE, lexer.FALSE:
		p.next()
		return ast.NewBool(tok.Type == lexer.TRUE, tok.Span)

	case lexer.INT:
		p.next()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
				"integer literal %q out of range", tok.Literal)
			return nil
		}
		return ast.NewInt(v, tok.Span)

	case lexer.FLOAT:
		p.next()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
				"malformed float literal %q", tok.Literal)
			return nil
		}
		return ast.NewFloat(v, tok.Span)

	case lexer.STRING:
		p.next()
		return ast.NewString(tok.Literal, tok.Span)

	case lexer.IDENT:
		p.next()
		return ast.NewSym(tok.Literal, tok.Span)

	case lexer.LPAREN:
		return p.parseParenExpr()

	case lexer.LBRACKET:
		return p.parseListExpr()

	case lexer.LBRACE:
		return p.parseBraceExpr()

	case lexer.IF:
		return p.parseIfExpr()

	case lexer.BACKSLASH:
		return p.parseLambdaExpr()

	case lexer.LET:
		return p.parseLetExpr()

	case lexer.CASE:
		return p.parseCaseExpr()

	default:
		p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
			"expected expression, found %q", tok.Literal)
		return nil
	}
}

// parseParenExpr parses a grouped expression or a semicolon-separated tuple.
func (p *Parser) parseParenExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume '('

	first := p.parseExpr(bpLowest)
	if first == nil {
		return nil
	}

	if p.cur().Type != lexer.SEMICOLON {
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elems := []ast.Expr{first}
	for p.cur().Type == lexer.SEMICOLON {
		p.next()
		elem := p.parseExpr(bpLowest)
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
	}

	end := p.cur().Span
	if !p.expect(lexer.RPAREN) {
		return nil
	}

	return ast.NewTuple(elems, start.Union(end))
}

func (p *Parser) parseListExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume '['

	if p.cur().Type == lexer.RBRACKET {
		end := p.cur().Span
		p.next()
		return ast.NewList(nil, start.Union(end))
	}

	var elems []ast.Expr
	for {
		elem := p.parseExpr(bpLowest)
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
		if p.cur().Type != lexer.SEMICOLON {
			break
		}
		p.next()
	}

	end := p.cur().Span
	if !p.expect(lexer.RBRACKET) {
		return nil
	}

	return ast.NewList(elems, start.Union(end))
}

// parseBraceExpr parses either a record literal ({x : 1; y : 2}) or a block
// ({e1; e2}). The two are distinguished by a name:colon prefix.
func (p *Parser) parseBraceExpr() ast.Expr {
	if p.pos+2 < len(p.toks) &&
		p.toks[p.pos+1].Type == lexer.IDENT &&
		p.toks[p.pos+2].Type == lexer.COLON {
		return p.parseRecordExpr()
	}
	return p.parseBlockExpr()
}

func (p *Parser) parseRecordExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume '{'

	var fields []*ast.RecordField
	for {
		nameTok := p.cur()
		if nameTok.Type != lexer.IDENT {
			p.reportError(diag.CodeParseUnexpectedToken, nameTok.Span,
				"expected field name, found %q", nameTok.Literal)
			return nil
		}
		p.next()

		if !p.expect(lexer.COLON) {
			return nil
		}

		value := p.parseExpr(bpLowest)
		if value == nil {
			return nil
		}

		fields = append(fields, ast.NewRecordField(nameTok.Literal, value, nameTok.Span.Union(value.Span())))

		if p.cur().Type != lexer.SEMICOLON {
			break
		}
		p.next()
	}

	end := p.cur().Span
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	return ast.NewRecord(fields, start.Union(end))
}

func (p *Parser) parseBlockExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume '{'

	var exprs []ast.Expr
	for {
		expr := p.parseExpr(bpLowest)
		if expr == nil {
			return nil
		}
		exprs = append(exprs, expr)
		if p.cur().Type != lexer.SEMICOLON {
			break
		}
		p.next()
	}

	end := p.cur().Span
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	return ast.NewBlock(exprs, start.Union(end))
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume 'if'

	cond := p.parseExpr(bpLowest)
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.THEN) {
		return nil
	}
	then := p.parseExpr(bpLowest)
	if then == nil {
		return nil
	}

	if !p.expect(lexer.ELSE) {
		return nil
	}
	els := p.parseExpr(bpLowest)
	if els == nil {
		return nil
	}

	return ast.NewIf(cond, then, els, start.Union(els.Span()))
}

func (p *Parser) parseLambdaExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume '\'

	params := p.parseParams()
	if len(params) == 0 {
		p.reportError(diag.CodeParseUnexpectedToken, p.cur().Span,
			"expected parameter after %q", "\\")
		return nil
	}

	if !p.expect(lexer.ASSIGN) {
		return nil
	}

	body := p.parseExpr(bpLowest)
	if body == nil {
		return nil
	}

	return ast.NewLambda(params, body, start.Union(body.Span()))
}

// parseParams parses zero or more parameters: bare names, or parenthesized
// name:type pairs.
func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param

	for {
		switch p.cur().Type {
		case lexer.IDENT:
			tok := p.cur()
			p.next()
			params = append(params, ast.NewParam(tok.Literal, nil, tok.Span))

		case lexer.LPAREN:
			// Annotated parameters are always (name : type); anything else
			// after '(' ends the parameter list.
			if p.pos+1 >= len(p.toks) || p.toks[p.pos+1].Type != lexer.IDENT ||
				p.pos+2 >= len(p.toks) || p.toks[p.pos+2].Type != lexer.COLON {
				return params
			}
			start := p.cur().Span
			p.next() // consume '('
			nameTok := p.cur()
			p.next() // consume name
			p.next() // consume ':'
			typ := p.parseTypeExpr()
			if typ == nil {
				return params
			}
			end := p.cur().Span
			if !p.expect(lexer.RPAREN) {
				return params
			}
			params = append(params, ast.NewParam(nameTok.Literal, typ, start.Union(end)))

		default:
			return params
		}
	}
}

func (p *Parser) parseLetExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume 'let'

	var binder ast.Pattern
	var params []*ast.Param

	if p.cur().Type == lexer.IDENT {
		nameTok := p.cur()
		p.next()
		binder = ast.NewPatSym(nameTok.Literal, nameTok.Span)
		params = p.parseParams()
	} else {
		binder = p.parsePattern()
		if binder == nil {
			return nil
		}
	}

	var ann ast.TypeExpr
	if p.cur().Type == lexer.COLON {
		p.next()
		ann = p.parseTypeExpr()
		if ann == nil {
			return nil
		}
	}

	if !p.expect(lexer.ASSIGN) {
		return nil
	}

	body := p.parseExpr(bpLowest)
	if body == nil {
		return nil
	}

	// The final binding of a unit may omit its continuation; it defaults
	// to the unit value.
	var rest ast.Expr
	if p.cur().Type == lexer.IN {
		p.next()
		rest = p.parseExpr(bpLowest)
		if rest == nil {
			return nil
		}
	} else {
		rest = ast.NewUnit(body.Span())
	}

	return ast.NewLet(binder, params, ann, body, rest, start.Union(rest.Span()))
}

func (p *Parser) parseCaseExpr() ast.Expr {
	start := p.cur().Span
	p.next() // consume 'case'

	scrut := p.parseExpr(bpLowest)
	if scrut == nil {
		return nil
	}

	if !p.expect(lexer.OF) {
		return nil
	}

	var arms []*ast.CaseArm
	for p.cur().Type == lexer.PIPE {
		armStart := p.cur().Span
		p.next()

		pat := p.parsePattern()
		if pat == nil {
			return nil
		}

		if !p.expect(lexer.ASSIGN) {
			return nil
		}

		body := p.parseExpr(bpLowest)
		if body == nil {
			return nil
		}

		arms = append(arms, ast.NewCaseArm(pat, body, armStart.Union(body.Span())))
	}

	if len(arms) == 0 {
		p.reportError(diag.CodeParseUnexpectedToken, p.cur().Span,
			"expected %q to begin a case arm, found %q", "|", p.cur().Literal)
		return nil
	}

	end := arms[len(arms)-1].Span()
	return ast.NewCase(scrut, arms, start.Union(end))
}
