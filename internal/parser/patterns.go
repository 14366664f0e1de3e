package parser

import (
	"strconv"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
	"github.com/tarn-lang/tarn/internal/lexer"
)

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()

	switch tok.Type {
	case lexer.UNIT:
		p.next()
		return ast.NewPatLit(ast.NewUnit(tok.Span), tok.Span)

	case lexer.TRUE, lexer.FALSE:
		p.next()
		return ast.NewPatLit(ast.NewBool(tok.Type == lexer.TRUE, tok.Span), tok.Span)

	case lexer.INT:
		p.next()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
				"integer literal %q out of range", tok.Literal)
			return nil
		}
		return ast.NewPatLit(ast.NewInt(v, tok.Span), tok.Span)

	case lexer.FLOAT:
		p.next()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
				"malformed float literal %q", tok.Literal)
			return nil
		}
		return ast.NewPatLit(ast.NewFloat(v, tok.Span), tok.Span)

	case lexer.STRING:
		p.next()
		return ast.NewPatLit(ast.NewString(tok.Literal, tok.Span), tok.Span)

	case lexer.IDENT:
		p.next()
		if tok.Literal == "_" {
			return ast.NewPatWild(tok.Span)
		}
		return ast.NewPatSym(tok.Literal, tok.Span)

	case lexer.LPAREN:
		return p.parseTuplePattern()

	case lexer.LBRACKET:
		return p.parseListPattern()

	case lexer.LBRACE:
		return p.parseRecordPattern()

	default:
		p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
			"expected pattern, found %q", tok.Literal)
		return nil
	}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.cur().Span
	p.next() // consume '('

	first := p.parsePattern()
	if first == nil {
		return nil
	}

	if p.cur().Type != lexer.SEMICOLON {
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return first
	}

	elems := []ast.Pattern{first}
	for p.cur().Type == lexer.SEMICOLON {
		p.next()
		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
	}

	end := p.cur().Span
	if !p.expect(lexer.RPAREN) {
		return nil
	}

	return ast.NewPatTuple(elems, start.Union(end))
}

func (p *Parser) parseListPattern() ast.Pattern {
	start := p.cur().Span
	p.next() // consume '['

	if p.cur().Type == lexer.RBRACKET {
		end := p.cur().Span
		p.next()
		return ast.NewPatList(nil, nil, start.Union(end))
	}

	var elems []ast.Pattern
	for {
		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
		if p.cur().Type != lexer.SEMICOLON {
			break
		}
		p.next()
	}

	var rest ast.Pattern
	if p.cur().Type == lexer.PIPE {
		p.next()
		rest = p.parsePattern()
		if rest == nil {
			return nil
		}
	}

	end := p.cur().Span
	if !p.expect(lexer.RBRACKET) {
		return nil
	}

	return ast.NewPatList(elems, rest, start.Union(end))
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	start := p.cur().Span
	p.next() // consume '{'

	var fields []string
	for {
		tok := p.cur()
		if tok.Type != lexer.IDENT {
			p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
				"expected field name, found %q", tok.Literal)
			return nil
		}
		p.next()
		fields = append(fields, tok.Literal)

		if p.cur().Type != lexer.SEMICOLON {
			break
		}
		p.next()
	}

	end := p.cur().Span
	if !p.expect(lexer.RBRACE) {
		return nil
	}

	return ast.NewPatRecord(fields, start.Union(end))
}
