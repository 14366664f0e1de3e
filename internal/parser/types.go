package parser

import (
	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
	"github.com/tarn-lang/tarn/internal/lexer"
)

// parseTypeExpr parses a type annotation. Arrows are right-associative and
// bind loosest; constructor application (list 'a) binds tightest.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	param := p.parseTypeApp()
	if param == nil {
		return nil
	}

	if p.cur().Type != lexer.ARROW {
		return param
	}
	p.next()

	result := p.parseTypeExpr()
	if result == nil {
		return nil
	}

	return ast.NewTArrow(param, result, param.Span().Union(result.Span()))
}

func (p *Parser) parseTypeApp() ast.TypeExpr {
	tok := p.cur()
	if tok.Type != lexer.IDENT {
		return p.parseTypePrimary()
	}
	p.next()

	if !canStartType(p.cur().Type) {
		return ast.NewTName(tok.Literal, tok.Span)
	}

	arg := p.parseTypePrimary()
	if arg == nil {
		return nil
	}

	return ast.NewTApp(tok.Literal, arg, tok.Span.Union(arg.Span()))
}

func canStartType(tt lexer.TokenType) bool {
	switch tt {
	case lexer.IDENT, lexer.TYPEVAR, lexer.LPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTypePrimary() ast.TypeExpr {
	tok := p.cur()

	switch tok.Type {
	case lexer.IDENT:
		p.next()
		return ast.NewTName(tok.Literal, tok.Span)

	case lexer.TYPEVAR:
		p.next()
		return ast.NewTVar(tok.Literal, tok.Span)

	case lexer.LPAREN:
		start := tok.Span
		p.next()

		first := p.parseTypeExpr()
		if first == nil {
			return nil
		}

		if p.cur().Type != lexer.SEMICOLON {
			if !p.expect(lexer.RPAREN) {
				return nil
			}
			return first
		}

		elems := []ast.TypeExpr{first}
		for p.cur().Type == lexer.SEMICOLON {
			p.next()
			elem := p.parseTypeExpr()
			if elem == nil {
				return nil
			}
			elems = append(elems, elem)
		}

		end := p.cur().Span
		if !p.expect(lexer.RPAREN) {
			return nil
		}

		return ast.NewTTuple(elems, start.Union(end))

	default:
		p.reportError(diag.CodeParseUnexpectedToken, tok.Span,
			"expected type expression, found %q", tok.Literal)
		return nil
	}
}
