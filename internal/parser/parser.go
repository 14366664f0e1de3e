package parser

import (
	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
	"github.com/tarn-lang/tarn/internal/lexer"
)

// Binding powers for binary operators, lowest first. Right binding power is
// always left+1, making every operator left-associative.
const (
	bpLowest = iota * 10
	bpOr
	bpAnd
	bpEquality
	bpComparison
	bpSum
	bpProduct
)

var bindingPowers = map[lexer.TokenType]int{
	lexer.OR:       bpOr,
	lexer.AND:      bpAnd,
	lexer.EQ:       bpEquality,
	lexer.NOT_EQ:   bpEquality,
	lexer.LT:       bpComparison,
	lexer.LE:       bpComparison,
	lexer.GT:       bpComparison,
	lexer.GE:       bpComparison,
	lexer.PLUS:     bpSum,
	lexer.MINUS:    bpSum,
	lexer.ASTERISK: bpProduct,
	lexer.SLASH:    bpProduct,
	lexer.PERCENT:  bpProduct,
}

// Parser is a precedence-climbing recursive descent parser over the complete
// token sequence produced by the lexer.
//
// Invariants:
//   - pos only moves forward, except through restore, which rewinds both the
//     cursor and the error accumulator to a mark taken before a speculative
//     parse. Every successful speculation consumes at least one token, so
//     backtracking depth is bounded by the remaining input.
//   - errors is append-only between marks; Parse surfaces the first entry.
type Parser struct {
	toks []lexer.Token
	pos  int

	errors []diag.Diagnostic
}

// New returns a parser over the given token sequence. The sequence must end
// with an EOF token, as produced by lexer.Lex.
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses one complete expression and errors if any tokens other than
// EOF remain after it.
func Parse(toks []lexer.Token) (ast.Expr, error) {
	p := New(toks)

	expr := p.parseExpr(bpLowest)
	if expr == nil {
		return nil, p.firstError()
	}

	if p.cur().Type != lexer.EOF {
		p.reportError(diag.CodeParseTrailingTokens, p.cur().Span,
			"unexpected %q after expression", p.cur().Literal)
	}

	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	return expr, nil
}

// Errors returns all recoverable parse errors that were encountered.
func (p *Parser) Errors() []diag.Diagnostic {
	return p.errors
}

func (p *Parser) firstError() error {
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return diag.Errorf(diag.StageParser, diag.CodeParseUnexpectedEOF, p.cur().Span,
		"expected expression")
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		if len(p.toks) == 0 {
			return lexer.Token{Type: lexer.EOF}
		}
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

// mark captures the cursor and error state before a speculative parse.
type mark struct {
	pos    int
	errLen int
}

func (p *Parser) mark() mark {
	return mark{pos: p.pos, errLen: len(p.errors)}
}

// restore rewinds to a mark, discarding tokens consumed and errors reported
// since it was taken.
func (p *Parser) restore(m mark) {
	p.pos = m.pos
	p.errors = p.errors[:m.errLen]
}

func (p *Parser) reportError(code diag.Code, span diag.Span, format string, args ...any) {
	p.errors = append(p.errors, diag.Errorf(diag.StageParser, code, span, format, args...))
}

// expect consumes the current token if it matches, otherwise reports an
// error and leaves the cursor in place.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.cur().Type == tt {
		p.next()
		return true
	}
	p.reportError(diag.CodeParseUnexpectedToken, p.cur().Span,
		"expected %q, found %q", string(tt), p.cur().Literal)
	return false
}
