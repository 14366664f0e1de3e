package ast

import "github.com/tarn-lang/tarn/internal/diag"

// PatWild matches anything without binding.
type PatWild struct {
	span diag.Span
}

func (p *PatWild) Span() diag.Span { return p.span }
func (*PatWild) patternNode()      {}

// NewPatWild constructs a wildcard pattern.
func NewPatWild(span diag.Span) *PatWild {
	return &PatWild{span: span}
}

// PatSym binds the scrutinee to a name.
type PatSym struct {
	Name string
	span diag.Span
}

func (p *PatSym) Span() diag.Span { return p.span }
func (*PatSym) patternNode()      {}

// NewPatSym constructs a binder pattern.
func NewPatSym(name string, span diag.Span) *PatSym {
	return &PatSym{Name: name, span: span}
}

// PatLit matches a literal value. Lit is always one of the literal
// expression nodes (Unit, Bool, Int, Float, String).
type PatLit struct {
	Lit  Expr
	span diag.Span
}

func (p *PatLit) Span() diag.Span { return p.span }
func (*PatLit) patternNode()      {}

// NewPatLit constructs a literal pattern.
func NewPatLit(lit Expr, span diag.Span) *PatLit {
	return &PatLit{Lit: lit, span: span}
}

// PatTuple destructures a tuple.
type PatTuple struct {
	Elems []Pattern
	span  diag.Span
}

func (p *PatTuple) Span() diag.Span { return p.span }
func (*PatTuple) patternNode()      {}

// NewPatTuple constructs a tuple pattern.
func NewPatTuple(elems []Pattern, span diag.Span) *PatTuple {
	return &PatTuple{Elems: elems, span: span}
}

// PatList destructures a list. Rest, when non-nil, matches the tail after
// the listed elements ([h | t] style).
type PatList struct {
	Elems []Pattern
	Rest  Pattern
	span  diag.Span
}

func (p *PatList) Span() diag.Span { return p.span }
func (*PatList) patternNode()      {}

// NewPatList constructs a list pattern.
func NewPatList(elems []Pattern, rest Pattern, span diag.Span) *PatList {
	return &PatList{Elems: elems, Rest: rest, span: span}
}

// PatRecord destructures a record, binding each listed field name.
type PatRecord struct {
	Fields []string
	span   diag.Span
}

func (p *PatRecord) Span() diag.Span { return p.span }
func (*PatRecord) patternNode()      {}

// NewPatRecord constructs a record pattern.
func NewPatRecord(fields []string, span diag.Span) *PatRecord {
	return &PatRecord{Fields: fields, span: span}
}
