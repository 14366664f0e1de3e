package ast

import "github.com/tarn-lang/tarn/internal/diag"

// Reserved escape forms of the surface syntax. They parse as ordinary
// symbols but are special-cased through every later stage.
const (
	ExternalForm = "__external__"
	InlineForm   = "__inline__"
)

// Node represents any syntax tree node with an associated source span.
type Node interface {
	Span() diag.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Pattern represents a pattern in a case arm or destructuring binding.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// Unit represents the unit literal ().
type Unit struct {
	span diag.Span
}

func (e *Unit) Span() diag.Span { return e.span }
func (*Unit) exprNode()         {}

// NewUnit constructs a unit literal node.
func NewUnit(span diag.Span) *Unit {
	return &Unit{span: span}
}

// Bool represents a boolean literal.
type Bool struct {
	Value bool
	span  diag.Span
}

func (e *Bool) Span() diag.Span { return e.span }
func (*Bool) exprNode()         {}

// NewBool constructs a boolean literal node.
func NewBool(value bool, span diag.Span) *Bool {
	return &Bool{Value: value, span: span}
}

// Int represents an integer literal.
type Int struct {
	Value int64
	span  diag.Span
}

func (e *Int) Span() diag.Span { return e.span }
func (*Int) exprNode()         {}

// NewInt constructs an integer literal node.
func NewInt(value int64, span diag.Span) *Int {
	return &Int{Value: value, span: span}
}

// Float represents a floating-point literal.
type Float struct {
	Value float64
	span  diag.Span
}

func (e *Float) Span() diag.Span { return e.span }
func (*Float) exprNode()         {}

// NewFloat constructs a float literal node.
func NewFloat(value float64, span diag.Span) *Float {
	return &Float{Value: value, span: span}
}

// String represents a string literal.
type String struct {
	Value string
	span  diag.Span
}

func (e *String) Span() diag.Span { return e.span }
func (*String) exprNode()         {}

// NewString constructs a string literal node.
func NewString(value string, span diag.Span) *String {
	return &String{Value: value, span: span}
}

// Sym represents an identifier reference.
type Sym struct {
	Name string
	span diag.Span
}

func (e *Sym) Span() diag.Span { return e.span }
func (*Sym) exprNode()         {}

// NewSym constructs a symbol node.
func NewSym(name string, span diag.Span) *Sym {
	return &Sym{Name: name, span: span}
}

// Binary represents a binary operator expression.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	span  diag.Span
}

func (e *Binary) Span() diag.Span { return e.span }
func (*Binary) exprNode()         {}

// NewBinary constructs a binary expression node.
func NewBinary(op string, left, right Expr) *Binary {
	return &Binary{
		Op:    op,
		Left:  left,
		Right: right,
		span:  left.Span().Union(right.Span()),
	}
}

// Apply represents a single function application. Multi-argument calls are
// left-associated chains of Apply nodes; the normalizer uncurries them.
type Apply struct {
	Fn   Expr
	Arg  Expr
	span diag.Span
}

func (e *Apply) Span() diag.Span { return e.span }
func (*Apply) exprNode()         {}

// NewApply constructs an application node.
func NewApply(fn, arg Expr) *Apply {
	return &Apply{
		Fn:   fn,
		Arg:  arg,
		span: fn.Span().Union(arg.Span()),
	}
}

// If represents a conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	span diag.Span
}

func (e *If) Span() diag.Span { return e.span }
func (*If) exprNode()         {}

// NewIf constructs a conditional node.
func NewIf(cond, then, els Expr, span diag.Span) *If {
	return &If{Cond: cond, Then: then, Else: els, span: span}
}

// Block represents a brace-delimited sequence of expressions.
type Block struct {
	Exprs []Expr
	span  diag.Span
}

func (e *Block) Span() diag.Span { return e.span }
func (*Block) exprNode()         {}

// NewBlock constructs a block node.
func NewBlock(exprs []Expr, span diag.Span) *Block {
	return &Block{Exprs: exprs, span: span}
}

// List represents a list literal.
type List struct {
	Elems []Expr
	span  diag.Span
}

func (e *List) Span() diag.Span { return e.span }
func (*List) exprNode()         {}

// NewList constructs a list literal node.
func NewList(elems []Expr, span diag.Span) *List {
	return &List{Elems: elems, span: span}
}

// Tuple represents a tuple literal with two or more elements.
type Tuple struct {
	Elems []Expr
	span  diag.Span
}

func (e *Tuple) Span() diag.Span { return e.span }
func (*Tuple) exprNode()         {}

// NewTuple constructs a tuple literal node.
func NewTuple(elems []Expr, span diag.Span) *Tuple {
	return &Tuple{Elems: elems, span: span}
}

// RecordField is a single named field of a record literal.
type RecordField struct {
	Name  string
	Value Expr
	span  diag.Span
}

// Span returns the field span.
func (f *RecordField) Span() diag.Span { return f.span }

// NewRecordField constructs a record field.
func NewRecordField(name string, value Expr, span diag.Span) *RecordField {
	return &RecordField{Name: name, Value: value, span: span}
}

// Record represents a record literal.
type Record struct {
	Fields []*RecordField
	span   diag.Span
}

func (e *Record) Span() diag.Span { return e.span }
func (*Record) exprNode()         {}

// NewRecord constructs a record literal node.
func NewRecord(fields []*RecordField, span diag.Span) *Record {
	return &Record{Fields: fields, span: span}
}

// Param represents a declared parameter, optionally type-annotated.
type Param struct {
	Name string
	Type TypeExpr // nil when unannotated
	span diag.Span
}

// Span returns the parameter span.
func (p *Param) Span() diag.Span { return p.span }

// NewParam constructs a parameter.
func NewParam(name string, typ TypeExpr, span diag.Span) *Param {
	return &Param{Name: name, Type: typ, span: span}
}

// Lambda represents an anonymous function.
type Lambda struct {
	Params []*Param
	Body   Expr
	span   diag.Span
}

func (e *Lambda) Span() diag.Span { return e.span }
func (*Lambda) exprNode()         {}

// NewLambda constructs a lambda node.
func NewLambda(params []*Param, body Expr, span diag.Span) *Lambda {
	return &Lambda{Params: params, Body: body, span: span}
}

// Let represents a let-binding. With Params it declares a (possibly
// recursive) function; with a non-symbol Pattern it destructures. The
// binding scopes over Rest.
type Let struct {
	Pattern Pattern  // binder; a *PatSym for plain and function bindings
	Params  []*Param // nil for value bindings
	Ann     TypeExpr // optional return/value type annotation
	Body    Expr
	Rest    Expr
	span    diag.Span
}

func (e *Let) Span() diag.Span { return e.span }
func (*Let) exprNode()         {}

// NewLet constructs a let node.
func NewLet(pattern Pattern, params []*Param, ann TypeExpr, body, rest Expr, span diag.Span) *Let {
	return &Let{
		Pattern: pattern,
		Params:  params,
		Ann:     ann,
		Body:    body,
		Rest:    rest,
		span:    span,
	}
}

// Name returns the bound name for plain and function bindings, or "" when
// the binder is a destructuring pattern.
func (e *Let) Name() string {
	if sym, ok := e.Pattern.(*PatSym); ok {
		return sym.Name
	}
	return ""
}

// CaseArm is one pattern/result pair of a case expression.
type CaseArm struct {
	Pat  Pattern
	Body Expr
	span diag.Span
}

// Span returns the arm span.
func (a *CaseArm) Span() diag.Span { return a.span }

// NewCaseArm constructs a case arm.
func NewCaseArm(pat Pattern, body Expr, span diag.Span) *CaseArm {
	return &CaseArm{Pat: pat, Body: body, span: span}
}

// Case represents a pattern-matching expression.
type Case struct {
	Scrut Expr
	Arms  []*CaseArm
	span  diag.Span
}

func (e *Case) Span() diag.Span { return e.span }
func (*Case) exprNode()         {}

// NewCase constructs a case node.
func NewCase(scrut Expr, arms []*CaseArm, span diag.Span) *Case {
	return &Case{Scrut: scrut, Arms: arms, span: span}
}
