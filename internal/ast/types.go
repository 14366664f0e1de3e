package ast

import "github.com/tarn-lang/tarn/internal/diag"

// TName is a named type annotation such as int or bool.
type TName struct {
	Name string
	span diag.Span
}

func (t *TName) Span() diag.Span { return t.span }
func (*TName) typeNode()         {}

// NewTName constructs a named type annotation.
func NewTName(name string, span diag.Span) *TName {
	return &TName{Name: name, span: span}
}

// TVar is a type-variable annotation such as 'a.
type TVar struct {
	Name string
	span diag.Span
}

func (t *TVar) Span() diag.Span { return t.span }
func (*TVar) typeNode()         {}

// NewTVar constructs a type-variable annotation.
func NewTVar(name string, span diag.Span) *TVar {
	return &TVar{Name: name, span: span}
}

// TArrow is a function type annotation.
type TArrow struct {
	Param  TypeExpr
	Result TypeExpr
	span   diag.Span
}

func (t *TArrow) Span() diag.Span { return t.span }
func (*TArrow) typeNode()         {}

// NewTArrow constructs an arrow type annotation.
func NewTArrow(param, result TypeExpr, span diag.Span) *TArrow {
	return &TArrow{Param: param, Result: result, span: span}
}

// TApp applies a single-argument type constructor, e.g. list 'a.
type TApp struct {
	Ctor string
	Arg  TypeExpr
	span diag.Span
}

func (t *TApp) Span() diag.Span { return t.span }
func (*TApp) typeNode()         {}

// NewTApp constructs a type-constructor application annotation.
func NewTApp(ctor string, arg TypeExpr, span diag.Span) *TApp {
	return &TApp{Ctor: ctor, Arg: arg, span: span}
}

// TTuple is a tuple type annotation.
type TTuple struct {
	Elems []TypeExpr
	span  diag.Span
}

func (t *TTuple) Span() diag.Span { return t.span }
func (*TTuple) typeNode()         {}

// NewTTuple constructs a tuple type annotation.
func NewTTuple(elems []TypeExpr, span diag.Span) *TTuple {
	return &TTuple{Elems: elems, span: span}
}
