package types

import (
	"fmt"
	"sort"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
)

// Escape forms bypass normal name resolution and are typed freshly at
// every use.
const (
	ExternalForm = ast.ExternalForm
	InlineForm   = ast.InlineForm
)

// Checker performs unification-based type inference on the syntax tree.
type Checker struct {
	// TypeInfo records the raw inferred type of every visited node.
	// Consult TypeOf for fully substituted results.
	TypeInfo map[ast.Node]Type
	Errors   []diag.Diagnostic

	subst   map[string]Type
	counter int

	// annVars shares written annotation variables ('a) within one binding.
	// Each binding installs its own map and restores the enclosing one, so a
	// nested binding cannot detach an outer return annotation from its
	// parameters.
	annVars map[string]*Var
}

// NewChecker creates a new type checker.
func NewChecker() *Checker {
	return &Checker{
		TypeInfo: make(map[ast.Node]Type),
		subst:    make(map[string]Type),
	}
}

// Check infers a type for the whole program, decorating every node on the
// way. The first error encountered is returned; inference continues past
// errors so TypeInfo stays total.
func (c *Checker) Check(expr ast.Expr) (Type, error) {
	t := c.infer(NewScope(nil), expr)
	if len(c.Errors) > 0 {
		return nil, c.Errors[0]
	}
	return c.apply(t), nil
}

// TypeOf returns the fully substituted type recorded for a node.
func (c *Checker) TypeOf(n ast.Node) Type {
	t, ok := c.TypeInfo[n]
	if !ok {
		return nil
	}
	return c.apply(t)
}

func (c *Checker) fresh() *Var {
	c.counter++
	return &Var{Name: fmt.Sprintf("t%d", c.counter)}
}

func (c *Checker) reportError(code diag.Code, span diag.Span, format string, args ...any) {
	c.Errors = append(c.Errors, diag.Errorf(diag.StageTypeCheck, code, span, format, args...))
}

func (c *Checker) infer(scope *Scope, expr ast.Expr) Type {
	t := c.inferExpr(scope, expr)
	c.TypeInfo[expr] = t
	return t
}

func (c *Checker) inferExpr(scope *Scope, expr ast.Expr) Type {
	switch e := expr.(type) {
	case *ast.Unit:
		return TypeUnit
	case *ast.Bool:
		return TypeBool
	case *ast.Int:
		return TypeInt
	case *ast.Float:
		return TypeFloat
	case *ast.String:
		return TypeString

	case *ast.Sym:
		return c.inferSym(scope, e)

	case *ast.Binary:
		return c.inferBinary(scope, e)

	case *ast.Apply:
		return c.inferApply(scope, e)

	case *ast.If:
		c.unify(c.infer(scope, e.Cond), TypeBool, e.Cond.Span())
		thenType := c.infer(scope, e.Then)
		elseType := c.infer(scope, e.Else)
		c.unify(thenType, elseType, e.Else.Span())
		return thenType

	case *ast.Block:
		var last Type = TypeUnit
		for _, sub := range e.Exprs {
			last = c.infer(scope, sub)
		}
		return last

	case *ast.List:
		elem := Type(c.fresh())
		for _, sub := range e.Elems {
			c.unify(c.infer(scope, sub), elem, sub.Span())
		}
		return &App{Ctor: "list", Arg: elem}

	case *ast.Tuple:
		elems := make([]Type, len(e.Elems))
		for i, sub := range e.Elems {
			elems[i] = c.infer(scope, sub)
		}
		return &Tuple{Elems: elems}

	case *ast.Record:
		fields := make([]Field, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = Field{Name: f.Name, Type: c.infer(scope, f.Value)}
		}
		return &Record{Fields: fields}

	case *ast.Lambda:
		saved := c.annVars
		c.annVars = make(map[string]*Var)
		inner := NewScope(scope)
		t := c.inferFunction(inner, e.Params, nil, e.Body)
		c.annVars = saved
		return t

	case *ast.Let:
		return c.inferLet(scope, e)

	case *ast.Case:
		return c.inferCase(scope, e)

	default:
		c.reportError(diag.CodeTypeMismatch, expr.Span(), "unsupported expression")
		return c.fresh()
	}
}

func (c *Checker) inferSym(scope *Scope, e *ast.Sym) Type {
	if e.Name == ExternalForm || e.Name == InlineForm {
		return c.fresh()
	}
	sym := scope.Lookup(e.Name)
	if sym == nil {
		c.reportError(diag.CodeTypeUndefinedIdentifier, e.Span(),
			"undefined identifier %q", e.Name)
		return c.fresh()
	}
	return c.instantiate(sym.Scheme)
}

func (c *Checker) inferBinary(scope *Scope, e *ast.Binary) Type {
	left := c.infer(scope, e.Left)
	right := c.infer(scope, e.Right)

	switch e.Op {
	case "+", "-", "*", "/":
		c.unify(left, right, e.Right.Span())
		c.constrainNumeric(left, e.Left.Span())
		return left
	case "%":
		c.unify(left, TypeInt, e.Left.Span())
		c.unify(right, TypeInt, e.Right.Span())
		return TypeInt
	case "<", "<=", ">", ">=":
		c.unify(left, right, e.Right.Span())
		c.constrainNumeric(left, e.Left.Span())
		return TypeBool
	case "==", "!=":
		c.unify(left, right, e.Right.Span())
		return TypeBool
	case "&&", "||":
		c.unify(left, TypeBool, e.Left.Span())
		c.unify(right, TypeBool, e.Right.Span())
		return TypeBool
	default:
		c.reportError(diag.CodeTypeMismatch, e.Span(), "unknown operator %q", e.Op)
		return c.fresh()
	}
}

// constrainNumeric requires t to be int or float. An unsolved variable
// defaults to int.
func (c *Checker) constrainNumeric(t Type, span diag.Span) {
	switch resolved := c.resolve(t).(type) {
	case *Const:
		if resolved.Name == "int" || resolved.Name == "float" {
			return
		}
		c.reportError(diag.CodeTypeNotNumeric, span,
			"operator requires a numeric operand, found %s", c.display(resolved))
	case *Var:
		c.unify(resolved, TypeInt, span)
	default:
		c.reportError(diag.CodeTypeNotNumeric, span,
			"operator requires a numeric operand, found %s", c.display(resolved))
	}
}

func (c *Checker) inferApply(scope *Scope, e *ast.Apply) Type {
	// An escape form requires a string literal naming the primitive (or the
	// raw text) as its first argument.
	if sym, ok := e.Fn.(*ast.Sym); ok && (sym.Name == ExternalForm || sym.Name == InlineForm) {
		if _, ok := e.Arg.(*ast.String); !ok {
			c.reportError(diag.CodeTypeBadEscapeForm, e.Arg.Span(),
				"%s requires a string literal as its first argument", sym.Name)
		}
	}

	fnType := c.infer(scope, e.Fn)
	argType := c.infer(scope, e.Arg)
	result := c.fresh()
	c.unify(fnType, &Arrow{Param: argType, Result: result}, e.Span())
	return result
}

// inferFunction types a parameter list and body inside scope, folding the
// parameter types into a right-nested arrow.
func (c *Checker) inferFunction(scope *Scope, params []*ast.Param, ann ast.TypeExpr, body ast.Expr) Type {
	paramTypes := make([]Type, len(params))
	for i, p := range params {
		var t Type
		if p.Type != nil {
			t = c.resolveAnnotation(p.Type)
		} else {
			t = c.fresh()
		}
		paramTypes[i] = t
		scope.Insert(p.Name, &Symbol{Name: p.Name, Scheme: &Scheme{Body: t}})
	}

	bodyType := c.infer(scope, body)
	if ann != nil {
		c.unify(bodyType, c.resolveAnnotation(ann), body.Span())
	}

	result := bodyType
	for i := len(paramTypes) - 1; i >= 0; i-- {
		result = &Arrow{Param: paramTypes[i], Result: result}
	}
	return result
}

func (c *Checker) inferLet(scope *Scope, e *ast.Let) Type {
	name := e.Name()

	if name == "" {
		// Destructuring binding: no recursion, no generalization.
		bodyType := c.infer(scope, e.Body)
		if e.Ann != nil {
			saved := c.annVars
			c.annVars = make(map[string]*Var)
			c.unify(bodyType, c.resolveAnnotation(e.Ann), e.Body.Span())
			c.annVars = saved
		}
		restScope := NewScope(scope)
		c.bindPattern(restScope, e.Pattern, bodyType)
		return c.infer(restScope, e.Rest)
	}

	saved := c.annVars
	c.annVars = make(map[string]*Var)

	// The binder is visible inside its own body (monomorphic recursion).
	self := c.fresh()
	bodyScope := NewScope(scope)
	bodyScope.Insert(name, &Symbol{Name: name, Scheme: &Scheme{Body: self}})

	full := c.inferFunction(bodyScope, e.Params, e.Ann, e.Body)
	c.unify(self, full, e.Body.Span())
	c.annVars = saved

	restScope := NewScope(scope)
	restScope.Insert(name, &Symbol{Name: name, Scheme: c.generalize(scope, full)})
	return c.infer(restScope, e.Rest)
}

func (c *Checker) inferCase(scope *Scope, e *ast.Case) Type {
	scrutType := c.infer(scope, e.Scrut)
	result := Type(c.fresh())

	for _, arm := range e.Arms {
		armScope := NewScope(scope)
		c.bindPattern(armScope, arm.Pat, scrutType)
		c.unify(c.infer(armScope, arm.Body), result, arm.Body.Span())
	}

	return result
}

func (c *Checker) bindPattern(scope *Scope, pat ast.Pattern, t Type) {
	switch p := pat.(type) {
	case *ast.PatWild:

	case *ast.PatSym:
		scope.Insert(p.Name, &Symbol{Name: p.Name, Scheme: &Scheme{Body: t}})

	case *ast.PatLit:
		var litType Type
		switch p.Lit.(type) {
		case *ast.Unit:
			litType = TypeUnit
		case *ast.Bool:
			litType = TypeBool
		case *ast.Int:
			litType = TypeInt
		case *ast.Float:
			litType = TypeFloat
		case *ast.String:
			litType = TypeString
		}
		c.unify(t, litType, p.Span())

	case *ast.PatTuple:
		elems := make([]Type, len(p.Elems))
		for i := range p.Elems {
			elems[i] = c.fresh()
		}
		c.unify(t, &Tuple{Elems: elems}, p.Span())
		for i, sub := range p.Elems {
			c.bindPattern(scope, sub, elems[i])
		}

	case *ast.PatList:
		elem := Type(c.fresh())
		c.unify(t, &App{Ctor: "list", Arg: elem}, p.Span())
		for _, sub := range p.Elems {
			c.bindPattern(scope, sub, elem)
		}
		if p.Rest != nil {
			c.bindPattern(scope, p.Rest, &App{Ctor: "list", Arg: elem})
		}

	case *ast.PatRecord:
		fields := make([]Field, len(p.Fields))
		binds := make([]Type, len(p.Fields))
		for i, name := range p.Fields {
			binds[i] = c.fresh()
			fields[i] = Field{Name: name, Type: binds[i]}
		}
		c.unify(t, &Record{Fields: fields}, p.Span())
		for i, name := range p.Fields {
			scope.Insert(name, &Symbol{Name: name, Scheme: &Scheme{Body: binds[i]}})
		}
	}
}

// resolveAnnotation converts a written annotation into a type. Annotation
// variables ('a) are shared within one binding via annVars.
func (c *Checker) resolveAnnotation(ann ast.TypeExpr) Type {
	switch a := ann.(type) {
	case *ast.TName:
		switch a.Name {
		case "int":
			return TypeInt
		case "float":
			return TypeFloat
		case "bool":
			return TypeBool
		case "string":
			return TypeString
		case "unit":
			return TypeUnit
		default:
			return &Const{Name: a.Name}
		}
	case *ast.TVar:
		if c.annVars == nil {
			c.annVars = make(map[string]*Var)
		}
		v, ok := c.annVars[a.Name]
		if !ok {
			v = c.fresh()
			c.annVars[a.Name] = v
		}
		return v
	case *ast.TArrow:
		return &Arrow{
			Param:  c.resolveAnnotation(a.Param),
			Result: c.resolveAnnotation(a.Result),
		}
	case *ast.TApp:
		return &App{Ctor: a.Ctor, Arg: c.resolveAnnotation(a.Arg)}
	case *ast.TTuple:
		elems := make([]Type, len(a.Elems))
		for i, e := range a.Elems {
			elems[i] = c.resolveAnnotation(e)
		}
		return &Tuple{Elems: elems}
	default:
		return c.fresh()
	}
}

// generalize closes full over the inference variables free in it but not in
// the enclosing scope.
func (c *Checker) generalize(scope *Scope, t Type) *Scheme {
	inScope := make(map[string]bool)
	for s := scope; s != nil; s = s.Parent {
		for _, sym := range s.Symbols {
			c.freeVars(sym.Scheme.Body, inScope)
		}
	}

	inType := make(map[string]bool)
	c.freeVars(t, inType)

	var vars []string
	for name := range inType {
		if !inScope[name] {
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)

	return &Scheme{Vars: vars, Body: c.apply(t)}
}

func (c *Checker) freeVars(t Type, acc map[string]bool) {
	switch t := c.resolve(t).(type) {
	case *Var:
		acc[t.Name] = true
	case *Arrow:
		c.freeVars(t.Param, acc)
		c.freeVars(t.Result, acc)
	case *App:
		c.freeVars(t.Arg, acc)
	case *Tuple:
		for _, e := range t.Elems {
			c.freeVars(e, acc)
		}
	case *Record:
		for _, f := range t.Fields {
			c.freeVars(f.Type, acc)
		}
	}
}

// instantiate replaces a scheme's generalized variables with fresh ones.
func (c *Checker) instantiate(s *Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Body
	}
	mapping := make(map[string]Type, len(s.Vars))
	for _, v := range s.Vars {
		mapping[v] = c.fresh()
	}
	return c.substitute(s.Body, mapping)
}

func (c *Checker) substitute(t Type, mapping map[string]Type) Type {
	switch t := c.resolve(t).(type) {
	case *Var:
		if repl, ok := mapping[t.Name]; ok {
			return repl
		}
		return t
	case *Arrow:
		return &Arrow{
			Param:  c.substitute(t.Param, mapping),
			Result: c.substitute(t.Result, mapping),
		}
	case *App:
		return &App{Ctor: t.Ctor, Arg: c.substitute(t.Arg, mapping)}
	case *Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.substitute(e, mapping)
		}
		return &Tuple{Elems: elems}
	case *Record:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: c.substitute(f.Type, mapping)}
		}
		return &Record{Fields: fields}
	default:
		return t
	}
}
