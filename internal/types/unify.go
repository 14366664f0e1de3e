package types

import (
	"github.com/tarn-lang/tarn/internal/diag"
)

// resolve follows the substitution one level: a solved variable becomes its
// binding, anything else is returned unchanged.
func (c *Checker) resolve(t Type) Type {
	for {
		v, ok := t.(*Var)
		if !ok {
			return t
		}
		bound, ok := c.subst[v.Name]
		if !ok {
			return t
		}
		t = bound
	}
}

// apply substitutes solved variables throughout the type.
func (c *Checker) apply(t Type) Type {
	t = c.resolve(t)
	switch t := t.(type) {
	case *Const, *Var, *Enum:
		return t
	case *Arrow:
		return &Arrow{Param: c.apply(t.Param), Result: c.apply(t.Result)}
	case *App:
		return &App{Ctor: t.Ctor, Arg: c.apply(t.Arg)}
	case *Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.apply(e)
		}
		return &Tuple{Elems: elems}
	case *Record:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: c.apply(f.Type)}
		}
		return &Record{Fields: fields}
	default:
		return t
	}
}

// occurs reports whether the variable name appears in t, following the
// substitution.
func (c *Checker) occurs(name string, t Type) bool {
	switch t := c.resolve(t).(type) {
	case *Var:
		return t.Name == name
	case *Arrow:
		return c.occurs(name, t.Param) || c.occurs(name, t.Result)
	case *App:
		return c.occurs(name, t.Arg)
	case *Tuple:
		for _, e := range t.Elems {
			if c.occurs(name, e) {
				return true
			}
		}
		return false
	case *Record:
		for _, f := range t.Fields {
			if c.occurs(name, f.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// unify makes a and b equal under the substitution, reporting a diagnostic
// at span when they cannot be.
func (c *Checker) unify(a, b Type, span diag.Span) bool {
	a = c.resolve(a)
	b = c.resolve(b)

	if av, ok := a.(*Var); ok {
		return c.bindVar(av, b, span)
	}
	if bv, ok := b.(*Var); ok {
		return c.bindVar(bv, a, span)
	}

	switch a := a.(type) {
	case *Const:
		if b, ok := b.(*Const); ok && a.Name == b.Name {
			return true
		}

	case *Arrow:
		if b, ok := b.(*Arrow); ok {
			return c.unify(a.Param, b.Param, span) && c.unify(a.Result, b.Result, span)
		}

	case *App:
		if b, ok := b.(*App); ok && a.Ctor == b.Ctor {
			return c.unify(a.Arg, b.Arg, span)
		}

	case *Tuple:
		if b, ok := b.(*Tuple); ok && len(a.Elems) == len(b.Elems) {
			for i := range a.Elems {
				if !c.unify(a.Elems[i], b.Elems[i], span) {
					return false
				}
			}
			return true
		}

	case *Record:
		if b, ok := b.(*Record); ok && sameFieldNames(a, b) {
			bByName := make(map[string]Type, len(b.Fields))
			for _, f := range b.Fields {
				bByName[f.Name] = f.Type
			}
			for _, f := range a.Fields {
				if !c.unify(f.Type, bByName[f.Name], span) {
					return false
				}
			}
			return true
		}

	case *Enum:
		if b, ok := b.(*Enum); ok && a.Name == b.Name {
			return true
		}
	}

	c.mismatch(a, b, span)
	return false
}

func (c *Checker) bindVar(v *Var, t Type, span diag.Span) bool {
	if tv, ok := t.(*Var); ok && tv.Name == v.Name {
		return true
	}
	if c.occurs(v.Name, t) {
		c.reportError(diag.CodeTypeOccursCheck, span,
			"cannot construct the infinite type %s = %s", c.display(v), c.display(t))
		return false
	}
	c.subst[v.Name] = t
	return true
}

func (c *Checker) mismatch(a, b Type, span diag.Span) {
	c.reportError(diag.CodeTypeMismatch, span,
		"type mismatch: expected %s, found %s", c.display(a), c.display(b))
}

// display renders a type for a diagnostic with floored variable names, so
// fresh-variable allocation order never leaks into messages.
func (c *Checker) display(t Type) string {
	return FloorOne(c.apply(t)).String()
}

func sameFieldNames(a, b *Record) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	names := make(map[string]bool, len(a.Fields))
	for _, f := range a.Fields {
		names[f.Name] = true
	}
	for _, f := range b.Fields {
		if !names[f.Name] {
			return false
		}
	}
	return true
}
