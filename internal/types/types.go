package types

import "strings"

// Type represents a type in the tarn type system.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// Const represents a named constant type.
type Const struct {
	Name string
}

func (c *Const) String() string { return c.Name }
func (c *Const) IsType()        {}

// Common constant instances
var (
	TypeInt    = &Const{Name: "int"}
	TypeFloat  = &Const{Name: "float"}
	TypeBool   = &Const{Name: "bool"}
	TypeString = &Const{Name: "string"}
	TypeUnit   = &Const{Name: "unit"}
)

// Var represents an inference variable, solved or left generic by
// unification.
type Var struct {
	Name string
}

func (v *Var) String() string { return "'" + v.Name }
func (v *Var) IsType()        {}

// Arrow represents a single-argument function type. Multi-argument
// functions are right-nested arrows.
type Arrow struct {
	Param  Type
	Result Type
}

func (a *Arrow) String() string {
	param := a.Param.String()
	if _, nested := a.Param.(*Arrow); nested {
		param = "(" + param + ")"
	}
	return param + " -> " + a.Result.String()
}
func (a *Arrow) IsType() {}

// App represents a single-argument type constructor applied to an element
// type, e.g. list int.
type App struct {
	Ctor string
	Arg  Type
}

func (a *App) String() string {
	arg := a.Arg.String()
	switch a.Arg.(type) {
	case *Arrow, *App:
		arg = "(" + arg + ")"
	}
	return a.Ctor + " " + arg
}
func (a *App) IsType() {}

// Tuple represents a tuple type.
type Tuple struct {
	Elems []Type
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, "; ") + ")"
}
func (t *Tuple) IsType() {}

// Field is a named record field.
type Field struct {
	Name string
	Type Type
}

// Record represents a record type with uniquely named fields.
type Record struct {
	Fields []Field
}

func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + " : " + f.Type.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}
func (r *Record) IsType() {}

// Variant is one tagged alternative of an enum.
type Variant struct {
	Tag     string
	Payload []Type
}

// Enum represents a tagged-alternative type.
type Enum struct {
	Name     string
	Variants []Variant
}

func (e *Enum) String() string { return e.Name }
func (e *Enum) IsType()        {}
