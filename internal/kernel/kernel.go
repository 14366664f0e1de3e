package kernel

// Expr represents a kernel IR expression. The kernel form is uncurried,
// flat-let, and capture-explicit: the normalizer guarantees every binder
// name is globally unique within a compilation unit.
type Expr interface {
	exprNode()
}

// Pattern represents a kernel IR pattern. Binder names inside patterns are
// renamed like every other binder.
type Pattern interface {
	patternNode()
}

// Item represents a top-level kernel definition. The numeric identity is
// derived from the definition's source position; it is used for export-list
// generation and debugging, never for semantics.
type Item interface {
	itemNode()
	ItemID() int
}

// LitKind discriminates literal values.
type LitKind int

const (
	LitUnit LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Lit represents a literal value.
type Lit struct {
	Kind  LitKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func (*Lit) exprNode() {}

// Var represents a reference to a (renamed) identifier.
type Var struct {
	Name string
}

func (*Var) exprNode() {}

// List represents a list construction.
type List struct {
	Elems []Expr
}

func (*List) exprNode() {}

// Tuple represents a tuple construction.
type Tuple struct {
	Elems []Expr
}

func (*Tuple) exprNode() {}

// Field is a named field of a record construction.
type Field struct {
	Name  string
	Value Expr
}

// Record represents a record construction.
type Record struct {
	Fields []Field
}

func (*Record) exprNode() {}

// FieldAccess reads a named field out of a record value.
type FieldAccess struct {
	Target Expr
	Name   string
}

func (*FieldAccess) exprNode() {}

// Binop represents a binary operator application.
type Binop struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*Binop) exprNode() {}

// Call represents an n-ary application; the normalizer has already
// collapsed curried application spines.
type Call struct {
	Fn   Expr
	Args []Expr
}

func (*Call) exprNode() {}

// Lambda represents an anonymous function. Lambdas are not lifted; the
// target runtime has anonymous closures.
type Lambda struct {
	Params []string
	Body   Expr
}

func (*Lambda) exprNode() {}

// If represents a conditional.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}

// LetValue binds a value in Rest. Chains are flattened so evaluation order
// matches declaration order.
type LetValue struct {
	Name string
	Body Expr
	Rest Expr
}

func (*LetValue) exprNode() {}

// LetFunc binds a (possibly recursive) function in Rest. FreeVars is the
// sorted set of identifiers the body references that are neither parameters
// nor global functions; the code generator forwards them as trailing
// parameters when lifting.
type LetFunc struct {
	Name      string
	Params    []string
	Recursive bool
	FreeVars  []string
	Body      Expr
	Rest      Expr
}

func (*LetFunc) exprNode() {}

// LetPattern destructures a value in Rest.
type LetPattern struct {
	Pat  Pattern
	Body Expr
	Rest Expr
}

func (*LetPattern) exprNode() {}

// Arm is one pattern/result pair of a case expression.
type Arm struct {
	Pat    Pattern
	Result Expr
}

// Case represents a pattern match. Default, when non-nil, is the catch-all
// result; DefaultName is its binder ("" when the scrutinee is discarded).
type Case struct {
	Scrut       Expr
	Arms        []Arm
	DefaultName string
	Default     Expr
}

func (*Case) exprNode() {}

// PatLit matches a literal.
type PatLit struct {
	Lit *Lit
}

func (*PatLit) patternNode() {}

// PatVar binds the matched value.
type PatVar struct {
	Name string
}

func (*PatVar) patternNode() {}

// PatWild matches anything without binding.
type PatWild struct{}

func (*PatWild) patternNode() {}

// PatTuple destructures a tuple.
type PatTuple struct {
	Elems []Pattern
}

func (*PatTuple) patternNode() {}

// PatList destructures a list, with an optional tail pattern.
type PatList struct {
	Elems []Pattern
	Rest  Pattern
}

func (*PatList) patternNode() {}

// FieldPat binds one record field.
type FieldPat struct {
	Field string
	Bind  string
}

// PatRecord destructures a record.
type PatRecord struct {
	Fields []FieldPat
}

func (*PatRecord) patternNode() {}

// ValueDef is a top-level value binding, hoisted by the code generator into
// the entry point's prelude.
type ValueDef struct {
	ID   int
	Name string
	Body Expr
}

func (*ValueDef) itemNode() {}
func (d *ValueDef) ItemID() int { return d.ID }

// FuncDef is a top-level function definition.
type FuncDef struct {
	ID        int
	Name      string
	Params    []string
	Recursive bool
	FreeVars  []string
	Body      Expr
}

func (*FuncDef) itemNode() {}
func (d *FuncDef) ItemID() int { return d.ID }
