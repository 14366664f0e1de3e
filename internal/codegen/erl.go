package codegen

// The target AST is a small subset of Erlang's abstract format, just large
// enough for the forms the generator emits. Printing is handled separately
// in printer.go.

// Node is the common interface of every target construct.
type Node interface {
	erlNode()
}

// Form is a top-level module form.
type Form interface {
	Node
	formNode()
}

// Expr is a target expression.
type Expr interface {
	Node
	erlExpr()
}

// ModuleAttr is the -module(name) attribute.
type ModuleAttr struct {
	Name string
}

func (*ModuleAttr) erlNode()  {}
func (*ModuleAttr) formNode() {}

// ExportSig names one exported function as name/arity.
type ExportSig struct {
	Name  string
	Arity int
}

// ExportAttr is the -export([...]) attribute.
type ExportAttr struct {
	Sigs []ExportSig
}

func (*ExportAttr) erlNode()  {}
func (*ExportAttr) formNode() {}

// FuncDecl is a top-level function definition with a single clause.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Expr
}

func (*FuncDecl) erlNode()  {}
func (*FuncDecl) formNode() {}

// AtomLit is an atom literal.
type AtomLit struct {
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// FloatLit is a float literal.
type FloatLit struct {
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

// VarRef references a variable. Name is printed with an uppercased first
// letter per the target's variable convention.
type VarRef struct {
	Name string
}

// ListLit constructs a list, with an optional tail.
type ListLit struct {
	Elems []Expr
	Tail  Expr
}

// TupleLit constructs a tuple.
type TupleLit struct {
	Elems []Expr
}

// MapField is one key/value association of a map construction or match.
type MapField struct {
	Key   string
	Value Expr
	Exact bool // := instead of =>
}

// MapLit constructs or matches a map.
type MapLit struct {
	Fields []MapField
}

// MapGet reads one key out of a map via maps:get/2.
type MapGet struct {
	Key    string
	Target Expr
}

// BinOp applies an infix operator.
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// Apply calls a local function or an expression in function position.
type Apply struct {
	Fn   Expr
	Args []Expr
}

// RemoteCall calls module:function(args).
type RemoteCall struct {
	Module string
	Func   string
	Args   []Expr
}

// FunRef references a local function as fun name/arity.
type FunRef struct {
	Name  string
	Arity int
}

// Fun is an anonymous function with a single clause.
type Fun struct {
	Params []string
	Body   []Expr
}

// Match binds the left-hand pattern to the right-hand value.
type Match struct {
	Left  Expr
	Right Expr
}

// CaseClause is one clause of a case expression.
type CaseClause struct {
	Pat  Expr
	Body []Expr
}

// CaseExpr scrutinizes a value against clauses in order.
type CaseExpr struct {
	Scrut   Expr
	Clauses []CaseClause
}

// Block groups a comma-separated expression sequence in parentheses, for
// positions that require a single expression.
type Block struct {
	Exprs []Expr
}

// Raw splices verbatim target text, used for inline escape forms.
type Raw struct {
	Text string
}

func (*AtomLit) erlNode()    {}
func (*IntLit) erlNode()     {}
func (*FloatLit) erlNode()   {}
func (*StringLit) erlNode()  {}
func (*VarRef) erlNode()     {}
func (*ListLit) erlNode()    {}
func (*TupleLit) erlNode()   {}
func (*MapLit) erlNode()     {}
func (*MapGet) erlNode()     {}
func (*BinOp) erlNode()      {}
func (*Apply) erlNode()      {}
func (*RemoteCall) erlNode() {}
func (*FunRef) erlNode()     {}
func (*Fun) erlNode()        {}
func (*Match) erlNode()      {}
func (*CaseExpr) erlNode()   {}
func (*Block) erlNode()      {}
func (*Raw) erlNode()        {}

func (*AtomLit) erlExpr()    {}
func (*IntLit) erlExpr()     {}
func (*FloatLit) erlExpr()   {}
func (*StringLit) erlExpr()  {}
func (*VarRef) erlExpr()     {}
func (*ListLit) erlExpr()    {}
func (*TupleLit) erlExpr()   {}
func (*MapLit) erlExpr()     {}
func (*MapGet) erlExpr()     {}
func (*BinOp) erlExpr()      {}
func (*Apply) erlExpr()      {}
func (*RemoteCall) erlExpr() {}
func (*FunRef) erlExpr()     {}
func (*Fun) erlExpr()        {}
func (*Match) erlExpr()      {}
func (*CaseExpr) erlExpr()   {}
func (*Block) erlExpr()      {}
func (*Raw) erlExpr()        {}
