package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tarn-lang/tarn/internal/diag"
	"github.com/tarn-lang/tarn/internal/kernel"
)

// funcSig records a lifted function's calling convention: declared
// parameters plus the captured free variables appended as trailing
// parameters.
type funcSig struct {
	arity    int // declared parameters, excluding captures
	captures []string
}

// Generator accumulates the target module while walking kernel items.
// Nested functions are lifted to the top level; their captures become
// trailing parameters, threaded automatically at every call site.
type Generator struct {
	module string

	funcs    map[string]funcSig
	lifted   []*FuncDecl
	prelude  []Expr // hoisted top-level value bindings, declaration order
	tempSeed int
}

// NewGenerator creates a generator for the named target module.
func NewGenerator(module string) *Generator {
	return &Generator{
		module: module,
		funcs:  make(map[string]funcSig),
	}
}

// Generate compiles kernel items into target forms. It fails if the unit
// defines no entry point.
func (g *Generator) Generate(items []kernel.Item) ([]Form, error) {
	hasMain := false

	for _, item := range items {
		switch it := item.(type) {
		case *kernel.ValueDef:
			value, err := g.genExpr(it.Body)
			if err != nil {
				return nil, err
			}
			g.prelude = append(g.prelude, &Match{Left: &VarRef{Name: it.Name}, Right: value})

		case *kernel.FuncDef:
			captures := it.FreeVars
			if it.Name == kernel.EntryPoint {
				hasMain = true
				captures = nil
			}
			g.register(it.Name, it.Params, captures)
			if err := g.genTopFunc(it); err != nil {
				return nil, err
			}

		default:
			return nil, diag.Internalf(diag.StageCodegen, "unhandled top-level item %T", item)
		}
	}

	if !hasMain {
		return nil, diag.Internalf(diag.StageCodegen, "no entry point %q defined", kernel.EntryPoint)
	}

	forms := []Form{
		&ModuleAttr{Name: g.module},
		g.exports(),
	}
	for _, fn := range g.lifted {
		forms = append(forms, fn)
	}
	return forms, nil
}

// register records a function's calling convention. Registration happens
// before the body is compiled so recursive call sites resolve.
func (g *Generator) register(name string, params, captures []string) {
	g.funcs[name] = funcSig{arity: len(params), captures: captures}
}

func (g *Generator) exports() *ExportAttr {
	sigs := make([]ExportSig, 0, len(g.lifted))
	for _, fn := range g.lifted {
		sigs = append(sigs, ExportSig{Name: fn.Name, Arity: len(fn.Params)})
	}
	sort.Slice(sigs, func(i, j int) bool {
		if sigs[i].Name != sigs[j].Name {
			return sigs[i].Name < sigs[j].Name
		}
		return sigs[i].Arity < sigs[j].Arity
	})
	return &ExportAttr{Sigs: sigs}
}

// genTopFunc compiles one top-level function. The entry point receives the
// hoisted value-binding prelude ahead of its own body, since the target has
// no module-level bindings.
func (g *Generator) genTopFunc(def *kernel.FuncDef) error {
	body, err := g.genSeq(def.Body)
	if err != nil {
		return err
	}

	// The entry point's free references are satisfied by the hoisted value
	// prelude, not by trailing parameters.
	params := append([]string{}, def.Params...)
	if def.Name == kernel.EntryPoint {
		body = append(append([]Expr{}, g.prelude...), body...)
	} else {
		params = append(params, def.FreeVars...)
	}

	g.lifted = append(g.lifted, &FuncDecl{Name: def.Name, Params: params, Body: body})
	return nil
}

func (g *Generator) freshTemp() string {
	g.tempSeed++
	return fmt.Sprintf("Tmp%d", g.tempSeed)
}

// genSeq compiles an expression into a body sequence, flattening binding
// chains into the target's comma-separated single-assignment form.
func (g *Generator) genSeq(expr kernel.Expr) ([]Expr, error) {
	var seq []Expr

	for {
		switch e := expr.(type) {
		case *kernel.LetValue:
			value, err := g.genExpr(e.Body)
			if err != nil {
				return nil, err
			}
			if e.Name == "_" {
				seq = append(seq, value)
			} else {
				seq = append(seq, &Match{Left: &VarRef{Name: e.Name}, Right: value})
			}
			expr = e.Rest

		case *kernel.LetPattern:
			value, err := g.genExpr(e.Body)
			if err != nil {
				return nil, err
			}
			pat, err := g.genPattern(e.Pat)
			if err != nil {
				return nil, err
			}
			seq = append(seq, &Match{Left: pat, Right: value})
			expr = e.Rest

		case *kernel.LetFunc:
			if err := g.lift(e); err != nil {
				return nil, err
			}
			expr = e.Rest

		default:
			result, err := g.genExpr(expr)
			if err != nil {
				return nil, err
			}
			// A block in tail position unnests into the sequence.
			if blk, ok := result.(*Block); ok {
				seq = append(seq, blk.Exprs...)
			} else {
				seq = append(seq, result)
			}
			return seq, nil
		}
	}
}

// lift hoists a nested function binding to the top level with its captures
// appended as trailing parameters.
func (g *Generator) lift(e *kernel.LetFunc) error {
	g.register(e.Name, e.Params, e.FreeVars)

	body, err := g.genSeq(e.Body)
	if err != nil {
		return err
	}

	params := append(append([]string{}, e.Params...), e.FreeVars...)
	g.lifted = append(g.lifted, &FuncDecl{Name: e.Name, Params: params, Body: body})
	return nil
}

func (g *Generator) genExpr(expr kernel.Expr) (Expr, error) {
	switch e := expr.(type) {
	case *kernel.Lit:
		return genLit(e), nil

	case *kernel.Var:
		return g.genVar(e)

	case *kernel.List:
		elems, err := g.genExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &ListLit{Elems: elems}, nil

	case *kernel.Tuple:
		elems, err := g.genExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &TupleLit{Elems: elems}, nil

	case *kernel.Record:
		fields := make([]MapField, len(e.Fields))
		for i, f := range e.Fields {
			value, err := g.genExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = MapField{Key: f.Name, Value: value}
		}
		return &MapLit{Fields: fields}, nil

	case *kernel.FieldAccess:
		target, err := g.genExpr(e.Target)
		if err != nil {
			return nil, err
		}
		return &MapGet{Key: e.Name, Target: target}, nil

	case *kernel.Binop:
		return g.genBinop(e)

	case *kernel.Call:
		return g.genCall(e)

	case *kernel.Lambda:
		body, err := g.genSeq(e.Body)
		if err != nil {
			return nil, err
		}
		return &Fun{Params: e.Params, Body: body}, nil

	case *kernel.If:
		return g.genIf(e)

	case *kernel.LetValue, *kernel.LetPattern, *kernel.LetFunc:
		// A binding chain in value position becomes a block.
		seq, err := g.genSeq(expr)
		if err != nil {
			return nil, err
		}
		if len(seq) == 1 {
			return seq[0], nil
		}
		return &Block{Exprs: seq}, nil

	case *kernel.Case:
		return g.genCase(e)

	default:
		return nil, diag.Internalf(diag.StageCodegen, "unhandled expression %T", expr)
	}
}

func (g *Generator) genExprs(exprs []kernel.Expr) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		v, err := g.genExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func genLit(l *kernel.Lit) Expr {
	switch l.Kind {
	case kernel.LitUnit:
		return &AtomLit{Name: "ok"}
	case kernel.LitBool:
		if l.Bool {
			return &AtomLit{Name: "true"}
		}
		return &AtomLit{Name: "false"}
	case kernel.LitInt:
		return &IntLit{Value: l.Int}
	case kernel.LitFloat:
		return &FloatLit{Value: l.Float}
	default:
		return &StringLit{Value: l.Str}
	}
}

// genVar compiles a bare identifier reference. A reference to a lifted
// function outside call position becomes a fun value; when the function
// carries captures it is eta-expanded so the captures are supplied from the
// referencing scope.
func (g *Generator) genVar(e *kernel.Var) (Expr, error) {
	if e.Name == kernel.ExternalForm || e.Name == kernel.InlineForm {
		return nil, diag.Internalf(diag.StageCodegen, "%s outside call position", e.Name)
	}

	sig, isFunc := g.funcs[e.Name]
	if !isFunc {
		return &VarRef{Name: e.Name}, nil
	}

	if len(sig.captures) == 0 {
		return &FunRef{Name: e.Name, Arity: sig.arity}, nil
	}

	params := make([]string, sig.arity)
	args := make([]Expr, 0, sig.arity+len(sig.captures))
	for i := range params {
		params[i] = fmt.Sprintf("Eta%d", i+1)
		args = append(args, &VarRef{Name: params[i]})
	}
	for _, captured := range sig.captures {
		args = append(args, &VarRef{Name: captured})
	}

	return &Fun{
		Params: params,
		Body:   []Expr{&Apply{Fn: &AtomLit{Name: e.Name}, Args: args}},
	}, nil
}

// binopNames maps source operators to their target spellings.
var binopNames = map[string]string{
	"+":  "+",
	"-":  "-",
	"*":  "*",
	"/":  "/",
	"%":  "rem",
	"==": "==",
	"!=": "/=",
	"<":  "<",
	"<=": "=<",
	">":  ">",
	">=": ">=",
	"&&": "andalso",
	"||": "orelse",
}

func (g *Generator) genBinop(e *kernel.Binop) (Expr, error) {
	op, ok := binopNames[e.Op]
	if !ok {
		return nil, diag.Internalf(diag.StageCodegen, "unhandled binary operator %q", e.Op)
	}
	left, err := g.genExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.genExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return &BinOp{Op: op, Left: left, Right: right}, nil
}

// genCall compiles an application. Escape forms are rewritten rather than
// called; calls to lifted functions append the callee's recorded captures
// as trailing arguments.
func (g *Generator) genCall(e *kernel.Call) (Expr, error) {
	if head, ok := e.Fn.(*kernel.Var); ok {
		switch head.Name {
		case kernel.ExternalForm:
			return g.genExternal(e.Args)
		case kernel.InlineForm:
			return g.genInline(e.Args)
		}

		if sig, isFunc := g.funcs[head.Name]; isFunc {
			args, err := g.genExprs(e.Args)
			if err != nil {
				return nil, err
			}
			for _, captured := range sig.captures {
				args = append(args, &VarRef{Name: captured})
			}
			return &Apply{Fn: &AtomLit{Name: head.Name}, Args: args}, nil
		}

		if _, bound := g.boundName(head.Name); !bound {
			return nil, diag.Internalf(diag.StageCodegen, "call to unregistered function %q", head.Name)
		}
	}

	fn, err := g.genExpr(e.Fn)
	if err != nil {
		return nil, err
	}
	args, err := g.genExprs(e.Args)
	if err != nil {
		return nil, err
	}
	return &Apply{Fn: fn, Args: args}, nil
}

// boundName reports whether an identifier is an ordinary renamed binder
// rather than a lifted function. Renamed binders carry a numeric suffix;
// everything else in function position must be registered.
func (g *Generator) boundName(name string) (string, bool) {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return name, false
	}
	for _, ch := range name[i+1:] {
		if ch < '0' || ch > '9' {
			return name, false
		}
	}
	return name, true
}

// genExternal rewrites `__external__ "module:function" args...` into a
// direct remote call of the named primitive.
func (g *Generator) genExternal(args []kernel.Expr) (Expr, error) {
	if len(args) == 0 {
		return nil, diag.Internalf(diag.StageCodegen, "__external__ requires a target name")
	}
	lit, ok := args[0].(*kernel.Lit)
	if !ok || lit.Kind != kernel.LitString {
		return nil, diag.Internalf(diag.StageCodegen, "__external__ target must be a string literal")
	}

	module, fn, found := strings.Cut(lit.Str, ":")
	if !found {
		module, fn = "erlang", module
	}

	rest, err := g.genExprs(args[1:])
	if err != nil {
		return nil, err
	}
	return &RemoteCall{Module: module, Func: fn, Args: rest}, nil
}

// genInline splices the string literal verbatim into the output.
func (g *Generator) genInline(args []kernel.Expr) (Expr, error) {
	if len(args) == 0 {
		return nil, diag.Internalf(diag.StageCodegen, "__inline__ requires a text argument")
	}
	lit, ok := args[0].(*kernel.Lit)
	if !ok || lit.Kind != kernel.LitString {
		return nil, diag.Internalf(diag.StageCodegen, "__inline__ text must be a string literal")
	}

	if len(args) == 1 {
		return &Raw{Text: lit.Str}, nil
	}

	rest, err := g.genExprs(args[1:])
	if err != nil {
		return nil, err
	}
	return &Apply{Fn: &Raw{Text: lit.Str}, Args: rest}, nil
}

// genIf lowers a conditional through a synthetic temporary: the target's
// conditional form does not take an arbitrary expression guard, so the
// condition is bound first and compared against boolean true.
func (g *Generator) genIf(e *kernel.If) (Expr, error) {
	cond, err := g.genExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	then, err := g.genSeq(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := g.genSeq(e.Else)
	if err != nil {
		return nil, err
	}

	tmp := g.freshTemp()
	return &Block{Exprs: []Expr{
		&Match{Left: &VarRef{Name: tmp}, Right: cond},
		&CaseExpr{
			Scrut: &BinOp{Op: "==", Left: &VarRef{Name: tmp}, Right: &AtomLit{Name: "true"}},
			Clauses: []CaseClause{
				{Pat: &AtomLit{Name: "true"}, Body: then},
				{Pat: &AtomLit{Name: "false"}, Body: els},
			},
		},
	}}, nil
}

func (g *Generator) genCase(e *kernel.Case) (Expr, error) {
	scrut, err := g.genExpr(e.Scrut)
	if err != nil {
		return nil, err
	}

	out := &CaseExpr{Scrut: scrut}
	for _, arm := range e.Arms {
		pat, err := g.genPattern(arm.Pat)
		if err != nil {
			return nil, err
		}
		body, err := g.genSeq(arm.Result)
		if err != nil {
			return nil, err
		}
		out.Clauses = append(out.Clauses, CaseClause{Pat: pat, Body: body})
	}

	if e.Default != nil {
		binder := e.DefaultName
		if binder == "" {
			binder = "_"
		}
		body, err := g.genSeq(e.Default)
		if err != nil {
			return nil, err
		}
		out.Clauses = append(out.Clauses, CaseClause{Pat: &VarRef{Name: binder}, Body: body})
	}

	return out, nil
}

// genPattern compiles a kernel pattern into the target's match syntax,
// which shares the expression grammar.
func (g *Generator) genPattern(pat kernel.Pattern) (Expr, error) {
	switch p := pat.(type) {
	case *kernel.PatWild:
		return &VarRef{Name: "_"}, nil

	case *kernel.PatVar:
		return &VarRef{Name: p.Name}, nil

	case *kernel.PatLit:
		return genLit(p.Lit), nil

	case *kernel.PatTuple:
		elems, err := g.genPatterns(p.Elems)
		if err != nil {
			return nil, err
		}
		return &TupleLit{Elems: elems}, nil

	case *kernel.PatList:
		elems, err := g.genPatterns(p.Elems)
		if err != nil {
			return nil, err
		}
		out := &ListLit{Elems: elems}
		if p.Rest != nil {
			tail, err := g.genPattern(p.Rest)
			if err != nil {
				return nil, err
			}
			out.Tail = tail
		}
		return out, nil

	case *kernel.PatRecord:
		fields := make([]MapField, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = MapField{Key: f.Field, Value: &VarRef{Name: f.Bind}, Exact: true}
		}
		return &MapLit{Fields: fields}, nil

	default:
		return nil, diag.Internalf(diag.StageCodegen, "unhandled pattern %T", pat)
	}
}

func (g *Generator) genPatterns(pats []kernel.Pattern) ([]Expr, error) {
	out := make([]Expr, len(pats))
	for i, p := range pats {
		v, err := g.genPattern(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
