package kernel

import (
	"fmt"
	"sort"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/diag"
)

// EntryPoint is the designated entry function. It is target-visible and
// never renamed.
const EntryPoint = "main"

// Escape forms pass through normalization unrenamed for the code generator
// to rewrite.
const (
	ExternalForm = ast.ExternalForm
	InlineForm   = ast.InlineForm
)

// Context carries the normalization state for one compilation unit: the
// fresh-id counter, the surface-name environment, and the per-function
// reference frames used for free-variable discovery.
type Context struct {
	counter int
	env     map[string]string

	// funcFree records the free-variable list of every function binder seen
	// so far, keyed by renamed name. Referencing a function forwards its
	// captures into the referencing frame.
	funcFree map[string][]string

	frames []*frame
}

// frame tracks identifier usage while one function body is walked.
type frame struct {
	refs  map[string]bool // renamed identifiers referenced
	bound map[string]bool // renamed identifiers bound inside the body
}

// NewContext creates a fresh normalization context.
func NewContext() *Context {
	return &Context{
		env:      make(map[string]string),
		funcFree: make(map[string][]string),
	}
}

func (ctx *Context) fresh() int {
	ctx.counter++
	return ctx.counter
}

// bind assigns a binder its globally unique renamed identity and returns a
// restore function that re-exposes whatever the surface name referred to
// before, once the binder's scope ends. The discard binder "_" and the
// entry point keep their spelling.
func (ctx *Context) bind(name string) (string, func()) {
	if name == "_" {
		return "_", func() {}
	}

	renamed := name
	if name != EntryPoint {
		renamed = fmt.Sprintf("%s_%d", name, ctx.fresh())
	}

	prev, had := ctx.env[name]
	ctx.env[name] = renamed

	return renamed, func() {
		if had {
			ctx.env[name] = prev
		} else {
			delete(ctx.env, name)
		}
	}
}

func (ctx *Context) pushFrame() {
	ctx.frames = append(ctx.frames, &frame{
		refs:  make(map[string]bool),
		bound: make(map[string]bool),
	})
}

func (ctx *Context) popFrame() *frame {
	f := ctx.frames[len(ctx.frames)-1]
	ctx.frames = ctx.frames[:len(ctx.frames)-1]
	return f
}

func (ctx *Context) current() *frame {
	return ctx.frames[len(ctx.frames)-1]
}

func (ctx *Context) noteRef(renamed string) {
	f := ctx.current()
	f.refs[renamed] = true
	// A reference to a lifted function obligates the referencing function
	// to have that function's captures in scope at the call site.
	for _, captured := range ctx.funcFree[renamed] {
		f.refs[captured] = true
	}
}

func (ctx *Context) noteBound(renamed string) {
	ctx.current().bound[renamed] = true
}

// freeVarsOf computes the free-variable set of a completed function body:
// everything referenced that was neither bound inside the body, a declared
// parameter, the function itself, nor a lifted function name.
func (ctx *Context) freeVarsOf(f *frame, self string, params []string) []string {
	paramSet := make(map[string]bool, len(params))
	for _, p := range params {
		paramSet[p] = true
	}

	var free []string
	for name := range f.refs {
		if f.bound[name] || paramSet[name] || name == self {
			continue
		}
		if _, isFunc := ctx.funcFree[name]; isFunc {
			continue
		}
		free = append(free, name)
	}
	sort.Strings(free)
	return free
}

// Normalize lowers the typed tree into kernel top-level items. The result
// is deterministic for a given input and counter start.
func Normalize(program ast.Expr) ([]Item, error) {
	ctx := NewContext()

	var items []Item
	sawEntry := false
	cur := program
	for {
		let, ok := cur.(*ast.Let)
		if !ok {
			break
		}

		name := let.Name()
		if name == "" {
			return nil, diag.Errorf(diag.StageNormalize, diag.CodeNormTopLevelPattern, let.Span(),
				"destructuring bindings are not allowed at the top level")
		}
		if name == EntryPoint {
			sawEntry = true
		}

		item, err := ctx.normTopLevel(let)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		cur = let.Rest
	}

	// The terminal body of the chain becomes the entry point's body when no
	// explicit one was bound. A unit terminal stands for an omitted body and
	// defines nothing.
	if _, isUnit := cur.(*ast.Unit); !isUnit && !sawEntry {
		renamed, _ := ctx.bind(EntryPoint)
		fn, err := ctx.normFunction(renamed, nil, cur)
		if err != nil {
			return nil, err
		}
		items = append(items, &FuncDef{
			ID:        cur.Span().Start,
			Name:      renamed,
			Recursive: fn.Recursive,
			FreeVars:  fn.FreeVars,
			Body:      fn.Body,
		})
	}

	return items, nil
}

// normTopLevel lowers one top-level binding. The entry point is always a
// function definition, even when declared without parameters.
func (ctx *Context) normTopLevel(let *ast.Let) (Item, error) {
	name := let.Name()
	id := let.Span().Start

	if len(let.Params) == 0 && name != EntryPoint {
		ctx.pushFrame()
		body, err := ctx.normExpr(let.Body)
		ctx.popFrame()
		if err != nil {
			return nil, err
		}

		renamed, _ := ctx.bind(name)
		return &ValueDef{ID: id, Name: renamed, Body: body}, nil
	}

	renamed, _ := ctx.bind(name)
	fn, err := ctx.normFunction(renamed, let.Params, let.Body)
	if err != nil {
		return nil, err
	}

	return &FuncDef{
		ID:        id,
		Name:      renamed,
		Params:    fn.Params,
		Recursive: fn.Recursive,
		FreeVars:  fn.FreeVars,
		Body:      fn.Body,
	}, nil
}

// normFunction walks a function body in its own frame and finalizes its
// free-variable set. The binder itself must already be in scope so
// recursive references resolve.
func (ctx *Context) normFunction(renamed string, params []*ast.Param, body ast.Expr) (*LetFunc, error) {
	ctx.pushFrame()

	paramNames := make([]string, len(params))
	restores := make([]func(), len(params))
	for i, p := range params {
		pr, restore := ctx.bind(p.Name)
		paramNames[i] = pr
		restores[i] = restore
	}

	kbody, err := ctx.normExpr(body)

	for i := len(restores) - 1; i >= 0; i-- {
		restores[i]()
	}
	f := ctx.popFrame()
	if err != nil {
		return nil, err
	}

	free := ctx.freeVarsOf(f, renamed, paramNames)
	ctx.funcFree[renamed] = free

	// The finished body's free references also flow into the enclosing
	// frame: whoever calls this function must supply them.
	if len(ctx.frames) > 0 {
		for _, captured := range free {
			ctx.current().refs[captured] = true
		}
	}

	return &LetFunc{
		Name:      renamed,
		Params:    paramNames,
		Recursive: f.refs[renamed],
		FreeVars:  free,
		Body:      kbody,
	}, nil
}

func (ctx *Context) normExpr(expr ast.Expr) (Expr, error) {
	switch e := expr.(type) {
	case *ast.Unit:
		return &Lit{Kind: LitUnit}, nil
	case *ast.Bool:
		return &Lit{Kind: LitBool, Bool: e.Value}, nil
	case *ast.Int:
		return &Lit{Kind: LitInt, Int: e.Value}, nil
	case *ast.Float:
		return &Lit{Kind: LitFloat, Float: e.Value}, nil
	case *ast.String:
		return &Lit{Kind: LitString, Str: e.Value}, nil

	case *ast.Sym:
		return ctx.normSym(e)

	case *ast.Binary:
		left, err := ctx.normExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := ctx.normExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &Binop{Op: e.Op, Left: left, Right: right}, nil

	case *ast.Apply:
		return ctx.normApply(e)

	case *ast.If:
		cond, err := ctx.normExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := ctx.normExpr(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := ctx.normExpr(e.Else)
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: els}, nil

	case *ast.Block:
		return ctx.normBlock(e)

	case *ast.List:
		elems, err := ctx.normExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &List{Elems: elems}, nil

	case *ast.Tuple:
		elems, err := ctx.normExprs(e.Elems)
		if err != nil {
			return nil, err
		}
		return &Tuple{Elems: elems}, nil

	case *ast.Record:
		fields := make([]Field, len(e.Fields))
		for i, f := range e.Fields {
			value, err := ctx.normExpr(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Value: value}
		}
		return &Record{Fields: fields}, nil

	case *ast.Lambda:
		return ctx.normLambda(e)

	case *ast.Let:
		return ctx.normLet(e)

	case *ast.Case:
		return ctx.normCase(e)

	default:
		return nil, diag.Internalf(diag.StageNormalize, "unhandled expression %T", expr)
	}
}

func (ctx *Context) normExprs(exprs []ast.Expr) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		k, err := ctx.normExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

func (ctx *Context) normSym(e *ast.Sym) (Expr, error) {
	// Escape forms survive unrenamed; the code generator rewrites them.
	if e.Name == ast.ExternalForm || e.Name == ast.InlineForm {
		return &Var{Name: e.Name}, nil
	}

	renamed, ok := ctx.env[e.Name]
	if !ok {
		// The type checker resolves every ordinary identifier first.
		return nil, diag.Internalf(diag.StageNormalize, "unresolved identifier %q", e.Name)
	}

	ctx.noteRef(renamed)
	return &Var{Name: renamed}, nil
}

// normApply collapses a left-associated application spine into one n-ary
// call.
func (ctx *Context) normApply(e *ast.Apply) (Expr, error) {
	var spine []ast.Expr
	head := ast.Expr(e)
	for {
		app, ok := head.(*ast.Apply)
		if !ok {
			break
		}
		spine = append([]ast.Expr{app.Arg}, spine...)
		head = app.Fn
	}

	fn, err := ctx.normExpr(head)
	if err != nil {
		return nil, err
	}

	args, err := ctx.normExprs(spine)
	if err != nil {
		return nil, err
	}

	return &Call{Fn: fn, Args: args}, nil
}

// normBlock sequences block expressions through discard bindings; the
// block's value is its final expression.
func (ctx *Context) normBlock(e *ast.Block) (Expr, error) {
	last := len(e.Exprs) - 1

	result, err := ctx.normExpr(e.Exprs[last])
	if err != nil {
		return nil, err
	}

	for i := last - 1; i >= 0; i-- {
		value, err := ctx.normExpr(e.Exprs[i])
		if err != nil {
			return nil, err
		}
		result = flattenValue("_", value, result)
	}

	return result, nil
}

func (ctx *Context) normLambda(e *ast.Lambda) (Expr, error) {
	params := make([]string, len(e.Params))
	restores := make([]func(), len(e.Params))
	for i, p := range e.Params {
		renamed, restore := ctx.bind(p.Name)
		params[i] = renamed
		restores[i] = restore
		ctx.noteBound(renamed)
	}

	body, err := ctx.normExpr(e.Body)

	for i := len(restores) - 1; i >= 0; i-- {
		restores[i]()
	}
	if err != nil {
		return nil, err
	}

	return &Lambda{Params: params, Body: body}, nil
}

func (ctx *Context) normLet(e *ast.Let) (Expr, error) {
	name := e.Name()

	if name == "" {
		body, err := ctx.normExpr(e.Body)
		if err != nil {
			return nil, err
		}

		// A single-field record binding reads the field directly instead of
		// matching the whole record shape.
		if rec, ok := e.Pattern.(*ast.PatRecord); ok && len(rec.Fields) == 1 {
			renamed, restore := ctx.bind(rec.Fields[0])
			ctx.noteBound(renamed)
			rest, err := ctx.normExpr(e.Rest)
			restore()
			if err != nil {
				return nil, err
			}
			return &LetValue{
				Name: renamed,
				Body: &FieldAccess{Target: body, Name: rec.Fields[0]},
				Rest: rest,
			}, nil
		}

		pat, restore, err := ctx.normPattern(e.Pattern)
		if err != nil {
			return nil, err
		}
		rest, err := ctx.normExpr(e.Rest)
		restore()
		if err != nil {
			return nil, err
		}

		return &LetPattern{Pat: pat, Body: body, Rest: rest}, nil
	}

	if len(e.Params) > 0 {
		renamed, restore := ctx.bind(name)
		fn, err := ctx.normFunction(renamed, e.Params, e.Body)
		if err != nil {
			restore()
			return nil, err
		}

		rest, err := ctx.normExpr(e.Rest)
		restore()
		if err != nil {
			return nil, err
		}

		fn.Rest = rest
		return fn, nil
	}

	// Value binding: the body is walked before the binder enters scope.
	body, err := ctx.normExpr(e.Body)
	if err != nil {
		return nil, err
	}

	renamed, restore := ctx.bind(name)
	ctx.noteBound(renamed)
	rest, err := ctx.normExpr(e.Rest)
	restore()
	if err != nil {
		return nil, err
	}

	return flattenValue(renamed, body, rest), nil
}

// flattenValue re-associates a value binding whose body is itself a binding
// chain, so evaluation order matches declaration order and the target's
// flat assignment sequencing applies.
func flattenValue(name string, body, rest Expr) Expr {
	switch inner := body.(type) {
	case *LetValue:
		return &LetValue{
			Name: inner.Name,
			Body: inner.Body,
			Rest: flattenValue(name, inner.Rest, rest),
		}
	case *LetPattern:
		return &LetPattern{
			Pat:  inner.Pat,
			Body: inner.Body,
			Rest: flattenValue(name, inner.Rest, rest),
		}
	case *LetFunc:
		return &LetFunc{
			Name:      inner.Name,
			Params:    inner.Params,
			Recursive: inner.Recursive,
			FreeVars:  inner.FreeVars,
			Body:      inner.Body,
			Rest:      flattenValue(name, inner.Rest, rest),
		}
	default:
		return &LetValue{Name: name, Body: body, Rest: rest}
	}
}

func (ctx *Context) normCase(e *ast.Case) (Expr, error) {
	scrut, err := ctx.normExpr(e.Scrut)
	if err != nil {
		return nil, err
	}

	out := &Case{Scrut: scrut}

	for i, arm := range e.Arms {
		isLast := i == len(e.Arms)-1

		// A trailing catch-all arm becomes the default.
		if isLast {
			switch pat := arm.Pat.(type) {
			case *ast.PatWild:
				result, err := ctx.normExpr(arm.Body)
				if err != nil {
					return nil, err
				}
				out.Default = result
				continue
			case *ast.PatSym:
				renamed, restore := ctx.bind(pat.Name)
				ctx.noteBound(renamed)
				result, err := ctx.normExpr(arm.Body)
				restore()
				if err != nil {
					return nil, err
				}
				out.DefaultName = renamed
				out.Default = result
				continue
			}
		}

		pat, restore, err := ctx.normPattern(arm.Pat)
		if err != nil {
			return nil, err
		}
		result, err := ctx.normExpr(arm.Body)
		restore()
		if err != nil {
			return nil, err
		}

		out.Arms = append(out.Arms, Arm{Pat: pat, Result: result})
	}

	return out, nil
}

// normPattern renames a pattern's binders and returns the restore function
// that closes their scope.
func (ctx *Context) normPattern(pat ast.Pattern) (Pattern, func(), error) {
	var restores []func()
	restoreAll := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}

	var walk func(p ast.Pattern) (Pattern, error)
	walk = func(p ast.Pattern) (Pattern, error) {
		switch p := p.(type) {
		case *ast.PatWild:
			return &PatWild{}, nil

		case *ast.PatSym:
			renamed, restore := ctx.bind(p.Name)
			restores = append(restores, restore)
			ctx.noteBound(renamed)
			return &PatVar{Name: renamed}, nil

		case *ast.PatLit:
			lit, err := ctx.normExpr(p.Lit)
			if err != nil {
				return nil, err
			}
			return &PatLit{Lit: lit.(*Lit)}, nil

		case *ast.PatTuple:
			elems := make([]Pattern, len(p.Elems))
			for i, sub := range p.Elems {
				k, err := walk(sub)
				if err != nil {
					return nil, err
				}
				elems[i] = k
			}
			return &PatTuple{Elems: elems}, nil

		case *ast.PatList:
			elems := make([]Pattern, len(p.Elems))
			for i, sub := range p.Elems {
				k, err := walk(sub)
				if err != nil {
					return nil, err
				}
				elems[i] = k
			}
			var rest Pattern
			if p.Rest != nil {
				k, err := walk(p.Rest)
				if err != nil {
					return nil, err
				}
				rest = k
			}
			return &PatList{Elems: elems, Rest: rest}, nil

		case *ast.PatRecord:
			fields := make([]FieldPat, len(p.Fields))
			for i, name := range p.Fields {
				renamed, restore := ctx.bind(name)
				restores = append(restores, restore)
				ctx.noteBound(renamed)
				fields[i] = FieldPat{Field: name, Bind: renamed}
			}
			return &PatRecord{Fields: fields}, nil

		default:
			return nil, diag.Internalf(diag.StageNormalize, "unhandled pattern %T", p)
		}
	}

	out, err := walk(pat)
	if err != nil {
		restoreAll()
		return nil, nil, err
	}
	return out, restoreAll, nil
}
