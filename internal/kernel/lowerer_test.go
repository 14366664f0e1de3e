package kernel

import (
	"strings"
	"testing"

	"github.com/tarn-lang/tarn/internal/lexer"
	"github.com/tarn-lang/tarn/internal/parser"
)

func normalize(t *testing.T, input string) []Item {
	t.Helper()

	toks, err := lexer.Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	items, err := Normalize(program)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	return items
}

func TestNormalize_TopLevelFunction(t *testing.T) {
	items := normalize(t, `let add a b = a + b in ()`)

	if len(items) != 1 {
		t.Fatalf("item count wrong. expected=%d, got=%d", 1, len(items))
	}

	fn, ok := items[0].(*FuncDef)
	if !ok {
		t.Fatalf("item is not *FuncDef. got=%T", items[0])
	}
	if !strings.HasPrefix(fn.Name, "add_") {
		t.Fatalf("function name not renamed. expected prefix %q, got=%q", "add_", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("param count wrong. expected=%d, got=%d", 2, len(fn.Params))
	}

	body, ok := fn.Body.(*Binop)
	if !ok {
		t.Fatalf("body is not *Binop. got=%T", fn.Body)
	}
	left, ok := body.Left.(*Var)
	if !ok || left.Name != fn.Params[0] {
		t.Fatalf("body lhs wrong. expected=%q, got=%v", fn.Params[0], body.Left)
	}
}

func TestNormalize_EntryPointNeverRenamed(t *testing.T) {
	items := normalize(t, `let main = 1 + 2`)

	if len(items) != 1 {
		t.Fatalf("item count wrong. expected=%d, got=%d", 1, len(items))
	}
	fn, ok := items[0].(*FuncDef)
	if !ok {
		t.Fatalf("entry point is not *FuncDef. got=%T", items[0])
	}
	if fn.Name != "main" {
		t.Fatalf("entry point renamed. expected=%q, got=%q", "main", fn.Name)
	}
	if len(fn.Params) != 0 {
		t.Fatalf("param count wrong. expected=%d, got=%d", 0, len(fn.Params))
	}
}

func TestNormalize_TerminalExpressionBecomesEntryPoint(t *testing.T) {
	items := normalize(t, `let add a b = a + b in add 2 3`)

	if len(items) != 2 {
		t.Fatalf("item count wrong. expected=%d, got=%d", 2, len(items))
	}
	add := items[0].(*FuncDef)

	fn, ok := items[1].(*FuncDef)
	if !ok {
		t.Fatalf("second item is not *FuncDef. got=%T", items[1])
	}
	if fn.Name != "main" {
		t.Fatalf("entry name wrong. expected=%q, got=%q", "main", fn.Name)
	}
	if len(fn.Params) != 0 {
		t.Fatalf("param count wrong. expected=%d, got=%d", 0, len(fn.Params))
	}

	call, ok := fn.Body.(*Call)
	if !ok {
		t.Fatalf("entry body is not *Call. got=%T", fn.Body)
	}
	head, ok := call.Fn.(*Var)
	if !ok || head.Name != add.Name {
		t.Fatalf("entry body callee wrong. expected=%q, got=%v", add.Name, call.Fn)
	}
	if len(call.Args) != 2 {
		t.Fatalf("arg count wrong. expected=%d, got=%d", 2, len(call.Args))
	}
}

func TestNormalize_TopLevelValue(t *testing.T) {
	items := normalize(t, `let limit = 100 in let main = limit`)

	if len(items) != 2 {
		t.Fatalf("item count wrong. expected=%d, got=%d", 2, len(items))
	}

	value, ok := items[0].(*ValueDef)
	if !ok {
		t.Fatalf("first item is not *ValueDef. got=%T", items[0])
	}
	if !strings.HasPrefix(value.Name, "limit_") {
		t.Fatalf("value name not renamed. expected prefix %q, got=%q", "limit_", value.Name)
	}

	fn, ok := items[1].(*FuncDef)
	if !ok {
		t.Fatalf("second item is not *FuncDef. got=%T", items[1])
	}
	ref, ok := fn.Body.(*Var)
	if !ok || ref.Name != value.Name {
		t.Fatalf("entry body does not reference value. expected=%q, got=%v", value.Name, fn.Body)
	}
}

// collectBinders walks items and gathers every renamed binding site.
func collectBinders(items []Item) []string {
	var names []string

	var walkExpr func(e Expr)
	var walkPat func(p Pattern)

	walkPat = func(p Pattern) {
		switch p := p.(type) {
		case *PatVar:
			names = append(names, p.Name)
		case *PatTuple:
			for _, sub := range p.Elems {
				walkPat(sub)
			}
		case *PatList:
			for _, sub := range p.Elems {
				walkPat(sub)
			}
			if p.Rest != nil {
				walkPat(p.Rest)
			}
		case *PatRecord:
			for _, f := range p.Fields {
				names = append(names, f.Bind)
			}
		}
	}

	walkExpr = func(e Expr) {
		switch e := e.(type) {
		case *List:
			for _, sub := range e.Elems {
				walkExpr(sub)
			}
		case *Tuple:
			for _, sub := range e.Elems {
				walkExpr(sub)
			}
		case *Record:
			for _, f := range e.Fields {
				walkExpr(f.Value)
			}
		case *FieldAccess:
			walkExpr(e.Target)
		case *Binop:
			walkExpr(e.Left)
			walkExpr(e.Right)
		case *Call:
			walkExpr(e.Fn)
			for _, a := range e.Args {
				walkExpr(a)
			}
		case *Lambda:
			names = append(names, e.Params...)
			walkExpr(e.Body)
		case *If:
			walkExpr(e.Cond)
			walkExpr(e.Then)
			walkExpr(e.Else)
		case *LetValue:
			if e.Name != "_" {
				names = append(names, e.Name)
			}
			walkExpr(e.Body)
			walkExpr(e.Rest)
		case *LetFunc:
			names = append(names, e.Name)
			names = append(names, e.Params...)
			walkExpr(e.Body)
			if e.Rest != nil {
				walkExpr(e.Rest)
			}
		case *LetPattern:
			walkPat(e.Pat)
			walkExpr(e.Body)
			walkExpr(e.Rest)
		case *Case:
			walkExpr(e.Scrut)
			for _, arm := range e.Arms {
				walkPat(arm.Pat)
				walkExpr(arm.Result)
			}
			if e.Default != nil {
				if e.DefaultName != "" {
					names = append(names, e.DefaultName)
				}
				walkExpr(e.Default)
			}
		}
	}

	for _, item := range items {
		switch it := item.(type) {
		case *ValueDef:
			names = append(names, it.Name)
			walkExpr(it.Body)
		case *FuncDef:
			names = append(names, it.Name)
			names = append(names, it.Params...)
			walkExpr(it.Body)
		}
	}
	return names
}

func TestNormalize_RenamingInjective(t *testing.T) {
	items := normalize(t, `
let twice f x = f (f x) in
let add a b = a + b in
let main =
  let a = 1 in
  let f y = \ x = x + y + a in
  twice (f 2) a
`)

	seen := make(map[string]bool)
	for _, name := range collectBinders(items) {
		if name == "main" || name == "_" {
			continue
		}
		if seen[name] {
			t.Fatalf("binder %q assigned twice", name)
		}
		seen[name] = true
	}
}

func TestNormalize_ShadowingResolvesToNearestBinder(t *testing.T) {
	items := normalize(t, `let main = let x = 1 in let x = x + 1 in x`)

	fn := items[0].(*FuncDef)
	outer, ok := fn.Body.(*LetValue)
	if !ok {
		t.Fatalf("body is not *LetValue. got=%T", fn.Body)
	}
	inner, ok := outer.Rest.(*LetValue)
	if !ok {
		t.Fatalf("rest is not *LetValue. got=%T", outer.Rest)
	}
	if inner.Name == outer.Name {
		t.Fatalf("shadowed binder not renamed apart. both=%q", inner.Name)
	}

	// The inner body references the OUTER binder, the final result the inner.
	ref := inner.Body.(*Binop).Left.(*Var)
	if ref.Name != outer.Name {
		t.Fatalf("inner body reference wrong. expected=%q, got=%q", outer.Name, ref.Name)
	}
	final := inner.Rest.(*Var)
	if final.Name != inner.Name {
		t.Fatalf("final reference wrong. expected=%q, got=%q", inner.Name, final.Name)
	}
}

func TestNormalize_Uncurrying(t *testing.T) {
	items := normalize(t, `let f a b c = a in let main = f 1 2 3`)

	fn := items[1].(*FuncDef)
	call, ok := fn.Body.(*Call)
	if !ok {
		t.Fatalf("body is not *Call. got=%T", fn.Body)
	}
	if len(call.Args) != 3 {
		t.Fatalf("arg count wrong. expected=%d, got=%d", 3, len(call.Args))
	}
}

func TestNormalize_FreeVariables(t *testing.T) {
	items := normalize(t, `let main = let x = 5 in let f y = y + x in f 1`)

	fn := items[0].(*FuncDef)
	letX, ok := fn.Body.(*LetValue)
	if !ok {
		t.Fatalf("body is not *LetValue. got=%T", fn.Body)
	}
	letF, ok := letX.Rest.(*LetFunc)
	if !ok {
		t.Fatalf("rest is not *LetFunc. got=%T", letX.Rest)
	}

	if len(letF.FreeVars) != 1 || letF.FreeVars[0] != letX.Name {
		t.Fatalf("free vars wrong. expected=[%q], got=%v", letX.Name, letF.FreeVars)
	}
	if letF.Recursive {
		t.Fatalf("function wrongly marked recursive")
	}
}

func TestNormalize_TransitiveCaptures(t *testing.T) {
	items := normalize(t, `
let main =
  let x = 5 in
  let f y = y + x in
  let g z = f z in
  g 1
`)

	fn := items[0].(*FuncDef)
	letX := fn.Body.(*LetValue)
	letF := letX.Rest.(*LetFunc)
	letG, ok := letF.Rest.(*LetFunc)
	if !ok {
		t.Fatalf("rest is not *LetFunc. got=%T", letF.Rest)
	}

	// g never mentions x, but calling f obligates g to have x in scope.
	if len(letG.FreeVars) != 1 || letG.FreeVars[0] != letX.Name {
		t.Fatalf("transitive free vars wrong. expected=[%q], got=%v", letX.Name, letG.FreeVars)
	}
}

func TestNormalize_RecursiveFlag(t *testing.T) {
	items := normalize(t, `
let fact n = if n <= 1 then 1 else n * fact (n - 1) in
let main = fact 5
`)

	fn := items[0].(*FuncDef)
	if !fn.Recursive {
		t.Fatalf("recursive function not flagged")
	}
	if len(fn.FreeVars) != 0 {
		t.Fatalf("free vars wrong. expected=[], got=%v", fn.FreeVars)
	}
}

func TestNormalize_BlockBecomesDiscardChain(t *testing.T) {
	items := normalize(t, `let main = { 1 ; 2 ; 3 }`)

	fn := items[0].(*FuncDef)
	first, ok := fn.Body.(*LetValue)
	if !ok {
		t.Fatalf("body is not *LetValue. got=%T", fn.Body)
	}
	if first.Name != "_" {
		t.Fatalf("discard binder wrong. expected=%q, got=%q", "_", first.Name)
	}
	second, ok := first.Rest.(*LetValue)
	if !ok {
		t.Fatalf("rest is not *LetValue. got=%T", first.Rest)
	}
	last, ok := second.Rest.(*Lit)
	if !ok || last.Int != 3 {
		t.Fatalf("block result wrong. expected=3, got=%v", second.Rest)
	}
}

func TestNormalize_FlattenNestedValueChains(t *testing.T) {
	items := normalize(t, `let main = let y = (let z = 1 in z + 1) in y`)

	fn := items[0].(*FuncDef)
	letZ, ok := fn.Body.(*LetValue)
	if !ok {
		t.Fatalf("body is not *LetValue. got=%T", fn.Body)
	}
	if lit, ok := letZ.Body.(*Lit); !ok || lit.Int != 1 {
		t.Fatalf("first binding wrong. expected z = 1, got=%v", letZ.Body)
	}

	letY, ok := letZ.Rest.(*LetValue)
	if !ok {
		t.Fatalf("chain not flattened. got=%T", letZ.Rest)
	}
	if _, ok := letY.Body.(*Binop); !ok {
		t.Fatalf("second binding wrong. expected z + 1, got=%T", letY.Body)
	}
}

func TestNormalize_CaseDefaultExtraction(t *testing.T) {
	items := normalize(t, `
let classify n =
  case n of
  | 0 = "zero"
  | 1 = "one"
  | other = "many"
in let main = classify 2
`)

	fn := items[0].(*FuncDef)
	c, ok := fn.Body.(*Case)
	if !ok {
		t.Fatalf("body is not *Case. got=%T", fn.Body)
	}
	if len(c.Arms) != 2 {
		t.Fatalf("arm count wrong. expected=%d, got=%d", 2, len(c.Arms))
	}
	if c.Default == nil {
		t.Fatalf("default arm missing")
	}
	if !strings.HasPrefix(c.DefaultName, "other_") {
		t.Fatalf("default binder wrong. expected prefix %q, got=%q", "other_", c.DefaultName)
	}
}

func TestNormalize_SingleFieldRecordBindingReadsField(t *testing.T) {
	items := normalize(t, `let main = let r = {x : 1; y : 2} in let {x} = r in x`)

	fn := items[0].(*FuncDef)
	letR, ok := fn.Body.(*LetValue)
	if !ok {
		t.Fatalf("body is not *LetValue. got=%T", fn.Body)
	}
	letX, ok := letR.Rest.(*LetValue)
	if !ok {
		t.Fatalf("record binding is not *LetValue. got=%T", letR.Rest)
	}

	read, ok := letX.Body.(*FieldAccess)
	if !ok {
		t.Fatalf("binding body is not *FieldAccess. got=%T", letX.Body)
	}
	if read.Name != "x" {
		t.Fatalf("field wrong. expected=%q, got=%q", "x", read.Name)
	}
	target, ok := read.Target.(*Var)
	if !ok || target.Name != letR.Name {
		t.Fatalf("field target wrong. expected=%q, got=%v", letR.Name, read.Target)
	}

	final, ok := letX.Rest.(*Var)
	if !ok || final.Name != letX.Name {
		t.Fatalf("final reference wrong. expected=%q, got=%v", letX.Name, letX.Rest)
	}
}

func TestNormalize_TopLevelDestructuringFails(t *testing.T) {
	toks, err := lexer.Lex("test.tarn", `let (a ; b) = (1 ; 2) in let main = a`)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := Normalize(program); err == nil {
		t.Fatalf("expected top-level destructuring error, got none")
	}
}

func TestNormalize_ItemIDsFromSourcePosition(t *testing.T) {
	items := normalize(t, `let one = 1 in let two = 2 in let main = one + two`)

	prev := -1
	for i, item := range items {
		if item.ItemID() <= prev {
			t.Fatalf("items[%d] - id not increasing. previous=%d, got=%d", i, prev, item.ItemID())
		}
		prev = item.ItemID()
	}
}

func TestPrettyPrint_Items(t *testing.T) {
	items := normalize(t, `let main = let x = 1 in x + 1`)

	out := PrettyPrint(items)
	if !strings.Contains(out, "fn main()") {
		t.Fatalf("pretty output missing entry header. got=%q", out)
	}
	if !strings.Contains(out, "let x_") {
		t.Fatalf("pretty output missing renamed binding. got=%q", out)
	}
}
