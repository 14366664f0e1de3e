package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/tarn-lang/tarn/internal/kernel"
	"github.com/tarn-lang/tarn/internal/lexer"
	"github.com/tarn-lang/tarn/internal/parser"
)

func generate(t *testing.T, input string) string {
	t.Helper()

	toks, err := lexer.Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	items, err := kernel.Normalize(program)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	forms, err := NewGenerator("test").Generate(items)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	return Print(forms)
}

func mustMatch(t *testing.T, out, pattern string) {
	t.Helper()
	if !regexp.MustCompile(pattern).MatchString(out) {
		t.Fatalf("output does not match %q. got:\n%s", pattern, out)
	}
}

func TestGenerate_AddEndToEnd(t *testing.T) {
	out := generate(t, `let add a b = a + b in let main = add 2 3`)

	mustMatch(t, out, `-module\(test\)\.`)
	mustMatch(t, out, `-export\(\[add_\d+/2, main/0\]\)\.`)
	mustMatch(t, out, `add_\d+\(A_\d+, B_\d+\) ->\n    A_\d+ \+ B_\d+\.`)
	mustMatch(t, out, `main\(\) ->\n    add_\d+\(2, 3\)\.`)
}

func TestGenerate_TerminalExpressionProgram(t *testing.T) {
	out := generate(t, `let add a b = a + b in add 2 3`)

	mustMatch(t, out, `-export\(\[add_\d+/2, main/0\]\)\.`)
	mustMatch(t, out, `main\(\) ->\n    add_\d+\(2, 3\)\.`)
}

func TestGenerate_UppercaseFunctionNameQuoted(t *testing.T) {
	out := generate(t, `let Inc x = x + 1 in let main = Inc 3`)

	mustMatch(t, out, `-export\(\['Inc_\d+'/1, main/0\]\)\.`)
	mustMatch(t, out, `'Inc_\d+'\(X_\d+\) ->`)
	mustMatch(t, out, `main\(\) ->\n    'Inc_\d+'\(3\)\.`)
}

func TestGenerate_GuardedConditional(t *testing.T) {
	out := generate(t, `let main = if true then 1 else 2`)

	mustMatch(t, out, `Tmp1 = true`)
	mustMatch(t, out, `case Tmp1 == true of`)
	mustMatch(t, out, `true ->\n\s+1`)
	mustMatch(t, out, `false ->\n\s+2`)
}

func TestGenerate_ExternalForm(t *testing.T) {
	out := generate(t, `let xs = [1 ; 2] in let main = __external__ "lists:nth" (1 + 0) xs`)

	mustMatch(t, out, `lists:nth\(\(1 \+ 0\), Xs_\d+\)`)
	if strings.Contains(out, "__external__") {
		t.Fatalf("escape form leaked into output:\n%s", out)
	}
}

func TestGenerate_ExternalDefaultModule(t *testing.T) {
	out := generate(t, `let main = __external__ "abs" -3`)

	mustMatch(t, out, `erlang:abs\(-3\)`)
}

func TestGenerate_InlineForm(t *testing.T) {
	out := generate(t, `let main = __inline__ "erlang:system_time()"`)

	mustMatch(t, out, `erlang:system_time\(\)`)
	if strings.Contains(out, "__inline__") {
		t.Fatalf("escape form leaked into output:\n%s", out)
	}
}

func TestGenerate_CaptureThreading(t *testing.T) {
	out := generate(t, `let main = let x = 5 in let f y = y + x in f 1`)

	// The lifted definition declares the capture as a trailing parameter,
	// and the call site passes it.
	mustMatch(t, out, `f_\d+\(Y_\d+, X_\d+\) ->`)
	mustMatch(t, out, `f_\d+\(1, X_\d+\)`)
}

func TestGenerate_TransitiveCaptureThreading(t *testing.T) {
	out := generate(t, `
let main =
  let x = 5 in
  let f y = y + x in
  let g z = f z in
  g 1
`)

	mustMatch(t, out, `g_\d+\(Z_\d+, X_\d+\) ->`)
	mustMatch(t, out, `g_\d+\(1, X_\d+\)`)
	// g forwards its threaded capture into f.
	mustMatch(t, out, `f_\d+\(Z_\d+, X_\d+\)`)
}

func TestGenerate_ValuePrelude(t *testing.T) {
	out := generate(t, `let base = 10 in let main = base + 1`)

	mustMatch(t, out, `main\(\) ->\n    Base_\d+ = 10,\n    Base_\d+ \+ 1\.`)
}

func TestGenerate_ValueCaptureInTopLevelFunction(t *testing.T) {
	out := generate(t, `let base = 10 in let bump n = n + base in let main = bump 1`)

	// A top-level function referencing a hoisted value receives it as a
	// trailing parameter; main supplies it from the prelude.
	mustMatch(t, out, `bump_\d+\(N_\d+, Base_\d+\) ->`)
	mustMatch(t, out, `bump_\d+\(1, Base_\d+\)`)
}

func TestGenerate_ExportsLiftedFunctions(t *testing.T) {
	out := generate(t, `let main = let helper n = n in helper 1`)

	mustMatch(t, out, `-export\(\[helper_\d+/1, main/0\]\)\.`)
}

func TestGenerate_MissingEntryPointFails(t *testing.T) {
	toks, err := lexer.Lex("test.tarn", `let add a b = a + b in ()`)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	items, err := kernel.Normalize(program)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if _, err := NewGenerator("test").Generate(items); err == nil {
		t.Fatalf("expected missing entry point error, got none")
	}
}

func TestGenerate_BareFunctionReference(t *testing.T) {
	out := generate(t, `let inc n = n + 1 in let main = __external__ "lists:map" inc [1 ; 2]`)

	mustMatch(t, out, `lists:map\(fun inc_\d+/1, \[1, 2\]\)`)
}

func TestGenerate_CapturedFunctionReferenceEtaExpands(t *testing.T) {
	out := generate(t, `
let main =
  let x = 5 in
  let f y = y + x in
  __external__ "lists:map" f [1 ; 2]
`)

	// f cannot be passed as a bare fun: its capture must be supplied.
	mustMatch(t, out, `fun\(Eta1\) ->\n\s+f_\d+\(Eta1, X_\d+\)`)
}

func TestGenerate_Lambda(t *testing.T) {
	out := generate(t, `let main = (\ n = n * 2) 21`)

	mustMatch(t, out, `\(fun\(N_\d+\) ->\n\s+N_\d+ \* 2\n\s+end\)\(21\)`)
}

func TestGenerate_CaseExpression(t *testing.T) {
	out := generate(t, `
let main =
  case [1 ; 2] of
  | [] = 0
  | [h | t] = h
  | _ = -1
`)

	mustMatch(t, out, `case \[1, 2\] of`)
	mustMatch(t, out, `\[\] ->`)
	mustMatch(t, out, `\[H_\d+ \| T_\d+\] ->`)
	mustMatch(t, out, `_ ->`)
}

func TestGenerate_RecordsAsMaps(t *testing.T) {
	out := generate(t, `
let main =
  let p = {x : 1 ; y : 2} in
  let {x ; y} = p in
  x + y
`)

	mustMatch(t, out, `#\{x => 1, y => 2\}`)
	mustMatch(t, out, `#\{x := X_\d+, y := Y_\d+\} = P_\d+`)
}

func TestGenerate_SingleFieldReadUsesMapsGet(t *testing.T) {
	out := generate(t, `
let main =
  let p = {x : 1 ; y : 2} in
  let {x} = p in
  x
`)

	mustMatch(t, out, `X_\d+ = maps:get\(x, P_\d+\)`)
}

func TestGenerate_OperatorSpelling(t *testing.T) {
	out := generate(t, `let main = if 7 % 2 != 1 && 1 <= 2 then 1 else 2`)

	mustMatch(t, out, `7 rem 2`)
	mustMatch(t, out, `/=`)
	mustMatch(t, out, `=<`)
	mustMatch(t, out, `andalso`)
}

func TestGenerate_UnitIsOkAtom(t *testing.T) {
	out := generate(t, `let main = ()`)

	mustMatch(t, out, `main\(\) ->\n    ok\.`)
}

func TestPrint_VarName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x_2", "X_2"},
		{"add_1", "Add_1"},
		{"_", "_"},
		{"_hidden_3", "_Hidden_3"},
		{"Upper", "Upper"},
	}

	for i, tt := range tests {
		got := varName(tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - variable name wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestPrint_AtomName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add_1", "add_1"},
		{"ok", "ok"},
		{"Needs", "'Needs'"},
		{"with space", "'with space'"},
	}

	for i, tt := range tests {
		got := atomName(tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - atom wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestPrint_FloatText(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{1.5, "1.5"},
		{3, "3.0"},
		{0.25, "0.25"},
	}

	for i, tt := range tests {
		got := floatText(tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - float text wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}
