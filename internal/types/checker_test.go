package types

import (
	"testing"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/lexer"
	"github.com/tarn-lang/tarn/internal/parser"
)

func parse(t *testing.T, input string) ast.Expr {
	t.Helper()

	toks, err := lexer.Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	expr, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return expr
}

func inferType(t *testing.T, input string) string {
	t.Helper()

	c := NewChecker()
	typ, err := c.Check(parse(t, input))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	return FloorOne(typ).String()
}

func TestCheck_Literals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`42`, "int"},
		{`1.5`, "float"},
		{`true`, "bool"},
		{`"abc"`, "string"},
		{`()`, "unit"},
		{`[1 ; 2 ; 3]`, "list int"},
		{`(1 ; true)`, "(int; bool)"},
		{`{x : 1 ; y : true}`, "{x : int; y : bool}"},
	}

	for i, tt := range tests {
		got := inferType(t, tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - type wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestCheck_Functions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`\ x = x`, "'a -> 'a"},
		{`\ x = x + x`, "int -> int"},
		{`\ x = x % 2`, "int -> int"},
		{`\ x y = x`, "'a -> 'b -> 'a"},
		{`let add a b = a + b in add 2 3`, "int"},
		{`let add a b = a + b in add`, "int -> int -> int"},
		{`let inc (n : int) : int = n + 1 in inc`, "int -> int"},
		{`if 1 < 2 then 1 else 2`, "int"},
		{`\ f x = f x`, "('a -> 'b) -> 'a -> 'b"},
	}

	for i, tt := range tests {
		got := inferType(t, tt.input)
		if got != tt.expected {
			t.Fatalf("tests[%d] - type wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestCheck_Generalization(t *testing.T) {
	got := inferType(t, `let id x = x in (id 1 ; id true)`)
	if got != "(int; bool)" {
		t.Fatalf("type wrong. expected=%q, got=%q", "(int; bool)", got)
	}
}

func TestCheck_Case(t *testing.T) {
	got := inferType(t, `\ xs = case xs of | [] = 0 | [h | t] = h`)
	if got != "list int -> int" {
		t.Fatalf("type wrong. expected=%q, got=%q", "list int -> int", got)
	}
}

func TestCheck_DestructuringLet(t *testing.T) {
	got := inferType(t, `let (a ; b) = (1 ; true) in a`)
	if got != "int" {
		t.Fatalf("type wrong. expected=%q, got=%q", "int", got)
	}
}

func TestCheck_Errors(t *testing.T) {
	tests := []string{
		`1 + true`,
		`if 1 then 2 else 3`,
		`if true then 1 else false`,
		`nonexistent`,
		`\ x = x x`,
		`let f (n : int) = n && true in f`,
		`"a" - "b"`,
	}

	for i, input := range tests {
		c := NewChecker()
		if _, err := c.Check(parse(t, input)); err == nil {
			t.Fatalf("tests[%d] - expected type error for %q, got none", i, input)
		}
	}
}

func TestCheck_EscapeForms(t *testing.T) {
	// Escape forms are typed freshly; the string head and any argument
	// shapes must still check.
	got := inferType(t, `let xs = [1 ; 2] in __external__ "lists:nth" 1 xs + 0`)
	if got != "int" {
		t.Fatalf("type wrong. expected=%q, got=%q", "int", got)
	}

	c := NewChecker()
	if _, err := c.Check(parse(t, `__external__ 42`)); err == nil {
		t.Fatalf("expected escape form error, got none")
	}
}

func TestCheck_AnnotationMismatch(t *testing.T) {
	c := NewChecker()
	if _, err := c.Check(parse(t, `let f (n : int) : bool = n + 1 in f`)); err == nil {
		t.Fatalf("expected annotation conflict error, got none")
	}
}

func TestCheck_AnnotationSurvivesNestedBindings(t *testing.T) {
	// A binding inside the body must not disconnect the return annotation
	// from the parameter sharing the same annotation variable.
	c := NewChecker()
	if _, err := c.Check(parse(t, `let f (x : 'a) : 'a = (let u = 1 in 0) in f true`)); err == nil {
		t.Fatalf("expected annotation conflict error, got none")
	}

	got := inferType(t, `let f (x : 'a) : 'a = (let u = 1 in x) in f true`)
	if got != "bool" {
		t.Fatalf("type wrong. expected=%q, got=%q", "bool", got)
	}
}

func TestCheck_TypeOf(t *testing.T) {
	program := parse(t, `1 + 2`)
	c := NewChecker()
	if _, err := c.Check(program); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	typ := c.TypeOf(program)
	if typ == nil || typ.String() != "int" {
		t.Fatalf("node type wrong. expected=%q, got=%v", "int", typ)
	}
}

func TestFloor_Canonicalizes(t *testing.T) {
	tests := []struct {
		input    Type
		expected string
	}{
		{&Var{Name: "t17"}, "'a"},
		{
			&Arrow{Param: &Var{Name: "t9"}, Result: &Var{Name: "t9"}},
			"'a -> 'a",
		},
		{
			&Arrow{Param: &Var{Name: "t4"}, Result: &Arrow{Param: &Var{Name: "t2"}, Result: &Var{Name: "t4"}}},
			"'a -> 'b -> 'a",
		},
		{
			&App{Ctor: "list", Arg: &Var{Name: "z"}},
			"list 'a",
		},
	}

	for i, tt := range tests {
		got := FloorOne(tt.input).String()
		if got != tt.expected {
			t.Fatalf("tests[%d] - floored type wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestFloor_SharedAcrossSignatures(t *testing.T) {
	ts := Floor([]Type{
		&Var{Name: "t3"},
		&Arrow{Param: &Var{Name: "t3"}, Result: &Var{Name: "t8"}},
	})

	if ts[0].String() != "'a" {
		t.Fatalf("first floored type wrong. expected=%q, got=%q", "'a", ts[0].String())
	}
	if ts[1].String() != "'a -> 'b" {
		t.Fatalf("second floored type wrong. expected=%q, got=%q", "'a -> 'b", ts[1].String())
	}
}

func TestCheck_StructuralEqualityUpToRenaming(t *testing.T) {
	first := inferType(t, `\ x y = x`)
	second := inferType(t, `\ p q = p`)
	if first != second {
		t.Fatalf("floored signatures differ. expected=%q, got=%q", first, second)
	}
}
