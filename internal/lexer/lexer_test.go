package lexer

import (
	"testing"
)

func TestNextToken_Basic(t *testing.T) {
	input := `let add a b = a + b in add 2 3`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "add"},
		{IDENT, "a"},
		{IDENT, "b"},
		{ASSIGN, "="},
		{IDENT, "a"},
		{PLUS, "+"},
		{IDENT, "b"},
		{IN, "in"},
		{IDENT, "add"},
		{INT, "2"},
		{INT, "3"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `1 == 2 != 3 < 4 <= 5 > 6 >= 7 && true || false % 2 - 1 -> 'a`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{INT, "1"},
		{EQ, "=="},
		{INT, "2"},
		{NOT_EQ, "!="},
		{INT, "3"},
		{LT, "<"},
		{INT, "4"},
		{LE, "<="},
		{INT, "5"},
		{GT, ">"},
		{INT, "6"},
		{GE, ">="},
		{INT, "7"},
		{AND, "&&"},
		{TRUE, "true"},
		{OR, "||"},
		{FALSE, "false"},
		{PERCENT, "%"},
		{INT, "2"},
		{MINUS, "-"},
		{INT, "1"},
		{ARROW, "->"},
		{TYPEVAR, "a"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_NegativeNumbers(t *testing.T) {
	input := `-3 -3.5 - 3 a - b`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{INT, "-3"},
		{FLOAT, "-3.5"},
		{MINUS, "-"},
		{INT, "3"},
		{IDENT, "a"},
		{MINUS, "-"},
		{IDENT, "b"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_UnitAndBrackets(t *testing.T) {
	input := `() ( ) [ ] { } ; | \ :`

	tests := []TokenType{
		UNIT, LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE,
		SEMICOLON, PIPE, BACKSLASH, COLON, EOF,
	}

	l := New(input)

	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, expected, tok.Type)
		}
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := `1 -- the rest of this line vanishes
2 -- and this one too`

	tests := []TokenType{INT, INT, EOF}

	l := New(input)

	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, expected, tok.Type)
		}
	}
}

func TestNextToken_Strings(t *testing.T) {
	input := `"hello" "a\nb" "q\"q"`

	tests := []string{"hello", "a\nb", `q"q`}

	l := New(input)

	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, STRING, tok.Type)
		}
		if tok.Literal != expected {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, expected, tok.Literal)
		}
	}
}

func TestNextToken_EscapeForms(t *testing.T) {
	input := `__external__ "lists:nth" __inline__`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "__external__"},
		{STRING, "lists:nth"},
		{IDENT, "__inline__"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLex_Deterministic(t *testing.T) {
	input := `let f x = if x > 0 then x else 0 - x in f -3`

	first, err := Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("first lex failed: %v", err)
	}
	second, err := Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("second lex failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("token counts differ. expected=%d, got=%d", len(first), len(second))
	}
	for i := range first {
		if first[i].Type != second[i].Type || first[i].Literal != second[i].Literal {
			t.Fatalf("tests[%d] - token differs between runs. expected=%q %q, got=%q %q",
				i, first[i].Type, first[i].Literal, second[i].Type, second[i].Literal)
		}
	}
}

func TestLex_RoundTrip(t *testing.T) {
	input := `let f x = if x > 0 then true else false in f 10`

	toks, err := Lex("test.tarn", input)
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}

	// Re-lex the concatenated literals with separating whitespace; the
	// token kinds must reproduce.
	rebuilt := ""
	for _, tok := range toks {
		if tok.Type == EOF {
			break
		}
		rebuilt += tok.Literal + " "
	}

	again, err := Lex("test.tarn", rebuilt)
	if err != nil {
		t.Fatalf("re-lex failed: %v", err)
	}

	if len(again) != len(toks) {
		t.Fatalf("token counts differ. expected=%d, got=%d", len(toks), len(again))
	}
	for i := range toks {
		if toks[i].Type != again[i].Type {
			t.Fatalf("tests[%d] - tokentype wrong after round trip. expected=%q, got=%q",
				i, toks[i].Type, again[i].Type)
		}
	}
}

func TestLex_BareDelimiterFails(t *testing.T) {
	if _, err := Lex("test.tarn", `x =1`); err == nil {
		t.Fatalf("expected bare delimiter error, got none")
	}
}

func TestLex_UnterminatedStringFails(t *testing.T) {
	if _, err := Lex("test.tarn", `"oops`); err == nil {
		t.Fatalf("expected unterminated string error, got none")
	}
}

func TestLex_IllegalRuneFails(t *testing.T) {
	if _, err := Lex("test.tarn", `1 ? 2`); err == nil {
		t.Fatalf("expected illegal character error, got none")
	}
}

func TestNextToken_Spans(t *testing.T) {
	input := "ab + cd"

	l := New(input)
	l.SetFilename("test.tarn")

	first := l.NextToken()
	if first.Span.Start != 0 || first.Span.End != 2 {
		t.Fatalf("first span wrong. expected=0..2, got=%d..%d", first.Span.Start, first.Span.End)
	}
	if first.Span.Line != 1 || first.Span.Column != 1 {
		t.Fatalf("first position wrong. expected=1:1, got=%d:%d", first.Span.Line, first.Span.Column)
	}

	l.NextToken() // +
	third := l.NextToken()
	if third.Span.Start != 5 || third.Span.End != 7 {
		t.Fatalf("third span wrong. expected=5..7, got=%d..%d", third.Span.Start, third.Span.End)
	}
	if third.Span.Column != 6 {
		t.Fatalf("third column wrong. expected=6, got=%d", third.Span.Column)
	}
}
