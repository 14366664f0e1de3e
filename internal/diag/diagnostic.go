package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageParser    Stage = "parser"
	StageTypeCheck Stage = "typecheck"
	StageNormalize Stage = "normalize"
	StageCodegen   Stage = "codegen"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerIllegalRune        Code = "LEXER_ILLEGAL_RUNE"
	CodeLexerUnterminatedString Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerBareDelimiter      Code = "LEXER_BARE_DELIMITER"

	// Parser errors
	CodeParseUnexpectedToken Code = "PARSE_UNEXPECTED_TOKEN"
	CodeParseTrailingTokens  Code = "PARSE_TRAILING_TOKENS"
	CodeParseUnexpectedEOF   Code = "PARSE_UNEXPECTED_EOF"

	// Type checker errors
	CodeTypeMismatch            Code = "TYPE_MISMATCH"
	CodeTypeUndefinedIdentifier Code = "TYPE_UNDEFINED_IDENTIFIER"
	CodeTypeOccursCheck         Code = "TYPE_OCCURS_CHECK"
	CodeTypeNotNumeric          Code = "TYPE_NOT_NUMERIC"
	CodeTypeBadEscapeForm       Code = "TYPE_BAD_ESCAPE_FORM"

	// Normalizer codes.
	CodeNormTopLevelPattern Code = "NORM_TOP_LEVEL_PATTERN"
)

// Span represents a location range in source code.
type Span struct {
	Filename string
	Line     int // 1-based line of the first rune
	Column   int // 1-based column of the first rune
	Start    int // rune offset, inclusive
	End      int // rune offset, exclusive
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Union returns a span covering both s and other. The earlier start wins the
// line/column anchor; the later end wins the extent.
func (s Span) Union(other Span) Span {
	out := s
	if out.Filename == "" {
		out.Filename = other.Filename
	}
	if out.Line == 0 || (other.Line != 0 && other.Start < out.Start) {
		out.Line = other.Line
		out.Column = other.Column
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Hint     string // optional suggestion for fixing the error
	Span     Span
}

// Error implements the error interface so a diagnostic can abort the pipeline.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// WithHint returns a copy of the diagnostic carrying the given hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// Errorf builds an error-severity diagnostic for the given stage and span.
func Errorf(stage Stage, code Code, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}
