package lexer

import "github.com/tarn-lang/tarn/internal/diag"

// TokenType represents the type of a token
type TokenType string

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // exact text from source (decoded value for strings)
	Span    diag.Span
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT   TokenType = "IDENT"   // add, foobar, x, _
	INT     TokenType = "INT"     // 42, -7
	FLOAT   TokenType = "FLOAT"   // 3.14, -0.5
	STRING  TokenType = "STRING"  // "lists:nth"
	UNIT    TokenType = "()"      // the unit literal
	TYPEVAR TokenType = "TYPEVAR" // 'a, used in annotations

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	LE       TokenType = "<="
	GT       TokenType = ">"
	GE       TokenType = ">="
	AND      TokenType = "&&"
	OR       TokenType = "||"
	ARROW    TokenType = "->"

	// Delimiters; standalone only when followed by whitespace or EOF
	ASSIGN    TokenType = "="
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	PIPE      TokenType = "|"
	BACKSLASH TokenType = "\\"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"

	// Keywords
	IF    TokenType = "IF"
	THEN  TokenType = "THEN"
	ELSE  TokenType = "ELSE"
	LET   TokenType = "LET"
	IN    TokenType = "IN"
	CASE  TokenType = "CASE"
	OF    TokenType = "OF"
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"let":   LET,
	"in":    IN,
	"case":  CASE,
	"of":    OF,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent reclassifies an identifier spelling as a keyword or boolean
// literal after the full identifier has been read.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsBinaryOp reports whether the token type is a binary operator.
func IsBinaryOp(tt TokenType) bool {
	switch tt {
	case PLUS, MINUS, ASTERISK, SLASH, PERCENT, EQ, NOT_EQ, LT, LE, GT, GE, AND, OR:
		return true
	default:
		return false
	}
}
