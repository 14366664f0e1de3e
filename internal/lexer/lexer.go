package lexer

import (
	"strconv"
	"unicode"

	"github.com/tarn-lang/tarn/internal/diag"
)

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	Errors []diag.Diagnostic
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
	}
	l.read() // move to first character
	return l
}

// SetFilename attributes all emitted spans to the provided filename.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Lex tokenizes the whole input, stopping at the first unrecognized
// character. On success the returned sequence always ends with an EOF token.
func Lex(filename, input string) ([]Token, error) {
	l := New(input)
	l.SetFilename(filename)

	var toks []Token
	for {
		tok := l.NextToken()
		if len(l.Errors) > 0 {
			return nil, l.Errors[0]
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) addError(code diag.Code, msg string, span diag.Span) {
	l.Errors = append(l.Errors, diag.Errorf(diag.StageLexer, code, span, "%s", msg))
}

// read advances the lexer to the next character, keeping line/column in sync
// with the rune at pos.
func (l *Lexer) read() {
	prev := l.pos
	l.pos++

	if prev >= 0 && prev < len(l.input) && l.input[prev] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	if l.pos >= len(l.input) {
		l.ch = 0 // EOF
		return
	}
	l.ch = l.input[l.pos]
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) spanFrom(startLine, startColumn, startPos int) diag.Span {
	return diag.Span{
		Filename: l.filename,
		Line:     startLine,
		Column:   startColumn,
		Start:    startPos,
		End:      l.pos,
	}
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos int, literal string) Token {
	return Token{
		Type:    tokType,
		Literal: literal,
		Span:    l.spanFrom(startLine, startColumn, startPos),
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.read()
	}
}

// skipLineComment consumes a `--` comment through the end of the line.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.read()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads a numeric literal: an integer part and an optional
// fractional part introduced by '.'. A leading '-' is consumed by the caller.
func (l *Lexer) readNumber(start int) (string, TokenType) {
	tokType := INT
	for isDigit(l.ch) {
		l.read()
	}
	if l.ch == '.' {
		tokType = FLOAT
		l.read()
		for isDigit(l.ch) {
			l.read()
		}
	}
	return string(l.input[start:l.pos]), tokType
}

// twoCharToken consumes the current and next rune as one token.
func (l *Lexer) twoCharToken(tokType TokenType, startLine, startColumn, startPos int) Token {
	first := l.ch
	l.read()
	literal := string(first) + string(l.ch)
	l.read()
	return l.makeToken(tokType, startLine, startColumn, startPos, literal)
}

func (l *Lexer) oneCharToken(tokType TokenType, startLine, startColumn, startPos int) Token {
	literal := string(l.ch)
	l.read()
	return l.makeToken(tokType, startLine, startColumn, startPos, literal)
}

// delimiterToken recognizes a standalone delimiter. Delimiter punctuation is
// only a delimiter when immediately followed by whitespace or end of input;
// anything else is a lexical error at this character.
func (l *Lexer) delimiterToken(tokType TokenType, startLine, startColumn, startPos int) Token {
	next := l.peek()
	if next == 0 || next == ' ' || next == '\t' || next == '\n' || next == '\r' {
		return l.oneCharToken(tokType, startLine, startColumn, startPos)
	}
	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw)
	l.addError(
		diag.CodeLexerBareDelimiter,
		"delimiter "+strconv.Quote(raw)+" must be followed by whitespace",
		tok.Span,
	)
	return tok
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		startLine, startColumn, startPos := l.line, l.column, l.pos

		switch l.ch {
		case 0:
			if startColumn == 0 {
				startColumn = 1
			}
			return l.makeToken(EOF, startLine, startColumn, startPos, "")

		case '-':
			switch {
			case l.peek() == '-':
				l.skipLineComment()
				continue
			case l.peek() == '>':
				return l.twoCharToken(ARROW, startLine, startColumn, startPos)
			case isDigit(l.peek()) || l.peek() == '.':
				l.read() // consume '-'
				literal, tokType := l.readNumber(startPos)
				return l.makeToken(tokType, startLine, startColumn, startPos, literal)
			default:
				return l.oneCharToken(MINUS, startLine, startColumn, startPos)
			}

		case '+':
			return l.oneCharToken(PLUS, startLine, startColumn, startPos)
		case '*':
			return l.oneCharToken(ASTERISK, startLine, startColumn, startPos)
		case '/':
			return l.oneCharToken(SLASH, startLine, startColumn, startPos)
		case '%':
			return l.oneCharToken(PERCENT, startLine, startColumn, startPos)

		case '=':
			if l.peek() == '=' {
				return l.twoCharToken(EQ, startLine, startColumn, startPos)
			}
			return l.delimiterToken(ASSIGN, startLine, startColumn, startPos)

		case '!':
			if l.peek() == '=' {
				return l.twoCharToken(NOT_EQ, startLine, startColumn, startPos)
			}
			return l.illegalToken(startLine, startColumn, startPos)

		case '<':
			if l.peek() == '=' {
				return l.twoCharToken(LE, startLine, startColumn, startPos)
			}
			return l.oneCharToken(LT, startLine, startColumn, startPos)

		case '>':
			if l.peek() == '=' {
				return l.twoCharToken(GE, startLine, startColumn, startPos)
			}
			return l.oneCharToken(GT, startLine, startColumn, startPos)

		case '&':
			if l.peek() == '&' {
				return l.twoCharToken(AND, startLine, startColumn, startPos)
			}
			return l.illegalToken(startLine, startColumn, startPos)

		case '|':
			if l.peek() == '|' {
				return l.twoCharToken(OR, startLine, startColumn, startPos)
			}
			return l.delimiterToken(PIPE, startLine, startColumn, startPos)

		case ';':
			return l.delimiterToken(SEMICOLON, startLine, startColumn, startPos)
		case ':':
			return l.delimiterToken(COLON, startLine, startColumn, startPos)
		case '\\':
			return l.delimiterToken(BACKSLASH, startLine, startColumn, startPos)

		case '(':
			if l.peek() == ')' {
				return l.twoCharToken(UNIT, startLine, startColumn, startPos)
			}
			return l.oneCharToken(LPAREN, startLine, startColumn, startPos)
		case ')':
			return l.oneCharToken(RPAREN, startLine, startColumn, startPos)
		case '[':
			return l.oneCharToken(LBRACKET, startLine, startColumn, startPos)
		case ']':
			return l.oneCharToken(RBRACKET, startLine, startColumn, startPos)
		case '{':
			return l.oneCharToken(LBRACE, startLine, startColumn, startPos)
		case '}':
			return l.oneCharToken(RBRACE, startLine, startColumn, startPos)

		case '\'':
			if isLetter(l.peek()) {
				l.read() // consume tick
				name := l.readIdentifier()
				return l.makeToken(TYPEVAR, startLine, startColumn, startPos, name)
			}
			return l.illegalToken(startLine, startColumn, startPos)

		case '"':
			value, terminated := l.readString(startLine, startColumn, startPos)
			if !terminated {
				return l.makeToken(ILLEGAL, startLine, startColumn, startPos, value)
			}
			return l.makeToken(STRING, startLine, startColumn, startPos, value)

		default:
			if isLetter(l.ch) {
				literal := l.readIdentifier()
				tokType := LookupIdent(literal)
				return l.makeToken(tokType, startLine, startColumn, startPos, literal)
			}
			if isDigit(l.ch) {
				literal, tokType := l.readNumber(startPos)
				return l.makeToken(tokType, startLine, startColumn, startPos, literal)
			}
			return l.illegalToken(startLine, startColumn, startPos)
		}
	}
}

func (l *Lexer) illegalToken(startLine, startColumn, startPos int) Token {
	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw)
	l.addError(
		diag.CodeLexerIllegalRune,
		"illegal character "+strconv.Quote(raw),
		tok.Span,
	)
	return tok
}

// readString reads a string literal, decoding escape sequences. The second
// return value reports whether the closing quote was found.
func (l *Lexer) readString(startLine, startColumn, startPos int) (string, bool) {
	var decoded []rune

	l.read() // skip opening quote

	for {
		switch l.ch {
		case 0, '\n', '\r':
			l.addError(
				diag.CodeLexerUnterminatedString,
				"unterminated string literal",
				diag.Span{Filename: l.filename, Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			return string(decoded), false
		case '"':
			l.read() // consume closing quote
			return string(decoded), true
		case '\\':
			l.read() // skip '\'
			switch l.ch {
			case 'n':
				decoded = append(decoded, '\n')
			case 't':
				decoded = append(decoded, '\t')
			case 'r':
				decoded = append(decoded, '\r')
			case '\\':
				decoded = append(decoded, '\\')
			case '"':
				decoded = append(decoded, '"')
			default:
				decoded = append(decoded, '\\', l.ch)
			}
			l.read()
		default:
			decoded = append(decoded, l.ch)
			l.read()
		}
	}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}
