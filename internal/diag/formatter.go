package diag

import (
	"fmt"
	"strings"
)

// Formatter renders diagnostics with source code snippets.
type Formatter struct {
	sources map[string]string // source text by filename
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		sources: make(map[string]string),
	}
}

// AddSource registers source text for a filename so spans into it can be
// rendered with a snippet.
func (f *Formatter) AddSource(filename, src string) {
	f.sources[filename] = src
}

// Format renders a diagnostic, with a caret-underlined source line when the
// span's source text is available.
func (f *Formatter) Format(d Diagnostic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)

	if d.Span.IsValid() {
		fmt.Fprintf(&b, "  --> %s\n", d.Span)
		if src, ok := f.sources[d.Span.Filename]; ok {
			f.writeSnippet(&b, src, d.Span)
		}
	}

	if d.Hint != "" {
		fmt.Fprintf(&b, "  hint: %s\n", d.Hint)
	}

	return b.String()
}

func (f *Formatter) writeSnippet(b *strings.Builder, src string, span Span) {
	lines := strings.Split(src, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		return
	}
	line := lines[span.Line-1]

	gutter := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(gutter))

	fmt.Fprintf(b, "%s |\n", pad)
	fmt.Fprintf(b, "%s | %s\n", gutter, line)

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	// Clamp the underline to the visible line.
	if span.Column-1+width > len(line) {
		width = len(line) - (span.Column - 1)
		if width < 1 {
			width = 1
		}
	}
	fmt.Fprintf(b, "%s | %s%s\n", pad, strings.Repeat(" ", span.Column-1), strings.Repeat("^", width))
}
