// Package compiler wires the pipeline stages together: lexing, parsing,
// type checking, normalization to kernel items, code generation, and
// printing. Callers own all I/O; this package works purely on strings.
package compiler

import (
	"path/filepath"
	"strings"

	"github.com/tarn-lang/tarn/internal/ast"
	"github.com/tarn-lang/tarn/internal/codegen"
	"github.com/tarn-lang/tarn/internal/kernel"
	"github.com/tarn-lang/tarn/internal/lexer"
	"github.com/tarn-lang/tarn/internal/parser"
	"github.com/tarn-lang/tarn/internal/types"
)

// Compile runs the full pipeline over one source file and returns the
// rendered target module. The target module name is derived from the file's
// base name. The first error from any stage aborts the run.
func Compile(filename, src string) (string, error) {
	items, err := Normalize(filename, src)
	if err != nil {
		return "", err
	}

	gen := codegen.NewGenerator(ModuleName(filename))
	forms, err := gen.Generate(items)
	if err != nil {
		return "", err
	}

	return codegen.Print(forms), nil
}

// Normalize runs the front half of the pipeline, stopping after the
// kernel items are produced.
func Normalize(filename, src string) ([]kernel.Item, error) {
	program, err := Check(filename, src)
	if err != nil {
		return nil, err
	}
	return kernel.Normalize(program)
}

// Check lexes, parses, and type-checks one source file, returning the
// typed tree.
func Check(filename, src string) (ast.Expr, error) {
	toks, err := lexer.Lex(filename, src)
	if err != nil {
		return nil, err
	}

	program, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}

	checker := types.NewChecker()
	if _, err := checker.Check(program); err != nil {
		return nil, err
	}

	return program, nil
}

// CheckType type-checks one source file and returns the floored display
// form of the program's type.
func CheckType(filename, src string) (string, error) {
	toks, err := lexer.Lex(filename, src)
	if err != nil {
		return "", err
	}

	program, err := parser.Parse(toks)
	if err != nil {
		return "", err
	}

	checker := types.NewChecker()
	t, err := checker.Check(program)
	if err != nil {
		return "", err
	}

	return types.FloorOne(t).String(), nil
}

// ModuleName derives the target module name from a source path: the base
// name without extension, with characters the target's bare-atom syntax
// rejects replaced by underscores.
func ModuleName(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		return "out"
	}

	var b strings.Builder
	for _, ch := range base {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9' || ch == '_':
			b.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name[0] < 'a' || name[0] > 'z' {
		name = "m" + name
	}
	return name
}
