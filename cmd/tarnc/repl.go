package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/tarn-lang/tarn/internal/compiler"
	"github.com/tarn-lang/tarn/internal/diag"
)

// runREPL reads expressions interactively and prints their Erlang
// translation. Each input is compiled as the body of an entry-point
// binding so the full pipeline runs, then the rendered module is shown.
func runREPL() {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Println("tarn repl (ctrl-d to exit)")

	var buffer strings.Builder

	for {
		prompt := "tarn> "
		if buffer.Len() > 0 {
			prompt = "....> "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}

		// A trailing backslash continues the entry on the next line.
		if trimmed := strings.TrimSuffix(input, "\\"); trimmed != input {
			buffer.WriteString(trimmed)
			buffer.WriteString("\n")
			continue
		}
		buffer.WriteString(input)

		src := strings.TrimSpace(buffer.String())
		buffer.Reset()
		if src == "" {
			continue
		}
		state.AppendHistory(src)

		text, err := compiler.Compile("repl", wrapEntry(src))
		if err != nil {
			printREPLError(err)
			continue
		}
		fmt.Println(text)
	}
}

// wrapEntry turns a bare expression into a compilable unit. Everything in
// the language is an expression, so the wrap is total.
func wrapEntry(src string) string {
	return "let main = (" + src + ")"
}

func printREPLError(err error) {
	var d diag.Diagnostic
	if errors.As(err, &d) {
		fmt.Fprintf(os.Stderr, "error: %s\n", d.Message)
		if d.Hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", d.Hint)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "internal error: %v\n", err)
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".tarn_history")
}
