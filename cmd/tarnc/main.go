package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tarn-lang/tarn/internal/compiler"
	"github.com/tarn-lang/tarn/internal/diag"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tarnc <command> [options]\n")
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  build <file>    Compile a Tarn source file to Erlang\n")
		fmt.Fprintf(os.Stderr, "  check <file>    Type-check a Tarn source file and print its type\n")
		fmt.Fprintf(os.Stderr, "  repl            Start an interactive session\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "build":
		runBuild(args)
	case "check":
		runCheck(args)
	case "repl":
		runREPL()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: <file>.erl)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tarnc build [-o out] <file>\n")
		os.Exit(1)
	}
	filename := fs.Arg(0)

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tarnc: %v\n", err)
		os.Exit(1)
	}

	text, err := compiler.Compile(filename, string(src))
	if err != nil {
		reportError(filename, string(src), err)
		os.Exit(1)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(filename, ".tarn") + ".erl"
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "tarnc: %v\n", err)
		os.Exit(1)
	}
}

func runCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tarnc check <file>\n")
		os.Exit(1)
	}
	filename := args[0]

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tarnc: %v\n", err)
		os.Exit(1)
	}

	t, err := compiler.CheckType(filename, string(src))
	if err != nil {
		reportError(filename, string(src), err)
		os.Exit(1)
	}
	fmt.Println(t)
}

// reportError renders a user diagnostic with its source snippet; anything
// else is a compiler defect and is printed as such.
func reportError(filename, src string, err error) {
	var d diag.Diagnostic
	if errors.As(err, &d) {
		f := diag.NewFormatter()
		f.AddSource(filename, src)
		fmt.Fprintln(os.Stderr, f.Format(d))
		return
	}
	fmt.Fprintf(os.Stderr, "tarnc: internal error: %v\n", err)
}
