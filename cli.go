package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/strager/eas/expand"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `eas - expands checked ASTs into stack-machine instructions

Usage:
    eas <command> [arguments]

Commands:
    build <file>    Check an AST file and write its instructions
    check <file>    Check an AST file without writing anything
    dump <file>     Print an AST file, or its symbols with -symbols
    help            Show this help message

Examples:
    eas build -o prog.cl prog.ast
    eas build -all -source prog.eas prog.ast
    eas check prog.ast
    eas dump -symbols prog.ast

Use "eas <command> -h" for more information about a command.
`)
}

// levelTrace is below slog.LevelDebug.
const levelTrace = slog.LevelDebug - 4

func parseVerbosity(s string) (slog.Level, error) {
	switch s {
	case "trace":
		return levelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Errorf("unknown verbosity %q (want trace, debug, info, warn or error)", s)
	}
}

// newLogger writes to w at the chosen verbosity. -v means debug.
func newLogger(w io.Writer, verbose bool, verbosity string) (*slog.Logger, error) {
	level, err := parseVerbosity(verbosity)
	if err != nil {
		return nil, err
	}
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <file> with the layer as extension)")
	astOutput := fs.String("ast", "", "Also write the AST as an s-expression to this file")
	symbolsOutput := fs.String("symbols", "", "Also write the symbol table to this file")
	all := fs.Bool("all", false, "Write <output>.ast and <output>.sym next to the output")
	source := fs.String("source", "", "Source text of the AST, for error messages")
	layerName := fs.String("layer", "cl", "Layer to expand into")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	verbosity := fs.String("verbosity", "warn", "Log level: trace, debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eas build [-o output] [-ast file] [-symbols file] [-all] [-source file] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Check an AST file and write its instructions\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	logger, err := newLogger(os.Stderr, *verbose, *verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	layer, err := expand.ParseLayer(*layerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := compileOptions{
		Input:         fs.Arg(0),
		Source:        *source,
		Output:        *output,
		ASTOutput:     *astOutput,
		SymbolsOutput: *symbolsOutput,
		Layer:         layer,
		Logger:        logger,
	}
	if opts.Output == "" {
		opts.Output = defaultOutput(opts.Input, layer)
	}
	if *all {
		if opts.ASTOutput == "" {
			opts.ASTOutput = opts.Output + ".ast"
		}
		if opts.SymbolsOutput == "" {
			opts.SymbolsOutput = opts.Output + ".sym"
		}
	}

	if err := compileFile(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", opts.Output)
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	source := fs.String("source", "", "Source text of the AST, for error messages")
	verbose := fs.Bool("v", false, "Show verbose checking details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eas check [-source file] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Check an AST file without writing anything\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)

	if *verbose {
		fmt.Printf("Checking %s...\n", filename)
	}

	prog, err := loadProgram(filename, *source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, err := compileTo(prog, io.Discard, nil)
	if err != nil {
		fmt.Printf("Errors in %s:\n%v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)

	if *verbose {
		fmt.Printf("Symbols: %s\n", ctx.Dump(prog.Arena))
	}
}

func dumpCommand(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	symbols := fs.Bool("symbols", false, "Print the symbol table instead of the AST")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eas dump [-symbols] <file>\n")
		fmt.Fprintf(os.Stderr, "Print an AST file, or its symbols\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	prog, err := loadProgram(fs.Arg(0), "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*symbols {
		fmt.Println(expand.ToSExpr(prog).Pretty(sexprWidth))
		return
	}
	c := expand.NewCompilation(prog)
	fmt.Println(c.BuildContext().Dump(prog.Arena).Pretty(sexprWidth))
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "check":
		checkCommand(args)
	case "dump":
		dumpCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
