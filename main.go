package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/strager/eas/expand"
)

// sexprWidth is the line width for .ast and .sym dumps.
const sexprWidth = 100

// compileOptions configures one run of the expander over an AST file.
type compileOptions struct {
	Input string
	// Source is the program text the AST was parsed from. Optional; used for
	// diagnostics only.
	Source string
	Output string
	// ASTOutput and SymbolsOutput receive debug dumps if not empty.
	ASTOutput     string
	SymbolsOutput string
	Layer         expand.Layer
	Logger        *slog.Logger
}

// loadProgram reads an AST file and the optional source text.
func loadProgram(input, source string) (*expand.Program, error) {
	astBytes, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrapf(err, "read AST %s", input)
	}

	file := expand.FileContext{Filename: input}
	if source != "" {
		sourceBytes, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.Wrapf(err, "read source %s", source)
		}
		file = expand.FileContext{Filename: source, Source: string(sourceBytes)}
	}

	prog, err := expand.ReadProgram(file, string(astBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", input)
	}
	return prog, nil
}

// compileTo checks prog and writes its instructions to out.
func compileTo(prog *expand.Program, out io.Writer, logger *slog.Logger) (*expand.ProgramContext, error) {
	c := expand.NewCompilation(prog)
	c.Logger = logger
	ctx := c.BuildContext()
	return ctx, c.CheckAndEmit(out)
}

// compileFile runs the whole pipeline for one AST file. The output file is
// only written if the program is free of errors.
func compileFile(opts compileOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !opts.Layer.Implemented() {
		return errors.Errorf("layer %s is not implemented", opts.Layer)
	}
	if filepath.Clean(opts.Output) == filepath.Clean(opts.Input) {
		return errors.Errorf("output %s would overwrite the input", opts.Output)
	}

	logger.Info("compiling", "input", opts.Input, "output", opts.Output, "layer", opts.Layer)
	prog, err := loadProgram(opts.Input, opts.Source)
	if err != nil {
		return err
	}
	logger.Debug("read AST", "exprs", prog.Arena.Len(), "statements", len(prog.Body.Elements))

	if opts.ASTOutput != "" {
		if err := writeDump(opts.ASTOutput, expand.ToSExpr(prog).Pretty(sexprWidth)); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	ctx, err := compileTo(prog, &out, logger)
	if opts.SymbolsOutput != "" {
		// Symbols are dumped even if checking failed.
		if err := writeDump(opts.SymbolsOutput, ctx.Dump(prog.Arena).Pretty(sexprWidth)); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	logger.Log(context.Background(), levelTrace, "emitted", "text", out.String())

	if err := os.WriteFile(opts.Output, out.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "write output %s", opts.Output)
	}
	logger.Info("wrote output", "file", opts.Output, "bytes", out.Len())
	return nil
}

func writeDump(path string, text string) error {
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// defaultOutput derives the output path from the input path, e.g.
// "prog.ast" becomes "prog.cl" and "prog.cl" becomes "prog.cl.cl".
func defaultOutput(input string, layer expand.Layer) string {
	ext := "." + layer.String()
	if filepath.Ext(input) == ext {
		return input + ext
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
