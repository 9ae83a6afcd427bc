package expand

import (
	"bytes"
	"io"
	"log/slog"
)

// Phase is the lifecycle stage of a Compilation.
type Phase int

const (
	PhaseUnbuilt Phase = iota
	PhaseContextBuilt
	PhaseEmitted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbuilt:
		return "unbuilt"
	case PhaseContextBuilt:
		return "context-built"
	case PhaseEmitted:
		return "emitted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Compilation runs the build and emit passes over one program.
//
// Host-defined types may be added to Context.Types before BuildContext.
type Compilation struct {
	Program *Program
	Context *ProgramContext
	// Logger receives pass boundaries at debug level. Nil disables logging.
	Logger *slog.Logger

	state *CompilationState
	phase Phase
}

func NewCompilation(prog *Program) *Compilation {
	return &Compilation{
		Program: prog,
		Context: NewProgramContext(prog.File),
		state:   NewCompilationState(),
	}
}

func (c *Compilation) Phase() Phase {
	return c.phase
}

// BuildContext runs the build pass. Calling it again has no effect.
func (c *Compilation) BuildContext() *ProgramContext {
	if c.phase != PhaseUnbuilt {
		return c.Context
	}
	c.debug("build pass start", "exprs", c.Program.Arena.Len())
	w := newWalker(c.Program, c.Context, c.state, buildPass{})
	// The build pass has no failure modes.
	_ = w.program(c.Program.Body)
	c.phase = PhaseContextBuilt
	c.debug("build pass done", "symbols", c.Context.Symbols.Len(), "types", c.Context.Types.Len())
	return c.Context
}

// CheckAndEmit runs the emit pass and writes the instructions to out.
// Nothing is written if the program has an error.
func (c *Compilation) CheckAndEmit(out io.Writer) error {
	if c.phase == PhaseUnbuilt {
		return ErrNotBuilt
	}
	c.debug("emit pass start")

	var buf bytes.Buffer
	w := newWalker(c.Program, c.Context, c.state, &emitPass{out: &buf})
	if err := w.program(c.Program.Body); err != nil {
		c.phase = PhaseFailed
		c.debug("emit pass failed", "err", err)
		return err
	}
	if _, err := buf.WriteTo(out); err != nil {
		c.phase = PhaseFailed
		return newEmitError(err)
	}
	c.phase = PhaseEmitted
	c.debug("emit pass done")
	return nil
}

func (c *Compilation) debug(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}

// Compile builds and checks prog in one go.
func Compile(prog *Program, out io.Writer) (*ProgramContext, error) {
	c := NewCompilation(prog)
	ctx := c.BuildContext()
	return ctx, c.CheckAndEmit(out)
}
