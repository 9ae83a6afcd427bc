package expand

// pass is what a walker does at each node. The walker owns the traversal
// order and scope allocation so that every pass sees the same scope ids.
type pass interface {
	openProgram(w *walker) error
	closeProgram(w *walker) error
	// enterFn runs after the function body scope was pushed.
	enterFn(w *walker, id ExprID, fn *Expr) error
	leaveFn(w *walker, fn *Expr) error
	// enterAssign reports whether the walker should descend into the value.
	enterAssign(w *walker, id ExprID, assign *Expr) (bool, error)
	leaveAssign(w *walker, assign *Expr) error
	// call must call w.walkArg for every argument, last argument first.
	call(w *walker, id ExprID, call *Expr) error
	leaf(w *walker, id ExprID, e *Expr) error
}

type walker struct {
	arena *Arena
	ctx   *ProgramContext
	state *CompilationState
	stack ScopeStack
	pass  pass
	// Current source line for diagnostics.
	line int
	// Expressions whose size is being computed, to break cycles like x = y, y = x.
	sizing map[ExprID]bool
}

func newWalker(prog *Program, ctx *ProgramContext, state *CompilationState, p pass) *walker {
	return &walker{
		arena:  prog.Arena,
		ctx:    ctx,
		state:  state,
		pass:   p,
		line:   prog.File.Line,
		sizing: make(map[ExprID]bool),
	}
}

func (w *walker) program(body Block) error {
	w.state.Reset()
	w.stack = w.stack[:0]
	w.push()
	defer w.pop()

	if err := w.pass.openProgram(w); err != nil {
		return err
	}
	for _, id := range body.Elements {
		if err := w.expr(id); err != nil {
			return err
		}
	}
	return w.pass.closeProgram(w)
}

func (w *walker) push() ScopeID {
	id := w.state.NextScope()
	w.stack = append(w.stack, id)
	return id
}

func (w *walker) pop() {
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *walker) expr(id ExprID) error {
	e := w.arena.At(id)
	if e.Line != 0 {
		saved := w.line
		w.line = e.Line
		defer func() { w.line = saved }()
	}

	switch e.Kind {
	case ExprFnDef:
		return w.fnDef(id, e)

	case ExprAssign:
		descend, err := w.pass.enterAssign(w, id, e)
		if err != nil {
			return err
		}
		if descend {
			if err := w.expr(e.Value); err != nil {
				return err
			}
		}
		return w.pass.leaveAssign(w, e)

	case ExprFnCall:
		return w.pass.call(w, id, e)

	default:
		return w.pass.leaf(w, id, e)
	}
}

func (w *walker) fnDef(id ExprID, fn *Expr) error {
	w.push()
	defer w.pop()

	if err := w.pass.enterFn(w, id, fn); err != nil {
		return err
	}
	for _, el := range fn.Body.Elements {
		if err := w.expr(el); err != nil {
			return err
		}
	}
	return w.pass.leaveFn(w, fn)
}

// walkArg descends into an argument if it is an expression with effects of
// its own (a call, an assignment or a function definition).
func (w *walker) walkArg(tok RawToken) error {
	if tok.Kind != TokenExpr {
		return nil
	}
	switch w.arena.At(tok.Expr).Kind {
	case ExprFnCall, ExprAssign, ExprFnDef:
		return w.expr(tok.Expr)
	}
	return nil
}

// fileContext is the diagnostic context at the current node.
func (w *walker) fileContext() FileContext {
	file := w.ctx.File
	file.Line = w.line
	return file
}

func (w *walker) errorf(kind ErrorKind, format string, args ...any) *CompileError {
	return newCompileError(w.fileContext(), kind, format, args...)
}
