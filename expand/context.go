package expand

// ProgramContext is what the build pass learns about a program: the
// bindings of every scope and the declared types.
type ProgramContext struct {
	Symbols *SymbolTable
	Types   *TypeRegistry
	File    FileContext
}

func NewProgramContext(file FileContext) *ProgramContext {
	return &ProgramContext{
		Symbols: NewSymbolTable(),
		Types:   NewTypeRegistry(),
		File:    file,
	}
}

// buildPass fills a ProgramContext. It never fails.
type buildPass struct{}

func (buildPass) openProgram(w *walker) error  { return nil }
func (buildPass) closeProgram(w *walker) error { return nil }

func (buildPass) enterFn(w *walker, id ExprID, fn *Expr) error {
	scope := w.stack.Top()
	for i, p := range fn.Signature.Params {
		if p.IsLiteral() || p.Name == "" {
			continue
		}
		w.ctx.Symbols.InsertParam(p.Name, scope, id, i)
	}
	return nil
}

func (buildPass) leaveFn(w *walker, fn *Expr) error { return nil }

func (buildPass) enterAssign(w *walker, id ExprID, assign *Expr) (bool, error) {
	value := w.arena.At(assign.Value)
	if value.Kind == ExprTypeDecl {
		// A redeclaration is reported by the emit pass.
		w.ctx.Types.Define(assign.Name, Type{Size: value.Size, Decl: assign.Value})
		return false, nil
	}
	w.ctx.Symbols.Bind(assign.Name, w.stack, assign.Value)
	return true, nil
}

func (buildPass) leaveAssign(w *walker, assign *Expr) error { return nil }

func (buildPass) call(w *walker, id ExprID, call *Expr) error {
	for i := len(call.Args) - 1; i >= 0; i-- {
		if err := w.walkArg(call.Args[i]); err != nil {
			return err
		}
	}
	return nil
}

func (buildPass) leaf(w *walker, id ExprID, e *Expr) error { return nil }
