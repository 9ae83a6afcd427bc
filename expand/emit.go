package expand

import (
	"fmt"
	"io"
)

// emitPass checks every reference and writes instructions.
type emitPass struct {
	out io.Writer
}

func (em *emitPass) line(w *walker, format string, args ...any) error {
	_, err := fmt.Fprintf(em.out, "%s%s\n", w.state.Padding(), fmt.Sprintf(format, args...))
	if err != nil {
		return newEmitError(err)
	}
	return nil
}

func (em *emitPass) openProgram(w *walker) error {
	if err := em.line(w, "{"); err != nil {
		return err
	}
	w.state.Indent()
	return nil
}

func (em *emitPass) closeProgram(w *walker) error {
	w.state.Dedent()
	return em.line(w, "}")
}

func (em *emitPass) enterFn(w *walker, id ExprID, fn *Expr) error {
	if err := em.line(w, "fn %s {", w.arena.FormatSignature(fn.Signature)); err != nil {
		return err
	}
	w.state.Indent()

	for _, p := range fn.Signature.Params {
		if p.IsLiteral() {
			continue
		}
		size := Unconstrained()
		typ, ok, err := w.paramType(p)
		if err != nil {
			return err
		}
		if ok {
			size = typ.Size
		}
		name := ""
		if p.Name != "" {
			name = " : " + p.Name
		}
		if err := em.line(w, "pop %s -> %s%s", size, freeRegister(), name); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitPass) leaveFn(w *walker, fn *Expr) error {
	if err := em.line(w, "ret"); err != nil {
		return err
	}
	w.state.Dedent()
	return em.line(w, "}")
}

func (em *emitPass) enterAssign(w *walker, id ExprID, assign *Expr) (bool, error) {
	value := w.arena.At(assign.Value)
	if value.Kind == ExprTypeDecl {
		if err := em.checkTypeDecl(w, assign); err != nil {
			return false, err
		}
	} else if err := em.checkShadowing(w, assign, value); err != nil {
		return false, err
	}

	if err := em.line(w, "let %s =", assign.Name); err != nil {
		return false, err
	}
	w.state.Indent()

	if value.Kind != ExprIdent {
		return true, nil
	}
	sym, err := w.resolveIdent(value.Name)
	if err != nil {
		return false, err
	}
	size, err := w.sizeOfSymbol(sym)
	if err != nil {
		return false, err
	}
	return false, em.line(w, "move %s %s -> %s", size, value.Name, assign.Name)
}

func (em *emitPass) leaveAssign(w *walker, assign *Expr) error {
	w.state.Dedent()
	return nil
}

func (em *emitPass) checkTypeDecl(w *walker, assign *Expr) error {
	typ, ok := w.ctx.Types.Lookup(assign.Name)
	if ok && typ.Decl != assign.Value {
		return w.errorf(DuplicateType, "type %s is already declared", assign.Name)
	}
	return nil
}

func (em *emitPass) checkShadowing(w *walker, assign *Expr, value *Expr) error {
	bound := w.ctx.Symbols.InScope(assign.Name, w.stack.Top())
	if value.Kind != ExprFnDef {
		if len(bound) > 1 {
			return w.errorf(ShadowingViolation, "variable '%s' already declared in this scope", assign.Name)
		}
		return nil
	}
	for _, sym := range bound {
		if sym.IsParam() || w.arena.At(sym.Value).Kind != ExprFnDef {
			return w.errorf(ShadowingViolation,
				"function '%s' conflicts with a variable of the same name in this scope", assign.Name)
		}
	}
	return nil
}

func (em *emitPass) call(w *walker, id ExprID, call *Expr) error {
	fn, err := w.resolveCall(call)
	if err != nil {
		return err
	}
	params := w.arena.At(fn).Signature.Params

	for i := len(call.Args) - 1; i >= 0; i-- {
		arg := call.Args[i]
		if err := w.walkArg(arg); err != nil {
			return err
		}
		if params[i].IsLiteral() {
			continue
		}
		n, err := w.pushSize(params[i], arg)
		if err != nil {
			return err
		}
		if err := em.line(w, "push %db %s", n, w.arena.FormatToken(arg)); err != nil {
			return err
		}
	}
	return em.line(w, "call %s", call.Name)
}

func (em *emitPass) leaf(w *walker, id ExprID, e *Expr) error {
	switch e.Kind {
	case ExprIdent:
		if _, err := w.resolveIdent(e.Name); err != nil {
			return err
		}
		return em.line(w, "Ident(%s)", e.Name)
	case ExprTypeDecl:
		return em.line(w, "%s", w.arena.FormatInline(id))
	default:
		size, err := w.sizeOfExpr(id)
		if err != nil {
			return err
		}
		return em.line(w, "%s %s", w.arena.FormatInline(id), size)
	}
}
