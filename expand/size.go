package expand

// sizeOfToken computes the byte size of a call argument.
func (w *walker) sizeOfToken(tok RawToken) (ByteSize, error) {
	switch tok.Kind {
	case TokenIdent:
		sym, err := w.resolveIdent(tok.Name)
		if err != nil {
			return ByteSize{}, err
		}
		return w.sizeOfSymbol(sym)
	case TokenSymbol:
		return Exact(1), nil
	default:
		return w.sizeOfExpr(tok.Expr)
	}
}

func (w *walker) sizeOfExpr(id ExprID) (ByteSize, error) {
	e := w.arena.At(id)
	switch e.Kind {
	case ExprSmallValue:
		if e.Small.Width != 0 {
			return Exact(int(e.Small.Width)), nil
		}
		return Range(minWidth(e.Small.Value), 8), nil
	case ExprBytes:
		return Exact(len(e.Bytes)), nil
	case ExprString:
		return Exact(len(e.String)), nil
	case ExprFnDef:
		// Code address.
		return Exact(8), nil
	case ExprAssign:
		return w.sizeOfExpr(e.Value)
	case ExprIdent:
		if w.sizing[id] {
			return Unconstrained(), nil
		}
		w.sizing[id] = true
		defer delete(w.sizing, id)
		sym, err := w.resolveIdent(e.Name)
		if err != nil {
			return ByteSize{}, err
		}
		return w.sizeOfSymbol(sym)
	default:
		// Call results and types have no known size.
		return Unconstrained(), nil
	}
}

func (w *walker) sizeOfSymbol(sym Symbol) (ByteSize, error) {
	if !sym.IsParam() {
		if sym.Stack != nil {
			saved := w.stack
			w.stack = sym.Stack
			defer func() { w.stack = saved }()
		}
		return w.sizeOfExpr(sym.Value)
	}
	p := w.arena.At(sym.Value).Signature.Params[sym.Param]
	typ, ok, err := w.paramType(p)
	if err != nil || !ok {
		return Unconstrained(), err
	}
	return typ.Size, nil
}

// paramType looks up the declared type of a parameter. It reports false if
// the parameter has no type annotation.
func (w *walker) paramType(p Param) (Type, bool, error) {
	if p.TypeName == "" {
		return Type{}, false, nil
	}
	typ, ok := w.ctx.Types.Lookup(p.TypeName)
	if !ok {
		return Type{}, false, w.errorf(UndefinedType, "undefined type: %s", p.TypeName)
	}
	return typ, true, nil
}

// resolveIdent finds the single visible binding of name.
func (w *walker) resolveIdent(name string) (Symbol, error) {
	syms := w.ctx.Symbols.Lookup(name, w.stack)
	switch len(syms) {
	case 0:
		return Symbol{}, w.errorf(UndefinedIdentifier, "undefined identifier: %s", name)
	case 1:
		return syms[0], nil
	default:
		return Symbol{}, w.errorf(AmbiguousBinding, "identifier %s is defined multiple times in this scope", name)
	}
}

// pushSize picks how many bytes to push for an argument bound to p.
func (w *walker) pushSize(p Param, tok RawToken) (int, error) {
	paramSize := Unconstrained()
	label := "any"
	typ, ok, err := w.paramType(p)
	if err != nil {
		return 0, err
	}
	if ok {
		paramSize = typ.Size
		label = p.TypeName
	}
	if paramSize.Kind == SizeExact {
		return paramSize.Lo, nil
	}

	argSize, err := w.sizeOfToken(tok)
	if err != nil {
		return 0, err
	}
	size, ok := paramSize.Overlap(argSize)
	if !ok {
		return 0, w.errorf(TypeSizeMismatch, "type size mismatch: no overlap between %s (%s) and %s",
			paramSize, label, argSize)
	}
	n, ok := size.Smallest()
	if !ok {
		return 0, w.errorf(TypeSizeMismatch, "cannot determine byte size of argument %s for parameter of type %s",
			w.arena.FormatToken(tok), label)
	}
	return n, nil
}
