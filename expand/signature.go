package expand

import "strings"

type mismatchReason int

const (
	mismatchArity mismatchReason = iota
	mismatchLiteral
	// An argument identifier could not be resolved.
	mismatchLookup
	// Argument and parameter sizes do not overlap.
	mismatchSize
	mismatchPredicate
)

// mismatch explains why a signature rejected its arguments.
type mismatch struct {
	reason   mismatchReason
	param    Param
	typ      Type
	argSize  ByteSize
	argError error
}

// Matches reports whether args can be passed to a function with this
// signature, resolving argument identifiers in stack.
func (s Signature) Matches(ctx *ProgramContext, arena *Arena, stack ScopeStack, args []RawToken) (bool, error) {
	w := &walker{arena: arena, ctx: ctx, stack: stack, line: ctx.File.Line, sizing: make(map[ExprID]bool)}
	mm, err := w.matchSignature(s, args)
	return mm == nil && err == nil, err
}

// matchSignature returns nil if args match sig. The error is reserved for
// problems with the signature itself.
func (w *walker) matchSignature(sig Signature, args []RawToken) (*mismatch, error) {
	if len(sig.Params) != len(args) {
		return &mismatch{reason: mismatchArity}, nil
	}
	for i, p := range sig.Params {
		arg := args[i]
		if p.IsLiteral() {
			if !w.arena.TokensEqual(*p.Literal, arg) {
				return &mismatch{reason: mismatchLiteral, param: p}, nil
			}
			continue
		}

		typ, ok, err := w.paramType(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Untyped parameters accept anything.
			continue
		}
		size, err := w.sizeOfToken(arg)
		if err != nil {
			return &mismatch{reason: mismatchLookup, param: p, argError: err}, nil
		}
		if !typ.Accepts(w.arena, arg, size) {
			reason := mismatchPredicate
			if _, ok := typ.Size.Overlap(size); !ok {
				reason = mismatchSize
			}
			return &mismatch{reason: reason, param: p, typ: typ, argSize: size}, nil
		}
	}
	return nil, nil
}

// resolveCall picks the one function definition a call refers to.
func (w *walker) resolveCall(call *Expr) (ExprID, error) {
	visible := w.ctx.Symbols.Lookup(call.Name, w.stack)
	if len(visible) == 0 {
		return NoExpr, w.errorf(UndefinedFunction, "undefined function: %s", call.Name)
	}

	var candidates []ExprID
	for _, sym := range visible {
		if !sym.IsParam() && w.arena.At(sym.Value).Kind == ExprFnDef {
			candidates = append(candidates, sym.Value)
		}
	}
	if len(candidates) == 0 {
		return NoExpr, w.errorf(UndefinedFunction,
			"function not found %s: %s exists in this scope, but is not callable", call.Name, call.Name)
	}

	var matches []ExprID
	var first *mismatch
	var lookupErr error
	for _, fn := range candidates {
		mm, err := w.matchSignature(w.arena.At(fn).Signature, call.Args)
		if err != nil {
			return NoExpr, err
		}
		if mm == nil {
			matches = append(matches, fn)
			continue
		}
		if first == nil {
			first = mm
		}
		if mm.reason == mismatchLookup && lookupErr == nil {
			lookupErr = mm.argError
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if lookupErr != nil {
			return NoExpr, lookupErr
		}
		if len(candidates) == 1 && first.reason == mismatchSize {
			return NoExpr, w.errorf(TypeSizeMismatch, "type size mismatch: no overlap between %s (%s) and %s",
				first.typ.Size, first.param.TypeName, first.argSize)
		}
		return NoExpr, w.errorf(SignatureMismatch,
			"function signature mismatch: %s\nargs %s don't match any signature\nnote: one candidate is %s with signature %s",
			w.formatCall(call), w.arena.FormatArgs(call.Args), call.Name,
			w.arena.FormatSignature(w.arena.At(candidates[0]).Signature))
	default:
		return NoExpr, w.errorf(AmbiguousOverload,
			"ambiguous function call: %s\nnote: both %s and %s match\nhelp: add a literal tag to one of the signatures to tell them apart",
			w.formatCall(call),
			w.arena.FormatSignature(w.arena.At(matches[0]).Signature),
			w.arena.FormatSignature(w.arena.At(matches[1]).Signature))
	}
}

func (w *walker) formatCall(call *Expr) string {
	parts := []string{call.Name}
	for _, arg := range call.Args {
		parts = append(parts, w.arena.FormatToken(arg))
	}
	return strings.Join(parts, " ")
}
