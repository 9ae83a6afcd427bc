package expand

import (
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/strager/eas/sexy"
)

// ReadProgram reads an AST written as an s-expression:
//
//	(program E...)
//	(line N E)
//	(assign "name" E)
//	(fn (P...) E...)    P is (param "name"|nil "type"|nil) or (lit A)
//	(call "name" A...)  A is (ident "x"), (sym "=") or E
//	(type 1) (type 1 8) (type any)
//	(ident "x") (int N) (u8 N) (u16 N) (u32 N) (u64 N)
//	(string "s") (bytes 1 2 255)
func ReadProgram(file FileContext, src string) (*Program, error) {
	node, err := sexy.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parse AST")
	}
	if node.Head() != "program" {
		return nil, syntaxError(node, "expected (program ...)")
	}

	r := &reader{arena: NewArena()}
	prog := &Program{Arena: r.arena, File: file}
	for _, item := range node.Args() {
		id, err := r.expr(item, 0)
		if err != nil {
			return nil, err
		}
		prog.Body.Elements = append(prog.Body.Elements, id)
	}
	return prog, nil
}

func syntaxError(n *sexy.Node, format string, args ...any) error {
	text := n.String()
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return errors.Wrap(errors.Errorf(format, args...), text)
}

type reader struct {
	arena *Arena
}

func (r *reader) expr(n *sexy.Node, line int) (ExprID, error) {
	id, err := r.exprNoLine(n, line)
	if err != nil {
		return NoExpr, err
	}
	if line != 0 && r.arena.At(id).Line == 0 {
		r.arena.SetLine(id, line)
	}
	return id, nil
}

func (r *reader) exprNoLine(n *sexy.Node, line int) (ExprID, error) {
	args := n.Args()
	switch head := n.Head(); head {
	case "line":
		if len(args) != 2 || args[0].Type != sexy.NodeInteger {
			return NoExpr, syntaxError(n, "expected (line N E)")
		}
		num, err := strconv.Atoi(args[0].Text)
		if err != nil || num <= 0 {
			return NoExpr, syntaxError(n, "bad line number %s", args[0].Text)
		}
		return r.expr(args[1], num)

	case "assign":
		if len(args) != 2 || args[0].Type != sexy.NodeString {
			return NoExpr, syntaxError(n, "expected (assign \"name\" E)")
		}
		value, err := r.expr(args[1], line)
		if err != nil {
			return NoExpr, err
		}
		return r.arena.Assign(args[0].Text, value), nil

	case "fn":
		if len(args) == 0 || args[0].Type != sexy.NodeList {
			return NoExpr, syntaxError(n, "expected (fn (PARAMS...) E...)")
		}
		var sig Signature
		for _, p := range args[0].Items {
			param, err := r.param(p, line)
			if err != nil {
				return NoExpr, err
			}
			sig.Params = append(sig.Params, param)
		}
		var body []ExprID
		for _, item := range args[1:] {
			id, err := r.expr(item, line)
			if err != nil {
				return NoExpr, err
			}
			body = append(body, id)
		}
		return r.arena.FnDef(sig, body...), nil

	case "call":
		if len(args) == 0 || args[0].Type != sexy.NodeString {
			return NoExpr, syntaxError(n, "expected (call \"name\" ARGS...)")
		}
		var toks []RawToken
		for _, a := range args[1:] {
			tok, err := r.token(a, line)
			if err != nil {
				return NoExpr, err
			}
			toks = append(toks, tok)
		}
		return r.arena.Call(args[0].Text, toks...), nil

	case "type":
		size, err := readSize(n, args)
		if err != nil {
			return NoExpr, err
		}
		return r.arena.TypeDecl(size), nil

	case "ident":
		if len(args) != 1 || args[0].Type != sexy.NodeString {
			return NoExpr, syntaxError(n, "expected (ident \"name\")")
		}
		return r.arena.Ident(args[0].Text), nil

	case "int", "u8", "u16", "u32", "u64":
		if len(args) != 1 || args[0].Type != sexy.NodeInteger {
			return NoExpr, syntaxError(n, "expected (%s N)", head)
		}
		if head == "u64" {
			u, err := strconv.ParseUint(args[0].Text, 10, 64)
			if err == nil {
				return r.arena.U64(u), nil
			}
		}
		v, err := strconv.ParseInt(args[0].Text, 10, 64)
		if err != nil {
			return NoExpr, syntaxError(n, "bad integer %s", args[0].Text)
		}
		width := literalWidths[head]
		if width != 0 && minWidth(v) > int(width) {
			return NoExpr, syntaxError(n, "%d does not fit in %s", v, head)
		}
		return r.arena.Sized(width, v), nil

	case "string":
		if len(args) != 1 || args[0].Type != sexy.NodeString {
			return NoExpr, syntaxError(n, "expected (string \"text\")")
		}
		return r.arena.Str(args[0].Text), nil

	case "bytes":
		buf := make([]byte, 0, len(args))
		for _, a := range args {
			v, err := strconv.ParseUint(a.Text, 10, 8)
			if a.Type != sexy.NodeInteger || err != nil {
				return NoExpr, syntaxError(n, "bad byte %s", a)
			}
			buf = append(buf, byte(v))
		}
		return r.arena.ByteBuffer(buf), nil

	default:
		return NoExpr, syntaxError(n, "unknown expression")
	}
}

var literalWidths = map[string]uint8{"int": 0, "u8": 1, "u16": 2, "u32": 4, "u64": 8}

func readSize(n *sexy.Node, args []*sexy.Node) (ByteSize, error) {
	if len(args) == 1 && args[0].IsSymbol("any") {
		return Unconstrained(), nil
	}
	var bounds []int
	for _, a := range args {
		v, err := strconv.Atoi(a.Text)
		if a.Type != sexy.NodeInteger || err != nil || v < 0 {
			return ByteSize{}, syntaxError(n, "bad size %s", a)
		}
		bounds = append(bounds, v)
	}
	switch len(bounds) {
	case 1:
		return Exact(bounds[0]), nil
	case 2:
		if bounds[0] > bounds[1] {
			return ByteSize{}, syntaxError(n, "empty size range")
		}
		if bounds[0] == bounds[1] {
			return Exact(bounds[0]), nil
		}
		return Range(bounds[0], bounds[1]), nil
	default:
		return ByteSize{}, syntaxError(n, "expected (type N), (type LO HI) or (type any)")
	}
}

func (r *reader) param(n *sexy.Node, line int) (Param, error) {
	args := n.Args()
	switch n.Head() {
	case "param":
		if len(args) != 2 {
			return Param{}, syntaxError(n, "expected (param NAME TYPE)")
		}
		name, err := optionalString(n, args[0])
		if err != nil {
			return Param{}, err
		}
		typeName, err := optionalString(n, args[1])
		if err != nil {
			return Param{}, err
		}
		return ParamTyped(name, typeName), nil
	case "lit":
		if len(args) != 1 {
			return Param{}, syntaxError(n, "expected (lit A)")
		}
		tok, err := r.token(args[0], line)
		if err != nil {
			return Param{}, err
		}
		return ParamLiteral(tok), nil
	default:
		return Param{}, syntaxError(n, "expected (param ...) or (lit ...)")
	}
}

func optionalString(parent, n *sexy.Node) (string, error) {
	if n.IsSymbol("nil") {
		return "", nil
	}
	if n.Type != sexy.NodeString || n.Text == "" {
		return "", syntaxError(parent, "expected a non-empty string or nil")
	}
	return n.Text, nil
}

func (r *reader) token(n *sexy.Node, line int) (RawToken, error) {
	args := n.Args()
	switch n.Head() {
	case "ident":
		if len(args) != 1 || args[0].Type != sexy.NodeString {
			return RawToken{}, syntaxError(n, "expected (ident \"name\")")
		}
		return ArgIdent(args[0].Text), nil
	case "sym":
		if len(args) != 1 || args[0].Type != sexy.NodeString || utf8.RuneCountInString(args[0].Text) != 1 {
			return RawToken{}, syntaxError(n, "expected (sym \"c\") with a single character")
		}
		sym, _ := utf8.DecodeRuneInString(args[0].Text)
		return ArgSymbol(sym), nil
	default:
		id, err := r.expr(n, line)
		if err != nil {
			return RawToken{}, err
		}
		return ArgExpr(id), nil
	}
}

// ToSExpr prints prog in the form ReadProgram reads.
func ToSExpr(prog *Program) *sexy.Node {
	items := []*sexy.Node{sexy.NewSymbol("program")}
	for _, id := range prog.Body.Elements {
		items = append(items, exprNode(prog.Arena, id, 0))
	}
	return sexy.NewList(items...)
}

func exprNode(arena *Arena, id ExprID, line int) *sexy.Node {
	e := arena.At(id)
	if e.Line != 0 && e.Line != line {
		return sexy.NewList(sexy.NewSymbol("line"), sexy.NewInt(int64(e.Line)), exprNode(arena, id, e.Line))
	}

	list := func(head string, items ...*sexy.Node) *sexy.Node {
		return sexy.NewList(append([]*sexy.Node{sexy.NewSymbol(head)}, items...)...)
	}
	switch e.Kind {
	case ExprAssign:
		return list("assign", sexy.NewString(e.Name), exprNode(arena, e.Value, line))
	case ExprFnDef:
		var params []*sexy.Node
		for _, p := range e.Signature.Params {
			params = append(params, paramNode(arena, p, line))
		}
		items := []*sexy.Node{sexy.NewList(params...)}
		for _, el := range e.Body.Elements {
			items = append(items, exprNode(arena, el, line))
		}
		return list("fn", items...)
	case ExprFnCall:
		items := []*sexy.Node{sexy.NewString(e.Name)}
		for _, tok := range e.Args {
			items = append(items, tokenNode(arena, tok, line))
		}
		return list("call", items...)
	case ExprTypeDecl:
		return list("type", sizeNodes(e.Size)...)
	case ExprIdent:
		return list("ident", sexy.NewString(e.Name))
	case ExprSmallValue:
		head := "int"
		for name, width := range literalWidths {
			if width == e.Small.Width {
				head = name
			}
		}
		return list(head, sexy.NewInteger(e.Small.String()))
	case ExprString:
		return list("string", sexy.NewString(e.String))
	case ExprBytes:
		items := make([]*sexy.Node, len(e.Bytes))
		for i, b := range e.Bytes {
			items[i] = sexy.NewInt(int64(b))
		}
		return list("bytes", items...)
	default:
		return sexy.NewSymbol("unknown")
	}
}

func paramNode(arena *Arena, p Param, line int) *sexy.Node {
	if p.IsLiteral() {
		return sexy.NewList(sexy.NewSymbol("lit"), tokenNode(arena, *p.Literal, line))
	}
	opt := func(s string) *sexy.Node {
		if s == "" {
			return sexy.NewSymbol("nil")
		}
		return sexy.NewString(s)
	}
	return sexy.NewList(sexy.NewSymbol("param"), opt(p.Name), opt(p.TypeName))
}

func tokenNode(arena *Arena, tok RawToken, line int) *sexy.Node {
	switch tok.Kind {
	case TokenIdent:
		return sexy.NewList(sexy.NewSymbol("ident"), sexy.NewString(tok.Name))
	case TokenSymbol:
		return sexy.NewList(sexy.NewSymbol("sym"), sexy.NewString(string(tok.Symbol)))
	default:
		return exprNode(arena, tok.Expr, line)
	}
}

func sizeNodes(size ByteSize) []*sexy.Node {
	switch size.Kind {
	case SizeExact:
		return []*sexy.Node{sexy.NewInt(int64(size.Lo))}
	case SizeRange:
		return []*sexy.Node{sexy.NewInt(int64(size.Lo)), sexy.NewInt(int64(size.Hi))}
	default:
		return []*sexy.Node{sexy.NewSymbol("any")}
	}
}

// Dump describes the context as
//
//	(context
//	  (symbols (symbol "x" SCOPE E) (symbol "v" SCOPE (param INDEX)) ...)
//	  (types (type "u8" SIZE...) ...))
//
// with names in sorted order.
func (ctx *ProgramContext) Dump(arena *Arena) *sexy.Node {
	symbols := []*sexy.Node{sexy.NewSymbol("symbols")}
	for _, name := range ctx.Symbols.Names() {
		for _, sym := range ctx.Symbols.All(name) {
			var value *sexy.Node
			if sym.IsParam() {
				value = sexy.NewList(sexy.NewSymbol("param"), sexy.NewInt(int64(sym.Param)))
			} else {
				value = exprNode(arena, sym.Value, arena.At(sym.Value).Line)
			}
			symbols = append(symbols, sexy.NewList(
				sexy.NewSymbol("symbol"), sexy.NewString(name), sexy.NewInt(int64(sym.Scope)), value))
		}
	}

	types := []*sexy.Node{sexy.NewSymbol("types")}
	for _, name := range ctx.Types.Names() {
		typ, _ := ctx.Types.Lookup(name)
		items := append([]*sexy.Node{sexy.NewSymbol("type"), sexy.NewString(name)}, sizeNodes(typ.Size)...)
		types = append(types, sexy.NewList(items...))
	}

	return sexy.NewList(sexy.NewSymbol("context"), sexy.NewList(symbols...), sexy.NewList(types...))
}
