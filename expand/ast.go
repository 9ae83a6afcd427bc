package expand

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExprKind represents the different kinds of expressions
type ExprKind string

const (
	ExprFnDef      ExprKind = "ExprFnDef"
	ExprFnCall     ExprKind = "ExprFnCall"
	ExprTypeDecl   ExprKind = "ExprTypeDecl"
	ExprAssign     ExprKind = "ExprAssign"
	ExprIdent      ExprKind = "ExprIdent"
	ExprSmallValue ExprKind = "ExprSmallValue"
	ExprBytes      ExprKind = "ExprBytes"
	ExprString     ExprKind = "ExprString"
)

// ExprID addresses an Expr inside its Arena.
type ExprID int32

// NoExpr is the ExprID of nothing.
const NoExpr ExprID = -1

// SmallValue is an integer literal of 1, 2, 4 or 8 bytes.
// Width 0 means the literal is untyped.
type SmallValue struct {
	Width uint8
	Value int64
	// Unsigned means Value holds the bits of a uint64 above math.MaxInt64.
	Unsigned bool
}

func (v SmallValue) String() string {
	if v.Unsigned {
		return strconv.FormatUint(uint64(v.Value), 10)
	}
	return strconv.FormatInt(v.Value, 10)
}

// Expr represents a node in the abstract syntax tree
type Expr struct {
	Kind ExprKind
	// Source line for diagnostics; 0 if unknown.
	Line int

	// ExprAssign, ExprFnCall, ExprIdent:
	Name string
	// ExprAssign:
	Value ExprID
	// ExprFnDef:
	Signature Signature
	Body      Block
	// ExprFnCall:
	Args []RawToken
	// ExprTypeDecl:
	Size ByteSize
	// ExprSmallValue:
	Small SmallValue
	// ExprBytes:
	Bytes []byte
	// ExprString:
	String string
}

// Block is a list of expressions which opens a new scope.
type Block struct {
	Elements []ExprID
}

// TokenKind distinguishes raw argument tokens.
type TokenKind uint8

const (
	TokenIdent TokenKind = iota
	TokenSymbol
	TokenExpr
)

// RawToken is an unresolved call argument or literal-matcher pattern.
type RawToken struct {
	Kind   TokenKind
	Name   string // TokenIdent
	Symbol rune   // TokenSymbol
	Expr   ExprID // TokenExpr
}

func ArgIdent(name string) RawToken {
	return RawToken{Kind: TokenIdent, Name: name, Expr: NoExpr}
}

func ArgSymbol(r rune) RawToken {
	return RawToken{Kind: TokenSymbol, Symbol: r, Expr: NoExpr}
}

func ArgExpr(id ExprID) RawToken {
	return RawToken{Kind: TokenExpr, Expr: id}
}

// Param is one function parameter: either a literal matcher or a typed
// parameter. Empty Name or TypeName means "not given".
type Param struct {
	Literal  *RawToken
	Name     string
	TypeName string
}

func ParamLiteral(tok RawToken) Param {
	return Param{Literal: &tok}
}

func ParamTyped(name, typeName string) Param {
	return Param{Name: name, TypeName: typeName}
}

func (p Param) IsLiteral() bool {
	return p.Literal != nil
}

// Signature is the parameter list of a function definition.
type Signature struct {
	Params []Param
}

// FileContext describes where an AST came from. It is used only for
// diagnostics.
type FileContext struct {
	Filename string
	Source   string
	Line     int
}

// LineContent returns the text of the given 1-based line, or "" if the
// line does not exist.
func (f FileContext) LineContent(line int) string {
	if line <= 0 || f.Source == "" {
		return ""
	}
	lines := strings.Split(f.Source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

// Program is a parsed compilation unit.
type Program struct {
	Arena *Arena
	Body  Block
	File  FileContext
}

// Arena owns all expressions of a program.
type Arena struct {
	exprs []Expr
}

func NewArena() *Arena {
	return &Arena{}
}

// Add stores e and returns its id.
func (a *Arena) Add(e Expr) ExprID {
	a.exprs = append(a.exprs, e)
	return ExprID(len(a.exprs) - 1)
}

// At returns the expression with the given id. It panics if id was not
// returned by Add on this arena.
func (a *Arena) At(id ExprID) *Expr {
	return &a.exprs[id]
}

func (a *Arena) Len() int {
	return len(a.exprs)
}

func (a *Arena) FnDef(sig Signature, body ...ExprID) ExprID {
	return a.Add(Expr{Kind: ExprFnDef, Signature: sig, Body: Block{Elements: body}})
}

func (a *Arena) Call(name string, args ...RawToken) ExprID {
	return a.Add(Expr{Kind: ExprFnCall, Name: name, Args: args})
}

func (a *Arena) TypeDecl(size ByteSize) ExprID {
	return a.Add(Expr{Kind: ExprTypeDecl, Size: size})
}

func (a *Arena) Assign(name string, value ExprID) ExprID {
	return a.Add(Expr{Kind: ExprAssign, Name: name, Value: value})
}

func (a *Arena) Ident(name string) ExprID {
	return a.Add(Expr{Kind: ExprIdent, Name: name})
}

func (a *Arena) Int(v int64) ExprID {
	return a.Add(Expr{Kind: ExprSmallValue, Small: SmallValue{Value: v}})
}

func (a *Arena) Sized(width uint8, v int64) ExprID {
	return a.Add(Expr{Kind: ExprSmallValue, Small: SmallValue{Width: width, Value: v}})
}

func (a *Arena) ByteBuffer(b []byte) ExprID {
	return a.Add(Expr{Kind: ExprBytes, Bytes: b})
}

func (a *Arena) Str(s string) ExprID {
	return a.Add(Expr{Kind: ExprString, String: s})
}

// U64 stores an 8-byte unsigned literal.
func (a *Arena) U64(v uint64) ExprID {
	small := SmallValue{Width: 8, Value: int64(v), Unsigned: v > math.MaxInt64}
	return a.Add(Expr{Kind: ExprSmallValue, Small: small})
}

// SetLine records the source line of an expression.
func (a *Arena) SetLine(id ExprID, line int) ExprID {
	a.exprs[id].Line = line
	return id
}

// Equal compares two expressions structurally. An assignment is never
// equal to anything, itself included.
func (a *Arena) Equal(x, y ExprID) bool {
	ex, ey := a.At(x), a.At(y)
	if ex.Kind != ey.Kind || ex.Kind == ExprAssign {
		return false
	}
	switch ex.Kind {
	case ExprIdent:
		return ex.Name == ey.Name
	case ExprSmallValue:
		return ex.Small == ey.Small
	case ExprBytes:
		return bytes.Equal(ex.Bytes, ey.Bytes)
	case ExprString:
		return ex.String == ey.String
	case ExprTypeDecl:
		return ex.Size == ey.Size
	case ExprFnCall:
		if ex.Name != ey.Name || len(ex.Args) != len(ey.Args) {
			return false
		}
		for i := range ex.Args {
			if !a.TokensEqual(ex.Args[i], ey.Args[i]) {
				return false
			}
		}
		return true
	case ExprFnDef:
		if !a.signaturesEqual(ex.Signature, ey.Signature) {
			return false
		}
		if len(ex.Body.Elements) != len(ey.Body.Elements) {
			return false
		}
		for i := range ex.Body.Elements {
			if !a.Equal(ex.Body.Elements[i], ey.Body.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TokensEqual reports whether two raw tokens are token-identical.
func (a *Arena) TokensEqual(x, y RawToken) bool {
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case TokenIdent:
		return x.Name == y.Name
	case TokenSymbol:
		return x.Symbol == y.Symbol
	default:
		return a.Equal(x.Expr, y.Expr)
	}
}

// Parameter names are ignored.
func (a *Arena) signaturesEqual(x, y Signature) bool {
	if len(x.Params) != len(y.Params) {
		return false
	}
	for i, px := range x.Params {
		py := y.Params[i]
		if px.IsLiteral() != py.IsLiteral() {
			return false
		}
		if px.IsLiteral() {
			if !a.TokensEqual(*px.Literal, *py.Literal) {
				return false
			}
		} else if px.TypeName != py.TypeName {
			return false
		}
	}
	return true
}

// FormatToken renders a token the way it appears in push instructions.
func (a *Arena) FormatToken(tok RawToken) string {
	switch tok.Kind {
	case TokenIdent:
		return tok.Name
	case TokenSymbol:
		return string(tok.Symbol)
	default:
		return a.FormatInline(tok.Expr)
	}
}

// FormatInline renders an expression on a single line.
func (a *Arena) FormatInline(id ExprID) string {
	e := a.At(id)
	switch e.Kind {
	case ExprSmallValue:
		return fmt.Sprintf("Int(%s)", e.Small)
	case ExprString:
		return fmt.Sprintf("String(%q)", e.String)
	case ExprBytes:
		return fmt.Sprintf("Bytes(0x%x)", e.Bytes)
	case ExprTypeDecl:
		return fmt.Sprintf("Type(%s)", e.Size)
	case ExprIdent, ExprAssign:
		return e.Name
	case ExprFnCall:
		return "(call " + e.Name + ")"
	case ExprFnDef:
		return "fn " + a.FormatSignature(e.Signature)
	default:
		return ""
	}
}

// FormatSignature renders a parameter list, e.g. "[ [x:u8] = [:u16] ]".
func (a *Arena) FormatSignature(sig Signature) string {
	if len(sig.Params) == 0 {
		return "[ ]"
	}
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		if p.IsLiteral() {
			parts[i] = a.FormatToken(*p.Literal)
			continue
		}
		s := "[" + p.Name
		if p.TypeName != "" {
			s += ":" + p.TypeName
		}
		parts[i] = s + "]"
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

// FormatArgs renders call arguments for diagnostics.
func (a *Arena) FormatArgs(args []RawToken) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = a.FormatToken(arg)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
