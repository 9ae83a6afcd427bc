package expand

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestReadProgram(t *testing.T) {
	prog, err := ReadProgram(FileContext{Filename: "main.eas"}, `
		; print a variable
		(program
		  (assign "print" (fn ((param "v" nil))))
		  (assign "x" (int 10))
		  (call "print" (ident "x")))`)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Body.Elements), 3)
	be.Equal(t, prog.File.Filename, "main.eas")

	call := prog.Arena.At(prog.Body.Elements[2])
	be.Equal(t, call.Kind, ExprFnCall)
	be.Equal(t, call.Name, "print")
	be.Equal(t, call.Args, []RawToken{ArgIdent("x")})

	var out bytes.Buffer
	_, err = Compile(prog, &out)
	be.Err(t, err, nil)
	be.Equal(t, out.String(), lines(
		"{",
		"    let print =",
		"        fn [ [v] ] {",
		"            pop any -> r0 : v",
		"            ret",
		"        }",
		"    let x =",
		"        Int(10) (1..8)b",
		"    push 1b x",
		"    call print",
		"}",
	))
}

func TestReadProgramRoundTrip(t *testing.T) {
	inputs := []string{
		`(program)`,
		`(program (assign "u8" (type 1)) (assign "n" (type 2 8)) (assign "a" (type any)))`,
		`(program (assign "f" (fn ((lit (sym "=")) (param "v" "u8") (param nil nil)) (ident "v"))))`,
		`(program (call "f" (ident "x") (sym "+") (call "g") (fn ())))`,
		`(program (int -5) (u8 255) (u16 300) (u32 70000) (u64 1) (string "a\"b") (bytes 0 1 255))`,
		`(program (line 1 (assign "x" (int 1))) (line 2 (call "f" (line 3 (int 2)))))`,
	}

	for _, input := range inputs {
		prog, err := ReadProgram(FileContext{}, input)
		be.Err(t, err, nil)
		be.Equal(t, ToSExpr(prog).String(), input)
	}
}

func TestReadProgramLines(t *testing.T) {
	prog, err := ReadProgram(FileContext{}, `(program (line 4 (assign "x" (call "f" (int 1)))))`)
	be.Err(t, err, nil)

	assign := prog.Arena.At(prog.Body.Elements[0])
	be.Equal(t, assign.Line, 4)
	call := prog.Arena.At(assign.Value)
	be.Equal(t, call.Line, 4)
	be.Equal(t, prog.Arena.At(call.Args[0].Expr).Line, 4)
}

func TestReadProgramSizes(t *testing.T) {
	prog, err := ReadProgram(FileContext{}, `(program (type 1) (type 1 8) (type 4 4) (type any) (u16 1))`)
	be.Err(t, err, nil)

	at := func(i int) *Expr { return prog.Arena.At(prog.Body.Elements[i]) }
	be.Equal(t, at(0).Size, Exact(1))
	be.Equal(t, at(1).Size, Range(1, 8))
	be.Equal(t, at(2).Size, Exact(4))
	be.Equal(t, at(3).Size, Unconstrained())
	be.Equal(t, at(4).Small, SmallValue{Width: 2, Value: 1})
}

func TestReadProgramLargeUnsigned(t *testing.T) {
	src := `(program (u64 18446744073709551615) (u64 5))`
	prog, err := ReadProgram(FileContext{}, src)
	be.Err(t, err, nil)

	big := prog.Arena.At(prog.Body.Elements[0])
	be.Equal(t, big.Small.Width, uint8(8))
	be.True(t, big.Small.Unsigned)
	be.Equal(t, prog.Arena.FormatInline(prog.Body.Elements[0]), "Int(18446744073709551615)")
	be.Equal(t, prog.Arena.At(prog.Body.Elements[1]).Small, SmallValue{Width: 8, Value: 5})
	be.Equal(t, ToSExpr(prog).String(), src)

	var out bytes.Buffer
	_, err = Compile(prog, &out)
	be.Err(t, err, nil)
	be.Equal(t, out.String(), "{\n    Int(18446744073709551615) 8b\n    Int(5) 8b\n}\n")

	_, err = ReadProgram(FileContext{}, `(program (u64 18446744073709551616))`)
	be.Err(t, err, "bad integer")
}

func TestReadProgramErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{`(program`, "parse AST"},
		{`(assign "x" (int 1))`, "expected (program ...)"},
		{`(program (frobnicate))`, "unknown expression"},
		{`(program (u8 300))`, "300 does not fit in u8"},
		{`(program (int 99999999999999999999))`, "bad integer"},
		{`(program (bytes 256))`, "bad byte 256"},
		{`(program (type 8 1))`, "empty size range"},
		{`(program (type 1 2 3))`, "expected (type N)"},
		{`(program (assign x (int 1)))`, `expected (assign "name" E)`},
		{`(program (fn ((param "" nil))))`, "expected a non-empty string or nil"},
		{`(program (fn ((wat))))`, "expected (param ...) or (lit ...)"},
		{`(program (call "f" (sym "ab")))`, "with a single character"},
		{`(program (line 0 (int 1)))`, "bad line number 0"},
	}

	for _, test := range tests {
		_, err := ReadProgram(FileContext{}, test.input)
		be.Err(t, err, test.err)
	}
}

func TestContextDump(t *testing.T) {
	prog, err := ReadProgram(FileContext{}, `
		(program
		  (assign "u8" (type 1))
		  (assign "print" (fn ((param "v" nil))))
		  (assign "x" (int 10))
		  (call "print" (ident "x")))`)
	be.Err(t, err, nil)

	ctx := NewCompilation(prog).BuildContext()
	be.Equal(t, ctx.Dump(prog.Arena).String(),
		`(context (symbols (symbol "print" 0 (fn ((param "v" nil)))) (symbol "v" 1 (param 0)) (symbol "x" 0 (int 10))) (types (type "u8" 1)))`)
}

func TestContextDumpScopesFollowTraversal(t *testing.T) {
	prog, err := ReadProgram(FileContext{}, `
		(program
		  (assign "apply" (fn ((param "f" nil) (param "g" nil))))
		  (call "apply"
		    (fn ((param "first" nil)))
		    (fn ((param "second" nil)))))`)
	be.Err(t, err, nil)

	ctx := NewCompilation(prog).BuildContext()
	// Call arguments are visited last to first.
	be.Equal(t, ctx.Symbols.All("second")[0].Scope, ScopeID(2))
	be.Equal(t, ctx.Symbols.All("first")[0].Scope, ScopeID(3))
}
