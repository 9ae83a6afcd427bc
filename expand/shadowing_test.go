package expand

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestVariableRedeclaredInSameScope(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("x", a.Int(1)),
		a.Assign("x", a.Int(2)),
	)
	be.Err(t, err, "variable 'x' already declared in this scope")
	kind, _ := KindOf(err)
	be.Equal(t, kind, ShadowingViolation)
}

func TestVariableInNestedScope(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("x", a.Int(1)),
		a.Assign("f", a.FnDef(sig(), a.Assign("x", a.Int(2)))),
	)
	be.Err(t, err, nil)
}

func TestVariableInSiblingScopes(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("f", a.FnDef(sig(), a.Assign("y", a.Int(1)))),
		a.Assign("g", a.FnDef(sig(), a.Assign("y", a.Int(2)))),
	)
	be.Err(t, err, nil)
}

func TestFunctionOverloadsInSameScope(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("f", a.FnDef(sig())),
		a.Assign("f", a.FnDef(sig(ParamTyped("v", "")))),
	)
	be.Err(t, err, nil)
}

func TestFunctionConflictsWithVariable(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("f", a.FnDef(sig())),
		a.Assign("f", a.Int(1)),
	)
	be.Err(t, err, "function 'f' conflicts with a variable of the same name in this scope")
	kind, _ := KindOf(err)
	be.Equal(t, kind, ShadowingViolation)
}

func TestVariableConflictsWithFunction(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("f", a.Int(1)),
		a.Assign("f", a.FnDef(sig())),
	)
	be.Err(t, err, "variable 'f' already declared in this scope")
	kind, _ := KindOf(err)
	be.Equal(t, kind, ShadowingViolation)
}

func TestVariableShadowsParameter(t *testing.T) {
	a := NewArena()
	_, err := emitProgram(t, a,
		a.Assign("f", a.FnDef(sig(ParamTyped("x", "")), a.Assign("x", a.Int(3)))),
	)
	be.Err(t, err, "variable 'x' already declared in this scope")
}

func TestDeepNestedScopes(t *testing.T) {
	a := NewArena()
	inner := a.FnDef(sig(), a.Assign("x", a.Int(3)), a.Ident("x"))
	middle := a.FnDef(sig(), a.Assign("x", a.Int(2)), a.Assign("h", inner))
	out, err := emitProgram(t, a,
		a.Assign("x", a.Int(1)),
		a.Assign("g", middle),
	)
	// The innermost reference sees all three bindings.
	be.Err(t, err, "identifier x is defined multiple times in this scope")
	be.Equal(t, out, "")
}
