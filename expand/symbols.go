package expand

import (
	"slices"
	"sort"
)

// Symbol is one binding of a name.
type Symbol struct {
	Name  string
	Scope ScopeID
	// Value is the bound expression. For parameters it is the function
	// definition declaring the parameter.
	Value ExprID
	// Param is the index of the parameter in Value's signature, or -1 if the
	// symbol is not a parameter.
	Param int
	// Stack is the scope stack open where the binding was made. Identifiers
	// inside Value resolve against it. Nil if unknown.
	Stack ScopeStack
}

func (s Symbol) IsParam() bool {
	return s.Param >= 0
}

// SymbolTable maps names to every binding ever made for them, in
// insertion order.
type SymbolTable struct {
	bindings map[string][]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{bindings: make(map[string][]Symbol)}
}

// Insert adds a binding. Existing bindings are never overwritten.
func (t *SymbolTable) Insert(name string, scope ScopeID, value ExprID) {
	t.bindings[name] = append(t.bindings[name], Symbol{Name: name, Scope: scope, Value: value, Param: -1})
}

// Bind adds a binding made in the innermost scope of stack and remembers
// stack for resolving the value later.
func (t *SymbolTable) Bind(name string, stack ScopeStack, value ExprID) {
	t.bindings[name] = append(t.bindings[name], Symbol{
		Name: name, Scope: stack.Top(), Value: value, Param: -1, Stack: slices.Clone(stack),
	})
}

// InsertParam binds parameter index of function fn.
func (t *SymbolTable) InsertParam(name string, scope ScopeID, fn ExprID, index int) {
	t.bindings[name] = append(t.bindings[name], Symbol{Name: name, Scope: scope, Value: fn, Param: index})
}

// Lookup returns the bindings of name made in any scope of stack.
func (t *SymbolTable) Lookup(name string, stack ScopeStack) []Symbol {
	var visible []Symbol
	for _, sym := range t.bindings[name] {
		if stack.Contains(sym.Scope) {
			visible = append(visible, sym)
		}
	}
	return visible
}

// InScope returns the bindings of name made directly in scope.
func (t *SymbolTable) InScope(name string, scope ScopeID) []Symbol {
	var found []Symbol
	for _, sym := range t.bindings[name] {
		if sym.Scope == scope {
			found = append(found, sym)
		}
	}
	return found
}

// All returns every binding of name regardless of scope.
func (t *SymbolTable) All(name string) []Symbol {
	return t.bindings[name]
}

// Names returns all bound names in sorted order.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.bindings))
	for name := range t.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of bindings.
func (t *SymbolTable) Len() int {
	n := 0
	for _, syms := range t.bindings {
		n += len(syms)
	}
	return n
}
