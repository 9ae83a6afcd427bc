package expand

import "sort"

// Predicate further restricts which argument tokens a type accepts.
type Predicate func(arena *Arena, tok RawToken) bool

// Type is a named size constraint.
type Type struct {
	Size      ByteSize
	Predicate Predicate
	// Decl is the type declaration which introduced the type, or NoExpr for
	// types defined by the host.
	Decl ExprID
}

// Accepts reports whether an argument of the given size and token form
// satisfies the type.
func (t Type) Accepts(arena *Arena, tok RawToken, size ByteSize) bool {
	if _, ok := t.Size.Overlap(size); !ok {
		return false
	}
	return t.Predicate == nil || t.Predicate(arena, tok)
}

// TypeRegistry maps type names to types. Types are global: the registry is
// not scope-aware.
type TypeRegistry struct {
	types map[string]Type
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]Type)}
}

// Define registers a type. It reports false, leaving the registry
// unchanged, if name is already declared.
func (r *TypeRegistry) Define(name string, t Type) bool {
	if _, exists := r.types[name]; exists {
		return false
	}
	r.types[name] = t
	return true
}

func (r *TypeRegistry) Lookup(name string) (Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns all declared type names in sorted order.
func (r *TypeRegistry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *TypeRegistry) Len() int {
	return len(r.types)
}
