package expand

import (
	"fmt"
	"slices"
	"strings"
)

// ScopeID identifies a block. Ids are handed out in increasing order.
type ScopeID int

// ScopeStack lists the scopes enclosing the current traversal point,
// outermost first.
type ScopeStack []ScopeID

// Contains reports whether a binding made in scope id is visible.
func (s ScopeStack) Contains(id ScopeID) bool {
	return slices.Contains(s, id)
}

// Top returns the innermost scope.
func (s ScopeStack) Top() ScopeID {
	if len(s) == 0 {
		return -1
	}
	return s[len(s)-1]
}

// CompilationState holds the counters of one compilation. Independent
// compilations must use independent states.
type CompilationState struct {
	nextScope ScopeID
	indent    int
}

func NewCompilationState() *CompilationState {
	return &CompilationState{}
}

// NextScope allocates a scope id greater than every id allocated since the
// last Reset.
func (s *CompilationState) NextScope() ScopeID {
	id := s.nextScope
	s.nextScope++
	return id
}

// Reset forgets all allocated scopes and the indentation.
func (s *CompilationState) Reset() {
	s.nextScope = 0
	s.indent = 0
}

func (s *CompilationState) Indent() {
	s.indent++
}

func (s *CompilationState) Dedent() {
	if s.indent > 0 {
		s.indent--
	}
}

func (s *CompilationState) Padding() string {
	return strings.Repeat("    ", s.indent)
}

// Register names a machine register.
type Register uint8

func (r Register) String() string {
	return fmt.Sprintf("r%d", uint8(r))
}

// freeRegister picks the register a popped parameter lands in.
//
// There is no register allocator yet; every parameter goes to r0.
func freeRegister() Register {
	return 0
}
