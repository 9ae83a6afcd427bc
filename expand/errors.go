package expand

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies semantic errors.
type ErrorKind int

const (
	UndefinedIdentifier ErrorKind = iota
	UndefinedFunction
	AmbiguousBinding
	ShadowingViolation
	SignatureMismatch
	AmbiguousOverload
	TypeSizeMismatch
	UndefinedType
	DuplicateType
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedIdentifier:
		return "UndefinedIdentifier"
	case UndefinedFunction:
		return "UndefinedFunction"
	case AmbiguousBinding:
		return "AmbiguousBinding"
	case ShadowingViolation:
		return "ShadowingViolation"
	case SignatureMismatch:
		return "SignatureMismatch"
	case AmbiguousOverload:
		return "AmbiguousOverload"
	case TypeSizeMismatch:
		return "TypeSizeMismatch"
	case UndefinedType:
		return "UndefinedType"
	case DuplicateType:
		return "DuplicateType"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// SyntaxErrorContext locates an error in the source.
type SyntaxErrorContext struct {
	Filename    string
	Line        int
	LineContent string
}

// CompileError is a semantic error found while checking a program.
type CompileError struct {
	Kind    ErrorKind
	Context SyntaxErrorContext
	Message string
}

func (e *CompileError) Error() string {
	msg := "error: " + e.Message
	switch {
	case e.Context.Filename != "" && e.Context.Line > 0:
		msg = fmt.Sprintf("%s:%d: %s", e.Context.Filename, e.Context.Line, msg)
	case e.Context.Filename != "":
		msg = e.Context.Filename + ": " + msg
	case e.Context.Line > 0:
		msg = fmt.Sprintf("line %d: %s", e.Context.Line, msg)
	}
	if e.Context.LineContent != "" {
		msg += fmt.Sprintf("\n\t%q", e.Context.LineContent)
	}
	return msg
}

// EmitError reports that the output could not be written.
type EmitError struct {
	Err error
}

func (e *EmitError) Error() string {
	return "emit: " + e.Err.Error()
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

// ErrNotBuilt is returned when emission is attempted before the program
// context was built.
var ErrNotBuilt = errors.New("error: program context not built")

func newCompileError(file FileContext, kind ErrorKind, format string, args ...any) *CompileError {
	return &CompileError{
		Kind: kind,
		Context: SyntaxErrorContext{
			Filename:    file.Filename,
			Line:        file.Line,
			LineContent: file.LineContent(file.Line),
		},
		Message: fmt.Sprintf(format, args...),
	}
}

func newEmitError(err error) *EmitError {
	return &EmitError{Err: errors.Wrap(err, "write instruction")}
}

// KindOf returns the kind of a CompileError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
