package reader

import (
	"fmt"

	"github.com/hissp-lang/hissp/lex"
)

// ErrorKind enumerates ReadError failure shapes from spec.md §4.3.
type ErrorKind int

const (
	UnexpectedClose ErrorKind = iota
	EOFInForm
	BadReaderMacro
	UnquoteOutsideTemplate
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedClose:
		return "UnexpectedClose"
	case EOFInForm:
		return "EOFInForm"
	case BadReaderMacro:
		return "BadReaderMacro"
	case UnquoteOutsideTemplate:
		return "UnquoteOutsideTemplate"
	default:
		return "UnknownReadError"
	}
}

// Error is ReadError: a structurally ill-formed form (spec.md §4.3, §7).
type Error struct {
	Kind ErrorKind
	Pos  lex.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

func newError(kind ErrorKind, pos lex.Position, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, a...)}
}

// MacroError wraps an error returned by a user reader-macro handler (or by
// loading it), annotated with the position of the #-dispatch that invoked
// it. A panic inside a handler is not recovered.
type MacroError struct {
	Origin lex.Position
	Cause  error
}

func (e *MacroError) Error() string {
	return fmt.Sprintf("%s: reader macro error: %s", e.Origin, e.Cause)
}

func (e *MacroError) Unwrap() error { return e.Cause }
