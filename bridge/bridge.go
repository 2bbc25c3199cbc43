// Package bridge implements the [EVALUATOR BRIDGE] of spec.md §4.7: a thin
// collaborator the reader and compiler use to run host code for .#
// injection, macro installation, and the REPL loop. The error-wrapping
// style (a small struct with an Err field and Unwrap, built by a WithX
// constructor) follows the teacher's errdefs.ErrAbort/ErrModule.
package bridge

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/hissp-lang/hissp/lex"
)

// EvaluatorBridge is the host collaborator of spec.md §4.7.
type EvaluatorBridge interface {
	// EvalTop evaluates text (one emitted host expression) in module's
	// globals and returns the resulting value.
	EvalTop(text, module string) (interface{}, error)
	// Define binds value under name in module, or in module's _macro_
	// sub-namespace when macro is true.
	Define(module, name string, value interface{}, macro bool) error
}

// HostError wraps an error the host runtime raised while evaluating
// emitted text (spec.md §7).
type HostError struct {
	Module string
	Text   string
	Err    error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host error evaluating module %s: %s", e.Module, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }

// WithHostError builds a HostError, attaching a stack trace to err via
// pkg/errors the way errdefs.WithX constructors do; HostError's Unwrap lets
// errors.Is/errors.As reach the original host error.
func WithHostError(module, text string, err error) *HostError {
	return &HostError{Module: module, Text: text, Err: pkgerrors.WithStack(err)}
}

// Phase names the compiler stage a CompileError originated in.
type Phase int

const (
	PhaseRead Phase = iota
	PhaseExpand
	PhaseEmit
	PhaseEval
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseExpand:
		return "expand"
	case PhaseEmit:
		return "emit"
	case PhaseEval:
		return "eval"
	default:
		return "unknown"
	}
}

// CompileError is the outermost error a caller of the compiler pipeline
// sees: the original cause, annotated with the phase and a source position
// (spec.md §4.7, §7). compiler.Module.Compile fills in only the position's
// Filename; Line and Column are left zero.
type CompileError struct {
	Phase Phase
	Pos   lex.Position
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Phase, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// WithCompileError builds a CompileError, attaching a stack trace to err.
func WithCompileError(phase Phase, pos lex.Position, err error) *CompileError {
	return &CompileError{Phase: phase, Pos: pos, Err: pkgerrors.WithStack(err)}
}
