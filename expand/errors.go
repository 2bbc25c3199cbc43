package expand

import "fmt"

// MacroError wraps an error a user macro returned during expansion
// (spec.md §7 MacroError). A panic inside a macro is not recovered.
type MacroError struct {
	Macro string
	Cause error
}

func (e *MacroError) Error() string {
	return fmt.Sprintf("macro %s: %s", e.Macro, e.Cause)
}

func (e *MacroError) Unwrap() error { return e.Cause }

// LoopError is MacroLoop: the expander's fixed-point iteration exceeded its
// bound without converging (spec.md §4.5, §8 invariant 4).
type LoopError struct {
	Depth int
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("MacroLoop: expansion did not converge within %d iterations", e.Depth)
}
