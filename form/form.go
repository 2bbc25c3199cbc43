// Package form implements the canonical tree representation of Hissp code
// described in spec.md §3: atoms, symbol atoms (plain strings), and tuples.
package form

import (
	"strings"
)

// Form is any value produced by the reader or a macro: an Atom (anything
// that is not a Tuple), or a Tuple. Symbols and payload strings are both
// represented as the Go string type; nothing at this level distinguishes
// them (spec.md §3, "the tree does not remember which kind a string is").
type Form interface{}

// Tuple is an ordered, immutable sequence of forms. The empty Tuple denotes
// the unit data value.
type Tuple []Form

// Symbol is a string used as an identifier-shaped atom. It is defined as a
// distinct Go type purely so reader and emitter code can type-switch on
// "this string came from reading an identifier token" without losing the
// spec's invariant that, once read, a Symbol is indistinguishable from a
// quoted string of the same text: Symbol's underlying representation is
// string and it converts freely both ways.
type Symbol string

// Qualify returns whether s has the double-dot qualified-symbol shape
// PACKAGE..NAME, and if so, the package and name parts.
func (s Symbol) Qualify() (pkg, name string, ok bool) {
	i := strings.Index(string(s), "..")
	if i < 0 {
		return "", "", false
	}
	return string(s)[:i], string(s)[i+2:], true
}

// IsMethod reports whether s denotes a method symbol: a leading '.' that is
// not part of a "..", followed by an identifier.
func (s Symbol) IsMethod() bool {
	str := string(s)
	if !strings.HasPrefix(str, ".") || strings.HasPrefix(str, "..") {
		return false
	}
	return len(str) > 1
}

// QualifiedSymbol builds the PACKAGE..NAME spelling.
func QualifiedSymbol(pkg, name string) Symbol {
	return Symbol(pkg + ".." + name)
}

// MacroSep is the fixed infix of a cross-module macro reference (spec.md
// §4.5: "a qualified symbol of shape PKG.._macro_.NAME"). It is a distinct
// grammar from the generic PACKAGE..NAME qualified symbol Qualify parses:
// _macro_ is a literal attribute name sitting between two double-dot
// boundaries, not a plain two-part qualification, so both the reader
// (which must not munge the dots out of it) and the expander (which must
// look past it to find NAME) need to recognize it before falling back to
// Qualify.
const MacroSep = ".._macro_."

// QualifyMacro returns whether s has the PKG.._macro_.NAME shape, and if
// so, the package and macro name parts.
func (s Symbol) QualifyMacro() (pkg, name string, ok bool) {
	i := strings.Index(string(s), MacroSep)
	if i < 0 {
		return "", "", false
	}
	return string(s)[:i], string(s)[i+len(MacroSep):], true
}

// QualifiedMacroSymbol builds the PKG.._macro_.NAME spelling.
func QualifiedMacroSymbol(pkg, name string) Symbol {
	return Symbol(pkg + MacroSep + name)
}

// Raw is a pre-formed, opaque host-literal source atom (spec.md §4.3: "the
// resulting host value becomes an atom"), used for bracket-literal tokens
// ([...] / {...}) whose content the reader does not decompose into a
// tuple. Unlike Symbol and string, Raw is idempotent under quoting: it is
// not one of the two kinds spec.md invariant 1 carves out, so quoting it
// reconstructs it as itself, exactly like a number.
type Raw string

// IsEmptyTuple reports whether f is the canonical unit value ().
func IsEmptyTuple(f Form) bool {
	t, ok := f.(Tuple)
	return ok && len(t) == 0
}

// Head returns the first element of a non-empty tuple and true, or nil and
// false for anything else.
func Head(f Form) (Form, bool) {
	t, ok := f.(Tuple)
	if !ok || len(t) == 0 {
		return nil, false
	}
	return t[0], true
}

// Equal reports deep, type-aware equality between two forms. Strings and
// Symbols compare equal by text (spec.md invariant 1: quoting is the only
// place the two kinds differ in shape, never in value).
func Equal(a, b Form) bool {
	switch av := a.(type) {
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Symbol:
		return textOf(b) == string(av) && isTextual(b)
	case string:
		return textOf(b) == av && isTextual(b)
	default:
		return a == b
	}
}

func isTextual(f Form) bool {
	switch f.(type) {
	case Symbol, string:
		return true
	default:
		return false
	}
}

func textOf(f Form) string {
	switch v := f.(type) {
	case Symbol:
		return string(v)
	case string:
		return v
	default:
		return ""
	}
}
