package reader

import (
	"fmt"
	"strings"
	"sync"

	digest "github.com/opencontainers/go-digest"
	"github.com/hissp-lang/hissp/form"
)

// Macro is a reader-time transform installed under a NAME# dispatch name.
type Macro func(form.Form) (form.Form, error)

// Loader resolves a qualified reader-macro name (PACKAGE..NAME as written,
// or MODULE.._macro_..NAME, which Registry.Load builds for an unqualified
// NAME dispatched from MODULE) to its Macro,
// loading and compiling the defining module on first use if necessary.
// Grounded on the teacher's module loader (module/vendor.go, module/lock.go):
// loading a module's reader macros is content-addressed the same way HLB
// content-addresses a vendored frontend, keyed by digest.Digest instead of
// an OCI descriptor.
type Loader interface {
	LoadReaderMacro(qualified string) (Macro, error)
}

// Evaluator lets the reader carry out .# injection (spec.md §4.3): it
// compiles and evaluates f in the host now, returning the resulting value
// re-wrapped as an atom.
type Evaluator interface {
	EvalForm(f form.Form) (form.Form, error)
}

// Registry caches resolved reader macros by a digest of their qualified
// name plus defining module, the same pattern the teacher uses to avoid
// re-resolving a vendored frontend on every reference (module/vendor.go).
type Registry struct {
	mu     sync.Mutex
	loader Loader
	cache  map[digest.Digest]Macro
}

// NewRegistry builds a Registry backed by loader. A nil loader is valid: a
// reader with no registered reader macros simply errors on first NAME# use.
func NewRegistry(loader Loader) *Registry {
	return &Registry{loader: loader, cache: make(map[digest.Digest]Macro)}
}

// Load resolves dispatch (the text preceding the trailing '#', e.g. "json"
// in "json#{...}", or "pkg..json") against module, the reading module's own
// name, used when dispatch is unqualified.
func (r *Registry) Load(dispatch, module string) (Macro, error) {
	qualified := dispatch
	if !strings.Contains(dispatch, "..") {
		qualified = module + ".._macro_.." + dispatch
	}
	key := digest.FromString(qualified)

	r.mu.Lock()
	if m, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	if r.loader == nil {
		return nil, fmt.Errorf("no reader-macro loader configured for %q", qualified)
	}
	m, err := r.loader.LoadReaderMacro(qualified)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = m
	r.mu.Unlock()
	return m, nil
}
