// Package expand implements the [EXPANDER] of spec.md §4.5: the compile-time
// macro-expansion protocol over the two special forms quote and lambda. The
// macro namespace is a flat name-to-callable table per module, modeled on
// the teacher's parser/scope.go Scope/Object lookup table, generalized from
// HLB's lexically-nested declaration scopes to Hissp's single flat
// per-module _macro_ namespace (spec.md §9: "no module-level singletons").
package expand

import (
	"github.com/hissp-lang/hissp/form"
)

// Macro is a compile-time callable: given the unevaluated argument forms of
// a macro-call tuple, it returns the replacement form.
type Macro func(args []form.Form) (form.Form, error)

// Namespace is one module's _macro_ table.
type Namespace struct {
	macros map[string]Macro
}

// NewNamespace builds an empty Namespace.
func NewNamespace() *Namespace {
	return &Namespace{macros: make(map[string]Macro)}
}

// Define installs name in the namespace, replacing any prior binding.
func (n *Namespace) Define(name string, m Macro) {
	n.macros[name] = m
}

// Lookup returns the macro bound to name, or nil, false if unbound.
func (n *Namespace) Lookup(name string) (Macro, bool) {
	m, ok := n.macros[name]
	return m, ok
}

// Environment resolves a module name to its Namespace, the compile-time
// side of the evaluator bridge's module objects (spec.md §4.7, §5: "written
// only by the evaluator bridge, read by the expander").
type Environment interface {
	Namespace(module string) (*Namespace, bool)
}

// MapEnvironment is the simplest Environment: an in-memory map from module
// name to Namespace, used by this repository's own compiler and tests.
type MapEnvironment map[string]*Namespace

func (e MapEnvironment) Namespace(module string) (*Namespace, bool) {
	ns, ok := e[module]
	return ns, ok
}

// DefaultLoopBound is the fixed-point iteration ceiling past which
// expansion is declared non-terminating (spec.md §4.5's "safety valve").
const DefaultLoopBound = 10000

// Expander applies the macro-expansion protocol within one module.
type Expander struct {
	module string
	env    Environment
	bound  int
}

// New builds an Expander that expands forms read from module, resolving
// macro namespaces (including module's own) through env.
func New(module string, env Environment) *Expander {
	return &Expander{module: module, env: env, bound: DefaultLoopBound}
}

// WithLoopBound overrides the default fixed-point iteration ceiling.
func (e *Expander) WithLoopBound(n int) *Expander {
	e.bound = n
	return e
}

// Expand fully macro-expands f (spec.md §4.5).
func (e *Expander) Expand(f form.Form) (form.Form, error) {
	tup, ok := f.(form.Tuple)
	if !ok {
		return f, nil
	}
	if len(tup) == 0 {
		return tup, nil
	}

	for i := 0; ; i++ {
		if i >= e.bound {
			return nil, &LoopError{Depth: e.bound}
		}
		head, ok := tup[0].(form.Symbol)
		if !ok {
			return e.expandChildren(tup)
		}
		switch head {
		case "quote":
			return tup, nil
		case "lambda":
			return e.expandLambda(tup)
		}

		macro, macroName, found := e.resolveMacro(head)
		if !found {
			return e.expandChildren(tup)
		}
		result, err := macro(tup[1:])
		if err != nil {
			return nil, &MacroError{Macro: macroName, Cause: err}
		}
		nextTup, ok := result.(form.Tuple)
		if !ok {
			return e.Expand(result)
		}
		tup = nextTup
		if len(tup) == 0 {
			return tup, nil
		}
	}
}

// resolveMacro looks head up as either an unqualified name in this
// module's own namespace or a qualified PKG.._macro_.NAME reference
// (form.Symbol.QualifyMacro, spec.md §4.5).
func (e *Expander) resolveMacro(head form.Symbol) (Macro, string, bool) {
	if pkg, name, ok := head.QualifyMacro(); ok {
		ns, ok := e.env.Namespace(pkg)
		if !ok {
			return nil, "", false
		}
		m, ok := ns.Lookup(name)
		return m, string(head), ok
	}
	ns, ok := e.env.Namespace(e.module)
	if !ok {
		return nil, "", false
	}
	m, ok := ns.Lookup(string(head))
	return m, string(head), ok
}

// expandChildren recurses into a tuple that is not itself a special form or
// a macro call (spec.md §4.5 rule 3).
func (e *Expander) expandChildren(tup form.Tuple) (form.Form, error) {
	out := make(form.Tuple, len(tup))
	for i, c := range tup {
		ec, err := e.Expand(c)
		if err != nil {
			return nil, err
		}
		out[i] = ec
	}
	return out, nil
}

// expandLambda expands the lambda body but not the parameter tuple's names,
// only its default-value sub-expressions, which are ordinary code (spec.md
// §4.5: "lambda parameter tuples are partially data (defaults are live
// sub-expressions; names are quoted)").
func (e *Expander) expandLambda(tup form.Tuple) (form.Form, error) {
	if len(tup) < 2 {
		return tup, nil
	}
	out := make(form.Tuple, len(tup))
	out[0] = tup[0]
	params, ok := tup[1].(form.Tuple)
	if !ok {
		out[1] = tup[1]
	} else {
		expandedParams, err := e.expandParams(params)
		if err != nil {
			return nil, err
		}
		out[1] = expandedParams
	}
	for i := 2; i < len(tup); i++ {
		ec, err := e.Expand(tup[i])
		if err != nil {
			return nil, err
		}
		out[i] = ec
	}
	return out, nil
}

func (e *Expander) expandParams(params form.Tuple) (form.Tuple, error) {
	idx := -1
	for i, el := range params {
		if s, ok := el.(form.Symbol); ok && s == ":" {
			idx = i
			break
		}
	}
	if idx < 0 {
		// All-positional: every element is a name, nothing to expand.
		return params, nil
	}
	out := make(form.Tuple, len(params))
	copy(out, params[:idx+1])
	paired := params[idx+1:]
	for i := 0; i < len(paired); i += 2 {
		out[idx+1+i] = paired[i] // specifier/name: left untouched, "quoted"
		if i+1 < len(paired) {
			valForm := paired[i+1]
			if s, ok := valForm.(form.Symbol); ok && s == ":?" {
				out[idx+1+i+1] = valForm
				continue
			}
			ev, err := e.Expand(valForm)
			if err != nil {
				return nil, err
			}
			out[idx+1+i+1] = ev
		}
	}
	return out, nil
}
