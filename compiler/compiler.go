// Package compiler implements the pipeline of spec.md §2: Reader → Expander
// → Emitter, closed over the Evaluator Bridge feedback loop that lets a
// macro defined earlier in a module be used by a later form in the same
// module. Grounded on the teacher's frontend.go, which wires its own
// lexer/parser/checker/codegen stages behind a single Compile entry point;
// Module plays the same role here as HLB's compiler.Frontend.
package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/hissp-lang/hissp/bridge"
	"github.com/hissp-lang/hissp/emit"
	"github.com/hissp-lang/hissp/expand"
	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/internal/munge"
	"github.com/hissp-lang/hissp/lex"
	"github.com/hissp-lang/hissp/reader"
)

// FormEvaluator is implemented by bridges (bridge.TextHost in particular)
// that can evaluate an already-expanded form directly, skipping a round
// trip through emitted host text. The compiler prefers this path when the
// configured bridge supports it.
type FormEvaluator interface {
	EvalForm(module string, f form.Form) (interface{}, error)
}

// Result is everything the compiler produced for one top-level form.
type Result struct {
	Source form.Form // as read, before expansion
	Form   form.Form // after macro-expansion
	Text   string    // emitted host source
}

// Module compiles Lissp source text for a single named module, keeping the
// module's macro namespace alive across calls to Compile (spec.md §5: "the
// module's _macro_ namespace is the only live state retained between
// top-level forms").
type Module struct {
	Name   string
	Bridge bridge.EvaluatorBridge

	env      expand.MapEnvironment
	ns       *expand.Namespace
	registry *reader.Registry
	bound    int
}

// readerMacroHost is implemented by bridges (bridge.TextHost) that can
// also resolve NAME# user reader macros, letting the compiler back the
// reader's registry with the same host used for .# injection and macro
// installation instead of requiring a separate reader.Loader.
type readerMacroHost interface {
	ReaderMacro(module, name string) (func(form.Form) (form.Form, error), bool)
}

// hostLoader adapts a readerMacroHost to reader.Loader.
type hostLoader struct{ host readerMacroHost }

func (l hostLoader) LoadReaderMacro(qualified string) (reader.Macro, error) {
	module, name, ok := splitQualified(qualified)
	if !ok {
		return nil, fmt.Errorf("malformed qualified reader-macro name %q", qualified)
	}
	fn, ok := l.host.ReaderMacro(module, name)
	if !ok {
		return nil, fmt.Errorf("no reader macro named %q in module %s", name, module)
	}
	return fn, nil
}

// splitQualified splits the qualified reader-macro name reader.Registry.Load
// builds into a module and a bare name: "PKG.._macro_..NAME" for an
// unqualified dispatch (resolved against the reading module's own _macro_
// table), or plain "PKG..NAME" when the Lissp source spelled out an
// already-qualified dispatch symbol directly.
func splitQualified(qualified string) (pkg, name string, ok bool) {
	const sep = ".._macro_.."
	if i := strings.Index(qualified, sep); i >= 0 {
		return qualified[:i], qualified[i+len(sep):], true
	}
	if i := strings.Index(qualified, ".."); i >= 0 {
		return qualified[:i], qualified[i+2:], true
	}
	return "", "", false
}

// NewModule builds a Module named name, backed by host for .# injection and
// macro installation. A nil host is valid for pure read/expand/emit use
// (no macros, no .# injection).
func NewModule(name string, host bridge.EvaluatorBridge) *Module {
	ns := expand.NewNamespace()
	env := expand.MapEnvironment{name: ns}
	var loader reader.Loader
	if rmh, ok := host.(readerMacroHost); ok {
		loader = hostLoader{host: rmh}
	}
	return &Module{
		Name:     name,
		Bridge:   host,
		env:      env,
		ns:       ns,
		registry: reader.NewRegistry(loader),
		bound:    expand.DefaultLoopBound,
	}
}

// Require makes another already-compiled Module's macro namespace visible
// for this module's qualified PKG.._macro_.NAME macro references.
func (m *Module) Require(other *Module) {
	m.env[other.Name] = other.ns
}

// WithLoopBound overrides the expander's fixed-point iteration ceiling.
func (m *Module) WithLoopBound(n int) *Module {
	m.bound = n
	return m
}

// evaluator adapts Module to reader.Evaluator for .# injection: it
// expands and evaluates f now, using the live namespace and bridge, and
// wraps the resulting host value back into a form.
type evaluatorAdapter struct{ m *Module }

func (a evaluatorAdapter) EvalForm(f form.Form) (form.Form, error) {
	expanded, err := expand.New(a.m.Name, a.m.env).WithLoopBound(a.m.bound).Expand(f)
	if err != nil {
		return nil, err
	}
	val, err := a.m.eval(expanded)
	if err != nil {
		return nil, err
	}
	return valueToForm(val), nil
}

// Compile reads every top-level form from src, macro-expands and emits
// each in turn, evaluating `define-macro` pragmas immediately so later
// forms in the same stream see the new macro (spec.md §4.7's same-module
// requirement).
func (m *Module) Compile(name string, src io.Reader) ([]Result, error) {
	var ev reader.Evaluator
	if m.Bridge != nil {
		ev = evaluatorAdapter{m: m}
	}
	rd, err := reader.New(name, src, m.Name, reader.WithRegistry(m.registry), reader.WithEvaluator(ev))
	if err != nil {
		return nil, bridge.WithCompileError(bridge.PhaseRead, lex.Position{Filename: name}, err)
	}

	var out []Result
	for {
		f, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, bridge.WithCompileError(bridge.PhaseRead, lex.Position{Filename: name}, err)
		}

		rewritten, macroInstall, err := m.rewriteDefineMacro(f)
		if err != nil {
			return out, bridge.WithCompileError(bridge.PhaseExpand, lex.Position{Filename: name}, err)
		}

		expanded, err := expand.New(m.Name, m.env).WithLoopBound(m.bound).Expand(rewritten)
		if err != nil {
			return out, bridge.WithCompileError(bridge.PhaseExpand, lex.Position{Filename: name}, err)
		}

		text, err := emit.Emit(expanded)
		if err != nil {
			return out, bridge.WithCompileError(bridge.PhaseEmit, lex.Position{Filename: name}, err)
		}

		out = append(out, Result{Source: f, Form: expanded, Text: text})

		if macroInstall != nil && m.Bridge != nil {
			if err := m.installMacro(*macroInstall, expanded); err != nil {
				return out, bridge.WithCompileError(bridge.PhaseEval, lex.Position{Filename: name}, err)
			}
		}
	}
	return out, nil
}

// defineMacroPragma names a recognized top-level form to be rewritten into
// an ordinary host assignment, then additionally installed into this
// module's live namespace so subsequent forms can use it immediately.
type defineMacroPragma struct {
	name string
}

// rewriteDefineMacro recognizes the bare top-level form
// `(define-macro NAME LAMBDA)` — ordinary code is read without
// auto-qualification (spec.md §4.3 qualifies unquoted symbols only inside
// quasiquote templates), so the head arrives as the reader's munged
// spelling of "define-macro" — and rewrites it to the ordinary general call
// `(setattr MODULE.._macro_ (quote NAME) LAMBDA)` — plain code using only
// the quote/lambda/general-call grammar the emitter already understands,
// so macro installation needs no special case in the emitter (mirroring
// spec.md §9's quasiquote design note).
func (m *Module) rewriteDefineMacro(f form.Form) (form.Form, *defineMacroPragma, error) {
	tup, ok := f.(form.Tuple)
	if !ok || len(tup) != 3 {
		return f, nil, nil
	}
	head, ok := tup[0].(form.Symbol)
	if !ok || (head != "define-macro" && head != form.Symbol(munge.Munge("define-macro"))) {
		return f, nil, nil
	}
	nameSym, ok := tup[1].(form.Symbol)
	if !ok {
		return f, nil, fmt.Errorf("define-macro: second argument must be a bare name symbol")
	}
	_, bare, wasQualified := nameSym.Qualify()
	if !wasQualified {
		bare = string(nameSym)
	}

	rewritten := form.Tuple{
		form.Symbol("setattr"),
		form.QualifiedSymbol(m.Name, "_macro_"),
		form.Tuple{form.Symbol("quote"), bare},
		tup[2],
	}
	return rewritten, &defineMacroPragma{name: bare}, nil
}

// installMacro evaluates the already-expanded `setattr` rewrite's lambda
// argument through the bridge and binds the result both into the live
// expand.Namespace (for same-module expansion) and into the bridge's own
// module object (for cross-module qualified references and for the
// emitted text's own re-execution at load time).
func (m *Module) installMacro(pragma defineMacroPragma, expanded form.Form) error {
	tup, ok := expanded.(form.Tuple)
	if !ok || len(tup) != 4 {
		return fmt.Errorf("define-macro %s: expanded form is not a setattr call", pragma.name)
	}
	lambdaForm := tup[3]
	val, err := m.eval(lambdaForm)
	if err != nil {
		return err
	}
	if err := m.Bridge.Define(m.Name, pragma.name, val, true); err != nil {
		return err
	}
	callable, ok := val.(bridge.HostCallable)
	if !ok {
		return fmt.Errorf("define-macro %s: evaluated value is not callable", pragma.name)
	}
	m.ns.Define(pragma.name, macroAdapter(callable))
	return nil
}

// macroAdapter turns a host callable (what a TextHost-evaluated lambda
// form produces) into an expand.Macro: arguments are passed as quoted
// data, matching spec.md §4.5's "macros see unevaluated arguments".
func macroAdapter(callable bridge.HostCallable) expand.Macro {
	return func(args []form.Form) (form.Form, error) {
		vals := make([]interface{}, len(args))
		for i, a := range args {
			vals[i] = bridge.FormToValue(a)
		}
		result, err := callable(vals, nil)
		if err != nil {
			return nil, err
		}
		return valueToForm(result), nil
	}
}

func valueToForm(v interface{}) form.Form {
	return bridge.ValueToForm(v)
}

// Eval evaluates an already-expanded, already-compiled Result's form
// through the configured bridge, for callers (the `run` CLI subcommand,
// the REPL) that want the resulting host value rather than just its
// emitted text.
func (m *Module) Eval(f form.Form) (interface{}, error) {
	return m.eval(f)
}

// eval evaluates f (already expanded) through the bridge, preferring the
// FormEvaluator fast path when the configured bridge supports it and
// falling back to a text round trip otherwise.
func (m *Module) eval(f form.Form) (interface{}, error) {
	if fe, ok := m.Bridge.(FormEvaluator); ok {
		return fe.EvalForm(m.Name, f)
	}
	text, err := emit.Emit(f)
	if err != nil {
		return nil, err
	}
	val, err := m.Bridge.EvalTop(text, m.Name)
	if err != nil {
		return nil, bridge.WithHostError(m.Name, text, err)
	}
	return val, nil
}

// JoinTexts concatenates a Compile result's emitted forms into a single
// host source file body, one statement-expression per line, the shape a
// CLI `run`/`print` command writes out or hands to the host.
func JoinTexts(results []Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Text
	}
	return strings.Join(lines, "\n")
}
