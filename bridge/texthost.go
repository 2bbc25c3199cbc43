package bridge

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hissp-lang/hissp/form"
)

// TextHost is a Go-native stand-in for a real host runtime, used by this
// repository's own tests and REPL smoke-tests. It does not parse emitted
// host source text (our host is deliberately abstract per spec.md §6); it
// interprets the expanded form.Form tree it is handed directly, which
// keeps the test double exact and dependency-free. A host-text string is
// still produced by emit.Emit and carried alongside for display purposes
// (the REPL prints it), but TextHost's own evaluation never reparses it.
type TextHost struct {
	mu      sync.Mutex
	globals map[string]map[string]interface{}
	macros  map[string]map[string]interface{}
	imports map[string]map[string]interface{}
}

// NewTextHost builds an empty TextHost pre-populated with small import
// tables covering the handful of host primitives spec.md's own worked
// examples exercise ("builtins" with print, "operator" with add), plus the
// "hissp" runtime-support table described below.
func NewTextHost() *TextHost {
	h := &TextHost{
		globals: make(map[string]map[string]interface{}),
		macros:  make(map[string]map[string]interface{}),
		imports: make(map[string]map[string]interface{}),
	}
	h.imports["builtins"] = map[string]interface{}{
		"print": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			sep := " "
			if s, ok := kw["sep"].(string); ok {
				sep = s
			}
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = pyStr(a)
			}
			fmt.Println(strings.Join(parts, sep))
			return nil, nil
		}),
	}
	h.imports["operator"] = map[string]interface{}{
		"add": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("operator.add expects 2 arguments, got %d", len(args))
			}
			return concatSequences(args[0], args[1])
		}),
	}
	// The "hissp" module is a small runtime-support library, in the same
	// spirit as operator.add above: tree-shuffling primitives that
	// prelude/prelude.lissp's macros call into rather than re-deriving
	// list-folding and conditional selection from the two special forms.
	h.imports["hissp"] = map[string]interface{}{
		"select": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("hissp.select expects 3 arguments, got %d", len(args))
			}
			if truthy(args[0]) {
				return args[1], nil
			}
			return args[2], nil
		}),
		"cond_build": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("hissp.cond_build expects 1 argument, got %d", len(args))
			}
			clauses, ok := args[0].([]interface{})
			if !ok {
				return nil, fmt.Errorf("hissp.cond_build expects a sequence of clauses")
			}
			return condBuild(clauses), nil
		}),
		"thread_first": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("hissp.thread_first expects 2 arguments, got %d", len(args))
			}
			forms, ok := args[1].([]interface{})
			if !ok {
				return nil, fmt.Errorf("hissp.thread_first expects a sequence of forms")
			}
			return threadFirst(args[0], forms)
		}),
		// let_build constructs the lambda-call tuple directly in Go rather
		// than via a quasiquote template: spec.md §4.3 auto-qualifies every
		// un-unquoted symbol in a template against the current module, which
		// would turn a literal `lambda` head into `module..lambda` and hide
		// it from the expander's special-form check (spec.md §4.5 matches
		// only the bare symbols "quote"/"lambda"). Building the tuple as
		// plain data sidesteps that qualification pass entirely.
		"let_build": builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("hissp.let_build expects 3 arguments, got %d", len(args))
			}
			names, ok := args[0].([]interface{})
			if !ok {
				return nil, fmt.Errorf("hissp.let_build expects a sequence of names")
			}
			values, ok := args[1].([]interface{})
			if !ok {
				return nil, fmt.Errorf("hissp.let_build expects a sequence of values")
			}
			body := args[2]
			lambdaForm := []interface{}{"lambda", names, body}
			call := make([]interface{}, 0, len(values)+1)
			call = append(call, lambdaForm)
			call = append(call, values...)
			return call, nil
		}),
	}
	return h
}

// truthy mirrors the host's notion of truthiness closely enough for
// hissp..select's purposes: nil, zero numbers, empty strings and empty
// sequences are false; everything else is true.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []interface{}:
		return len(x) != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// condBuild folds a flat clause list [test1, then1, test2, then2, …,
// default] into a right-nested hissp..select call tree, the data-only
// half of prelude/prelude.lissp's cond macro (the macro supplies the
// clauses as unevaluated forms; this just reshapes them).
func condBuild(clauses []interface{}) interface{} {
	switch len(clauses) {
	case 0:
		return []interface{}{"quote", []interface{}{}}
	case 1:
		return clauses[0]
	default:
		test, then := clauses[0], clauses[1]
		rest := condBuild(clauses[2:])
		return []interface{}{"hissp..select", test, then, rest}
	}
}

// threadFirst folds forms left-to-right, inserting acc as the new first
// argument of each successive call tuple — the data-only half of
// prelude/prelude.lissp's -> macro.
func threadFirst(x interface{}, forms []interface{}) (interface{}, error) {
	acc := x
	for _, f := range forms {
		tup, ok := f.([]interface{})
		if !ok || len(tup) == 0 {
			return nil, fmt.Errorf("-> expects each form to be a non-empty call tuple")
		}
		next := make([]interface{}, 0, len(tup)+1)
		next = append(next, tup[0], acc)
		next = append(next, tup[1:]...)
		acc = next
	}
	return acc, nil
}

// HostCallable is a host-native callable exposed to evaluated code. It is
// exported so collaborators outside this package (the compiler, installing
// a macro whose value TextHost just evaluated) can invoke a value EvalForm
// returned without reaching back into TextHost.
type HostCallable func(args []interface{}, kw map[string]interface{}) (interface{}, error)

// builtinFunc is an alias kept for readability within this file.
type builtinFunc = HostCallable

func (h *TextHost) ensureModule(module string) {
	if _, ok := h.globals[module]; !ok {
		h.globals[module] = make(map[string]interface{})
	}
	if _, ok := h.macros[module]; !ok {
		h.macros[module] = make(map[string]interface{})
	}
}

// Define implements EvaluatorBridge. value's shape depends on the caller:
// the compiler installs compile-time macros (a HostCallable wrapping a
// lambda) under macro=true; the reader-macro registry loader (when backed
// by this host) installs reader macros (a func(form.Form) (form.Form,
// error)) the same way. TextHost stores whichever shape it is given and
// leaves the type assertion to the reader at lookup time.
func (h *TextHost) Define(module, name string, value interface{}, macro bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureModule(module)
	if macro {
		h.macros[module][name] = value
		return nil
	}
	h.globals[module][name] = value
	return nil
}

// EvalTop implements EvaluatorBridge by a no-op that reports the feature is
// unsupported on this test double: real evaluation goes through EvalForm.
func (h *TextHost) EvalTop(text, module string) (interface{}, error) {
	return nil, fmt.Errorf("TextHost does not evaluate host source text directly; use EvalForm")
}

// EvalForm evaluates an already-expanded form directly against module's
// globals, the path the compiler and reader's .# injection use with this
// test double.
func (h *TextHost) EvalForm(module string, f form.Form) (interface{}, error) {
	h.mu.Lock()
	h.ensureModule(module)
	h.mu.Unlock()
	return h.eval(module, f)
}

// ReaderMacro looks up a previously Define(..., macro=true)'d reader-macro
// function, used by a reader.Loader backed by this host.
func (h *TextHost) ReaderMacro(module, name string) (func(form.Form) (form.Form, error), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ns, ok := h.macros[module]
	if !ok {
		return nil, false
	}
	raw, ok := ns[name]
	if !ok {
		return nil, false
	}
	fn, ok := raw.(func(form.Form) (form.Form, error))
	return fn, ok
}

// CompileMacro looks up a previously Define(..., macro=true)'d compile-time
// macro value (a HostCallable), used by the compiler to re-wire a module's
// expand.Namespace from host state (e.g. across a REPL session restart).
func (h *TextHost) CompileMacro(module, name string) (HostCallable, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ns, ok := h.macros[module]
	if !ok {
		return nil, false
	}
	raw, ok := ns[name]
	if !ok {
		return nil, false
	}
	fn, ok := raw.(HostCallable)
	return fn, ok
}

func (h *TextHost) eval(module string, f form.Form) (interface{}, error) {
	switch v := f.(type) {
	case form.Tuple:
		return h.evalTuple(module, v)
	case form.Symbol:
		return h.resolve(module, string(v))
	case string:
		return v, nil
	case form.Raw:
		return v, nil
	default:
		return v, nil
	}
}

func (h *TextHost) evalTuple(module string, v form.Tuple) (interface{}, error) {
	if len(v) == 0 {
		return []interface{}{}, nil
	}
	if s, ok := v[0].(form.Symbol); ok {
		switch {
		case s == "quote":
			if len(v) != 2 {
				return nil, fmt.Errorf("quote takes exactly one argument")
			}
			return FormToValue(v[1]), nil
		case s == "lambda":
			return h.makeClosure(module, v), nil
		case s.IsMethod():
			return h.evalMethodCall(module, v)
		}
	}
	return h.evalGeneralCall(module, v)
}

// FormToValue converts a quoted form into the plain Go value TextHost's
// object model uses for it (Tuple -> []interface{}, Symbol -> string,
// everything else as-is). Exported so the compiler can pack macro
// arguments the same way before calling a TextHost-evaluated macro
// closure.
func FormToValue(f form.Form) interface{} {
	switch v := f.(type) {
	case form.Tuple:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = FormToValue(e)
		}
		return out
	case form.Symbol:
		return string(v)
	default:
		return v
	}
}

// ValueToForm is FormToValue's inverse, used to turn a TextHost macro's
// returned value back into a form.Form the expander can continue over.
func ValueToForm(v interface{}) form.Form {
	switch x := v.(type) {
	case []interface{}:
		out := make(form.Tuple, len(x))
		for i, e := range x {
			out[i] = ValueToForm(e)
		}
		return out
	case string:
		return form.Symbol(x)
	case form.Form:
		return x
	default:
		return form.Raw(fmt.Sprint(x))
	}
}

func (h *TextHost) resolve(module, name string) (interface{}, error) {
	sym := form.Symbol(name)
	if pkg, attr, ok := sym.Qualify(); ok {
		if tbl, ok := h.imports[pkg]; ok {
			if val, ok := tbl[attr]; ok {
				return val, nil
			}
		}
		if tbl, ok := h.globals[pkg]; ok {
			if val, ok := tbl[attr]; ok {
				return val, nil
			}
		}
		return nil, fmt.Errorf("no binding for %s", name)
	}
	if val, ok := h.globals[module][name]; ok {
		return val, nil
	}
	if tbl, ok := h.imports["builtins"]; ok {
		if val, ok := tbl[name]; ok {
			return val, nil
		}
	}
	return nil, fmt.Errorf("undefined name %q in module %s", name, module)
}

func (h *TextHost) evalGeneralCall(module string, v form.Tuple) (interface{}, error) {
	headVal, err := h.eval(module, v[0])
	if err != nil {
		return nil, err
	}
	args, kw, err := h.evalArgs(module, v[1:])
	if err != nil {
		return nil, err
	}
	return h.call(headVal, args, kw)
}

func (h *TextHost) evalMethodCall(module string, v form.Tuple) (interface{}, error) {
	if len(v) < 2 {
		return nil, fmt.Errorf("method call requires a receiver")
	}
	recv, err := h.eval(module, v[1])
	if err != nil {
		return nil, err
	}
	method := string(v[0].(form.Symbol))[1:]
	args, kw, err := h.evalArgs(module, v[2:])
	if err != nil {
		return nil, err
	}
	return callMethod(recv, method, args, kw)
}

func (h *TextHost) evalArgs(module string, rest []form.Form) ([]interface{}, map[string]interface{}, error) {
	idx := -1
	for i, a := range rest {
		if s, ok := a.(form.Symbol); ok && s == ":" {
			idx = i
			break
		}
	}
	positional := rest
	var paired []form.Form
	if idx >= 0 {
		positional = rest[:idx]
		paired = rest[idx+1:]
	}
	args := make([]interface{}, 0, len(positional))
	for _, p := range positional {
		val, err := h.eval(module, p)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, val)
	}
	kw := map[string]interface{}{}
	for i := 0; i+1 < len(paired); i += 2 {
		name, _ := paired[i].(form.Symbol)
		val, err := h.eval(module, paired[i+1])
		if err != nil {
			return nil, nil, err
		}
		switch name {
		case ":*":
			if seq, ok := val.([]interface{}); ok {
				args = append(args, seq...)
			}
		case ":**":
			if m, ok := val.(map[string]interface{}); ok {
				for k, v := range m {
					kw[k] = v
				}
			}
		default:
			kw[string(name)] = val
		}
	}
	return args, kw, nil
}

func (h *TextHost) call(callee interface{}, args []interface{}, kw map[string]interface{}) (interface{}, error) {
	switch fn := callee.(type) {
	case builtinFunc:
		return fn(args, kw)
	case func([]interface{}, map[string]interface{}) (interface{}, error):
		return fn(args, kw)
	default:
		return nil, fmt.Errorf("value is not callable: %#v", callee)
	}
}

func (h *TextHost) makeClosure(module string, v form.Tuple) builtinFunc {
	params, _ := v[1].(form.Tuple)
	body := v[2:]
	spec := parseParams(params)
	return builtinFunc(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
		frame, err := spec.bind(h, module, args, kw)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		saved := h.globals[module]
		merged := make(map[string]interface{}, len(saved)+len(frame))
		for k, val := range saved {
			merged[k] = val
		}
		for k, val := range frame {
			merged[k] = val
		}
		h.globals[module] = merged
		h.mu.Unlock()
		defer func() {
			h.mu.Lock()
			h.globals[module] = saved
			h.mu.Unlock()
		}()

		var result interface{}
		for _, b := range body {
			result, err = h.eval(module, b)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	})
}

// kwParam is one paired-section entry that binds by keyword, carrying
// either a default expression or spec.md's ":?" no-default marker.
type kwParam struct {
	name        string
	hasDefault  bool
	defaultExpr form.Form
}

// paramSpec is a parameter tuple of the shape spec.md §4.6 describes:
// `(positional… : [pair-specifier value]…)`, split into the pieces
// TextHost's binder needs. Parsed once at lambda-creation time so every
// call reuses the same plan.
type paramSpec struct {
	positional []string
	restName   string
	kwOnly     []kwParam
	restKwName string
}

// parseParams reads a lambda parameter tuple per spec.md §4.6: names
// before the lone `:` bind positionally; after it, `:*`/`:**` specifiers
// name rest-positional/rest-keyword parameters (their "value" slot is
// really the bound name), and any other specifier is a keyword-only
// parameter whose value is its default expression, or the literal `:?`
// marking it required.
func parseParams(params form.Tuple) paramSpec {
	var spec paramSpec
	i := 0
	for i < len(params) {
		s, ok := params[i].(form.Symbol)
		if ok && s == ":" {
			i++
			break
		}
		if ok {
			spec.positional = append(spec.positional, string(s))
		}
		i++
	}
	for i+1 < len(params) {
		specifier, value := params[i], params[i+1]
		i += 2
		sym, _ := specifier.(form.Symbol)
		switch sym {
		case ":*":
			if name, ok := value.(form.Symbol); ok {
				spec.restName = string(name)
			}
		case ":**":
			if name, ok := value.(form.Symbol); ok {
				spec.restKwName = string(name)
			}
		default:
			vs, isNoDefault := value.(form.Symbol)
			spec.kwOnly = append(spec.kwOnly, kwParam{
				name:        string(sym),
				hasDefault:  !(isNoDefault && vs == ":?"),
				defaultExpr: value,
			})
		}
	}
	return spec
}

// bind applies an actual call's args/kw against spec, producing the frame
// of local bindings a closure body runs with.
func (spec paramSpec) bind(h *TextHost, module string, args []interface{}, kw map[string]interface{}) (map[string]interface{}, error) {
	frame := make(map[string]interface{})
	for i, n := range spec.positional {
		if i < len(args) {
			frame[n] = args[i]
		} else if val, ok := kw[n]; ok {
			frame[n] = val
		} else {
			return nil, fmt.Errorf("missing argument %q", n)
		}
	}
	if spec.restName != "" {
		var rest []interface{}
		if len(args) > len(spec.positional) {
			rest = append(rest, args[len(spec.positional):]...)
		}
		frame[spec.restName] = rest
	}
	consumed := make(map[string]bool, len(spec.kwOnly))
	for _, p := range spec.kwOnly {
		consumed[p.name] = true
		if val, ok := kw[p.name]; ok {
			frame[p.name] = val
			continue
		}
		if !p.hasDefault {
			return nil, fmt.Errorf("missing required keyword argument %q", p.name)
		}
		val, err := h.eval(module, p.defaultExpr)
		if err != nil {
			return nil, err
		}
		frame[p.name] = val
	}
	if spec.restKwName != "" {
		restKw := make(map[string]interface{})
		for k, v := range kw {
			if !consumed[k] {
				restKw[k] = v
			}
		}
		frame[spec.restKwName] = restKw
	}
	return frame, nil
}

func pyStr(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = pyRepr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func pyRepr(v interface{}) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return pyStr(v)
}

func concatSequences(a, b interface{}) (interface{}, error) {
	as, ok1 := a.([]interface{})
	bs, ok2 := b.([]interface{})
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("operator.add requires two sequences")
	}
	out := make([]interface{}, 0, len(as)+len(bs))
	out = append(out, as...)
	out = append(out, bs...)
	return out, nil
}

func callMethod(recv interface{}, method string, args []interface{}, _ map[string]interface{}) (interface{}, error) {
	s, ok := recv.(string)
	if !ok {
		return nil, fmt.Errorf("method .%s: unsupported receiver type %T", method, recv)
	}
	switch method {
	case "upper":
		return strings.ToUpper(s), nil
	case "lower":
		return strings.ToLower(s), nil
	default:
		return nil, fmt.Errorf("method .%s is not implemented on TextHost strings", method)
	}
}
