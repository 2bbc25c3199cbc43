// Package emit implements the [EMITTER] of spec.md §4.6: it turns a fully
// macro-expanded form.Form into host-language source text. The dispatch
// style (a type switch per form shape, one compile function per emission
// rule) follows the teacher's codegen package's per-AST-node compile
// functions, generalized from HLB's fixed statement/expression node types
// to Hissp's single open-ended Form shape.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hissp-lang/hissp/form"
)

// Emit compiles f into a single host expression.
func Emit(f form.Form) (string, error) {
	return compile(f)
}

func compile(f form.Form) (string, error) {
	switch v := f.(type) {
	case form.Tuple:
		if len(v) == 0 {
			return "()", nil
		}
		if s, ok := v[0].(form.Symbol); ok {
			switch {
			case s == "quote":
				if len(v) != 2 {
					return "", &Error{Kind: BadPairing, Msg: "quote takes exactly one argument"}
				}
				return quoteData(v[1])
			case s == "lambda":
				return compileLambda(v)
			case s.IsMethod():
				return compileMethodCall(v)
			}
		}
		return compileGeneralCall(v)
	default:
		return compileAtomExpr(f)
	}
}

func compileAtomExpr(f form.Form) (string, error) {
	switch v := f.(type) {
	case form.Symbol:
		return compileSymbolRef(string(v)), nil
	case string:
		// A bare payload string reaching the emitter outside a (quote ...)
		// wrapper can only come from a reader macro or .# injection result
		// (reader.go always wraps literal string tokens in quote); treat it
		// the same as quoted data.
		return quoteHostString(v), nil
	case form.Raw:
		return string(v), nil
	case int:
		return "(" + strconv.Itoa(v) + ")", nil
	case int64:
		return "(" + strconv.FormatInt(v, 10) + ")", nil
	case float64:
		return "(" + formatFloat(v) + ")", nil
	case complex128:
		return "(" + fmt.Sprintf("%gj", imag(v)) + ")", nil
	case bool:
		if v {
			return "(True)", nil
		}
		return "(False)", nil
	default:
		return "", &Error{Kind: UnknownHead, Msg: fmt.Sprintf("cannot emit atom of type %T", f)}
	}
}

func compileSymbolRef(s string) string {
	sym := form.Symbol(s)
	if pkg, name, ok := sym.Qualify(); ok {
		return fmt.Sprintf("__import__(%s).%s", quoteHostString(pkg), name)
	}
	return s
}

// quoteData reconstructs f as runtime data: the single bridge between
// compile-time tree shape and a runtime value (spec.md §4.6).
func quoteData(f form.Form) (string, error) {
	switch v := f.(type) {
	case form.Tuple:
		if len(v) == 0 {
			return "()", nil
		}
		parts := make([]string, len(v))
		for i, e := range v {
			s, err := quoteData(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)", nil
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case form.Symbol:
		return quoteHostString(string(v)), nil
	case string:
		return quoteHostString(v), nil
	case form.Raw:
		return string(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return formatFloat(v), nil
	case complex128:
		return fmt.Sprintf("%gj", imag(v)), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	default:
		return "", &Error{Kind: UnknownHead, Msg: fmt.Sprintf("cannot quote atom of type %T", f)}
	}
}

// formatFloat renders a float64 so the host reads it back as a float, not
// an int: Go's shortest round-trip formatting drops the fractional part for
// whole numbers (3 vs 3.0), which would change the value's host type.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quoteHostString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func compileLambda(v form.Tuple) (string, error) {
	if len(v) < 3 {
		return "", &Error{Kind: BadParamTuple, Msg: "lambda requires a parameter tuple and at least one body expression"}
	}
	params, ok := v[1].(form.Tuple)
	if !ok {
		return "", &Error{Kind: BadParamTuple, Msg: "lambda parameter list must be a tuple"}
	}
	sig, err := compileParams(params)
	if err != nil {
		return "", err
	}
	body := v[2:]
	var bodyStr string
	if len(body) == 1 {
		s, err := compile(body[0])
		if err != nil {
			return "", err
		}
		bodyStr = s
	} else {
		parts := make([]string, len(body))
		for i, e := range body {
			s, err := compile(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		// Multiple body expressions have no host statement-sequencing
		// counterpart (spec.md §1 Non-goal: no statement forms), so all are
		// evaluated by being placed into a tuple literal and only the last
		// value is kept.
		bodyStr = "(" + strings.Join(parts, ", ") + ",)[-1]"
	}
	if sig == "" {
		return fmt.Sprintf("(lambda: %s)", bodyStr), nil
	}
	return fmt.Sprintf("(lambda %s: %s)", sig, bodyStr), nil
}

func compileParams(params form.Tuple) (string, error) {
	idx := -1
	for i, e := range params {
		if s, ok := e.(form.Symbol); ok && s == ":" {
			idx = i
			break
		}
	}
	positional := params
	var paired form.Tuple
	if idx >= 0 {
		positional = params[:idx]
		paired = params[idx+1:]
	}

	var parts []string
	for _, e := range positional {
		name, err := paramName(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
	}

	if len(paired)%2 != 0 {
		return "", &Error{Kind: BadParamTuple, Msg: "paired parameters must come in (specifier value) pairs"}
	}
	for i := 0; i < len(paired); i += 2 {
		specifier, value := paired[i], paired[i+1]
		spec, ok := specifier.(form.Symbol)
		if !ok {
			return "", &Error{Kind: BadParamTuple, Msg: "parameter specifier must be a symbol"}
		}
		switch spec {
		case ":*":
			if isNoDefaultMarker(value) {
				parts = append(parts, "*")
				continue
			}
			name, err := paramName(value)
			if err != nil {
				return "", err
			}
			parts = append(parts, "*"+name)
		case ":**":
			name, err := paramName(value)
			if err != nil {
				return "", err
			}
			parts = append(parts, "**"+name)
		default:
			name := string(spec)
			if isNoDefaultMarker(value) {
				parts = append(parts, name)
				continue
			}
			valStr, err := compile(value)
			if err != nil {
				return "", err
			}
			parts = append(parts, name+"="+valStr)
		}
	}
	return strings.Join(parts, ", "), nil
}

func isNoDefaultMarker(f form.Form) bool {
	s, ok := f.(form.Symbol)
	return ok && s == ":?"
}

func paramName(f form.Form) (string, error) {
	switch v := f.(type) {
	case form.Symbol:
		return string(v), nil
	case string:
		return v, nil
	default:
		return "", &Error{Kind: BadParamTuple, Msg: fmt.Sprintf("parameter name must be a symbol, got %T", f)}
	}
}

func compileGeneralCall(v form.Tuple) (string, error) {
	headStr, err := compile(v[0])
	if err != nil {
		return "", err
	}
	argsStr, err := compileArgs(v[1:])
	if err != nil {
		return "", err
	}
	return headStr + "(" + argsStr + ")", nil
}

func compileMethodCall(v form.Tuple) (string, error) {
	if len(v) < 2 {
		return "", &Error{Kind: BadParamTuple, Msg: "method call requires a receiver"}
	}
	recv, err := compile(v[1])
	if err != nil {
		return "", err
	}
	method := string(v[0].(form.Symbol))[1:]
	argsStr, err := compileArgs(v[2:])
	if err != nil {
		return "", err
	}
	return recv + "." + method + "(" + argsStr + ")", nil
}

func compileArgs(args []form.Form) (string, error) {
	idx := -1
	for i, a := range args {
		if s, ok := a.(form.Symbol); ok && s == ":" {
			idx = i
			break
		}
	}
	positional := args
	var paired []form.Form
	if idx >= 0 {
		positional = args[:idx]
		paired = args[idx+1:]
	}

	var parts []string
	for _, p := range positional {
		s, err := compile(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	if len(paired)%2 != 0 {
		return "", &Error{Kind: BadPairing, Msg: "paired call arguments must come in (marker value) pairs"}
	}
	for i := 0; i < len(paired); i += 2 {
		marker, value := paired[i], paired[i+1]
		ms, ok := marker.(form.Symbol)
		if !ok {
			return "", &Error{Kind: BadPairing, Msg: "call keyword marker must be a symbol"}
		}
		valStr, err := compile(value)
		if err != nil {
			return "", err
		}
		switch ms {
		case ":*":
			parts = append(parts, "*"+valStr)
		case ":**":
			parts = append(parts, "**"+valStr)
		default:
			parts = append(parts, string(ms)+"="+valStr)
		}
	}
	return strings.Join(parts, ", "), nil
}
