package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/lex"
)

func TestHostErrorWraps(t *testing.T) {
	cause := errors.New("boom")
	err := WithHostError("m", "f()", cause)
	require.Error(t, err)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "m")
}

func TestCompileErrorWraps(t *testing.T) {
	cause := errors.New("bad token")
	pos := lex.Position{Line: 3, Column: 5}
	err := WithCompileError(PhaseExpand, pos, cause)
	require.Error(t, err)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "expand")
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "read", PhaseRead.String())
	require.Equal(t, "expand", PhaseExpand.String())
	require.Equal(t, "emit", PhaseEmit.String())
	require.Equal(t, "eval", PhaseEval.String())
}

func TestTextHostEvalFormQuote(t *testing.T) {
	h := NewTextHost()
	f := form.Tuple{form.Symbol("quote"), form.Tuple{form.Symbol("a"), form.Symbol("b")}}
	got, err := h.EvalForm("m", f)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"a", "b"}, got)
}

func TestTextHostEvalFormGeneralCall(t *testing.T) {
	h := NewTextHost()
	f := form.Tuple{
		form.Symbol("operator..add"),
		form.Tuple{form.Symbol("quote"), form.Tuple{form.Symbol("x")}},
		form.Tuple{form.Symbol("quote"), form.Tuple{form.Symbol("y")}},
	}
	got, err := h.EvalForm("m", f)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"x", "y"}, got)
}

func TestTextHostEvalFormLambdaCall(t *testing.T) {
	h := NewTextHost()
	lambda := form.Tuple{form.Symbol("lambda"), form.Tuple{form.Symbol("x")}, form.Symbol("x")}
	call := form.Tuple{lambda, form.Tuple{form.Symbol("quote"), "hi"}}
	got, err := h.EvalForm("m", call)
	require.NoError(t, err)
	require.Equal(t, "hi", got)
}

func TestTextHostMethodCall(t *testing.T) {
	h := NewTextHost()
	f := form.Tuple{form.Symbol(".upper"), form.Tuple{form.Symbol("quote"), "hi"}}
	got, err := h.EvalForm("m", f)
	require.NoError(t, err)
	require.Equal(t, "HI", got)
}

func TestTextHostDefineAndResolveGlobal(t *testing.T) {
	h := NewTextHost()
	require.NoError(t, h.Define("m", "answer", int64(42), false))
	got, err := h.EvalForm("m", form.Symbol("answer"))
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}

func TestTextHostDefineMacroAndLookup(t *testing.T) {
	h := NewTextHost()
	mac := func(args []interface{}, kw map[string]interface{}) (interface{}, error) { return args[0], nil }
	require.NoError(t, h.Define("m", "ident", HostCallable(func(args []interface{}, kw map[string]interface{}) (interface{}, error) {
		return mac(args, kw)
	}), true))
	fn, ok := h.CompileMacro("m", "ident")
	require.True(t, ok)
	out, err := fn([]interface{}{"x"}, nil)
	require.NoError(t, err)
	require.Equal(t, "x", out)
}

func TestTextHostUndefinedNameErrors(t *testing.T) {
	h := NewTextHost()
	_, err := h.EvalForm("m", form.Symbol("nope"))
	require.Error(t, err)
}

func TestTextHostEvalTopUnsupported(t *testing.T) {
	h := NewTextHost()
	_, err := h.EvalTop("1 + 1", "m")
	require.Error(t, err)
}
