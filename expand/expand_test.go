package expand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hissp-lang/hissp/form"
)

func TestExpandQuoteIsNotRecursed(t *testing.T) {
	env := MapEnvironment{}
	inner := form.Tuple{form.Symbol("never-called"), form.Symbol("x")}
	f := form.Tuple{form.Symbol("quote"), inner}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestExpandUnqualifiedMacro(t *testing.T) {
	ns := NewNamespace()
	ns.Define("double", func(args []form.Form) (form.Form, error) {
		return form.Tuple{form.Symbol("+"), args[0], args[0]}, nil
	})
	env := MapEnvironment{"m": ns}
	f := form.Tuple{form.Symbol("double"), form.Symbol("x")}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	require.Equal(t, form.Tuple{form.Symbol("+"), form.Symbol("x"), form.Symbol("x")}, got)
}

func TestExpandQualifiedMacro(t *testing.T) {
	other := NewNamespace()
	other.Define("twice", func(args []form.Form) (form.Form, error) {
		return form.Tuple{form.Symbol("+"), args[0], args[0]}, nil
	})
	env := MapEnvironment{"other": other}
	f := form.Tuple{form.Symbol("other.._macro_.twice"), form.Symbol("x")}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	require.Equal(t, form.Tuple{form.Symbol("+"), form.Symbol("x"), form.Symbol("x")}, got)
}

func TestExpandFixedPoint(t *testing.T) {
	ns := NewNamespace()
	calls := 0
	ns.Define("step", func(args []form.Form) (form.Form, error) {
		calls++
		if calls < 3 {
			return form.Tuple{form.Symbol("step"), args[0]}, nil
		}
		return form.Symbol("done"), nil
	})
	env := MapEnvironment{"m": ns}
	f := form.Tuple{form.Symbol("step"), form.Symbol("x")}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	require.Equal(t, form.Symbol("done"), got)
	require.Equal(t, 3, calls)
}

func TestExpandMacroLoopError(t *testing.T) {
	ns := NewNamespace()
	ns.Define("loop", func(args []form.Form) (form.Form, error) {
		return form.Tuple{form.Symbol("loop"), args[0]}, nil
	})
	env := MapEnvironment{"m": ns}
	f := form.Tuple{form.Symbol("loop"), form.Symbol("x")}
	_, err := New("m", env).WithLoopBound(5).Expand(f)
	require.Error(t, err)
	var loopErr *LoopError
	require.ErrorAs(t, err, &loopErr)
	require.Equal(t, 5, loopErr.Depth)
}

func TestExpandMacroErrorWraps(t *testing.T) {
	ns := NewNamespace()
	cause := errors.New("boom")
	ns.Define("bad", func(args []form.Form) (form.Form, error) {
		return nil, cause
	})
	env := MapEnvironment{"m": ns}
	f := form.Tuple{form.Symbol("bad"), form.Symbol("x")}
	_, err := New("m", env).Expand(f)
	require.Error(t, err)
	var merr *MacroError
	require.ErrorAs(t, err, &merr)
	require.ErrorIs(t, err, cause)
}

func TestExpandRecursesOrdinaryChildren(t *testing.T) {
	ns := NewNamespace()
	ns.Define("mac", func(args []form.Form) (form.Form, error) {
		return form.Symbol("replaced"), nil
	})
	env := MapEnvironment{"m": ns}
	f := form.Tuple{form.Symbol("f"), form.Tuple{form.Symbol("mac"), form.Symbol("x")}}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	require.Equal(t, form.Tuple{form.Symbol("f"), form.Symbol("replaced")}, got)
}

func TestExpandLambdaLeavesNamesExpandsDefaults(t *testing.T) {
	ns := NewNamespace()
	ns.Define("mac", func(args []form.Form) (form.Form, error) {
		return form.Symbol("replaced"), nil
	})
	env := MapEnvironment{"m": ns}
	params := form.Tuple{
		form.Symbol("a"), form.Symbol(":"),
		form.Symbol("e"), form.Tuple{form.Symbol("mac"), form.Symbol("x")},
	}
	f := form.Tuple{form.Symbol("lambda"), params, form.Symbol("a")}
	got, err := New("m", env).Expand(f)
	require.NoError(t, err)
	want := form.Tuple{form.Symbol("lambda"),
		form.Tuple{form.Symbol("a"), form.Symbol(":"), form.Symbol("e"), form.Symbol("replaced")},
		form.Symbol("a"),
	}
	require.Equal(t, want, got)
}
