package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hissp-lang/hissp/form"
)

func TestEmitSimpleCall(t *testing.T) {
	f := form.Tuple{form.Symbol("print"), form.Tuple{form.Symbol("quote"), "Hello, World!"}}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `print('Hello, World!')`, got)
}

func TestEmitQualifiedCallWithKeywordArg(t *testing.T) {
	f := form.Tuple{
		form.Symbol("builtins..print"),
		int64(1), complex(0, 2), float64(3),
		form.Raw("[4,'5',6]"),
		form.Symbol(":"), form.Symbol("sep"), form.Tuple{form.Symbol("quote"), ":"},
	}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `__import__('builtins').print((1), (2j), (3.0), [4,'5',6], sep=':')`, got)
}

func TestQuoteReconstructsNestedQuoteAsData(t *testing.T) {
	call := form.Tuple{
		form.Symbol("builtins..print"),
		int64(1), complex(0, 2), float64(3),
		form.Raw("[4,'5',6]"),
		form.Symbol(":"), form.Symbol("sep"), form.Tuple{form.Symbol("quote"), ":"},
	}
	f := form.Tuple{form.Symbol("quote"), call}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `('builtins..print', 1, 2j, 3.0, [4,'5',6], ':', 'sep', ('quote', ':'))`, got)
}

func TestEmitLambdaFullSignature(t *testing.T) {
	params := form.Tuple{
		form.Symbol("a"), form.Symbol("b"), form.Symbol(":"),
		form.Symbol("e"), int64(1),
		form.Symbol("f"), int64(2),
		form.Symbol(":*"), form.Symbol("args"),
		form.Symbol("h"), int64(4),
		form.Symbol("i"), form.Symbol(":?"),
		form.Symbol("j"), int64(1),
		form.Symbol(":**"), form.Symbol("kw"),
	}
	f := form.Tuple{form.Symbol("lambda"), params, int64(42)}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `(lambda a, b, e=(1), f=(2), *args, h=(4), i, j=(1), **kw: (42))`, got)
}

func TestEmitLambdaBareStarKeywordOnly(t *testing.T) {
	params := form.Tuple{
		form.Symbol(":"),
		form.Symbol(":*"), form.Symbol(":?"),
		form.Symbol("x"), form.Symbol(":?"),
	}
	f := form.Tuple{form.Symbol("lambda"), params, form.Symbol("x")}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `(lambda *, x: x)`, got)
}

func TestEmitMethodCall(t *testing.T) {
	f := form.Tuple{form.Symbol(".upper"), form.Symbol("s")}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `s.upper()`, got)
}

func TestEmitEmptyTuple(t *testing.T) {
	got, err := Emit(form.Tuple{})
	require.NoError(t, err)
	require.Equal(t, "()", got)
}

func TestEmitMultiExpressionLambdaBody(t *testing.T) {
	params := form.Tuple{form.Symbol("x")}
	f := form.Tuple{form.Symbol("lambda"), params,
		form.Tuple{form.Symbol(".append"), form.Symbol("x"), int64(1)},
		form.Symbol("x"),
	}
	got, err := Emit(f)
	require.NoError(t, err)
	require.Equal(t, `(lambda x: (x.append((1)), x,)[-1])`, got)
}
