package reader

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hissp-lang/hissp/form"
)

func readOne(t *testing.T, src, module string) form.Form {
	t.Helper()
	r, err := New("test.lissp", strings.NewReader(src), module)
	require.NoError(t, err)
	f, err := r.Read()
	require.NoError(t, err)
	return f
}

func TestReadBasicTuple(t *testing.T) {
	f := readOne(t, "(a b c)", "m")
	require.Equal(t, form.Tuple{form.Symbol("a"), form.Symbol("b"), form.Symbol("c")}, f)
}

func TestReadQuoteShorthand(t *testing.T) {
	f := readOne(t, "'a", "m")
	require.Equal(t, form.Tuple{form.Symbol("quote"), form.Symbol("a")}, f)
}

func TestReadStringLiteralIsQuoteWrapped(t *testing.T) {
	f := readOne(t, `"hi there"`, "m")
	require.Equal(t, form.Tuple{form.Symbol("quote"), "hi there"}, f)
}

func TestReadStringEscapes(t *testing.T) {
	f := readOne(t, `"a\nb\"c"`, "m")
	require.Equal(t, form.Tuple{form.Symbol("quote"), "a\nb\"c"}, f)
}

func TestReadNumeric(t *testing.T) {
	require.Equal(t, int64(42), readOne(t, "42", "m"))
	require.Equal(t, complex(0, 2), readOne(t, "2j", "m"))
	require.Equal(t, float64(3), readOne(t, "3.0", "m"))
}

func TestReadQualifiedSymbolUnmunged(t *testing.T) {
	f := readOne(t, "builtins..print", "m")
	require.Equal(t, form.Symbol("builtins..print"), f)
}

func TestReadMethodSymbol(t *testing.T) {
	f := readOne(t, "(.upper s)", "m")
	require.Equal(t, form.Tuple{form.Symbol(".upper"), form.Symbol("s")}, f)
}

func TestReadBracketLiteral(t *testing.T) {
	f := readOne(t, "[1 2 3]", "m")
	require.Equal(t, form.Raw("[1 2 3]"), f)
}

func TestQuasiquoteSymbolQualifies(t *testing.T) {
	f := readOne(t, "`a", "mymod")
	require.Equal(t, form.Tuple{form.Symbol("quote"), "mymod..a"}, f)
}

func TestQuasiquoteQualifiedSymbolUnchanged(t *testing.T) {
	f := readOne(t, "`builtins..print", "mymod")
	require.Equal(t, form.Tuple{form.Symbol("quote"), "builtins..print"}, f)
}

func TestQuasiquoteGensymSharesHashWithinTemplate(t *testing.T) {
	f := readOne(t, "`($#x $#x)", "m")
	tup, ok := f.(form.Tuple)
	require.True(t, ok)
	// operator..add fold of two packed singleton segments.
	require.Equal(t, form.Symbol("operator..add"), tup[0])
	// Each segment is (LAMBDA (quote GENSYM)); both GENSYMs are the same.
	first := tup[1].(form.Tuple)[1]
	second := tup[2].(form.Tuple)[1]
	require.Equal(t, first, second)
}

func TestQuasiquoteGensymDiffersAcrossSiblingTemplates(t *testing.T) {
	r, err := New("test.lissp", strings.NewReader("(`$#x `$#x)"), "m")
	require.NoError(t, err)
	f, err := r.Read()
	require.NoError(t, err)
	tup := f.(form.Tuple)
	require.Len(t, tup, 2)
	require.NotEqual(t, tup[0], tup[1])
}

func TestQuasiquoteSpliceOfSoleElement(t *testing.T) {
	f := readOne(t, "`(,@xs)", "m")
	require.Equal(t, form.Symbol("xs"), f)
}

func TestUnquoteOutsideTemplateErrors(t *testing.T) {
	r, err := New("test.lissp", strings.NewReader(",x"), "m")
	require.NoError(t, err)
	_, err = r.Read()
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, UnquoteOutsideTemplate, rerr.Kind)
}

func TestDiscardReaderMacro(t *testing.T) {
	f := readOne(t, "(a _#b c)", "m")
	require.Equal(t, form.Tuple{form.Symbol("a"), form.Symbol("c")}, f)
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	r, err := New("test.lissp", strings.NewReader("a b"), "m")
	require.NoError(t, err)
	f1, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, form.Symbol("a"), f1)
	f2, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, form.Symbol("b"), f2)
	_, err = r.Read()
	require.ErrorIs(t, err, io.EOF)
}

func TestInjectWithoutEvaluatorErrors(t *testing.T) {
	r, err := New("test.lissp", strings.NewReader(".#(a b)"), "m")
	require.NoError(t, err)
	_, err = r.Read()
	require.Error(t, err)
}

type constEvaluator struct{ value form.Form }

func (c constEvaluator) EvalForm(form.Form) (form.Form, error) { return c.value, nil }

func TestInjectWithEvaluator(t *testing.T) {
	r, err := New("test.lissp", strings.NewReader(".#(a b)"), "m", WithEvaluator(constEvaluator{value: int64(7)}))
	require.NoError(t, err)
	f, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, int64(7), f)
}

type upperMacro struct{}

func (upperMacro) LoadReaderMacro(qualified string) (Macro, error) {
	return func(f form.Form) (form.Form, error) {
		s, _ := f.(form.Symbol)
		return form.Symbol(strings.ToUpper(string(s))), nil
	}, nil
}

func TestUserReaderMacroDispatch(t *testing.T) {
	reg := NewRegistry(upperMacro{})
	r, err := New("test.lissp", strings.NewReader("up#hi"), "m", WithRegistry(reg))
	require.NoError(t, err)
	f, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, form.Symbol("HI"), f)
}

// TestRoundTripReadPrintRead exercises spec.md §8's read ∘ print = id law:
// printing a read form and reading it back must reproduce the same form.
// A whole-valued float is the case that breaks without form.Print's
// formatFloat guard (3.0 round-trips through "3" back to int64(3)).
func TestRoundTripReadPrintRead(t *testing.T) {
	for _, src := range []string{
		"(a b c)",
		"'a",
		`"hi there"`,
		"42",
		"3.0",
		"3.5",
		"2j",
		"builtins..print",
		"(.upper s)",
	} {
		f := readOne(t, src, "m")
		printed := form.Print(f)
		reread := readOne(t, printed, "m")
		require.True(t, form.Equal(f, reread), "round trip of %q: %v != %v (printed %q)", src, f, reread, printed)
	}
}
