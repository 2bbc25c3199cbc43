package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []Token {
	t.Helper()
	l, err := New("<test>", strings.NewReader(src))
	require.NoError(t, err)
	var out []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			return out
		}
		out = append(out, tok)
	}
}

func TestLexBasicTuple(t *testing.T) {
	toks := tokens(t, `(print "Hello, World!")`)
	require.Len(t, toks, 4)
	require.Equal(t, Open, toks[0].Kind)
	require.Equal(t, Symbol, toks[1].Kind)
	require.Equal(t, "print", toks[1].Value)
	require.Equal(t, String, toks[2].Kind)
	require.Equal(t, Close, toks[3].Kind)
}

func TestLexSigils(t *testing.T) {
	toks := tokens(t, "'x `x ,x ,@x _#x .#x $#x")
	kinds := []Kind{Quote, Symbol, Quasi, Symbol, Unquote, Symbol, Splice, Symbol, Discard, Symbol, Inject, Symbol, Gensym, Symbol}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		require.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestLexBracketLiteral(t *testing.T) {
	toks := tokens(t, `[4,'5',6]`)
	require.Len(t, toks, 1)
	require.Equal(t, Bracket, toks[0].Kind)
	require.Equal(t, `[4,'5',6]`, toks[0].Value)
}

func TestLexMacroName(t *testing.T) {
	toks := tokens(t, `foo.bar#baz`)
	require.Len(t, toks, 2)
	require.Equal(t, Macro, toks[0].Kind)
	require.Equal(t, "foo.bar", toks[0].Value)
	require.Equal(t, Symbol, toks[1].Kind)
}

func TestLexShebangSkipped(t *testing.T) {
	toks := tokens(t, "#!/usr/bin/env hissp\n(a)")
	require.Len(t, toks, 3)
	require.Equal(t, Open, toks[0].Kind)
}

func TestLexLineCommentSkipped(t *testing.T) {
	toks := tokens(t, "(a ; trailing comment\n b)")
	require.Len(t, toks, 4)
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	l, err := New("<test>", strings.NewReader(`(print "oops)`))
	require.NoError(t, err)
	_, err = l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	require.Error(t, err)
}
