package prelude_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hissp-lang/hissp/bridge"
	"github.com/hissp-lang/hissp/compiler"
	"github.com/hissp-lang/hissp/prelude"
)

// compilePrelude compiles the embedded prelude source on a fresh module
// backed by host, the shape every real caller (compiler.Module.Require)
// uses it in.
func compilePrelude(t *testing.T, host bridge.EvaluatorBridge) *compiler.Module {
	t.Helper()
	m := compiler.NewModule(prelude.ModuleName, host)
	results, err := m.Compile("prelude.lissp", strings.NewReader(prelude.Source))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.Contains(t, r.Text, "setattr(")
		require.Contains(t, r.Text, "_macro_")
	}
	return m
}

func TestPreludeCompiles(t *testing.T) {
	compilePrelude(t, bridge.NewTextHost())
}

func TestPreludeLetExpandsToImmediatelyCalledLambda(t *testing.T) {
	host := bridge.NewTextHost()
	prel := compilePrelude(t, host)

	m := compiler.NewModule("tests.use", host)
	m.Require(prel)
	results, err := m.Compile("t.lissp", strings.NewReader(
		`(hissp.prelude.._macro_.let (x) (1) x)`))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "(lambda x: x)((1))", results[0].Text)
}

func TestPreludeThreadFirstLeftFolds(t *testing.T) {
	host := bridge.NewTextHost()
	prel := compilePrelude(t, host)

	m := compiler.NewModule("tests.use", host)
	m.Require(prel)
	results, err := m.Compile("t.lissp", strings.NewReader(
		`(hissp.prelude.._macro_.-> 1 (operator..add 2) (operator..add 3))`))
	require.NoError(t, err)
	require.Len(t, results, 1)
	// (operator..add (operator..add 1 2) 3)
	require.Equal(t,
		"__import__('operator').add(__import__('operator').add((1), (2)), (3))",
		results[0].Text)
}

func TestPreludeCondPicksFirstTruthyBranch(t *testing.T) {
	host := bridge.NewTextHost()
	prel := compilePrelude(t, host)

	m := compiler.NewModule("tests.use", host)
	m.Require(prel)
	results, err := m.Compile("t.lissp", strings.NewReader(
		`(hissp.prelude.._macro_.cond 'x 1 'default)`))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t,
		"__import__('hissp').select('x', (1), 'default')",
		results[0].Text)
}
