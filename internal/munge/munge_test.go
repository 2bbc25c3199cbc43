package munge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMungeIdentity(t *testing.T) {
	for _, s := range []string{"foo", "foo_bar", "Foo2", "_private"} {
		require.Equal(t, s, Munge(s))
	}
}

func TestMungeTable(t *testing.T) {
	cases := map[string]string{
		"+":  "xPLUS_",
		"-":  "xH_",
		"*":  "xSTAR_",
		"/":  "xSLASH_",
		"!":  "xBANG_",
		"?":  "xQUERY_",
	}
	for in, want := range cases {
		require.Equal(t, want, Munge(in))
	}
}

func TestRoundTrip(t *testing.T) {
	samples := []string{
		"foo", "foo-bar", "->", "<=>", "list/append", "a!b?c",
		"", "héllo", "x", "xPLUS_", "PLUS", "a.b",
	}
	for _, s := range samples {
		got := Demunge(Munge(s))
		require.Equal(t, s, got, "round trip for %q", s)
	}
}

func TestMungeIsLegalIdentifier(t *testing.T) {
	for _, s := range []string{"+", "->", "list/append", "héllo", ""} {
		m := Munge(s)
		require.NotEmpty(t, m)
		require.NotRegexp(t, `^[0-9]`, m)
	}
}
