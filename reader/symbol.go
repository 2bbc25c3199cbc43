package reader

import (
	"strings"

	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/internal/munge"
)

// mungeSymbol munges raw symbol text per spec.md §4.3, special-casing the
// three symbol shapes whose separators must survive munging untouched: the
// cross-module macro reference's ".._macro_." infix (spec.md §4.5; checked
// first since it itself contains "..", which the plain qualified-symbol
// case below would otherwise match the wrong half of), the qualified-symbol
// double-dot (spec.md §3 "Qualified symbol"), and the leading dot of a
// method symbol.
func mungeSymbol(raw string) form.Symbol {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, ".") && !strings.HasPrefix(raw, "..") && len(raw) > 1 {
		return form.Symbol("." + munge.Munge(raw[1:]))
	}
	if i := strings.Index(raw, form.MacroSep); i >= 0 {
		pkg, name := raw[:i], raw[i+len(form.MacroSep):]
		return form.Symbol(mungeDotted(pkg) + form.MacroSep + munge.Munge(name))
	}
	if i := strings.Index(raw, ".."); i >= 0 {
		pkg, name := raw[:i], raw[i+2:]
		return form.Symbol(mungeDotted(pkg) + ".." + munge.Munge(name))
	}
	return form.Symbol(munge.Munge(raw))
}

// mungeDotted munges each single-dot-separated segment of a package path
// independently, preserving the dots themselves (spec.md §3: "PACKAGE may
// itself contain single dots").
func mungeDotted(pkg string) string {
	if pkg == "" {
		return pkg
	}
	parts := strings.Split(pkg, ".")
	for i, p := range parts {
		parts[i] = munge.Munge(p)
	}
	return strings.Join(parts, ".")
}

func isQualifiedOrMethod(s form.Symbol) bool {
	if s.IsMethod() {
		return true
	}
	_, _, ok := s.Qualify()
	return ok
}
