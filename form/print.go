package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders f as Lissp source text that the reader would re-accept as
// an equal form (spec.md §4.4, §8 "read ∘ print = id"). quoted tracks
// whether f is being printed underneath a (quote ...) head, since the tree
// itself carries no symbol/string tag (spec.md §9).
func Print(f Form) string {
	var b strings.Builder
	print1(&b, f, false)
	return b.String()
}

func print1(b *strings.Builder, f Form, quoted bool) {
	switch v := f.(type) {
	case Tuple:
		if len(v) == 0 {
			b.WriteString("()")
			return
		}
		if !quoted {
			if head, ok := Head(f); ok {
				if s, ok := head.(Symbol); ok && s == "quote" && len(v) == 2 {
					// A plain string argument came from reading a literal
					// "..." token (reader.go): print it back as the literal
					// directly, with no added '-shorthand, so read∘print
					// doesn't grow an extra quote layer each round trip.
					if payload, ok := v[1].(string); ok {
						b.WriteString(quoteString(payload))
						return
					}
					b.WriteByte('\'')
					print1(b, v[1], true)
					return
				}
			}
		}
		b.WriteByte('(')
		for i, e := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			print1(b, e, quoted)
		}
		b.WriteByte(')')
	case Symbol:
		b.WriteString(string(v))
	case string:
		if quoted {
			b.WriteString(quoteString(v))
		} else {
			b.WriteString(v)
		}
	case nil:
		b.WriteString("()")
	default:
		b.WriteString(printAtom(v))
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
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
	b.WriteByte('"')
	return b.String()
}

// formatFloat renders a float64 so the reader parses it back as a float,
// not an int: Go's shortest round-trip formatting drops the fractional
// part for whole numbers (3 vs 3.0), which would change the value's kind
// on the next read (emit/emit.go's formatFloat solves the same problem for
// emitted host text).
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func printAtom(v Form) string {
	switch n := v.(type) {
	case Raw:
		return string(n)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return formatFloat(n)
	case complex128:
		return fmt.Sprintf("%gj", imag(n))
	case bool:
		if n {
			return "True"
		}
		return "False"
	default:
		// Host object with no literal Lissp syntax: printed for diagnostics
		// only, wrapped the way the reader's .# injection is written.
		return fmt.Sprintf(".#%v", v)
	}
}
