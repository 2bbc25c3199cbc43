package reader

import (
	"strings"

	"github.com/hissp-lang/hissp/lex"
)

// unescapeString turns a lexed String token's raw text (still carrying its
// surrounding quotes and backslash escapes) into the payload text the
// string denotes. The lexer has already validated the escape grammar
// (lex/lexer.go validateString), so this pass only needs to apply it.
func unescapeString(raw string, pos lex.Position) (string, error) {
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", newError(BadReaderMacro, pos, "dangling escape in string literal")
		}
		switch body[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			return "", newError(BadReaderMacro, pos, "unsupported escape \\%c", body[i])
		}
	}
	return b.String(), nil
}
