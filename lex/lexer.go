// Package lex tokenizes Lissp source text (spec.md §4.2). The rule table is
// a participle regex lexer definition, grounded on the teacher's
// parser/cst.go Lexer var; the Lexer type wraps it the same way the
// teacher's hereDocDefinition/hereDocLexer wrap their base definition to
// add a stateful behavior the flat regex grammar can't express on its own
// (there: heredoc-body whitespace; here: shebang-skipping and EOF
// synthesis).
package lex

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/lexer"
	"github.com/alecthomas/participle/lexer/regex"
)

// baseDef is the participle regex lexer definition for every Lissp token
// shape except host-literal numerics, which are left to Symbol text and
// parsed by the reader (spec.md §4.3: "a single pass that tries host-literal
// interpretation"). Ordering matters: participle tries rules top to bottom,
// so more specific alternatives (strings, sigils, bracket literals) are
// listed ahead of the catch-all Symbol rule.
var baseDef = lexer.Must(regex.New(fmt.Sprintf(`
	Whitespace = [ \t\r]+
	Newline    = \n
	Comment    = ;[^\n]*
	String     = "(\\.|[^"\\])*"
	Splice     = ,@
	Unquote    = ,
	Quasi      = `+"`"+`
	Quote      = '
	Discard    = _#
	Inject     = \.#
	Gensym     = \$#
	Open       = \(
	Close      = \)
	Bracket    = \[(?:[^\[\]]|\[[^\[\]]*\])*\]|\{(?:[^{}]|\{[^{}]*\})*\}
	MacroName  = [^\s()\[\]{}'"`+"`"+`,;#]+#
	Symbol     = [^\s()\[\]{}'"`+"`"+`,;#]+
`)))

// Lexer produces a sequence of Tokens from source text.
type Lexer struct {
	name   string
	sub    lexer.Lexer
	peeked *Token
	done   bool
}

// New constructs a Lexer for r, named for diagnostics. A leading shebang
// line (spec.md §4.2) is skipped before tokenizing begins.
func New(name string, r io.Reader) (*Lexer, error) {
	br := bufio.NewReader(r)
	if err := skipShebang(br); err != nil {
		return nil, err
	}
	sub, err := baseDef.Lex(br)
	if err != nil {
		return nil, err
	}
	return &Lexer{name: name, sub: sub}, nil
}

func skipShebang(br *bufio.Reader) error {
	prefix, err := br.Peek(2)
	if err != nil {
		// Fewer than 2 bytes of input; nothing to skip.
		return nil
	}
	if string(prefix) != "#!" {
		return nil
	}
	_, err = br.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

func toPosition(name string, p lexer.Position) Position {
	return Position{Filename: name, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// Next returns the next significant token, skipping whitespace, newlines,
// and comments, or an EOF-kind token at end of input.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t, nil
	}
	return l.next()
}

// Peek returns the next significant token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	t, err := l.next()
	if err != nil {
		return Token{}, err
	}
	l.peeked = &t
	return t, nil
}

func (l *Lexer) next() (Token, error) {
	if l.done {
		return Token{Kind: EOF}, nil
	}
	for {
		raw, err := l.sub.Next()
		if err != nil {
			return Token{}, newError(UnterminatedString, Position{Filename: l.name}, err.Error())
		}
		if raw.EOF() {
			l.done = true
			return Token{Kind: EOF, Pos: toPosition(l.name, raw.Pos)}, nil
		}
		sym := baseDef.Symbols()
		pos := toPosition(l.name, raw.Pos)
		switch raw.Type {
		case sym["Whitespace"], sym["Newline"], sym["Comment"]:
			continue
		case sym["String"]:
			if err := validateString(raw.Value, pos); err != nil {
				return Token{}, err
			}
			return Token{Kind: String, Value: raw.Value, Pos: pos}, nil
		case sym["Open"]:
			return Token{Kind: Open, Value: raw.Value, Pos: pos}, nil
		case sym["Close"]:
			return Token{Kind: Close, Value: raw.Value, Pos: pos}, nil
		case sym["Bracket"]:
			if err := validateBracket(raw.Value, pos); err != nil {
				return Token{}, err
			}
			return Token{Kind: Bracket, Value: raw.Value, Pos: pos}, nil
		case sym["Quote"]:
			return Token{Kind: Quote, Value: raw.Value, Pos: pos}, nil
		case sym["Quasi"]:
			return Token{Kind: Quasi, Value: raw.Value, Pos: pos}, nil
		case sym["Unquote"]:
			return Token{Kind: Unquote, Value: raw.Value, Pos: pos}, nil
		case sym["Splice"]:
			return Token{Kind: Splice, Value: raw.Value, Pos: pos}, nil
		case sym["Discard"]:
			return Token{Kind: Discard, Value: raw.Value, Pos: pos}, nil
		case sym["Inject"]:
			return Token{Kind: Inject, Value: raw.Value, Pos: pos}, nil
		case sym["Gensym"]:
			return Token{Kind: Gensym, Value: raw.Value, Pos: pos}, nil
		case sym["MacroName"]:
			return Token{Kind: Macro, Value: strings.TrimSuffix(raw.Value, "#"), Pos: pos}, nil
		case sym["Symbol"]:
			return Token{Kind: Symbol, Value: raw.Value, Pos: pos}, nil
		default:
			return Token{}, newError(BadEscape, pos, "unrecognized input %q", raw.Value)
		}
	}
}

func validateString(lit string, pos Position) error {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return newError(UnterminatedString, pos, "unterminated string literal")
	}
	body := lit[1 : len(lit)-1]
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			continue
		}
		if i+1 >= len(body) {
			return newError(BadEscape, pos, "dangling escape at end of string")
		}
		switch body[i+1] {
		case '"', '\\', 'n', 't', 'r', '0':
		default:
			return newError(BadEscape, pos, "unknown escape \\%c", body[i+1])
		}
		i++
	}
	return nil
}

func validateBracket(lit string, pos Position) error {
	var opens, closes byte
	switch lit[0] {
	case '[':
		opens, closes = '[', ']'
	case '{':
		opens, closes = '{', '}'
	default:
		return newError(UnbalancedBracket, pos, "bracket literal must start with [ or {")
	}
	depth := 0
	for i := 0; i < len(lit); i++ {
		switch lit[i] {
		case opens:
			depth++
		case closes:
			depth--
		}
	}
	if depth != 0 {
		return newError(UnbalancedBracket, pos, "unbalanced %c...%c", opens, closes)
	}
	return nil
}
