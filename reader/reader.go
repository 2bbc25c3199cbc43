// Package reader implements the recursive-descent reader of spec.md §4.3:
// it consumes a lex.Lexer and produces form.Form values, expanding the
// built-in reader macros ('  ` , ,@ _# .# $# and NAME#) along the way. The
// two-pass wrapping style (a participle-driven token stream underneath a
// small hand-written state machine) follows the teacher's cst.go
// hereDocLexer, generalized here from HLB's here-doc scanning to Lissp's
// richer sigil set.
package reader

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/lex"
)

// Reader turns Lissp source text into a stream of top-level forms.
type Reader struct {
	lx        *lex.Lexer
	module    string
	registry  *Registry
	evaluator Evaluator

	hashCounter int
}

// Option configures an optional Reader capability.
type Option func(*Reader)

// WithRegistry installs the reader-macro registry used for NAME# dispatch.
func WithRegistry(reg *Registry) Option {
	return func(r *Reader) { r.registry = reg }
}

// WithEvaluator installs the compile-eval bridge used for .# injection.
func WithEvaluator(ev Evaluator) Option {
	return func(r *Reader) { r.evaluator = ev }
}

// New builds a Reader over src, reading the module named by module (used to
// qualify unqualified symbols inside quasiquote templates and unqualified
// reader-macro names).
func New(name string, src io.Reader, module string, opts ...Option) (*Reader, error) {
	lx, err := lex.New(name, src)
	if err != nil {
		return nil, err
	}
	r := &Reader{lx: lx, module: module, registry: NewRegistry(nil)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Read consumes and returns the next top-level form, or io.EOF when the
// source is exhausted. Each call is a fresh, independent read: there is no
// state shared between top-level forms (spec.md §5's "reset between
// top-level forms" is naturally satisfied because only the gensym counter
// persists across calls, scoped to this Reader's one file).
func (r *Reader) Read() (form.Form, error) {
	tok, err := r.lx.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lex.EOF {
		return nil, io.EOF
	}
	return r.formTok(tok, 0, "")
}

// form reads one complete form at the given quasiquote mode (0 = ordinary
// code, N>=1 = nested N deep inside a quasiquote template) sharing hash as
// the gensym hash for this enclosing top-level quasiquote.
func (r *Reader) form(mode int, hash string) (form.Form, error) {
	tok, err := r.lx.Next()
	if err != nil {
		return nil, err
	}
	return r.formTok(tok, mode, hash)
}

func (r *Reader) formTok(tok lex.Token, mode int, hash string) (form.Form, error) {
	switch tok.Kind {
	case lex.EOF:
		return nil, newError(EOFInForm, tok.Pos, "unexpected end of input")
	case lex.Close:
		return nil, newError(UnexpectedClose, tok.Pos, "unexpected )")
	case lex.Open:
		return r.tuple(mode, hash)
	case lex.Quote:
		inner, err := r.form(mode, hash)
		if err != nil {
			return nil, err
		}
		if mode == 0 {
			return form.Tuple{form.Symbol("quote"), inner}, nil
		}
		return r.tagData(tok.Pos, "quote", inner)
	case lex.Quasi:
		newHash := hash
		if mode == 0 {
			newHash = r.nextHash()
		}
		inner, err := r.form(mode+1, newHash)
		if err != nil {
			return nil, err
		}
		if mode == 0 {
			return inner, nil
		}
		return r.tagData(tok.Pos, "quasiquote", inner)
	case lex.Unquote:
		if mode == 0 {
			return nil, newError(UnquoteOutsideTemplate, tok.Pos, "unquote outside quasiquote")
		}
		inner, err := r.form(mode-1, hash)
		if err != nil {
			return nil, err
		}
		if mode == 1 {
			return inner, nil
		}
		return r.tagData(tok.Pos, "unquote", inner)
	case lex.Splice:
		if mode == 0 {
			return nil, newError(UnquoteOutsideTemplate, tok.Pos, "splicing unquote outside quasiquote")
		}
		inner, err := r.form(mode-1, hash)
		if err != nil {
			return nil, err
		}
		if mode == 1 {
			return inner, nil
		}
		return r.tagData(tok.Pos, "unquote_splice", inner)
	case lex.Discard:
		if _, err := r.form(mode, hash); err != nil {
			return nil, err
		}
		return r.form(mode, hash)
	case lex.Inject:
		arg, err := r.form(0, hash)
		if err != nil {
			return nil, err
		}
		if r.evaluator == nil {
			return nil, newError(BadReaderMacro, tok.Pos, "no evaluator configured for .# injection")
		}
		return r.evaluator.EvalForm(arg)
	case lex.Gensym:
		nameTok, err := r.lx.Next()
		if err != nil {
			return nil, err
		}
		if nameTok.Kind != lex.Symbol {
			return nil, newError(BadReaderMacro, nameTok.Pos, "$# must be followed by a symbol")
		}
		if hash == "" {
			hash = r.nextHash()
		}
		sym := gensymName(hash, nameTok.Value)
		if mode == 0 {
			return form.Symbol(sym), nil
		}
		return form.Tuple{form.Symbol("quote"), sym}, nil
	case lex.Macro:
		arg, err := r.form(0, hash)
		if err != nil {
			return nil, err
		}
		fn, err := r.registry.Load(tok.Value, r.module)
		if err != nil {
			return nil, &MacroError{Origin: tok.Pos, Cause: err}
		}
		result, err := fn(arg)
		if err != nil {
			return nil, &MacroError{Origin: tok.Pos, Cause: err}
		}
		return result, nil
	case lex.String:
		text, err := unescapeString(tok.Value, tok.Pos)
		if err != nil {
			return nil, err
		}
		return form.Tuple{form.Symbol("quote"), text}, nil
	case lex.Bracket:
		return form.Raw(tok.Value), nil
	case lex.Symbol:
		if n, ok := parseNumeric(tok.Value); ok {
			return n, nil
		}
		return r.symbol(tok.Value, mode), nil
	default:
		return nil, newError(BadReaderMacro, tok.Pos, "unexpected token kind %s", tok.Kind)
	}
}

func (r *Reader) tuple(mode int, hash string) (form.Form, error) {
	if mode == 0 {
		var elems form.Tuple
		for {
			tok, err := r.lx.Next()
			if err != nil {
				return nil, err
			}
			if tok.Kind == lex.Close {
				return elems, nil
			}
			if tok.Kind == lex.EOF {
				return nil, newError(EOFInForm, tok.Pos, "unexpected end of input inside (")
			}
			f, err := r.formTok(tok, mode, hash)
			if err != nil {
				return nil, err
			}
			elems = append(elems, f)
		}
	}

	var segs []qqSegment
	for {
		tok, err := r.lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lex.Close {
			return foldSegments(segs), nil
		}
		if tok.Kind == lex.EOF {
			return nil, newError(EOFInForm, tok.Pos, "unexpected end of input inside (")
		}
		if tok.Kind == lex.Splice {
			inner, err := r.form(mode-1, hash)
			if err != nil {
				return nil, err
			}
			if mode == 1 {
				segs = append(segs, qqSegment{expr: inner, splice: true})
				continue
			}
			tagged, err := r.tagData(tok.Pos, "unquote_splice", inner)
			if err != nil {
				return nil, err
			}
			segs = append(segs, qqSegment{expr: tagged})
			continue
		}
		f, err := r.formTok(tok, mode, hash)
		if err != nil {
			return nil, err
		}
		segs = append(segs, qqSegment{expr: f})
	}
}

func (r *Reader) symbol(raw string, mode int) form.Form {
	sym := mungeSymbol(raw)
	if mode == 0 {
		return sym
	}
	if isQualifiedOrMethod(sym) {
		return form.Tuple{form.Symbol("quote"), string(sym)}
	}
	qualified := form.QualifiedSymbol(r.module, string(sym))
	return form.Tuple{form.Symbol("quote"), string(qualified)}
}

func (r *Reader) nextHash() string {
	r.hashCounter++
	return strconv.Itoa(r.hashCounter)
}

func gensymName(hash, name string) string {
	return fmt.Sprintf("_Qz%sz_%s", hash, name)
}
