package reader

import (
	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/lex"
)

// qqSegment is one element of a quasiquote template tuple already reduced
// to the runtime expression that produces its contribution: expr alone for
// a normal or unquoted element (one value), or expr marked splice for a
// ,@element whose value contributes its own elements as siblings.
type qqSegment struct {
	expr   form.Form
	splice bool
}

// foldSegments builds the runtime expression that reconstructs a template
// tuple from its segments. Since the emitter only knows quote, lambda,
// method calls and general calls (no dedicated "build a tuple from mixed
// compile-time and run-time pieces" form), each non-splicing segment is
// packed into a singleton tuple with an immediately-invoked rest-argument
// lambda, (lambda (: :* xs) xs), and all pieces are concatenated pairwise
// with operator..add. This keeps quasiquote entirely a reader-side rewrite
// into ordinary code, with no special case in the emitter.
func foldSegments(segs []qqSegment) form.Form {
	if len(segs) == 0 {
		return form.Tuple{}
	}
	pieces := make([]form.Form, len(segs))
	for i, s := range segs {
		if s.splice {
			pieces[i] = s.expr
		} else {
			pieces[i] = packOne(s.expr)
		}
	}
	acc := pieces[0]
	for _, p := range pieces[1:] {
		acc = form.Tuple{form.Symbol("operator..add"), acc, p}
	}
	return acc
}

func packOne(expr form.Form) form.Form {
	params := form.Tuple{form.Symbol(":"), form.Symbol(":*"), form.Symbol("xs")}
	lambda := form.Tuple{form.Symbol("lambda"), params, form.Symbol("xs")}
	return form.Tuple{lambda, expr}
}

// tagData reconstructs a two-element data tuple (tag, inner) where inner is
// itself already a runtime-reconstruction expression, used to represent a
// nested quasiquote/unquote/splice marker that hasn't yet unwound to depth
// zero (spec.md §4.3's "standard Lisp unquote depth rules").
func (r *Reader) tagData(pos lex.Position, tag string, inner form.Form) (form.Form, error) {
	return foldSegments([]qqSegment{
		{expr: form.Tuple{form.Symbol("quote"), tag}},
		{expr: inner},
	}), nil
}
