// Package repl implements the REPL surface of spec.md §6: a read-eval-print
// loop over the compiler pipeline, grounded on the teacher's debug TUI
// (codegen/debug/tui.go) for its readline usage and the
// error-recovery-at-top-level-form-boundary behavior.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/lithammer/dedent"
	"github.com/logrusorgru/aurora"

	"github.com/hissp-lang/hissp/bridge"
	"github.com/hissp-lang/hissp/compiler"
	"github.com/hissp-lang/hissp/form"
)

var helpText = dedent.Dedent(`
	:help    show this message
	:expand  print the next form you enter as a debug tree before expansion
	:quit    exit the REPL
`)

// REPL is one interactive session over a single compiler.Module.
type REPL struct {
	Module *compiler.Module
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
	Color  bool

	expandNext bool
}

// New builds a REPL over a fresh module named module, backed by a
// bridge.TextHost (spec.md §6: the REPL is the evaluator bridge's read-eval
// loop made interactive).
func New(module string, stdin io.ReadCloser, stdout, stderr io.Writer, color bool) *REPL {
	return &REPL{
		Module: compiler.NewModule(module, bridge.NewTextHost()),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Color:  color,
	}
}

// Run drives the loop until EOF or a :quit command.
func (r *REPL) Run() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt: r.prompt(),
		Stdin:  r.Stdin,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.handleCommand(line) {
			if line == ":quit" {
				return nil
			}
			continue
		}
		r.evalLine(line)
	}
}

func (r *REPL) prompt() string {
	p := "hissp> "
	if r.Color {
		return aurora.Bold(p).String()
	}
	return p
}

// handleCommand recognizes a leading `:`-command, reporting whether line
// was one (and therefore already fully handled).
func (r *REPL) handleCommand(line string) bool {
	switch line {
	case ":help":
		fmt.Fprint(r.Stdout, helpText)
		return true
	case ":expand":
		r.expandNext = true
		fmt.Fprintln(r.Stdout, "next form will print as a debug tree before expansion")
		return true
	case ":quit":
		return true
	}
	return false
}

// evalLine reads every top-level form on line, expands and emits each,
// evaluates them in order, and prints each result — recovering at the top-level
// form boundary on any phase error (spec.md §7), so one bad form does not
// end the session.
func (r *REPL) evalLine(line string) {
	results, err := r.Module.Compile("<repl>", strings.NewReader(line))
	if err != nil {
		r.reportError(err)
		return
	}

	if r.expandNext {
		r.expandNext = false
		if len(results) > 0 {
			fmt.Fprintln(r.Stdout, form.Tree(results[0].Source))
		}
	}

	for _, res := range results {
		val, err := r.Module.Eval(res.Form)
		if err != nil {
			r.reportError(err)
			continue
		}
		fmt.Fprintf(r.Stdout, "%s\n=> %v\n", res.Text, val)
	}
}

func (r *REPL) reportError(err error) {
	if r.Color {
		fmt.Fprintln(r.Stderr, aurora.Red(err.Error()))
		return
	}
	fmt.Fprintln(r.Stderr, err)
}
