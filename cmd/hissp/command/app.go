// Package command assembles the hissp CLI, grounded on the teacher's
// cmd/hlb/command/app.go: one cli.App, a handful of subcommands, global
// flags gating color and the expander's safety valve.
package command

import (
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	shellquote "github.com/kballard/go-shellquote"
	isatty "github.com/mattn/go-isatty"
	pkgerrors "github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/hissp-lang/hissp/expand"
)

// App builds the hissp cli.App.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "hissp"
	app.Usage = "reads, expands, and emits Lissp source"
	app.Description = "a Lisp whose compiler lowers a tree of tuples and atoms into host source text"
	app.Commands = []*cli.Command{
		runCommand,
		printCommand,
		replCommand,
		langserverCommand,
	}
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "color",
			Usage: "force colored diagnostics (default: auto-detect terminal)",
		},
		&cli.IntFlag{
			Name:  "macro-loop-limit",
			Usage: "fixed-point iteration ceiling for macro expansion",
			Value: expand.DefaultLoopBound,
		},
		&cli.StringFlag{
			Name:  "host-args",
			Usage: "extra arguments passed to a process-based evaluator bridge, shell-quoted",
		},
	}
	return app
}

// wantColor resolves the --color flag against NO_COLOR and terminal
// detection, the way cmd/hlb/main.go gates hlb.WithColor.
func wantColor(c *cli.Context) bool {
	if c.Bool("color") {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}

// hostArgs splits --host-args the way codegen/chain.go splits a run-command
// string. The in-tree bridge.TextHost evaluates forms directly and ignores
// these; they exist for a future process-based EvaluatorBridge.
func hostArgs(c *cli.Context) ([]string, error) {
	raw := c.String("host-args")
	if raw == "" {
		return nil, nil
	}
	return shellquote.Split(raw)
}

// reportErr colors err's message with the outermost cause (pkgerrors.Cause,
// matching diagnostic.DisplayError's "show innermost frame" UX) when the
// context wants color, the way repl.go's reportError does for interactive
// errors; a nil err passes through unchanged.
func reportErr(c *cli.Context, err error) error {
	if err == nil {
		return nil
	}
	if !wantColor(c) {
		return err
	}
	return fmt.Errorf("%s", aurora.Red(pkgerrors.Cause(err).Error()))
}

func loopBound(c *cli.Context) int {
	if n := c.Int("macro-loop-limit"); n > 0 {
		return n
	}
	return expand.DefaultLoopBound
}
