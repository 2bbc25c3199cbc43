package command

import (
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/hissp-lang/hissp/repl"
)

var replCommand = &cli.Command{
	Name:   "repl",
	Usage:  "start an interactive read-eval-print loop",
	Action: replAction,
}

func replAction(c *cli.Context) error {
	r := repl.New("__main__", os.Stdin, os.Stdout, os.Stderr, wantColor(c))
	return r.Run()
}
