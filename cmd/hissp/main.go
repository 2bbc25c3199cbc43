// Command hissp is the CLI front end named in SPEC_FULL.md's SUPPLEMENTED
// FEATURES section: a minimal file compiler, REPL launcher, and
// pretty-printer built over the reader/expander/emitter core, grounded on
// the teacher's cmd/hlb/main.go entry point.
package main

import (
	"fmt"
	"os"

	"github.com/hissp-lang/hissp/cmd/hissp/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
