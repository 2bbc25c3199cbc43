package command

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hissp-lang/hissp/bridge"
	"github.com/hissp-lang/hissp/compiler"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "compile one or more .lissp files and evaluate each top-level form",
	ArgsUsage: "FILE...",
	Action:    runAction,
}

// runAction compiles every file argument concurrently — one goroutine per
// file joined with errgroup.Group, grounded on parser/parse.go's
// ParseMultiple — then evaluates each file's forms in argument order so
// cross-file macro/`.#` side effects stay deterministic even though
// compilation itself ran in parallel.
func runAction(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("run: at least one FILE argument is required")
	}
	if _, err := hostArgs(c); err != nil {
		return reportErr(c, fmt.Errorf("run: parsing --host-args: %w", err))
	}

	type compiled struct {
		path string
		mod  *compiler.Module
		results []compiler.Result
	}
	out := make([]compiled, len(paths))

	g := new(errgroup.Group)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			host := bridge.NewTextHost()
			mod := compiler.NewModule(moduleNameForPath(path), host).WithLoopBound(loopBound(c))
			results, err := mod.Compile(path, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out[i] = compiled{path: path, mod: mod, results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reportErr(c, err)
	}

	// Evaluation happens after every file has compiled, in argument order:
	// compilation is safely parallel (each file owns its own module and
	// host), but running the side effects (host prints, .# already ran at
	// read time) in file order keeps output deterministic.
	for _, cmp := range out {
		for _, r := range cmp.results {
			if _, err := cmp.mod.Eval(r.Form); err != nil {
				return reportErr(c, fmt.Errorf("%s: %w", cmp.path, err))
			}
		}
	}
	return nil
}

// moduleNameForPath derives a dotted module name from a filesystem path the
// crude way a single-file CLI invocation can: strip the extension, replace
// path separators with dots.
func moduleNameForPath(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	out := []byte(base)
	for i, b := range out {
		if b == '/' || b == '\\' {
			out[i] = '.'
		}
	}
	return string(out)
}
