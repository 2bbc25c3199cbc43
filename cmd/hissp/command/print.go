package command

import (
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/hissp-lang/hissp/form"
	"github.com/hissp-lang/hissp/reader"
)

var printCommand = &cli.Command{
	Name:      "print",
	Usage:     "read a .lissp file (or stdin) and pretty-print each top-level form",
	ArgsUsage: "[FILE]",
	Action:    printAction,
}

func printAction(c *cli.Context) error {
	var (
		src  io.Reader
		name string
	)
	if c.NArg() > 0 {
		path := c.Args().First()
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src, name = f, path
	} else {
		src, name = os.Stdin, "<stdin>"
	}

	rd, err := reader.New(name, src, "__main__")
	if err != nil {
		return reportErr(c, err)
	}
	for {
		f, err := rd.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return reportErr(c, err)
		}
		fmt.Println(form.Print(f))
	}
}
