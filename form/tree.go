package form

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree renders f as an indented debug tree, distinct from the canonical
// Lissp printer in print.go: it exists for REPL diagnostics
// (the ":expand" REPL command, grounded on module/tree.go's use of
// treeprint for dependency trees) and is never fed back into the reader.
func Tree(f Form) string {
	root := treeprint.New()
	addNode(root, f)
	return root.String()
}

func addNode(n treeprint.Tree, f Form) {
	switch v := f.(type) {
	case Tuple:
		if len(v) == 0 {
			n.SetValue("()")
			return
		}
		n.SetValue(fmt.Sprintf("(%d)", len(v)))
		for _, e := range v {
			addNode(n.AddBranch(""), e)
		}
	default:
		n.SetValue(Print(f))
	}
}
