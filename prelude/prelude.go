// Package prelude embeds the small convenience-macro library
// (prelude.lissp) named in SPEC_FULL.md's SUPPLEMENTED FEATURES section,
// grounded on pkg/stargzutil's use of go:embed for test fixtures.
package prelude

import _ "embed"

//go:embed prelude.lissp
var Source string

// ModuleName is the name the prelude registers its macros under; a caller
// wiring it into another module's compilation should pass this to
// compiler.Module.Require after compiling it once.
const ModuleName = "hissp.prelude"
