package outline

import "github.com/gren-lang/compiler/internal/version"

// CompilerVersion is the running compiler's own version. Application
// outlines must declare this exact version; package outlines must declare
// a gren-version constraint that accepts it.
var CompilerVersion = version.Version{Major: 0, Minor: 6, Patch: 0}
