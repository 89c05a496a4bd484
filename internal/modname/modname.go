// Package modname implements ModuleName: either a raw dot-separated name
// (each segment capitalized) or a canonical name qualified by the owning
// package.
package modname

import (
	"strings"

	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/pkg/errors"
)

// Raw is a module name as it appears in source: dot-separated segments,
// each capitalized. Raw names are compared as opaque strings.
type Raw string

// ParseRaw validates that s is a legal raw module name.
func ParseRaw(s string) (Raw, error) {
	if s == "" {
		return "", errors.New("module name must not be empty")
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return "", errors.Errorf("module name %q has an empty segment", s)
		}
		r := []rune(seg)
		if r[0] < 'A' || r[0] > 'Z' {
			return "", errors.Errorf("module name %q segment %q must start with a capital letter", s, seg)
		}
	}
	return Raw(s), nil
}

func (r Raw) String() string { return string(r) }

// Canonical qualifies a Raw module name with the package that owns it.
type Canonical struct {
	Package pkgname.Name
	Raw     Raw
}

func (c Canonical) String() string { return c.Package.String() + ":" + c.Raw.String() }

// Equal reports value equality.
func (c Canonical) Equal(other Canonical) bool {
	return c.Package.Equal(other.Package) && c.Raw == other.Raw
}
