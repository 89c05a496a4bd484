// Package pkgname implements PackageName: an "author/project" identifier
// with strict naming rules and a total lexicographic order.
package pkgname

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// segmentPattern enforces: lowercase ASCII, hyphens only as separators, no
// leading digit, no double/leading/trailing hyphen.
var segmentPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Name is a validated "author/project" package identifier.
type Name struct {
	Author, Project string
}

// Parse validates and constructs a Name from "author/project".
func Parse(s string) (Name, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Name{}, errors.Errorf("package name %q must have the form \"author/project\"", s)
	}

	author, project := parts[0], parts[1]
	if err := validateSegment("author", author); err != nil {
		return Name{}, errors.Wrapf(err, "invalid package name %q", s)
	}
	if err := validateSegment("project", project); err != nil {
		return Name{}, errors.Wrapf(err, "invalid package name %q", s)
	}

	return Name{Author: author, Project: project}, nil
}

func validateSegment(kind, s string) error {
	if !segmentPattern.MatchString(s) {
		return errors.Errorf("%s %q must be lowercase ASCII, hyphen-separated, with no leading digit and no leading/trailing/double hyphen", kind, s)
	}
	return nil
}

func (n Name) String() string { return n.Author + "/" + n.Project }

// Compare gives Name its total order: lexicographic by author then project.
func (n Name) Compare(other Name) int {
	if c := strings.Compare(n.Author, other.Author); c != 0 {
		return c
	}
	return strings.Compare(n.Project, other.Project)
}

// Equal reports value equality.
func (n Name) Equal(other Name) bool { return n.Author == other.Author && n.Project == other.Project }

// LessThan reports whether n sorts strictly before other.
func (n Name) LessThan(other Name) bool { return n.Compare(other) < 0 }
