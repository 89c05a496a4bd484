// Package version implements the Version and Constraint types from the
// data model: an unsigned (major, minor, patch) triple with lexicographic
// total order, and half-open [lo, hi) constraint ranges over that order.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Version is three unsigned components (major, minor, patch). Total order
// is lexicographic by component.
type Version struct {
	Major, Minor, Patch uint64
}

// Initial is the only version legal for a package's first publish.
var Initial = Version{Major: 1, Minor: 0, Patch: 0}

// Parse reads a version of the form "major.minor.patch".
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, errors.Errorf("version %q must have exactly 3 dot-separated components", s)
	}

	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, errors.Wrapf(err, "version %q has a non-numeric component %q", s, p)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is Parse, panicking on error; intended for literal constants in
// tests and embedded data.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, comparing major, then minor, then patch.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpUint(v.Minor, other.Minor)
	default:
		return cmpUint(v.Patch, other.Patch)
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// LessThan reports whether v sorts strictly before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// Equal reports value equality.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// NextMajor, NextMinor, NextPatch produce the next version along each axis,
// used by `bump` to propose a new version after an API diff.
func (v Version) NextMajor() Version { return Version{Major: v.Major + 1} }
func (v Version) NextMinor() Version { return Version{Major: v.Major, Minor: v.Minor + 1} }
func (v Version) NextPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// IsInitial reports whether v is the one legal first-publish version.
func (v Version) IsInitial() bool { return v.Equal(Initial) }
