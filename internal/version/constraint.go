package version

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Constraint is a half-open range [Low, High) over Version, with
// Low <= High enforced at parse time.
type Constraint struct {
	Low, High Version
}

// ParseConstraint reads the textual form "lo <= v < hi", e.g.
// "1.0.0 <= v < 2.0.0".
func ParseConstraint(s string) (Constraint, error) {
	const sep = "<= v < "
	idx := strings.Index(s, sep)
	if idx < 0 {
		return Constraint{}, errors.Errorf("constraint %q must have the form \"lo <= v < hi\"", s)
	}

	loStr := strings.TrimSpace(s[:idx])
	hiStr := strings.TrimSpace(s[idx+len(sep):])

	lo, err := Parse(loStr)
	if err != nil {
		return Constraint{}, errors.Wrapf(err, "constraint %q has an invalid lower bound", s)
	}
	hi, err := Parse(hiStr)
	if err != nil {
		return Constraint{}, errors.Wrapf(err, "constraint %q has an invalid upper bound", s)
	}
	if hi.LessThan(lo) {
		return Constraint{}, errors.Errorf("constraint %q has lo > hi", s)
	}

	return Constraint{Low: lo, High: hi}, nil
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s <= v < %s", c.Low, c.High)
}

// Matches reports whether v falls within [Low, High).
func (c Constraint) Matches(v Version) bool {
	return !v.LessThan(c.Low) && v.LessThan(c.High)
}

// Intersect returns the tightest constraint satisfying both c and other, and
// whether such a non-empty range exists.
func (c Constraint) Intersect(other Constraint) (Constraint, bool) {
	lo := c.Low
	if other.Low.Compare(lo) > 0 {
		lo = other.Low
	}
	hi := c.High
	if other.High.Compare(hi) < 0 {
		hi = other.High
	}
	if hi.Compare(lo) <= 0 {
		return Constraint{}, false
	}
	return Constraint{Low: lo, High: hi}, true
}

// AcceptsCurrent reports whether the constraint accepts the given compiler
// version — used for a package's declared gren-version constraint and for
// an application's exact required compiler version check.
func (c Constraint) AcceptsCurrent(compiler Version) bool {
	return c.Matches(compiler)
}
