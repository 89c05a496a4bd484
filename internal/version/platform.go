package version

import "github.com/pkg/errors"

// Platform is one of the three JS host environments a package or
// application may target.
type Platform string

const (
	Common  Platform = "common"
	Browser Platform = "browser"
	Node    Platform = "node"
)

// ParsePlatform validates the textual platform name from gren.json.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case Common, Browser, Node:
		return Platform(s), nil
	default:
		return "", errors.Errorf("platform must be one of \"common\", \"browser\", \"node\"; got %q", s)
	}
}

// CompatibleWith reports whether a dependency declaring platform d can be
// used by a root targeting platform root: root == d, or d == common.
func CompatibleWith(root, d Platform) bool {
	return root == d || d == Common
}
