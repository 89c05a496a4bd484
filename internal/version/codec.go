package version

import "github.com/gren-lang/compiler/internal/codec"

// Encode writes v as three fixed-width integers.
func (v Version) Encode(w *codec.Writer) {
	w.Uint64(v.Major)
	w.Uint64(v.Minor)
	w.Uint64(v.Patch)
}

// DecodeVersion reads a Version written by Encode.
func DecodeVersion(r *codec.Reader) Version {
	return Version{Major: r.Uint64(), Minor: r.Uint64(), Patch: r.Uint64()}
}

// Encode writes c as two encoded Versions.
func (c Constraint) Encode(w *codec.Writer) {
	c.Low.Encode(w)
	c.High.Encode(w)
}

// DecodeConstraint reads a Constraint written by Encode.
func DecodeConstraint(r *codec.Reader) Constraint {
	lo := DecodeVersion(r)
	hi := DecodeVersion(r)
	return Constraint{Low: lo, High: hi}
}

const (
	tagCommon byte = iota
	tagBrowser
	tagNode
)

// Encode writes p as a single discriminator byte.
func (p Platform) Encode(w *codec.Writer) {
	switch p {
	case Browser:
		w.Tag(tagBrowser)
	case Node:
		w.Tag(tagNode)
	default:
		w.Tag(tagCommon)
	}
}

// DecodePlatform reads a Platform written by Encode.
func DecodePlatform(r *codec.Reader) Platform {
	switch r.Tag() {
	case tagBrowser:
		return Browser
	case tagNode:
		return Node
	default:
		return Common
	}
}
