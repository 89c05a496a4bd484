package pkgname

import "github.com/gren-lang/compiler/internal/codec"

// Encode writes n as two length-prefixed strings.
func (n Name) Encode(w *codec.Writer) {
	w.String(n.Author)
	w.String(n.Project)
}

// DecodeName reads a Name written by Encode.
func DecodeName(r *codec.Reader) Name {
	return Name{Author: r.String(), Project: r.String()}
}
