package modname

import "github.com/gren-lang/compiler/internal/codec"

// Encode writes r as a length-prefixed string.
func (r Raw) Encode(w *codec.Writer) { w.String(string(r)) }

// DecodeRaw reads a Raw written by Encode.
func DecodeRaw(rd *codec.Reader) Raw { return Raw(rd.String()) }
