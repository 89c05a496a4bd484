package artifact

import (
	"github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

// Encode writes f as a length-prefixed sequence of (name, version) pairs.
func (f Fingerprint) Encode(w *codec.Writer) {
	w.Len(len(f))
	for n, v := range f {
		n.Encode(w)
		v.Encode(w)
	}
}

// DecodeFingerprint reads a Fingerprint written by Encode.
func DecodeFingerprint(r *codec.Reader) Fingerprint {
	n := r.Len()
	f := make(Fingerprint, n)
	for i := 0; i < n; i++ {
		name := pkgname.DecodeName(r)
		ver := version.DecodeVersion(r)
		f[name] = ver
	}
	return f
}

func (t TypeSig) encode(w *codec.Writer) {
	w.String(t.Name)
	w.String(t.Canonical)
}

func decodeTypeSig(r *codec.Reader) TypeSig {
	return TypeSig{Name: r.String(), Canonical: r.String()}
}

func (v ValueSig) encode(w *codec.Writer) {
	w.String(v.Name)
	w.String(v.Canonical)
}

func decodeValueSig(r *codec.Reader) ValueSig {
	return ValueSig{Name: r.String(), Canonical: r.String()}
}

func (i Interface) encode(w *codec.Writer) {
	i.Module.Encode(w)
	w.Len(len(i.Types))
	for _, t := range i.Types {
		t.encode(w)
	}
	w.Len(len(i.Values))
	for _, v := range i.Values {
		v.encode(w)
	}
}

// Encode writes i. Exported so callers outside this package (internal/compiler's
// standalone interfaces.dat) can persist a bare Interface without going through
// a DependencyInterface wrapper.
func (i Interface) Encode(w *codec.Writer) { i.encode(w) }

// DecodeInterface reads an Interface written by Encode.
func DecodeInterface(r *codec.Reader) Interface { return decodeInterface(r) }

func decodeInterface(r *codec.Reader) Interface {
	iface := Interface{Module: modname.DecodeRaw(r)}
	n := r.Len()
	iface.Types = make([]TypeSig, 0, n)
	for i := 0; i < n; i++ {
		iface.Types = append(iface.Types, decodeTypeSig(r))
	}
	n = r.Len()
	iface.Values = make([]ValueSig, 0, n)
	for i := 0; i < n; i++ {
		iface.Values = append(iface.Values, decodeValueSig(r))
	}
	return iface
}

func (u UnionInfo) encode(w *codec.Writer) {
	w.String(u.Name)
	w.Len(len(u.Variants))
	for _, v := range u.Variants {
		w.String(v)
	}
}

func decodeUnionInfo(r *codec.Reader) UnionInfo {
	u := UnionInfo{Name: r.String()}
	n := r.Len()
	u.Variants = make([]string, 0, n)
	for i := 0; i < n; i++ {
		u.Variants = append(u.Variants, r.String())
	}
	return u
}

func (a AliasInfo) encode(w *codec.Writer) {
	w.String(a.Name)
	w.String(a.Target)
}

func decodeAliasInfo(r *codec.Reader) AliasInfo {
	return AliasInfo{Name: r.String(), Target: r.String()}
}

const (
	tagPublic byte = iota
	tagPrivate
)

func (di DependencyInterface) encode(w *codec.Writer) {
	switch di.Visibility {
	case Private:
		w.Tag(tagPrivate)
	default:
		w.Tag(tagPublic)
	}
	di.Iface.encode(w)
	w.Len(len(di.Unions))
	for _, u := range di.Unions {
		u.encode(w)
	}
	w.Len(len(di.Aliases))
	for _, a := range di.Aliases {
		a.encode(w)
	}
}

func decodeDependencyInterface(r *codec.Reader) DependencyInterface {
	var vis Visibility
	if r.Tag() == tagPrivate {
		vis = Private
	}
	di := DependencyInterface{Visibility: vis, Iface: decodeInterface(r)}
	n := r.Len()
	di.Unions = make([]UnionInfo, 0, n)
	for i := 0; i < n; i++ {
		di.Unions = append(di.Unions, decodeUnionInfo(r))
	}
	n = r.Len()
	di.Aliases = make([]AliasInfo, 0, n)
	for i := 0; i < n; i++ {
		di.Aliases = append(di.Aliases, decodeAliasInfo(r))
	}
	return di
}

// Encode writes a as a length-prefixed interface map plus an opaque,
// length-prefixed optimizer graph blob.
func (a Artifacts) Encode(w *codec.Writer) {
	w.Len(len(a.Interfaces))
	for mod, di := range a.Interfaces {
		mod.Encode(w)
		di.encode(w)
	}
	w.WriteBytes(a.Graph)
}

// DecodeArtifacts reads Artifacts written by Encode.
func DecodeArtifacts(r *codec.Reader) Artifacts {
	n := r.Len()
	a := Artifacts{Interfaces: make(map[modname.Raw]DependencyInterface, n)}
	for i := 0; i < n; i++ {
		mod := modname.DecodeRaw(r)
		a.Interfaces[mod] = decodeDependencyInterface(r)
	}
	a.Graph = Graph(r.ReadBytes())
	return a
}

// Encode writes the whole cache: a length-prefixed fingerprint set followed
// by the single shared Artifacts value.
func (c ArtifactCache) Encode(w *codec.Writer) {
	w.Len(len(c.Fingerprints))
	for _, fp := range c.Fingerprints {
		fp.Encode(w)
	}
	c.Artifacts.Encode(w)
}

// DecodeArtifactCache reads an ArtifactCache written by Encode. Callers
// should treat a non-nil Reader.Err() as a *codec.CorruptCacheError
// condition and fall back to rebuilding from scratch.
func DecodeArtifactCache(r *codec.Reader) ArtifactCache {
	n := r.Len()
	c := ArtifactCache{Fingerprints: make([]Fingerprint, 0, n)}
	for i := 0; i < n; i++ {
		c.Fingerprints = append(c.Fingerprints, DecodeFingerprint(r))
	}
	c.Artifacts = DecodeArtifacts(r)
	return c
}
