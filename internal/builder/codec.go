package builder

import (
	"time"

	"github.com/gren-lang/compiler/internal/artifact"
	gcodec "github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
)

func encodeTime(w *gcodec.Writer, t time.Time) {
	w.Uint64(uint64(t.UnixNano()))
}

func decodeTime(r *gcodec.Reader) time.Time {
	return time.Unix(0, int64(r.Uint64())).UTC()
}

func encodeLocal(w *gcodec.Writer, l *Local) {
	w.String(l.Path)
	encodeTime(w, l.LastModified)
	w.Len(len(l.Imports))
	for _, imp := range l.Imports {
		imp.Encode(w)
	}
	w.Bool(l.IsMainCandidate)
	w.Uint64(uint64(l.LastInterfaceChangeBuildID))
	w.Uint64(uint64(l.LastCompileBuildID))
}

func decodeLocal(r *gcodec.Reader) *Local {
	l := &Local{Path: r.String(), LastModified: decodeTime(r)}
	n := r.Len()
	l.Imports = make([]modname.Raw, 0, n)
	for i := 0; i < n; i++ {
		l.Imports = append(l.Imports, modname.DecodeRaw(r))
	}
	l.IsMainCandidate = r.Bool()
	l.LastInterfaceChangeBuildID = BuildID(r.Uint64())
	l.LastCompileBuildID = BuildID(r.Uint64())
	return l
}

func encodeForeign(w *gcodec.Writer, f Foreign) {
	f.Owner.Encode(w)
	w.Len(len(f.OtherPackagesAlsoExpose))
	for _, n := range f.OtherPackagesAlsoExpose {
		n.Encode(w)
	}
}

func decodeForeign(r *gcodec.Reader) Foreign {
	f := Foreign{Owner: pkgname.DecodeName(r)}
	n := r.Len()
	f.OtherPackagesAlsoExpose = make([]pkgname.Name, 0, n)
	for i := 0; i < n; i++ {
		f.OtherPackagesAlsoExpose = append(f.OtherPackagesAlsoExpose, pkgname.DecodeName(r))
	}
	return f
}

// Encode writes d in full: outline snapshot bytes, mtime, build ID, and
// the Locals/Foreigns/Artifacts maps.
func (d *Details) Encode(w *gcodec.Writer) {
	w.WriteBytes(d.Outline)
	encodeTime(w, d.OutlineModTime)
	w.Uint64(uint64(d.ID))

	w.Len(len(d.Locals))
	for mod, l := range d.Locals {
		mod.Encode(w)
		encodeLocal(w, l)
	}

	w.Len(len(d.Foreigns))
	for mod, f := range d.Foreigns {
		mod.Encode(w)
		encodeForeign(w, f)
	}

	w.Len(len(d.Artifacts))
	for name, a := range d.Artifacts {
		name.Encode(w)
		a.Encode(w)
	}
}

// DecodeDetails reads a Details written by Encode. Callers should treat a
// non-nil Reader.Err() as corruption of .gren/details.dat: the file is
// user-recoverable by deletion.
func DecodeDetails(r *gcodec.Reader) *Details {
	d := &Details{
		Locals:   map[modname.Raw]*Local{},
		Foreigns: map[modname.Raw]Foreign{},
	}
	d.Outline = r.ReadBytes()
	d.OutlineModTime = decodeTime(r)
	d.ID = BuildID(r.Uint64())

	n := r.Len()
	for i := 0; i < n; i++ {
		mod := modname.DecodeRaw(r)
		d.Locals[mod] = decodeLocal(r)
	}

	n = r.Len()
	for i := 0; i < n; i++ {
		mod := modname.DecodeRaw(r)
		d.Foreigns[mod] = decodeForeign(r)
	}

	n = r.Len()
	d.Artifacts = make(map[pkgname.Name]artifact.Artifacts, n)
	for i := 0; i < n; i++ {
		name := pkgname.DecodeName(r)
		d.Artifacts[name] = artifact.DecodeArtifacts(r)
	}

	return d
}
