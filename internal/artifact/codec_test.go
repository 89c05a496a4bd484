package artifact

import (
	"testing"

	gcodec "github.com/gren-lang/compiler/internal/codec"
	"github.com/gren-lang/compiler/internal/modname"
)

func TestFingerprintRoundTrip(t *testing.T) {
	a := mustName(t, "gren-lang/core")
	b := mustName(t, "gren-lang/browser")
	fp := Fingerprint{a: mustVersion(t, "1.0.0"), b: mustVersion(t, "2.1.0")}

	w := gcodec.NewWriter()
	fp.Encode(w)
	r := gcodec.NewReader(w.Bytes())
	got := DecodeFingerprint(r)
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !got.Equal(fp) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, fp)
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	mod, err := modname.ParseRaw("Basics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orig := Artifacts{
		Interfaces: map[modname.Raw]DependencyInterface{
			mod: {
				Visibility: Private,
				Iface: Interface{
					Module: mod,
					Types:  []TypeSig{{Name: "Maybe", Canonical: "Maybe a"}},
					Values: []ValueSig{{Name: "map", Canonical: "(a -> b) -> Maybe a -> Maybe b"}},
				},
				Unions:  []UnionInfo{{Name: "Maybe", Variants: []string{"Just", "Nothing"}}},
				Aliases: []AliasInfo{{Name: "Id", Target: "Int"}},
			},
		},
		Graph: Graph([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
	}

	w := gcodec.NewWriter()
	orig.Encode(w)
	r := gcodec.NewReader(w.Bytes())
	got := DecodeArtifacts(r)
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if len(got.Interfaces) != 1 {
		t.Fatalf("expected one interface, got %d", len(got.Interfaces))
	}
	di, ok := got.Interfaces[mod]
	if !ok {
		t.Fatalf("expected interface for module %s", mod)
	}
	if di.Visibility != Private {
		t.Fatal("expected Private visibility to survive round trip")
	}
	if len(di.Unions) != 1 || di.Unions[0].Name != "Maybe" {
		t.Fatalf("union info mismatch: %#v", di.Unions)
	}
	if string(got.Graph) != string(orig.Graph) {
		t.Fatalf("graph mismatch: got %x, want %x", got.Graph, orig.Graph)
	}
}

func TestArtifactCacheRoundTrip(t *testing.T) {
	fp := Fingerprint{mustName(t, "gren-lang/core"): mustVersion(t, "1.0.0")}
	cache := ArtifactCache{
		Fingerprints: []Fingerprint{fp},
		Artifacts:    Artifacts{Interfaces: map[modname.Raw]DependencyInterface{}},
	}

	w := gcodec.NewWriter()
	cache.Encode(w)
	r := gcodec.NewReader(w.Bytes())
	got := DecodeArtifactCache(r)
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !got.HasFingerprint(fp) {
		t.Fatal("expected decoded cache to retain the fingerprint")
	}
}

func TestCorruptArtifactCacheStreamFails(t *testing.T) {
	w := gcodec.NewWriter()
	w.Len(1) // claims one fingerprint, but the stream is then truncated
	r := gcodec.NewReader(w.Bytes())
	_ = DecodeArtifactCache(r)
	if r.Err() == nil {
		t.Fatal("expected a truncated cache stream to report an error")
	}
}
