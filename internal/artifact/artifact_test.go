package artifact

import (
	"testing"

	"github.com/gren-lang/compiler/internal/modname"
	"github.com/gren-lang/compiler/internal/pkgname"
	"github.com/gren-lang/compiler/internal/version"
)

func mustName(t *testing.T, s string) pkgname.Name {
	t.Helper()
	n, err := pkgname.Parse(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return n
}

func mustVersion(t *testing.T, s string) version.Version {
	t.Helper()
	return version.MustParse(s)
}

func TestFingerprintKeyIsOrderIndependent(t *testing.T) {
	a := mustName(t, "gren-lang/core")
	b := mustName(t, "gren-lang/browser")

	f1 := Fingerprint{a: version.MustParse("1.0.0"), b: version.MustParse("2.0.0")}
	f2 := Fingerprint{b: version.MustParse("2.0.0"), a: version.MustParse("1.0.0")}

	if !f1.Equal(f2) {
		t.Fatalf("fingerprints with the same pins in different map iteration order should be equal")
	}
}

func TestFingerprintKeyDiffersOnVersion(t *testing.T) {
	a := mustName(t, "gren-lang/core")
	f1 := Fingerprint{a: version.MustParse("1.0.0")}
	f2 := Fingerprint{a: version.MustParse("1.0.1")}
	if f1.Equal(f2) {
		t.Fatal("different pinned versions should not be equal")
	}
}

func TestArtifactCacheRecordBuild(t *testing.T) {
	c := &ArtifactCache{}
	fp := Fingerprint{mustName(t, "gren-lang/core"): version.MustParse("1.0.0")}

	if c.HasFingerprint(fp) {
		t.Fatal("empty cache should not have any fingerprint")
	}

	c.RecordBuild(fp, Artifacts{Interfaces: map[modname.Raw]DependencyInterface{}})
	if !c.HasFingerprint(fp) {
		t.Fatal("expected fingerprint to be recorded")
	}
	if len(c.Fingerprints) != 1 {
		t.Fatalf("expected exactly one fingerprint, got %d", len(c.Fingerprints))
	}

	// Recording the same fingerprint again must not duplicate it.
	c.RecordBuild(fp, Artifacts{})
	if len(c.Fingerprints) != 1 {
		t.Fatalf("expected fingerprint set to stay append-only-deduped, got %d entries", len(c.Fingerprints))
	}
}
