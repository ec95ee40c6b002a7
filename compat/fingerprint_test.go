package compat

import (
	"sync"
	"testing"

	cc "github.com/speakeasy-api/contractcompat"
)

// TestFingerprintIgnoresNonStorageChanges checks that access, member order
// and functions do not affect the layout digest.
func TestFingerprintIgnoresNonStorageChanges(t *testing.T) {
	fp := NewFingerprinter()

	a := cc.NewContract("C", []string{"I", "J"},
		cc.NewField("x", tInt),
		cc.NewField("y", tString),
		cc.NewFunction("f", "fun f()"),
	)
	b := cc.NewContract("C", []string{"J", "I"},
		cc.NewField("y", tString).WithAccess(cc.AccessSelf),
		cc.NewFunction("g", "fun g(): Int"),
		cc.NewField("x", tInt),
	)

	if fa, fb := fp.FingerprintDeclaration(a), fp.FingerprintDeclaration(b); fa != fb {
		t.Errorf("expected equal layout digests:\n  a=%s\n  b=%s", fa, fb)
	}
}

func TestFingerprintDetectsStorageChanges(t *testing.T) {
	fp := NewFingerprinter()
	base := fp.FingerprintDeclaration(cc.NewContract("C", nil, cc.NewField("x", tInt), cc.NewEnum("E", tUInt8, "A", "B")))

	variants := map[string]*cc.Declaration{
		"field type": cc.NewContract("C", nil, cc.NewField("x", tString), cc.NewEnum("E", tUInt8, "A", "B")),
		"case order": cc.NewContract("C", nil, cc.NewField("x", tInt), cc.NewEnum("E", tUInt8, "B", "A")),
		"raw type":   cc.NewContract("C", nil, cc.NewField("x", tInt), cc.NewEnum("E", cc.Named("UInt16"), "A", "B")),
		"new field":  cc.NewContract("C", nil, cc.NewField("x", tInt), cc.NewField("z", tInt), cc.NewEnum("E", tUInt8, "A", "B")),
		"kind":       cc.NewResource("C", nil, cc.NewField("x", tInt), cc.NewEnum("E", tUInt8, "A", "B")),
	}
	for name, d := range variants {
		if fp.FingerprintDeclaration(d) == base {
			t.Errorf("%s: expected digest to change", name)
		}
	}
}

func TestFingerprintCache(t *testing.T) {
	fp := NewFingerprinter()
	d := cc.NewContract("C", nil, cc.NewField("x", tInt))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fp.FingerprintDeclaration(d)
		}()
	}
	wg.Wait()

	if fp.Len() != 1 {
		t.Errorf("cache size = %d, want 1", fp.Len())
	}
	fp.Reset()
	if fp.Len() != 0 {
		t.Errorf("cache size after reset = %d", fp.Len())
	}
	if got := fp.FingerprintDeclaration(nil); got != "none" {
		t.Errorf("nil digest = %q", got)
	}
}

func TestFingerprintSnapshotIncludesTombstones(t *testing.T) {
	fp := NewFingerprinter()
	s := snapshot(cc.NewContract("C", nil))
	marked := withTombstones(s, map[string][]string{"C": {"Old"}})

	if fp.FingerprintSnapshot(s) == fp.FingerprintSnapshot(marked) {
		t.Error("expected tombstones to change the snapshot digest")
	}
	if fp.FingerprintType(cc.OptionalType{Type: tInt}) == fp.FingerprintType(tInt) {
		t.Error("expected Int? and Int to differ")
	}
}
