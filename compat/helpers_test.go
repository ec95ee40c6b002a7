package compat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	cc "github.com/speakeasy-api/contractcompat"
)

func snapshot(contracts ...*cc.Declaration) cc.Snapshot {
	return cc.Snapshot{Schema: cc.NewSchema(contracts...)}
}

func withTombstones(s cc.Snapshot, entries map[string][]string) cc.Snapshot {
	s.Tombstones = cc.NewTombstoneRegistry(entries)
	return s
}

// summarize reduces diagnostics to `Kind(Location)` for comparison.
func summarize(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, string(d.Kind)+"("+d.Location()+")")
	}
	return out
}

func expectDiagnostics(t *testing.T, r *Result, want ...string) {
	t.Helper()
	got := summarize(r.Diagnostics)
	if len(want) == 0 {
		want = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s\nfull:\n%s", diff, r.Diagnostics.Describe())
	}
	wantDecision := Allow
	if len(want) > 0 {
		wantDecision = Reject
	}
	if r.Decision != wantDecision {
		t.Errorf("decision = %s, want %s", r.Decision, wantDecision)
	}
}

var (
	tString = cc.Named("String")
	tInt    = cc.Named("Int")
	tUInt8  = cc.Named("UInt8")
)
