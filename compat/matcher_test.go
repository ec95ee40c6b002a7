package compat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	cc "github.com/speakeasy-api/contractcompat"
)

func pairingSummary(ps []Pairing) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		s := p.Kind.String() + " " + p.Path().String()
		if p.Tombstoned {
			s += " (tombstoned)"
		}
		out = append(out, s)
	}
	return out
}

func TestMatchClassifiesByName(t *testing.T) {
	scope := cc.QualifiedName{"C"}
	old := []*cc.Declaration{
		cc.NewField("kept", tInt),
		cc.NewField("dropped", tInt),
		cc.NewStruct("Retired", nil),
	}
	next := []*cc.Declaration{
		cc.NewField("fresh", tInt),
		cc.NewField("kept", tString),
		cc.NewStruct("Gone", nil),
	}
	tombstones := cc.NewTombstoneRegistry(map[string][]string{"C": {"Retired", "Gone"}})

	pairings, diags := Match(old, next, scope, tombstones)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	want := []string{
		"matched C.kept",
		"removed C.dropped",
		"removed C.Retired (tombstoned)",
		"added C.fresh",
		"reintroduced C.Gone",
	}
	if diff := cmp.Diff(want, pairingSummary(pairings)); diff != "" {
		t.Errorf("pairings mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchIsNominal(t *testing.T) {
	// Structurally identical declarations under different names never pair.
	old := []*cc.Declaration{cc.NewStruct("A", nil, cc.NewField("x", tInt))}
	next := []*cc.Declaration{cc.NewStruct("B", nil, cc.NewField("x", tInt))}

	pairings, _ := Match(old, next, cc.QualifiedName{"C"}, cc.TombstoneRegistry{})
	want := []string{"removed C.A", "added C.B"}
	if diff := cmp.Diff(want, pairingSummary(pairings)); diff != "" {
		t.Errorf("pairings mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchReportsStrayCasesAndDuplicates(t *testing.T) {
	old := []*cc.Declaration{cc.NewCase("A"), cc.NewField("x", tInt), cc.NewField("x", tInt), {Kind: cc.KindField}}
	pairings, diags := Match(old, nil, cc.QualifiedName{"C"}, cc.TombstoneRegistry{})

	if diff := cmp.Diff([]string{"removed C.x"}, pairingSummary(pairings)); diff != "" {
		t.Errorf("pairings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"MalformedSchema(C)", "MalformedSchema(C.x)", "MalformedSchema(C)"}, summarize(diags)); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchTombstonesAreScoped(t *testing.T) {
	tombstones := cc.NewTombstoneRegistry(map[string][]string{"Other": {"S"}})
	pairings, _ := Match(nil, []*cc.Declaration{cc.NewStruct("S", nil)}, cc.QualifiedName{"C"}, tombstones)
	if diff := cmp.Diff([]string{"added C.S"}, pairingSummary(pairings)); diff != "" {
		t.Errorf("pairings mismatch (-want +got):\n%s", diff)
	}
}
