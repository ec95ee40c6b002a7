package compat

import (
	"sort"

	cc "github.com/speakeasy-api/contractcompat"
)

// walker carries the state of one contract's traversal. It is never shared
// between goroutines.
type walker struct {
	opts       Options
	log        Logger
	tombstones cc.TombstoneRegistry
	diags      DiagnosticList
	visited    int
	exhausted  bool
}

func newWalker(opts Options, log Logger, tombstones cc.TombstoneRegistry) *walker {
	return &walker{opts: opts, log: log, tombstones: tombstones}
}

// contract checks one top-level pairing and everything below it.
func (w *walker) contract(p Pairing) DiagnosticList {
	if d := topLevelMalformed(p); len(d) > 0 {
		w.diags = append(w.diags, d...)
		return w.diags
	}
	w.visit(p, 0)
	return w.diags
}

func (w *walker) visit(p Pairing, depth int) {
	if !w.count(p) {
		return
	}

	diags := CheckPairing(p)
	if w.log != nil {
		w.log.Debugf("%s %s: old=%s new=%s diagnostics=%d",
			p.Kind, p.Path(), declarationSummary(p.Old, 5), declarationSummary(p.New, 5), len(diags))
	}
	w.diags = append(w.diags, diags...)

	if p.Kind != Matched || !p.Old.Kind.IsComposite() || !p.New.Kind.IsComposite() {
		return
	}
	if w.opts.MaxDepth > 0 && depth+1 > w.opts.MaxDepth {
		w.diags = append(w.diags, newDiagnostic(LimitExceeded, p.Path(),
			"nesting below %s exceeds the depth limit of %d", p.Path(), w.opts.MaxDepth))
		return
	}
	w.scope(p.Old.Members, p.New.Members, p.Path(), depth+1)
}

func (w *walker) scope(oldMembers, newMembers []*cc.Declaration, scope cc.QualifiedName, depth int) {
	pairings, diags := Match(oldMembers, newMembers, scope, w.tombstones)
	w.diags = append(w.diags, diags...)
	for _, p := range pairings {
		w.visit(p, depth)
		if w.exhausted {
			return
		}
	}
}

// count enforces MaxDeclarations, reporting the first pairing that
// exceeds it.
func (w *walker) count(p Pairing) bool {
	if w.exhausted {
		return false
	}
	w.visited++
	if w.opts.MaxDeclarations > 0 && w.visited > w.opts.MaxDeclarations {
		w.exhausted = true
		w.diags = append(w.diags, newDiagnostic(LimitExceeded, p.Path(),
			"validation stopped after %d declarations", w.opts.MaxDeclarations))
		return false
	}
	return true
}

// topLevelMalformed rejects account-level declarations that cannot be
// contracts.
func topLevelMalformed(p Pairing) []Diagnostic {
	var diags []Diagnostic
	for _, d := range []*cc.Declaration{p.Old, p.New} {
		if d == nil {
			continue
		}
		if d.Kind != cc.KindContract && d.Kind != cc.KindInterface {
			diags = append(diags, newDiagnostic(MalformedSchema, p.Path(),
				"top-level declaration %s is a %s; only contracts and contract interfaces may be deployed", d.Identifier, d.Kind))
		}
	}
	return diags
}

// contractPairings matches the account scope and orders pairings by name.
func contractPairings(before, after cc.Snapshot, tombstones cc.TombstoneRegistry) ([]Pairing, []Diagnostic) {
	oldList, diags := schemaMembers(before.Schema, "old")
	newList, newDiags := schemaMembers(after.Schema, "new")
	diags = append(diags, newDiags...)

	pairings, matchDiags := Match(oldList, newList, cc.RootScope, tombstones)
	diags = append(diags, matchDiags...)
	sort.SliceStable(pairings, func(i, j int) bool { return pairings[i].Name < pairings[j].Name })
	return pairings, diags
}

// schemaMembers lists a schema's contracts in name order and reports keys
// that disagree with the declaration they index.
func schemaMembers(s cc.Schema, side string) ([]*cc.Declaration, []Diagnostic) {
	var diags []Diagnostic
	out := make([]*cc.Declaration, 0, len(s))
	for _, name := range s.Names() {
		d := s[name]
		if d == nil {
			diags = append(diags, newDiagnostic(MalformedSchema, cc.QualifiedName{name},
				"%s schema maps %s to no declaration", side, name))
			continue
		}
		if d.Identifier != name {
			diags = append(diags, newDiagnostic(MalformedSchema, cc.QualifiedName{name},
				"%s schema maps %s to a declaration named %s", side, name, d.Identifier))
			continue
		}
		out = append(out, d)
	}
	return out, diags
}

// checkTombstones verifies the registry grew monotonically and that no new
// removal marker targets an interface.
func checkTombstones(before, after cc.Snapshot) []Diagnostic {
	var diags []Diagnostic
	for _, t := range before.Tombstones.Missing(after.Tombstones) {
		diags = append(diags, newDiagnostic(TombstoneRemoved, t.Path(),
			"removal marker for %s in %s was dropped", t.Name, scopeLabel(t.Scope)))
	}
	for _, t := range after.Tombstones.Entries() {
		if before.Tombstones.Contains(t.Scope, t.Name) {
			continue
		}
		if target := before.Schema.Resolve(t.Path()); target != nil && target.Kind == cc.KindInterface {
			diags = append(diags, newDiagnostic(TombstoneOnInterface, t.Path(),
				"interface %s cannot be retired with a removal marker", t.Name))
		}
	}
	return diags
}

func scopeLabel(scope cc.QualifiedName) string {
	if scope.IsRoot() {
		return "the account scope"
	}
	return scope.String()
}
