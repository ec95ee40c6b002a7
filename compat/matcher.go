package compat

import (
	cc "github.com/speakeasy-api/contractcompat"
)

// Match pairs the named members of one scope across versions.
//
// Pairing is nominal: declarations are compared only when their identifiers
// are equal within scope. A name retired in tombstones is Reintroduced when
// it is live in the new version, whether or not the old version declared it.
// Enum cases pair by position inside their enum, so a case reaching Match
// sits outside any enum.
//
// Duplicate, nil, unnamed or stray case members are reported as
// MalformedSchema and skipped; for duplicates the first occurrence is kept.
func Match(oldMembers, newMembers []*cc.Declaration, scope cc.QualifiedName, tombstones cc.TombstoneRegistry) ([]Pairing, []Diagnostic) {
	var diags []Diagnostic

	oldOrder, oldByName := indexMembers(oldMembers, scope, "old", &diags)
	newOrder, newByName := indexMembers(newMembers, scope, "new", &diags)

	pairings := make([]Pairing, 0, len(oldOrder)+len(newOrder))

	for _, name := range oldOrder {
		o := oldByName[name]
		n, ok := newByName[name]
		switch {
		case !ok:
			pairings = append(pairings, Pairing{
				Kind:       Removed,
				Scope:      scope,
				Name:       name,
				Old:        o,
				Tombstoned: tombstones.Contains(scope, name),
			})
		case tombstones.Contains(scope, name):
			pairings = append(pairings, Pairing{Kind: Reintroduced, Scope: scope, Name: name, Old: o, New: n})
		default:
			pairings = append(pairings, Pairing{Kind: Matched, Scope: scope, Name: name, Old: o, New: n})
		}
	}

	for _, name := range newOrder {
		if _, ok := oldByName[name]; ok {
			continue
		}
		kind := Added
		if tombstones.Contains(scope, name) {
			kind = Reintroduced
		}
		pairings = append(pairings, Pairing{Kind: kind, Scope: scope, Name: name, New: newByName[name]})
	}

	return pairings, diags
}

// indexMembers builds the name → declaration map of one side, preserving
// declaration order.
func indexMembers(members []*cc.Declaration, scope cc.QualifiedName, side string, diags *[]Diagnostic) ([]string, map[string]*cc.Declaration) {
	order := make([]string, 0, len(members))
	byName := make(map[string]*cc.Declaration, len(members))
	for i, m := range members {
		if m == nil {
			*diags = append(*diags, newDiagnostic(MalformedSchema, scope,
				"%s version has a nil member at index %d", side, i))
			continue
		}
		if m.Kind == cc.KindEnumCase {
			*diags = append(*diags, newDiagnostic(MalformedSchema, scope,
				"%s version declares enum case %q outside an enum", side, m.Identifier))
			continue
		}
		if m.Identifier == "" {
			*diags = append(*diags, newDiagnostic(MalformedSchema, scope,
				"%s version has an unnamed %s at index %d", side, m.Kind, i))
			continue
		}
		if prev, dup := byName[m.Identifier]; dup {
			*diags = append(*diags, newDiagnostic(MalformedSchema, scope.Child(m.Identifier),
				"%s version declares %q twice (%s and %s)", side, m.Identifier, prev.Kind, m.Kind))
			continue
		}
		byName[m.Identifier] = m
		order = append(order, m.Identifier)
	}
	return order, byName
}
