package compat

import (
	cc "github.com/speakeasy-api/contractcompat"
)

// CheckEnumCases compares enum cases by position. A case's raw value is its
// index, so index and name together form its identity:
//
//   - within the shared prefix every name must be unchanged; a different
//     name is a reordering when it belongs to another old case and a rename
//     otherwise
//   - cases past the old length are appended and allowed
//   - old cases past the new length were removed
func CheckEnumCases(enum cc.QualifiedName, oldCases, newCases []*cc.Declaration) []Diagnostic {
	var diags []Diagnostic

	oldIndex, dups := caseIndex(enum, "old", oldCases)
	diags = append(diags, dups...)
	_, dups = caseIndex(enum, "new", newCases)
	diags = append(diags, dups...)

	shared := min(len(oldCases), len(newCases))
	for i := 0; i < shared; i++ {
		was, now := oldCases[i].Identifier, newCases[i].Identifier
		if was == now {
			continue
		}
		if j, moved := oldIndex[now]; moved && j != i {
			diags = append(diags, newCaseDiagnostic(EnumCaseReordered, enum, i,
				"case %s moved from position %d to %d, changing its raw value", now, j, i))
			continue
		}
		diags = append(diags, newCaseDiagnostic(EnumCaseRenamed, enum, i,
			"case %s at position %d is now %s", was, i, now))
	}

	for i := shared; i < len(oldCases); i++ {
		diags = append(diags, newCaseDiagnostic(EnumCaseRemoved, enum, i,
			"case %s at position %d was removed", oldCases[i].Identifier, i))
	}

	return diags
}

// enumCases returns the cases of an enum in raw value order. Nil members,
// unnamed cases and members other than cases or functions are reported as
// MalformedSchema. An unnamed case still holds its position.
func enumCases(enum cc.QualifiedName, side string, d *cc.Declaration) ([]*cc.Declaration, []Diagnostic) {
	var (
		cases []*cc.Declaration
		diags []Diagnostic
	)
	for i, m := range d.Members {
		switch {
		case m == nil:
			diags = append(diags, newDiagnostic(MalformedSchema, enum,
				"%s version has a nil member at index %d", side, i))
		case m.Kind == cc.KindEnumCase:
			if m.Identifier == "" {
				diags = append(diags, newCaseDiagnostic(MalformedSchema, enum, len(cases),
					"%s version has an unnamed case at position %d", side, len(cases)))
			}
			cases = append(cases, m)
		case m.Kind == cc.KindFunction:
		default:
			diags = append(diags, newDiagnostic(MalformedSchema, enum,
				"%s version declares %s %q inside an enum", side, m.Kind, m.Identifier))
		}
	}
	return cases, diags
}

func caseIndex(enum cc.QualifiedName, side string, cases []*cc.Declaration) (map[string]int, []Diagnostic) {
	var diags []Diagnostic
	idx := make(map[string]int, len(cases))
	for i, c := range cases {
		if c.Identifier == "" {
			continue
		}
		if _, dup := idx[c.Identifier]; dup {
			diags = append(diags, newCaseDiagnostic(MalformedSchema, enum, i,
				"%s version declares case %s twice", side, c.Identifier))
			continue
		}
		idx[c.Identifier] = i
	}
	return idx, diags
}
