package compat

import (
	cc "github.com/speakeasy-api/contractcompat"
)

// ruleSet holds the compatibility checks for one declaration kind. Every
// check is pure: it reads the pairing and returns diagnostics.
type ruleSet struct {
	added   func(Pairing) []Diagnostic
	removed func(Pairing) []Diagnostic
	matched func(Pairing) []Diagnostic
}

var compositeRules = ruleSet{
	added:   allow,
	removed: compositeRemoved,
	matched: compositeMatched,
}

var nonPersistedRules = ruleSet{
	added:   allow,
	removed: allow,
	matched: allow,
}

var rules = map[cc.DeclarationKind]ruleSet{
	cc.KindContract:  compositeRules,
	cc.KindStruct:    compositeRules,
	cc.KindResource:  compositeRules,
	cc.KindInterface: compositeRules,
	cc.KindField: {
		added:   fieldAdded,
		removed: allow,
		matched: fieldMatched,
	},
	cc.KindEnum: {
		added:   allow,
		removed: enumRemoved,
		matched: enumMatched,
	},
	cc.KindFunction:    nonPersistedRules,
	cc.KindEvent:       nonPersistedRules,
	cc.KindConstructor: nonPersistedRules,
}

// CheckPairing applies the rules for the pairing's kind. It does not
// recurse into members; the validator drives recursion.
func CheckPairing(p Pairing) []Diagnostic {
	switch p.Kind {
	case Reintroduced:
		return reintroduced(p)
	case Added:
		return ruleFor(p.New).added(p)
	case Removed:
		return ruleFor(p.Old).removed(p)
	case Matched:
		if p.Old.Kind != p.New.Kind {
			return kindChanged(p)
		}
		return ruleFor(p.Old).matched(p)
	}
	return nil
}

func ruleFor(d *cc.Declaration) ruleSet {
	if rs, ok := rules[d.Kind]; ok {
		return rs
	}
	return ruleSet{
		added:   malformedKind(d),
		removed: malformedKind(d),
		matched: malformedKind(d),
	}
}

func malformedKind(d *cc.Declaration) func(Pairing) []Diagnostic {
	return func(p Pairing) []Diagnostic {
		return []Diagnostic{newDiagnostic(MalformedSchema, p.Path(), "declaration has unsupported kind %s", d.Kind)}
	}
}

func allow(Pairing) []Diagnostic { return nil }

// kindChanged handles a name whose declaration kind differs across versions.
// Between two type declarations this is a kind change. Otherwise the old
// declaration is treated as removed and the new one as added.
func kindChanged(p Pairing) []Diagnostic {
	if p.Old.Kind.IsTypeDeclaration() && p.New.Kind.IsTypeDeclaration() {
		return []Diagnostic{newDiagnostic(DeclarationKindChanged, p.Path(),
			"%s %s cannot become %s", p.Old.Kind, p.Name, p.New.Kind)}
	}
	removed := Pairing{Kind: Removed, Scope: p.Scope, Name: p.Name, Old: p.Old}
	added := Pairing{Kind: Added, Scope: p.Scope, Name: p.Name, New: p.New}
	return append(ruleFor(p.Old).removed(removed), ruleFor(p.New).added(added)...)
}

func reintroduced(p Pairing) []Diagnostic {
	if p.Old != nil {
		return []Diagnostic{newDiagnostic(ReintroducedTombstonedName, p.Path(),
			"%s is retired by a removal marker but is still declared", p.Name)}
	}
	return []Diagnostic{newDiagnostic(ReintroducedTombstonedName, p.Path(),
		"%s was retired by a removal marker and cannot be declared again", p.Name)}
}

// ============================================================================
// COMPOSITES
// ============================================================================

func compositeRemoved(p Pairing) []Diagnostic {
	if p.Tombstoned || !p.Old.ContainsEnum() {
		return nil
	}
	return []Diagnostic{newDiagnostic(DeclarationRemoved, p.Path(),
		"%s %s declares an enum and cannot be removed without a removal marker", p.Old.Kind, p.Name)}
}

func compositeMatched(p Pairing) []Diagnostic {
	var diags []Diagnostic
	have := make(map[string]bool, len(p.New.Conformances))
	for _, c := range p.New.Conformances {
		have[c] = true
	}
	for _, c := range p.Old.Conformances {
		if !have[c] {
			diags = append(diags, newDiagnostic(ConformanceRemoved, p.Path(),
				"conformance to %s was removed", c))
		}
	}
	return diags
}

// ============================================================================
// FIELDS
// ============================================================================

func fieldAdded(p Pairing) []Diagnostic {
	return []Diagnostic{newDiagnostic(FieldAdded, p.Path(),
		"field %s: %s is new; stored values have no value for it", p.Name, typeLabel(p.New.Type))}
}

func fieldMatched(p Pairing) []Diagnostic {
	if p.Old.Type == nil || p.New.Type == nil {
		return []Diagnostic{newDiagnostic(MalformedSchema, p.Path(), "field %s has no declared type", p.Name)}
	}
	if cc.TypesEqual(p.Old.Type, p.New.Type) {
		return nil
	}
	return []Diagnostic{newDiagnostic(FieldTypeChanged, p.Path(),
		"field %s changed type from %s to %s", p.Name, p.Old.Type, p.New.Type)}
}

// ============================================================================
// ENUMS
// ============================================================================

func enumRemoved(p Pairing) []Diagnostic {
	if p.Tombstoned {
		return nil
	}
	return []Diagnostic{newDiagnostic(EnumRemoved, p.Path(),
		"enum %s cannot be removed without a removal marker", p.Name)}
}

func enumMatched(p Pairing) []Diagnostic {
	var diags []Diagnostic
	if !cc.TypesEqual(p.Old.RawType, p.New.RawType) {
		diags = append(diags, newDiagnostic(EnumRawTypeChanged, p.Path(),
			"raw type changed from %s to %s", typeLabel(p.Old.RawType), typeLabel(p.New.RawType)))
	}
	oldCases, malformed := enumCases(p.Path(), "old", p.Old)
	diags = append(diags, malformed...)
	newCases, malformed := enumCases(p.Path(), "new", p.New)
	diags = append(diags, malformed...)
	return append(diags, CheckEnumCases(p.Path(), oldCases, newCases)...)
}

func typeLabel(t cc.TypeExpr) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}
