package report

import "github.com/speakeasy-api/contractcompat/compat"

// classifyAndHint returns a short explanation of why a diagnostic kind
// breaks stored data and how to make the upgrade acceptable.
func classifyAndHint(kind compat.ErrorKind) (summary, hint string) {
	switch kind {
	case compat.FieldAdded:
		summary = "Stored values have no value for the new field."
		hint = "Move the data into a new nested type or a separate storage path instead of adding a field to an existing declaration."
	case compat.FieldTypeChanged:
		summary = "Stored values were encoded with the old field type."
		hint = "Keep the exact old type. To change representation, add a new declaration and migrate values explicitly."
	case compat.DeclarationRemoved:
		summary = "Stored values may still reference the removed declaration."
		hint = "Keep the declaration, or retire it with a tombstone entry in the enclosing scope."
	case compat.DeclarationKindChanged:
		summary = "Stored values were created with the old declaration kind."
		hint = "Restore the original kind. Kinds can never change in place."
	case compat.ConformanceRemoved:
		summary = "Stored values may be used through the removed interface."
		hint = "Keep every previously declared conformance; new conformances may be added."
	case compat.EnumRemoved:
		summary = "Stored enum values would become undecodable."
		hint = "Keep the enum declaration."
	case compat.EnumRawTypeChanged:
		summary = "Stored enum values are encoded with the old raw type."
		hint = "Restore the original raw type."
	case compat.EnumCaseRenamed, compat.EnumCaseReordered:
		summary = "Enum cases are stored by position, so this position would decode to a different case."
		hint = "Keep existing cases in place and append new cases at the end."
	case compat.EnumCaseRemoved:
		summary = "Stored values may hold the removed case."
		hint = "Keep every existing case. Deprecate it in documentation instead."
	case compat.ReintroducedTombstonedName:
		summary = "The name was retired with a tombstone and its old values may still exist."
		hint = "Choose a new name for the declaration."
	case compat.TombstoneRemoved:
		summary = "Tombstones are permanent."
		hint = "Restore the tombstone entry in the new version."
	case compat.TombstoneOnInterface:
		summary = "Interfaces cannot be retired with a tombstone."
		hint = "Keep the interface declaration."
	case compat.MalformedSchema:
		summary = "The declaration tree is not well formed."
		hint = "Fix the schema input: names must be unique per scope and only contracts or contract interfaces may appear at the top level."
	case compat.LimitExceeded:
		summary = "Validation stopped at a configured limit."
		hint = "Raise the depth or declaration limit, or split the contract."
	default:
		summary = "Incompatible change."
	}
	return summary, hint
}

// Hint returns the fix suggestion for a diagnostic kind, or "".
func Hint(kind compat.ErrorKind) string {
	_, hint := classifyAndHint(kind)
	return hint
}
