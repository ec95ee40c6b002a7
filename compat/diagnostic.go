package compat

import (
	"errors"
	"fmt"
	"strings"

	cc "github.com/speakeasy-api/contractcompat"
)

// ErrorKind classifies a compatibility violation.
type ErrorKind string

const (
	FieldAdded                 ErrorKind = "FieldAdded"
	FieldTypeChanged           ErrorKind = "FieldTypeChanged"
	DeclarationRemoved         ErrorKind = "DeclarationRemoved"
	DeclarationKindChanged     ErrorKind = "DeclarationKindChanged"
	ConformanceRemoved         ErrorKind = "ConformanceRemoved"
	EnumRemoved                ErrorKind = "EnumRemoved"
	EnumRawTypeChanged         ErrorKind = "EnumRawTypeChanged"
	EnumCaseRenamed            ErrorKind = "EnumCaseRenamed"
	EnumCaseRemoved            ErrorKind = "EnumCaseRemoved"
	EnumCaseReordered          ErrorKind = "EnumCaseReordered"
	ReintroducedTombstonedName ErrorKind = "ReintroducedTombstonedName"
	TombstoneRemoved           ErrorKind = "TombstoneRemoved"
	TombstoneOnInterface       ErrorKind = "TombstoneOnInterface"

	// MalformedSchema reports input the front-end should never have produced,
	// such as duplicate names within one scope.
	MalformedSchema ErrorKind = "MalformedSchema"
	// LimitExceeded reports that a configured depth or size bound stopped
	// the walk early.
	LimitExceeded ErrorKind = "LimitExceeded"
)

// Kinds lists every ErrorKind in taxonomy order.
var Kinds = []ErrorKind{
	FieldAdded,
	FieldTypeChanged,
	DeclarationRemoved,
	DeclarationKindChanged,
	ConformanceRemoved,
	EnumRemoved,
	EnumRawTypeChanged,
	EnumCaseRenamed,
	EnumCaseRemoved,
	EnumCaseReordered,
	ReintroducedTombstonedName,
	TombstoneRemoved,
	TombstoneOnInterface,
	MalformedSchema,
	LimitExceeded,
}

// NoPosition marks a diagnostic that does not point at an enum case.
const NoPosition = -1

// Diagnostic describes one violation at a declaration path. Position is the
// enum case index for case-level diagnostics and NoPosition otherwise.
//
//nolint:errname // domain term, not an error type.
type Diagnostic struct {
	Kind     ErrorKind
	Path     cc.QualifiedName
	Position int
	Message  string
}

func newDiagnostic(kind ErrorKind, path cc.QualifiedName, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Path: path, Position: NoPosition, Message: fmt.Sprintf(format, args...)}
}

func newCaseDiagnostic(kind ErrorKind, enum cc.QualifiedName, position int, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Path: enum, Position: position, Message: fmt.Sprintf(format, args...)}
}

// Location renders the path, e.g. `Foo.Color[1]` for an enum case.
func (d Diagnostic) Location() string {
	loc := d.Path.String()
	if d.Position != NoPosition {
		loc += fmt.Sprintf("[%d]", d.Position)
	}
	return loc
}

// String renders `Kind(Location): message`.
func (d Diagnostic) String() string {
	if d.Message == "" {
		return fmt.Sprintf("%s(%s)", d.Kind, d.Location())
	}
	return fmt.Sprintf("%s(%s): %s", d.Kind, d.Location(), d.Message)
}

// DiagnosticList is the error form of a rejected validation.
type DiagnosticList []Diagnostic //nolint:errname // keeps the domain name.

// Error returns a compact summary of the list.
func (l DiagnosticList) Error() string {
	switch len(l) {
	case 0:
		return "no compatibility errors"
	case 1:
		return l[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].String(), len(l)-1)
	}
}

// Kinds returns the distinct kinds present, in first-seen order.
func (l DiagnosticList) Kinds() []ErrorKind {
	seen := make(map[ErrorKind]bool, len(l))
	var out []ErrorKind
	for _, d := range l {
		if !seen[d.Kind] {
			seen[d.Kind] = true
			out = append(out, d.Kind)
		}
	}
	return out
}

// Has reports whether any diagnostic has the given kind.
func (l DiagnosticList) Has(kind ErrorKind) bool {
	for _, d := range l {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Describe renders one diagnostic per line.
func (l DiagnosticList) Describe() string {
	var b strings.Builder
	for _, d := range l {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// AsDiagnostics extracts the diagnostics carried by err, if any.
func AsDiagnostics(err error) ([]Diagnostic, bool) {
	if err == nil {
		return nil, false
	}
	var list DiagnosticList
	if errors.As(err, &list) {
		return []Diagnostic(list), true
	}
	var listPtr *DiagnosticList
	if errors.As(err, &listPtr) && listPtr != nil {
		return []Diagnostic(*listPtr), true
	}
	return nil, false
}
