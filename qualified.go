package contractcompat

import "strings"

// QualifiedName identifies a declaration by its contract name followed by
// the nested path of identifiers. The empty name is the account scope that
// holds top-level contracts.
type QualifiedName []string

// RootScope is the scope of top-level contracts.
var RootScope = QualifiedName{}

// ParseQualifiedName splits a dotted name. The empty string yields RootScope.
func ParseQualifiedName(s string) QualifiedName {
	s = strings.TrimSpace(s)
	if s == "" {
		return RootScope
	}
	return QualifiedName(strings.Split(s, "."))
}

func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}

// Child returns a new name one level below q. q is never modified.
func (q QualifiedName) Child(identifier string) QualifiedName {
	out := make(QualifiedName, len(q), len(q)+1)
	copy(out, q)
	return append(out, identifier)
}

// Parent returns the enclosing scope. The parent of a top-level name is
// RootScope.
func (q QualifiedName) Parent() QualifiedName {
	if len(q) == 0 {
		return RootScope
	}
	return q[:len(q)-1:len(q)-1]
}

// Last returns the innermost identifier, or "" for RootScope.
func (q QualifiedName) Last() string {
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

// IsRoot reports whether q is the account scope.
func (q QualifiedName) IsRoot() bool {
	return len(q) == 0
}

func (q QualifiedName) Equal(other QualifiedName) bool {
	if len(q) != len(other) {
		return false
	}
	for i := range q {
		if q[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is q itself or one of its enclosing scopes.
func (q QualifiedName) HasPrefix(prefix QualifiedName) bool {
	if len(prefix) > len(q) {
		return false
	}
	return q[:len(prefix)].Equal(prefix)
}
