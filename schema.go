package contractcompat

import "sort"

// Schema maps top-level contract names to their declaration trees. One
// Schema is the deployed state of an account's contracts at one version.
type Schema map[string]*Declaration

// NewSchema indexes the given contracts by identifier.
func NewSchema(contracts ...*Declaration) Schema {
	s := make(Schema, len(contracts))
	for _, c := range contracts {
		if c != nil {
			s[c.Identifier] = c
		}
	}
	return s
}

// Names returns contract names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve finds the declaration at a fully qualified name.
func (s Schema) Resolve(name QualifiedName) *Declaration {
	if len(name) == 0 {
		return nil
	}
	root, ok := s[name[0]]
	if !ok {
		return nil
	}
	return root.Lookup(name[1:]...)
}

// Snapshot pairs a Schema with the tombstones recorded alongside it.
type Snapshot struct {
	Schema     Schema
	Tombstones TombstoneRegistry
}
