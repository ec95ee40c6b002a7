package contractcompat

import "sort"

// TombstoneRegistry records type names that were retired with a removal
// marker, grouped by the scope they were declared in.
//
// A registry is a value: With and Union return new registries and never
// mutate the receiver, so a snapshot handed to one validation call cannot
// change under another.
type TombstoneRegistry struct {
	scopes map[string]map[string]struct{}
}

// NewTombstoneRegistry builds a registry from a scope → names table. Scope
// keys use the dotted form; "" is the account scope.
func NewTombstoneRegistry(entries map[string][]string) TombstoneRegistry {
	var r TombstoneRegistry
	for scope, names := range entries {
		r = r.With(ParseQualifiedName(scope), names...)
	}
	return r
}

// With returns a copy of r that additionally retires names at scope.
func (r TombstoneRegistry) With(scope QualifiedName, names ...string) TombstoneRegistry {
	out := r.clone()
	if len(names) == 0 {
		return out
	}
	key := scope.String()
	set, ok := out.scopes[key]
	if !ok {
		set = make(map[string]struct{}, len(names))
		out.scopes[key] = set
	}
	for _, n := range names {
		set[n] = struct{}{}
	}
	return out
}

// Union returns the entries of both registries.
func (r TombstoneRegistry) Union(other TombstoneRegistry) TombstoneRegistry {
	out := r.clone()
	for key, names := range other.scopes {
		set, ok := out.scopes[key]
		if !ok {
			set = make(map[string]struct{}, len(names))
			out.scopes[key] = set
		}
		for n := range names {
			set[n] = struct{}{}
		}
	}
	return out
}

// Contains reports whether name is retired at scope.
func (r TombstoneRegistry) Contains(scope QualifiedName, name string) bool {
	set, ok := r.scopes[scope.String()]
	if !ok {
		return false
	}
	_, ok = set[name]
	return ok
}

// Scopes returns every scope holding at least one entry, sorted.
func (r TombstoneRegistry) Scopes() []QualifiedName {
	keys := make([]string, 0, len(r.scopes))
	for k, set := range r.scopes {
		if len(set) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]QualifiedName, 0, len(keys))
	for _, k := range keys {
		out = append(out, ParseQualifiedName(k))
	}
	return out
}

// Names returns the retired names at scope, sorted.
func (r TombstoneRegistry) Names(scope QualifiedName) []string {
	set := r.scopes[scope.String()]
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len counts entries across all scopes.
func (r TombstoneRegistry) Len() int {
	n := 0
	for _, set := range r.scopes {
		n += len(set)
	}
	return n
}

// Tombstone is a single (scope, name) entry.
type Tombstone struct {
	Scope QualifiedName
	Name  string
}

// Path is the qualified name the tombstone retires.
func (t Tombstone) Path() QualifiedName {
	return t.Scope.Child(t.Name)
}

// Entries lists every entry ordered by scope then name.
func (r TombstoneRegistry) Entries() []Tombstone {
	var out []Tombstone
	for _, scope := range r.Scopes() {
		for _, name := range r.Names(scope) {
			out = append(out, Tombstone{Scope: scope, Name: name})
		}
	}
	return out
}

// Missing returns the entries of r that newer does not contain.
func (r TombstoneRegistry) Missing(newer TombstoneRegistry) []Tombstone {
	var out []Tombstone
	for _, t := range r.Entries() {
		if !newer.Contains(t.Scope, t.Name) {
			out = append(out, t)
		}
	}
	return out
}

func (r TombstoneRegistry) clone() TombstoneRegistry {
	out := TombstoneRegistry{scopes: make(map[string]map[string]struct{}, len(r.scopes))}
	for k, set := range r.scopes {
		c := make(map[string]struct{}, len(set))
		for n := range set {
			c[n] = struct{}{}
		}
		out.scopes[k] = c
	}
	return out
}
