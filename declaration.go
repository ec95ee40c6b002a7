package contractcompat

// Declaration is one node of a contract's declaration tree. Which fields are
// meaningful depends on Kind:
//
//   - composites (contract, struct, resource, interface): Members,
//     Conformances, Access
//   - field: Type, Access, Mutability
//   - enum: RawType and Members, whose enum cases are ordered by raw value
//   - enum case: Identifier only
//   - function, event, init: Signature
//
// Declarations are treated as immutable once handed to the validator.
type Declaration struct {
	Kind         DeclarationKind
	Identifier   string
	Access       Access
	Members      []*Declaration
	Conformances []string

	Type       TypeExpr
	Mutability Mutability

	RawType TypeExpr

	Signature string

	// Line is the source line the front-end read the declaration from, or 0.
	Line int
}

func newComposite(kind DeclarationKind, identifier string, conformances []string, members []*Declaration) *Declaration {
	return &Declaration{
		Kind:         kind,
		Identifier:   identifier,
		Access:       AccessAll,
		Members:      members,
		Conformances: conformances,
	}
}

// NewContract builds a contract declaration.
func NewContract(identifier string, conformances []string, members ...*Declaration) *Declaration {
	return newComposite(KindContract, identifier, conformances, members)
}

// NewStruct builds a struct declaration.
func NewStruct(identifier string, conformances []string, members ...*Declaration) *Declaration {
	return newComposite(KindStruct, identifier, conformances, members)
}

// NewResource builds a resource declaration.
func NewResource(identifier string, conformances []string, members ...*Declaration) *Declaration {
	return newComposite(KindResource, identifier, conformances, members)
}

// NewInterface builds an interface declaration.
func NewInterface(identifier string, conformances []string, members ...*Declaration) *Declaration {
	return newComposite(KindInterface, identifier, conformances, members)
}

// NewEnum builds an enum whose cases are given in raw value order.
func NewEnum(identifier string, rawType TypeExpr, cases ...string) *Declaration {
	members := make([]*Declaration, 0, len(cases))
	for _, c := range cases {
		members = append(members, NewCase(c))
	}
	return &Declaration{
		Kind:       KindEnum,
		Identifier: identifier,
		Access:     AccessAll,
		RawType:    rawType,
		Members:    members,
	}
}

// NewCase builds an enum case.
func NewCase(identifier string) *Declaration {
	return &Declaration{Kind: KindEnumCase, Identifier: identifier}
}

// NewField builds a `let` field with `access(all)`.
func NewField(identifier string, typ TypeExpr) *Declaration {
	return &Declaration{
		Kind:       KindField,
		Identifier: identifier,
		Access:     AccessAll,
		Type:       typ,
		Mutability: Constant,
	}
}

// NewFunction builds a function declaration.
func NewFunction(identifier, signature string) *Declaration {
	return &Declaration{Kind: KindFunction, Identifier: identifier, Access: AccessAll, Signature: signature}
}

// NewEvent builds an event declaration.
func NewEvent(identifier, signature string) *Declaration {
	return &Declaration{Kind: KindEvent, Identifier: identifier, Access: AccessAll, Signature: signature}
}

// NewConstructor builds an initializer. Its identifier is always "init".
func NewConstructor(signature string) *Declaration {
	return &Declaration{Kind: KindConstructor, Identifier: "init", Signature: signature}
}

// WithAccess returns a shallow copy with a different access modifier.
func (d *Declaration) WithAccess(a Access) *Declaration {
	c := *d
	c.Access = a
	return &c
}

// WithMutability returns a shallow copy with a different mutability.
func (d *Declaration) WithMutability(m Mutability) *Declaration {
	c := *d
	c.Mutability = m
	return &c
}

// Fields returns the field members in declaration order.
func (d *Declaration) Fields() []*Declaration {
	return d.membersOf(func(k DeclarationKind) bool { return k == KindField })
}

// Cases returns the enum cases in raw value order.
func (d *Declaration) Cases() []*Declaration {
	return d.membersOf(func(k DeclarationKind) bool { return k == KindEnumCase })
}

// NestedTypes returns nested composite and enum declarations.
func (d *Declaration) NestedTypes() []*Declaration {
	return d.membersOf(DeclarationKind.IsTypeDeclaration)
}

// NamedMembers returns every member except enum cases, which are identified
// by position rather than by name.
func (d *Declaration) NamedMembers() []*Declaration {
	if d == nil {
		return nil
	}
	out := make([]*Declaration, 0, len(d.Members))
	for _, m := range d.Members {
		if m != nil && m.Kind == KindEnumCase {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (d *Declaration) membersOf(keep func(DeclarationKind) bool) []*Declaration {
	if d == nil {
		return nil
	}
	var out []*Declaration
	for _, m := range d.Members {
		if m != nil && keep(m.Kind) {
			out = append(out, m)
		}
	}
	return out
}

// ContainsEnum reports whether d is an enum or declares one at any depth.
func (d *Declaration) ContainsEnum() bool {
	if d == nil {
		return false
	}
	if d.Kind == KindEnum {
		return true
	}
	for _, m := range d.Members {
		if m != nil && m.Kind.IsTypeDeclaration() && m.ContainsEnum() {
			return true
		}
	}
	return false
}

// Lookup resolves a path relative to d, e.g. Lookup("Vault", "Kind").
func (d *Declaration) Lookup(path ...string) *Declaration {
	cur := d
	for _, id := range path {
		if cur == nil {
			return nil
		}
		var next *Declaration
		for _, m := range cur.Members {
			if m != nil && m.Identifier == id {
				next = m
				break
			}
		}
		cur = next
	}
	return cur
}
