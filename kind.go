package contractcompat

import "strings"

// DeclarationKind tags the variant carried by a Declaration.
type DeclarationKind int

const (
	KindUnknown DeclarationKind = iota
	KindContract
	KindStruct
	KindResource
	KindInterface
	KindEnum
	KindField
	KindFunction
	KindEnumCase
	KindEvent
	KindConstructor
)

func (k DeclarationKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindStruct:
		return "struct"
	case KindResource:
		return "resource"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindField:
		return "field"
	case KindFunction:
		return "function"
	case KindEnumCase:
		return "case"
	case KindEvent:
		return "event"
	case KindConstructor:
		return "init"
	default:
		return "unknown"
	}
}

// ParseDeclarationKind parses the lower-case keyword form produced by String.
// Unknown keywords map to KindUnknown.
func ParseDeclarationKind(s string) DeclarationKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contract":
		return KindContract
	case "struct", "structure":
		return KindStruct
	case "resource":
		return KindResource
	case "interface":
		return KindInterface
	case "enum":
		return KindEnum
	case "field":
		return KindField
	case "function", "fun":
		return KindFunction
	case "case":
		return KindEnumCase
	case "event":
		return KindEvent
	case "init", "constructor":
		return KindConstructor
	default:
		return KindUnknown
	}
}

// IsComposite reports whether declarations of this kind own fields and
// nested declarations.
func (k DeclarationKind) IsComposite() bool {
	switch k {
	case KindContract, KindStruct, KindResource, KindInterface:
		return true
	}
	return false
}

// IsTypeDeclaration reports whether the kind declares a named type:
// any composite, or an enum.
func (k DeclarationKind) IsTypeDeclaration() bool {
	return k.IsComposite() || k == KindEnum
}

// IsPersisted reports whether values shaped by this declaration can end up
// in account storage. Functions, events and initializers never do.
func (k DeclarationKind) IsPersisted() bool {
	switch k {
	case KindFunction, KindEvent, KindConstructor, KindUnknown:
		return false
	}
	return true
}

// Access is a declaration's access modifier. It never affects storage
// compatibility.
type Access int

const (
	AccessNotSpecified Access = iota
	AccessAll
	AccessAccount
	AccessContract
	AccessSelf
)

func (a Access) String() string {
	switch a {
	case AccessAll:
		return "all"
	case AccessAccount:
		return "account"
	case AccessContract:
		return "contract"
	case AccessSelf:
		return "self"
	default:
		return ""
	}
}

// ParseAccess parses an access keyword. "pub" and "priv" are accepted as
// their legacy spellings.
func ParseAccess(s string) (Access, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return AccessNotSpecified, true
	case "all", "pub":
		return AccessAll, true
	case "account":
		return AccessAccount, true
	case "contract":
		return AccessContract, true
	case "self", "priv":
		return AccessSelf, true
	}
	return AccessNotSpecified, false
}

// Mutability distinguishes `let` from `var` fields.
type Mutability int

const (
	Constant Mutability = iota
	Variable
)

func (m Mutability) String() string {
	if m == Variable {
		return "var"
	}
	return "let"
}
