package contractcompat

import (
	"fmt"
	"sort"
	"strings"
)

// TypeExpr is a structural type expression as written in a field or enum
// declaration. Two expressions are compatible only when TypesEqual holds.
type TypeExpr interface {
	// String renders the canonical source form. Set-like parts
	// (intersections, entitlements) are rendered in sorted order.
	String() string
	isTypeExpr()
}

// NominalType refers to a declared or built-in type by name, e.g. `Int`
// or `Foo.Bar`.
type NominalType struct {
	Name string
}

// OptionalType is `T?`.
type OptionalType struct {
	Type TypeExpr
}

// VariableArrayType is `[T]`.
type VariableArrayType struct {
	Elem TypeExpr
}

// ConstantArrayType is `[T; N]`.
type ConstantArrayType struct {
	Elem TypeExpr
	Size int
}

// DictionaryType is `{K: V}`.
type DictionaryType struct {
	Key   TypeExpr
	Value TypeExpr
}

// ReferenceType is `&T` or `auth(E1, E2) &T`.
type ReferenceType struct {
	Authorized   bool
	Entitlements []string
	Type         TypeExpr
}

// IntersectionType is `{I1, I2}` or `T{I1, I2}`. Member order carries no
// meaning.
type IntersectionType struct {
	Base  TypeExpr
	Types []TypeExpr
}

// CapabilityType is `Capability` or `Capability<&T>`.
type CapabilityType struct {
	Borrow TypeExpr
}

// FunctionType is `fun(A, B): R`.
type FunctionType struct {
	Params []TypeExpr
	Return TypeExpr
}

// GenericType is an instantiation such as `PublicKey<Int>`.
type GenericType struct {
	Name string
	Args []TypeExpr
}

func (NominalType) isTypeExpr()       {}
func (OptionalType) isTypeExpr()      {}
func (VariableArrayType) isTypeExpr() {}
func (ConstantArrayType) isTypeExpr() {}
func (DictionaryType) isTypeExpr()    {}
func (ReferenceType) isTypeExpr()     {}
func (IntersectionType) isTypeExpr()  {}
func (CapabilityType) isTypeExpr()    {}
func (FunctionType) isTypeExpr()      {}
func (GenericType) isTypeExpr()       {}

// Named is shorthand for NominalType{Name: name}.
func Named(name string) TypeExpr {
	return NominalType{Name: name}
}

func (t NominalType) String() string { return t.Name }

func (t OptionalType) String() string { return typeString(t.Type) + "?" }

func (t VariableArrayType) String() string { return "[" + typeString(t.Elem) + "]" }

func (t ConstantArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", typeString(t.Elem), t.Size)
}

func (t DictionaryType) String() string {
	return "{" + typeString(t.Key) + ": " + typeString(t.Value) + "}"
}

func (t ReferenceType) String() string {
	if !t.Authorized {
		return "&" + typeString(t.Type)
	}
	if len(t.Entitlements) == 0 {
		return "auth &" + typeString(t.Type)
	}
	return "auth(" + strings.Join(sortedCopy(t.Entitlements), ", ") + ") &" + typeString(t.Type)
}

func (t IntersectionType) String() string {
	parts := make([]string, 0, len(t.Types))
	for _, m := range t.Types {
		parts = append(parts, typeString(m))
	}
	sort.Strings(parts)
	prefix := ""
	if t.Base != nil {
		prefix = typeString(t.Base)
	}
	return prefix + "{" + strings.Join(parts, ", ") + "}"
}

func (t CapabilityType) String() string {
	if t.Borrow == nil {
		return "Capability"
	}
	return "Capability<" + typeString(t.Borrow) + ">"
}

func (t FunctionType) String() string {
	params := make([]string, 0, len(t.Params))
	for _, p := range t.Params {
		params = append(params, typeString(p))
	}
	ret := "Void"
	if t.Return != nil {
		ret = typeString(t.Return)
	}
	return "fun(" + strings.Join(params, ", ") + "): " + ret
}

func (t GenericType) String() string {
	args := make([]string, 0, len(t.Args))
	for _, a := range t.Args {
		args = append(args, typeString(a))
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

func typeString(t TypeExpr) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypesEqual reports exact structural equality. No subtyping is applied:
// `Int` and `Int?` differ, as do `&T` and `auth(E) &T`.
func TypesEqual(a, b TypeExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case NominalType:
		b, ok := b.(NominalType)
		return ok && a.Name == b.Name
	case OptionalType:
		b, ok := b.(OptionalType)
		return ok && TypesEqual(a.Type, b.Type)
	case VariableArrayType:
		b, ok := b.(VariableArrayType)
		return ok && TypesEqual(a.Elem, b.Elem)
	case ConstantArrayType:
		b, ok := b.(ConstantArrayType)
		return ok && a.Size == b.Size && TypesEqual(a.Elem, b.Elem)
	case DictionaryType:
		b, ok := b.(DictionaryType)
		return ok && TypesEqual(a.Key, b.Key) && TypesEqual(a.Value, b.Value)
	case ReferenceType:
		b, ok := b.(ReferenceType)
		return ok && a.Authorized == b.Authorized &&
			sameStringSet(a.Entitlements, b.Entitlements) &&
			TypesEqual(a.Type, b.Type)
	case IntersectionType:
		b, ok := b.(IntersectionType)
		if !ok || len(a.Types) != len(b.Types) || !TypesEqual(a.Base, b.Base) {
			return false
		}
		return sameTypeMultiset(a.Types, b.Types)
	case CapabilityType:
		b, ok := b.(CapabilityType)
		return ok && TypesEqual(a.Borrow, b.Borrow)
	case FunctionType:
		b, ok := b.(FunctionType)
		if !ok || len(a.Params) != len(b.Params) || !TypesEqual(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !TypesEqual(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case GenericType:
		b, ok := b.(GenericType)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !TypesEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// ContainsFunctionType reports whether a function type occurs anywhere in t,
// including inside containers and generic arguments.
func ContainsFunctionType(t TypeExpr) bool {
	found := false
	WalkType(t, func(t TypeExpr) bool {
		if _, ok := t.(FunctionType); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// WalkType visits t and its component types depth first. Returning false
// from visit stops the walk.
func WalkType(t TypeExpr, visit func(TypeExpr) bool) bool {
	if t == nil {
		return true
	}
	if !visit(t) {
		return false
	}
	var children []TypeExpr
	switch t := t.(type) {
	case OptionalType:
		children = []TypeExpr{t.Type}
	case VariableArrayType:
		children = []TypeExpr{t.Elem}
	case ConstantArrayType:
		children = []TypeExpr{t.Elem}
	case DictionaryType:
		children = []TypeExpr{t.Key, t.Value}
	case ReferenceType:
		children = []TypeExpr{t.Type}
	case IntersectionType:
		children = append([]TypeExpr{t.Base}, t.Types...)
	case CapabilityType:
		children = []TypeExpr{t.Borrow}
	case FunctionType:
		children = append(append([]TypeExpr{}, t.Params...), t.Return)
	case GenericType:
		children = t.Args
	}
	for _, c := range children {
		if !WalkType(c, visit) {
			return false
		}
	}
	return true
}

// sameTypeMultiset reports whether a and b hold pairwise equal types in any
// order.
func sameTypeMultiset(a, b []TypeExpr) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && TypesEqual(x, y) {
				used[j], found = true, true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := sortedCopy(a), sortedCopy(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
