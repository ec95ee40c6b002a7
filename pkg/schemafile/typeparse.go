package schemafile

import (
	"errors"
	"fmt"
	"strconv"

	cc "github.com/speakeasy-api/contractcompat"
)

// ErrInvalidType reports a field or raw type that does not conform to the
// type grammar.
var ErrInvalidType = errors.New("invalid type")

func typeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidType}, args...)...)
}

// ParseType parses a type expression such as `{String: [Int?]}`,
// `auth(Withdraw) &Vault` or `Capability<&{Receiver}>`.
func ParseType(src string) (cc.TypeExpr, error) {
	r := &typeReader{src: src}
	r.skipSpace()
	if r.atEnd() {
		return nil, typeErrorf("type cannot be empty")
	}
	t, err := r.parseType()
	if err != nil {
		return nil, err
	}
	r.skipSpace()
	if !r.atEnd() {
		return nil, typeErrorf("unexpected %q at column %d in %q", r.src[r.pos:], r.pos+1, src)
	}
	return t, nil
}

type typeReader struct {
	src string
	pos int
}

// parseType parses a prefix form followed by any number of `?`.
func (r *typeReader) parseType() (cc.TypeExpr, error) {
	t, err := r.parsePrimary()
	if err != nil {
		return nil, err
	}
	for r.consume('?') {
		t = cc.OptionalType{Type: t}
	}
	return t, nil
}

func (r *typeReader) parsePrimary() (cc.TypeExpr, error) {
	r.skipSpace()
	if r.atEnd() {
		return nil, r.errorf("expected a type")
	}

	switch r.peek() {
	case '&':
		r.pos++
		inner, err := r.parseType()
		if err != nil {
			return nil, err
		}
		return cc.ReferenceType{Type: inner}, nil
	case '[':
		return r.parseArray()
	case '{':
		return r.parseBraces(nil)
	case '(':
		r.pos++
		inner, err := r.parseType()
		if err != nil {
			return nil, err
		}
		if err := r.expect(')'); err != nil {
			return nil, err
		}
		return inner, nil
	}

	name := r.readIdent()
	if name == "" {
		return nil, r.errorf("unexpected %q", r.peek())
	}

	switch name {
	case "auth":
		return r.parseAuth()
	case "fun":
		return r.parseFunction()
	case "Capability":
		if !r.consume('<') {
			return cc.CapabilityType{}, nil
		}
		borrow, err := r.parseType()
		if err != nil {
			return nil, err
		}
		if err := r.expect('>'); err != nil {
			return nil, err
		}
		return cc.CapabilityType{Borrow: borrow}, nil
	}

	if r.consume('<') {
		args, err := r.parseList('>')
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, r.errorf("%s<> needs at least one type argument", name)
		}
		return cc.GenericType{Name: name, Args: args}, nil
	}

	r.skipSpace()
	if !r.atEnd() && r.peek() == '{' {
		return r.parseBraces(cc.Named(name))
	}
	return cc.Named(name), nil
}

// parseArray parses `[T]` or `[T; N]`.
func (r *typeReader) parseArray() (cc.TypeExpr, error) {
	r.pos++
	elem, err := r.parseType()
	if err != nil {
		return nil, err
	}
	if r.consume(';') {
		r.skipSpace()
		start := r.pos
		for !r.atEnd() && isDigit(r.peek()) {
			r.pos++
		}
		size, err := strconv.Atoi(r.src[start:r.pos])
		if err != nil {
			return nil, r.errorf("array size must be a non-negative integer")
		}
		if err := r.expect(']'); err != nil {
			return nil, err
		}
		return cc.ConstantArrayType{Elem: elem, Size: size}, nil
	}
	if err := r.expect(']'); err != nil {
		return nil, err
	}
	return cc.VariableArrayType{Elem: elem}, nil
}

// parseBraces parses `{K: V}` or an intersection `{I1, I2}`. A non-nil
// base only admits the intersection form.
func (r *typeReader) parseBraces(base cc.TypeExpr) (cc.TypeExpr, error) {
	if err := r.expect('{'); err != nil {
		return nil, err
	}
	r.skipSpace()
	if r.consume('}') {
		return cc.IntersectionType{Base: base}, nil
	}

	first, err := r.parseType()
	if err != nil {
		return nil, err
	}
	if base == nil && r.consume(':') {
		value, err := r.parseType()
		if err != nil {
			return nil, err
		}
		if err := r.expect('}'); err != nil {
			return nil, err
		}
		return cc.DictionaryType{Key: first, Value: value}, nil
	}

	types := []cc.TypeExpr{first}
	for r.consume(',') {
		t, err := r.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := r.expect('}'); err != nil {
		return nil, err
	}
	return cc.IntersectionType{Base: base, Types: types}, nil
}

// parseAuth parses the remainder of `auth(E1, E2) &T` or `auth &T`.
func (r *typeReader) parseAuth() (cc.TypeExpr, error) {
	var entitlements []string
	if r.consume('(') {
		for {
			r.skipSpace()
			e := r.readIdent()
			if e == "" {
				return nil, r.errorf("expected an entitlement name")
			}
			entitlements = append(entitlements, e)
			if !r.consume(',') {
				break
			}
		}
		if err := r.expect(')'); err != nil {
			return nil, err
		}
	}
	if err := r.expect('&'); err != nil {
		return nil, err
	}
	inner, err := r.parseType()
	if err != nil {
		return nil, err
	}
	return cc.ReferenceType{Authorized: true, Entitlements: entitlements, Type: inner}, nil
}

// parseFunction parses the remainder of `fun(A, B): R`. A missing or Void
// return type is stored as nil.
func (r *typeReader) parseFunction() (cc.TypeExpr, error) {
	if err := r.expect('('); err != nil {
		return nil, err
	}
	params, err := r.parseList(')')
	if err != nil {
		return nil, err
	}
	fn := cc.FunctionType{Params: params}
	if r.consume(':') {
		ret, err := r.parseType()
		if err != nil {
			return nil, err
		}
		if n, ok := ret.(cc.NominalType); !ok || n.Name != "Void" {
			fn.Return = ret
		}
	}
	return fn, nil
}

// parseList parses comma-separated types up to and including the closing
// delimiter. The opening delimiter has already been consumed.
func (r *typeReader) parseList(closing byte) ([]cc.TypeExpr, error) {
	var out []cc.TypeExpr
	if r.consume(closing) {
		return out, nil
	}
	for {
		t, err := r.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if r.consume(',') {
			continue
		}
		if err := r.expect(closing); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (r *typeReader) readIdent() string {
	start := r.pos
	for !r.atEnd() {
		c := r.peek()
		if isIdentStart(c) || (r.pos > start && (isDigit(c) || c == '.')) {
			r.pos++
			continue
		}
		break
	}
	// A trailing dot is not part of the name.
	for r.pos > start && r.src[r.pos-1] == '.' {
		r.pos--
	}
	return r.src[start:r.pos]
}

func (r *typeReader) consume(c byte) bool {
	r.skipSpace()
	if !r.atEnd() && r.peek() == c {
		r.pos++
		return true
	}
	return false
}

func (r *typeReader) expect(c byte) error {
	if r.consume(c) {
		return nil
	}
	if r.atEnd() {
		return r.errorf("expected %q before end of input", c)
	}
	return r.errorf("expected %q, found %q", c, r.peek())
}

func (r *typeReader) errorf(format string, args ...any) error {
	return typeErrorf("%s at column %d in %q", fmt.Sprintf(format, args...), r.pos+1, r.src)
}

func (r *typeReader) peek() byte {
	return r.src[r.pos]
}

func (r *typeReader) skipSpace() {
	for !r.atEnd() && (r.src[r.pos] == ' ' || r.src[r.pos] == '\t') {
		r.pos++
	}
}

func (r *typeReader) atEnd() bool {
	return r.pos >= len(r.src)
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
