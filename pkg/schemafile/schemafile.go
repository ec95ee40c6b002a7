// Package schemafile reads contract declaration trees and tombstone
// registries from YAML.
//
// A file looks like:
//
//	contracts:
//	  Foo:
//	    kind: contract
//	    conformances: [I]
//	    members:
//	      - {kind: field, name: a, type: "String", access: all, mutability: let}
//	      - {kind: enum, name: Color, rawType: UInt8, cases: [RED, BLUE]}
//	      - {kind: struct, name: Bar, members: []}
//	      - {kind: function, name: f, signature: "fun f(): Int"}
//	tombstones:
//	  Foo: [OldType]
//
// Top-level declarations default to kind contract and take their name from
// the mapping key. The tombstone scope "" is the account scope.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cc "github.com/speakeasy-api/contractcompat"
	"gopkg.in/yaml.v3"
)

// Error is a problem found at a position in a schema file.
type Error struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LoadFile reads and parses the schema file at path.
func LoadFile(path string) (cc.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cc.Snapshot{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data, path)
}

// Load parses a schema file from r. name is used in error messages.
func Load(r io.Reader, name string) (cc.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cc.Snapshot{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse parses a schema file held in memory.
func Parse(data []byte, name string) (cc.Snapshot, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return cc.Snapshot{Schema: cc.Schema{}}, nil
		}
		return cc.Snapshot{}, &Error{File: name, Err: err}
	}

	l := &loader{file: name}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return l.snapshot(root)
}

type loader struct {
	file string
}

func (l *loader) errorf(n *yaml.Node, format string, args ...any) error {
	e := &Error{File: l.file, Err: fmt.Errorf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

func (l *loader) wrap(n *yaml.Node, err error) error {
	return &Error{File: l.file, Line: n.Line, Column: n.Column, Err: err}
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// pairs iterates a mapping node, rejecting duplicate keys.
func (l *loader) pairs(n *yaml.Node, what string, visit func(key string, keyNode, value *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return l.errorf(n, "%s must be a mapping", what)
	}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, value := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return l.errorf(keyNode, "%s keys must be strings", what)
		}
		if seen[keyNode.Value] {
			return l.errorf(keyNode, "duplicate key %q in %s", keyNode.Value, what)
		}
		seen[keyNode.Value] = true
		if err := visit(keyNode.Value, keyNode, value); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) snapshot(root *yaml.Node) (cc.Snapshot, error) {
	snap := cc.Snapshot{Schema: cc.Schema{}}
	err := l.pairs(root, "schema file", func(key string, keyNode, value *yaml.Node) error {
		switch key {
		case "contracts":
			schema, err := l.contracts(value)
			if err != nil {
				return err
			}
			snap.Schema = schema
		case "tombstones":
			reg, err := l.tombstones(value)
			if err != nil {
				return err
			}
			snap.Tombstones = reg
		default:
			return l.errorf(keyNode, "unknown top-level key %q", key)
		}
		return nil
	})
	return snap, err
}

func (l *loader) contracts(n *yaml.Node) (cc.Schema, error) {
	schema := cc.Schema{}
	err := l.pairs(n, "contracts", func(name string, _, value *yaml.Node) error {
		d, err := l.declaration(value, name, cc.KindContract)
		if err != nil {
			return err
		}
		schema[name] = d
		return nil
	})
	return schema, err
}

func (l *loader) tombstones(n *yaml.Node) (cc.TombstoneRegistry, error) {
	var reg cc.TombstoneRegistry
	err := l.pairs(n, "tombstones", func(scope string, _, value *yaml.Node) error {
		names, err := l.stringList(value, "tombstones of "+scopeLabel(scope))
		if err != nil {
			return err
		}
		reg = reg.With(cc.ParseQualifiedName(scope), names...)
		return nil
	})
	return reg, err
}

func scopeLabel(scope string) string {
	if scope == "" {
		return "the account scope"
	}
	return scope
}

func (l *loader) stringList(n *yaml.Node, what string) ([]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, l.errorf(n, "%s must be a list", what)
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode || strings.TrimSpace(item.Value) == "" {
			return nil, l.errorf(item, "%s must contain non-empty names", what)
		}
		out = append(out, strings.TrimSpace(item.Value))
	}
	return out, nil
}

// allowedKeys lists the keys a declaration of each kind may carry.
var allowedKeys = map[cc.DeclarationKind][]string{
	cc.KindContract:    {"kind", "name", "access", "conformances", "members"},
	cc.KindStruct:      {"kind", "name", "access", "conformances", "members"},
	cc.KindResource:    {"kind", "name", "access", "conformances", "members"},
	cc.KindInterface:   {"kind", "name", "access", "conformances", "members"},
	cc.KindEnum:        {"kind", "name", "access", "rawType", "cases"},
	cc.KindField:       {"kind", "name", "access", "mutability", "type"},
	cc.KindFunction:    {"kind", "name", "access", "signature"},
	cc.KindEvent:       {"kind", "name", "access", "signature"},
	cc.KindConstructor: {"kind", "name", "signature"},
}

func allowed(kind cc.DeclarationKind, key string) bool {
	for _, k := range allowedKeys[kind] {
		if k == key {
			return true
		}
	}
	return false
}

// declaration decodes one declaration mapping. defaultKind applies when
// the mapping has no kind key; KindUnknown makes the key mandatory.
func (l *loader) declaration(n *yaml.Node, defaultName string, defaultKind cc.DeclarationKind) (*cc.Declaration, error) {
	if n.Kind != yaml.MappingNode {
		return nil, l.errorf(n, "declaration %s must be a mapping", defaultName)
	}

	fields := map[string]*yaml.Node{}
	err := l.pairs(n, "declaration", func(key string, _, value *yaml.Node) error {
		fields[key] = value
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := defaultKind
	if k, ok := fields["kind"]; ok {
		kind = cc.ParseDeclarationKind(k.Value)
		if kind == cc.KindUnknown || kind == cc.KindEnumCase {
			return nil, l.errorf(k, "unknown declaration kind %q", k.Value)
		}
	} else if kind == cc.KindUnknown {
		return nil, l.errorf(n, "declaration %s needs a kind", nameOr(fields, defaultName))
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i]; !allowed(kind, key.Value) {
			return nil, l.errorf(key, "key %q is not valid for a %s", key.Value, kind)
		}
	}

	d := &cc.Declaration{
		Kind:       kind,
		Identifier: nameOr(fields, defaultName),
		Access:     cc.AccessAll,
		Line:       n.Line,
	}
	if kind == cc.KindConstructor && d.Identifier == "" {
		d.Identifier = "init"
	}
	if d.Identifier == "" {
		return nil, l.errorf(n, "%s declaration needs a name", kind)
	}

	if a, ok := fields["access"]; ok {
		access, ok := cc.ParseAccess(a.Value)
		if !ok {
			return nil, l.errorf(a, "unknown access modifier %q", a.Value)
		}
		d.Access = access
	}

	switch {
	case kind.IsComposite():
		if d.Conformances, err = l.stringList(fields["conformances"], "conformances"); err != nil {
			return nil, err
		}
		if d.Members, err = l.members(fields["members"]); err != nil {
			return nil, err
		}
	case kind == cc.KindEnum:
		if rt, ok := fields["rawType"]; ok {
			if d.RawType, err = ParseType(rt.Value); err != nil {
				return nil, l.wrap(rt, err)
			}
		}
		cases, err := l.stringList(fields["cases"], "cases of "+d.Identifier)
		if err != nil {
			return nil, err
		}
		for _, c := range cases {
			d.Members = append(d.Members, cc.NewCase(c))
		}
	case kind == cc.KindField:
		t, ok := fields["type"]
		if !ok {
			return nil, l.errorf(n, "field %s needs a type", d.Identifier)
		}
		if d.Type, err = ParseType(t.Value); err != nil {
			return nil, l.wrap(t, err)
		}
		if m, ok := fields["mutability"]; ok {
			switch m.Value {
			case "let":
				d.Mutability = cc.Constant
			case "var":
				d.Mutability = cc.Variable
			default:
				return nil, l.errorf(m, "mutability must be let or var, got %q", m.Value)
			}
		}
	default:
		if s, ok := fields["signature"]; ok {
			d.Signature = s.Value
		}
	}
	return d, nil
}

func (l *loader) members(n *yaml.Node) ([]*cc.Declaration, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, l.errorf(n, "members must be a list")
	}
	out := make([]*cc.Declaration, 0, len(n.Content))
	for _, item := range n.Content {
		d, err := l.declaration(item, "", cc.KindUnknown)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func nameOr(fields map[string]*yaml.Node, fallback string) string {
	if n, ok := fields["name"]; ok {
		return strings.TrimSpace(n.Value)
	}
	return fallback
}
