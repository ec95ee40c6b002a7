// Package layout exports the persisted shape of contracts as JSON Schema
// components in an OpenAPI 3.1 document.
//
// Every composite and enum becomes a component named by its qualified
// name. Fields become properties; functions, events and initializers are
// omitted because they are never stored. Each component carries:
//
//	x-contract-kind:   contract, struct, resource, interface or enum
//	x-contract-digest: the layout fingerprint of the declaration
//
// The document is validated and normalised with speakeasy-api/openapi
// before it is written.
package layout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	cc "github.com/speakeasy-api/contractcompat"
	"github.com/speakeasy-api/contractcompat/compat"
	"github.com/speakeasy-api/openapi/extensions"
	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/openapi"
	"gopkg.in/yaml.v3"
)

const (
	extKind   = "x-contract-kind"
	extName   = "x-contract-name"
	extDigest = "x-contract-digest"
	extType   = "x-contract-type"
	extCases  = "x-contract-cases"
)

// Options configures the exported document.
type Options struct {
	Title   string
	Version string
	// Fingerprinter is reused when set.
	Fingerprinter *compat.Fingerprinter
}

// Export builds, validates and annotates the layout document for s.
func Export(ctx context.Context, s cc.Snapshot, opts Options) (*openapi.OpenAPI, error) {
	if opts.Title == "" {
		opts.Title = "Contract storage layout"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	fp := opts.Fingerprinter
	if fp == nil {
		fp = compat.NewFingerprinter()
	}

	raw, err := yaml.Marshal(document(s, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble layout document: %w", err)
	}

	doc, validationErrs, err := openapi.Unmarshal(ctx, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout document: %w", err)
	}
	if len(validationErrs) > 0 {
		return nil, fmt.Errorf("layout document failed validation: %v", validationErrs[0])
	}

	var walkErrs []string
	for item := range openapi.Walk(ctx, doc) {
		err := item.Match(openapi.Matcher{
			Schema: func(schema *oas3.JSONSchema[oas3.Referenceable]) error {
				return annotate(schema, s.Schema, fp)
			},
		})
		if err != nil {
			walkErrs = append(walkErrs, fmt.Sprintf("%v: %v", item.Location, err))
		}
	}
	if len(walkErrs) > 0 {
		return nil, fmt.Errorf("layout annotation errors:\n  %s", strings.Join(walkErrs, "\n  "))
	}
	return doc, nil
}

// Write exports s and writes the document as YAML.
func Write(ctx context.Context, w io.Writer, s cc.Snapshot, opts Options) error {
	doc, err := Export(ctx, s, opts)
	if err != nil {
		return err
	}
	if err := openapi.Marshal(ctx, doc, w); err != nil {
		return fmt.Errorf("failed to marshal layout document: %w", err)
	}
	return nil
}

// annotate stamps the layout digest onto a component schema produced by
// Components.
func annotate(schema *oas3.JSONSchema[oas3.Referenceable], decls cc.Schema, fp *compat.Fingerprinter) error {
	ext := schema.GetExtensions()
	if ext == nil {
		return nil
	}
	nameNode, ok := ext.Get(extName)
	if !ok {
		return nil
	}
	d := decls.Resolve(cc.ParseQualifiedName(nameNode.Value))
	if d == nil {
		return fmt.Errorf("component %s has no declaration", nameNode.Value)
	}

	s := schema.GetLeft()
	if s == nil {
		return fmt.Errorf("component %s is not an inline schema", nameNode.Value)
	}
	if s.Extensions == nil {
		s.Extensions = extensions.New()
	}
	s.Extensions.Set(extDigest, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fp.FingerprintDeclaration(d)})
	return nil
}

func document(s cc.Snapshot, opts Options) map[string]any {
	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   opts.Title,
			"version": opts.Version,
		},
		"paths": map[string]any{},
		"components": map[string]any{
			"schemas": Components(s.Schema),
		},
	}
}

// Components returns the JSON Schema of every persisted composite and
// enum, keyed by qualified name.
func Components(s cc.Schema) map[string]any {
	out := map[string]any{}
	for _, name := range s.Names() {
		if d := s[name]; d != nil {
			collect(out, s, cc.QualifiedName{name}, d)
		}
	}
	return out
}

func collect(out map[string]any, s cc.Schema, path cc.QualifiedName, d *cc.Declaration) {
	switch {
	case d.Kind == cc.KindEnum:
		out[path.String()] = enumSchema(path, d)
	case d.Kind.IsComposite():
		out[path.String()] = compositeSchema(s, path, d)
		for _, m := range d.NestedTypes() {
			collect(out, s, path.Child(m.Identifier), m)
		}
	}
}

func enumSchema(path cc.QualifiedName, d *cc.Declaration) map[string]any {
	cases := d.Cases()
	values := make([]any, 0, len(cases))
	names := make([]any, 0, len(cases))
	for i, c := range cases {
		values = append(values, i)
		names = append(names, c.Identifier)
	}
	schema := map[string]any{
		"type":   "integer",
		"enum":   values,
		extKind:  d.Kind.String(),
		extName:  path.String(),
		extCases: names,
	}
	if d.RawType != nil {
		schema["format"] = d.RawType.String()
	}
	return schema
}

func compositeSchema(s cc.Schema, path cc.QualifiedName, d *cc.Declaration) map[string]any {
	props := map[string]any{}
	var required []any
	for _, f := range d.Fields() {
		if f.Type == nil {
			continue
		}
		props[f.Identifier] = typeSchema(s, path, f.Type)
		if _, optional := f.Type.(cc.OptionalType); !optional {
			required = append(required, f.Identifier)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
		extKind:      d.Kind.String(),
		extName:      path.String(),
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	if len(d.Conformances) > 0 {
		schema["x-contract-conformances"] = d.Conformances
	}
	return schema
}

var integerTypes = map[string]bool{
	"Int": true, "Int8": true, "Int16": true, "Int32": true, "Int64": true, "Int128": true, "Int256": true,
	"UInt": true, "UInt8": true, "UInt16": true, "UInt32": true, "UInt64": true, "UInt128": true, "UInt256": true,
	"Word8": true, "Word16": true, "Word32": true, "Word64": true, "Word128": true, "Word256": true,
}

// typeSchema maps a field type to JSON Schema. scope is the composite the
// field is declared in, used to resolve nested type names.
func typeSchema(s cc.Schema, scope cc.QualifiedName, t cc.TypeExpr) map[string]any {
	if t == nil {
		// A missing type places no constraint on the stored value.
		return map[string]any{}
	}
	switch t := t.(type) {
	case cc.NominalType:
		return nominalSchema(s, scope, t.Name)
	case cc.OptionalType:
		return map[string]any{"anyOf": []any{typeSchema(s, scope, t.Type), map[string]any{"type": "null"}}}
	case cc.VariableArrayType:
		return map[string]any{"type": "array", "items": typeSchema(s, scope, t.Elem)}
	case cc.ConstantArrayType:
		return map[string]any{"type": "array", "items": typeSchema(s, scope, t.Elem), "minItems": t.Size, "maxItems": t.Size}
	case cc.DictionaryType:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": typeSchema(s, scope, t.Value),
			"x-contract-key-type":  typeName(t.Key),
		}
	}
	// References, capabilities, intersections, functions and generic
	// instantiations are stored opaquely.
	return map[string]any{"type": "object", extType: t.String()}
}

func typeName(t cc.TypeExpr) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func nominalSchema(s cc.Schema, scope cc.QualifiedName, name string) map[string]any {
	switch {
	case integerTypes[name]:
		return map[string]any{"type": "integer", "format": name}
	case name == "Fix64" || name == "UFix64":
		return map[string]any{"type": "number", "format": name}
	case name == "String" || name == "Character":
		return map[string]any{"type": "string"}
	case name == "Address":
		return map[string]any{"type": "string", "format": "address"}
	case name == "Bool":
		return map[string]any{"type": "boolean"}
	}
	if target, ok := resolve(s, scope, name); ok {
		return map[string]any{"$ref": "#/components/schemas/" + target}
	}
	return map[string]any{"type": "object", extType: name}
}

// resolve looks name up from the innermost enclosing scope outwards.
func resolve(s cc.Schema, scope cc.QualifiedName, name string) (string, bool) {
	rel := cc.ParseQualifiedName(name)
	for cur := scope; ; cur = cur.Parent() {
		candidate := append(append(cc.QualifiedName{}, cur...), rel...)
		if d := s.Resolve(candidate); d != nil && d.Kind.IsTypeDeclaration() {
			return candidate.String(), true
		}
		if cur.IsRoot() {
			return "", false
		}
	}
}
