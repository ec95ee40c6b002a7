package layout

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	cc "github.com/speakeasy-api/contractcompat"
	"github.com/speakeasy-api/contractcompat/compat"
)

func vaultSchema() cc.Schema {
	return cc.NewSchema(cc.NewContract("Bank", []string{"Registry"},
		cc.NewField("owner", cc.Named("Address")),
		cc.NewField("note", cc.OptionalType{Type: cc.Named("String")}),
		cc.NewField("vaults", cc.DictionaryType{Key: cc.Named("UInt64"), Value: cc.Named("Vault")}),
		cc.NewField("history", cc.ConstantArrayType{Elem: cc.Named("Bank.Kind"), Size: 2}),
		cc.NewField("receiver", cc.CapabilityType{Borrow: cc.ReferenceType{Type: cc.Named("Vault")}}),
		cc.NewFunction("deposit", "fun deposit()"),
		cc.NewResource("Vault", nil, cc.NewField("balance", cc.Named("UFix64"))),
		cc.NewEnum("Kind", cc.Named("UInt8"), "Savings", "Checking"),
	))
}

func TestComponents(t *testing.T) {
	got := Components(vaultSchema())

	var names []string
	for name := range got {
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"Bank", "Bank.Kind", "Bank.Vault"}, sorted(names)); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	bank := got["Bank"].(map[string]any)
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string", "format": "address"},
			"note": map[string]any{"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "null"},
			}},
			"vaults": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"$ref": "#/components/schemas/Bank.Vault"},
				"x-contract-key-type":  "UInt64",
			},
			"history": map[string]any{
				"type":     "array",
				"items":    map[string]any{"$ref": "#/components/schemas/Bank.Kind"},
				"minItems": 2,
				"maxItems": 2,
			},
			"receiver": map[string]any{"type": "object", "x-contract-type": "Capability<&Vault>"},
		},
		"required":                []any{"owner", "vaults", "history", "receiver"},
		"x-contract-kind":         "contract",
		"x-contract-name":         "Bank",
		"x-contract-conformances": []string{"Registry"},
	}
	if diff := cmp.Diff(want, bank); diff != "" {
		t.Errorf("Bank schema mismatch (-want +got):\n%s", diff)
	}

	kind := got["Bank.Kind"].(map[string]any)
	if diff := cmp.Diff([]any{0, 1}, kind["enum"]); diff != "" {
		t.Errorf("enum values mismatch:\n%s", diff)
	}
	if kind["format"] != "UInt8" || kind["x-contract-kind"] != "enum" {
		t.Errorf("enum schema = %v", kind)
	}
}

func TestComponentsMissingTypes(t *testing.T) {
	got := Components(cc.NewSchema(cc.NewContract("C", nil,
		cc.NewField("a", nil),
		cc.NewField("b", cc.OptionalType{}),
		cc.NewField("c", cc.DictionaryType{Value: cc.Named("Int")}),
	)))

	props := got["C"].(map[string]any)["properties"]
	want := map[string]any{
		"b": map[string]any{"anyOf": []any{map[string]any{}, map[string]any{"type": "null"}}},
		"c": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "integer", "format": "Int"},
			"x-contract-key-type":  "<none>",
		},
	}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	fp := compat.NewFingerprinter()
	s := cc.Snapshot{Schema: vaultSchema()}
	if err := Write(context.Background(), &buf, s, Options{Title: "Bank layout", Fingerprinter: fp}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"openapi: 3.1.0",
		"title: Bank layout",
		"Bank.Vault:",
		"x-contract-kind: resource",
		fp.FingerprintDeclaration(s.Schema["Bank"]),
		fp.FingerprintDeclaration(s.Schema.Resolve(cc.QualifiedName{"Bank", "Vault"})),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("layout output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "deposit") {
		t.Error("functions must not appear in the storage layout")
	}
}

func TestResolveScopes(t *testing.T) {
	s := vaultSchema()
	if got, ok := resolve(s, cc.QualifiedName{"Bank", "Vault"}, "Kind"); !ok || got != "Bank.Kind" {
		t.Errorf("resolve from nested scope = %q, %v", got, ok)
	}
	if _, ok := resolve(s, cc.QualifiedName{"Bank"}, "Missing"); ok {
		t.Error("unknown names should not resolve")
	}
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
