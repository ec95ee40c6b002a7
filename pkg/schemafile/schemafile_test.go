package schemafile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cc "github.com/speakeasy-api/contractcompat"
)

const sample = `contracts:
  Foo:
    conformances: [I]
    members:
      - {kind: field, name: a, type: "String", access: all, mutability: let}
      - {kind: field, name: b, type: "{Address: [Int?]}", access: self, mutability: var}
      - {kind: enum, name: Color, rawType: UInt8, cases: [RED, BLUE]}
      - kind: resource
        name: Vault
        members:
          - {kind: field, name: balance, type: UFix64}
      - {kind: function, name: f, signature: "fun f(): Int"}
      - {kind: init, signature: "init()"}
  I:
    kind: interface
tombstones:
  Foo: [OldType]
  "": [Retired]
`

func TestParse(t *testing.T) {
	snap, err := Parse([]byte(sample), "sample.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := snap.Schema.Names(); strings.Join(got, ",") != "Foo,I" {
		t.Fatalf("contracts = %v", got)
	}
	foo := snap.Schema["Foo"]
	if foo.Kind != cc.KindContract || foo.Conformances[0] != "I" || len(foo.Members) != 6 {
		t.Fatalf("Foo = %+v", foo)
	}
	if foo.Line != 3 {
		t.Errorf("Foo line = %d, want 3", foo.Line)
	}

	b := foo.Lookup("b")
	if b.Access != cc.AccessSelf || b.Mutability != cc.Variable || b.Type.String() != "{Address: [Int?]}" {
		t.Errorf("b = %+v", b)
	}
	color := foo.Lookup("Color")
	if color.RawType.String() != "UInt8" || len(color.Cases()) != 2 || color.Cases()[1].Identifier != "BLUE" {
		t.Errorf("Color = %+v", color)
	}
	if v := foo.Lookup("Vault", "balance"); v == nil || v.Type.String() != "UFix64" {
		t.Errorf("Vault.balance = %+v", v)
	}
	if c := foo.Lookup("init"); c == nil || c.Kind != cc.KindConstructor {
		t.Errorf("init = %+v", c)
	}
	if snap.Schema["I"].Kind != cc.KindInterface {
		t.Errorf("I kind = %v", snap.Schema["I"].Kind)
	}

	if !snap.Tombstones.Contains(cc.QualifiedName{"Foo"}, "OldType") || !snap.Tombstones.Contains(cc.RootScope, "Retired") {
		t.Errorf("tombstones = %v", snap.Tombstones.Entries())
	}
}

func TestParseEmpty(t *testing.T) {
	snap, err := Parse(nil, "empty.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(snap.Schema) != 0 || snap.Tombstones.Len() != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want string
	}{
		{"unknown top-level key", "schemas: {}\n", 1, `unknown top-level key "schemas"`},
		{"member without kind", "contracts:\n  Foo:\n    members:\n      - {name: x, type: Int}\n", 4, "needs a kind"},
		{"field without type", "contracts:\n  Foo:\n    members:\n      - {kind: field, name: x}\n", 4, "needs a type"},
		{"bad type", "contracts:\n  Foo:\n    members:\n      - {kind: field, name: x, type: \"[Int\"}\n", 4, "invalid type"},
		{"key not valid for kind", "contracts:\n  Foo:\n    members:\n      - {kind: field, name: x, type: Int, cases: [A]}\n", 4, `key "cases" is not valid for a field`},
		{"bad access", "contracts:\n  Foo:\n    access: public\n", 3, `unknown access modifier "public"`},
		{"bad mutability", "contracts:\n  Foo:\n    members:\n      - {kind: field, name: x, type: Int, mutability: const}\n", 4, "mutability must be let or var"},
		{"duplicate key", "contracts:\n  Foo: {}\n  Foo: {}\n", 3, `duplicate key "Foo"`},
		{"tombstones not a list", "tombstones:\n  Foo: Bar\n", 2, "must be a list"},
		{"unknown kind", "contracts:\n  Foo:\n    kind: module\n", 3, `unknown declaration kind "module"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.yaml")
			if err == nil {
				t.Fatal("expected an error")
			}
			var fe *Error
			if !errors.As(err, &fe) {
				t.Fatalf("error %v is not a *Error", err)
			}
			if fe.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", fe.Line, tt.line, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParseTypeErrorIsWrapped(t *testing.T) {
	_, err := Parse([]byte("contracts:\n  Foo:\n    members:\n      - {kind: field, name: x, type: \"{Int: }\"}\n"), "bad.yaml")
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	snap, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(snap.Schema) != 2 {
		t.Errorf("contracts = %v", snap.Schema.Names())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	snap, err = Load(strings.NewReader(sample), "stdin")
	if err != nil || len(snap.Schema) != 2 {
		t.Errorf("Load = %v, %v", snap.Schema.Names(), err)
	}
}
