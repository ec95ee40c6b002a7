package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	cc "github.com/speakeasy-api/contractcompat"
	"github.com/speakeasy-api/contractcompat/compat"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC) }

func rejected(t *testing.T) *compat.Result {
	t.Helper()
	old := cc.Snapshot{Schema: cc.NewSchema(cc.NewContract("Foo", nil,
		cc.NewEnum("Color", cc.Named("UInt8"), "RED", "BLUE"),
	))}
	next := cc.Snapshot{Schema: cc.NewSchema(cc.NewContract("Foo", nil,
		cc.NewField("x", cc.Named("Int")),
		cc.NewEnum("Color", cc.Named("UInt8"), "RED", "GREEN", "BLUE"),
	))}
	r := compat.Validate(old, next)
	if r.Allowed() {
		t.Fatal("expected a rejection")
	}
	return r
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected an error for xml")
	}
}

func TestNew(t *testing.T) {
	rep := New(rejected(t), Options{Hints: true, TimeFormat: "%Y-%m-%d %H:%M", Now: fixedNow})

	if rep.Decision != "reject" || rep.GeneratedAt != "2024-03-09 12:30" {
		t.Errorf("header = %q %q", rep.Decision, rep.GeneratedAt)
	}
	if len(rep.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %+v", rep.Diagnostics)
	}
	var kinds []string
	for _, e := range rep.Diagnostics {
		kinds = append(kinds, e.Kind+"@"+e.Location)
		if e.Hint == "" || e.Summary == "" {
			t.Errorf("%s has no hint", e.Kind)
		}
	}
	if diff := cmp.Diff([]string{"EnumCaseRenamed@Foo.Color[1]", "FieldAdded@Foo.x"}, kinds); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if p := rep.Diagnostics[0].Position; p == nil || *p != 1 {
		t.Errorf("case position = %v", p)
	}
	if rep.Diagnostics[1].Position != nil {
		t.Error("field diagnostic should carry no position")
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, rejected(t), Options{Format: FormatText, Hints: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"REJECT: 1 contract(s), 2 diagnostic(s)\n",
		"KIND             LOCATION      MESSAGE\n",
		"FieldAdded       Foo.x         ",
		"EnumCaseRenamed  Foo.Color[1]  ",
		"  How to fix: Keep existing cases in place and append new cases at the end.\n",
		"layout: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes emitted without Color")
	}
}

func TestTextAllowAndColor(t *testing.T) {
	s := cc.Snapshot{Schema: cc.NewSchema(cc.NewContract("Foo", nil))}
	var buf bytes.Buffer
	if err := Render(&buf, compat.Validate(s, s), Options{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\x1b[32mALLOW\x1b[0m: 1 contract(s), 0 diagnostic(s)\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if strings.Contains(buf.String(), "KIND") {
		t.Error("table header printed for an allowed result")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := rejected(t)
	if err := Render(&buf, r, Options{Format: FormatJSON}); err != nil {
		t.Fatal(err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(New(r, Options{}), &got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, rejected(t), Options{Format: FormatYAML}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"decision: reject", "kind: FieldAdded", "Foo.Color", "position: 1", "- Foo"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestHintsCoverEveryKind(t *testing.T) {
	for _, k := range compat.Kinds {
		if summary, hint := classifyAndHint(k); summary == "" || hint == "" {
			t.Errorf("%s has no summary or hint", k)
		}
	}
	if Hint("Bogus") != "" {
		t.Error("unknown kinds should have no hint")
	}
}
