package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployed = `contracts:
  Foo:
    members:
      - {kind: field, name: a, type: String}
      - {kind: enum, name: Color, rawType: UInt8, cases: [RED, BLUE]}
`

const appendCase = `contracts:
  Foo:
    members:
      - {kind: field, name: a, type: String}
      - {kind: enum, name: Color, rawType: UInt8, cases: [RED, BLUE, GREEN]}
      - {kind: function, name: f, signature: "fun f()"}
`

const insertCase = `contracts:
  Foo:
    members:
      - {kind: field, name: a, type: String}
      - {kind: field, name: b, type: Int}
      - {kind: enum, name: Color, rawType: UInt8, cases: [RED, GREEN, BLUE]}
`

type testApp struct {
	*app
	stdout, stderr *bytes.Buffer
	dir            string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{
		stdout:   &stdout,
		stderr:   &stderr,
		terminal: func(io.Writer) bool { return false },
		home:     t.TempDir(),
		dir:      t.TempDir(),
	}
	return &testApp{app: a, stdout: &stdout, stderr: &stderr, dir: a.dir}
}

func (ta *testApp) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ta.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (ta *testApp) run(args ...string) int {
	cmd := rootCmd(ta.app)
	cmd.SetArgs(args)
	return execute(cmd, ta.stderr)
}

func TestCheckAllowed(t *testing.T) {
	ta := newTestApp(t)
	oldPath := ta.write(t, "old.yaml", deployed)
	newPath := ta.write(t, "new.yaml", appendCase)

	code := ta.run("check", "--old", oldPath, "--new", newPath)
	assert.Equal(t, exitOK, code, ta.stderr.String())
	assert.True(t, strings.HasPrefix(ta.stdout.String(), "ALLOW: 1 contract(s), 0 diagnostic(s)"), ta.stdout.String())
}

func TestCheckRejected(t *testing.T) {
	ta := newTestApp(t)
	oldPath := ta.write(t, "old.yaml", deployed)
	newPath := ta.write(t, "new.yaml", insertCase)

	code := ta.run("check", "--old", oldPath, "--new", newPath, "--no-hints")
	assert.Equal(t, exitRejected, code)

	out := ta.stdout.String()
	assert.Contains(t, out, "REJECT: 1 contract(s), 2 diagnostic(s)")
	assert.Contains(t, out, "EnumCaseRenamed")
	assert.Contains(t, out, "FieldAdded")
	assert.NotContains(t, out, "How to fix")
	assert.Empty(t, ta.stderr.String())
}

func TestCheckJSONParallel(t *testing.T) {
	ta := newTestApp(t)
	oldPath := ta.write(t, "old.yaml", deployed)
	newPath := ta.write(t, "new.yaml", insertCase)

	code := ta.run("check", "--old", oldPath, "--new", newPath, "--format", "json", "--parallel")
	require.Equal(t, exitRejected, code)

	var rep struct {
		Decision    string `json:"decision"`
		Diagnostics []struct {
			Kind     string `json:"kind"`
			Location string `json:"location"`
			Hint     string `json:"hint"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(ta.stdout.Bytes(), &rep))
	assert.Equal(t, "reject", rep.Decision)
	require.Len(t, rep.Diagnostics, 2)
	assert.Equal(t, "EnumCaseRenamed", rep.Diagnostics[0].Kind)
	assert.Equal(t, "Foo.Color[1]", rep.Diagnostics[0].Location)
	assert.NotEmpty(t, rep.Diagnostics[0].Hint)
	assert.Equal(t, "FieldAdded", rep.Diagnostics[1].Kind)
}

func TestCheckProjectConfig(t *testing.T) {
	ta := newTestApp(t)
	ta.write(t, "contractcompat.yaml", "report:\n  format: yaml\n  color: always\n")
	oldPath := ta.write(t, "old.yaml", deployed)

	code := ta.run("check", "--old", oldPath, "--new", oldPath)
	assert.Equal(t, exitOK, code, ta.stderr.String())
	assert.Contains(t, ta.stdout.String(), "decision: allow")
}

func TestCheckErrors(t *testing.T) {
	t.Run("missing flag", func(t *testing.T) {
		ta := newTestApp(t)
		assert.Equal(t, exitError, ta.run("check", "--old", "x.yaml"))
		assert.Contains(t, ta.stderr.String(), `"new" not set`)
	})

	t.Run("missing file", func(t *testing.T) {
		ta := newTestApp(t)
		oldPath := ta.write(t, "old.yaml", deployed)
		assert.Equal(t, exitError, ta.run("check", "--old", oldPath, "--new", filepath.Join(ta.dir, "nope.yaml")))
		assert.Contains(t, ta.stderr.String(), "failed to read schema file")
	})

	t.Run("malformed schema file", func(t *testing.T) {
		ta := newTestApp(t)
		oldPath := ta.write(t, "old.yaml", deployed)
		badPath := ta.write(t, "bad.yaml", "contracts:\n  Foo:\n    members:\n      - {kind: field, name: x}\n")
		assert.Equal(t, exitError, ta.run("check", "--old", oldPath, "--new", badPath))
		assert.Contains(t, ta.stderr.String(), "bad.yaml:4:")
	})

	t.Run("bad format", func(t *testing.T) {
		ta := newTestApp(t)
		oldPath := ta.write(t, "old.yaml", deployed)
		assert.Equal(t, exitError, ta.run("check", "--old", oldPath, "--new", oldPath, "--format", "xml"))
		assert.Contains(t, ta.stderr.String(), "invalid configuration")
	})
}

func TestFingerprint(t *testing.T) {
	ta := newTestApp(t)
	path := ta.write(t, "schema.yaml", deployed)

	require.Equal(t, exitOK, ta.run("fingerprint", path), ta.stderr.String())
	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Foo       "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "snapshot  "), lines[1])
	assert.Len(t, strings.Fields(lines[0])[1], 64)
}

func TestLayout(t *testing.T) {
	ta := newTestApp(t)
	path := ta.write(t, "schema.yaml", deployed)

	require.Equal(t, exitOK, ta.run("layout", path, "--title", "Foo layout"), ta.stderr.String())
	out := ta.stdout.String()
	assert.Contains(t, out, "Foo layout")
	assert.Contains(t, out, "Foo.Color")
	assert.Contains(t, out, "x-contract-digest")
}

func TestVersionAndInitConfig(t *testing.T) {
	ta := newTestApp(t)
	require.Equal(t, exitOK, ta.run("version"))
	assert.Equal(t, "contractcompat version "+Version+" (build: dev)\n", ta.stdout.String())

	ta.stdout.Reset()
	require.Equal(t, exitOK, ta.run("init-config"))
	path := strings.TrimSpace(ta.stdout.String())
	assert.FileExists(t, path)
	assert.Contains(t, ta.stderr.String(), "created default user config")
}
