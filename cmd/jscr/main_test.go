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

	"jscr/interpreter-go/pkg/interpreter"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndUsage(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, cliToolVersion+"\n", out)

	code, _, errOut := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Usage:")
}

func TestRunFile(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "lib/greet.jscr", `pub func greet(name) { print("hello", name); }`)
	main := writeFile(t, "main.jscr", "import lib.greet;\nlet total = 1 + 2;\ngreet(\"jscr\");\nprint(total);\n")

	code, out, errOut := runCLI(t, "run", main)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "hello jscr\n3\n", out)

	code, out, _ = runCLI(t, main)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello jscr\n3\n", out)
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "bad.jscr"), "let x = ;")
	code, _, errOut := runCLI(t, "run", bad)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(errOut, bad+":1:"), errOut)

	crash := writeFile(t, filepath.Join(dir, "crash.jscr"), "print(1);\nlet y = 1 / 0;")
	code, out, errOut := runCLI(t, "run", crash)
	assert.Equal(t, 1, code)
	assert.Equal(t, "1\n", out)
	assert.Contains(t, errOut, "runtime error: ")
	assert.Contains(t, errOut, "division by zero")

	code, _, errOut = runCLI(t, "run", filepath.Join(dir, "missing.jscr"))
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

func TestRunWithoutManifest(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, errOut := runCLI(t, "run")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "package.yml not found")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, filepath.Join(dir, "clean.jscr"), "let a = 1;\nprint(a);")
	code, out, _ := runCLI(t, "check", clean)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)

	dirty := writeFile(t, filepath.Join(dir, "dirty.jscr"), "missing;\nconst c = 1;\nc = 2;")
	code, out, _ = runCLI(t, "check", dirty)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{
		dirty + ":1:0: error: undefined identifier 'missing'",
		dirty + ":3:0: error: cannot assign to constant 'c'",
	}, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestParseFormats(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "p.jscr"), "let x = 1;")

	code, out, _ := runCLI(t, "parse", src)
	require.Equal(t, 0, code)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "Program", tree["type"])
	body := tree["body"].([]any)
	require.Len(t, body, 1)
	assert.Equal(t, "VarDeclaration", body[0].(map[string]any)["type"])

	code, out, _ = runCLI(t, "parse", "--format", "yaml", src)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "type: VarDeclaration")
	assert.Contains(t, out, "identifier: x")

	code, _, errOut := runCLI(t, "parse", "--format", "xml", src)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown format "xml"`)
}

func TestProjectWorkflow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shared", "text.jscr"), "pub let banner = \"shared\";")
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, "package.yml"), `
name: app
version: 1.0.0
main: src/main.jscr
source_dir: src
dependencies:
  shared: { path: ../shared }
`)
	writeFile(t, filepath.Join(app, "src", "main.jscr"), "import shared.text as t;\nprint(t.banner);")
	chdir(t, app)

	code, _, errOut := runCLI(t, "run")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "run deps install")

	code, out, errOut := runCLI(t, "deps", "install")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "locked 1 package(s)")
	assert.FileExists(t, filepath.Join(app, "package.lock"))

	code, out, errOut = runCLI(t, "run")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "shared\n", out)

	code, _, _ = runCLI(t, "deps", "update")
	assert.Equal(t, 1, code)
}

func TestConfigDrivesRuntime(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "jscr.toml", "[runtime]\nlenient_arithmetic = true\nmax_call_depth = 5\n[log]\nlevel = \"error\"\n")
	writeFile(t, "lenient.jscr", `print("a" * 2);`)
	writeFile(t, "deep.jscr", "func f(n) { return f(n + 1); }\nf(0);")

	code, out, _ := runCLI(t, "run", "lenient.jscr")
	assert.Equal(t, 0, code)
	assert.Equal(t, "null\n", out)

	code, _, errOut := runCLI(t, "run", "deep.jscr")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "maximum call depth exceeded")

	writeFile(t, "jscr.toml", "[log]\nlevel = \"chatty\"\n")
	code, _, errOut = runCLI(t, "run", "deep.jscr")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid log level")
}

type scriptedPrompter struct {
	lines   []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestReadByParseProbe(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"func add(a, b) {", "  return a + b;", "}", ":vars"}}

	code, ok := readByParseProbe(p, promptMain, promptCont)
	require.True(t, ok)
	assert.Equal(t, "func add(a, b) {\n  return a + b;\n}", code)
	assert.Equal(t, []string{promptMain, promptCont, promptCont}, p.prompts)

	code, ok = readByParseProbe(p, promptMain, promptCont)
	require.True(t, ok)
	assert.Equal(t, ":vars", code)

	_, ok = readByParseProbe(p, promptMain, promptCont)
	assert.False(t, ok)
}

func TestReplSession(t *testing.T) {
	var out, errOut bytes.Buffer
	interp := interpreter.New(interpreter.Options{Stdout: &out})
	s := &replSession{interp: interp, env: interp.NewGlobalEnvironment(replFile), out: &out, errOut: &errOut}

	assert.False(t, s.handle("let x = 2;"))
	out.Reset()
	assert.False(t, s.handle("x * 3;"))
	assert.Equal(t, "6\n", out.String())

	out.Reset()
	assert.False(t, s.handle(`print("hi");`))
	assert.Equal(t, "hi\n", out.String())

	out.Reset()
	assert.False(t, s.handle(":vars"))
	assert.Contains(t, out.String(), "x = 2\n")

	assert.False(t, s.handle("let x = 3;"))
	assert.Contains(t, errOut.String(), "runtime error: ")
	assert.False(t, s.handle("let = ;"))
	assert.Contains(t, errOut.String(), "<repl>:1:")

	assert.True(t, s.handle(":quit"))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
