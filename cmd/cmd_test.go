package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal"
	"github.com/gnolang/hintstrip/internal/pattern"
	tt "github.com/gnolang/hintstrip/internal/types"
	"github.com/gnolang/hintstrip/internal/tsbridge"
	"github.com/gnolang/hintstrip/refactor"
)

const (
	hinted   = "def f(x: int) -> int:\n    return x\n"
	unhinted = "def f(x):\n    return x\n"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestEngine(t *testing.T) *internal.Engine {
	t.Helper()
	engine, _, err := refactor.New(filepath.Join(t.TempDir(), "missing.yaml"), internal.Selection{}, nil)
	require.NoError(t, err)
	return engine
}

func createTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFix(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	dir := t.TempDir()
	path := createTempFile(t, dir, "a.py", hinted)
	createTempFile(t, dir, "b.py", unhinted)
	engine := newTestEngine(t)

	var out bytes.Buffer
	err := runFix(context.Background(), logger, engine, []string{dir}, refactor.Options{DryRun: true}, false, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "would fix: "+path)
	assert.Contains(t, out.String(), "-def f(x: int) -> int:\n+def f(x):\n")
	assert.Contains(t, out.String(), "1 file would be fixed, 1 unchanged\n")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hinted, string(content))

	out.Reset()
	err = runFix(context.Background(), logger, engine, []string{dir}, refactor.Options{}, false, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "fixed: "+path+"\n = remove-type-hints x2\n")
	assert.NotContains(t, out.String(), "+++")

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unhinted, string(content))

	out.Reset()
	err = runFix(context.Background(), logger, engine, []string{filepath.Join(dir, "missing.py")}, refactor.Options{}, false, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "0 files unchanged")
}

func TestRunStdin(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	var out bytes.Buffer
	require.NoError(t, runStdin(engine, strings.NewReader(hinted), &out))
	assert.Equal(t, unhinted, out.String())

	assert.Error(t, runStdin(engine, strings.NewReader("def (:\n"), &out))
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	dir := t.TempDir()
	path := createTempFile(t, dir, "a.py", hinted)
	createTempFile(t, dir, "b.py", unhinted)
	engine := newTestEngine(t)

	var out bytes.Buffer
	changed, err := runCheck(context.Background(), logger, engine, []string{dir}, refactor.Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Contains(t, out.String(), path)
	assert.Contains(t, strings.ToLower(out.String()), "total: 1 of 2 files")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hinted, string(content), "check never writes")

	out.Reset()
	clean := t.TempDir()
	createTempFile(t, clean, "c.py", unhinted)
	changed, err = runCheck(context.Background(), logger, engine, []string{clean}, refactor.Options{}, &out)
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Equal(t, "1 file(s) checked, nothing to rewrite\n", out.String())
}

func TestCheckTable(t *testing.T) {
	t.Parallel()
	got := checkTable([]tt.FileResult{
		{Filename: "a.py", Original: "xxxx", Rewritten: "xx", Changed: true, Applied: map[string]int{"x": 2, "y": 1}},
		{Filename: "b.py", Original: "x"},
	})
	assert.Contains(t, got, "a.py")
	assert.NotContains(t, got, "b.py")
	assert.Contains(t, got, "4 B")
	assert.Contains(t, got, "2 B")
	assert.Equal(t, "-3 B", signedBytes(-3))
}

func TestRunQuery(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	dir := t.TempDir()
	py := createTempFile(t, dir, "a.py", "def f(x):\n    return x\n\ndef g(y):\n    pass\n")
	goFile := createTempFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	var out bytes.Buffer
	n, err := runQuery(context.Background(), logger, "funcdef< 'def' name=NAME any* >", "python", []string{dir}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), py+":1:1: def f(x): ...\n    = name: f\n")
	assert.Contains(t, out.String(), py+":4:1: def g(y): ...\n    = name: g\n")
	assert.NotContains(t, out.String(), "main.go")

	out.Reset()
	n, err = runQuery(context.Background(), logger, "function_declaration< 'func' name=identifier any* >", "go", []string{dir}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), goFile+":3:1: func main() {}\n    = name: main\n")

	_, err = runQuery(context.Background(), logger, "NAME", "cobol", []string{dir}, &out)
	assert.ErrorIs(t, err, tsbridge.ErrUnknownLanguage)

	_, err = runQuery(context.Background(), logger, "funcdef<", "python", []string{dir}, &out)
	assert.ErrorIs(t, err, pattern.ErrSyntax)

	_, err = runQuery(context.Background(), logger, "NAME", "python", []string{filepath.Join(dir, "nope")}, &out)
	assert.Error(t, err)
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".hintstrip.yaml")

	require.NoError(t, initConfigurationFile(path, false))
	cfg, err := refactor.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "hintstrip", cfg.Name)
	assert.Len(t, cfg.Fixers, len(internal.FixerNames()))
	assert.Equal(t, []string{".py", ".pyi"}, cfg.Extensions)

	assert.ErrorIs(t, initConfigurationFile(path, false), errConfigExists)
	assert.NoError(t, initConfigurationFile(path, true))
}

func TestPrintFixers(t *testing.T) {
	t.Parallel()
	all, err := internal.DefaultFixers()
	require.NoError(t, err)

	var out bytes.Buffer
	printFixers(&out, all)
	for _, name := range internal.FixerNames() {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, strings.ToLower(out.String()), "3 active, 0 disabled")

	some, err := internal.BuildFixers(tt.Config{}, internal.Selection{Ignore: []string{"remove-typing"}})
	require.NoError(t, err)
	out.Reset()
	printFixers(&out, some)
	assert.Contains(t, out.String(), "disabled")
	assert.Contains(t, strings.ToLower(out.String()), "2 active, 1 disabled")
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Equal(t, internal.Selection{Only: []string{"x"}}, selection("x", ""))
}
