package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pyparse"
	"github.com/gnolang/hintstrip/internal/pytree"
	"github.com/gnolang/hintstrip/internal/types"
)

// renamer renames every NAME leaf "x" to its target.
type renamer struct {
	fixer.Base
	target string
}

func newRenamer(t *testing.T, name string, order fixer.Order, runOrder int, target string) *renamer {
	t.Helper()
	b, err := fixer.NewBase(name, order, runOrder, "name='x'")
	require.NoError(t, err)
	return &renamer{Base: b, target: target}
}

func (f *renamer) Transform(_ *fixer.Session, _ pytree.Node, r pattern.Results) error {
	r.Leaf("name").Value = f.target
	return nil
}

// registrar starts renaming "y" to "z" once it has seen "register".
type registrar struct {
	fixer.Base
}

func (f *registrar) Transform(s *fixer.Session, _ pytree.Node, r pattern.Results) error {
	leaf := r.Leaf("name")
	if leaf.Value == "register" {
		return s.RegisterOnce(f, "y", "name='y'")
	}
	leaf.Value = "z"
	return nil
}

type failing struct {
	fixer.Base
}

var errBoom = errors.New("boom")

func (*failing) Transform(*fixer.Session, pytree.Node, pattern.Results) error { return errBoom }

// decliner matches every "x" and leaves it alone.
type decliner struct {
	fixer.Base
}

func (*decliner) Transform(*fixer.Session, pytree.Node, pattern.Results) error {
	return fmt.Errorf("no room: %w", fixer.ErrDeclined)
}

type badOrder struct {
	fixer.Base
}

func (*badOrder) Order() fixer.Order { return "sideways" }

func (*badOrder) Transform(*fixer.Session, pytree.Node, pattern.Results) error { return nil }

func TestNewEngine(t *testing.T) {
	t.Parallel()

	a := newRenamer(t, "a", fixer.Post, 3, "a")
	b := newRenamer(t, "b", fixer.Pre, 9, "b")
	c := newRenamer(t, "c", fixer.Post, 1, "c")
	d := newRenamer(t, "d", fixer.Pre, 9, "d")

	e, err := NewEngine([]fixer.Fixer{a, b, c, d})
	require.NoError(t, err)

	var names []string
	for _, f := range e.Fixers() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, names)
	assert.NotNil(t, e.Logger())

	_, err = NewEngine([]fixer.Fixer{&badOrder{Base: a.Base}})
	assert.ErrorIs(t, err, fixer.ErrIllegalOrder)

	_, err = NewEngine([]fixer.Fixer{a, newRenamer(t, "a", fixer.Pre, 0, "other")})
	assert.ErrorIs(t, err, ErrDuplicateFixer)
}

func TestEngine_DeclinedNotCounted(t *testing.T) {
	t.Parallel()

	b, err := fixer.NewBase("decliner", fixer.Post, 1, "name='x'")
	require.NoError(t, err)
	tests := []struct {
		name        string
		fixers      []fixer.Fixer
		want        string
		wantApplied map[string]int
	}{
		{
			name:        "alone",
			fixers:      []fixer.Fixer{&decliner{Base: b}},
			want:        "x = 1\n",
			wantApplied: map[string]int{},
		},
		{
			name:        "later fixer takes the node",
			fixers:      []fixer.Fixer{&decliner{Base: b}, newRenamer(t, "later", fixer.Post, 2, "y")},
			want:        "y = 1\n",
			wantApplied: map[string]int{"later": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.fixers)
			require.NoError(t, err)

			tree, err := pyparse.ParseString("x = 1\n")
			require.NoError(t, err)
			s := e.NewSession("test.py")
			_, err = e.Rewrite(tree, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pytree.Render(tree))
			assert.Equal(t, tt.wantApplied, s.Applied())
		})
	}
}

func TestEngine_FirstMatchWins(t *testing.T) {
	t.Parallel()

	late := newRenamer(t, "late", fixer.Post, 2, "late")
	early := newRenamer(t, "early", fixer.Post, 1, "early")
	e, err := NewEngine([]fixer.Fixer{late, early})
	require.NoError(t, err)

	tree, err := pyparse.ParseString("x = 1\nx = 2\n")
	require.NoError(t, err)
	s := e.NewSession("test.py")
	changed, err := e.Rewrite(tree, s)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, "early = 1\nearly = 2\n", pytree.Render(tree))
	assert.Equal(t, map[string]int{"early": 2}, s.Applied())
}

func TestEngine_PreRunsBeforePost(t *testing.T) {
	t.Parallel()

	post := newRenamer(t, "post", fixer.Post, 0, "post")
	pre := newRenamer(t, "pre", fixer.Pre, 100, "pre")
	e, err := NewEngine([]fixer.Fixer{post, pre})
	require.NoError(t, err)

	got, changed, err := e.RefactorString("x = 1\n", "test.py")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "pre = 1\n", got)
}

func TestEngine_SessionPatterns(t *testing.T) {
	t.Parallel()

	b, err := fixer.NewBase("registrar", fixer.Pre, 1, "name='register'")
	require.NoError(t, err)
	e, err := NewEngine([]fixer.Fixer{&registrar{Base: b}})
	require.NoError(t, err)

	src := "y = 1\nregister\ny = 2\n"
	got, _, err := e.RefactorString(src, "test.py")
	require.NoError(t, err)
	assert.Equal(t, "y = 1\nregister\nz = 2\n", got)

	// patterns do not leak into the next file
	got, _, err = e.RefactorString("y = 3\n", "other.py")
	require.NoError(t, err)
	assert.Equal(t, "y = 3\n", got)
}

func TestEngine_TransformError(t *testing.T) {
	t.Parallel()

	b, err := fixer.NewBase("failing", fixer.Post, 1, "NAME")
	require.NoError(t, err)
	e, err := NewEngine([]fixer.Fixer{&failing{Base: b}})
	require.NoError(t, err)

	_, _, err = e.RefactorString("x = 1\n", "test.py")
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "failing")

	_, _, err = e.RefactorString("def (:\n", "test.py")
	assert.ErrorIs(t, err, pyparse.ErrSyntax)
}

func TestEngine_RefactorFile(t *testing.T) {
	t.Parallel()

	fixers, err := DefaultFixers()
	require.NoError(t, err)
	e, err := NewEngine(fixers)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mod.py")
	src := "from typing import List\n\ndef f(x: List[int]) -> int:\n    return len(x)\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	res, err := e.RefactorFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Filename)
	assert.Equal(t, src, res.Original)
	assert.Equal(t, "\ndef f(x):\n    return len(x)\n", res.Rewritten)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Applied["remove-typing"])
	assert.Equal(t, 2, res.Applied["remove-type-hints"])

	// the file itself is left alone
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(content))

	_, err = e.RefactorFile(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}

func TestBuildFixers(t *testing.T) {
	t.Parallel()

	runOrder := 1
	cfg := types.Config{
		Fixers: map[string]types.FixerConfig{
			"remove-typing":        {Disabled: true},
			"remove-generic-bases": {RunOrder: &runOrder},
		},
		Rules: []types.RuleConfig{
			{Name: "drop-reveal", Pattern: "power< 'reveal_type' any* >", Action: "remove"},
		},
	}
	fixers, err := BuildFixers(cfg, Selection{})
	require.NoError(t, err)

	got := map[string]int{}
	for _, f := range fixers {
		got[f.Name()] = f.RunOrder()
	}
	assert.Equal(t, map[string]int{
		"remove-type-hints":    4,
		"remove-generic-bases": 1,
		"drop-reveal":          0,
	}, got)

	fixers, err = BuildFixers(cfg, Selection{Only: []string{"drop-reveal"}})
	require.NoError(t, err)
	require.Len(t, fixers, 1)
	assert.Equal(t, "drop-reveal", fixers[0].Name())

	fixers, err = BuildFixers(types.Config{}, Selection{Ignore: []string{"remove-typing"}})
	require.NoError(t, err)
	assert.Len(t, fixers, 2)

	_, err = BuildFixers(types.Config{}, Selection{Only: []string{"nope"}})
	assert.ErrorIs(t, err, ErrUnknownFixer)

	_, err = BuildFixers(types.Config{Fixers: map[string]types.FixerConfig{"nope": {}}}, Selection{})
	assert.ErrorIs(t, err, ErrUnknownFixer)

	assert.Equal(t, []string{"remove-type-hints", "remove-typing", "remove-generic-bases"}, FixerNames())
}

func TestBuildFixers_DuplicateNames(t *testing.T) {
	t.Parallel()

	rule := func(name string) types.RuleConfig {
		return types.RuleConfig{Name: name, Pattern: "power< 'reveal_type' any* >", Action: "remove"}
	}
	tests := []struct {
		name string
		cfg  types.Config
	}{
		{
			name: "built-in name",
			cfg:  types.Config{Rules: []types.RuleConfig{rule("remove-typing")}},
		},
		{
			name: "disabled built-in name",
			cfg: types.Config{
				Fixers: map[string]types.FixerConfig{"remove-typing": {Disabled: true}},
				Rules:  []types.RuleConfig{rule("remove-typing")},
			},
		},
		{
			name: "two rules",
			cfg:  types.Config{Rules: []types.RuleConfig{rule("drop-reveal"), rule("drop-reveal")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := BuildFixers(tt.cfg, Selection{})
			assert.ErrorIs(t, err, ErrDuplicateFixer)
		})
	}
}
