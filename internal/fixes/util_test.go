package fixes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pyparse"
	"github.com/gnolang/hintstrip/internal/pytree"
)

// findName returns the first NAME leaf with the given value.
func findName(t *testing.T, tree pytree.Node, value string) *pytree.Leaf {
	t.Helper()
	for leaf := range pytree.Leaves(tree) {
		if leaf.Type() == pygram.NAME && leaf.Value == value {
			return leaf
		}
	}
	t.Fatalf("no name %q", value)
	return nil
}

func TestRemoveStatement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		src    string
		target string // a name inside the statement to remove
		want   string
	}{
		{
			name:   "whole line",
			src:    "a = 1\nb = 2\nc = 3\n",
			target: "b",
			want:   "a = 1\nc = 3\n",
		},
		{
			name:   "comment above stays",
			src:    "a = 1\n# about b\nb = 2\n",
			target: "b",
			want:   "a = 1\n# about b\n",
		},
		{
			name:   "first of a semicolon list",
			src:    "a = 1; b = 2\n",
			target: "a",
			want:   "b = 2\n",
		},
		{
			name:   "last of a semicolon list",
			src:    "a = 1; b = 2\n",
			target: "b",
			want:   "a = 1\n",
		},
		{
			name:   "only statement of a block",
			src:    "def f():\n    a = 1\nb = 2\n",
			target: "a",
			want:   "def f():\n    pass\nb = 2\n",
		},
		{
			name:   "one line body",
			src:    "if x: a = 1\n",
			target: "a",
			want:   "if x: pass\n",
		},
		{
			name:   "trailing semicolon",
			src:    "a = 1;\nb = 2\n",
			target: "a",
			want:   "b = 2\n",
		},
		{
			name:   "decorated function",
			src:    "@dec\ndef f():\n    pass\nb = 2\n",
			target: "f",
			want:   "b = 2\n",
		},
		{
			name:   "no trailing newline",
			src:    "a = 1\nb = 2",
			target: "b",
			want:   "a = 1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := pyparse.ParseString(tt.src)
			require.NoError(t, err)
			stmt := statementOf(findName(t, tree, tt.target))
			require.NotNil(t, stmt)
			require.NoError(t, removeStatement(stmt))
			assert.Equal(t, tt.want, pytree.Render(tree))
		})
	}
}

func TestRemoveExpression(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		target   string
		want     string
		declined bool
	}{
		{
			name:   "first argument",
			src:    "f(a, b)\n",
			target: "a",
			want:   "f(b)\n",
		},
		{
			name:   "last argument",
			src:    "f(a, b)\n",
			target: "b",
			want:   "f(a)\n",
		},
		{
			name:   "sole argument",
			src:    "f(a)\n",
			target: "a",
			want:   "f()\n",
		},
		{
			name:     "subscript",
			src:      "x = d[a]\n",
			target:   "a",
			want:     "x = d[a]\n",
			declined: true,
		},
		{
			name:     "operand",
			src:      "x = a + b\n",
			target:   "a",
			want:     "x = a + b\n",
			declined: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := pyparse.ParseString(tt.src)
			require.NoError(t, err)
			err = removeExpression(findName(t, tree, tt.target))
			if tt.declined {
				assert.ErrorIs(t, err, fixer.ErrDeclined)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, pytree.Render(tree))
		})
	}
}

func TestNewImportFrom(t *testing.T) {
	t.Parallel()
	stmt := newImportFrom("collections.abc", []importedName{
		{Name: "Mapping"},
		{Name: "Sequence", Alias: "Seq"},
	})
	assert.Equal(t, "from collections.abc import Mapping, Sequence as Seq", pytree.Render(stmt))
	assert.Equal(t, "import collections.abc", pytree.Render(newImportName("collections.abc", "")))
	assert.Equal(t, "import typing as t", pytree.Render(newImportName("typing", "t")))
	assert.Equal(t, "a.b.c", pytree.Render(newDotted("a.b.c", "")))
}
