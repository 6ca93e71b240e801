package pyparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"only comment", "# just a comment\n"},
		{"no trailing newline", "x = 1"},
		{"trailing comment no newline", "x = 1  # c"},
		{"blank lines", "\n\nx = 1\n\n\ny = 2\n\n"},
		{"crlf", "x = 1\r\ny = 2\r\n"},
		{"semicolons", "a = 1; b = 2;\n"},
		{"function", "def f(a, b=2, *args, c: int = 3, **kw) -> str:\n    return a\n"},
		{"nested blocks", "class A(B, metaclass=M):\n    def f(self):\n        if x:\n            pass\n        elif y:\n            pass\n        else:\n            # c\n            return\n\n\n# tail\n"},
		{"decorators", "@property\n@functools.wraps(f)\n@a.b(1)(2)\ndef g(): pass\n"},
		{"async", "async def f():\n    async with a as b:\n        await c\n    async for x in y:\n        pass\n"},
		{"comprehensions", "x = [a for a in b if a]\ny = {k: v for k, v in d.items()}\nz = (i async for i in g)\ns = {1, 2, *t}\n"},
		{"strings", "s = r'a\\'b' + b\"x\" f'{y}' '''multi\nline''' \"\"\"doc\"\"\"\n"},
		{"numbers", "n = 0x1F + 1_000 + 3.14e-2 + .5 + 2j\n"},
		{"slices", "a[1:2, ::3, :] = b[...]\n"},
		{"continuation", "x = 1 + \\\n    2\ny = (1,\n     2)  # c\n"},
		{"try", "try:\n    pass\nexcept (A, B) as e:\n    raise X from e\nexcept:\n    raise\nelse:\n    pass\nfinally:\n    pass\n"},
		{"imports", "import a.b as c, d\nfrom . import (x as y,\n    z,)\nfrom ..m import *\n"},
		{"lambda and ternary", "f = lambda x, *y, z=1: x if y else z\n"},
		{"walrus", "if (n := len(a)) > 10:\n    pass\n"},
		{"annotated", "x: List[int] = []\ny: int\n"},
		{"misc statements", "global a, b\ndel a[0], b\nassert x, 'msg'\nwhile True:\n    break\nelse:\n    continue\nwith open(f) as g, h:\n    yield from g\n"},
		{"tabs", "if x:\n\tpass\n"},
		{"comparison", "a = b not in c and d is not e or not f < g <= h\n"},
		{"unicode", "ñame = 'ü'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := ParseString(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, pytree.Render(tree))
			assert.Equal(t, pygram.FileInput, tree.Type())
		})
	}
}

func TestTreeShape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		path []int // child indexes from the root
		want pygram.Type
	}{
		{"simple stmt", "x = 1\n", []int{0}, pygram.SimpleStmt},
		{"expr stmt", "x = 1\n", []int{0, 0}, pygram.ExprStmt},
		{"call is power", "f(a)\n", []int{0, 0}, pygram.Power},
		{"call trailer", "f(a)\n", []int{0, 0, 1}, pygram.Trailer},
		{"single param collapses", "def f(x): pass\n", []int{0, 2, 1}, pygram.NAME},
		{"annotated param is tname", "def f(x: int): pass\n", []int{0, 2, 1}, pygram.Tname},
		{"params list", "def f(x: int, y): pass\n", []int{0, 2, 1}, pygram.Typedargslist},
		{"return arrow", "def f() -> int: pass\n", []int{0, 3}, pygram.RARROW},
		{"annassign", "x: int = 1\n", []int{0, 0, 1}, pygram.Annassign},
		{"class bases", "class A(B[T], C): pass\n", []int{0, 3}, pygram.Arglist},
		{"single base", "class A(B[T]): pass\n", []int{0, 3}, pygram.Power},
		{"decorated", "@overload\ndef f(): pass\n", []int{0}, pygram.Decorated},
		{"single decorator", "@overload\ndef f(): pass\n", []int{0, 0}, pygram.Decorator},
		{"dotted decorator", "@typing.overload\ndef f(): pass\n", []int{0, 0, 1}, pygram.DottedName},
		{"import from names", "from typing import List, Dict\n", []int{0, 0, 3}, pygram.ImportAsNames},
		{"import alias", "from typing import List as L\n", []int{0, 0, 3}, pygram.ImportAsName},
		{"import module alias", "import typing as t\n", []int{0, 0, 1}, pygram.DottedAsName},
		{"suite", "if x:\n    pass\n", []int{0, 3}, pygram.Suite},
		{"indent leaf", "if x:\n    pass\n", []int{0, 3, 1}, pygram.INDENT},
		{"subscript", "a[1:2]\n", []int{0, 0, 1, 1}, pygram.Subscript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := ParseString(tt.src)
			require.NoError(t, err)
			var n pytree.Node = tree
			for _, i := range tt.path {
				require.Greater(t, len(n.Children()), i, "at %s", pytree.Render(n))
				n = n.Children()[i]
			}
			assert.Equal(t, tt.want, n.Type(), "got %s for %q", n.Type(), pytree.Render(n))
		})
	}
}

func TestPrefixes(t *testing.T) {
	t.Parallel()
	src := "def f():\n    # note\n    x = 1\n"
	tree, err := ParseString(src)
	require.NoError(t, err)

	var x *pytree.Leaf
	for l := range pytree.Leaves(tree) {
		if l.Value == "x" {
			x = l
		}
	}
	require.NotNil(t, x)
	assert.Equal(t, "    # note\n    ", x.Prefix())
	assert.Equal(t, 3, x.Line)
	assert.Equal(t, 4, x.Column)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"unexpected indent", "  x = 1\n"},
		{"bad dedent", "if x:\n    a\n  b\n"},
		{"missing block", "if x:\npass\n"},
		{"unterminated string", "s = 'abc\n"},
		{"unterminated triple", "s = '''abc\n"},
		{"bad token", "x = $\n"},
		{"keyword as expr", "x = class\n"},
		{"missing colon", "def f()\n    pass\n"},
		{"try without handler", "try:\n    pass\nx = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseString(tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
			assert.Positive(t, perr.Line)
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "m.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	tree, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", pytree.Render(tree))

	_, err = ParseFile(filepath.Join(dir, "missing.py"))
	assert.Error(t, err)
}
