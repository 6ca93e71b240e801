package tsbridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

func matchAll(p *pattern.Pattern, root pytree.Node, capture string) []string {
	var out []string
	for n := range pytree.PreOrder(root) {
		results := pattern.Results{}
		if p.Match(n, results) {
			out = append(out, pytree.Render(results.Node(capture)))
		}
	}
	return out
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		lang string
		src  string
	}{
		{"python", "def f(x):\n    # note\n    return x\n\n\n# trailing\n"},
		{"python", ""},
		{"go", "package main\n\n// main does nothing.\nfunc main() {}\n"},
		{"javascript", "const a = 1; // x\nfunction g() { return a }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			b, err := New(tt.lang)
			require.NoError(t, err)
			root, err := b.Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.src, pytree.Render(root))

			last := pytree.LastLeaf(root)
			require.NotNil(t, last)
			assert.Equal(t, pygram.ENDMARKER, last.Type())
		})
	}
}

func TestParseFoldsComments(t *testing.T) {
	t.Parallel()
	b, err := New("python")
	require.NoError(t, err)
	root, err := b.Parse(context.Background(), []byte("def f(x):\n    # note\n    return x\n"))
	require.NoError(t, err)

	var ret *pytree.Leaf
	for leaf := range pytree.Leaves(root) {
		assert.NotContains(t, leaf.Value, "#")
		if leaf.Value == "return" {
			ret = leaf
		}
	}
	require.NotNil(t, ret)
	assert.Contains(t, ret.Prefix(), "# note")
	assert.Equal(t, 3, ret.Line)
	assert.Equal(t, 4, ret.Column)
}

func TestCompileAndMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		lang    string
		src     string
		pattern string
		capture string
		want    []string
	}{
		{
			lang:    "python",
			src:     "def f(x):\n    return x\n\ndef g():\n    pass\n",
			pattern: "function_definition< 'def' name=identifier any* >",
			capture: "name",
			want:    []string{" f", " g"},
		},
		{
			lang:    "go",
			src:     "package main\n\nfunc main() {}\n\nfunc helper() {}\n",
			pattern: "function_declaration< 'func' name=IDENTIFIER any* >",
			capture: "name",
			want:    []string{" main", " helper"},
		},
		{
			lang:    "javascript",
			src:     "foo(1);\nbar(2);\n",
			pattern: "call_expression< fn='bar' any* >",
			capture: "fn",
			want:    []string{"\nbar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			b, err := New(tt.lang)
			require.NoError(t, err)
			p, err := b.Compile(tt.pattern)
			require.NoError(t, err)
			root, err := b.Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, matchAll(p, root, tt.capture))
		})
	}
}

func TestNewUnknownLanguage(t *testing.T) {
	t.Parallel()
	_, err := New("cobol")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	assert.Equal(t, []string{"go", "javascript", "python"}, Languages())
}

func TestGrammar(t *testing.T) {
	t.Parallel()
	g := NewGrammar()
	a := g.Intern("identifier")
	assert.Equal(t, a, g.Intern("identifier"))
	tok, ok := g.Token("IDENTIFIER")
	assert.True(t, ok)
	assert.Equal(t, a, tok)
	assert.Equal(t, "identifier", g.TypeName(a))

	end, ok := g.Token("ENDMARKER")
	assert.True(t, ok)
	assert.Equal(t, pygram.ENDMARKER, end)
	assert.Equal(t, pygram.Invalid, g.LiteralType("def"))

	_, err := pattern.CompileWith("call< fn=any args=any* >", g)
	assert.NoError(t, err)
}
