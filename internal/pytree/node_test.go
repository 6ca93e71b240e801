package pytree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/pygram"
)

// x = f(a)\n
func sampleStmt() (*Branch, map[string]Node) {
	x := NewLeaf(pygram.NAME, "x")
	eq := NewLeafPrefix(pygram.EQUAL, "=", " ")
	f := NewLeafPrefix(pygram.NAME, "f", " ")
	a := NewLeaf(pygram.NAME, "a")
	call := NewBranch(pygram.Trailer, NewLeaf(pygram.LPAR, "("), a, NewLeaf(pygram.RPAR, ")"))
	power := NewBranch(pygram.Power, f, call)
	expr := NewBranch(pygram.ExprStmt, x, eq, power)
	nl := NewLeaf(pygram.NEWLINE, "\n")
	stmt := NewBranch(pygram.SimpleStmt, expr, nl)
	root := NewBranch(pygram.FileInput, stmt, NewLeaf(pygram.ENDMARKER, ""))
	return root, map[string]Node{
		"x": x, "eq": eq, "f": f, "a": a, "call": call,
		"power": power, "expr": expr, "nl": nl, "stmt": stmt,
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	root, _ := sampleStmt()
	assert.Equal(t, "x = f(a)\n", Render(root))
	assert.Equal(t, "", root.Prefix())
}

func TestReplaceTransfersPrefix(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	y := NewLeaf(pygram.NAME, "y")
	require.NoError(t, Replace(n["power"], y))

	assert.Equal(t, "x = y\n", Render(root))
	assert.Nil(t, n["power"].Parent())
	assert.Equal(t, n["expr"], y.Parent())
}

func TestReplaceExactKeepsPrefix(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	require.NoError(t, ReplaceExact(n["power"], NewLeaf(pygram.NAME, "y")))
	assert.Equal(t, "x =y\n", Render(root))
}

func TestReplaceWithDescendant(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	// unwrap f(a) to a
	require.NoError(t, Replace(n["power"], n["a"]))
	assert.Equal(t, "x = a\n", Render(root))
	assert.Equal(t, n["expr"], n["a"].Parent())
	assert.Len(t, n["call"].Children(), 2)
}

func TestReplaceWithSequence(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	require.NoError(t, Replace(n["a"],
		NewLeaf(pygram.NAME, "b"),
		NewLeaf(pygram.COMMA, ","),
		NewLeafPrefix(pygram.NAME, "c", " "),
	))
	assert.Equal(t, "x = f(b, c)\n", Render(root))
	assert.Len(t, n["call"].Children(), 5)
}

func TestReplaceErrors(t *testing.T) {
	t.Parallel()
	_, n := sampleStmt()

	assert.ErrorIs(t, Replace(NewLeaf(pygram.NAME, "z"), NewLeaf(pygram.NAME, "y")), ErrDetached)
	assert.ErrorIs(t, Replace(n["a"], n["call"]), ErrCycle)
}

func TestRemove(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	assert.Equal(t, 1, n["eq"].Remove())
	assert.Equal(t, -1, n["eq"].Remove())
	assert.Equal(t, "x f(a)\n", Render(root))
	for i, c := range n["expr"].Children() {
		assert.Equal(t, n["expr"], c.Parent(), "child %d", i)
	}
}

func TestRemoveCollapsing(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	idx := RemoveCollapsing(n["expr"])
	assert.Equal(t, 0, idx)
	assert.Nil(t, n["stmt"].Parent())
	assert.Equal(t, "", Render(root))
	require.Len(t, root.Children(), 1)
	assert.Equal(t, pygram.ENDMARKER, root.Children()[0].Type())
}

func TestPrefixHelpers(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	n["stmt"].SetPrefix("# c\n")
	InsertPrefix(n["x"], "\n")
	assert.Equal(t, "\n# c\nx = f(a)\n", Render(root))
}

func TestTraversalOrder(t *testing.T) {
	t.Parallel()
	_, n := sampleStmt()

	var pre, post []pygram.Type
	for node := range PreOrder(n["power"]) {
		pre = append(pre, node.Type())
	}
	for node := range PostOrder(n["power"]) {
		post = append(post, node.Type())
	}
	assert.Equal(t, []pygram.Type{
		pygram.Power, pygram.NAME, pygram.Trailer, pygram.LPAR, pygram.NAME, pygram.RPAR,
	}, pre)
	assert.Equal(t, []pygram.Type{
		pygram.NAME, pygram.LPAR, pygram.NAME, pygram.RPAR, pygram.Trailer, pygram.Power,
	}, post)
}

func TestTraversalSnapshotsChildren(t *testing.T) {
	t.Parallel()
	leaves := []Node{
		NewLeaf(pygram.NAME, "a"),
		NewLeaf(pygram.NAME, "b"),
		NewLeaf(pygram.NAME, "c"),
	}
	root := NewBranch(pygram.Exprlist, leaves...)

	var seen []string
	for node := range PostOrder(root) {
		l, ok := node.(*Leaf)
		if !ok {
			continue
		}
		seen = append(seen, l.Value)
		if l.Value == "a" {
			l.Remove()
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, "bc", Render(root))
}

func TestTraversalRestartable(t *testing.T) {
	t.Parallel()
	root, _ := sampleStmt()

	seq := PreOrder(root)
	count := func() int {
		c := 0
		for range seq {
			c++
		}
		return c
	}
	assert.Equal(t, count(), count())
}

func TestNavigation(t *testing.T) {
	t.Parallel()
	root, n := sampleStmt()

	assert.Equal(t, n["eq"], NextSibling(n["x"]))
	assert.Equal(t, n["x"], PrevSibling(n["eq"]))
	assert.Nil(t, PrevSibling(n["x"]))
	assert.Nil(t, NextSibling(root))
	assert.Equal(t, root, Root(n["a"]))
	assert.Equal(t, n["x"], FirstLeaf(root))
	assert.Equal(t, "(", NextLeaf(n["f"]).Value)
	assert.Equal(t, n["nl"], NextLeaf(n["call"]))
	assert.Equal(t, ")", LastLeaf(n["power"]).Value)
}
