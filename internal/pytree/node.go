// Package pytree is the mutable concrete syntax tree rewritten by the
// fixers.
//
// A tree is made of Branches (grammar symbols with ordered children) and
// Leaves (tokens). Formatting is never a node of its own: every Leaf
// carries a prefix holding the whitespace and comments that precede it in
// the source, so rendering a tree concatenates prefix+value of each leaf in
// depth-first order and reproduces the source byte for byte.
package pytree

import (
	"errors"
	"slices"
	"strings"

	"github.com/gnolang/hintstrip/internal/pygram"
)

var (
	ErrDetached = errors.New("node has no parent")
	ErrCycle    = errors.New("cannot insert an ancestor of the replaced node")
)

// Node is either a *Leaf or a *Branch.
type Node interface {
	Type() pygram.Type
	Parent() *Branch
	// Children returns the live child slice. Callers must not modify it and
	// should clone it before mutating the tree while ranging over it.
	Children() []Node
	Prefix() string
	SetPrefix(prefix string)
	// Remove detaches the node from its parent and returns its former index,
	// or -1 when it was already detached.
	Remove() int
	String() string

	setParent(p *Branch)
}

var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Branch)(nil)
)

// Leaf is a token with its formatting prefix.
type Leaf struct {
	typ    pygram.Type
	Value  string
	prefix string
	parent *Branch

	// Line and Column locate the token in the parsed source (1-based line,
	// 0-based column). Both are zero for synthesized leaves.
	Line, Column int
}

// NewLeaf returns a detached leaf with an empty prefix.
func NewLeaf(t pygram.Type, value string) *Leaf {
	return &Leaf{typ: t, Value: value}
}

// NewLeafPrefix returns a detached leaf with the given prefix.
func NewLeafPrefix(t pygram.Type, value, prefix string) *Leaf {
	return &Leaf{typ: t, Value: value, prefix: prefix}
}

func (l *Leaf) Type() pygram.Type       { return l.typ }
func (l *Leaf) Parent() *Branch         { return l.parent }
func (l *Leaf) Children() []Node        { return nil }
func (l *Leaf) Prefix() string          { return l.prefix }
func (l *Leaf) SetPrefix(prefix string) { l.prefix = prefix }
func (l *Leaf) Remove() int             { return remove(l) }
func (l *Leaf) String() string          { return l.prefix + l.Value }
func (l *Leaf) setParent(p *Branch)     { l.parent = p }

// Branch is a grammar symbol. Its prefix is the prefix of its first leaf.
type Branch struct {
	typ      pygram.Type
	children []Node
	parent   *Branch
}

// NewBranch returns a detached branch owning children. Children that are
// still attached elsewhere are detached first.
func NewBranch(t pygram.Type, children ...Node) *Branch {
	b := &Branch{typ: t, children: make([]Node, 0, len(children))}
	for _, c := range children {
		b.AppendChild(c)
	}
	return b
}

func (b *Branch) Type() pygram.Type   { return b.typ }
func (b *Branch) Parent() *Branch     { return b.parent }
func (b *Branch) Children() []Node    { return b.children }
func (b *Branch) Remove() int         { return remove(b) }
func (b *Branch) setParent(p *Branch) { b.parent = p }

func (b *Branch) Prefix() string {
	if len(b.children) == 0 {
		return ""
	}
	return b.children[0].Prefix()
}

func (b *Branch) SetPrefix(prefix string) {
	if len(b.children) > 0 {
		b.children[0].SetPrefix(prefix)
	}
}

func (b *Branch) String() string {
	var sb strings.Builder
	for l := range Leaves(b) {
		sb.WriteString(l.prefix)
		sb.WriteString(l.Value)
	}
	return sb.String()
}

// IndexOf returns the position of child in b, or -1.
func (b *Branch) IndexOf(child Node) int {
	for i, c := range b.children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild detaches n and adds it as the last child of b.
func (b *Branch) AppendChild(n Node) {
	n.Remove()
	n.setParent(b)
	b.children = append(b.children, n)
}

// InsertChild detaches n and inserts it at index i of b.
func (b *Branch) InsertChild(i int, n Node) {
	n.Remove()
	n.setParent(b)
	b.children = slices.Insert(b.children, i, n)
}

// SetChild detaches n and puts it in place of the child at index i, which
// becomes detached.
func (b *Branch) SetChild(i int, n Node) {
	n.Remove()
	old := b.children[i]
	old.setParent(nil)
	n.setParent(b)
	b.children[i] = n
}

func remove(n Node) int {
	p := n.Parent()
	if p == nil {
		return -1
	}
	i := p.IndexOf(n)
	p.children = slices.Delete(p.children, i, i+1)
	n.setParent(nil)
	return i
}
