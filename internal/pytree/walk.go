package pytree

import (
	"iter"
	"slices"
)

// PreOrder yields n and then its descendants, parents before children.
//
// A branch's children are snapshotted once the branch itself has been
// yielded, so a consumer may replace or remove the node it was just handed,
// or its siblings, without the walk skipping or repeating nodes. The
// sequence can be ranged over any number of times.
func PreOrder(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		preOrder(n, yield)
	}
}

func preOrder(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range slices.Clone(n.Children()) {
		if !preOrder(c, yield) {
			return false
		}
	}
	return true
}

// PostOrder yields the descendants of n and then n, children before
// parents. Children are snapshotted when a branch is entered.
func PostOrder(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		postOrder(n, yield)
	}
}

func postOrder(n Node, yield func(Node) bool) bool {
	for _, c := range slices.Clone(n.Children()) {
		if !postOrder(c, yield) {
			return false
		}
	}
	return yield(n)
}

// Leaves yields the leaves under n from left to right.
func Leaves(n Node) iter.Seq[*Leaf] {
	return func(yield func(*Leaf) bool) {
		leaves(n, yield)
	}
}

func leaves(n Node, yield func(*Leaf) bool) bool {
	if l, ok := n.(*Leaf); ok {
		return yield(l)
	}
	for _, c := range n.Children() {
		if !leaves(c, yield) {
			return false
		}
	}
	return true
}

// FirstLeaf returns the leftmost leaf under n, or nil.
func FirstLeaf(n Node) *Leaf {
	for l := range Leaves(n) {
		return l
	}
	return nil
}

// LastLeaf returns the rightmost leaf under n, or nil.
func LastLeaf(n Node) *Leaf {
	for {
		switch v := n.(type) {
		case *Leaf:
			return v
		case *Branch:
			if len(v.children) == 0 {
				return nil
			}
			n = v.children[len(v.children)-1]
		}
	}
}

// NextSibling returns the node right after n in its parent, or nil.
func NextSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	i := p.IndexOf(n)
	if i+1 >= len(p.children) {
		return nil
	}
	return p.children[i+1]
}

// PrevSibling returns the node right before n in its parent, or nil.
func PrevSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	i := p.IndexOf(n)
	if i <= 0 {
		return nil
	}
	return p.children[i-1]
}

// NextLeaf returns the leaf that follows n in rendering order, or nil.
func NextLeaf(n Node) *Leaf {
	cur := n
	for {
		for s := NextSibling(cur); s != nil; s = NextSibling(s) {
			if l := FirstLeaf(s); l != nil {
				return l
			}
		}
		p := cur.Parent()
		if p == nil {
			return nil
		}
		cur = p
	}
}

// Root returns the topmost ancestor of n, or n itself.
func Root(n Node) Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		n = p
	}
	return n
}

// Render returns the source text of n.
func Render(n Node) string {
	return n.String()
}
