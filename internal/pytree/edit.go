package pytree

import "github.com/gnolang/hintstrip/internal/pygram"

// Replace splices news into old's parent at old's position and detaches
// old. The first inserted node takes over old's prefix, so the replacement
// renders where old used to. Replacing with no nodes removes old.
func Replace(old Node, news ...Node) error {
	return replace(old, true, news)
}

// ReplaceExact is Replace without the prefix transfer: inserted nodes keep
// whatever prefixes the caller gave them.
func ReplaceExact(old Node, news ...Node) error {
	return replace(old, false, news)
}

func replace(old Node, keepPrefix bool, news []Node) error {
	parent := old.Parent()
	if parent == nil {
		return ErrDetached
	}
	for _, n := range news {
		if n == old {
			continue
		}
		if isAncestor(n, old) {
			return ErrCycle
		}
	}

	prefix := old.Prefix()
	for _, n := range news {
		if n != old {
			n.Remove()
		}
	}

	i := old.Remove()
	for j, n := range news {
		n.setParent(parent)
		parent.children = insertAt(parent.children, i+j, n)
	}
	if keepPrefix && len(news) > 0 {
		news[0].SetPrefix(prefix)
	}
	return nil
}

func insertAt(s []Node, i int, n Node) []Node {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

func isAncestor(a, n Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if Node(p) == a {
			return true
		}
	}
	return false
}

// RemoveCollapsing removes n and then every ancestor left holding nothing
// but structural terminators (NEWLINE, SEMI), stopping below the root. It
// returns the index of the topmost removed node in its former parent.
//
// Removing the only statement of a line therefore removes the line.
func RemoveCollapsing(n Node) int {
	parent := n.Parent()
	idx := n.Remove()
	for parent != nil && parent.Parent() != nil && onlyTerminators(parent) {
		next := parent.Parent()
		idx = parent.Remove()
		parent = next
	}
	return idx
}

func onlyTerminators(b *Branch) bool {
	for _, c := range b.children {
		switch c.Type() {
		case pygram.NEWLINE, pygram.SEMI:
		default:
			return false
		}
	}
	return true
}

// InsertPrefix prepends s to n's prefix.
func InsertPrefix(n Node, s string) {
	n.SetPrefix(s + n.Prefix())
}
