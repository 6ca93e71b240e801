package pattern

import (
	"slices"

	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

// Pattern is a compiled pattern. It holds no mutable state and may be
// shared between goroutines.
type Pattern struct {
	src  string
	root Matcher
}

// Root returns the top matcher.
func (p *Pattern) Root() Matcher { return p.root }

// String returns the source the pattern was compiled from.
func (p *Pattern) String() string { return p.src }

// Head returns the type every matching node must have, or Invalid when
// the pattern can match nodes of several types.
func (p *Pattern) Head() pygram.Type {
	m := p.root
	for {
		switch x := m.(type) {
		case *LeafPattern:
			return x.Type
		case *NodePattern:
			return x.Type
		case *WildcardPattern:
			if x.Min != 1 || x.Max != 1 || len(x.Alts) != 1 || len(x.Alts[0]) != 1 {
				return pygram.Invalid
			}
			m = x.Alts[0][0]
		default:
			return pygram.Invalid
		}
	}
}

// Match reports whether node matches. On success the captures are added
// to results, which may be nil.
func (p *Pattern) Match(node pytree.Node, results Results) bool {
	return p.MatchSeq([]pytree.Node{node}, results)
}

// MatchSeq reports whether the pattern consumes exactly nodes.
func (p *Pattern) MatchSeq(nodes []pytree.Node, results Results) bool {
	b := &binder{}
	if !p.root.generate(nodes, b, func(n int) bool { return n == len(nodes) }) {
		return false
	}
	if results != nil {
		b.flush(results)
	}
	return true
}

type bound struct {
	name    string
	binding Binding
}

// binder is the capture stack of one match attempt. Matchers push on
// success and truncate back to their mark when a later step fails.
type binder struct {
	binds []bound
}

func (b *binder) mark() int      { return len(b.binds) }
func (b *binder) reset(mark int) { b.binds = b.binds[:mark] }

func (b *binder) node(name string, n pytree.Node) {
	b.binds = append(b.binds, bound{name, Binding{Node: n}})
}

func (b *binder) seq(name string, nodes []pytree.Node) {
	b.binds = append(b.binds, bound{name, Binding{Nodes: slices.Clone(nodes), Seq: true}})
}

func (b *binder) flush(r Results) {
	for _, x := range b.binds {
		r[x.name] = x.binding
	}
}

func (p *LeafPattern) generate(nodes []pytree.Node, b *binder, k func(int) bool) bool {
	if len(nodes) == 0 {
		return false
	}
	leaf, ok := nodes[0].(*pytree.Leaf)
	if !ok {
		return false
	}
	if p.Type != pygram.Invalid && leaf.Type() != p.Type {
		return false
	}
	if p.HasValue && leaf.Value != p.Value {
		return false
	}
	m := b.mark()
	if p.Name != "" {
		b.node(p.Name, leaf)
	}
	if k(1) {
		return true
	}
	b.reset(m)
	return false
}

func (p *NodePattern) generate(nodes []pytree.Node, b *binder, k func(int) bool) bool {
	if len(nodes) == 0 {
		return false
	}
	n := nodes[0]
	if p.Type != pygram.Invalid && n.Type() != p.Type {
		return false
	}
	m := b.mark()
	if p.Content != nil {
		children := n.Children()
		full := func(c int) bool { return c == len(children) }
		if !p.Content.generate(children, b, full) {
			return false
		}
	}
	if p.Name != "" {
		b.node(p.Name, n)
	}
	if k(1) {
		return true
	}
	b.reset(m)
	return false
}

func (p *WildcardPattern) generate(nodes []pytree.Node, b *binder, k func(int) bool) bool {
	done := func(c int) bool {
		m := b.mark()
		if p.Name != "" {
			b.seq(p.Name, nodes[:c])
		}
		if k(c) {
			return true
		}
		b.reset(m)
		return false
	}
	if p.Alts == nil {
		for c := p.Min; c <= min(len(nodes), p.Max); c++ {
			if done(c) {
				return true
			}
		}
		return false
	}
	return p.repeat(nodes, b, 0, 0, done)
}

// repeat tries one more repetition after count repetitions consumed the
// first offset nodes. Fewer repetitions are tried first.
func (p *WildcardPattern) repeat(nodes []pytree.Node, b *binder, count, offset int, k func(int) bool) bool {
	if count >= p.Min && k(offset) {
		return true
	}
	if count >= p.Max {
		return false
	}
	for _, alt := range p.Alts {
		next := func(c int) bool {
			if c == 0 && count >= p.Min {
				return false
			}
			return p.repeat(nodes, b, count+1, offset+c, k)
		}
		if generateSeq(alt, nodes[offset:], b, next) {
			return true
		}
	}
	return false
}

func (p *NegatedPattern) generate(nodes []pytree.Node, b *binder, k func(int) bool) bool {
	m := b.mark()
	matched := p.Content.generate(nodes, b, func(int) bool { return true })
	b.reset(m)
	if matched {
		return false
	}
	return k(0)
}

func generateSeq(ms []Matcher, nodes []pytree.Node, b *binder, k func(int) bool) bool {
	if len(ms) == 0 {
		return k(0)
	}
	return ms[0].generate(nodes, b, func(c0 int) bool {
		return generateSeq(ms[1:], nodes[c0:], b, func(c1 int) bool {
			return k(c0 + c1)
		})
	})
}
