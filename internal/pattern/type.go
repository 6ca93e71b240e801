package pattern

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

// ErrSyntax is wrapped by every *CompileError.
var ErrSyntax = errors.New("invalid pattern")

// CompileError reports a malformed pattern.
type CompileError struct {
	Pattern string
	Pos     int // byte offset in Pattern
	Msg     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, e.Msg, e.Pos)
}

func (e *CompileError) Unwrap() error { return ErrSyntax }

// Grammar resolves the names used in a pattern to type tags.
type Grammar interface {
	// Symbol resolves a lowercase name such as "funcdef".
	Symbol(name string) (pygram.Type, bool)
	// Token resolves an uppercase name such as "NAME".
	Token(name string) (pygram.Type, bool)
	// LiteralType infers the type of a quoted literal. Invalid means the
	// literal matches a leaf of any type.
	LiteralType(value string) pygram.Type
	TypeName(t pygram.Type) string
}

// Unbounded is the Max of open ended repeats.
const Unbounded = math.MaxInt32

// Binding is what a capture matched.
type Binding struct {
	Node  pytree.Node   // set for single node captures
	Nodes []pytree.Node // set for sequence captures
	Seq   bool
}

// Results maps capture names to bindings.
type Results map[string]Binding

// Has reports whether name was bound.
func (r Results) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Node returns the node bound to name. For a sequence capture it returns
// the first node of the sequence, or nil when the sequence is empty.
func (r Results) Node(name string) pytree.Node {
	b, ok := r[name]
	if !ok {
		return nil
	}
	if !b.Seq {
		return b.Node
	}
	if len(b.Nodes) == 0 {
		return nil
	}
	return b.Nodes[0]
}

// Nodes returns the nodes bound to name. A single node capture yields a
// one element slice.
func (r Results) Nodes(name string) []pytree.Node {
	b, ok := r[name]
	if !ok {
		return nil
	}
	if b.Seq {
		return b.Nodes
	}
	return []pytree.Node{b.Node}
}

// Leaf returns the node bound to name if it is a leaf.
func (r Results) Leaf(name string) *pytree.Leaf {
	l, _ := r.Node(name).(*pytree.Leaf)
	return l
}

// Matcher is one compiled element of a pattern.
type Matcher interface {
	// generate calls k with the number of nodes consumed for every way the
	// matcher can match a prefix of nodes, stopping at the first k that
	// returns true.
	generate(nodes []pytree.Node, b *binder, k func(n int) bool) bool
	capture() string
	setCapture(name string)
	String() string
}

var (
	_ Matcher = (*LeafPattern)(nil)
	_ Matcher = (*NodePattern)(nil)
	_ Matcher = (*WildcardPattern)(nil)
	_ Matcher = (*NegatedPattern)(nil)
)

// LeafPattern matches one leaf by type and, optionally, value.
type LeafPattern struct {
	Type     pygram.Type // Invalid matches any token type
	Value    string
	HasValue bool
	Name     string
}

func (p *LeafPattern) capture() string        { return p.Name }
func (p *LeafPattern) setCapture(name string) { p.Name = name }

func (p *LeafPattern) String() string {
	var s string
	switch {
	case p.HasValue:
		s = fmt.Sprintf("%q", p.Value)
	default:
		s = fmt.Sprintf("leaf(%d)", p.Type)
	}
	return named(p.Name, s)
}

// NodePattern matches one node by type. When Content is set the node's
// children must match it as a whole sequence.
type NodePattern struct {
	Type    pygram.Type // Invalid matches any type
	Content Matcher
	Name    string
}

func (p *NodePattern) capture() string        { return p.Name }
func (p *NodePattern) setCapture(name string) { p.Name = name }

func (p *NodePattern) String() string {
	s := "any"
	if p.Type != pygram.Invalid {
		s = fmt.Sprintf("node(%d)", p.Type)
	}
	if p.Content != nil {
		s += "<" + p.Content.String() + ">"
	}
	return named(p.Name, s)
}

// WildcardPattern matches between Min and Max repetitions of any of its
// alternatives. Each alternative is a sequence of matchers. With no
// alternatives every repetition is one arbitrary node.
type WildcardPattern struct {
	Alts     [][]Matcher
	Min, Max int
	Name     string
}

func (p *WildcardPattern) capture() string        { return p.Name }
func (p *WildcardPattern) setCapture(name string) { p.Name = name }

func (p *WildcardPattern) String() string {
	var s string
	if p.Alts == nil {
		s = "any"
	} else {
		alts := make([]string, len(p.Alts))
		for i, alt := range p.Alts {
			parts := make([]string, len(alt))
			for j, m := range alt {
				parts[j] = m.String()
			}
			alts[i] = strings.Join(parts, " ")
		}
		s = "(" + strings.Join(alts, " | ") + ")"
	}
	switch {
	case p.Min == 1 && p.Max == 1:
	case p.Min == 0 && p.Max == Unbounded:
		s += "*"
	case p.Min == 1 && p.Max == Unbounded:
		s += "+"
	case p.Min == 0 && p.Max == 1:
		s = "[" + s + "]"
	default:
		s += fmt.Sprintf("{%d,%d}", p.Min, p.Max)
	}
	return named(p.Name, s)
}

// NegatedPattern consumes nothing and succeeds when Content cannot match at
// the current position.
type NegatedPattern struct {
	Content Matcher
}

func (p *NegatedPattern) capture() string   { return "" }
func (p *NegatedPattern) setCapture(string) {}
func (p *NegatedPattern) String() string    { return "not " + p.Content.String() }

func named(name, s string) string {
	if name == "" {
		return s
	}
	return name + "=" + s
}
