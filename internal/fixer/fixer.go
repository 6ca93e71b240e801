package fixer

import (
	"errors"
	"fmt"

	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pytree"
)

// Order is the traversal a fixer runs in.
type Order string

const (
	// Pre fixers see a node before its children.
	Pre Order = "pre"
	// Post fixers see a node after its children.
	Post Order = "post"
)

var (
	ErrIllegalOrder = errors.New("illegal fixer order")
	// ErrDeclined is returned, possibly wrapped, by a Transform that left
	// the matched node alone. The fixer is not counted as applied and later
	// fixers may still take the node.
	ErrDeclined = errors.New("declined")
)

// ParseOrder validates s as an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case Pre, Post:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrIllegalOrder, s)
}

// Fixer is a single rewrite rule. It owns its compiled patterns and
// mutates the tree in Transform.
type Fixer interface {
	// Name returns the name of the fixer.
	Name() string

	// Order returns the traversal the fixer runs in.
	Order() Order

	// RunOrder sorts fixers sharing an order. Lower runs first.
	RunOrder() int

	// Patterns returns the patterns compiled at construction.
	Patterns() []*pattern.Pattern

	// StartTree is called once per file before traversal.
	StartTree(s *Session, tree pytree.Node) error

	// Transform edits the tree around a matched node. It returns
	// ErrDeclined when it leaves the node unchanged.
	Transform(s *Session, node pytree.Node, results pattern.Results) error

	// FinishTree is called once per file after traversal.
	FinishTree(s *Session, tree pytree.Node) error
}

// Filter is implemented by fixers that reject some structural matches on
// context the pattern cannot express. A rejected match lets later fixers
// try the node.
type Filter interface {
	Accept(s *Session, node pytree.Node, results pattern.Results) bool
}

// Fingerprinter is implemented by fixers whose behavior depends on settings
// beyond their name, orders and patterns. The fingerprint changes whenever
// those settings do.
type Fingerprinter interface {
	Fingerprint() string
}

// Base carries the bookkeeping shared by every fixer. Embed it and
// implement Transform.
type Base struct {
	name     string
	order    Order
	runOrder int
	patterns []*pattern.Pattern
}

// NewBase compiles patterns and validates order. A malformed pattern is
// returned as a *pattern.CompileError.
func NewBase(name string, order Order, runOrder int, patterns ...string) (Base, error) {
	if _, err := ParseOrder(string(order)); err != nil {
		return Base{}, fmt.Errorf("%s: %w", name, err)
	}
	b := Base{name: name, order: order, runOrder: runOrder}
	for _, src := range patterns {
		p, err := pattern.Compile(src)
		if err != nil {
			return Base{}, fmt.Errorf("%s: %w", name, err)
		}
		b.patterns = append(b.patterns, p)
	}
	return b, nil
}

func (b *Base) Name() string                           { return b.name }
func (b *Base) Order() Order                           { return b.order }
func (b *Base) RunOrder() int                          { return b.runOrder }
func (b *Base) Patterns() []*pattern.Pattern           { return b.patterns }
func (b *Base) StartTree(*Session, pytree.Node) error  { return nil }
func (b *Base) FinishTree(*Session, pytree.Node) error { return nil }

// SetRunOrder overrides the run order, for configuration.
func (b *Base) SetRunOrder(n int) { b.runOrder = n }
