package fixes

import (
	"errors"
	"fmt"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pytree"
	tt "github.com/gnolang/hintstrip/internal/types"
)

var (
	ErrUnknownAction  = errors.New("unknown rule action")
	ErrMissingCapture = errors.New("rule action needs a capture")
	ErrMissingName    = errors.New("rule has no name")
)

type Action string

const (
	ActionRemove Action = "remove"
	ActionUnwrap Action = "unwrap"
	ActionRename Action = "rename"
)

// PatternRule is a fixer defined in configuration: one pattern and one
// action applied to every match.
type PatternRule struct {
	fixer.Base
	action  Action
	capture string
	value   string
}

// NewPatternRule builds a fixer from a rule definition. The order defaults
// to post when empty.
func NewPatternRule(def tt.RuleConfig) (*PatternRule, error) {
	if def.Name == "" {
		return nil, ErrMissingName
	}
	order := fixer.Post
	if def.Order != "" {
		o, err := fixer.ParseOrder(def.Order)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", def.Name, err)
		}
		order = o
	}

	action := Action(def.Action)
	switch action {
	case ActionRemove:
	case ActionUnwrap, ActionRename:
		if def.Capture == "" {
			return nil, fmt.Errorf("rule %s: %w: %s", def.Name, ErrMissingCapture, action)
		}
	default:
		return nil, fmt.Errorf("rule %s: %w: %q", def.Name, ErrUnknownAction, def.Action)
	}

	b, err := fixer.NewBase(def.Name, order, def.RunOrder, def.Pattern)
	if err != nil {
		return nil, err
	}
	return &PatternRule{Base: b, action: action, capture: def.Capture, value: def.Value}, nil
}

func (f *PatternRule) Transform(_ *fixer.Session, node pytree.Node, r pattern.Results) error {
	switch f.action {
	case ActionRemove:
		return removeExpression(node)

	case ActionUnwrap:
		captured := r.Node(f.capture)
		if captured == nil || captured == node {
			return fmt.Errorf("%w: nothing captured as %q", fixer.ErrDeclined, f.capture)
		}
		if !hoistable(captured) {
			captured = parenthesize(captured)
		}
		return pytree.Replace(node, captured)

	case ActionRename:
		for _, n := range r.Nodes(f.capture) {
			leaf, ok := n.(*pytree.Leaf)
			if !ok {
				return fmt.Errorf("%w: capture %q is not a leaf", errNotLeaf, f.capture)
			}
			leaf.Value = f.value
		}
	}
	return nil
}

var errNotLeaf = errors.New("rename target")

// Fingerprint covers what Patterns does not: the action and its settings.
func (f *PatternRule) Fingerprint() string {
	return fmt.Sprintf("%s\x00%s\x00%s", f.action, f.capture, f.value)
}
