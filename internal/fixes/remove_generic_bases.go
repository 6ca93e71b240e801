package fixes

import (
	"slices"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

const RemoveGenericBasesName = "remove-generic-bases"

// RemoveGenericBases turns subscripted base classes such as Base[T] into
// plain Base, leaving the other bases alone.
type RemoveGenericBases struct {
	fixer.Base
}

func NewRemoveGenericBases() (fixer.Fixer, error) {
	b, err := fixer.NewBase(RemoveGenericBasesName, fixer.Post, 10,
		"classdef< 'class' any '(' args=arglist< any* power< any+ trailer< '[' any* ']' > > any* > ')' ':' any >",
		"classdef< 'class' any '(' args=power< any+ trailer< '[' any* ']' > > ')' ':' any >",
	)
	if err != nil {
		return nil, err
	}
	return &RemoveGenericBases{Base: b}, nil
}

func (f *RemoveGenericBases) Transform(s *fixer.Session, node pytree.Node, r pattern.Results) error {
	args := r.Node("args")
	bases := []pytree.Node{args}
	if args.Type() == pygram.Arglist {
		bases = slices.Clone(args.Children())
	}
	for _, base := range bases {
		if err := dropSubscript(base); err != nil {
			return err
		}
	}
	return nil
}

// dropSubscript removes the trailing [...] of a base class expression.
func dropSubscript(base pytree.Node) error {
	if base.Type() != pygram.Power {
		return nil
	}
	children := base.Children()
	last := children[len(children)-1]
	if !isTrailer(last, pygram.LSQB) {
		return nil
	}
	last.Remove()
	if rest := base.Children(); len(rest) == 1 {
		return pytree.Replace(base, rest[0])
	}
	return nil
}
