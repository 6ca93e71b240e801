package fixes

import (
	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

const RemoveTypeHintsName = "remove-type-hints"

// RemoveTypeHints drops parameter annotations, return annotations and the
// annotation of annotated assignments.
type RemoveTypeHints struct {
	fixer.Base
}

func NewRemoveTypeHints() (fixer.Fixer, error) {
	b, err := fixer.NewBase(RemoveTypeHintsName, fixer.Post, 4,
		"tname< name=any ':' [any] >",
		"funcdef< 'def' any any '->' hint=any ':' any >",
		"expr_stmt< target=any ann=annassign< ':' any ['=' value=any] > >",
	)
	if err != nil {
		return nil, err
	}
	return &RemoveTypeHints{Base: b}, nil
}

func (f *RemoveTypeHints) Transform(s *fixer.Session, node pytree.Node, r pattern.Results) error {
	switch {
	case r.Has("hint"):
		hint := r.Node("hint")
		arrow := pytree.PrevSibling(hint)
		if !isLeaf(arrow, pygram.RARROW) {
			return fixer.ErrDeclined
		}
		hint.Remove()
		arrow.Remove()
		return nil

	case r.Has("ann"):
		if !r.Has("value") {
			// a bare declaration such as "x: int"
			return removeStatement(node)
		}
		ann := r.Node("ann")
		children := ann.Children()
		eq := children[len(children)-2]
		return pytree.ReplaceExact(ann, eq, r.Node("value"))

	case r.Has("name"):
		return pytree.Replace(node, r.Node("name"))
	}
	return fixer.ErrDeclined
}
