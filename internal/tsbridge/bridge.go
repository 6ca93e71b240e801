// Package tsbridge builds pytree syntax trees from tree-sitter parses, so
// the pattern compiler and matcher can be used on languages other than
// Python.
//
// Every tree-sitter node becomes a pytree node of the interned type of the
// same name. Leaves keep their source text as value and the text between
// them as prefix; comments are folded into the prefix of the next leaf, and
// a trailing ENDMARKER leaf holds whatever follows the last token, so the
// rendered tree is always the original source.
package tsbridge

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	golang "github.com/alexaandru/go-sitter-forest/go"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/python"

	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

var (
	ErrUnknownLanguage = errors.New("unknown language")
	errNoRootNode      = errors.New("tree-sitter returned no root node")
	errPoolType        = errors.New("unexpected parser pool entry")
)

var languageFuncs = map[string]func() unsafe.Pointer{
	"go":         golang.GetLanguage,
	"javascript": javascript.GetLanguage,
	"python":     python.GetLanguage,
}

// Languages lists the supported language names.
func Languages() []string {
	return slices.Sorted(maps.Keys(languageFuncs))
}

// Bridge parses one language. It is safe for concurrent use.
type Bridge struct {
	name    string
	grammar *Grammar
	pool    sync.Pool
}

func New(language string) (*Bridge, error) {
	fn, ok := languageFuncs[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownLanguage, language, strings.Join(Languages(), ", "))
	}
	lang := sitter.NewLanguage(fn())

	b := &Bridge{name: language, grammar: NewGrammar()}
	b.pool = sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(lang)
			return p
		},
	}
	return b, nil
}

func (b *Bridge) Language() string { return b.name }

func (b *Bridge) Grammar() *Grammar { return b.grammar }

// Compile compiles a pattern against the node types of this language.
func (b *Bridge) Compile(src string) (*pattern.Pattern, error) {
	return pattern.CompileWith(src, b.grammar)
}

// Parse parses src into a pytree tree whose root is the tree-sitter root
// node, with an ENDMARKER leaf as its last child.
func (b *Bridge) Parse(ctx context.Context, src []byte) (*pytree.Branch, error) {
	p, ok := b.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}
	defer b.pool.Put(p)

	tree, err := p.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter %s: %w", b.name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	c := &converter{src: src, grammar: b.grammar}
	children := c.children(root)
	children = append(children, pytree.NewLeafPrefix(pygram.ENDMARKER, "", string(src[c.pos:])))
	return pytree.NewBranch(b.grammar.Intern(root.Type()), children...), nil
}

type converter struct {
	src     []byte
	pos     int // end of the last emitted leaf
	grammar *Grammar
}

func (c *converter) children(n sitter.Node) []pytree.Node {
	var out []pytree.Node
	for i := range n.ChildCount() {
		if child := c.convert(n.Child(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// convert returns nil for nodes that produce no leaves: comments, and
// zero-width nodes inserted by error recovery.
func (c *converter) convert(n sitter.Node) pytree.Node {
	if n.IsNull() || isComment(n.Type()) {
		return nil
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	if end <= start || end > len(c.src) {
		return nil
	}

	if n.ChildCount() == 0 {
		start = max(start, c.pos)
		if start >= end {
			return nil
		}
		leaf := pytree.NewLeafPrefix(c.grammar.Intern(n.Type()), string(c.src[start:end]), string(c.src[c.pos:start]))
		leaf.Line = int(n.StartPoint().Row) + 1
		leaf.Column = int(n.StartPoint().Column)
		c.pos = end
		return leaf
	}

	children := c.children(n)
	if len(children) == 0 {
		return nil
	}
	return pytree.NewBranch(c.grammar.Intern(n.Type()), children...)
}

func isComment(typ string) bool {
	return strings.HasSuffix(typ, "comment")
}
