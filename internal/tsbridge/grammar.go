package tsbridge

import (
	"strings"
	"sync"

	"github.com/gnolang/hintstrip/internal/pygram"
)

// firstType keeps interned tags clear of the pygram tags.
const firstType pygram.Type = 1 << 20

// Grammar interns tree-sitter node type names as pygram.Type tags so the
// pattern compiler can refer to them. Lowercase pattern names resolve to
// the tree-sitter type of the same name; uppercase names resolve to the
// lowercased type, so IDENTIFIER and identifier are the same tag. Names
// are interned on first use, and a name the language never produces
// simply matches nothing.
//
// A Grammar is safe for concurrent use.
type Grammar struct {
	mu     sync.RWMutex
	byName map[string]pygram.Type
	names  []string
}

func NewGrammar() *Grammar {
	return &Grammar{byName: make(map[string]pygram.Type)}
}

// Intern returns the tag of a tree-sitter node type.
func (g *Grammar) Intern(name string) pygram.Type {
	g.mu.RLock()
	t, ok := g.byName[name]
	g.mu.RUnlock()
	if ok {
		return t
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.byName[name]; ok {
		return t
	}
	t = firstType + pygram.Type(len(g.names))
	g.byName[name] = t
	g.names = append(g.names, name)
	return t
}

func (g *Grammar) Symbol(name string) (pygram.Type, bool) {
	return g.Intern(name), true
}

func (g *Grammar) Token(name string) (pygram.Type, bool) {
	if name == "ENDMARKER" {
		return pygram.ENDMARKER, true
	}
	return g.Intern(strings.ToLower(name)), true
}

// LiteralType returns pygram.Invalid: a quoted literal matches any leaf
// with that text.
func (g *Grammar) LiteralType(string) pygram.Type { return pygram.Invalid }

func (g *Grammar) TypeName(t pygram.Type) string {
	if t == pygram.ENDMARKER {
		return "ENDMARKER"
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i := int(t - firstType); i >= 0 && i < len(g.names) {
		return g.names[i]
	}
	return t.String()
}
