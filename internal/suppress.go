package internal

import (
	"strings"

	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

const (
	suppressPrefix     = "nostrip"
	suppressFilePrefix = "nostrip-file"
)

// suppressScope is a range of lines where some fixers must not transform.
type suppressScope struct {
	start, end int
	fixers     map[string]struct{} // empty => every fixer
}

func (s suppressScope) covers(fixer string) bool {
	if len(s.fixers) == 0 {
		return true
	}
	_, ok := s.fixers[fixer]
	return ok
}

// Suppressions are the nostrip comments of one file:
//
//	x: int = 1  # nostrip              this statement, every fixer
//	# nostrip:remove-type-hints        the next statement, listed fixers
//	# nostrip-file                     the whole file
//
// A comment on its own line covers the whole statement that follows,
// including the body of a def or class.
type Suppressions struct {
	file   []suppressScope
	scopes []suppressScope
}

// ParseSuppressions collects the nostrip comments in the prefixes of tree.
func ParseSuppressions(tree pytree.Node) *Suppressions {
	s := &Suppressions{}
	var pending []string
	for leaf := range pytree.Leaves(tree) {
		directives := append(pending, directivesIn(leaf.Prefix())...)
		pending = nil
		if len(directives) == 0 {
			continue
		}
		// zero-width markers pass their comments on to the next token
		if leaf.Value == "" && (leaf.Type() == pygram.INDENT || leaf.Type() == pygram.DEDENT) {
			pending = directives
			continue
		}
		for _, d := range directives {
			s.add(d, leaf)
		}
	}
	return s
}

func (s *Suppressions) add(directive string, leaf *pytree.Leaf) {
	if rest, ok := strings.CutPrefix(directive, suppressFilePrefix); ok {
		s.file = append(s.file, suppressScope{fixers: parseSuppressRules(rest)})
		return
	}
	rest := strings.TrimPrefix(directive, suppressPrefix)
	if rest != "" && rest[0] != ':' {
		// some other word such as "nostripped"
		return
	}
	if leaf.Line == 0 || leaf.Type() == pygram.ENDMARKER {
		return
	}

	scope := suppressScope{fixers: parseSuppressRules(rest)}
	if leaf.Type() == pygram.NEWLINE {
		// trailing comment: the statement, or compound statement header,
		// ending on this line
		scope.start, scope.end = leaf.Line, leaf.Line
		if stmt := leaf.Parent(); stmt != nil {
			if stmt.Type() == pygram.Suite && stmt.Parent() != nil {
				stmt = stmt.Parent()
			}
			if first := pytree.FirstLeaf(stmt); first != nil && first.Line > 0 {
				scope.start = first.Line
			}
		}
	} else {
		stmt := statementAt(leaf)
		scope.start, scope.end = leaf.Line, lastLine(stmt)
	}
	s.scopes = append(s.scopes, scope)
}

// FileSuppressed reports whether fixer is disabled for the whole file.
func (s *Suppressions) FileSuppressed(fixer string) bool {
	for _, scope := range s.file {
		if scope.covers(fixer) {
			return true
		}
	}
	return false
}

// Suppressed reports whether fixer must leave node alone. A node is
// located by the line of its first token.
func (s *Suppressions) Suppressed(fixer string, node pytree.Node) bool {
	if s.FileSuppressed(fixer) {
		return true
	}
	first := pytree.FirstLeaf(node)
	if first == nil || first.Line == 0 {
		return false
	}
	for _, scope := range s.scopes {
		if first.Line < scope.start || first.Line > scope.end {
			continue
		}
		if scope.covers(fixer) {
			return true
		}
	}
	return false
}

// directivesIn returns the comment texts of prefix that start with the
// nostrip prefix, without the leading '#'.
func directivesIn(prefix string) []string {
	if !strings.Contains(prefix, suppressPrefix) {
		return nil
	}
	var out []string
	for _, line := range strings.Split(prefix, "\n") {
		text, ok := strings.CutPrefix(strings.TrimSpace(line), "#")
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if strings.HasPrefix(text, suppressPrefix) {
			out = append(out, text)
		}
	}
	return out
}

// parseSuppressRules parses the ":a, b" fixer list following a directive.
func parseSuppressRules(text string) map[string]struct{} {
	rules := make(map[string]struct{})
	_, list, ok := strings.Cut(text, ":")
	if !ok {
		return rules
	}
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			rules[name] = struct{}{}
		}
	}
	return rules
}

// statementAt returns the outermost node starting at leaf below the
// enclosing block.
func statementAt(leaf *pytree.Leaf) pytree.Node {
	var n pytree.Node = leaf
	for {
		p := n.Parent()
		if p == nil || p.Type() == pygram.FileInput || p.Type() == pygram.Suite {
			return n
		}
		if pytree.FirstLeaf(p) != leaf {
			return n
		}
		n = p
	}
}

// lastLine is the line of the last token of n with text.
func lastLine(n pytree.Node) int {
	line := 0
	for leaf := range pytree.Leaves(n) {
		if leaf.Value != "" && leaf.Line > line {
			line = leaf.Line
		}
	}
	return line
}
