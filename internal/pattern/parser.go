package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnolang/hintstrip/internal/pygram"
)

// Parser builds a matcher tree from pattern tokens.
type Parser struct {
	src     string
	tokens  []Token
	current int
	grammar Grammar
}

// Compile compiles src against the Python grammar.
func Compile(src string) (*Pattern, error) {
	return CompileWith(src, pygram.Python)
}

// MustCompile is Compile for patterns known to be valid. It panics on
// error.
func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// CompileWith compiles src, resolving names with g.
func CompileWith(src string, g Grammar) (*Pattern, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, tokens: tokens, grammar: g}
	root, err := p.parseAlternatives()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != TokenEOF {
		return nil, p.errorf(t, "unexpected %q", t.Value)
	}
	return &Pattern{src: src, root: root}, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) next() Token {
	t := p.tokens[p.current]
	if t.Type != TokenEOF {
		p.current++
	}
	return t
}

func (p *Parser) isOp(t Token, ops string) bool {
	return t.Type == TokenOp && strings.Contains(ops, t.Value)
}

func (p *Parser) expect(op string) error {
	t := p.next()
	if t.Type != TokenOp || t.Value != op {
		if t.Type == TokenEOF {
			return p.errorf(t, "expected %q, got end of pattern", op)
		}
		return p.errorf(t, "expected %q, got %q", op, t.Value)
	}
	return nil
}

func (p *Parser) errorf(t Token, format string, args ...any) error {
	return &CompileError{Pattern: p.src, Pos: t.Position, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseAlternatives() (Matcher, error) {
	var alts [][]Matcher
	for {
		alt, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		if !p.isOp(p.peek(), "|") {
			break
		}
		p.next()
	}
	if len(alts) == 1 {
		return sequence(alts[0]), nil
	}
	return &WildcardPattern{Alts: alts, Min: 1, Max: 1}, nil
}

func sequence(units []Matcher) Matcher {
	if len(units) == 1 {
		return units[0]
	}
	return &WildcardPattern{Alts: [][]Matcher{units}, Min: 1, Max: 1}
}

func (p *Parser) parseAlternative() ([]Matcher, error) {
	var units []Matcher
	for {
		t := p.peek()
		if t.Type == TokenEOF || p.isOp(t, "|)]>") {
			break
		}
		unit, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	if len(units) == 0 {
		return nil, p.errorf(p.peek(), "empty alternative")
	}
	return units, nil
}

func (p *Parser) parseUnit() (Matcher, error) {
	t := p.peek()
	if t.Type == TokenName && t.Value == "not" && !p.isOp(p.peekAt(1), "=") {
		p.next()
		if p.isOp(p.peek(), "[") {
			return nil, p.errorf(p.peek(), "cannot negate an optional group")
		}
		content, _, err := p.parseBasic()
		if err != nil {
			return nil, err
		}
		return &NegatedPattern{Content: content}, nil
	}

	var name string
	if t.Type == TokenName && p.isOp(p.peekAt(1), "=") {
		name = t.Value
		p.next()
		p.next()
	}

	m, optional, err := p.parseBasic()
	if err != nil {
		return nil, err
	}
	if !optional {
		if m, err = p.parseRepeater(m); err != nil {
			return nil, err
		}
	}
	if name != "" {
		m.setCapture(name)
	}
	return m, nil
}

func (p *Parser) parseBasic() (m Matcher, optional bool, err error) {
	t := p.next()
	switch {
	case t.Type == TokenString:
		return &LeafPattern{Type: p.grammar.LiteralType(t.Value), Value: t.Value, HasValue: true}, false, nil

	case t.Type == TokenName && isUpper(t.Value):
		typ, ok := p.grammar.Token(t.Value)
		if !ok {
			return nil, false, p.errorf(t, "unknown token %q", t.Value)
		}
		if p.isOp(p.peek(), "<") {
			return nil, false, p.errorf(p.peek(), "token %s cannot have details", t.Value)
		}
		return &LeafPattern{Type: typ}, false, nil

	case t.Type == TokenName:
		node := &NodePattern{}
		if t.Value != "any" {
			typ, ok := p.grammar.Symbol(t.Value)
			if !ok {
				return nil, false, p.errorf(t, "unknown symbol %q", t.Value)
			}
			node.Type = typ
		}
		if p.isOp(p.peek(), "<") {
			p.next()
			content, err := p.parseAlternatives()
			if err != nil {
				return nil, false, err
			}
			if err := p.expect(">"); err != nil {
				return nil, false, err
			}
			node.Content = content
		}
		return node, false, nil

	case p.isOp(t, "("):
		inner, err := p.parseAlternatives()
		if err != nil {
			return nil, false, err
		}
		if err := p.expect(")"); err != nil {
			return nil, false, err
		}
		return inner, false, nil

	case p.isOp(t, "["):
		inner, err := p.parseAlternatives()
		if err != nil {
			return nil, false, err
		}
		if err := p.expect("]"); err != nil {
			return nil, false, err
		}
		return &WildcardPattern{Alts: [][]Matcher{{inner}}, Min: 0, Max: 1}, true, nil

	case t.Type == TokenEOF:
		return nil, false, p.errorf(t, "unexpected end of pattern")
	}
	return nil, false, p.errorf(t, "unexpected %q", t.Value)
}

func (p *Parser) parseRepeater(m Matcher) (Matcher, error) {
	t := p.peek()
	if !p.isOp(t, "*+{") {
		return m, nil
	}
	p.next()

	lo, hi := 0, Unbounded
	switch t.Value {
	case "+":
		lo = 1
	case "{":
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		lo, hi = n, n
		if p.isOp(p.peek(), ",") {
			p.next()
			if hi, err = p.parseNumber(); err != nil {
				return nil, err
			}
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, p.errorf(t, "invalid repeat bounds {%d,%d}", lo, hi)
		}
	}
	if lo == 1 && hi == 1 {
		return m, nil
	}
	if n, ok := m.(*NodePattern); ok && n.Type == pygram.Invalid && n.Content == nil && n.Name == "" {
		return &WildcardPattern{Min: lo, Max: hi}, nil
	}
	return &WildcardPattern{Alts: [][]Matcher{{m}}, Min: lo, Max: hi}, nil
}

func (p *Parser) parseNumber() (int, error) {
	t := p.next()
	if t.Type != TokenNumber {
		return 0, p.errorf(t, "expected a number, got %q", t.Value)
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, p.errorf(t, "bad number %q", t.Value)
	}
	return n, nil
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter
}
