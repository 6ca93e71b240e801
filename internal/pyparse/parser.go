// Package pyparse parses Python source into pytree syntax trees.
//
// The trees follow the lib2to3 shape: every token becomes a leaf carrying
// the whitespace and comments before it as its prefix, and grammar symbols
// that would have a single child are collapsed into that child, except for
// the file_input root. Rendering a parsed tree reproduces the source
// exactly.
package pyparse

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

// ErrSyntax is wrapped by every *ParseError.
var ErrSyntax = errors.New("syntax error")

// ParseError locates a syntax error.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// ParseString parses a whole module.
func ParseString(src string) (*pytree.Branch, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: tokens}
	return p.fileInput()
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*pytree.Branch, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := ParseString(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return tree, nil
}

type parser struct {
	toks []token
	pos  int
}

type nodes = []pytree.Node

func (p *parser) tok() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) is(types ...pygram.Type) bool {
	t := p.tok().typ
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

func (p *parser) isKw(values ...string) bool {
	t := p.tok()
	if t.typ != pygram.NAME {
		return false
	}
	for _, v := range values {
		if t.value == v {
			return true
		}
	}
	return false
}

func (p *parser) take() *pytree.Leaf {
	t := p.toks[p.pos]
	if t.typ != pygram.ENDMARKER {
		p.pos++
	}
	l := pytree.NewLeafPrefix(t.typ, t.value, t.prefix)
	l.Line, l.Column = t.line, t.col
	return l
}

func (p *parser) expect(t pygram.Type) (*pytree.Leaf, error) {
	if !p.is(t) {
		return nil, p.unexpected("expected " + t.String())
	}
	return p.take(), nil
}

func (p *parser) expectKw(v string) (*pytree.Leaf, error) {
	if !p.isKw(v) {
		return nil, p.unexpected(fmt.Sprintf("expected %q", v))
	}
	return p.take(), nil
}

func (p *parser) unexpected(msg string) error {
	t := p.tok()
	got := t.value
	switch t.typ {
	case pygram.INDENT:
		got = "indent"
	case pygram.DEDENT:
		got = "dedent"
	case pygram.NEWLINE:
		got = "newline"
	case pygram.ENDMARKER:
		got = "end of file"
	}
	return &ParseError{Line: t.line, Column: t.col, Msg: fmt.Sprintf("%s, got %q", msg, got)}
}

// build collapses single child symbols.
func build(t pygram.Type, children nodes) pytree.Node {
	if len(children) == 1 {
		return children[0]
	}
	return pytree.NewBranch(t, children...)
}

// canStartExpr reports whether the current token may begin an expression.
func (p *parser) canStartExpr() bool {
	t := p.tok()
	switch t.typ {
	case pygram.NAME:
		return !pygram.Keywords[t.value]
	case pygram.NUMBER, pygram.STRING, pygram.LPAR, pygram.LSQB, pygram.LBRACE,
		pygram.MINUS, pygram.PLUS, pygram.TILDE, pygram.STAR, pygram.DOT:
		return true
	}
	return false
}

func (p *parser) fileInput() (*pytree.Branch, error) {
	var children nodes
	for !p.is(pygram.ENDMARKER) {
		if p.is(pygram.NEWLINE) {
			children = append(children, p.take())
			continue
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		children = append(children, s)
	}
	children = append(children, p.take())
	return pytree.NewBranch(pygram.FileInput, children...), nil
}

func (p *parser) stmt() (pytree.Node, error) {
	t := p.tok()
	switch t.typ {
	case pygram.AT:
		return p.decorated()
	case pygram.INDENT:
		return nil, p.unexpected("unexpected indent")
	case pygram.NAME:
		switch t.value {
		case "if":
			return p.ifStmt()
		case "while":
			return p.whileStmt()
		case "for":
			return p.forStmt()
		case "try":
			return p.tryStmt()
		case "with":
			return p.withStmt()
		case "def":
			return p.funcdef()
		case "class":
			return p.classdef()
		case "async":
			if n := p.peekAt(1); n.typ == pygram.NAME && (n.value == "def" || n.value == "with" || n.value == "for") {
				async := p.take()
				inner, err := p.stmt()
				if err != nil {
					return nil, err
				}
				return pytree.NewBranch(pygram.AsyncStmt, async, inner), nil
			}
		}
	}
	return p.simpleStmt()
}

func (p *parser) simpleStmt() (pytree.Node, error) {
	var children nodes
	for {
		s, err := p.smallStmt()
		if err != nil {
			return nil, err
		}
		children = append(children, s)
		if !p.is(pygram.SEMI) {
			break
		}
		children = append(children, p.take())
		if p.is(pygram.NEWLINE) {
			break
		}
	}
	nl, err := p.expect(pygram.NEWLINE)
	if err != nil {
		return nil, err
	}
	children = append(children, nl)
	return pytree.NewBranch(pygram.SimpleStmt, children...), nil
}

func (p *parser) smallStmt() (pytree.Node, error) {
	if p.is(pygram.NAME) {
		switch p.tok().value {
		case "pass", "break", "continue":
			return p.take(), nil
		case "del":
			return p.keywordThen(pygram.DelStmt, p.exprlist)
		case "return":
			kw := p.take()
			if !p.canStartExpr() {
				return kw, nil
			}
			value, err := p.testlistStarExpr()
			if err != nil {
				return nil, err
			}
			return pytree.NewBranch(pygram.ReturnStmt, kw, value), nil
		case "raise":
			return p.raiseStmt()
		case "global", "nonlocal":
			return p.globalStmt()
		case "import":
			return p.importName()
		case "from":
			return p.importFrom()
		case "assert":
			return p.assertStmt()
		case "yield":
			return p.yieldExpr()
		}
	}
	return p.exprStmt()
}

func (p *parser) keywordThen(sym pygram.Type, rest func() (pytree.Node, error)) (pytree.Node, error) {
	kw := p.take()
	n, err := rest()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(sym, kw, n), nil
}

var augassign = map[pygram.Type]bool{
	pygram.PLUSEQUAL: true, pygram.MINEQUAL: true, pygram.STAREQUAL: true,
	pygram.SLASHEQUAL: true, pygram.PERCENTEQUAL: true, pygram.AMPEREQUAL: true,
	pygram.VBAREQUAL: true, pygram.CIRCUMFLEXEQUAL: true, pygram.LEFTSHIFTEQUAL: true,
	pygram.RIGHTSHIFTEQUAL: true, pygram.DOUBLESTAREQUAL: true, pygram.DOUBLESLASHEQUAL: true,
	pygram.ATEQUAL: true,
}

func (p *parser) exprStmt() (pytree.Node, error) {
	first, err := p.testlistStarExpr()
	if err != nil {
		return nil, err
	}
	children := nodes{first}

	switch {
	case p.is(pygram.COLON):
		ann, err := p.annassign()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.ExprStmt, first, ann), nil

	case augassign[p.tok().typ]:
		op := p.take()
		value, err := p.yieldOr(p.testlist)
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.ExprStmt, first, op, value), nil
	}

	for p.is(pygram.EQUAL) {
		children = append(children, p.take())
		value, err := p.yieldOr(p.testlistStarExpr)
		if err != nil {
			return nil, err
		}
		children = append(children, value)
	}
	return build(pygram.ExprStmt, children), nil
}

func (p *parser) annassign() (pytree.Node, error) {
	colon := p.take()
	ann, err := p.test()
	if err != nil {
		return nil, err
	}
	children := nodes{colon, ann}
	if p.is(pygram.EQUAL) {
		children = append(children, p.take())
		value, err := p.yieldOr(p.testlistStarExpr)
		if err != nil {
			return nil, err
		}
		children = append(children, value)
	}
	return pytree.NewBranch(pygram.Annassign, children...), nil
}

func (p *parser) yieldOr(alt func() (pytree.Node, error)) (pytree.Node, error) {
	if p.isKw("yield") {
		return p.yieldExpr()
	}
	return alt()
}

func (p *parser) yieldExpr() (pytree.Node, error) {
	kw := p.take()
	if p.isKw("from") {
		from := p.take()
		value, err := p.test()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.YieldExpr, kw, pytree.NewBranch(pygram.YieldArg, from, value)), nil
	}
	if !p.canStartExpr() {
		return kw, nil
	}
	value, err := p.testlistStarExpr()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.YieldExpr, kw, value), nil
}

func (p *parser) raiseStmt() (pytree.Node, error) {
	children := nodes{p.take()}
	if p.canStartExpr() {
		exc, err := p.test()
		if err != nil {
			return nil, err
		}
		children = append(children, exc)
		if p.isKw("from") {
			children = append(children, p.take())
			cause, err := p.test()
			if err != nil {
				return nil, err
			}
			children = append(children, cause)
		}
	}
	return build(pygram.RaiseStmt, children), nil
}

func (p *parser) globalStmt() (pytree.Node, error) {
	children := nodes{p.take()}
	for {
		name, err := p.expect(pygram.NAME)
		if err != nil {
			return nil, err
		}
		children = append(children, name)
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
	}
	return pytree.NewBranch(pygram.GlobalStmt, children...), nil
}

func (p *parser) assertStmt() (pytree.Node, error) {
	children := nodes{p.take()}
	cond, err := p.test()
	if err != nil {
		return nil, err
	}
	children = append(children, cond)
	if p.is(pygram.COMMA) {
		children = append(children, p.take())
		msg, err := p.test()
		if err != nil {
			return nil, err
		}
		children = append(children, msg)
	}
	return pytree.NewBranch(pygram.AssertStmt, children...), nil
}

func (p *parser) importName() (pytree.Node, error) {
	kw := p.take()
	var names nodes
	for {
		n, err := p.dottedAsName()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if !p.is(pygram.COMMA) {
			break
		}
		names = append(names, p.take())
	}
	return pytree.NewBranch(pygram.ImportName, kw, build(pygram.DottedAsNames, names)), nil
}

func (p *parser) dottedAsName() (pytree.Node, error) {
	name, err := p.dottedName()
	if err != nil {
		return nil, err
	}
	if !p.isKw("as") {
		return name, nil
	}
	as := p.take()
	alias, err := p.expect(pygram.NAME)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.DottedAsName, name, as, alias), nil
}

func (p *parser) dottedName() (pytree.Node, error) {
	first, err := p.expect(pygram.NAME)
	if err != nil {
		return nil, err
	}
	children := nodes{first}
	for p.is(pygram.DOT) {
		children = append(children, p.take())
		part, err := p.expect(pygram.NAME)
		if err != nil {
			return nil, err
		}
		children = append(children, part)
	}
	return build(pygram.DottedName, children), nil
}

func (p *parser) importFrom() (pytree.Node, error) {
	children := nodes{p.take()}
	dots := 0
	for p.is(pygram.DOT) {
		children = append(children, p.take())
		dots++
	}
	if dots == 0 || !p.isKw("import") {
		mod, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		children = append(children, mod)
	}
	kw, err := p.expectKw("import")
	if err != nil {
		return nil, err
	}
	children = append(children, kw)

	switch {
	case p.is(pygram.STAR):
		children = append(children, p.take())
	case p.is(pygram.LPAR):
		children = append(children, p.take())
		names, err := p.importAsNames()
		if err != nil {
			return nil, err
		}
		rpar, err := p.expect(pygram.RPAR)
		if err != nil {
			return nil, err
		}
		children = append(children, names, rpar)
	default:
		names, err := p.importAsNames()
		if err != nil {
			return nil, err
		}
		children = append(children, names)
	}
	return pytree.NewBranch(pygram.ImportFrom, children...), nil
}

func (p *parser) importAsNames() (pytree.Node, error) {
	var children nodes
	for {
		name, err := p.expect(pygram.NAME)
		if err != nil {
			return nil, err
		}
		item := pytree.Node(name)
		if p.isKw("as") {
			as := p.take()
			alias, err := p.expect(pygram.NAME)
			if err != nil {
				return nil, err
			}
			item = pytree.NewBranch(pygram.ImportAsName, name, as, alias)
		}
		children = append(children, item)
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
		if !p.is(pygram.NAME) {
			break
		}
	}
	return build(pygram.ImportAsNames, children), nil
}

// compound statements

func (p *parser) suite() (pytree.Node, error) {
	if !p.is(pygram.NEWLINE) {
		return p.simpleStmt()
	}
	nl := p.take()
	indent, err := p.expect(pygram.INDENT)
	if err != nil {
		return nil, &ParseError{Line: p.tok().line, Column: p.tok().col, Msg: "expected an indented block"}
	}
	children := nodes{nl, indent}
	for !p.is(pygram.DEDENT) {
		if p.is(pygram.ENDMARKER) {
			return nil, p.unexpected("unterminated block")
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		children = append(children, s)
	}
	children = append(children, p.take())
	return pytree.NewBranch(pygram.Suite, children...), nil
}

// clause parses "':' suite" and appends both to children.
func (p *parser) clause(children nodes) (nodes, error) {
	colon, err := p.expect(pygram.COLON)
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return append(children, colon, body), nil
}

func (p *parser) elseClause(children nodes) (nodes, error) {
	if !p.isKw("else") {
		return children, nil
	}
	return p.clause(append(children, p.take()))
}

func (p *parser) ifStmt() (pytree.Node, error) {
	var children nodes
	for first := true; first || p.isKw("elif"); first = false {
		kw := p.take()
		cond, err := p.namedexprTest()
		if err != nil {
			return nil, err
		}
		if children, err = p.clause(append(children, kw, cond)); err != nil {
			return nil, err
		}
	}
	children, err := p.elseClause(children)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.IfStmt, children...), nil
}

func (p *parser) whileStmt() (pytree.Node, error) {
	kw := p.take()
	cond, err := p.namedexprTest()
	if err != nil {
		return nil, err
	}
	children, err := p.clause(nodes{kw, cond})
	if err != nil {
		return nil, err
	}
	if children, err = p.elseClause(children); err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.WhileStmt, children...), nil
}

func (p *parser) forStmt() (pytree.Node, error) {
	kw := p.take()
	target, err := p.exprlist()
	if err != nil {
		return nil, err
	}
	in, err := p.expectKw("in")
	if err != nil {
		return nil, err
	}
	iter, err := p.testlistStarExpr()
	if err != nil {
		return nil, err
	}
	children, err := p.clause(nodes{kw, target, in, iter})
	if err != nil {
		return nil, err
	}
	if children, err = p.elseClause(children); err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.ForStmt, children...), nil
}

func (p *parser) tryStmt() (pytree.Node, error) {
	children, err := p.clause(nodes{p.take()})
	if err != nil {
		return nil, err
	}
	handlers := 0
	for p.isKw("except") {
		ex, err := p.exceptClause()
		if err != nil {
			return nil, err
		}
		if children, err = p.clause(append(children, ex)); err != nil {
			return nil, err
		}
		handlers++
	}
	if handlers > 0 {
		if children, err = p.elseClause(children); err != nil {
			return nil, err
		}
	}
	if p.isKw("finally") {
		if children, err = p.clause(append(children, p.take())); err != nil {
			return nil, err
		}
	} else if handlers == 0 {
		return nil, p.unexpected(`expected "except" or "finally"`)
	}
	return pytree.NewBranch(pygram.TryStmt, children...), nil
}

func (p *parser) exceptClause() (pytree.Node, error) {
	children := nodes{p.take()}
	if p.is(pygram.STAR) {
		children = append(children, p.take())
	}
	if p.canStartExpr() {
		exc, err := p.test()
		if err != nil {
			return nil, err
		}
		children = append(children, exc)
		if p.isKw("as") || p.is(pygram.COMMA) {
			children = append(children, p.take())
			name, err := p.test()
			if err != nil {
				return nil, err
			}
			children = append(children, name)
		}
	}
	return build(pygram.ExceptClause, children), nil
}

func (p *parser) withStmt() (pytree.Node, error) {
	children := nodes{p.take()}
	for {
		item, err := p.asexprTest()
		if err != nil {
			return nil, err
		}
		children = append(children, item)
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
	}
	children, err := p.clause(children)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.WithStmt, children...), nil
}

func (p *parser) asexprTest() (pytree.Node, error) {
	first, err := p.testOrStar()
	if err != nil {
		return nil, err
	}
	if !p.isKw("as") {
		return first, nil
	}
	as := p.take()
	target, err := p.testOrStar()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.AsexprTest, first, as, target), nil
}

func (p *parser) funcdef() (pytree.Node, error) {
	kw := p.take()
	name, err := p.expect(pygram.NAME)
	if err != nil {
		return nil, err
	}
	lpar, err := p.expect(pygram.LPAR)
	if err != nil {
		return nil, err
	}
	params := nodes{lpar}
	if !p.is(pygram.RPAR) {
		args, err := p.argsList(pygram.Typedargslist, pygram.RPAR, true)
		if err != nil {
			return nil, err
		}
		params = append(params, args)
	}
	rpar, err := p.expect(pygram.RPAR)
	if err != nil {
		return nil, err
	}
	params = append(params, rpar)

	children := nodes{kw, name, pytree.NewBranch(pygram.Parameters, params...)}
	if p.is(pygram.RARROW) {
		arrow := p.take()
		ret, err := p.test()
		if err != nil {
			return nil, err
		}
		children = append(children, arrow, ret)
	}
	if children, err = p.clause(children); err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Funcdef, children...), nil
}

// argsList parses the parameters of a def (typedargslist, annotated) or a
// lambda (varargslist) up to but excluding end.
func (p *parser) argsList(sym, end pygram.Type, annotated bool) (pytree.Node, error) {
	var children nodes
	for !p.is(end) {
		switch {
		case p.is(pygram.STAR, pygram.DOUBLESTAR):
			children = append(children, p.take())
			if p.is(pygram.NAME) {
				name, err := p.param(annotated)
				if err != nil {
					return nil, err
				}
				children = append(children, name)
			}
		case p.is(pygram.SLASH):
			children = append(children, p.take())
		default:
			name, err := p.param(annotated)
			if err != nil {
				return nil, err
			}
			children = append(children, name)
			if p.is(pygram.EQUAL) {
				children = append(children, p.take())
				def, err := p.test()
				if err != nil {
					return nil, err
				}
				children = append(children, def)
			}
		}
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
	}
	if len(children) == 0 {
		return nil, p.unexpected("expected a parameter")
	}
	return build(sym, children), nil
}

func (p *parser) param(annotated bool) (pytree.Node, error) {
	name, err := p.expect(pygram.NAME)
	if err != nil {
		return nil, err
	}
	if !annotated || !p.is(pygram.COLON) {
		return name, nil
	}
	colon := p.take()
	ann, err := p.testOrStar()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Tname, name, colon, ann), nil
}

func (p *parser) classdef() (pytree.Node, error) {
	kw := p.take()
	name, err := p.expect(pygram.NAME)
	if err != nil {
		return nil, err
	}
	children := nodes{kw, name}
	if p.is(pygram.LPAR) {
		children = append(children, p.take())
		if !p.is(pygram.RPAR) {
			args, err := p.arglist()
			if err != nil {
				return nil, err
			}
			children = append(children, args)
		}
		rpar, err := p.expect(pygram.RPAR)
		if err != nil {
			return nil, err
		}
		children = append(children, rpar)
	}
	if children, err = p.clause(children); err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Classdef, children...), nil
}

func (p *parser) decorated() (pytree.Node, error) {
	var decorators nodes
	for p.is(pygram.AT) {
		d, err := p.decorator()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, d)
	}

	var def pytree.Node
	var err error
	switch {
	case p.isKw("def"):
		def, err = p.funcdef()
	case p.isKw("class"):
		def, err = p.classdef()
	case p.isKw("async") && p.peekAt(1).typ == pygram.NAME && p.peekAt(1).value == "def":
		async := p.take()
		var fn pytree.Node
		if fn, err = p.funcdef(); err == nil {
			def = pytree.NewBranch(pygram.AsyncFuncdef, async, fn)
		}
	default:
		return nil, p.unexpected("expected a function or class definition")
	}
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Decorated, build(pygram.Decorators, decorators), def), nil
}

// decorator prefers the classic "@" dotted_name ["(" arglist ")"] NEWLINE
// shape and falls back to an arbitrary expression.
func (p *parser) decorator() (pytree.Node, error) {
	at := p.take()
	start := p.pos
	if n, ok := p.classicDecorator(at); ok {
		return n, nil
	}
	p.pos = start

	expr, err := p.namedexprTest()
	if err != nil {
		return nil, err
	}
	nl, err := p.expect(pygram.NEWLINE)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Decorator, at, expr, nl), nil
}

func (p *parser) classicDecorator(at *pytree.Leaf) (pytree.Node, bool) {
	if !p.is(pygram.NAME) {
		return nil, false
	}
	name, err := p.dottedName()
	if err != nil {
		return nil, false
	}
	children := nodes{at, name}
	if p.is(pygram.LPAR) {
		children = append(children, p.take())
		if !p.is(pygram.RPAR) {
			args, err := p.arglist()
			if err != nil {
				return nil, false
			}
			children = append(children, args)
		}
		if !p.is(pygram.RPAR) {
			return nil, false
		}
		children = append(children, p.take())
	}
	if !p.is(pygram.NEWLINE) {
		return nil, false
	}
	children = append(children, p.take())
	return pytree.NewBranch(pygram.Decorator, children...), true
}
