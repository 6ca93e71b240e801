package pyparse

import (
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

func (p *parser) test() (pytree.Node, error) {
	if p.isKw("lambda") {
		return p.lambdef()
	}
	cond, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.isKw("if") {
		return cond, nil
	}
	kwIf := p.take()
	check, err := p.orTest()
	if err != nil {
		return nil, err
	}
	kwElse, err := p.expectKw("else")
	if err != nil {
		return nil, err
	}
	alt, err := p.test()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Test, cond, kwIf, check, kwElse, alt), nil
}

func (p *parser) lambdef() (pytree.Node, error) {
	children := nodes{p.take()}
	if !p.is(pygram.COLON) {
		args, err := p.argsList(pygram.Varargslist, pygram.COLON, false)
		if err != nil {
			return nil, err
		}
		children = append(children, args)
	}
	colon, err := p.expect(pygram.COLON)
	if err != nil {
		return nil, err
	}
	body, err := p.test()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Lambdef, append(children, colon, body)...), nil
}

func (p *parser) namedexprTest() (pytree.Node, error) {
	t, err := p.test()
	if err != nil {
		return nil, err
	}
	if !p.is(pygram.COLONEQUAL) {
		return t, nil
	}
	op := p.take()
	value, err := p.test()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.NamedexprTest, t, op, value), nil
}

func (p *parser) testOrStar() (pytree.Node, error) {
	if p.is(pygram.STAR) {
		return p.starExpr()
	}
	return p.test()
}

func (p *parser) starExpr() (pytree.Node, error) {
	star := p.take()
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.StarExpr, star, e), nil
}

// binary parses operand (op operand)* into sym.
func (p *parser) binary(sym pygram.Type, operand func() (pytree.Node, error), isOp func() bool) (pytree.Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	children := nodes{first}
	for isOp() {
		children = append(children, p.take())
		next, err := operand()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return build(sym, children), nil
}

func (p *parser) orTest() (pytree.Node, error) {
	return p.binary(pygram.OrTest, p.andTest, func() bool { return p.isKw("or") })
}

func (p *parser) andTest() (pytree.Node, error) {
	return p.binary(pygram.AndTest, p.notTest, func() bool { return p.isKw("and") })
}

func (p *parser) notTest() (pytree.Node, error) {
	if !p.isKw("not") {
		return p.comparison()
	}
	kw := p.take()
	operand, err := p.notTest()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.NotTest, kw, operand), nil
}

func (p *parser) comparison() (pytree.Node, error) {
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	children := nodes{first}
	for {
		var op pytree.Node
		switch {
		case p.is(pygram.LESS, pygram.GREATER, pygram.EQEQUAL, pygram.GREATEREQUAL,
			pygram.LESSEQUAL, pygram.NOTEQUAL) || p.isKw("in"):
			op = p.take()
		case p.isKw("not") && p.peekAt(1).typ == pygram.NAME && p.peekAt(1).value == "in":
			not := p.take()
			op = pytree.NewBranch(pygram.CompOp, not, p.take())
		case p.isKw("is"):
			is := p.take()
			op = is
			if p.isKw("not") {
				op = pytree.NewBranch(pygram.CompOp, is, p.take())
			}
		}
		if op == nil {
			break
		}
		next, err := p.expr()
		if err != nil {
			return nil, err
		}
		children = append(children, op, next)
	}
	return build(pygram.Comparison, children), nil
}

func (p *parser) expr() (pytree.Node, error) {
	return p.binary(pygram.Expr, p.xorExpr, func() bool { return p.is(pygram.VBAR) })
}

func (p *parser) xorExpr() (pytree.Node, error) {
	return p.binary(pygram.XorExpr, p.andExpr, func() bool { return p.is(pygram.CIRCUMFLEX) })
}

func (p *parser) andExpr() (pytree.Node, error) {
	return p.binary(pygram.AndExpr, p.shiftExpr, func() bool { return p.is(pygram.AMPER) })
}

func (p *parser) shiftExpr() (pytree.Node, error) {
	return p.binary(pygram.ShiftExpr, p.arithExpr, func() bool {
		return p.is(pygram.LEFTSHIFT, pygram.RIGHTSHIFT)
	})
}

func (p *parser) arithExpr() (pytree.Node, error) {
	return p.binary(pygram.ArithExpr, p.term, func() bool { return p.is(pygram.PLUS, pygram.MINUS) })
}

func (p *parser) term() (pytree.Node, error) {
	return p.binary(pygram.Term, p.factor, func() bool {
		return p.is(pygram.STAR, pygram.SLASH, pygram.PERCENT, pygram.DOUBLESLASH, pygram.AT)
	})
}

func (p *parser) factor() (pytree.Node, error) {
	if !p.is(pygram.PLUS, pygram.MINUS, pygram.TILDE) {
		return p.power()
	}
	op := p.take()
	operand, err := p.factor()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Factor, op, operand), nil
}

func (p *parser) power() (pytree.Node, error) {
	var children nodes
	if p.isKw("await") {
		if n := p.peekAt(1); n.typ != pygram.NEWLINE && n.typ != pygram.EQUAL && n.typ != pygram.RPAR {
			children = append(children, p.take())
		}
	}
	a, err := p.atom()
	if err != nil {
		return nil, err
	}
	children = append(children, a)
	for p.is(pygram.LPAR, pygram.LSQB, pygram.DOT) {
		tr, err := p.trailer()
		if err != nil {
			return nil, err
		}
		children = append(children, tr)
	}
	if p.is(pygram.DOUBLESTAR) {
		children = append(children, p.take())
		exp, err := p.factor()
		if err != nil {
			return nil, err
		}
		children = append(children, exp)
	}
	return build(pygram.Power, children), nil
}

func (p *parser) trailer() (pytree.Node, error) {
	open := p.take()
	switch open.Type() {
	case pygram.DOT:
		name, err := p.expect(pygram.NAME)
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.Trailer, open, name), nil
	case pygram.LPAR:
		children := nodes{open}
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
		return pytree.NewBranch(pygram.Trailer, append(children, rpar)...), nil
	}
	subs, err := p.subscriptlist()
	if err != nil {
		return nil, err
	}
	rsqb, err := p.expect(pygram.RSQB)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Trailer, open, subs, rsqb), nil
}

func (p *parser) atom() (pytree.Node, error) {
	t := p.tok()
	switch t.typ {
	case pygram.NAME:
		if pygram.Keywords[t.value] {
			return nil, p.unexpected("expected an expression")
		}
		return p.take(), nil
	case pygram.NUMBER:
		return p.take(), nil
	case pygram.STRING:
		children := nodes{p.take()}
		for p.is(pygram.STRING) {
			children = append(children, p.take())
		}
		return build(pygram.Atom, children), nil
	case pygram.DOT:
		if p.peekAt(1).typ == pygram.DOT && p.peekAt(2).typ == pygram.DOT {
			return pytree.NewBranch(pygram.Atom, p.take(), p.take(), p.take()), nil
		}
	case pygram.LPAR:
		return p.enclosed(pygram.RPAR, func() (pytree.Node, error) {
			if p.isKw("yield") {
				return p.yieldExpr()
			}
			return p.testlistComp(pygram.TestlistGexp, pygram.RPAR)
		})
	case pygram.LSQB:
		return p.enclosed(pygram.RSQB, func() (pytree.Node, error) {
			return p.testlistComp(pygram.Listmaker, pygram.RSQB)
		})
	case pygram.LBRACE:
		return p.enclosed(pygram.RBRACE, p.dictsetmaker)
	}
	return nil, p.unexpected("expected an expression")
}

func (p *parser) enclosed(closer pygram.Type, inner func() (pytree.Node, error)) (pytree.Node, error) {
	children := nodes{p.take()}
	if !p.is(closer) {
		n, err := inner()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	end, err := p.expect(closer)
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.Atom, append(children, end)...), nil
}

// testlistComp parses the inside of () and [] displays.
func (p *parser) testlistComp(sym, closer pygram.Type) (pytree.Node, error) {
	first, err := p.compElement()
	if err != nil {
		return nil, err
	}
	if p.atCompFor() {
		cf, err := p.compFor()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(sym, first, cf), nil
	}
	children := nodes{first}
	for p.is(pygram.COMMA) {
		children = append(children, p.take())
		if p.is(closer) {
			break
		}
		next, err := p.compElement()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return build(sym, children), nil
}

func (p *parser) compElement() (pytree.Node, error) {
	if p.is(pygram.STAR) {
		return p.starExpr()
	}
	first, err := p.namedexprTest()
	if err != nil {
		return nil, err
	}
	if !p.isKw("as") {
		return first, nil
	}
	as := p.take()
	target, err := p.test()
	if err != nil {
		return nil, err
	}
	return pytree.NewBranch(pygram.AsexprTest, first, as, target), nil
}

func (p *parser) atCompFor() bool {
	if p.isKw("for") {
		return true
	}
	n := p.peekAt(1)
	return p.isKw("async") && n.typ == pygram.NAME && n.value == "for"
}

func (p *parser) compFor() (pytree.Node, error) {
	var children nodes
	if p.isKw("async") {
		children = append(children, p.take())
	}
	children = append(children, p.take())
	target, err := p.exprlist()
	if err != nil {
		return nil, err
	}
	in, err := p.expectKw("in")
	if err != nil {
		return nil, err
	}
	iter, err := p.orTest()
	if err != nil {
		return nil, err
	}
	children = append(children, target, in, iter)
	if rest, err := p.compIter(); err != nil {
		return nil, err
	} else if rest != nil {
		children = append(children, rest)
	}
	return pytree.NewBranch(pygram.CompFor, children...), nil
}

func (p *parser) compIter() (pytree.Node, error) {
	switch {
	case p.atCompFor():
		return p.compFor()
	case p.isKw("if"):
		kw := p.take()
		var cond pytree.Node
		var err error
		if p.isKw("lambda") {
			cond, err = p.lambdef()
		} else {
			cond, err = p.orTest()
		}
		if err != nil {
			return nil, err
		}
		children := nodes{kw, cond}
		if rest, err := p.compIter(); err != nil {
			return nil, err
		} else if rest != nil {
			children = append(children, rest)
		}
		return pytree.NewBranch(pygram.CompIf, children...), nil
	}
	return nil, nil
}

func (p *parser) dictsetmaker() (pytree.Node, error) {
	var children nodes
	item := func() error {
		switch {
		case p.is(pygram.DOUBLESTAR):
			op := p.take()
			e, err := p.expr()
			if err != nil {
				return err
			}
			children = append(children, op, e)
		case p.is(pygram.STAR):
			e, err := p.starExpr()
			if err != nil {
				return err
			}
			children = append(children, e)
		default:
			key, err := p.namedexprTest()
			if err != nil {
				return err
			}
			children = append(children, key)
			if p.is(pygram.COLON) {
				colon := p.take()
				value, err := p.test()
				if err != nil {
					return err
				}
				children = append(children, colon, value)
			}
		}
		return nil
	}

	if err := item(); err != nil {
		return nil, err
	}
	if p.atCompFor() {
		cf, err := p.compFor()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.Dictsetmaker, append(children, cf)...), nil
	}
	for p.is(pygram.COMMA) {
		children = append(children, p.take())
		if p.is(pygram.RBRACE) {
			break
		}
		if err := item(); err != nil {
			return nil, err
		}
	}
	return build(pygram.Dictsetmaker, children), nil
}

func (p *parser) subscriptlist() (pytree.Node, error) {
	var children nodes
	for {
		s, err := p.subscript()
		if err != nil {
			return nil, err
		}
		children = append(children, s)
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
		if p.is(pygram.RSQB) {
			break
		}
	}
	return build(pygram.Subscriptlist, children), nil
}

func (p *parser) subscript() (pytree.Node, error) {
	if p.is(pygram.STAR) {
		return p.starExpr()
	}
	var children nodes
	if !p.is(pygram.COLON) {
		lower, err := p.namedexprTest()
		if err != nil {
			return nil, err
		}
		if !p.is(pygram.COLON) {
			return lower, nil
		}
		children = append(children, lower)
	}
	children = append(children, p.take())
	if !p.is(pygram.COLON, pygram.COMMA, pygram.RSQB) {
		upper, err := p.test()
		if err != nil {
			return nil, err
		}
		children = append(children, upper)
	}
	if p.is(pygram.COLON) {
		op := nodes{p.take()}
		if !p.is(pygram.COMMA, pygram.RSQB) {
			step, err := p.test()
			if err != nil {
				return nil, err
			}
			op = append(op, step)
		}
		children = append(children, build(pygram.Sliceop, op))
	}
	return build(pygram.Subscript, children), nil
}

func (p *parser) arglist() (pytree.Node, error) {
	var children nodes
	for {
		arg, err := p.argument()
		if err != nil {
			return nil, err
		}
		children = append(children, arg)
		if !p.is(pygram.COMMA) {
			break
		}
		children = append(children, p.take())
		if p.is(pygram.RPAR) {
			break
		}
	}
	return build(pygram.Arglist, children), nil
}

func (p *parser) argument() (pytree.Node, error) {
	if p.is(pygram.STAR, pygram.DOUBLESTAR) {
		op := p.take()
		value, err := p.test()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.Argument, op, value), nil
	}
	first, err := p.test()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atCompFor():
		cf, err := p.compFor()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.Argument, first, cf), nil
	case p.is(pygram.EQUAL, pygram.COLONEQUAL):
		op := p.take()
		value, err := p.test()
		if err != nil {
			return nil, err
		}
		return pytree.NewBranch(pygram.Argument, first, op, value), nil
	}
	return first, nil
}

func (p *parser) exprlist() (pytree.Node, error) {
	return p.list(pygram.Exprlist, func() (pytree.Node, error) {
		if p.is(pygram.STAR) {
			return p.starExpr()
		}
		return p.expr()
	})
}

func (p *parser) testlist() (pytree.Node, error) {
	return p.list(pygram.Testlist, p.test)
}

func (p *parser) testlistStarExpr() (pytree.Node, error) {
	return p.list(pygram.TestlistStarExpr, p.testOrStar)
}

// list parses item (',' item)* [','].
func (p *parser) list(sym pygram.Type, item func() (pytree.Node, error)) (pytree.Node, error) {
	first, err := item()
	if err != nil {
		return nil, err
	}
	children := nodes{first}
	for p.is(pygram.COMMA) {
		children = append(children, p.take())
		if !p.canStartExpr() {
			break
		}
		next, err := item()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return build(sym, children), nil
}
