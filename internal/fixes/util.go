package fixes

import (
	"fmt"
	"strings"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

func newName(value, prefix string) *pytree.Leaf {
	return pytree.NewLeafPrefix(pygram.NAME, value, prefix)
}

func newComma() *pytree.Leaf { return pytree.NewLeaf(pygram.COMMA, ",") }

// newDotted builds a.b.c as a power node of attribute trailers, or a plain
// name when there is no dot.
func newDotted(name, prefix string) pytree.Node {
	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		return newName(name, prefix)
	}
	children := []pytree.Node{newName(parts[0], prefix)}
	for _, part := range parts[1:] {
		children = append(children, pytree.NewBranch(pygram.Trailer,
			pytree.NewLeaf(pygram.DOT, "."), newName(part, "")))
	}
	return pytree.NewBranch(pygram.Power, children...)
}

// newDottedName builds a.b.c as used in import statements.
func newDottedName(name, prefix string) pytree.Node {
	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		return newName(name, prefix)
	}
	children := []pytree.Node{newName(parts[0], prefix)}
	for _, part := range parts[1:] {
		children = append(children, pytree.NewLeaf(pygram.DOT, "."), newName(part, ""))
	}
	return pytree.NewBranch(pygram.DottedName, children...)
}

type importedName struct {
	Name  string
	Alias string // empty when not renamed
}

// newImportFrom builds "from module import a, b as c".
func newImportFrom(module string, names []importedName) pytree.Node {
	var items []pytree.Node
	for i, n := range names {
		if i > 0 {
			items = append(items, newComma())
		}
		if n.Alias == "" || n.Alias == n.Name {
			items = append(items, newName(n.Name, " "))
			continue
		}
		items = append(items, pytree.NewBranch(pygram.ImportAsName,
			newName(n.Name, " "), newName("as", " "), newName(n.Alias, " ")))
	}
	var list pytree.Node = items[0]
	if len(items) > 1 {
		list = pytree.NewBranch(pygram.ImportAsNames, items...)
	}
	return pytree.NewBranch(pygram.ImportFrom,
		newName("from", ""), newDottedName(module, " "), newName("import", " "), list)
}

// newImportName builds "import module [as alias]".
func newImportName(module, alias string) pytree.Node {
	var name pytree.Node = newDottedName(module, " ")
	if alias != "" && alias != module {
		name = pytree.NewBranch(pygram.DottedAsName, name, newName("as", " "), newName(alias, " "))
	}
	return pytree.NewBranch(pygram.ImportName, newName("import", ""), name)
}

func newSimpleStmt(stmt pytree.Node, prefix, newline string) *pytree.Branch {
	stmt.SetPrefix(prefix)
	return pytree.NewBranch(pygram.SimpleStmt, stmt, pytree.NewLeaf(pygram.NEWLINE, newline))
}

func isTrailer(n pytree.Node, open pygram.Type) bool {
	if n == nil || n.Type() != pygram.Trailer {
		return false
	}
	c := n.Children()
	return len(c) > 0 && c[0].Type() == open
}

func isLeaf(n pytree.Node, t pygram.Type) bool {
	return n != nil && n.Type() == t
}

// indentation returns the text after the last newline of prefix.
func indentation(prefix string) string {
	return prefix[strings.LastIndexByte(prefix, '\n')+1:]
}

// leadingLines returns prefix up to and including its last newline: the
// blank and comment lines above a statement.
func leadingLines(prefix string) string {
	return prefix[:strings.LastIndexByte(prefix, '\n')+1]
}

func isBlockContainer(t pygram.Type) bool {
	return t == pygram.FileInput || t == pygram.Suite
}

// statementOf climbs from n to the statement that holds it: a small
// statement inside a simple_stmt, or a compound statement in a block.
func statementOf(n pytree.Node) pytree.Node {
	for cur := n; cur != nil; {
		p := cur.Parent()
		if p == nil {
			return nil
		}
		if p.Type() == pygram.SimpleStmt || isBlockContainer(p.Type()) {
			return cur
		}
		cur = p
	}
	return nil
}

// removeStatement deletes stmt, a small statement or a compound statement,
// keeping the tree a valid module. Separating semicolons go with it, a line
// left empty is removed whole, the comments above a removed line stay, and
// a block left without statements gets a pass.
func removeStatement(stmt pytree.Node) error {
	parent := stmt.Parent()
	if parent == nil {
		return pytree.ErrDetached
	}
	if parent.Type() == pygram.SimpleStmt {
		if smallStatements(parent) > 1 {
			removeSmallStatement(stmt)
			return nil
		}
		return removeLine(parent, stmt)
	}
	for p := stmt.Parent(); p != nil && (p.Type() == pygram.Decorated || p.Type() == pygram.AsyncStmt || p.Type() == pygram.AsyncFuncdef); p = p.Parent() {
		stmt = p
	}
	return removeLine(stmt, stmt)
}

func smallStatements(simple *pytree.Branch) int {
	n := 0
	for _, c := range simple.Children() {
		if c.Type() != pygram.SEMI && c.Type() != pygram.NEWLINE {
			n++
		}
	}
	return n
}

func removeSmallStatement(stmt pytree.Node) {
	if prev := pytree.PrevSibling(stmt); isLeaf(prev, pygram.SEMI) {
		prev.Remove()
		stmt.Remove()
		return
	}
	// first on the line: the next statement moves to its place
	prefix := stmt.Prefix()
	next := pytree.NextSibling(stmt)
	stmt.Remove()
	if isLeaf(next, pygram.SEMI) {
		after := pytree.NextSibling(next)
		next.Remove()
		if after != nil && after.Type() != pygram.NEWLINE {
			after.SetPrefix(prefix)
		}
	}
}

// removeLine deletes the line-level statement line by removing target, its
// only statement, and collapsing what is left of the line.
func removeLine(line, target pytree.Node) error {
	container := line.Parent()
	if container == nil {
		return pytree.ErrDetached
	}
	prefix := line.Prefix()
	newline := "\n"
	if last := pytree.LastLeaf(line); last != nil && last.Type() == pygram.NEWLINE {
		newline = last.Value
	}

	if !isBlockContainer(container.Type()) {
		// one line body such as "if x: stmt"
		return pytree.Replace(line, newSimpleStmt(newName("pass", ""), prefix, newline))
	}

	next := pytree.NextLeaf(line)
	pytree.RemoveCollapsing(target)
	if line.Parent() != nil {
		// line held more than target and its terminators
		line.Remove()
	}
	if container.Type() == pygram.Suite && !hasStatements(container) {
		pass := newSimpleStmt(newName("pass", ""), prefix, newline)
		container.InsertChild(indentIndex(container)+1, pass)
		return nil
	}
	if kept := leadingLines(prefix); kept != "" && next != nil {
		pytree.InsertPrefix(next, kept)
	}
	return nil
}

func hasStatements(suite *pytree.Branch) bool {
	for _, c := range suite.Children() {
		switch c.Type() {
		case pygram.NEWLINE, pygram.INDENT, pygram.DEDENT:
		default:
			return true
		}
	}
	return false
}

func indentIndex(suite *pytree.Branch) int {
	for i, c := range suite.Children() {
		if c.Type() == pygram.INDENT {
			return i
		}
	}
	return 0
}

// removeListItem deletes an element of a comma separated list together
// with one adjacent comma.
func removeListItem(item pytree.Node) {
	if prev := pytree.PrevSibling(item); isLeaf(prev, pygram.COMMA) {
		prev.Remove()
		item.Remove()
		return
	}
	prefix := item.Prefix()
	next := pytree.NextSibling(item)
	item.Remove()
	if isLeaf(next, pygram.COMMA) {
		after := pytree.NextSibling(next)
		next.Remove()
		if after != nil {
			after.SetPrefix(prefix)
		}
	}
}

// removeExpression deletes an expression that has no runtime meaning. It
// returns fixer.ErrDeclined when the surroundings give no safe way to do so.
func removeExpression(node pytree.Node) error {
	parent := node.Parent()
	if parent == nil {
		return pytree.ErrDetached
	}
	switch parent.Type() {
	case pygram.Arglist, pygram.Exprlist, pygram.Testlist, pygram.TestlistStarExpr:
		removeListItem(node)
		return nil
	case pygram.ExprStmt:
		return removeStatement(parent)
	case pygram.Classdef:
		// sole base class
		node.Remove()
		return nil
	case pygram.Trailer:
		if !isTrailer(parent, pygram.LPAR) {
			break
		}
		// sole call argument
		node.Remove()
		return nil
	case pygram.SimpleStmt, pygram.FileInput, pygram.Suite:
		return removeStatement(statementOf(node))
	}
	return fmt.Errorf("%w: expression inside %s", fixer.ErrDeclined, parent.Type())
}

// hoistable reports whether n can take the place of a call without
// parentheses.
func hoistable(n pytree.Node) bool {
	switch n.Type() {
	case pygram.Atom:
		return true
	case pygram.Power:
		for _, c := range n.Children() {
			if c.Type() == pygram.DOUBLESTAR || (c.Type() == pygram.NAME && c.(*pytree.Leaf).Value == "await") {
				return false
			}
		}
		return true
	}
	_, ok := n.(*pytree.Leaf)
	return ok
}

func parenthesize(n pytree.Node) pytree.Node {
	prefix := n.Prefix()
	n.SetPrefix("")
	return pytree.NewBranch(pygram.Atom,
		pytree.NewLeafPrefix(pygram.LPAR, "(", prefix), n, pytree.NewLeaf(pygram.RPAR, ")"))
}
