package fixes

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pytree"
)

const RemoveTypingName = "remove-typing"

// RemoveTyping removes imports of the typing module and rewrites the names
// they bring in: markers without runtime meaning are deleted and generic
// aliases become their runtime classes. Names that live in another module
// are imported from there by statements that replace the first typing
// import once the whole file has been visited. Typing names the file still
// reads after the rewrite keep a narrowed typing import.
type RemoveTyping struct {
	fixer.Base
}

type typingState struct {
	// typing import statements in visit order
	sites []pytree.Node
	// local name bound by a from import -> typing name
	aliases map[string]string
	// module -> names to import from it
	from map[string]map[importedName]struct{}
	// modules to import whole, for "import typing" usages
	modules map[string]struct{}
	// local name -> typing name, for names with no known rewrite
	unknown map[string]string
	// local names of the typing module itself
	typingLocals map[string]struct{}
}

func NewRemoveTyping() (fixer.Fixer, error) {
	b, err := fixer.NewBase(RemoveTypingName, fixer.Post, 5,
		"import_name< 'import' modulename='typing' >",
		"import_name< 'import' dotted_as_name< 'typing' 'as' modulename=any > >",
		"import_from< 'from' 'typing' 'import' ['('] imports=any [')'] >",
	)
	if err != nil {
		return nil, err
	}
	return &RemoveTyping{Base: b}, nil
}

func (f *RemoveTyping) state(s *fixer.Session) *typingState {
	return fixer.State[typingState](s, f)
}

func (f *RemoveTyping) StartTree(s *fixer.Session, _ pytree.Node) error {
	*f.state(s) = typingState{
		aliases:      make(map[string]string),
		from:         make(map[string]map[importedName]struct{}),
		modules:      make(map[string]struct{}),
		unknown:      make(map[string]string),
		typingLocals: make(map[string]struct{}),
	}
	return nil
}

// Accept leaves annotations to remove-type-hints and keeps bare names that
// are not references, such as attribute names and import lists.
func (f *RemoveTyping) Accept(_ *fixer.Session, node pytree.Node, _ pattern.Results) bool {
	if inAnnotation(node) {
		return false
	}
	if leaf, ok := node.(*pytree.Leaf); ok {
		return isBareReference(leaf)
	}
	return true
}

func (f *RemoveTyping) Transform(s *fixer.Session, node pytree.Node, r pattern.Results) error {
	st := f.state(s)
	switch {
	case r.Has("imports"):
		st.sites = append(st.sites, node)
		return f.trackFromImport(s, r.Node("imports"))

	case r.Has("modulename"):
		st.sites = append(st.sites, node)
		local := r.Leaf("modulename").Value
		st.typingLocals[local] = struct{}{}
		return f.trackModuleImport(s, local)

	case r.Has("name"):
		name, ok := st.aliases[r.Leaf("name").Value]
		if !ok {
			return fixer.ErrDeclined
		}
		return f.rewriteUsage(s, node, name, 1, false)

	case r.Has("attr"):
		return f.rewriteUsage(s, node, r.Leaf("attr").Value, 2, true)
	}
	return fixer.ErrDeclined
}

func (f *RemoveTyping) trackFromImport(s *fixer.Session, imports pytree.Node) error {
	track := func(n pytree.Node) error {
		switch n.Type() {
		case pygram.NAME:
			return f.trackName(s, n.(*pytree.Leaf).Value, "")
		case pygram.ImportAsName:
			c := n.Children()
			return f.trackName(s, c[0].(*pytree.Leaf).Value, c[2].(*pytree.Leaf).Value)
		}
		return nil
	}

	switch imports.Type() {
	case pygram.STAR:
		for _, name := range slices.Sorted(maps.Keys(typingTypes)) {
			if err := f.trackName(s, name, ""); err != nil {
				return err
			}
		}
	case pygram.ImportAsNames:
		for _, c := range imports.Children() {
			if err := track(c); err != nil {
				return err
			}
		}
	default:
		return track(imports)
	}
	return nil
}

// trackName records a name bound by "from typing import name [as alias]"
// and registers the patterns of its usages.
func (f *RemoveTyping) trackName(s *fixer.Session, name, alias string) error {
	local := name
	if alias != "" {
		local = alias
	}
	st := f.state(s)
	t, ok := typingTypes[name]
	if !ok {
		s.Logger.Debug("unknown typing name", zap.String("file", s.Filename), zap.String("name", name))
		st.unknown[local] = name
		return nil
	}
	st.aliases[local] = name

	if t.action == actReplace {
		if module, target := t.module(); module != "" {
			imported := importedName{Name: target}
			if local != target {
				imported.Alias = local
			}
			if st.from[module] == nil {
				st.from[module] = make(map[importedName]struct{})
			}
			st.from[module][imported] = struct{}{}
		}
	}

	patterns := []string{fmt.Sprintf("power< name='%s' any* >", local)}
	switch {
	case name == "overload":
		patterns = []string{
			fmt.Sprintf("decorated< decorators< any* decorator< '@' name='%s' any* > any* > any* >", local),
			fmt.Sprintf("decorated< decorator< '@' name='%s' any* > any* >", local),
		}
	case t.action == actReplace && !isDotted(t.replacement):
		patterns = append(patterns, fmt.Sprintf("name='%s'", local))
	}
	for i, p := range patterns {
		if err := s.RegisterOnce(f, fmt.Sprintf("from:%s:%d", local, i), p); err != nil {
			return err
		}
	}
	return nil
}

// trackModuleImport registers the usages of module.Name for every known
// name, module being the local name of the typing module.
func (f *RemoveTyping) trackModuleImport(s *fixer.Session, module string) error {
	for _, name := range slices.Sorted(maps.Keys(typingTypes)) {
		patterns := []string{fmt.Sprintf("power< '%s' trailer< '.' attr='%s' > any* >", module, name)}
		if name == "overload" {
			patterns = []string{
				fmt.Sprintf("decorated< decorators< any* decorator< '@' dotted_name< '%s' '.' attr='%s' > any* > any* > any* >", module, name),
				fmt.Sprintf("decorated< decorator< '@' dotted_name< '%s' '.' attr='%s' > any* > any* >", module, name),
			}
		}
		for i, p := range patterns {
			if err := s.RegisterOnce(f, fmt.Sprintf("module:%s:%s:%d", module, name, i), p); err != nil {
				return err
			}
		}
	}
	return nil
}

// rewriteUsage edits a usage of the typing name. head is the number of
// leading children of a power node naming it: 1 for List, 2 for typing.List.
func (f *RemoveTyping) rewriteUsage(s *fixer.Session, node pytree.Node, name string, head int, moduleForm bool) error {
	t, ok := typingTypes[name]
	if !ok {
		return fixer.ErrDeclined
	}
	switch t.action {
	case actRemoveExpr:
		return removeExpression(node)

	case actRemoveLine:
		stmt := statementOf(node)
		if stmt == nil {
			return fixer.ErrDeclined
		}
		return removeStatement(stmt)

	case actCast:
		return unwrapCast(node, head)
	}

	module, _ := t.module()
	if _, ok := node.(*pytree.Leaf); ok {
		// bare builtin reference
		return pytree.Replace(node, newName(t.replacement, ""))
	}
	switch {
	case module == "":
		return rewriteHead(node, head, newName(t.replacement, ""))
	case moduleForm:
		f.state(s).modules[module] = struct{}{}
		return rewriteHead(node, head, newDotted(t.replacement, ""))
	default:
		// the name stays bound by the replacement import
		return rewriteHead(node, head, nil)
	}
}

// rewriteHead replaces the first head children of a power node with
// replacement and drops a subscript right after them. A nil replacement
// keeps the head and only drops the subscript.
func rewriteHead(node pytree.Node, head int, replacement pytree.Node) error {
	prefix := node.Prefix()
	children := slices.Clone(node.Children())
	head = min(head, len(children))
	rest := children[head:]
	dropped := false
	if len(rest) > 0 && isTrailer(rest[0], pygram.LSQB) {
		rest = rest[1:]
		dropped = true
	}

	var kids []pytree.Node
	switch {
	case replacement == nil:
		if !dropped {
			return fixer.ErrDeclined
		}
		kids = slices.Clone(children[:head])
	case replacement.Type() == pygram.Power:
		kids = slices.Clone(replacement.Children())
	default:
		kids = []pytree.Node{replacement}
	}
	kids = append(kids, rest...)

	repl := kids[0]
	if len(kids) > 1 {
		repl = pytree.NewBranch(pygram.Power, kids...)
	}
	if err := pytree.ReplaceExact(node, repl); err != nil {
		return err
	}
	repl.SetPrefix(prefix)
	return nil
}

// unwrapCast turns cast(T, value) into value. Calls with another argument
// shape are declined.
func unwrapCast(node pytree.Node, head int) error {
	children := slices.Clone(node.Children())
	if len(children) <= head {
		return fixer.ErrDeclined
	}
	call := children[head]
	if !isTrailer(call, pygram.LPAR) || len(call.Children()) != 3 {
		return fixer.ErrDeclined
	}
	args := call.Children()[1]
	if args.Type() != pygram.Arglist {
		return fixer.ErrDeclined
	}
	a := args.Children()
	if len(a) < 3 || len(a) > 4 || a[1].Type() != pygram.COMMA || (len(a) == 4 && a[3].Type() != pygram.COMMA) {
		return fixer.ErrDeclined
	}
	if !positional(a[0]) || !positional(a[2]) {
		return fixer.ErrDeclined
	}

	prefix := node.Prefix()
	value := a[2]
	value.Remove()
	rest := children[head+1:]

	var repl pytree.Node
	switch {
	case len(rest) == 0:
		repl = value
		if !hoistable(value) {
			repl = parenthesize(value)
		}
	case value.Type() == pygram.Power && hoistable(value):
		kids := append(slices.Clone(value.Children()), rest...)
		repl = pytree.NewBranch(pygram.Power, kids...)
	default:
		if !hoistable(value) || value.Type() == pygram.Power {
			value = parenthesize(value)
		}
		repl = pytree.NewBranch(pygram.Power, append([]pytree.Node{value}, rest...)...)
	}
	if err := pytree.ReplaceExact(node, repl); err != nil {
		return err
	}
	repl.SetPrefix(prefix)
	return nil
}

func positional(n pytree.Node) bool {
	return n.Type() != pygram.Argument && n.Type() != pygram.StarExpr
}

func isDotted(s string) bool {
	return strings.Contains(s, ".")
}

// FinishTree replaces the first typing import with one statement per
// module the rewritten names come from, plus the typing imports still read,
// and removes the other typing imports.
func (f *RemoveTyping) FinishTree(s *fixer.Session, tree pytree.Node) error {
	st := f.state(s)
	var sites []pytree.Node
	for _, site := range st.sites {
		if pytree.Root(site) == tree {
			sites = append(sites, site)
		}
	}
	if len(sites) == 0 {
		return nil
	}

	modules := slices.Sorted(maps.Keys(st.from))
	for m := range st.modules {
		if _, ok := st.from[m]; !ok {
			modules = append(modules, m)
		}
	}
	slices.Sort(modules)

	var stmts []pytree.Node
	for _, m := range modules {
		if _, ok := st.modules[m]; ok {
			stmts = append(stmts, newImportName(m, ""))
		}
		if names := st.from[m]; len(names) > 0 {
			stmts = append(stmts, newImportFrom(m, sortedNames(names)))
		}
	}
	stmts = append(stmts, st.residual(tree)...)

	for _, site := range sites[1:] {
		if err := removeStatement(site); err != nil {
			return err
		}
	}
	if len(stmts) == 0 {
		return removeStatement(sites[0])
	}
	s.Logger.Debug("replacing typing import",
		zap.String("file", s.Filename), zap.Strings("modules", modules))
	return replaceStatement(sites[0], stmts)
}

// residual returns the typing imports that names still read in tree need:
// declined usages, names with no known rewrite and annotations left by a
// disabled remove-type-hints.
func (st *typingState) residual(tree pytree.Node) []pytree.Node {
	used := make(map[string]bool)
	for leaf := range pytree.Leaves(tree) {
		if isReference(leaf) {
			used[leaf.Value] = true
		}
	}

	names := make(map[importedName]struct{})
	keep := func(local, name string) {
		if !used[local] {
			return
		}
		n := importedName{Name: name}
		if local != name {
			n.Alias = local
		}
		names[n] = struct{}{}
	}
	for local, name := range st.aliases {
		if t := typingTypes[name]; t.action == actReplace && isDotted(t.replacement) {
			// bound by the replacement import
			continue
		}
		keep(local, name)
	}
	for local, name := range st.unknown {
		keep(local, name)
	}

	var stmts []pytree.Node
	for _, local := range slices.Sorted(maps.Keys(st.typingLocals)) {
		if used[local] {
			stmts = append(stmts, newImportName("typing", local))
		}
	}
	if len(names) > 0 {
		stmts = append(stmts, newImportFrom("typing", sortedNames(names)))
	}
	return stmts
}

func sortedNames(names map[importedName]struct{}) []importedName {
	return slices.SortedFunc(maps.Keys(names), func(a, b importedName) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Alias, b.Alias))
	})
}

// replaceStatement puts stmts where the small statement old was: one per
// line when old had its own line, separated by semicolons otherwise.
func replaceStatement(old pytree.Node, stmts []pytree.Node) error {
	line := old.Parent()
	if line == nil {
		return pytree.ErrDetached
	}
	if line.Type() != pygram.SimpleStmt || smallStatements(line) > 1 || line.Parent() == nil || !isBlockContainer(line.Parent().Type()) {
		var seq []pytree.Node
		for i, stmt := range stmts {
			if i > 0 {
				seq = append(seq, pytree.NewLeaf(pygram.SEMI, ";"))
				stmt.SetPrefix(" ")
			}
			seq = append(seq, stmt)
		}
		return pytree.Replace(old, seq...)
	}

	prefix := line.Prefix()
	newline := "\n"
	if last := pytree.LastLeaf(line); last != nil && last.Type() == pygram.NEWLINE {
		newline = last.Value
	}
	lines := make([]pytree.Node, len(stmts))
	for i, stmt := range stmts {
		p, nl := indentation(prefix), newline
		if i == 0 {
			p = prefix
		}
		if nl == "" && i < len(stmts)-1 {
			nl = "\n"
		}
		lines[i] = newSimpleStmt(stmt, p, nl)
	}
	return pytree.ReplaceExact(line, lines...)
}

// inAnnotation reports whether n sits in a parameter, return or variable
// annotation.
func inAnnotation(n pytree.Node) bool {
	for cur := n; ; {
		p := cur.Parent()
		if p == nil {
			return false
		}
		switch p.Type() {
		case pygram.Tname:
			return p.Children()[0] != cur
		case pygram.Annassign:
			return len(p.Children()) > 1 && p.Children()[1] == cur
		case pygram.Funcdef:
			return isLeaf(pytree.PrevSibling(cur), pygram.RARROW)
		case pygram.SimpleStmt, pygram.Suite, pygram.FileInput, pygram.Classdef, pygram.Lambdef:
			return false
		}
		cur = p
	}
}

// isBareReference reports whether a lone name leaf reads a variable, as
// opposed to naming an attribute, a parameter, an import or a target.
func isBareReference(leaf *pytree.Leaf) bool {
	p := leaf.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case pygram.Power, pygram.DottedName, pygram.DottedAsName, pygram.DottedAsNames,
		pygram.ImportFrom, pygram.ImportName, pygram.ImportAsName, pygram.ImportAsNames,
		pygram.Funcdef, pygram.Classdef, pygram.GlobalStmt, pygram.Parameters,
		pygram.Typedargslist, pygram.Varargslist, pygram.Tname, pygram.Lambdef,
		pygram.Decorator, pygram.Decorators, pygram.ForStmt, pygram.CompFor:
		return false
	case pygram.Trailer:
		return !isTrailer(p, pygram.DOT)
	case pygram.Argument, pygram.ExprStmt:
		return !isLeaf(pytree.NextSibling(leaf), pygram.EQUAL)
	}
	return true
}

// isReference reports whether leaf reads a name, annotations and
// decorators included. Import statements do not count.
func isReference(leaf *pytree.Leaf) bool {
	if leaf.Type() != pygram.NAME || isLeaf(pytree.PrevSibling(leaf), pygram.DOT) {
		return false
	}
	p := leaf.Parent()
	if p == nil {
		return false
	}
	for a := p; a != nil; a = a.Parent() {
		if a.Type() == pygram.ImportName || a.Type() == pygram.ImportFrom {
			return false
		}
	}
	prev := pytree.PrevSibling(leaf)
	switch p.Type() {
	case pygram.Power, pygram.DottedName:
		return p.Children()[0] == pytree.Node(leaf)
	case pygram.Decorator:
		return true
	case pygram.Tname:
		return p.Children()[0] != pytree.Node(leaf)
	case pygram.Funcdef:
		return isLeaf(prev, pygram.RARROW)
	case pygram.Classdef:
		return isLeaf(prev, pygram.LPAR)
	case pygram.Typedargslist, pygram.Varargslist:
		return isLeaf(prev, pygram.EQUAL)
	}
	return isBareReference(leaf)
}
