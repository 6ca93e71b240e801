// Package internal holds the rewrite engine of hintstrip.
//
// An Engine applies an ordered set of fixers to a concrete syntax tree.
// Fixers declare patterns (see package pattern) and transform the nodes
// they match. "pre" fixers see the tree in pre-order and "post" fixers in
// post-order; within each group they are tried in ascending run order, and
// only the first fixer that matches a node transforms it.
//
// Fixers that need to see a whole file before emitting an edit keep their
// state in the per-file fixer.Session, which also holds the patterns they
// register during the traversal. Such a pattern is tried from the next
// visited node on, never on nodes already visited.
//
// Matches can be excluded with "# nostrip" comments, see Suppressions.
//
// The engine reads files but never writes them. Package refactor decides
// what happens to the results and uses Cache to skip files a fixer set
// already left unchanged.
//
//	fixers, _ := internal.DefaultFixers()
//	engine, _ := internal.NewEngine(fixers, internal.WithLogger(logger))
//	out, changed, err := engine.RefactorString(src, "mod.py")
package internal
