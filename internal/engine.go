package internal

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pygram"
	"github.com/gnolang/hintstrip/internal/pyparse"
	"github.com/gnolang/hintstrip/internal/pytree"
	tt "github.com/gnolang/hintstrip/internal/types"
)

// Engine applies an ordered set of fixers to syntax trees. It is immutable
// once built and may rewrite many files concurrently, each with its own
// session.
type Engine struct {
	pre    []fixer.Fixer
	post   []fixer.Fixer
	logger *zap.Logger
}

type Option func(*Engine)

// WithLogger sets the logger used for engine events and handed to sessions.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine partitions fixers by traversal order and sorts each partition
// by run order. Fixers sharing a run order keep the order they were given
// in. Names must be unique: sessions key state and counts by them.
func NewEngine(fixers []fixer.Fixer, opts ...Option) (*Engine, error) {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	seen := make(map[string]struct{}, len(fixers))
	for _, f := range fixers {
		if _, ok := seen[f.Name()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFixer, f.Name())
		}
		seen[f.Name()] = struct{}{}
		switch f.Order() {
		case fixer.Pre:
			e.pre = append(e.pre, f)
		case fixer.Post:
			e.post = append(e.post, f)
		default:
			return nil, fmt.Errorf("%w: %q in %s", fixer.ErrIllegalOrder, f.Order(), f.Name())
		}
	}
	byRunOrder := func(a, b fixer.Fixer) int { return cmp.Compare(a.RunOrder(), b.RunOrder()) }
	slices.SortStableFunc(e.pre, byRunOrder)
	slices.SortStableFunc(e.post, byRunOrder)

	return e, nil
}

// Fixers returns the pre order fixers followed by the post order ones, each
// in run order.
func (e *Engine) Fixers() []fixer.Fixer {
	return slices.Concat(e.pre, e.post)
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// NewSession returns a session for one file using the engine's logger.
func (e *Engine) NewSession(filename string) *fixer.Session {
	return fixer.NewSession(filename, e.logger)
}

// Rewrite runs every fixer over tree, mutating it in place, and reports
// whether its rendering changed. The session is reset first. Matches
// covered by a nostrip comment are left to the next fixer. An error from
// a fixer aborts the pass and leaves the tree in an unspecified state.
func (e *Engine) Rewrite(tree pytree.Node, s *fixer.Session) (bool, error) {
	before := pytree.Render(tree)
	s.Reset()

	sup := ParseSuppressions(tree)
	skip := func(f fixer.Fixer) bool { return sup.FileSuppressed(f.Name()) }
	pre := slices.DeleteFunc(slices.Clone(e.pre), skip)
	post := slices.DeleteFunc(slices.Clone(e.post), skip)

	all := slices.Concat(pre, post)
	for _, f := range all {
		if err := f.StartTree(s, tree); err != nil {
			return false, fmt.Errorf("%s: start tree: %w", f.Name(), err)
		}
	}
	if len(pre) > 0 {
		if err := e.traverse(pytree.PreOrder(tree), tree, pre, sup, s); err != nil {
			return false, err
		}
	}
	if len(post) > 0 {
		if err := e.traverse(pytree.PostOrder(tree), tree, post, sup, s); err != nil {
			return false, err
		}
	}
	for _, f := range all {
		if err := f.FinishTree(s, tree); err != nil {
			return false, fmt.Errorf("%s: finish tree: %w", f.Name(), err)
		}
	}

	return pytree.Render(tree) != before, nil
}

func (e *Engine) traverse(
	nodes iter.Seq[pytree.Node],
	root pytree.Node,
	fixers []fixer.Fixer,
	sup *Suppressions,
	s *fixer.Session,
) error {
	for node := range nodes {
		// removed or replaced by an earlier transform
		if pytree.Root(node) != root {
			continue
		}
		for _, f := range fixers {
			results, ok := match(f, node, s)
			if !ok {
				continue
			}
			if sup.Suppressed(f.Name(), node) {
				s.Logger.Debug("fixer suppressed",
					zap.String("fixer", f.Name()),
					zap.Int("line", firstLine(node)),
					zap.String("file", s.Filename))
				continue
			}
			s.Logger.Debug("applying fixer",
				zap.String("fixer", f.Name()),
				zap.String("node", node.Type().String()),
				zap.String("file", s.Filename))
			err := f.Transform(s, node, results)
			if errors.Is(err, fixer.ErrDeclined) {
				s.Logger.Debug("fixer declined",
					zap.String("fixer", f.Name()),
					zap.Int("line", firstLine(node)),
					zap.String("file", s.Filename),
					zap.Error(err))
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name(), err)
			}
			s.MarkApplied(f.Name())
			break
		}
	}
	return nil
}

func firstLine(n pytree.Node) int {
	if leaf := pytree.FirstLeaf(n); leaf != nil {
		return leaf.Line
	}
	return 0
}

// match tries the static patterns of f, then the ones registered in the
// session so far.
func match(f fixer.Fixer, node pytree.Node, s *fixer.Session) (pattern.Results, bool) {
	filter, _ := f.(fixer.Filter)
	try := func(patterns []*pattern.Pattern) (pattern.Results, bool) {
		for _, p := range patterns {
			if h := p.Head(); h != pygram.Invalid && h != node.Type() {
				continue
			}
			results := pattern.Results{}
			if !p.Match(node, results) {
				continue
			}
			if filter != nil && !filter.Accept(s, node, results) {
				continue
			}
			return results, true
		}
		return nil, false
	}
	if r, ok := try(f.Patterns()); ok {
		return r, true
	}
	return try(s.Patterns(f))
}

// RefactorString parses src, rewrites it with a fresh session and returns
// the rendered result.
func (e *Engine) RefactorString(src, filename string) (string, bool, error) {
	res, err := e.refactor(src, filename)
	if err != nil {
		return "", false, err
	}
	return res.Rewritten, res.Changed, nil
}

// RefactorFile reads and rewrites the file at path without writing it back.
func (e *Engine) RefactorFile(path string) (tt.FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return tt.FileResult{}, fmt.Errorf("error reading file: %w", err)
	}
	return e.refactor(string(content), path)
}

func (e *Engine) refactor(src, filename string) (tt.FileResult, error) {
	start := time.Now()
	tree, err := pyparse.ParseString(src)
	if err != nil {
		return tt.FileResult{}, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	s := e.NewSession(filename)
	changed, err := e.Rewrite(tree, s)
	if err != nil {
		return tt.FileResult{}, fmt.Errorf("error rewriting %s: %w", filename, err)
	}
	return tt.FileResult{
		Filename:  filename,
		Original:  src,
		Rewritten: pytree.Render(tree),
		Changed:   changed,
		Applied:   s.Applied(),
		Duration:  time.Since(start),
	}, nil
}
