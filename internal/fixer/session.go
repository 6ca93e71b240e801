package fixer

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal/pattern"
)

// Session is the bookkeeping of one file's rewrite pass: patterns
// registered while traversing, per-fixer state and applied counts. A
// Session belongs to one goroutine and one file.
type Session struct {
	Filename string
	Logger   *zap.Logger

	dynamic map[string][]*pattern.Pattern
	keys    map[string]struct{}
	state   map[string]any
	applied map[string]int
}

// NewSession returns an empty session. A nil logger discards output.
func NewSession(filename string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{Filename: filename, Logger: logger}
	s.Reset()
	return s
}

// Reset drops everything gathered for the previous tree.
func (s *Session) Reset() {
	s.dynamic = make(map[string][]*pattern.Pattern)
	s.keys = make(map[string]struct{})
	s.state = make(map[string]any)
	s.applied = make(map[string]int)
}

// Register adds p to f's active patterns. Only nodes visited after the
// call are checked against it.
func (s *Session) Register(f Fixer, p *pattern.Pattern) {
	s.dynamic[f.Name()] = append(s.dynamic[f.Name()], p)
}

// RegisterOnce compiles src and registers it unless key was already
// registered for f in this session.
func (s *Session) RegisterOnce(f Fixer, key, src string) error {
	k := f.Name() + "\x00" + key
	if _, ok := s.keys[k]; ok {
		return nil
	}
	p, err := pattern.Compile(src)
	if err != nil {
		return err
	}
	s.keys[k] = struct{}{}
	s.Register(f, p)
	return nil
}

// Patterns returns the patterns registered for f so far.
func (s *Session) Patterns(f Fixer) []*pattern.Pattern {
	return s.dynamic[f.Name()]
}

// MarkApplied counts one transform by the named fixer.
func (s *Session) MarkApplied(name string) { s.applied[name]++ }

// Applied returns a copy of the transform counts by fixer name.
func (s *Session) Applied() map[string]int { return maps.Clone(s.applied) }

// AppliedNames returns the names of the fixers that ran, sorted.
func (s *Session) AppliedNames() []string {
	return slices.Sorted(maps.Keys(s.applied))
}

// State returns f's state of type T, creating a zero value on first use.
// It panics if f stored a different type.
func State[T any](s *Session, f Fixer) *T {
	if v, ok := s.state[f.Name()]; ok {
		return v.(*T)
	}
	v := new(T)
	s.state[f.Name()] = v
	return v
}
