package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pytree"
)

type noopFixer struct {
	Base
}

func (*noopFixer) Transform(*Session, pytree.Node, pattern.Results) error { return nil }

func newNoop(t *testing.T, name string) *noopFixer {
	t.Helper()
	b, err := NewBase(name, Post, 1, "power< any* >")
	require.NoError(t, err)
	return &noopFixer{Base: b}
}

func TestParseOrder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"pre", Pre, false},
		{"post", Post, false},
		{"", "", true},
		{"PRE", "", true},
		{"inorder", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOrder(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIllegalOrder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewBase(t *testing.T) {
	t.Parallel()

	b, err := NewBase("x", Pre, 7, "NAME", "power< any* >")
	require.NoError(t, err)
	assert.Equal(t, "x", b.Name())
	assert.Equal(t, Pre, b.Order())
	assert.Equal(t, 7, b.RunOrder())
	assert.Len(t, b.Patterns(), 2)
	b.SetRunOrder(2)
	assert.Equal(t, 2, b.RunOrder())

	_, err = NewBase("bad", "sideways", 1)
	assert.ErrorIs(t, err, ErrIllegalOrder)

	_, err = NewBase("bad", Post, 1, "power<")
	assert.ErrorIs(t, err, pattern.ErrSyntax)
	assert.Contains(t, err.Error(), "bad")
}

func TestSessionRegister(t *testing.T) {
	t.Parallel()
	a, b := newNoop(t, "a"), newNoop(t, "b")
	s := NewSession("f.py", nil)
	require.NotNil(t, s.Logger)

	require.NoError(t, s.RegisterOnce(a, "List", "power< 'List' any* >"))
	require.NoError(t, s.RegisterOnce(a, "List", "power< 'List' any* >"))
	require.NoError(t, s.RegisterOnce(b, "List", "power< 'List' any* >"))
	assert.Len(t, s.Patterns(a), 1)
	assert.Len(t, s.Patterns(b), 1)

	err := s.RegisterOnce(a, "broken", "power<")
	assert.ErrorIs(t, err, pattern.ErrSyntax)
	assert.Len(t, s.Patterns(a), 1)

	s.Reset()
	assert.Empty(t, s.Patterns(a))
	require.NoError(t, s.RegisterOnce(a, "List", "power< 'List' any* >"))
	assert.Len(t, s.Patterns(a), 1)
}

func TestSessionState(t *testing.T) {
	t.Parallel()
	type counter struct{ n int }
	a, b := newNoop(t, "a"), newNoop(t, "b")
	s := NewSession("f.py", nil)

	State[counter](s, a).n++
	State[counter](s, a).n++
	State[counter](s, b).n++
	assert.Equal(t, 2, State[counter](s, a).n)
	assert.Equal(t, 1, State[counter](s, b).n)

	s.Reset()
	assert.Equal(t, 0, State[counter](s, a).n)
}

func TestSessionApplied(t *testing.T) {
	t.Parallel()
	s := NewSession("f.py", nil)
	s.MarkApplied("z")
	s.MarkApplied("a")
	s.MarkApplied("z")

	applied := s.Applied()
	assert.Equal(t, map[string]int{"a": 1, "z": 2}, applied)
	applied["a"] = 10
	assert.Equal(t, 1, s.Applied()["a"])
	assert.Equal(t, []string{"a", "z"}, s.AppliedNames())
}
