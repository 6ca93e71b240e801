package internal

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/internal/fixes"
	tt "github.com/gnolang/hintstrip/internal/types"
)

var (
	ErrUnknownFixer   = errors.New("unknown fixer")
	ErrDuplicateFixer = errors.New("duplicate fixer name")
)

type fixerConstructor func() (fixer.Fixer, error)

// allFixerConstructors lists the built-in fixers in declaration order,
// which breaks run order ties.
var allFixerConstructors = []struct {
	name string
	new  fixerConstructor
}{
	{fixes.RemoveTypeHintsName, fixes.NewRemoveTypeHints},
	{fixes.RemoveTypingName, fixes.NewRemoveTyping},
	{fixes.RemoveGenericBasesName, fixes.NewRemoveGenericBases},
}

// FixerNames returns the names of the built-in fixers.
func FixerNames() []string {
	names := make([]string, len(allFixerConstructors))
	for i, c := range allFixerConstructors {
		names[i] = c.name
	}
	return names
}

// DefaultFixers builds every built-in fixer.
func DefaultFixers() ([]fixer.Fixer, error) {
	return BuildFixers(tt.Config{}, Selection{})
}

// Selection narrows the fixer set from the command line.
type Selection struct {
	Only   []string // when set, keep only these fixers
	Ignore []string
}

func (sel Selection) keep(name string) bool {
	if len(sel.Only) > 0 && !slices.Contains(sel.Only, name) {
		return false
	}
	return !slices.Contains(sel.Ignore, name)
}

// BuildFixers builds the built-in fixers with the configured overrides,
// followed by the configured pattern rules. A rule may not reuse the name
// of a built-in fixer, disabled or not, or of another rule.
func BuildFixers(cfg tt.Config, sel Selection) ([]fixer.Fixer, error) {
	known := FixerNames()
	for name := range cfg.Fixers {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFixer, name)
		}
	}
	ruleNames := make(map[string]struct{}, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		_, seen := ruleNames[rc.Name]
		if seen || slices.Contains(known, rc.Name) {
			return nil, fmt.Errorf("%w: rule %q", ErrDuplicateFixer, rc.Name)
		}
		ruleNames[rc.Name] = struct{}{}
	}
	for _, name := range slices.Concat(sel.Only, sel.Ignore) {
		if _, ok := ruleNames[name]; !ok && !slices.Contains(known, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFixer, name)
		}
	}

	var fixers []fixer.Fixer
	for _, c := range allFixerConstructors {
		override := cfg.Fixers[c.name]
		if override.Disabled || !sel.keep(c.name) {
			continue
		}
		f, err := c.new()
		if err != nil {
			return nil, err
		}
		if override.RunOrder != nil {
			if r, ok := f.(interface{ SetRunOrder(int) }); ok {
				r.SetRunOrder(*override.RunOrder)
			}
		}
		fixers = append(fixers, f)
	}

	for _, rc := range cfg.Rules {
		if !sel.keep(rc.Name) {
			continue
		}
		f, err := fixes.NewPatternRule(rc)
		if err != nil {
			return nil, err
		}
		fixers = append(fixers, f)
	}
	return fixers, nil
}
