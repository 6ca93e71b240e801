package types

import "time"

// FileResult is the outcome of rewriting one file.
type FileResult struct {
	Filename  string
	Original  string
	Rewritten string
	Changed   bool
	Cached    bool // skipped as already clean
	Applied   map[string]int
	Duration  time.Duration
}

// FixerConfig overrides a built-in fixer.
type FixerConfig struct {
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	RunOrder *int `yaml:"run_order,omitempty" mapstructure:"run_order"`
}

// RuleConfig declares a pattern rule in the configuration file.
type RuleConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Order    string `yaml:"order" mapstructure:"order"`
	RunOrder int    `yaml:"run_order" mapstructure:"run_order"`
	Pattern  string `yaml:"pattern" mapstructure:"pattern"`
	Action   string `yaml:"action" mapstructure:"action"`
	Capture  string `yaml:"capture,omitempty" mapstructure:"capture"`
	Value    string `yaml:"value,omitempty" mapstructure:"value"`
}

// Config is the content of .hintstrip.yaml.
type Config struct {
	Name       string                 `yaml:"name" mapstructure:"name"`
	Fixers     map[string]FixerConfig `yaml:"fixers,omitempty" mapstructure:"fixers"`
	Rules      []RuleConfig           `yaml:"rules,omitempty" mapstructure:"rules"`
	Extensions []string               `yaml:"extensions" mapstructure:"extensions"`
	Exclude    []string               `yaml:"exclude,omitempty" mapstructure:"exclude"`
	Workers    int                    `yaml:"workers" mapstructure:"workers"`
	CacheDir   string                 `yaml:"cache_dir" mapstructure:"cache_dir"`
}
