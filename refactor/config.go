package refactor

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	tt "github.com/gnolang/hintstrip/internal/types"
)

// DefaultConfigFile is looked up in the working directory when no path is
// given.
const DefaultConfigFile = ".hintstrip.yaml"

const envPrefix = "HINTSTRIP"

var (
	ErrInvalidWorkers = errors.New("workers must not be negative")
	ErrNoExtensions   = errors.New("no file extensions configured")
	ErrBadExtension   = errors.New("extension must start with a dot")
)

// DefaultConfig is the configuration used when no file is found.
func DefaultConfig() tt.Config {
	return tt.Config{
		Name:       "hintstrip",
		Extensions: []string{".py", ".pyi"},
	}
}

// LoadConfig reads the configuration at path, layered over the defaults
// and HINTSTRIP_* environment variables. A missing file is not an error.
func LoadConfig(path string) (tt.Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("name", def.Name)
	v.SetDefault("extensions", def.Extensions)
	v.SetDefault("workers", 0)
	v.SetDefault("cache_dir", "")

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return tt.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg tt.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return tt.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return tt.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that fixer construction does not.
func Validate(cfg tt.Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Workers)
	}
	if len(cfg.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrBadExtension, ext)
		}
	}
	return nil
}
