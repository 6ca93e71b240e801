package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/hintstrip/internal"
	tt "github.com/gnolang/hintstrip/internal/types"
	"github.com/gnolang/hintstrip/refactor"
)

var errConfigExists = errors.New("configuration file already exists")

var forceInit bool

// initCmd: hintstrip init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = refactor.DefaultConfigFile
		}
		if err := initConfigurationFile(path, forceInit); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return fmt.Errorf("%w: %s", errConfigExists, configurationPath)
		}
	}

	config := refactor.DefaultConfig()
	config.Fixers = map[string]tt.FixerConfig{}
	for _, name := range internal.FixerNames() {
		config.Fixers[name] = tt.FixerConfig{}
	}
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configurationPath, d, 0o644)
}
