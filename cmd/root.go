package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal"
	"github.com/gnolang/hintstrip/refactor"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "hintstrip [paths...]",
	Short:            "hintstrip - rewrite Python sources by syntax tree patterns",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("error creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// Format: hintstrip [path1 path2 ...] => behaves like the fix subcommand
		fixCmd.Run(fixCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", refactor.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for processing all paths")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(fixersCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// selection turns the comma separated --fixers and --ignore flags into a
// fixer selection.
func selection(only, ignore string) internal.Selection {
	return internal.Selection{
		Only:   splitList(only),
		Ignore: splitList(ignore),
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
