package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/formatter"
	"github.com/gnolang/hintstrip/internal"
	tt "github.com/gnolang/hintstrip/internal/types"
	"github.com/gnolang/hintstrip/refactor"
)

var (
	dryRun       bool
	showDiff     bool
	onlyFixers   string
	ignoreFixers string
	workers      int
	watchMode    bool
	showProgress bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite files in place",
	Long: `Rewrites every .py and .pyi file under the given paths with the configured fixers.
Use "-" to read a single source from stdin and write the result to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		engine, opts, err := setupEngine(onlyFixers, ignoreFixers)
		if err != nil {
			logger.Fatal("Failed to initialize rewrite engine", zap.Error(err))
		}
		opts.DryRun = dryRun
		opts.Progress = showProgress

		out := cmd.OutOrStdout()
		if len(args) == 1 && args[0] == "-" {
			if err := runStdin(engine, os.Stdin, out); err != nil {
				logger.Error("Error processing stdin", zap.Error(err))
				os.Exit(1)
			}
			return
		}

		if watchMode {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := runWatch(ctx, logger, engine, args, opts, out); err != nil {
				logger.Fatal("Watch failed", zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := runFix(ctx, logger, engine, args, opts, showDiff, out); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show a diff of the changes without writing files")
	fixCmd.Flags().BoolVar(&showDiff, "diff", false, "Show a diff of the applied changes")
	fixCmd.Flags().StringVar(&onlyFixers, "fixers", "", "Comma-separated list of fixers to run (default: all)")
	fixCmd.Flags().StringVar(&ignoreFixers, "ignore", "", "Comma-separated list of fixers to skip")
	fixCmd.Flags().IntVarP(&workers, "workers", "j", 0, "Number of files processed in parallel (default: config, then CPU count)")
	fixCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep running and rewrite files when they change")
	fixCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar")
}

// setupEngine builds the engine and processing options from the
// configuration file and the fixer selection flags.
func setupEngine(only, ignore string) (*internal.Engine, refactor.Options, error) {
	engine, cfg, err := refactor.New(cfgFile, selection(only, ignore), logger)
	if err != nil {
		return nil, refactor.Options{}, err
	}
	opts, err := refactor.OptionsFromConfig(cfg, internal.Fingerprint(engine.Fixers()))
	if err != nil {
		return nil, refactor.Options{}, err
	}
	if workers > 0 {
		opts.Workers = workers
	}
	return engine, opts, nil
}

func runFix(
	ctx context.Context,
	logger *zap.Logger,
	engine refactor.RefactorEngine,
	paths []string,
	opts refactor.Options,
	diff bool,
	out io.Writer,
) error {
	results, err := refactor.ProcessFiles(ctx, logger, engine, paths, opts)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
	}

	fmt.Fprint(out, formatter.FormatResults(results, formatter.Options{
		DryRun: opts.DryRun,
		Diff:   diff || opts.DryRun,
	}))
	fmt.Fprint(out, formatter.FormatSummary(countChanged(results), len(results), opts.DryRun))
	return err
}

func runStdin(engine refactor.RefactorEngine, in io.Reader, out io.Writer) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	res, err := refactor.ProcessSource(engine, src, "<stdin>")
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, res.Rewritten)
	return err
}

func runWatch(
	ctx context.Context,
	logger *zap.Logger,
	engine refactor.RefactorEngine,
	dirs []string,
	opts refactor.Options,
	out io.Writer,
) error {
	fmt.Fprintf(out, "Watching %d path(s) for changes...\n", len(dirs))
	return refactor.Watch(ctx, logger, engine, dirs, opts, func(res tt.FileResult) {
		fmt.Fprint(out, formatter.FormatResult(res, formatter.Options{DryRun: opts.DryRun, Diff: opts.DryRun}))
	})
}

func countChanged(results []tt.FileResult) int {
	n := 0
	for _, res := range results {
		if res.Changed {
			n++
		}
	}
	return n
}
