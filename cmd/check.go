package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	tt "github.com/gnolang/hintstrip/internal/types"
	"github.com/gnolang/hintstrip/refactor"
)

var (
	checkOnly   string
	checkIgnore string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report files that would be rewritten",
	Long:  "Reports the files the fixers would change without writing them. Exits with status 1 if any file would change.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, opts, err := setupEngine(checkOnly, checkIgnore)
		if err != nil {
			logger.Fatal("Failed to initialize rewrite engine", zap.Error(err))
		}

		changed, err := runCheck(ctx, logger, engine, args, opts, cmd.OutOrStdout())
		if err != nil || changed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkOnly, "fixers", "", "Comma-separated list of fixers to run (default: all)")
	checkCmd.Flags().StringVar(&checkIgnore, "ignore", "", "Comma-separated list of fixers to skip")
}

// runCheck processes paths without writing and prints a table of the files
// that would change. It returns the number of such files.
func runCheck(
	ctx context.Context,
	logger *zap.Logger,
	engine refactor.RefactorEngine,
	paths []string,
	opts refactor.Options,
	out io.Writer,
) (int, error) {
	opts.DryRun = true
	results, err := refactor.ProcessFiles(ctx, logger, engine, paths, opts)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
	}

	changed := countChanged(results)
	if changed == 0 {
		fmt.Fprintf(out, "%d file(s) checked, nothing to rewrite\n", len(results))
		return 0, err
	}
	fmt.Fprintln(out, checkTable(results))
	return changed, err
}

func checkTable(results []tt.FileResult) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Fixes", "Size", "Saved"})

	var fixes, saved int
	for _, res := range results {
		if !res.Changed {
			continue
		}
		n := 0
		for _, count := range res.Applied {
			n += count
		}
		diff := len(res.Original) - len(res.Rewritten)
		fixes += n
		saved += diff
		tbl.AppendRow(table.Row{res.Filename, n, humanize.Bytes(uint64(len(res.Original))), signedBytes(diff)})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d of %d files", countChanged(results), len(results)),
		fixes,
		"",
		signedBytes(saved),
	})
	return tbl.Render()
}

func signedBytes(n int) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}
