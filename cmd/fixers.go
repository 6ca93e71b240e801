package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal"
	"github.com/gnolang/hintstrip/internal/fixer"
	"github.com/gnolang/hintstrip/refactor"
)

var fixersCmd = &cobra.Command{
	Use:   "fixers",
	Short: "List the fixers in the order they run",
	Run: func(cmd *cobra.Command, args []string) {
		engine, _, err := refactor.New(cfgFile, internal.Selection{}, logger)
		if err != nil {
			logger.Error("Failed to initialize rewrite engine", zap.Error(err))
			os.Exit(1)
		}
		printFixers(cmd.OutOrStdout(), engine.Fixers())
	},
}

// printFixers renders the active fixers in run order, followed by the
// built-in fixers the configuration disables.
func printFixers(out io.Writer, active []fixer.Fixer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Fixer", "Order", "Run order", "Patterns"})

	var names []string
	for i, f := range active {
		names = append(names, f.Name())
		tbl.AppendRow(table.Row{i + 1, f.Name(), string(f.Order()), f.RunOrder(), len(f.Patterns())})
	}
	disabled := 0
	for _, name := range internal.FixerNames() {
		if !slices.Contains(names, name) {
			disabled++
			tbl.AppendRow(table.Row{"-", name, "disabled", "", ""})
		}
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d active, %d disabled", len(active), disabled)})
	tbl.Render()
}
