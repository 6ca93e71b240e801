package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/formatter"
	"github.com/gnolang/hintstrip/internal/pattern"
	"github.com/gnolang/hintstrip/internal/pyparse"
	"github.com/gnolang/hintstrip/internal/pytree"
	"github.com/gnolang/hintstrip/internal/tsbridge"
	"github.com/gnolang/hintstrip/scanner"
)

const defaultLang = "python"

// variable for flags
var (
	queryPattern string
	queryLang    string
)

var queryCmd = &cobra.Command{
	Use:   "query --pattern PATTERN [paths...]",
	Short: "Print the nodes matching a pattern",
	Long: `Compiles a pattern and prints every node it matches, with its captures.
Python sources use the built-in parser; other languages go through tree-sitter.
Example) hintstrip query --pattern "funcdef< 'def' name=NAME any* >" src/`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		// timeout is a global variable declared in root.go
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := runQuery(ctx, logger, queryPattern, queryLang, args, cmd.OutOrStdout())
		if err != nil {
			logger.Error("Query failed", zap.Error(err))
			os.Exit(1)
		}
		if n == 0 {
			os.Exit(1)
		}
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryPattern, "pattern", "p", "", "Pattern to match")
	queryCmd.Flags().StringVarP(&queryLang, "lang", "l", defaultLang,
		fmt.Sprintf("Source language (%s)", strings.Join(tsbridge.Languages(), ", ")))
	_ = queryCmd.MarkFlagRequired("pattern")
}

var langExtensions = map[string][]string{
	"python":     {".py", ".pyi"},
	"go":         {".go"},
	"javascript": {".js", ".mjs", ".cjs"},
}

// querier parses one file of the queried language.
type querier struct {
	pattern *pattern.Pattern
	parse   func(ctx context.Context, src []byte) (pytree.Node, error)
}

func newQuerier(src, lang string) (*querier, error) {
	if lang == defaultLang {
		p, err := pattern.Compile(src)
		if err != nil {
			return nil, err
		}
		return &querier{pattern: p, parse: func(_ context.Context, content []byte) (pytree.Node, error) {
			return pyparse.ParseString(string(content))
		}}, nil
	}

	bridge, err := tsbridge.New(lang)
	if err != nil {
		return nil, err
	}
	p, err := bridge.Compile(src)
	if err != nil {
		return nil, err
	}
	return &querier{pattern: p, parse: func(ctx context.Context, content []byte) (pytree.Node, error) {
		return bridge.Parse(ctx, content)
	}}, nil
}

// runQuery prints the matches of src in every file of lang under paths and
// returns how many were found.
func runQuery(ctx context.Context, logger *zap.Logger, src, lang string, paths []string, out io.Writer) (int, error) {
	q, err := newQuerier(src, lang)
	if err != nil {
		return 0, err
	}
	files, err := queryFiles(paths, langExtensions[lang])
	if err != nil {
		return 0, err
	}

	total := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return total, err
		}
		root, err := q.parse(ctx, content)
		if err != nil {
			logger.Error("Failed to parse file", zap.String("path", file), zap.Error(err))
			continue
		}
		for n := range pytree.PreOrder(root) {
			results := pattern.Results{}
			if !q.pattern.Match(n, results) {
				continue
			}
			total++
			fmt.Fprint(out, formatMatch(file, n, results))
		}
	}
	return total, nil
}

func formatMatch(file string, n pytree.Node, results pattern.Results) string {
	var line, column int
	if leaf := pytree.FirstLeaf(n); leaf != nil {
		line, column = leaf.Line, leaf.Column
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	captures := make([]formatter.Capture, 0, len(names))
	for _, name := range names {
		var parts []string
		for _, node := range results.Nodes(name) {
			parts = append(parts, strings.TrimSpace(pytree.Render(node)))
		}
		captures = append(captures, formatter.Capture{Name: name, Text: strings.Join(parts, " ")})
	}
	return formatter.FormatMatch(file, line, column, pytree.Render(n), captures)
}

// queryFiles expands directories into the files with one of exts. Files
// named explicitly are always included.
func queryFiles(paths []string, exts []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := scanner.New(path, exts...).Scan()
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
	}
	return files, nil
}
