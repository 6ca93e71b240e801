package formatter

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnolang/hintstrip/internal/types"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

var (
	errorStyle    = color.New(color.FgRed, color.Bold)
	warningStyle  = color.New(color.FgHiYellow, color.Bold)
	ruleStyle     = color.New(color.FgYellow, color.Bold)
	fileStyle     = color.New(color.FgCyan, color.Bold)
	lineStyle     = color.New(color.FgHiBlue, color.Bold)
	addedStyle    = color.New(color.FgGreen)
	removedStyle  = color.New(color.FgRed)
	verbStyle     = color.New(color.FgGreen, color.Bold)
	dryVerbStyle  = color.New(color.FgHiYellow, color.Bold)
	noChangeStyle = color.New(color.FgWhite)
)

// Options controls what a report contains.
type Options struct {
	DryRun  bool // describe changes as pending
	Diff    bool // include a unified diff
	Context int  // diff context lines, DefaultContext when zero
}

type AppliedCount struct {
	Fixer string
	Count int
}

type ReportData struct {
	DryRun   bool
	Filename string
	Applied  []AppliedCount
	Diff     string
}

const reportTemplate = `{{header .DryRun .Filename}}
{{applied .Applied}}{{colorDiff .Diff}}
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"header":    header,
	"applied":   applied,
	"colorDiff": colorDiff,
}).Parse(reportTemplate))

// FormatResult describes one changed file. Unchanged and cached files
// produce an empty string.
func FormatResult(res tt.FileResult, opts Options) string {
	if !res.Changed {
		return ""
	}

	data := ReportData{
		DryRun:   opts.DryRun,
		Filename: res.Filename,
		Applied:  appliedCounts(res.Applied),
	}
	if opts.Diff {
		ctx := opts.Context
		if ctx <= 0 {
			ctx = DefaultContext
		}
		data.Diff = UnifiedDiff(res.Filename, res.Original, res.Rewritten, ctx)
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting result: %v", err)
	}
	return buf.String()
}

// FormatResults concatenates the reports of every changed file.
func FormatResults(results []tt.FileResult, opts Options) string {
	var builder strings.Builder
	for _, res := range results {
		builder.WriteString(FormatResult(res, opts))
	}
	return builder.String()
}

// FormatError renders a file that could not be processed.
func FormatError(filename string, err error) string {
	return errorStyle.Sprint("error: ") + fileStyle.Sprint(filename) + lineStyle.Sprint(": ") + err.Error() + "\n"
}

// FormatSummary renders the closing line of a run.
func FormatSummary(changed, total int, dryRun bool) string {
	switch {
	case changed == 0:
		return noChangeStyle.Sprintf("%s unchanged\n", plural(total, "file"))
	case dryRun:
		return warningStyle.Sprintf("%s would be fixed", plural(changed, "file")) +
			noChangeStyle.Sprintf(", %d unchanged\n", total-changed)
	default:
		return verbStyle.Sprintf("%s fixed", plural(changed, "file")) +
			noChangeStyle.Sprintf(", %d unchanged\n", total-changed)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func appliedCounts(m map[string]int) []AppliedCount {
	counts := make([]AppliedCount, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		counts = append(counts, AppliedCount{Fixer: name, Count: m[name]})
	}
	return counts
}

// utils functions used in the text templates

func header(dryRun bool, filename string) string {
	var endString string
	if dryRun {
		endString = dryVerbStyle.Sprint("would fix: ")
	} else {
		endString = verbStyle.Sprint("fixed: ")
	}
	endString += fileStyle.Sprint(filename)
	return endString
}

func applied(counts []AppliedCount) string {
	var endString string
	for _, c := range counts {
		endString += lineStyle.Sprint(" = ")
		endString += ruleStyle.Sprint(c.Fixer)
		endString += fmt.Sprintf(" x%d\n", c.Count)
	}
	return endString
}

func colorDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "+++"):
			builder.WriteString(fileStyle.Sprint(text))
		case strings.HasPrefix(text, "@@"):
			builder.WriteString(lineStyle.Sprint(text))
		case strings.HasPrefix(text, "-"):
			builder.WriteString(removedStyle.Sprint(text))
		case strings.HasPrefix(text, "+"):
			builder.WriteString(addedStyle.Sprint(text))
		default:
			builder.WriteString(text)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
