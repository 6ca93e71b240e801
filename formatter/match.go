package formatter

import (
	"fmt"
	"strings"
)

const maxMatchWidth = 80

// Capture is a named part of a pattern match.
type Capture struct {
	Name string
	Text string
}

// FormatMatch renders one pattern match: its position, the first line of
// the matched text and every capture. line is 1-based and column 0-based.
func FormatMatch(filename string, line, column int, text string, captures []Capture) string {
	var builder strings.Builder
	builder.WriteString(fileStyle.Sprintf("%s:%d:%d", filename, line, column+1))
	builder.WriteString(lineStyle.Sprint(": "))
	builder.WriteString(summarize(text))
	builder.WriteString("\n")
	for _, c := range captures {
		builder.WriteString(lineStyle.Sprint("    = "))
		builder.WriteString(ruleStyle.Sprint(c.Name))
		builder.WriteString(fmt.Sprintf(": %s\n", summarize(c.Text)))
	}
	return builder.String()
}

// summarize returns the first line of s, shortened to maxMatchWidth.
func summarize(s string) string {
	s = strings.TrimSpace(s)
	first, _, multiline := strings.Cut(s, "\n")
	first = strings.TrimRight(first, " \t\r")
	if len(first) > maxMatchWidth {
		return first[:maxMatchWidth-3] + "..."
	}
	if multiline {
		return first + " ..."
	}
	return first
}
