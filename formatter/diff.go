package formatter

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type diffLine struct {
	op   diffmatchpatch.Operation
	text string // without the line break
	eol  bool   // text was followed by a line break
}

// UnifiedDiff returns the differences between original and rewritten in
// unified format, with context unchanged lines around each hunk. It
// returns an empty string when the texts are equal.
func UnifiedDiff(filename, original, rewritten string, context int) string {
	if original == rewritten {
		return ""
	}
	lines := diffLines(original, rewritten)

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- a/%s\n+++ b/%s\n", filename, filename)
	for _, h := range hunks(lines, context) {
		writeHunk(&builder, lines, h[0], h[1])
	}
	return builder.String()
}

func diffLines(a, b string) []diffLine {
	dmp := diffmatchpatch.New()
	charsA, charsB, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lineArray)

	var lines []diffLine
	for _, d := range diffs {
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			trimmed, eol := strings.CutSuffix(text, "\n")
			lines = append(lines, diffLine{op: d.Type, text: trimmed, eol: eol})
		}
	}
	return lines
}

// hunks groups changed lines into [start, end) ranges of lines, merging
// changes separated by at most 2*context unchanged lines.
func hunks(lines []diffLine, context int) [][2]int {
	var out [][2]int
	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		start := max(0, i-context)
		end := min(len(lines), i+context+1)
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
			continue
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func writeHunk(builder *strings.Builder, lines []diffLine, start, end int) {
	oldStart, newStart := 1, 1
	for _, l := range lines[:start] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}
	var oldLen, newLen int
	for _, l := range lines[start:end] {
		if l.op != diffmatchpatch.DiffInsert {
			oldLen++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newLen++
		}
	}
	// an empty range names the line before it
	if oldLen == 0 {
		oldStart--
	}
	if newLen == 0 {
		newStart--
	}

	fmt.Fprintf(builder, "@@ -%s +%s @@\n", hunkRange(oldStart, oldLen), hunkRange(newStart, newLen))
	for _, l := range lines[start:end] {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			builder.WriteString("-")
		case diffmatchpatch.DiffInsert:
			builder.WriteString("+")
		default:
			builder.WriteString(" ")
		}
		builder.WriteString(l.text)
		builder.WriteString("\n")
		if !l.eol {
			builder.WriteString("\\ No newline at end of file\n")
		}
	}
}

func hunkRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, length)
}
