package formatter

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	tt "github.com/gnolang/hintstrip/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		original  string
		rewritten string
		context   int
		expected  string
	}{
		{
			name:      "equal",
			original:  "a\n",
			rewritten: "a\n",
			context:   3,
			expected:  "",
		},
		{
			name:      "deleted line",
			original:  "a\nb\nc\n",
			rewritten: "a\nc\n",
			context:   3,
			expected:  "--- a/x.py\n+++ b/x.py\n@@ -1,3 +1,2 @@\n a\n-b\n c\n",
		},
		{
			name:      "separate hunks",
			original:  "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\n",
			rewritten: "l1\nL2\nl3\nl4\nl5\nl6\nl7\nl8\nL9\nl10\n",
			context:   1,
			expected: "--- a/x.py\n+++ b/x.py\n" +
				"@@ -1,3 +1,3 @@\n l1\n-l2\n+L2\n l3\n" +
				"@@ -8,3 +8,3 @@\n l8\n-l9\n+L9\n l10\n",
		},
		{
			name:      "no trailing newline",
			original:  "a",
			rewritten: "b",
			context:   3,
			expected: "--- a/x.py\n+++ b/x.py\n@@ -1 +1 @@\n" +
				"-a\n\\ No newline at end of file\n+b\n\\ No newline at end of file\n",
		},
		{
			name:      "insert into empty file",
			original:  "",
			rewritten: "x\n",
			context:   3,
			expected:  "--- a/x.py\n+++ b/x.py\n@@ -0,0 +1 @@\n+x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, UnifiedDiff("x.py", tt.original, tt.rewritten, tt.context))
		})
	}
}

func TestFormatResult(t *testing.T) {
	t.Parallel()
	res := tt.FileResult{
		Filename:  "a.py",
		Original:  "def f(x: int) -> int:\n    return x\n",
		Rewritten: "def f(x):\n    return x\n",
		Changed:   true,
		Applied:   map[string]int{"remove-typing": 1, "remove-type-hints": 2},
	}

	expected := `fixed: a.py
 = remove-type-hints x2
 = remove-typing x1

`
	assert.Equal(t, expected, FormatResult(res, Options{}))

	expectedDiff := `would fix: a.py
 = remove-type-hints x2
 = remove-typing x1
--- a/a.py
+++ b/a.py
@@ -1,2 +1,2 @@
-def f(x: int) -> int:
+def f(x):
     return x

`
	assert.Equal(t, expectedDiff, FormatResult(res, Options{DryRun: true, Diff: true}))

	assert.Empty(t, FormatResult(tt.FileResult{Filename: "b.py"}, Options{Diff: true}))
	assert.Empty(t, FormatResult(tt.FileResult{Filename: "c.py", Cached: true}, Options{}))
}

func TestFormatResults(t *testing.T) {
	t.Parallel()
	results := []tt.FileResult{
		{Filename: "a.py", Changed: true, Applied: map[string]int{"remove-typing": 1}},
		{Filename: "b.py"},
		{Filename: "c.py", Changed: true, Applied: map[string]int{"remove-type-hints": 3}},
	}
	expected := "fixed: a.py\n = remove-typing x1\n\nfixed: c.py\n = remove-type-hints x3\n\n"
	assert.Equal(t, expected, FormatResults(results, Options{}))
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "3 files unchanged\n", FormatSummary(0, 3, false))
	assert.Equal(t, "1 file fixed, 2 unchanged\n", FormatSummary(1, 3, false))
	assert.Equal(t, "2 files would be fixed, 0 unchanged\n", FormatSummary(2, 2, true))
}

func TestFormatError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "error: a.py: bad input\n", FormatError("a.py", errors.New("bad input")))
}

func TestFormatMatch(t *testing.T) {
	t.Parallel()
	got := FormatMatch("a.py", 3, 4, "\n    def f(x):\n        return x\n", []Capture{
		{Name: "name", Text: " f"},
		{Name: "params", Text: ""},
	})
	expected := "a.py:3:5: def f(x): ...\n    = name: f\n    = params: \n"
	assert.Equal(t, expected, got)

	long := strings.Repeat("x", 100)
	assert.Equal(t, strings.Repeat("x", 77)+"...", summarize(long))
}
