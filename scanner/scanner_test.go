package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

func TestScanner(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	createFiles(t, tempDir, map[string]string{
		"b.py":               "x = 1",
		"a.pyi":              "def f(): ...",
		"notes.txt":          "This is a text file",
		"pkg/c.py":           "import os",
		"vendor/lib/d.py":    "y = 2",
		"pkg/vendor_util.py": "z = 3",
	})

	files, err := New(tempDir, ".py", ".pyi").Exclude("vendor/", "").Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range files {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{
		filepath.Join(tempDir, "a.pyi"),
		filepath.Join(tempDir, "b.py"),
		filepath.Join(tempDir, "pkg", "c.py"),
		filepath.Join(tempDir, "pkg", "vendor_util.py"),
	}, paths)
}

func TestScannerAllExtensions(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	createFiles(t, tempDir, map[string]string{"a.py": "1", "b.txt": "2"})

	files, err := New(tempDir).Scan()
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = New(filepath.Join(tempDir, "missing")).Scan()
	assert.Error(t, err)
}

func TestWants(t *testing.T) {
	t.Parallel()
	s := New("", ".py").Exclude("build/")
	tests := []struct {
		path string
		want bool
	}{
		{"src/a.py", true},
		{"src/a.pyi", false},
		{"build/a.py", false},
		{"src/build/a.py", false},
		{"src/rebuild.py", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Wants(tt.path), tt.path)
	}
}
