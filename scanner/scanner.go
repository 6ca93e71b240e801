// Package scanner finds the source files to process under a directory.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

// Scanner selects files by extension, skipping paths that contain one of
// the exclude patterns.
type Scanner struct {
	rootDir    string
	extensions []string
	exclude    []string
}

// New returns a scanner for rootDir. Without extensions every file is a
// target.
func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Exclude adds path substrings to skip. Patterns are matched against
// slash separated paths; a directory is matched with a trailing slash, so
// "vendor/" skips every vendor directory.
func (s *Scanner) Exclude(patterns ...string) *Scanner {
	for _, p := range patterns {
		if p != "" {
			s.exclude = append(s.exclude, p)
		}
	}
	return s
}

// Scan walks the root directory and returns the target files sorted by
// path. Excluded directories are not entered.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && s.Excluded(path+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.Wants(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", s.rootDir, err)
	}

	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

// Wants reports whether path is a target file that is not excluded.
func (s *Scanner) Wants(path string) bool {
	return s.isTargetFile(path) && !s.Excluded(path)
}

// Excluded reports whether path contains an exclude pattern.
func (s *Scanner) Excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	return slices.ContainsFunc(s.exclude, func(pattern string) bool {
		return strings.Contains(slashed, pattern)
	})
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return slices.Contains(s.extensions, filepath.Ext(path))
}
