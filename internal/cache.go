package internal

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gnolang/hintstrip/internal/fixer"
)

const (
	cacheFileName = "hintstrip_cache.gob"
	// bumped whenever cacheFile changes shape; other versions are ignored
	cacheVersion = 1
)

// cleanEntry describes a file as it was when the fixers last left it
// unchanged.
type cleanEntry struct {
	Hash      string
	Size      int64
	ModTime   time.Time
	CheckedAt time.Time
}

type cacheFile struct {
	Version     int
	Fingerprint string
	Entries     map[string]cleanEntry
}

// Cache remembers files that a given fixer set left unchanged, so later
// runs can skip them until either the file or the fixer set changes. A
// cache directory holds the entries of one fixer set; opening it with
// another fingerprint starts empty. Changes are kept in memory until Save.
type Cache struct {
	dir         string
	fingerprint string

	mu      sync.Mutex
	entries map[string]cleanEntry
	maxAge  time.Duration
	dirty   bool
}

// NewCache opens the cache stored in dir, creating the directory when
// needed.
func NewCache(dir, fingerprint string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	c := &Cache{
		dir:         dir,
		fingerprint: fingerprint,
		entries:     make(map[string]cleanEntry),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string { return filepath.Join(c.dir, cacheFileName) }

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var stored cacheFile
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.path(), err)
	}
	if stored.Version != cacheVersion || stored.Fingerprint != c.fingerprint {
		return nil
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	return nil
}

// Save writes the entries to disk if they changed since the cache was
// opened or last saved. The file is replaced atomically.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	tmp, err := os.CreateTemp(c.dir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	err = gob.NewEncoder(tmp).Encode(cacheFile{
		Version:     cacheVersion,
		Fingerprint: c.fingerprint,
		Entries:     c.entries,
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// MarkClean records that filename, as it is now on disk, needs no rewrite.
func (c *Cache) MarkClean(filename string) error {
	entry, err := describe(filename)
	if err != nil {
		return err
	}
	entry.CheckedAt = time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filename] = entry
	c.dirty = true
	return nil
}

// IsClean reports whether filename was marked clean and has not changed
// since. Stale entries are dropped.
func (c *Cache) IsClean(filename string) bool {
	c.mu.Lock()
	entry, ok := c.entries[filename]
	maxAge := c.maxAge
	c.mu.Unlock()
	if !ok {
		return false
	}

	if c.unchanged(filename, entry, maxAge) {
		return true
	}
	c.Forget(filename)
	return false
}

func (c *Cache) unchanged(filename string, entry cleanEntry, maxAge time.Duration) bool {
	if maxAge > 0 && time.Since(entry.CheckedAt) > maxAge {
		return false
	}
	info, err := os.Stat(filename)
	if err != nil || info.Size() != entry.Size || !info.ModTime().Equal(entry.ModTime) {
		return false
	}
	current, err := describe(filename)
	return err == nil && current.Hash == entry.Hash
}

// Forget drops the entry of filename, typically after rewriting it.
func (c *Cache) Forget(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[filename]; ok {
		delete(c.entries, filename)
		c.dirty = true
	}
}

// SetMaxAge expires entries checked longer than d ago. Zero keeps them
// until the file changes.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge = d
}

// InvalidateAll drops every entry and saves the empty cache.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	c.entries = make(map[string]cleanEntry)
	c.dirty = true
	c.mu.Unlock()
	return c.Save()
}

// Fingerprint identifies a fixer set: names, traversal and run orders,
// patterns and the settings of fixers implementing fixer.Fingerprinter, in
// engine order.
func Fingerprint(fixers []fixer.Fixer) string {
	hash := md5.New()
	for _, f := range fixers {
		fmt.Fprintf(hash, "%s\x00%s\x00%d\x00", f.Name(), f.Order(), f.RunOrder())
		for _, p := range f.Patterns() {
			fmt.Fprintf(hash, "%s\x00", p.String())
		}
		if fp, ok := f.(fixer.Fingerprinter); ok {
			fmt.Fprintf(hash, "%s\x00", fp.Fingerprint())
		}
		hash.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

func describe(filename string) (cleanEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return cleanEntry{}, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, f); err != nil {
		return cleanEntry{}, fmt.Errorf("failed to hash %s: %w", filename, err)
	}
	info, err := f.Stat()
	if err != nil {
		return cleanEntry{}, fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	return cleanEntry{
		Hash:    fmt.Sprintf("%x", hash.Sum(nil)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
