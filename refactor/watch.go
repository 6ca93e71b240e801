package refactor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/hintstrip/internal/types"
)

// settle is how long a file must stay quiet before it is processed, so a
// burst of writes from an editor counts as one change.
const settle = 100 * time.Millisecond

// Watch processes matching files under dirs each time they are written,
// until ctx is done. report receives every result, including unchanged
// ones. Files rewritten by Watch itself are not processed again.
// Directories created while watching are watched too, and the matching
// files already inside them are processed.
func Watch(
	ctx context.Context,
	logger *zap.Logger,
	engine RefactorEngine,
	dirs []string,
	opts Options,
	report func(tt.FileResult),
) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watchTree(watcher, dir, opts, nil); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	pending := make(map[string]time.Time)
	queue := func(name string) { pending[name] = time.Now() }
	written := make(map[string]struct{})
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if opts.excluded(event.Name + "/") {
						continue
					}
					if err := watchTree(watcher, event.Name, opts, queue); err != nil {
						logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !opts.wants(event.Name) {
				continue
			}
			if _, ok := written[event.Name]; ok {
				delete(written, event.Name)
				continue
			}
			queue(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watch error", zap.Error(err))

		case now := <-ticker.C:
			for name, at := range pending {
				if now.Sub(at) < settle {
					continue
				}
				delete(pending, name)
				res, err := processFile(engine, name, opts)
				if err != nil {
					logger.Error("Error processing file", zap.String("file", name), zap.Error(err))
					continue
				}
				if res.Changed && !opts.DryRun {
					written[name] = struct{}{}
				}
				if err := saveCache(opts); err != nil {
					logger.Warn("Failed to save cache", zap.Error(err))
				}
				report(res)
			}
		}
	}
}

// watchTree adds root and the directories below it to watcher, skipping
// excluded ones. When found is set it receives the matching files met on
// the way.
func watchTree(watcher *fsnotify.Watcher, root string, opts Options, found func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if found != nil && opts.wants(path) {
				found(path)
			}
			return nil
		}
		if path != root && opts.excluded(path+"/") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
