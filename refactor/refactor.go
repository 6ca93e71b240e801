package refactor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/hintstrip/internal"
	tt "github.com/gnolang/hintstrip/internal/types"
	"github.com/gnolang/hintstrip/scanner"
)

// RefactorEngine is the part of internal.Engine used to process files.
type RefactorEngine interface {
	RefactorFile(path string) (tt.FileResult, error)
	RefactorString(src, filename string) (string, bool, error)
}

// Options controls how files are processed.
type Options struct {
	DryRun     bool // compute results without writing files
	Workers    int  // 0 means runtime.NumCPU()
	Progress   bool // show a progress bar on stderr
	Extensions []string
	Exclude    []string // path substrings to skip
	Cache      *internal.Cache
}

// OptionsFromConfig fills the file selection, worker count and cache from
// cfg. fingerprint identifies the fixer set the cache is valid for.
func OptionsFromConfig(cfg tt.Config, fingerprint string) (Options, error) {
	opts := Options{
		Workers:    cfg.Workers,
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
	}
	if cfg.CacheDir != "" {
		cache, err := internal.NewCache(cfg.CacheDir, fingerprint)
		if err != nil {
			return Options{}, err
		}
		opts.Cache = cache
	}
	return opts, nil
}

// New loads the configuration at configPath and builds an engine with the
// selected fixers.
func New(configPath string, sel internal.Selection, logger *zap.Logger) (*internal.Engine, tt.Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, tt.Config{}, err
	}
	fixers, err := internal.BuildFixers(cfg, sel)
	if err != nil {
		return nil, tt.Config{}, err
	}
	engine, err := internal.NewEngine(fixers, internal.WithLogger(logger))
	if err != nil {
		return nil, tt.Config{}, err
	}
	return engine, cfg, nil
}

// ProcessSource rewrites source held in memory.
func ProcessSource(engine RefactorEngine, source []byte, filename string) (tt.FileResult, error) {
	out, changed, err := engine.RefactorString(string(source), filename)
	if err != nil {
		return tt.FileResult{}, err
	}
	return tt.FileResult{
		Filename:  filename,
		Original:  string(source),
		Rewritten: out,
		Changed:   changed,
	}, nil
}

// ProcessFiles processes every path in turn. Errors are joined; only a
// cancelled or expired ctx stops the remaining paths.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine RefactorEngine,
	paths []string,
	opts Options,
) ([]tt.FileResult, error) {
	var all []tt.FileResult
	var errs []error
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, opts)
		all = append(all, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			errs = append(errs, err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath processes a file, or every matching file under a directory
// on a bounded pool of workers. Results are sorted by file name. Files
// that fail are logged and reported in the returned error; the others are
// still processed.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine RefactorEngine,
	path string,
	opts Options,
) ([]tt.FileResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !opts.wants(path) {
			return []tt.FileResult{}, nil
		}
		res, err := processFile(engine, path, opts)
		if err != nil {
			return []tt.FileResult{}, err
		}
		return []tt.FileResult{res}, saveCache(opts)
	}

	files, err := opts.collect(path)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sem := make(chan struct{}, workers)

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]tt.FileResult, 0, len(files))
		errs    []error
	)

loop:
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := processFile(engine, fp, opts)
			mu.Lock()
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				errs = append(errs, err)
			} else {
				results = append(results, res)
			}
			mu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
		}(file)
	}
	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if err := saveCache(opts); err != nil {
		errs = append(errs, err)
	}

	slices.SortFunc(results, func(a, b tt.FileResult) int { return strings.Compare(a.Filename, b.Filename) })
	return results, errors.Join(errs...)
}

// processFile rewrites one file, writing it back unless this is a dry
// run. Files the cache knows to be clean are not parsed.
func processFile(engine RefactorEngine, path string, opts Options) (tt.FileResult, error) {
	if opts.Cache != nil && opts.Cache.IsClean(path) {
		return tt.FileResult{Filename: path, Cached: true}, nil
	}

	res, err := engine.RefactorFile(path)
	if err != nil {
		return tt.FileResult{}, err
	}

	switch {
	case !res.Changed:
		if opts.Cache != nil {
			if err := opts.Cache.MarkClean(path); err != nil {
				return tt.FileResult{}, err
			}
		}
	case !opts.DryRun:
		if err := writeFile(path, res.Rewritten); err != nil {
			return tt.FileResult{}, err
		}
		if opts.Cache != nil {
			opts.Cache.Forget(path)
		}
	}
	return res, nil
}

func saveCache(opts Options) error {
	if opts.Cache == nil {
		return nil
	}
	return opts.Cache.Save()
}

// writeFile replaces the content of path, keeping its permissions.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultConfig().Extensions
	}
	return o.Extensions
}

// scanner returns the file discovery rules of o rooted at root.
func (o Options) scanner(root string) *scanner.Scanner {
	return scanner.New(root, o.extensions()...).Exclude(o.Exclude...)
}

func (o Options) wants(path string) bool { return o.scanner("").Wants(path) }

func (o Options) excluded(path string) bool { return o.scanner("").Excluded(path) }

// collect lists the files to process under root, skipping excluded
// directories.
func (o Options) collect(root string) ([]string, error) {
	infos, err := o.scanner(root).Scan()
	if err != nil {
		return nil, err
	}
	files := make([]string, len(infos))
	for i, info := range infos {
		files[i] = info.Path
	}
	return files, nil
}
