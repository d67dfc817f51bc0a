// Package batch runs a compiled rewrite engine over many files. Files are
// independent: a parse failure is isolated to its file, and a bounded worker
// pool processes large directory trees concurrently while each file's pass
// stays single-threaded.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gofex/gofex"
	"github.com/gofex/gofex/internal/source"
	"github.com/gofex/gofex/internal/subst"
)

// FileResult is the outcome of rewriting one file.
type FileResult struct {
	Path     string
	Original string
	Result   *subst.Result
	Err      error
}

// Changed reports whether the rewrite produced different text.
func (r FileResult) Changed() bool {
	return r.Err == nil && r.Result != nil && r.Result.Text != r.Original
}

// Options control a batch run.
type Options struct {
	// Recursive descends into directories; without it a directory
	// argument is an error.
	Recursive bool
	// Progress draws a progress bar for multi-file runs.
	Progress bool
}

var desiredExtensions = map[string]bool{
	".go":  true,
	".gno": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// Expand resolves the argument paths to the list of source files to process,
// in sorted order.
func Expand(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		if !recursive {
			return nil, fmt.Errorf("%s is a directory (use -R to recurse)", path)
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && hasDesiredExtension(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Process rewrites every file with the engine. Per-file failures are
// recorded in the results, not returned: one bad file never blocks the rest.
func Process(ctx context.Context, logger *zap.Logger, engine *gofex.Engine, paths []string, opts Options) ([]FileResult, error) {
	files, err := Expand(paths, opts.Recursive)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress && len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("rewriting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount())
	}

	results := make([]FileResult, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	for i, path := range files {
		select {
		case <-ctx.Done():
			// Let in-flight workers finish before the results slice
			// escapes.
			wg.Wait()
			return nil, ctx.Err()
		default:
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processFile(logger, engine, path)
			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, path)
	}
	wg.Wait()
	if bar != nil {
		fmt.Println()
	}
	return results, nil
}

func processFile(logger *zap.Logger, engine *gofex.Engine, path string) FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	src := string(content)
	res, err := engine.RewriteSource(path, src)
	if err != nil {
		var limitErr *subst.IterationLimitError
		var parseErr *source.ParseError
		switch {
		case errors.As(err, &limitErr):
			// The last completed pass is still valid output.
			if logger != nil {
				logger.Warn("iteration cap reached", zap.String("file", path), zap.Int("limit", limitErr.Limit))
			}
		case errors.As(err, &parseErr):
			if logger != nil {
				logger.Error("skipping unparsable file", zap.String("file", path), zap.Error(err))
			}
			return FileResult{Path: path, Original: src, Err: err}
		default:
			return FileResult{Path: path, Original: src, Err: err}
		}
	}
	return FileResult{Path: path, Original: src, Result: res}
}

// WriteInPlace writes changed results back to their files.
func WriteInPlace(results []FileResult) error {
	for _, r := range results {
		if !r.Changed() {
			continue
		}
		info, err := os.Stat(r.Path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(r.Path, []byte(r.Result.Text), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", r.Path, err)
		}
	}
	return nil
}
