package tranp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	goruntime "runtime"
	"sort"
	"strings"
	"sync"

	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/parser"
)

// Diagnostic is one module that failed to parse.
type Diagnostic struct {
	Module string
	Path   string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (%s): %v", d.Module, d.Path, d.Err)
}

// checkItem holds everything a check worker needs.
type checkItem struct {
	module string
	path   string
}

// checkResult is one module's outcome. An abort result fails the whole
// check instead of becoming a diagnostic.
type checkResult struct {
	item  checkItem
	err   error
	abort bool
}

// parseResult reports only syntax errors as diagnostics. Anything else the
// parser returns, such as a cancelled context, aborts the check.
func parseResult(item checkItem, err error) checkResult {
	return checkResult{item: item, err: err, abort: err != nil && !errors.Is(err, parser.ErrSyntax)}
}

// Check discovers every module under dir and parses them with a worker
// pool, returning the modules that fail to parse sorted by module id. Only
// syntax errors are reported as diagnostics; I/O failures and cancellation
// abort the check.
func (a *Analyzer) Check(ctx context.Context, dir string) ([]Diagnostic, error) {
	ids, err := module.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("tranp: check %s: %w", dir, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	loader := module.NewFileLoader(dir)
	items := make([]checkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, checkItem{module: id})
	}

	numWorkers := a.workers
	if numWorkers <= 0 {
		numWorkers = goruntime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	workCh := make(chan checkItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	resultCh := make(chan checkResult, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				src, err := loader.Load(ctx, item.module)
				if err != nil {
					resultCh <- checkResult{item: item, err: err, abort: true}
					continue
				}
				item.path = src.Path
				_, err = parser.Parse(ctx, src.Code)
				resultCh <- parseResult(item, err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var (
		diags []Diagnostic
		errs  []error
	)
	for res := range resultCh {
		switch {
		case res.err == nil:
		case res.abort:
			errs = append(errs, fmt.Errorf("check %s: %w", res.item.module, res.err))
		default:
			diags = append(diags, Diagnostic{Module: res.item.module, Path: relPath(dir, res.item.path), Err: res.err})
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("tranp: check had %d error(s): %w", len(errs), errs[0])
	}
	sort.Slice(diags, func(i, j int) bool { return diags[i].Module < diags[j].Module })
	a.logger.Info("check complete", "dir", dir, "modules", len(ids), "failed", len(diags))
	return diags, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
