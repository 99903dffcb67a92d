// Package module loads Python modules by dotted id, parses them and caches
// one query engine per module.
package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/tranp/internal/corelib"
)

// ErrNotFound is returned when no loader can supply a module id.
var ErrNotFound = errors.New("module not found")

// Source is the raw text of one module.
type Source struct {
	ID        string
	Path      string // file path, or "<memory>" for in-memory sources
	Code      []byte
	IsPackage bool // loaded from a package __init__
}

// Loader supplies module sources by dotted id.
type Loader interface {
	Load(ctx context.Context, id string) (Source, error)
}

// FileLoader resolves module ids against search roots: pkg.mod maps to
// <root>/pkg/mod.py, <root>/pkg/mod.pyi or <root>/pkg/mod/__init__.py.
type FileLoader struct {
	roots []string
}

// NewFileLoader returns a loader searching roots in order.
func NewFileLoader(roots ...string) *FileLoader {
	return &FileLoader{roots: roots}
}

func (l *FileLoader) Load(ctx context.Context, id string) (Source, error) {
	rel := filepath.Join(strings.Split(id, ".")...)
	for _, root := range l.roots {
		if err := ctx.Err(); err != nil {
			return Source{}, err
		}
		candidates := []struct {
			path string
			pkg  bool
		}{
			{filepath.Join(root, rel+".py"), false},
			{filepath.Join(root, rel+".pyi"), false},
			{filepath.Join(root, rel, "__init__.py"), true},
		}
		for _, c := range candidates {
			code, err := os.ReadFile(c.path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return Source{}, fmt.Errorf("module: load %s: %w", id, err)
			}
			return Source{ID: id, Path: c.path, Code: code, IsPackage: c.pkg}, nil
		}
	}
	return Source{}, fmt.Errorf("module: load %s: %w", id, ErrNotFound)
}

// SourceLoader serves modules from memory.
type SourceLoader struct {
	sources map[string]string
}

// NewSourceLoader returns a loader over id to source text.
func NewSourceLoader(sources map[string]string) *SourceLoader {
	l := &SourceLoader{sources: make(map[string]string, len(sources))}
	for id, src := range sources {
		l.sources[id] = src
	}
	return l
}

// Add registers or replaces a module source.
func (l *SourceLoader) Add(id, src string) { l.sources[id] = src }

func (l *SourceLoader) Load(ctx context.Context, id string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	src, ok := l.sources[id]
	if !ok {
		return Source{}, fmt.Errorf("module: load %s: %w", id, ErrNotFound)
	}
	return Source{ID: id, Path: "<memory>", Code: []byte(src)}, nil
}

// CoreLoader serves the embedded core modules.
func CoreLoader() Loader { return coreLoader{} }

type coreLoader struct{}

func (coreLoader) Load(ctx context.Context, id string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	code, ok := corelib.Source(id)
	if !ok {
		return Source{}, fmt.Errorf("module: load %s: %w", id, ErrNotFound)
	}
	return Source{ID: id, Path: "<core>/" + id + ".py", Code: code}, nil
}

// Chain tries each loader in order, moving on only when a loader reports
// ErrNotFound.
type Chain []Loader

func (c Chain) Load(ctx context.Context, id string) (Source, error) {
	for _, l := range c {
		src, err := l.Load(ctx, id)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Source{}, err
		}
	}
	return Source{}, fmt.Errorf("module: load %s: %w", id, ErrNotFound)
}

// Resolve turns a possibly relative import into an absolute module id.
// level is the number of leading dots; importer is the importing module and
// isPackage reports whether it was loaded from a package __init__.
func Resolve(importer string, isPackage bool, name string, level int) (string, error) {
	if level == 0 {
		return name, nil
	}
	parts := strings.Split(importer, ".")
	if !isPackage {
		parts = parts[:len(parts)-1]
	}
	drop := level - 1
	if drop > len(parts) {
		return "", fmt.Errorf("module: relative import beyond top-level package from %s", importer)
	}
	parts = parts[:len(parts)-drop]
	if name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("module: relative import beyond top-level package from %s", importer)
	}
	return strings.Join(parts, "."), nil
}
