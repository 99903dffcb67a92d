package module

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/parser"
	"github.com/jward/tranp/internal/query"
)

// Module is one loaded, parsed and indexed module.
type Module struct {
	ID        string
	Path      string
	IsPackage bool
	Root      entry.Entry
	Query     *query.Engine
}

// Entrypoint returns the module node.
func (m *Module) Entrypoint() (node.Node, error) {
	return m.Query.Root()
}

// Modules loads modules on demand and caches them by id until Unload.
type Modules struct {
	loader Loader
	table  *node.Table
	logger *slog.Logger
	cache  map[string]*Module
	order  []string
}

// Option configures Modules.
type Option func(*Modules)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(m *Modules) { m.logger = l }
}

// NewModules returns a module cache that parses sources from loader and
// materializes nodes through table.
func NewModules(loader Loader, table *node.Table, opts ...Option) *Modules {
	m := &Modules{
		loader: loader,
		table:  table,
		logger: slog.New(slog.DiscardHandler),
		cache:  make(map[string]*Module),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load returns the cached module or loads, parses and indexes it.
func (m *Modules) Load(ctx context.Context, id string) (*Module, error) {
	if mod, ok := m.cache[id]; ok {
		return mod, nil
	}
	src, err := m.loader.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	root, err := parser.Parse(ctx, src.Code)
	if err != nil {
		return nil, fmt.Errorf("module: %s (%s): %w", id, src.Path, err)
	}
	q, err := query.New(id, root, m.table)
	if err != nil {
		return nil, fmt.Errorf("module: %s (%s): %w", id, src.Path, err)
	}
	mod := &Module{ID: id, Path: src.Path, IsPackage: src.IsPackage, Root: root, Query: q}
	m.cache[id] = mod
	m.order = append(m.order, id)
	m.logger.Debug("module loaded", "module", id, "path", src.Path, "positions", q.Index().Len())
	return mod, nil
}

// Get returns a loaded module without loading.
func (m *Modules) Get(id string) (*Module, bool) {
	mod, ok := m.cache[id]
	return mod, ok
}

// Loaded returns the ids of loaded modules in load order.
func (m *Modules) Loaded() []string {
	return append([]string(nil), m.order...)
}

// Unload drops a module and its node cache.
func (m *Modules) Unload(id string) {
	mod, ok := m.cache[id]
	if !ok {
		return
	}
	mod.Query.Clear()
	delete(m.cache, id)
	for i, loaded := range m.order {
		if loaded == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
