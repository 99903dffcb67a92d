// Package expansion builds the whole-program symbol table: it collects the
// import graph, declares one origin per class-definition node, binds
// imports and declarations, and finalizes deferred origin attrs.
package expansion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jward/tranp/internal/corelib"
	"github.com/jward/tranp/internal/finder"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/reflection"
)

// Expander runs module expansion over a module cache.
type Expander struct {
	modules *module.Modules
	core    []string
	logger  *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithCore replaces the core modules. They are expanded first, in order,
// and their top-level declarations are visible everywhere.
func WithCore(ids ...string) Option {
	return func(e *Expander) { e.core = ids }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// New returns an Expander loading modules through modules.
func New(modules *module.Modules, opts ...Option) *Expander {
	e := &Expander{
		modules: modules,
		core:    corelib.Modules(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Core returns the configured core modules.
func (e *Expander) Core() []string { return append([]string(nil), e.core...) }

// Program is the result of one expansion.
type Program struct {
	Root    string
	Order   []string // module ids: core first, then dependency post-order
	Table   *reflection.Table
	Finder  *finder.Finder
	Modules map[string]*module.Module
}

// Expand builds the symbol table for root and everything it imports. On
// error no partial program is returned.
func (e *Expander) Expand(ctx context.Context, root string) (*Program, error) {
	b := newBuild(ctx, e)
	steps := []struct {
		name string
		run  func() error
	}{
		{"collect", func() error { return b.collect(root) }},
		{"declare", b.declare},
		{"imports", b.bindImports},
		{"declarations", b.bindDeclarations},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return nil, err
		}
		e.logger.Debug("expansion step done", "step", s.name, "root", root, "symbols", len(b.staged))
	}

	table, err := b.assemble()
	if err != nil {
		return nil, err
	}
	e.logger.Info("expansion complete", "root", root, "modules", len(b.order), "symbols", table.Len())
	return &Program{
		Root:    root,
		Order:   b.order,
		Table:   table,
		Finder:  b.finder.WithSymbols(table),
		Modules: b.mods,
	}, nil
}

// assemble registers the staged symbols in module order and runs the
// deferred origin attrs.
func (b *build) assemble() (*reflection.Table, error) {
	table := reflection.NewTable()
	for _, id := range b.order {
		for _, name := range b.buckets[id] {
			if err := table.Add(name, b.staged[name]); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range b.deferred {
		table.Defer(d.declared, d.resolve)
	}
	if err := table.Finalize(); err != nil {
		return nil, fmt.Errorf("expansion: %w", err)
	}
	return table, nil
}

// aggregate folds collected errors in the "had N error(s)" style.
func aggregate(stage string, errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return fmt.Errorf("expansion: %s had %d error(s): %w", stage, len(errs), errs[0])
}
