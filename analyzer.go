package tranp

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jward/tranp/internal/corelib"
	"github.com/jward/tranp/internal/expansion"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/runtime"
	"github.com/jward/tranp/internal/syntax"
)

// Analyzer orchestrates module loading, discriminator overrides and module
// expansion. It is safe to call Analyze repeatedly; every call gets its own
// session-local caches.
type Analyzer struct {
	roots          []string
	loaders        []module.Loader
	core           []string
	scriptsDir     string
	scriptsFS      fs.FS
	discriminators map[string]string
	workers        int
	logger         *slog.Logger

	table *node.Table
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSourceRoots adds file system search roots for module ids.
func WithSourceRoots(roots ...string) Option {
	return func(a *Analyzer) {
		a.roots = append(a.roots, roots...)
	}
}

// WithLoader adds a module loader consulted after the source roots and
// before the embedded core modules.
func WithLoader(l module.Loader) Option {
	return func(a *Analyzer) {
		a.loaders = append(a.loaders, l)
	}
}

// WithSources serves modules from memory, keyed by dotted id.
func WithSources(sources map[string]string) Option {
	return WithLoader(module.NewSourceLoader(sources))
}

// WithCore replaces the core modules whose declarations are visible
// everywhere. The default is the embedded typing and builtins modules.
func WithCore(ids ...string) Option {
	return func(a *Analyzer) {
		a.core = ids
	}
}

// WithScriptsDir loads discriminator overrides from <dir>/<kind>.risor.
func WithScriptsDir(dir string) Option {
	return func(a *Analyzer) {
		a.scriptsDir = dir
	}
}

// WithScriptsFS loads discriminator overrides from fsys instead of disk.
// This enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(a *Analyzer) {
		a.scriptsFS = fsys
	}
}

// WithDiscriminator overrides the discriminator of every candidate of kind
// with a Risor expression. Explicit overrides win over script files.
func WithDiscriminator(kind, src string) Option {
	return func(a *Analyzer) {
		if a.discriminators == nil {
			a.discriminators = make(map[string]string)
		}
		a.discriminators[kind] = src
	}
}

// WithWorkers bounds the worker pool used by Check. Zero means one worker
// per CPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an Analyzer and installs any discriminator overrides into a
// fresh node catalog.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		core:   corelib.Modules(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.table = syntax.Catalog()
	if err := a.applyOverrides(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) applyOverrides() error {
	if a.scriptsDir == "" && a.scriptsFS == nil && len(a.discriminators) == 0 {
		return nil
	}

	rtOpts := []runtime.RuntimeOption{runtime.WithLogger(a.logger)}
	if a.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(a.scriptsFS))
	}
	rt := runtime.NewRuntime(a.scriptsDir, rtOpts...)

	scripts, err := rt.Scripts()
	if err != nil {
		return fmt.Errorf("tranp: load discriminators: %w", err)
	}
	for kind, src := range a.discriminators {
		scripts[kind] = src
	}
	n, err := rt.Apply(a.table, scripts)
	if err != nil {
		return fmt.Errorf("tranp: apply discriminators: %w", err)
	}
	a.logger.Debug("discriminators installed", "scripts", len(scripts), "candidates", n)
	return nil
}

// Core returns the configured core module ids.
func (a *Analyzer) Core() []string {
	return append([]string(nil), a.core...)
}

// loader chains the source roots, extra loaders and the embedded core.
func (a *Analyzer) loader() module.Loader {
	var chain module.Chain
	if len(a.roots) > 0 {
		chain = append(chain, module.NewFileLoader(a.roots...))
	}
	chain = append(chain, a.loaders...)
	return append(chain, module.CoreLoader())
}

// Analyze expands root and everything it imports into a session. On error
// no partial session is returned.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Session, error) {
	mods := module.NewModules(a.loader(), a.table, module.WithLogger(a.logger))
	exp := expansion.New(mods,
		expansion.WithCore(a.core...),
		expansion.WithLogger(a.logger),
	)
	program, err := exp.Expand(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("tranp: analyze %s: %w", root, err)
	}
	return &Session{program: program, modules: mods, core: a.Core()}, nil
}
