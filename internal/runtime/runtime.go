// Package runtime compiles Risor scripts into node discriminators so the
// classification of parse-tree positions can be tuned without rebuilding.
//
// A discriminator script is a Risor expression evaluated once per probe.
// The probe is exposed through globals (tag, value, parent_tag, path,
// child_tags, ancestor_tags) and host functions (has_child, under,
// child_value, inside). The script's final value decides the match by truthiness.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
	"github.com/jward/tranp/internal/node"
)

// ScriptExt is the extension of discriminator scripts.
const ScriptExt = ".risor"

// Runtime evaluates discriminator scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS loads scripts from fsys instead of the scripts directory.
// Risor import statements resolve against the same filesystem.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger used for script failures and script log calls.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime reading scripts from scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile turns src into a matcher for candidates of kind. The script is
// evaluated once against an empty probe so syntax errors surface here
// rather than on first use. A script that fails at match time is logged
// and treated as a rejection.
func (r *Runtime) Compile(kind, src string) (node.Matcher, error) {
	empty := node.Probe{Path: fullpath.Root("module"), Entry: entry.New("module")}
	if _, err := r.match(context.Background(), kind, src, empty); err != nil {
		return nil, err
	}
	return func(p node.Probe) bool {
		ok, err := r.match(context.Background(), kind, src, p)
		if err != nil {
			r.logger.Warn("discriminator failed", "kind", kind, "path", p.Path.String(), "error", err)
			return false
		}
		return ok
	}, nil
}

// Match evaluates src against a single probe.
func (r *Runtime) Match(ctx context.Context, src string, p node.Probe) (bool, error) {
	return r.match(ctx, "<inline>", src, p)
}

func (r *Runtime) match(ctx context.Context, label, src string, p node.Probe) (bool, error) {
	res, err := r.eval(ctx, src, label, probeGlobals(p))
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}
	if res.Type() == object.ERROR {
		return false, fmt.Errorf("runtime: script %s: %s", label, res.Inspect())
	}
	return res.IsTruthy(), nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	res, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return res, nil
}

// buildImporter returns a Risor importer for the configured script source,
// or nil when neither an fs.FS nor a scripts directory is set.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{ScriptExt},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{ScriptExt},
		})
	}
	return nil
}

func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

// LoadScript reads a script relative to the configured source.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// Scripts reads every top-level <kind>.risor file and returns the sources
// keyed by kind. A missing scripts directory yields no scripts.
func (r *Runtime) Scripts() (map[string]string, error) {
	var (
		entries []fs.DirEntry
		err     error
	)
	switch {
	case r.fsys != nil:
		entries, err = fs.ReadDir(r.fsys, ".")
	case r.scriptsDir != "":
		entries, err = os.ReadDir(r.scriptsDir)
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
	default:
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("runtime: listing scripts: %w", err)
	}

	out := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ScriptExt {
			continue
		}
		src, err := r.LoadScript(e.Name())
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(e.Name(), ScriptExt)] = src
	}
	return out, nil
}

// Apply compiles each script and installs it as the discriminator of every
// candidate of that kind in table. It returns the number of candidates
// changed. Kinds are applied in sorted order; an unknown kind is an error.
func (r *Runtime) Apply(table *node.Table, scripts map[string]string) (int, error) {
	kinds := make([]string, 0, len(scripts))
	for k := range scripts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	known := table.Kinds()
	total := 0
	for _, kind := range kinds {
		if !known[kind] {
			return total, fmt.Errorf("runtime: no candidate of kind %q", kind)
		}
		m, err := r.Compile(kind, scripts[kind])
		if err != nil {
			return total, err
		}
		n := table.Override(kind, m)
		r.logger.Debug("discriminator override", "kind", kind, "candidates", n)
		total += n
	}
	return total, nil
}

// ApplyDir loads the configured scripts and applies them to table.
func (r *Runtime) ApplyDir(table *node.Table) (int, error) {
	scripts, err := r.Scripts()
	if err != nil {
		return 0, err
	}
	return r.Apply(table, scripts)
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
