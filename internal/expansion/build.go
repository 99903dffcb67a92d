package expansion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/finder"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

// build is the state of one expansion run.
type build struct {
	ctx context.Context
	e   *Expander

	mods  map[string]*module.Module
	deps  map[string][]string
	order []string

	staged   map[string]*reflection.Reflection
	owner    map[string]string   // fullname -> module that staged it
	buckets  map[string][]string // module -> fullnames in staging order
	deferred []deferral
	finder   *finder.Finder
}

type deferral struct {
	declared *reflection.Declared
	resolve  func() ([]*reflection.Reflection, error)
}

func newBuild(ctx context.Context, e *Expander) *build {
	b := &build{
		ctx:     ctx,
		e:       e,
		mods:    make(map[string]*module.Module),
		deps:    make(map[string][]string),
		staged:  make(map[string]*reflection.Reflection),
		owner:   make(map[string]string),
		buckets: make(map[string][]string),
	}
	b.finder = finder.New(b, e.core)
	return b
}

// Get makes the staging area the finder's symbol source.
func (b *build) Get(fullname string) (*reflection.Reflection, bool) {
	r, ok := b.staged[fullname]
	return r, ok
}

// stage registers r unless the name is taken. A redefinition inside the
// same module keeps the first declaration; a collision across modules is a
// logic error.
func (b *build) stage(mod, fullname string, r *reflection.Reflection) (bool, error) {
	if owner, ok := b.owner[fullname]; ok {
		if owner != mod {
			return false, fmt.Errorf("expansion: %s declared by %s and %s: %w", fullname, owner, mod, reflection.ErrLogic)
		}
		b.e.logger.Debug("redefinition ignored", "module", mod, "symbol", fullname)
		return false, nil
	}
	b.staged[fullname] = r
	b.owner[fullname] = mod
	b.buckets[mod] = append(b.buckets[mod], fullname)
	return true, nil
}

func entrypoint(mod *module.Module) (*syntax.Module, error) {
	root, err := mod.Entrypoint()
	if err != nil {
		return nil, err
	}
	m, ok := root.(*syntax.Module)
	if !ok {
		return nil, fmt.Errorf("expansion: %s: entrypoint is %s: %w", mod.ID, root.Kind(), reflection.ErrLogic)
	}
	return m, nil
}

// collect loads the import graph breadth-first from the core modules and
// root, then fixes the expansion order as a dependency post-order.
func (b *build) collect(root string) error {
	queue := append(append([]string(nil), b.e.core...), root)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := b.mods[id]; ok {
			continue
		}
		mod, err := b.e.modules.Load(b.ctx, id)
		if err != nil {
			return fmt.Errorf("expansion: collect %s: %w", id, err)
		}
		b.mods[id] = mod
		deps, err := b.dependencies(mod)
		if err != nil {
			return err
		}
		b.deps[id] = deps
		queue = append(queue, deps...)
	}

	visited := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, d := range b.deps[id] {
			visit(d)
		}
		b.order = append(b.order, id)
	}
	for _, id := range b.e.core {
		visit(id)
	}
	visit(root)
	b.e.logger.Debug("module order", "root", root, "order", strings.Join(b.order, ","))
	return nil
}

// dependencies lists the modules mod imports, in document order. A
// from-import name that is itself a module (from pkg import mod) counts as
// a dependency.
func (b *build) dependencies(mod *module.Module) ([]string, error) {
	m, err := entrypoint(mod)
	if err != nil {
		return nil, err
	}
	froms, plain, err := m.Imports()
	if err != nil {
		return nil, err
	}
	var deps []string
	for _, imp := range froms {
		target, err := b.target(mod, imp)
		if err != nil {
			return nil, err
		}
		deps = append(deps, target)
		bindings, err := imp.Bindings()
		if err != nil {
			return nil, err
		}
		for _, bind := range bindings {
			if bind.Name == "*" {
				continue
			}
			sub := target + "." + bind.Name
			if _, err := b.e.modules.Load(b.ctx, sub); err == nil {
				deps = append(deps, sub)
			} else if !errors.Is(err, module.ErrNotFound) {
				return nil, fmt.Errorf("expansion: collect %s: %w", sub, err)
			}
		}
	}
	for _, imp := range plain {
		bindings, err := imp.Bindings()
		if err != nil {
			return nil, err
		}
		for _, bind := range bindings {
			deps = append(deps, bind.Name)
		}
	}
	return deps, nil
}

func (b *build) target(mod *module.Module, imp *syntax.Import) (string, error) {
	src, level, err := imp.Source()
	if err != nil {
		return "", err
	}
	return module.Resolve(mod.ID, mod.IsPackage, src, level)
}

// declare stages one deferred origin per class-definition node.
func (b *build) declare() error {
	for _, id := range b.order {
		m, err := entrypoint(b.mods[id])
		if err != nil {
			return err
		}
		defs, err := m.Declarations()
		if err != nil {
			return err
		}
		for _, def := range defs {
			name, err := syntax.Fullyname(def)
			if err != nil {
				return err
			}
			d := reflection.NewOrigin(name, def)
			added, err := b.stage(id, name, d.Reflection())
			if err != nil {
				return err
			}
			if added {
				b.deferred = append(b.deferred, deferral{declared: d, resolve: b.originAttrs(def)})
			}
		}
	}
	if _, err := b.finder.Unknown(); err != nil {
		return fmt.Errorf("expansion: core modules must declare %s: %w", finder.UnknownName, err)
	}
	return nil
}

// bindImports wraps every imported symbol for the importing module. Imports
// whose source is not bound yet are retried until no progress is made.
func (b *build) bindImports() error {
	var pending []pendingImport
	for _, id := range b.order {
		mod := b.mods[id]
		m, err := entrypoint(mod)
		if err != nil {
			return err
		}
		froms, plain, err := m.Imports()
		if err != nil {
			return err
		}
		for _, imp := range froms {
			target, err := b.target(mod, imp)
			if err != nil {
				return err
			}
			bindings, err := imp.Bindings()
			if err != nil {
				return err
			}
			for _, bind := range bindings {
				sub := target + "." + bind.Name
				if _, ok := b.mods[sub]; ok {
					b.finder.AddModuleAlias(id, bind.Symbol(), sub)
					continue
				}
				pending = append(pending, pendingImport{module: id, target: target, binding: bind})
			}
		}
		for _, imp := range plain {
			bindings, err := imp.Bindings()
			if err != nil {
				return err
			}
			for _, bind := range bindings {
				b.finder.AddModuleAlias(id, bind.Symbol(), bind.Name)
			}
		}
	}

	for progress := true; progress && len(pending) > 0; {
		progress = false
		var rest []pendingImport
		for _, p := range pending {
			ok, err := b.bindImport(p)
			if err != nil {
				return err
			}
			if ok {
				progress = true
				continue
			}
			rest = append(rest, p)
		}
		pending = rest
	}

	var errs []error
	for _, p := range pending {
		errs = append(errs, fmt.Errorf("expansion: %s imports %s from %s: %w", p.module, p.binding.Name, p.target, finder.ErrNotFound))
	}
	return aggregate("binding imports", errs)
}

type pendingImport struct {
	module  string
	target  string
	binding syntax.Binding
}

func (b *build) bindImport(p pendingImport) (bool, error) {
	if p.binding.Name == "*" {
		return true, b.bindWildcard(p)
	}
	src, ok := b.staged[p.target+"."+p.binding.Name]
	if !ok {
		return false, nil
	}
	return true, b.importSymbol(p.module, src, p.binding.Symbol(), p.binding.Decl)
}

// bindWildcard imports every public top-level symbol of the target.
func (b *build) bindWildcard(p pendingImport) error {
	prefix := p.target + "."
	for _, name := range b.buckets[p.target] {
		local := strings.TrimPrefix(name, prefix)
		if local == name || strings.Contains(local, ".") || strings.HasPrefix(local, "_") {
			continue
		}
		if _, taken := b.staged[p.module+"."+local]; taken {
			continue
		}
		if err := b.importSymbol(p.module, b.staged[name], local, p.binding.Decl); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) importSymbol(mod string, src *reflection.Reflection, local string, decl node.Node) error {
	ref := mod + "." + local
	d, err := reflection.Import(src, ref, decl)
	if err != nil {
		return err
	}
	_, err = b.stage(mod, ref, d.Reflection())
	return err
}
