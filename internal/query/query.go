// Package query implements node.Query over one module's parse tree: an
// AST index for structure and a resolver for node identity.
package query

import (
	"fmt"

	"github.com/jward/tranp/internal/astindex"
	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/resolver"
)

// Engine is the query engine of one module.
type Engine struct {
	module   string
	index    *astindex.Index
	resolver *resolver.Resolver
}

// Compile-time check: *Engine satisfies node.Query.
var _ node.Query = (*Engine)(nil)

// New indexes root and returns an Engine resolving nodes through table.
func New(module string, root entry.Entry, table *node.Table, opts ...astindex.Option) (*Engine, error) {
	ix, err := astindex.FullPathfy(root, opts...)
	if err != nil {
		return nil, fmt.Errorf("query: index %s: %w", module, err)
	}
	return NewFromIndex(module, ix, table), nil
}

// NewFromIndex returns an Engine over a prebuilt index.
func NewFromIndex(module string, ix *astindex.Index, table *node.Table) *Engine {
	return &Engine{
		module:   module,
		index:    ix,
		resolver: resolver.New(table),
	}
}

// Module is the id of the module this engine serves.
func (e *Engine) Module() string { return e.module }

// Index exposes the underlying AST index.
func (e *Engine) Index() *astindex.Index { return e.index }

// Root returns the node at the index root.
func (e *Engine) Root() (node.Node, error) {
	return e.By(e.index.Root())
}

// Clear drops the node identity cache.
func (e *Engine) Clear() { e.resolver.Clear() }

func (e *Engine) Exists(p fullpath.Path) bool {
	return e.index.Exists(p)
}

func (e *Engine) Entry(p fullpath.Path) (entry.Entry, error) {
	return e.index.By(p)
}

func (e *Engine) By(p fullpath.Path) (node.Node, error) {
	en, err := e.index.By(p)
	if err != nil {
		return nil, err
	}
	return e.resolver.Resolve(e, e.module, p, en)
}

// Parent walks upward until a segment resolves to a distinct node type,
// skipping pure grammar scaffolding.
func (e *Engine) Parent(via fullpath.Path) (node.Node, error) {
	if !e.index.Exists(via) {
		return nil, fmt.Errorf("query: parent of %q: %w", via, astindex.ErrNotFound)
	}
	for up := via.Parent(); !up.IsEmpty(); up = up.Parent() {
		en, err := e.index.By(up)
		if err != nil {
			continue
		}
		if e.resolver.Resolvable(node.Probe{Path: up, Entry: en}) {
			return e.By(up)
		}
	}
	return nil, fmt.Errorf("query: parent of %q: no resolvable ancestor: %w", via, astindex.ErrNotFound)
}

// Ancestor walks upward until a de-identified segment equals tag.
func (e *Engine) Ancestor(via fullpath.Path, tag string) (node.Node, error) {
	if !e.index.Exists(via) {
		return nil, fmt.Errorf("query: ancestor of %q: %w", via, astindex.ErrNotFound)
	}
	for up := via.Parent(); !up.IsEmpty(); up = up.Parent() {
		if up.Tag() == tag && e.index.Exists(up) {
			return e.By(up)
		}
	}
	return nil, fmt.Errorf("query: ancestor %q of %q: %w", tag, via, astindex.ErrNotFound)
}

// Siblings returns the positions sharing via's structural parent, excluding
// via itself.
func (e *Engine) Siblings(via fullpath.Path) ([]node.Node, error) {
	if !e.index.Exists(via) {
		return nil, fmt.Errorf("query: siblings of %q: %w", via, astindex.ErrNotFound)
	}
	parent := via.Parent()
	if parent.IsEmpty() || !e.index.Exists(parent) {
		return nil, nil
	}
	items, err := e.index.Children(parent)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, it := range items {
		if it.Path.Equal(via) {
			continue
		}
		n, err := e.resolver.Resolve(e, e.module, it.Path, it.Entry)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Children returns via's direct children.
func (e *Engine) Children(via fullpath.Path) ([]node.Node, error) {
	items, err := e.index.Children(via)
	if err != nil {
		return nil, err
	}
	out := make([]node.Node, 0, len(items))
	for _, it := range items {
		n, err := e.resolver.Resolve(e, e.module, it.Path, it.Entry)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Expand returns the flattened set of meaningful nodes under via. Descent
// stops at any position that resolves to a distinct node type; otherwise it
// continues down to terminal leaves, which resolve to the fallback.
func (e *Engine) Expand(via fullpath.Path) ([]node.Node, error) {
	items, err := e.index.Children(via)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, it := range items {
		probe := node.Probe{Path: it.Path, Entry: it.Entry}
		if e.resolver.Resolvable(probe) || it.Entry.IsTerminal() {
			n, err := e.resolver.Resolve(e, e.module, it.Path, it.Entry)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
			continue
		}
		under, err := e.Expand(it.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, under...)
	}
	return out, nil
}

// Values returns every terminal value at or under via in document order.
func (e *Engine) Values(via fullpath.Path) ([]string, error) {
	items, err := e.index.GroupBy(via)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, it := range items {
		if it.Entry.IsTerminal() {
			out = append(out, it.Entry.Value())
		}
	}
	return out, nil
}
