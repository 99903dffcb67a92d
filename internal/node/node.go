// Package node defines the contracts shared by the resolver, the query
// engine and the node catalog: the Query interface every node navigates
// through, the Node interface and its embeddable Base, and the candidate
// table that drives tag-based materialization.
package node

import (
	"strings"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
)

// Query is the navigation surface of one module's parse tree. Every
// operation keys off a full path and fails with astindex.ErrNotFound when
// the base path is not indexed.
type Query interface {
	Module() string
	Exists(p fullpath.Path) bool
	By(p fullpath.Path) (Node, error)
	Parent(via fullpath.Path) (Node, error)
	Ancestor(via fullpath.Path, tag string) (Node, error)
	Siblings(via fullpath.Path) ([]Node, error)
	Children(via fullpath.Path) ([]Node, error)
	Expand(via fullpath.Path) ([]Node, error)
	Values(via fullpath.Path) ([]string, error)
	Entry(p fullpath.Path) (entry.Entry, error)
}

// Node is a semantically typed wrapper around one position.
type Node interface {
	Query() Query
	Module() string
	Path() fullpath.Path
	Tag() string
	Kind() string
}

// Base carries the (query, module, path) binding. Catalog node types embed
// it and add construct-specific accessors.
type Base struct {
	query  Query
	module string
	path   fullpath.Path
	kind   string
}

// NewBase binds a node to its query engine and path.
func NewBase(q Query, module string, p fullpath.Path, kind string) Base {
	return Base{query: q, module: module, path: p, kind: kind}
}

func (b Base) Query() Query        { return b.query }
func (b Base) Module() string      { return b.module }
func (b Base) Path() fullpath.Path { return b.path }
func (b Base) Kind() string        { return b.kind }
func (b Base) Tag() string         { return b.path.Tag() }
func (b Base) String() string      { return b.module + ":" + b.path.Key() }

// Same reports whether two nodes address the same position. Referential
// identity within one engine implies Same, but Same also holds across a
// cache clear.
func Same(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Module() == b.Module() && a.Path().Equal(b.Path())
}

// Value returns the terminal value of n, or "" when n is not terminal.
func Value(n Node) string {
	e, err := n.Query().Entry(n.Path())
	if err != nil || !e.IsTerminal() {
		return ""
	}
	return e.Value()
}

// Parent is a convenience for n.Query().Parent(n.Path()).
func Parent(n Node) (Node, error) {
	return n.Query().Parent(n.Path())
}

// Children is a convenience for n.Query().Children(n.Path()).
func Children(n Node) ([]Node, error) {
	return n.Query().Children(n.Path())
}

// Expand is a convenience for n.Query().Expand(n.Path()).
func Expand(n Node) ([]Node, error) {
	return n.Query().Expand(n.Path())
}

// Text joins every terminal value under n with no separator.
func Text(n Node) string {
	vals, err := n.Query().Values(n.Path())
	if err != nil {
		return ""
	}
	return strings.Join(vals, "")
}
