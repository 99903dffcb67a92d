// Package resolver materializes typed nodes from tree positions.
//
// For a position it walks the tag's ordered candidates, runs each
// discriminator against a cheap probe and constructs the first candidate
// that accepts. Constructed nodes are cached by path so one path yields one
// referentially stable node until Clear.
package resolver

import (
	"errors"
	"fmt"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
	"github.com/jward/tranp/internal/node"
)

// ErrUnresolvedNode is returned when no candidate accepts a position and the
// table has no fallback.
var ErrUnresolvedNode = errors.New("unresolved node")

// Resolver owns the identity cache of one query engine.
type Resolver struct {
	table *node.Table
	cache map[string]node.Node
}

// New returns a Resolver over table.
func New(table *node.Table) *Resolver {
	return &Resolver{
		table: table,
		cache: make(map[string]node.Node),
	}
}

// Classification is the outcome of discriminating one probe.
type Classification struct {
	Candidate node.Candidate
	Fallback  bool
}

// Classify selects the candidate for the probe without constructing it.
func (r *Resolver) Classify(p node.Probe) (Classification, error) {
	for _, c := range r.table.Candidates(p.Tag()) {
		if c.Accepts(p) {
			return Classification{Candidate: c}, nil
		}
	}
	if fb, ok := r.table.FallbackCandidate(); ok {
		return Classification{Candidate: fb, Fallback: true}, nil
	}
	return Classification{}, fmt.Errorf("resolver: tag %q at %q: %w", p.Tag(), p.Path, ErrUnresolvedNode)
}

// Resolvable reports whether the probe materializes to a distinct node
// type, i.e. a mapped candidate accepts it.
func (r *Resolver) Resolvable(p node.Probe) bool {
	cls, err := r.Classify(p)
	return err == nil && !cls.Fallback
}

// Resolve returns the node at path, constructing and caching it on a miss.
func (r *Resolver) Resolve(q node.Query, module string, p fullpath.Path, e entry.Entry) (node.Node, error) {
	if n, ok := r.cache[p.Key()]; ok {
		return n, nil
	}
	cls, err := r.Classify(node.Probe{Path: p, Entry: e})
	if err != nil {
		return nil, err
	}
	n := cls.Candidate.New(node.NewBase(q, module, p, cls.Candidate.Kind))
	r.cache[p.Key()] = n
	return n, nil
}

// Cached returns the cached node at path, if any.
func (r *Resolver) Cached(p fullpath.Path) (node.Node, bool) {
	n, ok := r.cache[p.Key()]
	return n, ok
}

// Clear drops the identity cache. Required between independent analyses of
// the same tree.
func (r *Resolver) Clear() {
	r.cache = make(map[string]node.Node)
}

// Len is the number of cached nodes.
func (r *Resolver) Len() int { return len(r.cache) }
