// Package astindex builds and serves the full-path → position map of a
// parse tree.
//
// The index is an arena of slots filled in pre-order. Each slot records the
// last slot occupied by its descendants, so GroupBy answers
// "{path} ∪ descendants(path)" by slicing one contiguous range instead of
// scanning the whole tree.
package astindex

import (
	"errors"
	"fmt"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
)

var (
	// ErrNotFound is returned for any lookup of an unindexed path.
	ErrNotFound = errors.New("path not found")

	// ErrOutOfOrder is returned by Add when a path arrives after positions
	// that are not its ancestors' descendants (i.e. not in pre-order) or is
	// already indexed.
	ErrOutOfOrder = errors.New("path added out of order")

	// ErrInvalidTag is returned by FullPathfy for a tag that is empty or
	// contains path syntax, which would alias another position's key.
	ErrInvalidTag = errors.New("invalid tag")
)

// Item pairs an indexed path with its position.
type Item struct {
	Path  fullpath.Path
	Entry entry.Entry
}

type slot struct {
	Item
	end int // last slot index covered by this path's subtree
}

// Index is the path → position map of one tree.
type Index struct {
	slots []slot
	byKey map[string]int
}

// New returns an empty index.
func New() *Index {
	return &Index{byKey: make(map[string]int)}
}

// Add indexes p. It must be called for a path before any of its
// descendants.
func (ix *Index) Add(p fullpath.Path, e entry.Entry) error {
	if _, ok := ix.byKey[p.Key()]; ok {
		return fmt.Errorf("astindex: add %q: already indexed: %w", p, ErrOutOfOrder)
	}
	ancestors := ix.indexedAncestors(p)
	last := len(ix.slots) - 1
	if len(ancestors) > 0 && ix.slots[ancestors[0]].end != last {
		return fmt.Errorf("astindex: add %q: %w", p, ErrOutOfOrder)
	}

	at := len(ix.slots)
	ix.slots = append(ix.slots, slot{Item: Item{Path: p, Entry: e}, end: at})
	ix.byKey[p.Key()] = at
	for _, a := range ancestors {
		ix.slots[a].end = at
	}
	return nil
}

// indexedAncestors returns the slots of p's indexed ancestors, nearest first.
func (ix *Index) indexedAncestors(p fullpath.Path) []int {
	var out []int
	for up := p.Parent(); !up.IsEmpty(); up = up.Parent() {
		if at, ok := ix.byKey[up.Key()]; ok {
			out = append(out, at)
		}
	}
	return out
}

// Exists reports whether p is indexed.
func (ix *Index) Exists(p fullpath.Path) bool {
	_, ok := ix.byKey[p.Key()]
	return ok
}

// By returns the position at p.
func (ix *Index) By(p fullpath.Path) (entry.Entry, error) {
	at, ok := ix.byKey[p.Key()]
	if !ok {
		return nil, fmt.Errorf("astindex: by %q: %w", p, ErrNotFound)
	}
	return ix.slots[at].Entry, nil
}

// GroupBy returns p followed by all of its indexed descendants in document
// order.
func (ix *Index) GroupBy(p fullpath.Path) ([]Item, error) {
	at, ok := ix.byKey[p.Key()]
	if !ok {
		return nil, fmt.Errorf("astindex: group by %q: %w", p, ErrNotFound)
	}
	group := ix.slots[at : ix.slots[at].end+1]
	items := make([]Item, len(group))
	for i, s := range group {
		items[i] = s.Item
	}
	return items, nil
}

// Children returns the direct indexed children of p in document order.
func (ix *Index) Children(p fullpath.Path) ([]Item, error) {
	group, err := ix.GroupBy(p)
	if err != nil {
		return nil, err
	}
	depth := p.Len() + 1
	var out []Item
	for _, it := range group[1:] {
		if it.Path.Len() == depth {
			out = append(out, it)
		}
	}
	return out, nil
}

// Paths returns every indexed path in document order.
func (ix *Index) Paths() []fullpath.Path {
	out := make([]fullpath.Path, len(ix.slots))
	for i, s := range ix.slots {
		out[i] = s.Path
	}
	return out
}

// Len is the number of indexed paths.
func (ix *Index) Len() int { return len(ix.slots) }

// Root returns the first indexed path, or the empty path for an empty index.
func (ix *Index) Root() fullpath.Path {
	if len(ix.slots) == 0 {
		return fullpath.Path{}
	}
	return ix.slots[0].Path
}
