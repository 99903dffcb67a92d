package node

import (
	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
)

// Probe is the borrowed view a discriminator inspects. It exposes the
// position's own tag, value, subtree and path shape; it never materializes
// ancestor nodes.
type Probe struct {
	Path  fullpath.Path
	Entry entry.Entry
}

// Tag is the tag of the probed position.
func (p Probe) Tag() string { return p.Entry.Tag() }

// Value is the terminal value of the probed position.
func (p Probe) Value() string { return p.Entry.Value() }

// ParentTag is the de-identified tag one segment up the path.
func (p Probe) ParentTag() string {
	return p.Path.Parent().Tag()
}

// AncestorTags returns the de-identified tags above the position, nearest
// first.
func (p Probe) AncestorTags() []string {
	segs := p.Path.Segments()
	out := make([]string, 0, len(segs))
	for i := len(segs) - 2; i >= 0; i-- {
		out = append(out, segs[i].Tag)
	}
	return out
}

// Under reports whether any ancestor segment carries tag.
func (p Probe) Under(tag string) bool {
	for _, t := range p.AncestorTags() {
		if t == tag {
			return true
		}
	}
	return false
}

// ChildTags returns the tags of the direct children in document order.
func (p Probe) ChildTags() []string {
	children := p.Entry.Children()
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = c.Tag()
	}
	return out
}

// Child returns the first direct child with tag.
func (p Probe) Child(tag string) (entry.Entry, bool) {
	for _, c := range p.Entry.Children() {
		if c.Tag() == tag {
			return c, true
		}
	}
	return nil, false
}

// HasChild reports whether a direct child carries tag.
func (p Probe) HasChild(tag string) bool {
	_, ok := p.Child(tag)
	return ok
}

// Matcher is a discriminator: a pure predicate over a probe.
type Matcher func(Probe) bool

// Factory constructs a node type bound to base.
type Factory func(base Base) Node

// Candidate is one node type a tag may materialize to.
type Candidate struct {
	Kind  string
	Match Matcher // nil accepts every probe
	New   Factory
}

// Accepts runs the discriminator.
func (c Candidate) Accepts(p Probe) bool {
	return c.Match == nil || c.Match(p)
}

// Table maps tags to ordered candidates plus one fallback used for
// unmapped tags.
type Table struct {
	byTag    map[string][]Candidate
	fallback *Candidate
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byTag: make(map[string][]Candidate)}
}

// Register appends candidates for tag, preserving order.
func (t *Table) Register(tag string, candidates ...Candidate) *Table {
	t.byTag[tag] = append(t.byTag[tag], candidates...)
	return t
}

// Fallback sets the candidate used when a tag is unmapped.
func (t *Table) Fallback(c Candidate) *Table {
	t.fallback = &c
	return t
}

// Candidates returns the ordered candidates for tag.
func (t *Table) Candidates(tag string) []Candidate {
	return t.byTag[tag]
}

// FallbackCandidate returns the fallback, if configured.
func (t *Table) FallbackCandidate() (Candidate, bool) {
	if t.fallback == nil {
		return Candidate{}, false
	}
	return *t.fallback, true
}

// Override replaces the discriminator of every candidate of the given kind
// and reports how many were changed.
func (t *Table) Override(kind string, m Matcher) int {
	n := 0
	for tag, cands := range t.byTag {
		for i := range cands {
			if cands[i].Kind == kind {
				cands[i].Match = m
				n++
			}
		}
		t.byTag[tag] = cands
	}
	return n
}

// Kinds returns the set of registered candidate kinds.
func (t *Table) Kinds() map[string]bool {
	out := make(map[string]bool)
	for _, cands := range t.byTag {
		for _, c := range cands {
			out[c.Kind] = true
		}
	}
	return out
}
