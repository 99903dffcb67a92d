// Package entry defines the generic position tree consumed from the parser
// layer. Every higher layer (index, resolver, query engine) reads the tree
// only through the Entry interface.
package entry

// Entry is one node of the generic parse tree.
type Entry interface {
	// Tag is the grammar rule name of the position (e.g. "class_definition").
	Tag() string
	// HasChild reports whether the position has at least one child.
	HasChild() bool
	// Children returns the child positions in document order.
	Children() []Entry
	// IsTerminal reports whether the position is a token leaf.
	IsTerminal() bool
	// Value returns the token text of a terminal, "" otherwise.
	Value() string
	// IsEmpty reports whether the position carries neither children nor text.
	IsEmpty() bool
}

// Plain is an in-memory Entry. The parser adapter produces Plain trees and
// tests build them directly.
type Plain struct {
	tag      string
	value    string
	terminal bool
	children []Entry
}

// Compile-time check: *Plain satisfies Entry.
var _ Entry = (*Plain)(nil)

// New returns a non-terminal position with the given children.
func New(tag string, children ...Entry) *Plain {
	return &Plain{tag: tag, children: children}
}

// Leaf returns a terminal position carrying value.
func Leaf(tag, value string) *Plain {
	return &Plain{tag: tag, value: value, terminal: true}
}

func (p *Plain) Tag() string       { return p.tag }
func (p *Plain) HasChild() bool    { return len(p.children) > 0 }
func (p *Plain) Children() []Entry { return p.children }
func (p *Plain) IsTerminal() bool  { return p.terminal }
func (p *Plain) Value() string     { return p.value }

func (p *Plain) IsEmpty() bool {
	if p.terminal {
		return p.value == ""
	}
	return len(p.children) == 0
}

// Append adds children to a non-terminal position. Used by the parser
// adapter while converting a tree bottom-up.
func (p *Plain) Append(children ...Entry) {
	p.children = append(p.children, children...)
}

// Walk visits e and its descendants in pre-order. Returning false from fn
// skips the subtree of the visited entry.
func Walk(e Entry, fn func(Entry) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		Walk(c, fn)
	}
}
