// Package syntax is the node catalog: the construct-specific node types for
// the Python grammar and the candidate table that maps tree-sitter tags onto
// them.
package syntax

import (
	"strings"

	"github.com/jward/tranp/internal/node"
)

// childOf returns the first direct child of n whose de-identified tag is
// tag, or nil.
func childOf(n node.Node, tag string) (node.Node, error) {
	children, err := node.Children(n)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Tag() == tag {
			return c, nil
		}
	}
	return nil, nil
}

// childrenOf returns every direct child of n whose tag is one of tags.
func childrenOf(n node.Node, tags ...string) ([]node.Node, error) {
	children, err := node.Children(n)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, c := range children {
		for _, t := range tags {
			if c.Tag() == t {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// nameOf returns the value of the first identifier child of n.
func nameOf(n node.Node) string {
	id, err := childOf(n, "identifier")
	if err != nil || id == nil {
		return ""
	}
	return node.Value(id)
}

// dotted joins the identifiers under n ("a.b.c").
func dotted(n node.Node) string {
	if n == nil {
		return ""
	}
	vals, err := n.Query().Values(n.Path())
	if err != nil {
		return ""
	}
	return strings.Join(vals, ".")
}

// unquote strips string prefixes and quotes from a Python string literal.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rbuRBUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// statements expands the block child of n into its statements.
func statements(n node.Node) ([]node.Node, error) {
	block, err := childOf(n, "block")
	if err != nil || block == nil {
		return nil, err
	}
	return node.Expand(block)
}
