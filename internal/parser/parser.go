// Package parser converts Python source into the generic entry tree using
// tree-sitter.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/jward/tranp/internal/entry"
)

// ErrSyntax is returned when the source contains a syntax error.
var ErrSyntax = errors.New("syntax error")

// extToLanguage maps file extensions to canonical language names.
var extToLanguage = map[string]string{
	".py":  "python",
	".pyi": "python",
}

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Parse parses src and converts the concrete syntax tree. Only named nodes
// are kept, comments are dropped, and anonymous tokens survive only in the
// "operator" field where they carry meaning.
func Parse(ctx context.Context, src []byte) (entry.Entry, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parser: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			pt := bad.StartPoint()
			return nil, fmt.Errorf("parser: line %d column %d: %w", pt.Row+1, pt.Column+1, ErrSyntax)
		}
		return nil, fmt.Errorf("parser: %w", ErrSyntax)
	}
	return convert(root, src), nil
}

func convert(n *sitter.Node, src []byte) entry.Entry {
	out := entry.New(n.Type())
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() {
			if n.FieldNameForChild(i) == "operator" {
				out.Append(entry.Leaf("operator", c.Type()))
			}
			continue
		}
		if c.Type() == "comment" {
			continue
		}
		out.Append(convert(c, src))
	}
	if !out.HasChild() {
		return entry.Leaf(n.Type(), n.Content(src))
	}
	return out
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsError() || c.IsMissing()) {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}
