package syntax

import (
	"strings"

	"github.com/jward/tranp/internal/node"
)

type assign struct{ node.Base }

// Receivers returns the assignment targets. Tuple targets are flattened.
func (a assign) Receivers() ([]node.Node, error) {
	children, err := node.Children(a)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	left := children[0]
	switch left.Tag() {
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "expression_list":
		return node.Expand(left)
	}
	return []node.Node{left}, nil
}

// Value is the right-hand side, or nil for a bare annotation. A chained
// assignment (a = b = 1) yields the nested assignment.
func (a assign) Value() (node.Node, error) {
	children, err := node.Children(a)
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		if c.Tag() != "type" {
			return c, nil
		}
	}
	return nil, nil
}

// AnnoAssign is an annotated assignment: x: int = 1.
type AnnoAssign struct{ assign }

// Annotation is the declared type.
func (a *AnnoAssign) Annotation() (*Type, error) {
	t, err := childOf(a, "type")
	if err != nil || t == nil {
		return nil, err
	}
	typ, _ := t.(*Type)
	return typ, nil
}

// MoveAssign is a plain assignment: x = 1.
type MoveAssign struct{ assign }

// Binding is one name an import statement brings into scope.
type Binding struct {
	Name  string    // imported name or dotted module path; "*" for a wildcard
	Alias string    // as-name, empty when none
	Decl  node.Node // the imported name node
}

// Symbol is the name the binding is visible as in the importing module.
func (b Binding) Symbol() string {
	if b.Alias != "" {
		return b.Alias
	}
	return b.Name
}

// ImportName is a dotted or aliased name inside an import statement.
type ImportName struct{ node.Base }

// Name is the dotted imported name.
func (n *ImportName) Name() string {
	if n.Tag() == "aliased_import" {
		d, err := childOf(n, "dotted_name")
		if err != nil || d == nil {
			return ""
		}
		return dotted(d)
	}
	return dotted(n)
}

// Alias is the as-name, or "".
func (n *ImportName) Alias() string {
	if n.Tag() != "aliased_import" {
		return ""
	}
	return nameOf(n)
}

// Import is a from-import: from pkg.mod import a, b as c.
type Import struct{ node.Base }

// Source returns the dotted module path and the relative level (the number
// of leading dots).
func (i *Import) Source() (string, int, error) {
	children, err := node.Children(i)
	if err != nil || len(children) == 0 {
		return "", 0, err
	}
	first := children[0]
	if first.Tag() != "relative_import" {
		return dotted(first), 0, nil
	}
	parts, err := node.Children(first)
	if err != nil {
		return "", 0, err
	}
	var mod string
	level := 0
	for _, p := range parts {
		switch p.Tag() {
		case "import_prefix":
			level = strings.Count(node.Text(p), ".")
		case "dotted_name":
			mod = dotted(p)
		}
	}
	return mod, level, nil
}

// Bindings returns the imported names in order.
func (i *Import) Bindings() ([]Binding, error) {
	children, err := node.Children(i)
	if err != nil || len(children) < 2 {
		return nil, err
	}
	var out []Binding
	for _, c := range children[1:] {
		switch n := c.(type) {
		case *ImportName:
			out = append(out, Binding{Name: n.Name(), Alias: n.Alias(), Decl: n})
		default:
			if c.Tag() == "wildcard_import" {
				out = append(out, Binding{Name: "*", Decl: c})
			}
		}
	}
	return out, nil
}

// ModuleImport is a plain import: import pkg.mod as m.
type ModuleImport struct{ node.Base }

// Bindings returns one binding per imported module.
func (i *ModuleImport) Bindings() ([]Binding, error) {
	children, err := node.Children(i)
	if err != nil {
		return nil, err
	}
	var out []Binding
	for _, c := range children {
		if n, ok := c.(*ImportName); ok {
			out = append(out, Binding{Name: n.Name(), Alias: n.Alias(), Decl: n})
		}
	}
	return out, nil
}
