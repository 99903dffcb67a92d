package syntax

import (
	"github.com/jward/tranp/internal/node"
)

// Generic is a parameterized type reference: list[int] in an annotation or
// Generic[T] in a class base list.
type Generic interface {
	node.Node
	Template() (node.Node, error)
	Arguments() ([]node.Node, error)
}

// Type wraps an annotation.
type Type struct{ node.Base }

// Inner is the annotated type expression.
func (t *Type) Inner() (node.Node, error) {
	children, err := node.Children(t)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

// Unwrap returns the inner expression of a Type, or n itself.
func Unwrap(n node.Node) node.Node {
	if t, ok := n.(*Type); ok {
		if inner, err := t.Inner(); err == nil && inner != nil {
			return Unwrap(inner)
		}
	}
	return n
}

// TypeName is a bare type name in an annotation.
type TypeName struct{ node.Base }

func (t *TypeName) Name() string { return node.Value(t) }

// GenericType is list[int] in grammars that produce generic_type.
type GenericType struct{ node.Base }

func (g *GenericType) Template() (node.Node, error) {
	children, err := node.Children(g)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

func (g *GenericType) Arguments() ([]node.Node, error) {
	params, err := childOf(g, "type_parameter")
	if err != nil || params == nil {
		return nil, err
	}
	return node.Children(params)
}

// Subscript is x[y, z]. In annotations and base lists it is a generic type
// reference.
type Subscript struct{ node.Base }

func (s *Subscript) Template() (node.Node, error) {
	children, err := node.Children(s)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

func (s *Subscript) Arguments() ([]node.Node, error) {
	children, err := node.Children(s)
	if err != nil || len(children) < 2 {
		return nil, err
	}
	return children[1:], nil
}

// UnionType is A | B in an annotation, from either union_type or a "|"
// binary_operator.
type UnionType struct{ node.Base }

// Members flattens nested unions into their member types in order.
func (u *UnionType) Members() ([]node.Node, error) {
	return unionMembers(u)
}

func unionMembers(n node.Node) ([]node.Node, error) {
	children, err := node.Children(n)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, c := range children {
		if c.Tag() == "operator" {
			continue
		}
		inner := Unwrap(c)
		if IsUnion(inner) {
			nested, err := unionMembers(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		out = append(out, inner)
	}
	return out, nil
}

// IsUnion reports a union type or a "|" operator expression.
func IsUnion(n node.Node) bool {
	switch v := n.(type) {
	case *UnionType:
		return true
	case *Operator:
		return v.Operator() == "|"
	}
	return false
}

// Members returns the operand types of a union node.
func Members(n node.Node) ([]node.Node, error) {
	return unionMembers(n)
}

// NullType is None in an annotation.
type NullType struct{ node.Base }

// ForwardRef is a string annotation naming a type declared later: 'A'.
type ForwardRef struct{ node.Base }

// Reference is the quoted type name.
func (f *ForwardRef) Reference() string { return unquote(node.Text(f)) }

// RelayType is a dotted type reference: mod.A.
type RelayType struct{ node.Base }

func (r *RelayType) Receiver() (node.Node, error) {
	children, err := node.Children(r)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

func (r *RelayType) Member() string { return lastName(r) }

// Dotted is the full dotted reference.
func (r *RelayType) Dotted() string { return dotted(r) }
