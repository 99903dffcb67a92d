package syntax

import (
	"strings"

	"github.com/jward/tranp/internal/node"
)

// Name is an identifier outside annotations and parameter lists.
type Name struct{ node.Base }

func (n *Name) Name() string { return node.Value(n) }

// Attribute is a member access: a.b.
type Attribute struct{ node.Base }

func (a *Attribute) Receiver() (node.Node, error) {
	children, err := node.Children(a)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

func (a *Attribute) Member() string { return lastName(a) }

// Dotted is the full dotted text when the receiver is a plain name chain.
func (a *Attribute) Dotted() string { return dotted(a) }

// Call is a call expression.
type Call struct{ node.Base }

func (c *Call) Callee() (node.Node, error) {
	children, err := node.Children(c)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	return children[0], nil
}

func (c *Call) Arguments() ([]node.Node, error) {
	args, err := childOf(c, "argument_list")
	if err != nil || args == nil {
		return nil, err
	}
	return node.Children(args)
}

// Literal is a constant or collection display.
type Literal struct{ node.Base }

var literalClasses = map[string]string{
	"integer":                  "int",
	"float":                    "float",
	"string":                   "str",
	"concatenated_string":      "str",
	"true":                     "bool",
	"false":                    "bool",
	"none":                     "NoneType",
	"list":                     "list",
	"list_comprehension":       "list",
	"dictionary":               "dict",
	"dictionary_comprehension": "dict",
	"tuple":                    "tuple",
	"set":                      "set",
	"set_comprehension":        "set",
}

// ClassName is the builtins class the literal evaluates to.
func (l *Literal) ClassName() string { return literalClasses[l.Tag()] }

// Elements returns the element expressions of a collection display. For a
// dictionary each element is a pair node.
func (l *Literal) Elements() ([]node.Node, error) {
	switch l.Tag() {
	case "list", "tuple", "set", "dictionary":
		return node.Children(l)
	}
	return nil, nil
}

// Operator is a unary, binary, boolean or comparison expression.
type Operator struct{ node.Base }

// Operator is the operator token when the grammar exposes it, else "".
func (o *Operator) Operator() string {
	op, err := childOf(o, "operator")
	if err != nil || op == nil {
		return ""
	}
	return node.Value(op)
}

// Operands returns the operand expressions.
func (o *Operator) Operands() ([]node.Node, error) {
	children, err := node.Children(o)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, c := range children {
		if c.Tag() != "operator" {
			out = append(out, c)
		}
	}
	return out, nil
}

// Fragment is any position with no dedicated node type.
type Fragment struct{ node.Base }

// lastName returns the final dotted component under n.
func lastName(n node.Node) string {
	if n.Tag() == "identifier" {
		return node.Value(n)
	}
	d := dotted(n)
	if i := strings.LastIndex(d, "."); i >= 0 {
		return d[i+1:]
	}
	return d
}
