package syntax

import (
	"github.com/jward/tranp/internal/node"
)

// ClassDef is a node that declares a symbol with its own origin: classes,
// functions, template classes and alias classes. The set is closed;
// parameters name symbols too but are declared as variables.
type ClassDef interface {
	node.Node
	Symbol() string
	classDef()
}

// Class is a class_definition.
type Class struct{ node.Base }

func (c *Class) Symbol() string { return nameOf(c) }
func (*Class) classDef()        {}

// Bases returns the superclass expressions, keyword arguments excluded.
func (c *Class) Bases() ([]node.Node, error) {
	args, err := childOf(c, "argument_list")
	if err != nil || args == nil {
		return nil, err
	}
	children, err := node.Children(args)
	if err != nil {
		return nil, err
	}
	var out []node.Node
	for _, ch := range children {
		if ch.Tag() == "keyword_argument" {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

// TemplateNames returns the type parameters listed in a Generic[...] base,
// in declaration order.
func (c *Class) TemplateNames() ([]string, error) {
	bases, err := c.Bases()
	if err != nil {
		return nil, err
	}
	for _, b := range bases {
		g, ok := b.(Generic)
		if !ok {
			continue
		}
		tmpl, err := g.Template()
		if err != nil {
			return nil, err
		}
		if tmpl == nil || lastName(tmpl) != "Generic" {
			continue
		}
		args, err := g.Arguments()
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(args))
		for _, a := range args {
			names = append(names, dotted(Unwrap(a)))
		}
		return names, nil
	}
	return nil, nil
}

func (c *Class) Statements() ([]node.Node, error) { return statements(c) }

// Methods returns the functions declared directly in the class body.
func (c *Class) Methods() ([]*Function, error) {
	stmts, err := c.Statements()
	if err != nil {
		return nil, err
	}
	var out []*Function
	for _, s := range stmts {
		if fn, ok := s.(*Function); ok {
			out = append(out, fn)
		}
	}
	return out, nil
}

// Function is a function_definition. Its kind distinguishes module
// functions, methods and constructors.
type Function struct{ node.Base }

func (f *Function) Symbol() string { return nameOf(f) }
func (*Function) classDef()        {}

// IsMethod reports whether the function is declared in a class body.
func (f *Function) IsMethod() bool { return f.Kind() != KindFunction }

// Parameters returns the declared parameters in order. Separators such as
// "*" and "/" are skipped.
func (f *Function) Parameters() ([]*Parameter, error) {
	params, err := childOf(f, "parameters")
	if err != nil || params == nil {
		return nil, err
	}
	children, err := node.Children(params)
	if err != nil {
		return nil, err
	}
	var out []*Parameter
	for _, c := range children {
		if p, ok := c.(*Parameter); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Returns is the return annotation, or nil when absent.
func (f *Function) Returns() (*Type, error) {
	t, err := childOf(f, "type")
	if err != nil || t == nil {
		return nil, err
	}
	typ, _ := t.(*Type)
	return typ, nil
}

// Decorators returns the source text of each decorator, without the "@".
func (f *Function) Decorators() ([]string, error) {
	if f.Path().Parent().Tag() != "decorated_definition" {
		return nil, nil
	}
	sibs, err := f.Query().Siblings(f.Path())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range sibs {
		if s.Tag() == "decorator" {
			out = append(out, dotted(s))
		}
	}
	return out, nil
}

// IsClassMethod reports a @classmethod decorator.
func (f *Function) IsClassMethod() bool { return f.decorated("classmethod") }

// IsStatic reports a @staticmethod decorator.
func (f *Function) IsStatic() bool { return f.decorated("staticmethod") }

func (f *Function) decorated(name string) bool {
	decos, err := f.Decorators()
	if err != nil {
		return false
	}
	for _, d := range decos {
		if d == name {
			return true
		}
	}
	return false
}

func (f *Function) Statements() ([]node.Node, error) { return statements(f) }

// Class returns the enclosing class of a method.
func (f *Function) Class() (*Class, error) {
	if !f.IsMethod() {
		return nil, nil
	}
	anc, err := f.Query().Ancestor(f.Path(), "class_definition")
	if err != nil {
		return nil, err
	}
	cls, _ := anc.(*Class)
	return cls, nil
}

// Parameter is one entry of a parameter list.
type Parameter struct{ node.Base }

// Symbol is the parameter name without splat markers.
func (p *Parameter) Symbol() string {
	if p.Tag() == "identifier" {
		return node.Value(p)
	}
	if name := nameOf(p); name != "" {
		return name
	}
	children, err := node.Children(p)
	if err != nil {
		return ""
	}
	for _, c := range children {
		if c.Tag() == "list_splat_pattern" || c.Tag() == "dictionary_splat_pattern" {
			return nameOf(c)
		}
	}
	return ""
}

// Annotation is the declared type, or nil.
func (p *Parameter) Annotation() (*Type, error) {
	t, err := childOf(p, "type")
	if err != nil || t == nil {
		return nil, err
	}
	typ, _ := t.(*Type)
	return typ, nil
}

// Default is the default value expression, or nil.
func (p *Parameter) Default() (node.Node, error) {
	if p.Tag() != "default_parameter" && p.Tag() != "typed_default_parameter" {
		return nil, nil
	}
	children, err := node.Children(p)
	if err != nil || len(children) == 0 {
		return nil, err
	}
	last := children[len(children)-1]
	if len(children) == 1 || last.Tag() == "type" {
		return nil, nil
	}
	return last, nil
}

// IsVariadic reports *args or **kwargs.
func (p *Parameter) IsVariadic() bool {
	if p.Tag() == "list_splat_pattern" || p.Tag() == "dictionary_splat_pattern" {
		return true
	}
	for _, t := range []string{"list_splat_pattern", "dictionary_splat_pattern"} {
		if c, err := childOf(p, t); err == nil && c != nil {
			return true
		}
	}
	return false
}

// TemplateClass is a type variable declaration: T = TypeVar('T').
type TemplateClass struct{ node.Base }

func (t *TemplateClass) Symbol() string { return nameOf(t) }
func (*TemplateClass) classDef()        {}

// Bound returns the bound= argument expression, or nil.
func (t *TemplateClass) Bound() (node.Node, error) {
	call, err := childOf(t, "call")
	if err != nil || call == nil {
		return nil, err
	}
	args, err := childOf(call, "argument_list")
	if err != nil || args == nil {
		return nil, err
	}
	kwargs, err := childrenOf(args, "keyword_argument")
	if err != nil {
		return nil, err
	}
	for _, kw := range kwargs {
		children, err := node.Children(kw)
		if err != nil {
			return nil, err
		}
		if len(children) == 2 && node.Value(children[0]) == "bound" {
			return children[1], nil
		}
	}
	return nil, nil
}

// AltClass is a type alias declaration: X: TypeAlias = dict[str, int].
type AltClass struct{ node.Base }

func (a *AltClass) Symbol() string { return nameOf(a) }
func (*AltClass) classDef()        {}

// Target is the aliased type expression.
func (a *AltClass) Target() (node.Node, error) {
	children, err := node.Children(a)
	if err != nil {
		return nil, err
	}
	if len(children) < 3 {
		return nil, nil
	}
	return children[len(children)-1], nil
}
