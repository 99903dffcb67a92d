package expansion

import (
	"github.com/jward/tranp/internal/finder"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

// Generic bases whose arguments declare a class's template parameters.
var templateBases = map[string]bool{
	"typing.Generic":  true,
	"typing.Protocol": true,
}

// originAttrs returns the deferred attrs computation for a declaration:
// template parameters of a class, parameter and return types of a
// function, the bound of a template class and the target of an alias.
func (b *build) originAttrs(def syntax.ClassDef) func() ([]*reflection.Reflection, error) {
	return func() ([]*reflection.Reflection, error) {
		switch v := def.(type) {
		case *syntax.Class:
			return b.classTemplates(v)
		case *syntax.Function:
			return b.signature(v)
		case *syntax.TemplateClass:
			bound, err := v.Bound()
			if err != nil || bound == nil {
				return nil, err
			}
			r, err := b.finder.Resolve(bound)
			if err != nil {
				return nil, err
			}
			return []*reflection.Reflection{r}, nil
		case *syntax.AltClass:
			target, err := v.Target()
			if err != nil {
				return nil, err
			}
			r, err := b.finder.ResolveOrUnknown(target)
			if err != nil {
				return nil, err
			}
			return []*reflection.Reflection{r}, nil
		}
		return nil, nil
	}
}

func (b *build) classTemplates(c *syntax.Class) ([]*reflection.Reflection, error) {
	bases, err := c.Bases()
	if err != nil {
		return nil, err
	}
	for _, base := range bases {
		if _, ok := base.(syntax.Generic); !ok {
			continue
		}
		outer, args, _, err := b.finder.Split(base)
		if err != nil {
			return nil, err
		}
		if templateBases[finder.Declaration(outer).Fullyname()] {
			return args, nil
		}
	}
	return nil, nil
}

// signature is the parameter types followed by the return type.
func (b *build) signature(fn *syntax.Function) ([]*reflection.Reflection, error) {
	params, err := fn.Parameters()
	if err != nil {
		return nil, err
	}
	attrs := make([]*reflection.Reflection, 0, len(params)+1)
	for i, p := range params {
		r, err := b.paramType(fn, i, p)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, r)
	}
	ret, err := b.finder.Returns(fn)
	if err != nil {
		return nil, err
	}
	return append(attrs, ret), nil
}

// paramType resolves a parameter: the receiver of a method is its class,
// then the annotation, then the default value, then Unknown.
func (b *build) paramType(fn *syntax.Function, i int, p *syntax.Parameter) (*reflection.Reflection, error) {
	if cls, ok, err := b.receiverClass(fn, i); err != nil || ok {
		return cls, err
	}
	ann, err := p.Annotation()
	if err != nil {
		return nil, err
	}
	if ann != nil {
		return b.finder.Resolve(ann)
	}
	def, err := p.Default()
	if err != nil {
		return nil, err
	}
	if def != nil {
		return b.finder.ByValue(def)
	}
	return b.finder.Unknown()
}

// receiverClass returns the class origin when parameter i of fn is the
// implicit self or cls.
func (b *build) receiverClass(fn *syntax.Function, i int) (*reflection.Reflection, bool, error) {
	if i != 0 || !fn.IsMethod() || fn.IsStatic() {
		return nil, false, nil
	}
	cls, err := fn.Class()
	if err != nil || cls == nil {
		return nil, false, err
	}
	name, err := syntax.Fullyname(cls)
	if err != nil {
		return nil, false, err
	}
	r, err := b.finder.ByFullname(name)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// bindDeclarations declares a Var for every parameter and assignment
// target, module by module in document order.
func (b *build) bindDeclarations() error {
	for _, id := range b.order {
		m, err := entrypoint(b.mods[id])
		if err != nil {
			return err
		}
		err = syntax.Walk(m, func(n node.Node) (bool, error) {
			switch v := n.(type) {
			case *syntax.Function:
				return true, b.bindParameters(id, v)
			case *syntax.AnnoAssign:
				ann, err := v.Annotation()
				if err != nil {
					return false, err
				}
				return true, b.bindAssign(id, v, v.Receivers, ann, v.Value)
			case *syntax.MoveAssign:
				return true, b.bindAssign(id, v, v.Receivers, nil, v.Value)
			}
			return true, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *build) bindParameters(mod string, fn *syntax.Function) error {
	scope, err := syntax.Fullyname(fn)
	if err != nil {
		return err
	}
	params, err := fn.Parameters()
	if err != nil {
		return err
	}
	for i, p := range params {
		if cls, ok, err := b.receiverClass(fn, i); err != nil {
			return err
		} else if ok {
			if err := b.declareVar(mod, scope+"."+p.Symbol(), p, typed{outer: cls}); err != nil {
				return err
			}
			continue
		}
		ann, err := p.Annotation()
		if err != nil {
			return err
		}
		def, err := p.Default()
		if err != nil {
			return err
		}
		t, err := b.typeOf(ann, def)
		if err != nil {
			return err
		}
		if err := b.declareVar(mod, scope+"."+p.Symbol(), p, t); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) bindAssign(mod string, assign node.Node, receivers func() ([]node.Node, error), ann *syntax.Type, value func() (node.Node, error)) error {
	targets, err := receivers()
	if err != nil {
		return err
	}
	val, err := value()
	if err != nil {
		return err
	}
	if len(targets) == 1 {
		key, err := DeclaredName(assign, targets[0])
		if err != nil || key == "" {
			return err
		}
		var v node.Node
		if ann == nil {
			v = val
		}
		t, err := b.typeOf(ann, v)
		if err != nil {
			return err
		}
		return b.declareVar(mod, key, targets[0], t)
	}

	elems := unpack(val, len(targets))
	for i, target := range targets {
		key, err := DeclaredName(assign, target)
		if err != nil {
			return err
		}
		if key == "" {
			continue
		}
		t, err := b.typeOf(nil, elems[i])
		if err != nil {
			return err
		}
		if err := b.declareVar(mod, key, target, t); err != nil {
			return err
		}
	}
	return nil
}

// unpack returns the n element expressions of a tuple value, or n nils
// when the shapes do not line up.
func unpack(val node.Node, n int) []node.Node {
	out := make([]node.Node, n)
	if val == nil {
		return out
	}
	var elems []node.Node
	var err error
	switch v := val.(type) {
	case *syntax.Literal:
		elems, err = v.Elements()
	default:
		if val.Tag() == "expression_list" {
			elems, err = node.Expand(val)
		}
	}
	if err == nil && len(elems) == n {
		copy(out, elems)
	}
	return out
}

// DeclaredName returns the fullname an assignment target declares: a name
// in the enclosing scope, or self.x in a method as a field of its class.
// Other targets (subscripts, foreign attributes) declare nothing.
func DeclaredName(assign, target node.Node) (string, error) {
	switch t := target.(type) {
	case *syntax.Name:
		scope, err := syntax.Scope(assign)
		if err != nil {
			return "", err
		}
		return scope + "." + t.Name(), nil
	case *syntax.Attribute:
		recv, err := t.Receiver()
		if err != nil || recv == nil {
			return "", err
		}
		name, ok := recv.(*syntax.Name)
		if !ok {
			return "", nil
		}
		anc, err := assign.Query().Ancestor(assign.Path(), "function_definition")
		if err != nil {
			return "", nil
		}
		fn, ok := anc.(*syntax.Function)
		if !ok || !fn.IsMethod() || fn.IsStatic() {
			return "", nil
		}
		params, err := fn.Parameters()
		if err != nil || len(params) == 0 || params[0].Symbol() != name.Name() {
			return "", err
		}
		cls, err := fn.Class()
		if err != nil || cls == nil {
			return "", err
		}
		clsName, err := syntax.Fullyname(cls)
		if err != nil {
			return "", err
		}
		return clsName + "." + t.Member(), nil
	}
	return "", nil
}

// typed is a declaration's resolved type split for Var construction.
type typed struct {
	outer     *reflection.Reflection
	args      []*reflection.Reflection
	composite bool
}

// typeOf resolves the annotation when present, else infers the value,
// else Unknown.
func (b *build) typeOf(ann *syntax.Type, value node.Node) (typed, error) {
	if ann != nil {
		outer, args, composite, err := b.finder.Split(ann)
		return typed{outer: outer, args: args, composite: composite}, err
	}
	if value != nil {
		r, err := b.finder.ByValue(value)
		return typed{outer: r}, err
	}
	r, err := b.finder.Unknown()
	return typed{outer: r}, err
}

// declareVar stages a Var. Generic and union annotations bind their
// resolved arguments as the Var's attrs; other Vars read attrs through
// their origin.
func (b *build) declareVar(mod, fullname string, decl node.Node, t typed) error {
	if _, taken := b.staged[fullname]; taken {
		return nil
	}
	d, err := reflection.Var(t.outer, fullname, decl)
	if err != nil {
		return err
	}
	r := d.Reflection()
	if t.composite {
		if r, err = d.Extends(t.args...); err != nil {
			return err
		}
	}
	_, err = b.stage(mod, fullname, r)
	return err
}
