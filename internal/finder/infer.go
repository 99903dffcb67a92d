package finder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

// maxBaseDepth bounds member lookup through superclasses.
const maxBaseDepth = 32

// ByValue infers the symbol of an expression. Literals, constructor calls,
// annotated function calls, names, member accesses and operators are
// understood; anything else, including unknown names, yields Unknown.
func (f *Finder) ByValue(n node.Node) (*reflection.Reflection, error) {
	r, err := f.byValue(n)
	if errors.Is(err, ErrNotFound) || r == nil && err == nil {
		return f.Unknown()
	}
	return r, err
}

func (f *Finder) byValue(n node.Node) (*reflection.Reflection, error) {
	switch v := n.(type) {
	case *syntax.Literal:
		return f.literal(v)
	case *syntax.Name:
		scope, err := syntax.Scope(v)
		if err != nil {
			return nil, err
		}
		sym, err := f.ByName(v.Module(), scope, v.Name())
		if err != nil {
			return nil, err
		}
		return f.reference(sym, v, nil)
	case *syntax.Attribute:
		return f.attribute(v)
	case *syntax.Call:
		return f.call(v)
	case *syntax.Operator:
		return f.operator(v)
	case *syntax.MoveAssign:
		// chained assignment: a = b = value
		val, err := v.Value()
		if err != nil || val == nil {
			return nil, err
		}
		return f.byValue(val)
	case *syntax.Fragment:
		if v.Tag() == "parenthesized_expression" {
			children, err := node.Children(v)
			if err != nil || len(children) != 1 {
				return nil, err
			}
			return f.byValue(children[0])
		}
	}
	return nil, nil
}

// reference types a use of sym at via. Classes used as values become Class
// symbols; everything else a Reference.
func (f *Finder) reference(sym *reflection.Reflection, via node.Node, context *reflection.Reflection) (*reflection.Reflection, error) {
	if _, ok := Declaration(sym).Types().(*syntax.Class); ok && Declaration(sym).Is(reflection.RoleOrigin) {
		d, err := reflection.Types(sym, via)
		if err != nil {
			return nil, err
		}
		return d.Reflection(), nil
	}
	if sym.Is(reflection.RoleReference) {
		return sym, nil
	}
	d, err := reflection.Ref(sym, via, context)
	if err != nil {
		return nil, err
	}
	return d.Reflection(), nil
}

// Declaration skips import wrappers to the symbol that was re-exported.
func Declaration(r *reflection.Reflection) *reflection.Reflection {
	for r.Is(reflection.RoleImport) && r.Origin() != nil {
		r = r.Origin()
	}
	return r
}

func (f *Finder) literal(v *syntax.Literal) (*reflection.Reflection, error) {
	cls, err := f.ByFullname("builtins." + v.ClassName())
	if err != nil {
		return nil, err
	}
	d, err := reflection.Literal(cls, v)
	if err != nil {
		return nil, err
	}
	elems, err := v.Elements()
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return d.Reflection(), nil
	}
	switch v.Tag() {
	case "tuple":
		attrs := make([]*reflection.Reflection, 0, len(elems))
		for _, e := range elems {
			a, err := f.ByValue(e)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, a)
		}
		return d.Extends(attrs...)
	case "dictionary":
		pair, err := node.Children(elems[0])
		if err != nil {
			return nil, err
		}
		if len(pair) != 2 {
			return d.Reflection(), nil
		}
		k, err := f.ByValue(pair[0])
		if err != nil {
			return nil, err
		}
		val, err := f.ByValue(pair[1])
		if err != nil {
			return nil, err
		}
		return d.Extends(k, val)
	default:
		elem, err := f.ByValue(elems[0])
		if err != nil {
			return nil, err
		}
		return d.Extends(elem)
	}
}

func (f *Finder) call(v *syntax.Call) (*reflection.Reflection, error) {
	callee, err := v.Callee()
	if err != nil || callee == nil {
		return nil, err
	}
	var sym, receiver *reflection.Reflection
	switch c := callee.(type) {
	case *syntax.Name:
		scope, err := syntax.Scope(c)
		if err != nil {
			return nil, err
		}
		if sym, err = f.ByName(c.Module(), scope, c.Name()); err != nil {
			return nil, err
		}
	case *syntax.Attribute:
		if sym, receiver, err = f.member(c); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	decl := Declaration(sym)
	if !decl.Is(reflection.RoleOrigin) {
		return nil, nil
	}
	switch t := decl.Types().(type) {
	case *syntax.Class:
		d, err := reflection.Result(sym, v)
		if err != nil {
			return nil, err
		}
		return d.Reflection(), nil
	case *syntax.Function:
		ret, err := f.Returns(t)
		if err != nil {
			return nil, err
		}
		if receiver != nil {
			ret = f.substitute(ret, receiver)
		}
		d, err := reflection.Result(ret, v)
		if err != nil {
			return nil, err
		}
		return d.Reflection(), nil
	}
	return nil, nil
}

// Returns resolves the return annotation of fn, or Unknown.
func (f *Finder) Returns(fn *syntax.Function) (*reflection.Reflection, error) {
	ret, err := fn.Returns()
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return f.Unknown()
	}
	return f.Resolve(ret)
}

// substitute replaces a template parameter return type with the matching
// attr of the receiver: dict[str, int].get returns int.
func (f *Finder) substitute(ret, receiver *reflection.Reflection) *reflection.Reflection {
	if _, ok := ret.Root().Types().(*syntax.TemplateClass); !ok {
		return ret
	}
	cls, ok := f.ClassOf(receiver).Types().(*syntax.Class)
	if !ok {
		return ret
	}
	names, err := cls.TemplateNames()
	if err != nil {
		return ret
	}
	attrs := receiver.Attrs()
	for i, name := range names {
		if name == ret.Domain() && i < len(attrs) {
			return attrs[i]
		}
	}
	return ret
}

func (f *Finder) attribute(v *syntax.Attribute) (*reflection.Reflection, error) {
	sym, receiver, err := f.member(v)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return f.reference(sym, v, nil)
	}
	return f.reference(sym, v, receiver)
}

// member resolves a.b to the symbol of b and the receiver symbol of a. A
// receiver naming a module alias resolves b in that module and reports no
// receiver.
func (f *Finder) member(v *syntax.Attribute) (sym, receiver *reflection.Reflection, err error) {
	if r, ok := f.aliased(v.Module(), v.Dotted()); ok {
		return r, nil, nil
	}
	recvNode, err := v.Receiver()
	if err != nil || recvNode == nil {
		return nil, nil, err
	}
	receiver, err = f.ByValue(recvNode)
	if err != nil {
		return nil, nil, err
	}
	sym, err = f.Member(receiver, v.Member())
	if err != nil {
		return nil, nil, err
	}
	return sym, receiver, nil
}

// aliased resolves a dotted reference whose head is a module alias.
func (f *Finder) aliased(module, dotted string) (*reflection.Reflection, bool) {
	parts := strings.Split(dotted, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		if target, ok := f.ModuleAlias(module, strings.Join(parts[:i], ".")); ok {
			r, ok := f.symbols.Get(target + "." + strings.Join(parts[i:], "."))
			return r, ok
		}
	}
	return nil, false
}

// ClassOf follows a symbol's origin chain to the declaration that types
// it.
func (f *Finder) ClassOf(r *reflection.Reflection) *reflection.Reflection {
	return r.Root()
}

// Member looks up name on the class of receiver, then on its superclasses
// in declaration order.
func (f *Finder) Member(receiver *reflection.Reflection, name string) (*reflection.Reflection, error) {
	return f.memberOf(f.ClassOf(receiver), name, 0)
}

func (f *Finder) memberOf(cls *reflection.Reflection, name string, depth int) (*reflection.Reflection, error) {
	if r, ok := f.symbols.Get(cls.Fullyname() + "." + name); ok {
		return r, nil
	}
	def, ok := cls.Types().(*syntax.Class)
	if !ok || depth >= maxBaseDepth {
		return nil, fmt.Errorf("finder: member %s of %s: %w", name, cls.Fullyname(), ErrNotFound)
	}
	bases, err := def.Bases()
	if err != nil {
		return nil, err
	}
	for _, b := range bases {
		base, err := f.ByType(b)
		if err != nil {
			continue
		}
		if r, err := f.memberOf(f.ClassOf(base), name, depth+1); err == nil {
			return r, nil
		}
	}
	return nil, fmt.Errorf("finder: member %s of %s: %w", name, cls.Fullyname(), ErrNotFound)
}

func (f *Finder) operator(v *syntax.Operator) (*reflection.Reflection, error) {
	var result *reflection.Reflection
	switch v.Tag() {
	case "comparison_operator", "not_operator", "boolean_operator":
		b, err := f.ByFullname(BoolName)
		if err != nil {
			return nil, err
		}
		result = b
	default:
		operands, err := v.Operands()
		if err != nil || len(operands) == 0 {
			return nil, err
		}
		left, err := f.ByValue(operands[0])
		if err != nil {
			return nil, err
		}
		result = f.ClassOf(left)
	}
	d, err := reflection.Result(result, v)
	if err != nil {
		return nil, err
	}
	return d.Reflection(), nil
}
