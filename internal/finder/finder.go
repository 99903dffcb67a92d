// Package finder resolves structural type references and expressions to
// symbols registered in a reflection table.
package finder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

// ErrNotFound is returned when a name resolves to no registered symbol.
var ErrNotFound = errors.New("symbol not found")

// Well-known core symbols.
const (
	UnknownName = "builtins.Unknown"
	NoneName    = "builtins.NoneType"
	UnionName   = "typing.Union"
	BoolName    = "builtins.bool"
	ListName    = "builtins.list"
)

// Symbols is the read side of a symbol table.
type Symbols interface {
	Get(fullname string) (*reflection.Reflection, bool)
}

// Finder looks names up through scope chains, module aliases and the core
// modules.
type Finder struct {
	symbols Symbols
	core    []string
	aliases map[string]map[string]string
}

// New returns a finder over symbols. core lists the modules whose
// top-level declarations are visible everywhere, in lookup order.
func New(symbols Symbols, core []string) *Finder {
	return &Finder{
		symbols: symbols,
		core:    core,
		aliases: make(map[string]map[string]string),
	}
}

// WithSymbols returns a finder over s that shares the receiver's core list
// and module aliases.
func (f *Finder) WithSymbols(s Symbols) *Finder {
	return &Finder{symbols: s, core: f.core, aliases: f.aliases}
}

// AddModuleAlias records that alias names module target inside module.
func (f *Finder) AddModuleAlias(module, alias, target string) {
	m, ok := f.aliases[module]
	if !ok {
		m = make(map[string]string)
		f.aliases[module] = m
	}
	m[alias] = target
}

// ModuleAlias returns the module id an alias names inside module.
func (f *Finder) ModuleAlias(module, alias string) (string, bool) {
	target, ok := f.aliases[module][alias]
	return target, ok
}

// ByFullname looks up a registered symbol.
func (f *Finder) ByFullname(fullname string) (*reflection.Reflection, error) {
	if r, ok := f.symbols.Get(fullname); ok {
		return r, nil
	}
	return nil, fmt.Errorf("finder: %s: %w", fullname, ErrNotFound)
}

// Unknown returns the symbol used for undeclared types.
func (f *Finder) Unknown() (*reflection.Reflection, error) {
	return f.ByFullname(UnknownName)
}

// ByName resolves a bare name from scope: the scope chain innermost first,
// then the core modules.
func (f *Finder) ByName(module, scope, name string) (*reflection.Reflection, error) {
	for _, s := range syntax.Chain(module, scope) {
		if r, ok := f.symbols.Get(s + "." + name); ok {
			return r, nil
		}
	}
	for _, c := range f.core {
		if r, ok := f.symbols.Get(c + "." + name); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("finder: %s in %s: %w", name, scope, ErrNotFound)
}

// ByDotted resolves a dotted reference such as mod.A or Outer.Inner. The
// longest prefix naming a module alias wins; otherwise the head is
// resolved as a name and the rest as members of it.
func (f *Finder) ByDotted(module, scope, dotted string) (*reflection.Reflection, error) {
	parts := strings.Split(dotted, ".")
	if len(parts) == 1 {
		return f.ByName(module, scope, dotted)
	}
	for i := len(parts) - 1; i >= 1; i-- {
		if target, ok := f.ModuleAlias(module, strings.Join(parts[:i], ".")); ok {
			return f.ByFullname(target + "." + strings.Join(parts[i:], "."))
		}
	}
	head, err := f.ByName(module, scope, parts[0])
	if err != nil {
		return nil, err
	}
	return f.ByFullname(head.Fullyname() + "." + strings.Join(parts[1:], "."))
}

// ByType resolves the outer symbol of a type reference: the template of a
// generic, typing.Union for a union, NoneType for None.
func (f *Finder) ByType(n node.Node) (*reflection.Reflection, error) {
	outer, _, _, err := f.Split(n)
	return outer, err
}

// Split resolves a type reference into its outer symbol and, for generics
// and unions, the fully resolved argument symbols. composite reports
// whether the reference had arguments.
func (f *Finder) Split(n node.Node) (outer *reflection.Reflection, args []*reflection.Reflection, composite bool, err error) {
	n = syntax.Unwrap(n)
	scope, err := syntax.Scope(n)
	if err != nil {
		return nil, nil, false, err
	}
	module := n.Module()

	switch v := n.(type) {
	case *syntax.NullType:
		outer, err = f.ByFullname(NoneName)
	case *syntax.TypeName:
		outer, err = f.ByName(module, scope, v.Name())
	case *syntax.Name:
		outer, err = f.ByName(module, scope, v.Name())
	case *syntax.ForwardRef:
		outer, err = f.ByDotted(module, scope, v.Reference())
	case *syntax.RelayType:
		outer, err = f.ByDotted(module, scope, v.Dotted())
	case *syntax.Attribute:
		outer, err = f.ByDotted(module, scope, v.Dotted())
	case syntax.Generic:
		tmpl, terr := v.Template()
		if terr != nil {
			return nil, nil, false, terr
		}
		if tmpl == nil {
			return nil, nil, false, malformed(n)
		}
		if outer, err = f.ByType(tmpl); err != nil {
			return nil, nil, false, err
		}
		members, merr := v.Arguments()
		if merr != nil {
			return nil, nil, false, merr
		}
		args, err = f.resolveAll(members)
		return outer, args, true, err
	case *syntax.Literal:
		switch v.ClassName() {
		case "NoneType":
			outer, err = f.ByFullname(NoneName)
		case "str":
			outer, err = f.ByDotted(module, scope, strings.TrimSpace(unquote(node.Text(v))))
		case "list":
			if outer, err = f.ByFullname(ListName); err != nil {
				return nil, nil, false, err
			}
			elems, eerr := v.Elements()
			if eerr != nil {
				return nil, nil, false, eerr
			}
			args, err = f.resolveAll(elems)
			return outer, args, true, err
		default:
			return nil, nil, false, malformed(n)
		}
	case *syntax.Fragment:
		if n.Tag() != "ellipsis" {
			return nil, nil, false, malformed(n)
		}
		outer, err = f.Unknown()
	default:
		if !syntax.IsUnion(n) {
			return nil, nil, false, malformed(n)
		}
		if outer, err = f.ByFullname(UnionName); err != nil {
			return nil, nil, false, err
		}
		members, merr := syntax.Members(n)
		if merr != nil {
			return nil, nil, false, merr
		}
		args, err = f.resolveAll(members)
		return outer, args, true, err
	}
	return outer, nil, false, err
}

// Resolve fully resolves a type reference. Generics and unions are wrapped
// as Generic symbols whose attrs are the recursively resolved arguments.
func (f *Finder) Resolve(n node.Node) (*reflection.Reflection, error) {
	outer, args, composite, err := f.Split(n)
	if err != nil {
		return nil, err
	}
	if !composite {
		return outer, nil
	}
	d, err := reflection.Generic(outer, syntax.Unwrap(n))
	if err != nil {
		return nil, err
	}
	return d.Extends(args...)
}

// ResolveOrUnknown resolves n, or returns Unknown when n is nil.
func (f *Finder) ResolveOrUnknown(n node.Node) (*reflection.Reflection, error) {
	if n == nil {
		return f.Unknown()
	}
	return f.Resolve(n)
}

func (f *Finder) resolveAll(nodes []node.Node) ([]*reflection.Reflection, error) {
	out := make([]*reflection.Reflection, 0, len(nodes))
	for _, a := range nodes {
		r, err := f.Resolve(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func malformed(n node.Node) error {
	return fmt.Errorf("finder: malformed type reference %s (%s): %w", n.Path(), n.Kind(), reflection.ErrLogic)
}

func unquote(s string) string {
	s = strings.TrimLeft(s, "rbuRBUfF")
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
