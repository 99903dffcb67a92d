package tranp

import (
	"fmt"

	"github.com/jward/tranp/internal/expansion"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/query"
	"github.com/jward/tranp/internal/syntax"
)

// Session is the result of one analysis: the ordered modules, their node
// graphs and the finished symbol table.
type Session struct {
	program *expansion.Program
	modules *module.Modules
	core    []string
}

// Root is the analyzed root module id.
func (s *Session) Root() string { return s.program.Root }

// Order returns the module ids in expansion order: core first, then
// dependency post-order ending with the root.
func (s *Session) Order() []string {
	return append([]string(nil), s.program.Order...)
}

// Table returns the finished symbol table.
func (s *Session) Table() *Table { return s.program.Table }

// Names returns every registered symbol name in table order.
func (s *Session) Names() []string { return s.program.Table.Names() }

// Query returns the node query engine of a loaded module.
func (s *Session) Query(id string) (*query.Engine, error) {
	m, ok := s.modules.Get(id)
	if !ok {
		return nil, fmt.Errorf("tranp: query %s: %w", id, ErrModuleNotFound)
	}
	return m.Query, nil
}

// Entrypoint returns the module node of a loaded module.
func (s *Session) Entrypoint(id string) (Node, error) {
	q, err := s.Query(id)
	if err != nil {
		return nil, err
	}
	return q.Root()
}

// Unload drops a module's caches. Its symbols stay in the table but its
// nodes can no longer be queried.
func (s *Session) Unload(id string) {
	s.modules.Unload(id)
}

// ByFullname returns the symbol registered under name.
func (s *Session) ByFullname(name string) (*Reflection, error) {
	return s.program.Finder.ByFullname(name)
}

// TypeOf returns the symbol describing n. Declarations map to their
// registered symbols, assignments to the symbol of their first target,
// type references are resolved and expressions are inferred.
func (s *Session) TypeOf(n Node) (*Reflection, error) {
	f := s.program.Finder
	switch v := n.(type) {
	case *syntax.AnnoAssign:
		return s.assignTarget(n, v.Receivers)
	case *syntax.MoveAssign:
		return s.assignTarget(n, v.Receivers)
	case *syntax.Parameter:
		return s.parameter(v)
	case syntax.ClassDef:
		name, err := syntax.Fullyname(v)
		if err != nil {
			return nil, err
		}
		return f.ByFullname(name)
	case *syntax.Type, *syntax.TypeName, *syntax.GenericType, *syntax.UnionType,
		*syntax.NullType, *syntax.ForwardRef, *syntax.RelayType:
		return f.Resolve(n)
	case *syntax.Subscript:
		if _, err := n.Query().Ancestor(n.Path(), "type"); err == nil {
			return f.Resolve(n)
		}
	}
	return f.ByValue(n)
}

// parameter returns the Var a function declares for p.
func (s *Session) parameter(p *syntax.Parameter) (*Reflection, error) {
	anc, err := p.Query().Ancestor(p.Path(), "function_definition")
	if err != nil {
		return nil, err
	}
	fn, ok := anc.(*syntax.Function)
	if !ok {
		return nil, fmt.Errorf("tranp: type of %s: parameter outside a function: %w", p.Path(), ErrLogic)
	}
	scope, err := syntax.Fullyname(fn)
	if err != nil {
		return nil, err
	}
	return s.program.Finder.ByFullname(scope + "." + p.Symbol())
}

func (s *Session) assignTarget(assign Node, receivers func() ([]Node, error)) (*Reflection, error) {
	targets, err := receivers()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("tranp: type of %s: no assignment target: %w", assign.Path(), ErrLogic)
	}
	name, err := expansion.DeclaredName(assign, targets[0])
	if err != nil {
		return nil, err
	}
	if name == "" {
		return s.program.Finder.ByValue(targets[0])
	}
	return s.program.Finder.ByFullname(name)
}
