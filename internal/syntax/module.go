package syntax

import "github.com/jward/tranp/internal/node"

// Module is the entrypoint node of one parsed module.
type Module struct{ node.Base }

// Statements returns the top-level statements with grammar scaffolding
// (expression_statement, decorated_definition) expanded away.
func (m *Module) Statements() ([]node.Node, error) {
	return node.Expand(m)
}

// Declarations returns every class-definition node of the module at any
// depth, in document order.
func (m *Module) Declarations() ([]ClassDef, error) {
	var out []ClassDef
	err := Walk(m, func(n node.Node) (bool, error) {
		if def, ok := n.(ClassDef); ok {
			out = append(out, def)
		}
		return true, nil
	})
	return out, err
}

// Imports returns every import statement of the module in document order.
func (m *Module) Imports() ([]*Import, []*ModuleImport, error) {
	var froms []*Import
	var plain []*ModuleImport
	err := Walk(m, func(n node.Node) (bool, error) {
		switch imp := n.(type) {
		case *Import:
			froms = append(froms, imp)
			return false, nil
		case *ModuleImport:
			plain = append(plain, imp)
			return false, nil
		}
		return true, nil
	})
	return froms, plain, err
}

// Assignments returns every annotated and plain assignment at any depth,
// in document order.
func (m *Module) Assignments() ([]node.Node, error) {
	var out []node.Node
	err := Walk(m, func(n node.Node) (bool, error) {
		switch n.(type) {
		case *AnnoAssign, *MoveAssign:
			out = append(out, n)
		}
		return true, nil
	})
	return out, err
}

// Walk visits every expanded node under n depth-first. fn returns false to
// skip the subtree of the visited node.
func Walk(n node.Node, fn func(node.Node) (bool, error)) error {
	children, err := node.Expand(n)
	if err != nil {
		return err
	}
	for _, c := range children {
		descend, err := fn(c)
		if err != nil {
			return err
		}
		if descend {
			if err := Walk(c, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
