package syntax

import (
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/node"
)

// Scope returns the dotted scope that encloses n: the module id followed by
// the names of every enclosing class and function, outermost first.
func Scope(n node.Node) (string, error) {
	var names []string
	cur := n
	for {
		if _, ok := cur.(*Module); ok {
			break
		}
		parent, err := node.Parent(cur)
		if err != nil {
			return "", fmt.Errorf("syntax: scope of %s: %w", cur.Path(), err)
		}
		switch p := parent.(type) {
		case *Class:
			names = append(names, p.Symbol())
		case *Function:
			names = append(names, p.Symbol())
		}
		cur = parent
	}
	out := []string{n.Module()}
	for i := len(names) - 1; i >= 0; i-- {
		out = append(out, names[i])
	}
	return strings.Join(out, "."), nil
}

// Fullyname is the domain name of a declaration: its scope plus its symbol.
func Fullyname(def ClassDef) (string, error) {
	scope, err := Scope(def)
	if err != nil {
		return "", err
	}
	return scope + "." + def.Symbol(), nil
}

// Chain returns the lookup chain of a scope within module, innermost
// first: ("m", "m.A.f") yields ["m.A.f", "m.A", "m"].
func Chain(module, scope string) []string {
	var out []string
	for {
		out = append(out, scope)
		if scope == module || !strings.HasPrefix(scope, module+".") {
			return out
		}
		scope = scope[:strings.LastIndex(scope, ".")]
	}
}
