package reflection

import "fmt"

// Role records why a Reflection exists.
type Role int

const (
	RoleOrigin    Role = iota // the declaration itself
	RoleImport                // re-export into another module
	RoleClass                 // a class used as a value
	RoleVar                   // a variable or parameter
	RoleGeneric               // a generic instantiation
	RoleLiteral               // a literal expression
	RoleReference             // a reference site
	RoleResult                // an operator or call result
)

var roleNames = [...]string{
	RoleOrigin:    "origin",
	RoleImport:    "import",
	RoleClass:     "class",
	RoleVar:       "var",
	RoleGeneric:   "generic",
	RoleLiteral:   "literal",
	RoleReference: "reference",
	RoleResult:    "result",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), true
		}
	}
	return 0, false
}

// accepts lists the predecessor roles each wrapping role may be built from.
var accepts = map[Role][]Role{
	RoleImport:    {RoleOrigin, RoleImport, RoleVar},
	RoleClass:     {RoleOrigin, RoleImport},
	RoleVar:       {RoleOrigin, RoleImport, RoleClass, RoleGeneric, RoleLiteral, RoleReference, RoleResult},
	RoleGeneric:   {RoleOrigin, RoleImport},
	RoleLiteral:   {RoleOrigin, RoleImport},
	RoleReference: {RoleOrigin, RoleImport, RoleClass, RoleVar, RoleGeneric, RoleLiteral, RoleResult},
	RoleResult:    {RoleOrigin, RoleImport, RoleClass, RoleVar, RoleGeneric, RoleLiteral, RoleReference, RoleResult},
}

func compatible(to, from Role) bool {
	for _, r := range accepts[to] {
		if r == from {
			return true
		}
	}
	return false
}
