// Package reflection is the symbol model: role-tagged Reflections linked by
// origin chains, a write-once attrs binding, and the ordered symbol table.
package reflection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/node"
)

// ErrLogic marks a defect in the analysis itself: double binding, binding a
// reference, a role mismatch or a duplicate declaration. It aborts the whole
// analysis.
var ErrLogic = errors.New("logic error")

// Reflection is the resolved type representation of a declaration or
// reference. Once constructed it exposes no mutation API; attrs are bound
// through the Declared stage that produced it.
type Reflection struct {
	orgFullyname string
	refFullyname string
	types        node.Node
	decl         node.Node
	via          node.Node
	role         Role
	origin       *Reflection
	context      *Reflection
	table        *Table

	attrs []*Reflection
	bound bool
}

// Declared is the pre-resolution stage of a Reflection. Extends binds attrs
// exactly once; Reflection finalizes without binding.
type Declared struct {
	r *Reflection
}

// Extends binds attrs and returns the resolved Reflection. It fails with
// ErrLogic when attrs are already bound or when the symbol is a reference,
// regardless of how many attrs are passed.
func (d *Declared) Extends(attrs ...*Reflection) (*Reflection, error) {
	if d.r.role == RoleReference {
		return nil, fmt.Errorf("reflection: extends %s: reference symbols take no attrs: %w", d.r.refFullyname, ErrLogic)
	}
	if d.r.bound {
		return nil, fmt.Errorf("reflection: extends %s: attrs already bound: %w", d.r.refFullyname, ErrLogic)
	}
	for i, a := range attrs {
		if a == nil {
			return nil, fmt.Errorf("reflection: extends %s: nil attr at %d: %w", d.r.refFullyname, i, ErrLogic)
		}
	}
	d.r.attrs = append([]*Reflection(nil), attrs...)
	d.r.bound = true
	return d.r, nil
}

// Reflection returns the symbol with attrs left unbound. Reads fall
// through the origin chain until Extends is called.
func (d *Declared) Reflection() *Reflection { return d.r }

// NewOrigin declares the symbol of a class-definition node.
func NewOrigin(fullname string, types node.Node) *Declared {
	return &Declared{r: &Reflection{
		orgFullyname: fullname,
		refFullyname: fullname,
		types:        types,
		decl:         types,
		role:         RoleOrigin,
	}}
}

func wrap(role Role, src *Reflection) (*Reflection, error) {
	if src == nil {
		return nil, fmt.Errorf("reflection: %s of nil symbol: %w", role, ErrLogic)
	}
	if !compatible(role, src.role) {
		return nil, fmt.Errorf("reflection: %s from %s %s: %w", role, src.role, src.refFullyname, ErrLogic)
	}
	return &Reflection{
		orgFullyname: src.orgFullyname,
		refFullyname: src.refFullyname,
		types:        src.types,
		decl:         src.decl,
		role:         role,
		origin:       src,
		table:        src.table,
	}, nil
}

// Import re-exports src under refFullyname, the name visible in the
// importing module.
func Import(src *Reflection, refFullyname string, decl node.Node) (*Declared, error) {
	r, err := wrap(RoleImport, src)
	if err != nil {
		return nil, err
	}
	r.refFullyname = refFullyname
	r.decl = decl
	return &Declared{r: r}, nil
}

// Types wraps a class symbol used as a value (the class object itself).
func Types(src *Reflection, via node.Node) (*Declared, error) {
	r, err := wrap(RoleClass, src)
	if err != nil {
		return nil, err
	}
	r.via = via
	return &Declared{r: r}, nil
}

// Var declares a variable or parameter of type src.
func Var(src *Reflection, fullname string, decl node.Node) (*Declared, error) {
	r, err := wrap(RoleVar, src)
	if err != nil {
		return nil, err
	}
	r.refFullyname = fullname
	r.decl = decl
	return &Declared{r: r}, nil
}

// Generic instantiates the generic class src at via.
func Generic(src *Reflection, via node.Node) (*Declared, error) {
	r, err := wrap(RoleGeneric, src)
	if err != nil {
		return nil, err
	}
	r.via = via
	return &Declared{r: r}, nil
}

// Literal types the literal expression via as src.
func Literal(src *Reflection, via node.Node) (*Declared, error) {
	r, err := wrap(RoleLiteral, src)
	if err != nil {
		return nil, err
	}
	r.via = via
	return &Declared{r: r}, nil
}

// Ref types the reference site via as src. context is the receiver symbol
// of a member access, or nil.
func Ref(src *Reflection, via node.Node, context *Reflection) (*Declared, error) {
	r, err := wrap(RoleReference, src)
	if err != nil {
		return nil, err
	}
	r.via = via
	r.context = context
	return &Declared{r: r}, nil
}

// Result types the operator or call expression via as src.
func Result(src *Reflection, via node.Node) (*Declared, error) {
	r, err := wrap(RoleResult, src)
	if err != nil {
		return nil, err
	}
	r.via = via
	return &Declared{r: r}, nil
}

// Fullyname is the canonical declaration name (org_fullyname).
func (r *Reflection) Fullyname() string { return r.orgFullyname }

// RefFullyname is the name visible at the use site.
func (r *Reflection) RefFullyname() string { return r.refFullyname }

// Domain is the last component of the declaration name.
func (r *Reflection) Domain() string {
	if i := strings.LastIndex(r.orgFullyname, "."); i >= 0 {
		return r.orgFullyname[i+1:]
	}
	return r.orgFullyname
}

// Module is the id of the module that declares the symbol.
func (r *Reflection) Module() string {
	if r.types != nil {
		return r.types.Module()
	}
	return ""
}

func (r *Reflection) Role() Role           { return r.role }
func (r *Reflection) Types() node.Node     { return r.types }
func (r *Reflection) Decl() node.Node      { return r.decl }
func (r *Reflection) Via() node.Node       { return r.via }
func (r *Reflection) Origin() *Reflection  { return r.origin }
func (r *Reflection) Context() *Reflection { return r.context }
func (r *Reflection) Bound() bool          { return r.bound }
func (r *Reflection) Table() *Table        { return r.table }
func (r *Reflection) Is(role Role) bool    { return r.role == role }
func (r *Reflection) String() string       { return r.role.String() + ":" + r.Shorthand() }

// Root follows the origin chain to its end.
func (r *Reflection) Root() *Reflection {
	cur := r
	for cur.origin != nil {
		cur = cur.origin
	}
	return cur
}

// Attrs returns the bound attrs. When self is unbound the lookup falls
// through the origin chain, then to the table's registered instance for
// the same declaration name.
func (r *Reflection) Attrs() []*Reflection {
	if attrs, ok := r.lookup(); ok {
		return attrs
	}
	if r.table != nil {
		if reg, ok := r.table.Get(r.orgFullyname); ok && reg != r {
			if attrs, ok := reg.lookup(); ok {
				return attrs
			}
		}
	}
	return nil
}

func (r *Reflection) lookup() ([]*Reflection, bool) {
	for cur := r; cur != nil; cur = cur.origin {
		if cur.bound {
			return cur.attrs, true
		}
	}
	return nil, false
}

// Shorthand renders the symbol as a type expression using domain names:
// dict[str, list[int]].
func (r *Reflection) Shorthand() string {
	return r.render((*Reflection).Domain, 0)
}

// Qualified is Shorthand with declaration fullnames.
func (r *Reflection) Qualified() string {
	return r.render((*Reflection).Fullyname, 0)
}

// maxRenderDepth guards against self-referential attrs, e.g. a method
// parameter typed as its own class.
const maxRenderDepth = 16

func (r *Reflection) render(name func(*Reflection) string, depth int) string {
	attrs := r.Attrs()
	if len(attrs) == 0 || depth >= maxRenderDepth {
		return name(r)
	}
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.render(name, depth+1)
	}
	return name(r) + "[" + strings.Join(parts, ", ") + "]"
}

// Equal compares the recursively derived type representations, so the same
// instantiation reached through different imports compares equal.
func (r *Reflection) Equal(other *Reflection) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Qualified() == other.Qualified()
}
