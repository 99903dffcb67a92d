package syntax

import (
	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/node"
)

// Kinds of the catalog's candidates.
const (
	KindModule        = "module"
	KindClass         = "class"
	KindConstructor   = "constructor"
	KindMethod        = "method"
	KindFunction      = "function"
	KindParameter     = "parameter"
	KindTemplateClass = "template_class"
	KindAltClass      = "alt_class"
	KindAnnoAssign    = "anno_assign"
	KindMoveAssign    = "move_assign"
	KindImport        = "import"
	KindImportName    = "import_name"
	KindModuleImport  = "module_import"
	KindType          = "type"
	KindTypeName      = "type_name"
	KindGenericType   = "generic_type"
	KindSubscript     = "subscript"
	KindUnionType     = "union_type"
	KindNullType      = "null_type"
	KindForwardRef    = "forward_ref"
	KindRelayType     = "relay_type"
	KindName          = "name"
	KindAttribute     = "attribute"
	KindCall          = "call"
	KindLiteral       = "literal"
	KindOperator      = "operator"
	KindFragment      = "fragment"
)

// Catalog returns a fresh candidate table for the Python grammar. Callers
// may override discriminators on the returned table without affecting other
// tables.
func Catalog() *node.Table {
	t := node.NewTable()

	t.Register("module", node.Candidate{Kind: KindModule, New: func(b node.Base) node.Node { return &Module{b} }})
	t.Register("class_definition", node.Candidate{Kind: KindClass, New: func(b node.Base) node.Node { return &Class{b} }})
	t.Register("function_definition",
		node.Candidate{Kind: KindConstructor, Match: isConstructor, New: newFunction},
		node.Candidate{Kind: KindMethod, Match: isMethod, New: newFunction},
		node.Candidate{Kind: KindFunction, New: newFunction},
	)

	param := node.Candidate{Kind: KindParameter, New: func(b node.Base) node.Node { return &Parameter{b} }}
	t.Register("identifier",
		withMatch(param, inParameters),
		node.Candidate{Kind: KindTypeName, Match: inType, New: func(b node.Base) node.Node { return &TypeName{b} }},
		node.Candidate{Kind: KindName, New: func(b node.Base) node.Node { return &Name{b} }},
	)
	for _, tag := range []string{"typed_parameter", "default_parameter", "typed_default_parameter"} {
		t.Register(tag, param)
	}
	for _, tag := range []string{"list_splat_pattern", "dictionary_splat_pattern"} {
		t.Register(tag, withMatch(param, inParameters))
	}

	t.Register("assignment",
		node.Candidate{Kind: KindTemplateClass, Match: isTemplateClass, New: func(b node.Base) node.Node { return &TemplateClass{b} }},
		node.Candidate{Kind: KindAltClass, Match: isAltClass, New: func(b node.Base) node.Node { return &AltClass{b} }},
		node.Candidate{Kind: KindAnnoAssign, Match: hasType, New: func(b node.Base) node.Node { return &AnnoAssign{assign{b}} }},
		node.Candidate{Kind: KindMoveAssign, New: func(b node.Base) node.Node { return &MoveAssign{assign{b}} }},
	)

	t.Register("import_from_statement", node.Candidate{Kind: KindImport, New: func(b node.Base) node.Node { return &Import{b} }})
	t.Register("import_statement", node.Candidate{Kind: KindModuleImport, New: func(b node.Base) node.Node { return &ModuleImport{b} }})
	importName := node.Candidate{Kind: KindImportName, Match: inImport, New: func(b node.Base) node.Node { return &ImportName{b} }}
	t.Register("dotted_name", importName)
	t.Register("aliased_import", importName)

	t.Register("type", node.Candidate{Kind: KindType, New: func(b node.Base) node.Node { return &Type{b} }})
	t.Register("generic_type", node.Candidate{Kind: KindGenericType, New: func(b node.Base) node.Node { return &GenericType{b} }})
	t.Register("subscript", node.Candidate{Kind: KindSubscript, New: func(b node.Base) node.Node { return &Subscript{b} }})
	t.Register("union_type", node.Candidate{Kind: KindUnionType, New: newUnion})
	t.Register("member_type", node.Candidate{Kind: KindRelayType, New: newRelay})

	t.Register("attribute",
		node.Candidate{Kind: KindRelayType, Match: inType, New: newRelay},
		node.Candidate{Kind: KindAttribute, New: func(b node.Base) node.Node { return &Attribute{b} }},
	)
	t.Register("none",
		node.Candidate{Kind: KindNullType, Match: inType, New: func(b node.Base) node.Node { return &NullType{b} }},
		literal,
	)
	t.Register("string",
		node.Candidate{Kind: KindForwardRef, Match: inType, New: func(b node.Base) node.Node { return &ForwardRef{b} }},
		literal,
	)
	t.Register("binary_operator",
		node.Candidate{Kind: KindUnionType, Match: isTypeUnion, New: newUnion},
		operator,
	)
	for tag := range literalClasses {
		if tag == "none" || tag == "string" {
			continue
		}
		t.Register(tag, literal)
	}
	for _, tag := range []string{"boolean_operator", "comparison_operator", "unary_operator", "not_operator"} {
		t.Register(tag, operator)
	}
	t.Register("call", node.Candidate{Kind: KindCall, New: func(b node.Base) node.Node { return &Call{b} }})

	t.Fallback(node.Candidate{Kind: KindFragment, New: func(b node.Base) node.Node { return &Fragment{b} }})
	return t
}

var (
	literal  = node.Candidate{Kind: KindLiteral, New: func(b node.Base) node.Node { return &Literal{b} }}
	operator = node.Candidate{Kind: KindOperator, New: func(b node.Base) node.Node { return &Operator{b} }}
)

func newFunction(b node.Base) node.Node { return &Function{b} }
func newUnion(b node.Base) node.Node    { return &UnionType{b} }
func newRelay(b node.Base) node.Node    { return &RelayType{b} }

func withMatch(c node.Candidate, m node.Matcher) node.Candidate {
	c.Match = m
	return c
}

func inParameters(p node.Probe) bool {
	parent := p.ParentTag()
	return parent == "parameters" || parent == "lambda_parameters"
}

func inType(p node.Probe) bool { return p.Under("type") }

func inImport(p node.Probe) bool {
	return p.Under("import_from_statement") || p.Under("import_statement")
}

func hasType(p node.Probe) bool { return p.HasChild("type") }

// isMethod matches a function whose body position is a class block, either
// directly or through a decorated_definition.
func isMethod(p node.Probe) bool {
	tags := p.AncestorTags()
	if len(tags) > 0 && tags[0] == "decorated_definition" {
		tags = tags[1:]
	}
	return len(tags) >= 2 && tags[0] == "block" && tags[1] == "class_definition"
}

func isConstructor(p node.Probe) bool {
	return isMethod(p) && identifierOf(p.Entry) == "__init__"
}

// isTemplateClass matches T = TypeVar(...).
func isTemplateClass(p node.Probe) bool {
	if p.HasChild("type") {
		return false
	}
	call, ok := p.Child("call")
	if !ok || len(call.Children()) == 0 {
		return false
	}
	return lastIdentifier(call.Children()[0]) == "TypeVar"
}

// isAltClass matches X: TypeAlias = ...
func isAltClass(p node.Probe) bool {
	typ, ok := p.Child("type")
	if !ok || len(typ.Children()) == 0 {
		return false
	}
	return lastIdentifier(typ.Children()[0]) == "TypeAlias"
}

func isTypeUnion(p node.Probe) bool {
	if !p.Under("type") {
		return false
	}
	op, ok := p.Child("operator")
	return ok && op.Value() == "|"
}

func identifierOf(e entry.Entry) string {
	for _, c := range e.Children() {
		if c.Tag() == "identifier" {
			return c.Value()
		}
	}
	return ""
}

// lastIdentifier returns the final identifier of a name or attribute chain.
func lastIdentifier(e entry.Entry) string {
	if e.Tag() == "identifier" {
		return e.Value()
	}
	var names []string
	entry.Walk(e, func(c entry.Entry) bool {
		if c.Tag() == "identifier" {
			names = append(names, c.Value())
		}
		return true
	})
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}
