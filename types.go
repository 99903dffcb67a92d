package tranp

import (
	"github.com/jward/tranp/internal/finder"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/parser"
	"github.com/jward/tranp/internal/query"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/store"
)

// Public aliases for internal types used in the Session and QueryBuilder
// APIs. These are Go type aliases (=), so no conversion is needed.

type (
	Reflection = reflection.Reflection
	Role       = reflection.Role
	Table      = reflection.Table
	Node       = node.Node
	Engine     = query.Engine
	Store      = store.Store
	Symbol     = store.Symbol
	SymbolAttr = store.SymbolAttr
	Module     = store.Module
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrLogic reports an analysis-aborting inconsistency: double extends,
	// a role mismatch, a duplicate declaration or a malformed type.
	ErrLogic = reflection.ErrLogic
	// ErrNotFound reports an unresolvable name.
	ErrNotFound = finder.ErrNotFound
	// ErrModuleNotFound reports a module no loader can provide.
	ErrModuleNotFound = module.ErrNotFound
	// ErrSyntax reports a source file the parser rejected.
	ErrSyntax = parser.ErrSyntax
)
