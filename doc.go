// Package tranp is the semantic core of a Python-to-statically-typed
// transpiler. It materializes a typed, path-addressable node graph over
// tree-sitter parse trees, builds a whole-program symbol table across
// interdependent modules, and resolves the concrete type of every
// declaration and reference.
//
// # Pipeline
//
// [Analyzer.Analyze] runs module expansion for a root module:
//
//  1. Collect: load the core modules and the root, following imports, and
//     order them core first, then dependency post-order.
//  2. Declare: register an origin symbol for every class, function,
//     template and alias declaration.
//  3. Imports: bind imported names to the symbols they re-export.
//  4. Declarations: bind parameters, annotated and plain assignments to
//     their resolved types.
//  5. Finalize: resolve the deferred attributes of every origin.
//
// # Usage
//
//	a, err := tranp.New(tranp.WithSourceRoots("path/to/project"))
//	if err != nil { ... }
//
//	s, err := a.Analyze(ctx, "app.main")
//	if err != nil { ... }
//
//	r, err := s.ByFullname("app.main.User")
//	fmt.Println(r.Shorthand())
//
// A finished table can be exported to SQLite with [Session.Export] and read
// back later through [Open] and the [QueryBuilder].
//
// [Analyzer.Check] parses every module under a directory with a worker pool
// and reports the ones with syntax errors, without building a table.
//
// # Discriminators
//
// Node classification is driven by a candidate table whose discriminators
// can be overridden by Risor scripts named after the candidate kind, e.g.
// constructor.risor. The scripts package embeds the default set; the
// internal/runtime package documents the globals exposed to scripts.
package tranp
