package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/astindex"
	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
	"github.com/jward/tranp/internal/node"
	"github.com/jward/tranp/internal/resolver"
)

type testNode struct{ node.Base }

func newTestNode(b node.Base) node.Node { return &testNode{Base: b} }

// testTable maps a handful of tags; "block" and "expression_statement" stay
// unmapped scaffolding.
func testTable() *node.Table {
	return node.NewTable().
		Register("module", node.Candidate{Kind: "module", New: newTestNode}).
		Register("class_definition", node.Candidate{Kind: "class", New: newTestNode}).
		Register("assignment", node.Candidate{Kind: "assign", New: newTestNode}).
		Register("type", node.Candidate{Kind: "type", New: newTestNode}).
		Register("identifier",
			node.Candidate{
				Kind:  "type_name",
				Match: func(p node.Probe) bool { return p.ParentTag() == "type" },
				New:   newTestNode,
			},
			node.Candidate{
				Kind:  "decl_name",
				Match: func(p node.Probe) bool { return p.ParentTag() == "class_definition" },
				New:   newTestNode,
			},
		).
		Fallback(node.Candidate{Kind: "fragment", New: newTestNode})
}

func sampleTree() entry.Entry {
	return entry.New("module",
		entry.New("class_definition",
			entry.Leaf("identifier", "A"),
			entry.New("block",
				entry.New("expression_statement",
					entry.New("assignment",
						entry.Leaf("identifier", "x"),
						entry.New("type", entry.Leaf("identifier", "int")),
					),
				),
				entry.New("expression_statement",
					entry.New("assignment",
						entry.Leaf("identifier", "y"),
						entry.New("type", entry.Leaf("identifier", "str")),
					),
				),
			),
		),
	)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New("m", sampleTree(), testTable())
	require.NoError(t, err)
	return e
}

const (
	classPath  = "module.class_definition"
	assignPath = "module.class_definition.block.expression_statement[0].assignment"
	xNamePath  = assignPath + ".identifier"
	typeName   = assignPath + ".type.identifier"
)

func TestBy_MaterializesByDiscriminator(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	n, err := e.By(fullpath.MustParse(typeName))
	require.NoError(t, err)
	assert.Equal(t, "type_name", n.Kind())

	n, err = e.By(fullpath.MustParse(classPath + ".identifier"))
	require.NoError(t, err)
	assert.Equal(t, "decl_name", n.Kind())

	// identifier under assignment: no candidate accepts, falls back.
	n, err = e.By(fullpath.MustParse(xNamePath))
	require.NoError(t, err)
	assert.Equal(t, "fragment", n.Kind())
}

func TestBy_IdentityCacheAndClear(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	p := fullpath.MustParse(assignPath)

	a, err := e.By(p)
	require.NoError(t, err)
	b, err := e.By(p)
	require.NoError(t, err)
	assert.Same(t, a, b)

	e.Clear()
	c, err := e.By(p)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.True(t, node.Same(a, c))
	assert.Equal(t, a.Kind(), c.Kind())
}

func TestBy_UnindexedPathIsNotFound(t *testing.T) {
	t.Parallel()

	// No fallback: an unindexed path must still report NotFound, never
	// UnresolvedNode.
	table := node.NewTable().Register("module", node.Candidate{Kind: "module", New: newTestNode})
	e, err := New("m", sampleTree(), table)
	require.NoError(t, err)

	_, err = e.By(fullpath.MustParse("module.nowhere"))
	assert.ErrorIs(t, err, astindex.ErrNotFound)
	assert.NotErrorIs(t, err, resolver.ErrUnresolvedNode)

	_, err = e.By(fullpath.MustParse(classPath))
	assert.ErrorIs(t, err, resolver.ErrUnresolvedNode)
}

func TestParent_SkipsScaffolding(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	parent, err := e.Parent(fullpath.MustParse(assignPath))
	require.NoError(t, err)
	assert.Equal(t, classPath, parent.Path().Key())

	parent, err = e.Parent(fullpath.MustParse(typeName))
	require.NoError(t, err)
	assert.Equal(t, assignPath+".type", parent.Path().Key())

	_, err = e.Parent(fullpath.Root("module"))
	assert.ErrorIs(t, err, astindex.ErrNotFound)
}

func TestParent_EqualsAncestorOfFirstResolvableTag(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	for _, p := range e.Index().Paths()[1:] {
		parent, err := e.Parent(p)
		require.NoError(t, err)
		anc, err := e.Ancestor(p, parent.Path().Tag())
		require.NoError(t, err)
		assert.Same(t, parent, anc, "via %s", p)
	}
}

func TestAncestor(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	anc, err := e.Ancestor(fullpath.MustParse(typeName), "expression_statement")
	require.NoError(t, err)
	assert.Equal(t, "module.class_definition.block.expression_statement[0]", anc.Path().Key())

	_, err = e.Ancestor(fullpath.MustParse(typeName), "function_definition")
	assert.ErrorIs(t, err, astindex.ErrNotFound)
}

func TestSiblingsAndChildren(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	children, err := e.Children(fullpath.MustParse(assignPath))
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, xNamePath, children[0].Path().Key())

	siblings, err := e.Siblings(fullpath.MustParse(xNamePath))
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, assignPath+".type", siblings[0].Path().Key())

	siblings, err = e.Siblings(fullpath.Root("module"))
	require.NoError(t, err)
	assert.Empty(t, siblings)
}

func TestExpand_StopsAtResolvableNodes(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	// The class body is wrapped in block/expression_statement scaffolding;
	// Expand surfaces the assignments directly.
	nodes, err := e.Expand(fullpath.MustParse(classPath + ".block"))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "assign", nodes[0].Kind())
	assert.Equal(t, "assign", nodes[1].Kind())

	// Terminal leaves that only resolve to the fallback are included.
	nodes, err = e.Expand(fullpath.MustParse(assignPath))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "fragment", nodes[0].Kind())
	assert.Equal(t, "type", nodes[1].Kind())
}

func TestValues_DocumentOrder(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	vals, err := e.Values(fullpath.Root("module"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "x", "int", "y", "str"}, vals)

	_, err = e.Values(fullpath.MustParse("module.none"))
	assert.ErrorIs(t, err, astindex.ErrNotFound)
}
