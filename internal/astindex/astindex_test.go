package astindex

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
)

// sampleTree mirrors `class A: x: int` followed by two statements.
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
			),
		),
		entry.New("expression_statement", entry.Leaf("identifier", "a")),
		entry.New("expression_statement", entry.Leaf("identifier", "b")),
	)
}

func mustIndex(t *testing.T, root entry.Entry, opts ...Option) *Index {
	t.Helper()
	ix, err := FullPathfy(root, opts...)
	require.NoError(t, err)
	return ix
}

func TestFullPathfy_AssignsOrdinalsOnlyToRepeatedTags(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree())
	var got []string
	for _, p := range ix.Paths() {
		got = append(got, p.Key())
	}
	assert.Equal(t, []string{
		"module",
		"module.class_definition",
		"module.class_definition.identifier",
		"module.class_definition.block",
		"module.class_definition.block.expression_statement",
		"module.class_definition.block.expression_statement.assignment",
		"module.class_definition.block.expression_statement.assignment.identifier",
		"module.class_definition.block.expression_statement.assignment.type",
		"module.class_definition.block.expression_statement.assignment.type.identifier",
		"module.expression_statement[0]",
		"module.expression_statement[0].identifier",
		"module.expression_statement[1]",
		"module.expression_statement[1].identifier",
	}, got)
}

func TestFullPathfy_OrdinalRuleOnRandomTrees(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	tags := []string{"a", "b", "c"}
	var build func(depth int) *entry.Plain
	build = func(depth int) *entry.Plain {
		tag := tags[rng.Intn(len(tags))]
		if depth == 0 || rng.Intn(4) == 0 {
			return entry.Leaf(tag, tag)
		}
		n := entry.New(tag)
		for i := 0; i < rng.Intn(4)+1; i++ {
			n.Append(build(depth - 1))
		}
		return n
	}

	for round := 0; round < 50; round++ {
		root := build(5)
		ix := mustIndex(t, root)
		for _, p := range ix.Paths()[1:] {
			parent := p.Parent()
			e, err := ix.By(parent)
			require.NoError(t, err)
			tag, _, hasOrdinal := p.Last()
			count := 0
			for _, c := range e.Children() {
				if c.Tag() == tag {
					count++
				}
			}
			assert.Equal(t, count >= 2, hasOrdinal, "path %s", p)
		}
	}
}

func TestFullPathfy_DepthLimit(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree(), WithDepth(1))
	assert.Equal(t, 4, ix.Len())
	assert.False(t, ix.Exists(fullpath.MustParse("module.class_definition.identifier")))
}

func TestFullPathfy_CustomRoot(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree(), WithRoot(fullpath.MustParse("pkg.module")))
	assert.Equal(t, "pkg.module", ix.Root().Key())
	assert.True(t, ix.Exists(fullpath.MustParse("pkg.module.class_definition.block")))
}

func TestFullPathfy_RejectsPathSyntaxInTags(t *testing.T) {
	t.Parallel()

	// "a.b" beside a nested a -> b would alias module.a.b.
	aliased := entry.New("module",
		entry.New("a", entry.Leaf("b", "inner")),
		entry.Leaf("a.b", "outer"),
	)
	_, err := FullPathfy(aliased)
	assert.ErrorIs(t, err, ErrInvalidTag)

	for _, tag := range []string{"x[0]", "y]", ""} {
		_, err := FullPathfy(entry.New("module", entry.Leaf(tag, "v")))
		assert.ErrorIs(t, err, ErrInvalidTag, "tag %q", tag)
	}

	_, err = FullPathfy(entry.New("mod.ule"))
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestGroupBy_ReturnsExactlySubtree(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree())
	base := fullpath.MustParse("module.class_definition.block")
	items, err := ix.GroupBy(base)
	require.NoError(t, err)

	// Compare against a brute-force scan of every indexed path.
	var want []string
	for _, p := range ix.Paths() {
		if p.HasPrefix(base) {
			want = append(want, p.Key())
		}
	}
	var got []string
	for _, it := range items {
		got = append(got, it.Path.Key())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, base.Key(), got[0])
}

func TestGroupBy_LeafIsSingleton(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree())
	items, err := ix.GroupBy(fullpath.MustParse("module.expression_statement[1].identifier"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Entry.Value())
}

func TestGroupBy_IndependentOfTreeSize(t *testing.T) {
	t.Parallel()

	root := entry.New("module")
	for i := 0; i < 2000; i++ {
		root.Append(entry.New("stmt", entry.Leaf("identifier", "x")))
	}
	ix := mustIndex(t, root)
	items, err := ix.GroupBy(fullpath.MustParse("module.stmt[1500]"))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestChildren(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree())
	items, err := ix.Children(fullpath.Root("module"))
	require.NoError(t, err)
	var got []string
	for _, it := range items {
		got = append(got, it.Path.Key())
	}
	assert.Equal(t, []string{
		"module.class_definition",
		"module.expression_statement[0]",
		"module.expression_statement[1]",
	}, got)
}

func TestAdd_RejectsOutOfOrder(t *testing.T) {
	t.Parallel()

	ix := New()
	require.NoError(t, ix.Add(fullpath.MustParse("m"), entry.New("m")))
	require.NoError(t, ix.Add(fullpath.MustParse("m.a"), entry.New("a")))
	require.NoError(t, ix.Add(fullpath.MustParse("m.a.x"), entry.Leaf("x", "1")))
	require.NoError(t, ix.Add(fullpath.MustParse("m.b"), entry.New("b")))

	// m.a's range is closed once m.b has been added.
	err := ix.Add(fullpath.MustParse("m.a.y"), entry.Leaf("y", "2"))
	assert.ErrorIs(t, err, ErrOutOfOrder)

	err = ix.Add(fullpath.MustParse("m.b"), entry.New("b"))
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestLookups_NotFound(t *testing.T) {
	t.Parallel()

	ix := mustIndex(t, sampleTree())
	missing := fullpath.MustParse("module.nothing")

	_, err := ix.By(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ix.GroupBy(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ix.Children(missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, strings.Contains(err.Error(), "module.nothing"))
}
