package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
	"github.com/jward/tranp/internal/node"
)

type stubNode struct{ node.Base }

func TestClassify_FirstAcceptingCandidateWins(t *testing.T) {
	t.Parallel()

	var probed []string
	mk := func(kind string, accept bool) node.Candidate {
		return node.Candidate{
			Kind: kind,
			Match: func(p node.Probe) bool {
				probed = append(probed, kind)
				return accept
			},
			New: func(b node.Base) node.Node { return &stubNode{Base: b} },
		}
	}
	table := node.NewTable().Register("assignment", mk("first", false), mk("second", true), mk("third", true))
	r := New(table)

	p := node.Probe{Path: fullpath.Root("assignment"), Entry: entry.New("assignment")}
	cls, err := r.Classify(p)
	require.NoError(t, err)
	assert.Equal(t, "second", cls.Candidate.Kind)
	assert.False(t, cls.Fallback)
	assert.Equal(t, []string{"first", "second"}, probed)
}

func TestResolve_FallbackAndUnresolved(t *testing.T) {
	t.Parallel()

	newStub := func(b node.Base) node.Node { return &stubNode{Base: b} }
	p := fullpath.Root("pass_statement")
	e := entry.New("pass_statement")

	r := New(node.NewTable())
	_, err := r.Resolve(nil, "m", p, e)
	assert.ErrorIs(t, err, ErrUnresolvedNode)
	assert.False(t, r.Resolvable(node.Probe{Path: p, Entry: e}))

	r = New(node.NewTable().Fallback(node.Candidate{Kind: "fragment", New: newStub}))
	n, err := r.Resolve(nil, "m", p, e)
	require.NoError(t, err)
	assert.Equal(t, "fragment", n.Kind())
	assert.False(t, r.Resolvable(node.Probe{Path: p, Entry: e}))
	assert.Equal(t, 1, r.Len())
}

func TestResolve_CachesUntilClear(t *testing.T) {
	t.Parallel()

	built := 0
	table := node.NewTable().Register("identifier", node.Candidate{
		Kind: "name",
		New: func(b node.Base) node.Node {
			built++
			return &stubNode{Base: b}
		},
	})
	r := New(table)
	p := fullpath.MustParse("module.identifier")
	e := entry.Leaf("identifier", "x")

	a, err := r.Resolve(nil, "m", p, e)
	require.NoError(t, err)
	b, err := r.Resolve(nil, "m", p, e)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, built)

	cached, ok := r.Cached(p)
	require.True(t, ok)
	assert.Same(t, a, cached)

	r.Clear()
	c, err := r.Resolve(nil, "m", p, e)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, built)
}
