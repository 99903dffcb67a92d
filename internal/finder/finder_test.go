package finder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/expansion"
	"github.com/jward/tranp/internal/finder"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

func program(t *testing.T, sources map[string]string) *expansion.Program {
	t.Helper()
	loader := module.Chain{module.NewSourceLoader(sources), module.CoreLoader()}
	p, err := expansion.New(module.NewModules(loader, syntax.Catalog())).Expand(context.Background(), "m")
	require.NoError(t, err)
	return p
}

func TestByName_ScopeChainThenCore(t *testing.T) {
	t.Parallel()
	p := program(t, map[string]string{
		"m": "int = 1\n\nclass A:\n    x: str\n\ndef f(x: float):\n    pass\n",
	})
	f := p.Finder

	r, err := f.ByName("m", "m.f", "x")
	require.NoError(t, err)
	assert.Equal(t, "m.f.x", r.RefFullyname(), "innermost scope wins")

	r, err = f.ByName("m", "m", "int")
	require.NoError(t, err)
	assert.Equal(t, "m.int", r.RefFullyname(), "module shadows core")

	r, err = f.ByName("m", "m", "str")
	require.NoError(t, err)
	assert.Equal(t, "builtins.str", r.Fullyname())

	_, err = f.ByName("m", "m", "nope")
	require.ErrorIs(t, err, finder.ErrNotFound)
}

func TestByDotted(t *testing.T) {
	t.Parallel()
	p := program(t, map[string]string{
		"lib": "class Outer:\n    class Inner:\n        pass\n",
		"m":   "import lib\nfrom lib import Outer\n",
	})
	f := p.Finder

	r, err := f.ByDotted("m", "m", "lib.Outer.Inner")
	require.NoError(t, err)
	assert.Equal(t, "lib.Outer.Inner", r.Fullyname())

	r, err = f.ByDotted("m", "m", "Outer.Inner")
	require.NoError(t, err)
	assert.Equal(t, "lib.Outer.Inner", r.Fullyname())

	_, err = f.ByDotted("m", "m", "lib.Missing")
	require.ErrorIs(t, err, finder.ErrNotFound)
}

func TestByFullnameAndUnknown(t *testing.T) {
	t.Parallel()
	p := program(t, map[string]string{"m": "pass\n"})

	u, err := p.Finder.Unknown()
	require.NoError(t, err)
	assert.Equal(t, finder.UnknownName, u.Fullyname())
	assert.Equal(t, reflection.RoleOrigin, u.Role())

	_, err = p.Finder.ByFullname("m.nothing")
	require.ErrorIs(t, err, finder.ErrNotFound)
}

func TestMember_ThroughBases(t *testing.T) {
	t.Parallel()
	p := program(t, map[string]string{
		"m": "class A:\n    def run(self) -> int: ...\n\nclass B(A):\n    pass\n\nb = B()\n",
	})
	b, ok := p.Table.Get("m.b")
	require.True(t, ok)

	run, err := p.Finder.Member(b, "run")
	require.NoError(t, err)
	assert.Equal(t, "m.A.run", run.Fullyname())

	_, err = p.Finder.Member(b, "walk")
	require.ErrorIs(t, err, finder.ErrNotFound)
}

func TestMalformedAnnotationIsLogicError(t *testing.T) {
	t.Parallel()
	loader := module.Chain{module.NewSourceLoader(map[string]string{"m": "x: make() = 1\n"}), module.CoreLoader()}
	_, err := expansion.New(module.NewModules(loader, syntax.Catalog())).Expand(context.Background(), "m")
	require.ErrorIs(t, err, reflection.ErrLogic)
}

func TestDeclaration(t *testing.T) {
	t.Parallel()
	o := reflection.NewOrigin("a.A", nil).Reflection()
	i1, err := reflection.Import(o, "b.A", nil)
	require.NoError(t, err)
	i2, err := reflection.Import(i1.Reflection(), "c.A", nil)
	require.NoError(t, err)
	assert.Same(t, o, finder.Declaration(i2.Reflection()))
	assert.Same(t, o, finder.Declaration(o))
}
