package reflection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func origin(t *testing.T, tbl *Table, name string, attrs ...*Reflection) *Reflection {
	t.Helper()
	d := NewOrigin(name, nil)
	r, err := d.Extends(attrs...)
	require.NoError(t, err)
	if tbl != nil {
		require.NoError(t, tbl.Add(name, r))
	}
	return r
}

func TestExtends_SecondCallFails(t *testing.T) {
	t.Parallel()
	intT := origin(t, nil, "builtins.int")
	d := NewOrigin("builtins.list", nil)

	_, err := d.Extends(intT)
	require.NoError(t, err)
	_, err = d.Extends(intT)
	require.ErrorIs(t, err, ErrLogic)
	_, err = d.Extends()
	require.ErrorIs(t, err, ErrLogic)
}

func TestExtends_ReferenceAlwaysFails(t *testing.T) {
	t.Parallel()
	a := origin(t, nil, "m.A")
	for _, n := range []int{0, 1, 3} {
		d, err := Ref(a, nil, nil)
		require.NoError(t, err)
		attrs := make([]*Reflection, n)
		for i := range attrs {
			attrs[i] = a
		}
		_, err = d.Extends(attrs...)
		require.ErrorIs(t, err, ErrLogic, "extends with %d attrs", n)
		assert.False(t, d.Reflection().Bound())
	}
}

func TestExtends_ZeroAttrsBindsEmpty(t *testing.T) {
	t.Parallel()
	list := origin(t, nil, "builtins.list", origin(t, nil, "builtins.T"))
	d, err := Var(list, "m.x", nil)
	require.NoError(t, err)

	r, err := d.Extends()
	require.NoError(t, err)
	assert.True(t, r.Bound())
	assert.Empty(t, r.Attrs(), "an empty binding does not fall through")
}

func TestWrap_RoleCompatibility(t *testing.T) {
	t.Parallel()
	o := origin(t, nil, "m.A")
	mk := map[Role]*Reflection{RoleOrigin: o}
	for _, step := range []struct {
		role Role
		make func() (*Declared, error)
	}{
		{RoleImport, func() (*Declared, error) { return Import(o, "n.A", nil) }},
		{RoleClass, func() (*Declared, error) { return Types(o, nil) }},
		{RoleVar, func() (*Declared, error) { return Var(o, "m.v", nil) }},
		{RoleGeneric, func() (*Declared, error) { return Generic(o, nil) }},
		{RoleLiteral, func() (*Declared, error) { return Literal(o, nil) }},
		{RoleReference, func() (*Declared, error) { return Ref(o, nil, nil) }},
		{RoleResult, func() (*Declared, error) { return Result(o, nil) }},
	} {
		d, err := step.make()
		require.NoError(t, err)
		mk[step.role] = d.Reflection()
	}

	wrappers := map[Role]func(*Reflection) (*Declared, error){
		RoleImport:    func(s *Reflection) (*Declared, error) { return Import(s, "x.y", nil) },
		RoleClass:     func(s *Reflection) (*Declared, error) { return Types(s, nil) },
		RoleVar:       func(s *Reflection) (*Declared, error) { return Var(s, "x.y", nil) },
		RoleGeneric:   func(s *Reflection) (*Declared, error) { return Generic(s, nil) },
		RoleLiteral:   func(s *Reflection) (*Declared, error) { return Literal(s, nil) },
		RoleReference: func(s *Reflection) (*Declared, error) { return Ref(s, nil, nil) },
		RoleResult:    func(s *Reflection) (*Declared, error) { return Result(s, nil) },
	}
	for to, fn := range wrappers {
		for from, src := range mk {
			t.Run(to.String()+"<-"+from.String(), func(t *testing.T) {
				d, err := fn(src)
				if compatible(to, from) {
					require.NoError(t, err)
					assert.Equal(t, to, d.Reflection().Role())
					assert.Same(t, src, d.Reflection().Origin())
					return
				}
				require.ErrorIs(t, err, ErrLogic)
			})
		}
	}

	// Spot-check the rules that shape the pipeline.
	assert.False(t, compatible(RoleVar, RoleVar))
	assert.False(t, compatible(RoleReference, RoleReference))
	assert.False(t, compatible(RoleGeneric, RoleVar))
	assert.True(t, compatible(RoleResult, RoleResult))
}

func TestWrap_NilSource(t *testing.T) {
	t.Parallel()
	_, err := Var(nil, "m.x", nil)
	require.ErrorIs(t, err, ErrLogic)
}

func TestImport_RewritesRefKeepsOrg(t *testing.T) {
	t.Parallel()
	a := origin(t, nil, "M1.A")
	d, err := Import(a, "M2.A", nil)
	require.NoError(t, err)
	imp := d.Reflection()

	assert.Equal(t, "M1.A", imp.Fullyname())
	assert.Equal(t, "M2.A", imp.RefFullyname())
	assert.Equal(t, "A", imp.Domain())
	assert.Same(t, a, imp.Root())
}

func TestAttrs_FallThroughOriginChain(t *testing.T) {
	t.Parallel()
	k := origin(t, nil, "builtins.K")
	v := origin(t, nil, "builtins.V")
	dict := origin(t, nil, "builtins.dict", k, v)

	d, err := Import(dict, "m.dict", nil)
	require.NoError(t, err)
	imp := d.Reflection()
	d2, err := Var(imp, "m.x", nil)
	require.NoError(t, err)

	attrs := d2.Reflection().Attrs()
	require.Len(t, attrs, 2)
	assert.Same(t, k, attrs[0])
	assert.Same(t, v, attrs[1])
}

func TestAttrs_FallBackToRegisteredInstance(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	intT := origin(t, nil, "builtins.int")

	registered := NewOrigin("m.f", nil)
	require.NoError(t, tbl.Add("m.f", registered.Reflection()))

	// A second materialization of m.f that never reaches the table.
	dup := NewOrigin("m.f", nil)
	wrapped, err := Var(dup.Reflection(), "m.g", nil)
	require.NoError(t, err)
	require.NoError(t, tbl.Add("m.g", wrapped.Reflection()))
	assert.Same(t, tbl, wrapped.Reflection().Table())
	assert.Empty(t, wrapped.Reflection().Attrs(), "nothing bound yet")

	_, err = registered.Extends(intT)
	require.NoError(t, err)
	assert.Equal(t, []*Reflection{intT}, wrapped.Reflection().Attrs())
}

func TestShorthandAndEqual(t *testing.T) {
	t.Parallel()
	str := origin(t, nil, "builtins.str")
	intT := origin(t, nil, "builtins.int")
	list := origin(t, nil, "builtins.list", origin(t, nil, "builtins.T"))
	dict := origin(t, nil, "builtins.dict")

	inner := func(src *Reflection) *Reflection {
		g, err := Generic(src, nil)
		require.NoError(t, err)
		r, err := g.Extends(intT)
		require.NoError(t, err)
		return r
	}

	v, err := Var(dict, "m.d", nil)
	require.NoError(t, err)
	d, err := v.Extends(str, inner(list))
	require.NoError(t, err)
	assert.Equal(t, "dict[str, list[int]]", d.Shorthand())
	assert.Equal(t, "builtins.dict[builtins.str, builtins.list[builtins.int]]", d.Qualified())

	imported, err := Import(list, "other.list", nil)
	require.NoError(t, err)
	assert.True(t, inner(list).Equal(inner(imported.Reflection())))
	assert.False(t, inner(list).Equal(list))
	assert.False(t, d.Equal(nil))
}

func TestTable_OrderAndDuplicates(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	names := []string{"builtins.int", "M1.A", "M2.a", "M1.A.x"}
	for _, n := range names {
		origin(t, tbl, n)
	}
	assert.Equal(t, names, tbl.Names())
	assert.Equal(t, 4, tbl.Len())

	var seen []string
	for name := range tbl.All() {
		seen = append(seen, name)
	}
	assert.Equal(t, names, seen)

	err := tbl.Add("M1.A", NewOrigin("M1.A", nil).Reflection())
	require.ErrorIs(t, err, ErrLogic)
	assert.Equal(t, 4, tbl.Len())
}

func TestTable_DeferBindsPlaceholderInPlace(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	intT := origin(t, tbl, "builtins.int")

	fn := NewOrigin("m.f", nil)
	require.NoError(t, tbl.Add("m.f", fn.Reflection()))
	held := fn.Reflection()
	tbl.Defer(fn, func() ([]*Reflection, error) { return []*Reflection{intT}, nil })

	assert.False(t, held.Bound())
	assert.Equal(t, 1, tbl.Pending())
	require.NoError(t, tbl.Finalize())
	assert.True(t, held.Bound())
	assert.Equal(t, []*Reflection{intT}, held.Attrs())
	assert.Zero(t, tbl.Pending())
}

func TestTable_FinalizeStopsOnError(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	boom := errors.New("boom")
	a := NewOrigin("m.a", nil)
	b := NewOrigin("m.b", nil)
	tbl.Defer(a, func() ([]*Reflection, error) { return nil, boom })
	tbl.Defer(b, func() ([]*Reflection, error) { return nil, nil })

	err := tbl.Finalize()
	require.ErrorIs(t, err, boom)
	assert.False(t, b.Reflection().Bound())
	assert.Equal(t, 2, tbl.Pending())
}

func TestRole_StringRoundTrip(t *testing.T) {
	t.Parallel()
	for r := RoleOrigin; r <= RoleResult; r++ {
		got, ok := ParseRole(r.String())
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
	_, ok := ParseRole("nope")
	assert.False(t, ok)
}
