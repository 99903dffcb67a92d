package tranp

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/reflection"
	"github.com/jward/tranp/internal/syntax"
)

const appSource = `class A:
    x: int = 0

    def __init__(self, name: str) -> None:
        self.name = name


a: A = A('n')
y = a.x
`

func newTestSession(t *testing.T, sources map[string]string, opts ...Option) *Session {
	t.Helper()
	a, err := New(append([]Option{WithSources(sources)}, opts...)...)
	require.NoError(t, err)
	s, err := a.Analyze(context.Background(), "app")
	require.NoError(t, err)
	return s
}

func TestAnalyze_Sources(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{"app": appSource})

	assert.Equal(t, "app", s.Root())
	assert.Equal(t, []string{"typing", "builtins", "app"}, s.Order())
	assert.Equal(t, len(s.Names()), s.Table().Len())

	a, err := s.ByFullname("app.a")
	require.NoError(t, err)
	assert.Equal(t, reflection.RoleVar, a.Role())
	assert.Equal(t, "A", a.Shorthand())

	_, err = s.ByFullname("app.nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyze_MissingModule(t *testing.T) {
	t.Parallel()
	a, err := New(WithSources(map[string]string{"app": "import nowhere\n"}))
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), "app")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.ErrorContains(t, err, "tranp: analyze app")
}

func TestAnalyze_SyntaxError(t *testing.T) {
	t.Parallel()
	a, err := New(WithSources(map[string]string{"app": "def broken(:\n"}))
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), "app")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestSession_TypeOf(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{"app": appSource})

	root, err := s.Entrypoint("app")
	require.NoError(t, err)
	mod := root.(*syntax.Module)

	decls, err := mod.Declarations()
	require.NoError(t, err)
	require.NotEmpty(t, decls)
	cls, err := s.TypeOf(decls[0])
	require.NoError(t, err)
	want, err := s.ByFullname("app.A")
	require.NoError(t, err)
	assert.Same(t, want, cls)

	assigns, err := mod.Assignments()
	require.NoError(t, err)

	var anno *syntax.AnnoAssign
	var move *syntax.MoveAssign
	for _, n := range assigns {
		switch v := n.(type) {
		case *syntax.AnnoAssign:
			if scope, _ := syntax.Scope(v); scope == "app" {
				anno = v
			}
		case *syntax.MoveAssign:
			if scope, _ := syntax.Scope(v); scope == "app" {
				move = v
			}
		}
	}
	require.NotNil(t, anno)
	require.NotNil(t, move)

	got, err := s.TypeOf(anno)
	require.NoError(t, err)
	assert.Equal(t, "app.A", got.Root().Fullyname())

	ann, err := anno.Annotation()
	require.NoError(t, err)
	got, err = s.TypeOf(ann)
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = s.TypeOf(move)
	require.NoError(t, err)
	assert.Equal(t, "builtins.int", got.Root().Fullyname())

	var init *syntax.Function
	for _, d := range decls {
		if fn, ok := d.(*syntax.Function); ok && fn.Symbol() == "__init__" {
			init = fn
		}
	}
	require.NotNil(t, init)
	params, err := init.Parameters()
	require.NoError(t, err)
	require.Len(t, params, 2)
	got, err = s.TypeOf(params[1])
	require.NoError(t, err)
	assert.Equal(t, "app.A.__init__.name", got.RefFullyname())
	assert.Equal(t, "var", got.Role().String())
	assert.Equal(t, "builtins.str", got.Root().Fullyname())

	value, err := move.Value()
	require.NoError(t, err)
	got, err = s.TypeOf(value)
	require.NoError(t, err)
	assert.Equal(t, "builtins.int", got.Root().Fullyname())
}

func TestSession_QueryAndUnload(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{"app": appSource})

	q, err := s.Query("app")
	require.NoError(t, err)
	assert.Equal(t, "app", q.Module())

	s.Unload("app")
	_, err = s.Query("app")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	r, err := s.ByFullname("app.A")
	require.NoError(t, err)
	assert.Equal(t, "A", r.Shorthand(), "symbols outlive the module caches")
}

func TestNew_DiscriminatorOverride(t *testing.T) {
	t.Parallel()

	kindOf := func(s *Session) string {
		r, err := s.ByFullname("app.A.__init__")
		require.NoError(t, err)
		return r.Types().Kind()
	}

	assert.Equal(t, syntax.KindConstructor, kindOf(newTestSession(t, map[string]string{"app": appSource})))

	s := newTestSession(t, map[string]string{"app": appSource}, WithDiscriminator(syntax.KindConstructor, "false"))
	assert.Equal(t, syntax.KindMethod, kindOf(s))

	fsys := fstest.MapFS{"constructor.risor": {Data: []byte(`false`)}}
	s = newTestSession(t, map[string]string{"app": appSource}, WithScriptsFS(fsys))
	assert.Equal(t, syntax.KindMethod, kindOf(s))
}

func TestNew_UnknownDiscriminatorKind(t *testing.T) {
	t.Parallel()
	_, err := New(WithDiscriminator("widget", "true"))
	assert.ErrorContains(t, err, "tranp: apply discriminators")
}

func TestNew_CustomCore(t *testing.T) {
	t.Parallel()
	a, err := New(WithCore("builtins"))
	require.NoError(t, err)
	assert.Equal(t, []string{"builtins"}, a.Core())
}
