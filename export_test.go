package tranp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/reflection"
)

func exportTestSession(t *testing.T) (*Session, *QueryBuilder) {
	t.Helper()
	s := newTestSession(t, map[string]string{
		"models": "class User:\n    name: str\n",
		"app":    "from models import User\n\nu: User = User()\nnames: list[str] = []\n",
	})
	dbPath := filepath.Join(t.TempDir(), "tranp.db")
	require.NoError(t, s.Export(dbPath))

	q, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return s, q
}

func TestExport_RoundTripsTableOrder(t *testing.T) {
	t.Parallel()
	s, q := exportTestSession(t)

	all, err := q.Store().AllSymbols()
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, sym := range all {
		names[i] = sym.Name
	}
	assert.Equal(t, s.Names(), names)

	mods, err := q.Modules()
	require.NoError(t, err)
	var order []string
	for _, m := range mods {
		order = append(order, m.Name)
	}
	assert.Equal(t, s.Order(), order)

	root, err := q.Root()
	require.NoError(t, err)
	assert.Equal(t, "app", root)

	ok, err := q.Verify()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExport_SymbolDetails(t *testing.T) {
	t.Parallel()
	_, q := exportTestSession(t)

	u, err := q.Symbol("app.u")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "app", u.Module)
	assert.Equal(t, "var", u.Role)
	assert.Equal(t, "User", u.Shorthand)
	assert.Equal(t, "app.User", u.Origin)
	assert.Equal(t, "name", u.DeclKind)

	names, err := q.Symbol("app.names")
	require.NoError(t, err)
	require.NotNil(t, names)
	assert.Equal(t, "list[str]", names.Shorthand)
	require.Len(t, names.Attrs, 1)
	assert.Equal(t, "builtins.str", names.Attrs[0].Fullname)

	missing, err := q.Symbol("app.nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExport_Readers(t *testing.T) {
	t.Parallel()
	_, q := exportTestSession(t)

	appSyms, err := q.ModuleSymbols("app")
	require.NoError(t, err)
	var names []string
	for _, sym := range appSyms {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"app.User", "app.u", "app.names"}, names)

	_, err = q.ModuleSymbols("nowhere")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	imports, err := q.ByRole(reflection.RoleImport)
	require.NoError(t, err)
	var appImports []*SymbolInfo
	for _, imp := range imports {
		assert.Equal(t, "import", imp.Role)
		if imp.Module == "app" {
			appImports = append(appImports, imp)
		}
	}
	require.Len(t, appImports, 1)
	assert.Equal(t, "app.User", appImports[0].Name)
	assert.Equal(t, "models.User", appImports[0].Fullname)

	derived, err := q.Derived("models.User")
	require.NoError(t, err)
	require.Len(t, derived, 1)
	assert.Equal(t, "app.User", derived[0].Name)
}

func TestExport_ReplacesPreviousExport(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "tranp.db")

	first := newTestSession(t, map[string]string{"app": "class Old:\n    pass\n"})
	require.NoError(t, first.Export(dbPath))
	second := newTestSession(t, map[string]string{"app": "class New:\n    pass\n"})
	require.NoError(t, second.Export(dbPath))

	q, err := Open(dbPath)
	require.NoError(t, err)
	defer q.Close()

	old, err := q.Symbol("app.Old")
	require.NoError(t, err)
	assert.Nil(t, old)
	ok, err := q.Verify()
	require.NoError(t, err)
	assert.True(t, ok)
}
