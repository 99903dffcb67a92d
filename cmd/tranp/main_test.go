package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")

	_, err = resolveTargetDir([]string{filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "directory not found")
}

func TestIndexPaths(t *testing.T) {
	t.Parallel()
	paths, err := indexPaths(context.Background(), []byte("a = 1\nb = 2\n"), -1)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, "module", paths[0].Path)
	assert.Equal(t, "module", paths[0].Tag)

	var values []string
	for _, p := range paths {
		if p.Value != "" {
			values = append(values, p.Value)
		}
	}
	assert.Equal(t, []string{"a", "1", "b", "2"}, values)

	shallow, err := indexPaths(context.Background(), []byte("a = 1\nb = 2\n"), 1)
	require.NoError(t, err)
	assert.Len(t, shallow, 3)
	assert.Equal(t, "module.expression_statement[0]", shallow[1].Path)

	_, err = indexPaths(context.Background(), []byte("def (:\n"), -1)
	assert.ErrorIs(t, err, tranp.ErrSyntax)
}

func TestAnalyzeAll_KeepsArgumentOrder(t *testing.T) {
	t.Parallel()
	a, err := tranp.New(tranp.WithSources(map[string]string{
		"models": "class User:\n    name: str\n",
		"app":    "from models import User\n\nu: User = User()\n",
	}))
	require.NoError(t, err)

	sessions, err := analyzeAll(context.Background(), a, []string{"app", "models"})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "app", sessions[0].Root())
	assert.Equal(t, "models", sessions[1].Root())

	_, err = analyzeAll(context.Background(), a, []string{"app", "nowhere"})
	assert.ErrorIs(t, err, tranp.ErrModuleNotFound)
}

// TestCommands_AnalyzeExportSymbol drives the root command end to end. It
// mutates package state so it does not run in parallel.
func TestCommands_AnalyzeExportSymbol(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.py"), []byte("class User:\n    name: str\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("from models import User\n\nu: User = User()\n"), 0o644))
	dbPath := filepath.Join(dir, "tranp.db")
	logPath := filepath.Join(dir, "tranp.log")

	run := func(args ...string) CLIResult {
		t.Helper()
		var buf bytes.Buffer
		stdout = &buf
		t.Cleanup(func() { stdout = os.Stdout })

		base := []string{"--src", dir, "--log-file", logPath, "--format", "json", "--db", dbPath}
		rootCmd.SetArgs(append(args, base...))
		require.NoError(t, rootCmd.Execute())

		var res CLIResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
		return res
	}

	res := run("analyze", "app")
	assert.Equal(t, "analyze", res.Command)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.TotalCount)
	assert.Positive(t, *res.TotalCount)
	assert.FileExists(t, dbPath)
	assert.FileExists(t, logPath)

	res = run("symbol", "app.u")
	sym, ok := res.Results.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "app.u", sym["name"])
	assert.Equal(t, "app", sym["module"])
	assert.Equal(t, "app.User", sym["origin"])

	res = run("modules", dir)
	mods, ok := res.Results.([]any)
	require.True(t, ok)
	assert.Len(t, mods, 2)
}
