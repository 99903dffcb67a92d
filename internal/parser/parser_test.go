package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tranp/internal/entry"
)

func find(e entry.Entry, tag string) entry.Entry {
	var found entry.Entry
	entry.Walk(e, func(c entry.Entry) bool {
		if found == nil && c.Tag() == tag {
			found = c
		}
		return found == nil
	})
	return found
}

func TestParse_ModuleShape(t *testing.T) {
	t.Parallel()
	src := "# leading comment\nclass A:\n    x: int = 1  # trailing\n"
	root, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "module", root.Tag())
	require.Len(t, root.Children(), 1, "comments are dropped")
	cls := root.Children()[0]
	assert.Equal(t, "class_definition", cls.Tag())
	assert.Equal(t, "identifier", cls.Children()[0].Tag())
	assert.Equal(t, "A", cls.Children()[0].Value())
	assert.Nil(t, find(root, "comment"))
}

func TestParse_TerminalsCarryText(t *testing.T) {
	t.Parallel()
	root, err := Parse(context.Background(), []byte("x = 42\n"))
	require.NoError(t, err)

	lit := find(root, "integer")
	require.NotNil(t, lit)
	assert.True(t, lit.IsTerminal())
	assert.Equal(t, "42", lit.Value())
}

func TestParse_KeepsOperatorTokens(t *testing.T) {
	t.Parallel()
	root, err := Parse(context.Background(), []byte("y = a + b\n"))
	require.NoError(t, err)

	bin := find(root, "binary_operator")
	require.NotNil(t, bin)
	var tags []string
	for _, c := range bin.Children() {
		tags = append(tags, c.Tag())
	}
	assert.Equal(t, []string{"identifier", "operator", "identifier"}, tags)
	assert.Equal(t, "+", bin.Children()[1].Value())
}

func TestParse_DropsAnonymousPunctuation(t *testing.T) {
	t.Parallel()
	root, err := Parse(context.Background(), []byte("def f(a, b):\n    return a\n"))
	require.NoError(t, err)

	params := find(root, "parameters")
	require.NotNil(t, params)
	require.Len(t, params.Children(), 2)
	for _, c := range params.Children() {
		assert.Equal(t, "identifier", c.Tag())
	}
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), []byte("class :\n"))
	require.ErrorIs(t, err, ErrSyntax)
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"pkg/mod.py", "python", true},
		{"stubs/mod.PYI", "python", true},
		{"main.go", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
