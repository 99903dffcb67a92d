package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	for _, f := range validFormats {
		assert.NoError(t, validateFormat(f), f)
	}
	assert.ErrorContains(t, validateFormat("xml"), `invalid format "xml"`)
}

func TestParseSlogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"bogus", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelWarn))
		})
	}
}

func sampleResult() CLIResult {
	total := 2
	return CLIResult{
		Command: "analyze",
		Results: []CLISymbol{
			{Name: "app.User", Role: "class", Type: "User"},
			{Name: "app.u", Role: "var", Type: "User", Origin: "app.User"},
		},
		TotalCount: &total,
	}
}

func TestWriteResult_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "json", sampleResult()))
	assert.Contains(t, buf.String(), `"command": "analyze"`)
	assert.Contains(t, buf.String(), `"origin": "app.User"`)
	assert.Contains(t, buf.String(), `"total_count": 2`)
}

func TestWriteResult_YAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "yaml", sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "command: analyze\n")
	assert.Contains(t, out, "- name: app.User\n")
	assert.Contains(t, out, "origin: app.User\n")
	assert.NotContains(t, out, "error:")
}

func TestWriteResult_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "text", sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "app.u")
	assert.Contains(t, out, "2 total")
}

func TestWriteResult_TextError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "text", CLIResult{Command: "symbol", Error: "boom"}))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestWriteResult_TextUnsupported(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := writeResult(&buf, "text", CLIResult{Results: 42})
	assert.ErrorContains(t, err, "unsupported result type")
}
