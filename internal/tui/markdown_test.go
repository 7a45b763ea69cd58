package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	r, err := NewMarkdownRenderer("dark", 80)
	require.NoError(t, err)
	result, err := r.Render("Hello **world**")
	require.NoError(t, err)
	assert.NotEmpty(t, result)
	assert.Contains(t, result, "world")
}

func TestRenderMarkdownNoTTYStyle(t *testing.T) {
	r, err := NewMarkdownRenderer("notty", 80)
	require.NoError(t, err)
	result, err := r.Render("## Fillback (code)\n\n- main.md\n")
	require.NoError(t, err)
	assert.Contains(t, result, "Fillback (code)")
	assert.Contains(t, result, "main.md")
}

func TestRenderMarkdownCodeBlock(t *testing.T) {
	r, err := NewMarkdownRenderer("", 80)
	require.NoError(t, err)
	md := "```go\nfmt.Println(\"hello\")\n```"
	result, err := r.Render(md)
	require.NoError(t, err)
	assert.Contains(t, result, "Println")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	r, err := NewMarkdownRenderer("dark", 80)
	require.NoError(t, err)
	result, err := r.Render("")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRenderMarkdownNilRenderer(t *testing.T) {
	var r *MarkdownRenderer
	result, err := r.Render("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", result)
}
