package fillback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeckitStrategyMergesFeatures(t *testing.T) {
	root := writeTree(t, map[string]string{
		".specify/memory/constitution.md": "# Constitution\n",
		"specs/001-login/spec.md":         "# Login\n\nUsers can log in.\n",
		"specs/001-login/plan.md":         "## Approach\n\nUse sessions.\n",
		"specs/001-login/tasks.md":        "- [ ] T001 add form\n",
		"specs/002-export/spec.md":        "Export data as CSV.\n",
		"specs/003-empty/README.md":       "nothing to merge",
	})
	s := NewSpeckitStrategy(testOptions(t))

	require.True(t, s.CanHandle(root))
	require.NoError(t, s.Execute(context.Background(), root, "speckit-import"))

	assert.Equal(t, []string{"001-login.md", "002-export.md"}, s.Report().Files)

	data, err := os.ReadFile(filepath.Join(root, "specs", "001-login.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# 001-login\n")
	assert.Contains(t, content, "## Specification\n\n### Login\n\nUsers can log in.\n")
	assert.Contains(t, content, "## Plan\n\n#### Approach\n")
	assert.Contains(t, content, "## Tasks\n\n- [ ] T001 add form\n")

	data, err = os.ReadFile(filepath.Join(root, "specs", "002-export.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## Plan")
}

func TestSpeckitStrategyCanHandle(t *testing.T) {
	s := NewSpeckitStrategy(testOptions(t))
	assert.True(t, s.CanHandle(writeTree(t, map[string]string{".specify/x": "x"})))
	assert.True(t, s.CanHandle(writeTree(t, map[string]string{"specs/a/spec.md": "x"})))
	assert.False(t, s.CanHandle(writeTree(t, map[string]string{"specs/a/plan.md": "x"})))
	assert.False(t, s.CanHandle(writeTree(t, map[string]string{"main.go": "package main\n"})))
}

func TestSpeckitStrategyNoFeatures(t *testing.T) {
	root := writeTree(t, map[string]string{".specify/memory/constitution.md": "x"})
	s := NewSpeckitStrategy(testOptions(t))
	err := s.Execute(context.Background(), root, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no speckit features")
}

func TestDemoteHeadings(t *testing.T) {
	in := "# Title\ntext\n```\n# not a heading\n```\n###### deep\n#hashtag"
	want := "### Title\ntext\n```\n# not a heading\n```\n###### deep\n#hashtag"
	assert.Equal(t, want, demoteHeadings(in))
}
