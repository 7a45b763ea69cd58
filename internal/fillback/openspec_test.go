package fillback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
)

const authSpec = `title: Authentication
version: 2
description: |
  Users sign in with email and password.
  Sessions expire after one hour.
requirements:
  - id: R1
    title: Login
    text: The system shall authenticate valid users.
    scenarios:
      - name: valid credentials
        then: a session is created
  - id: R2
    title: Logout
tags: [security, users]
`

func TestTranscode(t *testing.T) {
	content, title, err := Transcode([]byte(authSpec), "auth")
	require.NoError(t, err)

	assert.Equal(t, "Authentication", title)
	assert.Contains(t, content, "# Authentication\n\n")
	assert.NotContains(t, content, "**Title:**")
	assert.Contains(t, content, "**Version:** 2\n")
	assert.Contains(t, content, "## Description\n\nUsers sign in with email and password.\nSessions expire after one hour.\n")
	assert.Contains(t, content, "## Requirements\n\n### R1: Login\n\n")
	assert.Contains(t, content, "**Text:** The system shall authenticate valid users.")
	assert.Contains(t, content, "#### Scenarios\n\n##### valid credentials\n\n")
	assert.Contains(t, content, "### R2: Logout")
	assert.Contains(t, content, "## Tags\n\n- security\n- users\n")
}

func TestTranscodeKeepsKeyOrder(t *testing.T) {
	content, _, err := Transcode([]byte("zeta: 1\nalpha: 2\n"), "order")
	require.NoError(t, err)
	assert.Less(t, strings.Index(content, "Zeta"), strings.Index(content, "Alpha"))
}

func TestTranscodeJSON(t *testing.T) {
	content, title, err := Transcode([]byte(`{"name": "billing", "owner": "payments"}`), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "billing", title)
	assert.Contains(t, content, "**Owner:** payments")
}

func TestTranscodeFallbackTitleAndEmpty(t *testing.T) {
	content, title, err := Transcode([]byte(""), "empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", title)
	assert.Equal(t, "# empty\n", content)

	_, _, err = Transcode([]byte("key: [broken"), "bad")
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Acceptance criteria", humanize("acceptance_criteria"))
	assert.Equal(t, "Non goals", humanize("non-goals"))
	assert.Equal(t, "", humanize(""))
}

func TestDocName(t *testing.T) {
	assert.Equal(t, "specs-auth-spec", docName(filepath.Join("specs", "auth", "spec.yaml")))
	assert.Equal(t, "project", docName("project.md"))
}

func TestOpenSpecStrategyFile(t *testing.T) {
	root := writeTree(t, map[string]string{"auth.yaml": authSpec})
	opts := testOptions(t)
	s := NewOpenSpecStrategy(opts)

	path := filepath.Join(root, "auth.yaml")
	require.True(t, s.CanHandle(path))
	require.NoError(t, s.Execute(context.Background(), path, "c1"))

	data, err := os.ReadFile(filepath.Join(root, "specs", "auth.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Authentication")
	assert.Equal(t, []string{"auth.md"}, s.Report().Files)
	assert.Equal(t, "c1", s.Report().ChangeID)
}

func TestOpenSpecStrategyDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"openspec/project.md":           "# Project\n",
		"openspec/specs/auth/spec.yaml": authSpec,
		"openspec/specs/billing.json":   `{"title": "Billing"}`,
		"openspec/specs/notes.txt":      "ignored",
	})
	s := NewOpenSpecStrategy(testOptions(t))

	require.True(t, s.CanHandle(root))
	require.NoError(t, s.Execute(context.Background(), root, ""))

	assert.Equal(t, []string{"project.md", "specs-auth-spec.md", "specs-billing.md"}, s.Report().Files)
	data, err := os.ReadFile(filepath.Join(root, "specs", "project.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Project\n", string(data))
}

func TestOpenSpecStrategyRejectsOtherSources(t *testing.T) {
	root := writeTree(t, map[string]string{"main.go": "package main\n", "notes.md": "x"})
	s := NewOpenSpecStrategy(testOptions(t))
	assert.False(t, s.CanHandle(root))
	assert.False(t, s.CanHandle(filepath.Join(root, "notes.md")))
	assert.False(t, s.CanHandle(filepath.Join(root, "missing.yaml")))
}

func TestOpenSpecStrategyEmptyDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"openspec/README.txt": "nothing"})
	s := NewOpenSpecStrategy(testOptions(t))
	err := s.Execute(context.Background(), root, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no openspec documents")
}

func TestOpenSpecStrategyDeclined(t *testing.T) {
	root := writeTree(t, map[string]string{"auth.yaml": authSpec, "specs/auth.md": "old"})
	opts := testOptions(t)
	s := NewOpenSpecStrategy(opts)

	err := s.Execute(context.Background(), filepath.Join(root, "auth.yaml"), "")
	assert.True(t, errors.Is(err, specgen.ErrOverwriteDeclined))

	opts.Force = true
	s = NewOpenSpecStrategy(opts)
	require.NoError(t, s.Execute(context.Background(), filepath.Join(root, "auth.yaml"), ""))
}
