package depgraph

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
	"github.com/chrischeng-c4/agentd-sub001/internal/parser"
)

func module(name string, imports ...string) *parser.ModuleAnalysis {
	m := &parser.ModuleAnalysis{Name: name, Language: parser.Rust, FilePath: name + ".rs"}
	for _, imp := range imports {
		m.Imports = append(m.Imports, parser.ImportEdge{RawPath: imp})
	}
	return m
}

func contextOf(mods ...*parser.ModuleAnalysis) *codebase.Context {
	return &codebase.Context{Modules: mods}
}

func TestFromAnalysisClassifiesImports(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("main", "config", "crate::utils::helper", "std::collections::HashMap"),
		module("config", "serde::Deserialize"),
		module("utils"),
	))

	assert.Equal(t, []string{"config", "main", "utils"}, g.NodesOfKind(Internal))
	assert.Equal(t, []string{"serde::Deserialize", "std::collections::HashMap"}, g.NodesOfKind(External))

	assert.Equal(t, []Edge{
		{From: "main", To: "config"},
		{From: "main", To: "utils"},
		{From: "main", To: "std::collections::HashMap"},
		{From: "config", To: "serde::Deserialize"},
	}, g.Edges())
}

func TestFromAnalysisPathSeparators(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("app", "./utils", "..\\lib\\store", "pkg.models.user", "github.com/x/y"),
		module("utils"),
		module("store"),
		module("user"),
	))

	var targets []string
	for _, e := range g.Edges() {
		targets = append(targets, e.To)
	}
	assert.Equal(t, []string{"utils", "store", "user", "github.com/x/y"}, targets)
}

func TestFromAnalysisPrefersTerminalComponent(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("a", "b::c"),
		module("b"),
		module("c"),
	))
	assert.Equal(t, []Edge{{From: "a", To: "c"}}, g.Edges())
}

func TestFromAnalysisKeepsDuplicateAndSelfEdges(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("a", "b", "b", "a"),
		module("b"),
	))
	assert.Len(t, g.Edges(), 3)
	assert.Equal(t, Edge{From: "a", To: "a"}, g.Edges()[2])
	assert.Equal(t, 3, g.Stats().EdgeCount)
}

func TestFromAnalysisDeduplicatesExternalNodes(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("a", "react"),
		module("b", "react"),
	))
	stats := StatsFromGraph(g)
	assert.Equal(t, 1, stats.ExternalDependencies)
	assert.Equal(t, 2, stats.EdgeCount)
}

func TestNoDanglingEdges(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("main", "config", "utils", "os", "fmt", "config"),
		module("config", "os"),
		module("utils", "strings", "utils"),
	))
	for _, e := range g.Edges() {
		_, ok := g.Node(e.From)
		assert.True(t, ok, "from %s", e.From)
		_, ok = g.Node(e.To)
		assert.True(t, ok, "to %s", e.To)
	}
}

func TestStatsInternalMatchesModules(t *testing.T) {
	c := contextOf(module("a", "x"), module("b", "y"), module("c"))
	stats := StatsFromGraph(FromAnalysis(c))
	assert.Equal(t, Stats{InternalModules: 3, ExternalDependencies: 2, EdgeCount: 2}, stats)
	assert.Equal(t, len(c.Modules), stats.InternalModules)
}

func TestDependenciesAndDependents(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("main", "utils", "config", "utils", "os"),
		module("config", "utils"),
		module("utils", "utils"),
	))

	deps := g.Dependencies("main")
	require.Len(t, deps, 3)
	assert.Equal(t, "config", deps[0].ID)
	assert.Equal(t, External, deps[1].Kind)
	assert.Equal(t, "utils", deps[2].ID)

	assert.Equal(t, []string{"config", "main"}, g.Dependents("utils"))
	assert.Empty(t, g.Dependents("main"))
}

func TestToMermaidFencing(t *testing.T) {
	tests := map[string]*Graph{
		"empty":       FromAnalysis(contextOf()),
		"single node": FromAnalysis(contextOf(module("solo"))),
		"edges":       FromAnalysis(contextOf(module("a", "b", "fmt"), module("b"))),
	}
	for name, g := range tests {
		t.Run(name, func(t *testing.T) {
			out := g.ToMermaid()
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			require.GreaterOrEqual(t, len(lines), 3)
			assert.Equal(t, "```mermaid", lines[0])
			assert.Equal(t, "flowchart TD", lines[1])
			assert.Equal(t, "```", lines[len(lines)-1])
		})
	}
}

func TestToMermaidNodesAndEdges(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("main", "config", "std::io"),
		module("config"),
	))
	out := g.ToMermaid()
	assert.Contains(t, out, "    main[\"main\"]\n")
	assert.Contains(t, out, "    config[\"config\"]\n")
	assert.Contains(t, out, "    ext_std__io([\"std::io\"])\n")
	assert.Contains(t, out, "    main --> config\n")
	assert.Contains(t, out, "    main --> ext_std__io\n")
}

func TestMermaidIDsAreUniqueAndSafe(t *testing.T) {
	g := FromAnalysis(contextOf(
		module("end"),
		module("my-mod"),
		module("my_mod", "ext_x"),
		module("ext_x_user", "x"),
	))
	ids := g.mermaidIDs()
	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, "end_", ids["end"])
	assert.NotContains(t, ids["my-mod"], "-")
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizeID("a/b.c"))
	assert.Equal(t, "std__io", sanitizeID("std::io"))
	assert.Equal(t, "_", sanitizeID(""))
	assert.Equal(t, "End_", sanitizeID("End"))
}

func TestSanitizeIDAvoidsFlowchartKeywords(t *testing.T) {
	for _, kw := range []string{"style", "class", "classDef", "click", "linkStyle", "subgraph", "graph", "direction"} {
		assert.Equal(t, kw+"_", sanitizeID(kw), kw)
	}
	assert.Equal(t, "styles", sanitizeID("styles"))
}

func TestToMermaidKeywordModules(t *testing.T) {
	g := FromAnalysis(contextOf(module("style", "click"), module("click")))
	out := g.ToMermaid()
	assert.Contains(t, out, "    style_[\"style\"]\n")
	assert.Contains(t, out, "    click_[\"click\"]\n")
	assert.Contains(t, out, "    style_ --> click_\n")
	assert.NotContains(t, out, "    style[")
}

func TestEscapeMermaid(t *testing.T) {
	assert.Equal(t, "say #quot;hi#quot;", escapeMermaid(`say "hi"`))
}

func TestRustCrateScenario(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.rs":   "mod config;\nmod utils;\nuse config::Config;\n\nfn main() {\n    utils::helper();\n}\n",
		"config.rs": "pub struct Config {}\npub enum ConfigError { Missing }\n",
		"utils.rs":  "pub fn helper() {}\npub fn format_string() {}\nfn internal_fn() {}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	opts := codebase.DefaultOptions()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts.Logger = logger

	c, err := codebase.Analyze(context.Background(), root, opts)
	require.NoError(t, err)
	require.Len(t, c.Modules, 3)

	g := FromAnalysis(c)
	out := g.ToMermaid()
	for _, name := range []string{"main", "config", "utils"} {
		assert.Contains(t, out, "    "+name+"[\""+name+"\"]\n")
	}
	assert.Contains(t, out, "main --> config")
	assert.Contains(t, out, "main --> utils")
	assert.Equal(t, 3, g.Stats().InternalModules)
	assert.Equal(t, 0, g.Stats().ExternalDependencies)
}

func TestRustGroupedCrateUseResolvesInternal(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.rs": "mod a;\nmod b;\nuse crate::{a::X, b::y};\nuse super::*;\n\nfn main() {}\n",
		"a.rs":    "pub struct X {}\n",
		"b.rs":    "pub fn y() {}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	opts := codebase.DefaultOptions()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts.Logger = logger

	c, err := codebase.Analyze(context.Background(), root, opts)
	require.NoError(t, err)

	g := FromAnalysis(c)
	assert.Equal(t, []Edge{
		{From: "main", To: "a"},
		{From: "main", To: "b"},
		{From: "main", To: "a"},
		{From: "main", To: "b"},
	}, g.Edges())
	assert.Empty(t, g.NodesOfKind(External))
	_, ok := g.Node("crate")
	assert.False(t, ok)
	_, ok = g.Node("super")
	assert.False(t, ok)
}
