package specgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
	"github.com/chrischeng-c4/agentd-sub001/internal/depgraph"
	"github.com/chrischeng-c4/agentd-sub001/internal/parser"
)

// Assemble renders the analysis context and graph into the full document
// set: the overview, the dependency graph and one document per module
// name. Rendering is deterministic for identical inputs.
func Assemble(c *codebase.Context, g *depgraph.Graph, clar Clarifications) []Document {
	groups := groupModules(c)

	docs := make([]Document, 0, len(groups)+2)
	docs = append(docs, buildOverviewPage(c, g, groups, clar))
	docs = append(docs, buildGraphPage(g))
	for _, grp := range groups {
		docs = append(docs, buildModulePage(grp, g, clar))
	}
	return docs
}

// moduleGroup is every analyzed file that shares one module name.
type moduleGroup struct {
	name  string
	files []*parser.ModuleAnalysis
}

func groupModules(c *codebase.Context) []moduleGroup {
	var groups []moduleGroup
	for _, m := range c.SortedModules() {
		if n := len(groups); n > 0 && groups[n-1].name == m.Name {
			groups[n-1].files = append(groups[n-1].files, m)
			continue
		}
		groups = append(groups, moduleGroup{name: m.Name, files: []*parser.ModuleAnalysis{m}})
	}
	return groups
}

// ModuleFile returns the output file name for a module. Names that would
// collide with the fixed project documents get a ".module" suffix.
func ModuleFile(name string) string {
	file := name + ".md"
	if file == OverviewFile || file == DependencyGraphFile {
		return name + ".module.md"
	}
	return file
}

func buildOverviewPage(c *codebase.Context, g *depgraph.Graph, groups []moduleGroup, clar Clarifications) Document {
	stats := g.Stats()

	var b strings.Builder
	b.WriteString("# Project Overview\n\n")

	if desc := clar.Get(KeyProjectDescription); desc != "" {
		b.WriteString("## Project Description\n\n")
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Modules | %d |\n", len(groups))
	fmt.Fprintf(&b, "| Source files | %d |\n", len(c.Modules))
	fmt.Fprintf(&b, "| Languages | %d |\n", len(c.LanguageCounts))
	fmt.Fprintf(&b, "| External dependencies | %d |\n", stats.ExternalDependencies)
	fmt.Fprintf(&b, "| Import edges | %d |\n", stats.EdgeCount)
	b.WriteString("\n")

	if style := clar.Get(KeyArchitectureStyle); style != "" {
		b.WriteString("## Architecture Style\n\n")
		b.WriteString(style)
		b.WriteString("\n\n")
	}

	if entries := clar.Get(KeyEntryPoints); entries != "" {
		b.WriteString("## Entry Points\n\n")
		b.WriteString(entries)
		b.WriteString("\n\n")
	}

	b.WriteString("## Language Breakdown\n\n")
	b.WriteString("| Language | Modules |\n")
	b.WriteString("|----------|---------|\n")
	for _, lang := range c.Languages() {
		fmt.Fprintf(&b, "| %s | %d |\n", lang, c.LanguageCounts[lang])
	}
	b.WriteString("\n")

	b.WriteString("## Module Structure\n\n")
	b.WriteString("| Module | Language | Source | Public | Private |\n")
	b.WriteString("|--------|----------|--------|--------|---------|\n")
	for _, grp := range groups {
		var public, private int
		var sources []string
		for _, m := range grp.files {
			sources = append(sources, "`"+m.FilePath+"`")
			for _, s := range m.Symbols {
				if s.Visibility == parser.Public {
					public++
				} else {
					private++
				}
			}
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s | %d | %d |\n",
			sanitizeCell(grp.name), ModuleFile(grp.name), grp.files[0].Language,
			strings.Join(sources, ", "), public, private)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "See [Dependency Graph](%s) for how modules relate.\n\n", DependencyGraphFile)

	b.WriteString("## Analysis Notes\n\n")
	fmt.Fprintf(&b, "- Skipped files (unsupported language): %d\n", len(c.SkippedFiles))
	fmt.Fprintf(&b, "- Parse errors: %d\n", len(c.Errors))
	for _, e := range c.Errors {
		fmt.Fprintf(&b, "  - `%s`\n", e.Error())
	}
	if len(c.Filtered) > 0 {
		fmt.Fprintf(&b, "- Filtered out by module filter: %d\n", len(c.Filtered))
	}

	return Document{
		Path:    OverviewFile,
		Title:   "Project Overview",
		Content: b.String(),
	}
}

func buildGraphPage(g *depgraph.Graph) Document {
	stats := g.Stats()

	var b strings.Builder
	b.WriteString("# Dependency Graph\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Internal Modules | %d |\n", stats.InternalModules)
	fmt.Fprintf(&b, "| External Dependencies | %d |\n", stats.ExternalDependencies)
	fmt.Fprintf(&b, "| Edges | %d |\n", stats.EdgeCount)
	b.WriteString("\n")

	b.WriteString("## Diagram\n\n")
	b.WriteString(g.ToMermaid())
	b.WriteString("\n")

	type pair struct{ from, to string }
	counts := make(map[pair]int)
	var pairs []pair
	for _, e := range g.Edges() {
		n, _ := g.Node(e.To)
		if n.Kind != depgraph.Internal {
			continue
		}
		p := pair{e.From, e.To}
		if counts[p] == 0 {
			pairs = append(pairs, p)
		}
		counts[p]++
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})

	b.WriteString("## Internal Dependencies\n\n")
	if len(pairs) == 0 {
		b.WriteString("_No internal dependencies._\n\n")
	} else {
		b.WriteString("| From | To | Imports |\n")
		b.WriteString("|------|----|---------|\n")
		for _, p := range pairs {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", sanitizeCell(p.from), sanitizeCell(p.to), counts[p])
		}
		b.WriteString("\n")
	}

	b.WriteString("## External Dependencies\n\n")
	externals := g.NodesOfKind(depgraph.External)
	if len(externals) == 0 {
		b.WriteString("_No external dependencies._\n")
	} else {
		b.WriteString("| Package | Used By |\n")
		b.WriteString("|---------|---------|\n")
		for _, id := range externals {
			fmt.Fprintf(&b, "| `%s` | %s |\n", sanitizeCell(id), sanitizeCell(strings.Join(g.Dependents(id), ", ")))
		}
	}

	return Document{
		Path:    DependencyGraphFile,
		Title:   "Dependency Graph",
		Content: b.String(),
	}
}

func buildModulePage(grp moduleGroup, g *depgraph.Graph, clar Clarifications) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", grp.name)

	b.WriteString("| Property | Value |\n")
	b.WriteString("|----------|-------|\n")
	fmt.Fprintf(&b, "| Language | %s |\n", grp.files[0].Language)
	for _, m := range grp.files {
		fmt.Fprintf(&b, "| Source | `%s` |\n", m.FilePath)
	}
	b.WriteString("\n")

	if purpose := clar.Get(ModuleKeyPrefix + grp.name); purpose != "" {
		b.WriteString("## Purpose\n\n")
		b.WriteString(purpose)
		b.WriteString("\n\n")
	}

	writeSymbols(&b, grp)
	writeDependencies(&b, grp.name, g)

	return Document{
		Path:    ModuleFile(grp.name),
		Title:   grp.name,
		Content: b.String(),
	}
}

func writeSymbols(b *strings.Builder, grp moduleGroup) {
	b.WriteString("## Symbols\n\n")

	merged := len(grp.files) > 1
	byKind := make(map[parser.SymbolKind][]string)
	for _, m := range grp.files {
		for _, s := range m.Symbols {
			row := fmt.Sprintf("| `%s` | %s | %d |", sanitizeCell(s.Name), s.Visibility, s.Line)
			if merged {
				row = fmt.Sprintf("| `%s` | %s | `%s`:%d |", sanitizeCell(s.Name), s.Visibility, m.FilePath, s.Line)
			}
			byKind[s.Kind] = append(byKind[s.Kind], row)
		}
	}
	if len(byKind) == 0 {
		b.WriteString("_No symbols found._\n\n")
		return
	}

	for _, kind := range parser.SymbolKinds {
		rows := byKind[kind]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", kind.Plural())
		if merged {
			b.WriteString("| Name | Visibility | Location |\n")
			b.WriteString("|------|------------|----------|\n")
		} else {
			b.WriteString("| Name | Visibility | Line |\n")
			b.WriteString("|------|------------|------|\n")
		}
		for _, row := range rows {
			b.WriteString(row)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeDependencies(b *strings.Builder, name string, g *depgraph.Graph) {
	var internal, external []string
	for _, n := range g.Dependencies(name) {
		if n.Kind == depgraph.Internal {
			internal = append(internal, fmt.Sprintf("- [%s](%s)", n.ID, ModuleFile(n.ID)))
		} else {
			external = append(external, fmt.Sprintf("- `%s`", n.ID))
		}
	}

	b.WriteString("## Dependencies\n\n")
	if len(internal)+len(external) == 0 {
		b.WriteString("_None._\n\n")
	}
	if len(internal) > 0 {
		b.WriteString("### Internal\n\n")
		b.WriteString(strings.Join(internal, "\n"))
		b.WriteString("\n\n")
	}
	if len(external) > 0 {
		b.WriteString("### External\n\n")
		b.WriteString(strings.Join(external, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("## Dependents\n\n")
	dependents := g.Dependents(name)
	if len(dependents) == 0 {
		b.WriteString("_None._\n")
		return
	}
	for _, d := range dependents {
		fmt.Fprintf(b, "- [%s](%s)\n", d, ModuleFile(d))
	}
}

// sanitizeCell keeps a value from breaking a markdown table row.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
