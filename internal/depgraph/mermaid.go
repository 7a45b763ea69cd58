package depgraph

import (
	"fmt"
	"strings"
)

// ToMermaid renders the graph as a fenced Mermaid flowchart. Internal
// modules use rectangle nodes and external packages stadium nodes.
func (g *Graph) ToMermaid() string {
	ids := g.mermaidIDs()

	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("flowchart TD\n")
	for _, n := range g.nodes {
		if n.Kind == External {
			fmt.Fprintf(&b, "    %s([\"%s\"])\n", ids[n.ID], escapeMermaid(n.ID))
		} else {
			fmt.Fprintf(&b, "    %s[\"%s\"]\n", ids[n.ID], escapeMermaid(n.ID))
		}
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "    %s --> %s\n", ids[e.From], ids[e.To])
	}
	b.WriteString("```\n")
	return b.String()
}

// mermaidIDs assigns every node a unique identifier that Mermaid accepts.
func (g *Graph) mermaidIDs() map[string]string {
	ids := make(map[string]string, len(g.nodes))
	used := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		base := sanitizeID(n.ID)
		if n.Kind == External {
			base = "ext_" + base
		}
		id := base
		for i := 2; used[id]; i++ {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		used[id] = true
		ids[n.ID] = id
	}
	return ids
}

// sanitizeID converts a string into a safe Mermaid node identifier.
func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	id := b.String()
	if id == "" {
		id = "_"
	}
	if mermaidKeywords[strings.ToLower(id)] {
		id += "_"
	}
	return id
}

// mermaidKeywords are flowchart statement words that cannot stand as bare
// node identifiers.
var mermaidKeywords = map[string]bool{
	"end":       true,
	"subgraph":  true,
	"graph":     true,
	"flowchart": true,
	"direction": true,
	"style":     true,
	"class":     true,
	"classdef":  true,
	"click":     true,
	"linkstyle": true,
	"call":      true,
	"href":      true,
	"default":   true,
}

// escapeMermaid replaces characters that would break Mermaid label syntax.
func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
