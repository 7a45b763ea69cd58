// Package depgraph builds a module dependency graph from an analyzed
// codebase, separating internal modules from external packages.
package depgraph

import (
	"sort"
	"strings"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
)

// NodeKind distinguishes analyzed modules from external packages.
type NodeKind string

const (
	Internal NodeKind = "internal"
	External NodeKind = "external"
)

// Node is a graph vertex. Internal node IDs are module names; external
// node IDs are raw import paths.
type Node struct {
	ID   string
	Kind NodeKind
}

// Edge is one import statement from a module to its target node.
type Edge struct {
	From string
	To   string
}

// Graph is a dependency graph built from one analysis Context. Nodes keep
// insertion order: internal modules in module order, then external
// packages in first-seen order.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// FromAnalysis builds the graph. Every import yields exactly one edge,
// so duplicate and self edges are kept.
func FromAnalysis(c *codebase.Context) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, m := range c.Modules {
		g.addNode(m.Name, Internal)
	}
	internal := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		internal[n.ID] = true
	}

	for _, m := range c.Modules {
		for _, imp := range m.Imports {
			target, ok := resolveInternal(imp.RawPath, internal)
			if !ok {
				target = imp.RawPath
				g.addNode(target, External)
			}
			g.edges = append(g.edges, Edge{From: m.Name, To: target})
		}
	}
	return g
}

// resolveInternal scans the path components from the terminal one
// backwards and returns the first that names an internal module.
func resolveInternal(raw string, internal map[string]bool) (string, bool) {
	parts := splitPath(raw)
	for i := len(parts) - 1; i >= 0; i-- {
		if internal[parts[i]] {
			return parts[i], true
		}
	}
	return "", false
}

// splitPath splits an import path on the separators used by the supported
// languages: `::`, `.`, `/` and `\`.
func splitPath(raw string) []string {
	return strings.FieldsFunc(strings.ReplaceAll(raw, "::", "/"), func(r rune) bool {
		return r == '/' || r == '.' || r == '\\'
	})
}

func (g *Graph) addNode(id string, kind NodeKind) {
	if _, ok := g.index[id]; ok {
		return
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Kind: kind})
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns the edges in import order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// NodesOfKind returns the IDs of nodes of the given kind, sorted.
func (g *Graph) NodesOfKind(kind NodeKind) []string {
	var ids []string
	for _, n := range g.nodes {
		if n.Kind == kind {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the distinct targets imported by module, sorted.
func (g *Graph) Dependencies(module string) []Node {
	seen := make(map[string]bool)
	var out []Node
	for _, e := range g.edges {
		if e.From != module || seen[e.To] {
			continue
		}
		seen[e.To] = true
		out = append(out, g.nodes[g.index[e.To]])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dependents returns the distinct modules that import id, sorted. A
// module importing itself is not its own dependent.
func (g *Graph) Dependents(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.edges {
		if e.To != id || e.From == id || seen[e.From] {
			continue
		}
		seen[e.From] = true
		out = append(out, e.From)
	}
	sort.Strings(out)
	return out
}

// Stats are counters derived from a graph.
type Stats struct {
	InternalModules      int
	ExternalDependencies int
	EdgeCount            int
}

// StatsFromGraph counts the nodes and edges of g.
func StatsFromGraph(g *Graph) Stats {
	var s Stats
	for _, n := range g.nodes {
		switch n.Kind {
		case Internal:
			s.InternalModules++
		case External:
			s.ExternalDependencies++
		}
	}
	s.EdgeCount = len(g.edges)
	return s
}

// Stats is shorthand for StatsFromGraph(g).
func (g *Graph) Stats() Stats {
	return StatsFromGraph(g)
}
