package specgen

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output file names that are not derived from a module.
const (
	OverviewFile        = "_overview.md"
	DependencyGraphFile = "_dependency-graph.md"
)

// Well-known clarification keys.
const (
	KeyProjectDescription = "project_description"
	KeyArchitectureStyle  = "architecture_style"
	KeyEntryPoints        = "entry_points"
	// ModuleKeyPrefix prefixes per-module purpose text, e.g. "module.config".
	ModuleKeyPrefix = "module."
)

// Document is a single rendered output file.
type Document struct {
	Path    string
	Title   string
	Content string
}

// Clarifications are free-text hints that enrich generated documents.
// A missing key omits the corresponding section.
type Clarifications map[string]string

// Get returns the trimmed value for key.
func (c Clarifications) Get(key string) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c[key])
}

// LoadClarifications reads a YAML or JSON mapping from path. Sequence
// values become markdown bullet lists; other scalars are stringified.
// An empty path yields no clarifications.
func LoadClarifications(path string) (Clarifications, error) {
	if path == "" {
		return Clarifications{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clarifications: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing clarifications %s: %w", path, err)
	}

	out := make(Clarifications, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = stringify(raw[k])
	}
	return out, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+stringify(item))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		data, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSpace(string(data))
	default:
		return fmt.Sprint(val)
	}
}
