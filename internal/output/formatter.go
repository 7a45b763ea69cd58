// internal/output/formatter.go
package output

import "fmt"

// Report holds the collected outcome of one fillback run.
type Report struct {
	RunID          string         `json:"run_id,omitempty"`
	ChangeID       string         `json:"change_id,omitempty"`
	Strategy       string         `json:"strategy"`
	SourcePath     string         `json:"source_path"`
	OutputDir      string         `json:"output_dir"`
	Files          []string       `json:"files"`
	Modules        int            `json:"modules"`
	LanguageCounts map[string]int `json:"language_counts,omitempty"`
	Graph          *GraphSummary  `json:"graph,omitempty"`
	SkippedFiles   []string       `json:"skipped_files,omitempty"`
	ParseErrors    []ParseIssue   `json:"parse_errors,omitempty"`
	DurationMs     int64          `json:"duration_ms"`
	Error          string         `json:"error,omitempty"`
}

// GraphSummary mirrors the dependency graph statistics.
type GraphSummary struct {
	InternalModules      int `json:"internal_modules"`
	ExternalDependencies int `json:"external_dependencies"`
	Edges                int `json:"edges"`
}

// ParseIssue is a recoverable per-file parse failure.
type ParseIssue struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Formatter formats a Report into output bytes.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "markdown", "md":
		return NewMarkdownFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want markdown or json)", name)
	}
}
