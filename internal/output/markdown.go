// internal/output/markdown.go
package output

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MarkdownFormatter outputs a Report as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Report as Markdown.
func (f *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	if report.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(report.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "## Fillback (%s)\n\n", report.Strategy)
	fmt.Fprintf(&b, "- **Source:** `%s`\n", report.SourcePath)
	fmt.Fprintf(&b, "- **Output:** `%s`\n", report.OutputDir)
	if report.ChangeID != "" {
		fmt.Fprintf(&b, "- **Change:** %s\n", report.ChangeID)
	}
	if report.Modules > 0 {
		fmt.Fprintf(&b, "- **Modules:** %d\n", report.Modules)
	}

	if len(report.LanguageCounts) > 0 {
		langs := make([]string, 0, len(report.LanguageCounts))
		for lang := range report.LanguageCounts {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		parts := make([]string, len(langs))
		for i, lang := range langs {
			parts[i] = fmt.Sprintf("%s %d", lang, report.LanguageCounts[lang])
		}
		fmt.Fprintf(&b, "- **Languages:** %s\n", strings.Join(parts, ", "))
	}

	if g := report.Graph; g != nil {
		fmt.Fprintf(&b, "- **Graph:** %d internal, %d external, %d edges\n",
			g.InternalModules, g.ExternalDependencies, g.Edges)
	}

	if len(report.Files) > 0 {
		b.WriteString("\n### Files Written\n\n")
		for _, file := range report.Files {
			fmt.Fprintf(&b, "- %s\n", file)
		}
	}

	if len(report.ParseErrors) > 0 {
		b.WriteString("\n### Parse Errors\n\n")
		for _, e := range report.ParseErrors {
			if e.Line > 0 {
				fmt.Fprintf(&b, "- `%s:%d` %s\n", e.Path, e.Line, e.Message)
			} else {
				fmt.Fprintf(&b, "- `%s` %s\n", e.Path, e.Message)
			}
		}
	}

	if n := len(report.SkippedFiles); n > 0 {
		label := "files"
		if n == 1 {
			label = "file"
		}
		fmt.Fprintf(&b, "\n*Skipped %d unsupported %s.*\n", n, label)
	}

	duration := time.Duration(report.DurationMs) * time.Millisecond
	fmt.Fprintf(&b, "\n---\n*Completed in %s*\n", duration.Round(100*time.Millisecond))

	return []byte(b.String()), nil
}
