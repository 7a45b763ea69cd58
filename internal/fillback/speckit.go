package fillback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chrischeng-c4/agentd-sub001/internal/output"
	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
)

// speckitSections are merged, in order, into one document per feature.
var speckitSections = []struct {
	file    string
	heading string
}{
	{"spec.md", "Specification"},
	{"plan.md", "Plan"},
	{"tasks.md", "Tasks"},
}

// SpeckitStrategy merges Spec Kit feature directories (specs/<feature>/
// with spec.md, plan.md and tasks.md) into one document per feature.
type SpeckitStrategy struct {
	opts Options
	last *output.Report
}

// NewSpeckitStrategy creates a SpeckitStrategy.
func NewSpeckitStrategy(opts Options) *SpeckitStrategy {
	return &SpeckitStrategy{opts: opts}
}

func (s *SpeckitStrategy) Name() string { return Speckit }

// Report returns the report of the last Execute, or nil.
func (s *SpeckitStrategy) Report() *output.Report {
	return s.last
}

// CanHandle accepts a directory with .specify/ or any specs/*/spec.md.
func (s *SpeckitStrategy) CanHandle(path string) bool {
	if info, err := os.Stat(filepath.Join(path, ".specify")); err == nil && info.IsDir() {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(path, "specs", "*", "spec.md"))
	return len(matches) > 0
}

// Execute merges every feature and writes one document per feature.
func (s *SpeckitStrategy) Execute(ctx context.Context, path, changeID string) error {
	started := time.Now()
	log := s.opts.logger().WithFields(logrus.Fields{"strategy": Speckit, "path": path})
	outDir := s.opts.outputDir(path)

	report := &output.Report{
		Strategy:   Speckit,
		SourcePath: path,
		OutputDir:  outDir,
		ChangeID:   changeID,
	}
	s.last = report

	docs, err := s.collect(ctx, path)
	if err == nil && len(docs) == 0 {
		err = fmt.Errorf("no speckit features under %s", filepath.Join(path, "specs"))
	}
	if err == nil {
		report.Files, err = writeDocs(s.opts, outDir, docs)
	}
	record(s.opts, report, started, err, nil)
	if err != nil {
		return err
	}
	log.WithField("features", len(docs)).Info("fillback done")
	return nil
}

func (s *SpeckitStrategy) collect(ctx context.Context, path string) ([]specgen.Document, error) {
	specsDir := filepath.Join(path, "specs")
	entries, err := os.ReadDir(specsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", specsDir, err)
	}

	var features []string
	for _, e := range entries {
		if e.IsDir() {
			features = append(features, e.Name())
		}
	}
	sort.Strings(features)

	var docs []specgen.Document
	for _, feature := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok, err := mergeFeature(filepath.Join(specsDir, feature), feature)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// mergeFeature joins the feature's section files under fixed headings.
// ok is false when the directory holds none of them.
func mergeFeature(dir, feature string) (doc specgen.Document, ok bool, err error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", feature)

	for _, sec := range speckitSections {
		data, err := os.ReadFile(filepath.Join(dir, sec.file))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return specgen.Document{}, false, fmt.Errorf("reading %s: %w", filepath.Join(dir, sec.file), err)
		}
		ok = true
		fmt.Fprintf(&b, "\n## %s\n\n", sec.heading)
		b.WriteString(demoteHeadings(strings.TrimSpace(string(data))))
		b.WriteString("\n")
	}
	if !ok {
		return specgen.Document{}, false, nil
	}
	return specgen.Document{Path: feature + ".md", Title: feature, Content: b.String()}, true, nil
}

// demoteHeadings pushes markdown headings two levels down so merged
// sections nest under their section heading. Fenced code is untouched.
func demoteHeadings(md string) string {
	lines := strings.Split(md, "\n")
	fenced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fenced = !fenced
			continue
		}
		if fenced || !strings.HasPrefix(line, "#") {
			continue
		}
		level := len(line) - len(strings.TrimLeft(line, "#"))
		if level+2 > 6 || (len(line) > level && line[level] != ' ') {
			continue
		}
		lines[i] = "##" + line
	}
	return strings.Join(lines, "\n")
}
