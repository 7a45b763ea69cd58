package fillback

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
	"github.com/chrischeng-c4/agentd-sub001/internal/depgraph"
	"github.com/chrischeng-c4/agentd-sub001/internal/output"
)

// CodeStrategy derives specs from source code: analyze -> graph ->
// existing-spec check -> confirm -> generate.
type CodeStrategy struct {
	opts Options
	last *output.Report
}

// NewCodeStrategy creates a CodeStrategy.
func NewCodeStrategy(opts Options) *CodeStrategy {
	return &CodeStrategy{opts: opts}
}

func (s *CodeStrategy) Name() string { return Code }

// CanHandle reports whether path is a directory with supported sources.
func (s *CodeStrategy) CanHandle(path string) bool {
	return codebase.ContainsSource(path)
}

// Report returns the report of the last Execute, or nil.
func (s *CodeStrategy) Report() *output.Report {
	return s.last
}

// Execute runs the full pipeline over the source tree at path.
func (s *CodeStrategy) Execute(ctx context.Context, path, changeID string) error {
	started := time.Now()
	log := s.opts.logger().WithFields(logrus.Fields{"strategy": Code, "path": path})
	outDir := s.opts.outputDir(path)

	report := &output.Report{
		Strategy:   Code,
		SourcePath: path,
		OutputDir:  outDir,
		ChangeID:   changeID,
	}
	s.last = report

	// Stage 1: Analyze
	log.Info("analyzing codebase")
	c, err := codebase.Analyze(ctx, path, s.analyzeOptions(path, outDir))
	if err != nil {
		err = fmt.Errorf("analyze: %w", err)
		record(s.opts, report, started, err, nil)
		return err
	}
	fillAnalysis(report, c)

	// Stage 2: Graph
	log.Info("building dependency graph")
	g := depgraph.FromAnalysis(c)
	stats := g.Stats()
	report.Graph = &output.GraphSummary{
		InternalModules:      stats.InternalModules,
		ExternalDependencies: stats.ExternalDependencies,
		Edges:                stats.EdgeCount,
	}

	// Stage 3: Generate
	log.WithField("dir", outDir).Info("generating specs")
	files, err := s.opts.generator().GenerateSpecs(c, g, outDir, s.opts.Clarifications)
	if err != nil {
		err = fmt.Errorf("generate: %w", err)
		record(s.opts, report, started, err, c)
		return err
	}
	report.Files = files

	record(s.opts, report, started, nil, c)
	log.WithField("files", len(files)).Info("fillback done")
	return nil
}

func (s *CodeStrategy) analyzeOptions(root, outDir string) codebase.Options {
	opts := codebase.DefaultOptions()
	opts.ModuleFilter = s.opts.ModuleFilter
	if s.opts.Concurrency > 0 {
		opts.Concurrency = s.opts.Concurrency
	}
	opts.Exclude = append(opts.Exclude, s.opts.Exclude...)
	opts.RespectGitignore = s.opts.RespectGitignore
	opts.Logger = s.opts.Logger

	// Generated specs inside the tree are output, not input.
	if rel, ok := nestedRel(root, outDir); ok {
		opts.Exclude = append(opts.Exclude, "/"+filepath.ToSlash(rel))
	}
	return opts
}

// nestedRel returns dir relative to root when dir lies strictly inside
// root. Both paths are made absolute first so mixed forms compare.
func nestedRel(root, dir string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func fillAnalysis(report *output.Report, c *codebase.Context) {
	report.Modules = len(c.Modules)
	report.LanguageCounts = make(map[string]int, len(c.LanguageCounts))
	for lang, n := range c.LanguageCounts {
		report.LanguageCounts[string(lang)] = n
	}
	report.SkippedFiles = c.SkippedFiles
	for _, e := range c.Errors {
		report.ParseErrors = append(report.ParseErrors, output.ParseIssue{
			Path:    e.Path,
			Line:    e.Line,
			Message: e.Message,
		})
	}
}
