// internal/runner/headless.go
package runner

import (
	"context"
	"time"

	"github.com/chrischeng-c4/agentd-sub001/internal/output"
)

// ExecFunc runs one fillback strategy and returns what it produced. The
// report may be nil when execution failed before anything was analyzed.
type ExecFunc func(ctx context.Context) (*output.Report, error)

// HeadlessRunner executes a strategy without interaction and collects
// the result into a Report.
type HeadlessRunner struct {
	exec ExecFunc
}

// NewHeadlessRunner creates a new HeadlessRunner with the given exec function.
func NewHeadlessRunner(exec ExecFunc) *HeadlessRunner {
	return &HeadlessRunner{exec: exec}
}

// Run executes the strategy. Execution errors are recorded in the
// report's Error field rather than returned.
func (r *HeadlessRunner) Run(ctx context.Context, strategy, sourcePath string) *output.Report {
	start := time.Now()

	report, err := r.exec(ctx)
	if report == nil {
		report = &output.Report{}
	}
	if report.Strategy == "" {
		report.Strategy = strategy
	}
	if report.SourcePath == "" {
		report.SourcePath = sourcePath
	}
	if err != nil {
		report.Error = err.Error()
	}
	report.DurationMs = time.Since(start).Milliseconds()
	return report
}
