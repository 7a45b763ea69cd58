package fillback

import (
	"errors"
	"time"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
	"github.com/chrischeng-c4/agentd-sub001/internal/output"
	"github.com/chrischeng-c4/agentd-sub001/internal/parser"
	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
	"github.com/chrischeng-c4/agentd-sub001/internal/store"
)

// record stores a finished run in the history, if one is configured. A
// history failure is logged, never returned.
func record(opts Options, report *output.Report, started time.Time, runErr error, c *codebase.Context) {
	if opts.History == nil {
		return
	}

	status := store.StatusSucceeded
	switch {
	case errors.Is(runErr, specgen.ErrOverwriteDeclined):
		status = store.StatusDeclined
	case runErr != nil:
		status = store.StatusFailed
	}

	run := store.Run{
		ChangeID:    report.ChangeID,
		Strategy:    report.Strategy,
		SourcePath:  report.SourcePath,
		OutputDir:   report.OutputDir,
		Status:      status,
		Modules:     report.Modules,
		Skipped:     len(report.SkippedFiles),
		ParseErrors: len(report.ParseErrors),
		Files:       len(report.Files),
		StartedAt:   started,
		Duration:    time.Since(started),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	id, err := opts.History.RecordRun(run, snapshots(c))
	if err != nil {
		opts.logger().WithError(err).Warn("recording run history failed")
		return
	}
	report.RunID = id
}

func snapshots(c *codebase.Context) []store.ModuleSnapshot {
	if c == nil {
		return nil
	}
	out := make([]store.ModuleSnapshot, 0, len(c.Modules))
	for _, m := range c.Modules {
		snap := store.ModuleSnapshot{
			Name:     m.Name,
			Language: string(m.Language),
			FilePath: m.FilePath,
			Imports:  len(m.Imports),
		}
		for _, s := range m.Symbols {
			if s.Visibility == parser.Public {
				snap.Public++
			} else {
				snap.Private++
			}
		}
		out = append(out, snap)
	}
	return out
}
