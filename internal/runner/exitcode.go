package runner

import (
	"fmt"

	"github.com/chrischeng-c4/agentd-sub001/internal/output"
)

// ExitError is returned when a command should exit with a non-zero code.
// Using a typed error instead of os.Exit ensures deferred cleanup runs.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCodeFromReport returns 1 if the run failed, or if strict is set and
// any file failed to parse; 0 otherwise.
func ExitCodeFromReport(report *output.Report, strict bool) int {
	if report == nil {
		return 0
	}
	if report.Error != "" {
		return 1
	}
	if strict && len(report.ParseErrors) > 0 {
		return 1
	}
	return 0
}
