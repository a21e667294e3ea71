package runner

import (
	"time"

	"github.com/weftci/weft/internal/output"
)

// Result is the outcome of one environment run.
type Result struct {
	// Env is the environment name.
	Env string

	// Status is passed, failed, or skipped.
	Status string

	// Err is the failure cause (nil unless Status is failed).
	Err error

	// Duration is the wall-clock run time.
	Duration time.Duration

	// StartedAt is when the environment started.
	StartedAt time.Time
}

// AnyFailed reports whether any result failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Status == output.StatusFailed {
			return true
		}
	}
	return false
}

// RenderSummary renders the per-environment summary table.
func RenderSummary(results []Result) string {
	tbl := output.NewTable("ENVIRONMENT", "STATUS", "DURATION")
	for _, r := range results {
		status := output.StatusStyle(r.Status).Render(r.Status)
		tbl.Row(output.StyleNoun.Render(r.Env), status, r.Duration.Round(time.Millisecond).String())
	}
	return tbl.String()
}
