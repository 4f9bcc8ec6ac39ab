package ports

import (
	"context"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

// RunResult summarizes one analysis run; the CLI derives its exit code
// from the drift counters.
type RunResult struct {
	Findings []domain.DriftFinding
	Actions  []domain.FixAction
	Summary  string
	Checked  int
	Drifted  int
	Deleted  int
	Skipped  int
	FixPath  string
}

func (r *RunResult) HasDrift() bool {
	return r.Drifted > 0
}

type AnalysisEngine interface {
	Run(ctx context.Context) (*RunResult, error)
}
