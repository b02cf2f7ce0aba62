package ports

import (
	"context"

	"insurisk/domain/core"
	"insurisk/domain/stats"
)

// ResultRepository archives the results of analysis runs
type ResultRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, runID core.RunID, results []stats.TestResult) error
	ListByRun(ctx context.Context, runID core.RunID) ([]stats.TestResult, error)
}
