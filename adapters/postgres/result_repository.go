package postgres

import (
	"context"
	"database/sql"
	"math"
	"time"

	"insurisk/domain/core"
	"insurisk/domain/stats"
	apperrors "insurisk/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS hypothesis_test_results (
	id             BIGSERIAL PRIMARY KEY,
	run_id         UUID NOT NULL,
	test_name      TEXT NOT NULL,
	method         TEXT NOT NULL,
	p_value        DOUBLE PRECISION,
	decision       TEXT NOT NULL,
	recommendation TEXT NOT NULL,
	reason         TEXT NOT NULL DEFAULT '',
	groups         TEXT[] NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_hypothesis_test_results_run ON hypothesis_test_results (run_id);`

// ResultRepository archives hypothesis test results in PostgreSQL
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

type resultRow struct {
	RunID          string          `db:"run_id"`
	TestName       string          `db:"test_name"`
	Method         string          `db:"method"`
	PValue         sql.NullFloat64 `db:"p_value"`
	Decision       string          `db:"decision"`
	Recommendation string          `db:"recommendation"`
	Reason         string          `db:"reason"`
	Groups         pq.StringArray  `db:"groups"`
	CreatedAt      time.Time       `db:"created_at"`
}

// EnsureSchema creates the results table if it does not exist
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createResultsTable); err != nil {
		return apperrors.DatabaseError("failed to create hypothesis_test_results", err)
	}
	return nil
}

// SaveRun stores every result of a run in one transaction.
// Results without a p-value are stored with a NULL p_value.
func (r *ResultRepository) SaveRun(ctx context.Context, runID core.RunID, results []stats.TestResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, result := range results {
		pValue := sql.NullFloat64{Float64: result.PValue, Valid: result.HasPValue() && !math.IsNaN(result.PValue)}
		createdAt := result.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		groups := result.Groups
		if groups == nil {
			groups = []string{}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO hypothesis_test_results (
				run_id, test_name, method, p_value, decision, recommendation, reason, groups, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID.String(), result.Name, string(result.Method), pValue, string(result.Decision),
			result.Recommendation, result.Reason, pq.Array(groups), createdAt)
		if err != nil {
			return apperrors.DatabaseError("failed to save result "+result.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// ListByRun returns the results of a run in insertion order
func (r *ResultRepository) ListByRun(ctx context.Context, runID core.RunID) ([]stats.TestResult, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, test_name, method, p_value, decision, recommendation, reason, groups, created_at
		FROM hypothesis_test_results
		WHERE run_id = $1
		ORDER BY id`, runID.String())
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list results", err)
	}

	results := make([]stats.TestResult, 0, len(rows))
	for _, row := range rows {
		pValue := math.NaN()
		if row.PValue.Valid {
			pValue = row.PValue.Float64
		}
		results = append(results, stats.TestResult{
			RunID:          core.RunID(row.RunID),
			Name:           row.TestName,
			Method:         stats.TestMethod(row.Method),
			PValue:         pValue,
			Decision:       stats.Decision(row.Decision),
			Recommendation: row.Recommendation,
			Groups:         []string(row.Groups),
			Reason:         row.Reason,
			CreatedAt:      row.CreatedAt,
		})
	}
	return results, nil
}
