package postgres

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"insurisk/domain/core"
	"insurisk/domain/stats"
	apperrors "insurisk/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*ResultRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewResultRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

const testRunID = core.RunID("0190f2a4-5b6c-7d8e-9f00-112233445566")

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hypothesis_test_results").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	results := []stats.TestResult{
		{Name: "H1", Method: stats.MethodANOVA, PValue: 0.01, Decision: stats.DecisionReject,
			Recommendation: "load", Groups: []string{"Gauteng", "Limpopo"}, CreatedAt: created},
		{Name: "H2", Method: stats.MethodWelchT, PValue: math.NaN(), Decision: stats.DecisionInsufficientData,
			Recommendation: "none", Reason: "missing column", CreatedAt: created},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hypothesis_test_results").
		WithArgs(testRunID.String(), "H1", "anova", 0.01, "REJECT", "load", "", sqlmock.AnyArg(), created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO hypothesis_test_results").
		WithArgs(testRunID.String(), "H2", "welch_t", nil, "INSUFFICIENT_DATA", "none", "missing column", sqlmock.AnyArg(), created).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRun(context.Background(), testRunID, results))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hypothesis_test_results").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.SaveRun(context.Background(), testRunID, []stats.TestResult{{Name: "H1", PValue: 0.5, Decision: stats.DecisionFailToReject}})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByRun(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"run_id", "test_name", "method", "p_value", "decision", "recommendation", "reason", "groups", "created_at"}).
		AddRow(testRunID.String(), "H4", "chi_square", 0.002, "REJECT", "discount", "", "{Female,Male}", created).
		AddRow(testRunID.String(), "H2", "welch_t", nil, "INSUFFICIENT_DATA", "none", "missing column", "{}", created)
	mock.ExpectQuery("SELECT (.+) FROM hypothesis_test_results").WithArgs(testRunID.String()).WillReturnRows(rows)

	results, err := repo.ListByRun(context.Background(), testRunID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, testRunID, results[0].RunID)
	assert.Equal(t, stats.MethodChiSquare, results[0].Method)
	assert.Equal(t, 0.002, results[0].PValue)
	assert.Equal(t, []string{"Female", "Male"}, results[0].Groups)
	assert.True(t, results[0].HasPValue())

	assert.True(t, math.IsNaN(results[1].PValue))
	assert.False(t, results[1].HasPValue())
	assert.Equal(t, "missing column", results[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
