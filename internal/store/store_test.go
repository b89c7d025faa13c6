package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/boost-cli/internal/orchestrator"
	"github.com/xkilldash9x/boost-cli/internal/reporting"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func newMockStore(t *testing.T, logger *zap.Logger) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	s, err := New(context.Background(), mockPool, logger)
	require.NoError(t, err)
	return s, mockPool
}

func testReport() reporting.RunReport {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return reporting.RunReport{
		RunID:      "7d1f3c2a-0000-4000-8000-000000000001",
		StartedAt:  start,
		FinishedAt: start.Add(5 * time.Minute),
		Accounts:   []string{"https://x.com/newsdesk"},
		Discovered: 2,
		Outcomes: []reporting.OutcomeRecord{
			{Item: "https://x.com/newsdesk/status/1", Status: "engaged_now", Liked: true, DurationMS: 12000},
			{Item: "https://x.com/newsdesk/status/2", Status: "error", Reason: "boom", DurationMS: 3000},
		},
		Tally: orchestrator.Tally{EngagedNow: 1, Errors: 1},
	}
}

func expectRunInsert(mockPool pgxmock.PgxPoolIface, r reporting.RunReport) {
	mockPool.ExpectExec(flexibleSQLMatcher(insertRunSQL)).
		WithArgs(r.RunID, r.StartedAt, r.FinishedAt, r.Accounts, r.Discovered,
			r.Tally.EngagedNow, r.Tally.AlreadyEngaged, r.Tally.Errors).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestNewStore(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	pingErr := errors.New("database unavailable")
	mockPool.ExpectPing().WillReturnError(pingErr)

	_, err = New(context.Background(), mockPool, zap.NewNop())
	assert.ErrorIs(t, err, pingErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	s, mockPool := newMockStore(t, zap.NewNop())

	mockPool.ExpectExec(flexibleSQLMatcher(schemaSQL)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, s.EnsureSchema(context.Background()))

	mockPool.ExpectExec(flexibleSQLMatcher(schemaSQL)).WillReturnError(errors.New("permission denied"))
	assert.ErrorContains(t, s.EnsureSchema(context.Background()), "failed to create schema")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsRunAndOutcomes", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		s, mockPool := newMockStore(t, zap.New(core))
		report := testReport()

		mockPool.ExpectBegin()
		expectRunInsert(mockPool, report)
		mockPool.ExpectCopyFrom(pgx.Identifier{"run_outcomes"}, outcomeColumns).WillReturnResult(2)
		mockPool.ExpectCommit()
		mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

		require.NoError(t, s.SaveRun(ctx, report))
		assert.NoError(t, mockPool.ExpectationsWereMet())
		assert.Empty(t, logs.All(), "a closed transaction on rollback is not an error")
	})

	t.Run("NoOutcomesSkipsCopy", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		report := testReport()
		report.Outcomes = nil

		mockPool.ExpectBegin()
		expectRunInsert(mockPool, report)
		mockPool.ExpectCommit()
		mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

		require.NoError(t, s.SaveRun(ctx, report))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		report := testReport()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(insertRunSQL)).WillReturnError(errors.New("duplicate key"))
		mockPool.ExpectRollback()

		err := s.SaveRun(ctx, report)
		assert.ErrorContains(t, err, "failed to insert run")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("CopyCountMismatch", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())
		report := testReport()

		mockPool.ExpectBegin()
		expectRunInsert(mockPool, report)
		mockPool.ExpectCopyFrom(pgx.Identifier{"run_outcomes"}, outcomeColumns).WillReturnResult(1)
		mockPool.ExpectRollback()

		assert.ErrorContains(t, s.SaveRun(ctx, report), "mismatch in copied outcomes count")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("BeginFails", func(t *testing.T) {
		s, mockPool := newMockStore(t, zap.NewNop())

		mockPool.ExpectBegin().WillReturnError(errors.New("too many connections"))
		assert.ErrorContains(t, s.SaveRun(ctx, testReport()), "failed to begin transaction")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollbackFailureIsLogged", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		s, mockPool := newMockStore(t, zap.New(core))

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(insertRunSQL)).WillReturnError(errors.New("duplicate key"))
		mockPool.ExpectRollback().WillReturnError(errors.New("connection reset"))

		assert.Error(t, s.SaveRun(ctx, testReport()))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Failed to rollback transaction", logs.All()[0].Message)
	})
}
