// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/reporting"
)

// DBPool is the subset of pgxpool.Pool the store uses, so tests can mock it.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id              UUID PRIMARY KEY,
    started_at      TIMESTAMPTZ NOT NULL,
    finished_at     TIMESTAMPTZ NOT NULL,
    accounts        TEXT[] NOT NULL,
    discovered      INTEGER NOT NULL,
    engaged_now     INTEGER NOT NULL,
    already_engaged INTEGER NOT NULL,
    errors          INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_outcomes (
    run_id      UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    item        TEXT NOT NULL,
    status      TEXT NOT NULL,
    reason      TEXT NOT NULL,
    liked       BOOLEAN NOT NULL,
    duration_ms BIGINT NOT NULL,
    PRIMARY KEY (run_id, position)
);`

const insertRunSQL = `
INSERT INTO runs (id, started_at, finished_at, accounts, discovered, engaged_now, already_engaged, errors)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

var outcomeColumns = []string{"run_id", "position", "item", "status", "reason", "liked", "duration_ms"}

// Store keeps a write-only history of runs in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the history tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun writes the run summary and its outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, report reporting.RunReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx, insertRunSQL,
		report.RunID,
		report.StartedAt.UTC(),
		report.FinishedAt.UTC(),
		report.Accounts,
		report.Discovered,
		report.Tally.EngagedNow,
		report.Tally.AlreadyEngaged,
		report.Tally.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}

	if len(report.Outcomes) > 0 {
		if err := s.copyOutcomes(ctx, tx, report); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Run persisted", zap.String("run_id", report.RunID), zap.Int("outcomes", len(report.Outcomes)))
	return nil
}

func (s *Store) copyOutcomes(ctx context.Context, tx pgx.Tx, report reporting.RunReport) error {
	rows := make([][]any, len(report.Outcomes))
	for i, o := range report.Outcomes {
		rows[i] = []any{report.RunID, i, o.Item, o.Status, o.Reason, o.Liked, o.DurationMS}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"run_outcomes"}, outcomeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy outcomes: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("mismatch in copied outcomes count: expected %d, got %d", len(rows), n)
	}
	return nil
}
