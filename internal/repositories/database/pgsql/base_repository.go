package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// DBPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it as well.
type DBPool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Querier is satisfied by both a pool and a pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool DBPool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// ExecuteTx runs fn inside a transaction, committing on success and rolling back on error or panic.
func (r *BaseRepository) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = r.Rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			_ = r.Rollback(ctx, tx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// execBatch sends a batch and checks that every statement affected exactly one row.
func execBatch(ctx context.Context, q Querier, b *pgx.Batch, what string) error {
	br := q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to %s (item %d): %w", what, i, err)
		}
		if ct.RowsAffected() != 1 {
			_ = br.Close()
			return fmt.Errorf("failed to %s (item %d): expected 1 row affected, got %d", what, i, ct.RowsAffected())
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch for %s: %w", what, err)
	}
	return nil
}
