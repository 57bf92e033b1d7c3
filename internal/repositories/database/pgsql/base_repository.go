package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
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
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

const maxTxAttempts = 3

// isRetryableTxError reports whether the error is a serialization failure or
// deadlock that a fresh transaction attempt can resolve.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// withTxRetry runs fn up to maxTxAttempts times, retrying only on
// serialization failures and deadlocks. After the attempts are exhausted the
// contention surfaces as ErrConflict so the caller can retry the whole
// operation.
func withTxRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
	}
	return apperrors.NewAppError(409, "transaction retries exhausted due to contention", errors.Join(apperrors.ErrConflict, err))
}
