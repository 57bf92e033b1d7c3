package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finstok/finstok_backend/internal/apperrors"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
)

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

// runInTx runs fn inside a transaction owned by tm, committing on success.
// Serialization failures and deadlocks restart the whole closure up to
// maxTxAttempts times; fn must re-read any state it depends on under lock, so
// a rerun starts from scratch. After the attempts are exhausted the contention
// surfaces as ErrConflict so the caller can retry the whole operation.
func runInTx(ctx context.Context, tm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = func() error {
			tx, beginErr := tm.Begin(ctx)
			if beginErr != nil {
				return beginErr
			}
			defer tm.Rollback(ctx, tx)

			if fnErr := fn(tx); fnErr != nil {
				return fnErr
			}
			return tm.Commit(ctx, tx)
		}()
		if err == nil || !isRetryableTxError(err) {
			return err
		}
	}
	return apperrors.NewAppError(409, "transaction retries exhausted due to contention", errors.Join(apperrors.ErrConflict, err))
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
