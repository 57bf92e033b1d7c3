package repositories

import (
	"context"
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CheckReader defines read operations for check data.
type CheckReader interface {
	// FindCheckByID retrieves a specific check by its identifier.
	FindCheckByID(ctx context.Context, checkID string) (*domain.Check, error)

	// ListChecks retrieves checks of a tenant, optionally filtered by status
	// and type, ordered by due date.
	ListChecks(ctx context.Context, tenantID string, status *domain.CheckStatus, checkType *domain.CheckType) ([]domain.Check, error)
}

// CheckWriter defines write operations for check data.
type CheckWriter interface {
	// SaveCheck persists a new check in the portfolio.
	SaveCheck(ctx context.Context, check domain.Check) error

	// TransitionCheckStatusInTx moves a check out of the portfolio within a
	// transaction. The update carries a status guard so the transition is a
	// compare-and-set: zero rows affected means the check already left the
	// portfolio and the transition must fail.
	TransitionCheckStatusInTx(ctx context.Context, tx pgx.Tx, checkID string, from, to domain.CheckStatus, settlementGroupID *string, userID string, now time.Time) error

	// TransitionCheckStatus is the non-transactional form used for bounces,
	// which do not post to the ledger.
	TransitionCheckStatus(ctx context.Context, checkID string, from, to domain.CheckStatus, userID string, now time.Time) error
}

// CheckRepositoryFacade combines all check-related repository interfaces.
type CheckRepositoryFacade interface {
	CheckReader
	CheckWriter
}

// CheckRepositoryWithTx extends the facade with transaction management.
type CheckRepositoryWithTx interface {
	CheckRepositoryFacade
	TransactionManager
}
