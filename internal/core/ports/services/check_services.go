package services

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/dto"
)

// CheckSvcFacade defines the post-dated instrument lifecycle. Creation does
// not touch the ledger; settlement posts a balanced group; bouncing only
// transitions state.
type CheckSvcFacade interface {
	// CreateCheck registers a check in the portfolio.
	CreateCheck(ctx context.Context, tenantID string, req dto.CreateCheckRequest, creatorUserID string) (*domain.Check, error)

	// GetCheckByID retrieves a specific check, scoped to the tenant.
	GetCheckByID(ctx context.Context, tenantID string, checkID string) (*domain.Check, error)

	// ListChecks retrieves checks filtered by status and type.
	ListChecks(ctx context.Context, tenantID string, params dto.ListChecksParams) ([]domain.Check, error)

	// Settle transitions a portfolio check to its settled state (COLLECTED
	// for received, PAID for given) and atomically posts the settlement group
	// between the counterparty account and the settlement account.
	Settle(ctx context.Context, tenantID string, checkID string, settlementAccountID string, userID string) (*domain.Check, *domain.PostingGroup, error)

	// MarkBounced transitions a portfolio check to BOUNCED. No posting: the
	// bounce reverses an expectation, not a cash movement.
	MarkBounced(ctx context.Context, tenantID string, checkID string, userID string) (*domain.Check, error)
}
