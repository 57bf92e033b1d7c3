package services

import (
	"context"
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc defines the mutating ledger operations. The ledger engine is
// the only component that creates transactions.
type LedgerWriterSvc interface {
	// Post validates and commits a balanced posting group atomically.
	Post(ctx context.Context, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error)

	// PostInTx commits a balanced posting group inside a caller-owned
	// transaction. Used by settlement flows that must atomically pair a
	// posting with another state change.
	PostInTx(ctx context.Context, tx pgx.Tx, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error)

	// Reverse creates an offsetting posting group for the group containing
	// the given transaction. The original group is never mutated beyond its
	// status and link fields.
	Reverse(ctx context.Context, tenantID string, transactionID string, userID string) (*domain.PostingGroup, error)
}

// LedgerReaderSvc defines the read-side ledger operations.
type LedgerReaderSvc interface {
	// GetGroupByID retrieves a posting group with its transactions.
	GetGroupByID(ctx context.Context, tenantID string, groupID string) (*domain.PostingGroup, error)

	// ListGroups retrieves a paginated list of posting groups.
	ListGroups(ctx context.Context, tenantID string, params dto.ListGroupsParams) (*dto.ListGroupsResponse, error)

	// GetBalance derives an account balance from the transaction log. With a
	// nil asOf it returns the current balance; otherwise the balance as of
	// that date, supporting historical statements.
	GetBalance(ctx context.Context, tenantID string, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// ListTransactionsByAccount retrieves a paginated account statement.
	ListTransactionsByAccount(ctx context.Context, tenantID string, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerMaintenanceSvc defines the replay maintenance operations.
type LedgerMaintenanceSvc interface {
	// ReplayBalance recomputes an account balance from its log and compares
	// it to the cache. Drift is reported as a data-integrity error, never
	// silently corrected; with repair set the cache is overwritten after
	// being reported.
	ReplayBalance(ctx context.Context, tenantID string, accountID string, repair bool, userID string) (*dto.ReplayResponse, error)
}

// LedgerSvcFacade combines all ledger engine operations.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
	LedgerMaintenanceSvc
}
