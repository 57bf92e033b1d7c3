package repositories

import (
	"context"
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PostingReader defines read operations for posting group data.
type PostingReader interface {
	// FindGroupByID retrieves a specific posting group by its identifier.
	FindGroupByID(ctx context.Context, groupID string) (*domain.PostingGroup, error)

	// ListGroupsByTenant retrieves a paginated list of posting groups using
	// token-based pagination.
	ListGroupsByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.PostingGroup, *string, error)
}

// PostingWriter defines write operations for posting group data.
type PostingWriter interface {
	// SavePostingGroup persists a group and its transactions and applies the
	// balance deltas, all within one database transaction.
	SavePostingGroup(ctx context.Context, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// SavePostingGroupInTx is the same operation running inside a caller-owned
	// transaction, so settlement flows can commit a posting and a status
	// change atomically.
	SavePostingGroupInTx(ctx context.Context, tx pgx.Tx, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// UpdateGroupStatusAndLinks updates the status and reversal linkage of a
	// posting group.
	UpdateGroupStatusAndLinks(ctx context.Context, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error

	// UpdateGroupStatusAndLinksInTx is the same update on a caller-owned
	// transaction, so a reversal posts the offsetting group and flips the
	// original's status atomically.
	UpdateGroupStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error
}

// TransactionReader defines read operations over the append-only transaction
// log.
type TransactionReader interface {
	// FindTransactionByID retrieves a single transaction line.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByGroupID retrieves all transactions of a group.
	FindTransactionsByGroupID(ctx context.Context, groupID string) ([]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated account statement using
	// token-based pagination.
	ListTransactionsByAccountID(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumAccountTransactions replays the log for an account: signed sum of all
	// its transactions, restricted to date <= asOf when asOf is non-nil.
	SumAccountTransactions(ctx context.Context, tenantID, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// SumAccountTransactionsInTx is the same replay running inside a
	// caller-owned transaction, so a repair can recompute the sum after taking
	// the account row lock and no posting can slip in between.
	SumAccountTransactionsInTx(ctx context.Context, tx pgx.Tx, tenantID, accountID string) (decimal.Decimal, error)
}

// PostingRepositoryFacade combines all posting-related repository interfaces.
type PostingRepositoryFacade interface {
	PostingReader
	PostingWriter
	TransactionReader
}

// PostingRepositoryWithTx extends the facade with transaction management.
type PostingRepositoryWithTx interface {
	PostingRepositoryFacade
	TransactionManager
}
