package repositories

import (
	"context"
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StockFilter narrows a stock listing to a warehouse or a single location.
type StockFilter struct {
	WarehouseID *string
	LocationID  *string
}

// StockReader defines read operations for stock data.
type StockReader interface {
	// FindStockRecord retrieves the cached stock pair for one
	// (product, location).
	FindStockRecord(ctx context.Context, tenantID, productID, locationID string) (*domain.StockRecord, error)

	// ListStock retrieves stock records joined with product and location
	// metadata, filtered per StockFilter.
	ListStock(ctx context.Context, tenantID string, filter StockFilter) ([]domain.StockDetail, error)

	// SumMovements replays the movement log for one (product, location):
	// sum of inbound minus outbound quantities.
	SumMovements(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error)
}

// StockReplaySupport defines the locked recompute used by stock repair.
type StockReplaySupport interface {
	// SumMovementsInTx is the same replay running inside a caller-owned
	// transaction, after the stock row lock is taken, so no movement can
	// commit between the recompute and the overwrite.
	SumMovementsInTx(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (decimal.Decimal, error)
}

// StockTransactionSupport defines operations that run inside a stock mutation
// transaction.
type StockTransactionSupport interface {
	// FindStockForUpdate selects the stock row and locks it, creating a zero
	// row first when none exists. Must be called within a transaction.
	FindStockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (*domain.StockRecord, error)

	// UpdateStockInTx overwrites the cached pair for one (product, location)
	// within a transaction.
	UpdateStockInTx(ctx context.Context, tx pgx.Tx, record domain.StockRecord, userID string, now time.Time) error

	// SaveMovementInTx appends a movement within a transaction.
	SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.Movement) error

	// SaveReservationInTx persists a new reservation within a transaction.
	SaveReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error

	// FindReservationForUpdate selects a reservation and locks its row.
	FindReservationForUpdate(ctx context.Context, tx pgx.Tx, reservationID string) (*domain.Reservation, error)

	// MarkReservationReleasedInTx flags a reservation as released.
	MarkReservationReleasedInTx(ctx context.Context, tx pgx.Tx, reservationID string, userID string, now time.Time) error
}

// MovementReader defines read operations over the append-only movement log.
type MovementReader interface {
	// ListMovements retrieves a paginated movement feed, newest first,
	// optionally filtered by product.
	ListMovements(ctx context.Context, tenantID string, productID *string, limit int, nextToken *string) ([]domain.Movement, *string, error)
}

// StockRepositoryFacade combines all stock-related repository interfaces.
type StockRepositoryFacade interface {
	StockReader
	StockReplaySupport
	StockTransactionSupport
	MovementReader
}

// StockRepositoryWithTx extends the facade with transaction management.
type StockRepositoryWithTx interface {
	StockRepositoryFacade
	TransactionManager
}
