package services

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/dto"
)

// StockReaderSvc defines the read side of the stock ledger.
type StockReaderSvc interface {
	// GetStock retrieves stock records joined with product/location metadata.
	// A record whose net available is negative is reported as a
	// data-integrity error, never clamped.
	GetStock(ctx context.Context, tenantID string, filter repositories.StockFilter) ([]domain.StockDetail, error)

	// ListMovements retrieves a paginated movement feed.
	ListMovements(ctx context.Context, tenantID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}

// StockMaintenanceSvc defines the stock replay maintenance operation.
type StockMaintenanceSvc interface {
	// ReplayStock rebuilds on-hand from the movement log and compares it to
	// the cache, reporting drift as a data-integrity error; with repair set
	// the cache is overwritten after being reported.
	ReplayStock(ctx context.Context, tenantID string, productID, locationID string, repair bool, userID string) (*dto.StockReplayResponse, error)
}

// MovementSvcFacade defines the mutating stock operations. This engine is the
// sole writer of movements and of the cached on-hand quantity.
type MovementSvcFacade interface {
	// RecordMovement appends a movement and atomically adjusts on-hand at the
	// affected locations.
	RecordMovement(ctx context.Context, tenantID string, req dto.RecordMovementRequest, userID string) (*domain.Movement, error)

	// Reserve places a hold against net available stock.
	Reserve(ctx context.Context, tenantID string, req dto.ReserveRequest, userID string) (*domain.Reservation, error)

	// Release returns a reservation's quantity to net available. A second
	// release fails so callers can detect double-release bugs.
	Release(ctx context.Context, tenantID string, reservationID string, userID string) (*domain.Reservation, error)

	// CountAdjust reconciles a physical count by posting a synthetic movement
	// for the delta. An adjustment that would leave reservations above the
	// counted quantity is rejected.
	CountAdjust(ctx context.Context, tenantID string, req dto.CountAdjustRequest, userID string) (*domain.Movement, error)
}

// StockSvcFacade combines the read and maintenance stock operations.
type StockSvcFacade interface {
	StockReaderSvc
	StockMaintenanceSvc
}
