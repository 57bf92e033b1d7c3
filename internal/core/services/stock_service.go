package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// stockService is the read and maintenance side of the stock ledger.
type stockService struct {
	stockRepo portsrepo.StockRepositoryWithTx
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo portsrepo.StockRepositoryWithTx) portssvc.StockSvcFacade {
	return &stockService{stockRepo: stockRepo}
}

// Ensure stockService implements the portssvc.StockSvcFacade interface
var _ portssvc.StockSvcFacade = (*stockService)(nil)

// GetStock retrieves stock records joined with product and location metadata.
// A record violating the stock invariants is reported as a data-integrity
// error; the quantities are never clamped to look plausible.
func (s *stockService) GetStock(ctx context.Context, tenantID string, filter portsrepo.StockFilter) ([]domain.StockDetail, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	records, err := s.stockRepo.ListStock(ctx, tenantID, filter)
	if err != nil {
		logger.Error("Failed to list stock", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve stock: %w", err)
	}

	for i := range records {
		if !records[i].CheckIntegrity() {
			logger.Error("Stock record violates invariants",
				slog.String("product_id", records[i].ProductID),
				slog.String("location_id", records[i].LocationID),
				slog.String("on_hand", records[i].OnHand.String()),
				slog.String("reserved", records[i].Reserved.String()))
			return nil, fmt.Errorf("%w: product %s at %s has on-hand %s, reserved %s", apperrors.ErrIntegrity, records[i].ProductID, records[i].LocationID, records[i].OnHand.String(), records[i].Reserved.String())
		}
	}

	return records, nil
}

// ListMovements retrieves a paginated movement feed.
func (s *stockService) ListMovements(ctx context.Context, tenantID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	movements, nextToken, err := s.stockRepo.ListMovements(ctx, tenantID, params.ProductID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list movements", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return &dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: nextToken,
	}, nil
}

// ReplayStock rebuilds on-hand from the movement log and compares it to the
// cache. Drift is always reported, never silently corrected; with repair set
// the cache is overwritten after the report.
func (s *stockService) ReplayStock(ctx context.Context, tenantID string, productID, locationID string, repair bool, userID string) (*dto.StockReplayResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.stockRepo.FindStockRecord(ctx, tenantID, productID, locationID)
	if err != nil {
		return nil, err
	}

	replayed, err := s.stockRepo.SumMovements(ctx, tenantID, productID, locationID)
	if err != nil {
		logger.Error("Failed to replay movement log", slog.String("error", err.Error()), slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to replay movements: %w", err)
	}

	resp := &dto.StockReplayResponse{
		ProductID:  productID,
		LocationID: locationID,
		Cached:     record.OnHand,
		Replayed:   replayed,
		InSync:     record.OnHand.Equal(replayed),
	}

	if !resp.InSync {
		logger.Error("Cached on-hand drifted from movement log",
			slog.String("product_id", productID),
			slog.String("location_id", locationID),
			slog.String("cached", record.OnHand.String()),
			slog.String("replayed", replayed.String()))

		if repair {
			now := time.Now().UTC()
			// Recompute the sum after taking the row lock. A movement that
			// committed between the unlocked read and here would otherwise be
			// clobbered by the overwrite.
			err := runInTx(ctx, s.stockRepo, func(tx pgx.Tx) error {
				locked, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, productID, locationID)
				if err != nil {
					return err
				}
				lockedSum, err := s.stockRepo.SumMovementsInTx(ctx, tx, tenantID, productID, locationID)
				if err != nil {
					return err
				}
				resp.Replayed = lockedSum
				locked.OnHand = lockedSum
				return s.stockRepo.UpdateStockInTx(ctx, tx, *locked, userID, now)
			})
			if err != nil {
				logger.Error("Failed to repair cached on-hand", slog.String("error", err.Error()), slog.String("product_id", productID))
				return nil, fmt.Errorf("failed to repair stock: %w", err)
			}
			logger.Info("Cached on-hand repaired from log", slog.String("product_id", productID), slog.String("location_id", locationID))
			return resp, nil
		}

		return resp, fmt.Errorf("%w: product %s at %s cached %s, replayed %s", apperrors.ErrIntegrity, productID, locationID, record.OnHand.String(), replayed.String())
	}

	return resp, nil
}
