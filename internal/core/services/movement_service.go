package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// movementService is the sole writer of stock movements and of the cached
// (on-hand, reserved) pair. All mutations lock the stock row first, so two
// concurrent operations on the same (product, location) serialize.
type movementService struct {
	stockRepo portsrepo.StockRepositoryWithTx
}

// NewMovementService creates a new MovementService.
func NewMovementService(stockRepo portsrepo.StockRepositoryWithTx) portssvc.MovementSvcFacade {
	return &movementService{stockRepo: stockRepo}
}

// Ensure movementService implements the portssvc.MovementSvcFacade interface
var _ portssvc.MovementSvcFacade = (*movementService)(nil)

// RecordMovement appends a movement and atomically adjusts on-hand at the
// affected locations. Receipt, issue, and transfer are all the same
// operation distinguished only by which location ends are set.
func (s *movementService) RecordMovement(ctx context.Context, tenantID string, req dto.RecordMovementRequest, userID string) (*domain.Movement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: movement quantity must be positive", apperrors.ErrValidation)
	}
	if req.FromLocationID == nil && req.ToLocationID == nil {
		return nil, fmt.Errorf("%w: movement must have a source or a destination", apperrors.ErrValidation)
	}
	if req.FromLocationID != nil && req.ToLocationID != nil && *req.FromLocationID == *req.ToLocationID {
		return nil, fmt.Errorf("%w: movement source and destination are the same location", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	movement := domain.Movement{
		MovementID:     uuid.NewString(),
		TenantID:       tenantID,
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Reference:      req.Reference,
		CreatedAt:      now,
		CreatedBy:      userID,
	}

	err := s.withStockTx(ctx, func(tx pgx.Tx) error {
		if req.FromLocationID != nil {
			stock, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, req.ProductID, *req.FromLocationID)
			if err != nil {
				return err
			}
			newOnHand := stock.OnHand.Sub(req.Quantity)
			if newOnHand.IsNegative() {
				return fmt.Errorf("%w: on hand %s, requested %s", apperrors.ErrInsufficientStock, stock.OnHand.String(), req.Quantity.String())
			}
			// Reserved quantity stays committed; an outbound may only
			// consume the unreserved remainder.
			if newOnHand.LessThan(stock.Reserved) {
				return fmt.Errorf("%w: available %s, requested %s", apperrors.ErrInsufficientAvailable, stock.NetAvailable().String(), req.Quantity.String())
			}
			stock.OnHand = newOnHand
			if err := s.stockRepo.UpdateStockInTx(ctx, tx, *stock, userID, now); err != nil {
				return err
			}
		}

		if req.ToLocationID != nil {
			stock, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, req.ProductID, *req.ToLocationID)
			if err != nil {
				return err
			}
			stock.OnHand = stock.OnHand.Add(req.Quantity)
			if err := s.stockRepo.UpdateStockInTx(ctx, tx, *stock, userID, now); err != nil {
				return err
			}
		}

		return s.stockRepo.SaveMovementInTx(ctx, tx, movement)
	})
	if err != nil {
		logger.Error("Failed to record movement", slog.String("error", err.Error()), slog.String("product_id", req.ProductID))
		return nil, err
	}

	logger.Info("Movement recorded", slog.String("movement_id", movement.MovementID), slog.String("product_id", req.ProductID), slog.String("quantity", req.Quantity.String()))
	return &movement, nil
}

// Reserve places a hold against net available stock. The hold reduces what
// later reservations and issues can take without moving physical quantity.
func (s *movementService) Reserve(ctx context.Context, tenantID string, req dto.ReserveRequest, userID string) (*domain.Reservation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: reservation quantity must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	reservation := domain.Reservation{
		ReservationID: uuid.NewString(),
		TenantID:      tenantID,
		ProductID:     req.ProductID,
		LocationID:    req.LocationID,
		Quantity:      req.Quantity,
		Reference:     req.Reference,
		Released:      false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.withStockTx(ctx, func(tx pgx.Tx) error {
		stock, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, req.ProductID, req.LocationID)
		if err != nil {
			return err
		}
		if req.Quantity.GreaterThan(stock.NetAvailable()) {
			return fmt.Errorf("%w: available %s, requested %s", apperrors.ErrInsufficientAvailable, stock.NetAvailable().String(), req.Quantity.String())
		}

		stock.Reserved = stock.Reserved.Add(req.Quantity)
		if err := s.stockRepo.UpdateStockInTx(ctx, tx, *stock, userID, now); err != nil {
			return err
		}

		return s.stockRepo.SaveReservationInTx(ctx, tx, reservation)
	})
	if err != nil {
		logger.Error("Failed to reserve stock", slog.String("error", err.Error()), slog.String("product_id", req.ProductID))
		return nil, err
	}

	logger.Info("Stock reserved", slog.String("reservation_id", reservation.ReservationID), slog.String("quantity", req.Quantity.String()))
	return &reservation, nil
}

// Release returns a reservation's quantity to net available. A second release
// fails with ErrAlreadyReleased so double-release bugs surface instead of
// silently inflating availability.
func (s *movementService) Release(ctx context.Context, tenantID string, reservationID string, userID string) (*domain.Reservation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	var released *domain.Reservation

	err := s.withStockTx(ctx, func(tx pgx.Tx) error {
		reservation, err := s.stockRepo.FindReservationForUpdate(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if reservation.TenantID != tenantID {
			logger.Warn("Reservation found but belongs to different tenant", slog.String("reservation_id", reservationID))
			return apperrors.ErrNotFound // Obscure existence
		}
		if reservation.Released {
			return fmt.Errorf("%w: reservation %s", apperrors.ErrAlreadyReleased, reservationID)
		}

		stock, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, reservation.ProductID, reservation.LocationID)
		if err != nil {
			return err
		}
		newReserved := stock.Reserved.Sub(reservation.Quantity)
		if newReserved.IsNegative() {
			// The cache disagrees with the reservation log. Surface it.
			return fmt.Errorf("%w: reserved %s below reservation quantity %s for product %s at %s", apperrors.ErrIntegrity, stock.Reserved.String(), reservation.Quantity.String(), reservation.ProductID, reservation.LocationID)
		}
		stock.Reserved = newReserved
		if err := s.stockRepo.UpdateStockInTx(ctx, tx, *stock, userID, now); err != nil {
			return err
		}

		if err := s.stockRepo.MarkReservationReleasedInTx(ctx, tx, reservationID, userID, now); err != nil {
			return err
		}

		reservation.Released = true
		reservation.ReleasedAt = &now
		reservation.LastUpdatedAt = now
		reservation.LastUpdatedBy = userID
		released = reservation
		return nil
	})
	if err != nil {
		logger.Error("Failed to release reservation", slog.String("error", err.Error()), slog.String("reservation_id", reservationID))
		return nil, err
	}

	logger.Info("Reservation released", slog.String("reservation_id", reservationID))
	return released, nil
}

// CountAdjust reconciles a physical count by appending a synthetic movement
// for the delta, keeping the movement log the complete history. A count that
// would strand reservations above the counted quantity is rejected; the
// operator must resolve the reservations first.
func (s *movementService) CountAdjust(ctx context.Context, tenantID string, req dto.CountAdjustRequest, userID string) (*domain.Movement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.CountedQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: counted quantity cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	reference := req.Reference
	if reference == "" {
		reference = "COUNT"
	}

	var movement *domain.Movement
	err := s.withStockTx(ctx, func(tx pgx.Tx) error {
		stock, err := s.stockRepo.FindStockForUpdate(ctx, tx, tenantID, req.ProductID, req.LocationID)
		if err != nil {
			return err
		}
		if req.CountedQuantity.LessThan(stock.Reserved) {
			return fmt.Errorf("%w: reserved %s, counted %s", apperrors.ErrReservationConflict, stock.Reserved.String(), req.CountedQuantity.String())
		}

		delta := req.CountedQuantity.Sub(stock.OnHand)
		if delta.IsZero() {
			// Count confirmed the cache, nothing to write
			return nil
		}

		mov := domain.Movement{
			MovementID: uuid.NewString(),
			TenantID:   tenantID,
			ProductID:  req.ProductID,
			Quantity:   delta.Abs(),
			Reference:  reference,
			CreatedAt:  now,
			CreatedBy:  userID,
		}
		if delta.IsPositive() {
			mov.ToLocationID = &req.LocationID
		} else {
			mov.FromLocationID = &req.LocationID
		}

		stock.OnHand = req.CountedQuantity
		if err := s.stockRepo.UpdateStockInTx(ctx, tx, *stock, userID, now); err != nil {
			return err
		}
		if err := s.stockRepo.SaveMovementInTx(ctx, tx, mov); err != nil {
			return err
		}

		movement = &mov
		return nil
	})
	if err != nil {
		logger.Error("Failed to adjust count", slog.String("error", err.Error()), slog.String("product_id", req.ProductID))
		return nil, err
	}

	if movement == nil {
		logger.Info("Count matched cached on-hand, no adjustment", slog.String("product_id", req.ProductID), slog.String("location_id", req.LocationID))
		return nil, nil
	}

	logger.Info("Count adjustment recorded", slog.String("movement_id", movement.MovementID), slog.String("product_id", req.ProductID))
	return movement, nil
}

// withStockTx runs fn inside a stock transaction, committing on success.
// Every mutator re-reads its stock rows under lock inside fn, so a deadlock
// between concurrent mutators (opposite-direction transfers lock rows in
// opposite orders) is resolved by rerunning the closure.
func (s *movementService) withStockTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return runInTx(ctx, s.stockRepo, fn)
}
