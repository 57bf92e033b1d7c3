package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/core/services"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
)

type MovementServiceTestSuite struct {
	suite.Suite
	mockStockRepo *MockStockRepository
	service       portssvc.MovementSvcFacade
	ctx           context.Context

	tenantID  string
	userID    string
	productID string
	locationA string
	locationB string
}

func (suite *MovementServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.service = services.NewMovementService(suite.mockStockRepo)
	suite.ctx = context.Background()

	suite.tenantID = "tenant-1"
	suite.userID = "user-1"
	suite.productID = "prod-1"
	suite.locationA = "loc-a"
	suite.locationB = "loc-b"
}

func (suite *MovementServiceTestSuite) stockAt(locationID string, onHand, reserved int64) *domain.StockRecord {
	return &domain.StockRecord{
		TenantID:   suite.tenantID,
		ProductID:  suite.productID,
		LocationID: locationID,
		OnHand:     decimal.NewFromInt(onHand),
		Reserved:   decimal.NewFromInt(reserved),
	}
}

func (suite *MovementServiceTestSuite) expectTx() {
	suite.mockStockRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockStockRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)
}

func (suite *MovementServiceTestSuite) expectRolledBackTx() {
	suite.mockStockRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockStockRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)
}

func (suite *MovementServiceTestSuite) TestRecordMovement_Receipt() {
	req := dto.RecordMovementRequest{
		ProductID:    suite.productID,
		Quantity:     decimal.NewFromInt(10),
		ToLocationID: &suite.locationA,
		Reference:    "PO-7",
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 5, 0), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			record := args.Get(2).(domain.StockRecord)
			suite.True(record.OnHand.Equal(decimal.NewFromInt(15)))
		}).Return(nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Movement")).
		Run(func(args mock.Arguments) {
			movement := args.Get(2).(domain.Movement)
			suite.Nil(movement.FromLocationID)
			suite.Require().NotNil(movement.ToLocationID)
			suite.Equal(suite.locationA, *movement.ToLocationID)
		}).Return(nil).Once()

	movement, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
	suite.Equal("PO-7", movement.Reference)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRecordMovement_Transfer() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(4),
		FromLocationID: &suite.locationA,
		ToLocationID:   &suite.locationB,
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 0), nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationB).
		Return(suite.stockAt(suite.locationB, 1, 0), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.MatchedBy(func(r domain.StockRecord) bool {
		return r.LocationID == suite.locationA && r.OnHand.Equal(decimal.NewFromInt(6))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.MatchedBy(func(r domain.StockRecord) bool {
		return r.LocationID == suite.locationB && r.OnHand.Equal(decimal.NewFromInt(5))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Movement")).Return(nil).Once()

	movement, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRecordMovement_RetriesOnDeadlock() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(4),
		FromLocationID: &suite.locationA,
		ToLocationID:   &suite.locationB,
	}

	// Two transfers in opposite directions lock the same rows in opposite
	// orders; the loser's transaction is rerun from scratch.
	deadlock := fmt.Errorf("failed to lock stock record: %w", &pgconn.PgError{Code: "40P01"})

	suite.mockStockRepo.On("Begin", suite.ctx).Return(nil, nil).Twice()
	suite.mockStockRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)
	suite.mockStockRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(nil, deadlock).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 0), nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationB).
		Return(suite.stockAt(suite.locationB, 1, 0), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Twice()
	suite.mockStockRepo.On("SaveMovementInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Movement")).Return(nil).Once()

	movement, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRecordMovement_ContentionExhaustsRetries() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(4),
		FromLocationID: &suite.locationA,
	}

	deadlock := fmt.Errorf("failed to lock stock record: %w", &pgconn.PgError{Code: "40P01"})

	suite.mockStockRepo.On("Begin", suite.ctx).Return(nil, nil).Times(3)
	suite.mockStockRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(nil, deadlock).Times(3)

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit")
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRecordMovement_UnregisteredLocation() {
	req := dto.RecordMovementRequest{
		ProductID:    suite.productID,
		Quantity:     decimal.NewFromInt(10),
		ToLocationID: &suite.locationA,
	}

	notRegistered := fmt.Errorf("%w: product %s or location %s is not registered", apperrors.ErrNotFound, suite.productID, suite.locationA)

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(nil, notRegistered).Once()

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx")
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockInTx")
}

func (suite *MovementServiceTestSuite) TestRecordMovement_NoLocations() {
	req := dto.RecordMovementRequest{
		ProductID: suite.productID,
		Quantity:  decimal.NewFromInt(4),
	}

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *MovementServiceTestSuite) TestRecordMovement_SameLocationTransfer() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(4),
		FromLocationID: &suite.locationA,
		ToLocationID:   &suite.locationA,
	}

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MovementServiceTestSuite) TestRecordMovement_InsufficientStock() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(8),
		FromLocationID: &suite.locationA,
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 5, 0), nil).Once()

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientStock)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockInTx")
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit")
}

func (suite *MovementServiceTestSuite) TestRecordMovement_WouldConsumeReserved() {
	req := dto.RecordMovementRequest{
		ProductID:      suite.productID,
		Quantity:       decimal.NewFromInt(4),
		FromLocationID: &suite.locationA,
	}

	// 10 on hand, 8 reserved: only 2 may leave
	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 8), nil).Once()

	_, err := suite.service.RecordMovement(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientAvailable)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx")
}

func (suite *MovementServiceTestSuite) TestReserve_Success() {
	req := dto.ReserveRequest{
		ProductID:  suite.productID,
		LocationID: suite.locationA,
		Quantity:   decimal.NewFromInt(3),
		Reference:  "SO-12",
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 5), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			record := args.Get(2).(domain.StockRecord)
			suite.True(record.Reserved.Equal(decimal.NewFromInt(8)))
			suite.True(record.OnHand.Equal(decimal.NewFromInt(10)))
		}).Return(nil).Once()
	suite.mockStockRepo.On("SaveReservationInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Reservation")).Return(nil).Once()

	reservation, err := suite.service.Reserve(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reservation)
	suite.False(reservation.Released)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestReserve_ExceedsNetAvailable() {
	req := dto.ReserveRequest{
		ProductID:  suite.productID,
		LocationID: suite.locationA,
		Quantity:   decimal.NewFromInt(6),
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 5), nil).Once()

	_, err := suite.service.Reserve(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientAvailable)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveReservationInTx")
}

func (suite *MovementServiceTestSuite) TestRelease_Success() {
	reservation := &domain.Reservation{
		ReservationID: "res-1",
		TenantID:      suite.tenantID,
		ProductID:     suite.productID,
		LocationID:    suite.locationA,
		Quantity:      decimal.NewFromInt(3),
		Released:      false,
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindReservationForUpdate", suite.ctx, mock.Anything, reservation.ReservationID).
		Return(reservation, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 5), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			record := args.Get(2).(domain.StockRecord)
			suite.True(record.Reserved.Equal(decimal.NewFromInt(2)))
		}).Return(nil).Once()
	suite.mockStockRepo.On("MarkReservationReleasedInTx", suite.ctx, mock.Anything, reservation.ReservationID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	released, err := suite.service.Release(suite.ctx, suite.tenantID, reservation.ReservationID, suite.userID)

	suite.Require().NoError(err)
	suite.True(released.Released)
	suite.NotNil(released.ReleasedAt)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestRelease_AlreadyReleased() {
	reservation := &domain.Reservation{
		ReservationID: "res-1",
		TenantID:      suite.tenantID,
		ProductID:     suite.productID,
		LocationID:    suite.locationA,
		Quantity:      decimal.NewFromInt(3),
		Released:      true,
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindReservationForUpdate", suite.ctx, mock.Anything, reservation.ReservationID).
		Return(reservation, nil).Once()

	_, err := suite.service.Release(suite.ctx, suite.tenantID, reservation.ReservationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyReleased)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "MarkReservationReleasedInTx")
}

func (suite *MovementServiceTestSuite) TestRelease_WrongTenant() {
	reservation := &domain.Reservation{
		ReservationID: "res-1",
		TenantID:      "other-tenant",
		ProductID:     suite.productID,
		LocationID:    suite.locationA,
		Quantity:      decimal.NewFromInt(3),
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindReservationForUpdate", suite.ctx, mock.Anything, reservation.ReservationID).
		Return(reservation, nil).Once()

	_, err := suite.service.Release(suite.ctx, suite.tenantID, reservation.ReservationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *MovementServiceTestSuite) TestRelease_CacheBelowReservation() {
	reservation := &domain.Reservation{
		ReservationID: "res-1",
		TenantID:      suite.tenantID,
		ProductID:     suite.productID,
		LocationID:    suite.locationA,
		Quantity:      decimal.NewFromInt(7),
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindReservationForUpdate", suite.ctx, mock.Anything, reservation.ReservationID).
		Return(reservation, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 5), nil).Once()

	_, err := suite.service.Release(suite.ctx, suite.tenantID, reservation.ReservationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockInTx")
}

func (suite *MovementServiceTestSuite) TestCountAdjust_ShortageWritesOutbound() {
	req := dto.CountAdjustRequest{
		ProductID:       suite.productID,
		LocationID:      suite.locationA,
		CountedQuantity: decimal.NewFromInt(7),
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 2), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			record := args.Get(2).(domain.StockRecord)
			suite.True(record.OnHand.Equal(decimal.NewFromInt(7)))
		}).Return(nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Movement")).
		Run(func(args mock.Arguments) {
			movement := args.Get(2).(domain.Movement)
			suite.True(movement.Quantity.Equal(decimal.NewFromInt(3)))
			suite.Require().NotNil(movement.FromLocationID)
			suite.Equal(suite.locationA, *movement.FromLocationID)
			suite.Nil(movement.ToLocationID)
			suite.Equal("COUNT", movement.Reference)
		}).Return(nil).Once()

	movement, err := suite.service.CountAdjust(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MovementServiceTestSuite) TestCountAdjust_SurplusWritesInbound() {
	req := dto.CountAdjustRequest{
		ProductID:       suite.productID,
		LocationID:      suite.locationA,
		CountedQuantity: decimal.NewFromInt(12),
		Reference:       "CYCLE-2026-09",
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 2), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.Movement")).
		Run(func(args mock.Arguments) {
			movement := args.Get(2).(domain.Movement)
			suite.True(movement.Quantity.Equal(decimal.NewFromInt(2)))
			suite.Require().NotNil(movement.ToLocationID)
			suite.Nil(movement.FromLocationID)
			suite.Equal("CYCLE-2026-09", movement.Reference)
		}).Return(nil).Once()

	movement, err := suite.service.CountAdjust(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(movement)
}

func (suite *MovementServiceTestSuite) TestCountAdjust_MatchingCountWritesNothing() {
	req := dto.CountAdjustRequest{
		ProductID:       suite.productID,
		LocationID:      suite.locationA,
		CountedQuantity: decimal.NewFromInt(10),
	}

	suite.expectTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 2), nil).Once()

	movement, err := suite.service.CountAdjust(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(movement)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx")
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockInTx")
}

func (suite *MovementServiceTestSuite) TestCountAdjust_BelowReserved() {
	req := dto.CountAdjustRequest{
		ProductID:       suite.productID,
		LocationID:      suite.locationA,
		CountedQuantity: decimal.NewFromInt(1),
	}

	suite.expectRolledBackTx()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationA).
		Return(suite.stockAt(suite.locationA, 10, 2), nil).Once()

	_, err := suite.service.CountAdjust(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrReservationConflict)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx")
}

func (suite *MovementServiceTestSuite) TestCountAdjust_NegativeCount() {
	req := dto.CountAdjustRequest{
		ProductID:       suite.productID,
		LocationID:      suite.locationA,
		CountedQuantity: decimal.NewFromInt(-1),
	}

	_, err := suite.service.CountAdjust(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin")
}

func TestMovementService(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}
