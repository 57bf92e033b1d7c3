package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/core/services"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
)

type StockServiceTestSuite struct {
	suite.Suite
	mockStockRepo *MockStockRepository
	service       portssvc.StockSvcFacade
	ctx           context.Context

	tenantID   string
	userID     string
	productID  string
	locationID string
}

func (suite *StockServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.service = services.NewStockService(suite.mockStockRepo)
	suite.ctx = context.Background()

	suite.tenantID = "tenant-1"
	suite.userID = "user-1"
	suite.productID = "prod-1"
	suite.locationID = "loc-a"
}

func (suite *StockServiceTestSuite) detail(onHand, reserved int64) domain.StockDetail {
	return domain.StockDetail{
		StockRecord: domain.StockRecord{
			TenantID:   suite.tenantID,
			ProductID:  suite.productID,
			LocationID: suite.locationID,
			OnHand:     decimal.NewFromInt(onHand),
			Reserved:   decimal.NewFromInt(reserved),
		},
		ProductSKU:   "SKU-1",
		ProductName:  "Widget",
		WarehouseID:  "wh-1",
		LocationName: "A-01",
	}
}

func (suite *StockServiceTestSuite) TestGetStock_Success() {
	filter := portsrepo.StockFilter{}
	records := []domain.StockDetail{suite.detail(10, 4)}

	suite.mockStockRepo.On("ListStock", suite.ctx, suite.tenantID, filter).Return(records, nil).Once()

	result, err := suite.service.GetStock(suite.ctx, suite.tenantID, filter)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.True(result[0].NetAvailable().Equal(decimal.NewFromInt(6)))
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestGetStock_ReservedAboveOnHand() {
	filter := portsrepo.StockFilter{}
	records := []domain.StockDetail{suite.detail(3, 5)}

	suite.mockStockRepo.On("ListStock", suite.ctx, suite.tenantID, filter).Return(records, nil).Once()

	_, err := suite.service.GetStock(suite.ctx, suite.tenantID, filter)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
}

func (suite *StockServiceTestSuite) TestListMovements_DefaultsLimit() {
	movements := []domain.Movement{{
		MovementID: "mov-1",
		TenantID:   suite.tenantID,
		ProductID:  suite.productID,
		Quantity:   decimal.NewFromInt(5),
	}}

	suite.mockStockRepo.On("ListMovements", suite.ctx, suite.tenantID, (*string)(nil), 20, (*string)(nil)).
		Return(movements, nil, nil).Once()

	resp, err := suite.service.ListMovements(suite.ctx, suite.tenantID, dto.ListMovementsParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Movements, 1)
	suite.Nil(resp.NextToken)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestReplayStock_InSync() {
	record := &domain.StockRecord{
		TenantID:   suite.tenantID,
		ProductID:  suite.productID,
		LocationID: suite.locationID,
		OnHand:     decimal.NewFromInt(10),
	}

	suite.mockStockRepo.On("FindStockRecord", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(record, nil).Once()
	suite.mockStockRepo.On("SumMovements", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(decimal.NewFromInt(10), nil).Once()

	resp, err := suite.service.ReplayStock(suite.ctx, suite.tenantID, suite.productID, suite.locationID, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.InSync)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *StockServiceTestSuite) TestReplayStock_DriftReported() {
	record := &domain.StockRecord{
		TenantID:   suite.tenantID,
		ProductID:  suite.productID,
		LocationID: suite.locationID,
		OnHand:     decimal.NewFromInt(10),
	}

	suite.mockStockRepo.On("FindStockRecord", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(record, nil).Once()
	suite.mockStockRepo.On("SumMovements", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(decimal.NewFromInt(8), nil).Once()

	resp, err := suite.service.ReplayStock(suite.ctx, suite.tenantID, suite.productID, suite.locationID, false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIntegrity)
	suite.Require().NotNil(resp)
	suite.False(resp.InSync)
	suite.True(resp.Replayed.Equal(decimal.NewFromInt(8)))
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockInTx")
}

func (suite *StockServiceTestSuite) TestReplayStock_RepairWritesLockedSum() {
	record := &domain.StockRecord{
		TenantID:   suite.tenantID,
		ProductID:  suite.productID,
		LocationID: suite.locationID,
		OnHand:     decimal.NewFromInt(10),
		Reserved:   decimal.NewFromInt(2),
	}

	suite.mockStockRepo.On("FindStockRecord", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(record, nil).Once()
	suite.mockStockRepo.On("SumMovements", suite.ctx, suite.tenantID, suite.productID, suite.locationID).
		Return(decimal.NewFromInt(8), nil).Once()

	// A movement lands between the unlocked read and the row lock. The repair
	// must persist the sum recomputed under the lock, not the stale 8.
	suite.mockStockRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationID).
		Return(record, nil).Once()
	suite.mockStockRepo.On("SumMovementsInTx", suite.ctx, mock.Anything, suite.tenantID, suite.productID, suite.locationID).
		Return(decimal.NewFromInt(7), nil).Once()
	suite.mockStockRepo.On("UpdateStockInTx", suite.ctx, mock.Anything, mock.AnythingOfType("domain.StockRecord"), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			repaired := args.Get(2).(domain.StockRecord)
			suite.True(repaired.OnHand.Equal(decimal.NewFromInt(7)))
			// Reserved is untouched by the replay
			suite.True(repaired.Reserved.Equal(decimal.NewFromInt(2)))
		}).Return(nil).Once()
	suite.mockStockRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)

	resp, err := suite.service.ReplayStock(suite.ctx, suite.tenantID, suite.productID, suite.locationID, true, suite.userID)

	suite.Require().NoError(err)
	suite.False(resp.InSync)
	suite.True(resp.Replayed.Equal(decimal.NewFromInt(7)))
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func TestStockService(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}
