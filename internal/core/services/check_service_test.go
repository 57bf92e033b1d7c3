package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

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

type CheckServiceTestSuite struct {
	suite.Suite
	mockCheckRepo  *MockCheckRepository
	mockAccountSvc *MockAccountService
	mockLedgerSvc  *MockLedgerService
	service        portssvc.CheckSvcFacade
	ctx            context.Context

	tenantID string
	userID   string

	counterpartyAccount domain.Account
	bankAccount         domain.Account
	portfolioCheck      domain.Check
}

func (suite *CheckServiceTestSuite) SetupTest() {
	suite.mockCheckRepo = new(MockCheckRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewCheckService(suite.mockCheckRepo, suite.mockAccountSvc, suite.mockLedgerSvc)
	suite.ctx = context.Background()

	suite.tenantID = "tenant-1"
	suite.userID = "user-1"

	suite.counterpartyAccount = domain.Account{
		AccountID:    "acc-customer",
		TenantID:     suite.tenantID,
		Code:         "120",
		Name:         "Acme Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.bankAccount = domain.Account{
		AccountID:    "acc-bank",
		TenantID:     suite.tenantID,
		Code:         "102",
		Name:         "Main Bank",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.portfolioCheck = domain.Check{
		CheckID:               "check-1",
		TenantID:              suite.tenantID,
		CheckType:             domain.CheckReceived,
		CounterpartyAccountID: suite.counterpartyAccount.AccountID,
		DueDate:               time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		BankName:              "First National",
		SerialNumber:          "SN-0042",
		Amount:                decimal.NewFromInt(500),
		CurrencyCode:          "USD",
		Status:                domain.CheckPortfolio,
	}
}

func (suite *CheckServiceTestSuite) TestCreateCheck_Success() {
	req := dto.CreateCheckRequest{
		CheckType:             domain.CheckReceived,
		CounterpartyAccountID: suite.counterpartyAccount.AccountID,
		DueDate:               time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		BankName:              "First National",
		SerialNumber:          "SN-0042",
		Amount:                decimal.NewFromInt(500),
		CurrencyCode:          "USD",
	}

	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, req.CounterpartyAccountID).
		Return(&suite.counterpartyAccount, nil).Once()
	suite.mockCheckRepo.On("SaveCheck", suite.ctx, mock.AnythingOfType("domain.Check")).
		Run(func(args mock.Arguments) {
			check := args.Get(1).(domain.Check)
			suite.Equal(domain.CheckPortfolio, check.Status)
			suite.Nil(check.SettlementGroupID)
		}).Return(nil).Once()

	check, err := suite.service.CreateCheck(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(check)
	suite.NotEmpty(check.CheckID)
	suite.Equal(domain.CheckPortfolio, check.Status)
	suite.mockCheckRepo.AssertExpectations(suite.T())
	// Registration must never touch the ledger
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "Post")
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostInTx")
}

func (suite *CheckServiceTestSuite) TestCreateCheck_NonPositiveAmount() {
	req := dto.CreateCheckRequest{
		CheckType:             domain.CheckReceived,
		CounterpartyAccountID: suite.counterpartyAccount.AccountID,
		Amount:                decimal.Zero,
		CurrencyCode:          "USD",
	}

	_, err := suite.service.CreateCheck(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "SaveCheck")
}

func (suite *CheckServiceTestSuite) TestCreateCheck_CurrencyMismatch() {
	req := dto.CreateCheckRequest{
		CheckType:             domain.CheckReceived,
		CounterpartyAccountID: suite.counterpartyAccount.AccountID,
		Amount:                decimal.NewFromInt(500),
		CurrencyCode:          "EUR",
	}

	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, req.CounterpartyAccountID).
		Return(&suite.counterpartyAccount, nil).Once()

	_, err := suite.service.CreateCheck(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "SaveCheck")
}

func (suite *CheckServiceTestSuite) TestGetCheckByID_WrongTenant() {
	foreign := suite.portfolioCheck
	foreign.TenantID = "other-tenant"

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, foreign.CheckID).Return(&foreign, nil).Once()

	_, err := suite.service.GetCheckByID(suite.ctx, suite.tenantID, foreign.CheckID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CheckServiceTestSuite) TestSettle_ReceivedCheckCollected() {
	check := suite.portfolioCheck
	settledGroup := &domain.PostingGroup{
		GroupID:      "group-settle",
		TenantID:     suite.tenantID,
		Status:       domain.Posted,
		CurrencyCode: "USD",
		Amount:       check.Amount,
	}

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockCheckRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockLedgerSvc.On("PostInTx", suite.ctx, mock.Anything, suite.tenantID, mock.AnythingOfType("dto.PostRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			req := args.Get(3).(dto.PostRequest)
			suite.Equal(domain.DocumentCheck, req.DocumentType)
			suite.Require().NotNil(req.DocumentID)
			suite.Equal(check.CheckID, *req.DocumentID)
			suite.Require().Len(req.Transactions, 2)
			// Collection debits the bank and credits the counterparty
			suite.Equal(suite.bankAccount.AccountID, req.Transactions[0].AccountID)
			suite.Equal(domain.Debit, req.Transactions[0].Type)
			suite.Equal(suite.counterpartyAccount.AccountID, req.Transactions[1].AccountID)
			suite.Equal(domain.Credit, req.Transactions[1].Type)
		}).Return(settledGroup, nil).Once()
	suite.mockCheckRepo.On("TransitionCheckStatusInTx", suite.ctx, mock.Anything, check.CheckID, domain.CheckPortfolio, domain.CheckCollected, &settledGroup.GroupID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockCheckRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockCheckRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)

	settled, group, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, suite.bankAccount.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CheckCollected, settled.Status)
	suite.Require().NotNil(settled.SettlementGroupID)
	suite.Equal(group.GroupID, *settled.SettlementGroupID)
	suite.mockCheckRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *CheckServiceTestSuite) TestSettle_GivenCheckPaid() {
	check := suite.portfolioCheck
	check.CheckType = domain.CheckGiven
	settledGroup := &domain.PostingGroup{GroupID: "group-settle", TenantID: suite.tenantID, Status: domain.Posted}

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockCheckRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockLedgerSvc.On("PostInTx", suite.ctx, mock.Anything, suite.tenantID, mock.AnythingOfType("dto.PostRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			req := args.Get(3).(dto.PostRequest)
			// Paying debits the counterparty and credits the bank
			suite.Equal(suite.counterpartyAccount.AccountID, req.Transactions[0].AccountID)
			suite.Equal(domain.Debit, req.Transactions[0].Type)
			suite.Equal(suite.bankAccount.AccountID, req.Transactions[1].AccountID)
			suite.Equal(domain.Credit, req.Transactions[1].Type)
		}).Return(settledGroup, nil).Once()
	suite.mockCheckRepo.On("TransitionCheckStatusInTx", suite.ctx, mock.Anything, check.CheckID, domain.CheckPortfolio, domain.CheckPaid, &settledGroup.GroupID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockCheckRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()
	suite.mockCheckRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)

	settled, _, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, suite.bankAccount.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CheckPaid, settled.Status)
}

func (suite *CheckServiceTestSuite) TestSettle_AlreadySettled() {
	check := suite.portfolioCheck
	check.Status = domain.CheckCollected

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()

	_, _, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, suite.bankAccount.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostInTx")
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *CheckServiceTestSuite) TestSettle_CurrencyMismatchWithSettlementAccount() {
	check := suite.portfolioCheck
	eurBank := suite.bankAccount
	eurBank.CurrencyCode = "EUR"

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, eurBank.AccountID).
		Return(&eurBank, nil).Once()

	_, _, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, eurBank.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *CheckServiceTestSuite) TestSettle_RetriesOnSerializationFailure() {
	check := suite.portfolioCheck
	settledGroup := &domain.PostingGroup{
		GroupID:      "group-settle",
		TenantID:     suite.tenantID,
		Status:       domain.Posted,
		CurrencyCode: "USD",
		Amount:       check.Amount,
	}
	contention := fmt.Errorf("failed to save posting group: %w", &pgconn.PgError{Code: "40001"})

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockCheckRepo.On("Begin", suite.ctx).Return(nil, nil).Twice()
	suite.mockCheckRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)
	suite.mockLedgerSvc.On("PostInTx", suite.ctx, mock.Anything, suite.tenantID, mock.AnythingOfType("dto.PostRequest"), suite.userID).
		Return(nil, contention).Once()
	suite.mockLedgerSvc.On("PostInTx", suite.ctx, mock.Anything, suite.tenantID, mock.AnythingOfType("dto.PostRequest"), suite.userID).
		Return(settledGroup, nil).Once()
	suite.mockCheckRepo.On("TransitionCheckStatusInTx", suite.ctx, mock.Anything, check.CheckID, domain.CheckPortfolio, domain.CheckCollected, &settledGroup.GroupID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockCheckRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	settled, group, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, suite.bankAccount.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CheckCollected, settled.Status)
	suite.Equal(settledGroup.GroupID, group.GroupID)
	suite.mockCheckRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *CheckServiceTestSuite) TestSettle_LostStatusRace() {
	check := suite.portfolioCheck
	settledGroup := &domain.PostingGroup{GroupID: "group-settle", TenantID: suite.tenantID}

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockAccountSvc.On("GetAccountByID", suite.ctx, suite.tenantID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockCheckRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.mockLedgerSvc.On("PostInTx", suite.ctx, mock.Anything, suite.tenantID, mock.Anything, suite.userID).
		Return(settledGroup, nil).Once()
	// A concurrent settlement already moved the check out of the portfolio
	suite.mockCheckRepo.On("TransitionCheckStatusInTx", suite.ctx, mock.Anything, check.CheckID, domain.CheckPortfolio, domain.CheckCollected, &settledGroup.GroupID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()
	suite.mockCheckRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil)

	_, _, err := suite.service.Settle(suite.ctx, suite.tenantID, check.CheckID, suite.bankAccount.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "Commit")
}

func (suite *CheckServiceTestSuite) TestMarkBounced_Success() {
	check := suite.portfolioCheck

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()
	suite.mockCheckRepo.On("TransitionCheckStatus", suite.ctx, check.CheckID, domain.CheckPortfolio, domain.CheckBounced, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	bounced, err := suite.service.MarkBounced(suite.ctx, suite.tenantID, check.CheckID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CheckBounced, bounced.Status)
	suite.mockCheckRepo.AssertExpectations(suite.T())
	// Bouncing never posts to the ledger
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "Post")
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostInTx")
}

func (suite *CheckServiceTestSuite) TestMarkBounced_TerminalCheck() {
	check := suite.portfolioCheck
	check.Status = domain.CheckPaid
	check.CheckType = domain.CheckGiven

	suite.mockCheckRepo.On("FindCheckByID", suite.ctx, check.CheckID).Return(&check, nil).Once()

	_, err := suite.service.MarkBounced(suite.ctx, suite.tenantID, check.CheckID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockCheckRepo.AssertNotCalled(suite.T(), "TransitionCheckStatus")
}

func TestCheckService(t *testing.T) {
	suite.Run(t, new(CheckServiceTestSuite))
}
