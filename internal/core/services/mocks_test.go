package services_test

import (
	"context"
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByContact(ctx context.Context, tenantID string, contactID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) ResetAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, balance, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountIntegrityHold(ctx context.Context, accountID string, hold bool, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, hold, userID, now)
	return args.Error(0)
}

// --- Mock PostingRepository ---

type MockPostingRepository struct {
	mock.Mock
}

var _ portsrepo.PostingRepositoryWithTx = (*MockPostingRepository)(nil)

func (m *MockPostingRepository) SavePostingGroup(ctx context.Context, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, group, transactions, balanceChanges)
	return args.Error(0)
}

func (m *MockPostingRepository) SavePostingGroupInTx(ctx context.Context, tx pgx.Tx, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, group, transactions, balanceChanges)
	return args.Error(0)
}

func (m *MockPostingRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.PostingGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingGroup), args.Error(1)
}

func (m *MockPostingRepository) ListGroupsByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.PostingGroup, *string, error) {
	args := m.Called(ctx, tenantID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.PostingGroup), returnedNextToken, args.Error(2)
}

func (m *MockPostingRepository) UpdateGroupStatusAndLinks(ctx context.Context, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, groupID, status, reversingGroupID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockPostingRepository) UpdateGroupStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, groupID, status, reversingGroupID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockPostingRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockPostingRepository) FindTransactionsByGroupID(ctx context.Context, groupID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockPostingRepository) ListTransactionsByAccountID(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, tenantID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockPostingRepository) SumAccountTransactions(ctx context.Context, tenantID, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPostingRepository) SumAccountTransactionsInTx(ctx context.Context, tx pgx.Tx, tenantID, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, tenantID, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPostingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPostingRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPostingRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ContactRepository ---

type MockContactRepository struct {
	mock.Mock
}

var _ portsrepo.ContactRepositoryFacade = (*MockContactRepository)(nil)

func (m *MockContactRepository) FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) ListContacts(ctx context.Context, tenantID string, contactType *domain.ContactType) ([]domain.Contact, error) {
	args := m.Called(ctx, tenantID, contactType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactRepository) SaveContact(ctx context.Context, contact domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

// --- Mock CatalogRepository ---

type MockCatalogRepository struct {
	mock.Mock
}

var _ portsrepo.CatalogRepositoryFacade = (*MockCatalogRepository)(nil)

func (m *MockCatalogRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) FindLocationByID(ctx context.Context, locationID string) (*domain.Location, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockCatalogRepository) ListLocations(ctx context.Context, tenantID string, warehouseID *string) ([]domain.Location, error) {
	args := m.Called(ctx, tenantID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockCatalogRepository) SaveLocation(ctx context.Context, location domain.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

// --- Mock CheckRepository ---

type MockCheckRepository struct {
	mock.Mock
}

var _ portsrepo.CheckRepositoryWithTx = (*MockCheckRepository)(nil)

func (m *MockCheckRepository) FindCheckByID(ctx context.Context, checkID string) (*domain.Check, error) {
	args := m.Called(ctx, checkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Check), args.Error(1)
}

func (m *MockCheckRepository) ListChecks(ctx context.Context, tenantID string, status *domain.CheckStatus, checkType *domain.CheckType) ([]domain.Check, error) {
	args := m.Called(ctx, tenantID, status, checkType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Check), args.Error(1)
}

func (m *MockCheckRepository) SaveCheck(ctx context.Context, check domain.Check) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

func (m *MockCheckRepository) TransitionCheckStatusInTx(ctx context.Context, tx pgx.Tx, checkID string, from, to domain.CheckStatus, settlementGroupID *string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, checkID, from, to, settlementGroupID, userID, now)
	return args.Error(0)
}

func (m *MockCheckRepository) TransitionCheckStatus(ctx context.Context, checkID string, from, to domain.CheckStatus, userID string, now time.Time) error {
	args := m.Called(ctx, checkID, from, to, userID, now)
	return args.Error(0)
}

func (m *MockCheckRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockCheckRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCheckRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock StockRepository ---

type MockStockRepository struct {
	mock.Mock
}

var _ portsrepo.StockRepositoryWithTx = (*MockStockRepository)(nil)

func (m *MockStockRepository) FindStockRecord(ctx context.Context, tenantID, productID, locationID string) (*domain.StockRecord, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) ListStock(ctx context.Context, tenantID string, filter portsrepo.StockFilter) ([]domain.StockDetail, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockDetail), args.Error(1)
}

func (m *MockStockRepository) SumMovements(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, productID, locationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRepository) SumMovementsInTx(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, tenantID, productID, locationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRepository) FindStockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (*domain.StockRecord, error) {
	args := m.Called(ctx, tx, tenantID, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) UpdateStockInTx(ctx context.Context, tx pgx.Tx, record domain.StockRecord, userID string, now time.Time) error {
	args := m.Called(ctx, tx, record, userID, now)
	return args.Error(0)
}

func (m *MockStockRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.Movement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

func (m *MockStockRepository) SaveReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error {
	args := m.Called(ctx, tx, reservation)
	return args.Error(0)
}

func (m *MockStockRepository) FindReservationForUpdate(ctx context.Context, tx pgx.Tx, reservationID string) (*domain.Reservation, error) {
	args := m.Called(ctx, tx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockStockRepository) MarkReservationReleasedInTx(ctx context.Context, tx pgx.Tx, reservationID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, reservationID, userID, now)
	return args.Error(0)
}

func (m *MockStockRepository) ListMovements(ctx context.Context, tenantID string, productID *string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, tenantID, productID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Movement), returnedNextToken, args.Error(2)
}

func (m *MockStockRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStockRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStockRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountService (as consumed by other services) ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccountsByContact(ctx context.Context, tenantID string, contactID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}

// --- Mock LedgerService (as consumed by the check service) ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Post(ctx context.Context, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error) {
	args := m.Called(ctx, tenantID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingGroup), args.Error(1)
}

func (m *MockLedgerService) PostInTx(ctx context.Context, tx pgx.Tx, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error) {
	args := m.Called(ctx, tx, tenantID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingGroup), args.Error(1)
}

func (m *MockLedgerService) Reverse(ctx context.Context, tenantID string, transactionID string, userID string) (*domain.PostingGroup, error) {
	args := m.Called(ctx, tenantID, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingGroup), args.Error(1)
}

func (m *MockLedgerService) GetGroupByID(ctx context.Context, tenantID string, groupID string) (*domain.PostingGroup, error) {
	args := m.Called(ctx, tenantID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingGroup), args.Error(1)
}

func (m *MockLedgerService) ListGroups(ctx context.Context, tenantID string, params dto.ListGroupsParams) (*dto.ListGroupsResponse, error) {
	args := m.Called(ctx, tenantID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListGroupsResponse), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, tenantID string, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) ListTransactionsByAccount(ctx context.Context, tenantID string, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, tenantID, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) ReplayBalance(ctx context.Context, tenantID string, accountID string, repair bool, userID string) (*dto.ReplayResponse, error) {
	args := m.Called(ctx, tenantID, accountID, repair, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReplayResponse), args.Error(1)
}
