package services

import (
	"context"
	"errors"
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

// checkService manages the post-dated instrument lifecycle. Registration is a
// pure tracking write; only settlement produces ledger transactions, and that
// posting goes through the ledger engine like every other one.
type checkService struct {
	checkRepo  portsrepo.CheckRepositoryWithTx
	accountSvc portssvc.AccountSvcFacade
	ledgerSvc  portssvc.LedgerSvcFacade
}

// NewCheckService creates a new CheckService.
func NewCheckService(checkRepo portsrepo.CheckRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.CheckSvcFacade {
	return &checkService{
		checkRepo:  checkRepo,
		accountSvc: accountSvc,
		ledgerSvc:  ledgerSvc,
	}
}

// Ensure checkService implements the portssvc.CheckSvcFacade interface
var _ portssvc.CheckSvcFacade = (*checkService)(nil)

// CreateCheck registers a check in the portfolio. No posting happens here;
// the economic event is the eventual settlement, not the registration.
func (s *checkService) CreateCheck(ctx context.Context, tenantID string, req dto.CreateCheckRequest, creatorUserID string) (*domain.Check, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: check amount must be positive", apperrors.ErrValidation)
	}

	counterparty, err := s.accountSvc.GetAccountByID(ctx, tenantID, req.CounterpartyAccountID)
	if err != nil {
		logger.Warn("Counterparty account lookup failed for check creation", slog.String("account_id", req.CounterpartyAccountID), slog.String("error", err.Error()))
		return nil, err
	}
	if counterparty.CurrencyCode != req.CurrencyCode {
		return nil, fmt.Errorf("%w: counterparty account is %s, check is %s", apperrors.ErrCurrencyMismatch, counterparty.CurrencyCode, req.CurrencyCode)
	}

	now := time.Now().UTC()
	check := domain.Check{
		CheckID:               uuid.NewString(),
		TenantID:              tenantID,
		CheckType:             req.CheckType,
		CounterpartyAccountID: req.CounterpartyAccountID,
		DueDate:               req.DueDate,
		BankName:              req.BankName,
		SerialNumber:          req.SerialNumber,
		Amount:                req.Amount,
		CurrencyCode:          req.CurrencyCode,
		Status:                domain.CheckPortfolio,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.checkRepo.SaveCheck(ctx, check); err != nil {
		logger.Error("Failed to save check", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save check: %w", err)
	}

	logger.Info("Check registered in portfolio", slog.String("check_id", check.CheckID), slog.String("type", string(check.CheckType)))
	return &check, nil
}

// GetCheckByID retrieves a specific check, scoped to the tenant.
func (s *checkService) GetCheckByID(ctx context.Context, tenantID string, checkID string) (*domain.Check, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	check, err := s.checkRepo.FindCheckByID(ctx, checkID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find check by ID", slog.String("error", err.Error()), slog.String("check_id", checkID))
		}
		return nil, err
	}

	if check.TenantID != tenantID {
		logger.Warn("Check found but belongs to different tenant", slog.String("check_id", checkID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return check, nil
}

// ListChecks retrieves checks filtered by status and type.
func (s *checkService) ListChecks(ctx context.Context, tenantID string, params dto.ListChecksParams) ([]domain.Check, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var status *domain.CheckStatus
	if params.Status != nil {
		st := domain.CheckStatus(*params.Status)
		status = &st
	}
	var checkType *domain.CheckType
	if params.Type != nil {
		ct := domain.CheckType(*params.Type)
		checkType = &ct
	}

	checks, err := s.checkRepo.ListChecks(ctx, tenantID, status, checkType)
	if err != nil {
		logger.Error("Failed to list checks", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve checks: %w", err)
	}
	return checks, nil
}

// settlementPostRequest builds the balanced settlement group for a check.
// Collecting a received check moves money into the settlement account and
// relieves the counterparty; paying a given check is the mirror image.
func settlementPostRequest(check *domain.Check, settlementAccountID string, now time.Time) dto.PostRequest {
	var debitAccount, creditAccount string
	if check.CheckType == domain.CheckReceived {
		debitAccount = settlementAccountID
		creditAccount = check.CounterpartyAccountID
	} else {
		debitAccount = check.CounterpartyAccountID
		creditAccount = settlementAccountID
	}

	description := fmt.Sprintf("Check settlement %s (%s)", check.SerialNumber, check.BankName)
	return dto.PostRequest{
		Date:         now,
		Description:  description,
		DocumentType: domain.DocumentCheck,
		DocumentID:   &check.CheckID,
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: debitAccount, Amount: check.Amount, Type: domain.Debit},
			{AccountID: creditAccount, Amount: check.Amount, Type: domain.Credit},
		},
	}
}

// Settle transitions a portfolio check to its settled state and posts the
// settlement group. The status flip and the posting commit in one database
// transaction; a concurrent settlement loses the status compare-and-set and
// the whole transaction rolls back.
func (s *checkService) Settle(ctx context.Context, tenantID string, checkID string, settlementAccountID string, userID string) (*domain.Check, *domain.PostingGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	check, err := s.GetCheckByID(ctx, tenantID, checkID)
	if err != nil {
		return nil, nil, err
	}

	target := check.SettledStatus()
	if !check.CanTransition(target) {
		logger.Warn("Illegal check settlement attempted", slog.String("check_id", checkID), slog.String("status", string(check.Status)))
		return nil, nil, fmt.Errorf("%w: check is %s, cannot move to %s", apperrors.ErrInvalidTransition, check.Status, target)
	}

	settlementAccount, err := s.accountSvc.GetAccountByID(ctx, tenantID, settlementAccountID)
	if err != nil {
		logger.Warn("Settlement account lookup failed", slog.String("account_id", settlementAccountID), slog.String("error", err.Error()))
		return nil, nil, err
	}
	if settlementAccount.CurrencyCode != check.CurrencyCode {
		return nil, nil, fmt.Errorf("%w: settlement account is %s, check is %s", apperrors.ErrCurrencyMismatch, settlementAccount.CurrencyCode, check.CurrencyCode)
	}

	now := time.Now().UTC()
	postReq := settlementPostRequest(check, settlementAccountID, now)

	var group *domain.PostingGroup
	err = runInTx(ctx, s.checkRepo, func(tx pgx.Tx) error {
		posted, postErr := s.ledgerSvc.PostInTx(ctx, tx, tenantID, postReq, userID)
		if postErr != nil {
			logger.Error("Failed to post settlement group", slog.String("error", postErr.Error()), slog.String("check_id", checkID))
			return fmt.Errorf("failed to post settlement: %w", postErr)
		}

		if txErr := s.checkRepo.TransitionCheckStatusInTx(ctx, tx, checkID, domain.CheckPortfolio, target, &posted.GroupID, userID, now); txErr != nil {
			logger.Error("Failed to transition check status", slog.String("error", txErr.Error()), slog.String("check_id", checkID))
			return txErr
		}

		group = posted
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	check.Status = target
	check.SettlementGroupID = &group.GroupID
	check.LastUpdatedAt = now
	check.LastUpdatedBy = userID

	logger.Info("Check settled", slog.String("check_id", checkID), slog.String("status", string(target)), slog.String("group_id", group.GroupID))
	return check, group, nil
}

// MarkBounced transitions a portfolio check to BOUNCED. No posting happens:
// the bounce cancels an expectation, it does not move money.
func (s *checkService) MarkBounced(ctx context.Context, tenantID string, checkID string, userID string) (*domain.Check, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	check, err := s.GetCheckByID(ctx, tenantID, checkID)
	if err != nil {
		return nil, err
	}

	if !check.CanTransition(domain.CheckBounced) {
		logger.Warn("Illegal check bounce attempted", slog.String("check_id", checkID), slog.String("status", string(check.Status)))
		return nil, fmt.Errorf("%w: check is %s, cannot move to %s", apperrors.ErrInvalidTransition, check.Status, domain.CheckBounced)
	}

	now := time.Now().UTC()
	if err := s.checkRepo.TransitionCheckStatus(ctx, checkID, domain.CheckPortfolio, domain.CheckBounced, userID, now); err != nil {
		logger.Error("Failed to mark check bounced", slog.String("error", err.Error()), slog.String("check_id", checkID))
		return nil, err
	}

	check.Status = domain.CheckBounced
	check.LastUpdatedAt = now
	check.LastUpdatedBy = userID

	logger.Info("Check marked bounced", slog.String("check_id", checkID))
	return check, nil
}
