package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// accountService manages the tenant's chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account in the chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Code uniqueness is per tenant. The unique index is the backstop; this
	// lookup gives callers a clean error instead of a constraint violation.
	existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code uniqueness", slog.String("error", err.Error()), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to verify account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: code %s", apperrors.ErrDuplicateCode, req.Code)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		TenantID:     tenantID,
		Code:         req.Code,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		ContactID:    req.ContactID,
		EmployeeID:   req.EmployeeID,
		Description:  req.Description,
		IsActive:     true,
		Balance:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account, scoped to the tenant.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	if account.TenantID != tenantID {
		logger.Warn("Account found but belongs to different tenant", slog.String("account_id", accountID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts, all verified to belong to the
// tenant.
func (s *accountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts by IDs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for id, acc := range accountsMap {
		if acc.TenantID != tenantID {
			logger.Warn("Account batch fetch crossed tenant boundary", slog.String("account_id", id))
			return nil, apperrors.ErrNotFound // Obscure existence
		}
	}

	return accountsMap, nil
}

// ListAccounts retrieves the tenant's chart of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}
	return accounts, nil
}

// ListAccountsByContact retrieves the accounts owned by a contact.
func (s *accountService) ListAccountsByContact(ctx context.Context, tenantID string, contactID string) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccountsByContact(ctx, tenantID, contactID)
	if err != nil {
		logger.Error("Failed to list accounts by contact", slog.String("error", err.Error()), slog.String("contact_id", contactID))
		return nil, fmt.Errorf("failed to retrieve accounts for contact: %w", err)
	}
	return accounts, nil
}

// DeactivateAccount marks an account inactive. Inactive accounts reject new
// postings but keep their history readable.
func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Tenant scope check before mutating
	if _, err := s.GetAccountByID(ctx, tenantID, accountID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, now); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return err
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
