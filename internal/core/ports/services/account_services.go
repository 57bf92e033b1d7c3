package services

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/dto"
)

// AccountReaderSvc defines read operations for the account registry.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account, scoped to the tenant.
	GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts, all verified to belong to
	// the tenant.
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the tenant's chart of accounts ordered by code.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// ListAccountsByContact retrieves the accounts owned by a contact.
	ListAccountsByContact(ctx context.Context, tenantID string, contactID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the account registry.
type AccountWriterSvc interface {
	// CreateAccount registers a new account in the chart of accounts.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive; inactive accounts reject
	// new postings.
	DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account registry operations.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
