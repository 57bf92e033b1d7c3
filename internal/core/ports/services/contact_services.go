package services

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/dto"
)

// ContactSvcFacade defines counterparty operations, including the read-only
// balance view aggregating the contact's account balances.
type ContactSvcFacade interface {
	// CreateContact registers a new counterparty.
	CreateContact(ctx context.Context, tenantID string, req dto.CreateContactRequest, creatorUserID string) (*domain.Contact, error)

	// GetContactByID retrieves a specific contact, scoped to the tenant.
	GetContactByID(ctx context.Context, tenantID string, contactID string) (*domain.Contact, error)

	// ListContacts retrieves the tenant's contacts, optionally by type.
	ListContacts(ctx context.Context, tenantID string, contactType *domain.ContactType) ([]domain.Contact, error)

	// GetContactBalance sums the cached balances of the contact's accounts.
	// All accounts must share one currency; aggregation across currencies
	// fails with a currency-mismatch error.
	GetContactBalance(ctx context.Context, tenantID string, contactID string) (*dto.ContactBalanceResponse, error)
}
