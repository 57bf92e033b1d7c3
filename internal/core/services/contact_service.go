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

// contactService manages counterparties and their derived balances.
type contactService struct {
	contactRepo portsrepo.ContactRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewContactService creates a new ContactService.
func NewContactService(contactRepo portsrepo.ContactRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.ContactSvcFacade {
	return &contactService{
		contactRepo: contactRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure contactService implements the portssvc.ContactSvcFacade interface
var _ portssvc.ContactSvcFacade = (*contactService)(nil)

// CreateContact registers a new counterparty.
func (s *contactService) CreateContact(ctx context.Context, tenantID string, req dto.CreateContactRequest, creatorUserID string) (*domain.Contact, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	contact := domain.Contact{
		ContactID:   uuid.NewString(),
		TenantID:    tenantID,
		ContactType: req.ContactType,
		Name:        req.Name,
		TaxNumber:   req.TaxNumber,
		Phone:       req.Phone,
		Email:       req.Email,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.contactRepo.SaveContact(ctx, contact); err != nil {
		logger.Error("Failed to save contact", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	logger.Info("Contact created successfully", slog.String("contact_id", contact.ContactID), slog.String("type", string(contact.ContactType)))
	return &contact, nil
}

// GetContactByID retrieves a specific contact, scoped to the tenant.
func (s *contactService) GetContactByID(ctx context.Context, tenantID string, contactID string) (*domain.Contact, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	contact, err := s.contactRepo.FindContactByID(ctx, contactID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find contact by ID", slog.String("error", err.Error()), slog.String("contact_id", contactID))
		}
		return nil, err
	}

	if contact.TenantID != tenantID {
		logger.Warn("Contact found but belongs to different tenant", slog.String("contact_id", contactID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return contact, nil
}

// ListContacts retrieves the tenant's contacts, optionally by type.
func (s *contactService) ListContacts(ctx context.Context, tenantID string, contactType *domain.ContactType) ([]domain.Contact, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	contacts, err := s.contactRepo.ListContacts(ctx, tenantID, contactType)
	if err != nil {
		logger.Error("Failed to list contacts", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve contacts: %w", err)
	}
	return contacts, nil
}

// GetContactBalance sums the cached balances of the contact's accounts. The
// figure is always derived on read, never stored. All the contact's accounts
// must share one currency; unit-less cross-currency sums are refused.
func (s *contactService) GetContactBalance(ctx context.Context, tenantID string, contactID string) (*dto.ContactBalanceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.GetContactByID(ctx, tenantID, contactID); err != nil {
		return nil, err
	}

	accounts, err := s.accountSvc.ListAccountsByContact(ctx, tenantID, contactID)
	if err != nil {
		logger.Error("Failed to list accounts for contact balance", slog.String("error", err.Error()), slog.String("contact_id", contactID))
		return nil, err
	}

	balance := decimal.Zero
	var currencyCode string
	for _, acc := range accounts {
		if currencyCode == "" {
			currencyCode = acc.CurrencyCode
		} else if acc.CurrencyCode != currencyCode {
			return nil, fmt.Errorf("%w: contact %s holds accounts in %s and %s", apperrors.ErrCurrencyMismatch, contactID, currencyCode, acc.CurrencyCode)
		}
		balance = balance.Add(acc.Balance)
	}

	return &dto.ContactBalanceResponse{
		ContactID:    contactID,
		CurrencyCode: currencyCode,
		Balance:      balance,
	}, nil
}
