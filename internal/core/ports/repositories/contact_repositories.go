package repositories

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
)

// ContactReader defines read operations for contact data.
type ContactReader interface {
	// FindContactByID retrieves a specific contact by its identifier.
	FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error)

	// ListContacts retrieves active contacts of a tenant, optionally filtered
	// by type.
	ListContacts(ctx context.Context, tenantID string, contactType *domain.ContactType) ([]domain.Contact, error)
}

// ContactWriter defines write operations for contact data.
type ContactWriter interface {
	// SaveContact persists a new contact.
	SaveContact(ctx context.Context, contact domain.Contact) error
}

// ContactRepositoryFacade combines all contact-related repository interfaces.
type ContactRepositoryFacade interface {
	ContactReader
	ContactWriter
}
