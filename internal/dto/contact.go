package dto

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateContactRequest defines the payload for creating a contact.
type CreateContactRequest struct {
	ContactType domain.ContactType `json:"contactType" binding:"required,oneof=CUSTOMER SUPPLIER SUBCONTRACTOR PERSONNEL"`
	Name        string             `json:"name" binding:"required"`
	TaxNumber   string             `json:"taxNumber"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email" binding:"omitempty,email"`
}

// ContactResponse defines the data returned for a contact.
type ContactResponse struct {
	ContactID   string             `json:"contactID"`
	ContactType domain.ContactType `json:"contactType"`
	Name        string             `json:"name"`
	TaxNumber   string             `json:"taxNumber,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Email       string             `json:"email,omitempty"`
	IsActive    bool               `json:"isActive"`
}

// ContactBalanceResponse defines the aggregated receivable/payable figure for
// a contact.
type ContactBalanceResponse struct {
	ContactID    string          `json:"contactID"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// ListContactsResponse wraps a contact listing.
type ListContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}

// ToContactResponse converts a domain.Contact to its DTO.
func ToContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ContactID:   c.ContactID,
		ContactType: c.ContactType,
		Name:        c.Name,
		TaxNumber:   c.TaxNumber,
		Phone:       c.Phone,
		Email:       c.Email,
		IsActive:    c.IsActive,
	}
}

// ToContactResponses converts a slice of domain contacts.
func ToContactResponses(contacts []domain.Contact) []ContactResponse {
	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
	}
	return responses
}
