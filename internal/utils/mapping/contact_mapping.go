package mapping

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/models"
)

// ToModelContact converts a domain contact for DB storage.
func ToModelContact(d domain.Contact) models.Contact {
	return models.Contact{
		ContactID:   d.ContactID,
		TenantID:    d.TenantID,
		ContactType: models.ContactType(d.ContactType),
		Name:        d.Name,
		TaxNumber:   d.TaxNumber,
		Phone:       d.Phone,
		Email:       d.Email,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainContact converts a contact row to its domain representation.
func ToDomainContact(m models.Contact) domain.Contact {
	return domain.Contact{
		ContactID:   m.ContactID,
		TenantID:    m.TenantID,
		ContactType: domain.ContactType(m.ContactType),
		Name:        m.Name,
		TaxNumber:   m.TaxNumber,
		Phone:       m.Phone,
		Email:       m.Email,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainContactSlice converts a slice of contact rows.
func ToDomainContactSlice(ms []models.Contact) []domain.Contact {
	ds := make([]domain.Contact, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainContact(m)
	}
	return ds
}
