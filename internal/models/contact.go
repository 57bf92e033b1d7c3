package models

// ContactType classifies a counterparty row.
type ContactType string

// Contact mirrors the contacts table.
type Contact struct {
	ContactID   string      `json:"contactID"`
	TenantID    string      `json:"tenantID"`
	ContactType ContactType `json:"contactType"`
	Name        string      `json:"name"`
	TaxNumber   string      `json:"taxNumber"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}
