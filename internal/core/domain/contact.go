package domain

// ContactType classifies a counterparty.
type ContactType string

const (
	Customer      ContactType = "CUSTOMER"
	Supplier      ContactType = "SUPPLIER"
	Subcontractor ContactType = "SUBCONTRACTOR"
	Personnel     ContactType = "PERSONNEL"
)

// Contact represents a counterparty (customer, supplier, subcontractor or
// personnel). Its balance is never stored: it is derived by summing the cached
// balances of the accounts that reference it, one account per currency.
type Contact struct {
	ContactID   string      `json:"contactID"` // Primary Key (UUID)
	TenantID    string      `json:"tenantID"`  // Partition key (Not Null)
	ContactType ContactType `json:"contactType"`
	Name        string      `json:"name"`
	TaxNumber   string      `json:"taxNumber"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}
