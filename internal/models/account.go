package models

import "github.com/shopspring/decimal"

// AccountType classifies an account within the chart of accounts.
type AccountType string

// Account mirrors the accounts table.
type Account struct {
	AccountID     string          `json:"accountID"`
	TenantID      string          `json:"tenantID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	CurrencyCode  string          `json:"currencyCode"`
	ContactID     *string         `json:"contactID"`
	EmployeeID    *string         `json:"employeeID"`
	Description   string          `json:"description"`
	IsActive      bool            `json:"isActive"`
	Balance       decimal.Decimal `json:"balance"`
	IntegrityHold bool            `json:"integrityHold"`
	AuditFields
}
