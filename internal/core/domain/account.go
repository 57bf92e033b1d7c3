package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account within the chart of accounts.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a ledger account within a tenant's chart of accounts.
// Balance is a cached projection of the transaction log, refreshed on every
// posting; the log remains the ground truth.
type Account struct {
	AccountID     string          `json:"accountID"` // Primary Key (UUID)
	TenantID      string          `json:"tenantID"`  // Partition key (Not Null)
	Code          string          `json:"code"`      // Chart-of-accounts code, unique per tenant
	Name          string          `json:"name"`      // User-defined name
	AccountType   AccountType     `json:"accountType"`
	CurrencyCode  string          `json:"currencyCode"` // ISO code; immutable once the account has transactions
	ContactID     *string         `json:"contactID"`    // Set when the account represents a counterparty
	EmployeeID    *string         `json:"employeeID"`   // Set when the account represents personnel
	Description   string          `json:"description"`
	IsActive      bool            `json:"isActive"`
	Balance       decimal.Decimal `json:"balance"`       // Cached; equals sum(debits) - sum(credits)
	IntegrityHold bool            `json:"integrityHold"` // Set when replay found drift; blocks postings until repaired
	AuditFields
}
