package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckType distinguishes received from given instruments.
type CheckType string

// CheckStatus is the lifecycle state column.
type CheckStatus string

// Check mirrors the checks table.
type Check struct {
	CheckID               string          `json:"checkID"`
	TenantID              string          `json:"tenantID"`
	CheckType             CheckType       `json:"checkType"`
	CounterpartyAccountID string          `json:"counterpartyAccountID"`
	DueDate               time.Time       `json:"dueDate"`
	BankName              string          `json:"bankName"`
	SerialNumber          string          `json:"serialNumber"`
	Amount                decimal.Decimal `json:"amount"`
	CurrencyCode          string          `json:"currencyCode"`
	Status                CheckStatus     `json:"status"`
	SettlementGroupID     *string         `json:"settlementGroupID"`
	AuditFields
}
