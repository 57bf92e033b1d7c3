package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingStatus indicates the state of a posting group row.
type PostingStatus string

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

// PostingGroup mirrors the posting_groups table.
type PostingGroup struct {
	GroupID          string          `json:"groupID"`
	TenantID         string          `json:"tenantID"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	CurrencyCode     string          `json:"currencyCode"`
	DocumentType     string          `json:"documentType"`
	DocumentID       *string         `json:"documentID"`
	Status           PostingStatus   `json:"status"`
	OriginalGroupID  *string         `json:"originalGroupID"`
	ReversingGroupID *string         `json:"reversingGroupID"`
	Amount           decimal.Decimal `json:"amount"`
	AuditFields
}

// Transaction mirrors the transactions table. Rows are append-only.
type Transaction struct {
	TransactionID  string          `json:"transactionID"`
	GroupID        string          `json:"groupID"`
	TenantID       string          `json:"tenantID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Type           TransactionType `json:"type"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields

	// Joined group columns on statement reads.
	GroupDate        time.Time `json:"groupDate,omitempty"`
	GroupDescription string    `json:"groupDescription,omitempty"`
}
