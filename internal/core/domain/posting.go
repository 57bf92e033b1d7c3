package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the reversing type for a transaction line.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// PostingStatus indicates the state of a posting group.
type PostingStatus string

const (
	Posted   PostingStatus = "POSTED"
	Reversed PostingStatus = "REVERSED"
)

// DocumentType tags the business provenance of a posting group.
type DocumentType string

const (
	DocumentSale     DocumentType = "SALE"
	DocumentPurchase DocumentType = "PURCHASE"
	DocumentCheck    DocumentType = "CHECK"
	DocumentPayroll  DocumentType = "PAYROLL"
	DocumentManual   DocumentType = "MANUAL"
)

// PostingGroup is a set of transactions committed together whose debits must
// equal their credits. Groups are immutable once posted; corrections are new
// reversing groups linked through OriginalGroupID/ReversingGroupID.
type PostingGroup struct {
	GroupID          string          `json:"groupID"`  // Primary Key (UUID)
	TenantID         string          `json:"tenantID"` // Partition key (Not Null)
	Date             time.Time       `json:"date"`     // Date the event occurred
	Description      string          `json:"description"`
	CurrencyCode     string          `json:"currencyCode"` // Single currency per group
	DocumentType     DocumentType    `json:"documentType"` // Provenance tag
	DocumentID       *string         `json:"documentID"`   // Originating business document, if any
	Status           PostingStatus   `json:"status"`
	OriginalGroupID  *string         `json:"originalGroupID"`  // Set on a reversing group
	ReversingGroupID *string         `json:"reversingGroupID"` // Set on a reversed group
	Amount           decimal.Decimal `json:"amount"`           // Sum of the debit side
	AuditFields
	Transactions []Transaction `json:"transactions,omitempty"`
}

// Transaction is a single immutable line within a posting group, affecting one
// account. Amount is always positive; Type determines the sign of its
// contribution to the account balance.
type Transaction struct {
	TransactionID  string          `json:"transactionID"` // Primary Key (UUID)
	GroupID        string          `json:"groupID"`       // FK -> PostingGroup (Not Null)
	TenantID       string          `json:"tenantID"`      // Partition key (Not Null)
	AccountID      string          `json:"accountID"`     // FK -> Account (Not Null)
	Amount         decimal.Decimal `json:"amount"`        // Positive value
	Type           TransactionType `json:"type"`
	Date           time.Time       `json:"date"` // Defaults to the group date
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line
	AuditFields

	// Populated on statement reads joined with the group header.
	GroupDate        time.Time `json:"groupDate,omitempty"`
	GroupDescription string    `json:"groupDescription,omitempty"`
}
