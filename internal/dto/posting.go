package dto

import (
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is a single line of a posting group request.
type CreateTransactionRequest struct {
	AccountID   string                 `json:"accountID" binding:"required"`
	Amount      decimal.Decimal        `json:"amount" binding:"required"`
	Type        domain.TransactionType `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Description string                 `json:"description"`
	Date        *time.Time             `json:"date"` // Defaults to the group date
}

// PostRequest defines the payload for posting a balanced group.
type PostRequest struct {
	Date         time.Time                  `json:"date" binding:"required"`
	Description  string                     `json:"description" binding:"required"`
	DocumentType domain.DocumentType        `json:"documentType" binding:"required"`
	DocumentID   *string                    `json:"documentID"`
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// TransactionResponse defines the data returned for a transaction line.
type TransactionResponse struct {
	TransactionID  string          `json:"transactionID"`
	GroupID        string          `json:"groupID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// PostingGroupResponse defines the data returned for a posting group.
type PostingGroupResponse struct {
	GroupID          string                `json:"groupID"`
	Date             time.Time             `json:"date"`
	Description      string                `json:"description"`
	CurrencyCode     string                `json:"currencyCode"`
	DocumentType     string                `json:"documentType"`
	DocumentID       *string               `json:"documentID,omitempty"`
	Status           string                `json:"status"`
	OriginalGroupID  *string               `json:"originalGroupID,omitempty"`
	ReversingGroupID *string               `json:"reversingGroupID,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
	Transactions     []TransactionResponse `json:"transactions,omitempty"`
}

// ListGroupsParams holds parameters for listing posting groups.
type ListGroupsParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
}

// ListGroupsResponse wraps a paginated group listing.
type ListGroupsResponse struct {
	Groups    []PostingGroupResponse `json:"groups"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ListTransactionsParams holds parameters for an account statement listing.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a paginated statement listing.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ReplayResponse reports the outcome of a balance replay.
type ReplayResponse struct {
	AccountID string          `json:"accountID"`
	Cached    decimal.Decimal `json:"cached"`
	Replayed  decimal.Decimal `json:"replayed"`
	InSync    bool            `json:"inSync"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  txn.TransactionID,
		GroupID:        txn.GroupID,
		AccountID:      txn.AccountID,
		Amount:         txn.Amount,
		Type:           string(txn.Type),
		Date:           txn.Date,
		Description:    txn.Description,
		RunningBalance: txn.RunningBalance,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToPostingGroupResponse converts a domain.PostingGroup to its DTO.
func ToPostingGroupResponse(g *domain.PostingGroup) PostingGroupResponse {
	return PostingGroupResponse{
		GroupID:          g.GroupID,
		Date:             g.Date,
		Description:      g.Description,
		CurrencyCode:     g.CurrencyCode,
		DocumentType:     string(g.DocumentType),
		DocumentID:       g.DocumentID,
		Status:           string(g.Status),
		OriginalGroupID:  g.OriginalGroupID,
		ReversingGroupID: g.ReversingGroupID,
		Amount:           g.Amount,
		CreatedAt:        g.CreatedAt,
		CreatedBy:        g.CreatedBy,
		Transactions:     ToTransactionResponses(g.Transactions),
	}
}
