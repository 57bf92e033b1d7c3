package dto

import (
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCheckRequest defines the payload for registering a check in the
// portfolio.
type CreateCheckRequest struct {
	CheckType             domain.CheckType `json:"checkType" binding:"required,oneof=RECEIVED GIVEN"`
	CounterpartyAccountID string           `json:"counterpartyAccountID" binding:"required"`
	DueDate               time.Time        `json:"dueDate" binding:"required"`
	BankName              string           `json:"bankName" binding:"required"`
	SerialNumber          string           `json:"serialNumber" binding:"required"`
	Amount                decimal.Decimal  `json:"amount" binding:"required"`
	CurrencyCode          string           `json:"currencyCode" binding:"required,currency"`
}

// SettleCheckRequest names the bank/cash account the settlement moves money
// through.
type SettleCheckRequest struct {
	SettlementAccountID string `json:"settlementAccountID" binding:"required"`
}

// CheckResponse defines the data returned for a check.
type CheckResponse struct {
	CheckID               string          `json:"checkID"`
	CheckType             string          `json:"checkType"`
	CounterpartyAccountID string          `json:"counterpartyAccountID"`
	DueDate               time.Time       `json:"dueDate"`
	BankName              string          `json:"bankName"`
	SerialNumber          string          `json:"serialNumber"`
	Amount                decimal.Decimal `json:"amount"`
	CurrencyCode          string          `json:"currencyCode"`
	Status                string          `json:"status"`
	SettlementGroupID     *string         `json:"settlementGroupID,omitempty"`
}

// SettleCheckResponse carries the settled check and the posting group its
// settlement produced.
type SettleCheckResponse struct {
	Check        CheckResponse        `json:"check"`
	PostingGroup PostingGroupResponse `json:"postingGroup"`
}

// ListChecksParams holds filter parameters for listing checks.
type ListChecksParams struct {
	Status *string `form:"status"`
	Type   *string `form:"type"`
}

// ListChecksResponse wraps a check listing.
type ListChecksResponse struct {
	Checks []CheckResponse `json:"checks"`
}

// ToCheckResponse converts a domain.Check to its DTO.
func ToCheckResponse(c *domain.Check) CheckResponse {
	return CheckResponse{
		CheckID:               c.CheckID,
		CheckType:             string(c.CheckType),
		CounterpartyAccountID: c.CounterpartyAccountID,
		DueDate:               c.DueDate,
		BankName:              c.BankName,
		SerialNumber:          c.SerialNumber,
		Amount:                c.Amount,
		CurrencyCode:          c.CurrencyCode,
		Status:                string(c.Status),
		SettlementGroupID:     c.SettlementGroupID,
	}
}

// ToCheckResponses converts a slice of domain checks.
func ToCheckResponses(checks []domain.Check) []CheckResponse {
	responses := make([]CheckResponse, len(checks))
	for i := range checks {
		responses[i] = ToCheckResponse(&checks[i])
	}
	return responses
}
