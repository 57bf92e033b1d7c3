package dto

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating an account.
type CreateAccountRequest struct {
	Code         string             `json:"code" binding:"required"`
	Name         string             `json:"name" binding:"required"`
	AccountType  domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode string             `json:"currencyCode" binding:"required,currency"`
	ContactID    *string            `json:"contactID"`
	EmployeeID   *string            `json:"employeeID"`
	Description  string             `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	CurrencyCode  string             `json:"currencyCode"`
	ContactID     *string            `json:"contactID,omitempty"`
	EmployeeID    *string            `json:"employeeID,omitempty"`
	Description   string             `json:"description,omitempty"`
	IsActive      bool               `json:"isActive"`
	Balance       decimal.Decimal    `json:"balance"`
	IntegrityHold bool               `json:"integrityHold"`
}

// ListAccountsResponse wraps an ordered account listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	AsOfDate  *string         `json:"asOfDate,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		Code:          a.Code,
		Name:          a.Name,
		AccountType:   a.AccountType,
		CurrencyCode:  a.CurrencyCode,
		ContactID:     a.ContactID,
		EmployeeID:    a.EmployeeID,
		Description:   a.Description,
		IsActive:      a.IsActive,
		Balance:       a.Balance,
		IntegrityHold: a.IntegrityHold,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
