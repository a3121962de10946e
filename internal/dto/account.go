package dto

import (
	"github.com/elena/open-accounting/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a chart-of-accounts entry.
type CreateAccountRequest struct {
	Element     string `json:"element" binding:"required,oneof=01 03 05 10 15"`
	Number      string `json:"number" binding:"required,len=4,numeric"`
	Name        string `json:"name" binding:"required,max=64"`
	Description string `json:"description" binding:"max=2048"`
	ParentID    *string `json:"parentID,omitempty"`
	SpecialRole string `json:"specialRole" binding:"omitempty,oneof=bank accounts_payable accounts_receivable owner suspense"`
}

// UpdateAccountRequest defines the payload for editing an account's display
// details. Absent fields keep their stored values; the code parts cannot change.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=64"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2048"`
	SpecialRole *string `json:"specialRole,omitempty" binding:"omitempty,oneof=bank accounts_payable accounts_receivable owner suspense"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string `json:"accountID"`
	Code        string `json:"code"`
	Element     string `json:"element"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SpecialRole string `json:"specialRole,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Code:        a.Code(),
		Element:     string(a.Element),
		Number:      a.Number,
		Name:        a.Name,
		Description: a.Description,
		SpecialRole: string(a.SpecialRole),
		IsActive:    a.IsActive,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
