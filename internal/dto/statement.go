package dto

import (
	"time"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest defines the payload for registering a bank account.
// Account is the backing ledger account, by structured code or ID.
type CreateBankAccountRequest struct {
	Account       string `json:"account" binding:"required,accountref"`
	BankFormat    string `json:"bankFormat" binding:"required,max=8"`
	Name          string `json:"name" binding:"max=64"`
	BSB           string `json:"bsb" binding:"max=6"`
	AccountNumber string `json:"accountNumber" binding:"max=64"`
	Note          string `json:"note" binding:"max=2048"`
}

// BankAccountResponse defines the data returned for a bank account.
type BankAccountResponse struct {
	BankAccountID string `json:"bankAccountID"`
	AccountID     string `json:"accountID"`
	BankFormat    string `json:"bankFormat"`
	Name          string `json:"name,omitempty"`
	BSB           string `json:"bsb,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// ImportStatementRequest carries one raw statement dump for the upload surface.
type ImportStatementRequest struct {
	RawText string `json:"rawText" binding:"required"`
}

// ReconcileBankLineRequest names the contra account a bank line clears
// against; the linking transaction is built from the line itself. Omitting
// the account parks the line on the suspense account.
type ReconcileBankLineRequest struct {
	Account string `json:"account" binding:"omitempty,accountref"`
	Note    string `json:"note" binding:"max=2048"`
}

// BankLineResponse defines the data returned for an imported statement line.
type BankLineResponse struct {
	BankLineID    string           `json:"bankLineID"`
	BankAccountID string           `json:"bankAccountID"`
	TransactionID *string          `json:"transactionID,omitempty"`
	Date          time.Time        `json:"date"`
	Value         decimal.Decimal  `json:"value"`
	Description   string           `json:"description"`
	Additional    string           `json:"additional,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	IsReconciled  bool             `json:"isReconciled"`
}

// ToBankAccountResponse converts a domain.BankAccount to BankAccountResponse.
func ToBankAccountResponse(b *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		BankAccountID: b.BankAccountID,
		AccountID:     b.AccountID,
		BankFormat:    b.BankFormat,
		Name:          b.Name,
		BSB:           b.BSB,
		AccountNumber: b.AccountNumber,
	}
}

// ToBankAccountResponses converts a slice of bank accounts.
func ToBankAccountResponses(accounts []domain.BankAccount) []BankAccountResponse {
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToBankAccountResponse(&accounts[i])
	}
	return responses
}

// ToBankLineResponse converts a domain.BankLine to BankLineResponse.
func ToBankLineResponse(l *domain.BankLine) BankLineResponse {
	return BankLineResponse{
		BankLineID:    l.BankLineID,
		BankAccountID: l.BankAccountID,
		TransactionID: l.TransactionID,
		Date:          l.Date,
		Value:         l.Value,
		Description:   l.Description,
		Additional:    l.Additional,
		Balance:       l.Balance,
		IsReconciled:  l.IsReconciled(),
	}
}

// ToBankLineResponses converts a slice of bank lines.
func ToBankLineResponses(lines []domain.BankLine) []BankLineResponse {
	responses := make([]BankLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToBankLineResponse(&lines[i])
	}
	return responses
}
