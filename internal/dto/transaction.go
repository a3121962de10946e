package dto

import (
	"time"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionLineInput is one (account, value, note) triple of a general
// transaction. Account may be a structured code like "01-0101" or an
// account ID.
type TransactionLineInput struct {
	Account string          `json:"account" binding:"required,accountref"`
	Value   decimal.Decimal `json:"value" binding:"required"`
	Note    string          `json:"note" binding:"max=2048"`
}

// SimpleLines is the simplified DR-first 3-tuple form: expanded internally
// to exactly two lines of +value and -value.
type SimpleLines struct {
	DebitAccount  string          `json:"debitAccount" binding:"required,accountref"`
	CreditAccount string          `json:"creditAccount" binding:"required,accountref"`
	Value         decimal.Decimal `json:"value" binding:"required"`
}

// CreateTransactionRequest defines the payload for recording a ledger event.
// Exactly one of Lines or Simple must be supplied.
type CreateTransactionRequest struct {
	Date   time.Time              `json:"date" binding:"required"`
	Note   string                 `json:"note" binding:"max=2048"`
	Source string                 `json:"source" binding:"max=1024"`
	Lines  []TransactionLineInput `json:"lines,omitempty"`
	Simple *SimpleLines           `json:"simple,omitempty"`
}

// LineResponse defines the data returned for a ledger line. AccountCode is
// filled when the caller resolved the line's account.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode,omitempty"`
	Value       decimal.Decimal `json:"value"`
	Note        string          `json:"note,omitempty"`
}

// TransactionResponse defines the data returned for a transaction with its lines.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Date          time.Time       `json:"date"`
	Value         decimal.Decimal `json:"value"`
	Note          string          `json:"note,omitempty"`
	Source        string          `json:"source,omitempty"`
	IsBalanced    bool            `json:"isBalanced"`
	Lines         []LineResponse  `json:"lines,omitempty"`
}

// ToLineResponse converts a domain.Line to LineResponse.
func ToLineResponse(l domain.Line) LineResponse {
	return LineResponse{
		LineID:    l.LineID,
		AccountID: l.AccountID,
		Value:     l.Value,
		Note:      l.Note,
	}
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: t.TransactionID,
		Date:          t.Date,
		Value:         t.Value,
		Note:          t.Note,
		Source:        t.Source,
		IsBalanced:    t.IsBalanced,
	}
	if len(t.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(t.Lines))
		for i, l := range t.Lines {
			resp.Lines[i] = ToLineResponse(l)
		}
	}
	return resp
}

// ToTransactionResponseWithAccounts converts a transaction, stamping each
// line with its account's structured code from the supplied lookup.
func ToTransactionResponseWithAccounts(t *domain.Transaction, accounts map[string]domain.Account) TransactionResponse {
	resp := ToTransactionResponse(t)
	for i := range resp.Lines {
		if account, ok := accounts[resp.Lines[i].AccountID]; ok {
			resp.Lines[i].AccountCode = account.Code()
		}
	}
	return resp
}
