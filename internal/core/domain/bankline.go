package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount couples a ledger bank account with the details needed to
// import and reconcile its statements. The bank format name selects the
// statement preprocessor.
type BankAccount struct {
	BankAccountID string `json:"bankAccountID"` // Primary key (UUID)
	AccountID     string `json:"accountID"`     // The backing bank-role ledger Account
	BankFormat    string `json:"bankFormat"`    // Statement layout name, e.g. "CBA", "NAB"
	Name          string `json:"name"`
	BSB           string `json:"bsb"`
	AccountNumber string `json:"accountNumber"`
	Note          string `json:"note"`
	AuditFields
}

// BankLine is one row of an imported bank statement. It sits outside the
// ledger until reconciled: attaching a TransactionID is the reconciliation.
// Unreconciled lines may be deleted and replaced by a newer import of the
// same day; reconciled lines are protected from deletion.
type BankLine struct {
	BankLineID    string          `json:"bankLineID"` // Primary key (UUID)
	BankAccountID string          `json:"bankAccountID"`
	TransactionID *string         `json:"transactionID,omitempty"` // Set iff reconciled
	Date          time.Time       `json:"date"`
	Value         decimal.Decimal `json:"value"`    // Signed statement value
	LineDump      string          `json:"lineDump"` // Raw statement text, kept verbatim
	Description   string          `json:"description"`
	Additional    string          `json:"additional"` // Bank-supplied noise, e.g. "AUS Card xx7495"
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	Note          string          `json:"note"`
	AuditFields
}

// IsReconciled reports whether a ledger Transaction explains this line.
func (b BankLine) IsReconciled() bool {
	return b.TransactionID != nil
}

// RawStatementRow is one typed row produced by a statement preprocessor,
// before it becomes a persisted BankLine.
type RawStatementRow struct {
	Date        time.Time
	Value       decimal.Decimal
	LineDump    string
	Description string
	Additional  string
	Balance     *decimal.Decimal
}
