package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount represents one statement-importable bank account row.
type BankAccount struct {
	BankAccountID string `db:"bank_account_id"`
	AccountID     string `db:"account_id"`
	BankFormat    string `db:"bank_format"`
	Name          string `db:"name"`
	BSB           string `db:"bsb"`
	AccountNumber string `db:"account_number"`
	Note          string `db:"note"`
	AuditFields
}

// BankLine represents one imported statement row. TransactionID is null
// until the line is reconciled.
type BankLine struct {
	BankLineID    string           `db:"bank_line_id"`
	BankAccountID string           `db:"bank_account_id"`
	TransactionID *string          `db:"transaction_id"`
	Date          time.Time        `db:"date"`
	Value         decimal.Decimal  `db:"value"`
	LineDump      string           `db:"line_dump"`
	Description   string           `db:"description"`
	Additional    string           `db:"additional"`
	Balance       *decimal.Decimal `db:"balance"`
	Note          string           `db:"note"`
	AuditFields
}
