package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one balanced ledger event row.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	Date          time.Time       `db:"date"`
	Value         decimal.Decimal `db:"value"`
	Note          string          `db:"note"`
	Source        string          `db:"source"`
	UserID        string          `db:"user_id"`
	IsBalanced    bool            `db:"is_balanced"`
	AuditFields
}

// Line represents one signed movement row belonging to a transaction.
type Line struct {
	LineID        string          `db:"line_id"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Value         decimal.Decimal `db:"value"`
	Note          string          `db:"note"`
}
