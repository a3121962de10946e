package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the master ledger object: one balanced financial event.
// Transactions can not be directly modified and are never deleted. Once in
// the ledger an event exists forever; corrections are new transactions.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary key (UUID)
	Date          time.Time       `json:"date"`
	Value         decimal.Decimal `json:"value"` // DR-side magnitude, always >= 0, 2 dp
	Note          string          `json:"note"`
	Source        string          `json:"source"` // Provenance, e.g. "subledgers/creditors.Invoice"
	UserID        string          `json:"userID"`
	IsBalanced    bool            `json:"isBalanced"` // Derived; the only mutable field
	AuditFields

	// Lines are populated on reads that request them, never trusted as complete otherwise.
	Lines []Line `json:"lines,omitempty"`
}

// Line is a single signed ledger movement against one account. Positive is
// debit, negative is credit. Lines exist only as part of their Transaction:
// created with it, never mutated, never deleted.
type Line struct {
	LineID        string          `json:"lineID"` // Primary key (UUID)
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Value         decimal.Decimal `json:"value"` // Signed: +DR / -CR
	Note          string          `json:"note"`
}

// LineInput is one (account, value, note) triple supplied to the ledger
// engine before accounts are resolved. Account may be a structured code
// or an account ID.
type LineInput struct {
	Account string
	Value   decimal.Decimal
	Note    string
}

// SumLines returns the signed total of the given lines. A balanced
// transaction sums to exactly zero.
func SumLines(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Value)
	}
	return sum
}

// DebitTotal returns the sum of the positive (debit) line values. For a
// balanced transaction this is the economic value of the event.
func DebitTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Value.IsPositive() {
			total = total.Add(l.Value)
		}
	}
	return total
}
