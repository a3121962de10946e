package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a subledger entry wrapping a ledger Transaction with the
// details an invoice legally carries. Invoices are created once alongside
// their Transaction and never deleted; Unpaid is the only mutable field.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"` // Primary key (UUID)
	RelationID    string          `json:"relationID"`
	TransactionID string          `json:"transactionID"`
	InvoiceNumber string          `json:"invoiceNumber"` // Unique per relation
	GSTTotal      decimal.Decimal `json:"gstTotal"`
	DueDate       time.Time       `json:"dueDate"`
	OrderNumber   string          `json:"orderNumber"`
	Reference     string          `json:"reference"`
	Unpaid        decimal.Decimal `json:"unpaid"` // Outstanding balance, recomputed never trusted
	AuditFields

	// TransactionDate and TransactionValue are denormalised on reads that
	// join the backing transaction; allocation ordering depends on them.
	TransactionDate  time.Time       `json:"transactionDate,omitempty"`
	TransactionValue decimal.Decimal `json:"transactionValue,omitempty"`
}

// IsSettled reports whether the invoice is fully paid down.
func (i Invoice) IsSettled() bool {
	return i.Unpaid.IsZero()
}

// Payment is money in or out against a relation. It is not itself a ledger
// Transaction: the ledger entry is optional until explicitly created, and
// the payment may instead be anchored to a bank statement line.
type Payment struct {
	PaymentID     string  `json:"paymentID"` // Primary key (UUID)
	RelationID    string  `json:"relationID"`
	TransactionID *string `json:"transactionID,omitempty"` // Optional ledger entry
	BankLineID    *string `json:"bankLineID,omitempty"`    // Optional statement anchor
	Note          string  `json:"note"`
	AuditFields
}

// Allocation applies part of a payment against part of an invoice.
type Allocation struct {
	AllocationID string          `json:"allocationID"` // Primary key (UUID)
	PaymentID    string          `json:"paymentID"`
	InvoiceID    string          `json:"invoiceID"`
	Value        decimal.Decimal `json:"value"`
	AuditFields
}

// SumAllocations totals the allocation values.
func SumAllocations(allocs []Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocs {
		sum = sum.Add(a.Value)
	}
	return sum
}
