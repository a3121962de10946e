package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entity represents one counterparty address-book row.
type Entity struct {
	EntityID string `db:"entity_id"`
	Code     string `db:"code"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
	AuditFields
}

// Relation represents one subledger membership row for an entity.
type Relation struct {
	RelationID string `db:"relation_id"`
	EntityID   string `db:"entity_id"`
	Kind       string `db:"kind"`
	Terms      int    `db:"terms"`
	AuditFields
}

// Invoice represents one subledger invoice row. Unpaid is denormalised and
// recomputed from the backing transaction and allocations.
type Invoice struct {
	InvoiceID     string          `db:"invoice_id"`
	RelationID    string          `db:"relation_id"`
	TransactionID string          `db:"transaction_id"`
	InvoiceNumber string          `db:"invoice_number"`
	GSTTotal      decimal.Decimal `db:"gst_total"`
	DueDate       time.Time       `db:"due_date"`
	OrderNumber   string          `db:"order_number"`
	Reference     string          `db:"reference"`
	Unpaid        decimal.Decimal `db:"unpaid"`
	AuditFields
}

// Payment represents one creditor payment row.
type Payment struct {
	PaymentID     string  `db:"payment_id"`
	RelationID    string  `db:"relation_id"`
	TransactionID *string `db:"transaction_id"`
	BankLineID    *string `db:"bank_line_id"`
	Note          string  `db:"note"`
	AuditFields
}

// Allocation represents one payment-to-invoice application row.
type Allocation struct {
	AllocationID string          `db:"allocation_id"`
	PaymentID    string          `db:"payment_id"`
	InvoiceID    string          `db:"invoice_id"`
	Value        decimal.Decimal `db:"value"`
	AuditFields
}
