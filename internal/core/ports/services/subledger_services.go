package services

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/shopspring/decimal"
)

// InvoiceSvcFacade owns Invoice entities and their outstanding balances.
// Only this service writes the unpaid field.
type InvoiceSvcFacade interface {
	// CreateInvoice enters an invoice and its backing ledger transaction.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// RecomputeOutstanding re-derives unpaid from the transaction value and
	// the allocations against the invoice, persists and returns it.
	RecomputeOutstanding(ctx context.Context, invoiceID string) (decimal.Decimal, error)

	// IsSettled reports whether the invoice is fully paid down.
	IsSettled(ctx context.Context, invoiceID string) (bool, error)

	// ListOpenInvoices retrieves a relation's invoices with unpaid > 0,
	// oldest transaction date first.
	ListOpenInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error)

	// ListInvoices retrieves every invoice of a relation.
	ListInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error)

	// GetInvoice retrieves a single invoice with its backing transaction
	// date and value.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}

// AllocationSvcFacade allocates payment value across open invoices.
type AllocationSvcFacade interface {
	// Allocate idempotently distributes a payment's value across the
	// relation's open invoices, oldest first. totalValue may be nil when
	// the payment is anchored to a reconciled bank line.
	Allocate(ctx context.Context, paymentID string, totalValue *decimal.Decimal, userID string) ([]domain.Allocation, error)

	// ListInvoiceAllocations retrieves every allocation held against an invoice.
	ListInvoiceAllocations(ctx context.Context, invoiceID string) ([]domain.Allocation, error)
}

// RelationSvcFacade manages counterparty entities and their subledger relations.
type RelationSvcFacade interface {
	CreateEntity(ctx context.Context, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error)
	CreateCreditor(ctx context.Context, req dto.CreateCreditorRequest, creatorUserID string) (*domain.Relation, error)
	GetCreditor(ctx context.Context, relationID string) (*domain.Relation, error)
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, creatorUserID string) (*domain.Payment, error)
}
