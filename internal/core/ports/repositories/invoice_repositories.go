package repositories

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceReader defines read operations for subledger invoices
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its backing transaction
	// date and value joined in.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceByNumber retrieves an invoice by relation and invoice number.
	FindInvoiceByNumber(ctx context.Context, relationID string, invoiceNumber string) (*domain.Invoice, error)

	// ListOpenInvoices retrieves a relation's invoices with unpaid > 0,
	// ordered oldest transaction date first.
	ListOpenInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error)

	// ListAllocatableInvoices retrieves the invoices a payment may allocate
	// against after its existing allocations are reversed: open invoices
	// plus invoices the payment currently holds allocations on. Ordered
	// oldest transaction date first.
	ListAllocatableInvoices(ctx context.Context, relationID string, paymentID string) ([]domain.Invoice, error)

	// ListInvoicesByRelation retrieves every invoice of a relation, oldest first.
	ListInvoicesByRelation(ctx context.Context, relationID string) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for subledger invoices
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// RecomputeUnpaid recalculates unpaid as the backing transaction value
	// minus the sum of allocations, persists it, and returns the new value.
	RecomputeUnpaid(ctx context.Context, invoiceID string) (decimal.Decimal, error)
}

// PaymentReader defines read operations for payments
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by ID.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)
}

// PaymentWriter defines write operations for payments
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error
}

// AllocationReader defines read operations for payment allocations
type AllocationReader interface {
	// FindAllocationsByPayment retrieves every allocation of a payment.
	FindAllocationsByPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error)

	// FindAllocationsByInvoice retrieves every allocation against an invoice.
	FindAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error)
}

// AllocationWriter defines write operations for payment allocations
type AllocationWriter interface {
	// ReplaceAllocations deletes a payment's existing allocations, inserts
	// the new set, and recomputes unpaid on every touched invoice, all as
	// one atomic unit. A partially reversed or partially applied allocation
	// set must never be observable, and an advisory lock on the relation
	// serializes concurrent allocators against the same creditor.
	ReplaceAllocations(ctx context.Context, relationID string, paymentID string, allocations []domain.Allocation, touchedInvoiceIDs []string) error
}

// SubledgerRepositoryFacade combines invoice, payment and allocation interfaces
type SubledgerRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	PaymentReader
	PaymentWriter
	AllocationReader
	AllocationWriter
}
