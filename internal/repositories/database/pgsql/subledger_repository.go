package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	"github.com/elena/open-accounting/internal/models"
	"github.com/elena/open-accounting/internal/utils/mapping"
)

type PgxSubledgerRepository struct {
	BaseRepository
}

// newPgxSubledgerRepository creates a new repository for invoices,
// payments and allocations.
func newPgxSubledgerRepository(pool *pgxpool.Pool) portsrepo.SubledgerRepositoryFacade {
	return &PgxSubledgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SubledgerRepositoryFacade = (*PgxSubledgerRepository)(nil)

// invoiceColumns joins the backing transaction so reads carry the
// denormalised date and value the allocation ordering depends on.
const invoiceColumns = `i.invoice_id, i.relation_id, i.transaction_id, i.invoice_number, i.gst_total, i.due_date, i.order_number, i.reference, i.unpaid, i.created_at, i.created_by, i.last_updated_at, i.last_updated_by, t.date, t.value`

const invoiceFrom = ` FROM invoices i JOIN transactions t ON t.transaction_id = i.transaction_id`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var m models.Invoice
	var inv domain.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.RelationID,
		&m.TransactionID,
		&m.InvoiceNumber,
		&m.GSTTotal,
		&m.DueDate,
		&m.OrderNumber,
		&m.Reference,
		&m.Unpaid,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&inv.TransactionDate,
		&inv.TransactionValue,
	)
	if err != nil {
		return nil, err
	}
	mapped := mapping.ToDomainInvoice(m)
	mapped.TransactionDate = inv.TransactionDate
	mapped.TransactionValue = inv.TransactionValue
	return &mapped, nil
}

// SaveInvoice persists a new invoice.
func (r *PgxSubledgerRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)

	query := `
		INSERT INTO invoices (invoice_id, relation_id, transaction_id, invoice_number, gst_total, due_date, order_number, reference, unpaid, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.InvoiceID,
		m.RelationID,
		m.TransactionID,
		m.InvoiceNumber,
		m.GSTTotal,
		m.DueDate,
		m.OrderNumber,
		m.Reference,
		m.Unpaid,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s already exists for relation %s", apperrors.ErrDuplicate, m.InvoiceNumber, m.RelationID)
		}
		return fmt.Errorf("failed to save invoice %s: %w", m.InvoiceID, err)
	}
	return nil
}

// FindInvoiceByID retrieves an invoice by ID.
func (r *PgxSubledgerRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + invoiceFrom + ` WHERE i.invoice_id = $1;`

	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice by ID %s: %w", invoiceID, err)
	}
	return inv, nil
}

// FindInvoiceByNumber retrieves an invoice by relation and invoice number.
func (r *PgxSubledgerRepository) FindInvoiceByNumber(ctx context.Context, relationID string, invoiceNumber string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + invoiceFrom + ` WHERE i.relation_id = $1 AND i.invoice_number = $2;`

	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, relationID, invoiceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s for relation %s: %w", invoiceNumber, relationID, err)
	}
	return inv, nil
}

func (r *PgxSubledgerRepository) queryInvoices(ctx context.Context, query string, args ...any) ([]domain.Invoice, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", rows.Err())
	}
	return invoices, nil
}

// ListOpenInvoices retrieves a relation's invoices with unpaid > 0,
// oldest transaction date first.
func (r *PgxSubledgerRepository) ListOpenInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + invoiceFrom + `
		WHERE i.relation_id = $1 AND i.unpaid > 0
		ORDER BY t.date, i.invoice_number;
	`
	return r.queryInvoices(ctx, query, relationID)
}

// ListAllocatableInvoices retrieves the invoices a payment may allocate
// against once its existing allocations are reversed: open invoices plus
// ones only closed by this payment. Oldest transaction date first.
func (r *PgxSubledgerRepository) ListAllocatableInvoices(ctx context.Context, relationID string, paymentID string) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + invoiceFrom + `
		WHERE i.relation_id = $1
		  AND (i.unpaid > 0 OR EXISTS (
			SELECT 1 FROM allocations a
			WHERE a.invoice_id = i.invoice_id AND a.payment_id = $2
		  ))
		ORDER BY t.date, i.invoice_number;
	`
	return r.queryInvoices(ctx, query, relationID, paymentID)
}

// ListInvoicesByRelation retrieves every invoice of a relation, oldest first.
func (r *PgxSubledgerRepository) ListInvoicesByRelation(ctx context.Context, relationID string) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + invoiceFrom + `
		WHERE i.relation_id = $1
		ORDER BY t.date, i.invoice_number;
	`
	return r.queryInvoices(ctx, query, relationID)
}

// recomputeUnpaidSQL re-derives unpaid from the backing transaction value
// and the surviving allocations. The stored value is never trusted.
const recomputeUnpaidSQL = `
	UPDATE invoices i
	SET unpaid = t.value - COALESCE((
		SELECT SUM(a.value) FROM allocations a WHERE a.invoice_id = i.invoice_id
	), 0)
	FROM transactions t
	WHERE t.transaction_id = i.transaction_id AND i.invoice_id = $1
	RETURNING i.unpaid;
`

// RecomputeUnpaid recalculates and persists an invoice's outstanding
// balance, returning the new value.
func (r *PgxSubledgerRepository) RecomputeUnpaid(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	var unpaid decimal.Decimal
	err := r.Pool.QueryRow(ctx, recomputeUnpaidSQL, invoiceID).Scan(&unpaid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to recompute unpaid for invoice %s: %w", invoiceID, err)
	}
	return unpaid, nil
}

// SavePayment persists a new payment.
func (r *PgxSubledgerRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)

	query := `
		INSERT INTO payments (payment_id, relation_id, transaction_id, bank_line_id, note, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID,
		m.RelationID,
		m.TransactionID,
		m.BankLineID,
		m.Note,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment %s: %w", m.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by ID.
func (r *PgxSubledgerRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT payment_id, relation_id, transaction_id, bank_line_id, note, created_at, created_by, last_updated_at, last_updated_by
		FROM payments
		WHERE payment_id = $1;
	`
	var m models.Payment
	err := r.Pool.QueryRow(ctx, query, paymentID).Scan(
		&m.PaymentID,
		&m.RelationID,
		&m.TransactionID,
		&m.BankLineID,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

const allocationColumns = `allocation_id, payment_id, invoice_id, value, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxSubledgerRepository) queryAllocations(ctx context.Context, query string, args ...any) ([]domain.Allocation, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	allocs := []domain.Allocation{}
	for rows.Next() {
		var m models.Allocation
		err := rows.Scan(
			&m.AllocationID,
			&m.PaymentID,
			&m.InvoiceID,
			&m.Value,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		allocs = append(allocs, mapping.ToDomainAllocation(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating allocation rows: %w", rows.Err())
	}
	return allocs, nil
}

// FindAllocationsByPayment retrieves every allocation of a payment.
func (r *PgxSubledgerRepository) FindAllocationsByPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE payment_id = $1 ORDER BY created_at, allocation_id;`
	return r.queryAllocations(ctx, query, paymentID)
}

// FindAllocationsByInvoice retrieves every allocation against an invoice.
func (r *PgxSubledgerRepository) FindAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE invoice_id = $1 ORDER BY created_at, allocation_id;`
	return r.queryAllocations(ctx, query, invoiceID)
}

// ReplaceAllocations deletes a payment's existing allocations, inserts the
// new set, and recomputes unpaid on every touched invoice within one DB
// transaction. An advisory lock keyed on the relation serializes concurrent
// allocations against the same creditor, so two payments cannot jointly
// over-allocate an invoice.
func (r *PgxSubledgerRepository) ReplaceAllocations(ctx context.Context, relationID string, paymentID string, allocations []domain.Allocation, touchedInvoiceIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockKey := fmt.Sprintf("allocations:%s", relationID)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return fmt.Errorf("failed to acquire relation lock for %s: %w", lockKey, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM allocations WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete existing allocations for payment %s: %w", paymentID, err)
	}

	insertAlloc := `
		INSERT INTO allocations (allocation_id, payment_id, invoice_id, value, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, alloc := range allocations {
		m := mapping.ToModelAllocation(alloc)
		batch.Queue(insertAlloc,
			m.AllocationID,
			m.PaymentID,
			m.InvoiceID,
			m.Value,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	for _, invoiceID := range touchedInvoiceIDs {
		batch.Queue(recomputeUnpaidSQL, invoiceID)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to apply allocations for payment %s: %w", paymentID, err)
		}
	}

	return r.Commit(ctx, tx)
}
