package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/middleware"
)

var (
	ErrNoAllocatableValue = errors.New("payment has no reconciled bank line; an explicit value is required")
	ErrNegativeAllocation = errors.New("allocation value must not be negative")
)

// allocationService distributes a payment's value across its relation's
// open invoices, oldest first. Re-running an allocation first reverses the
// previous one, so repeated calls with the same inputs land on the same
// final state instead of drifting toward over-allocation.
type allocationService struct {
	subledgerRepo portsrepo.SubledgerRepositoryFacade
	bankRepo      portsrepo.BankRepositoryFacade
	ledgerSvc     portssvc.LedgerSvcFacade
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(subledgerRepo portsrepo.SubledgerRepositoryFacade, bankRepo portsrepo.BankRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.AllocationSvcFacade {
	return &allocationService{
		subledgerRepo: subledgerRepo,
		bankRepo:      bankRepo,
		ledgerSvc:     ledgerSvc,
	}
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// resolveTotal determines the value available for allocation: the explicit
// value when given, otherwise the ledger value of the transaction behind
// the payment's reconciled bank line.
func (s *allocationService) resolveTotal(ctx context.Context, payment *domain.Payment, totalValue *decimal.Decimal) (decimal.Decimal, error) {
	if totalValue != nil {
		return totalValue.Round(2), nil
	}
	if payment.BankLineID == nil {
		return decimal.Zero, ErrNoAllocatableValue
	}
	line, err := s.bankRepo.FindBankLineByID(ctx, *payment.BankLineID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find bank line %s: %w", *payment.BankLineID, err)
	}
	if line.TransactionID == nil {
		return decimal.Zero, ErrNoAllocatableValue
	}
	txn, err := s.ledgerSvc.GetTransactionWithLines(ctx, *line.TransactionID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load bank line transaction: %w", err)
	}
	return txn.Value, nil
}

// Allocate walks the relation's open invoices oldest transaction date
// first, paying each one down until the value runs out. Any existing
// allocations of the payment are reversed first (restart), and the
// reversal plus the new set is applied as one atomic unit, each touched
// invoice's unpaid recomputed inside it.
//
// A relation with no open invoices is not an error: the result is simply
// empty, and the full value stays unallocated.
func (s *allocationService) Allocate(ctx context.Context, paymentID string, totalValue *decimal.Decimal, userID string) ([]domain.Allocation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.subledgerRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	total, err := s.resolveTotal(ctx, payment, totalValue)
	if err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAllocation, total)
	}

	// Restart bookkeeping: the invoices the payment currently holds
	// allocations on must be recomputed even if the new run skips them.
	existingAllocs, err := s.subledgerRepo.FindAllocationsByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing allocations: %w", err)
	}
	touched := make(map[string]struct{}, len(existingAllocs))
	previouslyAllocated := make(map[string]decimal.Decimal, len(existingAllocs))
	for _, a := range existingAllocs {
		touched[a.InvoiceID] = struct{}{}
		previouslyAllocated[a.InvoiceID] = previouslyAllocated[a.InvoiceID].Add(a.Value)
	}

	// Candidate invoices: open ones plus those only closed by this
	// payment's soon-to-be-reversed allocations, oldest first.
	invoices, err := s.subledgerRepo.ListAllocatableInvoices(ctx, payment.RelationID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}

	now := time.Now().UTC()
	remaining := total
	newAllocs := make([]domain.Allocation, 0, len(invoices))
	for _, invoice := range invoices {
		if !remaining.IsPositive() {
			break
		}
		// Effective outstanding balance once this payment's old
		// allocations are reversed.
		unpaid := invoice.Unpaid.Add(previouslyAllocated[invoice.InvoiceID])
		if !unpaid.IsPositive() {
			continue
		}

		value := unpaid
		if remaining.LessThan(unpaid) {
			value = remaining
		}
		newAllocs = append(newAllocs, domain.Allocation{
			AllocationID: uuid.NewString(),
			PaymentID:    paymentID,
			InvoiceID:    invoice.InvoiceID,
			Value:        value,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
		touched[invoice.InvoiceID] = struct{}{}
		remaining = remaining.Sub(value)
	}

	touchedIDs := make([]string, 0, len(touched))
	for id := range touched {
		touchedIDs = append(touchedIDs, id)
	}

	if err := s.subledgerRepo.ReplaceAllocations(ctx, payment.RelationID, paymentID, newAllocs, touchedIDs); err != nil {
		logger.Error("Failed to replace allocations", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to apply allocations for payment %s: %w", paymentID, err)
	}

	logger.Info("Payment allocated",
		slog.String("payment_id", paymentID),
		slog.String("total", total.String()),
		slog.String("unallocated", remaining.String()),
		slog.Int("allocation_count", len(newAllocs)),
	)
	return newAllocs, nil
}

// ListInvoiceAllocations retrieves every allocation held against an invoice.
func (s *allocationService) ListInvoiceAllocations(ctx context.Context, invoiceID string) ([]domain.Allocation, error) {
	allocs, err := s.subledgerRepo.FindAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for invoice %s: %w", invoiceID, err)
	}
	return allocs, nil
}
