package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
	"github.com/elena/open-accounting/pkg/config"
)

var (
	ErrInvoiceNumberTaken = errors.New("invoice number already used for this relation")
	ErrInvoiceLineTotal   = errors.New("invoice lines do not add up to the invoice value")
)

// invoiceService owns Invoice entities. Invoices are created once alongside
// their backing ledger transaction and never deleted; unpaid is the only
// mutable field and only this service writes it.
type invoiceService struct {
	subledgerRepo portsrepo.SubledgerRepositoryFacade
	relationRepo  portsrepo.RelationRepositoryFacade
	ledgerSvc     portssvc.LedgerSvcFacade
	invoiceCfg    domain.EntryConfig
	gstAccount    string
}

// NewInvoiceService creates a new InvoiceService. The subledger posting
// configuration comes in explicitly; there is no process-wide settings state.
func NewInvoiceService(subledgerRepo portsrepo.SubledgerRepositoryFacade, relationRepo portsrepo.RelationRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade, cfg config.Subledgers) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		subledgerRepo: subledgerRepo,
		relationRepo:  relationRepo,
		ledgerSvc:     ledgerSvc,
		invoiceCfg:    cfg.EntryConfig(domain.KindInvoice),
		gstAccount:    cfg.GSTClearingAccount,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// CreateInvoice enters a creditor invoice: one backing ledger transaction
// (expense/contra lines + GST line, cleared through the control account on
// its configured side) and the invoice record wrapping it. The supplied
// lines plus GST must equal the invoice value exactly.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	value := req.Value.Round(2)
	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: invoice value must be positive", apperrors.ErrValidation)
	}
	gst := req.GSTTotal.Round(2)
	if gst.IsNegative() {
		return nil, fmt.Errorf("%w: gst total must not be negative", apperrors.ErrValidation)
	}

	relation, err := s.relationRepo.FindRelationByID(ctx, req.RelationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find relation %s: %w", req.RelationID, err)
	}

	// Invoice numbers are unique per relation.
	existing, err := s.subledgerRepo.FindInvoiceByNumber(ctx, relation.RelationID, req.InvoiceNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check invoice number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNumberTaken, req.InvoiceNumber)
	}

	// Supplied contra lines + GST must equal the invoice value: reject
	// before any persistence.
	lineTotal := decimal.Zero
	for _, in := range req.Lines {
		lineTotal = lineTotal.Add(in.Value.Round(2))
	}
	if !lineTotal.Add(gst).Equal(value) {
		return nil, fmt.Errorf("%w: lines %s + gst %s != value %s", ErrInvoiceLineTotal, lineTotal, gst, value)
	}

	// Build the full line set: contra lines DR, GST DR, control account CR
	// (or flipped, per the configured control side).
	lines := make([]dto.TransactionLineInput, 0, len(req.Lines)+2)
	controlValue := value
	if s.invoiceCfg.ControlSide == domain.ControlCR {
		controlValue = value.Neg()
	}
	sign := decimal.NewFromInt(1)
	if s.invoiceCfg.ControlSide == domain.ControlDR {
		sign = sign.Neg()
	}
	for _, in := range req.Lines {
		lines = append(lines, dto.TransactionLineInput{Account: in.Account, Value: in.Value.Round(2).Mul(sign), Note: in.Note})
	}
	if !gst.IsZero() {
		lines = append(lines, dto.TransactionLineInput{Account: s.gstAccount, Value: gst.Mul(sign), Note: "GST"})
	}
	lines = append(lines, dto.TransactionLineInput{Account: s.invoiceCfg.ControlAccount, Value: controlValue})

	txn, err := s.ledgerSvc.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Date:   req.Date,
		Note:   req.Note,
		Source: s.invoiceCfg.Source,
		Lines:  lines,
	}, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice transaction: %w", err)
	}

	dueDate := req.Date.AddDate(0, 0, relation.Terms)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		InvoiceID:     uuid.NewString(),
		RelationID:    relation.RelationID,
		TransactionID: txn.TransactionID,
		InvoiceNumber: req.InvoiceNumber,
		GSTTotal:      gst,
		DueDate:       dueDate,
		OrderNumber:   req.OrderNumber,
		Reference:     req.Reference,
		Unpaid:        value, // nothing allocated yet
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
		TransactionDate:  req.Date,
		TransactionValue: value,
	}

	if err := s.subledgerRepo.SaveInvoice(ctx, invoice); err != nil {
		logger.Error("Failed to save invoice", slog.String("error", err.Error()), slog.String("transaction_id", txn.TransactionID))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	logger.Info("Invoice entered",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("value", value.String()),
	)
	return &invoice, nil
}

// RecomputeOutstanding re-derives unpaid as transaction value minus the sum
// of allocations against the invoice, persists and returns it. The stored
// unpaid value is a cache; this is the source of truth.
func (s *invoiceService) RecomputeOutstanding(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	unpaid, err := s.subledgerRepo.RecomputeUnpaid(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recompute outstanding balance for %s: %w", invoiceID, err)
	}
	return unpaid, nil
}

// IsSettled reports whether an invoice has been fully paid down.
func (s *invoiceService) IsSettled(ctx context.Context, invoiceID string) (bool, error) {
	unpaid, err := s.RecomputeOutstanding(ctx, invoiceID)
	if err != nil {
		return false, err
	}
	return unpaid.IsZero(), nil
}

// ListOpenInvoices retrieves a relation's invoices with unpaid > 0, oldest
// transaction date first: the order payments allocate in.
func (s *invoiceService) ListOpenInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error) {
	invoices, err := s.subledgerRepo.ListOpenInvoices(ctx, relationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice retrieves a single invoice with its backing transaction date
// and value joined in.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.subledgerRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoices retrieves every invoice of a relation.
func (s *invoiceService) ListInvoices(ctx context.Context, relationID string) ([]domain.Invoice, error) {
	invoices, err := s.subledgerRepo.ListInvoicesByRelation(ctx, relationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}
