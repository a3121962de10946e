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
)

var (
	ErrUnbalanced                   = errors.New("lines do not sum to zero")
	ErrInsufficientLines            = errors.New("transaction must have at least two lines")
	ErrUnknownAccount               = errors.New("account not found")
	ErrDuplicateAccountInSimpleForm = errors.New("debit and credit account must differ in simple form")
	ErrZeroValueInSimpleForm        = errors.New("simple form value must be non-zero")
	ErrAmbiguousLineForm            = errors.New("exactly one of lines or simple form must be supplied")
)

// ledgerService is the only component permitted to create ledger lines.
// Transactions are append-only: once saved, nothing here or anywhere else
// updates or deletes them, except the is_balanced recomputation.
type ledgerService struct {
	accountSvc      portssvc.AccountResolver
	transactionRepo portsrepo.TransactionRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(transactionRepo portsrepo.TransactionRepositoryFacade, accountSvc portssvc.AccountResolver) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountSvc:      accountSvc,
		transactionRepo: transactionRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// expandSimpleForm turns the DR-first 3-tuple into exactly two line inputs
// of +value and -value. Transactions may be posted upside-down if the
// caller swaps the accounts; that is the caller's responsibility.
func expandSimpleForm(simple dto.SimpleLines) ([]dto.TransactionLineInput, error) {
	if simple.Value.IsZero() {
		return nil, ErrZeroValueInSimpleForm
	}
	if simple.DebitAccount == simple.CreditAccount {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAccountInSimpleForm, simple.DebitAccount)
	}
	return []dto.TransactionLineInput{
		{Account: simple.DebitAccount, Value: simple.Value},
		{Account: simple.CreditAccount, Value: simple.Value.Neg()},
	}, nil
}

// CreateTransaction validates one financial event and persists it with all
// of its lines as a single atomic unit. No partially-created transaction is
// ever observable to other readers.
func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lineInputs := req.Lines
	if req.Simple != nil {
		if len(req.Lines) > 0 {
			return nil, ErrAmbiguousLineForm
		}
		expanded, err := expandSimpleForm(*req.Simple)
		if err != nil {
			return nil, err
		}
		lineInputs = expanded
	}

	if len(lineInputs) < 2 {
		return nil, ErrInsufficientLines
	}

	// Exact decimal zero-sum check before any account lookups or persistence.
	sum := decimal.Zero
	for _, in := range lineInputs {
		sum = sum.Add(in.Value.Round(2))
	}
	if !sum.IsZero() {
		return nil, fmt.Errorf("%w: total is %s", ErrUnbalanced, sum.String())
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	lines := make([]domain.Line, len(lineInputs))
	debitTotal := decimal.Zero
	for i, in := range lineInputs {
		account, err := s.accountSvc.Resolve(ctx, in.Account)
		if err != nil {
			// Only a genuinely unresolvable identifier is the caller's
			// fault; infrastructure failures propagate as-is.
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConfiguration) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, in.Account)
			}
			return nil, fmt.Errorf("failed to resolve account %s: %w", in.Account, err)
		}
		value := in.Value.Round(2)
		lines[i] = domain.Line{
			LineID:        uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     account.AccountID,
			Value:         value,
			Note:          in.Note,
		}
		if value.IsPositive() {
			debitTotal = debitTotal.Add(value)
		}
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		Date:          req.Date,
		Value:         debitTotal,
		Note:          req.Note,
		Source:        req.Source,
		UserID:        creatorUserID,
		IsBalanced:    true, // passed line validation, so it is balanced
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn, lines); err != nil {
		logger.Error("Failed to save transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", transactionID),
		slog.String("value", txn.Value.String()),
		slog.Int("line_count", len(lines)),
	)
	txn.Lines = lines
	return &txn, nil
}

// RecomputeBalanced re-derives is_balanced by summing the stored lines and
// persists the result. Used defensively for auditing; given the ledger's
// immutability it should never change the stored value.
func (s *ledgerService) RecomputeBalanced(ctx context.Context, transactionID string, userID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	lines, err := s.transactionRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to load lines for %s: %w", transactionID, err)
	}

	isBalanced := len(lines) >= 2 && domain.SumLines(lines).IsZero()
	if isBalanced != txn.IsBalanced {
		// Should never happen; worth an audit trail entry when it does.
		logger.Warn("Balanced flag changed on recomputation",
			slog.String("transaction_id", transactionID),
			slog.Bool("was", txn.IsBalanced),
			slog.Bool("now", isBalanced),
		)
	}

	if err := s.transactionRepo.UpdateTransactionBalanced(ctx, transactionID, isBalanced, userID, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("failed to persist balanced flag for %s: %w", transactionID, err)
	}
	return isBalanced, nil
}

// GetTransactionWithLines retrieves a transaction and all of its lines.
func (s *ledgerService) GetTransactionWithLines(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	lines, err := s.transactionRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for %s: %w", transactionID, err)
	}
	txn.Lines = lines
	return txn, nil
}

// ListAccountTransactions retrieves the transactions touching an account,
// newest first, each populated with its lines.
func (s *ledgerService) ListAccountTransactions(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	txns, err := s.transactionRepo.ListTransactionsByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	for i := range txns {
		lines, err := s.transactionRepo.FindLinesByTransactionID(ctx, txns[i].TransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lines for %s: %w", txns[i].TransactionID, err)
		}
		txns[i].Lines = lines
	}
	return txns, nil
}
