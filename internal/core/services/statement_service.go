package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
	"github.com/elena/open-accounting/internal/statements"
)

var (
	ErrNotBankAccount    = errors.New("ledger account does not carry the bank role")
	ErrAlreadyReconciled = errors.New("bank line already has a linked transaction")
	ErrEmptyStatement    = errors.New("statement dump contains no rows")
)

const bankReconcilerSource = "subledgers/bank.Reconciliation"

// statementService orchestrates statement imports: parse the raw dump,
// group by day, reconcile each day against the stored lines, and persist
// the per-day decisions in ascending date order.
type statementService struct {
	accountSvc portssvc.AccountSvcFacade
	ledgerSvc  portssvc.LedgerSvcFacade
	bankRepo   portsrepo.BankRepositoryFacade
	registry   *statements.Registry
}

// NewStatementService creates a new StatementService.
func NewStatementService(bankRepo portsrepo.BankRepositoryFacade, accountSvc portssvc.AccountSvcFacade, ledgerSvc portssvc.LedgerSvcFacade, registry *statements.Registry) portssvc.StatementSvcFacade {
	return &statementService{
		accountSvc: accountSvc,
		ledgerSvc:  ledgerSvc,
		bankRepo:   bankRepo,
		registry:   registry,
	}
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// CreateBankAccount registers a bank account over a bank-role ledger account.
// The registered format must have a preprocessor.
func (s *statementService) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.registry.Get(req.BankFormat); err != nil {
		return nil, err
	}

	account, err := s.accountSvc.Resolve(ctx, req.Account)
	if err != nil {
		return nil, err
	}
	if account.SpecialRole != domain.SpecialBank {
		return nil, fmt.Errorf("%w: account %s has role %q", ErrNotBankAccount, account.Code(), account.SpecialRole)
	}

	now := time.Now().UTC()
	bankAccount := domain.BankAccount{
		BankAccountID: uuid.NewString(),
		AccountID:     account.AccountID,
		BankFormat:    req.BankFormat,
		Name:          req.Name,
		BSB:           req.BSB,
		AccountNumber: req.AccountNumber,
		Note:          req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.bankRepo.SaveBankAccount(ctx, bankAccount); err != nil {
		logger.Error("Failed to save bank account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	logger.Info("Bank account registered", slog.String("bank_account_id", bankAccount.BankAccountID), slog.String("format", bankAccount.BankFormat))
	return &bankAccount, nil
}

// truncateToDay drops the time-of-day part; all matching is day-granular.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ImportStatement parses and reconciles one raw statement dump. Days are
// applied strictly oldest to newest, each day's insert/delete batch as one
// atomic unit, so replaying the same dump is idempotent and a later day
// never observes a partially-applied earlier one. A day inside the dump's
// range with no incoming rows still runs, so stale unreconciled lines on a
// bank holiday are cleared; a day with nothing stored either is a no-op.
func (s *statementService) ImportStatement(ctx context.Context, bankAccountID string, rawDump string, importerUserID string) ([]domain.BankLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	bankAccount, err := s.bankRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", bankAccountID, err)
	}

	preprocessor, err := s.registry.Get(bankAccount.BankFormat)
	if err != nil {
		return nil, err
	}

	rows, err := preprocessor.Parse(rawDump)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement dump: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyStatement
	}

	// Group by calendar day and find the dump's inclusive date range.
	byDay := make(map[time.Time][]domain.RawStatementRow)
	minDay := truncateToDay(rows[0].Date)
	maxDay := minDay
	for _, row := range rows {
		day := truncateToDay(row.Date)
		byDay[day] = append(byDay[day], row)
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
	}

	now := time.Now().UTC()
	inserted := make([]domain.BankLine, 0, len(rows))

	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		// Cooperative cancellation between days: committed days stay,
		// the remainder is never started.
		if err := ctx.Err(); err != nil {
			logger.Warn("Statement import cancelled", slog.String("bank_account_id", bankAccountID), slog.Time("next_day", day))
			return inserted, err
		}

		incoming := byDay[day]
		existing, err := s.bankRepo.FindBankLinesByDay(ctx, bankAccountID, day)
		if err != nil {
			return inserted, fmt.Errorf("failed to load stored lines for %s: %w", day.Format("2006-01-02"), err)
		}
		if len(existing) == 0 && len(incoming) == 0 {
			continue
		}

		decision := ReconcileDay(existing, incoming)

		newLines := make([]domain.BankLine, len(decision.ToInsert))
		for i, row := range decision.ToInsert {
			newLines[i] = domain.BankLine{
				BankLineID:    uuid.NewString(),
				BankAccountID: bankAccountID,
				Date:          truncateToDay(row.Date),
				Value:         row.Value,
				LineDump:      row.LineDump,
				Description:   row.Description,
				Additional:    row.Additional,
				Balance:       row.Balance,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     importerUserID,
					LastUpdatedAt: now,
					LastUpdatedBy: importerUserID,
				},
			}
		}
		deleteIDs := make([]string, len(decision.ToDelete))
		for i, line := range decision.ToDelete {
			deleteIDs[i] = line.BankLineID
		}

		if len(newLines) == 0 && len(deleteIDs) == 0 {
			continue
		}

		if err := s.bankRepo.ApplyDayReconciliation(ctx, bankAccountID, day, newLines, deleteIDs); err != nil {
			logger.Error("Failed to apply day reconciliation",
				slog.String("error", err.Error()),
				slog.String("bank_account_id", bankAccountID),
				slog.Time("day", day),
			)
			return inserted, fmt.Errorf("failed to apply reconciliation for %s: %w", day.Format("2006-01-02"), err)
		}

		logger.Debug("Day reconciled",
			slog.Time("day", day),
			slog.Int("inserted", len(newLines)),
			slog.Int("deleted", len(deleteIDs)),
			slog.Int("kept", len(decision.ToKeep)),
		)
		inserted = append(inserted, newLines...)
	}

	logger.Info("Statement imported",
		slog.String("bank_account_id", bankAccountID),
		slog.Int("rows_parsed", len(rows)),
		slog.Int("lines_inserted", len(inserted)),
	)
	return inserted, nil
}

// ReconcileBankLine creates the ledger transaction that explains a bank
// line and attaches it. The bank side takes the line's sign as-is: money in
// debits the bank account, money out credits it.
func (s *statementService) ReconcileBankLine(ctx context.Context, bankLineID string, req dto.ReconcileBankLineRequest, userID string) (*domain.BankLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	line, err := s.bankRepo.FindBankLineByID(ctx, bankLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank line %s: %w", bankLineID, err)
	}
	if line.IsReconciled() {
		return nil, fmt.Errorf("%w: bank line %s", ErrAlreadyReconciled, bankLineID)
	}
	if line.Value.IsZero() {
		return nil, fmt.Errorf("%w: zero-value bank line cannot be reconciled", apperrors.ErrValidation)
	}

	bankAccount, err := s.bankRepo.FindBankAccountByID(ctx, line.BankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", line.BankAccountID, err)
	}

	// A line with no named contra account parks on the suspense account
	// until someone works out what it was.
	var contra *domain.Account
	if req.Account != "" {
		contra, err = s.accountSvc.Resolve(ctx, req.Account)
	} else {
		contra, err = s.accountSvc.GetAccountBySpecialRole(ctx, domain.SpecialSuspense)
	}
	if err != nil {
		return nil, err
	}

	// Positive statement value is money into the bank: DR bank, CR contra.
	simple := &dto.SimpleLines{
		DebitAccount:  bankAccount.AccountID,
		CreditAccount: contra.AccountID,
		Value:         line.Value,
	}
	if line.Value.IsNegative() {
		simple = &dto.SimpleLines{
			DebitAccount:  contra.AccountID,
			CreditAccount: bankAccount.AccountID,
			Value:         line.Value.Neg(),
		}
	}

	txn, err := s.ledgerSvc.CreateTransaction(ctx, dto.CreateTransactionRequest{
		Date:   line.Date,
		Note:   req.Note,
		Source: bankReconcilerSource,
		Simple: simple,
	}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciling transaction: %w", err)
	}

	now := time.Now().UTC()
	if err := s.bankRepo.AttachTransaction(ctx, bankLineID, txn.TransactionID, userID, now); err != nil {
		logger.Error("Failed to attach transaction to bank line",
			slog.String("error", err.Error()),
			slog.String("bank_line_id", bankLineID),
			slog.String("transaction_id", txn.TransactionID),
		)
		return nil, fmt.Errorf("failed to link bank line %s: %w", bankLineID, err)
	}

	line.TransactionID = &txn.TransactionID
	line.LastUpdatedAt = now
	line.LastUpdatedBy = userID
	logger.Info("Bank line reconciled", slog.String("bank_line_id", bankLineID), slog.String("transaction_id", txn.TransactionID))
	return line, nil
}

// ListBankAccounts retrieves every registered bank account.
func (s *statementService) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	accounts, err := s.bankRepo.ListBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

// ListBankLines retrieves a bank account's stored lines.
func (s *statementService) ListBankLines(ctx context.Context, bankAccountID string, unreconciledOnly bool) ([]domain.BankLine, error) {
	lines, err := s.bankRepo.ListBankLines(ctx, bankAccountID, unreconciledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank lines: %w", err)
	}
	return lines, nil
}
