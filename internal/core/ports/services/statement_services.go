package services

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/dto"
)

// StatementSvcFacade is the statement import and bank reconciliation surface.
type StatementSvcFacade interface {
	// CreateBankAccount registers a bank account over a bank-role ledger account.
	CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves every registered bank account.
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)

	// ImportStatement parses a raw statement dump with the bank account's
	// configured preprocessor and reconciles it day by day against the
	// stored lines. Returns only the newly inserted lines.
	ImportStatement(ctx context.Context, bankAccountID string, rawDump string, importerUserID string) ([]domain.BankLine, error)

	// ReconcileBankLine creates the ledger transaction explaining a bank
	// line (bank account against the named contra account) and links it.
	// With no contra account named, the line parks on the suspense-role
	// account.
	ReconcileBankLine(ctx context.Context, bankLineID string, req dto.ReconcileBankLineRequest, userID string) (*domain.BankLine, error)

	// ListBankLines retrieves a bank account's stored lines, optionally
	// only the unreconciled ones.
	ListBankLines(ctx context.Context, bankAccountID string, unreconciledOnly bool) ([]domain.BankLine, error)
}
