package repositories

import (
	"context"
	"time"

	"github.com/elena/open-accounting/internal/core/domain"
)

// BankAccountReader defines read operations for bank account records
type BankAccountReader interface {
	// FindBankAccountByID retrieves a bank account by ID.
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves all bank accounts.
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
}

// BankAccountWriter defines write operations for bank account records
type BankAccountWriter interface {
	// SaveBankAccount persists a new bank account.
	SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error
}

// BankLineReader defines read operations for imported statement lines
type BankLineReader interface {
	// FindBankLineByID retrieves a bank line by ID.
	FindBankLineByID(ctx context.Context, bankLineID string) (*domain.BankLine, error)

	// FindBankLinesByDay retrieves the stored lines of one bank account for
	// one calendar day, in insertion order.
	FindBankLinesByDay(ctx context.Context, bankAccountID string, day time.Time) ([]domain.BankLine, error)

	// ListBankLines retrieves lines for a bank account, oldest first.
	// When unreconciledOnly is set, lines with a transaction link are excluded.
	ListBankLines(ctx context.Context, bankAccountID string, unreconciledOnly bool) ([]domain.BankLine, error)
}

// BankLineWriter defines write operations for imported statement lines
type BankLineWriter interface {
	// ApplyDayReconciliation inserts and deletes one day's lines as a single
	// atomic unit, serialized per (bank account, day) so two overlapping
	// imports can never interleave within a day.
	ApplyDayReconciliation(ctx context.Context, bankAccountID string, day time.Time, toInsert []domain.BankLine, toDeleteIDs []string) error

	// AttachTransaction links a ledger transaction to a bank line,
	// marking it reconciled.
	AttachTransaction(ctx context.Context, bankLineID string, transactionID string, userID string, now time.Time) error
}

// BankRepositoryFacade combines all bank-related repository interfaces
type BankRepositoryFacade interface {
	BankAccountReader
	BankAccountWriter
	BankLineReader
	BankLineWriter
}
