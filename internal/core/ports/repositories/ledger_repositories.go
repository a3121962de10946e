package repositories

import (
	"context"
	"time"

	"github.com/elena/open-accounting/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions and lines
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header by ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindLinesByTransactionID retrieves every line of a transaction.
	FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.Line, error)

	// ListTransactionsByAccountID retrieves transactions touching an account,
	// newest first, with limit/offset pagination.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for the append-only ledger
type TransactionWriter interface {
	// SaveTransaction persists a transaction and all of its lines as one
	// atomic unit. A partially created transaction must never be observable.
	SaveTransaction(ctx context.Context, txn domain.Transaction, lines []domain.Line) error

	// UpdateTransactionBalanced persists a recomputed is_balanced flag.
	// This is the only permitted mutation of a stored transaction.
	UpdateTransactionBalanced(ctx context.Context, transactionID string, isBalanced bool, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines ledger repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
