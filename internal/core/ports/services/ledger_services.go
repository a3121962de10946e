package services

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/dto"
)

// LedgerSvcFacade owns Transactions and Lines: the only component permitted
// to create ledger lines, and nothing in the system may update or delete them.
type LedgerSvcFacade interface {
	// CreateTransaction validates and atomically persists one balanced
	// financial event from either line form.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// RecomputeBalanced re-derives is_balanced from the stored lines and
	// persists it. Exposed for auditing; given ledger immutability it should
	// never actually change the stored value.
	RecomputeBalanced(ctx context.Context, transactionID string, userID string) (bool, error)

	// GetTransactionWithLines retrieves a transaction and all of its lines.
	GetTransactionWithLines(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListAccountTransactions retrieves the transactions touching an account,
	// newest first, each populated with its lines.
	ListAccountTransactions(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error)
}
