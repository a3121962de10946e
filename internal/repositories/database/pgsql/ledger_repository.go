package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	"github.com/elena/open-accounting/internal/models"
	"github.com/elena/open-accounting/internal/utils/mapping"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the append-only ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, date, value, note, source, user_id, is_balanced, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Date,
		&m.Value,
		&m.Note,
		&m.Source,
		&m.UserID,
		&m.IsBalanced,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// SaveTransaction persists a transaction header and all of its lines within
// one DB transaction. The ledger is append-only: this is an insert, never
// an upsert.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, lines []domain.Line) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)

	insertTxn := `
		INSERT INTO transactions (transaction_id, date, value, note, source, user_id, is_balanced, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, insertTxn,
		m.TransactionID,
		m.Date,
		m.Value,
		m.Note,
		m.Source,
		m.UserID,
		m.IsBalanced,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	insertLine := `
		INSERT INTO lines (line_id, transaction_id, account_id, value, note)
		VALUES ($1, $2, $3, $4, $5);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		ml := mapping.ToModelLine(line)
		batch.Queue(insertLine, ml.LineID, ml.TransactionID, ml.AccountID, ml.Value, ml.Note)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert lines for transaction %s: %w", m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction header by ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// FindLinesByTransactionID retrieves every line of a transaction in a
// stable order.
func (r *PgxLedgerRepository) FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.Line, error) {
	query := `
		SELECT line_id, transaction_id, account_id, value, note
		FROM lines
		WHERE transaction_id = $1
		ORDER BY line_id;
	`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	lines := []domain.Line{}
	for rows.Next() {
		var m models.Line
		if err := rows.Scan(&m.LineID, &m.TransactionID, &m.AccountID, &m.Value, &m.Note); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, mapping.ToDomainLine(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", rows.Err())
	}
	return lines, nil
}

// ListTransactionsByAccountID retrieves transactions touching an account,
// newest first.
func (r *PgxLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT DISTINCT t.transaction_id, t.date, t.value, t.note, t.source, t.user_id, t.is_balanced, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
		FROM transactions t
		JOIN lines l ON l.transaction_id = t.transaction_id
		WHERE l.account_id = $1
		ORDER BY t.date DESC, t.transaction_id DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

// UpdateTransactionBalanced persists a recomputed is_balanced flag, the
// only mutation a stored transaction permits.
func (r *PgxLedgerRepository) UpdateTransactionBalanced(ctx context.Context, transactionID string, isBalanced bool, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET is_balanced = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, transactionID, isBalanced, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update balanced flag for transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
