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

type PgxBankRepository struct {
	BaseRepository
}

// newPgxBankRepository creates a new repository for bank accounts and
// imported statement lines.
func newPgxBankRepository(pool *pgxpool.Pool) portsrepo.BankRepositoryFacade {
	return &PgxBankRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

const bankAccountColumns = `bank_account_id, account_id, bank_format, name, bsb, account_number, note, created_at, created_by, last_updated_at, last_updated_by`

const bankLineColumns = `bank_line_id, bank_account_id, transaction_id, date, value, line_dump, description, additional, balance, note, created_at, created_by, last_updated_at, last_updated_by`

func scanBankAccount(row pgx.Row) (*domain.BankAccount, error) {
	var m models.BankAccount
	err := row.Scan(
		&m.BankAccountID,
		&m.AccountID,
		&m.BankFormat,
		&m.Name,
		&m.BSB,
		&m.AccountNumber,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	ba := mapping.ToDomainBankAccount(m)
	return &ba, nil
}

func scanBankLine(row pgx.Row) (*domain.BankLine, error) {
	var m models.BankLine
	err := row.Scan(
		&m.BankLineID,
		&m.BankAccountID,
		&m.TransactionID,
		&m.Date,
		&m.Value,
		&m.LineDump,
		&m.Description,
		&m.Additional,
		&m.Balance,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	bl := mapping.ToDomainBankLine(m)
	return &bl, nil
}

// SaveBankAccount persists a new bank account.
func (r *PgxBankRepository) SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error {
	m := mapping.ToModelBankAccount(bankAccount)

	query := `
		INSERT INTO bank_accounts (bank_account_id, account_id, bank_format, name, bsb, account_number, note, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BankAccountID,
		m.AccountID,
		m.BankFormat,
		m.Name,
		m.BSB,
		m.AccountNumber,
		m.Note,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a bank account already wraps ledger account %s", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save bank account %s: %w", m.BankAccountID, err)
	}
	return nil
}

// FindBankAccountByID retrieves a bank account by ID.
func (r *PgxBankRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE bank_account_id = $1;`

	ba, err := scanBankAccount(r.Pool.QueryRow(ctx, query, bankAccountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank account by ID %s: %w", bankAccountID, err)
	}
	return ba, nil
}

// ListBankAccounts retrieves all bank accounts.
func (r *PgxBankRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.BankAccount{}
	for rows.Next() {
		ba, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank account row: %w", err)
		}
		accounts = append(accounts, *ba)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bank account rows: %w", rows.Err())
	}
	return accounts, nil
}

// FindBankLineByID retrieves a bank line by ID.
func (r *PgxBankRepository) FindBankLineByID(ctx context.Context, bankLineID string) (*domain.BankLine, error) {
	query := `SELECT ` + bankLineColumns + ` FROM bank_lines WHERE bank_line_id = $1;`

	bl, err := scanBankLine(r.Pool.QueryRow(ctx, query, bankLineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank line by ID %s: %w", bankLineID, err)
	}
	return bl, nil
}

// FindBankLinesByDay retrieves the stored lines of one bank account for one
// calendar day, in insertion order.
func (r *PgxBankRepository) FindBankLinesByDay(ctx context.Context, bankAccountID string, day time.Time) ([]domain.BankLine, error) {
	query := `
		SELECT ` + bankLineColumns + `
		FROM bank_lines
		WHERE bank_account_id = $1 AND date = $2
		ORDER BY created_at, bank_line_id;
	`

	rows, err := r.Pool.Query(ctx, query, bankAccountID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank lines for %s on %s: %w", bankAccountID, day.Format("2006-01-02"), err)
	}
	defer rows.Close()

	lines := []domain.BankLine{}
	for rows.Next() {
		bl, err := scanBankLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank line row: %w", err)
		}
		lines = append(lines, *bl)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bank line rows: %w", rows.Err())
	}
	return lines, nil
}

// ListBankLines retrieves lines for a bank account, oldest first.
func (r *PgxBankRepository) ListBankLines(ctx context.Context, bankAccountID string, unreconciledOnly bool) ([]domain.BankLine, error) {
	query := `
		SELECT ` + bankLineColumns + `
		FROM bank_lines
		WHERE bank_account_id = $1 AND ($2 = FALSE OR transaction_id IS NULL)
		ORDER BY date, created_at, bank_line_id;
	`

	rows, err := r.Pool.Query(ctx, query, bankAccountID, unreconciledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank lines for %s: %w", bankAccountID, err)
	}
	defer rows.Close()

	lines := []domain.BankLine{}
	for rows.Next() {
		bl, err := scanBankLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank line row: %w", err)
		}
		lines = append(lines, *bl)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating bank line rows: %w", rows.Err())
	}
	return lines, nil
}

// ApplyDayReconciliation inserts and deletes one day's lines within one DB
// transaction. An advisory lock keyed on (bank account, day) serializes
// concurrent imports touching the same day; the delete refuses to remove
// reconciled lines regardless of what the caller computed.
func (r *PgxBankRepository) ApplyDayReconciliation(ctx context.Context, bankAccountID string, day time.Time, toInsert []domain.BankLine, toDeleteIDs []string) error {
	if len(toInsert) == 0 && len(toDeleteIDs) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockKey := fmt.Sprintf("%s:%s", bankAccountID, day.Format("2006-01-02"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return fmt.Errorf("failed to acquire day lock for %s: %w", lockKey, err)
	}

	if len(toDeleteIDs) > 0 {
		cmdTag, err := tx.Exec(ctx,
			`DELETE FROM bank_lines WHERE bank_line_id = ANY($1) AND transaction_id IS NULL;`,
			toDeleteIDs,
		)
		if err != nil {
			return fmt.Errorf("failed to delete superseded bank lines: %w", err)
		}
		if cmdTag.RowsAffected() != int64(len(toDeleteIDs)) {
			return fmt.Errorf("%w: refused to delete reconciled bank lines for %s", apperrors.ErrConflict, lockKey)
		}
	}

	insertLine := `
		INSERT INTO bank_lines (bank_line_id, bank_account_id, transaction_id, date, value, line_dump, description, additional, balance, note, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, line := range toInsert {
		m := mapping.ToModelBankLine(line)
		batch.Queue(insertLine,
			m.BankLineID,
			m.BankAccountID,
			m.TransactionID,
			m.Date,
			m.Value,
			m.LineDump,
			m.Description,
			m.Additional,
			m.Balance,
			m.Note,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to insert bank lines for %s: %w", lockKey, err)
		}
	}

	return r.Commit(ctx, tx)
}

// AttachTransaction links a ledger transaction to a bank line. Only
// unreconciled lines can be attached.
func (r *PgxBankRepository) AttachTransaction(ctx context.Context, bankLineID string, transactionID string, userID string, now time.Time) error {
	query := `
		UPDATE bank_lines
		SET transaction_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE bank_line_id = $1 AND transaction_id IS NULL;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, bankLineID, transactionID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to attach transaction to bank line %s: %w", bankLineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		_, findErr := r.FindBankLineByID(ctx, bankLineID)
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check bank line %s after attach attempt: %w", bankLineID, findErr)
		}
		// Exists but already carries a transaction.
		return apperrors.ErrConflict
	}
	return nil
}
