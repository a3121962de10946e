package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxLedgerRepository(dbPool),
		BankRepo:        newPgxBankRepository(dbPool),
		RelationRepo:    newPgxRelationRepository(dbPool),
		SubledgerRepo:   newPgxSubledgerRepository(dbPool),
	}
}
