package services

import (
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/statements"
	"github.com/elena/open-accounting/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The account registry comes first; every posting service resolves
	// account references through it.
	container.Account = NewAccountService(repos.AccountRepo)

	container.Ledger = NewLedgerService(repos.TransactionRepo, container.Account)
	container.Statement = NewStatementService(repos.BankRepo, container.Account, container.Ledger, statements.NewRegistry())
	container.Invoice = NewInvoiceService(repos.SubledgerRepo, repos.RelationRepo, container.Ledger, cfg.Subledgers)
	container.Allocation = NewAllocationService(repos.SubledgerRepo, repos.BankRepo, container.Ledger)
	container.Relation = NewRelationService(repos.RelationRepo, repos.SubledgerRepo, repos.BankRepo, cfg.Subledgers)

	return container
}
