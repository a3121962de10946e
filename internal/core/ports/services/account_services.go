package services

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/dto"
)

// AccountResolver resolves an account identifier, either a structured code
// like "01-0101" or an opaque account ID, to a unique account record. Leaf
// dependency of everything else.
type AccountResolver interface {
	Resolve(ctx context.Context, identifier string) (*domain.Account, error)
}

// AccountSvcFacade is the full chart-of-accounts service surface.
type AccountSvcFacade interface {
	AccountResolver

	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	GetAccountBySpecialRole(ctx context.Context, role domain.SpecialRole) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// UpdateAccount edits an account's display details. The code parts are
	// immutable once assigned.
	UpdateAccount(ctx context.Context, identifier string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount retires an account. Accounts are never hard deleted.
	DeactivateAccount(ctx context.Context, identifier string, userID string) error
}
