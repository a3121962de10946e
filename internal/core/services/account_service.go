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
)

var (
	ErrInvalidElement = errors.New("account element is not a recognised category")
	ErrCodeTaken      = errors.New("account code is already in use")
)

// accountService is the account registry: it resolves identifiers to unique
// chart-of-accounts records and manages their lifecycle.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account registry service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Resolve fetches an account by either a structured code string ("01-0101")
// or an account ID. An identifier that looks like a code but matches no
// account is a setup problem, reported as a configuration error.
func (s *accountService) Resolve(ctx context.Context, identifier string) (*domain.Account, error) {
	if domain.IsAccountCode(identifier) {
		element, number := domain.SplitAccountCode(identifier)
		account, err := s.accountRepo.FindAccountByCode(ctx, element, number)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no account with code %s", apperrors.ErrConfiguration, identifier)
			}
			return nil, fmt.Errorf("failed to resolve account code %s: %w", identifier, err)
		}
		return account, nil
	}

	account, err := s.accountRepo.FindAccountByID(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s: %w", identifier, err)
	}
	return account, nil
}

// CreateAccount adds a new account to the chart. The {element, number} code
// must be unique across the chart.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	element := domain.AccountElement(req.Element)
	if !element.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidElement, req.Element)
	}

	// Reject duplicate codes up front; the unique index backs this up.
	existing, err := s.accountRepo.FindAccountByCode(ctx, element, req.Number)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s-%s", ErrCodeTaken, req.Element, req.Number)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Element:     element,
		Number:      req.Number,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		SpecialRole: domain.SpecialRole(req.SpecialRole),
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", account.Code()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code()))
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs are
// absent from the map.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountBySpecialRole retrieves the account filling a structural role.
func (s *accountService) GetAccountBySpecialRole(ctx context.Context, role domain.SpecialRole) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountBySpecialRole(ctx, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account holds the %s role", apperrors.ErrConfiguration, role)
		}
		return nil, fmt.Errorf("failed to find %s account: %w", role, err)
	}
	return account, nil
}

// UpdateAccount edits an account's display details. The {element, number}
// code is immutable; only name, description and special role can change.
func (s *accountService) UpdateAccount(ctx context.Context, identifier string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.SpecialRole != nil {
		account.SpecialRole = domain.SpecialRole(*req.SpecialRole)
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}

	logger.Info("Account updated", slog.String("account_id", account.AccountID), slog.String("code", account.Code()))
	return account, nil
}

// DeactivateAccount retires an account. The row stays so historical lines
// keep resolving; it just stops accepting new postings.
func (s *accountService) DeactivateAccount(ctx context.Context, identifier string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.Resolve(ctx, identifier)
	if err != nil {
		return err
	}

	if err := s.accountRepo.DeactivateAccount(ctx, account.AccountID, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, account.Code())
		}
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return fmt.Errorf("failed to deactivate account %s: %w", account.AccountID, err)
	}

	logger.Info("Account deactivated", slog.String("account_id", account.AccountID), slog.String("code", account.Code()))
	return nil
}

// ListAccounts retrieves a page of the chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
