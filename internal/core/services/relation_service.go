package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/middleware"
	"github.com/elena/open-accounting/pkg/config"
)

var (
	ErrCodeSpaceExhausted = errors.New("no unique entity code available for this name")
	ErrEntityCodeTaken    = errors.New("entity code is already in use")
	ErrAlreadyCreditor    = errors.New("entity already has a creditor relation")
)

// codeSuffixLimit bounds the generated-code search. Suffixes run 2..99;
// past that the caller has to supply a code explicitly.
const codeSuffixLimit = 99

// relationService manages counterparty entities and their subledger
// relations, and records payments against them.
type relationService struct {
	relationRepo  portsrepo.RelationRepositoryFacade
	subledgerRepo portsrepo.SubledgerRepositoryFacade
	bankRepo      portsrepo.BankRepositoryFacade
	cfg           config.Subledgers
}

// NewRelationService creates a new RelationService.
func NewRelationService(relationRepo portsrepo.RelationRepositoryFacade, subledgerRepo portsrepo.SubledgerRepositoryFacade, bankRepo portsrepo.BankRepositoryFacade, cfg config.Subledgers) portssvc.RelationSvcFacade {
	return &relationService{
		relationRepo:  relationRepo,
		subledgerRepo: subledgerRepo,
		bankRepo:      bankRepo,
		cfg:           cfg,
	}
}

var _ portssvc.RelationSvcFacade = (*relationService)(nil)

// codeBase derives a code stem from a display name: the first letters of
// the leading words, upper-cased, padded from the first word when the name
// is short. At most four characters.
func codeBase(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if b.Len() >= 4 {
			break
		}
	}
	if b.Len() < 2 {
		for _, r := range name {
			if b.Len() >= 3 {
				break
			}
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
		}
	}
	return b.String()
}

// generateUniqueCode finds an unused entity code for the name. The search
// is bounded: the bare stem, then stem+2 through stem+99. Running out
// returns ErrCodeSpaceExhausted rather than looping forever.
func (s *relationService) generateUniqueCode(ctx context.Context, name string) (string, error) {
	base := codeBase(name)
	if base == "" {
		return "", fmt.Errorf("%w: name %q yields no code stem", ErrCodeSpaceExhausted, name)
	}

	candidate := base
	for suffix := 1; suffix <= codeSuffixLimit; suffix++ {
		_, err := s.relationRepo.FindEntityByCode(ctx, candidate)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return candidate, nil
			}
			return "", fmt.Errorf("failed to check entity code %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s%d", base, suffix+1)
	}
	return "", fmt.Errorf("%w: stem %s", ErrCodeSpaceExhausted, base)
}

// CreateEntity records a new counterparty. When no code is supplied a
// unique one is generated from the name.
func (s *relationService) CreateEntity(ctx context.Context, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != "" {
		_, err := s.relationRepo.FindEntityByCode(ctx, code)
		if err == nil {
			return nil, fmt.Errorf("%w: %s", ErrEntityCodeTaken, code)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check entity code %s: %w", code, err)
		}
	} else {
		generated, err := s.generateUniqueCode(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	now := time.Now().UTC()
	entity := domain.Entity{
		EntityID: uuid.NewString(),
		Code:     code,
		Name:     req.Name,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.relationRepo.SaveEntity(ctx, entity); err != nil {
		logger.Error("Failed to save entity", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	logger.Info("Entity created", slog.String("entity_id", entity.EntityID), slog.String("code", code))
	return &entity, nil
}

// CreateCreditor promotes an existing entity into the creditors subledger.
// An entity holds at most one creditor relation.
func (s *relationService) CreateCreditor(ctx context.Context, req dto.CreateCreditorRequest, creatorUserID string) (*domain.Relation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.relationRepo.FindEntityByID(ctx, req.EntityID); err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", req.EntityID, err)
	}

	existing, err := s.relationRepo.FindRelationByEntity(ctx, req.EntityID, domain.KindInvoice)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: entity %s", ErrAlreadyCreditor, req.EntityID)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing creditor relation: %w", err)
	}

	terms := s.cfg.DefaultTermsDays
	if req.Terms != nil {
		terms = *req.Terms
	}

	now := time.Now().UTC()
	relation := domain.Relation{
		RelationID: uuid.NewString(),
		EntityID:   req.EntityID,
		Kind:       domain.KindInvoice,
		Terms:      terms,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.relationRepo.SaveRelation(ctx, relation); err != nil {
		logger.Error("Failed to save creditor relation", slog.String("error", err.Error()), slog.String("entity_id", req.EntityID))
		return nil, fmt.Errorf("failed to save creditor relation: %w", err)
	}

	logger.Info("Creditor created", slog.String("relation_id", relation.RelationID), slog.String("entity_id", req.EntityID))
	return &relation, nil
}

// GetCreditor retrieves a creditor relation by ID.
func (s *relationService) GetCreditor(ctx context.Context, relationID string) (*domain.Relation, error) {
	relation, err := s.relationRepo.FindRelationByID(ctx, relationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find creditor %s: %w", relationID, err)
	}
	return relation, nil
}

// CreatePayment records money paid to a creditor. The payment may be
// anchored to an imported bank statement line; allocating it across open
// invoices is a separate step.
func (s *relationService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, creatorUserID string) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.relationRepo.FindRelationByID(ctx, req.RelationID); err != nil {
		return nil, fmt.Errorf("failed to find relation %s: %w", req.RelationID, err)
	}
	if req.BankLineID != nil {
		if _, err := s.bankRepo.FindBankLineByID(ctx, *req.BankLineID); err != nil {
			return nil, fmt.Errorf("failed to find bank line %s: %w", *req.BankLineID, err)
		}
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:  uuid.NewString(),
		RelationID: req.RelationID,
		BankLineID: req.BankLineID,
		Note:       req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.subledgerRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to save payment", slog.String("error", err.Error()), slog.String("relation_id", req.RelationID))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info("Payment recorded", slog.String("payment_id", payment.PaymentID), slog.String("relation_id", req.RelationID))
	return &payment, nil
}
