package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portsrepo "github.com/elena/open-accounting/internal/core/ports/repositories"
	"github.com/elena/open-accounting/internal/models"
	"github.com/elena/open-accounting/internal/utils/mapping"
)

type PgxRelationRepository struct {
	pool *pgxpool.Pool
}

// newPgxRelationRepository creates a new repository for counterparty
// entities and their subledger relations.
func newPgxRelationRepository(pool *pgxpool.Pool) portsrepo.RelationRepositoryFacade {
	return &PgxRelationRepository{pool: pool}
}

var _ portsrepo.RelationRepositoryFacade = (*PgxRelationRepository)(nil)

const entityColumns = `entity_id, code, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

const relationColumns = `relation_id, entity_id, kind, terms, created_at, created_by, last_updated_at, last_updated_by`

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var m models.Entity
	err := row.Scan(
		&m.EntityID,
		&m.Code,
		&m.Name,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	e := mapping.ToDomainEntity(m)
	return &e, nil
}

func scanRelation(row pgx.Row) (*domain.Relation, error) {
	var m models.Relation
	err := row.Scan(
		&m.RelationID,
		&m.EntityID,
		&m.Kind,
		&m.Terms,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	rel := mapping.ToDomainRelation(m)
	return &rel, nil
}

// SaveEntity persists a new entity.
func (r *PgxRelationRepository) SaveEntity(ctx context.Context, entity domain.Entity) error {
	m := mapping.ToModelEntity(entity)

	query := `
		INSERT INTO entities (entity_id, code, name, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		m.EntityID,
		m.Code,
		m.Name,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entity code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save entity %s: %w", m.EntityID, err)
	}
	return nil
}

// FindEntityByID retrieves an entity by ID.
func (r *PgxRelationRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE entity_id = $1;`

	e, err := scanEntity(r.pool.QueryRow(ctx, query, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entity by ID %s: %w", entityID, err)
	}
	return e, nil
}

// FindEntityByCode retrieves an entity by its unique lookup code.
func (r *PgxRelationRepository) FindEntityByCode(ctx context.Context, code string) (*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE code = $1;`

	e, err := scanEntity(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entity by code %s: %w", code, err)
	}
	return e, nil
}

// SaveRelation persists a new relation.
func (r *PgxRelationRepository) SaveRelation(ctx context.Context, relation domain.Relation) error {
	m := mapping.ToModelRelation(relation)

	query := `
		INSERT INTO relations (relation_id, entity_id, kind, terms, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		m.RelationID,
		m.EntityID,
		m.Kind,
		m.Terms,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entity %s already has a %s relation", apperrors.ErrDuplicate, m.EntityID, m.Kind)
		}
		return fmt.Errorf("failed to save relation %s: %w", m.RelationID, err)
	}
	return nil
}

// FindRelationByID retrieves a relation by ID.
func (r *PgxRelationRepository) FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error) {
	query := `SELECT ` + relationColumns + ` FROM relations WHERE relation_id = $1;`

	rel, err := scanRelation(r.pool.QueryRow(ctx, query, relationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find relation by ID %s: %w", relationID, err)
	}
	return rel, nil
}

// FindRelationByEntity retrieves the relation an entity holds in one
// subledger kind.
func (r *PgxRelationRepository) FindRelationByEntity(ctx context.Context, entityID string, kind domain.EntryKind) (*domain.Relation, error) {
	query := `SELECT ` + relationColumns + ` FROM relations WHERE entity_id = $1 AND kind = $2;`

	rel, err := scanRelation(r.pool.QueryRow(ctx, query, entityID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s relation for entity %s: %w", kind, entityID, err)
	}
	return rel, nil
}
