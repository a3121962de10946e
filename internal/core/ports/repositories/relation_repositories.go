package repositories

import (
	"context"

	"github.com/elena/open-accounting/internal/core/domain"
)

// EntityReader defines read operations for counterparty entities
type EntityReader interface {
	// FindEntityByID retrieves an entity by ID.
	FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error)

	// FindEntityByCode retrieves an entity by its unique lookup code.
	FindEntityByCode(ctx context.Context, code string) (*domain.Entity, error)
}

// EntityWriter defines write operations for counterparty entities
type EntityWriter interface {
	// SaveEntity persists a new entity. Fails with a duplicate error when
	// the code is already taken.
	SaveEntity(ctx context.Context, entity domain.Entity) error
}

// RelationReader defines read operations for subledger relations
type RelationReader interface {
	// FindRelationByID retrieves a relation by ID.
	FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error)

	// FindRelationByEntity retrieves the relation an entity holds in one
	// subledger kind, if any.
	FindRelationByEntity(ctx context.Context, entityID string, kind domain.EntryKind) (*domain.Relation, error)
}

// RelationWriter defines write operations for subledger relations
type RelationWriter interface {
	// SaveRelation persists a new relation.
	SaveRelation(ctx context.Context, relation domain.Relation) error
}

// RelationRepositoryFacade combines entity and relation repository interfaces
type RelationRepositoryFacade interface {
	EntityReader
	EntityWriter
	RelationReader
	RelationWriter
}
