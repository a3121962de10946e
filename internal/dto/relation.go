package dto

import (
	"github.com/elena/open-accounting/internal/core/domain"
)

// CreateEntityRequest defines the payload for creating a counterparty record.
// Code is optional; a unique one is generated from the name when omitted.
type CreateEntityRequest struct {
	Name string `json:"name" binding:"required,max=128"`
	Code string `json:"code" binding:"omitempty,max=6"`
}

// EntityResponse defines the data returned for an entity.
type EntityResponse struct {
	EntityID string `json:"entityID"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// CreateCreditorRequest defines the payload for promoting an entity to a creditor.
type CreateCreditorRequest struct {
	EntityID string `json:"entityID" binding:"required"`
	Terms    *int   `json:"terms,omitempty" binding:"omitempty,min=0"`
}

// CreditorResponse defines the data returned for a creditor relation.
type CreditorResponse struct {
	RelationID string `json:"relationID"`
	EntityID   string `json:"entityID"`
	Terms      int    `json:"terms"`
}

// ToEntityResponse converts a domain.Entity to EntityResponse.
func ToEntityResponse(e *domain.Entity) EntityResponse {
	return EntityResponse{
		EntityID: e.EntityID,
		Code:     e.Code,
		Name:     e.Name,
		IsActive: e.IsActive,
	}
}

// ToCreditorResponse converts a domain.Relation to CreditorResponse.
func ToCreditorResponse(r *domain.Relation) CreditorResponse {
	return CreditorResponse{
		RelationID: r.RelationID,
		EntityID:   r.EntityID,
		Terms:      r.Terms,
	}
}
