package domain

// Entity is an address-book record for a counterparty. All relationship
// records with other organisations hang off an Entity, however many
// interconnections the relationship has.
type Entity struct {
	EntityID string `json:"entityID"` // Primary key (UUID)
	Code     string `json:"code"`     // Unique lookup code, short and upper-cased
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// Relation wraps an Entity with subledger-specific attributes. One Entity
// maps to at most one Relation per subledger kind. Creditors are the
// worked subledger here; the shape generalises to debtors.
type Relation struct {
	RelationID string    `json:"relationID"` // Primary key (UUID)
	EntityID   string    `json:"entityID"`
	Kind       EntryKind `json:"kind"`  // Subledger this relation belongs to
	Terms      int       `json:"terms"` // Payment terms in days
	AuditFields
}
