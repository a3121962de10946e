package models

// Account represents one chart-of-accounts row. The structured code is
// stored as its two parts; (element, number) is unique.
type Account struct {
	AccountID   string `db:"account_id"`
	Element     string `db:"element"`
	Number      string `db:"number"`
	Name        string `db:"name"`
	Description string `db:"description"`
	ParentID    string `db:"parent_id"` // Nullable
	SpecialRole string `db:"special_role"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}
