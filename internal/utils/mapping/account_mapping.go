package mapping

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountID:   d.AccountID,
		Element:     string(d.Element),
		Number:      d.Number,
		Name:        d.Name,
		Description: d.Description,
		SpecialRole: string(d.SpecialRole),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.ParentID != nil {
		m.ParentID = *d.ParentID
	}
	return m
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountID:   m.AccountID,
		Element:     domain.AccountElement(m.Element),
		Number:      m.Number,
		Name:        m.Name,
		Description: m.Description,
		SpecialRole: domain.SpecialRole(m.SpecialRole),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.ParentID != "" {
		parentID := m.ParentID
		d.ParentID = &parentID
	}
	return d
}
