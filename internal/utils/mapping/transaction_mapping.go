package mapping

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		Date:          d.Date,
		Value:         d.Value,
		Note:          d.Note,
		Source:        d.Source,
		UserID:        d.UserID,
		IsBalanced:    d.IsBalanced,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		Date:          m.Date,
		Value:         m.Value,
		Note:          m.Note,
		Source:        m.Source,
		UserID:        m.UserID,
		IsBalanced:    m.IsBalanced,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain Line to a model Line
func ToModelLine(d domain.Line) models.Line {
	return models.Line{
		LineID:        d.LineID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Value:         d.Value,
		Note:          d.Note,
	}
}

// ToDomainLine converts a model Line to a domain Line
func ToDomainLine(m models.Line) domain.Line {
	return domain.Line{
		LineID:        m.LineID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Value:         m.Value,
		Note:          m.Note,
	}
}
