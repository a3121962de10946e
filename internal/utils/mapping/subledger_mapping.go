package mapping

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/models"
)

// ToModelEntity converts a domain Entity to a model Entity
func ToModelEntity(d domain.Entity) models.Entity {
	return models.Entity{
		EntityID:    d.EntityID,
		Code:        d.Code,
		Name:        d.Name,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntity converts a model Entity to a domain Entity
func ToDomainEntity(m models.Entity) domain.Entity {
	return domain.Entity{
		EntityID:    m.EntityID,
		Code:        m.Code,
		Name:        m.Name,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelRelation converts a domain Relation to a model Relation
func ToModelRelation(d domain.Relation) models.Relation {
	return models.Relation{
		RelationID:  d.RelationID,
		EntityID:    d.EntityID,
		Kind:        string(d.Kind),
		Terms:       d.Terms,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRelation converts a model Relation to a domain Relation
func ToDomainRelation(m models.Relation) domain.Relation {
	return domain.Relation{
		RelationID:  m.RelationID,
		EntityID:    m.EntityID,
		Kind:        domain.EntryKind(m.Kind),
		Terms:       m.Terms,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInvoice converts a domain Invoice to a model Invoice
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:     d.InvoiceID,
		RelationID:    d.RelationID,
		TransactionID: d.TransactionID,
		InvoiceNumber: d.InvoiceNumber,
		GSTTotal:      d.GSTTotal,
		DueDate:       d.DueDate,
		OrderNumber:   d.OrderNumber,
		Reference:     d.Reference,
		Unpaid:        d.Unpaid,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice. The
// denormalised transaction date and value are joined in by the repository,
// not carried on the model.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     m.InvoiceID,
		RelationID:    m.RelationID,
		TransactionID: m.TransactionID,
		InvoiceNumber: m.InvoiceNumber,
		GSTTotal:      m.GSTTotal,
		DueDate:       m.DueDate,
		OrderNumber:   m.OrderNumber,
		Reference:     m.Reference,
		Unpaid:        m.Unpaid,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:     d.PaymentID,
		RelationID:    d.RelationID,
		TransactionID: d.TransactionID,
		BankLineID:    d.BankLineID,
		Note:          d.Note,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:     m.PaymentID,
		RelationID:    m.RelationID,
		TransactionID: m.TransactionID,
		BankLineID:    m.BankLineID,
		Note:          m.Note,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAllocation converts a domain Allocation to a model Allocation
func ToModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID: d.AllocationID,
		PaymentID:    d.PaymentID,
		InvoiceID:    d.InvoiceID,
		Value:        d.Value,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocation converts a model Allocation to a domain Allocation
func ToDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID: m.AllocationID,
		PaymentID:    m.PaymentID,
		InvoiceID:    m.InvoiceID,
		Value:        m.Value,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
