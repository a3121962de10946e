package mapping

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/models"
)

// ToModelBankAccount converts a domain BankAccount to a model BankAccount
func ToModelBankAccount(d domain.BankAccount) models.BankAccount {
	return models.BankAccount{
		BankAccountID: d.BankAccountID,
		AccountID:     d.AccountID,
		BankFormat:    d.BankFormat,
		Name:          d.Name,
		BSB:           d.BSB,
		AccountNumber: d.AccountNumber,
		Note:          d.Note,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankAccount converts a model BankAccount to a domain BankAccount
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount{
		BankAccountID: m.BankAccountID,
		AccountID:     m.AccountID,
		BankFormat:    m.BankFormat,
		Name:          m.Name,
		BSB:           m.BSB,
		AccountNumber: m.AccountNumber,
		Note:          m.Note,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBankLine converts a domain BankLine to a model BankLine
func ToModelBankLine(d domain.BankLine) models.BankLine {
	return models.BankLine{
		BankLineID:    d.BankLineID,
		BankAccountID: d.BankAccountID,
		TransactionID: d.TransactionID,
		Date:          d.Date,
		Value:         d.Value,
		LineDump:      d.LineDump,
		Description:   d.Description,
		Additional:    d.Additional,
		Balance:       d.Balance,
		Note:          d.Note,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankLine converts a model BankLine to a domain BankLine
func ToDomainBankLine(m models.BankLine) domain.BankLine {
	return domain.BankLine{
		BankLineID:    m.BankLineID,
		BankAccountID: m.BankAccountID,
		TransactionID: m.TransactionID,
		Date:          m.Date,
		Value:         m.Value,
		LineDump:      m.LineDump,
		Description:   m.Description,
		Additional:    m.Additional,
		Balance:       m.Balance,
		Note:          m.Note,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
