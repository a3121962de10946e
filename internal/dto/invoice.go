package dto

import (
	"time"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest defines the payload for entering a creditor invoice.
// Lines are the expense/contra side; the control-account line is added by
// the invoice ledger from the subledger configuration and must bring the
// total to the invoice value.
type CreateInvoiceRequest struct {
	RelationID    string                 `json:"-"` // Populated from the route, not the body
	InvoiceNumber string                 `json:"invoiceNumber" binding:"required,max=128"`
	Date          time.Time              `json:"date" binding:"required"`
	Value         decimal.Decimal        `json:"value" binding:"required"`
	GSTTotal      decimal.Decimal        `json:"gstTotal"`
	DueDate       *time.Time             `json:"dueDate,omitempty"`
	OrderNumber   string                 `json:"orderNumber" binding:"max=128"`
	Reference     string                 `json:"reference" binding:"max=128"`
	Note          string                 `json:"note" binding:"max=2048"`
	Lines         []TransactionLineInput `json:"lines" binding:"required,min=1"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID     string          `json:"invoiceID"`
	RelationID    string          `json:"relationID"`
	TransactionID string          `json:"transactionID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	GSTTotal      decimal.Decimal `json:"gstTotal"`
	DueDate       time.Time       `json:"dueDate"`
	OrderNumber   string          `json:"orderNumber,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Unpaid        decimal.Decimal `json:"unpaid"`
	IsSettled     bool            `json:"isSettled"`
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse.
func ToInvoiceResponse(i *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     i.InvoiceID,
		RelationID:    i.RelationID,
		TransactionID: i.TransactionID,
		InvoiceNumber: i.InvoiceNumber,
		GSTTotal:      i.GSTTotal,
		DueDate:       i.DueDate,
		OrderNumber:   i.OrderNumber,
		Reference:     i.Reference,
		Unpaid:        i.Unpaid,
		IsSettled:     i.IsSettled(),
	}
}

// ToInvoiceResponses converts a slice of invoices.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}
