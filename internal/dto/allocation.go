package dto

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest defines the payload for recording a creditor payment.
// BankLineID optionally anchors the payment to an imported statement line.
type CreatePaymentRequest struct {
	RelationID string  `json:"relationID" binding:"required"`
	BankLineID *string `json:"bankLineID,omitempty"`
	Note       string  `json:"note" binding:"max=2048"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID     string  `json:"paymentID"`
	RelationID    string  `json:"relationID"`
	TransactionID *string `json:"transactionID,omitempty"`
	BankLineID    *string `json:"bankLineID,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// AllocateRequest defines the payload for allocating a payment across open
// invoices. Value is required when the payment has no reconciled bank line
// to take the total from.
type AllocateRequest struct {
	Value *decimal.Decimal `json:"value,omitempty"`
}

// AllocationResponse defines the data returned for one allocation record.
type AllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	PaymentID    string          `json:"paymentID"`
	InvoiceID    string          `json:"invoiceID"`
	Value        decimal.Decimal `json:"value"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		RelationID:    p.RelationID,
		TransactionID: p.TransactionID,
		BankLineID:    p.BankLineID,
		Note:          p.Note,
	}
}

// ToAllocationResponses converts a slice of allocations.
func ToAllocationResponses(allocs []domain.Allocation) []AllocationResponse {
	responses := make([]AllocationResponse, len(allocs))
	for i, a := range allocs {
		responses[i] = AllocationResponse{
			AllocationID: a.AllocationID,
			PaymentID:    a.PaymentID,
			InvoiceID:    a.InvoiceID,
			Value:        a.Value,
		}
	}
	return responses
}
