package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest defines the data needed to record a payment against a
// single document.
type RecordPaymentRequest struct {
	DocumentID         string          `json:"documentID" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode       string          `json:"currencyCode" binding:"required"`
	Method             string          `json:"method" binding:"required"`
	Reference          string          `json:"reference"`
	PaidAt             time.Time       `json:"paidAt" binding:"required"`
	Notes              string          `json:"notes"`
	WithholdingTaxRate decimal.Decimal `json:"withholdingTaxRate"`
	// Optional ledger posting: when both accounts are set, recording the
	// payment also posts a balanced journal entry (debit cash, credit the
	// receivable control account) in the same transaction.
	CashAccountID    string `json:"cashAccountID"`
	ControlAccountID string `json:"controlAccountID"`
}

// AllocationRequest assigns part of a payment to one document.
type AllocationRequest struct {
	DocumentID string          `json:"documentID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// AllocatePaymentRequest splits an existing payment's unallocated remainder
// across one or more outstanding documents.
type AllocatePaymentRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// ReversePaymentRequest reverses a completed payment.
type ReversePaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AllocationResponse is one allocation in a payment response.
type AllocationResponse struct {
	AllocationID    string          `json:"allocationID"`
	DocumentID      string          `json:"documentID"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID         string               `json:"paymentID"`
	PaymentType       domain.PaymentType   `json:"paymentType"`
	Amount            decimal.Decimal      `json:"amount"`
	CurrencyCode      string               `json:"currencyCode"`
	Method            string               `json:"method"`
	Reference         string               `json:"reference"`
	Notes             string               `json:"notes"`
	PaidAt            time.Time            `json:"paidAt"`
	Status            domain.PaymentStatus `json:"status"`
	ReversedPaymentID *string              `json:"reversedPaymentID,omitempty"`
	Allocations       []AllocationResponse `json:"allocations,omitempty"`
	UnallocatedAmount decimal.Decimal      `json:"unallocatedAmount"`
	CreatedAt         time.Time            `json:"createdAt"`
	CreatedBy         string               `json:"createdBy"`
}

// ToPaymentResponse converts a domain.Payment to its DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:         p.PaymentID,
		PaymentType:       p.PaymentType,
		Amount:            p.Amount,
		CurrencyCode:      p.CurrencyCode,
		Method:            p.Method,
		Reference:         p.Reference,
		Notes:             p.Notes,
		PaidAt:            p.PaidAt,
		Status:            p.Status,
		ReversedPaymentID: p.ReversedPaymentID,
		UnallocatedAmount: p.UnallocatedAmount(),
		CreatedAt:         p.CreatedAt,
		CreatedBy:         p.CreatedBy,
	}
	for _, a := range p.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			AllocationID:    a.AllocationID,
			DocumentID:      a.DocumentID,
			AllocatedAmount: a.AllocatedAmount,
		})
	}
	return resp
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}
