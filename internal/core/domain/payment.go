package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType distinguishes money received against receivable documents from
// money paid out against payable ones.
type PaymentType string

const (
	PaymentReceivable PaymentType = "DOCUMENT_RECEIVABLE"
	PaymentPayable    PaymentType = "DOCUMENT_PAYABLE"
)

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment records money received or paid. Payments are created once and never
// edited afterwards; reversals create new, offsetting records that net the
// effect, preserving the audit trail.
type Payment struct {
	PaymentID            string          `json:"paymentID"`
	WorkplaceID          string          `json:"workplaceID"`
	PaymentType          PaymentType     `json:"paymentType"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	Method               string          `json:"method"`
	Reference            string          `json:"reference"`
	Notes                string          `json:"notes"`
	WithholdingTaxRate   decimal.Decimal `json:"withholdingTaxRate"`
	WithholdingTaxAmount decimal.Decimal `json:"withholdingTaxAmount"`
	PaidAt               time.Time       `json:"paidAt"`
	Status               PaymentStatus   `json:"status"`
	// ReversedPaymentID links a reversing payment back to the original.
	ReversedPaymentID *string             `json:"reversedPaymentID,omitempty"`
	Allocations       []PaymentAllocation `json:"allocations,omitempty"`
	AuditFields
}

// AllocatedTotal returns the sum of the payment's allocation amounts.
func (p Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

// UnallocatedAmount returns the remainder of the payment not yet assigned to
// any document. Under-allocation is permitted; the remainder stays available
// for future allocation.
func (p Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedTotal())
}

// PaymentAllocation assigns part or all of a payment's amount to exactly one
// target document.
type PaymentAllocation struct {
	AllocationID    string          `json:"allocationID"`
	PaymentID       string          `json:"paymentID"`
	DocumentID      string          `json:"documentID"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	AuditFields
}
