package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money received or paid out.
type Payment struct {
	PaymentID            string          `db:"payment_id"`
	WorkplaceID          string          `db:"workplace_id"`
	PaymentType          string          `db:"payment_type"`
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	Method               string          `db:"method"`
	Reference            string          `db:"reference"`
	Notes                string          `db:"notes"`
	WithholdingTaxRate   decimal.Decimal `db:"withholding_tax_rate"`
	WithholdingTaxAmount decimal.Decimal `db:"withholding_tax_amount"`
	PaidAt               time.Time       `db:"paid_at"`
	Status               string          `db:"status"`
	ReversedPaymentID    *string         `db:"reversed_payment_id"`
	AuditFields
}

// PaymentAllocation assigns part of a payment to one document.
type PaymentAllocation struct {
	AllocationID    string          `db:"allocation_id"`
	PaymentID       string          `db:"payment_id"`
	DocumentID      string          `db:"document_id"`
	AllocatedAmount decimal.Decimal `db:"allocated_amount"`
	AuditFields
}
