package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialDocument is the shared row shape of invoices, credit notes, debit
// notes, quotations and bills. Metadata is stored as a JSONB column.
type FinancialDocument struct {
	DocumentID    string          `db:"document_id"`
	WorkplaceID   string          `db:"workplace_id"`
	Kind          string          `db:"kind"`
	Status        string          `db:"status"`
	ContactID     string          `db:"contact_id"`
	CurrencyCode  string          `db:"currency_code"`
	Prefix        string          `db:"prefix"`
	SerialNumber  string          `db:"serial_number"`
	IssueDate     time.Time       `db:"issue_date"`
	DueDate       *time.Time      `db:"due_date"`
	Notes         string          `db:"notes"`
	Metadata      []byte          `db:"metadata"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	TaxTotal      decimal.Decimal `db:"tax_total"`
	DiscountTotal decimal.Decimal `db:"discount_total"`
	Total         decimal.Decimal `db:"total"`
	AmountPaid    decimal.Decimal `db:"amount_paid"`
	AmountDue     decimal.Decimal `db:"amount_due"`
	SettledAt     *time.Time      `db:"settled_at"`
	DeletedAt     *time.Time      `db:"deleted_at"`
	AuditFields
}

// LineItem is one billable row of a document.
type LineItem struct {
	LineItemID      string          `db:"line_item_id"`
	DocumentID      string          `db:"document_id"`
	Name            string          `db:"name"`
	Quantity        decimal.Decimal `db:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	Amount          decimal.Decimal `db:"amount"`
	Position        int             `db:"position"`
}

// BillingAdjustment is one document-level tax or discount row.
type BillingAdjustment struct {
	AdjustmentID string          `db:"adjustment_id"`
	DocumentID   string          `db:"document_id"`
	Name         string          `db:"name"`
	Type         string          `db:"type"`
	Value        decimal.Decimal `db:"value"`
	Amount       decimal.Decimal `db:"amount"`
	Position     int             `db:"position"`
}
