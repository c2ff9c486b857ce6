package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes the financial document variants. They share
// structure; each kind supplies its own transition table (see lifecycle.go).
type DocumentKind string

const (
	KindInvoice    DocumentKind = "INVOICE"
	KindCreditNote DocumentKind = "CREDIT_NOTE"
	KindDebitNote  DocumentKind = "DEBIT_NOTE"
	KindQuotation  DocumentKind = "QUOTATION"
	KindBill       DocumentKind = "BILL"
)

// DocumentStatus is the shared status vocabulary across document kinds.
// Which statuses apply to which kind is defined by the transition tables.
type DocumentStatus string

const (
	DocDraft         DocumentStatus = "DRAFT"
	DocOpen          DocumentStatus = "OPEN"
	DocPaid          DocumentStatus = "PAID"
	DocVoid          DocumentStatus = "VOID"
	DocUncollectible DocumentStatus = "UNCOLLECTIBLE"
	DocRefunded      DocumentStatus = "REFUNDED"
	DocOverdue       DocumentStatus = "OVERDUE"
	DocSettled       DocumentStatus = "SETTLED"
	DocSent          DocumentStatus = "SENT"
	DocAccepted      DocumentStatus = "ACCEPTED"
	DocRejected      DocumentStatus = "REJECTED"
	DocExpired       DocumentStatus = "EXPIRED"
	DocConverted     DocumentStatus = "CONVERTED"
)

// LineItem is one billable line of a financial document.
type LineItem struct {
	LineItemID      string          `json:"lineItemID"`
	Name            string          `json:"name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"` // per-line discount, 0 = none
	Amount          decimal.Decimal `json:"amount"`          // derived: qty * price less line discount
}

// AdjustmentType distinguishes fixed-amount from percentage adjustments.
type AdjustmentType string

const (
	AdjustmentFixed      AdjustmentType = "FIXED"
	AdjustmentPercentage AdjustmentType = "PERCENTAGE"
)

// BillingAdjustment is a document-level tax or discount line. The sign of
// Value distinguishes the two: non-negative values accumulate into the tax
// total, negative values (by absolute value) into the discount total.
type BillingAdjustment struct {
	AdjustmentID string          `json:"adjustmentID"`
	Name         string          `json:"name"`
	Type         AdjustmentType  `json:"type"`
	Value        decimal.Decimal `json:"value"`
	Amount       decimal.Decimal `json:"amount"` // derived absolute amount
}

// DocumentTotals holds the derived monetary totals of a document.
// Invariants: Total = Subtotal + TaxTotal - DiscountTotal;
// AmountDue = max(Total - AmountPaid, 0).
type DocumentTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"taxTotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	AmountDue     decimal.Decimal `json:"amountDue"`
}

// FinancialDocument is the generalization of invoice, credit note, debit
// note, quotation and bill. Kind determines the transition table and the
// field-mutability policy; everything else is shared.
type FinancialDocument struct {
	DocumentID   string         `json:"documentID"`
	WorkplaceID  string         `json:"workplaceID"`
	Kind         DocumentKind   `json:"kind"`
	Status       DocumentStatus `json:"status"`
	ContactID    string         `json:"contactID"` // customer or vendor reference
	CurrencyCode string         `json:"currencyCode"`
	Prefix       string         `json:"prefix"`
	SerialNumber string         `json:"serialNumber"` // numeric within (workplace, prefix) scope
	IssueDate    time.Time      `json:"issueDate"`
	DueDate      *time.Time     `json:"dueDate,omitempty"`
	Notes        string         `json:"notes"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Items        []LineItem          `json:"items,omitempty"`
	Adjustments  []BillingAdjustment `json:"adjustments,omitempty"`
	DocumentTotals
	SettledAt *time.Time `json:"settledAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // soft-delete tombstone
	AuditFields
}

// Number returns the display identity of the document, e.g. "INV-1042".
func (d FinancialDocument) Number() string {
	if d.Prefix == "" {
		return d.SerialNumber
	}
	return d.Prefix + "-" + d.SerialNumber
}
