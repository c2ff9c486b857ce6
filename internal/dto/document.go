package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one billable line in a create/update request.
type LineItemRequest struct {
	Name            string          `json:"name" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// BillingAdjustmentRequest is one document-level tax or discount line.
// Negative values are discounts, non-negative values are taxes.
type BillingAdjustmentRequest struct {
	Name  string                `json:"name" binding:"required"`
	Type  domain.AdjustmentType `json:"type" binding:"required,oneof=FIXED PERCENTAGE"`
	Value decimal.Decimal       `json:"value" binding:"required"`
}

// CreateDocumentRequest defines the data needed to create a financial document.
type CreateDocumentRequest struct {
	Kind         domain.DocumentKind        `json:"kind" binding:"required,oneof=INVOICE CREDIT_NOTE DEBIT_NOTE QUOTATION BILL"`
	ContactID    string                     `json:"contactID" binding:"required"`
	CurrencyCode string                     `json:"currencyCode" binding:"required"`
	Prefix       string                     `json:"prefix"`
	IssueDate    time.Time                  `json:"issueDate" binding:"required"`
	DueDate      *time.Time                 `json:"dueDate"`
	Notes        string                     `json:"notes"`
	Metadata     map[string]string          `json:"metadata"`
	Items        []LineItemRequest          `json:"items" binding:"required,min=1,dive"`
	Adjustments  []BillingAdjustmentRequest `json:"adjustments" binding:"dive"`
}

// UpdateDocumentRequest defines the data allowed for updating a document.
// Pointers distinguish omitted fields from zero values. Which fields are
// actually applied depends on the document's current status.
type UpdateDocumentRequest struct {
	ContactID   *string                    `json:"contactID"`
	IssueDate   *time.Time                 `json:"issueDate"`
	DueDate     *time.Time                 `json:"dueDate"`
	Notes       *string                    `json:"notes"`
	Metadata    map[string]string          `json:"metadata"`
	Status      *domain.DocumentStatus     `json:"status"`
	Items       []LineItemRequest          `json:"items" binding:"omitempty,dive"`
	Adjustments []BillingAdjustmentRequest `json:"adjustments" binding:"omitempty,dive"`
}

// SetDocumentStatusRequest requests a bare status transition.
type SetDocumentStatusRequest struct {
	Status domain.DocumentStatus `json:"status" binding:"required"`
}

// LineItemResponse is one line in a document response.
type LineItemResponse struct {
	LineItemID      string          `json:"lineItemID"`
	Name            string          `json:"name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Amount          decimal.Decimal `json:"amount"`
}

// BillingAdjustmentResponse is one adjustment in a document response.
type BillingAdjustmentResponse struct {
	AdjustmentID string                `json:"adjustmentID"`
	Name         string                `json:"name"`
	Type         domain.AdjustmentType `json:"type"`
	Value        decimal.Decimal       `json:"value"`
	Amount       decimal.Decimal       `json:"amount"`
}

// DocumentResponse defines the data returned for a financial document.
type DocumentResponse struct {
	DocumentID    string                      `json:"documentID"`
	Kind          domain.DocumentKind         `json:"kind"`
	Status        domain.DocumentStatus       `json:"status"`
	Number        string                      `json:"number"`
	ContactID     string                      `json:"contactID"`
	CurrencyCode  string                      `json:"currencyCode"`
	IssueDate     time.Time                   `json:"issueDate"`
	DueDate       *time.Time                  `json:"dueDate,omitempty"`
	Notes         string                      `json:"notes"`
	Metadata      map[string]string           `json:"metadata,omitempty"`
	Items         []LineItemResponse          `json:"items,omitempty"`
	Adjustments   []BillingAdjustmentResponse `json:"adjustments,omitempty"`
	Subtotal      decimal.Decimal             `json:"subtotal"`
	TaxTotal      decimal.Decimal             `json:"taxTotal"`
	DiscountTotal decimal.Decimal             `json:"discountTotal"`
	Total         decimal.Decimal             `json:"total"`
	AmountPaid    decimal.Decimal             `json:"amountPaid"`
	AmountDue     decimal.Decimal             `json:"amountDue"`
	SettledAt     *time.Time                  `json:"settledAt,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	CreatedBy     string                      `json:"createdBy"`
	LastUpdatedAt time.Time                   `json:"lastUpdatedAt"`
}

// ToDocumentResponse converts a domain.FinancialDocument to its DTO.
func ToDocumentResponse(d *domain.FinancialDocument) DocumentResponse {
	resp := DocumentResponse{
		DocumentID:    d.DocumentID,
		Kind:          d.Kind,
		Status:        d.Status,
		Number:        d.Number(),
		ContactID:     d.ContactID,
		CurrencyCode:  d.CurrencyCode,
		IssueDate:     d.IssueDate,
		DueDate:       d.DueDate,
		Notes:         d.Notes,
		Metadata:      d.Metadata,
		Subtotal:      d.Subtotal,
		TaxTotal:      d.TaxTotal,
		DiscountTotal: d.DiscountTotal,
		Total:         d.Total,
		AmountPaid:    d.AmountPaid,
		AmountDue:     d.AmountDue,
		SettledAt:     d.SettledAt,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			LineItemID:      item.LineItemID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Amount:          item.Amount,
		})
	}
	for _, adj := range d.Adjustments {
		resp.Adjustments = append(resp.Adjustments, BillingAdjustmentResponse{
			AdjustmentID: adj.AdjustmentID,
			Name:         adj.Name,
			Type:         adj.Type,
			Value:        adj.Value,
			Amount:       adj.Amount,
		})
	}
	return resp
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Kind      *domain.DocumentKind   `form:"kind"`
	Status    *domain.DocumentStatus `form:"status"`
	ContactID *string                `form:"contactID"`
	Limit     int                    `form:"limit,default=20"`
	NextToken *string                `form:"nextToken"`
}

// ListDocumentsResponse wraps a page of documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
