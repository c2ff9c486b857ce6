package mapping

import (
	"encoding/json"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelDocument converts a domain FinancialDocument to its row shape.
// Metadata is marshalled to JSON for the JSONB column; a marshal failure is
// impossible for map[string]string and is ignored.
func ToModelDocument(d domain.FinancialDocument) models.FinancialDocument {
	var metadata []byte
	if len(d.Metadata) > 0 {
		metadata, _ = json.Marshal(d.Metadata)
	}
	return models.FinancialDocument{
		DocumentID:    d.DocumentID,
		WorkplaceID:   d.WorkplaceID,
		Kind:          string(d.Kind),
		Status:        string(d.Status),
		ContactID:     d.ContactID,
		CurrencyCode:  d.CurrencyCode,
		Prefix:        d.Prefix,
		SerialNumber:  d.SerialNumber,
		IssueDate:     d.IssueDate,
		DueDate:       d.DueDate,
		Notes:         d.Notes,
		Metadata:      metadata,
		Subtotal:      d.Subtotal,
		TaxTotal:      d.TaxTotal,
		DiscountTotal: d.DiscountTotal,
		Total:         d.Total,
		AmountPaid:    d.AmountPaid,
		AmountDue:     d.AmountDue,
		SettledAt:     d.SettledAt,
		DeletedAt:     d.DeletedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a document row back to the domain shape. Items
// and adjustments are loaded separately.
func ToDomainDocument(m models.FinancialDocument) domain.FinancialDocument {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}
	return domain.FinancialDocument{
		DocumentID:   m.DocumentID,
		WorkplaceID:  m.WorkplaceID,
		Kind:         domain.DocumentKind(m.Kind),
		Status:       domain.DocumentStatus(m.Status),
		ContactID:    m.ContactID,
		CurrencyCode: m.CurrencyCode,
		Prefix:       m.Prefix,
		SerialNumber: m.SerialNumber,
		IssueDate:    m.IssueDate,
		DueDate:      m.DueDate,
		Notes:        m.Notes,
		Metadata:     metadata,
		DocumentTotals: domain.DocumentTotals{
			Subtotal:      m.Subtotal,
			TaxTotal:      m.TaxTotal,
			DiscountTotal: m.DiscountTotal,
			Total:         m.Total,
			AmountPaid:    m.AmountPaid,
			AmountDue:     m.AmountDue,
		},
		SettledAt:   m.SettledAt,
		DeletedAt:   m.DeletedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to its row shape.
func ToModelLineItem(d domain.LineItem, documentID string, position int) models.LineItem {
	return models.LineItem{
		LineItemID:      d.LineItemID,
		DocumentID:      documentID,
		Name:            d.Name,
		Quantity:        d.Quantity,
		UnitPrice:       d.UnitPrice,
		DiscountPercent: d.DiscountPercent,
		Amount:          d.Amount,
		Position:        position,
	}
}

// ToDomainLineItem converts a line item row to the domain shape.
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:      m.LineItemID,
		Name:            m.Name,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		Amount:          m.Amount,
	}
}

// ToModelAdjustment converts a domain BillingAdjustment to its row shape.
func ToModelAdjustment(d domain.BillingAdjustment, documentID string, position int) models.BillingAdjustment {
	return models.BillingAdjustment{
		AdjustmentID: d.AdjustmentID,
		DocumentID:   documentID,
		Name:         d.Name,
		Type:         string(d.Type),
		Value:        d.Value,
		Amount:       d.Amount,
		Position:     position,
	}
}

// ToDomainAdjustment converts an adjustment row to the domain shape.
func ToDomainAdjustment(m models.BillingAdjustment) domain.BillingAdjustment {
	return domain.BillingAdjustment{
		AdjustmentID: m.AdjustmentID,
		Name:         m.Name,
		Type:         domain.AdjustmentType(m.Type),
		Value:        m.Value,
		Amount:       m.Amount,
	}
}
