package mapping

import (
	"encoding/json"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelBankTransaction converts a domain BankTransaction to its row shape.
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID:     d.TransactionID,
		WorkplaceID:       d.WorkplaceID,
		BankAccountID:     d.BankAccountID,
		TransactionDate:   d.TransactionDate,
		Amount:            d.Amount,
		Type:              string(d.Type),
		Description:       d.Description,
		Reference:         d.Reference,
		CurrencyCode:      d.CurrencyCode,
		MatchStatus:       string(d.MatchStatus),
		MatchedDocumentID: d.MatchedDocumentID,
		MatchedContactID:  d.MatchedContactID,
		MatchedRuleID:     d.MatchedRuleID,
		Category:          d.Category,
		MatchConfidence:   d.MatchConfidence,
		IsReconciled:      d.IsReconciled,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankTransaction converts a bank transaction row to the domain shape.
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID:     m.TransactionID,
		WorkplaceID:       m.WorkplaceID,
		BankAccountID:     m.BankAccountID,
		TransactionDate:   m.TransactionDate,
		Amount:            m.Amount,
		Type:              domain.BankTransactionType(m.Type),
		Description:       m.Description,
		Reference:         m.Reference,
		CurrencyCode:      m.CurrencyCode,
		MatchStatus:       domain.MatchStatus(m.MatchStatus),
		MatchedDocumentID: m.MatchedDocumentID,
		MatchedContactID:  m.MatchedContactID,
		MatchedRuleID:     m.MatchedRuleID,
		Category:          m.Category,
		MatchConfidence:   m.MatchConfidence,
		IsReconciled:      m.IsReconciled,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBankTransactionSlice converts bank transaction rows to domain shapes.
func ToDomainBankTransactionSlice(ms []models.BankTransaction) []domain.BankTransaction {
	ds := make([]domain.BankTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBankTransaction(m)
	}
	return ds
}

// ToModelMatchingRule converts a domain MatchingRule to its row shape.
func ToModelMatchingRule(d domain.MatchingRule) models.MatchingRule {
	var direction *string
	if d.Direction != nil {
		s := string(*d.Direction)
		direction = &s
	}
	return models.MatchingRule{
		RuleID:              d.RuleID,
		WorkplaceID:         d.WorkplaceID,
		Name:                d.Name,
		Priority:            d.Priority,
		DescriptionContains: d.DescriptionContains,
		MinAmount:           d.MinAmount,
		MaxAmount:           d.MaxAmount,
		Direction:           direction,
		LinkContactID:       d.LinkContactID,
		Category:            d.Category,
		IsActive:            d.IsActive,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMatchingRule converts a matching rule row to the domain shape.
func ToDomainMatchingRule(m models.MatchingRule) domain.MatchingRule {
	var direction *domain.BankTransactionType
	if m.Direction != nil {
		t := domain.BankTransactionType(*m.Direction)
		direction = &t
	}
	return domain.MatchingRule{
		RuleID:              m.RuleID,
		WorkplaceID:         m.WorkplaceID,
		Name:                m.Name,
		Priority:            m.Priority,
		DescriptionContains: m.DescriptionContains,
		MinAmount:           m.MinAmount,
		MaxAmount:           m.MaxAmount,
		Direction:           direction,
		LinkContactID:       m.LinkContactID,
		Category:            m.Category,
		IsActive:            m.IsActive,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMatchingRuleSlice converts matching rule rows to domain shapes.
func ToDomainMatchingRuleSlice(ms []models.MatchingRule) []domain.MatchingRule {
	ds := make([]domain.MatchingRule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMatchingRule(m)
	}
	return ds
}

// ToModelActivity converts a domain Activity to its row shape, marshalling
// the structured diff into JSON for the JSONB column.
func ToModelActivity(d domain.Activity) models.Activity {
	var diff []byte
	if len(d.Diff) > 0 {
		diff, _ = json.Marshal(d.Diff)
	}
	return models.Activity{
		ActivityID:  d.ActivityID,
		WorkplaceID: d.WorkplaceID,
		Entity:      string(d.Entity),
		EntityID:    d.EntityID,
		Action:      d.Action,
		Description: d.Description,
		Diff:        diff,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainActivity converts an activity row to the domain shape.
func ToDomainActivity(m models.Activity) domain.Activity {
	var diff map[string]domain.FieldChange
	if len(m.Diff) > 0 {
		_ = json.Unmarshal(m.Diff, &diff)
	}
	return domain.Activity{
		ActivityID:  m.ActivityID,
		WorkplaceID: m.WorkplaceID,
		Entity:      domain.ActivityEntity(m.Entity),
		EntityID:    m.EntityID,
		Action:      m.Action,
		Description: m.Description,
		Diff:        diff,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}
