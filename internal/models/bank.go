package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is an imported bank feed row.
type BankTransaction struct {
	TransactionID     string          `db:"transaction_id"`
	WorkplaceID       string          `db:"workplace_id"`
	BankAccountID     string          `db:"bank_account_id"`
	TransactionDate   time.Time       `db:"transaction_date"`
	Amount            decimal.Decimal `db:"amount"`
	Type              string          `db:"type"`
	Description       string          `db:"description"`
	Reference         string          `db:"reference"`
	CurrencyCode      string          `db:"currency_code"`
	MatchStatus       string          `db:"match_status"`
	MatchedDocumentID *string         `db:"matched_document_id"`
	MatchedContactID  *string         `db:"matched_contact_id"`
	MatchedRuleID     *string         `db:"matched_rule_id"`
	Category          string          `db:"category"`
	MatchConfidence   float64         `db:"match_confidence"`
	IsReconciled      bool            `db:"is_reconciled"`
	AuditFields
}

// MatchingRule is a stored auto-match rule. DescriptionContains is stored as
// a text array column.
type MatchingRule struct {
	RuleID              string           `db:"rule_id"`
	WorkplaceID         string           `db:"workplace_id"`
	Name                string           `db:"name"`
	Priority            int              `db:"priority"`
	DescriptionContains []string         `db:"description_contains"`
	MinAmount           *decimal.Decimal `db:"min_amount"`
	MaxAmount           *decimal.Decimal `db:"max_amount"`
	Direction           *string          `db:"direction"`
	LinkContactID       *string          `db:"link_contact_id"`
	Category            string           `db:"category"`
	IsActive            bool             `db:"is_active"`
	AuditFields
}

// Activity is one append-only audit record. Diff is stored as JSONB.
type Activity struct {
	ActivityID  string    `db:"activity_id"`
	WorkplaceID string    `db:"workplace_id"`
	Entity      string    `db:"entity"`
	EntityID    string    `db:"entity_id"`
	Action      string    `db:"action"`
	Description string    `db:"description"`
	Diff        []byte    `db:"diff"`
	CreatedAt   time.Time `db:"created_at"`
	CreatedBy   string    `db:"created_by"`
}
