package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransactionType distinguishes inflows from outflows.
type BankTransactionType string

const (
	Deposit    BankTransactionType = "DEPOSIT"
	Withdrawal BankTransactionType = "WITHDRAWAL"
)

// MatchStatus tracks a bank transaction through the reconciliation workflow.
// unmatched -> {suggested, matched, excluded}; suggested -> {matched,
// excluded, unmatched}; matched/excluded are stable until explicitly reset.
type MatchStatus string

const (
	MatchUnmatched MatchStatus = "UNMATCHED"
	MatchSuggested MatchStatus = "SUGGESTED"
	MatchMatched   MatchStatus = "MATCHED"
	MatchExcluded  MatchStatus = "EXCLUDED"
)

var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchUnmatched: {MatchSuggested, MatchMatched, MatchExcluded},
	MatchSuggested: {MatchMatched, MatchExcluded, MatchUnmatched},
	MatchMatched:   {},
	MatchExcluded:  {},
}

// CanTransitionMatch reports whether a match status change is legal.
// Same-status transitions are a no-op. Leaving MATCHED or EXCLUDED requires
// an explicit reset, not a regular transition.
func CanTransitionMatch(from, to MatchStatus) bool {
	if from == to {
		return true
	}
	for _, next := range matchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextMatchStatuses returns the legal next statuses from the given one.
func NextMatchStatuses(from MatchStatus) []MatchStatus {
	return matchTransitions[from]
}

// BankTransaction is an externally sourced cash movement imported from a bank
// feed or statement. Rows are created in bulk on import and mutated only by
// the matching workflow.
type BankTransaction struct {
	TransactionID   string              `json:"transactionID"`
	WorkplaceID     string              `json:"workplaceID"`
	BankAccountID   string              `json:"bankAccountID"`
	TransactionDate time.Time           `json:"transactionDate"`
	Amount          decimal.Decimal     `json:"amount"`
	Type            BankTransactionType `json:"type"`
	Description     string              `json:"description"`
	Reference       string              `json:"reference"`
	CurrencyCode    string              `json:"currencyCode"`
	MatchStatus     MatchStatus         `json:"matchStatus"`
	MatchedDocumentID *string           `json:"matchedDocumentID,omitempty"`
	MatchedContactID  *string           `json:"matchedContactID,omitempty"`
	MatchedRuleID     *string           `json:"matchedRuleID,omitempty"`
	Category          string            `json:"category,omitempty"`
	MatchConfidence   float64           `json:"matchConfidence"`
	// IsReconciled is additive to MatchStatus and may only be set once the
	// transaction is MATCHED.
	IsReconciled bool `json:"isReconciled"`
	AuditFields
}

// MatchingRule is a user-defined rule that suggests a match for unmatched
// transactions. Rules are evaluated ordered by Priority descending, ties
// broken by creation order; the first rule whose conditions all hold wins.
type MatchingRule struct {
	RuleID      string `json:"ruleID"`
	WorkplaceID string `json:"workplaceID"`
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	// Conditions; zero values mean "no constraint".
	DescriptionContains []string             `json:"descriptionContains"`
	MinAmount           *decimal.Decimal     `json:"minAmount,omitempty"`
	MaxAmount           *decimal.Decimal     `json:"maxAmount,omitempty"`
	Direction           *BankTransactionType `json:"direction,omitempty"`
	// Action: link to a contact and/or categorize.
	LinkContactID *string `json:"linkContactID,omitempty"`
	Category      string  `json:"category,omitempty"`
	IsActive      bool    `json:"isActive"`
	AuditFields
}

// DuplicateCandidate pairs an incoming transaction with the first existing
// transaction it appears to duplicate. Candidates are surfaced to the caller
// for confirmation, never silently dropped or silently imported.
type DuplicateCandidate struct {
	Incoming BankTransaction `json:"incoming"`
	Existing BankTransaction `json:"existing"`
}
