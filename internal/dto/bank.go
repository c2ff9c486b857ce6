package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ImportBankTransactionRequest is one row of a bank import.
type ImportBankTransactionRequest struct {
	TransactionDate time.Time                  `json:"transactionDate" binding:"required"`
	Amount          decimal.Decimal            `json:"amount" binding:"required"`
	Type            domain.BankTransactionType `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Description     string                     `json:"description" binding:"required"`
	Reference       string                     `json:"reference"`
	CurrencyCode    string                     `json:"currencyCode" binding:"required"`
}

// ImportBankTransactionsRequest imports a batch of transactions for one bank
// account. When AllowDuplicates is false (the default), rows flagged as
// duplicates are held back and returned for confirmation.
type ImportBankTransactionsRequest struct {
	BankAccountID   string                         `json:"bankAccountID" binding:"required"`
	Transactions    []ImportBankTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
	AllowDuplicates bool                           `json:"allowDuplicates"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID     string                     `json:"transactionID"`
	BankAccountID     string                     `json:"bankAccountID"`
	TransactionDate   time.Time                  `json:"transactionDate"`
	Amount            decimal.Decimal            `json:"amount"`
	Type              domain.BankTransactionType `json:"type"`
	Description       string                     `json:"description"`
	Reference         string                     `json:"reference"`
	CurrencyCode      string                     `json:"currencyCode"`
	MatchStatus       domain.MatchStatus         `json:"matchStatus"`
	MatchedDocumentID *string                    `json:"matchedDocumentID,omitempty"`
	MatchedContactID  *string                    `json:"matchedContactID,omitempty"`
	MatchedRuleID     *string                    `json:"matchedRuleID,omitempty"`
	Category          string                     `json:"category,omitempty"`
	MatchConfidence   float64                    `json:"matchConfidence"`
	IsReconciled      bool                       `json:"isReconciled"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its DTO.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID:     t.TransactionID,
		BankAccountID:     t.BankAccountID,
		TransactionDate:   t.TransactionDate,
		Amount:            t.Amount,
		Type:              t.Type,
		Description:       t.Description,
		Reference:         t.Reference,
		CurrencyCode:      t.CurrencyCode,
		MatchStatus:       t.MatchStatus,
		MatchedDocumentID: t.MatchedDocumentID,
		MatchedContactID:  t.MatchedContactID,
		MatchedRuleID:     t.MatchedRuleID,
		Category:          t.Category,
		MatchConfidence:   t.MatchConfidence,
		IsReconciled:      t.IsReconciled,
		CreatedAt:         t.CreatedAt,
	}
}

// DuplicateCandidateResponse pairs an incoming row with the existing
// transaction it appears to duplicate.
type DuplicateCandidateResponse struct {
	Incoming BankTransactionResponse `json:"incoming"`
	Existing BankTransactionResponse `json:"existing"`
}

// ToDuplicateCandidateResponse converts a suspected duplicate pair to its API shape.
func ToDuplicateCandidateResponse(c domain.DuplicateCandidate) DuplicateCandidateResponse {
	return DuplicateCandidateResponse{
		Incoming: ToBankTransactionResponse(&c.Incoming),
		Existing: ToBankTransactionResponse(&c.Existing),
	}
}

// ImportBankTransactionsResponse reports what the import did.
type ImportBankTransactionsResponse struct {
	Imported   []BankTransactionResponse    `json:"imported"`
	Duplicates []DuplicateCandidateResponse `json:"duplicates"`
}

// CreateMatchingRuleRequest defines a user-defined matching rule.
type CreateMatchingRuleRequest struct {
	Name                string                      `json:"name" binding:"required"`
	Priority            int                         `json:"priority"`
	DescriptionContains []string                    `json:"descriptionContains"`
	MinAmount           *decimal.Decimal            `json:"minAmount"`
	MaxAmount           *decimal.Decimal            `json:"maxAmount"`
	Direction           *domain.BankTransactionType `json:"direction" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	LinkContactID       *string                     `json:"linkContactID"`
	Category            string                      `json:"category"`
}

// MatchingRuleResponse defines the data returned for a matching rule.
type MatchingRuleResponse struct {
	RuleID              string                      `json:"ruleID"`
	Name                string                      `json:"name"`
	Priority            int                         `json:"priority"`
	DescriptionContains []string                    `json:"descriptionContains"`
	MinAmount           *decimal.Decimal            `json:"minAmount,omitempty"`
	MaxAmount           *decimal.Decimal            `json:"maxAmount,omitempty"`
	Direction           *domain.BankTransactionType `json:"direction,omitempty"`
	LinkContactID       *string                     `json:"linkContactID,omitempty"`
	Category            string                      `json:"category,omitempty"`
	IsActive            bool                        `json:"isActive"`
	CreatedAt           time.Time                   `json:"createdAt"`
}

// ToMatchingRuleResponse converts a domain.MatchingRule to its DTO.
func ToMatchingRuleResponse(r *domain.MatchingRule) MatchingRuleResponse {
	return MatchingRuleResponse{
		RuleID:              r.RuleID,
		Name:                r.Name,
		Priority:            r.Priority,
		DescriptionContains: r.DescriptionContains,
		MinAmount:           r.MinAmount,
		MaxAmount:           r.MaxAmount,
		Direction:           r.Direction,
		LinkContactID:       r.LinkContactID,
		Category:            r.Category,
		IsActive:            r.IsActive,
		CreatedAt:           r.CreatedAt,
	}
}

// SetMatchStatusRequest requests a match-status transition for a transaction.
type SetMatchStatusRequest struct {
	Status            domain.MatchStatus `json:"status" binding:"required,oneof=UNMATCHED SUGGESTED MATCHED EXCLUDED"`
	MatchedDocumentID *string            `json:"matchedDocumentID"`
	MatchedContactID  *string            `json:"matchedContactID"`
}

// ListBankTransactionsParams defines query parameters for listing.
type ListBankTransactionsParams struct {
	BankAccountID string              `form:"bankAccountID"`
	Status        *domain.MatchStatus `form:"status"`
	Limit         int                 `form:"limit,default=20"`
	NextToken     *string             `form:"nextToken"`
}

// ListBankTransactionsResponse wraps a page of bank transactions.
type ListBankTransactionsResponse struct {
	Transactions []BankTransactionResponse `json:"transactions"`
	NextToken    *string                   `json:"nextToken,omitempty"`
}
