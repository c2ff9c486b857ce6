package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// BankReaderSvc defines read operations for bank transactions
type BankReaderSvc interface {
	// GetTransactionByID retrieves a specific bank transaction.
	GetTransactionByID(ctx context.Context, workplaceID string, transactionID string) (*domain.BankTransaction, error)

	// ListTransactions retrieves a paginated list of bank transactions.
	ListTransactions(ctx context.Context, workplaceID string, params dto.ListBankTransactionsParams) (*dto.ListBankTransactionsResponse, error)

	// ListRules retrieves the active matching rules ordered by priority.
	ListRules(ctx context.Context, workplaceID string) ([]domain.MatchingRule, error)
}

// BankImporterSvc defines the bank feed import operation
type BankImporterSvc interface {
	// ImportTransactions imports a batch of transactions, screening each row
	// against existing transactions for likely duplicates. Suspected
	// duplicates are returned unimported unless the request forces them in.
	ImportTransactions(ctx context.Context, workplaceID string, req dto.ImportBankTransactionsRequest, userID string) (*dto.ImportBankTransactionsResponse, error)
}

// BankMatcherSvc defines the reconciliation workflow operations
type BankMatcherSvc interface {
	// SuggestMatches runs the active rules over unmatched transactions and
	// marks the hits SUGGESTED. Returns the transactions that changed.
	SuggestMatches(ctx context.Context, workplaceID string, bankAccountID string, userID string) ([]domain.BankTransaction, error)

	// SetMatchStatus transitions a transaction's match status, recording the
	// matched document or contact when confirming a match.
	SetMatchStatus(ctx context.Context, workplaceID string, transactionID string, req dto.SetMatchStatusRequest, userID string) (*domain.BankTransaction, error)

	// ResetMatch returns a matched or excluded transaction to UNMATCHED,
	// clearing its match fields. Reconciled transactions cannot be reset.
	ResetMatch(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.BankTransaction, error)

	// ReconcileTransaction flags a MATCHED transaction as reconciled against
	// the bank statement.
	ReconcileTransaction(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.BankTransaction, error)

	// ConvertToPayment records a payment from a matched bank transaction and
	// allocates it to the matched document.
	ConvertToPayment(ctx context.Context, workplaceID string, transactionID string, userID string) (*domain.Payment, error)
}

// BankRuleWriterSvc defines write operations for matching rules
type BankRuleWriterSvc interface {
	// CreateRule persists a new matching rule.
	CreateRule(ctx context.Context, workplaceID string, req dto.CreateMatchingRuleRequest, creatorUserID string) (*domain.MatchingRule, error)

	// DeactivateRule disables a rule without deleting its match history.
	DeactivateRule(ctx context.Context, workplaceID string, ruleID string, userID string) error
}

// BankSvcFacade combines all bank-reconciliation service interfaces
type BankSvcFacade interface {
	BankReaderSvc
	BankImporterSvc
	BankMatcherSvc
	BankRuleWriterSvc
}
