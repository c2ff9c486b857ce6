package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// BankTransactionReader defines read operations for imported bank transactions.
type BankTransactionReader interface {
	// FindTransactionByID retrieves a single bank transaction.
	FindTransactionByID(ctx context.Context, workplaceID string, transactionID string) (*domain.BankTransaction, error)

	// FindNearbyTransactions retrieves transactions on the same bank account
	// whose date falls within the window around the given date. Used by
	// duplicate detection.
	FindNearbyTransactions(ctx context.Context, workplaceID string, bankAccountID string, date time.Time, window time.Duration) ([]domain.BankTransaction, error)

	// ListTransactions retrieves a paginated, optionally status-filtered list.
	ListTransactions(ctx context.Context, workplaceID string, bankAccountID string, status *domain.MatchStatus, limit int, nextToken *string) ([]domain.BankTransaction, *string, error)

	// ListUnmatched retrieves all unmatched transactions of a workplace,
	// oldest first, for rule application.
	ListUnmatched(ctx context.Context, workplaceID string) ([]domain.BankTransaction, error)
}

// BankTransactionWriter defines write operations for bank transactions.
type BankTransactionWriter interface {
	// SaveTransactions bulk-inserts imported transactions in one transaction.
	SaveTransactions(ctx context.Context, transactions []domain.BankTransaction) error

	// UpdateMatch persists the matching fields of one transaction
	// (match status, links, confidence, category, reconciliation flag).
	UpdateMatch(ctx context.Context, txn domain.BankTransaction) error
}

// MatchingRuleRepository defines persistence for user-defined matching rules.
type MatchingRuleRepository interface {
	// SaveRule persists a new matching rule.
	SaveRule(ctx context.Context, rule domain.MatchingRule) error

	// ListRules retrieves the active rules of a workplace ordered by priority
	// descending, then creation time ascending.
	ListRules(ctx context.Context, workplaceID string) ([]domain.MatchingRule, error)

	// DeactivateRule marks a rule inactive.
	DeactivateRule(ctx context.Context, workplaceID string, ruleID string, userID string, now time.Time) error
}

// BankRepositoryFacade combines all bank-matching repository interfaces.
type BankRepositoryFacade interface {
	BankTransactionReader
	BankTransactionWriter
	MatchingRuleRepository
}
