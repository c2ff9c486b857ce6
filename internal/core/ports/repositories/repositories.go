package repositories

import (
	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo  AccountRepositoryWithTx
	JournalRepo  JournalRepositoryWithTx
	PeriodRepo   PeriodRepositoryFacade
	DocumentRepo DocumentRepositoryWithTx
	PaymentRepo  PaymentRepositoryWithTx
	BankRepo     BankRepositoryFacade
	ActivityRepo ActivityRepositoryFacade
}

// LedgerPosting bundles a journal entry with its lines and the resulting
// per-account balance deltas, so a repository can post it inside an
// enclosing transaction (e.g. together with a payment).
type LedgerPosting struct {
	Entry          domain.JournalEntry
	Lines          []domain.JournalLine
	BalanceChanges map[string]decimal.Decimal
}
