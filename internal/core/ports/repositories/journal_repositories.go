package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal entry data.
type JournalReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, workplaceID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries for a workplace
	// using token-based pagination.
	ListEntries(ctx context.Context, workplaceID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entry data.
type JournalWriter interface {
	// SaveEntry persists an entry and its lines, updating cached account and
	// monthly balances, all within one transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error

	// SaveEntryInTx persists an entry inside an enclosing transaction owned by
	// the caller (used when a payment posts its ledger entry atomically).
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error

	// UpdateEntryStatusAndLinks updates the status and reversal linkage of an entry.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, updatedByUserID string, updatedAt time.Time) error
}

// JournalLineReader defines read operations for journal line data.
type JournalLineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListLinesByAccountID retrieves a paginated list of lines for an account.
	ListLinesByAccountID(ctx context.Context, workplaceID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// BalanceReader defines read operations over the cached monthly balances.
type BalanceReader interface {
	// FindAccountBalance retrieves the cached balance row for (account, year, month).
	FindAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error)

	// RecomputeAccountBalance re-derives the (account, year, month) aggregate
	// from the line history. The cache is a projection; this is the proof.
	RecomputeAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalLineReader
	BalanceReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
