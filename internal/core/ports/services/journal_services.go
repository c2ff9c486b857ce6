package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntryByID retrieves a specific journal entry with its lines.
	GetEntryByID(ctx context.Context, workplaceID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries in a workplace.
	ListEntries(ctx context.Context, workplaceID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)

	// ListLinesByAccount retrieves posted lines touching a specific account.
	ListLinesByAccount(ctx context.Context, workplaceID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalWriterSvc defines write operations for journal entries
type JournalWriterSvc interface {
	// PostEntry validates and posts a balanced journal entry, updating the
	// balance cache of every touched account in the same transaction.
	PostEntry(ctx context.Context, workplaceID string, req dto.PostJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts an offsetting entry for a posted entry
	// and links the two. Reversing an already reversed entry fails.
	ReverseEntry(ctx context.Context, workplaceID string, entryID string, userID string) (*domain.JournalEntry, error)
}

// BalanceReaderSvc defines read operations for the period balance cache
type BalanceReaderSvc interface {
	// GetAccountBalance retrieves the cached balance of an account for a period.
	GetAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error)

	// RecomputeAccountBalance rebuilds a cached period balance from the
	// underlying journal lines and returns the fresh value.
	RecomputeAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	BalanceReaderSvc
}
