package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, workplaceID string, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its code within a workplace.
	FindAccountByCode(ctx context.Context, workplaceID string, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a given workplace.
	ListAccounts(ctx context.Context, workplaceID string, limit int, offset int) ([]domain.Account, error)

	// HasPostings reports whether any journal lines reference the account.
	HasPostings(ctx context.Context, accountID string) (bool, error)

	// HasChildren reports whether any account names this one as its parent.
	HasChildren(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// MoveAccountSubtree updates a re-parented account and rewrites the
	// materialized paths of all its descendants in one transaction.
	// oldPath is the account's path before the move.
	MoveAccountSubtree(ctx context.Context, account domain.Account, oldPath string) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, workplaceID string, accountID string, userID string, now time.Time) error

	// DeleteAccount removes an account that has no postings or children.
	DeleteAccount(ctx context.Context, workplaceID string, accountID string) error
}

// AccountTransactionSupport defines operations used inside enclosing
// transactions opened by other repositories.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas for multiple accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
