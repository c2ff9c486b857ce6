package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for chart-of-accounts data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, workplaceID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves accounts in a workplace, optionally filtered by type.
	ListAccounts(ctx context.Context, workplaceID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)
}

// AccountWriterSvc defines write operations for chart-of-accounts data
type AccountWriterSvc interface {
	// CreateAccount persists a new account, deriving its normal balance from
	// the account type when not supplied.
	CreateAccount(ctx context.Context, workplaceID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates mutable account details.
	UpdateAccount(ctx context.Context, workplaceID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive. Accounts with postings or
	// child accounts, and system accounts, cannot be deactivated.
	DeactivateAccount(ctx context.Context, workplaceID string, accountID string, requestingUserID string) error

	// DeleteAccount removes an account outright. System accounts can never be
	// deleted, and accounts with postings or children are refused.
	DeleteAccount(ctx context.Context, workplaceID string, accountID string, requestingUserID string) error
}

// AccountCalculatorSvc defines balance calculations for accounts
type AccountCalculatorSvc interface {
	// CalculateAccountBalance computes the current balance of an account from
	// its posted journal lines.
	CalculateAccountBalance(ctx context.Context, workplaceID string, accountID string) (decimal.Decimal, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
