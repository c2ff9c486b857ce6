package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

var (
	ErrAccountInactive   = errors.New("account is inactive")
	ErrAccountHasEntries = errors.New("account has posted journal lines")
	ErrAccountHasChilds  = errors.New("account has child accounts")
	ErrSystemAccount     = errors.New("system accounts cannot be modified")
	ErrParentCycle       = errors.New("account cannot be its own ancestor")
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new account. The normal balance side is derived
// from the account type and the materialized path from the parent chain.
func (s *accountService) CreateAccount(ctx context.Context, workplaceID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	normalBalance, ok := domain.NormalBalanceFor(req.AccountType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, req.AccountType)
	}
	if !domain.IsValidSubType(req.AccountType, req.SubType) {
		return nil, fmt.Errorf("%w: sub type %s is not valid for account type %s", apperrors.ErrValidation, req.SubType, req.AccountType)
	}

	// Codes are unique within a workplace
	existing, err := s.accountRepo.FindAccountByCode(ctx, workplaceID, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s already in use", apperrors.ErrDuplicate, req.Code)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		WorkplaceID:   workplaceID,
		Code:          req.Code,
		Name:          req.Name,
		AccountType:   req.AccountType,
		SubType:       req.SubType,
		NormalBalance: normalBalance,
		CurrencyCode:  req.CurrencyCode,
		Description:   req.Description,
		IsHeader:      req.IsHeader,
		IsActive:      true,
		Balance:       decimal.Zero,
		Path:          req.Code,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, workplaceID, *req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to find parent account %s: %w", *req.ParentAccountID, err)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("%w: parent account type %s does not match %s", apperrors.ErrValidation, parent.AccountType, req.AccountType)
		}
		account.ParentAccountID = parent.AccountID
		account.Path = parent.Path + "/" + req.Code
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, workplaceID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves accounts in a workplace.
func (s *accountService) ListAccounts(ctx context.Context, workplaceID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, workplaceID, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return &dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)}, nil
}

// UpdateAccount updates mutable account details. Re-parenting validates that
// the new parent is not the account itself or one of its descendants.
func (s *accountService) UpdateAccount(ctx context.Context, workplaceID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsSystemAccount {
		return nil, fmt.Errorf("%w: account %s", ErrSystemAccount, accountID)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.SubType != nil {
		if !domain.IsValidSubType(account.AccountType, *req.SubType) {
			return nil, fmt.Errorf("%w: sub type %s is not valid for account type %s", apperrors.ErrValidation, *req.SubType, account.AccountType)
		}
		account.SubType = *req.SubType
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	oldPath := account.Path
	if req.ParentAccountID != nil && *req.ParentAccountID != account.ParentAccountID {
		if *req.ParentAccountID == "" {
			account.ParentAccountID = ""
			account.Path = account.Code
		} else {
			if *req.ParentAccountID == accountID {
				return nil, fmt.Errorf("%w: %s", ErrParentCycle, accountID)
			}
			parent, err := s.accountRepo.FindAccountByID(ctx, workplaceID, *req.ParentAccountID)
			if err != nil {
				return nil, fmt.Errorf("failed to find parent account %s: %w", *req.ParentAccountID, err)
			}
			if parent.AccountType != account.AccountType {
				return nil, fmt.Errorf("%w: parent account type %s does not match %s", apperrors.ErrValidation, parent.AccountType, account.AccountType)
			}
			// A descendant's path always extends the ancestor's path.
			if strings.HasPrefix(parent.Path+"/", account.Path+"/") {
				return nil, fmt.Errorf("%w: %s is a descendant of %s", ErrParentCycle, parent.AccountID, accountID)
			}
			account.ParentAccountID = parent.AccountID
			account.Path = parent.Path + "/" + account.Code
		}
	}

	now := time.Now().UTC()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID

	if account.Path != oldPath {
		// Re-parenting shifts the whole subtree; descendant paths must be
		// rewritten with the account row or later cycle checks see stale paths.
		if err := s.accountRepo.MoveAccountSubtree(ctx, *account, oldPath); err != nil {
			s.LogError(ctx, err, "Failed to move account subtree", slog.String("account_id", accountID))
			return nil, fmt.Errorf("failed to move account: %w", err)
		}
	} else if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return account, nil
}

// DeactivateAccount marks an account inactive. Refused for system accounts
// and for accounts that still carry postings or child accounts.
func (s *accountService) DeactivateAccount(ctx context.Context, workplaceID string, accountID string, requestingUserID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsSystemAccount {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrSystemAccount)
	}

	hasPostings, err := s.accountRepo.HasPostings(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check account postings: %w", err)
	}
	if hasPostings {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrAccountHasEntries)
	}

	hasChildren, err := s.accountRepo.HasChildren(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check child accounts: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrAccountHasChilds)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.DeactivateAccount(ctx, workplaceID, accountID, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// DeleteAccount removes an account outright. System accounts can never be
// deleted, only deactivated; accounts still carrying postings or child
// accounts are refused.
func (s *accountService) DeleteAccount(ctx context.Context, workplaceID string, accountID string, requestingUserID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsSystemAccount {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrSystemAccount)
	}

	hasPostings, err := s.accountRepo.HasPostings(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check account postings: %w", err)
	}
	if hasPostings {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrAccountHasEntries)
	}

	hasChildren, err := s.accountRepo.HasChildren(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to check child accounts: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrConflict, accountID, ErrAccountHasChilds)
	}

	if err := s.accountRepo.DeleteAccount(ctx, workplaceID, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("deleted_by", requestingUserID))
	return nil
}

// CalculateAccountBalance returns the account's maintained running balance.
// The balance column is updated transactionally with every posting, so this
// reflects all posted entries.
func (s *accountService) CalculateAccountBalance(ctx context.Context, workplaceID string, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, workplaceID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account.Balance, nil
}
