package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new ledger account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SubType         string             `json:"subType"`
	CurrencyCode    string             `json:"currencyCode" binding:"required"`
	ParentAccountID *string            `json:"parentAccountID"`
	Description     string             `json:"description"`
	IsHeader        bool               `json:"isHeader"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name            *string `json:"name"`
	SubType         *string `json:"subType"`
	Description     *string `json:"description"`
	ParentAccountID *string `json:"parentAccountID"`
	IsActive        *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string               `json:"accountID"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	AccountType     domain.AccountType   `json:"accountType"`
	SubType         string               `json:"subType"`
	NormalBalance   domain.NormalBalance `json:"normalBalance"`
	CurrencyCode    string               `json:"currencyCode"`
	ParentAccountID string               `json:"parentAccountID"`
	Path            string               `json:"path"`
	Description     string               `json:"description"`
	IsSystemAccount bool                 `json:"isSystemAccount"`
	IsHeader        bool                 `json:"isHeader"`
	IsActive        bool                 `json:"isActive"`
	Balance         decimal.Decimal      `json:"balance"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		SubType:         acc.SubType,
		NormalBalance:   acc.NormalBalance,
		CurrencyCode:    acc.CurrencyCode,
		ParentAccountID: acc.ParentAccountID,
		Path:            acc.Path,
		Description:     acc.Description,
		IsSystemAccount: acc.IsSystemAccount,
		IsHeader:        acc.IsHeader,
		IsActive:        acc.IsActive,
		Balance:         acc.Balance,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain accounts to DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	PeriodDebits   decimal.Decimal `json:"periodDebits"`
	PeriodCredits  decimal.Decimal `json:"periodCredits"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance to its DTO.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:      b.AccountID,
		Year:           b.Year,
		Month:          b.Month,
		PeriodDebits:   b.PeriodDebits,
		PeriodCredits:  b.PeriodCredits,
		ClosingBalance: b.ClosingBalance,
	}
}
