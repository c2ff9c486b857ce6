package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a ledger account row.
// ParentAccountID is a nullable self-referencing foreign key stored as an
// empty string when absent.
type Account struct {
	AccountID       string          `db:"account_id"`
	WorkplaceID     string          `db:"workplace_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	SubType         string          `db:"sub_type"`
	NormalBalance   string          `db:"normal_balance"`
	CurrencyCode    string          `db:"currency_code"`
	ParentAccountID string          `db:"parent_account_id"`
	Path            string          `db:"path"`
	Description     string          `db:"description"`
	IsSystemAccount bool            `db:"is_system_account"`
	IsHeader        bool            `db:"is_header"`
	IsActive        bool            `db:"is_active"`
	AuditFields
	Balance decimal.Decimal `db:"balance"` // persisted running balance
}

// AccountBalance is a cached per-month aggregate for one account.
type AccountBalance struct {
	AccountID      string          `db:"account_id"`
	WorkplaceID    string          `db:"workplace_id"`
	Year           int             `db:"year"`
	Month          int             `db:"month"`
	PeriodDebits   decimal.Decimal `db:"period_debits"`
	PeriodCredits  decimal.Decimal `db:"period_credits"`
	ClosingBalance decimal.Decimal `db:"closing_balance"`
	AuditFields
}
