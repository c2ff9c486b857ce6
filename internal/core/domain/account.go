package domain

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

// NormalBalance indicates which side increases an account.
type NormalBalance string

const (
	DebitBalance  NormalBalance = "DEBIT"
	CreditBalance NormalBalance = "CREDIT"
)

// NormalBalanceFor returns the normal balance side implied by an account type.
// Assets and expenses increase on the debit side; liabilities, equity and
// revenue increase on the credit side.
func NormalBalanceFor(t AccountType) (NormalBalance, bool) {
	switch t {
	case Asset, Expense:
		return DebitBalance, true
	case Liability, Equity, Revenue:
		return CreditBalance, true
	default:
		return "", false
	}
}

// accountSubTypes lists the recognized reporting refinements for each
// account type. An empty sub type is always allowed.
var accountSubTypes = map[AccountType][]string{
	Asset:     {"CURRENT_ASSET", "FIXED_ASSET", "BANK", "RECEIVABLE", "INVENTORY", "OTHER_ASSET"},
	Liability: {"CURRENT_LIABILITY", "LONG_TERM_LIABILITY", "PAYABLE", "CREDIT_CARD", "OTHER_LIABILITY"},
	Equity:    {"OWNER_EQUITY", "RETAINED_EARNINGS"},
	Revenue:   {"OPERATING_REVENUE", "OTHER_REVENUE"},
	Expense:   {"OPERATING_EXPENSE", "COST_OF_GOODS_SOLD", "OTHER_EXPENSE"},
}

// IsValidSubType reports whether the sub type is consistent with the account
// type, so a FIXED_ASSET refinement can never land on a revenue account.
// An empty sub type is valid for every account type.
func IsValidSubType(t AccountType, subType string) bool {
	if subType == "" {
		return true
	}
	for _, s := range accountSubTypes[t] {
		if s == subType {
			return true
		}
	}
	return false
}

// Account represents one node in a workplace's chart of accounts.
// Path is a materialized path of account IDs ("/root/child/grandchild")
// used for ancestor queries and write-time cycle prevention.
type Account struct {
	AccountID       string          `json:"accountID"`
	WorkplaceID     string          `json:"workplaceID"`
	Code            string          `json:"code"` // unique per workplace
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	SubType         string          `json:"subType"` // reporting refinement, must not contradict AccountType
	NormalBalance   NormalBalance   `json:"normalBalance"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID string          `json:"parentAccountID"` // empty for root accounts
	Path            string          `json:"path"`
	Description     string          `json:"description"`
	IsSystemAccount bool            `json:"isSystemAccount"` // cannot be deleted, only deactivated
	IsHeader        bool            `json:"isHeader"`        // grouping node, no direct postings
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"` // cached running balance
	AuditFields
}

// AccountBalance is a cached monthly aggregate for one account. It is a
// projection of the journal line history and must always be re-derivable
// from it; divergence between the two is a bug, not acceptable drift.
type AccountBalance struct {
	AccountID      string          `json:"accountID"`
	WorkplaceID    string          `json:"workplaceID"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	PeriodDebits   decimal.Decimal `json:"periodDebits"`
	PeriodCredits  decimal.Decimal `json:"periodCredits"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	AuditFields
}
