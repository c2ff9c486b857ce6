package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents one balanced double-entry posting.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	WorkplaceID      string          `db:"workplace_id"`
	EntryDate        time.Time       `db:"entry_date"`
	Description      string          `db:"description"`
	CurrencyCode     string          `db:"currency_code"`
	Status           JournalStatus   `db:"status"`
	ReversedEntryID  *string         `db:"reversed_entry_id"`
	ReversingEntryID *string         `db:"reversing_entry_id"`
	SourceType       string          `db:"source_type"`
	SourceID         string          `db:"source_id"`
	Amount           decimal.Decimal `db:"amount"`
	AuditFields
}

// JournalLine is one side of a posting.
type JournalLine struct {
	LineID         string          `db:"line_id"`
	EntryID        string          `db:"entry_id"`
	AccountID      string          `db:"account_id"`
	DebitAmount    decimal.Decimal `db:"debit_amount"`
	CreditAmount   decimal.Decimal `db:"credit_amount"`
	CurrencyCode   string          `db:"currency_code"`
	Notes          string          `db:"notes"`
	RunningBalance decimal.Decimal `db:"running_balance"`
	AuditFields
}
