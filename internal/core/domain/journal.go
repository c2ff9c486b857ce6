package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents a single, balanced unit of double-entry posting.
// A posted entry is immutable; corrections are made by posting a new entry
// that reverses it, never by mutating history.
type JournalEntry struct {
	EntryID      string        `json:"entryID"`
	WorkplaceID  string        `json:"workplaceID"`
	EntryDate    time.Time     `json:"entryDate"`
	Description  string        `json:"description"`
	CurrencyCode string        `json:"currencyCode"`
	Status       JournalStatus `json:"status"`
	// ReversedEntryID is set on a reversal entry and points at the entry it
	// reverses. ReversingEntryID is set on the original and points forward.
	ReversedEntryID  *string         `json:"reversedEntryID,omitempty"`
	ReversingEntryID *string         `json:"reversingEntryID,omitempty"`
	SourceType       string          `json:"sourceType"` // e.g. MANUAL, PAYMENT
	SourceID         string          `json:"sourceID"`
	Amount           decimal.Decimal `json:"amount"` // total of the debit side
	Lines            []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is one side of a posting: it names one account and carries
// exactly one of DebitAmount/CreditAmount (the other is zero).
type JournalLine struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	AccountID      string          `json:"accountID"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	CurrencyCode   string          `json:"currencyCode"`
	Notes          string          `json:"notes"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields
}

// IsDebit reports whether the line posts to the debit side.
func (l JournalLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// LineAmount returns the line's magnitude regardless of side.
func (l JournalLine) LineAmount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}
