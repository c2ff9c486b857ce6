package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a posting request. Exactly one of
// DebitAmount/CreditAmount must be positive; the other must be zero.
type JournalLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"`
}

// PostJournalEntryRequest defines the data needed to post a journal entry.
type PostJournalEntryRequest struct {
	EntryDate    time.Time            `json:"entryDate" binding:"required"`
	Description  string               `json:"description" binding:"required"`
	CurrencyCode string               `json:"currencyCode" binding:"required"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for one journal line.
type JournalLineResponse struct {
	LineID         string          `json:"lineID"`
	AccountID      string          `json:"accountID"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	Notes          string          `json:"notes"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryDate        time.Time             `json:"entryDate"`
	Description      string                `json:"description"`
	CurrencyCode     string                `json:"currencyCode"`
	Status           domain.JournalStatus  `json:"status"`
	ReversedEntryID  *string               `json:"reversedEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	Lines            []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// ToJournalLineResponse converts a domain.JournalLine to its DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:         l.LineID,
		AccountID:      l.AccountID,
		DebitAmount:    l.DebitAmount,
		CreditAmount:   l.CreditAmount,
		Notes:          l.Notes,
		RunningBalance: l.RunningBalance,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:          e.EntryID,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		CurrencyCode:     e.CurrencyCode,
		Status:           e.Status,
		ReversedEntryID:  e.ReversedEntryID,
		ReversingEntryID: e.ReversingEntryID,
		Amount:           e.Amount,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	for i := range e.Lines {
		resp.Lines = append(resp.Lines, ToJournalLineResponse(&e.Lines[i]))
	}
	return resp
}

// ListJournalEntriesParams holds parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals,default=true"`
	IncludeLines     bool    `form:"includeLines,default=false"`
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
