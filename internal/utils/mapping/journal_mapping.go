package mapping

import (
	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		WorkplaceID:      d.WorkplaceID,
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		CurrencyCode:     d.CurrencyCode,
		Status:           models.JournalStatus(d.Status),
		ReversedEntryID:  d.ReversedEntryID,
		ReversingEntryID: d.ReversingEntryID,
		SourceType:       d.SourceType,
		SourceID:         d.SourceID,
		Amount:           d.Amount,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		WorkplaceID:      m.WorkplaceID,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		CurrencyCode:     m.CurrencyCode,
		Status:           domain.JournalStatus(m.Status),
		ReversedEntryID:  m.ReversedEntryID,
		ReversingEntryID: m.ReversingEntryID,
		SourceType:       m.SourceType,
		SourceID:         m.SourceID,
		Amount:           m.Amount,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		AccountID:      d.AccountID,
		DebitAmount:    d.DebitAmount,
		CreditAmount:   d.CreditAmount,
		CurrencyCode:   d.CurrencyCode,
		Notes:          d.Notes,
		RunningBalance: d.RunningBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		AccountID:      m.AccountID,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		CurrencyCode:   m.CurrencyCode,
		Notes:          m.Notes,
		RunningBalance: m.RunningBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts model lines to domain lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
