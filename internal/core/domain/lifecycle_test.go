package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionDocument_Invoice(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		expected bool
	}{
		{DocDraft, DocOpen, true},
		{DocDraft, DocVoid, true},
		{DocDraft, DocPaid, false},
		{DocOpen, DocPaid, true},
		{DocOpen, DocVoid, true},
		{DocOpen, DocUncollectible, true},
		{DocOpen, DocDraft, false},
		{DocUncollectible, DocPaid, true},
		{DocUncollectible, DocVoid, true},
		{DocPaid, DocRefunded, true},
		{DocPaid, DocOpen, false},
		{DocVoid, DocOpen, false},
		{DocRefunded, DocPaid, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CanTransitionDocument(KindInvoice, tc.from, tc.to),
			"invoice %s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionDocument_Quotation(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		expected bool
	}{
		{DocDraft, DocSent, true},
		{DocDraft, DocVoid, true},
		{DocDraft, DocAccepted, false},
		{DocSent, DocAccepted, true},
		{DocSent, DocRejected, true},
		{DocSent, DocExpired, true},
		{DocSent, DocConverted, false},
		{DocAccepted, DocConverted, true},
		{DocAccepted, DocRejected, false},
		{DocRejected, DocSent, false},
		{DocExpired, DocSent, false},
		{DocConverted, DocDraft, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CanTransitionDocument(KindQuotation, tc.from, tc.to),
			"quotation %s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionDocument_Bill(t *testing.T) {
	assert.True(t, CanTransitionDocument(KindBill, DocOpen, DocOverdue))
	assert.True(t, CanTransitionDocument(KindBill, DocOverdue, DocPaid))
	assert.True(t, CanTransitionDocument(KindBill, DocOverdue, DocVoid))
	assert.False(t, CanTransitionDocument(KindBill, DocOpen, DocUncollectible),
		"uncollectible belongs to invoices, not bills")
	assert.False(t, CanTransitionDocument(KindBill, DocPaid, DocRefunded))
}

func TestCanTransitionDocument_CreditAndDebitNotes(t *testing.T) {
	for _, kind := range []DocumentKind{KindCreditNote, KindDebitNote} {
		assert.True(t, CanTransitionDocument(kind, DocDraft, DocOpen), "%s", kind)
		assert.True(t, CanTransitionDocument(kind, DocOpen, DocSettled), "%s", kind)
		assert.True(t, CanTransitionDocument(kind, DocOpen, DocVoid), "%s", kind)
		assert.False(t, CanTransitionDocument(kind, DocSettled, DocOpen), "%s", kind)
		assert.False(t, CanTransitionDocument(kind, DocOpen, DocPaid), "%s", kind)
	}
}

func TestCanTransitionDocument_SameStatusIsNoOp(t *testing.T) {
	for kind, table := range documentTransitions {
		for status := range table {
			assert.True(t, CanTransitionDocument(kind, status, status), "%s %s", kind, status)
		}
	}
}

func TestIsTerminalDocumentStatus(t *testing.T) {
	assert.True(t, IsTerminalDocumentStatus(KindInvoice, DocVoid))
	assert.True(t, IsTerminalDocumentStatus(KindInvoice, DocRefunded))
	assert.False(t, IsTerminalDocumentStatus(KindInvoice, DocPaid), "paid invoices can still be refunded")
	assert.True(t, IsTerminalDocumentStatus(KindBill, DocPaid))
	assert.True(t, IsTerminalDocumentStatus(KindQuotation, DocConverted))
	assert.False(t, IsTerminalDocumentStatus(KindQuotation, DocAccepted))
	assert.False(t, IsTerminalDocumentStatus(KindInvoice, DocumentStatus("BOGUS")), "unknown status is not terminal")
}

func TestIsKnownDocumentStatus(t *testing.T) {
	assert.True(t, IsKnownDocumentStatus(KindInvoice, DocUncollectible))
	assert.False(t, IsKnownDocumentStatus(KindBill, DocUncollectible))
	assert.True(t, IsKnownDocumentStatus(KindQuotation, DocSent))
	assert.False(t, IsKnownDocumentStatus(KindInvoice, DocSent))
}

func TestCanReceivePayment(t *testing.T) {
	assert.True(t, CanReceivePayment(KindInvoice, DocOpen))
	assert.True(t, CanReceivePayment(KindInvoice, DocUncollectible))
	assert.False(t, CanReceivePayment(KindInvoice, DocDraft))
	assert.False(t, CanReceivePayment(KindInvoice, DocPaid))

	assert.True(t, CanReceivePayment(KindBill, DocOpen))
	assert.True(t, CanReceivePayment(KindBill, DocOverdue))
	assert.False(t, CanReceivePayment(KindBill, DocVoid))

	// Quotations and notes never take payments directly.
	assert.False(t, CanReceivePayment(KindQuotation, DocSent))
	assert.False(t, CanReceivePayment(KindCreditNote, DocOpen))
}

func TestIsSettledDocumentStatus(t *testing.T) {
	assert.True(t, IsSettledDocumentStatus(DocPaid))
	assert.True(t, IsSettledDocumentStatus(DocSettled))
	assert.True(t, IsSettledDocumentStatus(DocRefunded))
	assert.True(t, IsSettledDocumentStatus(DocConverted))
	assert.False(t, IsSettledDocumentStatus(DocOpen))
	assert.False(t, IsSettledDocumentStatus(DocVoid))
}

func TestIsFieldUpdatableWhenLocked(t *testing.T) {
	assert.True(t, IsFieldUpdatableWhenLocked("notes"))
	assert.True(t, IsFieldUpdatableWhenLocked("metadata"))
	assert.True(t, IsFieldUpdatableWhenLocked("dueDate"))
	assert.False(t, IsFieldUpdatableWhenLocked("items"))
	assert.False(t, IsFieldUpdatableWhenLocked("contactID"))
	assert.False(t, IsFieldUpdatableWhenLocked("issueDate"))
}

func TestCanTransitionPeriod(t *testing.T) {
	assert.True(t, CanTransitionPeriod(PeriodOpen, PeriodClosed))
	assert.True(t, CanTransitionPeriod(PeriodClosed, PeriodOpen))
	assert.True(t, CanTransitionPeriod(PeriodClosed, PeriodLocked))
	assert.False(t, CanTransitionPeriod(PeriodOpen, PeriodLocked), "locking requires closing first")
	assert.False(t, CanTransitionPeriod(PeriodLocked, PeriodOpen), "locked is permanent")
	assert.False(t, CanTransitionPeriod(PeriodLocked, PeriodClosed))
	assert.True(t, CanTransitionPeriod(PeriodOpen, PeriodOpen))
}

func TestPeriodContains(t *testing.T) {
	period := AccountingPeriod{Year: 2026, Month: 2}

	assert.True(t, period.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)))
}

func TestCanTransitionMatch(t *testing.T) {
	assert.True(t, CanTransitionMatch(MatchUnmatched, MatchSuggested))
	assert.True(t, CanTransitionMatch(MatchUnmatched, MatchMatched))
	assert.True(t, CanTransitionMatch(MatchUnmatched, MatchExcluded))
	assert.True(t, CanTransitionMatch(MatchSuggested, MatchMatched))
	assert.True(t, CanTransitionMatch(MatchSuggested, MatchUnmatched))
	assert.True(t, CanTransitionMatch(MatchSuggested, MatchExcluded))
	assert.False(t, CanTransitionMatch(MatchMatched, MatchSuggested))
	assert.False(t, CanTransitionMatch(MatchMatched, MatchUnmatched))
	assert.False(t, CanTransitionMatch(MatchExcluded, MatchSuggested))
	assert.True(t, CanTransitionMatch(MatchMatched, MatchMatched))
}
