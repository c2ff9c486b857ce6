package domain

// Each document kind owns a status state machine expressed as a static
// adjacency map. A transition is legal iff the target appears in the map for
// the current status, or the target equals the current status (no-op).

var documentTransitions = map[DocumentKind]map[DocumentStatus][]DocumentStatus{
	KindInvoice: {
		DocDraft:         {DocOpen, DocVoid},
		DocOpen:          {DocPaid, DocVoid, DocUncollectible},
		DocUncollectible: {DocVoid, DocPaid},
		DocPaid:          {DocRefunded},
		DocVoid:          {},
		DocRefunded:      {},
	},
	KindBill: {
		DocDraft:   {DocOpen, DocVoid},
		DocOpen:    {DocPaid, DocVoid, DocOverdue},
		DocOverdue: {DocPaid, DocVoid},
		DocPaid:    {},
		DocVoid:    {},
	},
	KindCreditNote: {
		DocDraft:   {DocOpen, DocVoid},
		DocOpen:    {DocSettled, DocVoid},
		DocSettled: {},
		DocVoid:    {},
	},
	KindDebitNote: {
		DocDraft:   {DocOpen, DocVoid},
		DocOpen:    {DocSettled, DocVoid},
		DocSettled: {},
		DocVoid:    {},
	},
	KindQuotation: {
		DocDraft:     {DocSent, DocVoid},
		DocSent:      {DocAccepted, DocRejected, DocExpired},
		DocAccepted:  {DocConverted},
		DocRejected:  {},
		DocExpired:   {},
		DocConverted: {},
		DocVoid:      {},
	},
}

// payableStatuses lists, per kind, the statuses in which a document may
// receive a payment.
var payableStatuses = map[DocumentKind][]DocumentStatus{
	KindInvoice: {DocOpen, DocUncollectible},
	KindBill:    {DocOpen, DocOverdue},
}

// settledStatuses mark completed settlement; documents in these states
// refuse deletion and require a correcting document instead.
var settledStatuses = map[DocumentStatus]bool{
	DocPaid:      true,
	DocSettled:   true,
	DocRefunded:  true,
	DocConverted: true,
}

// lockedFieldAllowlist names the only fields that may still change once a
// document has left its draft state (and is not yet terminal).
var lockedFieldAllowlist = map[string]bool{
	"notes":    true,
	"metadata": true,
	"dueDate":  true,
}

// InitialDocumentStatus returns the earliest editable state for a kind.
func InitialDocumentStatus(kind DocumentKind) DocumentStatus {
	return DocDraft
}

// NextDocumentStatuses returns the legal next statuses for a kind/status pair.
func NextDocumentStatuses(kind DocumentKind, from DocumentStatus) []DocumentStatus {
	return documentTransitions[kind][from]
}

// CanTransitionDocument reports whether from -> to is legal for the kind.
// A same-status transition is always a legal no-op.
func CanTransitionDocument(kind DocumentKind, from, to DocumentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range documentTransitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalDocumentStatus reports whether the status has no outgoing
// transitions for the kind.
func IsTerminalDocumentStatus(kind DocumentKind, status DocumentStatus) bool {
	next, ok := documentTransitions[kind][status]
	return ok && len(next) == 0
}

// IsKnownDocumentStatus reports whether the status exists in the kind's machine.
func IsKnownDocumentStatus(kind DocumentKind, status DocumentStatus) bool {
	_, ok := documentTransitions[kind][status]
	return ok
}

// IsEditableDocumentStatus reports whether the status allows full field and
// line-item replacement.
func IsEditableDocumentStatus(status DocumentStatus) bool {
	return status == DocDraft
}

// IsSettledDocumentStatus reports whether the status represents completed
// settlement.
func IsSettledDocumentStatus(status DocumentStatus) bool {
	return settledStatuses[status]
}

// CanReceivePayment reports whether the kind/status pair permits recording a
// payment against the document.
func CanReceivePayment(kind DocumentKind, status DocumentStatus) bool {
	for _, s := range payableStatuses[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// PayableStatuses returns the statuses in which the kind accepts payment.
func PayableStatuses(kind DocumentKind) []DocumentStatus {
	return payableStatuses[kind]
}

// IsFieldUpdatableWhenLocked reports whether the named field may change on a
// document that is past its draft state.
func IsFieldUpdatableWhenLocked(field string) bool {
	return lockedFieldAllowlist[field]
}

// SettledStatusFor returns the status a fully paid document of the kind
// transitions into.
func SettledStatusFor(kind DocumentKind) DocumentStatus {
	switch kind {
	case KindCreditNote, KindDebitNote:
		return DocSettled
	default:
		return DocPaid
	}
}
