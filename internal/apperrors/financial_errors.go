package apperrors

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The error types below carry the structured context the API layer needs to
// render precise messages (offending statuses, imbalance amounts, locked
// fields) without parsing error strings. Each type also matches one of the
// category sentinels via errors.Is so handlers can map them to HTTP codes.

// InvalidTransitionError is returned when a status change is not present in the
// entity's transition table.
type InvalidTransitionError struct {
	Entity  string   // e.g. "invoice", "quotation", "bank_transaction"
	From    string   // current status
	To      string   // requested status
	Allowed []string // legal next statuses from From
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s (allowed: %s)",
		e.Entity, e.From, e.To, strings.Join(e.Allowed, ", "))
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrConflict }

// LockedFieldError is returned when an update touches fields that are frozen
// by the document's current status.
type LockedFieldError struct {
	Status string
	Fields []string
}

func (e *LockedFieldError) Error() string {
	return fmt.Sprintf("fields locked in status %s: %s", e.Status, strings.Join(e.Fields, ", "))
}

func (e *LockedFieldError) Is(target error) bool { return target == ErrValidation }

// TerminalStateError is returned when a mutation or deletion is attempted on a
// document in a state that represents completed settlement.
type TerminalStateError struct {
	Entity string
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s is in terminal status %s and cannot be modified", e.Entity, e.Status)
}

func (e *TerminalStateError) Is(target error) bool { return target == ErrConflict }

// InvalidStateError is returned when an operation requires the entity to be in
// one of a set of statuses and it is not (e.g. paying a draft invoice).
type InvalidStateError struct {
	Entity   string
	Status   string
	Expected []string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s status %s does not permit this operation (expected one of: %s)",
		e.Entity, e.Status, strings.Join(e.Expected, ", "))
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrConflict }

// UnbalancedEntryError is returned when a journal entry's debits and credits
// do not sum to the same amount. Imbalance is debits minus credits.
type UnbalancedEntryError struct {
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	Imbalance decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is unbalanced: debits %s, credits %s, imbalance %s",
		e.Debits.String(), e.Credits.String(), e.Imbalance.String())
}

func (e *UnbalancedEntryError) Is(target error) bool { return target == ErrValidation }

// PeriodClosedError is returned when a posting date falls inside an accounting
// period that is not open.
type PeriodClosedError struct {
	Year   int
	Month  int
	Status string
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("accounting period %04d-%02d is %s and does not accept postings", e.Year, e.Month, e.Status)
}

func (e *PeriodClosedError) Is(target error) bool { return target == ErrConflict }

// OverAllocationError is returned when the sum of a payment's allocations
// would exceed the payment amount.
type OverAllocationError struct {
	PaymentAmount decimal.Decimal
	Allocated     decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("allocations total %s exceeds payment amount %s (excess %s)",
		e.Allocated.String(), e.PaymentAmount.String(), e.Allocated.Sub(e.PaymentAmount).String())
}

func (e *OverAllocationError) Is(target error) bool { return target == ErrValidation }

// InvalidReversalError is returned when reversing a journal entry that is not
// in a reversible state (draft, already reversed, or itself a reversal).
type InvalidReversalError struct {
	EntryID string
	Reason  string
}

func (e *InvalidReversalError) Error() string {
	return fmt.Sprintf("journal entry %s cannot be reversed: %s", e.EntryID, e.Reason)
}

func (e *InvalidReversalError) Is(target error) bool { return target == ErrConflict }
