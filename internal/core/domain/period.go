package domain

import "time"

// PeriodStatus indicates whether a period accepts new postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED" // permanent
)

// AccountingPeriod is a (year, month) window scoped to a workplace.
// No journal entry may be posted with a date inside a period that is not OPEN.
type AccountingPeriod struct {
	PeriodID    string       `json:"periodID"`
	WorkplaceID string       `json:"workplaceID"`
	Year        int          `json:"year"`
	Month       int          `json:"month"` // 1-12
	Status      PeriodStatus `json:"status"`
	ClosedAt    *time.Time   `json:"closedAt"`
	AuditFields
}

// Contains reports whether the given date falls inside the period window.
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := date.UTC()
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

// periodTransitions is the adjacency map for period status changes.
// A closed period can be reopened; a locked period never changes again.
var periodTransitions = map[PeriodStatus][]PeriodStatus{
	PeriodOpen:   {PeriodClosed},
	PeriodClosed: {PeriodOpen, PeriodLocked},
	PeriodLocked: {},
}

// CanTransitionPeriod reports whether a period status change is legal.
// Same-status transitions are always a no-op.
func CanTransitionPeriod(from, to PeriodStatus) bool {
	if from == to {
		return true
	}
	for _, next := range periodTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextPeriodStatuses returns the legal next statuses from the given one.
func NextPeriodStatuses(from PeriodStatus) []PeriodStatus {
	return periodTransitions[from]
}
