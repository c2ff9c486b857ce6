package models

import "time"

// PeriodStatus indicates the state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// AccountingPeriod is one (year, month) posting window.
type AccountingPeriod struct {
	PeriodID    string       `db:"period_id"`
	WorkplaceID string       `db:"workplace_id"`
	Year        int          `db:"year"`
	Month       int          `db:"month"`
	Status      PeriodStatus `db:"status"`
	ClosedAt    *time.Time   `db:"closed_at"`
	AuditFields
}
