package domain

import "time"

// ActivityEntity names the aggregate an activity record belongs to.
type ActivityEntity string

const (
	ActivityDocument ActivityEntity = "DOCUMENT"
	ActivityPayment  ActivityEntity = "PAYMENT"
	ActivityJournal  ActivityEntity = "JOURNAL"
	ActivityBank     ActivityEntity = "BANK_TRANSACTION"
)

// FieldChange captures one field's before/after values in a structured diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Activity is a write-only audit record appended on every state change:
// a human-readable description plus a structured before/after diff.
type Activity struct {
	ActivityID  string                 `json:"activityID"`
	WorkplaceID string                 `json:"workplaceID"`
	Entity      ActivityEntity         `json:"entity"`
	EntityID    string                 `json:"entityID"`
	Action      string                 `json:"action"` // e.g. "created", "updated", "status_changed"
	Description string                 `json:"description"`
	Diff        map[string]FieldChange `json:"diff,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	CreatedBy   string                 `json:"createdBy"`
}
