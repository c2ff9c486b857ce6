package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// ListActivitiesParams defines query parameters for listing activities.
type ListActivitiesParams struct {
	EntityType domain.ActivityEntity `form:"entityType" binding:"required,oneof=DOCUMENT PAYMENT JOURNAL BANK_TRANSACTION"`
	EntityID   string                `form:"entityID" binding:"required"`
	Limit      int                   `form:"limit,default=50"`
}

// ActivityResponse defines the data returned for one audit activity.
type ActivityResponse struct {
	ActivityID  string                        `json:"activityID"`
	Entity      domain.ActivityEntity         `json:"entity"`
	EntityID    string                        `json:"entityID"`
	Action      string                        `json:"action"`
	Description string                        `json:"description"`
	Diff        map[string]domain.FieldChange `json:"diff,omitempty"`
	CreatedAt   time.Time                     `json:"createdAt"`
	CreatedBy   string                        `json:"createdBy"`
}

// ToActivityResponse converts a domain.Activity to its DTO.
func ToActivityResponse(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ActivityID:  a.ActivityID,
		Entity:      a.Entity,
		EntityID:    a.EntityID,
		Action:      a.Action,
		Description: a.Description,
		Diff:        a.Diff,
		CreatedAt:   a.CreatedAt,
		CreatedBy:   a.CreatedBy,
	}
}

// ToListActivitiesResponse converts a slice of activities to DTOs.
func ToListActivitiesResponse(activities []domain.Activity) ListActivitiesResponse {
	res := ListActivitiesResponse{Activities: make([]ActivityResponse, len(activities))}
	for i := range activities {
		res.Activities[i] = ToActivityResponse(&activities[i])
	}
	return res
}

// ListActivitiesResponse wraps the list of activities.
type ListActivitiesResponse struct {
	Activities []ActivityResponse `json:"activities"`
}
