package services

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// ActivityReaderSvc defines read operations for the audit activity log
type ActivityReaderSvc interface {
	// ListActivities retrieves the recorded activities for an entity, newest
	// first.
	ListActivities(ctx context.Context, workplaceID string, entityType domain.ActivityEntity, entityID string, limit int) ([]domain.Activity, error)
}
