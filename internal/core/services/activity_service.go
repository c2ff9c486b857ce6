package services

import (
	"context"
	"fmt"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
)

// activityService exposes the read side of the audit activity log.
type activityService struct {
	activityRepo portsrepo.ActivityRepositoryFacade
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo portsrepo.ActivityRepositoryFacade) portssvc.ActivityReaderSvc {
	return &activityService{activityRepo: activityRepo}
}

var _ portssvc.ActivityReaderSvc = (*activityService)(nil)

// ListActivities retrieves the recorded activities for an entity.
func (s *activityService) ListActivities(ctx context.Context, workplaceID string, entityType domain.ActivityEntity, entityID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	activities, err := s.activityRepo.ListByEntity(ctx, workplaceID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities for %s %s: %w", entityType, entityID, err)
	}
	return activities, nil
}
