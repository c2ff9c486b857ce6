package repositories

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ActivityRepositoryFacade is the write-only audit sink. Every state change
// appends a human-readable description plus a structured before/after diff.
type ActivityRepositoryFacade interface {
	// Append persists one activity record.
	Append(ctx context.Context, activity domain.Activity) error

	// AppendInTx persists one activity record inside an enclosing transaction.
	AppendInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error

	// ListByEntity retrieves the most recent activity for one entity.
	ListByEntity(ctx context.Context, workplaceID string, entity domain.ActivityEntity, entityID string, limit int) ([]domain.Activity, error)
}
