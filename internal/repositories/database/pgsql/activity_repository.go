package pgsql

import (
	"context"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_core/internal/models"
	"github.com/finbooks/finbooks_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activityColumns = `activity_id, workplace_id, entity, entity_id, action, description, diff, created_at, created_by`

type PgxActivityRepository struct {
	BaseRepository
}

// newPgxActivityRepository creates a new repository for the append-only audit trail.
func newPgxActivityRepository(pool *pgxpool.Pool) portsrepo.ActivityRepositoryFacade {
	return &PgxActivityRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxActivityRepository implements portsrepo.ActivityRepositoryFacade
var _ portsrepo.ActivityRepositoryFacade = (*PgxActivityRepository)(nil)

const insertActivityQuery = `
	INSERT INTO activities (` + activityColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// Append persists one activity record.
func (r *PgxActivityRepository) Append(ctx context.Context, activity domain.Activity) error {
	m := mapping.ToModelActivity(activity)

	_, err := r.Pool.Exec(ctx, insertActivityQuery,
		m.ActivityID, m.WorkplaceID, m.Entity, m.EntityID, m.Action, m.Description, m.Diff, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append activity "+m.ActivityID, err)
	}
	return nil
}

// AppendInTx persists one activity record inside an enclosing transaction.
func (r *PgxActivityRepository) AppendInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error {
	m := mapping.ToModelActivity(activity)

	_, err := tx.Exec(ctx, insertActivityQuery,
		m.ActivityID, m.WorkplaceID, m.Entity, m.EntityID, m.Action, m.Description, m.Diff, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append activity "+m.ActivityID, err)
	}
	return nil
}

// ListByEntity retrieves the most recent activity for one entity.
func (r *PgxActivityRepository) ListByEntity(ctx context.Context, workplaceID string, entity domain.ActivityEntity, entityID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE workplace_id = $1 AND entity = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID, string(entity), entityID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query activities for "+entityID, err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		var m models.Activity
		if err := rows.Scan(&m.ActivityID, &m.WorkplaceID, &m.Entity, &m.EntityID, &m.Action, &m.Description, &m.Diff, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan activity row for "+entityID, err)
		}
		activities = append(activities, mapping.ToDomainActivity(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating activity rows for "+entityID, err)
	}

	return activities, nil
}
