package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_core/internal/models"
	"github.com/finbooks/finbooks_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `period_id, workplace_id, year, month, status, closed_at, created_at, created_by, last_updated_at, last_updated_by, version`

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriodRow(row pgx.Row) (models.AccountingPeriod, error) {
	var m models.AccountingPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.WorkplaceID,
		&m.Year,
		&m.Month,
		&m.Status,
		&m.ClosedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SavePeriod inserts a new accounting period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	modelPeriod := mapping.ToModelPeriod(period)

	query := `
		INSERT INTO accounting_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelPeriod.PeriodID,
		modelPeriod.WorkplaceID,
		modelPeriod.Year,
		modelPeriod.Month,
		modelPeriod.Status,
		modelPeriod.ClosedAt,
		modelPeriod.CreatedAt,
		modelPeriod.CreatedBy,
		modelPeriod.LastUpdatedAt,
		modelPeriod.LastUpdatedBy,
		modelPeriod.Version,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: period %d-%02d already exists in workplace %s", apperrors.ErrDuplicate, modelPeriod.Year, modelPeriod.Month, modelPeriod.WorkplaceID)
			}
		}
		return fmt.Errorf("failed to save period %s: %w", modelPeriod.PeriodID, err)
	}
	return nil
}

// FindPeriod retrieves the period for (workplace, year, month).
func (r *PgxPeriodRepository) FindPeriod(ctx context.Context, workplaceID string, year int, month int) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE workplace_id = $1 AND year = $2 AND month = $3;
	`
	m, err := scanPeriodRow(r.Pool.QueryRow(ctx, query, workplaceID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %d-%02d: %w", year, month, err)
	}

	domainPeriod := mapping.ToDomainPeriod(m)
	return &domainPeriod, nil
}

// FindPeriodByID retrieves a period by its ID.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, workplaceID string, periodID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE workplace_id = $1 AND period_id = $2;
	`
	m, err := scanPeriodRow(r.Pool.QueryRow(ctx, query, workplaceID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period by ID %s: %w", periodID, err)
	}

	domainPeriod := mapping.ToDomainPeriod(m)
	return &domainPeriod, nil
}

// FindPeriodForDate retrieves the period containing the given date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, workplaceID string, date time.Time) (*domain.AccountingPeriod, error) {
	return r.FindPeriod(ctx, workplaceID, date.Year(), int(date.Month()))
}

// ListPeriods retrieves all periods of a workplace, newest first.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, workplaceID string) ([]domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE workplace_id = $1
		ORDER BY year DESC, month DESC;
	`

	rows, err := r.Pool.Query(ctx, query, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods for workplace %s: %w", workplaceID, err)
	}
	defer rows.Close()

	periods := []models.AccountingPeriod{}
	for rows.Next() {
		m, err := scanPeriodRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row for workplace %s: %w", workplaceID, err)
		}
		periods = append(periods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows for workplace %s: %w", workplaceID, err)
	}

	return mapping.ToDomainPeriodSlice(periods), nil
}

// UpdatePeriodStatus transitions a period's status.
func (r *PgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedAt *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE accounting_periods
		SET status = $2, closed_at = $3, last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE period_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, periodID, status, closedAt, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status for period %s: %w", periodID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
