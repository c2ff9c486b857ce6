package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// PeriodRepositoryFacade defines persistence operations for accounting periods.
type PeriodRepositoryFacade interface {
	// SavePeriod persists a new accounting period.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// FindPeriod retrieves the period for (workplace, year, month).
	FindPeriod(ctx context.Context, workplaceID string, year int, month int) (*domain.AccountingPeriod, error)

	// FindPeriodByID retrieves a period by its ID.
	FindPeriodByID(ctx context.Context, workplaceID string, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodForDate retrieves the period containing the given date.
	FindPeriodForDate(ctx context.Context, workplaceID string, date time.Time) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods of a workplace, newest first.
	ListPeriods(ctx context.Context, workplaceID string) ([]domain.AccountingPeriod, error)

	// UpdatePeriodStatus transitions a period's status.
	UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedAt *time.Time, userID string, now time.Time) error
}
