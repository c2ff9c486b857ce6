package services

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting periods
type PeriodReaderSvc interface {
	// GetPeriod retrieves the period covering a calendar month, if one exists.
	GetPeriod(ctx context.Context, workplaceID string, year int, month int) (*domain.AccountingPeriod, error)

	// GetPeriodForDate retrieves the period containing the given date.
	GetPeriodForDate(ctx context.Context, workplaceID string, date time.Time) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods in a workplace ordered by start date.
	ListPeriods(ctx context.Context, workplaceID string) ([]domain.AccountingPeriod, error)
}

// PeriodWriterSvc defines write operations for accounting periods
type PeriodWriterSvc interface {
	// CreatePeriod opens a new monthly period. Overlapping periods are rejected.
	CreatePeriod(ctx context.Context, workplaceID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.AccountingPeriod, error)

	// SetPeriodStatus transitions a period between OPEN, CLOSED and LOCKED.
	// LOCKED is terminal.
	SetPeriodStatus(ctx context.Context, workplaceID string, periodID string, req dto.SetPeriodStatusRequest, userID string) (*domain.AccountingPeriod, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
