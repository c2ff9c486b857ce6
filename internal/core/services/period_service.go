package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// periodService manages accounting periods.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod opens a new monthly period.
func (s *periodService) CreatePeriod(ctx context.Context, workplaceID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.AccountingPeriod, error) {
	existing, err := s.periodRepo.FindPeriod(ctx, workplaceID, req.Year, req.Month)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing period: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: period %04d-%02d already exists", apperrors.ErrDuplicate, req.Year, req.Month)
	}

	now := time.Now().UTC()
	period := domain.AccountingPeriod{
		PeriodID:    uuid.NewString(),
		WorkplaceID: workplaceID,
		Year:        req.Year,
		Month:       req.Month,
		Status:      domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		s.LogError(ctx, err, "Failed to save period", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	s.LogInfo(ctx, "Accounting period opened", slog.Int("year", req.Year), slog.Int("month", req.Month))
	return &period, nil
}

// GetPeriod retrieves the period covering a calendar month.
func (s *periodService) GetPeriod(ctx context.Context, workplaceID string, year int, month int) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriod(ctx, workplaceID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %04d-%02d: %w", year, month, err)
	}
	return period, nil
}

// GetPeriodForDate retrieves the period containing the given date.
func (s *periodService) GetPeriodForDate(ctx context.Context, workplaceID string, date time.Time) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, workplaceID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find period for date %s: %w", date.Format("2006-01-02"), err)
	}
	return period, nil
}

// ListPeriods retrieves all periods in a workplace.
func (s *periodService) ListPeriods(ctx context.Context, workplaceID string) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, workplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// SetPeriodStatus transitions a period between OPEN, CLOSED and LOCKED.
func (s *periodService) SetPeriodStatus(ctx context.Context, workplaceID string, periodID string, req dto.SetPeriodStatusRequest, userID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, workplaceID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}

	if period.Status == req.Status {
		return period, nil
	}

	if !domain.CanTransitionPeriod(period.Status, req.Status) {
		allowed := domain.NextPeriodStatuses(period.Status)
		allowedStrs := make([]string, len(allowed))
		for i, a := range allowed {
			allowedStrs[i] = string(a)
		}
		return nil, &apperrors.InvalidTransitionError{
			Entity:  "accounting_period",
			From:    string(period.Status),
			To:      string(req.Status),
			Allowed: allowedStrs,
		}
	}

	now := time.Now().UTC()
	var closedAt *time.Time
	if req.Status == domain.PeriodClosed || req.Status == domain.PeriodLocked {
		closedAt = &now
	}

	if err := s.periodRepo.UpdatePeriodStatus(ctx, periodID, req.Status, closedAt, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update period status", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to update period status: %w", err)
	}

	period.Status = req.Status
	period.ClosedAt = closedAt
	period.LastUpdatedAt = now
	period.LastUpdatedBy = userID

	s.LogInfo(ctx, "Period status changed", slog.String("period_id", periodID), slog.String("status", string(req.Status)))
	return period, nil
}
