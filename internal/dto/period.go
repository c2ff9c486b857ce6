package dto

import (
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to open an accounting period.
type CreatePeriodRequest struct {
	Year  int `json:"year" binding:"required,min=1900,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// SetPeriodStatusRequest requests a period status transition.
type SetPeriodStatusRequest struct {
	Status domain.PeriodStatus `json:"status" binding:"required,oneof=OPEN CLOSED LOCKED"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID  string              `json:"periodID"`
	Year      int                 `json:"year"`
	Month     int                 `json:"month"`
	Status    domain.PeriodStatus `json:"status"`
	ClosedAt  *time.Time          `json:"closedAt,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// ToPeriodResponse converts a domain.AccountingPeriod to its DTO.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		Year:      p.Year,
		Month:     p.Month,
		Status:    p.Status,
		ClosedAt:  p.ClosedAt,
		CreatedAt: p.CreatedAt,
	}
}

// ToListPeriodResponse converts a slice of periods to DTOs.
func ToListPeriodResponse(periods []domain.AccountingPeriod) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		res[i] = ToPeriodResponse(&p)
	}
	return res
}
