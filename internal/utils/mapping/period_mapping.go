package mapping

import (
	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelPeriod converts a domain AccountingPeriod to the model shape.
func ToModelPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:    d.PeriodID,
		WorkplaceID: d.WorkplaceID,
		Year:        d.Year,
		Month:       d.Month,
		Status:      models.PeriodStatus(d.Status),
		ClosedAt:    d.ClosedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model AccountingPeriod to the domain shape.
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:    m.PeriodID,
		WorkplaceID: m.WorkplaceID,
		Year:        m.Year,
		Month:       m.Month,
		Status:      domain.PeriodStatus(m.Status),
		ClosedAt:    m.ClosedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPeriodSlice converts model periods to domain periods.
func ToDomainPeriodSlice(ms []models.AccountingPeriod) []domain.AccountingPeriod {
	ds := make([]domain.AccountingPeriod, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPeriod(m)
	}
	return ds
}
