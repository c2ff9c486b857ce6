package mapping

import (
	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelPayment converts a domain Payment to its row shape.
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:            d.PaymentID,
		WorkplaceID:          d.WorkplaceID,
		PaymentType:          string(d.PaymentType),
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		Method:               d.Method,
		Reference:            d.Reference,
		Notes:                d.Notes,
		WithholdingTaxRate:   d.WithholdingTaxRate,
		WithholdingTaxAmount: d.WithholdingTaxAmount,
		PaidAt:               d.PaidAt,
		Status:               string(d.Status),
		ReversedPaymentID:    d.ReversedPaymentID,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a payment row to the domain shape. Allocations are
// loaded separately.
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:            m.PaymentID,
		WorkplaceID:          m.WorkplaceID,
		PaymentType:          domain.PaymentType(m.PaymentType),
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		Method:               m.Method,
		Reference:            m.Reference,
		Notes:                m.Notes,
		WithholdingTaxRate:   m.WithholdingTaxRate,
		WithholdingTaxAmount: m.WithholdingTaxAmount,
		PaidAt:               m.PaidAt,
		Status:               domain.PaymentStatus(m.Status),
		ReversedPaymentID:    m.ReversedPaymentID,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAllocation converts a domain PaymentAllocation to its row shape.
func ToModelAllocation(d domain.PaymentAllocation) models.PaymentAllocation {
	return models.PaymentAllocation{
		AllocationID:    d.AllocationID,
		PaymentID:       d.PaymentID,
		DocumentID:      d.DocumentID,
		AllocatedAmount: d.AllocatedAmount,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocation converts an allocation row to the domain shape.
func ToDomainAllocation(m models.PaymentAllocation) domain.PaymentAllocation {
	return domain.PaymentAllocation{
		AllocationID:    m.AllocationID,
		PaymentID:       m.PaymentID,
		DocumentID:      m.DocumentID,
		AllocatedAmount: m.AllocatedAmount,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAllocationSlice converts allocation rows to domain allocations.
func ToDomainAllocationSlice(ms []models.PaymentAllocation) []domain.PaymentAllocation {
	ds := make([]domain.PaymentAllocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAllocation(m)
	}
	return ds
}
