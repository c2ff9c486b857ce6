package mapping

import (
	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/finbooks/finbooks_core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		WorkplaceID:     d.WorkplaceID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		SubType:         d.SubType,
		NormalBalance:   string(d.NormalBalance),
		CurrencyCode:    d.CurrencyCode,
		ParentAccountID: d.ParentAccountID,
		Path:            d.Path,
		Description:     d.Description,
		IsSystemAccount: d.IsSystemAccount,
		IsHeader:        d.IsHeader,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
		Balance:         d.Balance,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		WorkplaceID:     m.WorkplaceID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		SubType:         m.SubType,
		NormalBalance:   domain.NormalBalance(m.NormalBalance),
		CurrencyCode:    m.CurrencyCode,
		ParentAccountID: m.ParentAccountID,
		Path:            m.Path,
		Description:     m.Description,
		IsSystemAccount: m.IsSystemAccount,
		IsHeader:        m.IsHeader,
		IsActive:        m.IsActive,
		Balance:         m.Balance,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

// ToDomainAccountBalance converts a model AccountBalance to the domain shape.
func ToDomainAccountBalance(m models.AccountBalance) domain.AccountBalance {
	return domain.AccountBalance{
		AccountID:      m.AccountID,
		WorkplaceID:    m.WorkplaceID,
		Year:           m.Year,
		Month:          m.Month,
		PeriodDebits:   m.PeriodDebits,
		PeriodCredits:  m.PeriodCredits,
		ClosingBalance: m.ClosingBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
