package services

import (
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Period = NewPeriodService(repos.PeriodRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo, repos.PeriodRepo, repos.ActivityRepo)
	container.Document = NewDocumentService(repos.DocumentRepo, repos.ActivityRepo)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.DocumentRepo, repos.AccountRepo)
	container.Bank = NewBankService(repos.BankRepo, repos.ActivityRepo, container.Payment)
	container.Activity = NewActivityService(repos.ActivityRepo)

	return container
}

// Compile-time interface implementation checks
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.PeriodSvcFacade   = (*periodService)(nil)
	_ portssvc.JournalSvcFacade  = (*journalService)(nil)
	_ portssvc.DocumentSvcFacade = (*documentService)(nil)
	_ portssvc.PaymentSvcFacade  = (*paymentService)(nil)
	_ portssvc.BankSvcFacade     = (*bankService)(nil)
)
