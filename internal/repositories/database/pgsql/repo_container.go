package pgsql

import (
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	periodRepo := newPgxPeriodRepository(dbPool)
	documentRepo := newPgxDocumentRepository(dbPool)
	activityRepo := newPgxActivityRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool, documentRepo, journalRepo, activityRepo)
	bankRepo := newPgxBankRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		JournalRepo:  journalRepo,
		PeriodRepo:   periodRepo,
		DocumentRepo: documentRepo,
		PaymentRepo:  paymentRepo,
		BankRepo:     bankRepo,
		ActivityRepo: activityRepo,
	}
}
