package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

// Shared hand-written mocks for the repository ports, used across the
// service test suites in this package.

func tokenFromArgs(args mock.Arguments, idx int) *string {
	if args.Get(idx) == nil {
		return nil
	}
	token := args.Get(idx).(string)
	return &token
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, workplaceID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, workplaceID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, workplaceID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, workplaceID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, workplaceID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, workplaceID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, workplaceID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, workplaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) MoveAccountSubtree(ctx context.Context, account domain.Account, oldPath string) error {
	args := m.Called(ctx, account, oldPath)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, workplaceID string, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, workplaceID, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, workplaceID string, accountID string) error {
	args := m.Called(ctx, workplaceID, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, workplaceID string, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, workplaceID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, workplaceID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, workplaceID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), tokenFromArgs(args, 1), args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.JournalStatus, reversingEntryID *string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, reversingEntryID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListLinesByAccountID(ctx context.Context, workplaceID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, workplaceID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.JournalLine), tokenFromArgs(args, 1), args.Error(2)
}

func (m *MockJournalRepository) FindAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	args := m.Called(ctx, workplaceID, accountID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockJournalRepository) RecomputeAccountBalance(ctx context.Context, workplaceID string, accountID string, year int, month int) (*domain.AccountBalance, error) {
	args := m.Called(ctx, workplaceID, accountID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindPeriod(ctx context.Context, workplaceID string, year int, month int) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, workplaceID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, workplaceID string, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, workplaceID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, workplaceID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, workplaceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, workplaceID string) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, workplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedAt *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, periodID, status, closedAt, userID, now)
	return args.Error(0)
}

// --- Mock DocumentRepository ---

type MockDocumentRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentRepositoryWithTx = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, workplaceID string, documentID string) (*domain.FinancialDocument, error) {
	args := m.Called(ctx, workplaceID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, workplaceID string, filter portsrepo.DocumentListFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error) {
	args := m.Called(ctx, workplaceID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.FinancialDocument), tokenFromArgs(args, 1), args.Error(2)
}

func (m *MockDocumentRepository) ListSerialNumbers(ctx context.Context, workplaceID string, kind domain.DocumentKind, prefix string) ([]string, error) {
	args := m.Called(ctx, workplaceID, kind, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, doc domain.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDocument(ctx context.Context, doc domain.FinancialDocument, replaceItems bool) error {
	args := m.Called(ctx, doc, replaceItems)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDocumentStatus(ctx context.Context, workplaceID string, documentID string, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, workplaceID, documentID, status, settledAt, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) SoftDeleteDocument(ctx context.Context, workplaceID string, documentID string, userID string, now time.Time) error {
	args := m.Called(ctx, workplaceID, documentID, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, workplaceID string, documentID string) (*domain.FinancialDocument, error) {
	args := m.Called(ctx, tx, workplaceID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) UpdateDocumentAmountsInTx(ctx context.Context, tx pgx.Tx, documentID string, amountPaid, amountDue decimal.Decimal, status domain.DocumentStatus, settledAt *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, tx, documentID, amountPaid, amountDue, status, settledAt, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDocumentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock PaymentRepository ---

type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepositoryWithTx = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, workplaceID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByDocument(ctx context.Context, workplaceID string, documentID string) ([]domain.Payment, error) {
	args := m.Called(ctx, workplaceID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, workplaceID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, workplaceID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Payment), tokenFromArgs(args, 1), args.Error(2)
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, payment domain.Payment, allocations []domain.PaymentAllocation, posting *portsrepo.LedgerPosting, activities []domain.Activity) error {
	args := m.Called(ctx, payment, allocations, posting, activities)
	return args.Error(0)
}

func (m *MockPaymentRepository) AddAllocations(ctx context.Context, paymentID string, workplaceID string, allocations []domain.PaymentAllocation, activities []domain.Activity) error {
	args := m.Called(ctx, paymentID, workplaceID, allocations, activities)
	return args.Error(0)
}

func (m *MockPaymentRepository) ReversePayment(ctx context.Context, originalPaymentID string, originalStatus domain.PaymentStatus, reversal domain.Payment, reversalAllocations []domain.PaymentAllocation, activities []domain.Activity) error {
	args := m.Called(ctx, originalPaymentID, originalStatus, reversal, reversalAllocations, activities)
	return args.Error(0)
}

func (m *MockPaymentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPaymentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPaymentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock BankRepository ---

type MockBankRepository struct {
	mock.Mock
}

var _ portsrepo.BankRepositoryFacade = (*MockBankRepository)(nil)

func (m *MockBankRepository) FindTransactionByID(ctx context.Context, workplaceID string, transactionID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, workplaceID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) FindNearbyTransactions(ctx context.Context, workplaceID string, bankAccountID string, date time.Time, window time.Duration) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, workplaceID, bankAccountID, date, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) ListTransactions(ctx context.Context, workplaceID string, bankAccountID string, status *domain.MatchStatus, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	args := m.Called(ctx, workplaceID, bankAccountID, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.BankTransaction), tokenFromArgs(args, 1), args.Error(2)
}

func (m *MockBankRepository) ListUnmatched(ctx context.Context, workplaceID string) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, workplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) SaveTransactions(ctx context.Context, transactions []domain.BankTransaction) error {
	args := m.Called(ctx, transactions)
	return args.Error(0)
}

func (m *MockBankRepository) UpdateMatch(ctx context.Context, txn domain.BankTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockBankRepository) SaveRule(ctx context.Context, rule domain.MatchingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockBankRepository) ListRules(ctx context.Context, workplaceID string) ([]domain.MatchingRule, error) {
	args := m.Called(ctx, workplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchingRule), args.Error(1)
}

func (m *MockBankRepository) DeactivateRule(ctx context.Context, workplaceID string, ruleID string, userID string, now time.Time) error {
	args := m.Called(ctx, workplaceID, ruleID, userID, now)
	return args.Error(0)
}

// --- Mock ActivityRepository ---

type MockActivityRepository struct {
	mock.Mock
}

var _ portsrepo.ActivityRepositoryFacade = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) Append(ctx context.Context, activity domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) AppendInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error {
	args := m.Called(ctx, tx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByEntity(ctx context.Context, workplaceID string, entity domain.ActivityEntity, entityID string, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, workplaceID, entity, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

// --- Mock PaymentService ---

type MockPaymentService struct {
	mock.Mock
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

func (m *MockPaymentService) GetPaymentByID(ctx context.Context, workplaceID string, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, workplaceID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, workplaceID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	args := m.Called(ctx, workplaceID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPaymentsResponse), args.Error(1)
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, workplaceID string, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, error) {
	args := m.Called(ctx, workplaceID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) AllocatePayment(ctx context.Context, workplaceID string, paymentID string, req dto.AllocatePaymentRequest, userID string) (*domain.Payment, error) {
	args := m.Called(ctx, workplaceID, paymentID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ReversePayment(ctx context.Context, workplaceID string, paymentID string, req dto.ReversePaymentRequest, userID string) (*domain.Payment, error) {
	args := m.Called(ctx, workplaceID, paymentID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
