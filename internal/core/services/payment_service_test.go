package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/core/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo  *MockPaymentRepository
	mockDocumentRepo *MockDocumentRepository
	mockAccountRepo  *MockAccountRepository
	service          portssvc.PaymentSvcFacade

	workplaceID string
	userID      string
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.mockPaymentRepo = new(MockPaymentRepository)
	s.mockDocumentRepo = new(MockDocumentRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.service = services.NewPaymentService(s.mockPaymentRepo, s.mockDocumentRepo, s.mockAccountRepo)

	s.workplaceID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *PaymentServiceTestSuite) openInvoice(amountDue int64) *domain.FinancialDocument {
	return &domain.FinancialDocument{
		DocumentID:   uuid.NewString(),
		WorkplaceID:  s.workplaceID,
		Kind:         domain.KindInvoice,
		Status:       domain.DocOpen,
		CurrencyCode: "USD",
		Prefix:       "INV",
		SerialNumber: "1001",
		DocumentTotals: domain.DocumentTotals{
			Total:     decimal.NewFromInt(amountDue),
			AmountDue: decimal.NewFromInt(amountDue),
		},
	}
}

func (s *PaymentServiceTestSuite) recordRequest(doc *domain.FinancialDocument, amount int64) dto.RecordPaymentRequest {
	return dto.RecordPaymentRequest{
		DocumentID:   doc.DocumentID,
		Amount:       decimal.NewFromInt(amount),
		CurrencyCode: "USD",
		Method:       "BANK_TRANSFER",
		Reference:    "wire-4821",
		PaidAt:       time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
}

func (s *PaymentServiceTestSuite) TestRecordPayment_Success() {
	ctx := context.Background()
	doc := s.openInvoice(212)
	req := s.recordRequest(doc, 212)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	var recorded domain.Payment
	var recordedAllocations []domain.PaymentAllocation
	s.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.PaymentAllocation"), (*portsrepo.LedgerPosting)(nil), mock.AnythingOfType("[]domain.Activity")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(domain.Payment)
			recordedAllocations = args.Get(2).([]domain.PaymentAllocation)
		}).Return(nil).Once()

	payment, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PaymentCompleted, payment.Status)
	s.Equal(domain.PaymentReceivable, payment.PaymentType)
	s.True(recorded.Amount.Equal(decimal.NewFromInt(212)))
	s.Require().Len(recordedAllocations, 1)
	s.Equal(doc.DocumentID, recordedAllocations[0].DocumentID)
	s.True(recordedAllocations[0].AllocatedAmount.Equal(decimal.NewFromInt(212)))

	s.mockPaymentRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestRecordPayment_BillIsPayable() {
	ctx := context.Background()
	doc := s.openInvoice(500)
	doc.Kind = domain.KindBill
	req := s.recordRequest(doc, 500)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.PaymentAllocation"), (*portsrepo.LedgerPosting)(nil), mock.AnythingOfType("[]domain.Activity")).Return(nil).Once()

	payment, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PaymentPayable, payment.PaymentType)
}

func (s *PaymentServiceTestSuite) TestRecordPayment_WithholdingTax() {
	ctx := context.Background()
	doc := s.openInvoice(1000)
	req := s.recordRequest(doc, 1000)
	req.WithholdingTaxRate = decimal.NewFromInt(3)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.PaymentAllocation"), (*portsrepo.LedgerPosting)(nil), mock.AnythingOfType("[]domain.Activity")).Return(nil).Once()

	payment, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.True(payment.WithholdingTaxAmount.Equal(decimal.NewFromInt(30)), "withholding: %s", payment.WithholdingTaxAmount)
}

func (s *PaymentServiceTestSuite) TestRecordPayment_WithPosting() {
	ctx := context.Background()
	doc := s.openInvoice(212)
	req := s.recordRequest(doc, 212)

	cash := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, CurrencyCode: "USD", IsActive: true}
	receivable := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, CurrencyCode: "USD", IsActive: true}
	req.CashAccountID = cash.AccountID
	req.ControlAccountID = receivable.AccountID

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockAccountRepo.On("FindAccountsByIDs", ctx, s.workplaceID, []string{cash.AccountID, receivable.AccountID}).
		Return(map[string]domain.Account{cash.AccountID: cash, receivable.AccountID: receivable}, nil).Once()

	var posting *portsrepo.LedgerPosting
	s.mockPaymentRepo.On("RecordPayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.PaymentAllocation"), mock.AnythingOfType("*repositories.LedgerPosting"), mock.AnythingOfType("[]domain.Activity")).
		Run(func(args mock.Arguments) {
			posting = args.Get(3).(*portsrepo.LedgerPosting)
		}).Return(nil).Once()

	_, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(posting)
	s.Require().Len(posting.Lines, 2)
	// Cash is debited, the receivable control account credited.
	s.Equal(cash.AccountID, posting.Lines[0].AccountID)
	s.True(posting.Lines[0].DebitAmount.Equal(decimal.NewFromInt(212)))
	s.Equal(receivable.AccountID, posting.Lines[1].AccountID)
	s.True(posting.Lines[1].CreditAmount.Equal(decimal.NewFromInt(212)))
	// Cash grows, the receivable shrinks.
	s.True(posting.BalanceChanges[cash.AccountID].Equal(decimal.NewFromInt(212)))
	s.True(posting.BalanceChanges[receivable.AccountID].Equal(decimal.NewFromInt(-212)))
}

func (s *PaymentServiceTestSuite) TestRecordPayment_ExceedsAmountDue() {
	ctx := context.Background()
	doc := s.openInvoice(100)
	req := s.recordRequest(doc, 150)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockPaymentRepo.AssertNotCalled(s.T(), "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestRecordPayment_DraftDocument() {
	ctx := context.Background()
	doc := s.openInvoice(100)
	doc.Status = domain.DocDraft
	req := s.recordRequest(doc, 100)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	var state *apperrors.InvalidStateError
	s.Require().ErrorAs(err, &state)
	s.ElementsMatch([]string{"OPEN", "UNCOLLECTIBLE"}, state.Expected)
}

func (s *PaymentServiceTestSuite) TestRecordPayment_CurrencyMismatch() {
	ctx := context.Background()
	doc := s.openInvoice(100)
	req := s.recordRequest(doc, 100)
	req.CurrencyCode = "EUR"

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.RecordPayment(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) completedPayment(amount int64, allocated int64) *domain.Payment {
	payment := &domain.Payment{
		PaymentID:    uuid.NewString(),
		WorkplaceID:  s.workplaceID,
		PaymentType:  domain.PaymentReceivable,
		Amount:       decimal.NewFromInt(amount),
		CurrencyCode: "USD",
		Method:       "BANK_TRANSFER",
		Status:       domain.PaymentCompleted,
	}
	if allocated > 0 {
		payment.Allocations = []domain.PaymentAllocation{{
			AllocationID:    uuid.NewString(),
			PaymentID:       payment.PaymentID,
			DocumentID:      uuid.NewString(),
			AllocatedAmount: decimal.NewFromInt(allocated),
		}}
	}
	return payment
}

func (s *PaymentServiceTestSuite) TestAllocatePayment_Success() {
	ctx := context.Background()
	payment := s.completedPayment(500, 300)
	doc := s.openInvoice(250)

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()
	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockPaymentRepo.On("AddAllocations", ctx, payment.PaymentID, s.workplaceID, mock.AnythingOfType("[]domain.PaymentAllocation"), mock.AnythingOfType("[]domain.Activity")).Return(nil).Once()

	req := dto.AllocatePaymentRequest{
		Allocations: []dto.AllocationRequest{{DocumentID: doc.DocumentID, Amount: decimal.NewFromInt(200)}},
	}
	updated, err := s.service.AllocatePayment(ctx, s.workplaceID, payment.PaymentID, req, s.userID)

	s.Require().NoError(err)
	s.Len(updated.Allocations, 2)
	s.mockPaymentRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestAllocatePayment_OverAllocation() {
	ctx := context.Background()
	payment := s.completedPayment(500, 300)

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()

	req := dto.AllocatePaymentRequest{
		Allocations: []dto.AllocationRequest{{DocumentID: uuid.NewString(), Amount: decimal.NewFromInt(201)}},
	}
	_, err := s.service.AllocatePayment(ctx, s.workplaceID, payment.PaymentID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	var over *apperrors.OverAllocationError
	s.Require().ErrorAs(err, &over)
	s.True(over.PaymentAmount.Equal(decimal.NewFromInt(500)))
	s.True(over.Allocated.Equal(decimal.NewFromInt(501)))
	s.mockPaymentRepo.AssertNotCalled(s.T(), "AddAllocations", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestAllocatePayment_DuplicateDocuments() {
	ctx := context.Background()
	payment := s.completedPayment(500, 0)
	docID := uuid.NewString()

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()

	req := dto.AllocatePaymentRequest{
		Allocations: []dto.AllocationRequest{
			{DocumentID: docID, Amount: decimal.NewFromInt(100)},
			{DocumentID: docID, Amount: decimal.NewFromInt(100)},
		},
	}
	_, err := s.service.AllocatePayment(ctx, s.workplaceID, payment.PaymentID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestReversePayment_Success() {
	ctx := context.Background()
	payment := s.completedPayment(212, 212)

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()

	var reversal domain.Payment
	var reversalAllocations []domain.PaymentAllocation
	s.mockPaymentRepo.On("ReversePayment", ctx, payment.PaymentID, domain.PaymentRefunded, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.PaymentAllocation"), mock.AnythingOfType("[]domain.Activity")).
		Run(func(args mock.Arguments) {
			reversal = args.Get(3).(domain.Payment)
			reversalAllocations = args.Get(4).([]domain.PaymentAllocation)
		}).Return(nil).Once()

	result, err := s.service.ReversePayment(ctx, s.workplaceID, payment.PaymentID, dto.ReversePaymentRequest{Reason: "duplicate wire"}, s.userID)

	s.Require().NoError(err)
	s.True(result.Amount.Equal(decimal.NewFromInt(-212)))
	s.Require().NotNil(result.ReversedPaymentID)
	s.Equal(payment.PaymentID, *result.ReversedPaymentID)
	s.True(reversal.Amount.IsNegative())
	s.Require().Len(reversalAllocations, 1)
	s.True(reversalAllocations[0].AllocatedAmount.Equal(decimal.NewFromInt(-212)))

	s.mockPaymentRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestReversePayment_OfAReversal() {
	ctx := context.Background()
	payment := s.completedPayment(100, 0)
	origID := uuid.NewString()
	payment.ReversedPaymentID = &origID

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.ReversePayment(ctx, s.workplaceID, payment.PaymentID, dto.ReversePaymentRequest{Reason: "no"}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockPaymentRepo.AssertNotCalled(s.T(), "ReversePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestReversePayment_NotCompleted() {
	ctx := context.Background()
	payment := s.completedPayment(100, 0)
	payment.Status = domain.PaymentRefunded

	s.mockPaymentRepo.On("FindPaymentByID", ctx, s.workplaceID, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.ReversePayment(ctx, s.workplaceID, payment.PaymentID, dto.ReversePaymentRequest{Reason: "no"}, s.userID)

	s.Require().Error(err)
	var state *apperrors.InvalidStateError
	s.Require().ErrorAs(err, &state)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
