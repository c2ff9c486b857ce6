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
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/core/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo *MockDocumentRepository
	mockActivityRepo *MockActivityRepository
	service          portssvc.DocumentSvcFacade

	workplaceID string
	userID      string
}

func (s *DocumentServiceTestSuite) SetupTest() {
	s.mockDocumentRepo = new(MockDocumentRepository)
	s.mockActivityRepo = new(MockActivityRepository)
	s.service = services.NewDocumentService(s.mockDocumentRepo, s.mockActivityRepo)

	s.workplaceID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *DocumentServiceTestSuite) TestCreateDocument_InvoiceTotals() {
	ctx := context.Background()
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindInvoice,
		ContactID:    uuid.NewString(),
		CurrencyCode: "USD",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []dto.LineItemRequest{
			{Name: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
		},
		Adjustments: []dto.BillingAdjustmentRequest{
			{Name: "Sales Tax", Type: domain.AdjustmentPercentage, Value: decimal.NewFromInt(6)},
		},
	}

	s.mockDocumentRepo.On("ListSerialNumbers", ctx, s.workplaceID, domain.KindInvoice, "INV").Return([]string{"1000", "1001"}, nil).Once()

	var saved domain.FinancialDocument
	s.mockDocumentRepo.On("SaveDocument", ctx, mock.AnythingOfType("domain.FinancialDocument")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.FinancialDocument)
		}).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	doc, err := s.service.CreateDocument(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.DocDraft, doc.Status)
	s.Equal("1002", doc.SerialNumber)
	s.Equal("INV-1002", doc.Number())

	s.True(doc.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal: %s", doc.Subtotal)
	s.True(doc.TaxTotal.Equal(decimal.NewFromInt(12)), "tax: %s", doc.TaxTotal)
	s.True(doc.Total.Equal(decimal.NewFromInt(212)), "total: %s", doc.Total)
	s.True(doc.AmountDue.Equal(decimal.NewFromInt(212)))
	s.True(saved.Total.Equal(decimal.NewFromInt(212)))

	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestCreateDocument_NegativeQuantity() {
	ctx := context.Background()
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindInvoice,
		ContactID:    uuid.NewString(),
		CurrencyCode: "USD",
		IssueDate:    time.Now().UTC(),
		Items: []dto.LineItemRequest{
			{Name: "Bad line", Quantity: decimal.NewFromInt(-1), UnitPrice: decimal.NewFromInt(10)},
		},
	}

	_, err := s.service.CreateDocument(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "SaveDocument", mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) openInvoice() *domain.FinancialDocument {
	return &domain.FinancialDocument{
		DocumentID:   uuid.NewString(),
		WorkplaceID:  s.workplaceID,
		Kind:         domain.KindInvoice,
		Status:       domain.DocOpen,
		ContactID:    uuid.NewString(),
		CurrencyCode: "USD",
		Prefix:       "INV",
		SerialNumber: "1042",
		IssueDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		DocumentTotals: domain.DocumentTotals{
			Subtotal:  decimal.NewFromInt(200),
			TaxTotal:  decimal.NewFromInt(12),
			Total:     decimal.NewFromInt(212),
			AmountDue: decimal.NewFromInt(212),
		},
	}
}

func (s *DocumentServiceTestSuite) TestUpdateDocument_LockedFields() {
	ctx := context.Background()
	doc := s.openInvoice()
	newContact := uuid.NewString()

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	req := dto.UpdateDocumentRequest{
		ContactID: &newContact,
		Items: []dto.LineItemRequest{
			{Name: "Extra", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}
	_, err := s.service.UpdateDocument(ctx, s.workplaceID, doc.DocumentID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	var locked *apperrors.LockedFieldError
	s.Require().ErrorAs(err, &locked)
	s.ElementsMatch([]string{"contactID", "items"}, locked.Fields)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "UpdateDocument", mock.Anything, mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) TestUpdateDocument_NotesAllowedWhenOpen() {
	ctx := context.Background()
	doc := s.openInvoice()
	notes := "Net 30 confirmed with the customer"

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockDocumentRepo.On("UpdateDocument", ctx, mock.AnythingOfType("domain.FinancialDocument"), false).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	updated, err := s.service.UpdateDocument(ctx, s.workplaceID, doc.DocumentID, dto.UpdateDocumentRequest{Notes: &notes}, s.userID)

	s.Require().NoError(err)
	s.Equal(notes, updated.Notes)
	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestUpdateDocument_DraftRecomputesTotals() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocDraft

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	var saved domain.FinancialDocument
	s.mockDocumentRepo.On("UpdateDocument", ctx, mock.AnythingOfType("domain.FinancialDocument"), true).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.FinancialDocument)
		}).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	req := dto.UpdateDocumentRequest{
		Items: []dto.LineItemRequest{
			{Name: "Revised scope", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100)},
		},
	}
	updated, err := s.service.UpdateDocument(ctx, s.workplaceID, doc.DocumentID, req, s.userID)

	s.Require().NoError(err)
	s.True(updated.Subtotal.Equal(decimal.NewFromInt(300)))
	s.True(saved.Subtotal.Equal(decimal.NewFromInt(300)))
	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestUpdateDocument_TerminalStatus() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocVoid
	notes := "too late"

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.UpdateDocument(ctx, s.workplaceID, doc.DocumentID, dto.UpdateDocumentRequest{Notes: &notes}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	var terminal *apperrors.TerminalStateError
	s.Require().ErrorAs(err, &terminal)
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_ValidTransition() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocDraft

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockDocumentRepo.On("UpdateDocumentStatus", ctx, s.workplaceID, doc.DocumentID, domain.DocOpen, (*time.Time)(nil), s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	updated, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocOpen}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.DocOpen, updated.Status)
	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_InvalidTransition() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocDraft

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocPaid}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	var transition *apperrors.InvalidTransitionError
	s.Require().ErrorAs(err, &transition)
	s.Equal("DRAFT", transition.From)
	s.Equal("PAID", transition.To)
	s.ElementsMatch([]string{"OPEN", "VOID"}, transition.Allowed)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "UpdateDocumentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_SameStatusNoOp() {
	ctx := context.Background()
	doc := s.openInvoice()

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	updated, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocOpen}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.DocOpen, updated.Status)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "UpdateDocumentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_VoidWithPayments() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.AmountPaid = decimal.NewFromInt(100)
	doc.AmountDue = decimal.NewFromInt(112)

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocVoid}, s.userID)

	s.Require().Error(err)
	var state *apperrors.InvalidStateError
	s.Require().ErrorAs(err, &state)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "UpdateDocumentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_UnknownForKind() {
	ctx := context.Background()
	doc := s.openInvoice()

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	_, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocAccepted}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *DocumentServiceTestSuite) TestSetDocumentStatus_PaidSetsSettledAt() {
	ctx := context.Background()
	doc := s.openInvoice()

	var settledAt *time.Time
	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockDocumentRepo.On("UpdateDocumentStatus", ctx, s.workplaceID, doc.DocumentID, domain.DocPaid, mock.AnythingOfType("*time.Time"), s.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			settledAt = args.Get(4).(*time.Time)
		}).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	updated, err := s.service.SetDocumentStatus(ctx, s.workplaceID, doc.DocumentID, dto.SetDocumentStatusRequest{Status: domain.DocPaid}, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(settledAt)
	s.Require().NotNil(updated.SettledAt)
}

func (s *DocumentServiceTestSuite) TestDeleteDocument_Draft() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocDraft

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockDocumentRepo.On("SoftDeleteDocument", ctx, s.workplaceID, doc.DocumentID, s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	err := s.service.DeleteDocument(ctx, s.workplaceID, doc.DocumentID, s.userID)

	s.Require().NoError(err)
	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestDeleteDocument_Open() {
	ctx := context.Background()
	doc := s.openInvoice()

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()
	s.mockDocumentRepo.On("SoftDeleteDocument", ctx, s.workplaceID, doc.DocumentID, s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockActivityRepo.On("Append", ctx, mock.AnythingOfType("domain.Activity")).Return(nil).Once()

	err := s.service.DeleteDocument(ctx, s.workplaceID, doc.DocumentID, s.userID)

	s.Require().NoError(err)
	s.mockDocumentRepo.AssertExpectations(s.T())
}

func (s *DocumentServiceTestSuite) TestDeleteDocument_SettledRefused() {
	ctx := context.Background()
	doc := s.openInvoice()
	doc.Status = domain.DocPaid

	s.mockDocumentRepo.On("FindDocumentByID", ctx, s.workplaceID, doc.DocumentID).Return(doc, nil).Once()

	err := s.service.DeleteDocument(ctx, s.workplaceID, doc.DocumentID, s.userID)

	s.Require().Error(err)
	var terminal *apperrors.TerminalStateError
	s.Require().ErrorAs(err, &terminal)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockDocumentRepo.AssertNotCalled(s.T(), "SoftDeleteDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
