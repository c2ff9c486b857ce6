package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/core/services"
	"github.com/finbooks/finbooks_core/internal/dto"
)

type PeriodServiceTestSuite struct {
	suite.Suite
	mockPeriodRepo *MockPeriodRepository
	service        portssvc.PeriodSvcFacade

	workplaceID string
	userID      string
}

func (s *PeriodServiceTestSuite) SetupTest() {
	s.mockPeriodRepo = new(MockPeriodRepository)
	s.service = services.NewPeriodService(s.mockPeriodRepo)

	s.workplaceID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *PeriodServiceTestSuite) period(status domain.PeriodStatus) *domain.AccountingPeriod {
	return &domain.AccountingPeriod{
		PeriodID:    uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Year:        2026,
		Month:       7,
		Status:      status,
	}
}

func (s *PeriodServiceTestSuite) TestCreatePeriod_Success() {
	ctx := context.Background()

	s.mockPeriodRepo.On("FindPeriod", ctx, s.workplaceID, 2026, 7).Return(nil, apperrors.ErrNotFound).Once()
	s.mockPeriodRepo.On("SavePeriod", ctx, mock.AnythingOfType("domain.AccountingPeriod")).Return(nil).Once()

	period, err := s.service.CreatePeriod(ctx, s.workplaceID, dto.CreatePeriodRequest{Year: 2026, Month: 7}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PeriodOpen, period.Status)
	s.Equal(2026, period.Year)
	s.Equal(7, period.Month)
	s.mockPeriodRepo.AssertExpectations(s.T())
}

func (s *PeriodServiceTestSuite) TestCreatePeriod_Duplicate() {
	ctx := context.Background()

	s.mockPeriodRepo.On("FindPeriod", ctx, s.workplaceID, 2026, 7).Return(s.period(domain.PeriodOpen), nil).Once()

	_, err := s.service.CreatePeriod(ctx, s.workplaceID, dto.CreatePeriodRequest{Year: 2026, Month: 7}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.mockPeriodRepo.AssertNotCalled(s.T(), "SavePeriod", mock.Anything, mock.Anything)
}

func (s *PeriodServiceTestSuite) TestSetPeriodStatus_CloseSetsClosedAt() {
	ctx := context.Background()
	period := s.period(domain.PeriodOpen)

	s.mockPeriodRepo.On("FindPeriodByID", ctx, s.workplaceID, period.PeriodID).Return(period, nil).Once()
	s.mockPeriodRepo.On("UpdatePeriodStatus", ctx, period.PeriodID, domain.PeriodClosed, mock.AnythingOfType("*time.Time"), s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := s.service.SetPeriodStatus(ctx, s.workplaceID, period.PeriodID, dto.SetPeriodStatusRequest{Status: domain.PeriodClosed}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PeriodClosed, updated.Status)
	s.Require().NotNil(updated.ClosedAt)
}

func (s *PeriodServiceTestSuite) TestSetPeriodStatus_ReopenClosedPeriod() {
	ctx := context.Background()
	period := s.period(domain.PeriodClosed)

	s.mockPeriodRepo.On("FindPeriodByID", ctx, s.workplaceID, period.PeriodID).Return(period, nil).Once()
	s.mockPeriodRepo.On("UpdatePeriodStatus", ctx, period.PeriodID, domain.PeriodOpen, (*time.Time)(nil), s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := s.service.SetPeriodStatus(ctx, s.workplaceID, period.PeriodID, dto.SetPeriodStatusRequest{Status: domain.PeriodOpen}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PeriodOpen, updated.Status)
	s.Nil(updated.ClosedAt)
}

func (s *PeriodServiceTestSuite) TestSetPeriodStatus_OpenToLockedRefused() {
	ctx := context.Background()
	period := s.period(domain.PeriodOpen)

	s.mockPeriodRepo.On("FindPeriodByID", ctx, s.workplaceID, period.PeriodID).Return(period, nil).Once()

	_, err := s.service.SetPeriodStatus(ctx, s.workplaceID, period.PeriodID, dto.SetPeriodStatusRequest{Status: domain.PeriodLocked}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	var transition *apperrors.InvalidTransitionError
	s.Require().ErrorAs(err, &transition)
	s.Equal([]string{"CLOSED"}, transition.Allowed)
	s.mockPeriodRepo.AssertNotCalled(s.T(), "UpdatePeriodStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PeriodServiceTestSuite) TestSetPeriodStatus_LockedIsFinal() {
	ctx := context.Background()
	period := s.period(domain.PeriodLocked)

	s.mockPeriodRepo.On("FindPeriodByID", ctx, s.workplaceID, period.PeriodID).Return(period, nil).Once()

	_, err := s.service.SetPeriodStatus(ctx, s.workplaceID, period.PeriodID, dto.SetPeriodStatusRequest{Status: domain.PeriodOpen}, s.userID)

	s.Require().Error(err)
	var transition *apperrors.InvalidTransitionError
	s.Require().ErrorAs(err, &transition)
	s.Empty(transition.Allowed)
}

func (s *PeriodServiceTestSuite) TestSetPeriodStatus_SameStatusNoOp() {
	ctx := context.Background()
	period := s.period(domain.PeriodOpen)

	s.mockPeriodRepo.On("FindPeriodByID", ctx, s.workplaceID, period.PeriodID).Return(period, nil).Once()

	updated, err := s.service.SetPeriodStatus(ctx, s.workplaceID, period.PeriodID, dto.SetPeriodStatusRequest{Status: domain.PeriodOpen}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.PeriodOpen, updated.Status)
	s.mockPeriodRepo.AssertNotCalled(s.T(), "UpdatePeriodStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
