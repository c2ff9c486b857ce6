package services_test

import (
	"context"
	"testing"

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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade

	workplaceID string
	userID      string
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockAccountRepo = new(MockAccountRepository)
	s.service = services.NewAccountService(s.mockAccountRepo)

	s.workplaceID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *AccountServiceTestSuite) TestCreateAccount_DerivesNormalBalance() {
	ctx := context.Background()

	cases := []struct {
		accountType domain.AccountType
		expected    domain.NormalBalance
	}{
		{domain.Asset, domain.DebitBalance},
		{domain.Expense, domain.DebitBalance},
		{domain.Liability, domain.CreditBalance},
		{domain.Equity, domain.CreditBalance},
		{domain.Revenue, domain.CreditBalance},
	}

	for i, tc := range cases {
		req := dto.CreateAccountRequest{
			Code:         "100" + string(rune('0'+i)),
			Name:         "Account under test",
			AccountType:  tc.accountType,
			CurrencyCode: "USD",
		}

		s.mockAccountRepo.On("FindAccountByCode", ctx, s.workplaceID, req.Code).Return(nil, apperrors.ErrNotFound).Once()

		var saved domain.Account
		s.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(domain.Account)
			}).Return(nil).Once()

		account, err := s.service.CreateAccount(ctx, s.workplaceID, req, s.userID)

		s.Require().NoError(err)
		s.Equal(tc.expected, account.NormalBalance, "type %s", tc.accountType)
		s.True(account.IsActive)
		s.True(saved.Balance.IsZero())
		s.Equal(req.Code, saved.Path)
	}
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: uuid.NewString(), Code: "1000"}

	s.mockAccountRepo.On("FindAccountByCode", ctx, s.workplaceID, "1000").Return(existing, nil).Once()

	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset, CurrencyCode: "USD"}
	_, err := s.service.CreateAccount(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.mockAccountRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_SubTypeContradictsType() {
	ctx := context.Background()

	req := dto.CreateAccountRequest{
		Code:         "4000",
		Name:         "Sales",
		AccountType:  domain.Revenue,
		SubType:      "FIXED_ASSET",
		CurrencyCode: "USD",
	}
	_, err := s.service.CreateAccount(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_SubTypeContradictsType() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Code:        "1000",
		AccountType: domain.Asset,
		Path:        "1000",
	}
	subType := "OPERATING_REVENUE"

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()

	_, err := s.service.UpdateAccount(ctx, s.workplaceID, account.AccountID, dto.UpdateAccountRequest{SubType: &subType}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_ChildExtendsParentPath() {
	ctx := context.Background()
	parent := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Code:        "1000",
		AccountType: domain.Asset,
		Path:        "1000",
	}

	s.mockAccountRepo.On("FindAccountByCode", ctx, s.workplaceID, "1010").Return(nil, apperrors.ErrNotFound).Once()
	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, parent.AccountID).Return(parent, nil).Once()
	s.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	req := dto.CreateAccountRequest{
		Code:            "1010",
		Name:            "Checking",
		AccountType:     domain.Asset,
		CurrencyCode:    "USD",
		ParentAccountID: &parent.AccountID,
	}
	account, err := s.service.CreateAccount(ctx, s.workplaceID, req, s.userID)

	s.Require().NoError(err)
	s.Equal("1000/1010", account.Path)
	s.Equal(parent.AccountID, account.ParentAccountID)
}

func (s *AccountServiceTestSuite) TestCreateAccount_ParentTypeMismatch() {
	ctx := context.Background()
	parent := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		AccountType: domain.Liability,
		Path:        "2000",
	}

	s.mockAccountRepo.On("FindAccountByCode", ctx, s.workplaceID, "1010").Return(nil, apperrors.ErrNotFound).Once()
	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, parent.AccountID).Return(parent, nil).Once()

	req := dto.CreateAccountRequest{
		Code:            "1010",
		Name:            "Checking",
		AccountType:     domain.Asset,
		CurrencyCode:    "USD",
		ParentAccountID: &parent.AccountID,
	}
	_, err := s.service.CreateAccount(ctx, s.workplaceID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_SystemAccountRefused() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:       uuid.NewString(),
		WorkplaceID:     s.workplaceID,
		IsSystemAccount: true,
	}
	name := "Renamed"

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()

	_, err := s.service.UpdateAccount(ctx, s.workplaceID, account.AccountID, dto.UpdateAccountRequest{Name: &name}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrSystemAccount)
	s.mockAccountRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_ReparentCycleRefused() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Code:        "1000",
		AccountType: domain.Asset,
		Path:        "1000",
	}
	descendant := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Code:        "1010",
		AccountType: domain.Asset,
		Path:        "1000/1010",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, descendant.AccountID).Return(descendant, nil).Once()

	_, err := s.service.UpdateAccount(ctx, s.workplaceID, account.AccountID, dto.UpdateAccountRequest{ParentAccountID: &descendant.AccountID}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrParentCycle)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_ReparentRewritesSubtreePaths() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:       uuid.NewString(),
		WorkplaceID:     s.workplaceID,
		Code:            "2000",
		AccountType:     domain.Asset,
		ParentAccountID: uuid.NewString(),
		Path:            "1000/2000",
	}
	newParent := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Code:        "4000",
		AccountType: domain.Asset,
		Path:        "4000",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, newParent.AccountID).Return(newParent, nil).Once()

	var moved domain.Account
	var oldPath string
	s.mockAccountRepo.On("MoveAccountSubtree", ctx, mock.AnythingOfType("domain.Account"), "1000/2000").
		Run(func(args mock.Arguments) {
			moved = args.Get(1).(domain.Account)
			oldPath = args.Get(2).(string)
		}).Return(nil).Once()

	updated, err := s.service.UpdateAccount(ctx, s.workplaceID, account.AccountID, dto.UpdateAccountRequest{ParentAccountID: &newParent.AccountID}, s.userID)

	s.Require().NoError(err)
	s.Equal("4000/2000", updated.Path)
	s.Equal("4000/2000", moved.Path)
	s.Equal("1000/2000", oldPath)
	s.mockAccountRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_ReparentUnderOwnSubtreeAfterMoveRefused() {
	// An earlier move of 2000 under 4000 already rewrote the grandchild's
	// path, so the ancestry check must still catch the cycle.
	ctx := context.Background()
	account := &domain.Account{
		AccountID:       uuid.NewString(),
		WorkplaceID:     s.workplaceID,
		Code:            "2000",
		AccountType:     domain.Asset,
		ParentAccountID: uuid.NewString(),
		Path:            "4000/2000",
	}
	grandchild := &domain.Account{
		AccountID:       uuid.NewString(),
		WorkplaceID:     s.workplaceID,
		Code:            "3000",
		AccountType:     domain.Asset,
		ParentAccountID: uuid.NewString(),
		Path:            "4000/2000/3000",
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, grandchild.AccountID).Return(grandchild, nil).Once()

	_, err := s.service.UpdateAccount(ctx, s.workplaceID, account.AccountID, dto.UpdateAccountRequest{ParentAccountID: &grandchild.AccountID}, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrParentCycle)
	s.mockAccountRepo.AssertNotCalled(s.T(), "MoveAccountSubtree", mock.Anything, mock.Anything, mock.Anything)
	s.mockAccountRepo.AssertNotCalled(s.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_WithPostingsRefused() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		IsActive:    true,
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("HasPostings", ctx, account.AccountID).Return(true, nil).Once()

	err := s.service.DeactivateAccount(ctx, s.workplaceID, account.AccountID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.ErrorIs(err, services.ErrAccountHasEntries)
	s.mockAccountRepo.AssertNotCalled(s.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		IsActive:    true,
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("HasPostings", ctx, account.AccountID).Return(false, nil).Once()
	s.mockAccountRepo.On("HasChildren", ctx, account.AccountID).Return(false, nil).Once()
	s.mockAccountRepo.On("DeactivateAccount", ctx, s.workplaceID, account.AccountID, s.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := s.service.DeactivateAccount(ctx, s.workplaceID, account.AccountID, s.userID)

	s.Require().NoError(err)
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestDeleteAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		IsActive:    true,
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("HasPostings", ctx, account.AccountID).Return(false, nil).Once()
	s.mockAccountRepo.On("HasChildren", ctx, account.AccountID).Return(false, nil).Once()
	s.mockAccountRepo.On("DeleteAccount", ctx, s.workplaceID, account.AccountID).Return(nil).Once()

	err := s.service.DeleteAccount(ctx, s.workplaceID, account.AccountID, s.userID)

	s.Require().NoError(err)
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestDeleteAccount_SystemAccountRefused() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:       uuid.NewString(),
		WorkplaceID:     s.workplaceID,
		IsSystemAccount: true,
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()

	err := s.service.DeleteAccount(ctx, s.workplaceID, account.AccountID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrSystemAccount)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockAccountRepo.AssertNotCalled(s.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestDeleteAccount_WithChildrenRefused() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		IsActive:    true,
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()
	s.mockAccountRepo.On("HasPostings", ctx, account.AccountID).Return(false, nil).Once()
	s.mockAccountRepo.On("HasChildren", ctx, account.AccountID).Return(true, nil).Once()

	err := s.service.DeleteAccount(ctx, s.workplaceID, account.AccountID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrAccountHasChilds)
	s.mockAccountRepo.AssertNotCalled(s.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCalculateAccountBalance() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		WorkplaceID: s.workplaceID,
		Balance:     decimal.NewFromInt(1234),
	}

	s.mockAccountRepo.On("FindAccountByID", ctx, s.workplaceID, account.AccountID).Return(account, nil).Once()

	balance, err := s.service.CalculateAccountBalance(ctx, s.workplaceID, account.AccountID)

	s.Require().NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(1234)))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
