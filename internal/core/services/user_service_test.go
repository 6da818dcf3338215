package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/core/services"
	"github.com/expenseflow/approval_backend/internal/dto"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	args := m.Called(ctx, userIDs)
	var users map[string]domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[string]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) ListUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, companyID, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

// --- Mock CompanyRepository ---
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	var company *domain.Company
	if args.Get(0) != nil {
		company = args.Get(0).(*domain.Company)
	}
	return company, args.Error(1)
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockCompanyRepo *MockCompanyRepository
	service         portssvc.UserSvcFacade
	companyID       string
	creatorID       string
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockCompanyRepo)
	suite.companyID = uuid.NewString()
	suite.creatorID = uuid.NewString()
}

func (suite *UserServiceTestSuite) company() *domain.Company {
	return &domain.Company{CompanyID: suite.companyID, Name: "Acme", DefaultCurrencyCode: "USD", IsActive: true}
}

// --- CreateUser Tests ---
func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username:  "jdoe",
		Password:  "password123",
		Name:      "Jane Doe",
		CompanyID: suite.companyID,
	}

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company(), nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Username == "jdoe" && user.PasswordHash != "password123"
	})).Return(nil).Once()

	createdUser, err := suite.service.CreateUser(ctx, req, suite.creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(createdUser)
	suite.Equal("jdoe", createdUser.Username)
	suite.Equal(domain.RoleEmployee, createdUser.Role) // Role defaults to employee
	suite.NotEmpty(createdUser.UserID)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("password123")))
	suite.Equal(suite.creatorID, createdUser.CreatedBy)

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username:  "taken",
		Password:  "password123",
		Name:      "Jane Doe",
		CompanyID: suite.companyID,
	}
	existing := &domain.User{UserID: uuid.NewString(), Username: "taken"}

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company(), nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, "taken").Return(existing, nil).Once()

	createdUser, err := suite.service.CreateUser(ctx, req, suite.creatorID)

	suite.Require().Error(err)
	suite.Nil(createdUser)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_CompanyMissing() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username:  "jdoe",
		Password:  "password123",
		Name:      "Jane Doe",
		CompanyID: suite.companyID,
	}

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(nil, apperrors.ErrNotFound).Once()

	createdUser, err := suite.service.CreateUser(ctx, req, suite.creatorID)

	suite.Require().Error(err)
	suite.Nil(createdUser)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestCreateUser_ManagerMustHoldManagerRole() {
	ctx := context.Background()
	managerID := uuid.NewString()
	req := dto.CreateUserRequest{
		Username:  "jdoe",
		Password:  "password123",
		Name:      "Jane Doe",
		CompanyID: suite.companyID,
		ManagerID: &managerID,
	}
	// The referenced manager is a plain employee.
	manager := &domain.User{UserID: managerID, Role: domain.RoleEmployee}

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company(), nil).Once()
	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()

	createdUser, err := suite.service.CreateUser(ctx, req, suite.creatorID)

	suite.Require().Error(err)
	suite.Nil(createdUser)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- GetUserByID Tests ---
func (suite *UserServiceTestSuite) TestGetUserByID_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	expectedUser := &domain.User{UserID: userID, Name: "Found User"}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(expectedUser, nil).Once()

	user, err := suite.service.GetUserByID(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(expectedUser, user)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.GetUserByID(ctx, userID)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- ListUsers Tests ---
func (suite *UserServiceTestSuite) TestListUsers_DefaultsLimit() {
	ctx := context.Background()
	expectedUsers := []domain.User{{UserID: uuid.NewString()}, {UserID: uuid.NewString()}}

	suite.mockUserRepo.On("ListUsersByCompany", ctx, suite.companyID, 20, 0).Return(expectedUsers, nil).Once()

	users, err := suite.service.ListUsers(ctx, suite.companyID, 0, 0)

	suite.Require().NoError(err)
	suite.Len(users, 2)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestListUsers_EmptyIsNotNil() {
	ctx := context.Background()

	suite.mockUserRepo.On("ListUsersByCompany", ctx, suite.companyID, 10, 0).Return(nil, nil).Once()

	users, err := suite.service.ListUsers(ctx, suite.companyID, 10, 0)

	suite.Require().NoError(err)
	suite.Require().NotNil(users)
	suite.Empty(users)
}

func (suite *UserServiceTestSuite) TestListUsers_RepoError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockUserRepo.On("ListUsersByCompany", ctx, suite.companyID, 20, 0).Return(nil, expectedErr).Once()

	users, err := suite.service.ListUsers(ctx, suite.companyID, 20, 0)

	suite.Require().Error(err)
	suite.Nil(users)
	suite.ErrorIs(err, expectedErr)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
