package services

import (
	"context"
	"testing"

	"commercehub/internal/common"
	"commercehub/internal/middleware"
	"commercehub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-do-not-use"

type AuthServiceTestSuite struct {
	suite.Suite
	mockUserRepo   *MockUserRepository
	mockTenantRepo *MockTenantRepository
	service        AuthService

	tenantID uuid.UUID
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockTenantRepo = &MockTenantRepository{}
	suite.service = NewAuthService(suite.mockUserRepo, suite.mockTenantRepo, testJWTSecret)

	suite.mockUserRepo.Test(suite.T())
	suite.mockTenantRepo.Test(suite.T())

	suite.tenantID = uuid.New()
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockTenantRepo.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) storedUser(password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	suite.Require().NoError(err)
	return &models.User{
		ID:           uuid.New(),
		TenantID:     suite.tenantID,
		Email:        "ops@acme.example",
		PasswordHash: string(hash),
		FirstName:    "Jordan",
		LastName:     "Lee",
	}
}

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()

	suite.mockTenantRepo.On("GetByID", ctx, suite.tenantID).
		Return(&models.Tenant{ID: suite.tenantID, Status: "active"}, nil)
	suite.mockUserRepo.On("GetByEmail", ctx, "ops@acme.example").
		Return(nil, common.ErrNotFound)
	suite.mockUserRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.TenantID == suite.tenantID && u.Email == "ops@acme.example" && u.PasswordHash != "correct horse"
	})).Return(nil)

	user, err := suite.service.Register(ctx, suite.tenantID, " Ops@Acme.Example ", "correct horse", "Jordan", "Lee")

	suite.NoError(err)
	suite.Equal("ops@acme.example", user.Email, "email is normalized")
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func (suite *AuthServiceTestSuite) TestRegister_ShortPassword() {
	ctx := context.Background()

	_, err := suite.service.Register(ctx, suite.tenantID, "ops@acme.example", "short", "Jordan", "Lee")

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	ctx := context.Background()
	existing := suite.storedUser("irrelevant")

	suite.mockTenantRepo.On("GetByID", ctx, suite.tenantID).
		Return(&models.Tenant{ID: suite.tenantID, Status: "active"}, nil)
	suite.mockUserRepo.On("GetByEmail", ctx, "ops@acme.example").Return(existing, nil)

	_, err := suite.service.Register(ctx, suite.tenantID, "ops@acme.example", "correct horse", "Jordan", "Lee")

	suite.ErrorIs(err, common.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "Create", ctx, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesTokenWithTenantClaim() {
	ctx := context.Background()
	user := suite.storedUser("correct horse")

	suite.mockUserRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	token, loggedIn, err := suite.service.Login(ctx, user.Email, "correct horse")

	suite.NoError(err)
	suite.Equal(user.ID, loggedIn.ID)

	claims := &middleware.JWTCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	suite.NoError(err)
	suite.True(parsed.Valid)
	suite.Equal(user.ID, claims.UserID)
	suite.Equal(suite.tenantID, claims.TenantID)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	user := suite.storedUser("correct horse")

	suite.mockUserRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	_, _, err := suite.service.Login(ctx, user.Email, "wrong password")

	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailSameError() {
	ctx := context.Background()

	suite.mockUserRepo.On("GetByEmail", ctx, "ghost@acme.example").
		Return(nil, common.ErrNotFound)

	_, _, err := suite.service.Login(ctx, "ghost@acme.example", "whatever")

	suite.ErrorIs(err, ErrInvalidCredentials,
		"unknown email and wrong password must be indistinguishable")
}

func (suite *AuthServiceTestSuite) TestGetUser_Success() {
	ctx := context.Background()
	user := suite.storedUser("correct horse")

	suite.mockUserRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := suite.service.GetUser(ctx, user.ID)

	suite.NoError(err)
	suite.Equal(user.Email, got.Email)
}
