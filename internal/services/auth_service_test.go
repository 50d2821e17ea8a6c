package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceTestSuite exercises the auth flows against an in-memory database
type AuthServiceTestSuite struct {
	suite.Suite
	db               *database.DB
	service          AuthServiceInterface
	tokenService     TokenServiceInterface
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.tokenService = NewTokenService(&config.JWTConfig{
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "fintrack-test",
	})

	s.refreshTokenRepo = repositories.NewRefreshTokenRepository(s.db.DB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.service = NewAuthService(
		repositories.NewUserRepository(s.db.DB),
		s.refreshTokenRepo,
		repositories.NewAuditLogRepository(s.db.DB),
		repositories.NewBlacklistedTokenRepository(s.db.DB),
		NewPasswordService(bcrypt.MinCost),
		s.tokenService,
		&NoopMetrics{},
		logger,
	)
}

func (s *AuthServiceTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) register(email string) *models.User {
	user, err := s.service.Register(&dto.RegisterRequest{
		Email:       email,
		Password:    "hunter2hunter2",
		DisplayName: "Test User",
	}, "127.0.0.1", "test-agent")
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceTestSuite) TestRegister() {
	user := s.register("new@example.com")

	s.NotEqual(uuid.Nil, user.ID)
	s.Equal("new@example.com", user.Email)
	s.Equal("Test User", user.DisplayName)
	s.NotEqual("hunter2hunter2", user.PasswordHash)

	var count int64
	s.db.DB.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionRegister).Count(&count)
	s.Equal(int64(1), count)
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	s.register("dup@example.com")

	_, err := s.service.Register(&dto.RegisterRequest{
		Email:       "dup@example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Someone Else",
	}, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestLogin() {
	user := s.register("login@example.com")

	tokens, err := s.service.Login(&dto.LoginRequest{
		Email:    "login@example.com",
		Password: "hunter2hunter2",
	}, "127.0.0.1", "test-agent")
	s.NoError(err)
	s.NotEmpty(tokens.AccessToken)
	s.NotEmpty(tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)

	claims, err := s.tokenService.ValidateAccessToken(tokens.AccessToken)
	s.NoError(err)
	s.Equal(user.ID.String(), claims.UserID)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	s.register("wrongpass@example.com")

	_, err := s.service.Login(&dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "not2the3password",
	}, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	_, err := s.service.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	}, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_LocksAfterTooManyFailures() {
	s.register("lockout@example.com")

	for i := 0; i < models.MaxFailedLoginAttempts; i++ {
		_, err := s.service.Login(&dto.LoginRequest{
			Email:    "lockout@example.com",
			Password: "not2the3password",
		}, "127.0.0.1", "test-agent")
		s.ErrorIs(err, ErrInvalidCredentials)
	}

	// Even the correct password is rejected once locked
	_, err := s.service.Login(&dto.LoginRequest{
		Email:    "lockout@example.com",
		Password: "hunter2hunter2",
	}, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrAccountLocked)

	var count int64
	s.db.DB.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionAccountLocked).Count(&count)
	s.Equal(int64(1), count)
}

func (s *AuthServiceTestSuite) TestLogin_SuccessResetsFailedAttempts() {
	s.register("reset@example.com")

	for i := 0; i < models.MaxFailedLoginAttempts-1; i++ {
		_, err := s.service.Login(&dto.LoginRequest{
			Email:    "reset@example.com",
			Password: "not2the3password",
		}, "127.0.0.1", "test-agent")
		s.ErrorIs(err, ErrInvalidCredentials)
	}

	_, err := s.service.Login(&dto.LoginRequest{
		Email:    "reset@example.com",
		Password: "hunter2hunter2",
	}, "127.0.0.1", "test-agent")
	s.NoError(err)

	var user models.User
	s.Require().NoError(s.db.DB.Where("email = ?", "reset@example.com").First(&user).Error)
	s.Zero(user.FailedLoginAttempts)
	s.NotNil(user.LastLoginAt)
}

func (s *AuthServiceTestSuite) login(email string) *dto.TokenResponse {
	tokens, err := s.service.Login(&dto.LoginRequest{
		Email:    email,
		Password: "hunter2hunter2",
	}, "127.0.0.1", "test-agent")
	s.Require().NoError(err)
	return tokens
}

func (s *AuthServiceTestSuite) TestRefreshTokens_RotatesToken() {
	s.register("refresh@example.com")
	tokens := s.login("refresh@example.com")

	refreshed, err := s.service.RefreshTokens(tokens.RefreshToken, "127.0.0.1", "test-agent")
	s.NoError(err)
	s.NotEmpty(refreshed.AccessToken)
	s.NotEqual(tokens.RefreshToken, refreshed.RefreshToken)

	// The rotated-out token is revoked and cannot be used again
	_, err = s.service.RefreshTokens(tokens.RefreshToken, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)

	// The new token still works
	_, err = s.service.RefreshTokens(refreshed.RefreshToken, "127.0.0.1", "test-agent")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_InvalidToken() {
	_, err := s.service.RefreshTokens("not.a.token", "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_UnstoredToken() {
	user := s.register("unstored@example.com")

	// A validly signed token the server never issued through login
	refreshToken, _, err := s.tokenService.GenerateRefreshToken(user.ID)
	s.Require().NoError(err)

	_, err = s.service.RefreshTokens(refreshToken, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestLogout() {
	user := s.register("logout@example.com")
	tokens := s.login("logout@example.com")

	s.NoError(s.service.Logout(tokens.AccessToken, "127.0.0.1", "test-agent"))

	jti, err := s.tokenService.GetJTI(tokens.AccessToken)
	s.Require().NoError(err)

	var blacklisted models.BlacklistedToken
	s.NoError(s.db.DB.Where("jti = ?", jti).First(&blacklisted).Error)
	s.Equal(user.ID, blacklisted.UserID)

	// All refresh tokens are revoked as part of logout
	_, err = s.service.RefreshTokens(tokens.RefreshToken, "127.0.0.1", "test-agent")
	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestGetProfile() {
	user := s.register("profile@example.com")

	profile, err := s.service.GetProfile(user.ID)
	s.NoError(err)
	s.Equal(user.ID.String(), profile.ID)
	s.Equal("profile@example.com", profile.Email)
	s.Equal("Test User", profile.DisplayName)
}

func (s *AuthServiceTestSuite) TestGetProfile_NotFound() {
	_, err := s.service.GetProfile(uuid.New())
	s.ErrorIs(err, ErrUserNotFound)
}
