package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

type AuthHandlerSuite struct {
	suite.Suite
	db      *database.DB
	handler *AuthHandler
	echo    *echo.Echo
}

func (s *AuthHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	tokenService := services.NewTokenService(&config.JWTConfig{
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		PrivateKey:           privateKey,
		PublicKey:            publicKey,
		Issuer:               "fintrack-test",
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := services.NewAuthService(
		repositories.NewUserRepository(s.db.DB),
		repositories.NewRefreshTokenRepository(s.db.DB),
		repositories.NewAuditLogRepository(s.db.DB),
		repositories.NewBlacklistedTokenRepository(s.db.DB),
		services.NewPasswordService(bcrypt.MinCost),
		tokenService,
		&services.NoopMetrics{},
		logger,
	)

	s.handler = NewAuthHandler(authService)
	s.echo = echo.New()
	s.echo.Validator = NewValidator()
}

func (s *AuthHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *AuthHandlerSuite) postJSON(path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

func (s *AuthHandlerSuite) registerUser(email string) {
	c, rec := s.postJSON("/register", map[string]string{
		"email":        email,
		"password":     "hunter2hunter2",
		"display_name": "Test User",
	})
	s.Require().NoError(s.handler.Register(c))
	s.Require().Equal(http.StatusCreated, rec.Code)
}

func (s *AuthHandlerSuite) TestRegister() {
	c, rec := s.postJSON("/register", map[string]string{
		"email":        "new@example.com",
		"password":     "hunter2hunter2",
		"display_name": "New User",
	})

	s.NoError(s.handler.Register(c))
	s.Equal(http.StatusCreated, rec.Code)

	var response SuccessResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.NotNil(response.Data)
}

func (s *AuthHandlerSuite) TestRegister_DuplicateEmail() {
	s.registerUser("dup@example.com")

	c, rec := s.postJSON("/register", map[string]string{
		"email":        "dup@example.com",
		"password":     "hunter2hunter2",
		"display_name": "Copy Cat",
	})

	s.NoError(s.handler.Register(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	var errorResp ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &errorResp))
	s.Equal("USER_002", errorResp.Error.Code)
}

func (s *AuthHandlerSuite) TestRegister_InvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("invalid json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.NoError(s.handler.Register(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	var errorResp ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &errorResp))
	s.Equal("VALIDATION_001", errorResp.Error.Code)
}

func (s *AuthHandlerSuite) TestRegister_ValidationFailure() {
	c, _ := s.postJSON("/register", map[string]string{
		"email":        "not-an-email",
		"password":     "hunter2hunter2",
		"display_name": "Bad Email",
	})

	// Validation errors bubble up to the global error handler
	s.Error(s.handler.Register(c))
}

func (s *AuthHandlerSuite) TestLogin() {
	s.registerUser("login@example.com")

	c, rec := s.postJSON("/login", map[string]string{
		"email":    "login@example.com",
		"password": "hunter2hunter2",
	})

	s.NoError(s.handler.Login(c))
	s.Equal(http.StatusOK, rec.Code)

	var tokens dto.TokenResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &tokens))
	s.NotEmpty(tokens.AccessToken)
	s.NotEmpty(tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)
}

func (s *AuthHandlerSuite) TestLogin_InvalidCredentials() {
	s.registerUser("badpass@example.com")

	c, rec := s.postJSON("/login", map[string]string{
		"email":    "badpass@example.com",
		"password": "wrong2password",
	})

	s.NoError(s.handler.Login(c))
	s.Equal(http.StatusUnauthorized, rec.Code)

	var errorResp ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &errorResp))
	s.Equal("AUTH_001", errorResp.Error.Code)
}

func (s *AuthHandlerSuite) login(email string) dto.TokenResponse {
	c, rec := s.postJSON("/login", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	s.Require().NoError(s.handler.Login(c))
	s.Require().Equal(http.StatusOK, rec.Code)

	var tokens dto.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tokens))
	return tokens
}

func (s *AuthHandlerSuite) TestRefreshToken() {
	s.registerUser("refresh@example.com")
	tokens := s.login("refresh@example.com")

	c, rec := s.postJSON("/refresh", map[string]string{
		"refresh_token": tokens.RefreshToken,
	})

	s.NoError(s.handler.RefreshToken(c))
	s.Equal(http.StatusOK, rec.Code)

	var refreshed dto.TokenResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &refreshed))
	s.NotEqual(tokens.RefreshToken, refreshed.RefreshToken)
}

func (s *AuthHandlerSuite) TestRefreshToken_Invalid() {
	c, rec := s.postJSON("/refresh", map[string]string{
		"refresh_token": "not.a.token",
	})

	s.NoError(s.handler.RefreshToken(c))
	s.Equal(http.StatusUnauthorized, rec.Code)

	var errorResp ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &errorResp))
	s.Equal("AUTH_006", errorResp.Error.Code)
}

func (s *AuthHandlerSuite) TestLogout() {
	s.registerUser("logout@example.com")
	tokens := s.login("logout@example.com")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.NoError(s.handler.Logout(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthHandlerSuite) TestLogout_MissingHeader() {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.NoError(s.handler.Logout(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthHandlerSuite) TestMe() {
	s.registerUser("me@example.com")

	var user models.User
	s.Require().NoError(s.db.DB.Where("email = ?", "me@example.com").First(&user).Error)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	// The auth middleware normally sets user_id; set it directly here
	c.Set("user_id", user.ID)

	s.NoError(s.handler.Me(c))
	s.Equal(http.StatusOK, rec.Code)

	var response SuccessResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.NotNil(response.Data)
}

func (s *AuthHandlerSuite) TestMe_Unauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.NoError(s.handler.Me(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}
