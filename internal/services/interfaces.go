package services

import (
	"context"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"

	"github.com/google/uuid"
)

// TokenServiceInterface defines the contract for JWT token operations
type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

// PasswordServiceInterface defines the contract for password operations
type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// AuthServiceInterface defines the contract for authentication operations
type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
	GetProfile(userID uuid.UUID) (*dto.UserProfileResponse, error)
}

// LedgerServiceInterface defines the contract for transaction entry operations
type LedgerServiceInterface interface {
	SaveEntry(userID uuid.UUID, req *dto.SaveTransactionRequest, ipAddress, userAgent string) (*models.Transaction, error)
	UpdateEntry(userID, entryID uuid.UUID, req *dto.SaveTransactionRequest, ipAddress, userAgent string) (*models.Transaction, error)
	DeleteEntry(userID, entryID uuid.UUID, ipAddress, userAgent string) error
	GetEntry(userID, entryID uuid.UUID) (*models.Transaction, error)
	ListEntries(userID uuid.UUID, startDate, endDate string) ([]models.Transaction, error)
	EntryForms(userID, entryID uuid.UUID) (*dto.EntryFormResponse, error)
}

// DashboardServiceInterface defines the contract for dashboard aggregation
type DashboardServiceInterface interface {
	GetDashboard(userID uuid.UUID, startDate, endDate string) (*models.DashboardView, error)
}

// FeedInterface defines the contract for the live transaction feed
type FeedInterface interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []models.Transaction, func())
	Publish(userID uuid.UUID, transactions []models.Transaction)
}

// MetricsRecorderInterface defines the contract for recording business metrics
type MetricsRecorderInterface interface {
	RecordUserRegistered()
	RecordUserLogin(success bool)
	RecordTransactionSaved(operation string)
	RecordDashboardQuery(duration time.Duration)
	RecordFeedSubscribers(count int)
}

// SampleDataServiceInterface defines the contract for dev sample data generation
type SampleDataServiceInterface interface {
	Generate(userID uuid.UUID, days int) ([]models.Transaction, error)
}
