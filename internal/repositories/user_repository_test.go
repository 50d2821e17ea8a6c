package repositories

import (
	"testing"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) TestUserRepository_Create() {
	user := &models.User{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}

	err := s.repo.Create(user)
	s.NoError(err)
	s.NotEqual(uuid.Nil, user.ID)
	s.NotZero(user.CreatedAt)
	s.NotZero(user.UpdatedAt)
}

func (s *UserRepositorySuite) TestUserRepository_Create_DuplicateEmail() {
	user := &models.User{
		Email:        "dupe@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "First",
	}
	s.NoError(s.repo.Create(user))

	duplicate := &models.User{
		Email:        "dupe@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Second",
	}
	err := s.repo.Create(duplicate)
	s.Equal(ErrUserAlreadyExists, err)
}

func (s *UserRepositorySuite) TestUserRepository_GetByEmail() {
	// Create test user
	user := &models.User{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}
	err := s.repo.Create(user)
	s.NoError(err)

	// Test getting existing user
	foundUser, err := s.repo.GetByEmail("test@example.com")
	s.NoError(err)
	s.Equal(user.ID, foundUser.ID)
	s.Equal(user.Email, foundUser.Email)

	// Test getting non-existent user
	_, err = s.repo.GetByEmail("nonexistent@example.com")
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestUserRepository_Update() {
	// Create test user
	user := &models.User{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}
	err := s.repo.Create(user)
	s.NoError(err)

	// Update user
	user.DisplayName = "Updated"
	user.FailedLoginAttempts = 2
	err = s.repo.Update(user)
	s.NoError(err)

	// Verify update
	updatedUser, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("Updated", updatedUser.DisplayName)
	s.Equal(2, updatedUser.FailedLoginAttempts)
}

func (s *UserRepositorySuite) TestUserRepository_FailedLoginAttempts() {
	user := &models.User{
		Email:        "locked@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}
	s.NoError(s.repo.Create(user))

	now := time.Now()
	user.FailedLoginAttempts = models.MaxFailedLoginAttempts
	user.LockedAt = &now
	s.NoError(s.repo.UpdateFailedLoginAttempts(user))

	lockedUser, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(models.MaxFailedLoginAttempts, lockedUser.FailedLoginAttempts)
	s.True(lockedUser.IsLocked())

	// Reset clears both counter and lock
	s.NoError(s.repo.ResetFailedLoginAttempts(user.ID))

	unlockedUser, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(0, unlockedUser.FailedLoginAttempts)
	s.Nil(unlockedUser.LockedAt)
}

func (s *UserRepositorySuite) TestUserRepository_UpdateLastLogin() {
	user := &models.User{
		Email:        "login@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}
	s.NoError(s.repo.Create(user))
	s.Nil(user.LastLoginAt)

	s.NoError(s.repo.UpdateLastLogin(user.ID))

	loggedIn, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.NotNil(loggedIn.LastLoginAt)
}

func (s *UserRepositorySuite) TestUserRepository_Delete() {
	user := &models.User{
		Email:        "delete@example.com",
		PasswordHash: "hashed_password",
		DisplayName:  "Test User",
	}
	s.NoError(s.repo.Create(user))

	s.NoError(s.repo.Delete(user.ID))

	_, err := s.repo.GetByID(user.ID)
	s.Equal(ErrUserNotFound, err)

	// Deleting again reports not found
	err = s.repo.Delete(user.ID)
	s.Equal(ErrUserNotFound, err)
}
