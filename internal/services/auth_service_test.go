package services

import (
	"context"
	"testing"
	"time"

	"github.com/rentara/rentara-api/internal/config"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

type mockAuthUserRepo struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

type mockRefreshTokenRepo struct {
	repository.RefreshTokenRepository
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	deleted         []string
	created         []*models.RefreshToken
}

func (m *mockRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return m.mockFindByToken(ctx, token)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, rt *models.RefreshToken) error {
	m.created = append(m.created, rt)
	return nil
}

func (m *mockRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	mockRepo := &mockAuthUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{Email: email, Status: models.StatusInactive}, nil
		},
	}
	service := NewAuthService(mockRepo, &mockRefreshTokenRepo{}, testAuthConfig())

	result, err := service.Login(context.Background(), "inactive@example.com", "password")
	assert.Nil(t, result)
	assert.EqualError(t, err, "account inactive or suspended")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := HashPassword("correct-password")
	mockRepo := &mockAuthUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{Email: email, Status: models.StatusActive, EncryptedPassword: hash}, nil
		},
	}
	service := NewAuthService(mockRepo, &mockRefreshTokenRepo{}, testAuthConfig())

	result, err := service.Login(context.Background(), "user@example.com", "wrong-password")
	assert.Nil(t, result)
	assert.EqualError(t, err, "invalid credentials")
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, _ := HashPassword("correct-password")
	mockRepo := &mockAuthUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email, Status: models.StatusActive, EncryptedPassword: hash, Role: models.RoleManager}, nil
		},
	}
	rtRepo := &mockRefreshTokenRepo{}
	service := NewAuthService(mockRepo, rtRepo, testAuthConfig())

	result, err := service.Login(context.Background(), "user@example.com", "correct-password")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Len(t, rtRepo.created, 1)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	rtRepo := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
	}
	mockRepo := &mockAuthUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Status: models.StatusActive, Role: models.RoleManager}, nil
		},
	}
	service := NewAuthService(mockRepo, rtRepo, testAuthConfig())

	result, err := service.RefreshToken(context.Background(), "old-token")
	assert.NoError(t, err)

	// The used token is gone and a fresh one takes its place
	assert.Equal(t, []string{"old-token"}, rtRepo.deleted)
	assert.Len(t, rtRepo.created, 1)
	assert.NotEqual(t, "old-token", result.RefreshToken)
}

func TestAuthService_RefreshToken_Expired(t *testing.T) {
	expiresAt := time.Now().Add(-time.Hour)
	rtRepo := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
	}
	service := NewAuthService(&mockAuthUserRepo{}, rtRepo, testAuthConfig())

	result, err := service.RefreshToken(context.Background(), "stale-token")
	assert.Nil(t, result)
	assert.EqualError(t, err, "token expired")
	assert.Equal(t, []string{"stale-token"}, rtRepo.deleted)
}
