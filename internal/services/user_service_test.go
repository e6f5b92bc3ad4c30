package services

import (
	"context"
	"testing"

	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

type mockUserWriteRepo struct {
	repository.UserRepository
	users   map[uint]*models.User
	updated *models.User
	created *models.User
}

func (m *mockUserWriteRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserWriteRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserWriteRepo) Update(ctx context.Context, user *models.User) error {
	m.updated = user
	return nil
}

func newUserServiceForTest(repo *mockUserWriteRepo) (*UserService, *jobs.Worker) {
	worker := jobs.NewWorker(0)
	notifSvc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{})
	return NewUserService(repo, worker, nil, notifSvc), worker
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	hash, _ := HashPassword("old-password")
	repo := &mockUserWriteRepo{users: map[uint]*models.User{
		1: {ID: 1, EncryptedPassword: hash},
	}}
	svc, worker := newUserServiceForTest(repo)
	defer worker.Shutdown()

	err := svc.ChangePassword(context.Background(), 1, "not-the-password", "new-password-123")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Nil(t, repo.updated)
}

func TestChangePassword_Success(t *testing.T) {
	hash, _ := HashPassword("old-password")
	repo := &mockUserWriteRepo{users: map[uint]*models.User{
		1: {ID: 1, EncryptedPassword: hash},
	}}
	svc, worker := newUserServiceForTest(repo)
	defer worker.Shutdown()

	err := svc.ChangePassword(context.Background(), 1, "old-password", "new-password-123")
	assert.NoError(t, err)
	assert.NotNil(t, repo.updated)
	assert.True(t, VerifyPassword("new-password-123", repo.updated.EncryptedPassword))
}

func TestUserCreate_LowercasesEmailAndHashes(t *testing.T) {
	repo := &mockUserWriteRepo{users: map[uint]*models.User{}}
	svc, worker := newUserServiceForTest(repo)
	defer worker.Shutdown()

	user := &models.User{Email: "Mario.Rossi@Example.COM", FullName: "Mario Rossi"}
	err := svc.Create(context.Background(), user, "secret-password")
	assert.NoError(t, err)
	assert.Equal(t, "mario.rossi@example.com", repo.created.Email)
	assert.NotEqual(t, "secret-password", repo.created.EncryptedPassword)
	assert.True(t, VerifyPassword("secret-password", repo.created.EncryptedPassword))
}
