package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock InstallmentRepository
type mockInstallmentRepository struct {
	mockFindByID     func(ctx context.Context, id uint) (*models.Installment, error)
	mockUpdateStatus func(ctx context.Context, installment *models.Installment, newStatus string) error
	mockListOverdue  func(ctx context.Context, scope repository.Scope, asOf time.Time) ([]models.Installment, error)
}

func (m *mockInstallmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}
func (m *mockInstallmentRepository) FindByLease(ctx context.Context, leaseID uint) ([]models.Installment, error) {
	return nil, nil
}
func (m *mockInstallmentRepository) Create(ctx context.Context, installment *models.Installment) error {
	return nil
}
func (m *mockInstallmentRepository) UpdateStatus(ctx context.Context, installment *models.Installment, newStatus string) error {
	if m.mockUpdateStatus != nil {
		return m.mockUpdateStatus(ctx, installment, newStatus)
	}
	installment.Status = newStatus
	return nil
}
func (m *mockInstallmentRepository) ListByStatus(ctx context.Context, scope repository.Scope, status string) ([]models.Installment, error) {
	return nil, nil
}
func (m *mockInstallmentRepository) ListOverdue(ctx context.Context, scope repository.Scope, asOf time.Time) ([]models.Installment, error) {
	if m.mockListOverdue != nil {
		return m.mockListOverdue(ctx, scope, asOf)
	}
	return nil, nil
}
func (m *mockInstallmentRepository) CountByLeaseAndStatus(ctx context.Context, leaseID uint, status string) (int64, error) {
	return 0, nil
}

// Mock LeaseRepository (embedding to avoid implementing all methods)
type mockLeaseRepository struct {
	repository.LeaseRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Lease, error)
}

func (m *mockLeaseRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}

// Mock NotificationRepository
type mockNotificationRepository struct {
	repository.NotificationRepository
	mu      sync.Mutex
	created []models.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *notification)
	return nil
}

func (m *mockNotificationRepository) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

// Mock UserRepository
type mockUserRepository struct {
	repository.UserRepository
	mockFindAdmins func(ctx context.Context) ([]models.User, error)
}

func (m *mockUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	if m.mockFindAdmins != nil {
		return m.mockFindAdmins(ctx)
	}
	return nil, nil
}

func elevatedCaller() Caller {
	return Caller{UserID: 1, Roles: []string{models.RoleManager}}
}

func testInstallment(status string) *models.Installment {
	return &models.Installment{
		ID:      500,
		LeaseID: 100,
		Ordinal: 3,
		DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Amount:  1000,
		Status:  status,
		Lease: models.Lease{
			ID:       100,
			TenantID: 10,
			Tenant:   models.Tenant{ID: 10, UserID: 50, FullName: "Mario Rossi", User: models.User{ID: 50, Email: "mario@example.com"}},
			Property: models.Property{ID: 7, Address: "Via Roma 1"},
		},
	}
}

func newInstallmentServiceForTest(repo *mockInstallmentRepository, notifRepo *mockNotificationRepository) (*InstallmentService, *jobs.Worker) {
	worker := jobs.NewWorker(0)
	notifSvc := NewNotificationService(notifRepo, &mockUserRepository{})
	// Email delivery is exercised separately; the async job tolerates its
	// absence here.
	svc := NewInstallmentService(repo, &mockLeaseRepository{}, NewAccessService(), notifSvc, nil, worker)
	return svc, worker
}

func TestMarkStatus_UnpaidToPaidNotifiesOnce(t *testing.T) {
	installment := testInstallment(models.InstallmentStatusUnpaid)
	updateCalls := 0
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return installment, nil
		},
		mockUpdateStatus: func(ctx context.Context, inst *models.Installment, newStatus string) error {
			updateCalls++
			inst.Status = newStatus
			return nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	result, err := svc.MarkStatus(context.Background(), elevatedCaller(), 500, models.InstallmentStatusPaid)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)
	assert.Equal(t, 1, updateCalls)

	// Notification is async
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, notifRepo.createdCount())
	assert.Equal(t, uint(50), notifRepo.created[0].UserID)
	assert.Equal(t, "Payment confirmed", notifRepo.created[0].Title)
}

func TestMarkStatus_SameStatusIsSilent(t *testing.T) {
	installment := testInstallment(models.InstallmentStatusPaid)
	updateCalls := 0
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return installment, nil
		},
		mockUpdateStatus: func(ctx context.Context, inst *models.Installment, newStatus string) error {
			updateCalls++
			return nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	result, err := svc.MarkStatus(context.Background(), elevatedCaller(), 500, models.InstallmentStatusPaid)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)

	// No write and no notification when the marker already has that value
	assert.Equal(t, 0, updateCalls)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, notifRepo.createdCount())
}

func TestMarkStatus_RevertIsSilent(t *testing.T) {
	installment := testInstallment(models.InstallmentStatusPaid)
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return installment, nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	result, err := svc.MarkStatus(context.Background(), elevatedCaller(), 500, models.InstallmentStatusUnpaid)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusUnpaid, result.Status)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, notifRepo.createdCount())
}

func TestMarkStatus_StaleWriteBecomesConcurrentModification(t *testing.T) {
	installment := testInstallment(models.InstallmentStatusUnpaid)
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return installment, nil
		},
		mockUpdateStatus: func(ctx context.Context, inst *models.Installment, newStatus string) error {
			return repository.ErrStaleObject
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	_, err := svc.MarkStatus(context.Background(), elevatedCaller(), 500, models.InstallmentStatusPaid)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, notifRepo.createdCount())
}

func TestMarkStatus_TenantCallerDenied(t *testing.T) {
	repo := &mockInstallmentRepository{}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	tenant := Caller{UserID: 50, TenantID: 10, Roles: []string{models.RoleTenant}}
	_, err := svc.MarkStatus(context.Background(), tenant, 500, models.InstallmentStatusPaid)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMarkStatus_UnknownMarkerRejected(t *testing.T) {
	repo := &mockInstallmentRepository{}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	_, err := svc.MarkStatus(context.Background(), elevatedCaller(), 500, "settled")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFindByID_OwnershipThroughParentLease(t *testing.T) {
	installment := testInstallment(models.InstallmentStatusUnpaid)
	repo := &mockInstallmentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Installment, error) {
			return installment, nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newInstallmentServiceForTest(repo, notifRepo)
	defer worker.Shutdown()

	owner := Caller{UserID: 50, TenantID: 10, Roles: []string{models.RoleTenant}}
	result, err := svc.FindByID(context.Background(), owner, 500)
	assert.NoError(t, err)
	assert.Equal(t, uint(500), result.ID)

	stranger := Caller{UserID: 51, TenantID: 11, Roles: []string{models.RoleTenant}}
	_, err = svc.FindByID(context.Background(), stranger, 500)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestNotifyOverdue_NotifiesAdminsWithoutMutating(t *testing.T) {
	first := *testInstallment(models.InstallmentStatusUnpaid)
	second := *testInstallment(models.InstallmentStatusUnpaid)
	second.ID = 501

	repo := &mockInstallmentRepository{
		mockListOverdue: func(ctx context.Context, scope repository.Scope, asOf time.Time) ([]models.Installment, error) {
			assert.Nil(t, scope)
			return []models.Installment{first, second}, nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	userRepo := &mockUserRepository{
		mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
			return []models.User{{ID: 1}, {ID: 2}}, nil
		},
	}

	worker := jobs.NewWorker(0)
	defer worker.Shutdown()
	notifSvc := NewNotificationService(notifRepo, userRepo)
	svc := NewInstallmentService(repo, &mockLeaseRepository{}, NewAccessService(), notifSvc, nil, worker)

	err := svc.NotifyOverdue(context.Background())
	assert.NoError(t, err)

	// One notification per admin; overdue scanning never flips paid state
	assert.Equal(t, 2, notifRepo.createdCount())
	assert.Equal(t, models.InstallmentStatusUnpaid, first.Status)
	assert.Equal(t, models.InstallmentStatusUnpaid, second.Status)
}

func TestNotifyOverdue_NothingOverdueIsQuiet(t *testing.T) {
	repo := &mockInstallmentRepository{}
	notifRepo := &mockNotificationRepository{}
	userRepo := &mockUserRepository{
		mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
			t.Fatal("FindAdmins should not be called when nothing is overdue")
			return nil, nil
		},
	}

	worker := jobs.NewWorker(0)
	defer worker.Shutdown()
	notifSvc := NewNotificationService(notifRepo, userRepo)
	svc := NewInstallmentService(repo, &mockLeaseRepository{}, NewAccessService(), notifSvc, nil, worker)

	err := svc.NotifyOverdue(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, notifRepo.createdCount())
}
