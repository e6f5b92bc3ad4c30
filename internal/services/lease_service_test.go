package services

import (
	"context"
	"testing"
	"time"

	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// Lease repository mock with creation and deletion hooks
type mockLeaseWriteRepository struct {
	repository.LeaseRepository
	mockFindByID               func(ctx context.Context, id uint) (*models.Lease, error)
	mockFindByIDWithDetails    func(ctx context.Context, id uint) (*models.Lease, error)
	mockCreateWithInstallments func(ctx context.Context, lease *models.Lease, installments []models.Installment) error
	mockDeleteCascade          func(ctx context.Context, id uint) error
}

func (m *mockLeaseWriteRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockLeaseWriteRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error) {
	if m.mockFindByIDWithDetails != nil {
		return m.mockFindByIDWithDetails(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *mockLeaseWriteRepository) CreateWithInstallments(ctx context.Context, lease *models.Lease, installments []models.Installment) error {
	if m.mockCreateWithInstallments != nil {
		return m.mockCreateWithInstallments(ctx, lease, installments)
	}
	return nil
}
func (m *mockLeaseWriteRepository) DeleteCascade(ctx context.Context, id uint) error {
	if m.mockDeleteCascade != nil {
		return m.mockDeleteCascade(ctx, id)
	}
	return nil
}

// Mock TenantRepository
type mockTenantRepository struct {
	repository.TenantRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Tenant, error)
}

func (m *mockTenantRepository) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return &models.Tenant{ID: id, UserID: 50, FullName: "Mario Rossi"}, nil
}

// Mock PropertyRepository
type mockPropertyRepository struct {
	repository.PropertyRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Property, error)
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return &models.Property{ID: id, Address: "Via Roma 1"}, nil
}

func newLeaseServiceForTest(repo repository.LeaseRepository, tenantRepo repository.TenantRepository, propertyRepo repository.PropertyRepository, notifRepo *mockNotificationRepository) (*LeaseService, *jobs.Worker) {
	worker := jobs.NewWorker(0)
	notifSvc := NewNotificationService(notifRepo, &mockUserRepository{})
	svc := NewLeaseService(repo, tenantRepo, propertyRepo, NewAccessService(), notifSvc, nil, worker)
	return svc, worker
}

func newLease() *models.Lease {
	return &models.Lease{
		TenantID:      10,
		PropertyID:    7,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationYears: 1,
		AnnualRent:    12000,
		Frequency:     models.FrequencyMonthly,
	}
}

func TestLeaseCreate_PersistsLeaseWithFullSchedule(t *testing.T) {
	var gotInstallments []models.Installment
	repo := &mockLeaseWriteRepository{
		mockCreateWithInstallments: func(ctx context.Context, lease *models.Lease, installments []models.Installment) error {
			gotInstallments = installments
			return nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newLeaseServiceForTest(repo, &mockTenantRepository{}, &mockPropertyRepository{}, notifRepo)
	defer worker.Shutdown()

	lease := newLease()
	err := svc.Create(context.Background(), elevatedCaller(), lease)
	assert.NoError(t, err)
	assert.Len(t, gotInstallments, 12)
	assert.NotEmpty(t, lease.GUID)

	// Tenant gets notified of the new lease
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, notifRepo.createdCount())
	assert.Equal(t, uint(50), notifRepo.created[0].UserID)
}

func TestLeaseCreate_InvalidParametersNothingWritten(t *testing.T) {
	createCalled := false
	repo := &mockLeaseWriteRepository{
		mockCreateWithInstallments: func(ctx context.Context, lease *models.Lease, installments []models.Installment) error {
			createCalled = true
			return nil
		},
	}
	notifRepo := &mockNotificationRepository{}
	svc, worker := newLeaseServiceForTest(repo, &mockTenantRepository{}, &mockPropertyRepository{}, notifRepo)
	defer worker.Shutdown()

	lease := newLease()
	lease.Frequency = "weekly"
	err := svc.Create(context.Background(), elevatedCaller(), lease)
	assert.ErrorIs(t, err, ErrInvalidLeaseParameters)
	assert.False(t, createCalled)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, notifRepo.createdCount())
}

func TestLeaseCreate_UnknownTenantRejected(t *testing.T) {
	tenantRepo := &mockTenantRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Tenant, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, worker := newLeaseServiceForTest(&mockLeaseWriteRepository{}, tenantRepo, &mockPropertyRepository{}, &mockNotificationRepository{})
	defer worker.Shutdown()

	err := svc.Create(context.Background(), elevatedCaller(), newLease())
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestLeaseCreate_TenantCallerDenied(t *testing.T) {
	svc, worker := newLeaseServiceForTest(&mockLeaseWriteRepository{}, &mockTenantRepository{}, &mockPropertyRepository{}, &mockNotificationRepository{})
	defer worker.Shutdown()

	tenant := Caller{UserID: 50, TenantID: 10, Roles: []string{models.RoleTenant}}
	err := svc.Create(context.Background(), tenant, newLease())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLeaseFindByID_DenialDistinctFromMissing(t *testing.T) {
	repo := &mockLeaseWriteRepository{
		mockFindByIDWithDetails: func(ctx context.Context, id uint) (*models.Lease, error) {
			if id == 100 {
				return &models.Lease{ID: 100, TenantID: 10}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, worker := newLeaseServiceForTest(repo, &mockTenantRepository{}, &mockPropertyRepository{}, &mockNotificationRepository{})
	defer worker.Shutdown()

	stranger := Caller{UserID: 51, TenantID: 11, Roles: []string{models.RoleTenant}}

	_, err := svc.FindByID(context.Background(), stranger, 100)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.FindByID(context.Background(), stranger, 999)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestLeaseDelete_AdminOnlyCascade(t *testing.T) {
	cascadeCalled := false
	repo := &mockLeaseWriteRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lease, error) {
			return &models.Lease{ID: id, TenantID: 10}, nil
		},
		mockDeleteCascade: func(ctx context.Context, id uint) error {
			cascadeCalled = true
			return nil
		},
	}
	svc, worker := newLeaseServiceForTest(repo, &mockTenantRepository{}, &mockPropertyRepository{}, &mockNotificationRepository{})
	defer worker.Shutdown()

	manager := Caller{UserID: 1, Roles: []string{models.RoleManager}}
	err := svc.Delete(context.Background(), manager, 100)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, cascadeCalled)

	admin := Caller{UserID: 2, Roles: []string{models.RoleAdmin}}
	err = svc.Delete(context.Background(), admin, 100)
	assert.NoError(t, err)
	assert.True(t, cascadeCalled)
}

func TestLeaseUpdate_ValidatesButKeepsScheduleFrozen(t *testing.T) {
	repo := &mockLeaseWriteRepository{}
	svc, worker := newLeaseServiceForTest(repo, &mockTenantRepository{}, &mockPropertyRepository{}, &mockNotificationRepository{})
	defer worker.Shutdown()

	lease := newLease()
	lease.ID = 100
	lease.AnnualRent = -1
	err := svc.Update(context.Background(), elevatedCaller(), lease)
	assert.ErrorIs(t, err, ErrInvalidLeaseParameters)
}
