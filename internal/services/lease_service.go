package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"gorm.io/gorm"
)

// LeaseService orchestrates lease creation with schedule generation, scoped
// reads, updates and cascading deletion.
type LeaseService struct {
	repo            repository.LeaseRepository
	tenantRepo      repository.TenantRepository
	propertyRepo    repository.PropertyRepository
	accessSvc       *AccessService
	scheduleSvc     *ScheduleService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	worker          *jobs.Worker
}

// NewLeaseService creates a new lease service
func NewLeaseService(
	repo repository.LeaseRepository,
	tenantRepo repository.TenantRepository,
	propertyRepo repository.PropertyRepository,
	accessSvc *AccessService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	worker *jobs.Worker,
) *LeaseService {
	return &LeaseService{
		repo:            repo,
		tenantRepo:      tenantRepo,
		propertyRepo:    propertyRepo,
		accessSvc:       accessSvc,
		scheduleSvc:     NewScheduleService(),
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		worker:          worker,
	}
}

// dbError maps storage errors to the service taxonomy. Unknown-record reads
// become ErrEntityNotFound; anything else is a storage failure and is never
// swallowed.
func dbError(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrEntityNotFound, kind, id)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// Create validates the lease parameters, derives the full installment set and
// persists lease plus installments in one atomic write. On success a
// "new lease" notification is handed to the worker; notification failures
// never affect the created lease.
func (s *LeaseService) Create(ctx context.Context, caller Caller, lease *models.Lease) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: lease creation requires an elevated role", ErrAccessDenied)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, lease.TenantID)
	if err != nil {
		return dbError(err, "tenant", lease.TenantID)
	}
	property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID)
	if err != nil {
		return dbError(err, "property", lease.PropertyID)
	}

	installments, err := s.scheduleSvc.GenerateSchedule(lease)
	if err != nil {
		return err
	}

	if lease.GUID == "" {
		lease.GUID = uuid.NewString()
	}

	if err := s.repo.CreateWithInstallments(ctx, lease, installments); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Fire-and-forget: the lease is already committed.
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if err := s.notificationSvc.NotifyUser(ctx, tenant.UserID,
			"New lease",
			fmt.Sprintf("A lease for %s has been registered under your account", property.Address),
			models.NotificationTypeLeaseCreated); err != nil {
			return err
		}
		return s.emailSvc.SendLeaseCreated(ctx, tenant, property, lease)
	})

	return nil
}

// FindByID returns the lease with tenant, property and ordered installments.
// Tenant callers only see their own leases; the denial is distinguishable
// from a missing record.
func (s *LeaseService) FindByID(ctx context.Context, caller Caller, id uint) (*models.Lease, error) {
	lease, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, dbError(err, "lease", id)
	}
	if !s.accessSvc.CanAccess(caller, lease.TenantID) {
		return nil, fmt.Errorf("%w: lease %d", ErrAccessDenied, id)
	}
	return lease, nil
}

// List returns leases visible to the caller. The ownership filter runs inside
// the storage query.
func (s *LeaseService) List(ctx context.Context, caller Caller, query *repository.LeaseQuery) ([]models.Lease, int64, error) {
	return s.repo.List(ctx, s.accessSvc.LeaseScope(caller), query)
}

// Update mutates lease fields for elevated callers. Changing frequency,
// duration or rent does not regenerate the persisted installment schedule;
// the original schedule stays frozen.
func (s *LeaseService) Update(ctx context.Context, caller Caller, lease *models.Lease) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: lease update requires an elevated role", ErrAccessDenied)
	}
	if err := s.scheduleSvc.Validate(lease); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, lease); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes a lease and its installments in one transaction. Only admins
// may delete; installments go first so no orphans can exist.
func (s *LeaseService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !s.accessSvc.CanDelete(caller) {
		return fmt.Errorf("%w: lease deletion requires the admin role", ErrAccessDenied)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return dbError(err, "lease", id)
	}
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// FindByTenant returns all leases owned by a tenant, installments included
func (s *LeaseService) FindByTenant(ctx context.Context, caller Caller, tenantID uint) ([]models.Lease, error) {
	if !s.accessSvc.CanAccess(caller, tenantID) {
		return nil, fmt.Errorf("%w: tenant %d", ErrAccessDenied, tenantID)
	}
	return s.repo.FindByTenant(ctx, tenantID)
}

// InArrears returns leases visible to the caller carrying at least minUnpaid
// unpaid installments.
func (s *LeaseService) InArrears(ctx context.Context, caller Caller, minUnpaid int) ([]repository.LeaseArrears, error) {
	if minUnpaid < 1 {
		minUnpaid = 3
	}
	return s.repo.FindInArrears(ctx, s.accessSvc.LeaseScope(caller), minUnpaid)
}

// Stats returns aggregate lease figures scoped to the caller
func (s *LeaseService) Stats(ctx context.Context, caller Caller) (*repository.LeaseStats, error) {
	return s.repo.GetStats(ctx, s.accessSvc.LeaseScope(caller), s.accessSvc.InstallmentScope(caller))
}

// AttachDocument records the stored contract document path on the lease
func (s *LeaseService) AttachDocument(ctx context.Context, caller Caller, id uint, path string) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: document upload requires an elevated role", ErrAccessDenied)
	}
	lease, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dbError(err, "lease", id)
	}
	lease.DocumentPath = &path
	if err := s.repo.Update(ctx, lease); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
