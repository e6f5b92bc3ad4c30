package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/statemachine"
)

// InstallmentService tracks installment paid state and exposes the derived
// unpaid/overdue views. State changes happen only through MarkStatus; nothing
// in the service mutates installments on a timer.
type InstallmentService struct {
	repo            repository.InstallmentRepository
	leaseRepo       repository.LeaseRepository
	accessSvc       *AccessService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	worker          *jobs.Worker
}

// NewInstallmentService creates a new installment service
func NewInstallmentService(
	repo repository.InstallmentRepository,
	leaseRepo repository.LeaseRepository,
	accessSvc *AccessService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	worker *jobs.Worker,
) *InstallmentService {
	return &InstallmentService{
		repo:            repo,
		leaseRepo:       leaseRepo,
		accessSvc:       accessSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		worker:          worker,
	}
}

// FindByID returns one installment, honoring the ownership rule through the
// parent lease.
func (s *InstallmentService) FindByID(ctx context.Context, caller Caller, id uint) (*models.Installment, error) {
	installment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "installment", id)
	}
	if !s.accessSvc.CanAccess(caller, installment.Lease.TenantID) {
		return nil, fmt.Errorf("%w: installment %d", ErrAccessDenied, id)
	}
	return installment, nil
}

// MarkStatus flips an installment's paid marker. The write is guarded by an
// optimistic version check so two concurrent flips cannot interleave; losing
// writers get ErrConcurrentModification and may retry. Setting the marker to
// the value it already has succeeds without a write and without a
// notification. A transition to paid triggers one async payment-confirmed
// notification; reverting to unpaid is silent.
func (s *InstallmentService) MarkStatus(ctx context.Context, caller Caller, id uint, newStatus string) (*models.Installment, error) {
	if !models.ValidInstallmentStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown installment status %q", ErrInvalidState, newStatus)
	}
	if !s.accessSvc.CanWrite(caller) {
		return nil, fmt.Errorf("%w: installment state changes require an elevated role", ErrAccessDenied)
	}

	installment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "installment", id)
	}

	if installment.Status == newStatus {
		return installment, nil
	}

	ifsm := statemachine.NewInstallmentFSM(installment)
	if newStatus == models.InstallmentStatusPaid {
		err = ifsm.Pay(ctx)
	} else {
		err = ifsm.Revert(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.UpdateStatus(ctx, installment, newStatus); err != nil {
		if errors.Is(err, repository.ErrStaleObject) {
			return nil, fmt.Errorf("%w: installment %d", ErrConcurrentModification, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if newStatus == models.InstallmentStatusPaid {
		tenant := installment.Lease.Tenant
		property := installment.Lease.Property
		ordinal := installment.Ordinal
		amount := installment.Amount
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			if err := s.notificationSvc.NotifyUser(ctx, tenant.UserID,
				"Payment confirmed",
				fmt.Sprintf("Installment #%d of %.2f for %s has been marked as paid", ordinal, amount, property.Address),
				models.NotificationTypePaymentConfirmed); err != nil {
				return err
			}
			return s.emailSvc.SendPaymentConfirmed(ctx, &tenant, &property, ordinal, amount)
		})
	}

	return installment, nil
}

// FindByLease returns the ordered installment set of a lease the caller may
// see.
func (s *InstallmentService) FindByLease(ctx context.Context, caller Caller, leaseID uint) ([]models.Installment, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, dbError(err, "lease", leaseID)
	}
	if !s.accessSvc.CanAccess(caller, lease.TenantID) {
		return nil, fmt.Errorf("%w: lease %d", ErrAccessDenied, leaseID)
	}
	return s.repo.FindByLease(ctx, leaseID)
}

// ListUnpaid returns unpaid installments visible to the caller
func (s *InstallmentService) ListUnpaid(ctx context.Context, caller Caller) ([]models.Installment, error) {
	return s.repo.ListByStatus(ctx, s.accessSvc.InstallmentScope(caller), models.InstallmentStatusUnpaid)
}

// ListOverdueUnpaid returns unpaid installments due before asOf. The cutoff
// is explicit so the query stays deterministic; a zero asOf means now.
func (s *InstallmentService) ListOverdueUnpaid(ctx context.Context, caller Caller, asOf time.Time) ([]models.Installment, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.repo.ListOverdue(ctx, s.accessSvc.InstallmentScope(caller), asOf)
}

// CountUnpaidPerLease returns how many installments of the lease are unpaid
func (s *InstallmentService) CountUnpaidPerLease(ctx context.Context, caller Caller, leaseID uint) (int64, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return 0, dbError(err, "lease", leaseID)
	}
	if !s.accessSvc.CanAccess(caller, lease.TenantID) {
		return 0, fmt.Errorf("%w: lease %d", ErrAccessDenied, leaseID)
	}
	return s.repo.CountByLeaseAndStatus(ctx, leaseID, models.InstallmentStatusUnpaid)
}

// NotifyOverdue scans for overdue unpaid installments and notifies the admins.
// It only reads and notifies; paid state is never changed by a scheduled job.
func (s *InstallmentService) NotifyOverdue(ctx context.Context) error {
	overdue, err := s.repo.ListOverdue(ctx, nil, time.Now())
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}
	return s.notificationSvc.NotifyAdmins(ctx,
		"Overdue installments",
		fmt.Sprintf("%d installments are overdue and unpaid", len(overdue)),
		models.NotificationTypeInstallmentOverdue)
}
