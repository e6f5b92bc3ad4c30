package services

import (
	"context"
	"fmt"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
)

// MaintenanceService handles maintenance charges. Charges follow the same
// ownership rule as leases: tenant callers only see charges billed to them.
type MaintenanceService struct {
	repo         repository.MaintenanceRepository
	propertyRepo repository.PropertyRepository
	tenantRepo   repository.TenantRepository
	accessSvc    *AccessService
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	propertyRepo repository.PropertyRepository,
	tenantRepo repository.TenantRepository,
	accessSvc *AccessService,
) *MaintenanceService {
	return &MaintenanceService{
		repo:         repo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		accessSvc:    accessSvc,
	}
}

func (s *MaintenanceService) FindByID(ctx context.Context, caller Caller, id uint) (*models.MaintenanceCharge, error) {
	charge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "maintenance charge", id)
	}
	if !s.accessSvc.CanAccess(caller, charge.TenantID) {
		return nil, fmt.Errorf("%w: maintenance charge %d", ErrAccessDenied, id)
	}
	return charge, nil
}

func (s *MaintenanceService) List(ctx context.Context, caller Caller, query *repository.ListQuery) ([]models.MaintenanceCharge, int64, error) {
	return s.repo.List(ctx, s.accessSvc.MaintenanceScope(caller), query)
}

func (s *MaintenanceService) Create(ctx context.Context, caller Caller, charge *models.MaintenanceCharge) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: maintenance charge creation requires an elevated role", ErrAccessDenied)
	}
	if err := charge.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if _, err := s.propertyRepo.FindByID(ctx, charge.PropertyID); err != nil {
		return dbError(err, "property", charge.PropertyID)
	}
	if _, err := s.tenantRepo.FindByID(ctx, charge.TenantID); err != nil {
		return dbError(err, "tenant", charge.TenantID)
	}
	if err := s.repo.Create(ctx, charge); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *MaintenanceService) Update(ctx context.Context, caller Caller, charge *models.MaintenanceCharge) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: maintenance charge update requires an elevated role", ErrAccessDenied)
	}
	if err := charge.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.repo.Update(ctx, charge); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *MaintenanceService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !s.accessSvc.CanDelete(caller) {
		return fmt.Errorf("%w: maintenance charge deletion requires the admin role", ErrAccessDenied)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return dbError(err, "maintenance charge", id)
	}
	return s.repo.Delete(ctx, id)
}

// SumByProperty returns the total charged against a property
func (s *MaintenanceService) SumByProperty(ctx context.Context, caller Caller, propertyID uint) (float64, error) {
	if !s.accessSvc.CanWrite(caller) {
		return 0, fmt.Errorf("%w: property totals require an elevated role", ErrAccessDenied)
	}
	return s.repo.SumByProperty(ctx, propertyID)
}
