package services

import (
	"context"
	"fmt"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
)

// TenantService handles tenant registry operations. Reads follow the
// ownership rule: a tenant caller only sees its own record.
type TenantService struct {
	repo      repository.TenantRepository
	userRepo  repository.UserRepository
	accessSvc *AccessService
}

func NewTenantService(repo repository.TenantRepository, userRepo repository.UserRepository, accessSvc *AccessService) *TenantService {
	return &TenantService{repo: repo, userRepo: userRepo, accessSvc: accessSvc}
}

func (s *TenantService) FindByID(ctx context.Context, caller Caller, id uint) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "tenant", id)
	}
	if !s.accessSvc.CanAccess(caller, tenant.ID) {
		return nil, fmt.Errorf("%w: tenant %d", ErrAccessDenied, id)
	}
	return tenant, nil
}

func (s *TenantService) List(ctx context.Context, caller Caller, query *repository.ListQuery) ([]models.Tenant, int64, error) {
	if !s.accessSvc.CanWrite(caller) {
		return nil, 0, fmt.Errorf("%w: listing tenants requires an elevated role", ErrAccessDenied)
	}
	return s.repo.List(ctx, query)
}

func (s *TenantService) Create(ctx context.Context, caller Caller, tenant *models.Tenant) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: tenant creation requires an elevated role", ErrAccessDenied)
	}
	if _, err := s.userRepo.FindByID(ctx, tenant.UserID); err != nil {
		return dbError(err, "user", tenant.UserID)
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *TenantService) Update(ctx context.Context, caller Caller, tenant *models.Tenant) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: tenant update requires an elevated role", ErrAccessDenied)
	}
	if err := s.repo.Update(ctx, tenant); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *TenantService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !s.accessSvc.CanDelete(caller) {
		return fmt.Errorf("%w: tenant deletion requires the admin role", ErrAccessDenied)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return dbError(err, "tenant", id)
	}
	return s.repo.Delete(ctx, id)
}
