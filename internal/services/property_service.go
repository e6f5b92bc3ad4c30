package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/storage"
)

// PropertyService handles the property registry. Kinds are closed: every
// property is an apartment, a shop or an office, and kind-specific attributes
// are rejected on the wrong kind.
type PropertyService struct {
	repo      repository.PropertyRepository
	accessSvc *AccessService
	storage   *storage.LocalStorage
}

func NewPropertyService(repo repository.PropertyRepository, accessSvc *AccessService, st *storage.LocalStorage) *PropertyService {
	return &PropertyService{repo: repo, accessSvc: accessSvc, storage: st}
}

func (s *PropertyService) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError(err, "property", id)
	}
	return property, nil
}

func (s *PropertyService) List(ctx context.Context, query *repository.ListQuery) ([]models.Property, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PropertyService) Create(ctx context.Context, caller Caller, property *models.Property) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: property creation requires an elevated role", ErrAccessDenied)
	}
	if err := property.ValidateKind(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PropertyService) Update(ctx context.Context, caller Caller, property *models.Property) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: property update requires an elevated role", ErrAccessDenied)
	}
	if err := property.ValidateKind(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.repo.Update(ctx, property); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes a property. Properties with leases cannot be deleted; the
// leases own the financial history.
func (s *PropertyService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !s.accessSvc.CanDelete(caller) {
		return fmt.Errorf("%w: property deletion requires the admin role", ErrAccessDenied)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return dbError(err, "property", id)
	}
	hasLeases, err := s.repo.HasLeases(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if hasLeases {
		return fmt.Errorf("%w: property %d has leases attached", ErrInvalidState, id)
	}
	return s.repo.Delete(ctx, id)
}

// AttachImage stores a property photo and records its path
func (s *PropertyService) AttachImage(ctx context.Context, caller Caller, id uint, file multipart.File, header *multipart.FileHeader) error {
	if !s.accessSvc.CanWrite(caller) {
		return fmt.Errorf("%w: image upload requires an elevated role", ErrAccessDenied)
	}
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dbError(err, "property", id)
	}

	if !storage.IsValidImageType(header.Header.Get("Content-Type")) {
		return fmt.Errorf("%w: unsupported image type", ErrInvalidState)
	}
	if header.Size > storage.MaxFileSize() {
		return fmt.Errorf("%w: file exceeds maximum size", ErrInvalidState)
	}

	path, err := s.storage.Upload(file, header, "properties")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	property.ImagePath = &path
	if err := s.repo.Update(ctx, property); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
