package services

import (
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
)

// Caller is the identity attached to every request after authentication:
// the user id, the roles it carries, and the tenant bound to that user
// (zero when the user is staff only).
type Caller struct {
	UserID   uint
	TenantID uint
	Roles    []string
}

// HasRole returns true if the caller carries the given role
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsElevated returns true for admin and manager callers, whose visibility is
// unrestricted.
func (c Caller) IsElevated() bool {
	return c.HasRole(models.RoleAdmin) || c.HasRole(models.RoleManager)
}

// AccessService resolves which financial records a caller may see or mutate.
// One ownership rule serves leases, installments (through their parent lease)
// and maintenance charges alike.
type AccessService struct{}

// NewAccessService creates a new access service
func NewAccessService() *AccessService {
	return &AccessService{}
}

// CanAccess decides whether the caller may touch a record owned by the given
// tenant. Elevated roles always pass; a tenant caller passes only for its own
// records.
func (s *AccessService) CanAccess(caller Caller, ownerTenantID uint) bool {
	if caller.IsElevated() {
		return true
	}
	if caller.HasRole(models.RoleTenant) {
		return caller.TenantID != 0 && caller.TenantID == ownerTenantID
	}
	return false
}

// CanDelete decides whether the caller may destructively delete records.
// Only admins may; managers get everything else.
func (s *AccessService) CanDelete(caller Caller) bool {
	return caller.HasRole(models.RoleAdmin)
}

// CanWrite decides whether the caller may create or mutate records
func (s *AccessService) CanWrite(caller Caller) bool {
	return caller.IsElevated()
}

// LeaseScope returns the ownership filter for lease collection queries.
// Nil means unrestricted. The filter is pushed into the storage query, never
// applied in memory.
func (s *AccessService) LeaseScope(caller Caller) repository.Scope {
	if caller.IsElevated() {
		return nil
	}
	return repository.LeaseOwnedByUser(caller.UserID)
}

// InstallmentScope returns the ownership filter for installment collection
// queries, resolved through the parent lease's tenant.
func (s *AccessService) InstallmentScope(caller Caller) repository.Scope {
	if caller.IsElevated() {
		return nil
	}
	return repository.InstallmentOwnedByUser(caller.UserID)
}

// MaintenanceScope returns the ownership filter for maintenance charge
// collection queries.
func (s *AccessService) MaintenanceScope(caller Caller) repository.Scope {
	if caller.IsElevated() {
		return nil
	}
	return repository.MaintenanceOwnedByUser(caller.UserID)
}
