package services

import (
	"testing"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess_TenantOwnership(t *testing.T) {
	service := NewAccessService()

	tenantA := Caller{UserID: 1, TenantID: 10, Roles: []string{models.RoleTenant}}
	tenantB := Caller{UserID: 2, TenantID: 20, Roles: []string{models.RoleTenant}}

	assert.True(t, service.CanAccess(tenantA, 10))
	assert.False(t, service.CanAccess(tenantA, 20))
	assert.False(t, service.CanAccess(tenantB, 10))
}

func TestCanAccess_ElevatedRolesSeeEverything(t *testing.T) {
	service := NewAccessService()

	admin := Caller{UserID: 1, Roles: []string{models.RoleAdmin}}
	manager := Caller{UserID: 2, Roles: []string{models.RoleManager}}

	assert.True(t, service.CanAccess(admin, 10))
	assert.True(t, service.CanAccess(admin, 20))
	assert.True(t, service.CanAccess(manager, 10))
}

func TestCanAccess_UnboundTenantDenied(t *testing.T) {
	service := NewAccessService()

	// Tenant role without a bound tenant record sees nothing
	unbound := Caller{UserID: 3, TenantID: 0, Roles: []string{models.RoleTenant}}
	assert.False(t, service.CanAccess(unbound, 0))
	assert.False(t, service.CanAccess(unbound, 10))
}

func TestCanAccess_MultiRoleCaller(t *testing.T) {
	service := NewAccessService()

	// A caller carrying both manager and tenant roles gets the union of
	// capabilities: unrestricted visibility wins.
	both := Caller{UserID: 4, TenantID: 10, Roles: []string{models.RoleManager, models.RoleTenant}}
	assert.True(t, both.IsElevated())
	assert.True(t, service.CanAccess(both, 20))
	assert.True(t, service.CanWrite(both))
}

func TestCanDelete_AdminOnly(t *testing.T) {
	service := NewAccessService()

	assert.True(t, service.CanDelete(Caller{Roles: []string{models.RoleAdmin}}))
	assert.False(t, service.CanDelete(Caller{Roles: []string{models.RoleManager}}))
	assert.False(t, service.CanDelete(Caller{Roles: []string{models.RoleTenant}}))
}

func TestCanWrite_ElevatedOnly(t *testing.T) {
	service := NewAccessService()

	assert.True(t, service.CanWrite(Caller{Roles: []string{models.RoleAdmin}}))
	assert.True(t, service.CanWrite(Caller{Roles: []string{models.RoleManager}}))
	assert.False(t, service.CanWrite(Caller{TenantID: 10, Roles: []string{models.RoleTenant}}))
}

func TestScopes_NilForElevated(t *testing.T) {
	service := NewAccessService()

	admin := Caller{UserID: 1, Roles: []string{models.RoleAdmin}}
	tenant := Caller{UserID: 2, TenantID: 20, Roles: []string{models.RoleTenant}}

	assert.Nil(t, service.LeaseScope(admin))
	assert.Nil(t, service.InstallmentScope(admin))
	assert.Nil(t, service.MaintenanceScope(admin))

	assert.NotNil(t, service.LeaseScope(tenant))
	assert.NotNil(t, service.InstallmentScope(tenant))
	assert.NotNil(t, service.MaintenanceScope(tenant))
}
