package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Tenant       TenantRepository
	Property     PropertyRepository
	Lease        LeaseRepository
	Installment  InstallmentRepository
	Maintenance  MaintenanceRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Tenant:       NewTenantRepository(db),
		Property:     NewPropertyRepository(db),
		Lease:        NewLeaseRepository(db),
		Installment:  NewInstallmentRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
