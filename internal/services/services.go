package services

import (
	"github.com/rentara/rentara-api/internal/config"
	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Tenant       *TenantService
	Property     *PropertyService
	Lease        *LeaseService
	Installment  *InstallmentService
	Maintenance  *MaintenanceService
	Notification *NotificationService
	Report       *ReportService
	Email        *EmailService
	Access       *AccessService
	Schedule     *ScheduleService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, st *storage.LocalStorage, cfg *config.Config) *Services {
	accessSvc := NewAccessService()
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, worker, emailSvc, notificationSvc),
		Tenant:       NewTenantService(repos.Tenant, repos.User, accessSvc),
		Property:     NewPropertyService(repos.Property, accessSvc, st),
		Lease:        NewLeaseService(repos.Lease, repos.Tenant, repos.Property, accessSvc, notificationSvc, emailSvc, worker),
		Installment:  NewInstallmentService(repos.Installment, repos.Lease, accessSvc, notificationSvc, emailSvc, worker),
		Maintenance:  NewMaintenanceService(repos.Maintenance, repos.Property, repos.Tenant, accessSvc),
		Notification: notificationSvc,
		Report:       NewReportService(repos.Lease, repos.Installment, accessSvc),
		Email:        emailSvc,
		Access:       accessSvc,
		Schedule:     NewScheduleService(),
	}
}
