package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/services"
	"github.com/rentara/rentara-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Tenant       *TenantHandler
	Property     *PropertyHandler
	Lease        *LeaseHandler
	Installment  *InstallmentHandler
	Maintenance  *MaintenanceHandler
	Notification *NotificationHandler
	Report       *ReportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, st *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Tenant:       NewTenantHandler(svcs.Tenant),
		Property:     NewPropertyHandler(svcs.Property),
		Lease:        NewLeaseHandler(svcs.Lease, st),
		Installment:  NewInstallmentHandler(svcs.Installment),
		Maintenance:  NewMaintenanceHandler(svcs.Maintenance),
		Notification: NewNotificationHandler(svcs.Notification),
		Report:       NewReportHandler(svcs.Report),
	}
}

// respondError maps service errors onto HTTP statuses. Denied access is
// distinguishable from a missing record, and a lost optimistic write conflicts
// rather than fails.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidLeaseParameters),
		errors.Is(err, services.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEntityNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, services.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidPassword):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrDuplicate):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// HealthHandler reports process liveness
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Check API liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
