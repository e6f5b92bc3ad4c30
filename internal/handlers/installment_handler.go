package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/middleware"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/services"
)

type InstallmentHandler struct {
	installmentService *services.InstallmentService
}

func NewInstallmentHandler(installmentService *services.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// @Summary Get Installment
// @Description Get one installment with its lease context
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} models.InstallmentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id} [get]
func (h *InstallmentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("installment_id"), 10, 32)
	installment, err := h.installmentService.FindByID(c.Request.Context(), middleware.GetCaller(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"installment": installment.ToResponse()})
}

// MarkStatusRequest is the request body for flipping the paid marker
type MarkStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Mark Installment Status
// @Description Flip the paid marker of an installment. Marking an unpaid installment as paid notifies the tenant; concurrent flips lose with a 409.
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body MarkStatusRequest true "New status (paid or unpaid)"
// @Success 200 {object} models.InstallmentResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/status [patch]
func (h *InstallmentHandler) MarkStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("installment_id"), 10, 32)

	var req MarkStatusRequest
	if err := BindNestedOrFlat(c, "installment", &req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	installment, err := h.installmentService.MarkStatus(c.Request.Context(), middleware.GetCaller(c), uint(id), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": installment.ToResponse(), "message": "Installment updated"})
}

// @Summary Installments by Lease
// @Description Get the ordered installment set of a lease
// @Tags Installments
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leases/{lease_id}/installments [get]
func (h *InstallmentHandler) ByLease(c *gin.Context) {
	leaseID, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	installments, err := h.installmentService.FindByLease(c.Request.Context(), middleware.GetCaller(c), uint(leaseID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": toInstallmentResponses(installments)})
}

// @Summary Unpaid Installments
// @Description Get unpaid installments visible to the caller
// @Tags Installments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installments/unpaid [get]
func (h *InstallmentHandler) Unpaid(c *gin.Context) {
	installments, err := h.installmentService.ListUnpaid(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": toInstallmentResponses(installments)})
}

// @Summary Overdue Installments
// @Description Get unpaid installments due before as_of (defaults to now)
// @Tags Installments
// @Accept json
// @Produce json
// @Param as_of query string false "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installments/overdue [get]
func (h *InstallmentHandler) Overdue(c *gin.Context) {
	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid as_of date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	installments, err := h.installmentService.ListOverdueUnpaid(c.Request.Context(), middleware.GetCaller(c), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": toInstallmentResponses(installments)})
}

// @Summary Unpaid Count for Lease
// @Description Count unpaid installments of a lease
// @Tags Installments
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /leases/{lease_id}/installments/unpaid_count [get]
func (h *InstallmentHandler) UnpaidCount(c *gin.Context) {
	leaseID, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	count, err := h.installmentService.CountUnpaidPerLease(c.Request.Context(), middleware.GetCaller(c), uint(leaseID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpaid_count": count})
}

func toInstallmentResponses(installments []models.Installment) []models.InstallmentResponse {
	responses := make([]models.InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		responses = append(responses, inst.ToResponse())
	}
	return responses
}
