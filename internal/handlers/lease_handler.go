package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/middleware"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/services"
	"github.com/rentara/rentara-api/internal/storage"
)

type LeaseHandler struct {
	leaseService *services.LeaseService
	storage      *storage.LocalStorage
}

func NewLeaseHandler(leaseService *services.LeaseService, st *storage.LocalStorage) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService, storage: st}
}

// LeaseRequest is the request body for creating or updating a lease
type LeaseRequest struct {
	TenantID      uint    `json:"tenant_id"`
	PropertyID    uint    `json:"property_id"`
	StartDate     string  `json:"start_date"`
	DurationYears int     `json:"duration_years"`
	AnnualRent    float64 `json:"annual_rent"`
	Frequency     string  `json:"frequency"`
	Note          *string `json:"note"`
}

func (r *LeaseRequest) apply(lease *models.Lease) error {
	lease.TenantID = r.TenantID
	lease.PropertyID = r.PropertyID
	lease.DurationYears = r.DurationYears
	lease.AnnualRent = r.AnnualRent
	lease.Frequency = r.Frequency
	lease.Note = r.Note
	if r.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", r.StartDate)
		if err != nil {
			return err
		}
		lease.StartDate = startDate
	}
	return nil
}

// @Summary List Leases
// @Description Get a paginated list of leases visible to the caller
// @Tags Leases
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param frequency query string false "Filter by payment frequency"
// @Param tenant_id query int false "Filter by tenant"
// @Param property_id query int false "Filter by property"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leases [get]
func (h *LeaseHandler) Index(c *gin.Context) {
	query := &repository.LeaseQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Frequency = c.Query("frequency")

	if tenantID, err := strconv.ParseUint(c.Query("tenant_id"), 10, 32); err == nil {
		query.TenantID = uint(tenantID)
	}
	if propertyID, err := strconv.ParseUint(c.Query("property_id"), 10, 32); err == nil {
		query.PropertyID = uint(propertyID)
	}

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	leases, total, err := h.leaseService.List(c.Request.Context(), middleware.GetCaller(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.LeaseResponse, 0, len(leases))
	for _, l := range leases {
		responses = append(responses, l.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"leases": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Lease
// @Description Get a lease with its full installment schedule
// @Tags Leases
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} models.LeaseResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id} [get]
func (h *LeaseHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	lease, err := h.leaseService.FindByID(c.Request.Context(), middleware.GetCaller(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Create Lease
// @Description Create a lease; the full installment schedule is generated and persisted with it
// @Tags Leases
// @Accept json
// @Produce json
// @Param request body LeaseRequest true "Lease"
// @Success 201 {object} models.LeaseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leases [post]
func (h *LeaseHandler) Create(c *gin.Context) {
	var req LeaseRequest
	if err := BindNestedOrFlat(c, "lease", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var lease models.Lease
	if err := req.apply(&lease); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid start date, expected YYYY-MM-DD"})
		return
	}

	if err := h.leaseService.Create(c.Request.Context(), middleware.GetCaller(c), &lease); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lease": lease.ToResponse(), "message": "Lease created"})
}

// @Summary Update Lease
// @Description Update lease terms. The persisted installment schedule is not regenerated.
// @Tags Leases
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param request body LeaseRequest true "Lease"
// @Success 200 {object} models.LeaseResponse
// @Security BearerAuth
// @Router /leases/{lease_id} [put]
func (h *LeaseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	caller := middleware.GetCaller(c)

	lease, err := h.leaseService.FindByID(c.Request.Context(), caller, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req LeaseRequest
	if err := BindNestedOrFlat(c, "lease", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.apply(lease); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid start date, expected YYYY-MM-DD"})
		return
	}

	if err := h.leaseService.Update(c.Request.Context(), caller, lease); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse(), "message": "Lease updated"})
}

// @Summary Delete Lease
// @Description Delete a lease and all its installments (Admin)
// @Tags Leases
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id} [delete]
func (h *LeaseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	if err := h.leaseService.Delete(c.Request.Context(), middleware.GetCaller(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lease deleted"})
}

// @Summary Leases by Tenant
// @Description Get all leases for a tenant
// @Tags Leases
// @Accept json
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tenants/{tenant_id}/leases [get]
func (h *LeaseHandler) ByTenant(c *gin.Context) {
	tenantID, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	leases, err := h.leaseService.FindByTenant(c.Request.Context(), middleware.GetCaller(c), uint(tenantID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.LeaseResponse, 0, len(leases))
	for _, l := range leases {
		responses = append(responses, l.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"leases": responses})
}

// @Summary Leases in Arrears
// @Description Get leases carrying at least min_unpaid unpaid installments
// @Tags Leases
// @Accept json
// @Produce json
// @Param min_unpaid query int false "Minimum unpaid installments" default(3)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leases/arrears [get]
func (h *LeaseHandler) Arrears(c *gin.Context) {
	minUnpaid, _ := strconv.Atoi(c.DefaultQuery("min_unpaid", "3"))
	rows, err := h.leaseService.InArrears(c.Request.Context(), middleware.GetCaller(c), minUnpaid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leases": rows})
}

// @Summary Lease Stats
// @Description Get aggregate lease figures visible to the caller
// @Tags Leases
// @Accept json
// @Produce json
// @Success 200 {object} repository.LeaseStats
// @Security BearerAuth
// @Router /leases/stats [get]
func (h *LeaseHandler) Stats(c *gin.Context) {
	stats, err := h.leaseService.Stats(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Upload Lease Document
// @Description Attach the signed contract PDF to a lease
// @Tags Leases
// @Accept multipart/form-data
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param document formData file true "Contract document (PDF)"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id}/document [post]
func (h *LeaseHandler) UploadDocument(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document file is required"})
		return
	}
	defer file.Close()

	if !storage.IsValidDocumentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Only PDF documents are accepted"})
		return
	}
	if header.Size > storage.MaxFileSize() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "File exceeds maximum size"})
		return
	}

	path, err := h.storage.Upload(file, header, "leases")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document"})
		return
	}

	if err := h.leaseService.AttachDocument(c.Request.Context(), middleware.GetCaller(c), uint(id), path); err != nil {
		h.storage.Delete(path)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document uploaded"})
}

// @Summary Download Lease Document
// @Description Download the contract document attached to a lease
// @Tags Leases
// @Produce application/pdf
// @Param lease_id path int true "Lease ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /leases/{lease_id}/document [get]
func (h *LeaseHandler) DownloadDocument(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	lease, err := h.leaseService.FindByID(c.Request.Context(), middleware.GetCaller(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	if lease.DocumentPath == nil || !h.storage.Exists(*lease.DocumentPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No document attached"})
		return
	}

	c.FileAttachment(h.storage.GetFullPath(*lease.DocumentPath), "contract_"+lease.GUID+".pdf")
}
