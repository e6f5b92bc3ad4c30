package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/middleware"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/services"
)

// listQueryFromContext builds the shared pagination/search query from the URL
func listQueryFromContext(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_dir", "asc")
	return query
}

// --- Tenants ---

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// TenantRequest is the request body for creating or updating a tenant
type TenantRequest struct {
	UserID    uint    `json:"user_id"`
	FullName  string  `json:"full_name"`
	TaxCode   string  `json:"tax_code"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	BirthDate string  `json:"birth_date"`
	Note      *string `json:"note"`
}

func (r *TenantRequest) apply(tenant *models.Tenant) error {
	if r.UserID != 0 {
		tenant.UserID = r.UserID
	}
	tenant.FullName = r.FullName
	tenant.TaxCode = r.TaxCode
	tenant.Phone = r.Phone
	tenant.Address = r.Address
	tenant.Note = r.Note
	if r.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return err
		}
		tenant.BirthDate = &birthDate
	}
	return nil
}

// @Summary List Tenants
// @Description Get a paginated list of tenants (staff only)
// @Tags Tenants
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tenants [get]
func (h *TenantHandler) Index(c *gin.Context) {
	tenants, total, err := h.tenantService.List(c.Request.Context(), middleware.GetCaller(c), listQueryFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		responses = append(responses, t.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"tenants": responses, "total": total})
}

// @Summary Get Tenant
// @Tags Tenants
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} models.TenantResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id} [get]
func (h *TenantHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	tenant, err := h.tenantService.FindByID(c.Request.Context(), middleware.GetCaller(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant.ToResponse()})
}

// @Summary Create Tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Param request body TenantRequest true "Tenant"
// @Success 201 {object} models.TenantResponse
// @Security BearerAuth
// @Router /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req TenantRequest
	if err := BindNestedOrFlat(c, "tenant", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var tenant models.Tenant
	if err := req.apply(&tenant); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid birth date, expected YYYY-MM-DD"})
		return
	}

	if err := h.tenantService.Create(c.Request.Context(), middleware.GetCaller(c), &tenant); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tenant": tenant.ToResponse(), "message": "Tenant created"})
}

// @Summary Update Tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Param request body TenantRequest true "Tenant"
// @Success 200 {object} models.TenantResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	caller := middleware.GetCaller(c)

	tenant, err := h.tenantService.FindByID(c.Request.Context(), caller, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req TenantRequest
	if err := BindNestedOrFlat(c, "tenant", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.apply(tenant); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid birth date, expected YYYY-MM-DD"})
		return
	}

	if err := h.tenantService.Update(c.Request.Context(), caller, tenant); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant.ToResponse(), "message": "Tenant updated"})
}

// @Summary Delete Tenant
// @Tags Tenants
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/{tenant_id} [delete]
func (h *TenantHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	if err := h.tenantService.Delete(c.Request.Context(), middleware.GetCaller(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted"})
}

// --- Properties ---

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// PropertyRequest is the request body for creating or updating a property
type PropertyRequest struct {
	Kind         string  `json:"kind"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	SurfaceSqm   float64 `json:"surface_sqm"`
	Rooms        int     `json:"rooms"`
	Note         *string `json:"note"`
	Floor        *int    `json:"floor"`
	HasElevator  *bool   `json:"has_elevator"`
	ShopWindows  *int    `json:"shop_windows"`
	Workstations *int    `json:"workstations"`
}

func (r *PropertyRequest) apply(property *models.Property) {
	property.Kind = r.Kind
	property.Address = r.Address
	property.City = r.City
	property.SurfaceSqm = r.SurfaceSqm
	property.Rooms = r.Rooms
	property.Note = r.Note
	property.Floor = r.Floor
	property.HasElevator = r.HasElevator
	property.ShopWindows = r.ShopWindows
	property.Workstations = r.Workstations
}

// @Summary List Properties
// @Tags Properties
// @Produce json
// @Param kind query string false "Filter by kind"
// @Param city query string false "Filter by city"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c)
	query.Filters["kind"] = c.Query("kind")
	query.Filters["city"] = c.Query("city")

	properties, total, err := h.propertyService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PropertyResponse, 0, len(properties))
	for _, p := range properties {
		responses = append(responses, p.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"properties": responses, "total": total})
}

// @Summary Get Property
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} models.PropertyResponse
// @Security BearerAuth
// @Router /properties/{property_id} [get]
func (h *PropertyHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	property, err := h.propertyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Create Property
// @Description Create a property. Kind-specific attributes are rejected on the wrong kind.
// @Tags Properties
// @Accept json
// @Produce json
// @Param request body PropertyRequest true "Property"
// @Success 201 {object} models.PropertyResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	var req PropertyRequest
	if err := BindNestedOrFlat(c, "property", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var property models.Property
	req.apply(&property)

	if err := h.propertyService.Create(c.Request.Context(), middleware.GetCaller(c), &property); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": property.ToResponse(), "message": "Property created"})
}

// @Summary Update Property
// @Tags Properties
// @Accept json
// @Produce json
// @Param property_id path int true "Property ID"
// @Param request body PropertyRequest true "Property"
// @Success 200 {object} models.PropertyResponse
// @Security BearerAuth
// @Router /properties/{property_id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	property, err := h.propertyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req PropertyRequest
	if err := BindNestedOrFlat(c, "property", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.apply(property)

	if err := h.propertyService.Update(c.Request.Context(), middleware.GetCaller(c), property); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse(), "message": "Property updated"})
}

// @Summary Delete Property
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [delete]
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	if err := h.propertyService.Delete(c.Request.Context(), middleware.GetCaller(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// @Summary Upload Property Image
// @Tags Properties
// @Accept multipart/form-data
// @Produce json
// @Param property_id path int true "Property ID"
// @Param image formData file true "Property image (JPEG/PNG)"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id}/image [post]
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if err := h.propertyService.AttachImage(c.Request.Context(), middleware.GetCaller(c), uint(id), file, header); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded"})
}

// --- Maintenance charges ---

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// MaintenanceRequest is the request body for creating or updating a charge
type MaintenanceRequest struct {
	PropertyID uint    `json:"property_id"`
	TenantID   uint    `json:"tenant_id"`
	ChargedOn  string  `json:"charged_on"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Note       *string `json:"note"`
}

func (r *MaintenanceRequest) apply(charge *models.MaintenanceCharge) error {
	charge.PropertyID = r.PropertyID
	charge.TenantID = r.TenantID
	charge.Amount = r.Amount
	charge.Category = r.Category
	charge.Note = r.Note
	if r.ChargedOn != "" {
		chargedOn, err := time.Parse("2006-01-02", r.ChargedOn)
		if err != nil {
			return err
		}
		charge.ChargedOn = chargedOn
	}
	return nil
}

// @Summary List Maintenance Charges
// @Tags Maintenance
// @Produce json
// @Param category query string false "Filter by category"
// @Param property_id query int false "Filter by property"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /maintenance_charges [get]
func (h *MaintenanceHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c)
	query.Filters["category"] = c.Query("category")
	query.Filters["property_id"] = c.Query("property_id")
	query.Filters["from"] = c.Query("from")
	query.Filters["to"] = c.Query("to")

	charges, total, err := h.maintenanceService.List(c.Request.Context(), middleware.GetCaller(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.MaintenanceChargeResponse, 0, len(charges))
	for _, m := range charges {
		responses = append(responses, m.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_charges": responses, "total": total})
}

// @Summary Get Maintenance Charge
// @Tags Maintenance
// @Produce json
// @Param charge_id path int true "Charge ID"
// @Success 200 {object} models.MaintenanceChargeResponse
// @Security BearerAuth
// @Router /maintenance_charges/{charge_id} [get]
func (h *MaintenanceHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("charge_id"), 10, 32)
	charge, err := h.maintenanceService.FindByID(c.Request.Context(), middleware.GetCaller(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_charge": charge.ToResponse()})
}

// @Summary Create Maintenance Charge
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request body MaintenanceRequest true "Charge"
// @Success 201 {object} models.MaintenanceChargeResponse
// @Security BearerAuth
// @Router /maintenance_charges [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req MaintenanceRequest
	if err := BindNestedOrFlat(c, "maintenance_charge", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var charge models.MaintenanceCharge
	if err := req.apply(&charge); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid charged_on date, expected YYYY-MM-DD"})
		return
	}

	if err := h.maintenanceService.Create(c.Request.Context(), middleware.GetCaller(c), &charge); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"maintenance_charge": charge.ToResponse(), "message": "Charge created"})
}

// @Summary Update Maintenance Charge
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param charge_id path int true "Charge ID"
// @Param request body MaintenanceRequest true "Charge"
// @Success 200 {object} models.MaintenanceChargeResponse
// @Security BearerAuth
// @Router /maintenance_charges/{charge_id} [put]
func (h *MaintenanceHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("charge_id"), 10, 32)
	caller := middleware.GetCaller(c)

	charge, err := h.maintenanceService.FindByID(c.Request.Context(), caller, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req MaintenanceRequest
	if err := BindNestedOrFlat(c, "maintenance_charge", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.apply(charge); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid charged_on date, expected YYYY-MM-DD"})
		return
	}

	if err := h.maintenanceService.Update(c.Request.Context(), caller, charge); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_charge": charge.ToResponse(), "message": "Charge updated"})
}

// @Summary Delete Maintenance Charge
// @Tags Maintenance
// @Produce json
// @Param charge_id path int true "Charge ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance_charges/{charge_id} [delete]
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("charge_id"), 10, 32)
	if err := h.maintenanceService.Delete(c.Request.Context(), middleware.GetCaller(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Charge deleted"})
}
