package repository

import (
	"context"

	"github.com/rentara/rentara-api/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository defines the interface for property data access
type PropertyRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Property, error)
	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Property, int64, error)
	HasLeases(ctx context.Context, id uint) (bool, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

func (r *propertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Property{}, id).Error
}

func (r *propertyRepository) List(ctx context.Context, query *ListQuery) ([]models.Property, int64, error) {
	var properties []models.Property
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Property{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("address ILIKE ? OR city ILIKE ? OR guid ILIKE ?", search, search, search)
	}

	if query.Filters["kind"] != "" {
		db = db.Where("kind = ?", query.Filters["kind"])
	}
	if query.Filters["city"] != "" {
		db = db.Where("city = ?", query.Filters["city"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&properties).Error
	return properties, total, err
}

func (r *propertyRepository) HasLeases(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("property_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Tenant, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Tenant, int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) FindByID(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindByUserID(ctx context.Context, userID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

func (r *tenantRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Tenant{}, id).Error
}

func (r *tenantRepository) List(ctx context.Context, query *ListQuery) ([]models.Tenant, int64, error) {
	var tenants []models.Tenant
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Tenant{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR tax_code ILIKE ? OR phone ILIKE ?", search, search, search)
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("full_name ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("User").Preload("Leases").Find(&tenants).Error
	return tenants, total, err
}

// MaintenanceRepository defines the interface for maintenance charge data access
type MaintenanceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.MaintenanceCharge, error)
	Create(ctx context.Context, charge *models.MaintenanceCharge) error
	Update(ctx context.Context, charge *models.MaintenanceCharge) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scope Scope, query *ListQuery) ([]models.MaintenanceCharge, int64, error)
	SumByProperty(ctx context.Context, propertyID uint) (float64, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance charge repository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uint) (*models.MaintenanceCharge, error) {
	var charge models.MaintenanceCharge
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		First(&charge, id).Error
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, charge *models.MaintenanceCharge) error {
	return r.db.WithContext(ctx).Create(charge).Error
}

func (r *maintenanceRepository) Update(ctx context.Context, charge *models.MaintenanceCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceCharge{}, id).Error
}

func (r *maintenanceRepository) List(ctx context.Context, scope Scope, query *ListQuery) ([]models.MaintenanceCharge, int64, error) {
	var charges []models.MaintenanceCharge
	var total int64

	db := applyScope(r.db.WithContext(ctx).Model(&models.MaintenanceCharge{}), scope)

	if query.Filters["category"] != "" {
		db = db.Where("maintenance_charges.category = ?", query.Filters["category"])
	}
	if query.Filters["property_id"] != "" {
		db = db.Where("maintenance_charges.property_id = ?", query.Filters["property_id"])
	}
	if val := query.Filters["from"]; val != "" {
		db = db.Where("maintenance_charges.charged_on >= ?", val)
	}
	if val := query.Filters["to"]; val != "" {
		db = db.Where("maintenance_charges.charged_on <= ?", val)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "maintenance_charges." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("maintenance_charges.charged_on DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Property").
		Preload("Tenant").
		Find(&charges).Error
	return charges, total, err
}

func (r *maintenanceRepository) SumByProperty(ctx context.Context, propertyID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceCharge{}).
		Where("property_id = ?", propertyID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
