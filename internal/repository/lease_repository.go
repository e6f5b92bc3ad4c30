package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rentara/rentara-api/internal/models"
	"gorm.io/gorm"
)

// ErrStaleObject is returned when an optimistic lock check fails because the
// row changed between read and write.
var ErrStaleObject = errors.New("record was modified concurrently")

// Scope is an ownership filter pushed into the storage query. A nil Scope
// means unrestricted visibility.
type Scope func(db *gorm.DB) *gorm.DB

func applyScope(db *gorm.DB, scope Scope) *gorm.DB {
	if scope == nil {
		return db
	}
	return scope(db)
}

// LeaseOwnedByUser restricts lease queries to leases whose tenant is bound to
// the given user. The join runs in SQL so the database never returns rows the
// caller may not see.
func LeaseOwnedByUser(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN tenants ON tenants.id = leases.tenant_id").
			Where("tenants.user_id = ?", userID)
	}
}

// InstallmentOwnedByUser restricts installment queries through the parent
// lease's tenant.
func InstallmentOwnedByUser(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN leases ON leases.id = installments.lease_id").
			Joins("JOIN tenants ON tenants.id = leases.tenant_id").
			Where("tenants.user_id = ?", userID)
	}
}

// MaintenanceOwnedByUser restricts maintenance charge queries to the tenant
// bound to the given user.
func MaintenanceOwnedByUser(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN tenants ON tenants.id = maintenance_charges.tenant_id").
			Where("tenants.user_id = ?", userID)
	}
}

// LeaseQuery extends ListQuery with lease-specific filters
type LeaseQuery struct {
	*ListQuery
	TenantID   uint
	PropertyID uint
	Frequency  string
}

// LeaseRepository defines the interface for lease data access
type LeaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lease, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error)
	CreateWithInstallments(ctx context.Context, lease *models.Lease, installments []models.Installment) error
	Update(ctx context.Context, lease *models.Lease) error
	DeleteCascade(ctx context.Context, id uint) error
	List(ctx context.Context, scope Scope, query *LeaseQuery) ([]models.Lease, int64, error)
	FindByTenant(ctx context.Context, tenantID uint) ([]models.Lease, error)
	FindInArrears(ctx context.Context, scope Scope, minUnpaid int) ([]LeaseArrears, error)
	GetStats(ctx context.Context, leaseScope, installmentScope Scope) (*LeaseStats, error)
}

type leaseRepository struct {
	db *gorm.DB
}

// NewLeaseRepository creates a new lease repository
func NewLeaseRepository(db *gorm.DB) LeaseRepository {
	return &leaseRepository{db: db}
}

func (r *leaseRepository) FindByID(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Lease, error) {
	var lease models.Lease
	// Tenant and Property are to-one so Joins loads them in one query;
	// installments are one-to-many and need a Preload.
	err := r.db.WithContext(ctx).
		Joins("Tenant").
		Joins("Tenant.User").
		Joins("Property").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// CreateWithInstallments persists the lease together with its full installment
// set in one transaction. Either everything is written or nothing is; a lease
// without its schedule is never observable.
func (r *leaseRepository) CreateWithInstallments(ctx context.Context, lease *models.Lease, installments []models.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lease).Error; err != nil {
			return err
		}
		for i := range installments {
			installments[i].LeaseID = lease.ID
		}
		if len(installments) > 0 {
			if err := tx.Create(&installments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *leaseRepository) Update(ctx context.Context, lease *models.Lease) error {
	return r.db.WithContext(ctx).Save(lease).Error
}

// DeleteCascade removes the installments first, then the lease, inside one
// transaction so no orphan installments can exist.
func (r *leaseRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lease_id = ?", id).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lease{}, id).Error
	})
}

func (r *leaseRepository) List(ctx context.Context, scope Scope, query *LeaseQuery) ([]models.Lease, int64, error) {
	var leases []models.Lease
	var total int64

	db := applyScope(r.db.WithContext(ctx).Model(&models.Lease{}), scope)

	if query.TenantID > 0 {
		db = db.Where("leases.tenant_id = ?", query.TenantID)
	}
	if query.PropertyID > 0 {
		db = db.Where("leases.property_id = ?", query.PropertyID)
	}
	if query.Frequency != "" {
		db = db.Where("leases.frequency = ?", query.Frequency)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["start_from"]; ok && val != "" {
			db = db.Where("leases.start_date >= ?", val)
		}
		if val, ok := query.Filters["start_to"]; ok && val != "" {
			db = db.Where("leases.start_date <= ?", val)
		}
		if val, ok := query.Filters["guid"]; ok && val != "" {
			db = db.Where("leases.guid = ?", val)
		}
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := "leases." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("leases.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Tenant").
		Preload("Property").
		Find(&leases).Error
	return leases, total, err
}

func (r *leaseRepository) FindByTenant(ctx context.Context, tenantID uint) ([]models.Lease, error) {
	var leases []models.Lease
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Property").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		Find(&leases).Error
	return leases, err
}

// LeaseArrears is one row of the arrears report
type LeaseArrears struct {
	LeaseID     uint    `json:"lease_id"`
	GUID        string  `json:"guid"`
	TenantID    uint    `json:"tenant_id"`
	TenantName  string  `json:"tenant_name"`
	UnpaidCount int64   `json:"unpaid_count"`
	UnpaidTotal float64 `json:"unpaid_total"`
}

// FindInArrears returns leases with at least minUnpaid unpaid installments.
// Computed as a single aggregate query so the counts come from one consistent
// read.
func (r *leaseRepository) FindInArrears(ctx context.Context, scope Scope, minUnpaid int) ([]LeaseArrears, error) {
	var results []LeaseArrears
	db := applyScope(r.db.WithContext(ctx).Model(&models.Lease{}), scope)
	err := db.
		Select("leases.id AS lease_id, leases.guid AS guid, leases.tenant_id AS tenant_id, "+
			"MAX(owner.full_name) AS tenant_name, COUNT(installments.id) AS unpaid_count, "+
			"COALESCE(SUM(installments.amount), 0) AS unpaid_total").
		Joins("JOIN installments ON installments.lease_id = leases.id AND installments.status = ?",
			models.InstallmentStatusUnpaid).
		Joins("JOIN tenants AS owner ON owner.id = leases.tenant_id").
		Group("leases.id, leases.guid, leases.tenant_id").
		Having("COUNT(installments.id) >= ?", minUnpaid).
		Scan(&results).Error
	return results, err
}

// LeaseStats holds aggregate lease figures
type LeaseStats struct {
	Total        int64   `json:"total"`
	ActiveRent   float64 `json:"active_rent"`
	UnpaidAmount float64 `json:"unpaid_amount"`
}

func (r *leaseRepository) GetStats(ctx context.Context, leaseScope, installmentScope Scope) (*LeaseStats, error) {
	stats := &LeaseStats{}

	db := applyScope(r.db.WithContext(ctx).Model(&models.Lease{}), leaseScope)
	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	db = applyScope(r.db.WithContext(ctx).Model(&models.Lease{}), leaseScope)
	if err := db.Select("COALESCE(SUM(leases.annual_rent), 0)").Scan(&stats.ActiveRent).Error; err != nil {
		return nil, err
	}

	instDB := applyScope(r.db.WithContext(ctx).Model(&models.Installment{}), installmentScope).
		Where("installments.status = ?", models.InstallmentStatusUnpaid)
	if err := instDB.Select("COALESCE(SUM(installments.amount), 0)").Scan(&stats.UnpaidAmount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByLease(ctx context.Context, leaseID uint) ([]models.Installment, error)
	Create(ctx context.Context, installment *models.Installment) error
	UpdateStatus(ctx context.Context, installment *models.Installment, newStatus string) error
	ListByStatus(ctx context.Context, scope Scope, status string) ([]models.Installment, error)
	ListOverdue(ctx context.Context, scope Scope, asOf time.Time) ([]models.Installment, error)
	CountByLeaseAndStatus(ctx context.Context, leaseID uint, status string) (int64, error)
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).
		Preload("Lease.Tenant.User").
		Preload("Lease.Property").
		First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByLease(ctx context.Context, leaseID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("ordinal ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Create(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

// UpdateStatus writes the new paid marker guarded by the row's lock version.
// Two concurrent updates cannot interleave: the second writer sees zero
// affected rows and gets ErrStaleObject.
func (r *installmentRepository) UpdateStatus(ctx context.Context, installment *models.Installment, newStatus string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ? AND lock_version = ?", installment.ID, installment.LockVersion).
		Updates(map[string]interface{}{
			"status":       newStatus,
			"lock_version": installment.LockVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleObject
	}
	installment.Status = newStatus
	installment.LockVersion++
	return nil
}

func (r *installmentRepository) ListByStatus(ctx context.Context, scope Scope, status string) ([]models.Installment, error) {
	var installments []models.Installment
	db := applyScope(r.db.WithContext(ctx).Model(&models.Installment{}), scope)
	err := db.
		Where("installments.status = ?", status).
		Order("installments.due_date ASC").
		Preload("Lease.Tenant").
		Preload("Lease.Property").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) ListOverdue(ctx context.Context, scope Scope, asOf time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	db := applyScope(r.db.WithContext(ctx).Model(&models.Installment{}), scope)
	err := db.
		Where("installments.status = ? AND installments.due_date < ?", models.InstallmentStatusUnpaid, asOf).
		Order("installments.due_date ASC").
		Preload("Lease.Tenant").
		Preload("Lease.Property").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) CountByLeaseAndStatus(ctx context.Context, leaseID uint, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("lease_id = ? AND status = ?", leaseID, status).
		Count(&count).Error
	return count, err
}
