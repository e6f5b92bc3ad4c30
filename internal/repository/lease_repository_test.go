package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.Property{},
		&models.Lease{},
		&models.Installment{},
	)
	require.NoError(t, err)
	return db
}

// seedTenant creates a user with a bound tenant record
func seedTenant(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	t.Helper()
	user := models.User{Email: name + "@example.com", EncryptedPassword: "x", Role: models.RoleTenant, FullName: name}
	require.NoError(t, db.Create(&user).Error)
	tenant := models.Tenant{UserID: user.ID, FullName: name}
	require.NoError(t, db.Create(&tenant).Error)
	return &tenant
}

func seedProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()
	property := models.Property{Kind: models.PropertyKindApartment, Address: "Via Roma 1", City: "Milano"}
	require.NoError(t, db.Create(&property).Error)
	return &property
}

func seedLease(t *testing.T, db *gorm.DB, repo LeaseRepository, tenant *models.Tenant, property *models.Property, unpaid, paid int) *models.Lease {
	t.Helper()
	lease := &models.Lease{
		GUID:          fmt.Sprintf("guid-%s-%d", tenant.FullName, time.Now().UnixNano()),
		TenantID:      tenant.ID,
		PropertyID:    property.ID,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationYears: 1,
		AnnualRent:    12000,
		Frequency:     models.FrequencyMonthly,
	}

	var installments []models.Installment
	due := lease.StartDate
	for i := 0; i < unpaid+paid; i++ {
		due = due.AddDate(0, 1, 0)
		status := models.InstallmentStatusUnpaid
		if i >= unpaid {
			status = models.InstallmentStatusPaid
		}
		installments = append(installments, models.Installment{
			Ordinal: i + 1,
			DueDate: due,
			Amount:  1000,
			Status:  status,
		})
	}

	require.NoError(t, repo.CreateWithInstallments(context.Background(), lease, installments))
	return lease
}

func TestCreateWithInstallments_PersistsBoth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	tenant := seedTenant(t, db, "mario")
	property := seedProperty(t, db)

	lease := seedLease(t, db, repo, tenant, property, 12, 0)
	assert.NotZero(t, lease.ID)

	var count int64
	db.Model(&models.Installment{}).Where("lease_id = ?", lease.ID).Count(&count)
	assert.Equal(t, int64(12), count)
}

func TestCreateWithInstallments_FailureRollsBackLease(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	tenant := seedTenant(t, db, "mario")
	property := seedProperty(t, db)

	lease := &models.Lease{
		GUID:          "guid-rollback",
		TenantID:      tenant.ID,
		PropertyID:    property.ID,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationYears: 1,
		AnnualRent:    12000,
		Frequency:     models.FrequencyMonthly,
	}
	// Duplicate ordinal violates the unique (lease_id, ordinal) index, so the
	// whole write must roll back and the lease never becomes visible.
	installments := []models.Installment{
		{Ordinal: 1, DueDate: time.Now(), Amount: 1000, Status: models.InstallmentStatusUnpaid},
		{Ordinal: 1, DueDate: time.Now(), Amount: 1000, Status: models.InstallmentStatusUnpaid},
	}

	err := repo.CreateWithInstallments(context.Background(), lease, installments)
	assert.Error(t, err)

	var leaseCount int64
	db.Model(&models.Lease{}).Count(&leaseCount)
	assert.Equal(t, int64(0), leaseCount)

	var instCount int64
	db.Model(&models.Installment{}).Count(&instCount)
	assert.Equal(t, int64(0), instCount)
}

func TestList_OwnershipScopeFiltersInQuery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	property := seedProperty(t, db)
	mario := seedTenant(t, db, "mario")
	anna := seedTenant(t, db, "anna")

	marioLease := seedLease(t, db, repo, mario, property, 3, 0)
	seedLease(t, db, repo, anna, property, 2, 0)

	query := &LeaseQuery{ListQuery: NewListQuery()}

	// Unrestricted scope sees both
	all, total, err := repo.List(context.Background(), nil, query)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	// Mario's scope sees only his lease
	scoped, total, err := repo.List(context.Background(), LeaseOwnedByUser(mario.UserID), query)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, scoped, 1)
	assert.Equal(t, marioLease.ID, scoped[0].ID)

	// A user with no tenant record sees nothing
	none, total, err := repo.List(context.Background(), LeaseOwnedByUser(9999), query)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Len(t, none, 0)
}

func TestInstallmentScope_ResolvesThroughParentLease(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	instRepo := NewInstallmentRepository(db)
	property := seedProperty(t, db)
	mario := seedTenant(t, db, "mario")
	anna := seedTenant(t, db, "anna")

	seedLease(t, db, repo, mario, property, 3, 1)
	seedLease(t, db, repo, anna, property, 2, 0)

	unpaid, err := instRepo.ListByStatus(context.Background(), InstallmentOwnedByUser(mario.UserID), models.InstallmentStatusUnpaid)
	assert.NoError(t, err)
	assert.Len(t, unpaid, 3)

	allUnpaid, err := instRepo.ListByStatus(context.Background(), nil, models.InstallmentStatusUnpaid)
	assert.NoError(t, err)
	assert.Len(t, allUnpaid, 5)
}

func TestUpdateStatus_OptimisticLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	instRepo := NewInstallmentRepository(db)
	property := seedProperty(t, db)
	tenant := seedTenant(t, db, "mario")
	lease := seedLease(t, db, repo, tenant, property, 2, 0)

	var installment models.Installment
	require.NoError(t, db.Where("lease_id = ?", lease.ID).Order("ordinal").First(&installment).Error)

	// Two readers hold the same version; the first write wins
	stale := installment

	err := instRepo.UpdateStatus(context.Background(), &installment, models.InstallmentStatusPaid)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
	assert.Equal(t, uint(1), installment.LockVersion)

	err = instRepo.UpdateStatus(context.Background(), &stale, models.InstallmentStatusUnpaid)
	assert.ErrorIs(t, err, ErrStaleObject)

	// The winning write is still in place
	var reloaded models.Installment
	require.NoError(t, db.First(&reloaded, installment.ID).Error)
	assert.Equal(t, models.InstallmentStatusPaid, reloaded.Status)
}

func TestDeleteCascade_NoOrphanInstallments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	property := seedProperty(t, db)
	tenant := seedTenant(t, db, "mario")
	lease := seedLease(t, db, repo, tenant, property, 4, 0)

	require.NoError(t, repo.DeleteCascade(context.Background(), lease.ID))

	var leaseCount, instCount int64
	db.Model(&models.Lease{}).Count(&leaseCount)
	db.Model(&models.Installment{}).Count(&instCount)
	assert.Equal(t, int64(0), leaseCount)
	assert.Equal(t, int64(0), instCount)
}

func TestFindInArrears_ThresholdAndScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	property := seedProperty(t, db)
	mario := seedTenant(t, db, "mario")
	anna := seedTenant(t, db, "anna")

	behind := seedLease(t, db, repo, mario, property, 4, 2)
	seedLease(t, db, repo, anna, property, 2, 4)

	rows, err := repo.FindInArrears(context.Background(), nil, 3)
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, behind.ID, rows[0].LeaseID)
	assert.Equal(t, "mario", rows[0].TenantName)
	assert.Equal(t, int64(4), rows[0].UnpaidCount)
	assert.Equal(t, 4000.0, rows[0].UnpaidTotal)

	// Lower threshold catches both
	rows, err = repo.FindInArrears(context.Background(), nil, 2)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	// Anna's scope never shows Mario's arrears
	rows, err = repo.FindInArrears(context.Background(), LeaseOwnedByUser(anna.UserID), 2)
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "anna", rows[0].TenantName)
}

func TestListOverdue_CutoffIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	instRepo := NewInstallmentRepository(db)
	property := seedProperty(t, db)
	tenant := seedTenant(t, db, "mario")
	seedLease(t, db, repo, tenant, property, 12, 0)

	// Due dates run from 2026-02-01 monthly; a cutoff of 2026-05-01 catches
	// February through April but not the installment due on the cutoff itself.
	asOf := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	overdue, err := instRepo.ListOverdue(context.Background(), nil, asOf)
	assert.NoError(t, err)
	assert.Len(t, overdue, 3)
}

func TestGetStats_ScopedAggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaseRepository(db)
	property := seedProperty(t, db)
	mario := seedTenant(t, db, "mario")
	anna := seedTenant(t, db, "anna")

	seedLease(t, db, repo, mario, property, 3, 9)
	seedLease(t, db, repo, anna, property, 6, 6)

	stats, err := repo.GetStats(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, 24000.0, stats.ActiveRent)
	assert.Equal(t, 9000.0, stats.UnpaidAmount)

	scoped, err := repo.GetStats(context.Background(), LeaseOwnedByUser(mario.UserID), InstallmentOwnedByUser(mario.UserID))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), scoped.Total)
	assert.Equal(t, 12000.0, scoped.ActiveRent)
	assert.Equal(t, 3000.0, scoped.UnpaidAmount)
}
