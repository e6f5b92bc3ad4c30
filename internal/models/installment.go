package models

import (
	"time"
)

// Installment is one scheduled payment obligation derived from a lease.
// The paid state is persisted as a two-valued literal marker so existing
// scoped queries keep working; responses additionally render a boolean.
// LockVersion backs the optimistic check on state updates.
type Installment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LeaseID     uint      `gorm:"not null;index;uniqueIndex:idx_lease_ordinal" json:"lease_id"`
	Ordinal     int       `gorm:"not null;uniqueIndex:idx_lease_ordinal" json:"ordinal"`
	DueDate     time.Time `gorm:"type:date;not null;index" json:"due_date"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status      string    `gorm:"default:unpaid;not null;index" json:"status"`
	LockVersion uint      `gorm:"default:0;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Lease Lease `gorm:"foreignKey:LeaseID" json:"lease,omitempty"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// Installment status markers
const (
	InstallmentStatusUnpaid = "unpaid"
	InstallmentStatusPaid   = "paid"
)

// ValidInstallmentStatus reports whether s is one of the two markers
func ValidInstallmentStatus(s string) bool {
	return s == InstallmentStatusUnpaid || s == InstallmentStatusPaid
}

// IsPaid returns true if the installment has been settled
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// IsUnpaid returns true if the installment is still owed
func (i *Installment) IsUnpaid() bool {
	return i.Status == InstallmentStatusUnpaid
}

// IsOverdue returns true if the installment is unpaid and past due as of the
// given date.
func (i *Installment) IsOverdue(asOf time.Time) bool {
	return i.IsUnpaid() && i.DueDate.Before(asOf)
}

// OverdueDays returns the number of days overdue as of the given date
func (i *Installment) OverdueDays(asOf time.Time) int {
	if !i.IsOverdue(asOf) {
		return 0
	}
	return int(asOf.Sub(i.DueDate).Hours() / 24)
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID          uint      `json:"id"`
	LeaseID     uint      `json:"lease_id"`
	Ordinal     int       `json:"ordinal"`
	DueDate     time.Time `json:"due_date"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Paid        bool      `json:"paid"`
	OverdueDays int       `json:"overdue_days"`

	// Lease details when preloaded
	TenantName      string `json:"tenant_name,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
}

// ToResponse converts Installment to InstallmentResponse
func (i *Installment) ToResponse() InstallmentResponse {
	resp := InstallmentResponse{
		ID:          i.ID,
		LeaseID:     i.LeaseID,
		Ordinal:     i.Ordinal,
		DueDate:     i.DueDate,
		Amount:      i.Amount,
		Status:      i.Status,
		Paid:        i.IsPaid(),
		OverdueDays: i.OverdueDays(time.Now()),
	}

	if i.Lease.ID != 0 {
		if i.Lease.Tenant.ID != 0 {
			resp.TenantName = i.Lease.Tenant.FullName
		}
		if i.Lease.Property.ID != 0 {
			resp.PropertyAddress = i.Lease.Property.Address
		}
	}

	return resp
}
