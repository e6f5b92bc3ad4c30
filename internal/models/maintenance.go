package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceCharge records an expense tied to a property and a tenant.
// Its lifecycle is independent of leases, but visibility follows the same
// tenant-ownership rule.
type MaintenanceCharge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GUID       string    `gorm:"uniqueIndex" json:"guid"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	ChargedOn  time.Time `gorm:"type:date;not null;index" json:"charged_on"`
	Amount     float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category   string    `gorm:"not null;index" json:"category"`
	Note       *string   `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	Property Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Tenant   Tenant   `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// TableName specifies the table name for MaintenanceCharge
func (MaintenanceCharge) TableName() string {
	return "maintenance_charges"
}

// BeforeCreate hook for assigning the GUID
func (m *MaintenanceCharge) BeforeCreate(tx *gorm.DB) error {
	if m.GUID == "" {
		m.GUID = uuid.NewString()
	}
	return nil
}

// Maintenance category constants
const (
	MaintenanceCategoryRoutine       = "routine"
	MaintenanceCategoryExtraordinary = "extraordinary"
)

// Validate checks amount and category
func (m *MaintenanceCharge) Validate() error {
	if m.Amount <= 0 {
		return fmt.Errorf("maintenance amount must be greater than 0")
	}
	switch m.Category {
	case MaintenanceCategoryRoutine, MaintenanceCategoryExtraordinary:
		return nil
	}
	return fmt.Errorf("unknown maintenance category: %q", m.Category)
}

// MaintenanceChargeResponse is the JSON response format
type MaintenanceChargeResponse struct {
	ID              uint      `json:"id"`
	GUID            string    `json:"guid"`
	PropertyID      uint      `json:"property_id"`
	PropertyAddress string    `json:"property_address,omitempty"`
	TenantID        uint      `json:"tenant_id"`
	TenantName      string    `json:"tenant_name,omitempty"`
	ChargedOn       time.Time `json:"charged_on"`
	Amount          float64   `json:"amount"`
	Category        string    `json:"category"`
	Note            *string   `json:"note"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToResponse converts MaintenanceCharge to MaintenanceChargeResponse
func (m *MaintenanceCharge) ToResponse() MaintenanceChargeResponse {
	resp := MaintenanceChargeResponse{
		ID:         m.ID,
		GUID:       m.GUID,
		PropertyID: m.PropertyID,
		TenantID:   m.TenantID,
		ChargedOn:  m.ChargedOn,
		Amount:     m.Amount,
		Category:   m.Category,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
	if m.Property.ID != 0 {
		resp.PropertyAddress = m.Property.Address
	}
	if m.Tenant.ID != 0 {
		resp.TenantName = m.Tenant.FullName
	}
	return resp
}
