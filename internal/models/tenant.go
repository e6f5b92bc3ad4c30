package models

import (
	"time"
)

// Tenant is the renting party. Each tenant is bound to exactly one login
// user; ownership checks resolve leases and installments through this link.
type Tenant struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName  string     `gorm:"not null" json:"full_name"`
	TaxCode   string     `gorm:"index" json:"tax_code"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date"`
	Note      *string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	User               User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Leases             []Lease             `gorm:"foreignKey:TenantID" json:"leases,omitempty"`
	MaintenanceCharges []MaintenanceCharge `gorm:"foreignKey:TenantID" json:"maintenance_charges,omitempty"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// TenantResponse is the JSON response format for tenants
type TenantResponse struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	FullName   string     `json:"full_name"`
	TaxCode    string     `json:"tax_code"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	BirthDate  *time.Time `json:"birth_date"`
	Note       *string    `json:"note"`
	Email      string     `json:"email,omitempty"`
	LeaseCount int        `json:"lease_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ToResponse converts Tenant to TenantResponse
func (t *Tenant) ToResponse() TenantResponse {
	resp := TenantResponse{
		ID:         t.ID,
		UserID:     t.UserID,
		FullName:   t.FullName,
		TaxCode:    t.TaxCode,
		Phone:      t.Phone,
		Address:    t.Address,
		BirthDate:  t.BirthDate,
		Note:       t.Note,
		LeaseCount: len(t.Leases),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.User.ID != 0 {
		resp.Email = t.User.Email
	}
	return resp
}
