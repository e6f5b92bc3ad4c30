package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property represents a rentable unit. A property is one of a closed set of
// kinds (apartment, shop, office) sharing the same base record; the
// kind-specific fields are nullable and validated at create/update.
type Property struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	GUID       string  `gorm:"uniqueIndex" json:"guid"`
	Kind       string  `gorm:"not null;index" json:"kind"`
	Address    string  `gorm:"not null" json:"address"`
	City       string  `gorm:"not null" json:"city"`
	SurfaceSqm float64 `gorm:"type:decimal(10,2)" json:"surface_sqm"`
	Rooms      int     `json:"rooms"`
	Note       *string `gorm:"type:text" json:"note"`
	ImagePath  *string `json:"-"`

	// Kind-specific attributes
	Floor        *int  `json:"floor,omitempty"`         // apartment
	HasElevator  *bool `json:"has_elevator,omitempty"`  // apartment
	ShopWindows  *int  `json:"shop_windows,omitempty"`  // shop
	Workstations *int  `json:"workstations,omitempty"`  // office

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Leases             []Lease             `gorm:"foreignKey:PropertyID" json:"leases,omitempty"`
	MaintenanceCharges []MaintenanceCharge `gorm:"foreignKey:PropertyID" json:"maintenance_charges,omitempty"`
}

// TableName specifies the table name for Property
func (Property) TableName() string {
	return "properties"
}

// BeforeCreate hook for assigning the GUID
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.GUID == "" {
		p.GUID = uuid.NewString()
	}
	return nil
}

// Property kind constants
const (
	PropertyKindApartment = "apartment"
	PropertyKindShop      = "shop"
	PropertyKindOffice    = "office"
)

// ValidateKind checks the kind is one of the closed variants and that the
// kind-specific fields belong to the declared kind.
func (p *Property) ValidateKind() error {
	switch p.Kind {
	case PropertyKindApartment:
		if p.ShopWindows != nil || p.Workstations != nil {
			return fmt.Errorf("apartment cannot carry shop or office attributes")
		}
	case PropertyKindShop:
		if p.Floor != nil || p.HasElevator != nil || p.Workstations != nil {
			return fmt.Errorf("shop cannot carry apartment or office attributes")
		}
	case PropertyKindOffice:
		if p.Floor != nil || p.HasElevator != nil || p.ShopWindows != nil {
			return fmt.Errorf("office cannot carry apartment or shop attributes")
		}
	default:
		return fmt.Errorf("unknown property kind: %q", p.Kind)
	}
	return nil
}

// HasImage returns true if an image has been uploaded for the property
func (p *Property) HasImage() bool {
	return p.ImagePath != nil && *p.ImagePath != ""
}

// PropertyResponse is the JSON response format for properties
type PropertyResponse struct {
	ID           uint      `json:"id"`
	GUID         string    `json:"guid"`
	Kind         string    `json:"kind"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	SurfaceSqm   float64   `json:"surface_sqm"`
	Rooms        int       `json:"rooms"`
	Note         *string   `json:"note"`
	HasImage     bool      `json:"has_image"`
	Floor        *int      `json:"floor,omitempty"`
	HasElevator  *bool     `json:"has_elevator,omitempty"`
	ShopWindows  *int      `json:"shop_windows,omitempty"`
	Workstations *int      `json:"workstations,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToResponse converts Property to PropertyResponse
func (p *Property) ToResponse() PropertyResponse {
	return PropertyResponse{
		ID:           p.ID,
		GUID:         p.GUID,
		Kind:         p.Kind,
		Address:      p.Address,
		City:         p.City,
		SurfaceSqm:   p.SurfaceSqm,
		Rooms:        p.Rooms,
		Note:         p.Note,
		HasImage:     p.HasImage(),
		Floor:        p.Floor,
		HasElevator:  p.HasElevator,
		ShopWindows:  p.ShopWindows,
		Workstations: p.Workstations,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
