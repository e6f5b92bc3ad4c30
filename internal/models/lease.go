package models

import (
	"time"
)

// Lease represents a rental agreement between a tenant and a property for a
// fixed number of years at a fixed annual rent. The installment set is derived
// from (start date, duration, annual rent, frequency) at creation time.
type Lease struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GUID          string    `gorm:"uniqueIndex" json:"guid"`
	TenantID      uint      `gorm:"not null;index" json:"tenant_id"`
	PropertyID    uint      `gorm:"not null;index" json:"property_id"`
	StartDate     time.Time `gorm:"type:date;not null" json:"start_date"`
	DurationYears int       `gorm:"not null" json:"duration_years"`
	AnnualRent    float64   `gorm:"type:decimal(12,2);not null" json:"annual_rent"`
	Frequency     string    `gorm:"not null" json:"frequency"`
	Note          *string   `gorm:"type:text" json:"note"`
	DocumentPath  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Tenant       Tenant        `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Property     Property      `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Installments []Installment `gorm:"foreignKey:LeaseID" json:"installments,omitempty"`
}

// TableName specifies the table name for Lease
func (Lease) TableName() string {
	return "leases"
}

// Payment frequency constants. The per-year counts are a stable contract:
// persisted installments stay interpretable without re-deriving the frequency.
const (
	FrequencyMonthly    = "monthly"
	FrequencyBimonthly  = "bimonthly"
	FrequencyQuarterly  = "quarterly"
	FrequencySemiannual = "semiannual"
	FrequencyAnnual     = "annual"
)

// InstallmentsPerYear maps a frequency to the number of installments generated
// per lease year. The second return value is false for unknown frequencies.
func InstallmentsPerYear(frequency string) (int, bool) {
	switch frequency {
	case FrequencyMonthly:
		return 12, true
	case FrequencyBimonthly:
		return 6, true
	case FrequencyQuarterly:
		return 4, true
	case FrequencySemiannual:
		return 2, true
	case FrequencyAnnual:
		return 1, true
	}
	return 0, false
}

// MonthsBetweenInstallments returns the calendar months separating two
// consecutive due dates for the lease's frequency.
func (l *Lease) MonthsBetweenInstallments() int {
	perYear, ok := InstallmentsPerYear(l.Frequency)
	if !ok {
		return 0
	}
	return 12 / perYear
}

// TotalInstallments returns the size of the full installment set
func (l *Lease) TotalInstallments() int {
	perYear, ok := InstallmentsPerYear(l.Frequency)
	if !ok {
		return 0
	}
	return perYear * l.DurationYears
}

// EndDate returns the day the lease term ends
func (l *Lease) EndDate() time.Time {
	return l.StartDate.AddDate(l.DurationYears, 0, 0)
}

// TotalRent returns the rent owed over the whole term
func (l *Lease) TotalRent() float64 {
	return l.AnnualRent * float64(l.DurationYears)
}

// LeaseResponse is the JSON response format for leases
type LeaseResponse struct {
	ID              uint                  `json:"id"`
	GUID            string                `json:"guid"`
	TenantID        uint                  `json:"tenant_id"`
	TenantName      string                `json:"tenant_name,omitempty"`
	PropertyID      uint                  `json:"property_id"`
	PropertyAddress string                `json:"property_address,omitempty"`
	PropertyKind    string                `json:"property_kind,omitempty"`
	StartDate       time.Time             `json:"start_date"`
	EndDate         time.Time             `json:"end_date"`
	DurationYears   int                   `json:"duration_years"`
	AnnualRent      float64               `json:"annual_rent"`
	TotalRent       float64               `json:"total_rent"`
	Frequency       string                `json:"frequency"`
	Note            *string               `json:"note"`
	HasDocument     bool                  `json:"has_document"`
	UnpaidCount     int                   `json:"unpaid_count"`
	Installments    []InstallmentResponse `json:"installments,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ToResponse converts Lease to LeaseResponse
func (l *Lease) ToResponse() LeaseResponse {
	resp := LeaseResponse{
		ID:            l.ID,
		GUID:          l.GUID,
		TenantID:      l.TenantID,
		PropertyID:    l.PropertyID,
		StartDate:     l.StartDate,
		EndDate:       l.EndDate(),
		DurationYears: l.DurationYears,
		AnnualRent:    l.AnnualRent,
		TotalRent:     l.TotalRent(),
		Frequency:     l.Frequency,
		Note:          l.Note,
		HasDocument:   l.DocumentPath != nil && *l.DocumentPath != "",
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}

	if l.Tenant.ID != 0 {
		resp.TenantName = l.Tenant.FullName
	}
	if l.Property.ID != 0 {
		resp.PropertyAddress = l.Property.Address
		resp.PropertyKind = l.Property.Kind
	}

	for _, inst := range l.Installments {
		if inst.IsUnpaid() {
			resp.UnpaidCount++
		}
		resp.Installments = append(resp.Installments, inst.ToResponse())
	}

	return resp
}
