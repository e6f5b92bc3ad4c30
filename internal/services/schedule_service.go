package services

import (
	"fmt"

	"github.com/rentara/rentara-api/internal/models"
)

// ScheduleService derives the installment set for a lease. The derivation is
// pure: it depends on the lease parameters only, so identical leases always
// produce identical schedules.
type ScheduleService struct{}

// NewScheduleService creates a new schedule service
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// GenerateSchedule returns the ordered installment set for the lease.
//
// The per-installment amount is the annual rent divided by the number of
// installments per year, with no cent balancing across the set. Due dates
// start one interval after the lease start date (the start date itself is
// never a due date) and advance by adding the interval to the running date.
// All installments start unpaid.
func (s *ScheduleService) GenerateSchedule(lease *models.Lease) ([]models.Installment, error) {
	if err := s.Validate(lease); err != nil {
		return nil, err
	}

	perYear, _ := models.InstallmentsPerYear(lease.Frequency)
	monthsBetween := 12 / perYear
	total := perYear * lease.DurationYears
	amount := lease.AnnualRent / float64(perYear)

	installments := make([]models.Installment, 0, total)
	due := lease.StartDate
	for ordinal := 1; ordinal <= total; ordinal++ {
		due = due.AddDate(0, monthsBetween, 0)
		installments = append(installments, models.Installment{
			LeaseID: lease.ID,
			Ordinal: ordinal,
			DueDate: due,
			Amount:  amount,
			Status:  models.InstallmentStatusUnpaid,
		})
	}

	return installments, nil
}

// Validate checks the lease parameters the schedule derives from
func (s *ScheduleService) Validate(lease *models.Lease) error {
	if lease.DurationYears < 1 {
		return fmt.Errorf("%w: duration must be at least 1 year, got %d",
			ErrInvalidLeaseParameters, lease.DurationYears)
	}
	if lease.AnnualRent <= 0 {
		return fmt.Errorf("%w: annual rent must be greater than 0, got %.2f",
			ErrInvalidLeaseParameters, lease.AnnualRent)
	}
	if _, ok := models.InstallmentsPerYear(lease.Frequency); !ok {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidLeaseParameters, lease.Frequency)
	}
	if lease.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidLeaseParameters)
	}
	return nil
}
