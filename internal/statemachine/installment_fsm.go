package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/rentara/rentara-api/internal/models"
)

// InstallmentFSM wraps an installment with its paid-state machine. Both
// directions are legal: unpaid to paid settles the installment, paid to
// unpaid reverts a mistaken settlement. There is no payment history, only
// the current marker.
type InstallmentFSM struct {
	installment *models.Installment
	fsm         *fsm.FSM
}

// NewInstallmentFSM creates a new installment state machine
func NewInstallmentFSM(installment *models.Installment) *InstallmentFSM {
	ifsm := &InstallmentFSM{
		installment: installment,
	}

	ifsm.fsm = fsm.NewFSM(
		installment.Status,
		fsm.Events{
			{Name: "pay", Src: []string{models.InstallmentStatusUnpaid}, Dst: models.InstallmentStatusPaid},
			{Name: "revert", Src: []string{models.InstallmentStatusPaid}, Dst: models.InstallmentStatusUnpaid},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Pay transitions the installment to paid
func (i *InstallmentFSM) Pay(ctx context.Context) error {
	if err := i.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("installment cannot be paid in current state %s: %w", i.installment.Status, err)
	}
	i.installment.Status = i.fsm.Current()
	return nil
}

// Revert transitions the installment back to unpaid
func (i *InstallmentFSM) Revert(ctx context.Context) error {
	if err := i.fsm.Event(ctx, "revert"); err != nil {
		return fmt.Errorf("installment cannot be reverted in current state %s: %w", i.installment.Status, err)
	}
	i.installment.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InstallmentFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InstallmentFSM) Can(event string) bool {
	return i.fsm.Can(event)
}
