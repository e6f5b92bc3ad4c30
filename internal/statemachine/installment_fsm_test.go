package statemachine

import (
	"context"
	"testing"

	"github.com/rentara/rentara-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInstallmentFSM_Pay(t *testing.T) {
	installment := &models.Installment{Status: models.InstallmentStatusUnpaid}
	ifsm := NewInstallmentFSM(installment)

	assert.True(t, ifsm.Can("pay"))
	assert.False(t, ifsm.Can("revert"))

	err := ifsm.Pay(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, ifsm.Current())
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
}

func TestInstallmentFSM_Revert(t *testing.T) {
	installment := &models.Installment{Status: models.InstallmentStatusPaid}
	ifsm := NewInstallmentFSM(installment)

	assert.True(t, ifsm.Can("revert"))
	assert.False(t, ifsm.Can("pay"))

	err := ifsm.Revert(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusUnpaid, installment.Status)
}

func TestInstallmentFSM_PayTwiceFails(t *testing.T) {
	installment := &models.Installment{Status: models.InstallmentStatusPaid}
	ifsm := NewInstallmentFSM(installment)

	err := ifsm.Pay(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
}

func TestInstallmentFSM_RevertUnpaidFails(t *testing.T) {
	installment := &models.Installment{Status: models.InstallmentStatusUnpaid}
	ifsm := NewInstallmentFSM(installment)

	err := ifsm.Revert(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.InstallmentStatusUnpaid, installment.Status)
}

func TestInstallmentFSM_RoundTrip(t *testing.T) {
	installment := &models.Installment{Status: models.InstallmentStatusUnpaid}
	ifsm := NewInstallmentFSM(installment)

	assert.NoError(t, ifsm.Pay(context.Background()))
	assert.NoError(t, ifsm.Revert(context.Background()))
	assert.NoError(t, ifsm.Pay(context.Background()))
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
}
