package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatusValidate(t *testing.T) {
	for _, status := range []InvoiceStatus{InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusVoid} {
		assert.NoError(t, status.Validate())
	}
	assert.Error(t, InvoiceStatus("OVERDUE").Validate())
	assert.Error(t, InvoiceStatus("paid").Validate())
}

func TestInvoiceStatusTerminal(t *testing.T) {
	assert.True(t, InvoiceStatusPaid.Terminal())
	assert.True(t, InvoiceStatusVoid.Terminal())
	assert.False(t, InvoiceStatusUnpaid.Terminal())
	assert.False(t, InvoiceStatusPartial.Terminal())
}

func TestInvoiceItemTypeValidate(t *testing.T) {
	assert.NoError(t, ItemTypeRent.Validate())
	assert.NoError(t, ItemTypePenalty.Validate())
	assert.Error(t, InvoiceItemType("FEE").Validate())
}

func TestContractStatusValidate(t *testing.T) {
	assert.NoError(t, ContractStatusActive.Validate())
	assert.Error(t, ContractStatus("PAUSED").Validate())
}

func TestMeteredBillingModeValidate(t *testing.T) {
	assert.NoError(t, SplitEqually.Validate())
	assert.NoError(t, SingleOccupant.Validate())
	assert.Error(t, MeteredBillingMode("PRO_RATA").Validate())
}

func TestChargeTypeValidate(t *testing.T) {
	assert.NoError(t, ChargeTypeRecurring.Validate())
	assert.NoError(t, ChargeTypeOneTime.Validate())
	assert.NoError(t, ChargeTypeMetered.Validate())
	assert.Error(t, ChargeType("WEEKLY").Validate())
}

func TestInvoiceBalanceDue(t *testing.T) {
	invoice := Invoice{
		TotalAmount: decimal.RequireFromString("1175.00"),
		AmountPaid:  decimal.RequireFromString("500.00"),
	}
	assert.Equal(t, "675.00", invoice.BalanceDue().StringFixed(2))
}

func TestMeterReadingConsumption(t *testing.T) {
	reading := MeterReading{PreviousValue: 1200.5, CurrentValue: 1210.5}
	assert.InDelta(t, 10.0, reading.Consumption(), 0.0001)
}

func TestOccupantFullName(t *testing.T) {
	occupant := Occupant{FirstName: "Dana", LastName: "Seitkali"}
	assert.Equal(t, "Dana Seitkali", occupant.FullName())
}
