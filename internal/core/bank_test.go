package core_test

import (
	"testing"

	"sales-assistant/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBank(t *testing.T) {
	accepted := map[string]core.Bank{
		"bancolombia":    core.BankA,
		"BANCOLOMBIA":    core.BankA,
		"Bancolombia":    core.BankA,
		"  bancolombia ": core.BankA,
		"Bancolómbia":    core.BankA,
		"davivienda":     core.BankB,
		"DaViViEnDa":     core.BankB,
	}
	for in, want := range accepted {
		got, err := core.NormalizeBank(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "BBVA", "Banco de Bogota", "bancolombia sa", "davi vienda"} {
		_, err := core.NormalizeBank(in)
		assert.ErrorIs(t, err, core.ErrInvalidDestinationBank, in)
	}
}

func TestParseFrequency(t *testing.T) {
	cases := map[string]core.Frequency{
		"Monthly":   core.FrequencyMonthly,
		"mensual":   core.FrequencyMonthly,
		"biweekly":  core.FrequencyBiweekly,
		"Quincenal": core.FrequencyBiweekly,
		"WEEKLY":    core.FrequencyWeekly,
		"semanal":   core.FrequencyWeekly,
		"":          core.FrequencyMonthly,
		"yearly":    core.FrequencyMonthly,
	}
	for in, want := range cases {
		assert.Equal(t, want, core.ParseFrequency(in), in)
	}

	assert.Equal(t, 30, core.FrequencyMonthly.PeriodDays())
	assert.Equal(t, 15, core.FrequencyBiweekly.PeriodDays())
	assert.Equal(t, 7, core.FrequencyWeekly.PeriodDays())
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]core.PaymentMethod{
		"cash":          core.MethodCash,
		"Efectivo":      core.MethodCash,
		"transfer":      core.MethodTransfer,
		"Transferencia": core.MethodTransfer,
		"CHEQUE":        core.MethodCheque,
	} {
		got, ok := core.ParsePaymentMethod(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := core.ParsePaymentMethod("crypto")
	assert.False(t, ok)
}

func TestParsePlanType(t *testing.T) {
	assert.Equal(t, core.PlanTypeLetra, core.ParsePlanType("letra"))
	assert.Equal(t, core.PlanTypeLetra, core.ParsePlanType("Letra"))
	assert.Equal(t, core.PlanTypeOtherFinancing, core.ParsePlanType("OtherFinancing"))
	assert.Equal(t, core.PlanTypeOtherFinancing, core.ParsePlanType(""))
}

func TestParseCashEntity(t *testing.T) {
	for in, want := range map[string]core.CashEntity{
		"drawer":         core.EntityDrawer,
		"Caja":           core.EntityDrawer,
		"reconciliation": core.EntityReconciliation,
		"Conciliación":   core.EntityReconciliation,
	} {
		got, err := core.ParseCashEntity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := core.ParseCashEntity("safe")
	assert.ErrorIs(t, err, core.ErrValidation)

	assert.Equal(t, []core.CashRow{core.RowDrawer}, core.EntityDrawer.Rows())
	assert.Equal(t, []core.CashRow{core.RowBankA, core.RowBankB}, core.EntityReconciliation.Rows())
}
