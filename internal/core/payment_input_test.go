package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func cashInput(amount string) PaymentInput {
	return PaymentInput{
		OrderID:  150,
		ClientID: 1,
		Amount:   decimal.RequireFromString(amount),
		Method:   "Cash",
	}
}

func TestPrepare_CashDefaultsPaymentDateToToday(t *testing.T) {
	p, err := cashInput("600000").prepare(testToday)
	require.NoError(t, err)

	assert.Equal(t, MethodCash, p.method)
	assert.Equal(t, testToday, p.paymentDate)
	assert.True(t, p.amount.Equal(decimal.NewFromInt(600000)))
	assert.Nil(t, p.destinyBank)
	assert.Nil(t, p.transfer)
	assert.Nil(t, p.cheque)
}

func TestPrepare_TransferNormalizesBankAndCopiesAmount(t *testing.T) {
	in := cashInput("500000")
	in.Method = "transferencia"
	in.Transfer = &TransferDetails{
		ProofNumber:     "12345",
		EmissionBank:    "BBVA",
		EmissionDate:    "2025-01-20",
		DestinationBank: "davivienda",
	}

	p, err := in.prepare(testToday)
	require.NoError(t, err)

	assert.Equal(t, MethodTransfer, p.method)
	require.NotNil(t, p.destinyBank)
	assert.Equal(t, BankB, *p.destinyBank)
	require.NotNil(t, p.transfer)
	assert.Equal(t, BankB, p.transfer.DestinyBank)
	assert.Equal(t, "BBVA", p.transfer.EmissionBank)
	assert.True(t, p.transfer.Value.Equal(decimal.NewFromInt(500000)))
}

func TestPrepare_TransferRejectsUnknownDestination(t *testing.T) {
	in := cashInput("500000")
	in.Method = "Transfer"
	in.Transfer = &TransferDetails{
		ProofNumber:     "12345",
		EmissionBank:    "BBVA",
		EmissionDate:    "2025-01-20",
		DestinationBank: "BBVA",
	}

	_, err := in.prepare(testToday)
	assert.ErrorIs(t, err, ErrInvalidDestinationBank)
}

func TestPrepare_TransferRequiresDetails(t *testing.T) {
	in := cashInput("500000")
	in.Method = "Transfer"
	_, err := in.prepare(testToday)
	assert.ErrorIs(t, err, ErrValidation)

	in.Transfer = &TransferDetails{EmissionBank: "BBVA", EmissionDate: "2025-01-20", DestinationBank: "Bancolombia"}
	_, err = in.prepare(testToday)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "proof_number is required")
}

func TestPrepare_ChequeAmountComesFromChequeValue(t *testing.T) {
	in := cashInput("1")
	in.Method = "Cheque"
	in.Cheque = &ChequeDetails{
		ChequeNumber:            "CH-77",
		Bank:                    "Banco de Bogota",
		EmissionDate:            "2025-01-20",
		EstimatedCollectionDate: "2025-01-25",
		Value:                   decimal.NewFromInt(250000),
	}

	p, err := in.prepare(testToday)
	require.NoError(t, err)
	assert.True(t, p.amount.Equal(decimal.NewFromInt(250000)))
	require.NotNil(t, p.cheque)
	assert.True(t, p.cheque.Value.Equal(p.amount))
	assert.Nil(t, p.destinyBank)
}

func TestPrepare_ChequeRejectsBadDates(t *testing.T) {
	in := cashInput("1")
	in.Method = "Cheque"
	in.Cheque = &ChequeDetails{
		ChequeNumber:            "CH-77",
		Bank:                    "Banco de Bogota",
		EmissionDate:            "2025-01-20",
		EstimatedCollectionDate: "2025-01-10",
		Value:                   decimal.NewFromInt(250000),
	}
	_, err := in.prepare(testToday)
	assert.ErrorIs(t, err, ErrValidation)

	in.Cheque.EstimatedCollectionDate = "25/01/2025"
	_, err = in.prepare(testToday)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPrepare_Rejects(t *testing.T) {
	cases := map[string]func(*PaymentInput){
		"zero amount":        func(in *PaymentInput) { in.Amount = decimal.Zero },
		"negative amount":    func(in *PaymentInput) { in.Amount = decimal.NewFromInt(-10) },
		"sub-cent amount":    func(in *PaymentInput) { in.Amount = decimal.RequireFromString("10.001") },
		"unsupported method": func(in *PaymentInput) { in.Method = "crypto" },
		"missing method":     func(in *PaymentInput) { in.Method = "" },
		"missing order":      func(in *PaymentInput) { in.OrderID = 0 },
		"missing client":     func(in *PaymentInput) { in.ClientID = 0 },
		"bad payment date":   func(in *PaymentInput) { in.PaymentDate = "2025-13-01" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := cashInput("100")
			mutate(&in)
			_, err := in.prepare(testToday)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestInstallmentRefValidate(t *testing.T) {
	assert.NoError(t, InstallmentRef{ID: 9}.validate())
	assert.NoError(t, InstallmentRef{PlanID: 3, Number: 2}.validate())
	assert.ErrorIs(t, InstallmentRef{}.validate(), ErrValidation)
	assert.ErrorIs(t, InstallmentRef{Number: 2}.validate(), ErrValidation)
	assert.ErrorIs(t, InstallmentRef{PlanID: 3}.validate(), ErrValidation)
}
