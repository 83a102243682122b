package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(open ...bool) []RegisterRow {
	out := make([]RegisterRow, len(open))
	for i, o := range open {
		row := CashRow(i + 1)
		out[i] = RegisterRow{Row: row, Label: row.Label(), IsOpen: o}
	}
	return out
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, checkTransition(rowsOf(false), true))
	require.NoError(t, checkTransition(rowsOf(true), false))
	require.NoError(t, checkTransition(rowsOf(false, false), true))

	err := checkTransition(rowsOf(true), true)
	assert.ErrorIs(t, err, ErrAlreadyOpen)
	assert.ErrorIs(t, err, ErrConflict)

	err = checkTransition(rowsOf(false), false)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	assert.ErrorIs(t, err, ErrConflict)

	// A half-open reconciliation pair can be neither opened nor closed as a pair.
	assert.True(t, errors.Is(checkTransition(rowsOf(true, false), true), ErrAlreadyOpen))
	assert.True(t, errors.Is(checkTransition(rowsOf(true, false), false), ErrAlreadyClosed))
}

func TestOpenRegisterInputValidate(t *testing.T) {
	ok := []OpenRegisterInput{
		{Entity: EntityDrawer, Balances: []decimal.Decimal{decimal.NewFromInt(100000)}},
		{Entity: EntityDrawer, Balances: []decimal.Decimal{decimal.Zero}},
		{Entity: EntityReconciliation, Balances: []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)}},
	}
	for _, in := range ok {
		assert.NoError(t, in.validate(), in.Entity)
	}

	bad := []OpenRegisterInput{
		{Entity: EntityDrawer},
		{Entity: EntityDrawer, Balances: []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)}},
		{Entity: EntityReconciliation, Balances: []decimal.Decimal{decimal.NewFromInt(1)}},
		{Entity: EntityDrawer, Balances: []decimal.Decimal{decimal.NewFromInt(-1)}},
		{Entity: "safe", Balances: []decimal.Decimal{decimal.NewFromInt(1)}},
	}
	for _, in := range bad {
		assert.ErrorIs(t, in.validate(), ErrValidation, in.Entity)
	}
}

func TestNewRegisterState(t *testing.T) {
	assert.True(t, newRegisterState(EntityReconciliation, rowsOf(true, true)).IsOpen)
	assert.False(t, newRegisterState(EntityReconciliation, rowsOf(true, false)).IsOpen)
	assert.False(t, newRegisterState(EntityDrawer, nil).IsOpen)
}
