package core_test

import (
	"errors"
	"testing"
	"time"

	"sales-assistant/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := core.ParseDate(s)
	require.NoError(t, err)
	return v
}

func TestBuildSchedule_MonthlyThreeEqualInstallments(t *testing.T) {
	start := mustDate(t, "2025-01-15")

	got, err := core.BuildSchedule(decimal.NewFromInt(3000000), 3, start, core.FrequencyMonthly)
	require.NoError(t, err)
	require.Len(t, got, 3)

	wantDue := []string{"2025-02-14", "2025-03-16", "2025-04-15"}
	for i, inst := range got {
		assert.Equal(t, i+1, inst.Number)
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1000000)), "installment %d amount %s", i+1, inst.Amount)
		assert.Equal(t, wantDue[i], core.FormatDate(inst.DueDate))
	}
}

func TestBuildSchedule_LastInstallmentAbsorbsRemainder(t *testing.T) {
	got, err := core.BuildSchedule(decimal.NewFromInt(100), 3, mustDate(t, "2025-01-01"), core.FrequencyWeekly)
	require.NoError(t, err)

	assert.Equal(t, "33.33", got[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", got[1].Amount.StringFixed(2))
	assert.Equal(t, "33.34", got[2].Amount.StringFixed(2))
}

func TestBuildSchedule_SumEqualsTotal(t *testing.T) {
	totals := []string{"1", "99.99", "1000", "3000000", "1234567.89", "10.01"}
	counts := []int{1, 2, 3, 7, 12, 36}
	start := mustDate(t, "2025-03-31")

	for _, ts := range totals {
		total := decimal.RequireFromString(ts)
		for _, n := range counts {
			got, err := core.BuildSchedule(total, n, start, core.FrequencyBiweekly)
			if err != nil {
				// Only totals too small to split are allowed to fail.
				require.ErrorIs(t, err, core.ErrValidation)
				continue
			}
			sum := decimal.Zero
			for _, inst := range got {
				require.True(t, inst.Amount.IsPositive())
				sum = sum.Add(inst.Amount)
			}
			assert.True(t, sum.Equal(total), "total %s n=%d sum=%s", ts, n, sum)
		}
	}
}

func TestBuildSchedule_DueDatesStrictlyIncrease(t *testing.T) {
	start := mustDate(t, "2024-12-31")
	for _, f := range []core.Frequency{core.FrequencyMonthly, core.FrequencyBiweekly, core.FrequencyWeekly} {
		got, err := core.BuildSchedule(decimal.NewFromInt(5000), 24, start, f)
		require.NoError(t, err)
		prev := start
		for _, inst := range got {
			assert.True(t, inst.DueDate.After(prev), "%s installment %d", f, inst.Number)
			assert.Equal(t, f.PeriodDays(), int(inst.DueDate.Sub(prev).Hours()/24))
			prev = inst.DueDate
		}
	}
}

func TestBuildSchedule_Rejects(t *testing.T) {
	start := mustDate(t, "2025-01-15")
	cases := []struct {
		name  string
		total decimal.Decimal
		n     int
	}{
		{"zero installments", decimal.NewFromInt(100), 0},
		{"negative installments", decimal.NewFromInt(100), -2},
		{"zero total", decimal.Zero, 3},
		{"negative total", decimal.NewFromInt(-5), 3},
		{"too small to split", decimal.RequireFromString("0.02"), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := core.BuildSchedule(tc.total, tc.n, start, core.FrequencyMonthly)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation))
		})
	}
}
