package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledInstallment is one computed row of a financing schedule, before persistence.
type ScheduledInstallment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// BuildSchedule splits total into n installments spaced by freq starting one period after start.
//
// Every installment but the last gets total/n truncated to cents; the last absorbs the
// remainder so the amounts always sum to total exactly. Due dates are fixed day offsets
// (30/15/7), not calendar months.
func BuildSchedule(total decimal.Decimal, n int, start time.Time, freq Frequency) ([]ScheduledInstallment, error) {
	if n <= 0 {
		return nil, validationf("num_installments must be greater than 0")
	}
	if !total.IsPositive() {
		return nil, validationf("total_amount must be greater than 0")
	}

	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).Truncate(2)
	if !base.IsPositive() {
		return nil, validationf("total_amount %s is too small to split into %d installments", total.StringFixed(2), n)
	}
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	days := freq.PeriodDays()
	out := make([]ScheduledInstallment, n)
	for i := 1; i <= n; i++ {
		amount := base
		if i == n {
			amount = last
		}
		out[i-1] = ScheduledInstallment{
			Number:  i,
			Amount:  amount,
			DueDate: start.AddDate(0, 0, i*days),
		}
	}
	return out, nil
}
