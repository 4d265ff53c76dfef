package output

import (
	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string { return "$" + amount.StringFixed(2) }

// FormatPercentage formats a decimal rate (0.05) as a percentage (5.00%).
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// yearEndRows filters a projection down to one row per simulated year, plus
// the final period. Formatters that summarize long horizons share it.
func yearEndRows(report *Report) []domain.PeriodSnapshot {
	ppy := report.Input.PeriodsPerYear
	rows := make([]domain.PeriodSnapshot, 0, len(report.Result.Periods))
	for _, p := range report.Result.Periods {
		if ppy > 1 && (p.Period+1)%ppy != 0 && p.Period != len(report.Result.Periods)-1 {
			continue
		}
		rows = append(rows, p)
	}
	return rows
}
