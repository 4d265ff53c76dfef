package engine

import (
	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// Summarize condenses a projection into the headline figures used for
// scenario comparison. The real final balance discounts the nominal final
// balance by the plan's inflation rate over the simulated years.
func Summarize(name string, input *domain.PlanInput, result *domain.ProjectionResult) domain.ScenarioSummary {
	summary := domain.ScenarioSummary{
		Name:    name,
		Periods: len(result.Periods),
	}
	if len(result.Periods) == 0 {
		return summary
	}

	last := result.Periods[len(result.Periods)-1]
	summary.FinalBalance = last.ClosingBalance
	summary.TotalContributions = last.CumulativeContributions
	summary.TotalWithdrawals = last.CumulativeWithdrawals

	totalGrowth := decimal.Zero
	totalFees := decimal.Zero
	peak := result.Periods[0].ClosingBalance
	peakPeriod := 0
	for _, p := range result.Periods {
		totalGrowth = totalGrowth.Add(p.Growth)
		totalFees = totalFees.Add(p.Fees)
		if p.ClosingBalance.GreaterThan(peak) {
			peak = p.ClosingBalance
			peakPeriod = p.Period
		}
	}
	summary.TotalGrowth = totalGrowth
	summary.TotalFees = totalFees
	summary.PeakBalance = peak
	summary.PeakBalancePeriod = peakPeriod

	if at, ok := result.DepletedAt(); ok {
		summary.Depleted = true
		summary.DepletedAtPeriod = at
	}

	years := len(result.Periods) / input.PeriodsPerYear
	if years > 0 && !input.AnnualInflationRate.IsZero() {
		discount := decimal.NewFromInt(1).Add(input.AnnualInflationRate).Pow(decimal.NewFromInt(int64(years)))
		summary.RealFinalBalance = round(summary.FinalBalance.Div(discount))
	} else {
		summary.RealFinalBalance = summary.FinalBalance
	}

	return summary
}

// CompareScenarios projects every record and returns a side-by-side
// comparison, naming the scenario with the highest nominal final balance.
func (e *Engine) CompareScenarios(records []domain.ScenarioRecord) *domain.ScenarioComparison {
	comparison := &domain.ScenarioComparison{
		Scenarios: make([]domain.ScenarioSummary, 0, len(records)),
	}
	best := decimal.Zero
	for i, rec := range records {
		result := e.Project(&rec.Plan)
		summary := Summarize(rec.Name, &rec.Plan, result)
		comparison.Scenarios = append(comparison.Scenarios, summary)
		if i == 0 || summary.FinalBalance.GreaterThan(best) {
			best = summary.FinalBalance
			comparison.BestFinalBalance = rec.Name
		}
	}
	return comparison
}
