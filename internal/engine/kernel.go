package engine

import (
	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// Engine runs deterministic pension projections. It holds no per-request
// state, so a single Engine is safe for concurrent use across requests.
type Engine struct {
	Logger Logger
}

// NewEngine creates a projection engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger. A nil logger restores the no-op default.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Project computes the full projection for a validated plan. It is
// deterministic and total: the same input always yields the same output and
// there is no failure path. Malformed input must be rejected by validation
// before reaching this point.
func (e *Engine) Project(input *domain.PlanInput) *domain.ProjectionResult {
	result := &domain.ProjectionResult{
		PolicyID: PolicyID,
		Periods:  make([]domain.PeriodSnapshot, 0, input.Horizon),
	}
	if input.Horizon == 0 {
		return result
	}

	strategy := strategyFor(input)
	feeRate := PeriodRate(input.AnnualFeeRate, input.PeriodsPerYear)
	floor := round(input.BalanceFloor)
	opening := round(input.StartingBalance)
	cumContrib := decimal.Zero
	cumWithdraw := decimal.Zero
	depleted := false

	contribInterval := 0
	if input.ContributionsPerYear > 0 {
		contribInterval = input.PeriodsPerYear / input.ContributionsPerYear
	}

	for i := 0; i < input.Horizon; i++ {
		if depleted && !input.AllowNegativeBalance {
			// No recovery once the floor is hit: later periods carry
			// the floor forward with no contributions or growth.
			result.Periods = append(result.Periods, domain.PeriodSnapshot{
				Period:                  i,
				OpeningBalance:          floor,
				ClosingBalance:          floor,
				CumulativeContributions: cumContrib,
				CumulativeWithdrawals:   cumWithdraw,
				Depleted:                true,
			})
			continue
		}

		yearIndex := i / input.PeriodsPerYear
		contribution := round(contributionFor(input, strategy, contribInterval, i))
		adjustment := decimal.Zero
		if adj, ok := input.Adjustments[i]; ok {
			adjustment = round(adj)
		}

		afterContrib := opening.Add(contribution).Add(adjustment)
		growth := round(afterContrib.Mul(PeriodRate(effectiveGrowthRate(input, i), input.PeriodsPerYear)))
		afterGrowth := afterContrib.Add(growth)
		fee := round(afterGrowth.Mul(feeRate))
		afterFee := afterGrowth.Sub(fee)

		withdrawal := decimal.Zero
		withdrawalShort := false
		if strategy != nil && i >= input.WithdrawalStartPeriod {
			desired := round(strategy.Desired(afterFee, i, yearIndex))
			if desired.IsNegative() {
				desired = decimal.Zero
			}
			if input.AllowNegativeBalance {
				withdrawal = desired
			} else {
				available := afterFee.Sub(floor)
				if available.IsNegative() {
					available = decimal.Zero
				}
				if desired.GreaterThan(available) {
					withdrawal = available
					withdrawalShort = true
				} else {
					withdrawal = desired
				}
			}
		}

		// Closing is derived from already-rounded components so every
		// row sums exactly and no second rounding happens.
		closing := afterFee.Sub(withdrawal)
		nowDepleted := false
		if !input.AllowNegativeBalance {
			if closing.LessThan(floor) {
				closing = floor
				nowDepleted = true
			}
			if withdrawalShort {
				nowDepleted = true
			}
		}

		cumContrib = cumContrib.Add(contribution)
		cumWithdraw = cumWithdraw.Add(withdrawal)

		result.Periods = append(result.Periods, domain.PeriodSnapshot{
			Period:                  i,
			OpeningBalance:          opening,
			Contribution:            contribution,
			Adjustment:              adjustment,
			Growth:                  growth,
			Fees:                    fee,
			Withdrawal:              withdrawal,
			ClosingBalance:          closing,
			CumulativeContributions: cumContrib,
			CumulativeWithdrawals:   cumWithdraw,
			Depleted:                nowDepleted,
		})

		if nowDepleted && !depleted {
			e.Logger.Debugf("plan depleted at period %d (floor %s)", i, floor.StringFixed(RoundingPlaces))
		}
		depleted = depleted || nowDepleted
		opening = closing
	}

	return result
}

// contributionFor returns the scheduled contribution for a period, zero when
// the period falls outside the contribution phase or between contribution
// dates. The contribution phase ends when the withdrawal phase begins.
func contributionFor(input *domain.PlanInput, strategy WithdrawalStrategy, interval, period int) decimal.Decimal {
	if interval == 0 {
		return decimal.Zero
	}
	if strategy != nil && period >= input.WithdrawalStartPeriod {
		return decimal.Zero
	}
	if period%interval != 0 {
		return decimal.Zero
	}
	return input.ContributionAmount
}

// effectiveGrowthRate resolves the annual growth rate for a period against
// the plan's growth schedule. Phases are sorted by validation; the last phase
// at or before the period wins.
func effectiveGrowthRate(input *domain.PlanInput, period int) decimal.Decimal {
	rate := input.AnnualGrowthRate
	for _, phase := range input.GrowthSchedule {
		if phase.FromPeriod > period {
			break
		}
		rate = phase.AnnualRate
	}
	return rate
}
