package engine

import (
	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// PolicyID names the canonical computation policy. Every conforming
// implementation of the kernel stamps its results with this identifier; the
// dispatcher rejects remote results carrying any other value.
//
// The policy fixes, in order:
//  1. opening balance = previous closing balance (period 0 opens at the
//     starting balance, rounded)
//  2. contribution and one-time adjustment applied
//  3. growth = balance * (annual growth rate / periods per year)
//  4. fee = post-growth balance * (annual fee rate / periods per year)
//  5. withdrawal per the plan's withdrawal policy
//  6. closing clamped to the balance floor; depletion is monotonic unless
//     negative balances are allowed
//  7. cumulative totals recorded
//
// Each monetary field is rounded exactly once per period, at recording time,
// half-to-even to RoundingPlaces decimal places. The closing balance is
// derived from the rounded components so a snapshot row always sums exactly.
const PolicyID = "pension-projection/v1"

// RoundingPlaces is the fixed decimal precision of recorded snapshot fields.
const RoundingPlaces = 2

// round applies the canonical rounding rule: half-to-even at RoundingPlaces.
func round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(RoundingPlaces)
}

// PeriodRate derives a per-period rate from an annual rate under the simple
// periodic convention fixed by the policy.
func PeriodRate(annual decimal.Decimal, periodsPerYear int) decimal.Decimal {
	return annual.Div(decimal.NewFromInt(int64(periodsPerYear)))
}

// EqualResults reports whether two projection results are identical under
// exact value comparison. This is the parity invariant between the remote and
// local execution paths: approximate equality is never good enough.
func EqualResults(a, b *domain.ProjectionResult) bool {
	if a.PolicyID != b.PolicyID || len(a.Periods) != len(b.Periods) {
		return false
	}
	for i := range a.Periods {
		if !equalSnapshots(&a.Periods[i], &b.Periods[i]) {
			return false
		}
	}
	return true
}

func equalSnapshots(a, b *domain.PeriodSnapshot) bool {
	return a.Period == b.Period &&
		a.Depleted == b.Depleted &&
		a.OpeningBalance.Equal(b.OpeningBalance) &&
		a.Contribution.Equal(b.Contribution) &&
		a.Adjustment.Equal(b.Adjustment) &&
		a.Growth.Equal(b.Growth) &&
		a.Fees.Equal(b.Fees) &&
		a.Withdrawal.Equal(b.Withdrawal) &&
		a.ClosingBalance.Equal(b.ClosingBalance) &&
		a.CumulativeContributions.Equal(b.CumulativeContributions) &&
		a.CumulativeWithdrawals.Equal(b.CumulativeWithdrawals)
}

// ValidResultShape checks that a projection result produced elsewhere has the
// shape the policy guarantees for the given input: matching policy id, one
// snapshot per horizon period, and balance continuity between adjacent
// periods. It does not recompute the projection.
func ValidResultShape(input *domain.PlanInput, result *domain.ProjectionResult) bool {
	if result.PolicyID != PolicyID {
		return false
	}
	if len(result.Periods) != input.Horizon {
		return false
	}
	for i := range result.Periods {
		if result.Periods[i].Period != i {
			return false
		}
		if i > 0 && !result.Periods[i].OpeningBalance.Equal(result.Periods[i-1].ClosingBalance) {
			return false
		}
	}
	return true
}
