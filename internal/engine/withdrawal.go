package engine

import (
	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// WithdrawalStrategy defines how the desired withdrawal for a period is
// derived. The kernel clamps the desired amount to the available balance; the
// strategy only states intent.
type WithdrawalStrategy interface {
	// Desired returns the unrounded withdrawal target for the period.
	// balance is the post-growth, post-fee balance the withdrawal draws
	// from; yearIndex is period / periods-per-year.
	Desired(balance decimal.Decimal, period, yearIndex int) decimal.Decimal
	Name() string
}

// FixedAmountWithdrawal withdraws a constant per-period amount, optionally
// stepped up by the inflation rate once per simulated year.
type FixedAmountWithdrawal struct {
	Amount        decimal.Decimal
	InflationRate decimal.Decimal
	Indexed       bool
}

// NewFixedAmountWithdrawal creates a fixed-amount strategy.
func NewFixedAmountWithdrawal(amount, inflationRate decimal.Decimal, indexed bool) *FixedAmountWithdrawal {
	return &FixedAmountWithdrawal{Amount: amount, InflationRate: inflationRate, Indexed: indexed}
}

// Desired returns the fixed amount, inflation-indexed when configured.
func (f *FixedAmountWithdrawal) Desired(_ decimal.Decimal, _ int, yearIndex int) decimal.Decimal {
	if !f.Indexed || yearIndex == 0 {
		return f.Amount
	}
	factor := decimal.NewFromInt(1).Add(f.InflationRate).Pow(decimal.NewFromInt(int64(yearIndex)))
	return f.Amount.Mul(factor)
}

// Name returns the policy name of this strategy.
func (f *FixedAmountWithdrawal) Name() string {
	return string(domain.WithdrawalFixed)
}

// RateOfBalanceWithdrawal withdraws an annual percentage of the current
// balance, prorated to the period under the canonical period-rate convention.
type RateOfBalanceWithdrawal struct {
	AnnualRate     decimal.Decimal
	PeriodsPerYear int
}

// NewRateOfBalanceWithdrawal creates a rate-of-balance strategy.
func NewRateOfBalanceWithdrawal(annualRate decimal.Decimal, periodsPerYear int) *RateOfBalanceWithdrawal {
	return &RateOfBalanceWithdrawal{AnnualRate: annualRate, PeriodsPerYear: periodsPerYear}
}

// Desired returns the prorated percentage of the current balance.
func (r *RateOfBalanceWithdrawal) Desired(balance decimal.Decimal, _ int, _ int) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return balance.Mul(PeriodRate(r.AnnualRate, r.PeriodsPerYear))
}

// Name returns the policy name of this strategy.
func (r *RateOfBalanceWithdrawal) Name() string {
	return string(domain.WithdrawalRate)
}

// strategyFor builds the withdrawal strategy declared by the plan, or nil
// when the plan has no withdrawal phase.
func strategyFor(input *domain.PlanInput) WithdrawalStrategy {
	switch input.WithdrawalPolicy {
	case domain.WithdrawalFixed:
		return NewFixedAmountWithdrawal(input.WithdrawalAmount, input.AnnualInflationRate, input.IndexWithdrawals)
	case domain.WithdrawalRate:
		return NewRateOfBalanceWithdrawal(input.WithdrawalAnnualRate, input.PeriodsPerYear)
	default:
		return nil
	}
}
