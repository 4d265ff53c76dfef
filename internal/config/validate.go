package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/penplan/pension-planner/internal/domain"
)

// ValidationError reports a malformed PlanInput field. It names the offending
// field and the constraint violated, which is the only user-visible failure
// the projection flow produces.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid plan input: %s: %s", e.Field, e.Constraint)
}

func invalid(field, constraint string) error {
	return &ValidationError{Field: field, Constraint: constraint}
}

var (
	minusOne   = decimal.NewFromInt(-1)
	one        = decimal.NewFromInt(1)
	minusTenth = decimal.NewFromFloat(-0.10)
)

// ValidatePlan checks a PlanInput against the kernel's preconditions. The
// kernel is total only for inputs that pass this check; every entry point
// (CLI, dispatcher, server) validates before projecting.
func ValidatePlan(input *domain.PlanInput) error {
	if input.PeriodsPerYear < 1 {
		return invalid("periods_per_year", "must be at least 1")
	}
	if input.Horizon < 0 {
		return invalid("horizon", "cannot be negative")
	}
	if input.AnnualGrowthRate.LessThan(minusOne) {
		return invalid("annual_growth_rate", "cannot be less than -100%")
	}
	if input.AnnualFeeRate.LessThan(decimal.Zero) || input.AnnualFeeRate.GreaterThan(one) {
		return invalid("annual_fee_rate", "must be between 0 and 100%")
	}
	if input.AnnualInflationRate.LessThan(minusTenth) {
		return invalid("annual_inflation_rate", "cannot be less than -10% (extreme deflation)")
	}
	if input.ContributionAmount.LessThan(decimal.Zero) {
		return invalid("contribution_amount", "cannot be negative")
	}
	if input.ContributionsPerYear < 0 {
		return invalid("contributions_per_year", "cannot be negative")
	}
	if input.ContributionsPerYear > input.PeriodsPerYear {
		return invalid("contributions_per_year", "cannot exceed periods_per_year")
	}
	if input.ContributionsPerYear > 0 && input.PeriodsPerYear%input.ContributionsPerYear != 0 {
		return invalid("contributions_per_year", "must divide periods_per_year evenly (no partial-period contributions)")
	}

	switch input.WithdrawalPolicy {
	case "", domain.WithdrawalNone:
		// No withdrawal phase; start period and amounts are ignored.
	case domain.WithdrawalFixed:
		if input.WithdrawalAmount.LessThan(decimal.Zero) {
			return invalid("withdrawal_amount", "cannot be negative")
		}
		if err := validateWithdrawalWindow(input); err != nil {
			return err
		}
	case domain.WithdrawalRate:
		if input.WithdrawalAnnualRate.LessThan(decimal.Zero) || input.WithdrawalAnnualRate.GreaterThan(one) {
			return invalid("withdrawal_annual_rate", "must be between 0 and 100%")
		}
		if err := validateWithdrawalWindow(input); err != nil {
			return err
		}
	default:
		return invalid("withdrawal_policy", `must be "none", "fixed", or "rate"`)
	}

	lastFrom := -1
	for i, phase := range input.GrowthSchedule {
		if phase.FromPeriod < 0 {
			return invalid(fmt.Sprintf("growth_schedule[%d].from_period", i), "cannot be negative")
		}
		if phase.FromPeriod <= lastFrom {
			return invalid(fmt.Sprintf("growth_schedule[%d].from_period", i), "must be strictly increasing")
		}
		if phase.AnnualRate.LessThan(minusOne) {
			return invalid(fmt.Sprintf("growth_schedule[%d].annual_rate", i), "cannot be less than -100%")
		}
		lastFrom = phase.FromPeriod
	}

	for period := range input.Adjustments {
		if period < 0 {
			return invalid("adjustments", "period index cannot be negative")
		}
	}

	if !input.AllowNegativeBalance {
		if input.BalanceFloor.LessThan(decimal.Zero) {
			return invalid("balance_floor", "cannot be negative unless negative balances are allowed")
		}
		if input.StartingBalance.LessThan(decimal.Zero) {
			return invalid("starting_balance", "cannot be negative unless negative balances are allowed")
		}
		if input.StartingBalance.LessThan(input.BalanceFloor) {
			return invalid("starting_balance", "cannot be below balance_floor")
		}
	}

	return nil
}

func validateWithdrawalWindow(input *domain.PlanInput) error {
	if input.WithdrawalStartPeriod < 0 {
		return invalid("withdrawal_start_period", "cannot be negative")
	}
	if input.WithdrawalStartPeriod > input.Horizon {
		return invalid("withdrawal_start_period", "cannot exceed horizon")
	}
	return nil
}
