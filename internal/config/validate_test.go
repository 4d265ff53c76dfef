package config

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penplan/pension-planner/internal/domain"
)

func validPlan() domain.PlanInput {
	return domain.PlanInput{
		StartingBalance:       decimal.NewFromInt(10000),
		PeriodsPerYear:        12,
		Horizon:               120,
		ContributionAmount:    decimal.NewFromInt(200),
		ContributionsPerYear:  12,
		AnnualGrowthRate:      decimal.NewFromFloat(0.05),
		AnnualFeeRate:         decimal.NewFromFloat(0.01),
		AnnualInflationRate:   decimal.NewFromFloat(0.025),
		WithdrawalPolicy:      domain.WithdrawalFixed,
		WithdrawalStartPeriod: 60,
		WithdrawalAmount:      decimal.NewFromInt(500),
	}
}

func TestValidatePlanAcceptsValidInput(t *testing.T) {
	plan := validPlan()
	assert.NoError(t, ValidatePlan(&plan))

	// Zero horizon is explicitly valid.
	plan = validPlan()
	plan.Horizon = 0
	plan.WithdrawalStartPeriod = 0
	assert.NoError(t, ValidatePlan(&plan))

	// Empty withdrawal policy means no withdrawal phase.
	plan = validPlan()
	plan.WithdrawalPolicy = ""
	assert.NoError(t, ValidatePlan(&plan))

	// A negative starting balance is fine once negative carry is on.
	plan = validPlan()
	plan.StartingBalance = decimal.NewFromInt(-500)
	plan.AllowNegativeBalance = true
	assert.NoError(t, ValidatePlan(&plan))
}

func TestValidatePlanRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.PlanInput)
		wantField string
	}{
		{
			name:      "zero periods per year",
			mutate:    func(p *domain.PlanInput) { p.PeriodsPerYear = 0 },
			wantField: "periods_per_year",
		},
		{
			name:      "negative horizon",
			mutate:    func(p *domain.PlanInput) { p.Horizon = -1 },
			wantField: "horizon",
		},
		{
			name:      "growth below -100%",
			mutate:    func(p *domain.PlanInput) { p.AnnualGrowthRate = decimal.NewFromFloat(-1.5) },
			wantField: "annual_growth_rate",
		},
		{
			name:      "negative fee",
			mutate:    func(p *domain.PlanInput) { p.AnnualFeeRate = decimal.NewFromFloat(-0.01) },
			wantField: "annual_fee_rate",
		},
		{
			name:      "fee above 100%",
			mutate:    func(p *domain.PlanInput) { p.AnnualFeeRate = decimal.NewFromFloat(1.5) },
			wantField: "annual_fee_rate",
		},
		{
			name:      "extreme deflation",
			mutate:    func(p *domain.PlanInput) { p.AnnualInflationRate = decimal.NewFromFloat(-0.5) },
			wantField: "annual_inflation_rate",
		},
		{
			name:      "negative contribution",
			mutate:    func(p *domain.PlanInput) { p.ContributionAmount = decimal.NewFromInt(-10) },
			wantField: "contribution_amount",
		},
		{
			name:      "fractional contribution spacing",
			mutate:    func(p *domain.PlanInput) { p.ContributionsPerYear = 5 },
			wantField: "contributions_per_year",
		},
		{
			name:      "contributions above period count",
			mutate:    func(p *domain.PlanInput) { p.ContributionsPerYear = 24 },
			wantField: "contributions_per_year",
		},
		{
			name:      "unknown withdrawal policy",
			mutate:    func(p *domain.PlanInput) { p.WithdrawalPolicy = "bogus" },
			wantField: "withdrawal_policy",
		},
		{
			name:      "negative withdrawal amount",
			mutate:    func(p *domain.PlanInput) { p.WithdrawalAmount = decimal.NewFromInt(-1) },
			wantField: "withdrawal_amount",
		},
		{
			name: "withdrawal rate above 100%",
			mutate: func(p *domain.PlanInput) {
				p.WithdrawalPolicy = domain.WithdrawalRate
				p.WithdrawalAnnualRate = decimal.NewFromFloat(2)
			},
			wantField: "withdrawal_annual_rate",
		},
		{
			name:      "withdrawal start beyond horizon",
			mutate:    func(p *domain.PlanInput) { p.WithdrawalStartPeriod = 121 },
			wantField: "withdrawal_start_period",
		},
		{
			name:      "negative withdrawal start",
			mutate:    func(p *domain.PlanInput) { p.WithdrawalStartPeriod = -1 },
			wantField: "withdrawal_start_period",
		},
		{
			name: "unsorted growth schedule",
			mutate: func(p *domain.PlanInput) {
				p.GrowthSchedule = []domain.GrowthPhase{
					{FromPeriod: 10, AnnualRate: decimal.NewFromFloat(0.04)},
					{FromPeriod: 5, AnnualRate: decimal.NewFromFloat(0.03)},
				}
			},
			wantField: "growth_schedule[1].from_period",
		},
		{
			name: "negative adjustment period",
			mutate: func(p *domain.PlanInput) {
				p.Adjustments = map[int]decimal.Decimal{-3: decimal.NewFromInt(100)}
			},
			wantField: "adjustments",
		},
		{
			name:      "negative floor without negative carry",
			mutate:    func(p *domain.PlanInput) { p.BalanceFloor = decimal.NewFromInt(-100) },
			wantField: "balance_floor",
		},
		{
			name:      "negative starting balance without negative carry",
			mutate:    func(p *domain.PlanInput) { p.StartingBalance = decimal.NewFromInt(-500) },
			wantField: "starting_balance",
		},
		{
			// A floor above the starting balance would make period 0 clamp
			// the balance upward, inventing money.
			name:      "starting balance below floor",
			mutate:    func(p *domain.PlanInput) { p.BalanceFloor = decimal.NewFromInt(20000) },
			wantField: "starting_balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			tt.mutate(&plan)

			err := ValidatePlan(&plan)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.NotEmpty(t, verr.Constraint)
		})
	}
}
