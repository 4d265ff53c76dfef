package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalPolicy selects how the withdrawal amount for a period is derived.
type WithdrawalPolicy string

const (
	// WithdrawalNone disables the withdrawal phase entirely.
	WithdrawalNone WithdrawalPolicy = "none"
	// WithdrawalFixed withdraws a fixed per-period amount, optionally
	// indexed to inflation once per year.
	WithdrawalFixed WithdrawalPolicy = "fixed"
	// WithdrawalRate withdraws an annual percentage of the current balance,
	// prorated to the period.
	WithdrawalRate WithdrawalPolicy = "rate"
)

// GrowthPhase overrides the annual growth rate from a given period onward.
// Phases are sorted by FromPeriod; the last phase at or before the current
// period wins.
type GrowthPhase struct {
	FromPeriod int             `json:"from_period" yaml:"from_period"`
	AnnualRate decimal.Decimal `json:"annual_rate" yaml:"annual_rate"`
}

// PlanInput is the immutable description of a pension plan's assumptions and
// schedule. Callers construct a fresh value per projection request and never
// mutate it afterwards.
type PlanInput struct {
	// StartingBalance is the balance at the opening of period 0.
	StartingBalance decimal.Decimal `json:"starting_balance" yaml:"starting_balance"`

	// PeriodsPerYear fixes the compounding convention (12 = monthly).
	PeriodsPerYear int `json:"periods_per_year" yaml:"periods_per_year"`

	// Horizon is the number of simulated periods. Zero is valid and yields
	// an empty projection.
	Horizon int `json:"horizon" yaml:"horizon"`

	// ContributionAmount is added per contributing period during the
	// accumulation phase.
	ContributionAmount decimal.Decimal `json:"contribution_amount" yaml:"contribution_amount"`

	// ContributionsPerYear spaces contributions across the year. It must
	// divide PeriodsPerYear evenly; zero means no periodic contributions.
	ContributionsPerYear int `json:"contributions_per_year" yaml:"contributions_per_year"`

	// AnnualGrowthRate is the baseline growth assumption (0.05 = 5%).
	AnnualGrowthRate decimal.Decimal `json:"annual_growth_rate" yaml:"annual_growth_rate"`

	// GrowthSchedule optionally overrides AnnualGrowthRate per phase.
	GrowthSchedule []GrowthPhase `json:"growth_schedule,omitempty" yaml:"growth_schedule,omitempty"`

	// AnnualFeeRate is deducted from the balance after growth.
	AnnualFeeRate decimal.Decimal `json:"annual_fee_rate" yaml:"annual_fee_rate"`

	// AnnualInflationRate indexes fixed withdrawals when
	// IndexWithdrawals is set and discounts real-value summary figures.
	AnnualInflationRate decimal.Decimal `json:"annual_inflation_rate" yaml:"annual_inflation_rate"`

	// WithdrawalPolicy selects the withdrawal derivation; WithdrawalNone
	// when the plan has no decumulation phase.
	WithdrawalPolicy WithdrawalPolicy `json:"withdrawal_policy" yaml:"withdrawal_policy"`

	// WithdrawalStartPeriod is the first period a withdrawal applies.
	WithdrawalStartPeriod int `json:"withdrawal_start_period" yaml:"withdrawal_start_period"`

	// WithdrawalAmount is the per-period amount for WithdrawalFixed.
	WithdrawalAmount decimal.Decimal `json:"withdrawal_amount" yaml:"withdrawal_amount"`

	// WithdrawalAnnualRate is the annual rate for WithdrawalRate.
	WithdrawalAnnualRate decimal.Decimal `json:"withdrawal_annual_rate" yaml:"withdrawal_annual_rate"`

	// IndexWithdrawals steps fixed withdrawals up by the inflation rate
	// once per simulated year.
	IndexWithdrawals bool `json:"index_withdrawals" yaml:"index_withdrawals"`

	// Adjustments holds one-time balance adjustments keyed by period index,
	// applied with the contribution step. Negative values are allowed.
	Adjustments map[int]decimal.Decimal `json:"adjustments,omitempty" yaml:"adjustments,omitempty"`

	// AllowNegativeBalance carries the balance below the floor instead of
	// clamping and marking depletion.
	AllowNegativeBalance bool `json:"allow_negative_balance" yaml:"allow_negative_balance"`

	// BalanceFloor is the clamping floor; zero unless set.
	BalanceFloor decimal.Decimal `json:"balance_floor" yaml:"balance_floor"`
}

// PeriodSnapshot is one period of a projection. All monetary fields are
// rounded once, at recording time, under the canonical rounding rule.
type PeriodSnapshot struct {
	Period                  int             `json:"period"`
	OpeningBalance          decimal.Decimal `json:"opening_balance"`
	Contribution            decimal.Decimal `json:"contribution"`
	Adjustment              decimal.Decimal `json:"adjustment"`
	Growth                  decimal.Decimal `json:"growth"`
	Fees                    decimal.Decimal `json:"fees"`
	Withdrawal              decimal.Decimal `json:"withdrawal"`
	ClosingBalance          decimal.Decimal `json:"closing_balance"`
	CumulativeContributions decimal.Decimal `json:"cumulative_contributions"`
	CumulativeWithdrawals   decimal.Decimal `json:"cumulative_withdrawals"`
	Depleted                bool            `json:"depleted"`
}

// ProjectionResult is the ordered per-period output of a projection run.
type ProjectionResult struct {
	// PolicyID names the canonical computation policy the producer
	// followed. Both execution paths must report the same value.
	PolicyID string           `json:"policy_id"`
	Periods  []PeriodSnapshot `json:"periods"`
}

// FinalBalance returns the closing balance of the last period, or zero for an
// empty projection.
func (pr *ProjectionResult) FinalBalance() decimal.Decimal {
	if len(pr.Periods) == 0 {
		return decimal.Zero
	}
	return pr.Periods[len(pr.Periods)-1].ClosingBalance
}

// DepletedAt returns the first depleted period index and true, or 0 and false
// when the plan never depletes.
func (pr *ProjectionResult) DepletedAt() (int, bool) {
	for _, p := range pr.Periods {
		if p.Depleted {
			return p.Period, true
		}
	}
	return 0, false
}

// ExecutionSource identifies which execution path produced an outcome.
type ExecutionSource string

const (
	SourceRemote ExecutionSource = "remote"
	SourceLocal  ExecutionSource = "local"
)

// ExecutionOutcome wraps a ProjectionResult with provenance. It has no
// identity beyond the request it answers and is recreated per request.
type ExecutionOutcome struct {
	Result  ProjectionResult `json:"result"`
	Source  ExecutionSource  `json:"source"`
	Latency time.Duration    `json:"latency"`
	Cached  bool             `json:"cached"`
}

// ScenarioRecord is a named PlanInput with persistence metadata. The engine
// never mutates a record; it only consumes the embedded PlanInput.
type ScenarioRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      PlanInput `json:"plan"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScenarioSummary condenses a projection for side-by-side comparison.
type ScenarioSummary struct {
	Name                string          `json:"name"`
	FinalBalance        decimal.Decimal `json:"final_balance"`
	RealFinalBalance    decimal.Decimal `json:"real_final_balance"`
	TotalContributions  decimal.Decimal `json:"total_contributions"`
	TotalWithdrawals    decimal.Decimal `json:"total_withdrawals"`
	TotalGrowth         decimal.Decimal `json:"total_growth"`
	TotalFees           decimal.Decimal `json:"total_fees"`
	DepletedAtPeriod    int             `json:"depleted_at_period"`
	Depleted            bool            `json:"depleted"`
	Periods             int             `json:"periods"`
	PeakBalance         decimal.Decimal `json:"peak_balance"`
	PeakBalancePeriod   int             `json:"peak_balance_period"`
}

// ScenarioComparison holds summaries for every compared scenario plus the name
// of the one with the highest final balance.
type ScenarioComparison struct {
	Scenarios        []ScenarioSummary `json:"scenarios"`
	BestFinalBalance string            `json:"best_final_balance"`
}
