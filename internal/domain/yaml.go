package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// planInputAlias mirrors PlanInput with string-typed decimal fields, since
// yaml.v3 cannot decode scalars into decimal.Decimal directly.
type planInputAlias struct {
	StartingBalance       string         `yaml:"starting_balance,omitempty"`
	PeriodsPerYear        int            `yaml:"periods_per_year"`
	Horizon               int            `yaml:"horizon"`
	ContributionAmount    string         `yaml:"contribution_amount,omitempty"`
	ContributionsPerYear  int            `yaml:"contributions_per_year,omitempty"`
	AnnualGrowthRate      string         `yaml:"annual_growth_rate,omitempty"`
	GrowthSchedule        []growthAlias  `yaml:"growth_schedule,omitempty"`
	AnnualFeeRate         string         `yaml:"annual_fee_rate,omitempty"`
	AnnualInflationRate   string         `yaml:"annual_inflation_rate,omitempty"`
	WithdrawalPolicy      string         `yaml:"withdrawal_policy,omitempty"`
	WithdrawalStartPeriod int            `yaml:"withdrawal_start_period,omitempty"`
	WithdrawalAmount      string         `yaml:"withdrawal_amount,omitempty"`
	WithdrawalAnnualRate  string         `yaml:"withdrawal_annual_rate,omitempty"`
	IndexWithdrawals      bool           `yaml:"index_withdrawals,omitempty"`
	Adjustments           map[int]string `yaml:"adjustments,omitempty"`
	AllowNegativeBalance  bool           `yaml:"allow_negative_balance,omitempty"`
	BalanceFloor          string         `yaml:"balance_floor,omitempty"`
}

type growthAlias struct {
	FromPeriod int    `yaml:"from_period"`
	AnnualRate string `yaml:"annual_rate"`
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// UnmarshalYAML implements custom YAML unmarshaling for PlanInput.
func (p *PlanInput) UnmarshalYAML(value *yaml.Node) error {
	var aux planInputAlias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	var err error
	if p.StartingBalance, err = parseDecimal("starting_balance", aux.StartingBalance); err != nil {
		return err
	}
	if p.ContributionAmount, err = parseDecimal("contribution_amount", aux.ContributionAmount); err != nil {
		return err
	}
	if p.AnnualGrowthRate, err = parseDecimal("annual_growth_rate", aux.AnnualGrowthRate); err != nil {
		return err
	}
	if p.AnnualFeeRate, err = parseDecimal("annual_fee_rate", aux.AnnualFeeRate); err != nil {
		return err
	}
	if p.AnnualInflationRate, err = parseDecimal("annual_inflation_rate", aux.AnnualInflationRate); err != nil {
		return err
	}
	if p.WithdrawalAmount, err = parseDecimal("withdrawal_amount", aux.WithdrawalAmount); err != nil {
		return err
	}
	if p.WithdrawalAnnualRate, err = parseDecimal("withdrawal_annual_rate", aux.WithdrawalAnnualRate); err != nil {
		return err
	}
	if p.BalanceFloor, err = parseDecimal("balance_floor", aux.BalanceFloor); err != nil {
		return err
	}

	if len(aux.GrowthSchedule) > 0 {
		p.GrowthSchedule = make([]GrowthPhase, len(aux.GrowthSchedule))
		for i, g := range aux.GrowthSchedule {
			rate, err := parseDecimal(fmt.Sprintf("growth_schedule[%d].annual_rate", i), g.AnnualRate)
			if err != nil {
				return err
			}
			p.GrowthSchedule[i] = GrowthPhase{FromPeriod: g.FromPeriod, AnnualRate: rate}
		}
	}
	if len(aux.Adjustments) > 0 {
		p.Adjustments = make(map[int]decimal.Decimal, len(aux.Adjustments))
		for period, raw := range aux.Adjustments {
			adj, err := parseDecimal(fmt.Sprintf("adjustments[%d]", period), raw)
			if err != nil {
				return err
			}
			p.Adjustments[period] = adj
		}
	}

	p.PeriodsPerYear = aux.PeriodsPerYear
	p.Horizon = aux.Horizon
	p.ContributionsPerYear = aux.ContributionsPerYear
	p.WithdrawalPolicy = WithdrawalPolicy(aux.WithdrawalPolicy)
	p.WithdrawalStartPeriod = aux.WithdrawalStartPeriod
	p.IndexWithdrawals = aux.IndexWithdrawals
	p.AllowNegativeBalance = aux.AllowNegativeBalance
	return nil
}

// MarshalYAML implements custom YAML marshaling for PlanInput, emitting
// decimal fields as strings so they round-trip exactly.
func (p PlanInput) MarshalYAML() (any, error) {
	aux := planInputAlias{
		StartingBalance:       p.StartingBalance.String(),
		PeriodsPerYear:        p.PeriodsPerYear,
		Horizon:               p.Horizon,
		ContributionAmount:    p.ContributionAmount.String(),
		ContributionsPerYear:  p.ContributionsPerYear,
		AnnualGrowthRate:      p.AnnualGrowthRate.String(),
		AnnualFeeRate:         p.AnnualFeeRate.String(),
		AnnualInflationRate:   p.AnnualInflationRate.String(),
		WithdrawalPolicy:      string(p.WithdrawalPolicy),
		WithdrawalStartPeriod: p.WithdrawalStartPeriod,
		WithdrawalAmount:      p.WithdrawalAmount.String(),
		WithdrawalAnnualRate:  p.WithdrawalAnnualRate.String(),
		IndexWithdrawals:      p.IndexWithdrawals,
		AllowNegativeBalance:  p.AllowNegativeBalance,
		BalanceFloor:          p.BalanceFloor.String(),
	}
	for _, g := range p.GrowthSchedule {
		aux.GrowthSchedule = append(aux.GrowthSchedule, growthAlias{
			FromPeriod: g.FromPeriod,
			AnnualRate: g.AnnualRate.String(),
		})
	}
	if len(p.Adjustments) > 0 {
		aux.Adjustments = make(map[int]string, len(p.Adjustments))
		for period, adj := range p.Adjustments {
			aux.Adjustments[period] = adj.String()
		}
	}
	return aux, nil
}
