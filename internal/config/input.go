package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/penplan/pension-planner/internal/domain"
)

// PlanFile is the on-disk YAML shape for one or more named scenarios.
type PlanFile struct {
	Scenarios []ScenarioSpec `yaml:"scenarios"`
}

// ScenarioSpec is a named plan inside a plan file.
type ScenarioSpec struct {
	Name string           `yaml:"name"`
	Plan domain.PlanInput `yaml:"plan"`
}

// InputParser handles parsing of plan files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads and validates a plan file.
func (ip *InputParser) LoadFromFile(filename string) (*PlanFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var file PlanFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidatePlanFile(&file); err != nil {
		return nil, fmt.Errorf("plan file validation failed: %w", err)
	}

	return &file, nil
}

// ValidatePlanFile validates every scenario in a loaded plan file.
func (ip *InputParser) ValidatePlanFile(file *PlanFile) error {
	if len(file.Scenarios) == 0 {
		return fmt.Errorf("no scenarios provided")
	}
	seen := make(map[string]bool, len(file.Scenarios))
	for i, spec := range file.Scenarios {
		if spec.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("scenario %d: duplicate name %q", i, spec.Name)
		}
		seen[spec.Name] = true
		if err := ValidatePlan(&spec.Plan); err != nil {
			return fmt.Errorf("scenario %q: %w", spec.Name, err)
		}
	}
	return nil
}

// ExamplePlanFile returns a plan file with two contrasting scenarios, used by
// the CLI to bootstrap a starting configuration.
func ExamplePlanFile() *PlanFile {
	return &PlanFile{
		Scenarios: []ScenarioSpec{
			{
				Name: "Steady Saver",
				Plan: domain.PlanInput{
					StartingBalance:      decimal.NewFromInt(10000),
					PeriodsPerYear:       12,
					Horizon:              360,
					ContributionAmount:   decimal.NewFromInt(500),
					ContributionsPerYear: 12,
					AnnualGrowthRate:     decimal.NewFromFloat(0.05),
					AnnualFeeRate:        decimal.NewFromFloat(0.01),
					AnnualInflationRate:  decimal.NewFromFloat(0.025),
					WithdrawalPolicy:     domain.WithdrawalNone,
				},
			},
			{
				Name: "Drawdown at 25 Years",
				Plan: domain.PlanInput{
					StartingBalance:       decimal.NewFromInt(250000),
					PeriodsPerYear:        12,
					Horizon:               480,
					ContributionAmount:    decimal.NewFromInt(800),
					ContributionsPerYear:  12,
					AnnualGrowthRate:      decimal.NewFromFloat(0.045),
					AnnualFeeRate:         decimal.NewFromFloat(0.0075),
					AnnualInflationRate:   decimal.NewFromFloat(0.025),
					WithdrawalPolicy:      domain.WithdrawalFixed,
					WithdrawalStartPeriod: 300,
					WithdrawalAmount:      decimal.NewFromInt(2500),
					IndexWithdrawals:      true,
				},
			},
		},
	}
}
