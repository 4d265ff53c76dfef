package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/penplan/pension-planner/internal/config"
	"github.com/penplan/pension-planner/internal/dispatch"
	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
	"github.com/penplan/pension-planner/internal/output"
	"github.com/penplan/pension-planner/internal/server"
	"github.com/penplan/pension-planner/internal/store"
)

// stdLogger adapts the standard library logger to the engine Logger
// interface.
type stdLogger struct {
	verbose bool
}

func (l stdLogger) Debugf(format string, args ...any) {
	if l.verbose {
		log.Printf("DEBUG "+format, args...)
	}
}
func (l stdLogger) Infof(format string, args ...any)  { log.Printf("INFO "+format, args...) }
func (l stdLogger) Warnf(format string, args ...any)  { log.Printf("WARN "+format, args...) }
func (l stdLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }

func main() {
	var (
		verbose      bool
		scenarioName string
		formatName   string
		saveToFile   bool
		remoteURL    string
		timeout      time.Duration
	)

	root := &cobra.Command{
		Use:   "pension-planner",
		Short: "Deterministic pension projection tool with remote/local dual execution",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	projectCmd := &cobra.Command{
		Use:   "project <plan-file>",
		Short: "Project a scenario from a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := stdLogger{verbose: verbose}

			file, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			spec, err := pickScenario(file, scenarioName)
			if err != nil {
				return err
			}

			eng := engine.NewEngine()
			eng.SetLogger(logger)
			var remote dispatch.RemoteClient
			if remoteURL != "" {
				remote = dispatch.NewHTTPComputeClient(remoteURL)
			}
			dispatcher := dispatch.NewDispatcher(remote, eng, timeout)
			dispatcher.SetLogger(logger)

			outcome, err := dispatcher.Compute(cmd.Context(), &spec.Plan)
			if err != nil {
				return err
			}

			formatter := output.GetFormatterByName(formatName)
			if formatter == nil {
				return fmt.Errorf("unknown format %q (available: %v)", formatName, output.FormatterNames())
			}
			report := &output.Report{
				Name:    spec.Name,
				Input:   spec.Plan,
				Result:  outcome.Result,
				Summary: engine.Summarize(spec.Name, &spec.Plan, &outcome.Result),
				Source:  outcome.Source,
			}
			if saveToFile || formatName == "pdf" || formatName == "xlsx" {
				filename, err := output.WriteFormatted(formatter, report)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filename)
				return nil
			}
			data, err := formatter.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	projectCmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "scenario name (defaults to the first in the file)")
	projectCmd.Flags().StringVarP(&formatName, "format", "f", "console", "output format (console, csv, json, html, pdf, xlsx)")
	projectCmd.Flags().BoolVar(&saveToFile, "save", false, "write output to a timestamped file")
	projectCmd.Flags().StringVar(&remoteURL, "remote", "", "remote compute endpoint base URL (falls back to local on failure)")
	projectCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "remote compute timeout")

	compareCmd := &cobra.Command{
		Use:   "compare <plan-file>",
		Short: "Compare all scenarios in a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			eng := engine.NewEngine()
			eng.SetLogger(stdLogger{verbose: verbose})
			comparison := eng.CompareScenarios(scenarioRecords(file))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-28s %16s %16s %16s %10s\n",
				"Scenario", "Final Balance", "Contributions", "Withdrawals", "Depleted")
			for _, s := range comparison.Scenarios {
				depleted := "-"
				if s.Depleted {
					depleted = fmt.Sprintf("p%d", s.DepletedAtPeriod)
				}
				fmt.Fprintf(out, "%-28s %16s %16s %16s %10s\n",
					s.Name,
					s.FinalBalance.StringFixed(2),
					s.TotalContributions.StringFixed(2),
					s.TotalWithdrawals.StringFixed(2),
					depleted)
			}
			fmt.Fprintf(out, "\nBest final balance: %s\n", comparison.BestFinalBalance)
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the authoritative compute endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := stdLogger{verbose: verbose}

			var cfg config.ServerConfig
			if err := config.ParseEnv(&cfg); err != nil {
				return err
			}

			scenarios, closeStore, err := openStore(cmd.Context(), &cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			eng := engine.NewEngine()
			eng.SetLogger(logger)
			handler := server.New(eng, scenarios, logger)

			logger.Infof("compute server listening on %s", cfg.ListenAddr)
			return http.ListenAndServe(cfg.ListenAddr, handler)
		},
	}

	exampleCmd := &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example plan file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(config.ExamplePlanFile())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}

	root.AddCommand(projectCmd, compareCmd, serveCmd, exampleCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func pickScenario(file *config.PlanFile, name string) (*config.ScenarioSpec, error) {
	if name == "" {
		return &file.Scenarios[0], nil
	}
	for i := range file.Scenarios {
		if file.Scenarios[i].Name == name {
			return &file.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("scenario %q not found in plan file", name)
}

func scenarioRecords(file *config.PlanFile) []domain.ScenarioRecord {
	records := make([]domain.ScenarioRecord, 0, len(file.Scenarios))
	for _, spec := range file.Scenarios {
		records = append(records, domain.ScenarioRecord{Name: spec.Name, Plan: spec.Plan})
	}
	return records
}

// openStore selects the scenario store from configuration: Postgres when a
// database URL is set, SQLite when a path is set, in-memory otherwise. The
// SQLite path is wrapped in fallback semantics so a missing local store means
// "no saved scenarios" rather than a startup failure.
func openStore(ctx context.Context, cfg *config.ServerConfig, logger stdLogger) (store.ScenarioStore, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case cfg.SQLitePath != "":
		lite, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Warnf("local scenario store unavailable (%v), continuing without persistence", err)
			return store.NewFallbackStore(store.Unavailable{}, logger), func() {}, nil
		}
		return lite, func() { _ = lite.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
