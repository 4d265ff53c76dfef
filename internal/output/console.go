package output

import (
	"bytes"
	"fmt"
)

// ConsoleFormatter renders a projection summary plus a yearly balance table
// for terminal display.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}

	fmt.Fprintf(buf, "Projection: %s (computed %s)\n", report.Name, report.Source)
	fmt.Fprintf(buf, "%s\n\n", divider(len(report.Name)+12))

	s := report.Summary
	fmt.Fprintf(buf, "Final balance:        %s\n", FormatCurrency(s.FinalBalance))
	fmt.Fprintf(buf, "Real final balance:   %s\n", FormatCurrency(s.RealFinalBalance))
	fmt.Fprintf(buf, "Total contributions:  %s\n", FormatCurrency(s.TotalContributions))
	fmt.Fprintf(buf, "Total withdrawals:    %s\n", FormatCurrency(s.TotalWithdrawals))
	fmt.Fprintf(buf, "Total growth:         %s\n", FormatCurrency(s.TotalGrowth))
	fmt.Fprintf(buf, "Total fees:           %s\n", FormatCurrency(s.TotalFees))
	fmt.Fprintf(buf, "Peak balance:         %s (period %d)\n", FormatCurrency(s.PeakBalance), s.PeakBalancePeriod)
	if s.Depleted {
		fmt.Fprintf(buf, "DEPLETED at period %d\n", s.DepletedAtPeriod)
	}
	fmt.Fprintln(buf)

	if len(report.Result.Periods) == 0 {
		fmt.Fprintln(buf, "(empty projection: zero-length horizon)")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(buf, "%-6s %14s %12s %12s %10s %12s %14s\n",
		"Period", "Opening", "Contrib", "Growth", "Fees", "Withdrawal", "Closing")
	// One row per year end keeps long horizons readable.
	for _, p := range yearEndRows(report) {
		marker := ""
		if p.Depleted {
			marker = " *"
		}
		fmt.Fprintf(buf, "%-6d %14s %12s %12s %10s %12s %14s%s\n",
			p.Period,
			p.OpeningBalance.StringFixed(2),
			p.Contribution.StringFixed(2),
			p.Growth.StringFixed(2),
			p.Fees.StringFixed(2),
			p.Withdrawal.StringFixed(2),
			p.ClosingBalance.StringFixed(2),
			marker)
	}
	return buf.Bytes(), nil
}

func divider(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '='
	}
	return string(b)
}
