package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter exports the full per-period projection, one row per period.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"Period", "OpeningBalance", "Contribution", "Adjustment", "Growth",
		"Fees", "Withdrawal", "ClosingBalance",
		"CumulativeContributions", "CumulativeWithdrawals", "Depleted",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range report.Result.Periods {
		row := []string{
			strconv.Itoa(p.Period),
			p.OpeningBalance.StringFixed(2),
			p.Contribution.StringFixed(2),
			p.Adjustment.StringFixed(2),
			p.Growth.StringFixed(2),
			p.Fees.StringFixed(2),
			p.Withdrawal.StringFixed(2),
			p.ClosingBalance.StringFixed(2),
			p.CumulativeContributions.StringFixed(2),
			p.CumulativeWithdrawals.StringFixed(2),
			strconv.FormatBool(p.Depleted),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
