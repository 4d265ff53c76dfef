package output

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXFormatter exports the full per-period projection as a spreadsheet.
type XLSXFormatter struct{}

func (XLSXFormatter) Name() string { return "xlsx" }

func (XLSXFormatter) Format(report *Report) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Projection"
	f.SetSheetName("Sheet1", sheet)

	header := []any{
		"Period", "Opening Balance", "Contribution", "Adjustment", "Growth",
		"Fees", "Withdrawal", "Closing Balance",
		"Cumulative Contributions", "Cumulative Withdrawals", "Depleted",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, p := range report.Result.Periods {
		row := []any{
			p.Period,
			p.OpeningBalance.StringFixed(2),
			p.Contribution.StringFixed(2),
			p.Adjustment.StringFixed(2),
			p.Growth.StringFixed(2),
			p.Fees.StringFixed(2),
			p.Withdrawal.StringFixed(2),
			p.ClosingBalance.StringFixed(2),
			p.CumulativeContributions.StringFixed(2),
			p.CumulativeWithdrawals.StringFixed(2),
			p.Depleted,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
