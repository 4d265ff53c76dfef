package output

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFFormatter renders a printable projection statement: headline summary
// followed by a year-end balance table.
type PDFFormatter struct{}

func (PDFFormatter) Name() string { return "pdf" }

func (PDFFormatter) Format(report *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Pension Projection Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Scenario: %s", report.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Computed by: %s", report.Source))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Horizon: %d periods (%d per year)", report.Input.Horizon, report.Input.PeriodsPerYear))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Final balance: $%s", report.Summary.FinalBalance.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total contributions: $%s", report.Summary.TotalContributions.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total withdrawals: $%s", report.Summary.TotalWithdrawals.StringFixed(2)))
	pdf.Ln(5)
	if report.Summary.Depleted {
		pdf.Cell(0, 6, fmt.Sprintf("Depleted at period %d", report.Summary.DepletedAtPeriod))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(25, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Opening", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Growth", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Fees", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Withdrawal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Closing", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	for _, p := range yearEndRows(report) {
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", p.Period), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, p.OpeningBalance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, p.Growth.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, p.Fees.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, p.Withdrawal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, p.ClosingBalance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
