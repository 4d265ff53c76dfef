package output

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/penplan/pension-planner/internal/domain"
)

// HTMLFormatter renders a standalone HTML report: the summary card, a yearly
// balance table, and the raw projection embedded as JSON for client-side
// charting.
type HTMLFormatter struct{}

func (HTMLFormatter) Name() string { return "html" }

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"pct":  FormatPercentage,
	"json": func(v any) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}).Parse(htmlTemplateSource))

func (HTMLFormatter) Format(report *Report) ([]byte, error) {
	data := struct {
		*Report
		YearEnds []domain.PeriodSnapshot
	}{report, yearEndRows(report)}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const htmlTemplateSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Projection: {{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.7rem; text-align: right; }
th { background: #f0f0f0; }
.depleted { color: #b00; font-weight: bold; }
.summary dt { font-weight: bold; float: left; clear: left; width: 14rem; }
.summary dd { margin: 0 0 0.3rem 14rem; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p>Computed via the {{.Source}} path.</p>

<dl class="summary">
<dt>Final balance</dt><dd>{{curr .Summary.FinalBalance}}</dd>
<dt>Real final balance</dt><dd>{{curr .Summary.RealFinalBalance}}</dd>
<dt>Total contributions</dt><dd>{{curr .Summary.TotalContributions}}</dd>
<dt>Total withdrawals</dt><dd>{{curr .Summary.TotalWithdrawals}}</dd>
<dt>Total growth</dt><dd>{{curr .Summary.TotalGrowth}}</dd>
<dt>Total fees</dt><dd>{{curr .Summary.TotalFees}}</dd>
<dt>Peak balance</dt><dd>{{curr .Summary.PeakBalance}} (period {{.Summary.PeakBalancePeriod}})</dd>
{{if .Summary.Depleted}}<dt class="depleted">Depleted</dt><dd class="depleted">period {{.Summary.DepletedAtPeriod}}</dd>{{end}}
</dl>

<table>
<tr><th>Period</th><th>Opening</th><th>Contributions</th><th>Growth</th><th>Fees</th><th>Withdrawals</th><th>Closing</th></tr>
{{range .YearEnds}}
<tr{{if .Depleted}} class="depleted"{{end}}>
<td>{{.Period}}</td>
<td>{{curr .OpeningBalance}}</td>
<td>{{curr .Contribution}}</td>
<td>{{curr .Growth}}</td>
<td>{{curr .Fees}}</td>
<td>{{curr .Withdrawal}}</td>
<td>{{curr .ClosingBalance}}</td>
</tr>
{{end}}
</table>

<script>
window.projectionData = {{json .Result}};
</script>
</body>
</html>
`
