package output

import "encoding/json"

// JSONFormatter exports the report as indented JSON for downstream tooling.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(report *Report) ([]byte, error) {
	return json.MarshalIndent(map[string]any{
		"name":    report.Name,
		"source":  report.Source,
		"input":   report.Input,
		"summary": report.Summary,
		"result":  report.Result,
	}, "", "  ")
}
