package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/penplan/pension-planner/internal/domain"
)

// Report bundles everything a formatter needs to render one projection.
type Report struct {
	Name    string
	Input   domain.PlanInput
	Result  domain.ProjectionResult
	Summary domain.ScenarioSummary
	Source  domain.ExecutionSource
}

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic
// formatting).
type Formatter interface {
	Format(report *Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// builtInFormatters stores available formatters (extended incrementally).
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
	HTMLFormatter{},
	PDFFormatter{},
	XLSXFormatter{},
}

// GetFormatterByName fetches a registered formatter, or nil.
func GetFormatterByName(name string) Formatter {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// FormatterNames lists the registered formatter identifiers.
func FormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	return names
}

// WriteFormatted runs a formatter and writes its output to a timestamped
// file, returning the filename.
func WriteFormatted(f Formatter, report *Report) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	ext := f.Name()
	if ext == "console" {
		ext = "txt"
	}
	filename := fmt.Sprintf("projection_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}
