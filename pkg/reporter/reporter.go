package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatTable ReportFormat = "table"
	FormatJSON  ReportFormat = "json"
	FormatYAML  ReportFormat = "yaml"
	FormatCSV   ReportFormat = "csv"
)

// SupportedFormats returns every output format name
func SupportedFormats() []string {
	return []string{
		string(FormatTable),
		string(FormatJSON),
		string(FormatYAML),
		string(FormatCSV),
	}
}

func (f ReportFormat) IsUnknown() bool {
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return false
	default:
		return true
	}
}

// Meta describes the run a report was produced by
type Meta struct {
	RunID         string              `json:"run_id" yaml:"run_id"`
	Subscription  models.Subscription `json:"subscription" yaml:"subscription"`
	WindowStart   time.Time           `json:"window_start" yaml:"window_start"`
	WindowEnd     time.Time           `json:"window_end" yaml:"window_end"`
	Threshold     float64             `json:"cpu_threshold_percent" yaml:"cpu_threshold_percent"`
	GeneratedAt   time.Time           `json:"generated_at" yaml:"generated_at"`
	CostEstimated bool                `json:"cost_estimated" yaml:"cost_estimated"`
}

// Summary holds the VM counts of a report
type Summary struct {
	Running            int `json:"running" yaml:"running"`
	StoppedDeallocated int `json:"stopped_deallocated" yaml:"stopped_deallocated"`
	Unknown            int `json:"unknown" yaml:"unknown"`
	Total              int `json:"total" yaml:"total"`

	ByRecommendation map[models.RecommendationType]int `json:"by_recommendation" yaml:"by_recommendation"`

	// Running VMs for which no CPU data was returned
	RunningWithoutData []string `json:"running_without_data,omitempty" yaml:"running_without_data,omitempty"`

	// FlaggedMonthlyCost is the estimated monthly cost of DOWNSIZE VMs
	FlaggedMonthlyCost float64 `json:"flagged_monthly_cost,omitempty" yaml:"flagged_monthly_cost,omitempty"`
}

// Report contains all data for generating reports
type Report struct {
	Meta    Meta            `json:"run" yaml:"run"`
	Summary Summary         `json:"summary" yaml:"summary"`
	Results []models.Result `json:"results" yaml:"results"`
}

// Build computes the summary counts over classified results
func Build(meta Meta, results []models.Result) *Report {
	if results == nil {
		results = []models.Result{}
	}

	report := &Report{
		Meta:    meta,
		Results: results,
		Summary: Summary{
			Total:            len(results),
			ByRecommendation: make(map[models.RecommendationType]int, len(models.RecommendationTypes)),
		},
	}
	for _, t := range models.RecommendationTypes {
		report.Summary.ByRecommendation[t] = 0
	}

	for _, r := range results {
		switch {
		case r.VM.PowerState == models.PowerStateRunning:
			report.Summary.Running++
			if r.Recommendation == models.RecommendationNoData {
				report.Summary.RunningWithoutData = append(report.Summary.RunningWithoutData, r.VM.Name)
			}
		case r.VM.PowerState.IsStopped():
			report.Summary.StoppedDeallocated++
		default:
			report.Summary.Unknown++
		}

		report.Summary.ByRecommendation[r.Recommendation]++

		if r.Recommendation == models.RecommendationDownsize && r.Cost != nil {
			report.Summary.FlaggedMonthlyCost += r.Cost.MonthlyPrice
		}
	}

	return report
}

// Reporter renders reports in one format
type Reporter struct {
	format ReportFormat
}

// New creates a new reporter
func New(format ReportFormat) (*Reporter, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unsupported output format %q, expected one of %v", format, SupportedFormats())
	}
	return &Reporter{
		format: format,
	}, nil
}

func (r *Reporter) Format() ReportFormat {
	return r.format
}

// Write renders report to w
func (r *Reporter) Write(w io.Writer, report *Report) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return writeYAML(w, report)
	case FormatCSV:
		return GenerateCSV(report, w)
	default:
		return GenerateTable(report, w)
	}
}

func writeJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to serialize report to JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, report *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to serialize report to YAML: %w", err)
	}
	return encoder.Close()
}

// avgCPU formats the mean CPU of a result, or N/A without data
func avgCPU(r models.Result) string {
	if !r.Utilization.HasData {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", r.Utilization.Average)
}

func monthlyCost(r models.Result) string {
	if r.Cost == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", r.Cost.MonthlyPrice)
}
