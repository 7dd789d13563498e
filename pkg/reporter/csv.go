package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// GenerateCSV creates a CSV report with one row per VM
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{
		"VM Name",
		"Resource Group",
		"Location",
		"VM Size",
		"Power State",
		"Avg CPU (%)",
		"Peak CPU (%)",
		"Samples",
		"Recommendation",
		"Recommendation Code",
	}
	if report.Meta.CostEstimated {
		header = append(header, "Est. Monthly Cost ($)")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range report.Results {
		peak := "N/A"
		if r.Utilization.HasData {
			peak = fmt.Sprintf("%.2f", r.Utilization.Peak)
		}

		row := []string{
			r.VM.Name,
			r.VM.ResourceGroup,
			r.VM.Location,
			r.VM.Size,
			r.VM.PowerState.Title(),
			avgCPU(r),
			peak,
			strconv.Itoa(r.Utilization.SampleCount),
			r.Label,
			string(r.Recommendation),
		}
		if report.Meta.CostEstimated {
			row = append(row, monthlyCost(r))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
