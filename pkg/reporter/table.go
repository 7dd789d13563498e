package reporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// GenerateTable writes the console report: status summary, recommendation
// table and hints about missing data.
func GenerateTable(report *Report, writer io.Writer) error {
	s := report.Summary

	fmt.Fprintln(writer, "\nVM Status Summary:")
	fmt.Fprintf(writer, "- Running VMs: %d\n", s.Running)
	fmt.Fprintf(writer, "- Stopped/Deallocated VMs: %d\n", s.StoppedDeallocated)
	if s.Unknown > 0 {
		fmt.Fprintf(writer, "- Unknown/transitional VMs: %d\n", s.Unknown)
	}
	fmt.Fprintf(writer, "- Total VMs: %d\n", s.Total)

	if s.Total == 0 {
		fmt.Fprintln(writer, "\nNo virtual machines found in the subscription.")
		return nil
	}

	fmt.Fprintln(writer, "\nVM Right-Sizing Recommendations:")
	if err := writeResultTable(report, writer); err != nil {
		return err
	}

	fmt.Fprintln(writer, "\nRecommendation Summary:")
	for _, t := range models.RecommendationTypes {
		fmt.Fprintf(writer, "- %s: %d\n", t.Label(), s.ByRecommendation[t])
	}

	if report.Meta.CostEstimated {
		fmt.Fprintf(writer, "\nEstimated monthly cost of VMs flagged for downsizing: $%.2f\n", s.FlaggedMonthlyCost)
	}

	writeHints(s, writer)
	return nil
}

func writeResultTable(report *Report, writer io.Writer) error {
	header := []string{"VM Name", "Resource Group", "Location", "VM Size", "Avg CPU (%)", "Recommendation"}
	if report.Meta.CostEstimated {
		header = append(header, "Est. Monthly Cost ($)")
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Join(dashes(header), "\t"))

	for _, r := range report.Results {
		row := []string{
			r.VM.Name,
			r.VM.ResourceGroup,
			r.VM.Location,
			r.VM.Size,
			avgCPU(r),
			r.Label,
		}
		if report.Meta.CostEstimated {
			row = append(row, monthlyCost(r))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report table: %w", err)
	}
	return nil
}

func writeHints(s Summary, writer io.Writer) {
	missing := len(s.RunningWithoutData)

	switch {
	case s.Running == 0:
		fmt.Fprintln(writer, "\nNo running VMs found in the subscription.")
		fmt.Fprintln(writer, "To generate right-sizing recommendations, start your VMs so metrics can be collected.")
	case missing == s.Running:
		fmt.Fprintf(writer, "\nNo CPU metrics data available for any of the running VMs: %s\n", strings.Join(s.RunningWithoutData, ", "))
		fmt.Fprintln(writer, "\nTo collect CPU metrics:")
		fmt.Fprintln(writer, "1. Ensure Azure Monitor diagnostics settings are properly configured")
		fmt.Fprintln(writer, "2. Check if the Azure Monitor agent is installed and running on the VMs")
		fmt.Fprintln(writer, "3. Wait at least 24 hours after configuring monitoring for metrics to be collected")
	case missing > 0:
		fmt.Fprintf(writer, "\nNo CPU metrics data available for %d of %d running VMs:\n", missing, s.Running)
		fmt.Fprintln(writer, strings.Join(s.RunningWithoutData, ", "))
	}
}

func dashes(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.Repeat("-", len(h))
	}
	return out
}
