package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
	"github.com/opscart/azure-vm-rightsizer/pkg/reporter"
)

// RunMetrics holds the gauges describing one analysis run. Each run uses its
// own registry so the textfile only ever contains the latest run.
type RunMetrics struct {
	registry *prometheus.Registry

	vms             *prometheus.GaugeVec
	recommendations *prometheus.GaugeVec
	cpuAverage      *prometheus.GaugeVec
	queryFailures   prometheus.Gauge
	runDuration     prometheus.Gauge
	lastRun         prometheus.Gauge
}

func New() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		vms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vm_rightsizer_vms",
			Help: "Number of virtual machines by power state",
		}, []string{"power_state"}),
		recommendations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vm_rightsizer_recommendations",
			Help: "Number of virtual machines by recommendation type",
		}, []string{"type"}),
		cpuAverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vm_rightsizer_vm_cpu_average_percent",
			Help: "Mean CPU utilization over the analysis window",
		}, []string{"vm", "resource_group"}),
		queryFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vm_rightsizer_metric_query_failures",
			Help: "Number of VMs whose metrics query failed",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vm_rightsizer_run_duration_seconds",
			Help: "Wall clock duration of the analysis run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vm_rightsizer_last_run_timestamp_seconds",
			Help: "Unix time the report was generated",
		}),
	}

	m.registry.MustRegister(
		m.vms,
		m.recommendations,
		m.cpuAverage,
		m.queryFailures,
		m.runDuration,
		m.lastRun,
	)
	return m
}

// Registry exposes the underlying registry for gathering
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from a finished report
func (m *RunMetrics) Observe(report *reporter.Report, duration time.Duration) {
	s := report.Summary

	m.vms.WithLabelValues("running").Set(float64(s.Running))
	m.vms.WithLabelValues("stopped_deallocated").Set(float64(s.StoppedDeallocated))
	m.vms.WithLabelValues("unknown").Set(float64(s.Unknown))

	for _, t := range models.RecommendationTypes {
		m.recommendations.WithLabelValues(string(t)).Set(float64(s.ByRecommendation[t]))
	}

	failures := 0
	m.cpuAverage.Reset()
	for _, r := range report.Results {
		if r.Utilization.Error != "" {
			failures++
		}
		if r.Utilization.HasData {
			m.cpuAverage.WithLabelValues(r.VM.Name, r.VM.ResourceGroup).Set(r.Utilization.Average)
		}
	}
	m.queryFailures.Set(float64(failures))

	m.runDuration.Set(duration.Seconds())
	if !report.Meta.GeneratedAt.IsZero() {
		m.lastRun.Set(float64(report.Meta.GeneratedAt.Unix()))
	}
}

// WriteToTextfile writes the gauges in the node-exporter textfile format
func (m *RunMetrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	return nil
}
