package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
	"github.com/opscart/azure-vm-rightsizer/pkg/reporter"
)

func testReport() *reporter.Report {
	results := []models.Result{
		{
			VM:             models.VirtualMachine{Name: "webserver01", ResourceGroup: "rg-web", PowerState: models.PowerStateRunning},
			Utilization:    models.UtilizationSummary{HasData: true, Average: 12.5, Peak: 40, SampleCount: 168},
			Recommendation: models.RecommendationDownsize,
		},
		{
			VM:             models.VirtualMachine{Name: "broken01", ResourceGroup: "rg-web", PowerState: models.PowerStateRunning},
			Utilization:    models.UtilizationSummary{Error: "metric query failed: broken01: throttled"},
			Recommendation: models.RecommendationNoData,
		},
		{
			VM:             models.VirtualMachine{Name: "cache01", ResourceGroup: "rg-data", PowerState: models.PowerStateDeallocated},
			Utilization:    models.UtilizationSummary{Skipped: true},
			Recommendation: models.RecommendationDeletionReview,
		},
	}
	return reporter.Build(reporter.Meta{GeneratedAt: time.Unix(1792281600, 0)}, results)
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(testReport(), 90*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.vms.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.vms.WithLabelValues("stopped_deallocated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommendations.WithLabelValues("DOWNSIZE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.recommendations.WithLabelValues("OK")))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.cpuAverage.WithLabelValues("webserver01", "rg-web")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.cpuAverage), "only VMs with data get a CPU gauge")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryFailures))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.runDuration))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.Observe(testReport(), time.Second)

	path := filepath.Join(t.TempDir(), "vm_rightsizer.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `vm_rightsizer_vms{power_state="running"} 2`)
	assert.Contains(t, content, `vm_rightsizer_recommendations{type="DELETION_REVIEW"} 1`)
	assert.Contains(t, content, "vm_rightsizer_metric_query_failures 1")

	err = m.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
