package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// DataSource defines the interface for collecting CPU utilization samples
type DataSource interface {
	CPUSamples(ctx context.Context, vm models.VirtualMachine, start, end time.Time) ([]models.Sample, error)
	Name() string
}

// Azure Monitor only accepts these time grains for platform metrics
var supportedIntervals = map[time.Duration]string{
	time.Minute:      "PT1M",
	5 * time.Minute:  "PT5M",
	15 * time.Minute: "PT15M",
	30 * time.Minute: "PT30M",
	time.Hour:        "PT1H",
	6 * time.Hour:    "PT6H",
	12 * time.Hour:   "PT12H",
	24 * time.Hour:   "P1D",
}

// ISO8601Interval converts a metric granularity to the ISO 8601 form used by
// the metrics API.
func ISO8601Interval(d time.Duration) (string, error) {
	if iso, ok := supportedIntervals[d]; ok {
		return iso, nil
	}
	return "", fmt.Errorf("unsupported metric interval %s (use 1m, 5m, 15m, 30m, 1h, 6h, 12h or 24h)", d)
}
