package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

const (
	cpuMetricName    = "Percentage CPU"
	cpuAggregation   = "Average"
	monitorTimeField = "2006-01-02T15:04:05Z"
)

// MetricsClient is the part of armmonitor.MetricsClient used here
type MetricsClient interface {
	List(ctx context.Context, resourceURI string, options *armmonitor.MetricsClientListOptions) (armmonitor.MetricsClientListResponse, error)
}

// AzureMonitorSource reads VM platform metrics from Azure Monitor
type AzureMonitorSource struct {
	client   MetricsClient
	interval string
}

func NewAzureMonitorSource(client MetricsClient, interval time.Duration) (*AzureMonitorSource, error) {
	iso, err := ISO8601Interval(interval)
	if err != nil {
		return nil, err
	}

	return &AzureMonitorSource{
		client:   client,
		interval: iso,
	}, nil
}

// CPUSamples returns the hourly (or configured grain) average CPU percentage
// of a VM between start and end. Data points without an average are gaps in
// the telemetry and are not returned.
func (a *AzureMonitorSource) CPUSamples(ctx context.Context, vm models.VirtualMachine, start, end time.Time) ([]models.Sample, error) {
	timespan := fmt.Sprintf("%s/%s",
		start.UTC().Format(monitorTimeField),
		end.UTC().Format(monitorTimeField))

	resp, err := a.client.List(ctx, vm.ID, &armmonitor.MetricsClientListOptions{
		Timespan:    to.Ptr(timespan),
		Interval:    to.Ptr(a.interval),
		Metricnames: to.Ptr(cpuMetricName),
		Aggregation: to.Ptr(cpuAggregation),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrMetricQuery, vm.Name, err)
	}

	var samples []models.Sample
	for _, metric := range resp.Value {
		if metric == nil {
			continue
		}
		for _, series := range metric.Timeseries {
			if series == nil {
				continue
			}
			for _, point := range series.Data {
				if point == nil || point.Average == nil {
					continue
				}
				sample := models.Sample{Value: *point.Average}
				if point.TimeStamp != nil {
					sample.Timestamp = *point.TimeStamp
				}
				samples = append(samples, sample)
			}
		}
	}

	return samples, nil
}

func (a *AzureMonitorSource) Name() string {
	return "Azure Monitor"
}
