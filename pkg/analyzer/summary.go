package analyzer

import (
	"time"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Window is the analysis period metrics are requested for
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window of the given number of days ending at now
func NewWindow(now time.Time, days int) Window {
	end := now.UTC()
	return Window{
		Start: end.Add(-time.Duration(days) * 24 * time.Hour),
		End:   end,
	}
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Summarize reduces samples to their unweighted mean and peak.
// No samples means no data, which is never reported as 0%.
func Summarize(samples []models.Sample) models.UtilizationSummary {
	if len(samples) == 0 {
		return models.NoData()
	}

	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}

	summary := models.UtilizationSummary{
		HasData:     true,
		Average:     calculateAverage(values),
		Peak:        calculatePeak(values),
		SampleCount: len(values),
	}

	if trend, err := CalculateGrowthTrend(samples); err == nil {
		summary.Trend = trend
	}
	if pattern := DetectUsagePattern(samples); pattern != PatternInsufficientData {
		summary.Pattern = pattern
	}

	return summary
}

// calculateAverage computes the mean of values
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func calculatePeak(values []float64) float64 {
	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	return peak
}
