package analyzer

import (
	"fmt"
	"math"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

const (
	// minTrendSamples is one day of hourly samples
	minTrendSamples = 24
	// growingRatePerMonth marks a VM as trending up
	growingRatePerMonth = 3.0

	PatternBusinessHours    = "business-hours"
	PatternSteady           = "steady"
	PatternVariable         = "variable"
	PatternInsufficientData = "insufficient-data"
)

// CalculateGrowthTrend fits a line through the CPU samples using linear
// regression and projects it 30 days past the last sample.
func CalculateGrowthTrend(samples []models.Sample) (*models.GrowthTrend, error) {
	if len(samples) < minTrendSamples {
		return nil, fmt.Errorf("insufficient data for trend analysis (need %d+ samples, got %d)", minTrendSamples, len(samples))
	}

	// Hours since the first sample
	startTime := samples[0].Timestamp
	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, sample := range samples {
		x[i] = sample.Timestamp.Sub(startTime).Hours()
		y[i] = sample.Value
	}

	slope, intercept, r2 := linearRegression(x, y)
	currentAvg := calculateAverage(y)

	hoursPerMonth := 24.0 * 30.0
	var ratePerMonth float64
	if currentAvg > 0 {
		ratePerMonth = (slope * hoursPerMonth / currentAvg) * 100.0
	}

	lastHour := x[0]
	for _, h := range x {
		lastHour = math.Max(lastHour, h)
	}
	predicted := slope*(lastHour+hoursPerMonth) + intercept
	predicted = math.Min(math.Max(predicted, 0), 100)

	return &models.GrowthTrend{
		RatePerMonth:    ratePerMonth,
		Confidence:      r2,
		Predicted30Days: predicted,
		IsGrowing:       ratePerMonth > growingRatePerMonth,
	}, nil
}

// linearRegression returns slope, intercept and R² (clamped to [0, 1])
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	if len(x) == 0 {
		return 0, 0, 0
	}

	meanX := calculateAverage(x)
	meanY := calculateAverage(y)

	numerator := 0.0
	denominator := 0.0
	for i := range x {
		numerator += (x[i] - meanX) * (y[i] - meanY)
		denominator += (x[i] - meanX) * (x[i] - meanX)
	}

	if denominator == 0 {
		return 0, meanY, 0
	}

	slope = numerator / denominator
	intercept = meanY - slope*meanX

	ssTotal := 0.0
	ssRes := 0.0
	for i := range x {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
	}

	if ssTotal == 0 {
		return slope, intercept, 0
	}

	r2 = 1.0 - (ssRes / ssTotal)
	return slope, intercept, math.Min(math.Max(r2, 0), 1)
}

// DetectUsagePattern classifies the daily CPU shape: busier during business
// hours (UTC), flat, or neither. Needs at least a full day of samples.
func DetectUsagePattern(samples []models.Sample) string {
	if len(samples) < minTrendSamples {
		return PatternInsufficientData
	}

	first, last := samples[0].Timestamp, samples[0].Timestamp
	hourly := make(map[int][]float64)
	for _, sample := range samples {
		if sample.Timestamp.Before(first) {
			first = sample.Timestamp
		}
		if sample.Timestamp.After(last) {
			last = sample.Timestamp
		}
		hour := sample.Timestamp.UTC().Hour()
		hourly[hour] = append(hourly[hour], sample.Value)
	}
	if last.Sub(first).Hours() < 23 {
		return PatternInsufficientData
	}

	hourlyMeans := make([]float64, 24)
	for hour := 0; hour < 24; hour++ {
		if values, exists := hourly[hour]; exists {
			hourlyMeans[hour] = calculateAverage(values)
		}
	}

	businessHoursAvg := (hourlyMeans[9] + hourlyMeans[12] + hourlyMeans[15]) / 3.0
	nightAvg := (hourlyMeans[0] + hourlyMeans[3] + hourlyMeans[23]) / 3.0
	if businessHoursAvg > nightAvg*1.5 {
		return PatternBusinessHours
	}

	if calculateCoefficientOfVariation(hourlyMeans) < 0.15 {
		return PatternSteady
	}
	return PatternVariable
}

func calculateCoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := calculateAverage(values)
	if mean == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff/float64(len(values))) / mean
}
