package models

import "time"

// Sample represents a single CPU percentage reading
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// UtilizationSummary is the reduced CPU utilization of one VM over the
// analysis window. Average and Peak are only meaningful when HasData is true.
type UtilizationSummary struct {
	HasData     bool    `json:"has_data" yaml:"has_data"`
	Average     float64 `json:"average_cpu_percent" yaml:"average_cpu_percent"`
	Peak        float64 `json:"peak_cpu_percent" yaml:"peak_cpu_percent"`
	SampleCount int     `json:"sample_count" yaml:"sample_count"`

	// Skipped is set when no metrics query was issued (stopped VM policy)
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Error holds the metrics query failure, if any
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Trend and Pattern are informational and need a day or more of samples
	Trend   *GrowthTrend `json:"trend,omitempty" yaml:"trend,omitempty"`
	Pattern string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// GrowthTrend is a least-squares line through the CPU samples
type GrowthTrend struct {
	// RatePerMonth is the slope as percent of the mean per 30 days
	RatePerMonth float64 `json:"rate_per_month_percent" yaml:"rate_per_month_percent"`
	// Confidence is the R² of the fit
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	Predicted30Days float64 `json:"predicted_30d_cpu_percent" yaml:"predicted_30d_cpu_percent"`
	IsGrowing       bool    `json:"is_growing" yaml:"is_growing"`
}

// NoData returns a summary without samples
func NoData() UtilizationSummary {
	return UtilizationSummary{}
}
