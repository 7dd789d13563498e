package models

// HoursPerMonth is the billing convention used for monthly estimates
const HoursPerMonth = 730.0

// CostEstimate represents list-price compute cost of a VM size
type CostEstimate struct {
	HourlyPrice  float64 `json:"hourly_price" yaml:"hourly_price"`
	MonthlyPrice float64 `json:"monthly_price" yaml:"monthly_price"`
	Currency     string  `json:"currency" yaml:"currency"`
	Meter        string  `json:"meter,omitempty" yaml:"meter,omitempty"`
}
