package models

import "strings"

// RecommendationType represents the outcome of classifying one VM
type RecommendationType string

const (
	RecommendationOK             RecommendationType = "OK"
	RecommendationDownsize       RecommendationType = "DOWNSIZE"
	RecommendationDeletionReview RecommendationType = "DELETION_REVIEW"
	RecommendationNoData         RecommendationType = "NO_DATA"
)

// RecommendationTypes lists every type in report order
var RecommendationTypes = []RecommendationType{
	RecommendationOK,
	RecommendationDownsize,
	RecommendationDeletionReview,
	RecommendationNoData,
}

// Label returns the human-readable recommendation
func (t RecommendationType) Label() string {
	switch t {
	case RecommendationOK:
		return "Running — OK"
	case RecommendationDownsize:
		return "Running — Consider downsizing or deallocating"
	case RecommendationDeletionReview:
		return "Stopped/Deallocated — candidate for deletion review"
	default:
		return "No data available"
	}
}

// LabelFor returns the label for a VM in the given power state. OK and
// DOWNSIZE rows of a VM that is not reported running carry its actual state
// instead of "Running".
func (t RecommendationType) LabelFor(state PowerState) string {
	label := t.Label()
	if state == PowerStateRunning {
		return label
	}
	switch t {
	case RecommendationOK, RecommendationDownsize:
		return state.Title() + strings.TrimPrefix(label, "Running")
	default:
		return label
	}
}

// Result is one report row: a VM, its utilization and its recommendation
type Result struct {
	VM             VirtualMachine     `json:"vm" yaml:"vm"`
	Utilization    UtilizationSummary `json:"utilization" yaml:"utilization"`
	Recommendation RecommendationType `json:"recommendation" yaml:"recommendation"`
	Label          string             `json:"recommendation_label" yaml:"recommendation_label"`

	// Cost is set only when price estimation is enabled and succeeded
	Cost *CostEstimate `json:"cost,omitempty" yaml:"cost,omitempty"`
}
