package recommender

import (
	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Classify applies the right-sizing rule to one VM. Rules, in order:
// stopped or deallocated VMs are deletion candidates whatever their
// utilization; VMs without samples have no data; running VMs whose mean CPU
// is strictly below threshold should be downsized; everything else is OK.
//
// The same threshold applies to every VM size.
func Classify(state models.PowerState, summary models.UtilizationSummary, threshold float64) models.RecommendationType {
	if state.IsStopped() {
		return models.RecommendationDeletionReview
	}
	if !summary.HasData || summary.SampleCount == 0 {
		return models.RecommendationNoData
	}
	if summary.Average < threshold {
		return models.RecommendationDownsize
	}
	return models.RecommendationOK
}

// Recommender classifies VMs against a configured threshold
type Recommender struct {
	threshold float64
}

func New(threshold float64) *Recommender {
	return &Recommender{threshold: threshold}
}

// Threshold returns the configured CPU threshold in percent
func (r *Recommender) Threshold() float64 {
	return r.threshold
}

// Analyze builds the report row for a VM
func (r *Recommender) Analyze(vm models.VirtualMachine, summary models.UtilizationSummary) models.Result {
	recType := Classify(vm.PowerState, summary, r.threshold)

	return models.Result{
		VM:             vm,
		Utilization:    summary,
		Recommendation: recType,
		Label:          recType.LabelFor(vm.PowerState),
	}
}
