package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/analyzer"
	"github.com/opscart/azure-vm-rightsizer/pkg/models"
	"github.com/opscart/azure-vm-rightsizer/pkg/pricing"
	"github.com/opscart/azure-vm-rightsizer/pkg/recommender"
	"github.com/opscart/azure-vm-rightsizer/pkg/reporter"
)

// Lister enumerates the VMs of the selected subscription
type Lister interface {
	ListVirtualMachines(ctx context.Context) ([]models.VirtualMachine, error)
}

// Collector reduces CPU metrics to one summary per VM, in input order
type Collector interface {
	Collect(ctx context.Context, vms []models.VirtualMachine, window analyzer.Window) ([]models.UtilizationSummary, error)
}

type Options struct {
	DaysToAnalyze int
	// Pricing is optional; nil disables cost estimates
	Pricing pricing.Provider
	// Now defaults to time.Now
	Now func() time.Time
}

// Pipeline runs one analysis: list, collect, classify, price, report
type Pipeline struct {
	lister      Lister
	collector   Collector
	recommender *recommender.Recommender
	pricing     pricing.Provider
	days        int
	now         func() time.Time
	logger      zerolog.Logger
}

func New(lister Lister, collector Collector, rec *recommender.Recommender, opts Options, logger zerolog.Logger) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		lister:      lister,
		collector:   collector,
		recommender: rec,
		pricing:     opts.Pricing,
		days:        opts.DaysToAnalyze,
		now:         now,
		logger:      logger,
	}
}

// Run analyzes every VM of sub. Inventory errors are returned as is; per-VM
// metric failures only show up in that VM's row.
func (p *Pipeline) Run(ctx context.Context, sub models.Subscription) (*reporter.Report, error) {
	runID := uuid.New().String()
	log := p.logger.With().
		Str("run_id", runID).
		Str("subscription", sub.ID).
		Logger()

	vms, err := p.lister.ListVirtualMachines(ctx)
	if err != nil {
		return nil, err
	}

	window := analyzer.NewWindow(p.now(), p.days)
	meta := reporter.Meta{
		RunID:         runID,
		Subscription:  sub,
		WindowStart:   window.Start,
		WindowEnd:     window.End,
		Threshold:     p.recommender.Threshold(),
		CostEstimated: p.pricing != nil,
	}

	if len(vms) == 0 {
		log.Warn().Msg("No virtual machines found in the subscription")
		meta.GeneratedAt = p.now().UTC()
		return reporter.Build(meta, nil), nil
	}

	log.Info().
		Time("start", window.Start).
		Time("end", window.End).
		Float64("cpu_threshold", meta.Threshold).
		Msgf("Analyzing CPU utilization of %d VMs over %d days", len(vms), p.days)

	summaries, err := p.collector.Collect(ctx, vms, window)
	if err != nil {
		return nil, err
	}

	results := make([]models.Result, len(vms))
	for i, vm := range vms {
		results[i] = p.recommender.Analyze(vm, summaries[i])
	}

	if p.pricing != nil {
		log.Info().Str("provider", p.pricing.Name()).Msg("Estimating VM costs")
		pricing.Annotate(ctx, p.pricing, results, log)
	}

	meta.GeneratedAt = p.now().UTC()
	report := reporter.Build(meta, results)

	log.Info().
		Int("running", report.Summary.Running).
		Int("stopped_deallocated", report.Summary.StoppedDeallocated).
		Int("downsize", report.Summary.ByRecommendation[models.RecommendationDownsize]).
		Int("no_data", report.Summary.ByRecommendation[models.RecommendationNoData]).
		Msg("Analysis complete")

	return report, nil
}
