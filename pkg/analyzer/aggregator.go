package analyzer

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/opscart/azure-vm-rightsizer/pkg/datasource"
	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Options controls how the aggregator fetches metrics
type Options struct {
	// SkipStoppedMetrics skips the metrics call for stopped/deallocated VMs
	SkipStoppedMetrics bool
	// Concurrency is the number of VMs queried at once; 1 is sequential
	Concurrency int
	// MetricsQPS caps metric queries per second; 0 disables the limit
	MetricsQPS float64
}

// Aggregator turns per-VM CPU time series into utilization summaries
type Aggregator struct {
	source      datasource.DataSource
	logger      zerolog.Logger
	skipStopped bool
	concurrency int
	limiter     *rate.Limiter
}

func NewAggregator(source datasource.DataSource, opts Options, logger zerolog.Logger) *Aggregator {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.MetricsQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MetricsQPS), 1)
	}

	return &Aggregator{
		source:      source,
		logger:      logger,
		skipStopped: opts.SkipStoppedMetrics,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// Collect returns one summary per VM, in the order of vms. A failed metrics
// query only affects that VM's summary; an error is returned only when ctx
// is cancelled.
func (a *Aggregator) Collect(ctx context.Context, vms []models.VirtualMachine, window Window) ([]models.UtilizationSummary, error) {
	summaries := make([]models.UtilizationSummary, len(vms))

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for i, vm := range vms {
		g.Go(func() error {
			a.logger.Info().
				Str("vm", vm.Name).
				Msgf("Processing VM %d/%d", i+1, len(vms))
			summaries[i] = a.Summarize(ctx, vm, window)
			return nil
		})
	}

	// Workers never fail, Wait only waits
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Summarize fetches and reduces the CPU samples of a single VM
func (a *Aggregator) Summarize(ctx context.Context, vm models.VirtualMachine, window Window) models.UtilizationSummary {
	log := a.logger.With().
		Str("vm", vm.Name).
		Str("resource_group", vm.ResourceGroup).
		Logger()

	if a.skipStopped && vm.PowerState.IsStopped() {
		log.Debug().
			Str("power_state", string(vm.PowerState)).
			Msg("Skipping CPU metrics for stopped VM")
		summary := models.NoData()
		summary.Skipped = true
		return summary
	}

	if err := a.limiter.Wait(ctx); err != nil {
		summary := models.NoData()
		summary.Error = err.Error()
		return summary
	}

	log.Debug().Msg("Retrieving CPU metrics")
	samples, err := a.source.CPUSamples(ctx, vm, window.Start, window.End)
	if err != nil {
		log.Warn().Err(err).Msg("Error retrieving metrics, reporting VM without data")
		summary := models.NoData()
		summary.Error = err.Error()
		return summary
	}

	summary := Summarize(samples)
	if !summary.HasData {
		log.Info().Msg("No CPU data available")
		return summary
	}

	log.Info().
		Int("samples", summary.SampleCount).
		Float64("avg_cpu", summary.Average).
		Float64("peak_cpu", summary.Peak).
		Msg("CPU utilization")
	return summary
}
