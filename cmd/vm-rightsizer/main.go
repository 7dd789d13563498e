package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opscart/azure-vm-rightsizer/pkg/analyzer"
	"github.com/opscart/azure-vm-rightsizer/pkg/azure"
	"github.com/opscart/azure-vm-rightsizer/pkg/config"
	"github.com/opscart/azure-vm-rightsizer/pkg/datasource"
	"github.com/opscart/azure-vm-rightsizer/pkg/logging"
	"github.com/opscart/azure-vm-rightsizer/pkg/metrics"
	"github.com/opscart/azure-vm-rightsizer/pkg/pipeline"
	"github.com/opscart/azure-vm-rightsizer/pkg/pricing"
	"github.com/opscart/azure-vm-rightsizer/pkg/recommender"
	"github.com/opscart/azure-vm-rightsizer/pkg/reporter"
	"github.com/opscart/azure-vm-rightsizer/pkg/scanner"
	"github.com/opscart/azure-vm-rightsizer/pkg/subscription"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "vm-rightsizer",
		Short: "Azure virtual machine right-sizing scanner",
		Long: `Lists the virtual machines of an Azure subscription, averages their CPU
utilization over a recent window and flags VMs that are underutilized or
stopped/deallocated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runScan(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags.register(rootCmd)
	return rootCmd
}

func runScan(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	started := time.Now()
	logger := logging.NewLogger(cfg)

	logger.Info().
		Float64("cpu_threshold", cfg.CPUThreshold).
		Int("days", cfg.DaysToAnalyze).
		Dur("interval", cfg.MetricInterval).
		Int("concurrency", cfg.Concurrency).
		Msg("Starting Azure VM right-sizing analysis")

	rep, err := reporter.New(reporter.ReportFormat(cfg.OutputFormat))
	if err != nil {
		return err
	}

	cred, err := azure.NewCredential()
	if err != nil {
		return err
	}
	logger.Info().Msg("Authenticating with Azure")
	if err := azure.Authenticate(ctx, cred); err != nil {
		return err
	}
	logger.Info().Msg("Successfully authenticated with Azure")

	clients := azure.NewClients(cred)

	subClient, err := clients.Subscriptions()
	if err != nil {
		return err
	}
	sub, err := subscription.NewSelector(subClient, os.Stdin, os.Stderr, logger).Select(ctx, cfg.SubscriptionID)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, clients, sub.ID, logger)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, sub)
	if err != nil {
		return err
	}

	if err := writeReport(rep, report, cfg.OutputFile, stdout); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.Observe(report, time.Since(started))
		if err := m.WriteToTextfile(cfg.MetricsFile); err != nil {
			// Report already written, only warn
			logger.Warn().Err(err).Msg("Could not write metrics file")
		} else {
			logger.Info().Str("path", cfg.MetricsFile).Msg("Run metrics written")
		}
	}

	logger.Info().Dur("duration", time.Since(started)).Msg("Analysis finished")
	return nil
}

func buildPipeline(cfg *config.Config, clients *azure.Clients, subscriptionID string, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	vmClient, err := clients.VirtualMachines(subscriptionID)
	if err != nil {
		return nil, err
	}
	metricsClient, err := clients.Metrics(subscriptionID)
	if err != nil {
		return nil, err
	}

	source, err := datasource.NewAzureMonitorSource(metricsClient, cfg.MetricInterval)
	if err != nil {
		return nil, err
	}

	agg := analyzer.NewAggregator(source, analyzer.Options{
		SkipStoppedMetrics: cfg.SkipStoppedMetrics,
		Concurrency:        cfg.Concurrency,
		MetricsQPS:         cfg.MetricsQPS,
	}, logger)

	opts := pipeline.Options{DaysToAnalyze: cfg.DaysToAnalyze}
	if cfg.EstimateCost {
		opts.Pricing = pricing.NewAzureProvider(pricing.DefaultConfig(), logger)
	}

	return pipeline.New(
		scanner.New(vmClient, logger),
		agg,
		recommender.New(cfg.CPUThreshold),
		opts,
		logger,
	), nil
}

func writeReport(rep *reporter.Reporter, report *reporter.Report, path string, stdout io.Writer) error {
	if path == "" {
		return rep.Write(stdout, report)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := rep.Write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
