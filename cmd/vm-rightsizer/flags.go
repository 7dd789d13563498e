package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opscart/azure-vm-rightsizer/pkg/config"
)

type cliFlags struct {
	configFile         string
	cpuThreshold       float64
	days               int
	interval           time.Duration
	skipStoppedMetrics bool
	concurrency        int
	metricsQPS         float64
	subscriptionID     string
	output             string
	outputFile         string
	estimateCost       bool
	metricsFile        string
	logLevel           string
	logFormat          string
	verbose            bool
}

func (f *cliFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	fs := cmd.Flags()

	fs.StringVar(&f.configFile, "config", "", "Path to a YAML configuration file")
	fs.Float64Var(&f.cpuThreshold, "cpu-threshold", d.CPUThreshold, "Average CPU percentage below which a running VM is flagged")
	fs.IntVar(&f.days, "days", d.DaysToAnalyze, "Number of days of metrics to analyze")
	fs.DurationVar(&f.interval, "interval", d.MetricInterval, "Metric time grain: 1m, 5m, 15m, 30m, 1h, 6h, 12h or 24h")
	fs.BoolVar(&f.skipStoppedMetrics, "skip-stopped-metrics", d.SkipStoppedMetrics, "Do not query metrics for stopped or deallocated VMs")
	fs.IntVar(&f.concurrency, "concurrency", d.Concurrency, "Number of VMs whose metrics are fetched in parallel")
	fs.Float64Var(&f.metricsQPS, "metrics-qps", d.MetricsQPS, "Maximum metric queries per second (0 = unlimited)")
	fs.StringVar(&f.subscriptionID, "subscription", "", "Subscription ID to analyze (prompted when several are visible)")
	fs.StringVarP(&f.output, "output", "o", d.OutputFormat, "Output format: table, json, yaml, csv")
	fs.StringVar(&f.outputFile, "output-file", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&f.estimateCost, "estimate-cost", d.EstimateCost, "Add pay-as-you-go monthly cost estimates from the Azure Retail Prices API")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics to a Prometheus textfile")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	fs.StringVar(&f.logFormat, "log-format", d.LogFormat, "Log format: console, json")
}

// loadConfig layers explicitly set flags over file and environment settings
func loadConfig(cmd *cobra.Command, f *cliFlags) (*config.Config, error) {
	cfg, err := config.Read(f.configFile)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("cpu-threshold") {
		cfg.CPUThreshold = f.cpuThreshold
	}
	if fs.Changed("days") {
		cfg.DaysToAnalyze = f.days
	}
	if fs.Changed("interval") {
		cfg.MetricInterval = f.interval
	}
	if fs.Changed("skip-stopped-metrics") {
		cfg.SkipStoppedMetrics = f.skipStoppedMetrics
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if fs.Changed("metrics-qps") {
		cfg.MetricsQPS = f.metricsQPS
	}
	if fs.Changed("subscription") {
		cfg.SubscriptionID = f.subscriptionID
	}
	if fs.Changed("output") {
		cfg.OutputFormat = f.output
	}
	if fs.Changed("output-file") {
		cfg.OutputFile = f.outputFile
	}
	if fs.Changed("estimate-cost") {
		cfg.EstimateCost = f.estimateCost
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
