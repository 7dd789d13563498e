package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opscart/azure-vm-rightsizer/pkg/datasource"
)

const (
	DefaultCPUThreshold   = 30.0
	DefaultDaysToAnalyze  = 7
	DefaultMetricInterval = time.Hour
	MaxDaysToAnalyze      = 93 // Azure Monitor platform metric retention
)

// Config holds application configuration
type Config struct {
	// Analysis
	CPUThreshold   float64       `yaml:"cpu_threshold"`   // percent; running VMs below are flagged
	DaysToAnalyze  int           `yaml:"days_to_analyze"` // lookback window ending now
	MetricInterval time.Duration `yaml:"metric_interval"` // time grain of CPU samples

	// SkipStoppedMetrics avoids the metrics call for stopped/deallocated VMs.
	// Their recommendation does not depend on utilization, so this only saves
	// API calls; the VM is still reported.
	SkipStoppedMetrics bool `yaml:"skip_stopped_metrics"`

	// Fan-out
	Concurrency int     `yaml:"concurrency"` // 1 = sequential
	MetricsQPS  float64 `yaml:"metrics_qps"` // 0 = unlimited

	// Azure
	SubscriptionID string `yaml:"subscription_id"`

	// Output
	OutputFormat string `yaml:"output_format"` // table, json, yaml, csv
	OutputFile   string `yaml:"output_file"`
	EstimateCost bool   `yaml:"estimate_cost"`
	MetricsFile  string `yaml:"metrics_file"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // console, json
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		CPUThreshold:       DefaultCPUThreshold,
		DaysToAnalyze:      DefaultDaysToAnalyze,
		MetricInterval:     DefaultMetricInterval,
		SkipStoppedMetrics: true,
		Concurrency:        1,
		MetricsQPS:         0,
		OutputFormat:       "table",
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// NewConfig creates a new configuration from defaults and environment
func NewConfig() *Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read merges defaults, an optional YAML file and the environment without
// validating. Callers layering further overrides validate once at the end.
func Read(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.CPUThreshold = getEnvFloat("CPU_THRESHOLD", c.CPUThreshold)
	c.DaysToAnalyze = getEnvInt("DAYS_TO_ANALYZE", c.DaysToAnalyze)
	c.MetricInterval = getEnvDuration("METRIC_INTERVAL", c.MetricInterval)
	c.SkipStoppedMetrics = getEnvBool("SKIP_STOPPED_METRICS", c.SkipStoppedMetrics)
	c.Concurrency = getEnvInt("CONCURRENCY", c.Concurrency)
	c.MetricsQPS = getEnvFloat("METRICS_QPS", c.MetricsQPS)
	c.SubscriptionID = getEnv("AZURE_SUBSCRIPTION_ID", c.SubscriptionID)
	c.OutputFormat = getEnv("OUTPUT_FORMAT", c.OutputFormat)
	c.OutputFile = getEnv("OUTPUT_FILE", c.OutputFile)
	c.EstimateCost = getEnvBool("ESTIMATE_COST", c.EstimateCost)
	c.MetricsFile = getEnv("METRICS_FILE", c.MetricsFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// AnalysisWindow returns the lookback duration
func (c *Config) AnalysisWindow() time.Duration {
	return time.Duration(c.DaysToAnalyze) * 24 * time.Hour
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if math.IsNaN(c.CPUThreshold) || c.CPUThreshold <= 0 || c.CPUThreshold > 100 {
		return fmt.Errorf("CPU threshold must be in (0, 100], got %.2f", c.CPUThreshold)
	}
	if c.DaysToAnalyze < 1 {
		return fmt.Errorf("days to analyze must be at least 1 day")
	}
	if c.DaysToAnalyze > MaxDaysToAnalyze {
		return fmt.Errorf("days to analyze cannot exceed %d days", MaxDaysToAnalyze)
	}
	if _, err := datasource.ISO8601Interval(c.MetricInterval); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if math.IsNaN(c.MetricsQPS) || math.IsInf(c.MetricsQPS, 0) || c.MetricsQPS < 0 {
		return fmt.Errorf("metrics QPS must be a finite number >= 0")
	}

	switch c.OutputFormat {
	case "table", "json", "yaml", "csv":
	default:
		return fmt.Errorf("output must be table, json, yaml or csv, got %q", c.OutputFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
