package pricing

import (
	"context"
	"time"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Provider looks up the list price of a VM size
type Provider interface {
	HourlyPrice(ctx context.Context, region, size string) (*models.CostEstimate, error)
	Name() string
}

type Config struct {
	BaseURL  string
	Currency string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// DefaultConfig targets the public Azure Retail Prices API
func DefaultConfig() Config {
	return Config{
		BaseURL:  azurePricingAPI,
		Currency: "USD",
		CacheTTL: 24 * time.Hour,
		Timeout:  10 * time.Second,
	}
}
