package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Azure Retail Prices API
const azurePricingAPI = "https://prices.azure.com/api/retail/prices"

// maxPages bounds NextPageLink following for a single lookup
const maxPages = 5

// ErrPriceNotFound means no Linux pay-as-you-go meter matched the VM size
var ErrPriceNotFound = errors.New("no matching price")

// AzureProvider looks up pay-as-you-go Linux VM prices
type AzureProvider struct {
	baseURL    string
	currency   string
	cache      *PriceCache
	httpClient *http.Client
	logger     zerolog.Logger
}

type azurePriceResponse struct {
	Items        []azurePriceItem `json:"Items"`
	NextPageLink string           `json:"NextPageLink"`
}

type azurePriceItem struct {
	CurrencyCode  string  `json:"currencyCode"`
	RetailPrice   float64 `json:"retailPrice"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	ServiceName   string  `json:"serviceName"`
	ProductName   string  `json:"productName"`
	SkuName       string  `json:"skuName"`
	MeterName     string  `json:"meterName"`
	ArmSkuName    string  `json:"armSkuName"`
	ArmRegionName string  `json:"armRegionName"`
	Type          string  `json:"type"`
}

func NewAzureProvider(cfg Config, logger zerolog.Logger) *AzureProvider {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	return &AzureProvider{
		baseURL:  cfg.BaseURL,
		currency: cfg.Currency,
		cache:    NewPriceCache(cfg.CacheTTL),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("provider", "azure-retail-prices").Logger(),
	}
}

func (a *AzureProvider) Name() string {
	return "azure-retail-prices"
}

// HourlyPrice returns the lowest Linux pay-as-you-go price for size in region
func (a *AzureProvider) HourlyPrice(ctx context.Context, region, size string) (*models.CostEstimate, error) {
	if region == "" || size == "" || strings.EqualFold(size, "Unknown") {
		return nil, fmt.Errorf("%w: region %q size %q", ErrPriceNotFound, region, size)
	}

	if cached := a.cache.Get(region, size); cached != nil {
		return cached, nil
	}

	items, err := a.fetchAzurePricing(ctx, region, size)
	if err != nil {
		return nil, err
	}

	best := lowestPrice(items, a.currency)
	if best == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrPriceNotFound, size, region)
	}

	estimate := &models.CostEstimate{
		HourlyPrice:  best.RetailPrice,
		MonthlyPrice: best.RetailPrice * models.HoursPerMonth,
		Currency:     best.CurrencyCode,
		Meter:        best.MeterName,
	}

	// Cache for 24 hours by default
	a.cache.Set(region, size, estimate)
	return estimate, nil
}

func (a *AzureProvider) fetchAzurePricing(ctx context.Context, region, size string) ([]azurePriceItem, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Virtual Machines' and armRegionName eq '%s' and armSkuName eq '%s' and priceType eq 'Consumption'",
		region, size,
	)
	query := url.Values{}
	query.Set("currencyCode", a.currency)
	query.Set("$filter", filter)
	next := a.baseURL + "?" + query.Encode()

	var items []azurePriceItem
	for page := 0; next != "" && page < maxPages; page++ {
		resp, err := a.get(ctx, next)
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)
		next = resp.NextPageLink
	}
	if next != "" {
		a.logger.Debug().
			Str("size", size).
			Str("region", region).
			Int("pages", maxPages).
			Int("items", len(items)).
			Msg("Price lookup truncated at page limit, lowest price may be missed")
	}
	return items, nil
}

func (a *AzureProvider) get(ctx context.Context, target string) (*azurePriceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure pricing API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure pricing API returned status %d", resp.StatusCode)
	}

	var priceResp azurePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return nil, fmt.Errorf("failed to decode azure pricing response: %w", err)
	}
	return &priceResp, nil
}

// lowestPrice skips Windows, Spot and Low Priority meters
func lowestPrice(items []azurePriceItem, currency string) *azurePriceItem {
	var best *azurePriceItem
	for i := range items {
		item := &items[i]
		if item.Type != "" && item.Type != "Consumption" {
			continue
		}
		if !strings.EqualFold(item.CurrencyCode, currency) || item.RetailPrice <= 0 {
			continue
		}
		if strings.Contains(item.ProductName, "Windows") ||
			strings.Contains(item.SkuName, "Spot") ||
			strings.Contains(item.SkuName, "Low Priority") ||
			strings.Contains(item.MeterName, "Low Priority") {
			continue
		}
		if best == nil || item.RetailPrice < best.RetailPrice {
			best = item
		}
	}
	return best
}
