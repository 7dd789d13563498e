package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

func priceServer(t *testing.T, pages ...azurePriceResponse) (*httptest.Server, *int32, *[]string) {
	t.Helper()
	var calls int32
	var filters []string

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		filters = append(filters, r.URL.Query().Get("$filter"))
		if n >= len(pages) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		page := pages[n]
		if page.NextPageLink == "next" {
			page.NextPageLink = srv.URL + "/next"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &filters
}

func item(product, sku, meter string, price float64) azurePriceItem {
	return azurePriceItem{
		CurrencyCode:  "USD",
		RetailPrice:   price,
		UnitOfMeasure: "1 Hour",
		ServiceName:   "Virtual Machines",
		ProductName:   product,
		SkuName:       sku,
		MeterName:     meter,
		ArmSkuName:    "Standard_D2s_v3",
		ArmRegionName: "eastus",
		Type:          "Consumption",
	}
}

func TestHourlyPriceLowestLinuxMeter(t *testing.T) {
	srv, calls, filters := priceServer(t,
		azurePriceResponse{
			Items: []azurePriceItem{
				item("Virtual Machines DSv3 Series Windows", "D2s v3", "D2s v3", 0.188),
				item("Virtual Machines DSv3 Series", "D2s v3 Spot", "D2s v3 Spot", 0.019),
				item("Virtual Machines DSv3 Series", "D2s v3 Low Priority", "D2s v3 Low Priority", 0.0192),
			},
			NextPageLink: "next",
		},
		azurePriceResponse{
			Items: []azurePriceItem{
				item("Virtual Machines DSv3 Series", "D2s v3", "D2s v3", 0.096),
			},
		},
	)

	provider := NewAzureProvider(Config{BaseURL: srv.URL}, zerolog.Nop())
	estimate, err := provider.HourlyPrice(context.Background(), "eastus", "Standard_D2s_v3")
	require.NoError(t, err)

	assert.Equal(t, 0.096, estimate.HourlyPrice)
	assert.InDelta(t, 70.08, estimate.MonthlyPrice, 1e-9)
	assert.Equal(t, "USD", estimate.Currency)
	assert.Equal(t, "D2s v3", estimate.Meter)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	require.NotEmpty(t, *filters)
	assert.Contains(t, (*filters)[0], "serviceName eq 'Virtual Machines'")
	assert.Contains(t, (*filters)[0], "armRegionName eq 'eastus'")
	assert.Contains(t, (*filters)[0], "armSkuName eq 'Standard_D2s_v3'")
	assert.Contains(t, (*filters)[0], "priceType eq 'Consumption'")
}

func TestHourlyPricePageLimit(t *testing.T) {
	var pages []azurePriceResponse
	for i := 0; i < maxPages+1; i++ {
		pages = append(pages, azurePriceResponse{
			Items:        []azurePriceItem{item("Virtual Machines DSv3 Series", "D2s v3", "D2s v3", 0.1+float64(i)/100)},
			NextPageLink: "next",
		})
	}
	srv, calls, _ := priceServer(t, pages...)

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	provider := NewAzureProvider(Config{BaseURL: srv.URL}, logger)

	estimate, err := provider.HourlyPrice(context.Background(), "eastus", "Standard_D2s_v3")
	require.NoError(t, err)
	assert.Equal(t, 0.1, estimate.HourlyPrice)
	assert.Equal(t, int32(maxPages), atomic.LoadInt32(calls))
	assert.Contains(t, logs.String(), "truncated at page limit")
	assert.Contains(t, logs.String(), `"size":"Standard_D2s_v3"`)
}

func TestHourlyPriceCached(t *testing.T) {
	srv, calls, _ := priceServer(t,
		azurePriceResponse{Items: []azurePriceItem{item("Virtual Machines DSv3 Series", "D2s v3", "D2s v3", 0.096)}},
	)

	provider := NewAzureProvider(Config{BaseURL: srv.URL}, zerolog.Nop())
	for i := 0; i < 3; i++ {
		_, err := provider.HourlyPrice(context.Background(), "eastus", "Standard_D2s_v3")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestHourlyPriceNotFound(t *testing.T) {
	srv, _, _ := priceServer(t,
		azurePriceResponse{Items: []azurePriceItem{item("Virtual Machines DSv3 Series Windows", "D2s v3", "D2s v3", 0.188)}},
	)

	provider := NewAzureProvider(Config{BaseURL: srv.URL}, zerolog.Nop())
	_, err := provider.HourlyPrice(context.Background(), "eastus", "Standard_D2s_v3")
	assert.True(t, errors.Is(err, ErrPriceNotFound))

	_, err = provider.HourlyPrice(context.Background(), "eastus", "Unknown")
	assert.True(t, errors.Is(err, ErrPriceNotFound))
}

func TestHourlyPriceAPIError(t *testing.T) {
	srv, _, _ := priceServer(t)

	provider := NewAzureProvider(Config{BaseURL: srv.URL}, zerolog.Nop())
	_, err := provider.HourlyPrice(context.Background(), "eastus", "Standard_D2s_v3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPriceCacheExpiry(t *testing.T) {
	cache := NewPriceCache(time.Hour)
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("EastUS", "Standard_B2s", &models.CostEstimate{HourlyPrice: 0.0416})
	require.NotNil(t, cache.Get("eastus", "standard_b2s"), "keys are case-insensitive")

	now = now.Add(2 * time.Hour)
	assert.Nil(t, cache.Get("eastus", "Standard_B2s"))

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

type fakeProvider struct {
	prices map[string]float64
}

func (f *fakeProvider) HourlyPrice(ctx context.Context, region, size string) (*models.CostEstimate, error) {
	price, ok := f.prices[size]
	if !ok {
		return nil, ErrPriceNotFound
	}
	return &models.CostEstimate{HourlyPrice: price, MonthlyPrice: price * models.HoursPerMonth, Currency: "USD"}, nil
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func TestAnnotate(t *testing.T) {
	results := []models.Result{
		{VM: models.VirtualMachine{Name: "a", Size: "Standard_D2s_v3"}, Recommendation: models.RecommendationDownsize},
		{VM: models.VirtualMachine{Name: "b", Size: "Standard_D4s_v3"}, Recommendation: models.RecommendationOK},
		{VM: models.VirtualMachine{Name: "c", Size: "Standard_Odd"}, Recommendation: models.RecommendationDownsize},
		{VM: models.VirtualMachine{Name: "d", Size: "Standard_D2s_v3"}, Recommendation: models.RecommendationDownsize},
	}
	provider := &fakeProvider{prices: map[string]float64{"Standard_D2s_v3": 0.1, "Standard_D4s_v3": 0.2}}

	Annotate(context.Background(), provider, results, zerolog.Nop())

	require.NotNil(t, results[0].Cost)
	require.NotNil(t, results[1].Cost)
	assert.Nil(t, results[2].Cost, "failed lookup leaves the estimate empty")
	assert.InDelta(t, 73.0, results[0].Cost.MonthlyPrice, 1e-9)
}
