package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"MarketFeed/internal/di"
	"MarketFeed/internal/domain/models"
	"MarketFeed/internal/usecase"
	"MarketFeed/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEconomy struct{}

func (staticEconomy) Observations(context.Context, string, int) ([]models.Observation, error) {
	return []models.Observation{
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Value: 4.25},
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Value: 4.33},
	}, nil
}

func newTestToolkit(src usecase.Sources) *di.Toolkit {
	c := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	md := usecase.NewMarketData(usecase.DefaultMarketDataConfig(), src, c, nil, nil)
	yahoo := usecase.NewYahooProvider(true, nil, c, time.Minute, nil, nil)
	monitor := usecase.NewEconomicMonitor(src.Economy != nil, src.Economy, nil, nil)
	return &di.Toolkit{
		Provider:   usecase.NewMarketDataProvider("yfinance", md, yahoo, nil),
		MarketData: md,
		Alerts:     usecase.NewAlertManager(monitor, nil, nil),
	}
}

func TestRunEconomyPrintsSummary(t *testing.T) {
	var out bytes.Buffer
	tk := newTestToolkit(usecase.Sources{Economy: staticEconomy{}})

	require.NoError(t, runEconomy(context.Background(), &out, tk))
	text := out.String()
	assert.Contains(t, text, "Key economic indicators")
	assert.Contains(t, text, "Watched indicators")
	assert.Contains(t, text, "Federal Funds Rate")
	assert.Contains(t, text, "4.33")
	assert.Contains(t, text, "2025-01-02")
	assert.NotContains(t, text, "no alerts")
}

func TestRunEconomyWithoutFRED(t *testing.T) {
	var out bytes.Buffer
	err := runEconomy(context.Background(), &out, newTestToolkit(usecase.Sources{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FRED_API_KEY")
	assert.Empty(t, out.String())
}

func TestRunDemoReportsUnavailableProvider(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDemo(context.Background(), &out, newTestToolkit(usecase.Sources{}), []string{" aapl "}, 5))
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "market context unavailable")
}
