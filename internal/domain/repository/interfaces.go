package repository

import (
	"context"
	"time"

	"MarketFeed/internal/domain/models"
)

// QuoteSource serves latest quotes and daily closes for equities.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (*models.Quote, error)
	History(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error)
}

// FundamentalsSource serves company profiles and income statements.
type FundamentalsSource interface {
	Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
	IncomeStatement(ctx context.Context, ticker string) (*models.FinancialSummary, error)
}

// NewsSource serves company news.
type NewsSource interface {
	CompanyNews(ctx context.Context, ticker string, limit int) ([]models.VendorNews, error)
}

// EconomicSource serves economic series observations, oldest first.
type EconomicSource interface {
	Observations(ctx context.Context, symbol string, limit int) ([]models.Observation, error)
}

// MarketDataProvider is the price surface shared by every provider implementation.
type MarketDataProvider interface {
	Name() string
	GetPrice(ctx context.Context, ticker string, date *time.Time) (float64, error)
	GetPriceChange(ctx context.Context, ticker string, start time.Time, end *time.Time) (float64, error)
	GetIntradayChange(ctx context.Context, ticker string) (float64, error)
	GetHistoricalPrices(ctx context.Context, ticker string, days int) (map[string]float64, error)
	GetMarketContext(ctx context.Context, ticker string) (*models.MarketContext, error)
	IsSignificantMove(ctx context.Context, ticker string, thresholdPct float64, days int) (bool, error)
	CleanCache() int
	InvalidateTicker(ctx context.Context, ticker string) error
}

// AlertSink receives generated alert records.
type AlertSink interface {
	PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error
}

type Metrics interface {
	RecordCacheLookup(operation string, hit bool)
	RecordUpstream(source, operation string, d time.Duration, err error)
	RecordAlert(kind, severity string)
	RecordIndicator(symbol string, value float64)
	RecordLastPrice(ticker string, price float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordCacheLookup(string, bool)                      {}
func (NopMetrics) RecordUpstream(string, string, time.Duration, error) {}
func (NopMetrics) RecordAlert(string, string)                          {}
func (NopMetrics) RecordIndicator(string, float64)                     {}
func (NopMetrics) RecordLastPrice(string, float64)                     {}
