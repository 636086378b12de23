package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	"MarketFeed/pkg/cache"
	applogger "MarketFeed/pkg/logger"
)

// ProviderYahoo names the Yahoo Finance fallback provider.
const ProviderYahoo = "yahoo"

// YahooProvider is the fallback price provider. It has no fundamentals,
// news or economic data.
type YahooProvider struct {
	*priceEngine
	enabled bool
}

var _ drepo.MarketDataProvider = (*YahooProvider)(nil)

// NewYahooProvider creates the fallback provider; it shares c with other providers under its own key namespace.
func NewYahooProvider(enabled bool, quotes drepo.QuoteSource, c cache.Service, ttl time.Duration, metrics drepo.Metrics, logger *applogger.Logger) *YahooProvider {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	logger = logger.With("yahoo_provider")

	y := &YahooProvider{enabled: enabled}
	y.priceEngine = &priceEngine{
		name:    ProviderYahoo,
		quotes:  quotes,
		memo:    &memo{cache: c, prefix: ProviderYahoo, ttl: ttl, metrics: metrics, logger: logger},
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		available: func() bool {
			return y.enabled && y.quotes != nil
		},
	}
	return y
}

// GetMarketContext returns price, day and week change. Company identity comes from the quote name.
func (y *YahooProvider) GetMarketContext(ctx context.Context, ticker string) (*models.MarketContext, error) {
	return y.marketContext(ctx, ticker, y.companyName)
}

// companyName caches the quote's display name under name:{T}.
func (y *YahooProvider) companyName(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	ticker = normalizeTicker(ticker)
	return remember(ctx, y.memo, "name", cache.GenerateKeyWithParams("name", ticker), func() (*models.CompanyProfile, error) {
		q, err := y.quotes.Quote(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if q.Name == "" {
			return nil, fmt.Errorf("quote name %s: %w", ticker, drepo.ErrNoData)
		}
		return &models.CompanyProfile{Name: q.Name}, nil
	})
}
