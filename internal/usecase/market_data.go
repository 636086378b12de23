package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	"MarketFeed/pkg/cache"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/util"
)

const (
	defaultNewsLimit = 5
	// ProviderFMP names the aggregated FMP/Polygon/FRED provider.
	ProviderFMP = "fmp"
)

// MarketDataConfig gates each data source and sets the cache lifetime.
type MarketDataConfig struct {
	Enabled        bool
	FMPEnabled     bool
	PolygonEnabled bool
	FREDEnabled    bool
	CacheTTL       time.Duration
}

// DefaultMarketDataConfig enables everything with a 15 minute cache.
func DefaultMarketDataConfig() MarketDataConfig {
	return MarketDataConfig{
		Enabled:        true,
		FMPEnabled:     true,
		PolygonEnabled: true,
		FREDEnabled:    true,
		CacheTTL:       15 * time.Minute,
	}
}

// Sources bundles the vendor clients; a nil field means the vendor has no API key.
type Sources struct {
	Quotes       drepo.QuoteSource
	Fundamentals drepo.FundamentalsSource
	News         drepo.NewsSource
	Economy      drepo.EconomicSource
}

// KeyIndicator is one of the headline FRED series.
type KeyIndicator struct {
	Key    string
	Symbol string
	Name   string
}

// KeyIndicators lists the headline series in display order.
var KeyIndicators = []KeyIndicator{
	{"treasury_10y", "DGS10", "10-Year Treasury Rate"},
	{"treasury_2y", "DGS2", "2-Year Treasury Rate"},
	{"fed_funds", "FEDFUNDS", "Federal Funds Rate"},
	{"unemployment", "UNRATE", "Unemployment Rate"},
	{"cpi", "CPIAUCSL", "Consumer Price Index"},
	{"gdp", "GDP", "Gross Domestic Product"},
	{"sp500", "SP500", "S&P 500"},
}

// MarketData serves prices and fundamentals from FMP, news from Polygon and
// economic series from FRED, all behind one TTL cache.
type MarketData struct {
	*priceEngine
	cfg          MarketDataConfig
	fundamentals drepo.FundamentalsSource
	news         drepo.NewsSource
	economy      drepo.EconomicSource
}

var _ drepo.MarketDataProvider = (*MarketData)(nil)

// MarketDataOption configures MarketData.
type MarketDataOption func(*MarketData)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MarketDataOption {
	return func(m *MarketData) { m.now = now }
}

// NewMarketData creates the aggregated provider.
func NewMarketData(cfg MarketDataConfig, src Sources, c cache.Service, metrics drepo.Metrics, logger *applogger.Logger, opts ...MarketDataOption) *MarketData {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	logger = logger.With("market_data")

	m := &MarketData{
		cfg:          cfg,
		fundamentals: src.Fundamentals,
		news:         src.News,
		economy:      src.Economy,
	}
	m.priceEngine = &priceEngine{
		name:    ProviderFMP,
		quotes:  src.Quotes,
		memo:    &memo{cache: c, ttl: cfg.CacheTTL, metrics: metrics, logger: logger},
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		available: func() bool {
			return m.FMPAvailable()
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info("market data provider initialized",
		applogger.Bool("fmp", m.FMPAvailable()),
		applogger.Bool("polygon", m.PolygonAvailable()),
		applogger.Bool("fred", m.FREDAvailable()),
		applogger.Duration("cache_ttl_ms", cfg.CacheTTL),
	)
	return m
}

// FMPAvailable reports whether price and fundamentals calls can be made.
func (m *MarketData) FMPAvailable() bool {
	return m.cfg.Enabled && m.cfg.FMPEnabled && m.quotes != nil
}

// PolygonAvailable reports whether news calls can be made.
func (m *MarketData) PolygonAvailable() bool {
	return m.cfg.Enabled && m.cfg.PolygonEnabled && m.news != nil
}

// FREDAvailable reports whether economic series calls can be made.
func (m *MarketData) FREDAvailable() bool {
	return m.cfg.Enabled && m.cfg.FREDEnabled && m.economy != nil
}

// GetCompanyProfile returns the profile with vendor gaps filled by defaults.
func (m *MarketData) GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	if !m.FMPAvailable() || m.fundamentals == nil {
		return nil, drepo.ErrDisabled
	}
	ticker = normalizeTicker(ticker)

	p, err := remember(ctx, m.memo, "profile", cache.GenerateKey("profile", ticker), func() (*models.CompanyProfile, error) {
		p, err := m.fundamentals.Profile(ctx, ticker)
		if err != nil {
			return nil, err
		}
		out := *p
		out.Name = orDefault(out.Name, ticker)
		out.Sector = orDefault(out.Sector, "Unknown")
		out.Industry = orDefault(out.Industry, "Unknown")
		return &out, nil
	})
	if err != nil {
		logFailure(m.logger, "failed to get company profile", ticker, err)
		return nil, err
	}
	return p, nil
}

// GetFinancialSummary returns the latest income statement figures.
func (m *MarketData) GetFinancialSummary(ctx context.Context, ticker string) (*models.FinancialSummary, error) {
	if !m.FMPAvailable() || m.fundamentals == nil {
		return nil, drepo.ErrDisabled
	}
	ticker = normalizeTicker(ticker)

	f, err := remember(ctx, m.memo, "financials", cache.GenerateKey("financials", ticker), func() (*models.FinancialSummary, error) {
		return m.fundamentals.IncomeStatement(ctx, ticker)
	})
	if err != nil {
		logFailure(m.logger, "failed to get financials", ticker, err)
		return nil, err
	}
	return f, nil
}

// GetMarketContext returns price, day and week change plus company identity when known.
func (m *MarketData) GetMarketContext(ctx context.Context, ticker string) (*models.MarketContext, error) {
	var profile func(context.Context, string) (*models.CompanyProfile, error)
	if m.fundamentals != nil {
		profile = m.GetCompanyProfile
	}
	return m.marketContext(ctx, ticker, profile)
}

// InvalidateTicker drops cached prices, fundamentals and news for ticker.
func (m *MarketData) InvalidateTicker(ctx context.Context, ticker string) error {
	if err := m.priceEngine.InvalidateTicker(ctx, ticker); err != nil {
		return err
	}
	return m.memo.forget(ctx, normalizeTicker(ticker), "profile", "financials", "news")
}

// GetNews returns up to limit recent articles for ticker.
func (m *MarketData) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	if !m.PolygonAvailable() {
		return nil, drepo.ErrDisabled
	}
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	ticker = normalizeTicker(ticker)

	items, err := remember(ctx, m.memo, "news", cache.GenerateKeyWithParams("news", ticker, limit), func() ([]models.NewsItem, error) {
		raw, err := m.news.CompanyNews(ctx, ticker, limit)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("news %s: %w", ticker, drepo.ErrNoData)
		}
		out := make([]models.NewsItem, 0, len(raw))
		for _, r := range raw {
			tickers := r.Tickers
			if tickers == nil {
				tickers = []string{}
			}
			out = append(out, models.NewsItem{
				Title:       r.Title,
				Publisher:   r.Publisher,
				PublishedAt: r.PublishedUTC,
				URL:         orDefault(r.URL, r.ArticleURL),
				Tickers:     tickers,
			})
		}
		return out, nil
	})
	if err != nil {
		logFailure(m.logger, "failed to get news", ticker, err)
		return nil, err
	}
	return items, nil
}

// GetEconomicIndicator returns the latest observation of a FRED series and
// its percent change from the previous one.
func (m *MarketData) GetEconomicIndicator(ctx context.Context, symbol, name string) (*models.EconomicIndicator, error) {
	if !m.FREDAvailable() {
		return nil, drepo.ErrDisabled
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		name = symbol
	}

	ind, err := remember(ctx, m.memo, "fred", cache.GenerateKey("fred", symbol), func() (*models.EconomicIndicator, error) {
		obs, err := m.economy.Observations(ctx, symbol, 2)
		if err != nil {
			return nil, err
		}
		if len(obs) == 0 {
			return nil, fmt.Errorf("fred %s: %w", symbol, drepo.ErrNoData)
		}
		latest := obs[len(obs)-1]
		ind := &models.EconomicIndicator{
			Symbol: symbol,
			Name:   name,
			Value:  latest.Value,
			Date:   latest.Date,
		}
		if len(obs) >= 2 {
			if pct, ok := util.PercentChange(obs[len(obs)-2].Value, latest.Value); ok {
				pct = util.Round2(pct)
				ind.ChangePct = &pct
			}
		}
		return ind, nil
	})
	if err != nil {
		logFailure(m.logger, "failed to get economic indicator", symbol, err)
		return nil, err
	}
	m.metrics.RecordIndicator(symbol, ind.Value)
	return ind, nil
}

// GetKeyEconomicIndicators fetches every headline series; failed series map to nil.
func (m *MarketData) GetKeyEconomicIndicators(ctx context.Context) map[string]*models.EconomicIndicator {
	out := make(map[string]*models.EconomicIndicator, len(KeyIndicators))
	if !m.FREDAvailable() {
		return out
	}
	for _, k := range KeyIndicators {
		ind, err := m.GetEconomicIndicator(ctx, k.Symbol, k.Name)
		if err != nil {
			out[k.Key] = nil
			continue
		}
		out[k.Key] = ind
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
