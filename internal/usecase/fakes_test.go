package usecase

import (
	"context"
	"sync"
	"time"

	"MarketFeed/internal/domain/models"
	"MarketFeed/pkg/cache"
)

type fakeQuotes struct {
	mu           sync.Mutex
	quote        *models.Quote
	quoteErr     error
	history      []models.PricePoint
	historyErr   error
	quoteCalls   int
	historyCalls int
	lastFrom     time.Time
}

func (f *fakeQuotes) Quote(_ context.Context, ticker string) (*models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	q.Ticker = ticker
	return &q, nil
}

func (f *fakeQuotes) History(_ context.Context, _ string, from, _ time.Time) ([]models.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	f.lastFrom = from
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

type fakeFundamentals struct {
	profile    *models.CompanyProfile
	financials *models.FinancialSummary
	err        error
}

func (f *fakeFundamentals) Profile(context.Context, string) (*models.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeFundamentals) IncomeStatement(context.Context, string) (*models.FinancialSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.financials, nil
}

type fakeNews struct {
	items []models.VendorNews
	err   map[string]error
	calls []string
}

func (f *fakeNews) CompanyNews(_ context.Context, ticker string, limit int) ([]models.VendorNews, error) {
	f.calls = append(f.calls, ticker)
	if err := f.err[ticker]; err != nil {
		return nil, err
	}
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

// fakeEconomy serves a scripted sequence of observation sets per symbol.
type fakeEconomy struct {
	series map[string][][]models.Observation
	errs   map[string]error
	calls  map[string]int
}

func newFakeEconomy() *fakeEconomy {
	return &fakeEconomy{
		series: make(map[string][][]models.Observation),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeEconomy) push(symbol string, values ...float64) {
	obs := make([]models.Observation, 0, len(values))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		obs = append(obs, models.Observation{Date: base.AddDate(0, 0, i+len(f.series[symbol])), Value: v})
	}
	f.series[symbol] = append(f.series[symbol], obs)
}

func (f *fakeEconomy) Observations(_ context.Context, symbol string, _ int) ([]models.Observation, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	sets := f.series[symbol]
	if len(sets) == 0 {
		return nil, nil
	}
	i := f.calls[symbol]
	f.calls[symbol]++
	if i >= len(sets) {
		i = len(sets) - 1
	}
	return sets[i], nil
}

type recordingSink struct {
	batches [][]models.AlertRecord
	err     error
}

func (s *recordingSink) PublishAlerts(_ context.Context, alerts []models.AlertRecord) error {
	s.batches = append(s.batches, alerts)
	return s.err
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryCache(clock *testClock) *cache.MemoryCache {
	return cache.NewMemoryCache(
		cache.WithMemoryClock(clock.Now),
		cache.WithMemoryCleanup(0),
	)
}
