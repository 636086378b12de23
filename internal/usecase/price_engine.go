package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	"MarketFeed/pkg/cache"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/util"
)

const (
	defaultHistoryDays  = 30
	defaultThresholdPct = 2.0
	weekLookback        = 7 * 24 * time.Hour
)

// priceEngine implements the price half of MarketDataProvider over a single QuoteSource.
type priceEngine struct {
	name      string
	quotes    drepo.QuoteSource
	memo      *memo
	logger    *applogger.Logger
	metrics   drepo.Metrics
	now       func() time.Time
	available func() bool
}

func (e *priceEngine) Name() string { return e.name }

// GetPrice returns the last traded price. date only scopes the cache entry.
func (e *priceEngine) GetPrice(ctx context.Context, ticker string, date *time.Time) (float64, error) {
	if !e.available() {
		return 0, drepo.ErrDisabled
	}
	ticker = normalizeTicker(ticker)
	at := "latest"
	if date != nil {
		at = util.FormatDate(*date)
	}

	price, err := remember(ctx, e.memo, "price", cache.GenerateKeyWithParams("price", ticker, at), func() (float64, error) {
		q, err := e.quotes.Quote(ctx, ticker)
		if err != nil {
			return 0, err
		}
		if q.Price <= 0 {
			return 0, fmt.Errorf("quote %s: %w", ticker, drepo.ErrNoData)
		}
		e.logger.Debug("got price", applogger.String("ticker", ticker), applogger.Float64("price", q.Price), applogger.String("provider", e.name))
		return q.Price, nil
	})
	if err != nil {
		logFailure(e.logger, "failed to get price", ticker, err)
		return 0, err
	}
	e.metrics.RecordLastPrice(ticker, price)
	return price, nil
}

// GetPriceChange returns the percent change between the first and last close in [start, end].
func (e *priceEngine) GetPriceChange(ctx context.Context, ticker string, start time.Time, end *time.Time) (float64, error) {
	if !e.available() {
		return 0, drepo.ErrDisabled
	}
	ticker = normalizeTicker(ticker)
	to := e.now()
	if end != nil {
		to = *end
	}

	key := cache.GenerateKeyWithParams("change", ticker, util.FormatDate(start), util.FormatDate(to))
	change, err := remember(ctx, e.memo, "change", key, func() (float64, error) {
		pts, err := e.quotes.History(ctx, ticker, start, to)
		if err != nil {
			return 0, err
		}
		if len(pts) < 2 {
			return 0, fmt.Errorf("price change %s: need at least two closes, got %d: %w", ticker, len(pts), drepo.ErrNoData)
		}
		first, last := pts[0].Close, pts[len(pts)-1].Close
		if first <= 0 {
			return 0, fmt.Errorf("price change %s: non-positive first close: %w", ticker, drepo.ErrNoData)
		}
		pct, _ := util.PercentChange(first, last)
		return util.Round2(pct), nil
	})
	if err != nil {
		logFailure(e.logger, "failed to get price change", ticker, err)
		return 0, err
	}
	return change, nil
}

// GetIntradayChange returns today's percent change as reported by the quote.
func (e *priceEngine) GetIntradayChange(ctx context.Context, ticker string) (float64, error) {
	if !e.available() {
		return 0, drepo.ErrDisabled
	}
	ticker = normalizeTicker(ticker)

	key := cache.GenerateKeyWithParams("intraday", ticker, util.FormatDate(e.now()))
	change, err := remember(ctx, e.memo, "intraday", key, func() (float64, error) {
		q, err := e.quotes.Quote(ctx, ticker)
		if err != nil {
			return 0, err
		}
		return util.Round2(q.ChangePct), nil
	})
	if err != nil {
		logFailure(e.logger, "failed to get intraday change", ticker, err)
		return 0, err
	}
	return change, nil
}

// GetHistoricalPrices maps YYYY-MM-DD to the rounded close for the last days days.
func (e *priceEngine) GetHistoricalPrices(ctx context.Context, ticker string, days int) (map[string]float64, error) {
	if !e.available() {
		return nil, drepo.ErrDisabled
	}
	if days <= 0 {
		days = defaultHistoryDays
	}
	ticker = normalizeTicker(ticker)

	key := cache.GenerateKeyWithParams("history", ticker, days)
	prices, err := remember(ctx, e.memo, "history", key, func() (map[string]float64, error) {
		to := e.now()
		from := to.AddDate(0, 0, -days)
		pts, err := e.quotes.History(ctx, ticker, from, to)
		if err != nil {
			return nil, err
		}
		if len(pts) == 0 {
			return nil, fmt.Errorf("history %s: %w", ticker, drepo.ErrNoData)
		}
		out := make(map[string]float64, len(pts))
		for _, p := range pts {
			out[util.FormatDate(p.Date)] = util.Round2(p.Close)
		}
		return out, nil
	})
	if err != nil {
		logFailure(e.logger, "failed to get historical prices", ticker, err)
		return nil, err
	}
	return prices, nil
}

// IsSignificantMove reports whether |change| over days reaches thresholdPct.
// days <= 1 uses the intraday change.
func (e *priceEngine) IsSignificantMove(ctx context.Context, ticker string, thresholdPct float64, days int) (bool, error) {
	if !e.available() {
		return false, drepo.ErrDisabled
	}
	if thresholdPct <= 0 {
		thresholdPct = defaultThresholdPct
	}

	var (
		change float64
		err    error
	)
	if days <= 1 {
		change, err = e.GetIntradayChange(ctx, ticker)
	} else {
		change, err = e.GetPriceChange(ctx, ticker, e.now().AddDate(0, 0, -days), nil)
	}
	if err != nil {
		return false, err
	}
	return math.Abs(change) >= thresholdPct, nil
}

// marketContext builds the context record; profile may be nil when no profile source is usable.
func (e *priceEngine) marketContext(ctx context.Context, ticker string, profile func(context.Context, string) (*models.CompanyProfile, error)) (*models.MarketContext, error) {
	if !e.available() {
		return nil, drepo.ErrDisabled
	}
	price, err := e.GetPrice(ctx, ticker, nil)
	if err != nil {
		return nil, err
	}

	mc := &models.MarketContext{
		CurrentPrice: util.Round2(price),
		Timestamp:    e.now().Format(time.RFC3339),
		Provider:     e.name,
	}
	if day, err := e.GetIntradayChange(ctx, ticker); err == nil {
		mc.DayChangePct = &day
	}
	if week, err := e.GetPriceChange(ctx, ticker, e.now().Add(-weekLookback), nil); err == nil {
		mc.WeekChangePct = &week
	}
	if profile != nil {
		if p, err := profile(ctx, ticker); err == nil && p != nil {
			mc.CompanyName = p.Name
			mc.Sector = p.Sector
			mc.Industry = p.Industry
		}
	}
	return mc, nil
}

// priceOps are the cached operations keyed by ticker.
var priceOps = []string{"price", "change", "intraday", "history", "name"}

// CleanCache drops expired entries and returns how many were removed.
func (e *priceEngine) CleanCache() int {
	n := e.memo.clean()
	if n > 0 {
		fields := []applogger.Field{applogger.Int("removed", n)}
		if left, ok := e.memo.size(); ok {
			fields = append(fields, applogger.Int("remaining", left))
		}
		e.logger.Debug("cache cleaned", fields...)
	}
	return n
}

// InvalidateTicker drops every cached price entry for ticker.
func (e *priceEngine) InvalidateTicker(ctx context.Context, ticker string) error {
	ticker = normalizeTicker(ticker)
	if err := e.memo.forget(ctx, ticker, priceOps...); err != nil {
		e.logger.Warn("cache invalidation failed", applogger.String("ticker", ticker), applogger.Error(err))
		return err
	}
	e.logger.Debug("cache invalidated", applogger.String("ticker", ticker), applogger.String("provider", e.name))
	return nil
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
