package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
)

const source = "yahoo"

// QuoteFunc fetches one quote; quote.Get by default.
type QuoteFunc func(symbol string) (*finance.Quote, error)

// ChartFunc fetches daily bars; chart.Get by default.
type ChartFunc func(symbol string, from, to time.Time) ([]models.PricePoint, error)

// Client serves quotes and daily history from Yahoo Finance.
type Client struct {
	quote   QuoteFunc
	chart   ChartFunc
	metrics drepo.Metrics
	now     func() time.Time
}

var _ drepo.QuoteSource = (*Client)(nil)

// New creates a Yahoo Finance client.
func New(metrics drepo.Metrics) *Client {
	return NewWithFuncs(quote.Get, fetchChart, metrics)
}

// NewWithFuncs creates a client over custom fetchers.
func NewWithFuncs(q QuoteFunc, c ChartFunc, metrics drepo.Metrics) *Client {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	return &Client{quote: q, chart: c, metrics: metrics, now: time.Now}
}

// Quote returns the latest quote for ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	symbol := strings.ToUpper(ticker)
	q, err := call(ctx, c.metrics, "quote", func() (*finance.Quote, error) { return c.quote(symbol) })
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w: %w", symbol, drepo.ErrUpstream, err)
	}
	if q == nil || q.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, drepo.ErrNoData)
	}

	ts := c.now()
	if q.RegularMarketTime > 0 {
		ts = time.Unix(int64(q.RegularMarketTime), 0)
	}
	return &models.Quote{
		Ticker:    symbol,
		Name:      q.ShortName,
		Price:     q.RegularMarketPrice,
		ChangePct: q.RegularMarketChangePercent,
		Volume:    int64(q.RegularMarketVolume),
		Timestamp: ts,
	}, nil
}

// History returns daily closes between from and to, oldest first.
func (c *Client) History(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	symbol := strings.ToUpper(ticker)
	pts, err := call(ctx, c.metrics, "history", func() ([]models.PricePoint, error) { return c.chart(symbol, from, to) })
	if err != nil {
		return nil, fmt.Errorf("yahoo history %s: %w: %w", symbol, drepo.ErrUpstream, err)
	}
	return pts, nil
}

func fetchChart(symbol string, from, to time.Time) ([]models.PricePoint, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	pts := make([]models.PricePoint, 0)
	for iter.Next() {
		bar := iter.Bar()
		d := time.Unix(int64(bar.Timestamp), 0).UTC()
		pts = append(pts, models.PricePoint{
			Date:  time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Close: bar.Close.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

// call runs a blocking vendor call so ctx cancellation returns early.
func call[T any](ctx context.Context, m drepo.Metrics, op string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	start := time.Now()
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		m.RecordUpstream(source, op, time.Since(start), r.err)
		return r.v, r.err
	case <-ctx.Done():
		m.RecordUpstream(source, op, time.Since(start), ctx.Err())
		var zero T
		return zero, ctx.Err()
	}
}
