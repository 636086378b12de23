package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteMapsFields(t *testing.T) {
	q := &finance.Quote{ShortName: "Apple Inc."}
	q.RegularMarketPrice = 190.25
	q.RegularMarketChangePercent = -0.75
	q.RegularMarketVolume = 1000

	c := NewWithFuncs(func(symbol string) (*finance.Quote, error) {
		assert.Equal(t, "AAPL", symbol)
		return q, nil
	}, nil, nil)

	got, err := c.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, 190.25, got.Price)
	assert.Equal(t, -0.75, got.ChangePct)
	assert.Equal(t, "Apple Inc.", got.Name)
}

func TestQuoteNilIsNoData(t *testing.T) {
	c := NewWithFuncs(func(string) (*finance.Quote, error) { return nil, nil }, nil, nil)
	_, err := c.Quote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestHistoryWrapsErrors(t *testing.T) {
	c := NewWithFuncs(nil, func(string, time.Time, time.Time) ([]models.PricePoint, error) {
		return nil, errors.New("rate limited")
	}, nil)
	_, err := c.History(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	assert.ErrorIs(t, err, drepo.ErrUpstream)
}

func TestQuoteHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := NewWithFuncs(func(string) (*finance.Quote, error) {
		<-block
		return nil, nil
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Quote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
