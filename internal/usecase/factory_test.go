package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMarketDataProvider(t *testing.T) {
	f := newMDFixture(t)
	yahoo := NewYahooProvider(true, f.quotes, newTestMemoryCache(f.clock), 0, nil, nil)

	assert.Equal(t, ProviderFMP, NewMarketDataProvider("openbb", f.md, yahoo, nil).Name())
	assert.Equal(t, ProviderFMP, NewMarketDataProvider(" FMP ", f.md, yahoo, nil).Name())
	assert.Equal(t, ProviderYahoo, NewMarketDataProvider("yahoo", f.md, yahoo, nil).Name())
	assert.Equal(t, ProviderYahoo, NewMarketDataProvider("yfinance", f.md, yahoo, nil).Name())

	noKey := NewMarketData(DefaultMarketDataConfig(), Sources{}, newTestMemoryCache(f.clock), nil, nil)
	assert.Equal(t, ProviderYahoo, NewMarketDataProvider("openbb", noKey, yahoo, nil).Name(),
		"aggregated provider without a price source falls back")
	assert.Equal(t, ProviderYahoo, NewMarketDataProvider("openbb", nil, yahoo, nil).Name())
}
