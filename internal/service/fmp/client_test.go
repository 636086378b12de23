package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "MarketFeed/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/quote/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","name":"Apple Inc.","price":189.5,"changesPercentage":1.234,"volume":51234000,"timestamp":1735833600}]`))
	})
	mux.HandleFunc("/api/v3/quote/NONE", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/api/v3/historical-price-full/NVDA", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-01-08", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"symbol":"NVDA","historical":[
			{"date":"2025-01-08","close":140.11},
			{"date":"2025-01-07","close":140.14},
			{"date":"2025-01-06","close":149.43}
		]}`))
	})
	mux.HandleFunc("/api/v3/profile/TSLA", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"companyName":"Tesla, Inc.","sector":"Consumer Cyclical","industry":"Auto - Manufacturers","fullTimeEmployees":"140473","website":"https://www.tesla.com","description":"EVs"}]`))
	})
	mux.HandleFunc("/api/v3/income-statement/MSFT", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"date":"2024-06-30","revenue":245122000000,"grossProfit":171008000000,"netIncome":88136000000}]`))
	})
	mux.HandleFunc("/api/v3/quote/FAIL", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Error Message":"Invalid API KEY."}`, http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestQuote(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 189.5, q.Price)
	assert.Equal(t, 1.234, q.ChangePct)
	assert.Equal(t, int64(51234000), q.Volume)
	assert.Equal(t, "Apple Inc.", q.Name)
}

func TestQuoteEmptyIsNoData(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	_, err := c.Quote(context.Background(), "NONE")
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestQuoteUpstreamError(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	_, err := c.Quote(context.Background(), "FAIL")
	assert.ErrorIs(t, err, drepo.ErrUpstream)
}

func TestHistorySortedAscending(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	pts, err := c.History(context.Background(), "NVDA", from, to)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 149.43, pts[0].Close)
	assert.Equal(t, 140.11, pts[2].Close)
}

func TestProfileParsesStringEmployees(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	p, err := c.Profile(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "Tesla, Inc.", p.Name)
	assert.Equal(t, 140473, p.Employees)
}

func TestIncomeStatement(t *testing.T) {
	srv := newTestServer(t)
	c := New("test-key", srv.URL, time.Second, nil)

	f, err := c.IncomeStatement(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 245122000000.0, f.Revenue)
	assert.Equal(t, 88136000000.0, f.NetIncome)
}
