package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
	"MarketFeed/pkg/util"
)

const source = "fred"

// missingValue marks an observation FRED has no value for.
const missingValue = "."

// Client talks to the FRED series observations API.
type Client struct {
	http    *xhttp.Client
	apiKey  string
	metrics drepo.Metrics
}

var _ drepo.EconomicSource = (*Client)(nil)

// New creates a FRED client.
func New(apiKey, baseURL string, timeout time.Duration, metrics drepo.Metrics) *Client {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	return &Client{
		http:    xhttp.NewClient(xhttp.WithBaseURL(baseURL), xhttp.WithTimeout(timeout)),
		apiKey:  apiKey,
		metrics: metrics,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Observations returns the latest limit observations of symbol, oldest first.
// Missing values are skipped.
func (c *Client) Observations(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	q := url.Values{}
	q.Set("series_id", symbol)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))

	var out observationsResponse
	start := time.Now()
	err := c.http.Get(ctx, "/fred/series/observations", q, &out)
	c.metrics.RecordUpstream(source, "observations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fred observations %s: %w: %w", symbol, drepo.ErrUpstream, err)
	}

	obs := make([]models.Observation, 0, len(out.Observations))
	for i := len(out.Observations) - 1; i >= 0; i-- {
		o := out.Observations[i]
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, err := time.Parse(util.DateLayout, o.Date)
		if err != nil {
			continue
		}
		obs = append(obs, models.Observation{Date: d, Value: v})
	}
	return obs, nil
}
