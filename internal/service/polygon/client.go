package polygon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
)

const source = "polygon"

// Client talks to the Polygon.io reference news API.
type Client struct {
	http    *xhttp.Client
	apiKey  string
	metrics drepo.Metrics
}

var _ drepo.NewsSource = (*Client)(nil)

// New creates a Polygon client.
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

type newsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title     string `json:"title"`
		Publisher struct {
			Name string `json:"name"`
		} `json:"publisher"`
		PublishedUTC string   `json:"published_utc"`
		ArticleURL   string   `json:"article_url"`
		Description  string   `json:"description"`
		Tickers      []string `json:"tickers"`
	} `json:"results"`
}

// CompanyNews returns up to limit recent articles mentioning ticker.
func (c *Client) CompanyNews(ctx context.Context, ticker string, limit int) ([]models.VendorNews, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order", "desc")
	q.Set("apiKey", c.apiKey)

	var out newsResponse
	start := time.Now()
	err := c.http.Get(ctx, "/v2/reference/news", q, &out)
	c.metrics.RecordUpstream(source, "news", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("polygon news %s: %w: %w", ticker, drepo.ErrUpstream, err)
	}

	items := make([]models.VendorNews, 0, len(out.Results))
	for _, r := range out.Results {
		items = append(items, models.VendorNews{
			Title:        r.Title,
			Publisher:    r.Publisher.Name,
			PublishedUTC: r.PublishedUTC,
			ArticleURL:   r.ArticleURL,
			Description:  r.Description,
			Tickers:      r.Tickers,
		})
	}
	return items, nil
}
