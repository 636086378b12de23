package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
	"MarketFeed/pkg/util"
)

const source = "fmp"

// Client talks to the Financial Modeling Prep REST API.
type Client struct {
	http    *xhttp.Client
	apiKey  string
	metrics drepo.Metrics
	now     func() time.Time
}

var (
	_ drepo.QuoteSource        = (*Client)(nil)
	_ drepo.FundamentalsSource = (*Client)(nil)
)

// New creates an FMP client.
func New(apiKey, baseURL string, timeout time.Duration, metrics drepo.Metrics) *Client {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	return &Client{
		http:    xhttp.NewClient(xhttp.WithBaseURL(baseURL), xhttp.WithTimeout(timeout)),
		apiKey:  apiKey,
		metrics: metrics,
		now:     time.Now,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

type quoteDTO struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
	Volume            int64   `json:"volume"`
	Timestamp         int64   `json:"timestamp"`
}

type historicalDTO struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"historical"`
}

type profileDTO struct {
	CompanyName       string  `json:"companyName"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	FullTimeEmployees flexInt `json:"fullTimeEmployees"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
}

type incomeDTO struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	GrossProfit float64 `json:"grossProfit"`
	NetIncome   float64 `json:"netIncome"`
}

// Quote returns the latest quote for ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	var out []quoteDTO
	if err := c.get(ctx, "quote", "/api/v3/quote/"+url.PathEscape(ticker), nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fmp quote %s: %w", ticker, drepo.ErrNoData)
	}
	q := out[0]
	ts := c.now()
	if q.Timestamp > 0 {
		ts = time.Unix(q.Timestamp, 0)
	}
	return &models.Quote{
		Ticker:    strings.ToUpper(ticker),
		Name:      q.Name,
		Price:     q.Price,
		ChangePct: q.ChangesPercentage,
		Volume:    q.Volume,
		Timestamp: ts,
	}, nil
}

// History returns daily closes between from and to inclusive, oldest first.
func (c *Client) History(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	q := url.Values{}
	q.Set("from", util.FormatDate(from))
	q.Set("to", util.FormatDate(to))

	var out historicalDTO
	if err := c.get(ctx, "history", "/api/v3/historical-price-full/"+url.PathEscape(ticker), q, &out); err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(out.Historical))
	for _, h := range out.Historical {
		d, err := time.Parse(util.DateLayout, h.Date)
		if err != nil {
			continue
		}
		points = append(points, models.PricePoint{Date: d, Close: h.Close})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// Profile returns the company profile with vendor values as-is.
func (c *Client) Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	var out []profileDTO
	if err := c.get(ctx, "profile", "/api/v3/profile/"+url.PathEscape(ticker), nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fmp profile %s: %w", ticker, drepo.ErrNoData)
	}
	p := out[0]
	return &models.CompanyProfile{
		Name:        p.CompanyName,
		Sector:      p.Sector,
		Industry:    p.Industry,
		Employees:   int(p.FullTimeEmployees),
		Website:     p.Website,
		Description: p.Description,
	}, nil
}

// IncomeStatement returns the most recent income statement.
func (c *Client) IncomeStatement(ctx context.Context, ticker string) (*models.FinancialSummary, error) {
	q := url.Values{}
	q.Set("limit", "1")

	var out []incomeDTO
	if err := c.get(ctx, "income", "/api/v3/income-statement/"+url.PathEscape(ticker), q, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fmp income %s: %w", ticker, drepo.ErrNoData)
	}
	return &models.FinancialSummary{
		Revenue:     out[0].Revenue,
		GrossProfit: out[0].GrossProfit,
		NetIncome:   out[0].NetIncome,
	}, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, dest interface{}) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("apikey", c.apiKey)

	start := time.Now()
	err := c.http.Get(ctx, path, q, dest)
	c.metrics.RecordUpstream(source, op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fmp %s: %w: %w", op, drepo.ErrUpstream, err)
	}
	return nil
}

// flexInt accepts both JSON numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	var fl float64
	if err := json.Unmarshal([]byte(s), &fl); err != nil {
		return errors.New("fmp: invalid integer " + s)
	}
	*f = flexInt(fl)
	return nil
}
