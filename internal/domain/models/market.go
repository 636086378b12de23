package models

import "time"

// Quote is the latest trade snapshot for a ticker.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceData pairs a price with its optional intraday change, as served by the quote endpoint.
type PriceData struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	ChangePct *float64  `json:"change_pct"`
	Volume    *int64    `json:"volume,omitempty"`
}

type CompanyProfile struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Employees   int    `json:"employees"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

type FinancialSummary struct {
	Revenue     float64 `json:"revenue"`
	GrossProfit float64 `json:"gross_profit"`
	NetIncome   float64 `json:"net_income"`
}

// MarketContext summarises a ticker; nil change fields mean the value was unavailable.
type MarketContext struct {
	CurrentPrice  float64  `json:"current_price"`
	DayChangePct  *float64 `json:"day_change_pct"`
	WeekChangePct *float64 `json:"week_change_pct"`
	Timestamp     string   `json:"timestamp"`
	Provider      string   `json:"provider"`
	CompanyName   string   `json:"company_name,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
}

// SignificantMove is the answer to a threshold check.
type SignificantMove struct {
	Ticker       string  `json:"ticker"`
	ThresholdPct float64 `json:"threshold_pct"`
	Days         int     `json:"days"`
	Significant  bool    `json:"significant"`
}

// QuoteSnapshot is the latest price with today's change.
type QuoteSnapshot struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Provider  string  `json:"provider"`
}

// CacheInvalidation confirms that cached entries for a ticker were dropped.
type CacheInvalidation struct {
	Ticker   string `json:"ticker"`
	Provider string `json:"provider"`
}

// PriceChange is the percent change of a ticker over a date range.
type PriceChange struct {
	Ticker    string  `json:"ticker"`
	Start     string  `json:"start"`
	End       string  `json:"end,omitempty"`
	ChangePct float64 `json:"change_pct"`
}

// PriceHistory maps YYYY-MM-DD to the closing price.
type PriceHistory struct {
	Ticker string             `json:"ticker"`
	Days   int                `json:"days"`
	Prices map[string]float64 `json:"prices"`
}
