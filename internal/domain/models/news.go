package models

import "time"

// VendorNews is a company news record as returned by the news vendor.
type VendorNews struct {
	Title        string   `json:"title"`
	Publisher    string   `json:"publisher"`
	PublishedUTC string   `json:"published_utc"`
	URL          string   `json:"url"`
	ArticleURL   string   `json:"article_url"`
	Description  string   `json:"description"`
	Tickers      []string `json:"tickers"`
}

// NewsItem is the provider-level news record.
type NewsItem struct {
	Title       string   `json:"title"`
	Publisher   string   `json:"publisher"`
	PublishedAt string   `json:"published_at"`
	URL         string   `json:"url"`
	Tickers     []string `json:"tickers"`
}

// NewsArticle is the record handed to the scraper pipeline.
type NewsArticle struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
