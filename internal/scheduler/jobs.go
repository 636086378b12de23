package scheduler

import (
	"context"
	"time"

	"MarketFeed/internal/domain/models"
	applogger "MarketFeed/pkg/logger"
)

// AlertChecker runs one economic indicator check.
type AlertChecker interface {
	Enabled() bool
	CheckAndGenerateAlerts(ctx context.Context) []models.AlertRecord
}

// CacheCleaner drops expired cache entries.
type CacheCleaner interface {
	CleanCache() int
}

// ArticleFetcher scrapes the news watchlist once.
type ArticleFetcher interface {
	Enabled() bool
	FetchArticles(ctx context.Context) []models.NewsArticle
}

// BucketSweeper drops idle rate limit buckets.
type BucketSweeper interface {
	Sweep(idle time.Duration) int
}

// EconomicCheckJob checks every watched indicator and publishes alerts.
func EconomicCheckJob(schedule string, checker AlertChecker, logger *applogger.Logger) Job {
	if checker == nil || !checker.Enabled() {
		return Job{Name: "economic_check"}
	}
	return Job{
		Name:     "economic_check",
		Schedule: schedule,
		Run: func(ctx context.Context) {
			records := checker.CheckAndGenerateAlerts(ctx)
			if len(records) > 0 {
				logger.Info("economic check raised alerts", applogger.Int("alerts", len(records)))
			}
		},
	}
}

// CacheCleanJob evicts expired entries from every cleaner, then sweeps idle rate limit buckets.
func CacheCleanJob(schedule string, sweeper BucketSweeper, idle time.Duration, logger *applogger.Logger, cleaners ...CacheCleaner) Job {
	return Job{
		Name:     "cache_clean",
		Schedule: schedule,
		Run: func(context.Context) {
			removed := 0
			for _, c := range cleaners {
				if c != nil {
					removed += c.CleanCache()
				}
			}
			swept := 0
			if sweeper != nil {
				swept = sweeper.Sweep(idle)
			}
			if removed > 0 || swept > 0 {
				logger.Debug("cache cleaned", applogger.Int("entries", removed), applogger.Int("buckets", swept))
			}
		},
	}
}

// NewsScrapeJob scrapes the watchlist and logs each article.
func NewsScrapeJob(schedule string, fetcher ArticleFetcher, logger *applogger.Logger) Job {
	if fetcher == nil || !fetcher.Enabled() {
		return Job{Name: "news_scrape"}
	}
	return Job{
		Name:     "news_scrape",
		Schedule: schedule,
		Run: func(ctx context.Context) {
			articles := fetcher.FetchArticles(ctx)
			for _, a := range articles {
				logger.Debug("article", applogger.String("source", a.Source), applogger.String("title", a.Title), applogger.String("url", a.URL))
			}
			logger.Info("news scraped", applogger.Int("articles", len(articles)))
		},
	}
}
