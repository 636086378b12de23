package usecase

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/util"
)

const newsSourceName = "Polygon"

// NewsScraper collects recent articles for a watchlist of tickers.
type NewsScraper struct {
	source            drepo.NewsSource
	articlesPerTicker int
	logger            *applogger.Logger
	now               func() time.Time

	mu      sync.RWMutex
	tickers []string
}

// NewNewsScraper creates a scraper. A nil source disables it.
func NewNewsScraper(source drepo.NewsSource, tickers []string, articlesPerTicker int, logger *applogger.Logger) *NewsScraper {
	if logger == nil {
		logger = applogger.NewNop()
	}
	if articlesPerTicker <= 0 {
		articlesPerTicker = defaultNewsLimit
	}
	s := &NewsScraper{
		source:            source,
		articlesPerTicker: articlesPerTicker,
		logger:            logger.With("news_scraper"),
		now:               time.Now,
	}
	for _, t := range tickers {
		s.add(t)
	}

	switch {
	case source == nil:
		s.logger.Warn("news scraper initialized without a news source")
	case len(s.tickers) == 0:
		s.logger.Warn("news scraper initialized with empty watchlist")
	default:
		s.logger.Info("news scraper initialized",
			applogger.Strings("tickers", s.tickers),
			applogger.Int("articles_per_ticker", articlesPerTicker),
		)
	}
	return s
}

// Enabled reports whether the scraper has a news source.
func (s *NewsScraper) Enabled() bool { return s.source != nil }

// Tickers returns a copy of the watchlist.
func (s *NewsScraper) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tickers)
}

// AddTicker adds ticker (upper-cased) unless already present.
func (s *NewsScraper) AddTicker(ticker string) {
	if s.add(ticker) {
		s.logger.Info("added ticker to watchlist", applogger.String("ticker", normalizeTicker(ticker)))
	}
}

// RemoveTicker removes ticker (upper-cased) if present.
func (s *NewsScraper) RemoveTicker(ticker string) {
	ticker = normalizeTicker(ticker)
	s.mu.Lock()
	i := slices.Index(s.tickers, ticker)
	if i >= 0 {
		s.tickers = slices.Delete(s.tickers, i, i+1)
	}
	s.mu.Unlock()
	if i >= 0 {
		s.logger.Info("removed ticker from watchlist", applogger.String("ticker", ticker))
	}
}

func (s *NewsScraper) add(ticker string) bool {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.tickers, ticker) {
		return false
	}
	s.tickers = append(s.tickers, ticker)
	return true
}

// FetchNewsForTicker returns the latest articles for ticker; failures yield an empty slice.
func (s *NewsScraper) FetchNewsForTicker(ctx context.Context, ticker string) []models.NewsArticle {
	if s.source == nil {
		s.logger.Debug("news scraper disabled, skipping", applogger.String("ticker", ticker))
		return nil
	}
	ticker = normalizeTicker(ticker)

	raw, err := s.source.CompanyNews(ctx, ticker, s.articlesPerTicker)
	if err != nil {
		s.logger.Error("failed to fetch news", applogger.String("ticker", ticker), applogger.Error(err))
		return nil
	}
	if len(raw) == 0 {
		s.logger.Debug("no news found", applogger.String("ticker", ticker))
		return nil
	}

	articles := make([]models.NewsArticle, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, s.toArticle(ticker, r))
	}
	s.logger.Debug("fetched articles", applogger.String("ticker", ticker), applogger.Int("count", len(articles)))
	return articles
}

func (s *NewsScraper) toArticle(ticker string, r models.VendorNews) models.NewsArticle {
	publishedAt := s.now()
	publishedAt = util.ParseTimeDefault(r.PublishedUTC, publishedAt)

	url := r.URL
	if url == "" {
		url = r.ArticleURL
	}
	if url == "" {
		url = fmt.Sprintf("polygon://news/%s/%s", ticker, publishedAt.Format(time.RFC3339))
	}

	publisher := r.Publisher
	if publisher == "" {
		publisher = newsSourceName
	}

	title := r.Title
	if title == "" {
		title = "No Title"
	}
	content := r.Description
	if content == "" {
		content = r.Title
	}

	return models.NewsArticle{
		URL:         url,
		Title:       title,
		Content:     content,
		Source:      newsSourceName + "/" + publisher,
		PublishedAt: publishedAt,
	}
}

// Scrape yields articles for every watchlist ticker in order, stopping early
// when ctx is done or the consumer stops ranging.
func (s *NewsScraper) Scrape(ctx context.Context) iter.Seq[models.NewsArticle] {
	return func(yield func(models.NewsArticle) bool) {
		if s.source == nil {
			s.logger.Warn("news scraper is disabled")
			return
		}
		tickers := s.Tickers()
		if len(tickers) == 0 {
			s.logger.Warn("no tickers configured for news scraper")
			return
		}

		s.logger.Info("starting news scrape", applogger.Int("tickers", len(tickers)))
		total := 0
		defer func() {
			s.logger.Info("news scrape complete", applogger.Int("articles", total))
		}()
		for _, t := range tickers {
			if ctx.Err() != nil {
				return
			}
			for _, a := range s.FetchNewsForTicker(ctx, t) {
				if !yield(a) {
					return
				}
				total++
			}
		}
	}
}

// ScrapeSync collects Scrape into a slice.
func (s *NewsScraper) ScrapeSync(ctx context.Context) []models.NewsArticle {
	return slices.Collect(s.Scrape(ctx))
}

// ScraperSourceConfig configures a ScraperSource.
type ScraperSourceConfig struct {
	Enabled           bool
	Tickers           []string
	ArticlesPerTicker int
}

// ScraperSource adapts NewsScraper to the scraper pipeline.
type ScraperSource struct {
	enabled bool
	scraper *NewsScraper
}

// NewScraperSource creates a source; a disabled source never builds a scraper.
func NewScraperSource(source drepo.NewsSource, cfg ScraperSourceConfig, logger *applogger.Logger) *ScraperSource {
	enabled := cfg.Enabled && source != nil
	ss := &ScraperSource{enabled: enabled}
	if enabled {
		ss.scraper = NewNewsScraper(source, cfg.Tickers, cfg.ArticlesPerTicker, logger)
	}
	return ss
}

// NewPolygonSource builds a source tracking every ticker of watchlist.
func NewPolygonSource(source drepo.NewsSource, watchlist map[string][]string, cfg ScraperSourceConfig, logger *applogger.Logger) *ScraperSource {
	tickers := make([]string, 0, len(watchlist))
	for t := range watchlist {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	cfg.Tickers = tickers
	return NewScraperSource(source, cfg, logger)
}

// Enabled reports whether the source will fetch anything.
func (s *ScraperSource) Enabled() bool { return s.enabled && s.scraper != nil }

// Scraper returns the underlying scraper, nil when disabled.
func (s *ScraperSource) Scraper() *NewsScraper { return s.scraper }

// FetchArticles scrapes every ticker once.
func (s *ScraperSource) FetchArticles(ctx context.Context) []models.NewsArticle {
	if !s.Enabled() {
		return nil
	}
	return s.scraper.ScrapeSync(ctx)
}
