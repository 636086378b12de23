package di

import (
	"context"
	"fmt"
	"time"

	"MarketFeed/internal/domain/models"
	"MarketFeed/internal/domain/repository"
	"MarketFeed/internal/handler/api"
	"MarketFeed/internal/handler/ws"
	internalrepo "MarketFeed/internal/repository"
	"MarketFeed/internal/scheduler"
	"MarketFeed/internal/service/fmp"
	"MarketFeed/internal/service/fred"
	"MarketFeed/internal/service/polygon"
	"MarketFeed/internal/service/ratelimit"
	"MarketFeed/internal/service/telegram"
	"MarketFeed/internal/service/yahoo"
	"MarketFeed/internal/usecase"
	"MarketFeed/pkg/cache"
	"MarketFeed/pkg/config"
	xhttp "MarketFeed/pkg/http"
	pkgkafka "MarketFeed/pkg/kafka"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/metrics"
	"MarketFeed/pkg/queue"
	"MarketFeed/pkg/server"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitRetryAfter = 60
	bucketIdle          = 10 * time.Minute
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisClient connects to Redis; nil when Redis is disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(10, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc.Client(), nil
}

// ProvideCache returns an in-process cache, layered over Redis when a client is available.
func ProvideCache(cfg *config.Config, rdb *redis.Client) cache.Service {
	if rdb == nil {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.MarketData.CacheMaxSize),
			cache.WithMemoryTTL(cfg.MarketData.CacheTTL),
		)
	}
	return cache.NewLayeredCache(
		cache.NewRedisCacheFromClient(rdb, cfg.Redis.Prefix),
		cache.WithLayeredMemorySize(cfg.MarketData.CacheMaxSize),
		cache.WithLayeredMemoryTTL(time.Minute),
	)
}

// ProvideSources builds the vendor clients. A vendor without an API key stays nil.
func ProvideSources(cfg *config.Config, m repository.Metrics) usecase.Sources {
	var src usecase.Sources

	if c := fmp.New(cfg.FMP.APIKey, cfg.FMP.BaseURL, cfg.FMP.Timeout, m); c.Configured() {
		src.Quotes = c
		src.Fundamentals = c
	}
	if c := polygon.New(cfg.Polygon.APIKey, cfg.Polygon.BaseURL, cfg.Polygon.Timeout, m); c.Configured() {
		src.News = c
	}
	if c := fred.New(cfg.FRED.APIKey, cfg.FRED.BaseURL, cfg.FRED.Timeout, m); c.Configured() {
		src.Economy = c
	}
	return src
}

// ProvideMarketData creates the aggregated FMP/Polygon/FRED provider.
func ProvideMarketData(cfg *config.Config, src usecase.Sources, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.MarketData {
	return usecase.NewMarketData(usecase.MarketDataConfig{
		Enabled:        cfg.MarketData.Enabled,
		FMPEnabled:     cfg.MarketData.FMPEnabled,
		PolygonEnabled: cfg.MarketData.PolygonEnabled,
		FREDEnabled:    cfg.MarketData.FREDEnabled,
		CacheTTL:       cfg.MarketData.CacheTTL,
	}, src, c, m, l)
}

// ProvideYahooProvider creates the Yahoo fallback provider on the shared cache.
func ProvideYahooProvider(cfg *config.Config, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.YahooProvider {
	return usecase.NewYahooProvider(cfg.Yahoo.Enabled, yahoo.New(m), c, cfg.MarketData.CacheTTL, m, l)
}

// ProvideMarketDataProvider selects the provider named by market_data.provider.
func ProvideMarketDataProvider(cfg *config.Config, md *usecase.MarketData, yp *usecase.YahooProvider, l *applogger.Logger) repository.MarketDataProvider {
	return usecase.NewMarketDataProvider(cfg.MarketData.Provider, md, yp, l)
}

// ProvideEconomicMonitor creates the FRED monitor over the configured indicators.
func ProvideEconomicMonitor(cfg *config.Config, src usecase.Sources, l *applogger.Logger) *usecase.EconomicMonitor {
	indicators := make(map[string]models.IndicatorConfig, len(cfg.FRED.Indicators))
	for key, ind := range cfg.FRED.Indicators {
		indicators[key] = models.IndicatorConfig{
			Symbol:       ind.Symbol,
			Name:         ind.Name,
			ThresholdPct: ind.Percent(),
			ThresholdAbs: ind.ThresholdAbs,
		}
	}
	enabled := cfg.MarketData.Enabled && cfg.MarketData.FREDEnabled
	return usecase.NewEconomicMonitor(enabled, src.Economy, indicators, l)
}

// ProvideAlertHub creates the websocket alert hub.
func ProvideAlertHub(cfg *config.Config, l *applogger.Logger) *ws.AlertHub {
	return ws.NewAlertHub(l, ws.WithAllowedOrigins(cfg.Server.CORSOrigins...))
}

// ProvideKafkaProducer creates the alerts producer; nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.AlertsTopic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTelegram creates the Telegram client.
func ProvideTelegram(cfg *config.Config, m repository.Metrics) *telegram.Client {
	return telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL, cfg.Telegram.Timeout, m)
}

// ProvideNotificationQueue creates the Redis-backed notification queue and registers
// the Telegram job. Nil when notifications are off or Telegram is not configured.
func ProvideNotificationQueue(cfg *config.Config, rdb *redis.Client, tg *telegram.Client, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Notifications.Enabled || rdb == nil {
		return nil
	}
	if !tg.Configured() {
		l.Warn("notifications enabled but telegram is not configured")
		return nil
	}
	q := queue.New(l, queue.Config{
		Workers:    cfg.Notifications.Workers,
		RetryLimit: cfg.Notifications.RetryLimit,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, rdb, queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	q.RegisterJob(usecase.NewAlertNotificationJob(tg, l))
	return q
}

// ProvideAlertManager wires the monitor to every available alert sink.
func ProvideAlertManager(
	monitor *usecase.EconomicMonitor,
	m repository.Metrics,
	l *applogger.Logger,
	hub *ws.AlertHub,
	producer *pkgkafka.Producer,
	q *queue.RedisQueue,
) *usecase.AlertManager {
	sinks := []repository.AlertSink{hub}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaAlertPublisher(producer, l))
	}
	if q != nil {
		sinks = append(sinks, internalrepo.NewQueueAlertPublisher(q))
	}
	return usecase.NewAlertManager(monitor, m, l, sinks...)
}

// ProvideScraperSource creates the Polygon news scraper over the configured watchlist.
func ProvideScraperSource(cfg *config.Config, src usecase.Sources, l *applogger.Logger) *usecase.ScraperSource {
	return usecase.NewScraperSource(src.News, usecase.ScraperSourceConfig{
		Enabled:           cfg.Polygon.Enabled && cfg.MarketData.PolygonEnabled,
		Tickers:           cfg.Polygon.Tickers,
		ArticlesPerTicker: cfg.Polygon.ArticlesPerTicker,
	}, l)
}

// ProvideRateLimiter creates the per-client token bucket limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Burst, cfg.RateLimit.Rate)
}

// ProvideHTTPServer registers every route group on the Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	provider repository.MarketDataProvider,
	md *usecase.MarketData,
	alerts *usecase.AlertManager,
	hub *ws.AlertHub,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	var mw echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		mw = api.RateLimit(limiter, rateLimitRetryAfter)
	}

	handlers := xhttp.Handlers{
		api.NewMarketHandler(l, provider, md, mw),
		api.NewEconomyHandler(l, md, alerts, mw),
		hub,
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, nil, nil),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORS(true, cfg.Server.CORSOrigins...))
	}
	return xhttp.NewServer(handlers, l, opts...)
}

// ProvideScheduler registers the periodic jobs.
func ProvideScheduler(
	cfg *config.Config,
	l *applogger.Logger,
	alerts *usecase.AlertManager,
	md *usecase.MarketData,
	yp *usecase.YahooProvider,
	scraper *usecase.ScraperSource,
	limiter *ratelimit.Limiter,
) (*scheduler.Scheduler, error) {
	s := scheduler.New(l)
	err := s.Register(
		scheduler.EconomicCheckJob(cfg.FRED.CheckSchedule, alerts, l),
		scheduler.CacheCleanJob(cfg.MarketData.CleanSchedule, limiter, bucketIdle, l, md, yp),
		scheduler.NewsScrapeJob(cfg.Polygon.ScrapeSchedule, scraper, l),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	hub *ws.AlertHub,
	q *queue.RedisQueue,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
) *server.App {
	return server.New(cfg, l, srv, sched,
		server.WithCloser("alert_hub", closerFunc(hub.Close)),
		server.WithQueue(q),
		server.WithProducer(producer),
		server.WithRedis(rdb),
	)
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Toolkit bundles the providers used by one-shot CLI commands.
type Toolkit struct {
	Logger     *applogger.Logger
	Provider   repository.MarketDataProvider
	MarketData *usecase.MarketData
	Alerts     *usecase.AlertManager
}

// ProvideMemoryCache returns a process-local cache for short-lived commands.
func ProvideMemoryCache(cfg *config.Config) cache.Service {
	return ProvideCache(cfg, nil)
}

// ProvideLocalAlertManager creates an alert manager without external sinks.
func ProvideLocalAlertManager(monitor *usecase.EconomicMonitor, m repository.Metrics, l *applogger.Logger) *usecase.AlertManager {
	return usecase.NewAlertManager(monitor, m, l)
}

// ProvideToolkit assembles the CLI toolkit.
func ProvideToolkit(l *applogger.Logger, provider repository.MarketDataProvider, md *usecase.MarketData, alerts *usecase.AlertManager) *Toolkit {
	return &Toolkit{Logger: l, Provider: provider, MarketData: md, Alerts: alerts}
}
