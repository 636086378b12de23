//go:build wireinject
// +build wireinject

package di

import (
	"MarketFeed/pkg/config"
	"MarketFeed/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideTelegram,
		ProvideNotificationQueue,

		// Vendors and providers
		ProvideSources,
		ProvideMarketData,
		ProvideYahooProvider,
		ProvideMarketDataProvider,

		// Alerts and news
		ProvideEconomicMonitor,
		ProvideAlertHub,
		ProvideAlertManager,
		ProvideScraperSource,

		// Transport and jobs
		ProvideRateLimiter,
		ProvideHTTPServer,
		ProvideScheduler,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeToolkit wires the providers used by one-shot CLI commands.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideMemoryCache,
		ProvideSources,
		ProvideMarketData,
		ProvideYahooProvider,
		ProvideMarketDataProvider,
		ProvideEconomicMonitor,
		ProvideLocalAlertManager,
		ProvideToolkit,
	)
	return &Toolkit{}, nil
}
