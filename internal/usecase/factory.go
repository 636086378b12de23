package usecase

import (
	"strings"

	drepo "MarketFeed/internal/domain/repository"
	applogger "MarketFeed/pkg/logger"
)

// NewMarketDataProvider picks the aggregated provider when kind asks for it
// ("openbb" or "fmp") and it can serve prices, otherwise the Yahoo fallback.
func NewMarketDataProvider(kind string, md *MarketData, yahoo *YahooProvider, logger *applogger.Logger) drepo.MarketDataProvider {
	if logger == nil {
		logger = applogger.NewNop()
	}
	kind = strings.ToLower(strings.TrimSpace(kind))

	if (kind == "openbb" || kind == ProviderFMP) && md != nil && md.FMPAvailable() {
		logger.Info("using aggregated market data provider", applogger.String("kind", kind))
		return md
	}
	logger.Info("using yahoo market data provider", applogger.String("kind", kind))
	return yahoo
}
