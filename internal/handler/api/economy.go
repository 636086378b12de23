package api

import (
	"context"
	"strings"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
	xlogger "MarketFeed/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IndicatorService serves the headline FRED series.
type IndicatorService interface {
	FREDAvailable() bool
	GetKeyEconomicIndicators(ctx context.Context) map[string]*models.EconomicIndicator
}

// AlertService runs the economic check on demand.
type AlertService interface {
	Enabled() bool
	CheckAndGenerateAlerts(ctx context.Context) []models.AlertRecord
	Summary(ctx context.Context) map[string]models.IndicatorSummary
}

type EconomyHandler struct {
	logger     *xlogger.Logger
	indicators IndicatorService
	alerts     AlertService
	limiter    echo.MiddlewareFunc
}

func NewEconomyHandler(logger *xlogger.Logger, indicators IndicatorService, alerts AlertService, limiter echo.MiddlewareFunc) *EconomyHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &EconomyHandler{logger: logger.With("economy_api"), indicators: indicators, alerts: alerts, limiter: limiter}
}

func (h *EconomyHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/economy")
	if h.limiter != nil {
		g.Use(h.limiter)
	}
	g.GET("/indicators", h.Indicators)
	g.GET("/summary", h.Summary)
	g.POST("/check", h.Check)
}

func (h *EconomyHandler) Indicators(c echo.Context) error {
	if h.indicators == nil || !h.indicators.FREDAvailable() {
		return respondError(c, h.logger, "indicators", drepo.ErrDisabled)
	}
	return xhttp.SuccessResponse(c, h.indicators.GetKeyEconomicIndicators(c.Request().Context()))
}

func (h *EconomyHandler) Summary(c echo.Context) error {
	if h.alerts == nil || !h.alerts.Enabled() {
		return respondError(c, h.logger, "indicator summary", drepo.ErrDisabled)
	}
	return xhttp.SuccessResponse(c, h.alerts.Summary(c.Request().Context()))
}

func (h *EconomyHandler) Check(c echo.Context) error {
	if h.alerts == nil || !h.alerts.Enabled() {
		return respondError(c, h.logger, "economic check", drepo.ErrDisabled)
	}
	records := h.alerts.CheckAndGenerateAlerts(c.Request().Context())
	h.logger.Info("manual economic check", xlogger.Int("alerts", len(records)))
	return xhttp.ListResponse(c, records, int64(len(records)))
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
