package api

import (
	"context"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
	xlogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/util"

	"github.com/labstack/echo/v4"
)

// FundamentalsService serves data only the aggregated provider has.
type FundamentalsService interface {
	GetCompanyProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
	GetFinancialSummary(ctx context.Context, ticker string) (*models.FinancialSummary, error)
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// MarketHandler serves prices from the selected provider and fundamentals from the aggregated one.
type MarketHandler struct {
	logger       *xlogger.Logger
	provider     drepo.MarketDataProvider
	fundamentals FundamentalsService
	limiter      echo.MiddlewareFunc
}

func NewMarketHandler(logger *xlogger.Logger, provider drepo.MarketDataProvider, fundamentals FundamentalsService, limiter echo.MiddlewareFunc) *MarketHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &MarketHandler{logger: logger.With("market_api"), provider: provider, fundamentals: fundamentals, limiter: limiter}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(h.limiter)
	}
	g.GET("/quote/:ticker", h.Quote)
	g.GET("/context/:ticker", h.Context)
	g.GET("/history/:ticker", h.History)
	g.GET("/change/:ticker", h.Change)
	g.GET("/significant/:ticker", h.Significant)
	g.GET("/profile/:ticker", h.Profile)
	g.GET("/financials/:ticker", h.Financials)
	g.GET("/news/:ticker", h.News)
	g.DELETE("/cache/:ticker", h.Invalidate)
}

// Invalidate drops the provider's cached entries for one ticker.
func (h *MarketHandler) Invalidate(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.provider.InvalidateTicker(c.Request().Context(), req.Ticker); err != nil {
		return respondError(c, h.logger, "cache invalidation", err)
	}
	return xhttp.SuccessResponse(c, models.CacheInvalidation{Ticker: normalize(req.Ticker), Provider: h.provider.Name()})
}

func (h *MarketHandler) Quote(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	price, err := h.provider.GetPrice(ctx, req.Ticker, nil)
	if err != nil {
		return respondError(c, h.logger, "quote", err)
	}
	change, err := h.provider.GetIntradayChange(ctx, req.Ticker)
	if err != nil {
		return respondError(c, h.logger, "quote", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, models.QuoteSnapshot{
		Ticker:    normalize(req.Ticker),
		Price:     price,
		ChangePct: change,
		Provider:  h.provider.Name(),
	})
}

func (h *MarketHandler) Context(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.provider.GetMarketContext(c.Request().Context(), req.Ticker)
	if err != nil {
		return respondError(c, h.logger, "market context", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	prices, err := h.provider.GetHistoricalPrices(c.Request().Context(), req.Ticker, req.Days)
	if err != nil {
		return respondError(c, h.logger, "history", err)
	}
	return xhttp.SuccessResponse(c, models.PriceHistory{Ticker: normalize(req.Ticker), Days: req.Days, Prices: prices})
}

func (h *MarketHandler) Change(c echo.Context) error {
	req := &models.ChangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, err := time.Parse(util.DateLayout, req.Start)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid start date %q", req.Start))
	}
	var end *time.Time
	if req.End != "" {
		t, err := time.Parse(util.DateLayout, req.End)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid end date %q", req.End))
		}
		if t.Before(start) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("end must not be before start"))
		}
		end = &t
	}

	change, err := h.provider.GetPriceChange(c.Request().Context(), req.Ticker, start, end)
	if err != nil {
		return respondError(c, h.logger, "price change", err)
	}
	return xhttp.SuccessResponse(c, models.PriceChange{
		Ticker:    normalize(req.Ticker),
		Start:     req.Start,
		End:       req.End,
		ChangePct: change,
	})
}

func (h *MarketHandler) Significant(c echo.Context) error {
	req := &models.SignificantRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ok, err := h.provider.IsSignificantMove(c.Request().Context(), req.Ticker, req.Threshold, req.Days)
	if err != nil {
		return respondError(c, h.logger, "significant move", err)
	}
	return xhttp.SuccessResponse(c, models.SignificantMove{
		Ticker:       normalize(req.Ticker),
		ThresholdPct: req.Threshold,
		Days:         req.Days,
		Significant:  ok,
	})
}

func (h *MarketHandler) Profile(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.fundamentals == nil {
		return respondError(c, h.logger, "profile", drepo.ErrDisabled)
	}
	res, err := h.fundamentals.GetCompanyProfile(c.Request().Context(), req.Ticker)
	if err != nil {
		return respondError(c, h.logger, "profile", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) Financials(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.fundamentals == nil {
		return respondError(c, h.logger, "financials", drepo.ErrDisabled)
	}
	res, err := h.fundamentals.GetFinancialSummary(c.Request().Context(), req.Ticker)
	if err != nil {
		return respondError(c, h.logger, "financials", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.fundamentals == nil {
		return respondError(c, h.logger, "news", drepo.ErrDisabled)
	}
	items, err := h.fundamentals.GetNews(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		return respondError(c, h.logger, "news", err)
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}
