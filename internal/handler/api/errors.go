package api

import (
	"context"
	"errors"

	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
	xlogger "MarketFeed/pkg/logger"

	"github.com/labstack/echo/v4"
)

// toAppError maps provider sentinels to HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, drepo.ErrDisabled):
		return xhttp.ServiceUnavailableError("data source not configured").WithError(err)
	case errors.Is(err, drepo.ErrNoData):
		return xhttp.NotFoundError("no data available").WithError(err)
	case errors.Is(err, drepo.ErrUpstream):
		return xhttp.BadGatewayError("upstream data provider failed").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream data provider timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func respondError(c echo.Context, l *xlogger.Logger, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 && !errors.Is(err, drepo.ErrDisabled) {
		l.Error(op+" failed", xlogger.String("path", c.Path()), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
