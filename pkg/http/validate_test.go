package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyReq struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
	Days   int    `query:"days" default:"30" validate:"gte=1,lte=3650"`
	Start  string `query:"start" validate:"omitempty,datetime=2006-01-02"`
}

func bindHistory(t *testing.T, target string) (*historyReq, []ValidationError) {
	t.Helper()
	e := echo.New()
	var got *historyReq
	var verrs []ValidationError
	e.GET("/history/:ticker", func(c echo.Context) error {
		req := &historyReq{}
		if v := ReadAndValidateRequest(c, req); v != nil {
			verrs = v.([]ValidationError)
			return nil
		}
		got = req
		return nil
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return got, verrs
}

func TestReadAndValidateAppliesDefaults(t *testing.T) {
	req, verrs := bindHistory(t, "/history/BRK.B")
	require.Empty(t, verrs)
	assert.Equal(t, "BRK.B", req.Ticker)
	assert.Equal(t, 30, req.Days)
}

func TestReadAndValidateReportsQueryNames(t *testing.T) {
	_, verrs := bindHistory(t, "/history/AAPL?days=5000&start=01-02-2025")
	require.Len(t, verrs, 2)
	assert.Equal(t, "days", verrs[0].Field)
	assert.Equal(t, "ERR_LTE", verrs[0].Code)
	assert.Equal(t, "start", verrs[1].Field)
	assert.Equal(t, "ERR_DATETIME", verrs[1].Code)
	assert.Equal(t, "start must be a date in YYYY-MM-DD format", verrs[1].Message)
}

func TestTickerPattern(t *testing.T) {
	for _, ok := range []string{"AAPL", "msft", "BRK.B", "BF-B", "^GSPC", "EURUSD=X"} {
		assert.True(t, tickerPattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "AAPL MSFT", "../etc", "TOOLONGTICKER1"} {
		assert.False(t, tickerPattern.MatchString(bad), bad)
	}
}

func TestReadAndValidateBadBinding(t *testing.T) {
	_, verrs := bindHistory(t, "/history/AAPL?days=abc")
	require.Len(t, verrs, 1)
	assert.Equal(t, "ERR_BAD_REQUEST", verrs[0].Code)
}
