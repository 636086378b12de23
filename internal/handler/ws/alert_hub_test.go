package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MarketFeed/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, opts ...HubOption) (*AlertHub, string) {
	t.Helper()
	hub := NewAlertHub(nil, opts...)
	hub.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAlertHubBroadcasts(t *testing.T) {
	hub, url := newHubServer(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	alerts := []models.AlertRecord{{Type: models.AlertTypeEconomic, ID: "1", Indicator: "cpi", Severity: models.SeverityLow}}
	require.NoError(t, hub.PublishAlerts(context.Background(), alerts))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "alerts", msg.Type)
		assert.Equal(t, "2025-01-02T03:04:05Z", msg.Time)
		assert.Equal(t, alerts, msg.Data)
	}
}

func TestAlertHubForgetsDisconnectedClients(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestAlertHubCapacity(t *testing.T) {
	hub, url := newHubServer(t, WithMaxClients(1))
	dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAlertHubClosed(t *testing.T) {
	hub := NewAlertHub(nil)
	require.NoError(t, hub.PublishAlerts(context.Background(), nil))
	hub.Close()
	assert.ErrorIs(t, hub.PublishAlerts(context.Background(), []models.AlertRecord{{ID: "1"}}), ErrHubClosed)
}

func TestAllowedOrigins(t *testing.T) {
	hub := NewAlertHub(nil, WithAllowedOrigins("https://app.example.com"))
	req := httptest.NewRequest(http.MethodGet, "/ws/alerts", nil)
	assert.True(t, hub.upgrader.CheckOrigin(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, hub.upgrader.CheckOrigin(req))
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, hub.upgrader.CheckOrigin(req))
}
