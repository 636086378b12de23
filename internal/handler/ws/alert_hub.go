package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"MarketFeed/internal/domain/models"
	drepo "MarketFeed/internal/domain/repository"
	applogger "MarketFeed/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeTimeout  = 10 * time.Second
	pongTimeout   = 60 * time.Second
	pingInterval  = 30 * time.Second
	sendQueueSize = 64
)

// ErrHubClosed is returned by PublishAlerts after Close.
var ErrHubClosed = errors.New("alert hub closed")

// Message is the envelope pushed to every subscriber.
type Message struct {
	Type string               `json:"type"`
	Data []models.AlertRecord `json:"data"`
	Time string               `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// AlertHub fans alert records out to WebSocket subscribers.
type AlertHub struct {
	upgrader   websocket.Upgrader
	maxClients int
	logger     *applogger.Logger
	now        func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

var _ drepo.AlertSink = (*AlertHub)(nil)

// HubOption configures AlertHub.
type HubOption func(*AlertHub)

// WithMaxClients caps concurrent subscribers; zero means unlimited.
func WithMaxClients(n int) HubOption {
	return func(h *AlertHub) { h.maxClients = n }
}

// WithAllowedOrigins restricts the Origin header; empty allows any origin.
func WithAllowedOrigins(origins ...string) HubOption {
	return func(h *AlertHub) {
		if len(origins) == 0 {
			return
		}
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[o] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			_, wildcard := allowed["*"]
			return ok || wildcard
		}
	}
}

// NewAlertHub creates a hub.
func NewAlertHub(logger *applogger.Logger, opts ...HubOption) *AlertHub {
	if logger == nil {
		logger = applogger.NewNop()
	}
	h := &AlertHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		maxClients: 100,
		logger:     logger.With("alert_hub"),
		now:        time.Now,
		clients:    make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the subscription endpoint.
func (h *AlertHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Handle)
}

// Clients returns the number of connected subscribers.
func (h *AlertHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle upgrades the request and serves the subscriber until it disconnects.
func (h *AlertHub) Handle(c echo.Context) error {
	h.mu.RLock()
	full := h.closed || (h.maxClients > 0 && len(h.clients) >= h.maxClients)
	h.mu.RUnlock()
	if full {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "alert stream at capacity")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}

	cl := &client{conn: conn, send: make(chan []byte, sendQueueSize)}
	if !h.add(cl) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "alert stream at capacity"))
		_ = conn.Close()
		return nil
	}
	h.logger.Info("alert subscriber connected", applogger.Int("clients", h.Clients()))

	go cl.writePump()
	cl.readPump()

	h.remove(cl)
	h.logger.Info("alert subscriber disconnected", applogger.Int("clients", h.Clients()))
	return nil
}

func (h *AlertHub) add(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || (h.maxClients > 0 && len(h.clients) >= h.maxClients) {
		return false
	}
	h.clients[cl] = struct{}{}
	return true
}

func (h *AlertHub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// PublishAlerts broadcasts alerts to every subscriber. Subscribers whose
// queue is full are dropped.
func (h *AlertHub) PublishAlerts(_ context.Context, alerts []models.AlertRecord) error {
	if len(alerts) == 0 {
		return nil
	}
	data, err := json.Marshal(Message{Type: "alerts", Data: alerts, Time: h.now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			delete(h.clients, cl)
			close(cl.send)
			h.logger.Warn("dropping slow alert subscriber")
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *AlertHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; it only keeps the read deadline alive and detects disconnects.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
