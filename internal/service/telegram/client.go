package telegram

import (
	"context"
	"fmt"
	"time"

	drepo "MarketFeed/internal/domain/repository"
	xhttp "MarketFeed/pkg/http"
)

const source = "telegram"

// Client sends messages through the Telegram Bot API.
type Client struct {
	http     *xhttp.Client
	botToken string
	chatID   string
	metrics  drepo.Metrics
}

// New creates a Telegram client.
func New(botToken, chatID, baseURL string, timeout time.Duration, metrics drepo.Metrics) *Client {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	return &Client{
		http:     xhttp.NewClient(xhttp.WithBaseURL(baseURL), xhttp.WithTimeout(timeout)),
		botToken: botToken,
		chatID:   chatID,
		metrics:  metrics,
	}
}

// Configured reports whether a bot token and chat are set.
func (c *Client) Configured() bool { return c.botToken != "" && c.chatID != "" }

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts a Markdown message to the configured chat.
func (c *Client) Send(ctx context.Context, text string) error {
	var out apiResponse
	start := time.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("/bot%s/sendMessage", c.botToken),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    sendMessageRequest{ChatID: c.chatID, Text: text, ParseMode: "Markdown"},
	}, &out)
	if err == nil && !out.OK {
		err = fmt.Errorf("telegram api: %s", out.Description)
	}
	c.metrics.RecordUpstream(source, "send_message", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("telegram send: %w: %w", drepo.ErrUpstream, err)
	}
	return nil
}
