package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "MarketFeed/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsMarkdownMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bottoken123/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := New("token123", "42", srv.URL, time.Second, nil)
	require.True(t, c.Configured())
	require.NoError(t, c.Send(context.Background(), "*hello*"))
	assert.Equal(t, sendMessageRequest{ChatID: "42", Text: "*hello*", ParseMode: "Markdown"}, got)
}

func TestSendReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := New("t", "1", srv.URL, time.Second, nil).Send(context.Background(), "x")
	require.ErrorIs(t, err, drepo.ErrUpstream)
	assert.Contains(t, err.Error(), "chat not found")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer failing.Close()
	assert.ErrorIs(t, New("t", "1", failing.URL, time.Second, nil).Send(context.Background(), "x"), drepo.ErrUpstream)
	assert.False(t, New("", "1", failing.URL, time.Second, nil).Configured())
}
