package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketFeed/internal/scheduler"
	"MarketFeed/pkg/config"
	xhttp "MarketFeed/pkg/http"
	applogger "MarketFeed/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	closed bool
	err    error
}

func (r *recordingCloser) Close() error {
	r.closed = true
	return r.err
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = time.Second
	srv := xhttp.NewServer(nil, applogger.NewNop(),
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithMetrics("", nil, nil),
	)
	return New(cfg, applogger.NewNop(), srv, scheduler.New(applogger.NewNop()), opts...)
}

func TestRunStopsWhenContextDone(t *testing.T) {
	first := &recordingCloser{}
	second := &recordingCloser{}
	app := newTestApp(t, WithCloser("first", first), WithCloser("second", second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestShutdownReportsFirstCloseError(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingCloser{err: boom}
	after := &recordingCloser{}
	app := newTestApp(t, WithCloser("failing", failing), WithCloser("after", after), WithQueue(nil), WithProducer(nil), WithRedis(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.True(t, after.closed, "later closers still run")
}
