package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketFeed/internal/scheduler"
	"MarketFeed/pkg/config"
	xhttp "MarketFeed/pkg/http"
	pkgkafka "MarketFeed/pkg/kafka"
	applogger "MarketFeed/pkg/logger"
	"MarketFeed/pkg/queue"

	"github.com/redis/go-redis/v9"
)

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
	queue      *queue.RedisQueue
	producer   *pkgkafka.Producer
	redis      *redis.Client
	closers    []namedCloser
}

// Option configures App.
type Option func(*App)

// WithQueue attaches the notification queue; nil is ignored.
func WithQueue(q *queue.RedisQueue) Option {
	return func(a *App) { a.queue = q }
}

// WithProducer attaches the Kafka producer closed on shutdown; nil is ignored.
func WithProducer(p *pkgkafka.Producer) Option {
	return func(a *App) { a.producer = p }
}

// WithRedis attaches the Redis client closed last on shutdown; nil is ignored.
func WithRedis(c *redis.Client) Option {
	return func(a *App) { a.redis = c }
}

// WithCloser registers a resource closed on shutdown, in registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, namedCloser{name: name, c: c}) }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler, opts ...Option) *App {
	if logger == nil {
		logger = applogger.NewNop()
	}
	a := &App{
		cfg:        cfg,
		logger:     logger.With("app"),
		httpServer: srv,
		scheduler:  sched,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until ctx is done or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.logger.Error("notification queue start error", applogger.Error(err))
		}
	}
	a.logger.Info("marketfeed started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("provider", a.cfg.MarketData.Provider),
		applogger.Int("port", a.cfg.Server.Port),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then background work, then infrastructure clients.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		keep(err)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			a.logger.Warn("scheduler stop error", applogger.Error(err))
			keep(err)
		}
	}
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
			keep(err)
		}
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.logger.Warn("notification queue stop error", applogger.Error(err))
			keep(err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
			keep(err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close error", applogger.Error(err))
			keep(err)
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
