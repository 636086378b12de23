package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"MarketFeed/internal/domain/models"
	applogger "MarketFeed/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	enabled bool
	calls   atomic.Int32
}

func (c *countingChecker) Enabled() bool { return c.enabled }

func (c *countingChecker) CheckAndGenerateAlerts(context.Context) []models.AlertRecord {
	c.calls.Add(1)
	return []models.AlertRecord{{ID: "1"}}
}

type countingCleaner struct{ n int }

func (c *countingCleaner) CleanCache() int {
	c.n++
	return 3
}

type sweeper struct{ idle time.Duration }

func (s *sweeper) Sweep(idle time.Duration) int {
	s.idle = idle
	return 1
}

type fetcher struct{ enabled bool }

func (f fetcher) Enabled() bool { return f.enabled }

func (f fetcher) FetchArticles(context.Context) []models.NewsArticle {
	return []models.NewsArticle{{Title: "t", URL: "u", Source: "Polygon/Reuters"}}
}

func TestRegisterSkipsDisabledJobs(t *testing.T) {
	s := New(nil)
	l := applogger.NewNop()
	require.NoError(t, s.Register(
		EconomicCheckJob("@every 1h", &countingChecker{enabled: false}, l),
		NewsScrapeJob("@every 30m", fetcher{enabled: false}, l),
		CacheCleanJob("", nil, time.Minute, l),
		EconomicCheckJob("@every 1h", nil, l),
	))
	assert.Empty(t, s.Jobs())
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New(nil)
	err := s.Register(EconomicCheckJob("every hour", &countingChecker{enabled: true}, applogger.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "economic_check")
}

func TestNextActivation(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Register(EconomicCheckJob("@every 1h", &countingChecker{enabled: true}, applogger.NewNop())))
	s.Start()
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	next, ok := s.Next("economic_check")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, 5*time.Second)
	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestJobsRunOnSchedule(t *testing.T) {
	checker := &countingChecker{enabled: true}
	s := New(nil)
	require.NoError(t, s.Register(EconomicCheckJob("@every 1s", checker, applogger.NewNop())))
	s.Start()
	require.Eventually(t, func() bool { return checker.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestCacheCleanJob(t *testing.T) {
	a, b := &countingCleaner{}, &countingCleaner{}
	sw := &sweeper{}
	job := CacheCleanJob("@every 5m", sw, 10*time.Minute, applogger.NewNop(), a, nil, b)
	job.Run(context.Background())
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
	assert.Equal(t, 10*time.Minute, sw.idle)
}

func TestNewsScrapeJob(t *testing.T) {
	job := NewsScrapeJob("@every 30m", fetcher{enabled: true}, applogger.NewNop())
	assert.Equal(t, "@every 30m", job.Schedule)
	require.NotNil(t, job.Run)
	job.Run(context.Background())
}
