package scheduler

import (
	"context"
	"fmt"
	"time"

	applogger "MarketFeed/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is one named periodic task.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context)
}

// Scheduler runs periodic jobs on robfig/cron. A job never overlaps itself.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *applogger.Logger
	jobs   map[string]cron.EntryID
}

// New creates a scheduler. Jobs receive a context that is cancelled by Stop.
func New(logger *applogger.Logger) *Scheduler {
	if logger == nil {
		logger = applogger.NewNop()
	}
	logger = logger.With("scheduler")
	cl := cronLogger{l: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Register adds jobs. An empty schedule skips the job.
func (s *Scheduler) Register(jobs ...Job) error {
	for _, j := range jobs {
		if j.Schedule == "" || j.Run == nil {
			s.logger.Debug("job not scheduled", applogger.String("job", j.Name))
			continue
		}
		job := j
		id, err := s.cron.AddFunc(job.Schedule, func() {
			start := time.Now()
			job.Run(s.ctx)
			s.logger.Debug("job finished", applogger.String("job", job.Name), applogger.Duration("duration_ms", time.Since(start)))
		})
		if err != nil {
			return fmt.Errorf("register %s job: %w", job.Name, err)
		}
		s.jobs[job.Name] = id
		s.logger.Info("job scheduled", applogger.String("job", job.Name), applogger.String("schedule", job.Schedule))
	}
	return nil
}

// Jobs returns the names of scheduled jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		names = append(names, n)
	}
	return names
}

// Next returns the next activation of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start starts the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, applogger.Any(key, kv[i+1]))
	}
	return fields
}
