package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	lists   map[string][][]byte
	zsets   map[string]map[string]time.Time
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{lists: map[string][][]byte{}, zsets: map[string]map[string]time.Time{}}
}

func (s *memStore) ping(context.Context) error { return s.pingErr }

func (s *memStore) push(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([][]byte{data}, s.lists[key]...)
	return nil
}

func (s *memStore) pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		l := s.lists[key]
		if n := len(l); n > 0 {
			v := l[n-1]
			s.lists[key] = l[:n-1]
			s.mu.Unlock()
			return v, nil
		}
		s.mu.Unlock()
		if time.Now().After(deadline) {
			return nil, errEmpty
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (s *memStore) schedule(_ context.Context, key string, data []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zsets[key] == nil {
		s.zsets[key] = map[string]time.Time{}
	}
	s.zsets[key][string(data)] = at
	return nil
}

func (s *memStore) due(_ context.Context, key string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for m, at := range s.zsets[key] {
		if !at.After(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) promote(ctx context.Context, from, to, member string) error {
	s.mu.Lock()
	delete(s.zsets[from], member)
	s.mu.Unlock()
	return s.push(ctx, to, []byte(member))
}

func (s *memStore) addr() string { return "mem" }

func (s *memStore) len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[key])
}

type payload struct {
	Indicator string `json:"indicator"`
}

type recordingJob struct {
	mu    sync.Mutex
	got   []payload
	fails atomic.Int32
}

func (j *recordingJob) Name() string { return "record" }
func (j *recordingJob) Type() string { return "alert" }

func (j *recordingJob) Handle(_ context.Context, raw json.RawMessage) error {
	if j.fails.Load() > 0 {
		j.fails.Add(-1)
		return errors.New("downstream unavailable")
	}
	p, err := ParsePayload[payload](raw)
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.got = append(j.got, *p)
	j.mu.Unlock()
	return nil
}

func (j *recordingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.got)
}

func TestQueueDeliversMessages(t *testing.T) {
	st := newMemStore()
	q := newQueue(nil, Config{Workers: 2, PollTimeout: 20 * time.Millisecond}, st, ModeProducerConsumer)
	job := &recordingJob{}
	q.RegisterJob(job)
	require.NoError(t, q.Start())
	defer func() { require.NoError(t, q.Stop(context.Background())) }()

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, "alert", payload{Indicator: "cpi"}))
	require.NoError(t, q.Enqueue(ctx, "alert", payload{Indicator: "gdp"}))
	require.Eventually(t, func() bool { return job.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	err := q.Enqueue(ctx, "unknown", payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no job registered")
}

func TestQueueNotRunning(t *testing.T) {
	q := newQueue(nil, Config{}, newMemStore(), ModeProducerOnly)
	require.Error(t, q.Enqueue(context.Background(), "alert", payload{}))

	st := newMemStore()
	st.pingErr = errors.New("connection refused")
	q = newQueue(nil, Config{}, st, ModeProducerOnly)
	require.Error(t, q.Start())
}

func TestProducerOnlyAcceptsAnyType(t *testing.T) {
	st := newMemStore()
	q := newQueue(nil, Config{}, st, ModeProducerOnly, WithKeyPrefix("test"))
	q.RegisterJob(&recordingJob{})
	require.NoError(t, q.Start())
	require.NoError(t, q.Enqueue(context.Background(), "alert", payload{Indicator: "cpi"}))
	assert.Equal(t, 1, st.len("test:messages"))

	var msg Message
	require.NoError(t, json.Unmarshal(st.lists["test:messages"][0], &msg))
	assert.Equal(t, "alert", msg.Type)
	assert.NotEmpty(t, msg.ID)
	assert.JSONEq(t, `{"indicator":"cpi"}`, string(msg.Payload))
	require.NoError(t, q.Stop(context.Background()))
}

func TestFailedMessageIsRetriedThenDeadLettered(t *testing.T) {
	st := newMemStore()
	q := newQueue(nil, Config{RetryLimit: 1, RetryDelay: time.Minute}, st, ModeConsumerOnly)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }
	job := &recordingJob{}
	job.fails.Store(5)
	q.RegisterJob(job)

	raw, _ := json.Marshal(payload{Indicator: "cpi"})
	q.process(Message{ID: "m1", Type: "alert", Payload: raw})
	require.Len(t, st.zsets[q.retryKey()], 1)

	q.promoteDue()
	assert.Equal(t, 0, st.len(q.queueKey()), "retry is not due yet")

	now = now.Add(time.Minute)
	q.promoteDue()
	require.Equal(t, 1, st.len(q.queueKey()))

	data, err := st.pop(context.Background(), q.queueKey(), time.Millisecond)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, 1, msg.Attempts)

	q.process(msg)
	assert.Equal(t, 1, st.len(q.deadLetterKey()))
}

func TestUnknownTypeIsDeadLettered(t *testing.T) {
	st := newMemStore()
	q := newQueue(nil, Config{}, st, ModeConsumerOnly)
	q.process(Message{ID: "x", Type: "nobody"})
	assert.Equal(t, 1, st.len(q.deadLetterKey()))
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload[payload](json.RawMessage(`{"indicator":"unemployment"}`))
	require.NoError(t, err)
	assert.Equal(t, "unemployment", p.Indicator)

	_, err = ParsePayload[payload](nil)
	require.Error(t, err)
	_, err = ParsePayload[payload](json.RawMessage(`[`))
	require.Error(t, err)
}
