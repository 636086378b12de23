package queue

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// errEmpty is returned by pop when nothing arrived before the timeout.
var errEmpty = errors.New("queue empty")

// store is the storage the queue needs: a list for ready messages and a
// sorted set for delayed retries.
type store interface {
	ping(ctx context.Context) error
	push(ctx context.Context, key string, data []byte) error
	pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error)
	schedule(ctx context.Context, key string, data []byte, at time.Time) error
	due(ctx context.Context, key string, now time.Time) ([]string, error)
	promote(ctx context.Context, from, to, member string) error
	addr() string
}

type redisStore struct {
	client *redis.Client
}

func (s redisStore) ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s redisStore) push(ctx context.Context, key string, data []byte) error {
	return s.client.LPush(ctx, key, data).Err()
}

func (s redisStore) pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	res, err := s.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errEmpty
		}
		return nil, err
	}
	if len(res) < 2 {
		return nil, errEmpty
	}
	return []byte(res[1]), nil
}

func (s redisStore) schedule(ctx context.Context, key string, data []byte, at time.Time) error {
	return s.client.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: data}).Err()
}

func (s redisStore) due(ctx context.Context, key string, now time.Time) ([]string, error) {
	return s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

func (s redisStore) promote(ctx context.Context, from, to, member string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, from, member)
	pipe.LPush(ctx, to, member)
	_, err := pipe.Exec(ctx)
	return err
}

func (s redisStore) addr() string { return s.client.Options().Addr }
