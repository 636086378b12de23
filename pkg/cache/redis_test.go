package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCacheFailsWithoutServer(t *testing.T) {
	rc, err := NewRedisCache(context.Background(),
		WithRedisAddr("127.0.0.1:1"),
		WithRedisPool(1, 0, 0),
		WithRedisPrefix("test"),
	)
	require.Error(t, err)
	assert.Nil(t, rc)
	assert.Contains(t, err.Error(), "redis ping")
}
