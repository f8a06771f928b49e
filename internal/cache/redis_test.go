package cache

import (
	"testing"
	"time"

	"clinvarminer/internal/errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachableRedis points at a port nothing listens on
func unreachableRedis() *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisCacheFromClient(client, "clinvarminer:test:")
}

func TestRedisCacheFailuresAreExternal(t *testing.T) {
	rc := unreachableRedis()
	defer rc.Close()

	_, ok, err := rc.Get(t.Context(), "/variants-by-significance")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errors.CodeExternalService), "got %v", err)

	err = rc.Set(t.Context(), "/variants-by-significance", []byte("page"), time.Minute)
	assert.True(t, errors.Is(err, errors.CodeExternalService), "got %v", err)

	err = rc.Clear(t.Context())
	assert.True(t, errors.Is(err, errors.CodeExternalService), "got %v", err)
	assert.Equal(t, 502, errors.HTTPStatus(err))
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("memcached://localhost", "p:")
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid), "got %v", err)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache("redis://127.0.0.1:1/0", "p:")
	assert.True(t, errors.Is(err, errors.CodeExternalService), "got %v", err)
}
