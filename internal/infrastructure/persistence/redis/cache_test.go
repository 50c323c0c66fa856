package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 10, opts.PoolSize)

	cfg.URL = "redis://:secret@cache.internal:6380/2"
	opts, err = cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)

	cfg.URL = "http://wrong"
	_, err = cfg.options()
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "nextedu:history:g1:STU-001:sem2", HistoryKey("g1", "STU-001", "sem2"))
	assert.Equal(t, "nextedu:history:*:STU-001:*", HistoryPattern("STU-001"))
	assert.Equal(t, "nextedu:snapshot:portal", SnapshotKey("portal"))
	assert.Equal(t, "nextedu:ratelimit:chatbot:STU-001:42", RateLimitKey("STU-001", "chatbot", 42))
}

func TestCache_ArgumentChecks(t *testing.T) {
	c := &Cache{}
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.Get(ctx, "", new(int)), ErrCacheKeyEmpty)
	assert.NoError(t, c.Delete(ctx))

	_, err := c.DeleteByPattern(ctx, "")
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
}
