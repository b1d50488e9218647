package workers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "test:", ttl), mr
}

func TestRedisLocker_ExclusiveUntilUnlock(t *testing.T) {
	locker, mr := newTestLocker(t, time.Minute)
	ctx := context.Background()

	lock, err := locker.Lock(ctx, "review-reminder")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:review-reminder"))

	_, err = locker.Lock(ctx, "review-reminder")
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists("test:review-reminder"))

	again, err := locker.Lock(ctx, "review-reminder")
	require.NoError(t, err)
	require.NoError(t, again.Unlock(ctx))
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	locker, mr := newTestLocker(t, time.Minute)
	ctx := context.Background()

	_, err := locker.Lock(ctx, "job")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = locker.Lock(ctx, "job")
	assert.NoError(t, err)
}

func TestRedisLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	locker, mr := newTestLocker(t, time.Minute)
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "job")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = locker.Lock(ctx, "job")
	require.NoError(t, err)

	require.NoError(t, stale.Unlock(ctx))
	assert.True(t, mr.Exists("test:job"), "new owner's lock must survive a stale unlock")
}
