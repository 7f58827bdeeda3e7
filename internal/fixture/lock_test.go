package fixture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "fixtures:lock:"), mr
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "default", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("fixtures:lock:default"))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("fixtures:lock:default"))
}

func TestRedisLocker_HeldLockConflicts(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "default", time.Minute)
	require.NoError(t, err)
	defer func() { _ = release(ctx) }()

	_, err = locker.Acquire(ctx, "default", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestRedisLocker_ExpiredLockCanBeRetaken(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	staleRelease, err := locker.Acquire(ctx, "default", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	release, err := locker.Acquire(ctx, "default", time.Minute)
	require.NoError(t, err)

	// The stale holder must not delete the new holder's lock.
	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("fixtures:lock:default"))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("fixtures:lock:default"))
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	locker, mr := newTestLocker(t)
	mr.Close()

	_, err := locker.Acquire(context.Background(), "default", time.Minute)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "x", time.Second)
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}
