package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/transit/pkg/adapters/redis"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SerialisesSameKey(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "prod", func(context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
	assert.Zero(t, m.Active())
}

func TestManager_LockLifecycle(t *testing.T) {
	m := session.NewManager()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.WithLock(ctx, "target-"+string(rune('a'+i%26)), func(context.Context) error { return nil }))
	}
	assert.Zero(t, m.Active(), "locks must be released after use")
}

func TestManager_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := session.NewManager().WithLock(context.Background(), "prod", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, redis.ErrLockAcquire
}

func TestManager_DistributedLockFailure(t *testing.T) {
	m := session.NewManager(session.WithLocker(failingLocker{}))

	called := false
	err := m.WithLock(context.Background(), "prod", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.False(t, called)
}

func TestManager_WithRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	m := session.NewManager(session.WithLocker(redis.NewLocker(client, "transit:")), session.WithLockTTL(time.Minute))
	ctx := context.Background()

	err := m.WithLock(ctx, "prod", func(context.Context) error {
		assert.True(t, mr.Exists("transit:lock:prod"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("transit:lock:prod"))
}
