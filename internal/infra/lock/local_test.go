//go:build unit

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booking-engine/internal/infra/lock"
	"booking-engine/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_TimesOutWhileHeld(t *testing.T) {
	l := lock.NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Lock(ctx, "k")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)

	other, err := l.Lock(ctx, "other")
	require.NoError(t, err, "different keys do not contend")
	other(ctx)

	release(ctx)
	release(ctx)

	again, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	again(ctx)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := lock.NewLocalLocker(time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "slot")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}
