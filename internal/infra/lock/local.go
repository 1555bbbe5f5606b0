package lock

import (
	"context"
	"sync"
	"time"

	"booking-engine/internal/usecase/shared"
)

// LocalLocker serializes callers inside one process. It is used when no
// Redis is configured; the database exclusion constraint still guards
// against other instances.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	wait time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{held: make(map[string]chan struct{}), wait: wait}
}

var _ shared.SlotLocker = (*LocalLocker)(nil)

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(context.Context), error) {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	for {
		l.mu.Lock()
		busy, taken := l.held[key]
		if !taken {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			return l.releaser(key, done), nil
		}
		l.mu.Unlock()

		select {
		case <-busy:
		case <-timer.C:
			return nil, shared.ErrLockNotAcquired
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *LocalLocker) releaser(key string, done chan struct{}) func(context.Context) {
	var once sync.Once
	return func(context.Context) {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
			close(done)
		})
	}
}
