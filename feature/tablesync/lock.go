package tablesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when another run holds the lock.
	ErrRunInProgress = errors.New("another synchronization run is in progress")
	// ErrLockLost is the cancellation cause of a run whose lease could not be refreshed.
	ErrLockLost = errors.New("run lock lost")
)

// RunLock is a redis lease held for the duration of one run. It is refreshed at
// half its TTL until released. Lost is closed when a refresh fails.
type RunLock struct {
	lock *redislock.Lock
	ttl  time.Duration
	log  *zap.Logger

	stop chan struct{}
	done chan struct{}
	lost chan struct{}
	once sync.Once
}

// AcquireRunLock obtains the lease at key without retrying.
func AcquireRunLock(ctx context.Context, client redis.UniversalClient, key, runID string, ttl time.Duration, log *zap.Logger) (*RunLock, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	lock, err := redislock.New(client).Obtain(ctx, key, ttl, &redislock.Options{Metadata: runID})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: lock %s is held", ErrRunInProgress, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	l := &RunLock{
		lock: lock,
		ttl:  ttl,
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
		lost: make(chan struct{}),
	}
	go l.refresh()
	return l, nil
}

func (l *RunLock) refresh() {
	defer close(l.done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			err := l.lock.Refresh(ctx, l.ttl, nil)
			cancel()
			if err != nil {
				l.log.Error("Run lock lost", zap.String("key", l.lock.Key()), zap.Error(err))
				close(l.lost)
				return
			}
		}
	}
}

// Lost is closed once the lease could not be refreshed. Another run may hold it.
func (l *RunLock) Lost() <-chan struct{} {
	return l.lost
}

// Guard returns a context that is cancelled with ErrLockLost when the lease is lost.
// The returned stop function must be called once the run is over.
func (l *RunLock) Guard(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	stopped := make(chan struct{})
	go func() {
		select {
		case <-l.lost:
			cancel(ErrLockLost)
		case <-stopped:
		}
	}()
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(stopped)
			cancel(nil)
		})
	}
}

// Release stops refreshing and drops the lease. It is safe to call more than once.
func (l *RunLock) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		<-l.done
		err = l.lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			err = nil
		}
	})
	return err
}
