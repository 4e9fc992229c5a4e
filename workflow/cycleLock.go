package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/davide122/energy-sub000/config"
)

const (
	cycleLockKey = "notification-cycle"
	cycleLockTTL = 5 * time.Minute
)

var ErrCycleAlreadyRunning = errors.New("a notification cycle is already running")

// AcquireCycleLock serializes cycle runs across instances so an overlapping
// manual trigger and scheduled run don't race the eligibility check. The
// lock is a best-effort optimization: the (contract, type, day) unique index
// is the hard guarantee, so a missing Redis client yields a nil lock and the
// cycle proceeds.
func AcquireCycleLock(ctx context.Context) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lock, err := locker.Obtain(ctx, cycleLockKey, cycleLockTTL, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrCycleAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func ReleaseCycleLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
