package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"github.com/bsm/redislock"
)

// Fallback for deployments (and tests) without redis: per-key in-process
// mutexes. This only serializes within one instance.
var localLocks sync.Map // lockKey => *sync.Mutex

// LockDocument serializes state transitions for a single document across
// instances using redislock. The returned release func must be deferred.
func LockDocument(ctx context.Context, businessId string, kind string, docId int) (func(), error) {
	lockKey := fmt.Sprintf("docLock:%s:%s:%d", businessId, kind, docId)

	locker := config.GetRedisLock()
	if locker == nil {
		v, _ := localLocks.LoadOrStore(lockKey, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		return mu.Unlock, nil
	}

	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err == redislock.ErrNotObtained {
		return nil, errors.New("document is locked by another transition")
	} else if err != nil {
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}
