package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 2 * time.Minute
	defaultLockRetry = 100 * time.Millisecond
)

// JobLocker serializes writes to the result log of a single job. Different
// jobs never contend.
type JobLocker interface {
	Lock(ctx context.Context, jobID uuid.UUID) (unlock func(), err error)
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process lock per job id. Entries are dropped when the
// last holder or waiter leaves.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*keyedEntry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, jobID uuid.UUID) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[jobID]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[jobID] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.leave(jobID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.leave(jobID, e)
		})
	}, nil
}

func (k *KeyedMutex) leave(jobID uuid.UUID, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, jobID)
	}
}

// DistributedJobLocker takes the in-process lock first and then a Redis lease
// so that several server processes sharing one database also serialize. When
// Redis is down it degrades to the in-process lock.
type DistributedJobLocker struct {
	local  *KeyedMutex
	store  LockStore
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

func NewDistributedJobLocker(store LockStore, ttl time.Duration, logger *zap.Logger) *DistributedJobLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistributedJobLocker{
		local:  NewKeyedMutex(),
		store:  store,
		ttl:    ttl,
		retry:  defaultLockRetry,
		logger: logger,
	}
}

func (l *DistributedJobLocker) Lock(ctx context.Context, jobID uuid.UUID) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if l.store == nil || !l.store.Available() {
		return unlockLocal, nil
	}

	key := JobLockKey(jobID)
	token := uuid.NewString()
	for {
		ok, err := l.store.SetIfNotExists(ctx, key, token, l.ttl)
		if err != nil {
			l.logger.Warn("job lock store error, using local lock only",
				zap.String("job_id", jobID.String()), zap.Error(err))
			return unlockLocal, nil
		}
		if ok {
			break
		}
		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			unlockLocal()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() {
		// Released with a fresh context so a cancelled caller still frees the lease.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := l.store.DeleteIfValue(rctx, key, token); err != nil {
			l.logger.Warn("job lock release failed", zap.String("job_id", jobID.String()), zap.Error(err))
		}
		unlockLocal()
	}, nil
}
