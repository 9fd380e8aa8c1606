package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ResultCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// LockStore is the shared key space used for cross-process job locks.
type LockStore interface {
	Available() bool
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key string, value string) (bool, error)
}

func LatestMatchesCacheKey(jobID uuid.UUID) string {
	return "matches:latest:" + jobID.String()
}

func JobLockKey(jobID uuid.UUID) string {
	return "matches:lock:" + jobID.String()
}
