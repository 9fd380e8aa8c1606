package usecase

import (
	"context"
	"fmt"
	"time"

	"candidate-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StaleDeleter interface {
	DeleteStale(ctx context.Context, jobID uuid.UUID, olderThan time.Duration) (int64, error)
}

// RetentionSweeper periodically drops batches older than the retention window
// for every active job.
type RetentionSweeper struct {
	jobs      repository.JobRepository
	store     StaleDeleter
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
}

func NewRetentionSweeper(jobs repository.JobRepository, store StaleDeleter, retention, interval time.Duration, logger *zap.Logger) *RetentionSweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionSweeper{
		jobs:      jobs,
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger.Named("sweeper"),
	}
}

// Sweep runs one pass. A failure on one job does not stop the others; the
// first error is returned after the pass.
func (s *RetentionSweeper) Sweep(ctx context.Context) (int64, error) {
	jobs, err := s.jobs.FindActiveJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list active jobs: %v", ErrPersistence, err)
	}

	var total int64
	var firstErr error
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.store.DeleteStale(ctx, j.ID, s.retention)
		if err != nil {
			s.logger.Warn("stale batch cleanup failed", zap.String("job_id", j.ID.String()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	s.logger.Info("retention sweep finished", zap.Int("jobs", len(jobs)), zap.Int64("deleted_batches", total))
	return total, firstErr
}

// Start sweeps every interval until ctx ends.
func (s *RetentionSweeper) Start(ctx context.Context) {
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
					s.logger.Warn("retention sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
