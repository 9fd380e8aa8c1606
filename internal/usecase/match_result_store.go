package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-match/internal/domain/match"
	"candidate-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultRetention      = 7 * 24 * time.Hour
	defaultLatestCacheTTL = 5 * time.Minute
)

type StoreOptions struct {
	Retention time.Duration
	CacheTTL  time.Duration
	Now       func() time.Time
}

// MatchResultStore is the only writer of match results. Every write for a job
// runs under that job's lock; reads see either the previous or the new batch.
type MatchResultStore struct {
	repo      repository.MatchResultRepository
	locks     JobLocker
	cache     ResultCache
	retention time.Duration
	cacheTTL  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewMatchResultStore(repo repository.MatchResultRepository, locks JobLocker, cache ResultCache, opts StoreOptions, logger *zap.Logger) *MatchResultStore {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultLatestCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchResultStore{
		repo:      repo,
		locks:     locks,
		cache:     cache,
		retention: opts.Retention,
		cacheTTL:  opts.CacheTTL,
		now:       opts.Now,
		logger:    logger.Named("match_store"),
	}
}

func (s *MatchResultStore) Retention() time.Duration {
	return s.retention
}

// SaveBatch purges batches of the job older than the retention window and then
// appends b with its records in one transaction.
func (s *MatchResultStore) SaveBatch(ctx context.Context, b match.Batch, recs []match.Record) error {
	if b.ID == uuid.Nil || b.JobID == uuid.Nil {
		return fmt.Errorf("%w: batch and job id are required", ErrInvalidInput)
	}
	for _, r := range recs {
		if r.JobID != b.JobID || r.BatchID != b.ID {
			return fmt.Errorf("%w: record %s does not belong to batch %s", ErrInvalidInput, r.CandidateID, b.ID)
		}
	}

	unlock, err := s.locks.Lock(ctx, b.JobID)
	if err != nil {
		return fmt.Errorf("%w: acquire job lock: %v", ErrPersistence, err)
	}
	defer unlock()

	cutoff := s.now().Add(-s.retention)
	purged, err := s.repo.DeleteBatchesBefore(ctx, b.JobID, cutoff)
	if err != nil {
		return fmt.Errorf("%w: purge stale batches: %v", ErrPersistence, err)
	}
	if err := s.repo.InsertBatch(ctx, b, recs); err != nil {
		return fmt.Errorf("%w: insert batch: %v", ErrPersistence, err)
	}
	s.invalidate(ctx, b.JobID)

	s.logger.Info("batch saved",
		zap.String("job_id", b.JobID.String()),
		zap.String("batch_id", b.ID.String()),
		zap.Int("records", len(recs)),
		zap.Int64("purged_batches", purged),
	)
	return nil
}

// GetLatest returns the newest batch of a job ordered by rank. A job that was
// never matched yields an empty result, not an error.
func (s *MatchResultStore) GetLatest(ctx context.Context, jobID uuid.UUID) (match.Latest, error) {
	key := LatestMatchesCacheKey(jobID)
	if s.cache != nil {
		var cached match.Latest
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Debug("latest cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			if cached.Records == nil {
				cached.Records = []match.Record{}
			}
			return cached, nil
		}
	}

	b, err := s.repo.LatestBatch(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchBatchNotFound) {
			return match.Latest{Records: []match.Record{}}, nil
		}
		return match.Latest{}, fmt.Errorf("%w: latest batch: %v", ErrPersistence, err)
	}
	recs, err := s.repo.ListByBatch(ctx, b.ID)
	if err != nil {
		return match.Latest{}, fmt.Errorf("%w: list batch: %v", ErrPersistence, err)
	}
	latest := match.Latest{Batch: b, Records: recs}
	s.fillCache(ctx, jobID, latest)
	return latest, nil
}

// fillCache stores latest only while it is still the newest batch of the job.
// Writers invalidate under the same lock, so a slow reader cannot put a
// superseded batch back into the cache.
func (s *MatchResultStore) fillCache(ctx context.Context, jobID uuid.UUID, latest match.Latest) {
	if s.cache == nil {
		return
	}
	key := LatestMatchesCacheKey(jobID)

	unlock, err := s.locks.Lock(ctx, jobID)
	if err != nil {
		s.logger.Debug("latest cache fill skipped", zap.String("key", key), zap.Error(err))
		return
	}
	defer unlock()

	cur, err := s.repo.LatestBatch(ctx, jobID)
	if err != nil || cur.ID != latest.Batch.ID {
		return
	}
	if err := s.cache.SetJSON(ctx, key, latest, s.cacheTTL); err != nil {
		s.logger.Debug("latest cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOne looks the candidate up in the newest batch only.
func (s *MatchResultStore) GetOne(ctx context.Context, jobID, candidateID uuid.UUID) (match.Record, error) {
	b, err := s.repo.LatestBatch(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchBatchNotFound) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, fmt.Errorf("%w: latest batch: %v", ErrPersistence, err)
	}
	rec, err := s.repo.FindInBatch(ctx, b.ID, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchResultNotFound) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, fmt.Errorf("%w: find in batch: %v", ErrPersistence, err)
	}
	return rec, nil
}

func (s *MatchResultStore) HasResults(ctx context.Context, jobID uuid.UUID) (bool, error) {
	latest, err := s.GetLatest(ctx, jobID)
	if err != nil {
		return false, err
	}
	return len(latest.Records) > 0, nil
}

// DeleteStale removes batches of the job created before now-olderThan and
// reports how many batches were removed.
func (s *MatchResultStore) DeleteStale(ctx context.Context, jobID uuid.UUID, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.retention
	}
	unlock, err := s.locks.Lock(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("%w: acquire job lock: %v", ErrPersistence, err)
	}
	defer unlock()

	n, err := s.repo.DeleteBatchesBefore(ctx, jobID, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("%w: delete stale batches: %v", ErrPersistence, err)
	}
	if n > 0 {
		s.invalidate(ctx, jobID)
	}
	return n, nil
}

func (s *MatchResultStore) DeleteAll(ctx context.Context, jobID uuid.UUID) (int64, error) {
	unlock, err := s.locks.Lock(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("%w: acquire job lock: %v", ErrPersistence, err)
	}
	defer unlock()

	n, err := s.repo.DeleteByJob(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete job batches: %v", ErrPersistence, err)
	}
	s.invalidate(ctx, jobID)
	return n, nil
}

func (s *MatchResultStore) invalidate(ctx context.Context, jobID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, LatestMatchesCacheKey(jobID)); err != nil {
		s.logger.Warn("latest cache invalidation failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}
