package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-match/internal/domain/match"
	"candidate-match/internal/domain/matching"
	"candidate-match/internal/repository"
	"candidate-match/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultOrchestratorWorkers = 8
	defaultCandidateTimeout    = 10 * time.Second
)

type OrchestratorConfig struct {
	Workers          int
	CandidateTimeout time.Duration
	// RateLimitRPS caps scoring starts per second across workers. Zero disables it.
	RateLimitRPS int
}

type BatchSaver interface {
	SaveBatch(ctx context.Context, b match.Batch, recs []match.Record) error
}

type BatchSummary struct {
	BatchID      uuid.UUID     `json:"batch_id"`
	JobID        uuid.UUID     `json:"job_id"`
	Evaluated    int           `json:"evaluated"`
	Skipped      int           `json:"skipped"`
	Persisted    int           `json:"persisted"`
	Notified     int           `json:"notified"`
	Degraded     int           `json:"degraded"`
	AverageScore float64       `json:"average_score"`
	Duration     time.Duration `json:"duration"`
}

// BatchMatchOrchestrator scores one job against a candidate pool and persists
// the outcome as a single batch.
type BatchMatchOrchestrator struct {
	candidates repository.CandidateRepository
	scorer     Scorer
	store      BatchSaver
	notifier   Notifier
	cfg        OrchestratorConfig
	now        func() time.Time
	logger     *zap.Logger
}

func NewBatchMatchOrchestrator(
	candidates repository.CandidateRepository,
	scorer Scorer,
	store BatchSaver,
	notifier Notifier,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *BatchMatchOrchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultOrchestratorWorkers
	}
	if cfg.CandidateTimeout <= 0 {
		cfg.CandidateTimeout = defaultCandidateTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchMatchOrchestrator{
		candidates: candidates,
		scorer:     scorer,
		store:      store,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.Named("orchestrator"),
	}
}

// RunForJob scores every candidate in pool against job. The returned summary
// carries the id of the persisted batch.
func (o *BatchMatchOrchestrator) RunForJob(ctx context.Context, job matching.JobSnapshot, pool []uuid.UUID) (BatchSummary, error) {
	return o.runBatch(ctx, uuid.New(), job, pool)
}

func (o *BatchMatchOrchestrator) runBatch(ctx context.Context, batchID uuid.UUID, job matching.JobSnapshot, pool []uuid.UUID) (BatchSummary, error) {
	started := time.Now()
	summary := BatchSummary{BatchID: batchID, JobID: job.ID}
	if err := job.Validate(); err != nil {
		return summary, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lg := o.logger.With(zap.String("job_id", job.ID.String()), zap.String("batch_id", batchID.String()))
	lg.Info("batch started", zap.Int("pool_size", len(pool)))

	ids := dedupeIDs(pool)
	summary.Evaluated = len(ids)
	scored := make([]*match.Scored, len(ids))

	if len(ids) > 0 {
		wp := worker.NewPool(o.cfg.Workers, len(ids))
		wp.SetRateLimit(o.cfg.RateLimitRPS)
		results := wp.Run(ctx)

		for i, id := range ids {
			err := wp.Submit(ctx, func(ctx context.Context) error {
				s, err := o.scoreCandidate(ctx, id, job)
				if err != nil {
					lg.Warn("candidate skipped", zap.String("candidate_id", id.String()), zap.Error(err))
					return err
				}
				scored[i] = &s
				return nil
			})
			if err != nil {
				break
			}
		}
		wp.Close()

		for range results {
		}
	}

	if err := ctx.Err(); err != nil {
		lg.Warn("batch aborted", zap.Error(err))
		return summary, err
	}

	kept := make([]match.Scored, 0, len(scored))
	for _, s := range scored {
		if s == nil {
			continue
		}
		if s.Result.Degraded {
			summary.Degraded++
		}
		kept = append(kept, *s)
	}
	summary.Skipped = len(ids) - len(kept)

	header, recs := match.BuildBatch(match.Batch{
		ID:        batchID,
		JobID:     job.ID,
		JobTitle:  job.Title,
		CreatedAt: o.now().UTC(),
	}, kept)

	if err := o.store.SaveBatch(ctx, header, recs); err != nil {
		lg.Error("batch persistence failed", zap.Error(err))
		if !errors.Is(err, ErrPersistence) {
			err = fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return summary, err
	}
	summary.Persisted = len(recs)
	summary.AverageScore = header.AverageScore

	summary.Notified = o.notify(ctx, lg, recs)
	summary.Duration = time.Since(started)

	lg.Info("batch completed",
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("persisted", summary.Persisted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("degraded", summary.Degraded),
		zap.Int("notified", summary.Notified),
		zap.Float64("average_score", summary.AverageScore),
		zap.Int64("elapsed_ms", summary.Duration.Milliseconds()),
	)
	return summary, nil
}

func (o *BatchMatchOrchestrator) scoreCandidate(ctx context.Context, id uuid.UUID, job matching.JobSnapshot) (match.Scored, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CandidateTimeout)
	defer cancel()

	c, err := o.candidates.FindScoringProfile(ctx, id)
	if err != nil {
		return match.Scored{}, fmt.Errorf("load candidate: %w", err)
	}
	res, err := o.scorer.Score(ctx, c, job)
	if err != nil {
		return match.Scored{}, fmt.Errorf("score candidate: %w", err)
	}
	return match.Scored{
		CandidateID:    id,
		CandidateName:  c.Name,
		CandidateEmail: c.Email,
		Result:         res,
	}, nil
}

func (o *BatchMatchOrchestrator) notify(ctx context.Context, lg *zap.Logger, recs []match.Record) int {
	if o.notifier == nil {
		return 0
	}
	sent := 0
	for _, r := range recs {
		if !matching.ShouldNotify(r.Score) {
			continue
		}
		if err := o.notifier.NotifyJobMatched(ctx, r.CandidateID, r.JobID, r.Score); err != nil {
			lg.Warn("notification failed", zap.String("candidate_id", r.CandidateID.String()), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func dedupeIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
