package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/domain/match"
	"candidate-match/internal/domain/matching"
	"candidate-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxPreviewCandidates = 100

type ResultStore interface {
	GetLatest(ctx context.Context, jobID uuid.UUID) (match.Latest, error)
	GetOne(ctx context.Context, jobID, candidateID uuid.UUID) (match.Record, error)
	HasResults(ctx context.Context, jobID uuid.UUID) (bool, error)
	DeleteStale(ctx context.Context, jobID uuid.UUID, olderThan time.Duration) (int64, error)
	DeleteAll(ctx context.Context, jobID uuid.UUID) (int64, error)
}

type MatchingUsecase interface {
	GetRankedMatches(ctx context.Context, jobID uuid.UUID) (match.Latest, error)
	GetMatch(ctx context.Context, jobID, candidateID uuid.UUID) (match.Record, error)
	HasResults(ctx context.Context, jobID uuid.UUID) (bool, error)
	DeleteMatches(ctx context.Context, jobID uuid.UUID) (int64, error)
	MatchSingle(ctx context.Context, candidateID, jobID uuid.UUID) (matching.Result, error)
	ExplainMatch(ctx context.Context, candidateID, jobID uuid.UUID, includeSuggestions bool) (matching.Explanation, error)
	PreviewMatches(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID) (aiservice.BatchMatch, error)
	AIHealth(ctx context.Context) aiservice.Health
}

type MatchingService struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	store      ResultStore
	gateway    Gateway
	local      *LocalScorer
	logger     *zap.Logger
}

func NewMatchingService(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	store ResultStore,
	gateway Gateway,
	engine *matching.Engine,
	logger *zap.Logger,
) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{
		jobs:       jobs,
		candidates: candidates,
		store:      store,
		gateway:    gateway,
		local:      NewLocalScorer(engine),
		logger:     logger.Named("matching"),
	}
}

// GetRankedMatches returns the latest batch of an existing job. A job that was
// never matched yields an empty list.
func (s *MatchingService) GetRankedMatches(ctx context.Context, jobID uuid.UUID) (match.Latest, error) {
	if _, err := s.loadJob(ctx, jobID); err != nil {
		return match.Latest{}, err
	}
	return s.store.GetLatest(ctx, jobID)
}

func (s *MatchingService) GetMatch(ctx context.Context, jobID, candidateID uuid.UUID) (match.Record, error) {
	if candidateID == uuid.Nil {
		return match.Record{}, fmt.Errorf("%w: candidate id is required", ErrInvalidInput)
	}
	if _, err := s.loadJob(ctx, jobID); err != nil {
		return match.Record{}, err
	}
	return s.store.GetOne(ctx, jobID, candidateID)
}

func (s *MatchingService) HasResults(ctx context.Context, jobID uuid.UUID) (bool, error) {
	if _, err := s.loadJob(ctx, jobID); err != nil {
		return false, err
	}
	return s.store.HasResults(ctx, jobID)
}

func (s *MatchingService) DeleteMatches(ctx context.Context, jobID uuid.UUID) (int64, error) {
	if _, err := s.loadJob(ctx, jobID); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteAll(ctx, jobID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("match results deleted", zap.String("job_id", jobID.String()), zap.Int64("batches", n))
	return n, nil
}

// MatchSingle scores one candidate on demand without persisting anything.
func (s *MatchingService) MatchSingle(ctx context.Context, candidateID, jobID uuid.UUID) (matching.Result, error) {
	c, j, err := s.loadPair(ctx, candidateID, jobID)
	if err != nil {
		return matching.Result{}, err
	}

	if s.gateway != nil {
		res := s.gateway.MatchSingle(ctx, c, j)
		if !res.Degraded {
			return res, nil
		}
	}
	res, err := s.local.Score(ctx, c, j)
	if err != nil {
		return matching.Result{}, err
	}
	res.Degraded = s.gateway != nil
	return res, nil
}

// ExplainMatch returns the gateway explanation, or a locally built one flagged
// as degraded when the gateway cannot answer.
func (s *MatchingService) ExplainMatch(ctx context.Context, candidateID, jobID uuid.UUID, includeSuggestions bool) (matching.Explanation, error) {
	c, j, err := s.loadPair(ctx, candidateID, jobID)
	if err != nil {
		return matching.Explanation{}, err
	}

	if s.gateway != nil {
		ex := s.gateway.Explain(ctx, c, j, includeSuggestions)
		if !ex.Degraded {
			return ex, nil
		}
		s.logger.Debug("explanation from local engine",
			zap.String("candidate_id", candidateID.String()),
			zap.String("job_id", jobID.String()),
		)
	}

	res, err := s.local.Score(ctx, c, j)
	if err != nil {
		return matching.Explanation{}, err
	}
	ex := matching.ExplainResult(candidateID, jobID, res, includeSuggestions)
	ex.Degraded = s.gateway != nil
	return ex, nil
}

// PreviewMatches ranks the given candidates through the AI service without
// persisting a batch. Candidates without a profile are left out.
func (s *MatchingService) PreviewMatches(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID) (aiservice.BatchMatch, error) {
	ids := dedupeIDs(candidateIDs)
	if len(ids) == 0 {
		return aiservice.BatchMatch{}, fmt.Errorf("%w: candidate_ids is required", ErrInvalidInput)
	}
	if len(ids) > MaxPreviewCandidates {
		return aiservice.BatchMatch{}, fmt.Errorf("%w: at most %d candidates", ErrInvalidInput, MaxPreviewCandidates)
	}
	j, err := s.loadJob(ctx, jobID)
	if err != nil {
		return aiservice.BatchMatch{}, err
	}
	if err := j.Validate(); err != nil {
		return aiservice.BatchMatch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	cands := make([]matching.CandidateSnapshot, 0, len(ids))
	for _, id := range ids {
		c, err := s.candidates.FindScoringProfile(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCandidateNotFound) {
				s.logger.Debug("preview candidate skipped", zap.String("candidate_id", id.String()), zap.Error(err))
				continue
			}
			return aiservice.BatchMatch{}, fmt.Errorf("%w: load candidate: %v", ErrPersistence, err)
		}
		cands = append(cands, c)
	}
	if s.gateway == nil {
		return aiservice.BatchMatch{}, ErrUpstreamUnavailable
	}
	return s.gateway.MatchBatch(ctx, cands, j), nil
}

func (s *MatchingService) AIHealth(ctx context.Context) aiservice.Health {
	if s.gateway == nil {
		return aiservice.Health{Status: aiservice.StatusUnhealthy, Message: "AI service unavailable: not configured"}
	}
	return s.gateway.Health(ctx)
}

func (s *MatchingService) loadJob(ctx context.Context, jobID uuid.UUID) (matching.JobSnapshot, error) {
	if jobID == uuid.Nil {
		return matching.JobSnapshot{}, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	j, err := s.jobs.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return matching.JobSnapshot{}, ErrJobNotFound
		}
		return matching.JobSnapshot{}, fmt.Errorf("%w: load job: %v", ErrPersistence, err)
	}
	return j, nil
}

func (s *MatchingService) loadPair(ctx context.Context, candidateID, jobID uuid.UUID) (matching.CandidateSnapshot, matching.JobSnapshot, error) {
	if candidateID == uuid.Nil {
		return matching.CandidateSnapshot{}, matching.JobSnapshot{}, fmt.Errorf("%w: candidate id is required", ErrInvalidInput)
	}
	j, err := s.loadJob(ctx, jobID)
	if err != nil {
		return matching.CandidateSnapshot{}, matching.JobSnapshot{}, err
	}
	if err := j.Validate(); err != nil {
		return matching.CandidateSnapshot{}, matching.JobSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c, err := s.candidates.FindScoringProfile(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			return matching.CandidateSnapshot{}, matching.JobSnapshot{}, ErrCandidateNotFound
		}
		return matching.CandidateSnapshot{}, matching.JobSnapshot{}, fmt.Errorf("%w: load candidate: %v", ErrPersistence, err)
	}
	return c, j, nil
}
