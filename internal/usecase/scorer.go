package usecase

import (
	"context"
	"errors"
	"fmt"

	"candidate-match/internal/config"
	"candidate-match/internal/domain/matching"

	"go.uber.org/zap"
)

// LocalScorer runs the in-process weighted engine.
type LocalScorer struct {
	engine *matching.Engine
}

func NewLocalScorer(engine *matching.Engine) *LocalScorer {
	if engine == nil {
		engine = matching.NewEngine()
	}
	return &LocalScorer{engine: engine}
}

func (s *LocalScorer) Score(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot) (matching.Result, error) {
	if err := ctx.Err(); err != nil {
		return matching.Result{}, err
	}
	res, err := s.engine.Score(&c, j)
	if err != nil {
		return matching.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return res, nil
}

// GatewayScorer delegates to the AI service. A degraded gateway answer is
// reported as ErrUpstreamUnavailable together with the neutral result.
type GatewayScorer struct {
	gateway Gateway
}

func NewGatewayScorer(gw Gateway) *GatewayScorer {
	return &GatewayScorer{gateway: gw}
}

func (s *GatewayScorer) Score(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot) (matching.Result, error) {
	res := s.gateway.MatchSingle(ctx, c, j)
	if res.Degraded {
		return res, ErrUpstreamUnavailable
	}
	return res, nil
}

// FallbackScorer asks primary first and falls back to the local engine when
// primary is unavailable. Fallback results are flagged as degraded.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	logger   *zap.Logger
}

func NewFallbackScorer(primary, fallback Scorer, logger *zap.Logger) *FallbackScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackScorer{primary: primary, fallback: fallback, logger: logger}
}

func (s *FallbackScorer) Score(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot) (matching.Result, error) {
	res, err := s.primary.Score(ctx, c, j)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrUpstreamUnavailable) || s.fallback == nil {
		return res, err
	}
	s.logger.Debug("primary scorer unavailable, using local engine",
		zap.String("candidate_id", c.ID.String()),
		zap.String("job_id", j.ID.String()),
	)
	// The primary may have failed because ctx expired. Local scoring does no
	// I/O, so it runs detached from that deadline.
	local, lerr := s.fallback.Score(context.WithoutCancel(ctx), c, j)
	if lerr != nil {
		return matching.Result{}, lerr
	}
	local.Degraded = true
	return local, nil
}

// NewScorer picks the scoring path for the configured mode.
func NewScorer(mode string, engine *matching.Engine, gw Gateway, logger *zap.Logger) Scorer {
	local := NewLocalScorer(engine)
	if mode != config.ScorerAI || gw == nil {
		return local
	}
	return NewFallbackScorer(NewGatewayScorer(gw), local, logger)
}
