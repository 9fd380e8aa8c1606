package usecase

import (
	"context"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

// Notifier delivers job_matched events. Delivery is best effort.
type Notifier interface {
	NotifyJobMatched(ctx context.Context, candidateID, jobID uuid.UUID, score float64) error
}

type Scorer interface {
	Score(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot) (matching.Result, error)
}

type Gateway interface {
	MatchSingle(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot) matching.Result
	MatchBatch(ctx context.Context, cs []matching.CandidateSnapshot, j matching.JobSnapshot) aiservice.BatchMatch
	Explain(ctx context.Context, c matching.CandidateSnapshot, j matching.JobSnapshot, includeSuggestions bool) matching.Explanation
	Health(ctx context.Context) aiservice.Health
}
