package dto

import (
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/usecase"

	"github.com/google/uuid"
)

type RunStatusResponse struct {
	JobID        uuid.UUID  `json:"job_id"`
	BatchID      uuid.UUID  `json:"batch_id"`
	State        string     `json:"state"`
	QueuedAt     time.Time  `json:"queued_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Evaluated    int        `json:"evaluated"`
	Persisted    int        `json:"persisted"`
	Skipped      int        `json:"skipped"`
	Notified     int        `json:"notified"`
	AverageScore float64    `json:"average_score"`
	ElapsedMS    int64      `json:"elapsed_ms"`
	Error        string     `json:"error,omitempty"`
}

func NewRunStatusResponse(st usecase.RunStatus) RunStatusResponse {
	out := RunStatusResponse{
		JobID:      st.JobID,
		BatchID:    st.BatchID,
		State:      string(st.State),
		QueuedAt:   st.QueuedAt,
		StartedAt:  st.StartedAt,
		FinishedAt: st.FinishedAt,
		Error:      st.Error,
	}
	if s := st.Summary; s != nil {
		out.Evaluated = s.Evaluated
		out.Persisted = s.Persisted
		out.Skipped = s.Skipped
		out.Notified = s.Notified
		out.AverageScore = s.AverageScore
		out.ElapsedMS = s.Duration.Milliseconds()
	}
	return out
}

func NewPreviewMatchesResponse(b aiservice.BatchMatch) PreviewMatchesResponse {
	out := PreviewMatchesResponse{
		JobID:            b.JobID,
		TotalCandidates:  b.TotalCandidates,
		AverageScore:     b.AverageScore,
		TopSkillsMatched: nonNil(b.TopSkillsMatched),
		Matches:          make([]PreviewMatchResponse, 0, len(b.Matches)),
		Degraded:         b.Degraded,
	}
	for _, m := range b.Matches {
		out.Matches = append(out.Matches, PreviewMatchResponse{
			CandidateID:        m.CandidateID,
			CandidateName:      m.CandidateName,
			Rank:               m.Rank,
			CompatibilityScore: m.Result.Score,
			MatchPercentage:    m.Result.Percentage,
			MatchQuality:       string(m.Result.Quality),
			MatchedSkills:      nonNil(m.Result.MatchedSkills),
			MissingSkills:      nonNil(m.Result.MissingSkills),
		})
	}
	return out
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	AIService aiservice.Health  `json:"ai_service"`
}
