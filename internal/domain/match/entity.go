package match

import (
	"time"

	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

// Record is one persisted candidate result inside a batch.
type Record struct {
	ID             uuid.UUID `json:"id"`
	BatchID        uuid.UUID `json:"batch_id"`
	JobID          uuid.UUID `json:"job_id"`
	CandidateID    uuid.UUID `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`

	Score      float64            `json:"score"`
	Percentage int                `json:"percentage"`
	Rank       int                `json:"rank"`
	Quality    matching.Quality   `json:"quality"`
	Breakdown  matching.Breakdown `json:"breakdown"`

	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Recommendations []string `json:"recommendations"`
	Explanation     string   `json:"explanation"`
	Degraded        bool     `json:"degraded"`

	TotalCandidatesInBatch int       `json:"total_candidates_in_batch"`
	AverageScoreInBatch    float64   `json:"average_score_in_batch"`
	CreatedAt              time.Time `json:"created_at"`
}

// Batch is the header of one orchestration run. A batch with zero records is
// valid and still supersedes older batches of the same job.
type Batch struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	JobTitle        string    `json:"job_title"`
	TotalCandidates int       `json:"total_candidates"`
	AverageScore    float64   `json:"average_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Latest pairs the newest batch of a job with its records ordered by rank.
type Latest struct {
	Batch   Batch    `json:"batch"`
	Records []Record `json:"records"`
}
