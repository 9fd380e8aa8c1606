package dto

import (
	"time"

	"candidate-match/internal/domain/match"
	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

type BreakdownResponse struct {
	SkillsMatch     float64  `json:"skills_match"`
	ExperienceMatch float64  `json:"experience_match"`
	LocationMatch   float64  `json:"location_match"`
	EducationMatch  *float64 `json:"education_match,omitempty"`
	SemanticMatch   *float64 `json:"semantic_match,omitempty"`
}

type MatchRecordResponse struct {
	CandidateID        uuid.UUID         `json:"candidate_id"`
	CandidateName      string            `json:"candidate_name"`
	CandidateEmail     string            `json:"candidate_email,omitempty"`
	Rank               int               `json:"rank"`
	CompatibilityScore float64           `json:"compatibility_score"`
	MatchPercentage    int               `json:"match_percentage"`
	MatchQuality       string            `json:"match_quality"`
	Breakdown          BreakdownResponse `json:"breakdown"`
	MatchedSkills      []string          `json:"matched_skills"`
	MissingSkills      []string          `json:"missing_skills"`
	Recommendations    []string          `json:"recommendations"`
	Explanation        string            `json:"explanation"`
	Degraded           bool              `json:"degraded"`
	BatchID            uuid.UUID         `json:"batch_id"`
	CreatedAt          time.Time         `json:"created_at"`
}

type RankedMatchesResponse struct {
	JobID           uuid.UUID             `json:"job_id"`
	BatchID         *uuid.UUID            `json:"batch_id"`
	JobTitle        string                `json:"job_title,omitempty"`
	TotalCandidates int                   `json:"total_candidates"`
	AverageScore    float64               `json:"average_score"`
	CreatedAt       *time.Time            `json:"created_at"`
	Matches         []MatchRecordResponse `json:"matches"`
}

type MatchResultResponse struct {
	CandidateID        uuid.UUID         `json:"candidate_id"`
	JobID              uuid.UUID         `json:"job_id"`
	CompatibilityScore float64           `json:"compatibility_score"`
	MatchPercentage    int               `json:"match_percentage"`
	MatchQuality       string            `json:"match_quality"`
	Breakdown          BreakdownResponse `json:"breakdown"`
	MatchedSkills      []string          `json:"matched_skills"`
	MissingSkills      []string          `json:"missing_skills"`
	Recommendations    []string          `json:"recommendations"`
	Explanation        string            `json:"explanation"`
	Degraded           bool              `json:"degraded"`
}

type ExplanationResponse struct {
	CandidateID            uuid.UUID         `json:"candidate_id"`
	JobID                  uuid.UUID         `json:"job_id"`
	CompatibilityScore     float64           `json:"compatibility_score"`
	MatchPercentage        int               `json:"match_percentage"`
	MatchQuality           string            `json:"match_quality"`
	Breakdown              BreakdownResponse `json:"breakdown"`
	Summary                string            `json:"summary"`
	DetailedAnalysis       map[string]string `json:"detailed_analysis"`
	Strengths              []string          `json:"strengths"`
	Weaknesses             []string          `json:"weaknesses"`
	Suggestions            []string          `json:"suggestions"`
	DecisionRecommendation string            `json:"decision_recommendation"`
	Degraded               bool              `json:"degraded"`
}

type TriggerMatchingResponse struct {
	JobID   uuid.UUID `json:"job_id"`
	BatchID uuid.UUID `json:"batch_id"`
	Status  string    `json:"status"`
}

type HasResultsResponse struct {
	JobID      uuid.UUID `json:"job_id"`
	HasResults bool      `json:"has_results"`
}

type DeleteMatchesResponse struct {
	JobID          uuid.UUID `json:"job_id"`
	DeletedBatches int64     `json:"deleted_batches"`
}

type PreviewMatchesRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
}

type PreviewMatchResponse struct {
	CandidateID        uuid.UUID `json:"candidate_id"`
	CandidateName      string    `json:"candidate_name"`
	Rank               int       `json:"rank"`
	CompatibilityScore float64   `json:"compatibility_score"`
	MatchPercentage    int       `json:"match_percentage"`
	MatchQuality       string    `json:"match_quality"`
	MatchedSkills      []string  `json:"matched_skills"`
	MissingSkills      []string  `json:"missing_skills"`
}

type PreviewMatchesResponse struct {
	JobID            uuid.UUID              `json:"job_id"`
	TotalCandidates  int                    `json:"total_candidates"`
	AverageScore     float64                `json:"average_score"`
	TopSkillsMatched []string               `json:"top_skills_matched"`
	Matches          []PreviewMatchResponse `json:"matches"`
	Degraded         bool                   `json:"degraded"`
}

func NewBreakdownResponse(b matching.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		SkillsMatch:     b.Skills,
		ExperienceMatch: b.Experience,
		LocationMatch:   b.Location,
		EducationMatch:  b.Education,
		SemanticMatch:   b.Semantic,
	}
}

func NewMatchRecordResponse(r match.Record) MatchRecordResponse {
	return MatchRecordResponse{
		CandidateID:        r.CandidateID,
		CandidateName:      r.CandidateName,
		CandidateEmail:     r.CandidateEmail,
		Rank:               r.Rank,
		CompatibilityScore: r.Score,
		MatchPercentage:    r.Percentage,
		MatchQuality:       string(r.Quality),
		Breakdown:          NewBreakdownResponse(r.Breakdown),
		MatchedSkills:      nonNil(r.MatchedSkills),
		MissingSkills:      nonNil(r.MissingSkills),
		Recommendations:    nonNil(r.Recommendations),
		Explanation:        r.Explanation,
		Degraded:           r.Degraded,
		BatchID:            r.BatchID,
		CreatedAt:          r.CreatedAt,
	}
}

// NewRankedMatchesResponse leaves batch fields null when the job was never matched.
func NewRankedMatchesResponse(jobID uuid.UUID, l match.Latest) RankedMatchesResponse {
	out := RankedMatchesResponse{
		JobID:   jobID,
		Matches: make([]MatchRecordResponse, 0, len(l.Records)),
	}
	if l.Batch.ID != uuid.Nil {
		id, created := l.Batch.ID, l.Batch.CreatedAt
		out.BatchID = &id
		out.CreatedAt = &created
		out.JobTitle = l.Batch.JobTitle
		out.TotalCandidates = l.Batch.TotalCandidates
		out.AverageScore = l.Batch.AverageScore
	}
	for _, r := range l.Records {
		out.Matches = append(out.Matches, NewMatchRecordResponse(r))
	}
	return out
}

func NewMatchResultResponse(candidateID, jobID uuid.UUID, r matching.Result) MatchResultResponse {
	return MatchResultResponse{
		CandidateID:        candidateID,
		JobID:              jobID,
		CompatibilityScore: r.Score,
		MatchPercentage:    r.Percentage,
		MatchQuality:       string(r.Quality),
		Breakdown:          NewBreakdownResponse(r.Breakdown),
		MatchedSkills:      nonNil(r.MatchedSkills),
		MissingSkills:      nonNil(r.MissingSkills),
		Recommendations:    nonNil(r.Recommendations),
		Explanation:        r.Explanation,
		Degraded:           r.Degraded,
	}
}

func NewExplanationResponse(e matching.Explanation) ExplanationResponse {
	analysis := e.DetailedAnalysis
	if analysis == nil {
		analysis = map[string]string{}
	}
	return ExplanationResponse{
		CandidateID:            e.CandidateID,
		JobID:                  e.JobID,
		CompatibilityScore:     e.Score,
		MatchPercentage:        e.Percentage,
		MatchQuality:           string(e.Quality),
		Breakdown:              NewBreakdownResponse(e.Breakdown),
		Summary:                e.Summary,
		DetailedAnalysis:       analysis,
		Strengths:              nonNil(e.Strengths),
		Weaknesses:             nonNil(e.Weaknesses),
		Suggestions:            nonNil(e.Suggestions),
		DecisionRecommendation: e.DecisionRecommendation,
		Degraded:               e.Degraded,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
