package matching

import (
	"fmt"

	"github.com/google/uuid"
)

type Explanation struct {
	CandidateID            uuid.UUID         `json:"candidate_id"`
	JobID                  uuid.UUID         `json:"job_id"`
	Score                  float64           `json:"score"`
	Percentage             int               `json:"percentage"`
	Quality                Quality           `json:"quality"`
	Breakdown              Breakdown         `json:"breakdown"`
	Summary                string            `json:"summary"`
	DetailedAnalysis       map[string]string `json:"detailed_analysis"`
	Strengths              []string          `json:"strengths"`
	Weaknesses             []string          `json:"weaknesses"`
	Suggestions            []string          `json:"suggestions"`
	DecisionRecommendation string            `json:"decision_recommendation"`
	Degraded               bool              `json:"degraded"`
}

// ExplainResult builds an explanation out of a locally computed result.
func ExplainResult(candidateID, jobID uuid.UUID, r Result, includeSuggestions bool) Explanation {
	strengths := make([]string, 0, len(r.MatchedSkills)+1)
	for _, s := range r.MatchedSkills {
		strengths = append(strengths, "Has required skill: "+s)
	}
	if r.Breakdown.Experience >= 0.7 {
		strengths = append(strengths, "Relevant professional experience")
	}

	weaknesses := make([]string, 0, len(r.MissingSkills)+1)
	for _, s := range r.MissingSkills {
		weaknesses = append(weaknesses, "Missing required skill: "+s)
	}
	if r.Breakdown.Experience < 0.5 {
		weaknesses = append(weaknesses, "Little experience for this kind of role")
	}

	suggestions := []string{}
	if includeSuggestions {
		suggestions = append(suggestions, r.Recommendations...)
	}

	return Explanation{
		CandidateID: candidateID,
		JobID:       jobID,
		Score:       r.Score,
		Percentage:  r.Percentage,
		Quality:     r.Quality,
		Breakdown:   r.Breakdown,
		Summary:     r.Explanation,
		DetailedAnalysis: map[string]string{
			FactorSkills:     fmt.Sprintf("%d of %d required skills present", len(r.MatchedSkills), len(r.MatchedSkills)+len(r.MissingSkills)),
			FactorExperience: fmt.Sprintf("experience fit %.2f", r.Breakdown.Experience),
			FactorLocation:   fmt.Sprintf("location fit %.2f", r.Breakdown.Location),
		},
		Strengths:              strengths,
		Weaknesses:             weaknesses,
		Suggestions:            suggestions,
		DecisionRecommendation: Decision(r.Quality),
		Degraded:               r.Degraded,
	}
}

func Decision(q Quality) string {
	switch q {
	case QualityExcellent:
		return "Strongly recommended: advance to interview"
	case QualityGood:
		return "Recommended: schedule a screening call"
	case QualityMedium:
		return "Borderline: manual review recommended"
	default:
		return "Not recommended for this role"
	}
}
