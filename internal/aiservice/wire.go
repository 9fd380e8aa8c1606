package aiservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"candidate-match/internal/domain/matching"
)

// StringList decodes either a JSON array of strings or a single
// comma/newline separated string, which the scoring service emits for some fields.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = StringList{}
		return nil
	}
	if b[0] == '[' {
		var arr []string
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*l = cleanList(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = cleanList(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' }))
	return nil
}

func cleanList(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

type experiencePayload struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Years       int    `json:"years"`
}

type educationPayload struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Field       string `json:"field,omitempty"`
	StartYear   int    `json:"startYear,omitempty"`
	EndYear     int    `json:"endYear,omitempty"`
}

type candidatePayload struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Skills          []string            `json:"skills"`
	ExperienceYears int                 `json:"experienceYears"`
	Experience      []experiencePayload `json:"experience"`
	Education       []educationPayload  `json:"education"`
	Languages       []string            `json:"languages"`
	Summary         string              `json:"summary,omitempty"`
	Location        string              `json:"location,omitempty"`
}

type jobPayload struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Skills       []string `json:"skills"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location,omitempty"`
	Type         string   `json:"type"`
	SalaryMin    *int64   `json:"salaryMin,omitempty"`
	SalaryMax    *int64   `json:"salaryMax,omitempty"`
}

type batchRequest struct {
	Candidates []candidatePayload `json:"candidates"`
	Job        jobPayload         `json:"job"`
}

type explainRequest struct {
	Candidate          candidatePayload `json:"candidate"`
	Job                jobPayload       `json:"job"`
	IncludeSuggestions bool             `json:"includeSuggestions"`
}

type breakdownPayload struct {
	SkillsMatch     *float64 `json:"skillsMatch"`
	ExperienceMatch *float64 `json:"experienceMatch"`
	EducationMatch  *float64 `json:"educationMatch"`
	SemanticMatch   *float64 `json:"semanticMatch"`
	LocationMatch   *float64 `json:"locationMatch"`
}

type singleResponse struct {
	CandidateID        string            `json:"candidateId"`
	CandidateName      string            `json:"candidateName"`
	JobID              string            `json:"jobId"`
	CompatibilityScore float64           `json:"compatibilityScore"`
	MatchPercentage    *int              `json:"matchPercentage"`
	Breakdown          *breakdownPayload `json:"breakdown"`
	MatchedSkills      StringList        `json:"matchedSkills"`
	MissingSkills      StringList        `json:"missingSkills"`
	Explanation        string            `json:"explanation"`
	Recommendations    StringList        `json:"recommendations"`
	MatchQuality       string            `json:"matchQuality"`
}

type rankedResponse struct {
	singleResponse
	Rank int `json:"rank"`
}

type batchResponse struct {
	JobID            string           `json:"jobId"`
	JobTitle         string           `json:"jobTitle"`
	TotalCandidates  int              `json:"totalCandidates"`
	Matches          []rankedResponse `json:"matches"`
	AverageScore     float64          `json:"averageScore"`
	TopSkillsMatched StringList       `json:"topSkillsMatched"`
}

type explainResponse struct {
	CandidateID            string            `json:"candidateId"`
	JobID                  string            `json:"jobId"`
	CompatibilityScore     float64           `json:"compatibilityScore"`
	MatchPercentage        *int              `json:"matchPercentage"`
	Breakdown              *breakdownPayload `json:"breakdown"`
	DetailedAnalysis       map[string]any    `json:"detailedAnalysis"`
	Strengths              StringList        `json:"strengths"`
	Weaknesses             StringList        `json:"weaknesses"`
	Suggestions            StringList        `json:"suggestions"`
	DecisionRecommendation string            `json:"decisionRecommendation"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func toCandidatePayload(c matching.CandidateSnapshot, now time.Time) candidatePayload {
	exp := make([]experiencePayload, 0, len(c.Experience))
	for _, e := range c.Experience {
		exp = append(exp, experiencePayload{
			Company:     e.Company,
			Position:    e.Position,
			Description: e.Description,
			StartDate:   e.Start,
			EndDate:     e.End,
			Years:       matching.TotalExperienceYears([]matching.Experience{e}, now),
		})
	}
	edu := make([]educationPayload, 0, len(c.Education))
	for _, e := range c.Education {
		edu = append(edu, educationPayload(e))
	}
	return candidatePayload{
		ID:              c.ID.String(),
		Name:            c.Name,
		Skills:          nonNil(c.Skills),
		ExperienceYears: matching.TotalExperienceYears(c.Experience, now),
		Experience:      exp,
		Education:       edu,
		Languages:       nonNil(c.Languages),
		Summary:         c.Summary,
		Location:        c.Location,
	}
}

func toJobPayload(j matching.JobSnapshot) jobPayload {
	return jobPayload{
		ID:           j.ID.String(),
		Title:        j.Title,
		Description:  j.Description,
		Skills:       nonNil(j.Skills),
		Requirements: nonNil(j.Requirements),
		Location:     j.Location,
		Type:         string(j.Type),
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
	}
}

// toBreakdown fills factors the service left out with the neutral 0.5.
func (b *breakdownPayload) toBreakdown() matching.Breakdown {
	if b == nil {
		return matching.Breakdown{Skills: 0.5, Experience: 0.5, Location: 0.5}
	}
	val := func(p *float64) float64 {
		if p == nil {
			return 0.5
		}
		return matching.Clamp01(*p)
	}
	opt := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := matching.Clamp01(*p)
		return &v
	}
	return matching.Breakdown{
		Skills:     val(b.SkillsMatch),
		Experience: val(b.ExperienceMatch),
		Location:   val(b.LocationMatch),
		Education:  opt(b.EducationMatch),
		Semantic:   opt(b.SemanticMatch),
	}
}

// toResult normalizes an upstream answer so it honours local invariants:
// percentage and quality always follow from the clamped score, skills are
// restricted to the job's list and kept disjoint.
func (r singleResponse) toResult(job matching.JobSnapshot) matching.Result {
	score := matching.Clamp01(r.CompatibilityScore)
	matched, missing := matching.ReconcileSkills(job.Skills, r.MatchedSkills, r.MissingSkills)
	return matching.Result{
		Score:           score,
		Percentage:      matching.Percentage(score),
		Quality:         matching.QualityFor(score),
		Breakdown:       r.Breakdown.toBreakdown(),
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Explanation:     r.Explanation,
		Recommendations: nonNil(r.Recommendations),
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
