package matching

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func backendJob() JobSnapshot {
	return JobSnapshot{
		ID:       uuid.New(),
		Title:    "Backend Engineer",
		Skills:   []string{"Java", "Python", "SQL"},
		Location: "Jakarta",
		Type:     JobTypeFullTime,
		Active:   true,
	}
}

func TestEngine_Score_WorkedExample(t *testing.T) {
	e := NewEngine(WithClock(fixedClock))
	cand := &CandidateSnapshot{
		ID:     uuid.New(),
		Skills: []string{"java", "sql"},
		Experience: []Experience{
			{Company: "Acme", Position: "Developer", Start: "2020-01", End: "2023-01"},
		},
	}

	res, err := e.Score(cand, backendJob())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if math.Abs(res.Breakdown.Skills-2.0/3.0) > 1e-9 {
		t.Fatalf("skills: got %v", res.Breakdown.Skills)
	}
	if res.Breakdown.Experience != 0.7 {
		t.Fatalf("experience: got %v", res.Breakdown.Experience)
	}
	if res.Breakdown.Location != 0.7 {
		t.Fatalf("location: got %v", res.Breakdown.Location)
	}
	if math.Abs(res.Score-0.68333) > 1e-4 {
		t.Fatalf("score: got %v", res.Score)
	}
	if res.Percentage != 68 {
		t.Fatalf("percentage: got %d", res.Percentage)
	}
	if res.Quality != QualityGood {
		t.Fatalf("quality: got %s", res.Quality)
	}
	if len(res.MatchedSkills) != 2 || res.MatchedSkills[0] != "Java" || res.MatchedSkills[1] != "SQL" {
		t.Fatalf("matched: got %v", res.MatchedSkills)
	}
	if len(res.MissingSkills) != 1 || res.MissingSkills[0] != "Python" {
		t.Fatalf("missing: got %v", res.MissingSkills)
	}

	want := "Good skill match with the job requirements. Experience is adequate for the role. Overall score: 0.68"
	if res.Explanation != want {
		t.Fatalf("explanation:\n got %q\nwant %q", res.Explanation, want)
	}
	if res.Degraded {
		t.Fatalf("local result must not be degraded")
	}
}

func TestEngine_Score_Deterministic(t *testing.T) {
	e := NewEngine(WithClock(fixedClock))
	cand := &CandidateSnapshot{Skills: []string{"Go", "SQL"}}
	job := backendJob()

	a, err := e.Score(cand, job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, _ := e.Score(cand, job)
	if a.Score != b.Score || a.Explanation != b.Explanation {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestEngine_Score_NilCandidate(t *testing.T) {
	e := NewEngine(WithClock(fixedClock))
	job := backendJob()
	job.Location = "Remote"

	res, err := e.Score(nil, job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Breakdown.Skills != 0 {
		t.Fatalf("skills: got %v", res.Breakdown.Skills)
	}
	if res.Breakdown.Experience != 0.2 {
		t.Fatalf("experience: got %v", res.Breakdown.Experience)
	}
	// 0.3*0.2 + 0.2*1.0
	if math.Abs(res.Score-0.26) > 1e-9 {
		t.Fatalf("score: got %v", res.Score)
	}
	if len(res.MissingSkills) != 3 {
		t.Fatalf("expected every job skill missing, got %v", res.MissingSkills)
	}
}

func TestEngine_Score_InvalidJob(t *testing.T) {
	e := NewEngine()
	job := backendJob()
	job.Type = ""

	if _, err := e.Score(&CandidateSnapshot{}, job); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("expected ErrInvalidJob, got %v", err)
	}

	job.Type = "VOLUNTEER"
	if _, err := e.Score(&CandidateSnapshot{}, job); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("expected ErrInvalidJob, got %v", err)
	}
}

func TestEngine_Score_AcceptsLooseJobType(t *testing.T) {
	e := NewEngine(WithClock(fixedClock))
	job := backendJob()
	job.Type = "part-time"

	res, err := e.Score(&CandidateSnapshot{Experience: []Experience{{Start: "2022-01"}}}, job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Breakdown.Experience != 0.8 {
		t.Fatalf("experience: got %v", res.Breakdown.Experience)
	}
}

func TestSplitSkills_DisjointAndCasePreserved(t *testing.T) {
	matched, missing := SplitSkills(
		[]string{"PostgreSQL", "Go", "go", " Docker "},
		[]string{"GO", "postgresql"},
	)
	if len(matched) != 2 || matched[0] != "PostgreSQL" || matched[1] != "Go" {
		t.Fatalf("matched: got %v", matched)
	}
	if len(missing) != 1 || missing[0] != "Docker" {
		t.Fatalf("missing: got %v", missing)
	}
}

func TestReconcileSkills(t *testing.T) {
	job := []string{"Go", "Kafka", "SQL"}
	matched, missing := ReconcileSkills(job, []string{"go", "Rust", "GO"}, []string{"kafka", "Go", "sql"})

	if len(matched) != 1 || matched[0] != "Go" {
		t.Fatalf("matched: got %v", matched)
	}
	if len(missing) != 2 || missing[0] != "Kafka" || missing[1] != "SQL" {
		t.Fatalf("missing: got %v", missing)
	}
}

func TestNeutralResult(t *testing.T) {
	r := NeutralResult("unavailable")
	if r.Score != 0.5 || r.Percentage != 50 || r.Quality != QualityMedium || !r.Degraded {
		t.Fatalf("unexpected neutral result: %+v", r)
	}
	if r.Breakdown.Education == nil || *r.Breakdown.Education != 0.5 || r.Breakdown.Semantic == nil || *r.Breakdown.Semantic != 0.5 {
		t.Fatalf("expected every factor at 0.5")
	}
}

func TestExplainResult(t *testing.T) {
	e := NewEngine(WithClock(fixedClock))
	cand := &CandidateSnapshot{Skills: []string{"Java"}}
	res, err := e.Score(cand, backendJob())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	withSuggestions := ExplainResult(uuid.New(), uuid.New(), res, true)
	if len(withSuggestions.Suggestions) == 0 {
		t.Fatalf("expected suggestions")
	}
	if len(withSuggestions.Weaknesses) < 2 {
		t.Fatalf("expected missing skills as weaknesses, got %v", withSuggestions.Weaknesses)
	}
	if withSuggestions.DecisionRecommendation != Decision(res.Quality) {
		t.Fatalf("unexpected decision %q", withSuggestions.DecisionRecommendation)
	}

	without := ExplainResult(uuid.New(), uuid.New(), res, false)
	if len(without.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", without.Suggestions)
	}
}
