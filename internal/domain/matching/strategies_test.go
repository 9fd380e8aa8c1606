package matching

import "testing"

func TestSkillStrategy(t *testing.T) {
	tests := []struct {
		name string
		cand []string
		job  []string
		want float64
	}{
		{name: "job without skills", cand: []string{"go"}, job: nil, want: 0.5},
		{name: "candidate without skills", cand: nil, job: []string{"Go"}, want: 0},
		{name: "full overlap ignores case", cand: []string{"GO", "sql"}, job: []string{"Go", "SQL"}, want: 1},
		{name: "half overlap", cand: []string{"go"}, job: []string{"Go", "Rust"}, want: 0.5},
		{name: "duplicate job skills count once", cand: []string{"go"}, job: []string{"Go", "go", "Rust"}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkillStrategy{}.Score(CandidateSnapshot{Skills: tt.cand}, JobSnapshot{Skills: tt.job})
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestExperienceStrategy(t *testing.T) {
	s := ExperienceStrategy{Now: fixedClock}

	tests := []struct {
		name    string
		jobType JobType
		entries []Experience
		want    float64
	}{
		{name: "no entries", jobType: JobTypeFullTime, entries: nil, want: 0.2},
		{name: "full time under a year", jobType: JobTypeFullTime, entries: []Experience{{Start: "2024-01"}}, want: 0.3},
		{name: "full time one year", jobType: JobTypeFullTime, entries: []Experience{{Start: "2023-01"}}, want: 0.5},
		{name: "full time two years summed", jobType: JobTypeFullTime, entries: []Experience{
			{Start: "2018-01", End: "2019-02"},
			{Start: "2020-05", End: "2021-06"},
		}, want: 0.7},
		{name: "full time five years", jobType: JobTypeFullTime, entries: []Experience{{Start: "2019-03", End: "2024-06"}}, want: 0.9},
		{name: "internship with zero years", jobType: JobTypeInternship, entries: []Experience{{Start: "2024-05"}}, want: 0.9},
		{name: "part time without a year", jobType: JobTypePartTime, entries: []Experience{{Start: "2024-02"}}, want: 0.6},
		{name: "contract with experience", jobType: JobTypeContract, entries: []Experience{{Start: "2021-01", End: "2023-01"}}, want: 0.8},
		{name: "malformed start counts zero", jobType: JobTypeFullTime, entries: []Experience{{Start: "March 2015"}}, want: 0.3},
		{name: "malformed end counts zero", jobType: JobTypeFullTime, entries: []Experience{{Start: "2010-01", End: "now"}}, want: 0.3},
		{name: "end before start counts zero", jobType: JobTypeFullTime, entries: []Experience{{Start: "2022-01", End: "2015-01"}}, want: 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(CandidateSnapshot{Experience: tt.entries}, JobSnapshot{Type: tt.jobType})
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestTotalExperienceYears_PartialYearTruncates(t *testing.T) {
	got := TotalExperienceYears([]Experience{{Start: "2022-07", End: "2024-06"}}, fixedClock())
	if got != 1 {
		t.Fatalf("got %d want 1", got)
	}
}

func TestLocationStrategy(t *testing.T) {
	tests := []struct {
		loc  string
		want float64
	}{
		{loc: "Remote", want: 1},
		{loc: "Fully REMOTE (EU)", want: 1},
		{loc: "Trabajo remoto", want: 1},
		{loc: "", want: 1},
		{loc: "Jakarta", want: 0.7},
	}
	for _, tt := range tests {
		got := LocationStrategy{}.Score(CandidateSnapshot{}, JobSnapshot{Location: tt.loc})
		if got != tt.want {
			t.Fatalf("location %q: got %v want %v", tt.loc, got, tt.want)
		}
	}
}

func TestQualityFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Quality
	}{
		{0.8, QualityExcellent},
		{0.79, QualityGood},
		{0.6, QualityGood},
		{0.4, QualityMedium},
		{0.39, QualityPoor},
	}
	for _, tt := range tests {
		if got := QualityFor(tt.score); got != tt.want {
			t.Fatalf("score %v: got %s want %s", tt.score, got, tt.want)
		}
	}
}

func TestPercentageClamps(t *testing.T) {
	if Percentage(1.4) != 100 || Percentage(-0.2) != 0 || Percentage(0.676) != 68 {
		t.Fatalf("unexpected percentages")
	}
}
