package matching

import (
	"strings"
	"time"
)

// Strategy scores a single factor of a candidate/job pair into [0,1].
type Strategy interface {
	Name() string
	Score(c CandidateSnapshot, j JobSnapshot) float64
}

const (
	FactorSkills     = "skills"
	FactorExperience = "experience"
	FactorLocation   = "location"
)

type SkillStrategy struct{}

func (SkillStrategy) Name() string { return FactorSkills }

func (SkillStrategy) Score(c CandidateSnapshot, j JobSnapshot) float64 {
	required := normalizeSkills(j.Skills)
	if len(required) == 0 {
		return 0.5
	}
	have := make(map[string]struct{}, len(c.Skills))
	for _, s := range normalizeSkills(c.Skills) {
		have[s] = struct{}{}
	}
	hits := 0
	for _, s := range required {
		if _, ok := have[s]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(required))
}

// ExperienceStrategy buckets total whole years of experience by job type.
// Now is injectable so that open-ended positions are deterministic in tests.
type ExperienceStrategy struct {
	Now func() time.Time
}

func (ExperienceStrategy) Name() string { return FactorExperience }

func (s ExperienceStrategy) Score(c CandidateSnapshot, j JobSnapshot) float64 {
	if len(c.Experience) == 0 {
		return 0.2
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	years := TotalExperienceYears(c.Experience, now())

	jt, _ := ParseJobType(string(j.Type))
	switch jt {
	case JobTypeInternship:
		if years >= 0 {
			return 0.9
		}
		return 0.5
	case JobTypeFullTime:
		switch {
		case years >= 5:
			return 0.9
		case years >= 2:
			return 0.7
		case years >= 1:
			return 0.5
		default:
			return 0.3
		}
	case JobTypePartTime, JobTypeContract:
		if years >= 1 {
			return 0.8
		}
		return 0.6
	default:
		return 0.3
	}
}

// TotalExperienceYears sums whole years per entry. Entries with malformed dates
// or an end before their start contribute zero.
func TotalExperienceYears(entries []Experience, now time.Time) int {
	total := 0
	for _, e := range entries {
		total += entryYears(e, now)
	}
	return total
}

func entryYears(e Experience, now time.Time) int {
	start, ok := parseYearMonth(e.Start)
	if !ok {
		return 0
	}
	end := now
	if strings.TrimSpace(e.End) != "" {
		end, ok = parseYearMonth(e.End)
		if !ok {
			return 0
		}
	}
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func parseYearMonth(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var remoteMarkers = []string{"remote", "remoto"}

// LocationStrategy only recognizes remote postings. Any other location pair
// gets a flat 0.7 until geographic matching exists.
type LocationStrategy struct{}

func (LocationStrategy) Name() string { return FactorLocation }

func (LocationStrategy) Score(_ CandidateSnapshot, j JobSnapshot) float64 {
	loc := strings.ToLower(strings.TrimSpace(j.Location))
	if loc == "" {
		return 1.0
	}
	for _, m := range remoteMarkers {
		if strings.Contains(loc, m) {
			return 1.0
		}
	}
	return 0.7
}

func normalizeSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
