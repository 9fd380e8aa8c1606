package matching

import (
	"fmt"
	"strings"
	"time"
)

type Breakdown struct {
	Skills     float64  `json:"skills"`
	Experience float64  `json:"experience"`
	Location   float64  `json:"location"`
	Education  *float64 `json:"education,omitempty"`
	Semantic   *float64 `json:"semantic,omitempty"`
}

type Result struct {
	Score           float64   `json:"score"`
	Percentage      int       `json:"percentage"`
	Quality         Quality   `json:"quality"`
	Breakdown       Breakdown `json:"breakdown"`
	MatchedSkills   []string  `json:"matched_skills"`
	MissingSkills   []string  `json:"missing_skills"`
	Explanation     string    `json:"explanation"`
	Recommendations []string  `json:"recommendations"`
	// Degraded marks placeholder results produced while the scoring service was unavailable.
	Degraded bool `json:"degraded"`
}

type Weights struct {
	Skills     float64
	Experience float64
	Location   float64
}

var DefaultWeights = Weights{Skills: 0.5, Experience: 0.3, Location: 0.2}

type Engine struct {
	skills     Strategy
	experience Strategy
	location   Strategy
	weights    Weights
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.experience = ExperienceStrategy{Now: now}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		skills:     SkillStrategy{},
		experience: ExperienceStrategy{},
		location:   LocationStrategy{},
		weights:    DefaultWeights,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Score evaluates a candidate against a job. A nil candidate is scored as an
// empty profile. Only a structurally invalid job yields an error.
func (e *Engine) Score(c *CandidateSnapshot, j JobSnapshot) (Result, error) {
	if err := j.Validate(); err != nil {
		return Result{}, err
	}
	cand := CandidateSnapshot{}
	if c != nil {
		cand = *c
	}

	b := Breakdown{
		Skills:     Clamp01(e.skills.Score(cand, j)),
		Experience: Clamp01(e.experience.Score(cand, j)),
		Location:   Clamp01(e.location.Score(cand, j)),
	}
	overall := Clamp01(e.weights.Skills*b.Skills + e.weights.Experience*b.Experience + e.weights.Location*b.Location)

	matched, missing := SplitSkills(j.Skills, cand.Skills)

	return Result{
		Score:           overall,
		Percentage:      Percentage(overall),
		Quality:         QualityFor(overall),
		Breakdown:       b,
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Explanation:     Explain(b, overall),
		Recommendations: Recommend(b, missing, j),
	}, nil
}

// SplitSkills partitions the job's required skills into those the candidate has
// and those it lacks. Both lists keep the job's spelling and order.
func SplitSkills(jobSkills, candidateSkills []string) (matched, missing []string) {
	have := make(map[string]struct{}, len(candidateSkills))
	for _, s := range normalizeSkills(candidateSkills) {
		have[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(jobSkills))
	matched = make([]string, 0, len(jobSkills))
	missing = make([]string, 0, len(jobSkills))
	for _, s := range jobSkills {
		name := strings.TrimSpace(s)
		k := strings.ToLower(name)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := have[k]; ok {
			matched = append(matched, name)
		} else {
			missing = append(missing, name)
		}
	}
	return matched, missing
}

// ReconcileSkills restricts externally reported skill lists to the job's
// required skills and keeps them disjoint. Matched wins on conflict.
func ReconcileSkills(jobSkills, matched, missing []string) ([]string, []string) {
	canonical := make(map[string]string, len(jobSkills))
	for _, s := range jobSkills {
		name := strings.TrimSpace(s)
		k := strings.ToLower(name)
		if k == "" {
			continue
		}
		if _, ok := canonical[k]; !ok {
			canonical[k] = name
		}
	}

	pick := func(in []string, exclude map[string]struct{}) ([]string, map[string]struct{}) {
		out := make([]string, 0, len(in))
		taken := map[string]struct{}{}
		for _, s := range in {
			k := strings.ToLower(strings.TrimSpace(s))
			name, ok := canonical[k]
			if !ok {
				continue
			}
			if _, dup := taken[k]; dup {
				continue
			}
			if _, ex := exclude[k]; ex {
				continue
			}
			taken[k] = struct{}{}
			out = append(out, name)
		}
		return out, taken
	}

	m, taken := pick(matched, nil)
	x, _ := pick(missing, taken)
	return m, x
}

// Explain renders a deterministic summary of the breakdown.
func Explain(b Breakdown, overall float64) string {
	var sb strings.Builder

	switch {
	case b.Skills >= 0.8:
		sb.WriteString("Excellent skill match with the job requirements. ")
	case b.Skills >= 0.6:
		sb.WriteString("Good skill match with the job requirements. ")
	case b.Skills >= 0.3:
		sb.WriteString("Partial skill match with the job requirements. ")
	default:
		sb.WriteString("Low skill match with the job requirements. ")
	}

	switch {
	case b.Experience >= 0.8:
		sb.WriteString("Experience closely fits the role. ")
	case b.Experience >= 0.6:
		sb.WriteString("Experience is adequate for the role. ")
	default:
		sb.WriteString("Limited relevant experience for the role. ")
	}

	fmt.Fprintf(&sb, "Overall score: %.2f", overall)
	return sb.String()
}

func Recommend(b Breakdown, missing []string, j JobSnapshot) []string {
	out := make([]string, 0, 3)
	if len(missing) > 0 {
		out = append(out, "Consider developing: "+strings.Join(missing, ", "))
	}
	if b.Experience < 0.6 {
		jt, _ := ParseJobType(string(j.Type))
		out = append(out, fmt.Sprintf("Gain more hands-on experience relevant to %s roles", humanJobType(jt)))
	}
	if len(out) == 0 {
		out = append(out, "Profile meets the core requirements")
	}
	return out
}

// NeutralResult is the placeholder used when no real score can be produced.
func NeutralResult(reason string) Result {
	half := 0.5
	edu, sem := half, half
	return Result{
		Score:      half,
		Percentage: 50,
		Quality:    QualityMedium,
		Breakdown: Breakdown{
			Skills:     half,
			Experience: half,
			Location:   half,
			Education:  &edu,
			Semantic:   &sem,
		},
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		Explanation:     reason,
		Recommendations: []string{},
		Degraded:        true,
	}
}

func humanJobType(t JobType) string {
	switch t {
	case JobTypeFullTime:
		return "full-time"
	case JobTypePartTime:
		return "part-time"
	case JobTypeContract:
		return "contract"
	case JobTypeInternship:
		return "internship"
	default:
		return "similar"
	}
}
