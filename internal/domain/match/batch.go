package match

import (
	"sort"

	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

type Scored struct {
	CandidateID    uuid.UUID
	CandidateName  string
	CandidateEmail string
	Result         matching.Result
}

// BuildBatch drops results under the inclusion threshold, ranks the rest by
// score (ties keep input order) and stamps the batch aggregates on every record.
func BuildBatch(header Batch, scored []Scored) (Batch, []Record) {
	kept := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if matching.Qualifies(s.Result.Score) {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Result.Score > kept[j].Result.Score
	})

	var sum float64
	for _, s := range kept {
		sum += s.Result.Score
	}
	avg := 0.0
	if len(kept) > 0 {
		avg = sum / float64(len(kept))
	}

	header.TotalCandidates = len(kept)
	header.AverageScore = avg

	out := make([]Record, 0, len(kept))
	for i, s := range kept {
		r := s.Result
		score := matching.Clamp01(r.Score)
		out = append(out, Record{
			ID:                     uuid.New(),
			BatchID:                header.ID,
			JobID:                  header.JobID,
			CandidateID:            s.CandidateID,
			CandidateName:          s.CandidateName,
			CandidateEmail:         s.CandidateEmail,
			Score:                  score,
			Percentage:             matching.Percentage(score),
			Rank:                   i + 1,
			Quality:                matching.QualityFor(score),
			Breakdown:              r.Breakdown,
			MatchedSkills:          nonNil(r.MatchedSkills),
			MissingSkills:          nonNil(r.MissingSkills),
			Recommendations:        nonNil(r.Recommendations),
			Explanation:            r.Explanation,
			Degraded:               r.Degraded,
			TotalCandidatesInBatch: len(kept),
			AverageScoreInBatch:    avg,
			CreatedAt:              header.CreatedAt,
		})
	}
	return header, out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
