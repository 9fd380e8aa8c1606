package match

import (
	"math"
	"testing"
	"time"

	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

func scoredWith(score float64) Scored {
	return Scored{
		CandidateID: uuid.New(),
		Result:      matching.Result{Score: score},
	}
}

func TestBuildBatch_ThresholdAndRanks(t *testing.T) {
	header := Batch{ID: uuid.New(), JobID: uuid.New(), CreatedAt: time.Now().UTC()}
	in := []Scored{
		scoredWith(0.45),
		scoredWith(0.2999),
		scoredWith(0.9),
		scoredWith(0.3),
		scoredWith(0.1),
	}

	b, recs := BuildBatch(header, in)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if b.TotalCandidates != 3 {
		t.Fatalf("expected total 3, got %d", b.TotalCandidates)
	}

	wantOrder := []uuid.UUID{in[2].CandidateID, in[0].CandidateID, in[3].CandidateID}
	for i, r := range recs {
		if r.Rank != i+1 {
			t.Fatalf("record %d: rank %d", i, r.Rank)
		}
		if r.CandidateID != wantOrder[i] {
			t.Fatalf("record %d: unexpected candidate", i)
		}
		if r.Percentage != int(math.Round(r.Score*100)) {
			t.Fatalf("record %d: percentage %d for score %v", i, r.Percentage, r.Score)
		}
		if r.BatchID != header.ID || r.JobID != header.JobID {
			t.Fatalf("record %d: batch identity not stamped", i)
		}
		if r.TotalCandidatesInBatch != 3 {
			t.Fatalf("record %d: total %d", i, r.TotalCandidatesInBatch)
		}
	}

	wantAvg := (0.9 + 0.45 + 0.3) / 3
	if math.Abs(b.AverageScore-wantAvg) > 1e-9 || math.Abs(recs[0].AverageScoreInBatch-wantAvg) > 1e-9 {
		t.Fatalf("average: got %v want %v", b.AverageScore, wantAvg)
	}
}

func TestBuildBatch_TiesKeepInputOrder(t *testing.T) {
	in := []Scored{scoredWith(0.5), scoredWith(0.7), scoredWith(0.5), scoredWith(0.5)}
	_, recs := BuildBatch(Batch{ID: uuid.New()}, in)

	if recs[0].CandidateID != in[1].CandidateID {
		t.Fatalf("expected highest score first")
	}
	for i, want := range []uuid.UUID{in[0].CandidateID, in[2].CandidateID, in[3].CandidateID} {
		if recs[i+1].CandidateID != want {
			t.Fatalf("tie at position %d not stable", i+1)
		}
	}
}

func TestBuildBatch_Empty(t *testing.T) {
	b, recs := BuildBatch(Batch{ID: uuid.New()}, []Scored{scoredWith(0.1)})
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
	if b.TotalCandidates != 0 || b.AverageScore != 0 {
		t.Fatalf("unexpected aggregates: %+v", b)
	}
}

func TestBuildBatch_QualityFromScore(t *testing.T) {
	_, recs := BuildBatch(Batch{ID: uuid.New()}, []Scored{{
		CandidateID: uuid.New(),
		Result:      matching.Result{Score: 0.85, Quality: matching.QualityPoor},
	}})
	if recs[0].Quality != matching.QualityExcellent {
		t.Fatalf("expected quality derived from score, got %s", recs[0].Quality)
	}
}
