package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

func newTestOrchestrator(cands *mockCandidateRepo, saver BatchSaver, n Notifier) *BatchMatchOrchestrator {
	return NewBatchMatchOrchestrator(cands, NewLocalScorer(nil), saver, n, OrchestratorConfig{Workers: 3}, nil)
}

func TestBatchMatchOrchestrator_RunForJob(t *testing.T) {
	job := remoteGoJob()
	cands := &mockCandidateRepo{}
	strong := candidateWith("strong", "go", "SQL") // 0.5 + 0.06 + 0.2 = 0.76
	mid := candidateWith("mid", "Go")              // 0.25 + 0.06 + 0.2 = 0.51
	weak := candidateWith("weak", "Rust")          // 0.06 + 0.2 = 0.26
	cands.add(mid)
	cands.add(weak)
	cands.add(strong)
	missing := uuid.New()

	saver := &recordingSaver{}
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(cands, saver, notifier)

	pool := append(cands.order, missing, strong.ID)
	summary, err := o.RunForJob(context.Background(), job, pool)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Evaluated != 4 || summary.Skipped != 1 || summary.Persisted != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	saved := saver.last()
	if saved.batch.ID != summary.BatchID || saved.batch.JobID != job.ID {
		t.Fatalf("batch header mismatch: %+v", saved.batch)
	}
	if len(saved.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(saved.records))
	}
	if saved.records[0].CandidateID != strong.ID || saved.records[0].Rank != 1 {
		t.Fatalf("expected strong candidate first, got %+v", saved.records[0])
	}
	if saved.records[1].CandidateID != mid.ID || saved.records[1].Rank != 2 {
		t.Fatalf("expected mid candidate second, got %+v", saved.records[1])
	}
	if saved.records[0].CandidateName != "strong" || saved.records[0].CandidateEmail != "strong@example.com" {
		t.Fatalf("candidate identity not carried: %+v", saved.records[0])
	}
	wantAvg := (0.76 + 0.51) / 2
	if diff := saved.batch.AverageScore - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("average: got %v want %v", saved.batch.AverageScore, wantAvg)
	}
	for _, r := range saved.records {
		if r.TotalCandidatesInBatch != 2 || r.AverageScoreInBatch != saved.batch.AverageScore {
			t.Fatalf("aggregates not stamped: %+v", r)
		}
	}

	if len(notifier.sent) != 1 || notifier.sent[0].candidateID != strong.ID || notifier.sent[0].jobID != job.ID {
		t.Fatalf("expected one notification for the strong candidate, got %+v", notifier.sent)
	}
	if summary.Notified != 1 {
		t.Fatalf("notified: got %d", summary.Notified)
	}
}

func TestBatchMatchOrchestrator_EmptyPoolStillPersists(t *testing.T) {
	saver := &recordingSaver{}
	o := newTestOrchestrator(&mockCandidateRepo{}, saver, nil)

	summary, err := o.RunForJob(context.Background(), remoteGoJob(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected an empty batch to be saved")
	}
	if len(saver.last().records) != 0 || summary.Persisted != 0 {
		t.Fatalf("expected no records, got %+v", summary)
	}
}

func TestBatchMatchOrchestrator_InvalidJob(t *testing.T) {
	saver := &recordingSaver{}
	o := newTestOrchestrator(&mockCandidateRepo{}, saver, nil)

	job := remoteGoJob()
	job.Type = "FREELANCE"
	_, err := o.RunForJob(context.Background(), job, []uuid.UUID{uuid.New()})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(saver.saved) != 0 {
		t.Fatalf("invalid job must not persist")
	}
}

func TestBatchMatchOrchestrator_PersistenceFailureSkipsNotifications(t *testing.T) {
	cands := &mockCandidateRepo{}
	strong := candidateWith("strong", "Go", "SQL")
	cands.add(strong)
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(cands, &recordingSaver{err: errBoom}, notifier)

	_, err := o.RunForJob(context.Background(), remoteGoJob(), cands.order)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("no notifications expected after a failed save")
	}
}

func TestBatchMatchOrchestrator_NotificationFailureIsNotFatal(t *testing.T) {
	cands := &mockCandidateRepo{}
	cands.add(candidateWith("strong", "Go", "SQL"))
	saver := &recordingSaver{}
	o := newTestOrchestrator(cands, saver, &recordingNotifier{err: errBoom})

	summary, err := o.RunForJob(context.Background(), remoteGoJob(), cands.order)
	if err != nil {
		t.Fatalf("notification errors must not fail the batch: %v", err)
	}
	if summary.Persisted != 1 || summary.Notified != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestBatchMatchOrchestrator_SlowCandidateTimesOut(t *testing.T) {
	cands := &mockCandidateRepo{block: make(chan struct{})}
	cands.add(candidateWith("slow", "Go"))
	saver := &recordingSaver{}
	o := NewBatchMatchOrchestrator(cands, NewLocalScorer(nil), saver, nil,
		OrchestratorConfig{Workers: 1, CandidateTimeout: 20 * time.Millisecond}, nil)

	summary, err := o.RunForJob(context.Background(), remoteGoJob(), cands.order)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Skipped != 1 || summary.Persisted != 0 {
		t.Fatalf("expected slow candidate skipped, got %+v", summary)
	}
}

func TestBatchMatchOrchestrator_GatewayDegradedFallsBackLocally(t *testing.T) {
	cands := &mockCandidateRepo{}
	c := candidateWith("strong", "Go", "SQL")
	cands.add(c)
	gw := &fakeGateway{single: matching.NeutralResult("down")}
	saver := &recordingSaver{}
	scorer := NewScorer("ai", nil, gw, nil)
	o := NewBatchMatchOrchestrator(cands, scorer, saver, nil, OrchestratorConfig{}, nil)

	summary, err := o.RunForJob(context.Background(), remoteGoJob(), cands.order)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := saver.last().records[0]
	if rec.Score == 0.5 || !rec.Degraded {
		t.Fatalf("expected degraded local score, got %+v", rec)
	}
	if summary.Degraded != 1 {
		t.Fatalf("degraded count: %+v", summary)
	}
}

func TestBatchMatchOrchestrator_CancelledRunDoesNotPersist(t *testing.T) {
	cands := &mockCandidateRepo{block: make(chan struct{})}
	cands.add(candidateWith("slow", "Go"))
	saver := &recordingSaver{}
	o := newTestOrchestrator(cands, saver, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := o.RunForJob(ctx, remoteGoJob(), cands.order)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(saver.saved) != 0 {
		t.Fatalf("cancelled run must not persist a partial batch")
	}
}

func TestBatchMatchOrchestrator_HangingGatewayFallsBackToLocal(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ai, err := aiservice.NewClient(aiservice.Config{BaseURL: srv.URL, Enabled: true, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	job := remoteGoJob()
	cands := &mockCandidateRepo{}
	strong := candidateWith("strong", "go", "SQL")
	mid := candidateWith("mid", "Go")
	cands.add(mid)
	cands.add(strong)

	saver := &recordingSaver{}
	o := NewBatchMatchOrchestrator(cands, NewScorer("ai", nil, ai, nil), saver, nil,
		OrchestratorConfig{Workers: 2, CandidateTimeout: 100 * time.Millisecond}, nil)

	summary, err := o.RunForJob(context.Background(), job, cands.order)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Skipped != 0 || summary.Persisted != 2 || summary.Degraded != 2 {
		t.Fatalf("slow gateway must degrade candidates, not drop them: %+v", summary)
	}

	saved := saver.last()
	if len(saved.records) != 2 || saved.records[0].CandidateID != strong.ID {
		t.Fatalf("expected local ranking with strong first, got %+v", saved.records)
	}
	for _, r := range saved.records {
		if !r.Degraded {
			t.Fatalf("fallback record must be flagged degraded: %+v", r)
		}
	}
}
