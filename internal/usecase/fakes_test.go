package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/domain/match"
	"candidate-match/internal/domain/matching"
	"candidate-match/internal/repository"

	"github.com/google/uuid"
)

type mockJobRepo struct {
	jobs map[uuid.UUID]matching.JobSnapshot
	err  error
}

func (m mockJobRepo) FindJob(_ context.Context, id uuid.UUID) (matching.JobSnapshot, error) {
	if m.err != nil {
		return matching.JobSnapshot{}, m.err
	}
	j, ok := m.jobs[id]
	if !ok {
		return matching.JobSnapshot{}, repository.ErrJobNotFound
	}
	return j, nil
}

func (m mockJobRepo) FindActiveJobs(context.Context) ([]matching.JobSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]matching.JobSnapshot, 0, len(m.jobs))
	for _, j := range m.jobs {
		if j.Active {
			out = append(out, j)
		}
	}
	return out, nil
}

type mockCandidateRepo struct {
	profiles map[uuid.UUID]matching.CandidateSnapshot
	order    []uuid.UUID
	listErr  error
	// block, when set, holds every profile load until closed.
	block chan struct{}
}

func (m *mockCandidateRepo) add(c matching.CandidateSnapshot) {
	if m.profiles == nil {
		m.profiles = make(map[uuid.UUID]matching.CandidateSnapshot)
	}
	m.profiles[c.ID] = c
	m.order = append(m.order, c.ID)
}

func (m *mockCandidateRepo) FindScoringProfile(ctx context.Context, id uuid.UUID) (matching.CandidateSnapshot, error) {
	if m.block != nil {
		select {
		case <-ctx.Done():
			return matching.CandidateSnapshot{}, ctx.Err()
		case <-m.block:
		}
	}
	c, ok := m.profiles[id]
	if !ok {
		return matching.CandidateSnapshot{}, repository.ErrCandidateNotFound
	}
	return c, nil
}

func (m *mockCandidateRepo) ListMatchableCandidateIDs(context.Context) ([]uuid.UUID, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]uuid.UUID(nil), m.order...), nil
}

// memMatchRepo keeps batches in memory and records how many inserts overlap.
type memMatchRepo struct {
	mu      sync.Mutex
	batches []match.Batch
	records map[uuid.UUID][]match.Record

	insertErr    error
	insertDelay  time.Duration
	// onList runs before ListByBatch reads, outside the repo mutex.
	onList       func()
	inserting    atomic.Int32
	maxInserting atomic.Int32
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{records: make(map[uuid.UUID][]match.Record)}
}

func (r *memMatchRepo) InsertBatch(_ context.Context, b match.Batch, recs []match.Record) error {
	n := r.inserting.Add(1)
	defer r.inserting.Add(-1)
	for {
		cur := r.maxInserting.Load()
		if n <= cur || r.maxInserting.CompareAndSwap(cur, n) {
			break
		}
	}
	if r.insertDelay > 0 {
		time.Sleep(r.insertDelay)
	}
	if r.insertErr != nil {
		return r.insertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, b)
	r.records[b.ID] = append([]match.Record(nil), recs...)
	return nil
}

func (r *memMatchRepo) LatestBatch(_ context.Context, jobID uuid.UUID) (match.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *match.Batch
	for i := range r.batches {
		b := &r.batches[i]
		if b.JobID != jobID {
			continue
		}
		if latest == nil || !b.CreatedAt.Before(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return match.Batch{}, repository.ErrMatchBatchNotFound
	}
	return *latest, nil
}

func (r *memMatchRepo) ListByBatch(_ context.Context, batchID uuid.UUID) ([]match.Record, error) {
	if r.onList != nil {
		r.onList()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]match.Record{}, r.records[batchID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (r *memMatchRepo) FindInBatch(_ context.Context, batchID, candidateID uuid.UUID) (match.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records[batchID] {
		if rec.CandidateID == candidateID {
			return rec, nil
		}
	}
	return match.Record{}, repository.ErrMatchResultNotFound
}

func (r *memMatchRepo) DeleteBatchesBefore(_ context.Context, jobID uuid.UUID, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(b match.Batch) bool { return b.JobID == jobID && b.CreatedAt.Before(cutoff) }), nil
}

func (r *memMatchRepo) DeleteByJob(_ context.Context, jobID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(b match.Batch) bool { return b.JobID == jobID }), nil
}

func (r *memMatchRepo) deleteWhere(pred func(match.Batch) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.batches[:0]
	var n int64
	for _, b := range r.batches {
		if pred(b) {
			delete(r.records, b.ID)
			n++
			continue
		}
		kept = append(kept, b)
	}
	r.batches = kept
	return n
}

func (r *memMatchRepo) batchCount(jobID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		if b.JobID == jobID {
			n++
		}
	}
	return n
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type savedBatch struct {
	batch   match.Batch
	records []match.Record
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []savedBatch
	err   error
}

func (s *recordingSaver) SaveBatch(_ context.Context, b match.Batch, recs []match.Record) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, savedBatch{batch: b, records: recs})
	return nil
}

func (s *recordingSaver) last() savedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

type notification struct {
	candidateID uuid.UUID
	jobID       uuid.UUID
	score       float64
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) NotifyJobMatched(_ context.Context, candidateID, jobID uuid.UUID, score float64) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{candidateID: candidateID, jobID: jobID, score: score})
	return nil
}

type fakeGateway struct {
	single  matching.Result
	explain matching.Explanation
	batch   aiservice.BatchMatch
	health  aiservice.Health

	calls atomic.Int32
}

func (g *fakeGateway) MatchSingle(context.Context, matching.CandidateSnapshot, matching.JobSnapshot) matching.Result {
	g.calls.Add(1)
	return g.single
}

func (g *fakeGateway) MatchBatch(_ context.Context, cs []matching.CandidateSnapshot, j matching.JobSnapshot) aiservice.BatchMatch {
	g.calls.Add(1)
	out := g.batch
	out.JobID = j.ID
	out.TotalCandidates = len(cs)
	return out
}

func (g *fakeGateway) Explain(context.Context, matching.CandidateSnapshot, matching.JobSnapshot, bool) matching.Explanation {
	g.calls.Add(1)
	return g.explain
}

func (g *fakeGateway) Health(context.Context) aiservice.Health {
	return g.health
}

var errBoom = errors.New("boom")

func remoteGoJob() matching.JobSnapshot {
	return matching.JobSnapshot{
		ID:       uuid.New(),
		Title:    "Go Developer",
		Skills:   []string{"Go", "SQL"},
		Location: "Remote",
		Type:     matching.JobTypeFullTime,
		Active:   true,
	}
}

func candidateWith(name string, skills ...string) matching.CandidateSnapshot {
	return matching.CandidateSnapshot{
		ID:     uuid.New(),
		Name:   name,
		Email:  name + "@example.com",
		Skills: skills,
	}
}
