package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"candidate-match/internal/domain/matching"
	"candidate-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type RunState string

const (
	RunQueued    RunState = "queued"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

type RunStatus struct {
	JobID      uuid.UUID     `json:"job_id"`
	BatchID    uuid.UUID     `json:"batch_id"`
	State      RunState      `json:"state"`
	QueuedAt   time.Time     `json:"queued_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Summary    *BatchSummary `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Run is a handle on one background batch run.
type Run struct {
	BatchID uuid.UUID
	JobID   uuid.UUID

	done    chan struct{}
	summary BatchSummary
	err     error
}

func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx ends.
func (r *Run) Wait(ctx context.Context) (BatchSummary, error) {
	select {
	case <-ctx.Done():
		return BatchSummary{}, ctx.Err()
	case <-r.done:
		return r.summary, r.err
	}
}

// MatchingRunner starts batch runs in the background. At most maxConcurrent
// runs score at once; a second trigger for a job that is still in flight
// returns the existing run.
type MatchingRunner struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	orch       *BatchMatchOrchestrator
	sem        *semaphore.Weighted
	logger     *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	inflight map[uuid.UUID]*Run
	status   map[uuid.UUID]RunStatus
	closed   bool
}

func NewMatchingRunner(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	orch *BatchMatchOrchestrator,
	maxConcurrent int,
	logger *zap.Logger,
) *MatchingRunner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MatchingRunner{
		jobs:       jobs,
		candidates: candidates,
		orch:       orch,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		logger:     logger.Named("runner"),
		baseCtx:    ctx,
		cancel:     cancel,
		inflight:   make(map[uuid.UUID]*Run),
		status:     make(map[uuid.UUID]RunStatus),
	}
}

var ErrRunnerClosed = errors.New("matching runner is shut down")

// TriggerMatchingForJob validates the job and schedules a batch run for it.
func (m *MatchingRunner) TriggerMatchingForJob(ctx context.Context, jobID uuid.UUID) (*Run, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	job, err := m.jobs.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("%w: load job: %v", ErrPersistence, err)
	}
	if !job.Active {
		return nil, ErrJobInactive
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrRunnerClosed
	}
	if r, ok := m.inflight[jobID]; ok {
		return r, nil
	}

	run := &Run{BatchID: uuid.New(), JobID: jobID, done: make(chan struct{})}
	m.inflight[jobID] = run
	m.status[jobID] = RunStatus{JobID: jobID, BatchID: run.BatchID, State: RunQueued, QueuedAt: time.Now().UTC()}

	m.wg.Add(1)
	go m.execute(run, job)
	return run, nil
}

func (m *MatchingRunner) execute(run *Run, job matching.JobSnapshot) {
	defer m.wg.Done()
	lg := m.logger.With(zap.String("job_id", job.ID.String()), zap.String("batch_id", run.BatchID.String()))

	summary, err := m.runLocked(run, job)

	m.mu.Lock()
	run.summary, run.err = summary, err
	delete(m.inflight, job.ID)
	st := m.status[job.ID]
	finished := time.Now().UTC()
	st.FinishedAt = &finished
	if err != nil {
		st.State = RunFailed
		st.Error = err.Error()
	} else {
		st.State = RunCompleted
		st.Summary = &summary
	}
	m.status[job.ID] = st
	m.mu.Unlock()
	close(run.done)

	if err != nil {
		lg.Error("matching run failed", zap.Error(err))
	}
}

func (m *MatchingRunner) runLocked(run *Run, job matching.JobSnapshot) (BatchSummary, error) {
	if err := m.sem.Acquire(m.baseCtx, 1); err != nil {
		return BatchSummary{BatchID: run.BatchID, JobID: job.ID}, err
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	st := m.status[job.ID]
	started := time.Now().UTC()
	st.State, st.StartedAt = RunRunning, &started
	m.status[job.ID] = st
	m.mu.Unlock()

	pool, err := m.candidates.ListMatchableCandidateIDs(m.baseCtx)
	if err != nil {
		return BatchSummary{BatchID: run.BatchID, JobID: job.ID}, fmt.Errorf("%w: list candidates: %v", ErrPersistence, err)
	}
	return m.orch.runBatch(m.baseCtx, run.BatchID, job, pool)
}

func (m *MatchingRunner) Status(jobID uuid.UUID) (RunStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.status[jobID]
	return st, ok
}

// Shutdown stops accepting runs and waits for in-flight ones. When ctx ends
// first the remaining runs are cancelled.
func (m *MatchingRunner) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		<-done
		return ctx.Err()
	}
}
