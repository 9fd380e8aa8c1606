package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"candidate-match/internal/config"
	"candidate-match/internal/database"
	"candidate-match/internal/database/migration"
	dbpostgres "candidate-match/internal/database/postgres"
	"candidate-match/internal/domain/match"
	"candidate-match/internal/repository"
	"candidate-match/internal/usecase"
	"candidate-match/migrations"

	"github.com/google/uuid"
)

type seed struct {
	jobID      uuid.UUID
	strongID   uuid.UUID
	mediumID   uuid.UUID
	weakID     uuid.UUID
	inactiveID uuid.UUID
}

func TestIntegration_RunMatching_PersistsRankedBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	s := seedData(t, ctx, db)
	defer cleanupSeed(t, db, s)

	jobs := repository.NewPostgresJobRepository(db)
	candidates := repository.NewPostgresCandidateRepository(db)
	store := usecase.NewMatchResultStore(repository.NewPostgresMatchResultRepository(db), nil, nil, usecase.StoreOptions{}, nil)
	orch := usecase.NewBatchMatchOrchestrator(candidates, usecase.NewLocalScorer(nil), store, nil, usecase.OrchestratorConfig{Workers: 4}, nil)
	runner := usecase.NewMatchingRunner(jobs, candidates, orch, 1, nil)
	defer func() { _ = runner.Shutdown(context.Background()) }()

	run, err := runner.TriggerMatchingForJob(ctx, s.jobID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	sum, err := run.Wait(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Persisted < 2 {
		t.Fatalf("expected at least the strong and medium candidates persisted, got %+v", sum)
	}

	latest, err := store.GetLatest(ctx, s.jobID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Batch.ID != run.BatchID {
		t.Fatalf("latest batch %s, want %s", latest.Batch.ID, run.BatchID)
	}
	assertRanked(t, latest)

	byID := map[uuid.UUID]match.Record{}
	for _, r := range latest.Records {
		byID[r.CandidateID] = r
	}
	strong, ok := byID[s.strongID]
	if !ok {
		t.Fatalf("strong candidate missing from batch")
	}
	if strong.Rank != 1 {
		t.Fatalf("strong candidate rank %d", strong.Rank)
	}
	if _, ok := byID[s.weakID]; ok {
		t.Fatalf("weak candidate must fall under the inclusion threshold")
	}

	one, err := store.GetOne(ctx, s.jobID, s.strongID)
	if err != nil || one.CandidateID != s.strongID {
		t.Fatalf("get one: %v %+v", err, one)
	}
	if _, err := store.GetOne(ctx, s.jobID, s.weakID); !errors.Is(err, usecase.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound for weak candidate, got %v", err)
	}

	if _, err := runner.TriggerMatchingForJob(ctx, s.inactiveID); !errors.Is(err, usecase.ErrJobInactive) {
		t.Fatalf("expected ErrJobInactive, got %v", err)
	}
}

func TestIntegration_MatchResultRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	repo := repository.NewPostgresMatchResultRepository(db)
	jobID := uuid.New()
	defer func() { _, _ = repo.DeleteByJob(context.Background(), jobID) }()

	base := time.Now().UTC().Truncate(time.Microsecond)
	old := match.Batch{ID: uuid.New(), JobID: jobID, CreatedAt: base.Add(-10 * 24 * time.Hour)}
	newer := match.Batch{ID: uuid.New(), JobID: jobID, JobTitle: "Go Engineer", CreatedAt: base}

	if err := repo.InsertBatch(ctx, old, nil); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	c1, c2 := uuid.New(), uuid.New()
	recs := []match.Record{
		{ID: uuid.New(), BatchID: newer.ID, JobID: jobID, CandidateID: c2, Score: 0.5, Percentage: 50, Rank: 2, Quality: "medium", CreatedAt: base},
		{ID: uuid.New(), BatchID: newer.ID, JobID: jobID, CandidateID: c1, Score: 0.8, Percentage: 80, Rank: 1, Quality: "excellent", MatchedSkills: []string{"Go"}, CreatedAt: base},
	}
	newer.TotalCandidates, newer.AverageScore = 2, 0.65
	if err := repo.InsertBatch(ctx, newer, recs); err != nil {
		t.Fatalf("insert newer: %v", err)
	}

	got, err := repo.LatestBatch(ctx, jobID)
	if err != nil || got.ID != newer.ID || got.JobTitle != "Go Engineer" {
		t.Fatalf("latest batch: %v %+v", err, got)
	}

	list, err := repo.ListByBatch(ctx, newer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].CandidateID != c1 || list[1].CandidateID != c2 {
		t.Fatalf("records must be ordered by rank: %+v", list)
	}
	if len(list[0].MatchedSkills) != 1 || list[1].MissingSkills == nil {
		t.Fatalf("skill arrays not round-tripped: %+v", list)
	}

	if _, err := repo.FindInBatch(ctx, newer.ID, uuid.New()); !errors.Is(err, repository.ErrMatchResultNotFound) {
		t.Fatalf("expected ErrMatchResultNotFound, got %v", err)
	}

	n, err := repo.DeleteBatchesBefore(ctx, jobID, base.Add(-7*24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("delete before: n=%d err=%v", n, err)
	}
	n, err = repo.DeleteByJob(ctx, jobID)
	if err != nil || n != 1 {
		t.Fatalf("delete by job: n=%d err=%v", n, err)
	}
	if _, err := repo.LatestBatch(ctx, jobID); !errors.Is(err, repository.ErrMatchBatchNotFound) {
		t.Fatalf("expected ErrMatchBatchNotFound, got %v", err)
	}
}

func assertRanked(t *testing.T, l match.Latest) {
	t.Helper()
	for i, r := range l.Records {
		if r.Rank != i+1 {
			t.Fatalf("record %d has rank %d", i, r.Rank)
		}
		if i > 0 && r.Score > l.Records[i-1].Score {
			t.Fatalf("records not sorted by score desc at %d", i)
		}
		if r.Score < 0.3 {
			t.Fatalf("record below inclusion threshold persisted: %v", r.Score)
		}
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("MATCH_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("MATCH_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("MATCH_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("MATCH_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("MATCH_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("MATCH_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set MATCH_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	}, "candidate-match-test", nil)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	r := migration.Runner{FS: migrations.FS}
	if _, err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func seedData(t *testing.T, ctx context.Context, db database.DB) seed {
	t.Helper()

	s := seed{
		jobID:      uuid.New(),
		strongID:   uuid.New(),
		mediumID:   uuid.New(),
		weakID:     uuid.New(),
		inactiveID: uuid.New(),
	}

	exec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.Exec(ctx, q, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	exec(`INSERT INTO jobs (id, title, skills, location, job_type, is_active) VALUES ($1, 'Go Engineer', $2, 'Remote', 'FULL_TIME', TRUE)`,
		s.jobID, []string{"Go", "SQL"})
	exec(`INSERT INTO jobs (id, title, skills, location, job_type, is_active) VALUES ($1, 'Closed role', $2, 'Remote', 'FULL_TIME', FALSE)`,
		s.inactiveID, []string{"Go"})

	fiveYears := `[{"company":"Acme","position":"Backend Engineer","startDate":"2019-01"}]`
	exec(`INSERT INTO candidate_profiles (user_id, name, email, skills, experience, location) VALUES ($1, 'Strong', 'strong@example.com', $2, $3::jsonb, 'Remote')`,
		s.strongID, []string{"Go", "SQL"}, fiveYears)
	exec(`INSERT INTO candidate_profiles (user_id, name, email, skills, location) VALUES ($1, 'Medium', 'medium@example.com', $2, 'Remote')`,
		s.mediumID, []string{"Go"})
	exec(`INSERT INTO candidate_profiles (user_id, name, email, skills, location) VALUES ($1, 'Weak', 'weak@example.com', $2, 'Jakarta')`,
		s.weakID, []string{"Figma"})

	return s
}

func cleanupSeed(t *testing.T, db database.DB, s seed) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = db.Exec(ctx, `DELETE FROM match_batches WHERE job_id = ANY($1)`, []uuid.UUID{s.jobID, s.inactiveID})
	_, _ = db.Exec(ctx, `DELETE FROM candidate_profiles WHERE user_id = ANY($1)`, []uuid.UUID{s.strongID, s.mediumID, s.weakID})
	_, _ = db.Exec(ctx, `DELETE FROM jobs WHERE id = ANY($1)`, []uuid.UUID{s.jobID, s.inactiveID})
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
