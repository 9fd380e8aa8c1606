package seeder

import (
	"context"
	"strings"

	"candidate-match/internal/database"

	"github.com/google/uuid"
)

// Demo rows use fixed ids so reseeding is idempotent.
var (
	DemoJobBackend  = uuid.MustParse("7b0c1f1e-4d1a-4c55-9f0e-0a1d7c3e0001")
	DemoJobFrontend = uuid.MustParse("7b0c1f1e-4d1a-4c55-9f0e-0a1d7c3e0002")
	DemoJobIntern   = uuid.MustParse("7b0c1f1e-4d1a-4c55-9f0e-0a1d7c3e0003")
)

type DemoJobsSeeder struct{}

func (DemoJobsSeeder) Name() string { return "demo_jobs" }

func (DemoJobsSeeder) Requires() []TableColumns {
	return []TableColumns{{Table: "jobs", Columns: []string{"id", "title", "skills", "location", "job_type", "is_active"}}}
}

func (DemoJobsSeeder) Run(ctx context.Context, db database.DB) error {
	items := []struct {
		ID       uuid.UUID
		Title    string
		Skills   []string
		Location string
		Type     string
	}{
		{DemoJobBackend, "Backend Engineer (Go)", []string{"Go", "PostgreSQL", "Redis", "Docker"}, "Remote", "FULL_TIME"},
		{DemoJobFrontend, "Frontend Engineer", []string{"TypeScript", "React", "CSS"}, "Jakarta", "CONTRACT"},
		{DemoJobIntern, "Platform Intern", []string{"Go", "Kubernetes"}, "", "INTERNSHIP"},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO jobs (id, title, skills, location, job_type, is_active)
				 VALUES ($1, $2, $3, $4, $5, TRUE)
				 ON CONFLICT (id) DO NOTHING`,
				it.ID, it.Title, it.Skills, it.Location, it.Type,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

type DemoCandidatesSeeder struct{}

func (DemoCandidatesSeeder) Name() string { return "demo_candidates" }

func (DemoCandidatesSeeder) Requires() []TableColumns {
	return []TableColumns{{Table: "candidate_profiles", Columns: []string{"user_id", "name", "email", "skills", "experience", "location"}}}
}

func (DemoCandidatesSeeder) Run(ctx context.Context, db database.DB) error {
	items := []struct {
		ID         string
		Name       string
		Skills     []string
		Experience string
		Location   string
	}{
		{"9c4e2a60-1b7f-4f0a-8d51-3f2b6e7a0001", "Ana Putri", []string{"Go", "PostgreSQL", "Redis", "Docker"},
			`[{"company":"Acme","position":"Backend Engineer","startDate":"2018-03"}]`, "Remote"},
		{"9c4e2a60-1b7f-4f0a-8d51-3f2b6e7a0002", "Budi Santoso", []string{"Go", "Kubernetes"},
			`[{"company":"Initech","position":"SRE","startDate":"2022-06","endDate":"2024-06"}]`, "Bandung"},
		{"9c4e2a60-1b7f-4f0a-8d51-3f2b6e7a0003", "Citra Lestari", []string{"TypeScript", "React"},
			`[]`, "Jakarta"},
		{"9c4e2a60-1b7f-4f0a-8d51-3f2b6e7a0004", "Dewi Anggraini", []string{"Figma"},
			`[]`, "Surabaya"},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO candidate_profiles (user_id, name, email, skills, experience, location)
				 VALUES ($1, $2, $3, $4, $5::jsonb, $6)
				 ON CONFLICT (user_id) DO NOTHING`,
				uuid.MustParse(it.ID), it.Name, demoEmail(it.Name), it.Skills, it.Experience, it.Location,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func demoEmail(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.com"
}
