package seeder

import (
	"context"

	"candidate-match/internal/database"
)

type Seeder interface {
	Name() string
	// Requires lists the columns Run writes. They are checked before any
	// seeder runs.
	Requires() []TableColumns
	Run(ctx context.Context, db database.DB) error
}

// Defaults seeds a small demo data set: a few open jobs and candidate profiles
// with a spread of skills, so a fresh database produces non-empty batches.
func Defaults() []Seeder {
	return []Seeder{
		DemoJobsSeeder{},
		DemoCandidatesSeeder{},
	}
}
