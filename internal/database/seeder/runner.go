package seeder

import (
	"context"
	"fmt"
	"time"

	"candidate-match/internal/database"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

// Run checks the columns of every seeder first, so a stale schema fails
// before any row is written. Seeders then run in order.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	lg := r.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	var reqs []TableColumns
	for _, s := range r.Seeders {
		if s != nil {
			reqs = append(reqs, s.Requires()...)
		}
	}
	if err := CheckSchema(ctx, db, reqs); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		started := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		lg.Info("seeder finished", zap.String("seeder", s.Name()), zap.Int64("elapsed_ms", time.Since(started).Milliseconds()))
	}
	return nil
}
