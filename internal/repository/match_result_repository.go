package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"candidate-match/internal/database"
	"candidate-match/internal/domain/match"
	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrMatchBatchNotFound  = errors.New("match batch not found")
	ErrMatchResultNotFound = errors.New("match result not found")
)

// MatchResultRepository persists match batches as an append-only log keyed by
// (job_id, batch id, created_at). Records are deleted together with their batch.
type MatchResultRepository interface {
	InsertBatch(ctx context.Context, b match.Batch, recs []match.Record) error
	LatestBatch(ctx context.Context, jobID uuid.UUID) (match.Batch, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]match.Record, error)
	FindInBatch(ctx context.Context, batchID, candidateID uuid.UUID) (match.Record, error)
	DeleteBatchesBefore(ctx context.Context, jobID uuid.UUID, cutoff time.Time) (int64, error)
	DeleteByJob(ctx context.Context, jobID uuid.UUID) (int64, error)
}

type PostgresMatchResultRepository struct {
	db database.DB
}

func NewPostgresMatchResultRepository(db database.DB) *PostgresMatchResultRepository {
	return &PostgresMatchResultRepository{db: db}
}

func (r *PostgresMatchResultRepository) InsertBatch(ctx context.Context, b match.Batch, recs []match.Record) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_batches (id, job_id, job_title, total_candidates, average_score, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, b.JobID, b.JobTitle, b.TotalCandidates, b.AverageScore, b.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert match batch: %w", err)
		}

		for _, rec := range recs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO match_results (
					id, batch_id, job_id, candidate_id, candidate_name, candidate_email,
					compatibility_score, match_percentage, rank, match_quality,
					skills_match, experience_match, location_match, education_match, semantic_match,
					matched_skills, missing_skills, recommendations, explanation, degraded,
					total_candidates_in_batch, average_score_in_batch, created_at
				) VALUES (
					$1, $2, $3, $4, $5, $6,
					$7, $8, $9, $10,
					$11, $12, $13, $14, $15,
					$16, $17, $18, $19, $20,
					$21, $22, $23
				)`,
				rec.ID, b.ID, b.JobID, rec.CandidateID, rec.CandidateName, rec.CandidateEmail,
				rec.Score, rec.Percentage, rec.Rank, string(rec.Quality),
				rec.Breakdown.Skills, rec.Breakdown.Experience, rec.Breakdown.Location, rec.Breakdown.Education, rec.Breakdown.Semantic,
				rec.MatchedSkills, rec.MissingSkills, rec.Recommendations, rec.Explanation, rec.Degraded,
				rec.TotalCandidatesInBatch, rec.AverageScoreInBatch, rec.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert match result candidate=%s: %w", rec.CandidateID, err)
			}
		}
		return nil
	})
}

func (r *PostgresMatchResultRepository) LatestBatch(ctx context.Context, jobID uuid.UUID) (match.Batch, error) {
	var b match.Batch
	row := r.db.QueryRow(ctx,
		`SELECT id, job_id, job_title, total_candidates, average_score, created_at
		 FROM match_batches
		 WHERE job_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		jobID,
	)
	if err := row.Scan(&b.ID, &b.JobID, &b.JobTitle, &b.TotalCandidates, &b.AverageScore, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return match.Batch{}, ErrMatchBatchNotFound
		}
		return match.Batch{}, err
	}
	return b, nil
}

const recordColumns = `id, batch_id, job_id, candidate_id, candidate_name, candidate_email,
	compatibility_score, match_percentage, rank, match_quality,
	skills_match, experience_match, location_match, education_match, semantic_match,
	matched_skills, missing_skills, recommendations, explanation, degraded,
	total_candidates_in_batch, average_score_in_batch, created_at`

func (r *PostgresMatchResultRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]match.Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM match_results WHERE batch_id = $1 ORDER BY rank ASC`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchResultRepository) FindInBatch(ctx context.Context, batchID, candidateID uuid.UUID) (match.Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM match_results WHERE batch_id = $1 AND candidate_id = $2`,
		batchID, candidateID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return match.Record{}, ErrMatchResultNotFound
		}
		return match.Record{}, err
	}
	return rec, nil
}

func (r *PostgresMatchResultRepository) DeleteBatchesBefore(ctx context.Context, jobID uuid.UUID, cutoff time.Time) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM match_batches WHERE job_id = $1 AND created_at < $2`, jobID, cutoff)
}

func (r *PostgresMatchResultRepository) DeleteByJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM match_batches WHERE job_id = $1`, jobID)
}

func scanRecord(row database.Row) (match.Record, error) {
	var rec match.Record
	var quality string
	if err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.JobID, &rec.CandidateID, &rec.CandidateName, &rec.CandidateEmail,
		&rec.Score, &rec.Percentage, &rec.Rank, &quality,
		&rec.Breakdown.Skills, &rec.Breakdown.Experience, &rec.Breakdown.Location, &rec.Breakdown.Education, &rec.Breakdown.Semantic,
		&rec.MatchedSkills, &rec.MissingSkills, &rec.Recommendations, &rec.Explanation, &rec.Degraded,
		&rec.TotalCandidatesInBatch, &rec.AverageScoreInBatch, &rec.CreatedAt,
	); err != nil {
		return match.Record{}, err
	}
	rec.Quality = matching.Quality(quality)
	return rec, nil
}
