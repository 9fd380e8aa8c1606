package repository

import (
	"context"
	"database/sql"
	"errors"

	"candidate-match/internal/database"
	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCandidateNotFound = errors.New("candidate profile not found")

type CandidateRepository interface {
	FindScoringProfile(ctx context.Context, candidateID uuid.UUID) (matching.CandidateSnapshot, error)
	ListMatchableCandidateIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

func (r *PostgresCandidateRepository) FindScoringProfile(ctx context.Context, candidateID uuid.UUID) (matching.CandidateSnapshot, error) {
	var c matching.CandidateSnapshot
	var expRaw, eduRaw []byte

	row := r.db.QueryRow(ctx,
		`SELECT user_id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(skills, '{}'),
			COALESCE(experience, '[]'::jsonb), COALESCE(education, '[]'::jsonb),
			COALESCE(languages, '{}'), COALESCE(summary, ''), COALESCE(location, '')
		 FROM candidate_profiles
		 WHERE user_id = $1`,
		candidateID,
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Skills, &expRaw, &eduRaw, &c.Languages, &c.Summary, &c.Location); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return matching.CandidateSnapshot{}, ErrCandidateNotFound
		}
		return matching.CandidateSnapshot{}, err
	}

	c.Experience = decodeExperience(expRaw)
	c.Education = decodeEducation(eduRaw)
	return c, nil
}

// ListMatchableCandidateIDs returns every candidate with a scoring profile,
// oldest profile first so batch input order is stable between runs.
func (r *PostgresCandidateRepository) ListMatchableCandidateIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM candidate_profiles ORDER BY updated_at ASC, user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
