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

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	FindJob(ctx context.Context, jobID uuid.UUID) (matching.JobSnapshot, error)
	FindActiveJobs(ctx context.Context) ([]matching.JobSnapshot, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(skills, '{}'),
	COALESCE(requirements, '{}'), COALESCE(location, ''), COALESCE(job_type, ''),
	salary_min, salary_max, is_active`

func (r *PostgresJobRepository) FindJob(ctx context.Context, jobID uuid.UUID) (matching.JobSnapshot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID)
	j, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return matching.JobSnapshot{}, ErrJobNotFound
		}
		return matching.JobSnapshot{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) FindActiveJobs(ctx context.Context) ([]matching.JobSnapshot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.JobSnapshot, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanJob keeps an unrecognized job type verbatim so validation can reject
// the job with a precise message instead of failing the read.
func scanJob(row database.Row) (matching.JobSnapshot, error) {
	var j matching.JobSnapshot
	var rawType string
	if err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Skills,
		&j.Requirements, &j.Location, &rawType,
		&j.SalaryMin, &j.SalaryMax, &j.Active,
	); err != nil {
		return matching.JobSnapshot{}, err
	}
	if jt, err := matching.ParseJobType(rawType); err == nil {
		j.Type = jt
	} else {
		j.Type = matching.JobType(rawType)
	}
	return j, nil
}
