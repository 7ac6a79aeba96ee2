package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lwozdev/10x-cards/internal/domain"
)

// GenerationJobRepositoryPG implements domain.GenerationJobRepository.
type GenerationJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationJobRepository creates a new job repository backed by PostgreSQL.
func NewGenerationJobRepository(pool *pgxpool.Pool) *GenerationJobRepositoryPG {
	return &GenerationJobRepositoryPG{pool: pool}
}

// Create inserts a new generation job record.
func (r *GenerationJobRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	query := `
INSERT INTO generation_jobs (id, user_id, prompt, model, status, generated_count, suggested_name, tokens_in, tokens_out, error_message, created_at, updated_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.UserID,
		job.Prompt,
		job.Model,
		job.Status,
		job.GeneratedCount,
		job.SuggestedName,
		job.TokensIn,
		job.TokensOut,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
		job.CompletedAt,
	)
	return err
}

// GetByIDForUser fetches a job by id, scoped to its owner. A job owned by a
// different user scans as no rows, so callers cannot tell the cases apart.
func (r *GenerationJobRepositoryPG) GetByIDForUser(ctx context.Context, jobID, userID string) (*domain.GenerationJob, error) {
	query := `
SELECT id, user_id, prompt, model, status, generated_count, suggested_name, tokens_in, tokens_out, error_message, set_id, accepted_count, edited_count, created_at, updated_at, completed_at
FROM generation_jobs
WHERE id = $1 AND user_id = $2;
`
	row := r.pool.QueryRow(ctx, query, jobID, userID)
	var job domain.GenerationJob
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Prompt,
		&job.Model,
		&job.Status,
		&job.GeneratedCount,
		&job.SuggestedName,
		&job.TokensIn,
		&job.TokensOut,
		&job.ErrorMessage,
		&job.SetID,
		&job.AcceptedCount,
		&job.EditedCount,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// LinkToSet persists the one-time linkage. The WHERE set_id IS NULL guard
// makes a concurrent second linker lose the race at the database, not just at
// the entity.
func (r *GenerationJobRepositoryPG) LinkToSet(ctx context.Context, job *domain.GenerationJob) error {
	query := `
UPDATE generation_jobs
SET set_id = $2,
    accepted_count = $3,
    edited_count = $4,
    updated_at = $5
WHERE id = $1 AND set_id IS NULL;
`
	tag, err := r.pool.Exec(ctx, query, job.ID, job.SetID, job.AcceptedCount, job.EditedCount, job.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobAlreadyLinked
	}
	return nil
}

var _ domain.GenerationJobRepository = (*GenerationJobRepositoryPG)(nil)
