package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-backend/internal/domains/entity/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type importJobRepository struct {
	pool *pgxpool.Pool
}

func NewImportJobRepository(pool *pgxpool.Pool) ImportJobRepository {
	return &importJobRepository{pool: pool}
}

func (r *importJobRepository) Create(ctx context.Context, job *model.ImportJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO import_jobs
			(id, file_name, file_key, selected_type, status, total_rows,
			 created_rows, updated_rows, failed_rows, errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, 0, '[]', $6, $6)`,
		job.ID, job.FileName, job.FileKey, job.SelectedType, job.Status, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}
	return nil
}

func (r *importJobRepository) GetByID(ctx context.Context, id string) (*model.ImportJob, error) {
	var job model.ImportJob
	err := r.pool.QueryRow(ctx, `
		SELECT id, file_name, file_key, selected_type, status, total_rows,
		       created_rows, updated_rows, failed_rows, errors,
		       started_at, completed_at, created_at, updated_at
		FROM import_jobs WHERE id = $1`, id,
	).Scan(
		&job.ID, &job.FileName, &job.FileKey, &job.SelectedType, &job.Status,
		&job.TotalRows, &job.CreatedRows, &job.UpdatedRows, &job.FailedRows,
		&job.Errors, &job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

func (r *importJobRepository) MarkProcessing(ctx context.Context, id string) error {
	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $1, started_at = $2, updated_at = $2 WHERE id = $3`,
		model.JobStatusProcessing, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

func (r *importJobRepository) MarkCompleted(ctx context.Context, id string, report *model.ImportReport, result *model.ImportResult) error {
	errorsJSON, err := json.Marshal(report.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal job errors: %w", err)
	}

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1, total_rows = $2, created_rows = $3, updated_rows = $4,
		    failed_rows = $5, errors = $6, completed_at = $7, updated_at = $7
		WHERE id = $8`,
		model.JobStatusCompleted, report.TotalRows, result.Created, result.Updated,
		result.Failed, errorsJSON, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}

func (r *importJobRepository) MarkFailed(ctx context.Context, id string, message string) error {
	errorsJSON, _ := json.Marshal([]model.RowError{{Field: "file", Message: message}})

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1, errors = $2, completed_at = $3, updated_at = $3
		WHERE id = $4`,
		model.JobStatusFailed, errorsJSON, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}
	return nil
}
