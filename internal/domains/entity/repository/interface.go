package repository

import (
	"context"

	"catalog-backend/internal/domains/entity/model"

	"github.com/google/uuid"
)

// RepositoryInterface is the persistence boundary of the catalog domain.
type RepositoryInterface interface {
	// ListAll returns the full persisted snapshot, keyed by id string.
	// The validator consumes it up front instead of re-querying per row.
	ListAll(ctx context.Context) (map[string]*model.Entity, error)
	List(ctx context.Context, entityType string, limit, offset int) ([]*model.Entity, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	Create(ctx context.Context, e *model.Entity) error
	// Patch applies a partial update; a nil map value clears the column.
	Patch(ctx context.Context, id uuid.UUID, patch map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImportJobRepository persists async import jobs for status polling.
type ImportJobRepository interface {
	Create(ctx context.Context, job *model.ImportJob) error
	GetByID(ctx context.Context, id string) (*model.ImportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, report *model.ImportReport, result *model.ImportResult) error
	MarkFailed(ctx context.Context, id string, message string) error
}
